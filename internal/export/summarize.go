package export

import "github.com/voltcert/certsync/internal/model"

// Summary enumerates what an export would carry over and what must be
// completed afresh. Presentation-only: shown to the user before they
// commit to a transform.
type Summary struct {
	TransferredFields []string `json:"transferredFields"`
	RequiredFields    []string `json:"requiredFields"`
	CircuitCount      int      `json:"circuitCount"`
}

// transferable lists the named fields Transform copies, in display
// order, with their presence checks.
var transferable = []struct {
	name string
	get  func(*model.EICDocument) string
}{
	{"Client name", func(d *model.EICDocument) string { return d.ClientName }},
	{"Client address", func(d *model.EICDocument) string { return d.ClientAddress }},
	{"Client phone", func(d *model.EICDocument) string { return d.ClientPhone }},
	{"Client email", func(d *model.EICDocument) string { return d.ClientEmail }},
	{"Installation address", func(d *model.EICDocument) string { return d.InstallationAddress }},
	{"Description of premises", func(d *model.EICDocument) string { return d.Description }},
	{"Earthing arrangement", func(d *model.EICDocument) string { return d.EarthingArrangement }},
	{"Supply voltage", func(d *model.EICDocument) string { return d.SupplyVoltage }},
	{"Supply frequency", func(d *model.EICDocument) string { return d.SupplyFrequency }},
	{"Number of phases", func(d *model.EICDocument) string { return d.Phases }},
	{"Supply type", func(d *model.EICDocument) string { return d.SupplyType }},
	{"PME supply", func(d *model.EICDocument) string { return d.SupplyPME }},
	{"Main protective device", func(d *model.EICDocument) string { return d.MainProtectiveDevice }},
	{"Main switch rating", func(d *model.EICDocument) string { return d.MainSwitchRating }},
	{"RCD main switch", func(d *model.EICDocument) string { return d.RCDMainSwitch }},
	{"RCD rating", func(d *model.EICDocument) string { return d.RCDRating }},
	{"Earth electrode type", func(d *model.EICDocument) string { return d.EarthElectrodeType }},
	{"Earth electrode resistance", func(d *model.EICDocument) string { return d.EarthElectrodeResistance }},
	{"Main earthing conductor size", func(d *model.EICDocument) string { return d.MainEarthingConductorSize }},
	{"Main bonding conductor size", mainBondingSize},
	{"Supplementary bonding size", func(d *model.EICDocument) string { return d.SupplementaryBondingSize }},
	{"Bonding compliance", func(d *model.EICDocument) string { return d.BondingCompliance }},
	{"Equipotential bonding", func(d *model.EICDocument) string { return d.EquipotentialBonding }},
	{"Board size", func(d *model.EICDocument) string { return d.BoardSize }},
	{"Board type", func(d *model.EICDocument) string { return d.BoardType }},
	{"Board location", func(d *model.EICDocument) string { return d.BoardLocation }},
	{"Intake cable size", func(d *model.EICDocument) string { return d.IntakeCableSize }},
	{"Intake cable type", func(d *model.EICDocument) string { return d.IntakeCableType }},
	{"Meter tails size", func(d *model.EICDocument) string { return d.TailsSize }},
	{"Meter tails length", func(d *model.EICDocument) string { return d.TailsLength }},
}

// requiredAfresh is fixed: these are certificate-type-specific and must
// be completed on the new EICR regardless of source content.
var requiredAfresh = []string{
	"66-item inspection checklist",
	"Overall assessment",
	"Satisfactory for continued use",
	"Inspector signature",
	"Next inspection date recommendation",
	"Defect observations",
}

// Summarize reports which fields would carry over (by presence, not
// value), which must always be completed afresh, and how many circuit
// records would transfer.
func Summarize(src *model.EICDocument) Summary {
	if src == nil {
		src = &model.EICDocument{}
	}

	s := Summary{
		TransferredFields: []string{},
		RequiredFields:    append([]string(nil), requiredAfresh...),
		CircuitCount:      len(src.ScheduleOfTests),
	}
	for _, f := range transferable {
		if f.get(src) != "" {
			s.TransferredFields = append(s.TransferredFields, f.name)
		}
	}
	return s
}
