// Package export maps an EIC form document into a fresh EICR-shaped
// document. It is pure: no I/O, no mutation of the source, and it never
// fails on malformed input — every output field is always defined.
package export

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/voltcert/certsync/internal/model"
)

// Transform produces an EICR document from an EIC document.
//
// Client, installation, supply, earthing, bonding, board and cable
// fields copy across; fields with no EIC equivalent (DNO name, MPAN,
// cut-out location, service entry, estimated age, registration details)
// start empty. Checklist items, observations and the overall assessment
// are always empty: an EICR records a fresh inspection and must never
// inherit another certificate's inspection state. The EICR is issued
// under its own certificate number, so identity is not carried either.
//
// Calling Transform twice on the same source yields structurally equal
// output except for generated ids on circuits that lacked one.
func Transform(src *model.EICDocument) *model.EICRDocument {
	if src == nil {
		src = &model.EICDocument{}
	}

	dst := &model.EICRDocument{
		ClientName:    src.ClientName,
		ClientAddress: src.ClientAddress,
		ClientPhone:   src.ClientPhone,
		ClientEmail:   src.ClientEmail,

		InstallationAddress: src.InstallationAddress,
		Description:         src.Description,

		EarthingArrangement:  src.EarthingArrangement,
		SupplyVoltage:        src.SupplyVoltage,
		SupplyFrequency:      src.SupplyFrequency,
		Phases:               src.Phases,
		SupplyType:           src.SupplyType,
		SupplyPME:            src.SupplyPME,
		MainProtectiveDevice: src.MainProtectiveDevice,
		MainSwitchRating:     src.MainSwitchRating,
		RCDMainSwitch:        src.RCDMainSwitch,
		RCDRating:            src.RCDRating,

		EarthElectrodeType:        src.EarthElectrodeType,
		EarthElectrodeResistance:  src.EarthElectrodeResistance,
		MainEarthingConductorSize: src.MainEarthingConductorSize,
		MainBondingSize:           mainBondingSize(src),
		SupplementaryBondingSize:  src.SupplementaryBondingSize,
		BondingCompliance:         src.BondingCompliance,
		EquipotentialBonding:      src.EquipotentialBonding,

		BoardSize:     src.BoardSize,
		BoardType:     src.BoardType,
		BoardLocation: src.BoardLocation,

		IntakeCableSize: src.IntakeCableSize,
		IntakeCableType: src.IntakeCableType,
		TailsSize:       src.TailsSize,
		TailsLength:     src.TailsLength,

		InspectionItems:     []model.InspectionItem{},
		DefectObservations:  []model.Observation{},
		GeneralObservations: []model.Observation{},
		ScheduleOfTests:     make([]model.EICRTestResult, 0, len(src.ScheduleOfTests)),
	}

	for _, c := range src.ScheduleOfTests {
		dst.ScheduleOfTests = append(dst.ScheduleOfTests, mapCircuit(c))
	}

	return dst
}

// mainBondingSize prefers an explicit custom override over the selected
// standard size.
func mainBondingSize(src *model.EICDocument) string {
	if src.CustomMainBondingSize != "" {
		return src.CustomMainBondingSize
	}
	return src.MainBondingSize
}

// mapCircuit renames an EIC circuit record into the EICR shape. The
// aggregate ring readings split across the EICR's three ring figures;
// a circuit without an id gets a generated one.
func mapCircuit(c model.EICTestResult) model.EICRTestResult {
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}

	designation := ""
	if c.CircuitNumber != "" {
		designation = fmt.Sprintf("C%s", c.CircuitNumber)
	}

	return model.EICRTestResult{
		ID:                 id,
		CircuitNumber:      c.CircuitNumber,
		CircuitDesignation: designation,
		CircuitDescription: c.CircuitDescription,
		ReferenceMethod:    c.ReferenceMethod,
		LiveSize:           c.LiveSize,
		CpcSize:            c.CpcSize,

		ProtectiveDeviceType:     c.ProtectiveDevice,
		ProtectiveDeviceRating:   c.ProtectiveDeviceRating,
		ProtectiveDeviceKaRating: c.ProtectiveDeviceKaRating,
		BSStandard:               c.BSStandard,
		TypeOfWiring:             c.TypeOfWiring,

		R1R2:   c.R1R2,
		R2:     c.R2,
		RingR1: c.RingContinuityLive,
		RingRn: c.RingContinuityNeutral,
		RingR2: c.R2,

		InsulationTestVoltage:  c.InsulationTestVoltage,
		InsulationLiveNeutral:  c.InsulationLiveNeutral,
		InsulationLiveEarth:    c.InsulationLiveEarth,
		InsulationNeutralEarth: c.InsulationNeutralEarth,

		Polarity:     c.Polarity,
		Zs:           c.Zs,
		MaxZs:        c.MaxZs,
		PointsServed: c.PointsServed,

		RCDBSStandard: c.RCDBSStandard,
		RCDType:       c.RCDType,
		RCDRating:     c.RCDRating,
		RCDOneX:       c.RCDOneX,
		RCDTestButton: c.RCDTestButton,
		AFDDTest:      c.AFDDTest,

		PFCLiveNeutral: c.PFCLiveNeutral,
		PFCLiveEarth:   c.PFCLiveEarth,

		FunctionalTesting: c.FunctionalTesting,
		Notes:             c.Notes,
	}
}
