package export

import (
	"strings"

	"github.com/voltcert/certsync/internal/model"
)

// checklistItems is the fixed 66-item EICR inspection schedule per
// BS 7671:2018+A3:2024, in schedule order.
var checklistItems = []struct {
	number, item, clause string
}{
	// 1.0 Intake equipment
	{"1.0", "Service cable, Service head, Earthing arrangement, Meter tails, Metering equipment, Isolator", "132.12"},
	{"1.1", "Consumer's isolator (where present)", "537.2.1.1"},
	{"1.2", "Consumer's meter tails", "521.10.1"},
	// 2.0 Parallel or switched alternative sources
	{"2.0", "Presence of adequate arrangements for other sources such as microgenerators", "551.6; 551.7"},
	// 3.0 Earthing and bonding arrangements
	{"3.1", "Presence and condition of distributor's earthing arrangement", "542.1.2.1; 542.1.2.2"},
	{"3.2", "Presence and condition of earth electrode connection where applicable", "542.1.2.3"},
	{"3.3", "Provision of earthing/bonding labels at all appropriate locations", "514.13.1"},
	{"3.4", "Confirmation of earthing conductor size", "542.3; 543.1.1"},
	{"3.5", "Accessibility and condition of earthing conductor at MET", "543.3.2"},
	{"3.6", "Confirmation of main protective bonding conductor sizes", "544.1"},
	{"3.7", "Condition and accessibility of main protective bonding conductor connections", "543.3.2; 544.1.2"},
	{"3.8", "Accessibility and condition of other protective bonding connections", "543.3.1; 543.3.2"},
	// 4.0 Consumer unit(s) / distribution board(s)
	{"4.1", "Adequacy of working space/accessibility to consumer unit/distribution board", "132.12; 513.1"},
	{"4.2", "Security of fixing", "134.1.1"},
	{"4.3", "Condition of enclosure(s) in terms of IP rating etc.", "416.2"},
	{"4.4", "Condition of enclosure(s) in terms of fire rating etc.", "421.1.201; 526.5"},
	{"4.5", "Enclosure not damaged/deteriorated so as to impair safety", "651.2"},
	{"4.6", "Presence of main linked switch (as required by 462.1.201)", "462.1.201"},
	{"4.7", "Operation of main switch (functional check)", "643.10"},
	{"4.8", "Manual operation of circuit-breakers and RCDs to prove disconnection", "643.10"},
	{"4.9", "Correct identification of circuit details and protective devices", "514.8.1; 514.9.1"},
	{"4.10", "Presence of RCD six-monthly test notice, where required", "514.12.2"},
	{"4.11", "Presence of alternative supply warning notice at or near consumer unit/distribution board", "514.15"},
	{"4.12", "Presence of other required labelling (please specify)", "Section 514"},
	{"4.13", "Compatibility of protective devices, bases and other components", "411.3.2; 411.4; 411.5; 411.6"},
	{"4.14", "Single-pole switching or protective devices in line conductor only", "132.14.1; 530.3.3"},
	{"4.15", "Protection against mechanical damage where cables enter consumer unit", "522.8.1; 522.8.5; 522.8.11"},
	{"4.16", "Protection against electromagnetic effects where cables enter consumer unit", "521.5.1"},
	{"4.17", "RCD(s) provided for fault protection – includes RCBOs", "411.4.204; 411.5.2; 531.2"},
	{"4.18", "RCD(s) provided for additional protection/requirements – includes RCBOs", "411.3.3; 415.1"},
	{"4.19", "Confirmation of indication that SPD is functional", "651.4"},
	{"4.20", "Confirmation that ALL conductor connections are correctly located and secure", "526.1"},
	{"4.21", "Adequate arrangements where a generating set operates as switched alternative", "551.6"},
	{"4.22", "Adequate arrangements where a generating set operates in parallel", "551.7"},
	// 5.0 Final circuits
	{"5.1", "Identification of conductors", "514.3.1"},
	{"5.2", "Cables correctly supported throughout their run", "521.10.202; 522.8.5"},
	{"5.3", "Condition of insulation of live parts", "416.1"},
	{"5.4", "Non-sheathed cables protected by enclosure in conduit, ducting or trunking", "521.10.1"},
	{"5.5", "Adequacy of cables for current-carrying capacity", "Section 523"},
	{"5.6", "Coordination between conductors and overload protective devices", "433.1; 533.2.1"},
	{"5.7", "Adequacy of protective devices: type and rated current for fault protection", "411.3"},
	{"5.8", "Presence and adequacy of circuit protective conductors", "411.3.1; Section 543"},
	{"5.9", "Wiring system(s) appropriate for the type and nature of the installation", "Section 522"},
	{"5.10", "Concealed cables installed in prescribed zones", "522.6.202"},
	{"5.11", "Cables concealed under floors, above ceilings adequately protected", "522.6.204"},
	{"5.12", "Provision of additional requirements for protection by RCD not exceeding 30 mA", "411.3.3; 522.6.202; 522.6.203; 411.3.4"},
	{"5.13", "Provision of fire barriers, sealing arrangements and protection against thermal effects", "Section 527"},
	{"5.14", "Band II cables segregated/separated from Band I cables", "528.1"},
	{"5.15", "Cables segregated/separated from communications cabling", "528.2"},
	{"5.16", "Cables segregated/separated from non-electrical services", "528.3"},
	{"5.17", "Termination of cables at enclosures", "Section 526; 526.6; 526.8; 526.5; 522.8.5"},
	{"5.18", "Condition of accessories including socket-outlets, switches and joint boxes", "651.2(v)"},
	{"5.19", "Suitability of accessories for external influences", "512.2"},
	{"5.20", "Adequacy of working space/accessibility to equipment", "132.12; 513.1"},
	{"5.21", "Single-pole switching or protective devices in line conductors only", "132.14.1; 530.3.3"},
	{"5.22", "RCD protection of socket-outlets with rated current not exceeding 32 A", "411.3.3"},
	// 6.0 Locations containing a bath or shower
	{"6.0", "Additional protection for all LV circuits by RCD not exceeding 30 mA", "701.411.3.3"},
	{"6.1", "Where used as a protective measure, requirements for SELV or PELV met", "701.414.4.5"},
	{"6.2", "Shaver supply units comply with BS EN 61558-2-5", "701.512.3"},
	{"6.3", "Presence of supplementary bonding conductors, unless not required", "701.415.2"},
	{"6.4", "Low voltage socket-outlets sited at least 2.5 m from zone 1", "701.512.3"},
	{"6.5", "Suitability of equipment for external influences in terms of IP rating", "701.512.2"},
	{"6.6", "Suitability of accessories and controlgear etc. for a particular zone", "701.512.3"},
	{"6.7", "Suitability of current-using equipment for particular position", "701.55"},
	// 7.0 and 8.0
	{"7.0", "List all other special installations or locations present, if any", "Part 7"},
	{"8.0", "Where the installation includes Chapter 82 requirements, add items to checklist", "Chapter 82"},
}

// Checklist returns a fresh, blank 66-item inspection checklist for a
// new EICR. Outcomes and notes start empty; Transform never fills them.
func Checklist() []model.InspectionItem {
	items := make([]model.InspectionItem, 0, len(checklistItems))
	for _, c := range checklistItems {
		items = append(items, model.InspectionItem{
			ID:         "item_" + strings.ReplaceAll(c.number, ".", "_"),
			ItemNumber: c.number,
			Item:       c.item,
			Clause:     c.clause,
		})
	}
	return items
}
