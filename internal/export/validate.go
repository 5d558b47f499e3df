package export

import (
	"fmt"
	"strings"

	"github.com/voltcert/certsync/internal/model"
)

// ChecklistWarning is always included: the EICR's inspection checklist
// can never be derived from an EIC and must be completed on site.
const ChecklistWarning = "EICR requires completion of 66 inspection checklist items"

// Validation is the advisory result of a pre-export check. Warnings
// never affect validity; only Errors block an export, and even then the
// caller decides whether to proceed.
type Validation struct {
	Valid    bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ValidateForExport checks structural prerequisites for an EIC→EICR
// export without mutating anything. The only blocking error is a
// missing installation address.
func ValidateForExport(src *model.EICDocument) Validation {
	if src == nil {
		src = &model.EICDocument{}
	}

	v := Validation{Errors: []string{}, Warnings: []string{}}

	if strings.TrimSpace(src.InstallationAddress) == "" {
		v.Errors = append(v.Errors, "Installation address is required for export")
	}

	if strings.TrimSpace(src.ClientName) == "" {
		v.Warnings = append(v.Warnings, "Client name is missing and will need to be entered on the EICR")
	}

	if len(src.ScheduleOfTests) == 0 {
		v.Warnings = append(v.Warnings, "No circuit test records to transfer")
	}
	for i, c := range src.ScheduleOfTests {
		label := c.CircuitNumber
		if label == "" {
			label = fmt.Sprintf("%d", i+1)
		}
		if strings.TrimSpace(c.CircuitDescription) == "" {
			v.Warnings = append(v.Warnings, fmt.Sprintf("Circuit %s has no description", label))
		}
		if strings.TrimSpace(c.ProtectiveDeviceRating) == "" {
			v.Warnings = append(v.Warnings, fmt.Sprintf("Circuit %s has no protective device rating", label))
		}
	}

	v.Warnings = append(v.Warnings, ChecklistWarning)

	v.Valid = len(v.Errors) == 0
	return v
}
