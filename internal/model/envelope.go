package model

import "time"

// ReportKind identifies the certificate type held in an envelope.
type ReportKind string

const (
	ReportKindEIC        ReportKind = "eic"
	ReportKindEICR       ReportKind = "eicr"
	ReportKindMinorWorks ReportKind = "minor_works"
)

// IsValid returns true for a recognized report kind.
func (k ReportKind) IsValid() bool {
	switch k {
	case ReportKindEIC, ReportKindEICR, ReportKindMinorWorks:
		return true
	}
	return false
}

// ReportStatus is the envelope lifecycle status, derived from payload
// contents on every write.
type ReportStatus string

const (
	ReportStatusDraft      ReportStatus = "draft"
	ReportStatusInProgress ReportStatus = "in_progress"
	ReportStatusCompleted  ReportStatus = "completed"
)

// ReportEnvelope is the persisted metadata record wrapping an opaque
// form-document payload. Summary fields are denormalized from the
// payload for list views.
type ReportEnvelope struct {
	ID                  string         `json:"id"`
	OwnerID             string         `json:"owner_id"`
	SubjectID           string         `json:"subject_id,omitempty"`
	Kind                ReportKind     `json:"kind"`
	Reference           string         `json:"reference"`
	CertificateNumber   string         `json:"certificate_number"`
	ClientName          string         `json:"client_name"`
	InstallationAddress string         `json:"installation_address"`
	InspectionDate      string         `json:"inspection_date"`
	InspectorName       string         `json:"inspector_name"`
	Status              ReportStatus   `json:"status"`
	EditVersion         int64          `json:"edit_version"`
	Payload             map[string]any `json:"payload,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	SyncedAt            time.Time      `json:"synced_at"`
	DeletedAt           *time.Time     `json:"deleted_at,omitempty"`
}
