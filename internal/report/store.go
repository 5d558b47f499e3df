// Package report persists certificate report envelopes in a remote
// store, scoped per owner, with cooperative optimistic versioning.
//
// Every operation takes the owner identity explicitly; this package
// performs no authentication. Remote failures never escape as panics or
// raw errors: each method resolves to a structured result the caller
// can branch on, and the list/fetch paths fail safe to empty results.
package report

import (
	"context"
	"time"

	"github.com/voltcert/certsync/internal/model"
)

// ListOptions controls pagination of List. When Limit is set it
// overrides Page/PageSize and returns at most Limit newest items.
type ListOptions struct {
	Page     int `json:"page,omitempty"`
	PageSize int `json:"page_size,omitempty"`
	Limit    int `json:"limit,omitempty"`
}

// ListResult is the outcome of a List call. A remote failure yields an
// empty result rather than an error.
type ListResult struct {
	Items      []model.ReportEnvelope `json:"items"`
	TotalCount int                    `json:"total_count"`
	HasMore    bool                   `json:"has_more"`
}

// CreateResult reports the outcome of Create. Recovered is set when a
// duplicate certificate number converted the create into an update of
// the existing live envelope; ID then identifies that envelope.
type CreateResult struct {
	Success   bool   `json:"success"`
	ID        string `json:"id,omitempty"`
	Recovered bool   `json:"recovered,omitempty"`
	Error     string `json:"error,omitempty"`
}

// UpdateResult reports the outcome of an unconditional Update.
type UpdateResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DeleteResult reports the outcome of SoftDelete. AlreadyDeleted marks
// a repeat delete, which callers may treat as success.
type DeleteResult struct {
	Success        bool   `json:"success"`
	AlreadyDeleted bool   `json:"already_deleted,omitempty"`
	Error          string `json:"error,omitempty"`
}

// VersionInfo is the envelope's current edit version and last update
// time, fetched without the payload.
type VersionInfo struct {
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VersionCheck is the result of comparing a caller-held version against
// the server's. On conflict it carries the server's current payload so
// the caller can offer a merge/overwrite decision.
type VersionCheck struct {
	HasConflict     bool           `json:"has_conflict"`
	LocalVersion    int64          `json:"local_version"`
	ServerVersion   int64          `json:"server_version"`
	ServerData      map[string]any `json:"server_data,omitempty"`
	ServerUpdatedAt time.Time      `json:"server_updated_at,omitzero"`
}

// VersionedUpdateResult is the outcome of UpdateWithVersionCheck. A
// conflict is a normal branch, not an error: the write was withheld and
// Conflict carries the server state to reconcile against.
type VersionedUpdateResult struct {
	Success  bool          `json:"success"`
	Conflict *VersionCheck `json:"conflict,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Store is the versioned report envelope store. Implementations exist
// for Postgres and SQLite.
type Store interface {
	// List returns the owner's live envelopes, newest-updated first.
	List(ctx context.Context, ownerID string, opts ListOptions) ListResult

	// Create inserts a new envelope, deriving certificate number,
	// reference and lifecycle status from the payload. A duplicate live
	// certificate number for the owner is recovered by updating the
	// existing envelope instead.
	Create(ctx context.Context, ownerID string, kind model.ReportKind, payload map[string]any, subjectID string) CreateResult

	// Update overwrites the payload and denormalized fields and
	// recomputes lifecycle status. It neither checks nor advances the
	// edit version; use UpdateWithVersionCheck for concurrency safety.
	Update(ctx context.Context, id, ownerID string, payload map[string]any, subjectID string) UpdateResult

	// GetPayload returns the live envelope's payload, or nil on absence
	// or failure.
	GetPayload(ctx context.Context, id, ownerID string) map[string]any

	// SoftDelete marks the envelope deleted via privileged server-side
	// logic. Deleted envelopes disappear from every read path.
	SoftDelete(ctx context.Context, id, ownerID string) DeleteResult

	// FindByCertificateNumber is a point lookup of the owner's live
	// envelope with that certificate number; (nil, nil) when absent.
	FindByCertificateNumber(ctx context.Context, ownerID, certificateNumber string) (*model.ReportEnvelope, error)

	// GetEditVersion reads the current version counter without the
	// payload; a missing counter reads as version 1. Returns nil on
	// absence or failure.
	GetEditVersion(ctx context.Context, id, ownerID string) *VersionInfo

	// CheckVersionConflict reports HasConflict when the server version
	// exceeds expectedVersion, including the server's payload. It fails
	// open on lookup failure: a save is never blocked by a failed check.
	CheckVersionConflict(ctx context.Context, id, ownerID string, expectedVersion int64) VersionCheck

	// UpdateWithVersionCheck writes only if the server version has not
	// advanced past expectedVersion, bumping the counter; the check and
	// write are one conditional statement.
	UpdateWithVersionCheck(ctx context.Context, id, ownerID string, payload map[string]any, expectedVersion int64, subjectID string) VersionedUpdateResult

	// Migrate creates or updates the store schema.
	Migrate(ctx context.Context) error

	Close() error
}
