package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/voltcert/certsync/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite, for local and
// single-tenant deployments. Timestamps are stored as RFC 3339 text.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures
// WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS reports (
	id                   TEXT PRIMARY KEY,
	owner_id             TEXT NOT NULL,
	subject_id           TEXT,
	kind                 TEXT NOT NULL,
	reference            TEXT NOT NULL UNIQUE,
	certificate_number   TEXT NOT NULL,
	client_name          TEXT NOT NULL DEFAULT '',
	installation_address TEXT NOT NULL DEFAULT '',
	inspection_date      TEXT NOT NULL DEFAULT '',
	inspector_name       TEXT NOT NULL DEFAULT '',
	status               TEXT NOT NULL DEFAULT 'draft',
	edit_version         INTEGER,
	payload              TEXT NOT NULL,
	created_at           TEXT NOT NULL,
	updated_at           TEXT NOT NULL,
	synced_at            TEXT NOT NULL,
	deleted_at           TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_reports_owner_certno_live
	ON reports(owner_id, certificate_number) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_reports_owner_updated
	ON reports(owner_id, updated_at DESC) WHERE deleted_at IS NULL;
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteEnvelopeColumns = `id, owner_id, COALESCE(subject_id, ''), kind, reference, certificate_number,
	client_name, installation_address, inspection_date, inspector_name,
	status, COALESCE(edit_version, 1), payload, created_at, updated_at, synced_at`

func (s *SQLiteStore) List(ctx context.Context, ownerID string, opts ListOptions) ListResult {
	empty := ListResult{Items: []model.ReportEnvelope{}}
	if ownerID == "" {
		return empty
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reports WHERE owner_id = ? AND deleted_at IS NULL`,
		ownerID,
	).Scan(&total)
	if err != nil {
		zap.L().Warn("report list failed, returning empty result",
			zap.String("owner_id", ownerID), zap.Error(err))
		return empty
	}

	limit, offset := pageWindow(opts)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteEnvelopeColumns+` FROM reports
		 WHERE owner_id = ? AND deleted_at IS NULL
		 ORDER BY updated_at DESC
		 LIMIT ? OFFSET ?`,
		ownerID, limit, offset,
	)
	if err != nil {
		zap.L().Warn("report list failed, returning empty result",
			zap.String("owner_id", ownerID), zap.Error(err))
		return empty
	}
	defer rows.Close()

	items := []model.ReportEnvelope{}
	for rows.Next() {
		env, err := scanSQLiteEnvelope(rows)
		if err != nil {
			zap.L().Warn("report list scan failed, returning empty result",
				zap.String("owner_id", ownerID), zap.Error(err))
			return empty
		}
		items = append(items, *env)
	}
	if err := rows.Err(); err != nil {
		zap.L().Warn("report list iteration failed, returning empty result",
			zap.String("owner_id", ownerID), zap.Error(err))
		return empty
	}

	return ListResult{
		Items:      items,
		TotalCount: total,
		HasMore:    offset+len(items) < total,
	}
}

func (s *SQLiteStore) Create(ctx context.Context, ownerID string, kind model.ReportKind, payload map[string]any, subjectID string) CreateResult {
	if ownerID == "" {
		return CreateResult{Error: "owner id is required"}
	}
	if !kind.IsValid() {
		return CreateResult{Error: "unknown report kind: " + string(kind)}
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return CreateResult{Error: "marshal payload: " + err.Error()}
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339Nano)
	certNo := certificateNumber(kind, payload, now)
	sum := extractSummary(payload)

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports
		 (id, owner_id, subject_id, kind, reference, certificate_number,
		  client_name, installation_address, inspection_date, inspector_name,
		  status, edit_version, payload, created_at, updated_at, synced_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, ownerID, nullIfEmpty(subjectID), string(kind), newReference(kind, now), certNo,
		sum.clientName, sum.installationAddress, sum.inspectionDate, sum.inspectorName,
		string(DeriveStatus(payload)), int64(1), string(payloadJSON), nowStr, nowStr, nowStr,
	)
	if err == nil {
		return CreateResult{Success: true, ID: id}
	}

	if strings.Contains(err.Error(), "UNIQUE constraint") {
		existing, findErr := s.FindByCertificateNumber(ctx, ownerID, certNo)
		if findErr == nil && existing != nil {
			upd := s.Update(ctx, existing.ID, ownerID, payload, subjectID)
			if upd.Success {
				return CreateResult{Success: true, ID: existing.ID, Recovered: true}
			}
			return CreateResult{Error: upd.Error}
		}
	}

	return CreateResult{Error: "create report: " + err.Error()}
}

func (s *SQLiteStore) Update(ctx context.Context, id, ownerID string, payload map[string]any, subjectID string) UpdateResult {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return UpdateResult{Error: "marshal payload: " + err.Error()}
	}

	nowStr := time.Now().UTC().Format(time.RFC3339Nano)
	sum := extractSummary(payload)

	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET
			payload = ?,
			status = ?,
			certificate_number = COALESCE(NULLIF(?, ''), certificate_number),
			client_name = ?,
			installation_address = ?,
			inspection_date = ?,
			inspector_name = ?,
			subject_id = COALESCE(?, subject_id),
			updated_at = ?,
			synced_at = ?
		 WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`,
		string(payloadJSON), string(DeriveStatus(payload)), payloadString(payload, "certificateNumber"),
		sum.clientName, sum.installationAddress, sum.inspectionDate, sum.inspectorName,
		nullIfEmpty(subjectID), nowStr, nowStr, id, ownerID,
	)
	if err != nil {
		return UpdateResult{Error: "update report: " + err.Error()}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return UpdateResult{Error: "report not found"}
	}
	return UpdateResult{Success: true}
}

func (s *SQLiteStore) GetPayload(ctx context.Context, id, ownerID string) map[string]any {
	var payloadJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM reports WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`,
		id, ownerID,
	).Scan(&payloadJSON)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			zap.L().Warn("report payload fetch failed, returning nil",
				zap.String("report_id", id), zap.Error(err))
		}
		return nil
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		zap.L().Warn("report payload unmarshal failed, returning nil",
			zap.String("report_id", id), zap.Error(err))
		return nil
	}
	return payload
}

// SoftDelete emulates the Postgres soft_delete_report procedure inside
// a transaction, producing the same structured outcome.
func (s *SQLiteStore) SoftDelete(ctx context.Context, id, ownerID string) DeleteResult {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DeleteResult{Error: "soft delete report: " + err.Error()}
	}
	defer tx.Rollback()

	var deletedAt sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT deleted_at FROM reports WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	).Scan(&deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return DeleteResult{Error: "report not found"}
	}
	if err != nil {
		return DeleteResult{Error: "soft delete report: " + err.Error()}
	}
	if deletedAt.Valid {
		return DeleteResult{Success: true, AlreadyDeleted: true}
	}

	nowStr := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`UPDATE reports SET deleted_at = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		nowStr, nowStr, id, ownerID,
	); err != nil {
		return DeleteResult{Error: "soft delete report: " + err.Error()}
	}
	if err := tx.Commit(); err != nil {
		return DeleteResult{Error: "soft delete report: " + err.Error()}
	}
	return DeleteResult{Success: true}
}

func (s *SQLiteStore) FindByCertificateNumber(ctx context.Context, ownerID, certificateNumber string) (*model.ReportEnvelope, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteEnvelopeColumns+` FROM reports
		 WHERE owner_id = ? AND certificate_number = ? AND deleted_at IS NULL
		 LIMIT 1`,
		ownerID, certificateNumber,
	)
	env, err := scanSQLiteEnvelope(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: find by certificate number")
	}
	return env, nil
}

func (s *SQLiteStore) GetEditVersion(ctx context.Context, id, ownerID string) *VersionInfo {
	var version int64
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(edit_version, 1), updated_at FROM reports
		 WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`,
		id, ownerID,
	).Scan(&version, &updatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			zap.L().Warn("report version fetch failed, returning nil",
				zap.String("report_id", id), zap.Error(err))
		}
		return nil
	}
	ts, _ := time.Parse(time.RFC3339Nano, updatedAt)
	return &VersionInfo{Version: version, UpdatedAt: ts}
}

func (s *SQLiteStore) CheckVersionConflict(ctx context.Context, id, ownerID string, expectedVersion int64) VersionCheck {
	vi := s.GetEditVersion(ctx, id, ownerID)
	if vi == nil {
		// Fail open: a failed lookup must not block a save.
		return VersionCheck{LocalVersion: expectedVersion, ServerVersion: expectedVersion}
	}

	check := VersionCheck{
		LocalVersion:    expectedVersion,
		ServerVersion:   vi.Version,
		ServerUpdatedAt: vi.UpdatedAt,
	}
	if vi.Version > expectedVersion {
		check.HasConflict = true
		check.ServerData = s.GetPayload(ctx, id, ownerID)
	}
	return check
}

func (s *SQLiteStore) UpdateWithVersionCheck(ctx context.Context, id, ownerID string, payload map[string]any, expectedVersion int64, subjectID string) VersionedUpdateResult {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return VersionedUpdateResult{Error: "marshal payload: " + err.Error()}
	}

	nowStr := time.Now().UTC().Format(time.RFC3339Nano)
	sum := extractSummary(payload)

	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET
			payload = ?,
			status = ?,
			certificate_number = COALESCE(NULLIF(?, ''), certificate_number),
			client_name = ?,
			installation_address = ?,
			inspection_date = ?,
			inspector_name = ?,
			subject_id = COALESCE(?, subject_id),
			edit_version = COALESCE(edit_version, 1) + 1,
			updated_at = ?,
			synced_at = ?
		 WHERE id = ? AND owner_id = ? AND deleted_at IS NULL
		   AND COALESCE(edit_version, 1) <= ?`,
		string(payloadJSON), string(DeriveStatus(payload)), payloadString(payload, "certificateNumber"),
		sum.clientName, sum.installationAddress, sum.inspectionDate, sum.inspectorName,
		nullIfEmpty(subjectID), nowStr, nowStr, id, ownerID, expectedVersion,
	)
	if err != nil {
		return VersionedUpdateResult{Error: "versioned update: " + err.Error()}
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return VersionedUpdateResult{Success: true}
	}

	check := s.CheckVersionConflict(ctx, id, ownerID, expectedVersion)
	if check.HasConflict {
		return VersionedUpdateResult{Conflict: &check}
	}
	return VersionedUpdateResult{Error: "report not found"}
}

func scanSQLiteEnvelope(row scannable) (*model.ReportEnvelope, error) {
	var env model.ReportEnvelope
	var payloadJSON, createdAt, updatedAt, syncedAt string

	err := row.Scan(
		&env.ID, &env.OwnerID, &env.SubjectID, &env.Kind, &env.Reference, &env.CertificateNumber,
		&env.ClientName, &env.InstallationAddress, &env.InspectionDate, &env.InspectorName,
		&env.Status, &env.EditVersion, &payloadJSON, &createdAt, &updatedAt, &syncedAt,
	)
	if err != nil {
		return nil, err
	}

	env.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	env.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	env.SyncedAt, _ = time.Parse(time.RFC3339Nano, syncedAt)

	if payloadJSON != "" {
		if err := json.Unmarshal([]byte(payloadJSON), &env.Payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal payload")
		}
	}
	return &env, nil
}
