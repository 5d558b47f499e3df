package report

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/voltcert/certsync/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies
// it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const envelopeColumns = `id, owner_id, COALESCE(subject_id, ''), kind, reference, certificate_number,
	client_name, installation_address, inspection_date, inspector_name,
	status, COALESCE(edit_version, 1), payload, created_at, updated_at, synced_at`

// preparedStatements lists the hottest queries to prepare on each new
// connection.
var preparedStatements = map[string]string{
	"get_payload":      `SELECT payload FROM reports WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`,
	"get_edit_version": `SELECT COALESCE(edit_version, 1), updated_at FROM reports WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
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
	edit_version         BIGINT,
	payload              JSONB NOT NULL,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	synced_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at           TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_reports_owner_certno_live
	ON reports(owner_id, certificate_number) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_reports_owner_updated
	ON reports(owner_id, updated_at DESC) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_reports_owner_status
	ON reports(owner_id, status) WHERE deleted_at IS NULL;

CREATE OR REPLACE FUNCTION soft_delete_report(p_owner_id TEXT, p_report_id TEXT)
RETURNS JSONB
LANGUAGE plpgsql
SECURITY DEFINER
AS $$
DECLARE
	v_deleted TIMESTAMPTZ;
BEGIN
	SELECT deleted_at INTO v_deleted
	FROM reports
	WHERE id = p_report_id AND owner_id = p_owner_id;

	IF NOT FOUND THEN
		RETURN jsonb_build_object(
			'success', false,
			'error', 'not_found',
			'message', 'report not found');
	END IF;

	IF v_deleted IS NOT NULL THEN
		RETURN jsonb_build_object(
			'success', true,
			'already_deleted', true,
			'message', 'report already deleted');
	END IF;

	UPDATE reports
	SET deleted_at = now(), updated_at = now()
	WHERE id = p_report_id AND owner_id = p_owner_id;

	RETURN jsonb_build_object('success', true, 'message', 'report deleted');
END;
$$;
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) List(ctx context.Context, ownerID string, opts ListOptions) ListResult {
	empty := ListResult{Items: []model.ReportEnvelope{}}
	if ownerID == "" {
		return empty
	}

	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reports WHERE owner_id = $1 AND deleted_at IS NULL`,
		ownerID,
	).Scan(&total)
	if err != nil {
		zap.L().Warn("report list failed, returning empty result",
			zap.String("owner_id", ownerID), zap.Error(err))
		return empty
	}

	limit, offset := pageWindow(opts)

	rows, err := s.pool.Query(ctx,
		`SELECT `+envelopeColumns+` FROM reports
		 WHERE owner_id = $1 AND deleted_at IS NULL
		 ORDER BY updated_at DESC
		 LIMIT $2 OFFSET $3`,
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
		env, err := scanEnvelope(rows)
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

func (s *PostgresStore) Create(ctx context.Context, ownerID string, kind model.ReportKind, payload map[string]any, subjectID string) CreateResult {
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
	certNo := certificateNumber(kind, payload, now)
	sum := extractSummary(payload)

	_, err = s.pool.Exec(ctx,
		`INSERT INTO reports
		 (id, owner_id, subject_id, kind, reference, certificate_number,
		  client_name, installation_address, inspection_date, inspector_name,
		  status, edit_version, payload, created_at, updated_at, synced_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		id, ownerID, nullIfEmpty(subjectID), string(kind), newReference(kind, now), certNo,
		sum.clientName, sum.installationAddress, sum.inspectionDate, sum.inspectorName,
		string(DeriveStatus(payload)), int64(1), payloadJSON, now, now, now,
	)
	if err == nil {
		return CreateResult{Success: true, ID: id}
	}

	// A duplicate live certificate number for this owner becomes an
	// update of the existing envelope, making create idempotent by
	// certificate number under double submits.
	if isUniqueViolation(err) {
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

func (s *PostgresStore) Update(ctx context.Context, id, ownerID string, payload map[string]any, subjectID string) UpdateResult {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return UpdateResult{Error: "marshal payload: " + err.Error()}
	}

	now := time.Now().UTC()
	sum := extractSummary(payload)

	tag, err := s.pool.Exec(ctx,
		`UPDATE reports SET
			payload = $1,
			status = $2,
			certificate_number = COALESCE(NULLIF($3, ''), certificate_number),
			client_name = $4,
			installation_address = $5,
			inspection_date = $6,
			inspector_name = $7,
			subject_id = COALESCE($8, subject_id),
			updated_at = $9,
			synced_at = $9
		 WHERE id = $10 AND owner_id = $11 AND deleted_at IS NULL`,
		payloadJSON, string(DeriveStatus(payload)), payloadString(payload, "certificateNumber"),
		sum.clientName, sum.installationAddress, sum.inspectionDate, sum.inspectorName,
		nullIfEmpty(subjectID), now, id, ownerID,
	)
	if err != nil {
		return UpdateResult{Error: "update report: " + err.Error()}
	}
	if tag.RowsAffected() == 0 {
		return UpdateResult{Error: "report not found"}
	}
	return UpdateResult{Success: true}
}

func (s *PostgresStore) GetPayload(ctx context.Context, id, ownerID string) map[string]any {
	var payloadJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM reports WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`,
		id, ownerID,
	).Scan(&payloadJSON)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			zap.L().Warn("report payload fetch failed, returning nil",
				zap.String("report_id", id), zap.Error(err))
		}
		return nil
	}

	var payload map[string]any
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		zap.L().Warn("report payload unmarshal failed, returning nil",
			zap.String("report_id", id), zap.Error(err))
		return nil
	}
	return payload
}

// softDeleteResult mirrors the structured jsonb returned by the
// soft_delete_report procedure.
type softDeleteResult struct {
	Success        bool   `json:"success"`
	Error          string `json:"error"`
	Message        string `json:"message"`
	AlreadyDeleted bool   `json:"already_deleted"`
}

func (s *PostgresStore) SoftDelete(ctx context.Context, id, ownerID string) DeleteResult {
	var resultJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT soft_delete_report($1, $2)`,
		ownerID, id,
	).Scan(&resultJSON)
	if err != nil {
		return DeleteResult{Error: "soft delete report: " + err.Error()}
	}

	var r softDeleteResult
	if err := json.Unmarshal(resultJSON, &r); err != nil {
		return DeleteResult{Error: "soft delete report: decode result: " + err.Error()}
	}

	if !r.Success {
		msg := r.Message
		if msg == "" {
			msg = r.Error
		}
		return DeleteResult{Error: msg}
	}
	return DeleteResult{Success: true, AlreadyDeleted: r.AlreadyDeleted}
}

func (s *PostgresStore) FindByCertificateNumber(ctx context.Context, ownerID, certificateNumber string) (*model.ReportEnvelope, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+envelopeColumns+` FROM reports
		 WHERE owner_id = $1 AND certificate_number = $2 AND deleted_at IS NULL
		 LIMIT 1`,
		ownerID, certificateNumber,
	)
	env, err := scanEnvelope(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: find by certificate number")
	}
	return env, nil
}

func (s *PostgresStore) GetEditVersion(ctx context.Context, id, ownerID string) *VersionInfo {
	var vi VersionInfo
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(edit_version, 1), updated_at FROM reports
		 WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`,
		id, ownerID,
	).Scan(&vi.Version, &vi.UpdatedAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			zap.L().Warn("report version fetch failed, returning nil",
				zap.String("report_id", id), zap.Error(err))
		}
		return nil
	}
	return &vi
}

func (s *PostgresStore) CheckVersionConflict(ctx context.Context, id, ownerID string, expectedVersion int64) VersionCheck {
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

func (s *PostgresStore) UpdateWithVersionCheck(ctx context.Context, id, ownerID string, payload map[string]any, expectedVersion int64, subjectID string) VersionedUpdateResult {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return VersionedUpdateResult{Error: "marshal payload: " + err.Error()}
	}

	now := time.Now().UTC()
	sum := extractSummary(payload)

	// The version check and the write are one conditional statement, so
	// a concurrent writer cannot slip between them.
	tag, err := s.pool.Exec(ctx,
		`UPDATE reports SET
			payload = $1,
			status = $2,
			certificate_number = COALESCE(NULLIF($3, ''), certificate_number),
			client_name = $4,
			installation_address = $5,
			inspection_date = $6,
			inspector_name = $7,
			subject_id = COALESCE($8, subject_id),
			edit_version = COALESCE(edit_version, 1) + 1,
			updated_at = $9,
			synced_at = $9
		 WHERE id = $10 AND owner_id = $11 AND deleted_at IS NULL
		   AND COALESCE(edit_version, 1) <= $12`,
		payloadJSON, string(DeriveStatus(payload)), payloadString(payload, "certificateNumber"),
		sum.clientName, sum.installationAddress, sum.inspectionDate, sum.inspectorName,
		nullIfEmpty(subjectID), now, id, ownerID, expectedVersion,
	)
	if err != nil {
		return VersionedUpdateResult{Error: "versioned update: " + err.Error()}
	}
	if tag.RowsAffected() == 1 {
		return VersionedUpdateResult{Success: true}
	}

	check := s.CheckVersionConflict(ctx, id, ownerID, expectedVersion)
	if check.HasConflict {
		return VersionedUpdateResult{Conflict: &check}
	}
	return VersionedUpdateResult{Error: "report not found"}
}

// pageWindow resolves ListOptions into a limit/offset pair. A Limit
// overrides pagination for "recent N" views.
func pageWindow(opts ListOptions) (limit, offset int) {
	if opts.Limit > 0 {
		return opts.Limit, 0
	}
	size := opts.PageSize
	if size <= 0 {
		size = 20
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	return size, (page - 1) * size
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// scannable lets scanEnvelope work on both pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanEnvelope(row scannable) (*model.ReportEnvelope, error) {
	var env model.ReportEnvelope
	var payloadJSON []byte

	err := row.Scan(
		&env.ID, &env.OwnerID, &env.SubjectID, &env.Kind, &env.Reference, &env.CertificateNumber,
		&env.ClientName, &env.InstallationAddress, &env.InspectionDate, &env.InspectorName,
		&env.Status, &env.EditVersion, &payloadJSON, &env.CreatedAt, &env.UpdatedAt, &env.SyncedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(payloadJSON) > 0 {
		if err := json.Unmarshal(payloadJSON, &env.Payload); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal payload")
		}
	}
	return &env, nil
}
