package report

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voltcert/certsync/internal/model"
)

func init() {
	// Replace global logger with a no-op to avoid noise from the
	// fail-safe warn paths under test.
	zap.ReplaceGlobals(zap.NewNop())
}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

var envelopeCols = []string{
	"id", "owner_id", "subject_id", "kind", "reference", "certificate_number",
	"client_name", "installation_address", "inspection_date", "inspector_name",
	"status", "edit_version", "payload", "created_at", "updated_at", "synced_at",
}

func envelopeRow(id string) *pgxmock.Rows {
	now := time.Now().UTC()
	return pgxmock.NewRows(envelopeCols).AddRow(
		id, "owner-1", "", model.ReportKindEICR, "EICR-20260201T103000-abc123", "EICR-2026-001",
		"J Smith", "12 High St", "2026-02-01", "A Sparks",
		model.ReportStatusInProgress, int64(1), []byte(`{"clientName":"J Smith"}`), now, now, now,
	)
}

// -- List --

func TestList_ReturnsItems(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("owner-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT id, owner_id").
		WithArgs("owner-1", 20, 0).
		WillReturnRows(envelopeRow("r1"))

	result := store.List(context.Background(), "owner-1", ListOptions{})

	require.Len(t, result.Items, 1)
	assert.Equal(t, "r1", result.Items[0].ID)
	assert.Equal(t, "EICR-2026-001", result.Items[0].CertificateNumber)
	assert.Equal(t, 1, result.TotalCount)
	assert.False(t, result.HasMore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_HasMore(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("owner-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery("SELECT id, owner_id").
		WithArgs("owner-1", 1, 0).
		WillReturnRows(envelopeRow("r1"))

	result := store.List(context.Background(), "owner-1", ListOptions{Page: 1, PageSize: 1})

	assert.True(t, result.HasMore)
	assert.Equal(t, 5, result.TotalCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_FailureReturnsEmpty(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("owner-1").
		WillReturnError(assert.AnError)

	result := store.List(context.Background(), "owner-1", ListOptions{})

	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.TotalCount)
	assert.False(t, result.HasMore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_MissingOwnerReturnsEmpty(t *testing.T) {
	store, mock := newMockStore(t)

	result := store.List(context.Background(), "", ListOptions{})

	assert.Empty(t, result.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// -- Create --

func TestCreate_Success(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO reports").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	result := store.Create(context.Background(), "owner-1", model.ReportKindEICR,
		map[string]any{"clientName": "J Smith"}, "")

	assert.True(t, result.Success)
	assert.NotEmpty(t, result.ID)
	assert.False(t, result.Recovered)
	assert.Empty(t, result.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateCertificateRecoversToUpdate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO reports").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectQuery("SELECT id, owner_id").
		WithArgs("owner-1", "EICR-2026-001").
		WillReturnRows(envelopeRow("existing-id"))
	mock.ExpectExec("UPDATE reports SET").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	result := store.Create(context.Background(), "owner-1", model.ReportKindEICR,
		map[string]any{"certificateNumber": "EICR-2026-001"}, "")

	assert.True(t, result.Success)
	assert.True(t, result.Recovered)
	assert.Equal(t, "existing-id", result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateButLookupFails(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO reports").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectQuery("SELECT id, owner_id").
		WithArgs("owner-1", "EICR-2026-001").
		WillReturnError(pgx.ErrNoRows)

	result := store.Create(context.Background(), "owner-1", model.ReportKindEICR,
		map[string]any{"certificateNumber": "EICR-2026-001"}, "")

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_RejectsBadInput(t *testing.T) {
	store, mock := newMockStore(t)

	noOwner := store.Create(context.Background(), "", model.ReportKindEICR, nil, "")
	assert.False(t, noOwner.Success)
	assert.Equal(t, "owner id is required", noOwner.Error)

	badKind := store.Create(context.Background(), "owner-1", "invoice", nil, "")
	assert.False(t, badKind.Success)
	assert.Contains(t, badKind.Error, "unknown report kind")

	assert.NoError(t, mock.ExpectationsWereMet())
}

// -- Update --

func TestUpdate_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE reports SET").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	result := store.Update(context.Background(), "missing", "owner-1", map[string]any{}, "")

	assert.False(t, result.Success)
	assert.Equal(t, "report not found", result.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_Success(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE reports SET").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	result := store.Update(context.Background(), "r1", "owner-1",
		map[string]any{"clientName": "J Smith"}, "subject-9")

	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// -- GetPayload --

func TestGetPayload_Found(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT payload FROM reports").
		WithArgs("r1", "owner-1").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow([]byte(`{"clientName":"J Smith"}`)))

	payload := store.GetPayload(context.Background(), "r1", "owner-1")

	require.NotNil(t, payload)
	assert.Equal(t, "J Smith", payload["clientName"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPayload_NotFoundReturnsNil(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT payload FROM reports").
		WithArgs("missing", "owner-1").
		WillReturnError(pgx.ErrNoRows)

	assert.Nil(t, store.GetPayload(context.Background(), "missing", "owner-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPayload_QueryFailureReturnsNil(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT payload FROM reports").
		WithArgs("r1", "owner-1").
		WillReturnError(assert.AnError)

	assert.Nil(t, store.GetPayload(context.Background(), "r1", "owner-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// -- SoftDelete --

func TestSoftDelete_Success(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT soft_delete_report").
		WithArgs("owner-1", "r1").
		WillReturnRows(pgxmock.NewRows([]string{"result"}).
			AddRow([]byte(`{"success": true, "message": "report deleted"}`)))

	result := store.SoftDelete(context.Background(), "r1", "owner-1")

	assert.True(t, result.Success)
	assert.False(t, result.AlreadyDeleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDelete_AlreadyDeleted(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT soft_delete_report").
		WithArgs("owner-1", "r1").
		WillReturnRows(pgxmock.NewRows([]string{"result"}).
			AddRow([]byte(`{"success": true, "already_deleted": true}`)))

	result := store.SoftDelete(context.Background(), "r1", "owner-1")

	assert.True(t, result.Success)
	assert.True(t, result.AlreadyDeleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDelete_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT soft_delete_report").
		WithArgs("owner-1", "missing").
		WillReturnRows(pgxmock.NewRows([]string{"result"}).
			AddRow([]byte(`{"success": false, "error": "not_found", "message": "report not found"}`)))

	result := store.SoftDelete(context.Background(), "missing", "owner-1")

	assert.False(t, result.Success)
	assert.Equal(t, "report not found", result.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// -- FindByCertificateNumber --

func TestFindByCertificateNumber_NoRowIsNotAnError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, owner_id").
		WithArgs("owner-1", "EICR-2099-999").
		WillReturnError(pgx.ErrNoRows)

	env, err := store.FindByCertificateNumber(context.Background(), "owner-1", "EICR-2099-999")

	assert.NoError(t, err)
	assert.Nil(t, env)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// -- Versioning --

func TestGetEditVersion(t *testing.T) {
	store, mock := newMockStore(t)
	updated := time.Now().UTC()

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("r1", "owner-1").
		WillReturnRows(pgxmock.NewRows([]string{"edit_version", "updated_at"}).AddRow(int64(3), updated))

	vi := store.GetEditVersion(context.Background(), "r1", "owner-1")

	require.NotNil(t, vi)
	assert.Equal(t, int64(3), vi.Version)
	assert.Equal(t, updated, vi.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckVersionConflict_FailsOpen(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("r1", "owner-1").
		WillReturnError(assert.AnError)

	check := store.CheckVersionConflict(context.Background(), "r1", "owner-1", 4)

	assert.False(t, check.HasConflict)
	assert.Equal(t, int64(4), check.LocalVersion)
	assert.Equal(t, int64(4), check.ServerVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckVersionConflict_ServerAhead(t *testing.T) {
	store, mock := newMockStore(t)
	updated := time.Now().UTC()

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("r1", "owner-1").
		WillReturnRows(pgxmock.NewRows([]string{"edit_version", "updated_at"}).AddRow(int64(5), updated))
	mock.ExpectQuery("SELECT payload FROM reports").
		WithArgs("r1", "owner-1").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow([]byte(`{"clientName":"Newer"}`)))

	check := store.CheckVersionConflict(context.Background(), "r1", "owner-1", 2)

	assert.True(t, check.HasConflict)
	assert.Equal(t, int64(5), check.ServerVersion)
	assert.Equal(t, "Newer", check.ServerData["clientName"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithVersionCheck_Success(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE reports SET").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	result := store.UpdateWithVersionCheck(context.Background(), "r1", "owner-1",
		map[string]any{"clientName": "J Smith"}, 1, "")

	assert.True(t, result.Success)
	assert.Nil(t, result.Conflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithVersionCheck_Conflict(t *testing.T) {
	store, mock := newMockStore(t)
	updated := time.Now().UTC()

	mock.ExpectExec("UPDATE reports SET").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("r1", "owner-1").
		WillReturnRows(pgxmock.NewRows([]string{"edit_version", "updated_at"}).AddRow(int64(7), updated))
	mock.ExpectQuery("SELECT payload FROM reports").
		WithArgs("r1", "owner-1").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow([]byte(`{"clientName":"Server copy"}`)))

	result := store.UpdateWithVersionCheck(context.Background(), "r1", "owner-1",
		map[string]any{"clientName": "Local copy"}, 2, "")

	assert.False(t, result.Success)
	require.NotNil(t, result.Conflict)
	assert.True(t, result.Conflict.HasConflict)
	assert.Equal(t, int64(2), result.Conflict.LocalVersion)
	assert.Equal(t, int64(7), result.Conflict.ServerVersion)
	assert.Equal(t, "Server copy", result.Conflict.ServerData["clientName"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithVersionCheck_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE reports SET").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("missing", "owner-1").
		WillReturnError(pgx.ErrNoRows)

	result := store.UpdateWithVersionCheck(context.Background(), "missing", "owner-1",
		map[string]any{}, 1, "")

	assert.False(t, result.Success)
	assert.Nil(t, result.Conflict)
	assert.Equal(t, "report not found", result.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// -- Migrate --

func TestMigrate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS reports").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationSQL(t *testing.T) {
	assert.Contains(t, postgresMigration, "CREATE UNIQUE INDEX IF NOT EXISTS idx_reports_owner_certno_live")
	assert.Contains(t, postgresMigration, "WHERE deleted_at IS NULL")
	assert.Contains(t, postgresMigration, "SECURITY DEFINER")
	assert.Contains(t, postgresMigration, "soft_delete_report")
	assert.Contains(t, postgresMigration, "already_deleted")
}

// -- pageWindow --

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name       string
		opts       ListOptions
		wantLimit  int
		wantOffset int
	}{
		{"defaults", ListOptions{}, 20, 0},
		{"second page", ListOptions{Page: 2, PageSize: 10}, 10, 10},
		{"limit overrides paging", ListOptions{Page: 3, PageSize: 10, Limit: 5}, 5, 0},
		{"negative page clamps", ListOptions{Page: -1, PageSize: 10}, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := pageWindow(tt.opts)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}
