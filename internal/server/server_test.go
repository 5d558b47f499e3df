package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voltcert/certsync/internal/config"
	"github.com/voltcert/certsync/internal/report"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := report.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	srv := New(st, config.ServerConfig{
		AllowedOrigins: []string{"*"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, owner string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set("X-Owner-ID", owner)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createReport(t *testing.T, ts *httptest.Server, owner string, payload map[string]any) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/reports", owner, map[string]any{
		"kind":    "eicr",
		"payload": payload,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	result := decode[report.CreateResult](t, resp)
	require.True(t, result.Success, result.Error)
	return result.ID
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReports_RequireOwnerHeader(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/reports", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestReports_CreateAndList(t *testing.T) {
	ts := newTestServer(t)

	id := createReport(t, ts, "owner-1", map[string]any{"clientName": "J Smith"})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/reports", "owner-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[report.ListResult](t, resp)
	require.Len(t, result.Items, 1)
	assert.Equal(t, id, result.Items[0].ID)
	assert.Equal(t, "J Smith", result.Items[0].ClientName)

	// Another owner sees an empty list, not an error.
	other := doJSON(t, http.MethodGet, ts.URL+"/api/reports", "owner-2", nil)
	require.Equal(t, http.StatusOK, other.StatusCode)
	assert.Empty(t, decode[report.ListResult](t, other).Items)
}

func TestReports_CreateInvalidKind(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/reports", "owner-1", map[string]any{
		"kind":    "invoice",
		"payload": map[string]any{},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestReports_DuplicateCertificateRecovery(t *testing.T) {
	ts := newTestServer(t)

	payload := map[string]any{"certificateNumber": "EICR-2026-001", "clientName": "First"}
	id := createReport(t, ts, "owner-1", payload)

	payload["clientName"] = "Second"
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/reports", "owner-1", map[string]any{
		"kind":    "eicr",
		"payload": payload,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[report.CreateResult](t, resp)
	assert.True(t, result.Recovered)
	assert.Equal(t, id, result.ID)
}

func TestReports_GetPayload(t *testing.T) {
	ts := newTestServer(t)

	id := createReport(t, ts, "owner-1", map[string]any{"clientName": "J Smith"})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/reports/"+id, "owner-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "J Smith", decode[map[string]any](t, resp)["clientName"])

	missing := doJSON(t, http.MethodGet, ts.URL+"/api/reports/nope", "owner-1", nil)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	wrongOwner := doJSON(t, http.MethodGet, ts.URL+"/api/reports/"+id, "owner-2", nil)
	assert.Equal(t, http.StatusNotFound, wrongOwner.StatusCode)
}

func TestReports_Update(t *testing.T) {
	ts := newTestServer(t)

	id := createReport(t, ts, "owner-1", map[string]any{})

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/reports/"+id, "owner-1", map[string]any{
		"payload": map[string]any{"clientName": "J Smith"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	missing := doJSON(t, http.MethodPut, ts.URL+"/api/reports/nope", "owner-1", map[string]any{
		"payload": map[string]any{},
	})
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestReports_VersionedUpdateConflict(t *testing.T) {
	ts := newTestServer(t)

	id := createReport(t, ts, "owner-1", map[string]any{"clientName": "A"})

	ok := doJSON(t, http.MethodPut, ts.URL+"/api/reports/"+id+"/versioned", "owner-1", map[string]any{
		"payload":         map[string]any{"clientName": "B"},
		"expectedVersion": 1,
	})
	require.Equal(t, http.StatusOK, ok.StatusCode)

	stale := doJSON(t, http.MethodPut, ts.URL+"/api/reports/"+id+"/versioned", "owner-1", map[string]any{
		"payload":         map[string]any{"clientName": "C"},
		"expectedVersion": 1,
	})
	require.Equal(t, http.StatusConflict, stale.StatusCode)

	result := decode[report.VersionedUpdateResult](t, stale)
	require.NotNil(t, result.Conflict)
	assert.Equal(t, int64(2), result.Conflict.ServerVersion)
	assert.Equal(t, "B", result.Conflict.ServerData["clientName"])
}

func TestReports_VersionEndpoints(t *testing.T) {
	ts := newTestServer(t)

	id := createReport(t, ts, "owner-1", map[string]any{})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/reports/"+id+"/version", "owner-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), decode[report.VersionInfo](t, resp).Version)

	check := doJSON(t, http.MethodPost, ts.URL+"/api/reports/"+id+"/version/check", "owner-1",
		map[string]any{"expectedVersion": 1})
	require.Equal(t, http.StatusOK, check.StatusCode)
	assert.False(t, decode[report.VersionCheck](t, check).HasConflict)

	missing := doJSON(t, http.MethodGet, ts.URL+"/api/reports/nope/version", "owner-1", nil)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestReports_SoftDelete(t *testing.T) {
	ts := newTestServer(t)

	id := createReport(t, ts, "owner-1", map[string]any{})

	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/reports/"+id, "owner-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[report.DeleteResult](t, resp).Success)

	gone := doJSON(t, http.MethodGet, ts.URL+"/api/reports/"+id, "owner-1", nil)
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)

	again := doJSON(t, http.MethodDelete, ts.URL+"/api/reports/"+id, "owner-1", nil)
	require.Equal(t, http.StatusOK, again.StatusCode)
	assert.True(t, decode[report.DeleteResult](t, again).AlreadyDeleted)
}

func TestReports_FindByCertificateNumber(t *testing.T) {
	ts := newTestServer(t)

	id := createReport(t, ts, "owner-1", map[string]any{"certificateNumber": "EICR-2026-001"})

	resp := doJSON(t, http.MethodGet,
		ts.URL+"/api/reports/find?certificate_number=EICR-2026-001", "owner-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, id, env.ID)

	missing := doJSON(t, http.MethodGet,
		ts.URL+"/api/reports/find?certificate_number=EICR-2099-999", "owner-1", nil)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	noParam := doJSON(t, http.MethodGet, ts.URL+"/api/reports/find", "owner-1", nil)
	assert.Equal(t, http.StatusBadRequest, noParam.StatusCode)
}

func TestReports_RegisterDownload(t *testing.T) {
	ts := newTestServer(t)

	createReport(t, ts, "owner-1", map[string]any{"certificateNumber": "EICR-2026-001"})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/reports/register.xlsx", "owner-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "certificate-register.xlsx")
}

func TestExport_Endpoints(t *testing.T) {
	ts := newTestServer(t)

	eic := map[string]any{
		"installationAddress": "12 High St",
		"clientName":          "J Smith",
		"scheduleOfTests": []map[string]any{
			{"circuitNumber": "1", "circuitDescription": "Kitchen ring", "protectiveDeviceRating": "32"},
		},
	}

	validate := doJSON(t, http.MethodPost, ts.URL+"/api/export/validate", "", eic)
	require.Equal(t, http.StatusOK, validate.StatusCode)
	var validation struct {
		Valid    bool     `json:"isValid"`
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.NewDecoder(validate.Body).Decode(&validation))
	assert.True(t, validation.Valid)
	assert.NotEmpty(t, validation.Warnings)

	transform := doJSON(t, http.MethodPost, ts.URL+"/api/export/transform", "", eic)
	require.Equal(t, http.StatusOK, transform.StatusCode)
	var eicr struct {
		ClientName      string           `json:"clientName"`
		ScheduleOfTests []map[string]any `json:"scheduleOfTests"`
		InspectionItems []map[string]any `json:"inspectionItems"`
	}
	require.NoError(t, json.NewDecoder(transform.Body).Decode(&eicr))
	assert.Equal(t, "J Smith", eicr.ClientName)
	assert.Len(t, eicr.ScheduleOfTests, 1)
	assert.Empty(t, eicr.InspectionItems)

	summary := doJSON(t, http.MethodPost, ts.URL+"/api/export/summary", "", eic)
	require.Equal(t, http.StatusOK, summary.StatusCode)
	var sum struct {
		CircuitCount int `json:"circuitCount"`
	}
	require.NoError(t, json.NewDecoder(summary.Body).Decode(&sum))
	assert.Equal(t, 1, sum.CircuitCount)
}

func TestChecklistEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/checklist")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	assert.Len(t, items, 66)
}

func TestRateLimit(t *testing.T) {
	st, err := report.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	srv := New(st, config.ServerConfig{RateLimitRPS: 1, RateLimitBurst: 2})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	limited := false
	for i := 0; i < 5; i++ {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/checklist", fmt.Sprintf("owner-%d", 0), nil)
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited)
}
