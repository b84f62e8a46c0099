package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/dentaldesk/config"
	"github.com/Alijeyrad/dentaldesk/internal/service/clinic"
	"github.com/Alijeyrad/dentaldesk/internal/service/dashboard"
	"github.com/Alijeyrad/dentaldesk/internal/service/patient"
	"github.com/Alijeyrad/dentaldesk/internal/service/payment"
	"github.com/Alijeyrad/dentaldesk/internal/session"
	"github.com/Alijeyrad/dentaldesk/internal/table"
	"github.com/Alijeyrad/dentaldesk/internal/table/tabletest"
	"github.com/Alijeyrad/dentaldesk/pkg/reqctx"
)

const testSession = "sess-1"

type fakeStore map[string]*reqctx.Session

func (f fakeStore) Lookup(_ context.Context, id string) (*reqctx.Session, error) {
	s, ok := f[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	return s, nil
}

type fixture struct {
	app      *fiber.App
	backends map[string]*tabletest.Backend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backends := map[string]*tabletest.Backend{
		"patients": tabletest.NewBackend(
			map[string]any{"id": "p1", "firstName": "Ada", "lastName": "Lovelace", "phone": "+12015550123"},
			map[string]any{"id": "p2", "firstName": "Alan", "lastName": "Turing"},
		),
		"appointments": tabletest.NewBackend(),
		"dentures":     tabletest.NewBackend(),
		"inventory": tabletest.NewBackend(
			map[string]any{"id": "i1", "name": "Gloves", "quantity": 10.0, "restockLevel": 5.0},
		),
		"treatments":      tabletest.NewBackend(),
		"medical-history": tabletest.NewBackend(),
	}
	backends["medical-history"].GetBy = "patientId"
	factory := func(entity string) table.Backend { return backends[entity] }

	catalog, err := clinic.NewCatalog(clinic.Options{RecentWindowDays: 30, PhoneRegion: "US"})
	require.NoError(t, err)
	dash, err := dashboard.New(catalog, factory, dashboard.Options{})
	require.NoError(t, err)

	cfg := &config.Config{Session: config.SessionConfig{Header: "X-Session-Id", Cookie: "session_id"}}
	r := NewRouter(Params{
		Cfg:        cfg,
		Sessions:   fakeStore{testSession: {ID: testSession, UserID: "u1", Role: reqctx.RoleReceptionist}},
		Dashboard:  dash,
		Overview:   payment.New(catalog, factory, dash.Now),
		HistorySvc: patient.NewHistoryService(backends["medical-history"], dash.Now),
	})

	app := fiber.New()
	r.Register(app)
	return &fixture{app: app, backends: backends}
}

func (f *fixture) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("X-Session-Id", testSession)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestSessionIsRequired(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/tables", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tables", nil)
	req.Header.Set("X-Session-Id", "nope")
	resp, err = f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionFromCookie(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: testSession})
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMe(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/v1/me", "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "receptionist", data["role"])
}

func TestEntitiesAndTableView(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/v1/tables", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 5)

	code, body = f.do(t, http.MethodGet, "/api/v1/tables/patients", "")
	require.Equal(t, http.StatusOK, code)
	view := body["data"].(map[string]any)
	assert.Len(t, view["rows"], 2)
	assert.EqualValues(t, 2, view["total"])

	code, _ = f.do(t, http.MethodGet, "/api/v1/tables/invoices", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFilterAndSort(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPut, "/api/v1/tables/patients/filter", `{"search":"turing"}`)
	require.Equal(t, http.StatusOK, code)
	rows := body["data"].(map[string]any)["rows"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "p2", rows[0].(map[string]any)["id"])

	code, _ = f.do(t, http.MethodPut, "/api/v1/tables/patients/filter", `{"category":"vip"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = f.do(t, http.MethodPost, "/api/v1/tables/patients/sort/name", "")
	require.Equal(t, http.StatusOK, code)
	sort := body["data"].(map[string]any)["sort"].(map[string]any)
	assert.Equal(t, "asc", sort["direction"])

	code, _ = f.do(t, http.MethodPost, "/api/v1/tables/patients/sort/actions", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodDelete, "/api/v1/tables/patients/rows/p1", "")
	require.Equal(t, http.StatusAccepted, code)
	confirmID := body["data"].(map[string]any)["confirmation_id"].(string)
	require.NotEmpty(t, confirmID)
	assert.Empty(t, f.backends["patients"].Calls("DELETE"))

	code, body = f.do(t, http.MethodGet, "/api/v1/notifications", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 1)

	code, _ = f.do(t, http.MethodPost, "/api/v1/notifications/"+confirmID+"/actions/delete", "")
	require.Equal(t, http.StatusNoContent, code)
	assert.Len(t, f.backends["patients"].Calls("DELETE"), 1)

	code, body = f.do(t, http.MethodGet, "/api/v1/tables/patients", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"].(map[string]any)["rows"], 1)
}

func TestCancelledDeleteSendsNothing(t *testing.T) {
	f := newFixture(t)

	_, body := f.do(t, http.MethodDelete, "/api/v1/tables/patients/rows/p1", "")
	confirmID := body["data"].(map[string]any)["confirmation_id"].(string)

	code, _ := f.do(t, http.MethodPost, "/api/v1/notifications/"+confirmID+"/actions/cancel", "")
	require.Equal(t, http.StatusNoContent, code)
	assert.Empty(t, f.backends["patients"].Calls("DELETE"))

	code, _ = f.do(t, http.MethodPost, "/api/v1/notifications/"+confirmID+"/actions/delete", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPendingDeleteKeepsItsRow(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodDelete, "/api/v1/tables/patients/rows/p2", "")
	require.Equal(t, http.StatusAccepted, code)
	confirmID := body["data"].(map[string]any)["confirmation_id"].(string)

	// A second request of the same shape reuses fiber's path buffer.
	code, _ = f.do(t, http.MethodDelete, "/api/v1/tables/patients/rows/p1", "")
	require.Equal(t, http.StatusAccepted, code)

	code, _ = f.do(t, http.MethodPost, "/api/v1/notifications/"+confirmID+"/actions/delete", "")
	require.Equal(t, http.StatusNoContent, code)

	calls := f.backends["patients"].Calls("DELETE")
	require.Len(t, calls, 1)
	assert.Equal(t, "p2", calls[0].ID)

	code, body = f.do(t, http.MethodGet, "/api/v1/tables/patients", "")
	require.Equal(t, http.StatusOK, code)
	rows := body["data"].(map[string]any)["rows"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0].(map[string]any)["id"])
}

func TestAdjustInventory(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodPost, "/api/v1/tables/inventory/rows/i1/adjust", `{"delta":0}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := f.do(t, http.MethodPost, "/api/v1/tables/inventory/rows/i1/adjust", `{"delta":-3}`)
	require.Equal(t, http.StatusOK, code)
	rows := body["data"].(map[string]any)["rows"].([]any)
	assert.EqualValues(t, 7, rows[0].(map[string]any)["quantity"])

	code, _ = f.do(t, http.MethodPost, "/api/v1/tables/inventory/rows/i1/adjust", `{"delta":-50}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodPost, "/api/v1/tables/patients/new", "")
	require.Equal(t, http.StatusOK, code)

	code, body := f.do(t, http.MethodPost, "/api/v1/tables/patients/modal/submit", "")
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "firstName", body["field"])
	assert.Empty(t, f.backends["patients"].Calls("POST"))

	code, _ = f.do(t, http.MethodPatch, "/api/v1/tables/patients/modal",
		`{"fields":{"firstName":"Grace","lastName":"Hopper","phone":"(201) 555-0199"}}`)
	require.Equal(t, http.StatusOK, code)

	code, body = f.do(t, http.MethodPost, "/api/v1/tables/patients/modal/submit", "")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "+12015550199", body["data"].(map[string]any)["phone"])

	code, _ = f.do(t, http.MethodGet, "/api/v1/tables/patients/modal", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMedicalHistory(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/v1/patients/p1/medical-history", "")
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, body["data"])

	code, body = f.do(t, http.MethodPut, "/api/v1/patients/p1/medical-history",
		`{"fields":{"medications":"none"},"conditions":{"diabetes":true}}`)
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["diabetes"])
	assert.Equal(t, "p1", data["patientId"])

	code, body = f.do(t, http.MethodGet, "/api/v1/patients/p1/medical-history", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "none", body["data"].(map[string]any)["medications"])

	code, _ = f.do(t, http.MethodPut, "/api/v1/patients/p1/medical-history", `{"conditions":{"scurvy":true}}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestOverview(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/v1/overview", "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 2, data["patients"])
	assert.EqualValues(t, 0, data["low_stock_items"])
}

func TestReadinessWithoutRedis(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = f.app.Test(httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
