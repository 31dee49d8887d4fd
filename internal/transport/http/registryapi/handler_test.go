package registryapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/mesh/internal/domain"
	"github.com/xiaot623/gogo/mesh/internal/registry"
)

func newTestHandler(now *time.Time) *Handler {
	return NewHandler(registry.New(registry.WithClock(func() time.Time { return *now })))
}

func postRegister(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Register(echo.New().NewContext(req, rec)))
	return rec
}

func TestRegisterSuccess(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	h := newTestHandler(&now)

	rec := postRegister(t, h, `{"id":"h1","name":"Health","description":"d","base_url":"http://h1:8001","capabilities":["health.triage"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.RegisterResponse{Status: "ok", Registered: "h1"}, resp)
}

func TestRegisterValidation(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	h := newTestHandler(&now)

	for _, body := range []string{`{"name":"x","base_url":"http://x"}`, `{"id":"  "}`, `not json`} {
		rec := postRegister(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestRegisterAcceptsEmptyFields(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	h := newTestHandler(&now)

	rec := postRegister(t, h, `{"id":"x","name":"","description":"","base_url":"","capabilities":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","registered":"x"}`, rec.Body.String())
}

func TestListAgentsOnlyLive(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	h := newTestHandler(&now)

	postRegister(t, h, `{"id":"old","base_url":"http://old"}`)
	now = now.Add(3601 * time.Second)
	postRegister(t, h, `{"id":"new","base_url":"http://new"}`)

	req := httptest.NewRequest(http.MethodGet, "/agents", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.ListAgents(echo.New().NewContext(req, rec)))

	var entries []domain.RegistryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].ID)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	require.NoError(t, h.Health(echo.New().NewContext(req, rec)))
	assert.JSONEq(t, `{"status":"ok","agents_count":2}`, rec.Body.String())
}

func TestGetAgent(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	h := newTestHandler(&now)
	postRegister(t, h, `{"id":"h1","base_url":"http://h1"}`)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/agents/h1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("h1")
	require.NoError(t, h.GetAgent(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/agents/nope", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("nope")
	require.NoError(t, h.GetAgent(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Agent nope not found"}`, rec.Body.String())
}
