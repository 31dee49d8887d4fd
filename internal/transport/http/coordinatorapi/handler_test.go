package coordinatorapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/mesh/internal/domain"
)

type fakeResolver struct {
	queries []string
	result  domain.AggregateResult
	live    int
}

func (f *fakeResolver) Resolve(ctx context.Context, query string) domain.AggregateResult {
	f.queries = append(f.queries, query)
	return f.result
}

func (f *fakeResolver) LiveCount(ctx context.Context) int { return f.live }

func post(t *testing.T, h *Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Ask(echo.New().NewContext(req, rec)))
	return rec
}

func TestAskReturnsAggregate(t *testing.T) {
	r := &fakeResolver{result: domain.AggregateResult{AgentResponses: []domain.AgentResponse{
		{From: "h1", Tool: "health.search", Answer: "rest", SourceHits: []string{"rest"}},
	}}}
	h := NewHandler(r)

	for _, path := range []string{"/ask", "/chat"} {
		rec := post(t, h, path, `{"query":"fever"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"agent_responses":[{"from":"h1","tool":"health.search","answer":"rest","source_hits":["rest"]}]}`, rec.Body.String())
	}
	assert.Equal(t, []string{"fever", "fever"}, r.queries)
}

func TestAskMalformedBodyStillResolves(t *testing.T) {
	r := &fakeResolver{result: domain.AggregateResult{AgentResponses: []domain.AgentResponse{}, Error: domain.ErrCoordinatorUnavailable}}
	rec := post(t, NewHandler(r), "/ask", `{broken`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{""}, r.queries)
	assert.JSONEq(t, `{"agent_responses":[],"error":"Coordinator not available after multiple attempts."}`, rec.Body.String())
}

func TestHealthCountsLiveAgents(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, NewHandler(&fakeResolver{live: 2}).Health(echo.New().NewContext(req, rec)))
	assert.JSONEq(t, `{"status":"ok","agents_count":2}`, rec.Body.String())
}
