package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udiptgupta/Risk-lab/internal/batch"
	"github.com/udiptgupta/Risk-lab/internal/store"
	"github.com/udiptgupta/Risk-lab/internal/valuation"
	"github.com/udiptgupta/Risk-lab/internal/websocket"
	"github.com/udiptgupta/Risk-lab/pkg/metrics"
	"github.com/udiptgupta/Risk-lab/pkg/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemoryStore()

	require.NoError(t, mem.SaveBonds(ctx, []models.BondTerms{{
		ISIN:            "IN0000000001",
		Issuer:          "Alpha Capital",
		IssueDate:       time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		MaturityDate:    time.Date(2026, time.July, 20, 0, 0, 0, 0, time.UTC),
		CouponRate:      0,
		CouponFrequency: 1,
		FaceValue:       1000,
		CreditRating:    "AAA",
	}}))
	require.NoError(t, mem.SaveCurve(ctx, models.TermStructure{
		CurveDate: time.Date(2025, time.July, 18, 0, 0, 0, 0, time.UTC),
		Points: []models.CurvePoint{
			{TenorYears: 1, Yield: 0.05},
			{TenorYears: 2, Yield: 0.05},
		},
	}))
	require.NoError(t, mem.SaveSpreads(ctx, models.CreditSpreads{"BBB": 0.0150}))

	recorder := metrics.NewRecorder()
	valuer := valuation.NewService(mem, mem, mem, recorder)
	recomputer := batch.NewRecomputer(batch.Config{Workers: 2}, mem, mem, valuer, nil, recorder)
	handlers := CreateHandlers(mem, mem, valuer, recomputer, websocket.NewHub())

	return NewServer(Config{Host: "127.0.0.1", Port: 0}, handlers, recorder)
}

func doRequest(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	w := doRequest(t, server, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetValuation(t *testing.T) {
	server := newTestServer(t)

	w := doRequest(t, server, http.MethodGet, "/api/v1/bonds/1/valuation?as_of=2025-07-20", "")
	require.Equal(t, http.StatusOK, w.Code)

	var result models.ValuationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.InDelta(t, 951.23, result.Price, 1e-9)
	assert.InDelta(t, 1.0, result.MacaulayDuration, 1e-9)
	// breakdown omitted unless requested
	assert.Empty(t, result.CashFlows)
}

func TestGetValuationWithBreakdown(t *testing.T) {
	server := newTestServer(t)

	w := doRequest(t, server, http.MethodGet, "/api/v1/bonds/1/valuation?as_of=2025-07-20&breakdown=true", "")
	require.Equal(t, http.StatusOK, w.Code)

	var result models.ValuationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.CashFlows, 1)
	assert.InDelta(t, 951.23, result.CashFlows[0].PV, 1e-9)
}

func TestGetValuationUnknownBond(t *testing.T) {
	server := newTestServer(t)

	w := doRequest(t, server, http.MethodGet, "/api/v1/bonds/99/valuation?as_of=2025-07-20", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetValuationCurveUnavailable(t *testing.T) {
	server := newTestServer(t)

	w := doRequest(t, server, http.MethodGet, "/api/v1/bonds/1/valuation?as_of=2024-01-01", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetValuationBadDate(t *testing.T) {
	server := newTestServer(t)

	w := doRequest(t, server, http.MethodGet, "/api/v1/bonds/1/valuation?as_of=garbage", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScenarioEndpoint(t *testing.T) {
	server := newTestServer(t)

	w := doRequest(t, server, http.MethodPost, "/api/v1/bonds/1/scenario",
		`{"as_of":"2025-07-20","shock_bps":100}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.ScenarioResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 100, result.ShockBps)
	assert.InDelta(t, 941.76, result.Price, 1e-9)
}

func TestBatchRecomputeEndpoint(t *testing.T) {
	server := newTestServer(t)

	w := doRequest(t, server, http.MethodPost, "/api/v1/batch/recompute",
		`{"as_of":"2025-07-20"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var summary models.BatchSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Processed)
	assert.Zero(t, summary.Failed)

	// the recompute persisted metrics retrievable from the metrics endpoint
	w = doRequest(t, server, http.MethodGet, "/api/v1/metrics/risk?as_of=2025-07-20", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestGetCurve(t *testing.T) {
	server := newTestServer(t)

	w := doRequest(t, server, http.MethodGet, "/api/v1/curves/latest?as_of=2025-07-20", "")
	require.Equal(t, http.StatusOK, w.Code)

	var curve models.TermStructure
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &curve))
	assert.Len(t, curve.Points, 2)
}
