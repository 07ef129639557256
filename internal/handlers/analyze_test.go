package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwaldner/callwriter/internal/analysis"
	"github.com/jwaldner/callwriter/internal/models"
	"github.com/jwaldner/callwriter/internal/providers"
)

type stubAnalyzer struct {
	result *models.AnalysisResult
	err    error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, symbol string) (*models.AnalysisResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubBreakerInfo struct{}

func (stubBreakerInfo) BreakerState() string      { return "closed" }
func (stubBreakerInfo) QuoteProviderName() string { return "yahoo" }
func (stubBreakerInfo) ChainProviderName() string { return "yahoo" }

func serve(h *AnalyzeHandler, method, path string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/api/analyze/{symbol}", h.Analyze).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/health", h.Health).Methods("GET")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestAnalyzeStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", analysis.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{"no data", providers.ErrNoData, http.StatusNotFound, "NO_DATA"},
		{"upstream down", providers.ErrUnavailable, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"},
		{"upstream timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAnalyzeHandler(&stubAnalyzer{err: tc.err}, stubBreakerInfo{})
			rec := serve(h, http.MethodGet, "/api/analyze/AAPL")

			assert.Equal(t, tc.status, rec.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Error)
		})
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	result := &models.AnalysisResult{
		Symbol:    "AAPL",
		RunID:     "run-1",
		SpotPrice: 100,
		Expirations: []models.ExpirationResult{{
			Contracts: []models.ScoredContract{{
				RawContract: models.RawContract{Strike: 105},
				GoalScore:   0.05,
			}},
			HasQualifying: true,
		}},
	}
	h := NewAnalyzeHandler(&stubAnalyzer{result: result}, stubBreakerInfo{})
	rec := serve(h, http.MethodGet, "/api/analyze/AAPL")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var decoded models.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, "AAPL", decoded.Symbol)
	assert.Equal(t, 105.0, decoded.Expirations[0].Contracts[0].Strike)
}

func TestAnalyzeSanitizesNonFiniteFloats(t *testing.T) {
	contract := models.ScoredContract{
		RawContract: models.RawContract{Strike: 105},
		GoalScore:   math.NaN(),
		Delta:       math.Inf(1),
	}
	result := &models.AnalysisResult{
		Symbol: "AAPL",
		Expirations: []models.ExpirationResult{{
			Contracts:    []models.ScoredContract{contract},
			BestContract: &contract,
		}},
	}
	h := NewAnalyzeHandler(&stubAnalyzer{result: result}, stubBreakerInfo{})
	rec := serve(h, http.MethodGet, "/api/analyze/AAPL")

	// NaN would have failed JSON encoding outright.
	require.Equal(t, http.StatusOK, rec.Code)

	var decoded models.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	got := decoded.Expirations[0].Contracts[0]
	assert.Equal(t, 0.0, got.GoalScore)
	assert.Equal(t, 0.0, got.Delta)
	assert.Equal(t, 105.0, got.Strike)
	assert.Equal(t, 0.0, decoded.Expirations[0].BestContract.GoalScore)
}

func TestAnalyzeOptionsPreflight(t *testing.T) {
	h := NewAnalyzeHandler(&stubAnalyzer{err: errors.New("must not be called")}, stubBreakerInfo{})
	rec := serve(h, http.MethodOptions, "/api/analyze/AAPL")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestHealth(t *testing.T) {
	h := NewAnalyzeHandler(&stubAnalyzer{}, stubBreakerInfo{})
	rec := serve(h, http.MethodGet, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "yahoo", body["quote_provider"])
	assert.Equal(t, "closed", body["breaker_state"])
	assert.NotEmpty(t, body["default_expiry"])
}
