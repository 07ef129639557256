package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jwaldner/callwriter/internal/analysis"
	"github.com/jwaldner/callwriter/internal/logger"
	"github.com/jwaldner/callwriter/internal/models"
	"github.com/jwaldner/callwriter/internal/providers"
	"github.com/jwaldner/callwriter/internal/utils"
)

// Analyzer is the slice of the analysis engine the HTTP layer needs.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (*models.AnalysisResult, error)
}

// BreakerInfo exposes upstream health for the health endpoint.
type BreakerInfo interface {
	BreakerState() string
	QuoteProviderName() string
	ChainProviderName() string
}

// AnalyzeHandler is the dumb HTTP layer over the analyzer: routing, status
// mapping and JSON encoding only.
type AnalyzeHandler struct {
	analyzer Analyzer
	market   BreakerInfo
	started  time.Time
}

func NewAnalyzeHandler(analyzer Analyzer, market BreakerInfo) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		market:   market,
		started:  time.Now(),
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Analyze handles GET /api/analyze/{symbol}.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	symbol := mux.Vars(r)["symbol"]
	result, err := h.analyzer.Analyze(r.Context(), symbol)
	if err != nil {
		h.writeError(w, symbol, err)
		return
	}

	sanitizeResult(result)
	writeJSON(w, http.StatusOK, result)
}

// Health handles GET /api/health.
func (h *AnalyzeHandler) Health(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"quote_provider": h.market.QuoteProviderName(),
		"chain_provider": h.market.ChainProviderName(),
		"breaker_state":  h.market.BreakerState(),
		"default_expiry": utils.NextThirdFriday(time.Now()),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

func (h *AnalyzeHandler) writeError(w http.ResponseWriter, symbol string, err error) {
	var status int
	var code string
	switch {
	case errors.Is(err, analysis.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, providers.ErrNoData):
		status, code = http.StatusNotFound, "NO_DATA"
	case errors.Is(err, providers.ErrUnavailable):
		status, code = http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"
	default:
		status, code = http.StatusInternalServerError, "INTERNAL"
	}
	logger.Errorf("analyze %s failed (%s): %v", symbol, code, err)
	writeJSON(w, status, errorResponse{Error: code, Message: err.Error()})
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("encoding response: %v", err)
	}
}

// sanitizeResult zeroes any non-finite float that slipped through, since
// NaN and Infinity break JSON encoding. Pipeline math already fails closed,
// so this is the HTTP layer's final guarantee, not a correctness mechanism.
func sanitizeResult(result *models.AnalysisResult) {
	for i := range result.Expirations {
		exp := &result.Expirations[i]
		for j := range exp.Contracts {
			sanitizeContract(&exp.Contracts[j])
		}
		if exp.BestContract != nil {
			sanitizeContract(exp.BestContract)
		}
	}
}

func sanitizeContract(c *models.ScoredContract) {
	fields := []*float64{
		&c.Strike, &c.Bid, &c.Ask, &c.LastPrice, &c.ImpliedVolatility,
		&c.OTMPercent, &c.AssignmentProbability, &c.EnhancedAssignmentProbability,
		&c.Delta, &c.Premium, &c.ReturnPercent, &c.GoalScore,
		&c.ReturnAssignmentRatio, &c.EnhancedReturnAssignmentRatio,
	}
	for _, f := range fields {
		if math.IsNaN(*f) || math.IsInf(*f, 0) {
			*f = 0
		}
	}
}
