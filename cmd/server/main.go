package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/jwaldner/callwriter/internal/analysis"
	"github.com/jwaldner/callwriter/internal/config"
	"github.com/jwaldner/callwriter/internal/handlers"
	"github.com/jwaldner/callwriter/internal/logger"
	"github.com/jwaldner/callwriter/internal/providers"
	"github.com/jwaldner/callwriter/internal/providers/yahoo"
	"github.com/jwaldner/callwriter/internal/scoring"
	"github.com/jwaldner/callwriter/internal/symbols"
	"github.com/jwaldner/callwriter/internal/treasury"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	if err := logger.Init(cfg.Logging.LogLevel, cfg.Logging.LogFile); err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}
	logger.Infof("callwriter starting on port %s", cfg.Port)

	provider := yahoo.NewProvider(
		yahoo.WithBaseURL(cfg.Provider.BaseURL),
		yahoo.WithTimeout(time.Duration(cfg.Provider.TimeoutSeconds)*time.Second),
		yahoo.WithRateLimit(cfg.Provider.RequestsPerSecond, cfg.Provider.Burst),
	)
	market := providers.NewManager(provider, provider)

	var rates providers.RateSource = providers.StaticRate(cfg.Pricing.RiskFreeRate)
	if cfg.Pricing.UseTreasuryRate {
		rates = treasury.NewClient(cfg.Pricing.RiskFreeRate)
		logger.Infof("risk-free rate: treasury bill rate (fallback %.4f)", cfg.Pricing.RiskFreeRate)
	} else {
		logger.Infof("risk-free rate: constant %.4f", cfg.Pricing.RiskFreeRate)
	}

	weekly, biweekly := cfg.Targets()
	scorer := scoring.NewScorer(scoring.Thresholds{Weekly: weekly, Biweekly: biweekly})
	logger.Infof("scoring gates: weekly %.2f%%, bi-weekly %.2f%%, rank_by=%s",
		weekly*100, biweekly*100, cfg.Scoring.RankBy)

	selector := analysis.NewSelector(analysis.SelectorConfig{
		OTMLowFactor:      cfg.Pricing.OTMLowFactor,
		OTMHighFactor:     cfg.Pricing.OTMHighFactor,
		DefaultVolatility: cfg.Pricing.DefaultVolatility,
		UseEnhanced:       cfg.RankByEnhanced(),
	}, scorer)

	scheduler := analysis.Scheduler{
		Policy:         analysis.SchedulerPolicy(cfg.Scheduler.Policy),
		MaxExpirations: cfg.Scheduler.MaxExpirations,
	}

	analyzer := analysis.NewAnalyzer(market, rates, scheduler, selector)
	analyzer.SetProviderTimeout(time.Duration(cfg.Provider.TimeoutSeconds) * time.Second)

	handler := handlers.NewAnalyzeHandler(analyzer, market)
	symbolsHandler := handlers.NewSymbolsHandler(symbols.NewDirectory())

	r := mux.NewRouter()
	r.HandleFunc("/api/analyze/{symbol}", handler.Analyze).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/symbols", symbolsHandler.List).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/health", handler.Health).Methods("GET")

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	logger.Infof("http server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
