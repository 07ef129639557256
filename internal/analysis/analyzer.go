package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwaldner/callwriter/internal/logger"
	"github.com/jwaldner/callwriter/internal/models"
	"github.com/jwaldner/callwriter/internal/providers"
)

const defaultProviderTimeout = 12 * time.Second

// MarketSource is the slice of the provider manager the analyzer needs;
// narrowed to an interface so tests can fake the upstream.
type MarketSource interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	GetExpirations(ctx context.Context, symbol string) ([]time.Time, error)
	GetChain(ctx context.Context, symbol string, expiration time.Time) ([]models.RawContract, error)
}

// Analyzer orchestrates one analysis run: spot quote, expiration schedule,
// concurrent per-expiration chain fetch + selection, ordered assembly. Each
// run is stateless and independent; "now" and the run ID are captured once
// and threaded through so every contract sees the same clock.
type Analyzer struct {
	market          MarketSource
	rates           providers.RateSource
	scheduler       Scheduler
	selector        *Selector
	providerTimeout time.Duration
}

func NewAnalyzer(market MarketSource, rates providers.RateSource, scheduler Scheduler, selector *Selector) *Analyzer {
	return &Analyzer{
		market:          market,
		rates:           rates,
		scheduler:       scheduler,
		selector:        selector,
		providerTimeout: defaultProviderTimeout,
	}
}

// SetProviderTimeout overrides the per-upstream-call timeout.
func (a *Analyzer) SetProviderTimeout(d time.Duration) {
	if d > 0 {
		a.providerTimeout = d
	}
}

// Analyze runs the full pipeline for one ticker symbol.
func (a *Analyzer) Analyze(ctx context.Context, symbol string) (*models.AnalysisResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !validSymbol(symbol) {
		return nil, fmt.Errorf("%w: malformed ticker %q", ErrInvalidInput, symbol)
	}

	now := time.Now()
	runID := uuid.NewString()
	log := logger.WithField("run_id", runID)
	log.Infof("analyzing %s", symbol)

	qctx, cancel := context.WithTimeout(ctx, a.providerTimeout)
	quote, err := a.market.GetQuote(qctx, symbol)
	cancel()
	if err != nil {
		return nil, err
	}
	if quote.Price <= 0 || math.IsNaN(quote.Price) || math.IsInf(quote.Price, 0) {
		return nil, fmt.Errorf("%w: non-positive or non-finite price %v for %s",
			ErrInvalidInput, quote.Price, symbol)
	}

	ectx, cancel := context.WithTimeout(ctx, a.providerTimeout)
	available, err := a.market.GetExpirations(ectx, symbol)
	cancel()
	if err != nil {
		return nil, err
	}

	targets, err := a.scheduler.TargetExpirations(available, now)
	if err != nil {
		return nil, err
	}

	riskFreeRate := a.rates.RiskFreeRate(ctx)
	log.Debugf("%s spot %.2f, %d target expirations, risk-free rate %.4f",
		symbol, quote.Price, len(targets), riskFreeRate)

	// Expirations are independent; fan out one fetch+selection per target
	// and join. Result slots are index-addressed so output order matches
	// the scheduler's date order regardless of completion order.
	results := make([]models.ExpirationResult, len(targets))
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, expiration := range targets {
		wg.Add(1)
		go func(i int, expiration time.Time) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, a.providerTimeout)
			defer cancel()

			chain, err := a.market.GetChain(cctx, symbol, expiration)
			if err != nil {
				errs[i] = err
				return
			}
			if len(chain) == 0 {
				log.Warnf("empty chain for %s %s, continuing without it",
					symbol, expiration.Format("2006-01-02"))
				results[i] = models.ExpirationResult{Expiration: expiration}
				return
			}
			results[i] = a.selector.Analyze(chain, quote.Price, expiration, now, riskFreeRate)
		}(i, expiration)
	}
	wg.Wait()

	// A transport failure on any expiration fails the whole run; only the
	// empty-chain case above degrades gracefully.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	result := &models.AnalysisResult{
		Symbol:      symbol,
		RunID:       runID,
		Quote:       *quote,
		SpotPrice:   quote.Price,
		OTMRange:    a.selector.Band(quote.Price),
		Expirations: results,
		GeneratedAt: now,
	}
	log.Infof("%s done: %d expirations analyzed", symbol, len(results))
	return result, nil
}

// validSymbol accepts exchange tickers: 1-10 chars of letters, digits,
// dots or hyphens (BRK.B, BF-B).
func validSymbol(symbol string) bool {
	if len(symbol) == 0 || len(symbol) > 10 {
		return false
	}
	for _, r := range symbol {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-':
		default:
			return false
		}
	}
	return true
}
