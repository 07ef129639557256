package providers

import (
	"context"
	"errors"
	"time"

	"github.com/jwaldner/callwriter/internal/models"
)

// Upstream error taxonomy. Implementations wrap these so callers can
// classify failures without knowing the provider.
var (
	// ErrNoData means the symbol or expiration is unrecognized upstream.
	// Terminal for the request; retrying without a different symbol is
	// pointless.
	ErrNoData = errors.New("no data")

	// ErrUnavailable means the upstream timed out or errored. Retryable by
	// the caller; the core never retries on its own.
	ErrUnavailable = errors.New("upstream unavailable")
)

// QuoteProvider supplies current spot prices.
type QuoteProvider interface {
	// GetQuote returns the current price for a ticker symbol, or an error
	// wrapping ErrNoData / ErrUnavailable.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	ProviderName() string
}

// ChainProvider supplies option expirations and call chains.
type ChainProvider interface {
	// GetExpirations returns the available expiration dates for a symbol,
	// sorted ascending.
	GetExpirations(ctx context.Context, symbol string) ([]time.Time, error)

	// GetChain returns the call contracts for one expiration. An empty
	// slice with a nil error means the expiration exists but carries no
	// usable contracts; callers degrade gracefully for that expiration.
	GetChain(ctx context.Context, symbol string, expiration time.Time) ([]models.RawContract, error)

	ProviderName() string
}

// RateSource supplies the risk-free rate for the pricing model. It never
// fails: implementations fall back to their last known or default rate.
type RateSource interface {
	RiskFreeRate(ctx context.Context) float64
}

// StaticRate is a RateSource pinned to a configured constant.
type StaticRate float64

func (r StaticRate) RiskFreeRate(context.Context) float64 {
	return float64(r)
}
