package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jwaldner/callwriter/internal/logger"
	"github.com/jwaldner/callwriter/internal/models"
)

const slowRequestThreshold = 5 * time.Second

// Manager fronts the quote and chain providers with a shared circuit
// breaker and slow-request logging. NoData responses count as successes for
// the breaker; only transport-level failures trip it.
type Manager struct {
	quotes  QuoteProvider
	chains  ChainProvider
	breaker *gobreaker.CircuitBreaker
}

func NewManager(quotes QuoteProvider, chains ChainProvider) *Manager {
	settings := gobreaker.Settings{
		Name:    "market-data",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoData)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("circuit breaker %s: %s -> %s", name, from, to)
		},
	}
	return &Manager{
		quotes:  quotes,
		chains:  chains,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// GetQuote fetches a spot price through the breaker.
func (m *Manager) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	start := time.Now()
	v, err := m.breaker.Execute(func() (interface{}, error) {
		return m.quotes.GetQuote(ctx, symbol)
	})
	m.logSlow("quote", symbol, start)
	if err != nil {
		return nil, m.classify(err, "quote", m.quotes.ProviderName())
	}
	return v.(*models.Quote), nil
}

// GetExpirations fetches available expirations through the breaker.
func (m *Manager) GetExpirations(ctx context.Context, symbol string) ([]time.Time, error) {
	start := time.Now()
	v, err := m.breaker.Execute(func() (interface{}, error) {
		return m.chains.GetExpirations(ctx, symbol)
	})
	m.logSlow("expirations", symbol, start)
	if err != nil {
		return nil, m.classify(err, "expirations", m.chains.ProviderName())
	}
	return v.([]time.Time), nil
}

// GetChain fetches one expiration's call contracts through the breaker.
func (m *Manager) GetChain(ctx context.Context, symbol string, expiration time.Time) ([]models.RawContract, error) {
	start := time.Now()
	v, err := m.breaker.Execute(func() (interface{}, error) {
		return m.chains.GetChain(ctx, symbol, expiration)
	})
	m.logSlow("chain", symbol, start)
	if err != nil {
		return nil, m.classify(err, "chain", m.chains.ProviderName())
	}
	return v.([]models.RawContract), nil
}

// BreakerState reports the current circuit breaker state for health checks.
func (m *Manager) BreakerState() string {
	return m.breaker.State().String()
}

// QuoteProviderName exposes the underlying quote provider's name.
func (m *Manager) QuoteProviderName() string {
	return m.quotes.ProviderName()
}

// ChainProviderName exposes the underlying chain provider's name.
func (m *Manager) ChainProviderName() string {
	return m.chains.ProviderName()
}

func (m *Manager) classify(err error, op, provider string) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: provider %s circuit open for %s", ErrUnavailable, provider, op)
	}
	return fmt.Errorf("provider %s %s: %w", provider, op, err)
}

func (m *Manager) logSlow(op, symbol string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowRequestThreshold {
		logger.Warnf("slow %s request for %s took %v", op, symbol, elapsed)
	}
}
