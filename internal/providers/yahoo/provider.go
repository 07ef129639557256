package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/jwaldner/callwriter/internal/logger"
	"github.com/jwaldner/callwriter/internal/models"
	"github.com/jwaldner/callwriter/internal/providers"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"

	// Unauthenticated quote API tolerates roughly 2 requests/second before
	// throttling kicks in.
	defaultRequestsPerSec = 2
	defaultBurst          = 4

	defaultTimeout = 12 * time.Second
)

// Provider implements providers.QuoteProvider and providers.ChainProvider
// against the public Yahoo Finance quote/options endpoints.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL overrides the API host (used by tests).
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = url }
}

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.httpClient.Timeout = d }
}

// WithRateLimit overrides the request pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(p *Provider) { p.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestsPerSec), defaultBurst),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) ProviderName() string {
	return "yahoo"
}

// makeRequest paces, executes and reads one GET request, mapping HTTP
// failures onto the provider error taxonomy.
func (p *Provider) makeRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", providers.ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "callwriter/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", providers.ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: status %d", providers.ErrNoData, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", providers.ErrUnavailable, resp.StatusCode)
	}
	return body, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// GetQuote fetches the current spot price for a symbol.
func (p *Provider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	endpoint := fmt.Sprintf("/v8/finance/chart/%s?interval=1d&range=1d", symbol)
	body, err := p.makeRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("quote request for %s: %w", symbol, err)
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing quote response: %v", providers.ErrUnavailable, err)
	}
	if len(resp.Chart.Result) == 0 || resp.Chart.Result[0].Meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("%w: no price for %s", providers.ErrNoData, symbol)
	}

	meta := resp.Chart.Result[0].Meta
	return &models.Quote{
		Symbol:    symbol,
		Price:     meta.RegularMarketPrice,
		Currency:  meta.Currency,
		Timestamp: time.Unix(meta.RegularMarketTime, 0).UTC(),
	}, nil
}

type optionsResponse struct {
	OptionChain struct {
		Result []struct {
			ExpirationDates []int64 `json:"expirationDates"`
			Options         []struct {
				ExpirationDate int64       `json:"expirationDate"`
				Calls          []rawOption `json:"calls"`
			} `json:"options"`
		} `json:"result"`
	} `json:"optionChain"`
}

type rawOption struct {
	ContractSymbol    string  `json:"contractSymbol"`
	Strike            float64 `json:"strike"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	LastPrice         float64 `json:"lastPrice"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
	OpenInterest      int64   `json:"openInterest"`
	Volume            int64   `json:"volume"`
	InTheMoney        bool    `json:"inTheMoney"`
	Expiration        int64   `json:"expiration"`
}

// GetExpirations fetches the available expiration dates for a symbol,
// sorted ascending.
func (p *Provider) GetExpirations(ctx context.Context, symbol string) ([]time.Time, error) {
	endpoint := fmt.Sprintf("/v7/finance/options/%s", symbol)
	body, err := p.makeRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("expirations request for %s: %w", symbol, err)
	}

	var resp optionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing expirations response: %v", providers.ErrUnavailable, err)
	}
	if len(resp.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("%w: no option chain for %s", providers.ErrNoData, symbol)
	}

	stamps := resp.OptionChain.Result[0].ExpirationDates
	expirations := make([]time.Time, 0, len(stamps))
	for _, ts := range stamps {
		expirations = append(expirations, time.Unix(ts, 0).UTC())
	}
	sort.Slice(expirations, func(i, j int) bool { return expirations[i].Before(expirations[j]) })
	return expirations, nil
}

// GetChain fetches the call contracts for one expiration. A present but
// empty or malformed chain returns an empty slice so the caller can degrade
// gracefully for that expiration alone.
func (p *Provider) GetChain(ctx context.Context, symbol string, expiration time.Time) ([]models.RawContract, error) {
	endpoint := fmt.Sprintf("/v7/finance/options/%s?date=%d", symbol, expiration.Unix())
	body, err := p.makeRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("chain request for %s %s: %w",
			symbol, expiration.Format("2006-01-02"), err)
	}

	var resp optionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		logger.Warnf("malformed chain payload for %s %s, treating as empty: %v",
			symbol, expiration.Format("2006-01-02"), err)
		return []models.RawContract{}, nil
	}
	if len(resp.OptionChain.Result) == 0 || len(resp.OptionChain.Result[0].Options) == 0 {
		return []models.RawContract{}, nil
	}

	calls := resp.OptionChain.Result[0].Options[0].Calls
	contracts := make([]models.RawContract, 0, len(calls))
	for _, c := range calls {
		contracts = append(contracts, models.RawContract{
			ContractSymbol:    c.ContractSymbol,
			Strike:            c.Strike,
			Bid:               c.Bid,
			Ask:               c.Ask,
			LastPrice:         c.LastPrice,
			ImpliedVolatility: c.ImpliedVolatility,
			OpenInterest:      c.OpenInterest,
			Volume:            c.Volume,
			InTheMoney:        c.InTheMoney,
			Expiration:        time.Unix(c.Expiration, 0).UTC(),
		})
	}
	return contracts, nil
}
