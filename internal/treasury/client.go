package treasury

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jwaldner/callwriter/internal/logger"
)

const (
	defaultBaseURL = "https://api.fiscaldata.treasury.gov/services/api/fiscal_service"
	fetchTimeout   = 10 * time.Second
)

// Client fetches the most recent Treasury Bill rate to use as the pricing
// model's risk-free rate. It never fails outward: on fetch failure the last
// known rate (seeded with the configured fallback) is returned, so it
// satisfies providers.RateSource.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu            sync.Mutex
	lastKnownRate float64
	lastFetchTime time.Time
}

// NewClient builds a Treasury rate client seeded with fallbackRate.
func NewClient(fallbackRate float64) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: fetchTimeout},
		baseURL:       defaultBaseURL,
		lastKnownRate: fallbackRate,
	}
}

// NewClientWithBaseURL is used by tests to point at a stub server.
func NewClientWithBaseURL(fallbackRate float64, baseURL string) *Client {
	c := NewClient(fallbackRate)
	c.baseURL = baseURL
	return c
}

type ratesResponse struct {
	Data []struct {
		RecordDate            string `json:"record_date"`
		AvgInterestRateAmount string `json:"avg_interest_rate_amt"`
	} `json:"data"`
}

// RiskFreeRate returns the current Treasury Bill rate as a decimal,
// refreshing at most hourly and falling back to the last known value when
// the API is unreachable.
func (c *Client) RiskFreeRate(ctx context.Context) float64 {
	c.mu.Lock()
	fresh := time.Since(c.lastFetchTime) < time.Hour && !c.lastFetchTime.IsZero()
	cached := c.lastKnownRate
	c.mu.Unlock()
	if fresh {
		return cached
	}

	rate, err := c.fetch(ctx)
	if err != nil {
		logger.Warnf("treasury rate fetch failed, using last known %.4f: %v", cached, err)
		return cached
	}

	c.mu.Lock()
	c.lastKnownRate = rate
	c.lastFetchTime = time.Now()
	c.mu.Unlock()
	logger.Debugf("treasury bill rate refreshed: %.4f", rate)
	return rate
}

func (c *Client) fetch(ctx context.Context) (float64, error) {
	url := c.baseURL + "/v2/accounting/od/avg_interest_rates" +
		"?fields=avg_interest_rate_amt,record_date" +
		"&filter=security_desc:eq:Treasury%20Bills&sort=-record_date&page[size]=1"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating treasury request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching treasury rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("treasury API returned status %d", resp.StatusCode)
	}

	var parsed ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decoding treasury response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return 0, fmt.Errorf("no treasury rate data returned")
	}

	rate, err := strconv.ParseFloat(parsed.Data[0].AvgInterestRateAmount, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing rate %q: %w", parsed.Data[0].AvgInterestRateAmount, err)
	}
	// API reports percent (e.g. "3.983"); the model wants a decimal.
	return rate / 100, nil
}
