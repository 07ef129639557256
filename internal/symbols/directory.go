package symbols

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jwaldner/callwriter/internal/logger"
)

// Symbol is one index constituent with the metadata the UI shows in the
// ticker picker.
type Symbol struct {
	Symbol  string `json:"symbol"`
	Company string `json:"company"`
	Sector  string `json:"sector"`
}

const refreshInterval = 7 * 24 * time.Hour

// Constituent CSV mirrors, tried in order. The dataset updates quarterly at
// most, hence the long refresh interval.
var defaultSourceURLs = []string{
	"https://raw.githubusercontent.com/datasets/s-and-p-500-companies/master/data/constituents.csv",
	"https://datahub.io/core/s-and-p-500-companies/r/constituents.csv",
}

// Directory serves the S&P 500 constituent list for symbol lookup and
// search. It refreshes from the CSV mirrors at most weekly and never fails
// outward: until the first successful fetch a built-in seed list answers.
type Directory struct {
	httpClient *http.Client
	sourceURLs []string

	mu          sync.Mutex
	symbols     []Symbol
	lastFetched time.Time
}

// Option configures a Directory.
type Option func(*Directory)

// WithSourceURLs overrides the CSV mirror list (used by tests).
func WithSourceURLs(urls ...string) Option {
	return func(d *Directory) { d.sourceURLs = urls }
}

// WithHTTPClient overrides the fetch client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Directory) { d.httpClient = c }
}

func NewDirectory(opts ...Option) *Directory {
	d := &Directory{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		sourceURLs: defaultSourceURLs,
		symbols:    seedSymbols(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Symbols returns the current constituent list sorted by ticker, refreshing
// from the mirrors when the cache is stale.
func (d *Directory) Symbols(ctx context.Context) []Symbol {
	d.refresh(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Symbol, len(d.symbols))
	copy(out, d.symbols)
	return out
}

// Search returns constituents whose ticker or company name contains the
// query, case-insensitively. An empty query returns the full list.
func (d *Directory) Search(ctx context.Context, query string) []Symbol {
	all := d.Symbols(ctx)
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		return all
	}

	var matched []Symbol
	for _, s := range all {
		if strings.Contains(s.Symbol, query) ||
			strings.Contains(strings.ToUpper(s.Company), query) {
			matched = append(matched, s)
		}
	}
	return matched
}

func (d *Directory) refresh(ctx context.Context) {
	d.mu.Lock()
	stale := time.Since(d.lastFetched) >= refreshInterval || d.lastFetched.IsZero()
	cached := len(d.symbols)
	d.mu.Unlock()
	if !stale {
		return
	}

	fetched, err := d.fetch(ctx)
	if err != nil {
		logger.Warnf("symbol directory refresh failed, keeping %d cached entries: %v", cached, err)
		return
	}
	sort.Slice(fetched, func(i, j int) bool { return fetched[i].Symbol < fetched[j].Symbol })

	d.mu.Lock()
	d.symbols = fetched
	d.lastFetched = time.Now()
	d.mu.Unlock()
	logger.Debugf("symbol directory refreshed: %d constituents", len(fetched))
}

func (d *Directory) fetch(ctx context.Context) ([]Symbol, error) {
	var lastErr error
	for _, url := range d.sourceURLs {
		symbols, err := d.fetchCSV(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		return symbols, nil
	}
	return nil, fmt.Errorf("all constituent sources failed: %w", lastErr)
}

func (d *Directory) fetchCSV(ctx context.Context, url string) ([]Symbol, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating constituents request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching constituents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("constituents source returned status %d", resp.StatusCode)
	}

	records, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing constituents CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("constituents CSV has no data rows")
	}

	symbolCol, companyCol, sectorCol := findColumns(records[0])
	if symbolCol < 0 {
		return nil, fmt.Errorf("constituents CSV has no symbol column")
	}

	var symbols []Symbol
	for _, record := range records[1:] {
		if len(record) <= symbolCol || strings.TrimSpace(record[symbolCol]) == "" {
			continue
		}
		s := Symbol{Symbol: strings.ToUpper(strings.TrimSpace(record[symbolCol]))}
		if companyCol >= 0 && len(record) > companyCol {
			s.Company = strings.TrimSpace(record[companyCol])
		}
		if sectorCol >= 0 && len(record) > sectorCol {
			s.Sector = strings.TrimSpace(record[sectorCol])
		}
		symbols = append(symbols, s)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("constituents CSV yielded no symbols")
	}
	return symbols, nil
}

// findColumns maps the header to column indices; mirrors disagree on exact
// header names.
func findColumns(header []string) (symbolCol, companyCol, sectorCol int) {
	symbolCol, companyCol, sectorCol = -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "symbol", "ticker":
			symbolCol = i
		case "name", "company", "security":
			companyCol = i
		case "sector", "gics sector":
			sectorCol = i
		}
	}
	return symbolCol, companyCol, sectorCol
}

// seedSymbols answers before the first successful fetch so the endpoint
// works offline.
func seedSymbols() []Symbol {
	return []Symbol{
		{Symbol: "AAPL", Company: "Apple Inc.", Sector: "Information Technology"},
		{Symbol: "AMZN", Company: "Amazon.com Inc.", Sector: "Consumer Discretionary"},
		{Symbol: "GOOGL", Company: "Alphabet Inc.", Sector: "Communication Services"},
		{Symbol: "JNJ", Company: "Johnson & Johnson", Sector: "Health Care"},
		{Symbol: "JPM", Company: "JPMorgan Chase & Co.", Sector: "Financials"},
		{Symbol: "META", Company: "Meta Platforms Inc.", Sector: "Communication Services"},
		{Symbol: "MSFT", Company: "Microsoft Corporation", Sector: "Information Technology"},
		{Symbol: "NVDA", Company: "NVIDIA Corporation", Sector: "Information Technology"},
		{Symbol: "TSLA", Company: "Tesla Inc.", Sector: "Consumer Discretionary"},
		{Symbol: "XOM", Company: "Exxon Mobil Corporation", Sector: "Energy"},
	}
}
