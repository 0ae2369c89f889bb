// Package marketdata fetches daily OHLCV history from the Yahoo Finance
// chart API. It is the engine's only collaborator with the outside world:
// responses are normalized and sanitized here, so everything downstream
// sees flat, finite bar series.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"stock-signals/internal/model"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	// Yahoo rejects requests without a browser-ish User-Agent.
	userAgent = "Mozilla/5.0 (compatible; stock-signals/1.0)"

	breakerMaxFailures  = 5
	breakerResetTimeout = 30 * time.Second
)

// chartResponse mirrors the nested chart→result→indicators→quote grouping
// of the Yahoo chart endpoint. Missing values arrive as JSON nulls and
// decode to zero; sanitization drops those rows.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// YahooProvider implements model.BarProvider against the chart API.
type YahooProvider struct {
	baseURL string
	client  *http.Client
	breaker *CircuitBreaker
}

// NewYahooProvider creates a provider with a shared HTTP client and a
// circuit breaker guarding the endpoint.
func NewYahooProvider() *YahooProvider {
	return &YahooProvider{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		breaker: NewCircuitBreaker(breakerMaxFailures, breakerResetTimeout),
	}
}

// Breaker returns the provider's circuit breaker so callers can observe
// state transitions (metrics, health reporting).
func (p *YahooProvider) Breaker() *CircuitBreaker { return p.breaker }

// NewYahooProviderWithBase creates a provider against a custom base URL.
// Used by tests to point at a local server.
func NewYahooProviderWithBase(baseURL string) *YahooProvider {
	p := NewYahooProvider()
	p.baseURL = baseURL
	return p
}

// DailyBars fetches up to lookbackDays of daily bars for symbol, oldest
// first, normalized and sanitized. Honors ctx deadlines; a deadline hit
// surfaces as an ordinary fetch error.
func (p *YahooProvider) DailyBars(ctx context.Context, symbol string, lookbackDays int) (model.Series, error) {
	if lookbackDays <= 0 {
		lookbackDays = 365
	}

	var series model.Series
	err := p.breaker.Execute(func() error {
		var err error
		series, err = p.fetch(ctx, symbol, lookbackDays)
		return err
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

func (p *YahooProvider) fetch(ctx context.Context, symbol string, lookbackDays int) (model.Series, error) {
	now := time.Now()
	q := url.Values{}
	q.Set("period1", fmt.Sprintf("%d", now.AddDate(0, 0, -lookbackDays).Unix()))
	q.Set("period2", fmt.Sprintf("%d", now.Unix()))
	q.Set("interval", "1d")

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.baseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("marketdata: build request %s: %w", symbol, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marketdata: fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("marketdata: fetch %s: unexpected status %d", symbol, resp.StatusCode)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("marketdata: decode %s: %w", symbol, err)
	}

	return normalize(symbol, chart)
}

// normalize flattens the provider's nested column grouping into a bar
// series and applies the central sanitization pass.
func normalize(symbol string, chart chartResponse) (model.Series, error) {
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("marketdata: %s: provider error %s: %s",
			symbol, chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("marketdata: %s: empty chart result", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("marketdata: %s: missing quote columns", symbol)
	}
	quote := result.Indicators.Quote[0]

	n := len(result.Timestamp)
	if len(quote.Close) < n {
		n = len(quote.Close)
	}

	series := make(model.Series, 0, n)
	for i := 0; i < n; i++ {
		series = append(series, model.Bar{
			Date:   time.Unix(result.Timestamp[i], 0).UTC().Truncate(24 * time.Hour),
			Open:   colAt(quote.Open, i),
			High:   colAt(quote.High, i),
			Low:    colAt(quote.Low, i),
			Close:  quote.Close[i],
			Volume: volAt(quote.Volume, i),
		})
	}

	clean := model.Sanitize(series)
	if len(clean) == 0 {
		return nil, fmt.Errorf("marketdata: %s: no usable bars", symbol)
	}
	if dropped := len(series) - len(clean); dropped > 0 {
		log.Printf("[marketdata] %s: dropped %d unusable bars of %d", symbol, dropped, len(series))
	}
	return clean, nil
}

func colAt(col []float64, i int) float64 {
	if i < len(col) {
		return col[i]
	}
	return 0
}

func volAt(col []int64, i int) int64 {
	if i < len(col) {
		return col[i]
	}
	return 0
}
