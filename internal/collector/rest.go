package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"MarketConfluence/internal/model"
)

// RESTFetcher implements Fetcher against a generic JSON candle API:
//
//	GET {base}/api/v1/candles?symbol=XAUUSD&timeframe=H1&limit=250 -> [{timestamp, open, high, low, close, volume}]
//	GET {base}/api/v1/quote?symbol=XAUUSD                          -> {price}
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the candle API.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// FetchCandles requests tf directly. When the API rejects H4 it falls back to
// resampling four times as many H1 candles.
func (f *RESTFetcher) FetchCandles(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.Candle, error) {
	candles, err := f.fetchBars(ctx, symbol, tf, limit)
	if err == nil || tf != model.H4 {
		return candles, err
	}

	log.Printf("[WARN] %s H4 fetch failed, resampling from H1: %v", symbol, err)
	hourly, hourlyErr := f.fetchBars(ctx, symbol, model.H1, limit*4)
	if hourlyErr != nil {
		return nil, fmt.Errorf("H4 fetch failed: %w; H1 fallback also failed: %w", err, hourlyErr)
	}
	return lastN(Resample(hourly, model.H4), limit), nil
}

func (f *RESTFetcher) FetchLatestPrice(ctx context.Context, symbol string) (float64, error) {
	q := url.Values{"symbol": {symbol}}
	var result struct {
		Price float64 `json:"price"`
	}
	if err := f.get(ctx, "/api/v1/quote", q, &result); err != nil {
		return 0, fmt.Errorf("fetch latest price: %w", err)
	}
	if result.Price <= 0 {
		return 0, fmt.Errorf("fetch latest price %s: %w", symbol, model.ErrDataUnavailable)
	}
	return result.Price, nil
}

func (f *RESTFetcher) fetchBars(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.Candle, error) {
	q := url.Values{
		"symbol":    {symbol},
		"timeframe": {string(tf)},
		"limit":     {strconv.Itoa(limit)},
	}
	var bars []restBar
	if err := f.get(ctx, "/api/v1/candles", q, &bars); err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	candles := make([]model.Candle, len(bars))
	for i, b := range bars {
		candles[i] = model.Candle{
			Time:   time.Unix(b.Timestamp, 0).UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	// Ensure chronological order
	sortByTime(candles)
	return lastN(candles, limit), nil
}

func (f *RESTFetcher) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
