// Package collector fetches candles and quotes from market data providers.
package collector

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"MarketConfluence/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchCandles returns up to limit candles ascending by time, the newest last.
	FetchCandles(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.Candle, error)
	FetchLatestPrice(ctx context.Context, symbol string) (float64, error)
	Name() string
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func sortByTime(candles []model.Candle) {
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
}

func lastN(candles []model.Candle, n int) []model.Candle {
	if n > 0 && len(candles) > n {
		return candles[len(candles)-n:]
	}
	return candles
}
