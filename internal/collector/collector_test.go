package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketConfluence/internal/model"
)

var t0 = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func hourly(n int) []model.Candle {
	out := make([]model.Candle, n)
	for i := range out {
		p := 100 + float64(i)
		out[i] = model.Candle{
			Time: t0.Add(time.Duration(i) * time.Hour),
			Open: p, High: p + 2, Low: p - 1, Close: p + 1, Volume: 10,
		}
	}
	return out
}

func TestResample_H1ToH4(t *testing.T) {
	out := Resample(hourly(10), model.H4)
	require.Len(t, out, 3)

	first := out[0]
	assert.Equal(t, t0, first.Time)
	assert.Equal(t, 100.0, first.Open)
	assert.Equal(t, 105.0, first.High)
	assert.Equal(t, 99.0, first.Low)
	assert.Equal(t, 104.0, first.Close)
	assert.Equal(t, 40.0, first.Volume)

	last := out[2]
	assert.Equal(t, t0.Add(8*time.Hour), last.Time)
	assert.Equal(t, 20.0, last.Volume, "partial bucket keeps what it has")
}

func TestResample_Empty(t *testing.T) {
	assert.Nil(t, Resample(nil, model.H4))
}

func TestYahooSymbol(t *testing.T) {
	f := NewYahooFetcher("")
	assert.Equal(t, "GC=F", f.yahooSymbol("xauusd"))
	assert.Equal(t, "EURUSD=X", f.yahooSymbol("EURUSD"))
	assert.Equal(t, "AAPL", f.yahooSymbol("AAPL"))
}

func yahooServer(t *testing.T, gotInterval *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotInterval = r.URL.Query().Get("interval")
		ts := make([]int64, 0, 9)
		var open, high, low, cls, vol []any
		for i := 0; i < 9; i++ {
			ts = append(ts, t0.Add(time.Duration(i)*time.Hour).Unix())
			p := 100 + float64(i)
			if i == 4 {
				open, high, low, cls, vol = append(open, nil), append(high, nil), append(low, nil), append(cls, nil), append(vol, nil)
				continue
			}
			open, high, low, cls, vol = append(open, p), append(high, p+2), append(low, p-1), append(cls, p+1), append(vol, 10.0)
		}
		body := map[string]any{"chart": map[string]any{"result": []any{map[string]any{
			"meta":      map[string]any{"regularMarketPrice": 2345.6},
			"timestamp": ts,
			"indicators": map[string]any{"quote": []any{map[string]any{
				"open": open, "high": high, "low": low, "close": cls, "volume": vol,
			}}},
		}}}}
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestYahooFetcher_FetchCandles(t *testing.T) {
	var interval string
	srv := yahooServer(t, &interval)
	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	candles, err := f.FetchCandles(context.Background(), "XAUUSD", model.H1, 5)
	require.NoError(t, err)
	assert.Equal(t, "60m", interval)
	require.Len(t, candles, 5, "null bar skipped and trimmed to limit")
	assert.Equal(t, 109.0, candles[4].Close)

	h4, err := f.FetchCandles(context.Background(), "XAUUSD", model.H4, 0)
	require.NoError(t, err)
	require.Len(t, h4, 3)
	assert.Equal(t, 30.0, h4[1].Volume, "bucket 4-7 is missing its null bar")

	price, err := f.FetchLatestPrice(context.Background(), "XAUUSD")
	require.NoError(t, err)
	assert.Equal(t, 2345.6, price)
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()
	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	_, err := f.FetchCandles(context.Background(), "NOPE", model.D1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestRESTFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		q := r.URL.Query()
		switch r.URL.Path {
		case "/api/v1/quote":
			_ = json.NewEncoder(w).Encode(map[string]float64{"price": 1.0842})
		case "/api/v1/candles":
			if q.Get("timeframe") == "H4" {
				http.Error(w, "unsupported timeframe", http.StatusBadRequest)
				return
			}
			assert.Equal(t, "EURUSD", q.Get("symbol"))
			var bars []restBar
			for i := 7; i >= 0; i-- { // newest first
				c := hourly(8)[i]
				bars = append(bars, restBar{Timestamp: c.Time.Unix(), Open: c.Open, High: c.High, Low: c.Low, Close: c.Close, Volume: c.Volume})
			}
			_ = json.NewEncoder(w).Encode(bars)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	f := NewRESTFetcher(srv.URL, "secret", "")

	h1, err := f.FetchCandles(context.Background(), "EURUSD", model.H1, 8)
	require.NoError(t, err)
	require.Len(t, h1, 8)
	assert.True(t, h1[0].Time.Before(h1[7].Time), "candles must be ascending")

	h4, err := f.FetchCandles(context.Background(), "EURUSD", model.H4, 2)
	require.NoError(t, err)
	require.Len(t, h4, 2)
	assert.Equal(t, 40.0, h4[0].Volume)

	price, err := f.FetchLatestPrice(context.Background(), "EURUSD")
	require.NoError(t, err)
	assert.Equal(t, 1.0842, price)
}

func TestRESTFetcher_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewRESTFetcher(srv.URL, "", "").FetchCandles(context.Background(), "X", model.H1, 5)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "status 500"), err.Error())
}

func TestMockFetcher(t *testing.T) {
	now := func() time.Time { return t0.Add(90 * time.Minute) }
	m := &MockFetcher{Price: 2000, Now: now}

	a, err := m.FetchCandles(context.Background(), "XAUUSD", model.H1, 250)
	require.NoError(t, err)
	b, _ := m.FetchCandles(context.Background(), "XAUUSD", model.H1, 250)
	require.Len(t, a, 250)
	assert.Equal(t, a, b, "mock data must be deterministic")
	assert.Equal(t, t0.Add(time.Hour), a[249].Time)
	for i := 1; i < len(a); i++ {
		require.True(t, a[i].Time.After(a[i-1].Time))
		require.GreaterOrEqual(t, a[i].High, a[i].Close)
		require.LessOrEqual(t, a[i].Low, a[i].Close)
	}

	other, _ := m.FetchCandles(context.Background(), "EURUSD", model.H1, 250)
	assert.NotEqual(t, a[100].Close, other[100].Close)

	price, err := m.FetchLatestPrice(context.Background(), "XAUUSD")
	require.NoError(t, err)
	assert.InDelta(t, 2000, price, 2000*0.02)

	fixed := &MockFetcher{Data: map[model.Timeframe][]model.Candle{model.D1: hourly(3)}}
	got, _ := fixed.FetchCandles(context.Background(), "X", model.D1, 2)
	assert.Len(t, got, 2)
}
