package analyzer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketConfluence/internal/model"
	"MarketConfluence/internal/risk"
)

var londonTuesday = time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return londonTuesday }

// growth builds n candles rising by rate per bar, spaced by tf.
func growth(n int, tf model.Timeframe, start, rate float64) []model.Candle {
	out := make([]model.Candle, n)
	t0 := londonTuesday.Add(-time.Duration(n) * tf.Duration())
	prev := start
	for i := range out {
		c := prev * (1 + rate)
		if i == 0 {
			c = start
		}
		out[i] = model.Candle{
			Time:   t0.Add(time.Duration(i) * tf.Duration()),
			Open:   prev,
			High:   max(prev, c) * 1.001,
			Low:    min(prev, c) * 0.999,
			Close:  c,
			Volume: 1000,
		}
		prev = c
	}
	return out
}

type fakeSource struct {
	mu       sync.Mutex
	calls    map[model.Timeframe]int
	series   map[model.Timeframe][]model.Candle
	errs     map[model.Timeframe]error
	price    float64
	priceErr error
	gate     chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		calls:  make(map[model.Timeframe]int),
		series: make(map[model.Timeframe][]model.Candle),
		errs:   make(map[model.Timeframe]error),
	}
}

func (f *fakeSource) FetchCandles(ctx context.Context, _ string, tf model.Timeframe, limit int) ([]model.Candle, error) {
	if f.gate != nil {
		<-f.gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[tf]++
	if err := f.errs[tf]; err != nil {
		return nil, err
	}
	s := f.series[tf]
	if limit > 0 && len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s, nil
}

func (f *fakeSource) FetchLatestPrice(ctx context.Context, _ string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if f.priceErr != nil {
		return 0, f.priceErr
	}
	return f.price, nil
}

func (f *fakeSource) callCount(tf model.Timeframe) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[tf]
}

func rising(tfs ...model.Timeframe) *fakeSource {
	src := newFakeSource()
	for _, tf := range tfs {
		src.series[tf] = growth(250, tf, 100, 0.001)
	}
	return src
}

func TestAnalyzeSingleTimeframe_DailyGrowth(t *testing.T) {
	src := rising(model.D1)
	svc := New(src, DefaultConfig(), WithClock(clock))

	res := svc.AnalyzeSingleTimeframe(context.Background(), "test", model.D1)
	require.True(t, res.Success, res.Error)
	require.NotNil(t, res.Analysis)

	a := res.Analysis
	assert.Equal(t, "TEST", a.Symbol)
	assert.Equal(t, model.TrendBullish, a.Trend)
	assert.Contains(t, []model.Signal{model.SignalBuy, model.SignalStrongBuy}, a.Signal)
	assert.True(t, a.EMA.PriceAboveEMA20)
	assert.Equal(t, 250, a.Candles)
}

func TestAnalyzeSingleTimeframe_Cached(t *testing.T) {
	src := rising(model.H1)
	svc := New(src, DefaultConfig(), WithClock(clock))

	first := svc.AnalyzeSingleTimeframe(context.Background(), "XAUUSD", model.H1)
	second := svc.AnalyzeSingleTimeframe(context.Background(), "xauusd", model.H1)
	require.True(t, first.Success)
	assert.Equal(t, first.Analysis.Score, second.Analysis.Score)
	assert.Equal(t, 1, src.callCount(model.H1), "second call should be served from cache")
}

func TestAnalyzeSingleTimeframe_Unavailable(t *testing.T) {
	src := newFakeSource()
	src.errs[model.H4] = errors.New("provider timeout")
	svc := New(src, DefaultConfig(), WithClock(clock))

	empty := svc.AnalyzeSingleTimeframe(context.Background(), "EURUSD", model.H1)
	assert.False(t, empty.Success)
	assert.Contains(t, empty.Error, model.ErrDataUnavailable.Error())
	assert.Nil(t, empty.Analysis)

	broken := svc.AnalyzeSingleTimeframe(context.Background(), "EURUSD", model.H4)
	assert.False(t, broken.Success)
	assert.Contains(t, broken.Error, "provider timeout")

	// failures are not cached
	svc.AnalyzeSingleTimeframe(context.Background(), "EURUSD", model.H1)
	assert.Equal(t, 2, src.callCount(model.H1))
}

func TestAnalyzeSingleTimeframe_BadInput(t *testing.T) {
	svc := New(newFakeSource(), DefaultConfig())
	assert.False(t, svc.AnalyzeSingleTimeframe(context.Background(), "  ", model.H1).Success)
	assert.False(t, svc.AnalyzeSingleTimeframe(context.Background(), "XAUUSD", "W1").Success)
}

func TestAnalyzeAllTimeframes_Aligned(t *testing.T) {
	cfg := DefaultConfig()
	src := rising(cfg.Timeframes...)
	src.price = 128.3
	svc := New(src, cfg, WithClock(clock))

	res := svc.AnalyzeAllTimeframes(context.Background(), "XAUUSD")
	require.True(t, res.Success, res.Error)
	assert.Len(t, res.Timeframes, len(cfg.Timeframes))
	assert.Empty(t, res.Unavailable)
	assert.Equal(t, 128.3, res.CurrentPrice)

	c := res.Confluence
	require.NotNil(t, c)
	assert.True(t, c.OverallSignal.Bullish(), "signal %s", c.OverallSignal)
	assert.Equal(t, len(cfg.Timeframes), c.BullishCount)
	assert.Equal(t, 100.0, c.AlignmentScore)
	assert.Equal(t, model.D1, c.StrongestTimeframe)

	require.NotNil(t, res.Regime)
	assert.Equal(t, model.H4, res.Regime.Timeframe)
	assert.Equal(t, model.RegimeTrending, res.Regime.Regime)
	assert.Equal(t, model.DirectionUp, res.Regime.Direction)

	require.NotNil(t, res.PriceAction)
	assert.Equal(t, model.H1, res.PriceAction.Timeframe)
	require.NotNil(t, res.VolumeProfile)
	assert.Greater(t, res.VolumeProfile.TotalVolume, 0.0)
	require.NotNil(t, res.PivotPoints)
	assert.Greater(t, res.PivotPoints.Classic.Pivot, 0.0)

	ps := res.PositionSizing
	require.NotNil(t, ps)
	assert.Equal(t, model.DirectionUp, ps.Direction)
	assert.Equal(t, risk.SessionLondon, ps.Session)
	assert.Less(t, ps.StopLoss, ps.Entry)
	assert.Greater(t, ps.TakeProfit, ps.Entry)
	assert.Same(t, &res.Confluence.PositionSizing, ps)
}

func TestAnalyzeAllTimeframes_SeedsSingleCache(t *testing.T) {
	cfg := DefaultConfig()
	src := rising(cfg.Timeframes...)
	src.price = 200
	svc := New(src, cfg, WithClock(clock))

	require.True(t, svc.AnalyzeAllTimeframes(context.Background(), "XAUUSD").Success)
	single := svc.AnalyzeSingleTimeframe(context.Background(), "XAUUSD", model.H4)
	require.True(t, single.Success)
	assert.Equal(t, 1, src.callCount(model.H4))

	again := svc.AnalyzeAllTimeframes(context.Background(), "XAUUSD")
	require.True(t, again.Success)
	assert.Equal(t, 1, src.callCount(model.D1), "MTF result should be cached")
}

func TestAnalyzeAllTimeframes_PartialData(t *testing.T) {
	cfg := DefaultConfig()
	src := rising(model.M15, model.H1)
	src.errs[model.H4] = errors.New("rate limited")
	src.priceErr = errors.New("no quote")
	svc := New(src, cfg, WithClock(clock))

	res := svc.AnalyzeAllTimeframes(context.Background(), "NAS100")
	require.True(t, res.Success, res.Error)
	assert.ElementsMatch(t, []model.Timeframe{model.H4, model.D1}, res.Unavailable)
	assert.Len(t, res.Timeframes, 2)

	// regime falls back to the nearest available timeframe
	assert.Equal(t, model.H1, res.Regime.Timeframe)
	// live quote missing: shortest timeframe close is used
	assert.Equal(t, res.Timeframes[model.M15].CurrentPrice, res.CurrentPrice)
	assert.Equal(t, model.PivotPoints{}, *res.PivotPoints)

	var pivotNote, quoteNote bool
	for _, r := range res.Confluence.Reasons {
		pivotNote = pivotNote || strings.Contains(r, "pivots unavailable")
		quoteNote = quoteNote || strings.Contains(r, "live quote unavailable: using M15 close")
	}
	assert.True(t, pivotNote, "reasons = %v", res.Confluence.Reasons)
	assert.True(t, quoteNote, "reasons = %v", res.Confluence.Reasons)
}

func TestAnalyzeAllTimeframes_NoData(t *testing.T) {
	src := newFakeSource()
	svc := New(src, DefaultConfig(), WithClock(clock))

	res := svc.AnalyzeAllTimeframes(context.Background(), "EURUSD")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, model.ErrDataUnavailable.Error())
	assert.Nil(t, res.Confluence)

	svc.AnalyzeAllTimeframes(context.Background(), "EURUSD")
	assert.Equal(t, 2, src.callCount(model.H1), "failed results should not be cached")
}

func TestAnalyzeAllTimeframes_Cancelled(t *testing.T) {
	cfg := DefaultConfig()
	svc := New(rising(cfg.Timeframes...), cfg, WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := svc.AnalyzeAllTimeframes(ctx, "XAUUSD")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, context.Canceled.Error())
}

func TestAnalyzeAllTimeframes_CollapsesConcurrentMisses(t *testing.T) {
	cfg := DefaultConfig()
	src := rising(cfg.Timeframes...)
	src.price = 150
	src.gate = make(chan struct{})
	svc := New(src, cfg, WithClock(clock))

	var wg sync.WaitGroup
	results := make([]MTFResult, 8)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = svc.AnalyzeAllTimeframes(context.Background(), "XAUUSD")
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	for _, r := range results {
		assert.True(t, r.Success)
	}
	for _, tf := range cfg.Timeframes {
		assert.Equal(t, 1, src.callCount(tf), "timeframe %s fetched more than once", tf)
	}
}

func TestPick(t *testing.T) {
	cfg := DefaultConfig()
	src := rising(model.M15, model.D1)
	svc := New(src, cfg, WithClock(clock))

	res := svc.AnalyzeAllTimeframes(context.Background(), "XAUUSD")
	require.True(t, res.Success)
	// H4 (weight 2.0) is nearer to D1 (2.5) than to M15 (1.0)
	assert.Equal(t, model.D1, res.Regime.Timeframe)
	// H1 (1.5) is nearer to M15 (1.0) than to D1 (2.5)
	assert.Equal(t, model.M15, res.PriceAction.Timeframe)
}
