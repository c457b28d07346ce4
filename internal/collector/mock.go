package collector

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"MarketConfluence/internal/model"
)

// MockFetcher returns deterministic synthetic data for development and testing.
// Data overrides the generated series per timeframe.
type MockFetcher struct {
	Price float64
	Data  map[model.Timeframe][]model.Candle
	Now   func() time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCandles(_ context.Context, symbol string, tf model.Timeframe, limit int) ([]model.Candle, error) {
	if data, ok := m.Data[tf]; ok {
		return lastN(data, limit), nil
	}
	return generateMockCandles(symbol, tf, m.basePrice(), limit, m.now()), nil
}

func (m *MockFetcher) FetchLatestPrice(_ context.Context, symbol string) (float64, error) {
	bars := generateMockCandles(symbol, model.M1, m.basePrice(), 1, m.now())
	return bars[0].Close, nil
}

func (m *MockFetcher) basePrice() float64 {
	if m.Price > 0 {
		return m.Price
	}
	return 100
}

func (m *MockFetcher) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// generateMockCandles produces a gently trending wave ending at now. The phase depends on
// the symbol so different instruments do not move in lockstep.
func generateMockCandles(symbol string, tf model.Timeframe, base float64, count int, now time.Time) []model.Candle {
	if count <= 0 {
		return nil
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToUpper(symbol)))
	phase := float64(h.Sum32()%360) * math.Pi / 180

	step := tf.Duration()
	end := now.UTC().Truncate(step)
	bars := make([]model.Candle, count)
	prev := base
	for i := 0; i < count; i++ {
		x := float64(i - count + 1)
		p := base * (1 + 0.0004*x + 0.01*math.Sin(x/12+phase))
		bars[i] = model.Candle{
			Time:   end.Add(time.Duration(i-count+1) * step),
			Open:   prev,
			High:   math.Max(prev, p) * 1.002,
			Low:    math.Min(prev, p) * 0.998,
			Close:  p,
			Volume: 1000 + 200*math.Abs(math.Cos(x/7+phase)),
		}
		prev = p
	}
	return bars
}
