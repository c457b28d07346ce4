package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/markcheno/go-talib"

	"MarketConfluence/internal/model"
)

func closeTo(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// wave builds a deterministic oscillating series around base.
func wave(n int, base float64) []model.Candle {
	out := make([]model.Candle, n)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := base
	for i := 0; i < n; i++ {
		c := base + 5*math.Sin(float64(i)/3) + float64(i%7)*0.3
		out[i] = model.Candle{
			Time:   t0.Add(time.Duration(i) * time.Hour),
			Open:   prev,
			High:   math.Max(prev, c) + 0.8,
			Low:    math.Min(prev, c) - 0.6,
			Close:  c,
			Volume: 1000 + float64(i%5)*150,
		}
		prev = c
	}
	return out
}

func flat(n int, price float64) []model.Candle {
	out := make([]model.Candle, n)
	for i := range out {
		out[i] = model.Candle{Open: price, High: price, Low: price, Close: price, Volume: 100}
	}
	return out
}

func TestEMA_ConstantSeries(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 42.5
	}
	for _, p := range []int{5, 20, 50} {
		if got := EMA(values, p); !closeTo(got, 42.5, 1e-12) {
			t.Errorf("EMA(%d) of constant series = %v, want 42.5", p, got)
		}
	}
}

func TestEMA_SeededFromFirstValue(t *testing.T) {
	s := EMASeries([]float64{10, 20}, 3)
	// alpha = 0.5
	if s[0] != 10 || s[1] != 15 {
		t.Errorf("unexpected EMA series %v", s)
	}
}

func TestEMA_WarmupEchoesLastValue(t *testing.T) {
	if got := EMA([]float64{1, 2, 3}, 20); got != 3 {
		t.Errorf("expected last value echo, got %v", got)
	}
	if got := EMA(nil, 20); got != 0 {
		t.Errorf("expected 0 for empty input, got %v", got)
	}
}

func TestSMA(t *testing.T) {
	if got := SMA([]float64{1, 2, 3, 4, 5}, 2); got != 4.5 {
		t.Errorf("SMA = %v, want 4.5", got)
	}
	if got := SMA([]float64{2, 4}, 5); got != 3 {
		t.Errorf("SMA below warm-up = %v, want 3", got)
	}
	if got := SMA(nil, 5); got != 0 {
		t.Errorf("SMA empty = %v, want 0", got)
	}
}

func TestRSI_Bounds(t *testing.T) {
	closes := model.Closes(wave(120, 100))
	for i, v := range RSISeries(closes, 14) {
		if v < 0 || v > 100 {
			t.Fatalf("RSI[%d] = %v out of [0,100]", i, v)
		}
	}
}

func TestRSI_AllRising(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	if got := RSI(closes, 14); got != 100 {
		t.Errorf("RSI all rising = %v, want 100", got)
	}
}

func TestRSI_Warmup(t *testing.T) {
	if got := RSI([]float64{1, 2, 3}, 14); got != NeutralRSI {
		t.Errorf("RSI below warm-up = %v, want %v", got, NeutralRSI)
	}
	if got := RSI(nil, 14); got != NeutralRSI {
		t.Errorf("RSI empty = %v", got)
	}
}

func TestRSI_MatchesTALib(t *testing.T) {
	closes := model.Closes(wave(200, 250))
	ours := RSISeries(closes, 14)
	ref := talib.Rsi(closes, 14)
	for i := 14; i < len(closes); i++ {
		if !closeTo(ours[i], ref[i], 1e-6) {
			t.Fatalf("RSI[%d] = %v, talib %v", i, ours[i], ref[i])
		}
	}
}

func TestATR_NonNegativeAndFlat(t *testing.T) {
	for i, v := range ATRSeries(wave(100, 50), 14) {
		if v < 0 {
			t.Fatalf("ATR[%d] negative: %v", i, v)
		}
	}
	if got := ATR(flat(40, 10), 14); got != 0 {
		t.Errorf("ATR of flat series = %v, want 0", got)
	}
}

func TestATR_WarmupMeanRange(t *testing.T) {
	candles := []model.Candle{
		{High: 11, Low: 10, Close: 10.5},
		{High: 13, Low: 10, Close: 12},
	}
	if got := ATR(candles, 14); got != 2 {
		t.Errorf("ATR below warm-up = %v, want 2", got)
	}
	if got := ATR(nil, 14); got != 0 {
		t.Errorf("ATR empty = %v", got)
	}
}

func TestATR_MatchesTALib(t *testing.T) {
	candles := wave(150, 1900)
	ours := ATRSeries(candles, 14)
	ref := talib.Atr(model.Highs(candles), model.Lows(candles), model.Closes(candles), 14)
	for i := 14; i < len(candles); i++ {
		if !closeTo(ours[i], ref[i], 1e-6) {
			t.Fatalf("ATR[%d] = %v, talib %v", i, ours[i], ref[i])
		}
	}
}

func TestClassifyVolatility(t *testing.T) {
	tests := []struct {
		pct  float64
		want model.VolatilityTier
	}{
		{0.1, model.VolatilityLow},
		{0.3, model.VolatilityNormal},
		{0.99, model.VolatilityNormal},
		{1.0, model.VolatilityHigh},
		{2.0, model.VolatilityExtreme},
		{5.0, model.VolatilityExtreme},
	}
	for _, tt := range tests {
		if got := ClassifyVolatility(tt.pct); got != tt.want {
			t.Errorf("ClassifyVolatility(%v) = %s, want %s", tt.pct, got, tt.want)
		}
	}
}

func TestBollinger(t *testing.T) {
	closes := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	b := Bollinger(closes, 8, 2)
	// population sd of this set is 2
	if !closeTo(b.Middle, 5, 1e-12) || !closeTo(b.Upper, 9, 1e-12) || !closeTo(b.Lower, 1, 1e-12) {
		t.Errorf("unexpected bands %+v", b)
	}
	if !closeTo(b.PercentB, 1, 1e-12) {
		t.Errorf("%%B = %v, want 1", b.PercentB)
	}
	if !closeTo(b.Bandwidth, 1.6, 1e-12) {
		t.Errorf("bandwidth = %v, want 1.6", b.Bandwidth)
	}
}

func TestBollinger_DegenerateWidth(t *testing.T) {
	b := Bollinger([]float64{3, 3, 3, 3, 3}, 5, 2)
	if b.PercentB != 0.5 || b.Bandwidth != 0 || !b.Squeeze {
		t.Errorf("flat bands = %+v", b)
	}
	short := Bollinger([]float64{7, 8}, 20, 2)
	if short.Upper != 8 || short.Lower != 8 || short.PercentB != 0.5 {
		t.Errorf("warm-up bands = %+v", short)
	}
}

func TestMACD_WarmupAndCross(t *testing.T) {
	if st := MACD(make([]float64, 20), 12, 26, 9); st.Cross != model.MACDNone || st.Histogram != 0 {
		t.Errorf("expected zero MACD below warm-up, got %+v", st)
	}

	rising := make([]float64, 80)
	for i := range rising {
		rising[i] = 100 + float64(i)*float64(i)*0.01
	}
	st := MACD(rising, 12, 26, 9)
	if st.MACD <= 0 || st.Histogram <= 0 {
		t.Errorf("accelerating series should have positive MACD/histogram, got %+v", st)
	}
	if st.Cross != model.MACDBullish && st.Cross != model.MACDBullishCross {
		t.Errorf("cross = %s", st.Cross)
	}
}

func TestOscillatorSentinels(t *testing.T) {
	short := wave(5, 100)
	if k, d := Stochastic(short, 14, 3, 3); k != 50 || d != 50 {
		t.Errorf("Stochastic sentinel = %v/%v", k, d)
	}
	if got := WilliamsR(short, 14); got != -50 {
		t.Errorf("WilliamsR sentinel = %v", got)
	}
	if got := MFI(short, 14); got != 50 {
		t.Errorf("MFI sentinel = %v", got)
	}
	if a, p, m := ADX(wave(20, 100), 14); a != 0 || p != 0 || m != 0 {
		t.Errorf("ADX sentinel = %v %v %v", a, p, m)
	}
	if got := OBV(nil); got != 0 {
		t.Errorf("OBV empty = %v", got)
	}
}

func TestOscillatorRanges(t *testing.T) {
	candles := wave(120, 100)
	k, d := Stochastic(candles, 14, 3, 3)
	if k < 0 || k > 100 || d < 0 || d > 100 {
		t.Errorf("stochastic out of range: %v %v", k, d)
	}
	if w := WilliamsR(candles, 14); w < -100 || w > 0 {
		t.Errorf("williams %%R out of range: %v", w)
	}
	if m := MFI(candles, 14); m < 0 || m > 100 {
		t.Errorf("MFI out of range: %v", m)
	}
	adx, p, m := ADX(candles, 14)
	if adx < 0 || adx > 100 || p < 0 || m < 0 {
		t.Errorf("ADX out of range: %v %v %v", adx, p, m)
	}
}

func TestOBV(t *testing.T) {
	candles := []model.Candle{
		{Close: 10, Volume: 100},
		{Close: 11, Volume: 50},
		{Close: 11, Volume: 70},
		{Close: 9, Volume: 30},
	}
	want := []float64{0, 50, 50, 20}
	got := OBVSeries(candles)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("OBV = %v, want %v", got, want)
		}
	}
}

func TestLinearRegSlope(t *testing.T) {
	values := []float64{1, 3, 5, 7, 9, 11}
	if got := LinearRegSlope(values, 5); !closeTo(got, 2, 1e-9) {
		t.Errorf("slope = %v, want 2", got)
	}
	if got := LinearRegSlope(values[:2], 5); got != 0 {
		t.Errorf("slope below warm-up = %v", got)
	}
}

func TestVolume(t *testing.T) {
	candles := flat(20, 10)
	candles[19].Volume = 300
	st := Volume(candles, 20, 1.2)
	if !st.Confirms || st.Ratio <= 1.2 {
		t.Errorf("expected volume confirmation, got %+v", st)
	}
	if st.Trend != model.VolumeIncreasing {
		t.Errorf("trend = %s, want INCREASING", st.Trend)
	}
}

func TestRSIDivergence_Bullish(t *testing.T) {
	closes := []float64{10, 9, 8, 9, 10, 11, 10, 9, 7.5, 9, 10}
	rsi := []float64{50, 40, 25, 40, 50, 55, 48, 40, 32, 45, 52}
	if got := RSIDivergence(closes, rsi, 0); got != model.DirectionUp {
		t.Errorf("divergence = %s, want UP", got)
	}
	if got := RSIDivergence(closes, rsi[:3], 0); got != model.DirectionNeutral {
		t.Errorf("mismatched input should be neutral, got %s", got)
	}
}

func TestHighLowAndPosition(t *testing.T) {
	candles := []model.Candle{{High: 5, Low: 1}, {High: 9, Low: 4}, {High: 7, Low: 3}}
	h, l := HighLow(candles, 2)
	if h != 9 || l != 3 {
		t.Errorf("HighLow = %v/%v", h, l)
	}
	if got := PositionInRange(6, 9, 3); got != 0.5 {
		t.Errorf("position = %v", got)
	}
	if got := PositionInRange(6, 3, 3); got != 0.5 {
		t.Errorf("degenerate position = %v", got)
	}
	if got := PositionInRange(20, 9, 3); got != 1 {
		t.Errorf("clamped position = %v", got)
	}
}
