package calculator

import (
	"math"

	"MarketConfluence/internal/model"
)

// TrueRange returns max(h-l, |h-prevClose|, |l-prevClose|).
func TrueRange(c model.Candle, prevClose float64) float64 {
	return math.Max(c.High-c.Low, math.Max(math.Abs(c.High-prevClose), math.Abs(c.Low-prevClose)))
}

// ATRSeries computes Wilder-smoothed ATR at every index.
// Before warm-up (period+1 candles) each index holds the mean high-low range seen so far.
func ATRSeries(candles []model.Candle, period int) []float64 {
	out := make([]float64, len(candles))
	if len(candles) == 0 {
		return out
	}
	sumRange := 0.0
	for i, c := range candles {
		sumRange += c.High - c.Low
		out[i] = sumRange / float64(i+1)
	}
	if period <= 0 || len(candles) < period+1 {
		return out
	}

	atr := 0.0
	for i := 1; i <= period; i++ {
		atr += TrueRange(candles[i], candles[i-1].Close)
	}
	atr /= float64(period)
	out[period] = atr
	for i := period + 1; i < len(candles); i++ {
		tr := TrueRange(candles[i], candles[i-1].Close)
		atr = (atr*float64(period-1) + tr) / float64(period)
		out[i] = atr
	}
	return out
}

// ATR returns the latest Average True Range.
func ATR(candles []model.Candle, period int) float64 {
	if len(candles) == 0 {
		return 0
	}
	s := ATRSeries(candles, period)
	return s[len(s)-1]
}

// Volatility tier boundaries on ATR as a percentage of price.
const (
	VolatilityLowPct     = 0.3
	VolatilityHighPct    = 1.0
	VolatilityExtremePct = 2.0
)

// ClassifyVolatility buckets ATR% into a volatility tier.
func ClassifyVolatility(atrPct float64) model.VolatilityTier {
	switch {
	case atrPct >= VolatilityExtremePct:
		return model.VolatilityExtreme
	case atrPct >= VolatilityHighPct:
		return model.VolatilityHigh
	case atrPct < VolatilityLowPct:
		return model.VolatilityLow
	default:
		return model.VolatilityNormal
	}
}

// ATRState bundles ATR, ATR% of price and its volatility tier.
func ATRState(candles []model.Candle, period int, price float64) model.ATRState {
	atr := ATR(candles, period)
	pct := 0.0
	if price > 0 {
		pct = atr / price * 100
	}
	return model.ATRState{Value: atr, Percent: pct, Volatility: ClassifyVolatility(pct)}
}
