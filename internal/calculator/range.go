package calculator

import (
	"math"

	"MarketConfluence/internal/model"
)

// HighLow scans the most recent lookback candles and returns the highest high and lowest low.
// A non-positive lookback scans everything. Empty input yields zeros.
func HighLow(candles []model.Candle, lookback int) (high, low float64) {
	if len(candles) == 0 {
		return 0, 0
	}
	n := len(candles)
	start := 0
	if lookback > 0 && n > lookback {
		start = n - lookback
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if candles[i].High > high {
			high = candles[i].High
		}
		if candles[i].Low < low {
			low = candles[i].Low
		}
	}
	return high, low
}

// PositionInRange returns where current sits between low and high (0.0~1.0).
// A degenerate range reports the midpoint.
func PositionInRange(current, high, low float64) float64 {
	if high <= low {
		return 0.5
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos
}
