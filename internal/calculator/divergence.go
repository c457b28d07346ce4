package calculator

import "MarketConfluence/internal/model"

const pivotWidth = 2

// RSIDivergence looks for regular divergence between the last two close pivots and RSI
// inside the trailing lookback window.
// Lower price low with higher RSI low is UP; higher price high with lower RSI high is DOWN.
func RSIDivergence(closes, rsi []float64, lookback int) model.Direction {
	n := len(closes)
	if n != len(rsi) || n < 2*pivotWidth+3 {
		return model.DirectionNeutral
	}
	start := 0
	if lookback > 0 && n > lookback {
		start = n - lookback
	}

	var lows, highs []int
	for i := start + pivotWidth; i < n-pivotWidth; i++ {
		isLow, isHigh := true, true
		for j := i - pivotWidth; j <= i+pivotWidth; j++ {
			if j == i {
				continue
			}
			if closes[j] < closes[i] {
				isLow = false
			}
			if closes[j] > closes[i] {
				isHigh = false
			}
		}
		if isLow && !isHigh {
			lows = append(lows, i)
		}
		if isHigh && !isLow {
			highs = append(highs, i)
		}
	}

	if k := len(lows); k >= 2 {
		a, b := lows[k-2], lows[k-1]
		if closes[b] < closes[a] && rsi[b] > rsi[a] {
			return model.DirectionUp
		}
	}
	if k := len(highs); k >= 2 {
		a, b := highs[k-2], highs[k-1]
		if closes[b] > closes[a] && rsi[b] < rsi[a] {
			return model.DirectionDown
		}
	}
	return model.DirectionNeutral
}
