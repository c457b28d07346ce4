package calculator

import (
	"math"

	"MarketConfluence/internal/model"
)

// DefaultSqueezeBandwidth is the bandwidth under which bands are considered squeezed.
const DefaultSqueezeBandwidth = 0.02

// Bollinger computes bands over the last period closes with k population standard deviations.
// Below warm-up the bands collapse to the last close with %B 0.5.
func Bollinger(closes []float64, period int, k float64) model.BollingerState {
	if len(closes) == 0 {
		return model.BollingerState{PercentB: 0.5}
	}
	last := closes[len(closes)-1]
	if period <= 0 || len(closes) < period {
		return model.BollingerState{Upper: last, Middle: last, Lower: last, PercentB: 0.5}
	}

	window := closes[len(closes)-period:]
	mid := SMA(window, period)
	variance := 0.0
	for _, v := range window {
		variance += (v - mid) * (v - mid)
	}
	sd := math.Sqrt(variance / float64(period))

	b := model.BollingerState{
		Upper:    mid + k*sd,
		Middle:   mid,
		Lower:    mid - k*sd,
		PercentB: 0.5,
	}
	if width := b.Upper - b.Lower; width > 0 {
		b.PercentB = (last - b.Lower) / width
	}
	if mid != 0 {
		b.Bandwidth = (b.Upper - b.Lower) / mid
	}
	b.Squeeze = b.Bandwidth < DefaultSqueezeBandwidth
	return b
}
