package structure

import "MarketConfluence/internal/model"

// FindSwings returns fractal pivots in index order.
// A high pivot is >= every high within left bars before and right bars after it; lows mirror that.
// Pivots with fewer than right bars after them (but at least one) are returned as unconfirmed.
func FindSwings(candles []model.Candle, left, right int) []model.SwingPoint {
	if left < 1 {
		left = 1
	}
	if right < 1 {
		right = 1
	}
	n := len(candles)
	var swings []model.SwingPoint
	for i := left; i < n-1; i++ {
		end := i + right
		status := model.SwingConfirmed
		if end >= n {
			end = n - 1
			status = model.SwingUnconfirmed
		}

		isHigh, isLow := true, true
		for j := i - left; j <= end; j++ {
			if j == i {
				continue
			}
			if candles[j].High > candles[i].High {
				isHigh = false
			}
			if candles[j].Low < candles[i].Low {
				isLow = false
			}
		}
		if isHigh {
			swings = append(swings, model.SwingPoint{Index: i, Price: candles[i].High, Kind: model.SwingHigh, Status: status})
		}
		if isLow {
			swings = append(swings, model.SwingPoint{Index: i, Price: candles[i].Low, Kind: model.SwingLow, Status: status})
		}
	}
	return swings
}

// Confirmed filters out unconfirmed pivots.
func Confirmed(swings []model.SwingPoint) []model.SwingPoint {
	out := make([]model.SwingPoint, 0, len(swings))
	for _, s := range swings {
		if s.Status == model.SwingConfirmed {
			out = append(out, s)
		}
	}
	return out
}

// ofKind returns the prices of swings of one kind, oldest first.
func ofKind(swings []model.SwingPoint, kind model.SwingKind) []float64 {
	var out []float64
	for _, s := range swings {
		if s.Kind == kind {
			out = append(out, s.Price)
		}
	}
	return out
}

func lastN(values []float64, n int) []float64 {
	if n > 0 && len(values) > n {
		return values[len(values)-n:]
	}
	return values
}

// Classify labels the last n swings: HH_HL when highs and lows both rise strictly,
// LL_LH when both fall strictly, RANGING otherwise.
func Classify(swings []model.SwingPoint, n int) model.StructureType {
	recent := swings
	if n > 0 && len(recent) > n {
		recent = recent[len(recent)-n:]
	}
	highs := ofKind(recent, model.SwingHigh)
	lows := ofKind(recent, model.SwingLow)
	if len(highs) < 2 || len(lows) < 2 {
		return model.StructureRanging
	}
	switch {
	case strictlyRising(highs) && strictlyRising(lows):
		return model.StructureBullish
	case strictlyFalling(highs) && strictlyFalling(lows):
		return model.StructureBearish
	default:
		return model.StructureRanging
	}
}

func strictlyRising(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if v[i] <= v[i-1] {
			return false
		}
	}
	return true
}

func strictlyFalling(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if v[i] >= v[i-1] {
			return false
		}
	}
	return true
}
