package levels

import "MarketConfluence/internal/model"

// ComputePivots returns one family of pivot levels from the prior period's high, low and close.
func ComputePivots(high, low, close float64, kind model.PivotType) model.PivotLevels {
	p := (high + low + close) / 3
	r := high - low
	pl := model.PivotLevels{Type: kind, Pivot: p}

	switch kind {
	case model.PivotFibonacci:
		pl.R1, pl.S1 = p+0.382*r, p-0.382*r
		pl.R2, pl.S2 = p+0.618*r, p-0.618*r
		pl.R3, pl.S3 = p+r, p-r
		pl.Strongest = []float64{pl.S2, pl.R2}
	case model.PivotCamarilla:
		pl.R1, pl.S1 = close+r*1.1/12, close-r*1.1/12
		pl.R2, pl.S2 = close+r*1.1/6, close-r*1.1/6
		pl.R3, pl.S3 = close+r*1.1/4, close-r*1.1/4
		pl.R4, pl.S4 = close+r*1.1/2, close-r*1.1/2
		pl.Strongest = []float64{pl.S3, pl.R3}
	default:
		pl.Type = model.PivotClassic
		pl.R1, pl.S1 = 2*p-low, 2*p-high
		pl.R2, pl.S2 = p+r, p-r
		pl.R3, pl.S3 = high+2*(p-low), low-2*(high-p)
	}
	return pl
}

// AllPivots computes classic, Fibonacci and Camarilla pivots together.
func AllPivots(high, low, close float64) model.PivotPoints {
	return model.PivotPoints{
		Classic:   ComputePivots(high, low, close, model.PivotClassic),
		Fibonacci: ComputePivots(high, low, close, model.PivotFibonacci),
		Camarilla: ComputePivots(high, low, close, model.PivotCamarilla),
	}
}

// PriorPeriodPivots uses the second-to-last candle, the last complete period, of a daily series.
// It reports false when the series is empty.
func PriorPeriodPivots(daily []model.Candle) (model.PivotPoints, bool) {
	switch len(daily) {
	case 0:
		return model.PivotPoints{}, false
	case 1:
		c := daily[0]
		return AllPivots(c.High, c.Low, c.Close), true
	default:
		c := daily[len(daily)-2]
		return AllPivots(c.High, c.Low, c.Close), true
	}
}
