package calculator

import (
	"math"

	"github.com/markcheno/go-talib"

	"MarketConfluence/internal/model"
)

// ADX returns Wilder's ADX with +DI and -DI for the latest bar.
// It needs 2*period candles; below that all three are 0.
//
// ADX measures trend strength only. Callers must gate direction on DISpread.
func ADX(candles []model.Candle, period int) (adx, plusDI, minusDI float64) {
	if period <= 0 || len(candles) < 2*period {
		return 0, 0, 0
	}
	h, l, c := model.Highs(candles), model.Lows(candles), model.Closes(candles)
	a := talib.Adx(h, l, c, period)
	p := talib.PlusDI(h, l, c, period)
	m := talib.MinusDI(h, l, c, period)
	n := len(candles) - 1
	return a[n], p[n], m[n]
}

// DISpread is |+DI - -DI|.
func DISpread(plusDI, minusDI float64) float64 {
	return math.Abs(plusDI - minusDI)
}
