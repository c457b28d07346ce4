package calculator

import (
	"github.com/markcheno/go-talib"

	"MarketConfluence/internal/model"
)

// MACD computes the MACD line, signal line and histogram with their latest crossover.
// Fewer than slow+signal-1 closes yields zeros and MACDNone.
func MACD(closes []float64, fast, slow, signal int) model.MACDState {
	if fast <= 0 || slow <= 0 || signal <= 0 || len(closes) < slow+signal-1 || len(closes) < fast+signal-1 {
		return model.MACDState{Cross: model.MACDNone}
	}
	macd, sig, hist := talib.Macd(closes, fast, slow, signal)
	n := len(closes)
	st := model.MACDState{
		MACD:      macd[n-1],
		Signal:    sig[n-1],
		Histogram: hist[n-1],
	}

	prev := 0.0
	hasPrev := n >= slow+signal
	if hasPrev {
		prev = hist[n-2]
	}
	cur := hist[n-1]
	switch {
	case hasPrev && prev <= 0 && cur > 0:
		st.Cross = model.MACDBullishCross
	case hasPrev && prev >= 0 && cur < 0:
		st.Cross = model.MACDBearishCross
	case cur > 0:
		st.Cross = model.MACDBullish
	case cur < 0:
		st.Cross = model.MACDBearish
	default:
		st.Cross = model.MACDNone
	}
	return st
}
