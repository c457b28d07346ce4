package calculator

import (
	"github.com/markcheno/go-talib"

	"MarketConfluence/internal/model"
)

// Stochastic returns slow %K and %D. Below k+slowK+slowD-2 candles it returns 50/50.
func Stochastic(candles []model.Candle, kPeriod, slowK, slowD int) (k, d float64) {
	if kPeriod <= 0 || slowK <= 0 || slowD <= 0 || len(candles) < kPeriod+slowK+slowD-2 {
		return 50, 50
	}
	ks, ds := talib.Stoch(model.Highs(candles), model.Lows(candles), model.Closes(candles),
		kPeriod, slowK, talib.SMA, slowD, talib.SMA)
	return ks[len(ks)-1], ds[len(ds)-1]
}

// WilliamsR returns Williams %R in [-100, 0], or -50 below warm-up.
func WilliamsR(candles []model.Candle, period int) float64 {
	if period <= 0 || len(candles) < period {
		return -50
	}
	out := talib.WillR(model.Highs(candles), model.Lows(candles), model.Closes(candles), period)
	return out[len(out)-1]
}

// MFI returns the Money Flow Index, or 50 below period+1 candles.
func MFI(candles []model.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 50
	}
	out := talib.Mfi(model.Highs(candles), model.Lows(candles), model.Closes(candles), model.Volumes(candles), period)
	return out[len(out)-1]
}

// OBVSeries returns on-balance volume starting from 0 at the first candle.
func OBVSeries(candles []model.Candle) []float64 {
	if len(candles) == 0 {
		return nil
	}
	vols := model.Volumes(candles)
	out := talib.Obv(model.Closes(candles), vols)
	base := vols[0]
	for i := range out {
		out[i] -= base
	}
	return out
}

// OBV returns the latest on-balance volume.
func OBV(candles []model.Candle) float64 {
	s := OBVSeries(candles)
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// LinearRegSlope returns the least-squares slope of the last period values, or 0 below warm-up.
func LinearRegSlope(values []float64, period int) float64 {
	if period < 2 || len(values) < period {
		return 0
	}
	out := talib.LinearRegSlope(values, period)
	return out[len(out)-1]
}

// Volume compares the latest volume with the mean of the last period bars.
// Trend compares the last 5 bars against the 5 before them with a 20% band.
func Volume(candles []model.Candle, period int, confirmRatio float64) model.VolumeState {
	st := model.VolumeState{Trend: model.VolumeStable}
	if len(candles) == 0 {
		return st
	}
	vols := model.Volumes(candles)
	st.Current = vols[len(vols)-1]
	st.Average = SMA(vols, period)
	if st.Average > 0 {
		st.Ratio = st.Current / st.Average
	}
	st.Confirms = st.Ratio >= confirmRatio

	if len(vols) >= 10 {
		recent := SMA(vols, 5)
		prior := SMA(vols[:len(vols)-5], 5)
		switch {
		case prior > 0 && recent > prior*1.2:
			st.Trend = model.VolumeIncreasing
		case prior > 0 && recent < prior*0.8:
			st.Trend = model.VolumeDecreasing
		}
	}
	return st
}
