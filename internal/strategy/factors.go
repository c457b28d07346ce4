package strategy

import (
	"fmt"

	"MarketConfluence/internal/model"
)

// Raw factor scores sum to at most 7.5 in either direction; dividing by 8 maps them into [-1, 1].
const scoreNormalizer = 8.0

// scoreTrend scores the EMA stack classification.
// Range: ±2
func scoreTrend(trend model.Trend) model.FactorScore {
	switch trend {
	case model.TrendBullish:
		return model.FactorScore{Name: "trend", Score: 2, Commentary: "bullish EMA stack (price > EMA20 > EMA50 > EMA200)"}
	case model.TrendBearish:
		return model.FactorScore{Name: "trend", Score: -2, Commentary: "bearish EMA stack (price < EMA20 < EMA50 < EMA200)"}
	default:
		return model.FactorScore{Name: "trend", Score: 0, Commentary: "mixed EMA stack"}
	}
}

// scoreEMA scores price against a single moving average.
// Range: ±1
func scoreEMA(name string, price, ema float64) model.FactorScore {
	fs := model.FactorScore{Name: name}
	switch {
	case ema == 0:
		fs.Commentary = name + " unavailable"
	case price > ema:
		fs.Score = 1
		fs.Commentary = fmt.Sprintf("price above %s (%.2f)", name, ema)
	case price < ema:
		fs.Score = -1
		fs.Commentary = fmt.Sprintf("price below %s (%.2f)", name, ema)
	default:
		fs.Commentary = fmt.Sprintf("price at %s", name)
	}
	return fs
}

// scoreRSI fades extremes and leans with the side of 50.
// Range: ±1
func scoreRSI(rsi, overbought, oversold float64) model.FactorScore {
	fs := model.FactorScore{Name: "rsi"}
	switch {
	case rsi > overbought:
		fs.Score = -1
		fs.Commentary = fmt.Sprintf("RSI %.1f overbought", rsi)
	case rsi < oversold:
		fs.Score = 1
		fs.Commentary = fmt.Sprintf("RSI %.1f oversold", rsi)
	case rsi > 50:
		fs.Score = 0.5
		fs.Commentary = fmt.Sprintf("RSI %.1f above midline", rsi)
	case rsi < 50:
		fs.Score = -0.5
		fs.Commentary = fmt.Sprintf("RSI %.1f below midline", rsi)
	default:
		fs.Commentary = "RSI at midline"
	}
	return fs
}

// scoreMACD follows the sign of the histogram.
// Range: ±1
func scoreMACD(m model.MACDState) model.FactorScore {
	fs := model.FactorScore{Name: "macd"}
	switch {
	case m.Histogram > 0:
		fs.Score = 1
		fs.Commentary = fmt.Sprintf("MACD histogram positive (%s)", m.Cross)
	case m.Histogram < 0:
		fs.Score = -1
		fs.Commentary = fmt.Sprintf("MACD histogram negative (%s)", m.Cross)
	default:
		fs.Commentary = "MACD flat"
	}
	return fs
}

// scoreBollinger fades price stretched to either band.
// Range: ±0.5
func scoreBollinger(b model.BollingerState) model.FactorScore {
	fs := model.FactorScore{Name: "bollinger"}
	switch {
	case b.PercentB > 0.8:
		fs.Score = -0.5
		fs.Commentary = fmt.Sprintf("near upper band (%%B %.2f)", b.PercentB)
	case b.PercentB < 0.2:
		fs.Score = 0.5
		fs.Commentary = fmt.Sprintf("near lower band (%%B %.2f)", b.PercentB)
	default:
		fs.Commentary = fmt.Sprintf("inside bands (%%B %.2f)", b.PercentB)
	}
	return fs
}

// applyVolume scales the raw total when volume confirms the move.
func applyVolume(raw float64, v model.VolumeState) (float64, string) {
	if !v.Confirms {
		return raw, ""
	}
	switch {
	case raw > 0:
		return raw * 1.1, fmt.Sprintf("volume %.1fx average confirms", v.Ratio)
	case raw < 0:
		return raw * 0.9, fmt.Sprintf("volume %.1fx average on weakness", v.Ratio)
	default:
		return raw, ""
	}
}

// confidenceFor maps a normalized score onto 0..100, linear within each signal band.
func confidenceFor(score float64) float64 {
	a := score
	if a < 0 {
		a = -a
	}
	var c float64
	switch {
	case a >= 0.6:
		c = 80 + (a-0.6)/0.4*20
	case a >= 0.2:
		c = 60 + (a-0.2)/0.4*20
	default:
		c = 60 - a/0.2*20
	}
	return clamp(c, 0, 100)
}

func classifyTrend(price float64, ema model.EMAState) model.Trend {
	switch {
	case price > ema.EMA20 && ema.EMA20 > ema.EMA50 && ema.EMA50 > ema.EMA200:
		return model.TrendBullish
	case price < ema.EMA20 && ema.EMA20 < ema.EMA50 && ema.EMA50 < ema.EMA200:
		return model.TrendBearish
	default:
		return model.TrendNeutral
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
