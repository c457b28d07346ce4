// Package risk classifies the market regime and sizes positions.
package risk

import (
	"MarketConfluence/internal/calculator"
	"MarketConfluence/internal/model"
)

// RegimeConfig holds the ADX/DI regime thresholds.
type RegimeConfig struct {
	ADXPeriod            int     `yaml:"adx_period"`
	RangingADX           float64 `yaml:"ranging_adx"`
	StrongADX            float64 `yaml:"strong_adx"`
	ModerateSpread       float64 `yaml:"moderate_spread"`
	StrongSpread         float64 `yaml:"strong_spread"`
	HighConfidenceSpread float64 `yaml:"high_confidence_spread"`
	VolatileATRMultiple  float64 `yaml:"volatile_atr_multiple"`
	TrailingBars         int     `yaml:"trailing_bars"`
}

// DefaultRegimeConfig returns the standard regime thresholds.
func DefaultRegimeConfig() RegimeConfig {
	return RegimeConfig{
		ADXPeriod:            14,
		RangingADX:           20,
		StrongADX:            30,
		ModerateSpread:       10,
		StrongSpread:         15,
		HighConfidenceSpread: 20,
		VolatileATRMultiple:  2,
		TrailingBars:         20,
	}
}

// ClassifyRegime turns ADX, the directional indicators and ATR expansion into a regime.
// A high ADX alone never makes a trend: the DI spread has to clear the threshold for the ADX band.
func ClassifyRegime(adx, plusDI, minusDI, atrNow, atrTrailing float64, cfg RegimeConfig) model.MarketRegime {
	spread := calculator.DISpread(plusDI, minusDI)
	r := model.MarketRegime{
		Regime:      model.RegimeRanging,
		Direction:   model.DirectionNeutral,
		ADX:         adx,
		PlusDI:      plusDI,
		MinusDI:     minusDI,
		DISpread:    spread,
		ATR:         atrNow,
		TrailingATR: atrTrailing,
	}

	switch {
	case adx < cfg.RangingADX:
	case adx < cfg.StrongADX:
		if spread > cfg.ModerateSpread {
			r.Regime = model.RegimeTrending
		}
	default:
		if spread > cfg.StrongSpread {
			r.Regime = model.RegimeTrending
		}
	}
	if atrTrailing > 0 && atrNow > cfg.VolatileATRMultiple*atrTrailing {
		r.Regime = model.RegimeVolatile
	}

	switch {
	case spread > cfg.HighConfidenceSpread && adx > cfg.StrongADX:
		r.ConfidenceLevel = model.RegimeHighConfidence
	case spread > cfg.ModerateSpread && adx > cfg.RangingADX:
		r.ConfidenceLevel = model.RegimeLowConfidence
	default:
		r.ConfidenceLevel = model.RegimeConflicting
	}

	if r.Regime == model.RegimeTrending {
		if plusDI > minusDI {
			r.Direction = model.DirectionUp
		} else {
			r.Direction = model.DirectionDown
		}
	}
	return r
}

// RegimeFromCandles computes ADX/DI and compares the latest ATR with the mean of the
// TrailingBars ATR values before it.
func RegimeFromCandles(candles []model.Candle, tf model.Timeframe, cfg RegimeConfig) model.MarketRegime {
	adx, plusDI, minusDI := calculator.ADX(candles, cfg.ADXPeriod)
	atrs := calculator.ATRSeries(candles, cfg.ADXPeriod)

	var atrNow, trailing float64
	if n := len(atrs); n > 0 {
		atrNow = atrs[n-1]
		start := max(cfg.ADXPeriod, n-1-cfg.TrailingBars)
		if count := n - 1 - start; count > 0 {
			sum := 0.0
			for _, v := range atrs[start : n-1] {
				sum += v
			}
			trailing = sum / float64(count)
		}
	}

	r := ClassifyRegime(adx, plusDI, minusDI, atrNow, trailing, cfg)
	r.Timeframe = tf
	return r
}
