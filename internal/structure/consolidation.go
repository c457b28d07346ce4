package structure

import (
	"math"
	"strings"

	"MarketConfluence/internal/calculator"
	"MarketConfluence/internal/model"
)

// Fixed range-spread thresholds, in price units, for instruments that do not scale well by percentage.
var pipThresholds = map[string]float64{
	"XAUUSD": 3.0,
	"GOLD":   3.0,
	"US30":   15,
	"NAS100": 15,
	"US100":  15,
	"SPX500": 15,
	"US500":  15,
	"GER40":  15,
	"DE40":   15,
	"UK100":  15,
	"JP225":  15,
}

const defaultPipPct = 0.0015

// PipThreshold returns the largest swing spread still treated as one level for symbol.
func PipThreshold(symbol string, price float64) float64 {
	if v, ok := pipThresholds[strings.ToUpper(symbol)]; ok {
		return v
	}
	return price * defaultPipPct
}

// DetectConsolidation checks whether the last cfg.ConsolidationLookback candles form a range.
// Tight swing clusters confirm a range first; otherwise a weighted statistical score decides.
func DetectConsolidation(candles []model.Candle, pipThreshold float64, cfg Config) model.Consolidation {
	res := model.Consolidation{
		Method:            model.ConsolidationNone,
		PipThreshold:      pipThreshold,
		BreakoutDirection: model.DirectionNeutral,
	}
	if len(candles) == 0 {
		return res
	}
	win := candles
	if cfg.ConsolidationLookback > 0 && len(win) > cfg.ConsolidationLookback {
		win = win[len(win)-cfg.ConsolidationLookback:]
	}

	res.RangeHigh, res.RangeLow = calculator.HighLow(win, 0)
	res.RangeSize = res.RangeHigh - res.RangeLow
	res.RangeMid = (res.RangeHigh + res.RangeLow) / 2
	res.ATR = calculator.ATR(candles, 14)

	last := win[len(win)-1].Close
	res.PositionInRange = calculator.PositionInRange(last, res.RangeHigh, res.RangeLow)
	switch {
	case res.PositionInRange > cfg.BreakoutUpper:
		res.BreakoutDirection = model.DirectionUp
	case res.PositionInRange < cfg.BreakoutLower:
		res.BreakoutDirection = model.DirectionDown
	}

	confirmed := Confirmed(FindSwings(win, cfg.SwingLeft, cfg.SwingRight))
	res.SwingHighs = ofKind(confirmed, model.SwingHigh)
	res.SwingLows = ofKind(confirmed, model.SwingLow)
	res.HighSpread = spread(res.SwingHighs)
	res.LowSpread = spread(res.SwingLows)

	res.Score = rangeScore(win, res, cfg)

	swingCount := len(res.SwingHighs) + len(res.SwingLows)
	switch {
	case swingCount >= cfg.MinRangeSwings && len(res.SwingHighs) > 0 && len(res.SwingLows) > 0 &&
		res.HighSpread <= pipThreshold && res.LowSpread <= pipThreshold:
		res.IsConsolidating = true
		res.Method = model.ConsolidationSwing
	case res.Score >= cfg.ConsolidationScore:
		res.IsConsolidating = true
		res.Method = model.ConsolidationStatistical
	}
	return res
}

func spread(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi - lo
}

// rangeScore blends four range signals into [0,1]:
// range measured in ATRs, closes hugging the midpoint, a flat regression line, and a narrow range in percent.
func rangeScore(win []model.Candle, c model.Consolidation, cfg Config) float64 {
	if c.RangeSize <= 0 || c.RangeMid <= 0 {
		return 1
	}
	closes := model.Closes(win)

	atrFit := 0.0
	if c.ATR > 0 {
		atrFit = clamp01((8 - c.RangeSize/c.ATR) / 6)
	}

	mean := calculator.SMA(closes, len(closes))
	midFit := clamp01(1 - math.Abs(mean-c.RangeMid)/(c.RangeSize/2))

	drift := math.Abs(calculator.LinearRegSlope(closes, len(closes))) * float64(len(closes))
	flatFit := clamp01(1 - drift/c.RangeSize)

	pctFit := 0.0
	if cfg.MaxRangePct > 0 {
		pctFit = clamp01(1 - (c.RangeSize/c.RangeMid*100)/cfg.MaxRangePct)
	}

	return 0.3*atrFit + 0.2*midFit + 0.3*flatFit + 0.2*pctFit
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
