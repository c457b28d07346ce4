package structure

import (
	"math"

	"MarketConfluence/internal/model"
)

// Analyze builds the price-action summary of candles: structure, break of structure,
// change of character, liquidity sweeps and equal-level pools.
// The consolidation block is left empty; see DetectConsolidation.
func Analyze(candles []model.Candle, atr float64, cfg Config) model.PriceAction {
	pa := model.PriceAction{
		Structure:        model.StructureRanging,
		BOSDirection:     model.DirectionNeutral,
		StructureQuality: model.QualityChoppy,
		Consolidation:    model.Consolidation{Method: model.ConsolidationNone, BreakoutDirection: model.DirectionNeutral},
	}
	if len(candles) < cfg.SwingLeft+cfg.SwingRight+1 {
		return pa
	}

	pa.Swings = FindSwings(candles, cfg.SwingLeft, cfg.SwingRight)
	confirmed := Confirmed(pa.Swings)
	pa.Structure = Classify(confirmed, cfg.StructureSwings)

	highs := ofKind(confirmed, model.SwingHigh)
	lows := ofKind(confirmed, model.SwingLow)
	if len(highs) > 0 {
		pa.LastSwingHigh = highs[len(highs)-1]
	}
	if len(lows) > 0 {
		pa.LastSwingLow = lows[len(lows)-1]
	}

	detectBreak(&pa, candles, len(highs) > 0, len(lows) > 0, cfg)

	pa.EqualHighPairs = equalPairs(lastN(highs, 5), cfg.EqualLevelATR*atr)
	pa.EqualLowPairs = equalPairs(lastN(lows, 5), cfg.EqualLevelATR*atr)
	pairs := max(pa.EqualHighPairs, pa.EqualLowPairs)
	pa.LiquidityPool = pairs >= cfg.PoolPairs

	pa.StructureQuality = quality(pa)
	return pa
}

// detectBreak checks the newest candle and then the one before it for a close beyond the
// last confirmed swing. A break that the newest close has already undone is a sweep.
func detectBreak(pa *model.PriceAction, candles []model.Candle, hasHigh, hasLow bool, cfg Config) {
	n := len(candles)
	current := candles[n-1].Close
	for _, idx := range []int{n - 1, n - 2} {
		if idx < 0 {
			continue
		}
		c := candles[idx].Close
		switch {
		case hasHigh && c > pa.LastSwingHigh:
			pa.BOS, pa.BOSDirection, pa.BrokenLevel = true, model.DirectionUp, pa.LastSwingHigh
		case hasLow && c < pa.LastSwingLow:
			pa.BOS, pa.BOSDirection, pa.BrokenLevel = true, model.DirectionDown, pa.LastSwingLow
		default:
			continue
		}
		break
	}
	if !pa.BOS {
		return
	}

	switch pa.BOSDirection {
	case model.DirectionUp:
		pa.CHoCH = pa.Structure == model.StructureBearish
		pa.LiquiditySweep = current <= pa.BrokenLevel && withinPct(current, pa.BrokenLevel, cfg.SweepTolerance)
	case model.DirectionDown:
		pa.CHoCH = pa.Structure == model.StructureBullish
		pa.LiquiditySweep = current >= pa.BrokenLevel && withinPct(current, pa.BrokenLevel, cfg.SweepTolerance)
	}
}

func withinPct(price, level, tol float64) bool {
	if level == 0 {
		return false
	}
	return math.Abs(price-level)/level <= tol
}

// equalPairs counts pairs of levels that sit within tol of each other.
func equalPairs(levels []float64, tol float64) int {
	if tol <= 0 {
		return 0
	}
	count := 0
	for i := 0; i < len(levels); i++ {
		for j := i + 1; j < len(levels); j++ {
			if math.Abs(levels[i]-levels[j]) <= tol {
				count++
			}
		}
	}
	return count
}

func quality(pa model.PriceAction) model.StructureQuality {
	switch {
	case pa.BOS && pa.LiquiditySweep:
		return model.QualityFakeoutTrap
	case pa.LiquidityPool,
		pa.BOS && pa.CHoCH,
		!pa.BOS && pa.Structure != model.StructureRanging:
		return model.QualityAwaitingConfirmation
	case pa.BOS:
		return model.QualityValidBreakout
	default:
		return model.QualityChoppy
	}
}
