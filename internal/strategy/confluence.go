package strategy

import (
	"fmt"

	"MarketConfluence/internal/model"
)

// Confluence combines per-timeframe analyses into one weighted decision.
// Regime, price action, levels and sizing are left for the caller to attach.
func Confluence(analyses []model.TimeframeAnalysis) model.MTFConfluence {
	mtf := model.MTFConfluence{
		OverallSignal: model.SignalNeutral,
		RiskLevel:     model.RiskHigh,
	}
	if len(analyses) == 0 {
		mtf.Reasons = []string{"no timeframe analyses available"}
		return mtf
	}

	var weighted, totalWeight, confSum float64
	strongest, weakest := analyses[0], analyses[0]
	for _, a := range analyses {
		w := a.Timeframe.Weight()
		weighted += a.Signal.Weight() * w * a.Confidence / 100
		totalWeight += w
		confSum += a.Confidence

		switch {
		case a.Signal.Bullish():
			mtf.BullishCount++
		case a.Signal.Bearish():
			mtf.BearishCount++
		default:
			mtf.NeutralCount++
		}

		if a.Confidence > strongest.Confidence ||
			(a.Confidence == strongest.Confidence && w > strongest.Timeframe.Weight()) {
			strongest = a
		}
		if a.Confidence < weakest.Confidence ||
			(a.Confidence == weakest.Confidence && w < weakest.Timeframe.Weight()) {
			weakest = a
		}
	}

	n := float64(len(analyses))
	if totalWeight > 0 {
		mtf.WeightedScore = weighted / totalWeight
	}
	mtf.OverallSignal = model.SignalFromScore(mtf.WeightedScore)

	dominant := max(mtf.BullishCount, mtf.BearishCount, mtf.NeutralCount)
	mtf.AlignmentScore = float64(dominant) / n * 100
	mtf.OverallConfidence = confSum / n * mtf.AlignmentScore / 100
	mtf.StrongestTimeframe = strongest.Timeframe
	mtf.WeakestTimeframe = weakest.Timeframe

	switch {
	case mtf.AlignmentScore >= 80 && mtf.OverallConfidence >= 70:
		mtf.RiskLevel = model.RiskLow
	case mtf.AlignmentScore >= 50:
		mtf.RiskLevel = model.RiskMedium
	default:
		mtf.RiskLevel = model.RiskHigh
	}

	mtf.Reasons = []string{
		fmt.Sprintf("%d bullish / %d bearish / %d neutral across %d timeframes",
			mtf.BullishCount, mtf.BearishCount, mtf.NeutralCount, len(analyses)),
		fmt.Sprintf("weighted score %+.2f, alignment %.0f%%", mtf.WeightedScore, mtf.AlignmentScore),
		fmt.Sprintf("strongest %s (%s %.0f), weakest %s (%s %.0f)",
			strongest.Timeframe, strongest.Signal, strongest.Confidence,
			weakest.Timeframe, weakest.Signal, weakest.Confidence),
	}
	return mtf
}
