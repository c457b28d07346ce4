package strategy

import (
	"math"
	"testing"

	"MarketConfluence/internal/model"
)

func tfa(tf model.Timeframe, sig model.Signal, conf float64) model.TimeframeAnalysis {
	return model.TimeframeAnalysis{Timeframe: tf, Signal: sig, Confidence: conf}
}

func TestConfluence_Unanimous(t *testing.T) {
	var in []model.TimeframeAnalysis
	for _, tf := range model.AllTimeframes {
		in = append(in, tfa(tf, model.SignalStrongBuy, 90))
	}
	mtf := Confluence(in)
	if math.Abs(mtf.WeightedScore-1.8) > 1e-9 {
		t.Errorf("weighted score = %v, want 1.8", mtf.WeightedScore)
	}
	if mtf.OverallSignal != model.SignalStrongBuy {
		t.Errorf("signal = %s", mtf.OverallSignal)
	}
	if mtf.AlignmentScore != 100 || math.Abs(mtf.OverallConfidence-90) > 1e-9 {
		t.Errorf("alignment=%v confidence=%v", mtf.AlignmentScore, mtf.OverallConfidence)
	}
	if mtf.RiskLevel != model.RiskLow {
		t.Errorf("risk = %s", mtf.RiskLevel)
	}
	if mtf.BullishCount != 7 || mtf.BearishCount != 0 || mtf.NeutralCount != 0 {
		t.Errorf("counts = %d/%d/%d", mtf.BullishCount, mtf.BearishCount, mtf.NeutralCount)
	}
	if mtf.StrongestTimeframe != model.D1 || mtf.WeakestTimeframe != model.M1 {
		t.Errorf("strongest=%s weakest=%s", mtf.StrongestTimeframe, mtf.WeakestTimeframe)
	}
}

func TestConfluence_Empty(t *testing.T) {
	mtf := Confluence(nil)
	if mtf.OverallSignal != model.SignalNeutral || mtf.RiskLevel != model.RiskHigh || mtf.OverallConfidence != 0 {
		t.Errorf("empty confluence = %+v", mtf)
	}
}

func TestConfluence_Conflicting(t *testing.T) {
	mtf := Confluence([]model.TimeframeAnalysis{
		tfa(model.H1, model.SignalBuy, 70),
		tfa(model.H4, model.SignalSell, 70),
		tfa(model.D1, model.SignalNeutral, 50),
	})
	if mtf.OverallSignal != model.SignalNeutral {
		t.Errorf("signal = %s (score %v)", mtf.OverallSignal, mtf.WeightedScore)
	}
	if math.Abs(mtf.WeightedScore-(1.05-1.4)/6) > 1e-9 {
		t.Errorf("weighted score = %v", mtf.WeightedScore)
	}
	if mtf.RiskLevel != model.RiskHigh {
		t.Errorf("risk = %s", mtf.RiskLevel)
	}
	if mtf.StrongestTimeframe != model.H4 || mtf.WeakestTimeframe != model.D1 {
		t.Errorf("strongest=%s weakest=%s", mtf.StrongestTimeframe, mtf.WeakestTimeframe)
	}
}

func TestConfluence_MediumRisk(t *testing.T) {
	mtf := Confluence([]model.TimeframeAnalysis{
		tfa(model.M15, model.SignalBuy, 65),
		tfa(model.H1, model.SignalBuy, 65),
		tfa(model.H4, model.SignalNeutral, 55),
	})
	if mtf.RiskLevel != model.RiskMedium {
		t.Errorf("risk = %s (alignment %v)", mtf.RiskLevel, mtf.AlignmentScore)
	}
}
