package analyzer

import (
	"time"

	"MarketConfluence/internal/model"
)

// Outcome reports whether an analysis could be produced.
type Outcome struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func failed(err error) Outcome {
	return Outcome{Success: false, Error: err.Error()}
}

// SingleResult is the answer to a single-timeframe request.
type SingleResult struct {
	Outcome
	Analysis *model.TimeframeAnalysis `json:"analysis,omitempty"`
}

// MTFResult is the answer to a multi-timeframe request.
type MTFResult struct {
	Outcome
	Symbol         string                                      `json:"symbol"`
	CurrentPrice   float64                                     `json:"current_price,omitempty"`
	Timeframes     map[model.Timeframe]model.TimeframeAnalysis `json:"timeframes,omitempty"`
	Unavailable    []model.Timeframe                           `json:"unavailable,omitempty"`
	Confluence     *model.MTFConfluence                        `json:"confluence,omitempty"`
	Regime         *model.MarketRegime                         `json:"regime,omitempty"`
	PriceAction    *model.PriceAction                          `json:"price_action,omitempty"`
	VolumeProfile  *model.VolumeProfile                        `json:"volume_profile,omitempty"`
	PivotPoints    *model.PivotPoints                          `json:"pivot_points,omitempty"`
	PositionSizing *model.PositionSizing                       `json:"position_sizing,omitempty"`
	AnalyzedAt     time.Time                                   `json:"analyzed_at"`
}

// Ordered returns the per-timeframe analyses shortest timeframe first.
func (r MTFResult) Ordered() []model.TimeframeAnalysis {
	out := make([]model.TimeframeAnalysis, 0, len(r.Timeframes))
	for _, tf := range model.AllTimeframes {
		if a, ok := r.Timeframes[tf]; ok {
			out = append(out, a)
		}
	}
	return out
}
