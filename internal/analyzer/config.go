// Package analyzer is the entry point into the confluence engine: it fetches candles,
// runs the per-timeframe analysis in parallel and assembles the cached results.
package analyzer

import (
	"time"

	"MarketConfluence/internal/model"
	"MarketConfluence/internal/risk"
	"MarketConfluence/internal/strategy"
)

// Config controls what the service fetches and how long results stay cached.
type Config struct {
	Timeframes         []model.Timeframe
	CandleLimit        int
	Concurrency        int
	RegimeTimeframe    model.Timeframe
	StructureTimeframe model.Timeframe
	PivotTimeframe     model.Timeframe
	ProfileLookback    int
	MTFTTL             time.Duration
	SingleTTL          time.Duration
	Strategy           strategy.Config
	Regime             risk.RegimeConfig
}

// DefaultConfig returns the standard service settings.
func DefaultConfig() Config {
	return Config{
		Timeframes:         []model.Timeframe{model.M15, model.H1, model.H4, model.D1},
		CandleLimit:        250,
		Concurrency:        4,
		RegimeTimeframe:    model.H4,
		StructureTimeframe: model.H1,
		PivotTimeframe:     model.D1,
		ProfileLookback:    100,
		MTFTTL:             30 * time.Second,
		SingleTTL:          5 * time.Minute,
		Strategy:           strategy.DefaultConfig(),
		Regime:             risk.DefaultRegimeConfig(),
	}
}
