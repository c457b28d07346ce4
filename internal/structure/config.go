// Package structure detects swing points, market structure, liquidity and consolidation ranges.
package structure

// Config holds every tunable of the structure detector.
type Config struct {
	SwingLeft       int     `yaml:"swing_left"`
	SwingRight      int     `yaml:"swing_right"`
	StructureSwings int     `yaml:"structure_swings"`
	SweepTolerance  float64 `yaml:"sweep_tolerance"`
	EqualLevelATR   float64 `yaml:"equal_level_atr"`
	PoolPairs       int     `yaml:"pool_pairs"`

	ConsolidationLookback int     `yaml:"consolidation_lookback"`
	ConsolidationScore    float64 `yaml:"consolidation_score"`
	MinRangeSwings        int     `yaml:"min_range_swings"`
	MaxRangePct           float64 `yaml:"max_range_pct"`
	BreakoutUpper         float64 `yaml:"breakout_upper"`
	BreakoutLower         float64 `yaml:"breakout_lower"`
}

// DefaultConfig returns the standard detector settings.
func DefaultConfig() Config {
	return Config{
		SwingLeft:             2,
		SwingRight:            2,
		StructureSwings:       5,
		SweepTolerance:        0.002,
		EqualLevelATR:         0.3,
		PoolPairs:             3,
		ConsolidationLookback: 20,
		ConsolidationScore:    0.65,
		MinRangeSwings:        4,
		MaxRangePct:           3.0,
		BreakoutUpper:         0.7,
		BreakoutLower:         0.3,
	}
}
