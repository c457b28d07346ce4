package model

// SwingKind distinguishes pivot highs from pivot lows.
type SwingKind string

const (
	SwingHigh SwingKind = "high"
	SwingLow  SwingKind = "low"
)

// SwingStatus tells whether a pivot has its full set of right-hand bars.
type SwingStatus string

const (
	SwingConfirmed   SwingStatus = "confirmed"
	SwingUnconfirmed SwingStatus = "unconfirmed"
)

// SwingPoint is a fractal pivot. Unconfirmed pivots are only valid for the analysis run that produced them.
type SwingPoint struct {
	Index  int         `json:"index"`
	Price  float64     `json:"price"`
	Kind   SwingKind   `json:"kind"`
	Status SwingStatus `json:"status"`
}

// StructureType classifies the sequence of recent swings.
type StructureType string

const (
	StructureBullish StructureType = "HH_HL"
	StructureBearish StructureType = "LL_LH"
	StructureRanging StructureType = "RANGING"
)

// StructureQuality grades the latest break of structure.
type StructureQuality string

const (
	QualityValidBreakout        StructureQuality = "VALID_BREAKOUT"
	QualityFakeoutTrap          StructureQuality = "FAKEOUT_TRAP"
	QualityAwaitingConfirmation StructureQuality = "AWAITING_CONFIRMATION"
	QualityChoppy               StructureQuality = "CHOPPY"
)

// ConsolidationMethod records which test confirmed a range.
type ConsolidationMethod string

const (
	ConsolidationSwing       ConsolidationMethod = "SWING"
	ConsolidationStatistical ConsolidationMethod = "STATISTICAL"
	ConsolidationNone        ConsolidationMethod = "NONE"
)

// Consolidation describes the recent trading range.
type Consolidation struct {
	IsConsolidating   bool                `json:"is_consolidating"`
	Method            ConsolidationMethod `json:"method"`
	RangeHigh         float64             `json:"range_high"`
	RangeLow          float64             `json:"range_low"`
	RangeSize         float64             `json:"range_size"`
	RangeMid          float64             `json:"range_mid"`
	ATR               float64             `json:"atr"`
	SwingHighs        []float64           `json:"swing_highs"`
	SwingLows         []float64           `json:"swing_lows"`
	HighSpread        float64             `json:"high_spread"`
	LowSpread         float64             `json:"low_spread"`
	PipThreshold      float64             `json:"pip_threshold"`
	Score             float64             `json:"score"`
	PositionInRange   float64             `json:"position_in_range"`
	BreakoutDirection Direction           `json:"breakout_direction"`
}

// PriceAction summarises market structure on one timeframe.
type PriceAction struct {
	Timeframe        Timeframe        `json:"timeframe"`
	Structure        StructureType    `json:"structure"`
	LastSwingHigh    float64          `json:"last_swing_high"`
	LastSwingLow     float64          `json:"last_swing_low"`
	BOS              bool             `json:"bos"`
	BOSDirection     Direction        `json:"bos_direction"`
	BrokenLevel      float64          `json:"broken_level"`
	CHoCH            bool             `json:"choch"`
	LiquiditySweep   bool             `json:"liquidity_sweep"`
	EqualHighPairs   int              `json:"equal_high_pairs"`
	EqualLowPairs    int              `json:"equal_low_pairs"`
	LiquidityPool    bool             `json:"liquidity_pool"`
	StructureQuality StructureQuality `json:"structure_quality"`
	Consolidation    Consolidation    `json:"consolidation"`
	Swings           []SwingPoint     `json:"swings"`
}
