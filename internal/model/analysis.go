package model

import "time"

// TimeframeAnalysis is the immutable result of analysing one timeframe.
type TimeframeAnalysis struct {
	Symbol          string         `json:"symbol"`
	Timeframe       Timeframe      `json:"timeframe"`
	CurrentPrice    float64        `json:"current_price"`
	Trend           Trend          `json:"trend"`
	Signal          Signal         `json:"signal"`
	Confidence      float64        `json:"confidence"`
	Score           float64        `json:"score"`
	EMA             EMAState       `json:"ema"`
	Bollinger       BollingerState `json:"bollinger"`
	ATR             ATRState       `json:"atr"`
	Volume          VolumeState    `json:"volume"`
	RSI             float64        `json:"rsi"`
	MACDSignal      MACDCross      `json:"macd_signal"`
	Indicators      IndicatorSet   `json:"indicators"`
	Supports        []Level        `json:"supports"`
	Resistances     []Level        `json:"resistances"`
	MaxPipThreshold float64        `json:"max_pip_threshold"`
	DataQuality     float64        `json:"data_quality"`
	Factors         []FactorScore  `json:"factors"`
	Reasons         []string       `json:"reasons"`
	Candles         int            `json:"candles"`
	AnalyzedAt      time.Time      `json:"analyzed_at"`
}

// NearestSupport returns the closest support, or nil when none exists.
func (a *TimeframeAnalysis) NearestSupport() *Level {
	if len(a.Supports) == 0 {
		return nil
	}
	return &a.Supports[0]
}

// NearestResistance returns the closest resistance, or nil when none exists.
func (a *TimeframeAnalysis) NearestResistance() *Level {
	if len(a.Resistances) == 0 {
		return nil
	}
	return &a.Resistances[0]
}

// Regime is the ADX/DI market regime.
type Regime string

const (
	RegimeTrending Regime = "TRENDING"
	RegimeRanging  Regime = "RANGING"
	RegimeVolatile Regime = "VOLATILE"
)

// RegimeConfidence grades the regime call itself.
type RegimeConfidence string

const (
	RegimeHighConfidence RegimeConfidence = "HIGH_CONFIDENCE"
	RegimeLowConfidence  RegimeConfidence = "LOW_CONFIDENCE"
	RegimeConflicting    RegimeConfidence = "CONFLICTING"
)

// MarketRegime is the regime classification with the inputs that produced it.
type MarketRegime struct {
	Regime          Regime           `json:"regime"`
	Direction       Direction        `json:"direction"`
	ConfidenceLevel RegimeConfidence `json:"confidence_level"`
	ADX             float64          `json:"adx"`
	PlusDI          float64          `json:"plus_di"`
	MinusDI         float64          `json:"minus_di"`
	DISpread        float64          `json:"di_spread"`
	ATR             float64          `json:"atr"`
	TrailingATR     float64          `json:"trailing_atr"`
	Timeframe       Timeframe        `json:"timeframe"`
}

// PositionSizing is the recommended risk allocation and trade levels.
type PositionSizing struct {
	BaseRiskPct           float64   `json:"base_risk_pct"`
	ConfidenceMultiplier  float64   `json:"confidence_multiplier"`
	VolatilityAdjustment  float64   `json:"volatility_adjustment"`
	SessionAdjustment     float64   `json:"session_adjustment"`
	CorrelationAdjustment float64   `json:"correlation_adjustment"`
	RiskPct               float64   `json:"risk_pct"`
	Session               string    `json:"session"`
	Events                []string  `json:"events,omitempty"`
	Direction             Direction `json:"direction"`
	Entry                 float64   `json:"entry"`
	StopLoss              float64   `json:"stop_loss"`
	TakeProfit            float64   `json:"take_profit"`
	RiskReward            float64   `json:"risk_reward"`
	Notes                 []string  `json:"notes,omitempty"`
}

// MTFConfluence aggregates every timeframe analysis into one decision.
type MTFConfluence struct {
	OverallSignal      Signal         `json:"overall_signal"`
	OverallConfidence  float64        `json:"overall_confidence"`
	WeightedScore      float64        `json:"weighted_score"`
	BullishCount       int            `json:"bullish_count"`
	BearishCount       int            `json:"bearish_count"`
	NeutralCount       int            `json:"neutral_count"`
	AlignmentScore     float64        `json:"alignment_score"`
	StrongestTimeframe Timeframe      `json:"strongest_timeframe"`
	WeakestTimeframe   Timeframe      `json:"weakest_timeframe"`
	RiskLevel          RiskLevel      `json:"risk_level"`
	MarketRegime       MarketRegime   `json:"market_regime"`
	PriceAction        PriceAction    `json:"price_action"`
	VolumeProfile      VolumeProfile  `json:"volume_profile"`
	PivotPoints        PivotPoints    `json:"pivot_points"`
	PositionSizing     PositionSizing `json:"position_sizing"`
	Reasons            []string       `json:"reasons"`
}
