package model

// Trend is the EMA-stack classification of a timeframe.
type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendNeutral Trend = "NEUTRAL"
)

// Signal is a directional trading call.
type Signal string

const (
	SignalStrongBuy  Signal = "STRONG_BUY"
	SignalBuy        Signal = "BUY"
	SignalNeutral    Signal = "NEUTRAL"
	SignalSell       Signal = "SELL"
	SignalStrongSell Signal = "STRONG_SELL"
)

// Weight maps a signal onto the -2..+2 scale used by confluence.
func (s Signal) Weight() float64 {
	switch s {
	case SignalStrongBuy:
		return 2
	case SignalBuy:
		return 1
	case SignalNeutral:
		return 0
	case SignalSell:
		return -1
	case SignalStrongSell:
		return -2
	default:
		return 0
	}
}

// Bullish reports whether the signal points up.
func (s Signal) Bullish() bool { return s == SignalBuy || s == SignalStrongBuy }

// Bearish reports whether the signal points down.
func (s Signal) Bearish() bool { return s == SignalSell || s == SignalStrongSell }

// Direction returns the side the signal points to.
func (s Signal) Direction() Direction {
	switch {
	case s.Bullish():
		return DirectionUp
	case s.Bearish():
		return DirectionDown
	default:
		return DirectionNeutral
	}
}

// SignalFromScore maps a normalized score onto a signal using ±0.6 / ±0.2 bands.
func SignalFromScore(score float64) Signal {
	switch {
	case score >= 0.6:
		return SignalStrongBuy
	case score >= 0.2:
		return SignalBuy
	case score <= -0.6:
		return SignalStrongSell
	case score <= -0.2:
		return SignalSell
	default:
		return SignalNeutral
	}
}

// RiskLevel grades how trustworthy a confluence call is.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// MACDCross classifies the latest MACD/signal-line relationship.
type MACDCross string

const (
	MACDBullishCross MACDCross = "BULLISH_CROSS"
	MACDBearishCross MACDCross = "BEARISH_CROSS"
	MACDBullish      MACDCross = "BULLISH"
	MACDBearish      MACDCross = "BEARISH"
	MACDNone         MACDCross = "NONE"
)

// VolatilityTier buckets ATR as a percentage of price.
type VolatilityTier string

const (
	VolatilityLow     VolatilityTier = "LOW"
	VolatilityNormal  VolatilityTier = "NORMAL"
	VolatilityHigh    VolatilityTier = "HIGH"
	VolatilityExtreme VolatilityTier = "EXTREME"
)

// VolumeTrend compares recent volume with the bars just before it.
type VolumeTrend string

const (
	VolumeIncreasing VolumeTrend = "INCREASING"
	VolumeDecreasing VolumeTrend = "DECREASING"
	VolumeStable     VolumeTrend = "STABLE"
)

// Direction is a generic up/down/neutral bias.
type Direction string

const (
	DirectionUp      Direction = "UP"
	DirectionDown    Direction = "DOWN"
	DirectionNeutral Direction = "NEUTRAL"
)

// FactorScore represents a single scoring factor of a timeframe signal.
type FactorScore struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Commentary string  `json:"commentary"`
}
