package model

// EMAState holds the moving-average stack of a timeframe.
type EMAState struct {
	EMA20            float64 `json:"ema20"`
	EMA50            float64 `json:"ema50"`
	EMA200           float64 `json:"ema200"`
	PriceAboveEMA20  bool    `json:"price_above_ema20"`
	PriceAboveEMA50  bool    `json:"price_above_ema50"`
	PriceAboveEMA200 bool    `json:"price_above_ema200"`
}

// BollingerState holds Bollinger band values for the latest bar.
type BollingerState struct {
	Upper     float64 `json:"upper"`
	Middle    float64 `json:"middle"`
	Lower     float64 `json:"lower"`
	PercentB  float64 `json:"percent_b"`
	Bandwidth float64 `json:"bandwidth"`
	Squeeze   bool    `json:"squeeze"`
}

// ATRState holds volatility for the latest bar.
type ATRState struct {
	Value      float64        `json:"value"`
	Percent    float64        `json:"percent"`
	Volatility VolatilityTier `json:"volatility"`
}

// VolumeState compares the latest volume with its recent history.
type VolumeState struct {
	Current  float64     `json:"current"`
	Average  float64     `json:"average"`
	Ratio    float64     `json:"ratio"`
	Trend    VolumeTrend `json:"trend"`
	Confirms bool        `json:"confirms"`
}

// MACDState holds the latest MACD values.
type MACDState struct {
	MACD      float64   `json:"macd"`
	Signal    float64   `json:"signal"`
	Histogram float64   `json:"histogram"`
	Cross     MACDCross `json:"cross"`
}

// IndicatorSet is the typed snapshot of every indicator computed for one timeframe.
type IndicatorSet struct {
	EMA        EMAState       `json:"ema"`
	SMA20      float64        `json:"sma20"`
	RSI        float64        `json:"rsi"`
	RSISeries  []float64      `json:"-"`
	ATR        ATRState       `json:"atr"`
	MACD       MACDState      `json:"macd"`
	Bollinger  BollingerState `json:"bollinger"`
	StochK     float64        `json:"stoch_k"`
	StochD     float64        `json:"stoch_d"`
	WilliamsR  float64        `json:"williams_r"`
	MFI        float64        `json:"mfi"`
	ADX        float64        `json:"adx"`
	PlusDI     float64        `json:"plus_di"`
	MinusDI    float64        `json:"minus_di"`
	OBV        float64        `json:"obv"`
	OBVSlope   float64        `json:"obv_slope"`
	Divergence Direction      `json:"rsi_divergence"`
	Volume     VolumeState    `json:"volume"`

	// Extra carries values without a dedicated field.
	Extra map[string]float64 `json:"extra,omitempty"`
}
