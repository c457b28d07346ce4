package strategy

import (
	"fmt"
	"time"

	"MarketConfluence/internal/calculator"
	"MarketConfluence/internal/cleaner"
	"MarketConfluence/internal/levels"
	"MarketConfluence/internal/model"
	"MarketConfluence/internal/structure"
)

// Config holds the per-timeframe analysis tunables.
type Config struct {
	Cleaner   cleaner.Config   `yaml:"cleaner"`
	Structure structure.Config `yaml:"structure"`
	Levels    levels.Config    `yaml:"levels"`

	VolumeConfirmRatio float64 `yaml:"volume_confirm_ratio"`
	SqueezeBandwidth   float64 `yaml:"squeeze_bandwidth"`
	RSIOverbought      float64 `yaml:"rsi_overbought"`
	RSIOversold        float64 `yaml:"rsi_oversold"`
	DivergenceLookback int     `yaml:"divergence_lookback"`
}

// DefaultConfig returns the standard analysis settings.
func DefaultConfig() Config {
	return Config{
		Cleaner:            cleaner.DefaultConfig(),
		Structure:          structure.DefaultConfig(),
		Levels:             levels.DefaultConfig(),
		VolumeConfirmRatio: 1.2,
		SqueezeBandwidth:   calculator.DefaultSqueezeBandwidth,
		RSIOverbought:      70,
		RSIOversold:        30,
		DivergenceLookback: 30,
	}
}

// Evaluation is a timeframe analysis together with the cleaned series and swings it was built from.
type Evaluation struct {
	Analysis  model.TimeframeAnalysis
	Candles   []model.Candle
	Swings    []model.SwingPoint
	Anomalies []int
}

// AnalyzeTimeframe cleans candles, computes the indicator set, scores it and derives levels.
// It fails only when there are no candles.
func AnalyzeTimeframe(symbol string, tf model.Timeframe, candles []model.Candle, cfg Config, now time.Time) (*Evaluation, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("analyze %s %s: %w", symbol, tf, model.ErrDataUnavailable)
	}

	cleaned := cleaner.Clean(candles, cfg.Cleaner)
	c := cleaned.Candles
	closes := model.Closes(c)
	price := closes[len(closes)-1]

	ind := computeIndicators(c, closes, price, cfg)
	trend := classifyTrend(price, ind.EMA)

	// Step a: score factors
	factors := []model.FactorScore{
		scoreTrend(trend),
		scoreEMA("ema20", price, ind.EMA.EMA20),
		scoreEMA("ema50", price, ind.EMA.EMA50),
		scoreEMA("ema200", price, ind.EMA.EMA200),
		scoreRSI(ind.RSI, cfg.RSIOverbought, cfg.RSIOversold),
		scoreMACD(ind.MACD),
		scoreBollinger(ind.Bollinger),
	}

	// Step b: sum, apply volume and normalize
	raw := 0.0
	for _, f := range factors {
		raw += f.Score
	}
	raw, volumeNote := applyVolume(raw, ind.Volume)
	score := clamp(raw/scoreNormalizer, -1, 1)

	// Step c: map to signal and confidence
	signal := model.SignalFromScore(score)
	confidence := confidenceFor(score)

	// Step d: levels
	swings := structure.FindSwings(c, cfg.Structure.SwingLeft, cfg.Structure.SwingRight)
	supports, resistances := levels.SupportResistance(swings, price, ind.ATR.Value, cfg.Levels)

	var reasons []string
	for _, f := range factors {
		if f.Score != 0 {
			reasons = append(reasons, f.Commentary)
		}
	}
	if volumeNote != "" {
		reasons = append(reasons, volumeNote)
	}
	switch ind.Divergence {
	case model.DirectionUp:
		reasons = append(reasons, "bullish RSI divergence")
	case model.DirectionDown:
		reasons = append(reasons, "bearish RSI divergence")
	}
	if ind.Bollinger.Squeeze {
		reasons = append(reasons, fmt.Sprintf("Bollinger squeeze (bandwidth %.3f)", ind.Bollinger.Bandwidth))
	}
	if len(cleaned.Anomalies) > 0 {
		reasons = append(reasons, fmt.Sprintf("%d anomalous candles winsorized", len(cleaned.Anomalies)))
	}

	return &Evaluation{
		Analysis: model.TimeframeAnalysis{
			Symbol:          symbol,
			Timeframe:       tf,
			CurrentPrice:    price,
			Trend:           trend,
			Signal:          signal,
			Confidence:      confidence,
			Score:           score,
			EMA:             ind.EMA,
			Bollinger:       ind.Bollinger,
			ATR:             ind.ATR,
			Volume:          ind.Volume,
			RSI:             ind.RSI,
			MACDSignal:      ind.MACD.Cross,
			Indicators:      ind,
			Supports:        supports,
			Resistances:     resistances,
			MaxPipThreshold: structure.PipThreshold(symbol, price),
			DataQuality:     cleaned.Quality,
			Factors:         factors,
			Reasons:         reasons,
			Candles:         len(c),
			AnalyzedAt:      now,
		},
		Candles:   c,
		Swings:    swings,
		Anomalies: cleaned.Anomalies,
	}, nil
}

func computeIndicators(c []model.Candle, closes []float64, price float64, cfg Config) model.IndicatorSet {
	ema := model.EMAState{
		EMA20:  calculator.EMA(closes, 20),
		EMA50:  calculator.EMA(closes, 50),
		EMA200: calculator.EMA(closes, 200),
	}
	ema.PriceAboveEMA20 = price > ema.EMA20
	ema.PriceAboveEMA50 = price > ema.EMA50
	ema.PriceAboveEMA200 = price > ema.EMA200

	boll := calculator.Bollinger(closes, 20, 2)
	boll.Squeeze = boll.Bandwidth < cfg.SqueezeBandwidth

	rsiSeries := calculator.RSISeries(closes, 14)
	stochK, stochD := calculator.Stochastic(c, 14, 3, 3)
	adx, plusDI, minusDI := calculator.ADX(c, 14)
	obv := calculator.OBVSeries(c)

	ind := model.IndicatorSet{
		EMA:        ema,
		SMA20:      calculator.SMA(closes, 20),
		RSI:        rsiSeries[len(rsiSeries)-1],
		RSISeries:  rsiSeries,
		ATR:        calculator.ATRState(c, 14, price),
		MACD:       calculator.MACD(closes, 12, 26, 9),
		Bollinger:  boll,
		StochK:     stochK,
		StochD:     stochD,
		WilliamsR:  calculator.WilliamsR(c, 14),
		MFI:        calculator.MFI(c, 14),
		ADX:        adx,
		PlusDI:     plusDI,
		MinusDI:    minusDI,
		OBV:        obv[len(obv)-1],
		OBVSlope:   calculator.LinearRegSlope(obv, 10),
		Divergence: calculator.RSIDivergence(closes, rsiSeries, cfg.DivergenceLookback),
		Volume:     calculator.Volume(c, 20, cfg.VolumeConfirmRatio),
	}
	high, low := calculator.HighLow(c, 20)
	ind.Extra = map[string]float64{
		"di_spread":         calculator.DISpread(plusDI, minusDI),
		"range_position_20": calculator.PositionInRange(price, high, low),
	}
	return ind
}
