package risk

import (
	"fmt"
	"math"
	"time"

	"MarketConfluence/internal/model"
)

// SizerConfig holds position-sizing parameters.
type SizerConfig struct {
	BaseRiskPct       float64 `yaml:"base_risk_pct"`
	MinRiskPct        float64 `yaml:"min_risk_pct"`
	MaxRiskPct        float64 `yaml:"max_risk_pct"`
	StopATR           float64 `yaml:"stop_atr"`
	TargetATR         float64 `yaml:"target_atr"`
	CorrelationFactor float64 `yaml:"correlation_factor"`
}

// DefaultSizerConfig returns the standard sizing parameters.
func DefaultSizerConfig() SizerConfig {
	return SizerConfig{
		BaseRiskPct:       1.0,
		MinRiskPct:        0.25,
		MaxRiskPct:        3.0,
		StopATR:           1.5,
		TargetATR:         2.5,
		CorrelationFactor: 0.5,
	}
}

// CorrelationChecker reports whether a position correlated with symbol is already open.
type CorrelationChecker interface {
	HasCorrelated(symbol string) bool
}

// SizingInput is everything the sizer needs about one decision.
type SizingInput struct {
	Symbol     string
	Direction  model.Direction
	Price      float64
	ATR        float64
	Confidence float64
	Volatility model.VolatilityTier
	Support    *model.Level
	Resistance *model.Level
}

// Sizer turns a confluence decision into a risk allocation with stop and target.
type Sizer struct {
	cfg  SizerConfig
	book CorrelationChecker
	now  func() time.Time
}

// NewSizer creates a Sizer. book may be nil; now defaults to time.Now.
func NewSizer(cfg SizerConfig, book CorrelationChecker, now func() time.Time) *Sizer {
	if now == nil {
		now = time.Now
	}
	return &Sizer{cfg: cfg, book: book, now: now}
}

// Size computes the position sizing for in at the sizer's current time.
func (s *Sizer) Size(in SizingInput) model.PositionSizing {
	session, events, sessionAdj := SessionAdjustment(s.now())
	ps := model.PositionSizing{
		BaseRiskPct:           s.cfg.BaseRiskPct,
		ConfidenceMultiplier:  confidenceMultiplier(in.Confidence),
		VolatilityAdjustment:  volatilityAdjustment(in.Volatility),
		SessionAdjustment:     sessionAdj,
		CorrelationAdjustment: 1.0,
		Session:               session,
		Events:                events,
		Direction:             in.Direction,
		Entry:                 in.Price,
	}
	if s.book != nil && s.book.HasCorrelated(in.Symbol) {
		ps.CorrelationAdjustment = s.cfg.CorrelationFactor
		ps.Notes = append(ps.Notes, "correlated position already open")
	}
	for _, e := range events {
		ps.Notes = append(ps.Notes, e+" window: reduced size")
	}

	risk := ps.BaseRiskPct * ps.ConfidenceMultiplier * ps.VolatilityAdjustment *
		ps.SessionAdjustment * ps.CorrelationAdjustment
	ps.RiskPct = math.Max(s.cfg.MinRiskPct, math.Min(s.cfg.MaxRiskPct, risk))

	s.setLevels(&ps, in)
	return ps
}

func (s *Sizer) setLevels(ps *model.PositionSizing, in SizingInput) {
	if in.ATR <= 0 || in.Price <= 0 {
		ps.Notes = append(ps.Notes, "ATR unavailable: no stop or target")
		return
	}
	stopDist := s.cfg.StopATR * in.ATR
	targetDist := s.cfg.TargetATR * in.ATR

	switch in.Direction {
	case model.DirectionUp:
		ps.StopLoss = in.Price - stopDist
		if in.Support != nil && in.Support.Price < in.Price && in.Support.Price > ps.StopLoss {
			ps.StopLoss = in.Support.Price
			ps.Notes = append(ps.Notes, fmt.Sprintf("stop tightened to support %.2f", in.Support.Price))
		}
		ps.TakeProfit = in.Price + targetDist
	case model.DirectionDown:
		ps.StopLoss = in.Price + stopDist
		if in.Resistance != nil && in.Resistance.Price > in.Price && in.Resistance.Price < ps.StopLoss {
			ps.StopLoss = in.Resistance.Price
			ps.Notes = append(ps.Notes, fmt.Sprintf("stop tightened to resistance %.2f", in.Resistance.Price))
		}
		ps.TakeProfit = in.Price - targetDist
	default:
		ps.Notes = append(ps.Notes, "no directional bias: no stop or target")
		return
	}
	if risk := math.Abs(in.Price - ps.StopLoss); risk > 0 {
		ps.RiskReward = math.Abs(ps.TakeProfit-in.Price) / risk
	}
}

func confidenceMultiplier(confidence float64) float64 {
	switch {
	case confidence >= 80:
		return 1.0
	case confidence >= 60:
		return 0.75
	case confidence >= 40:
		return 0.5
	default:
		return 0.25
	}
}

func volatilityAdjustment(v model.VolatilityTier) float64 {
	switch v {
	case model.VolatilityExtreme:
		return 0.5
	case model.VolatilityHigh:
		return 0.75
	case model.VolatilityLow:
		return 1.1
	default:
		return 1.0
	}
}
