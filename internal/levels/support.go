// Package levels derives support/resistance, volume-profile and pivot levels.
package levels

import (
	"math"
	"sort"

	"MarketConfluence/internal/model"
)

// Config tunes support/resistance clustering.
type Config struct {
	ClusterATR       float64 `yaml:"cluster_atr"`
	MinTolerancePct  float64 `yaml:"min_tolerance_pct"`
	MaxTolerancePct  float64 `yaml:"max_tolerance_pct"`
	MaxLevels        int     `yaml:"max_levels"`
	FullStrengthHits int     `yaml:"full_strength_touches"`
	FallbackPct      float64 `yaml:"fallback_pct"`
	FallbackStrength float64 `yaml:"fallback_strength"`
	ProfileBins      int     `yaml:"profile_bins"`
}

// DefaultConfig returns the standard level settings.
func DefaultConfig() Config {
	return Config{
		ClusterATR:       0.5,
		MinTolerancePct:  0.002,
		MaxTolerancePct:  0.005,
		MaxLevels:        3,
		FullStrengthHits: 5,
		FallbackPct:      0.02,
		FallbackStrength: 0.3,
		ProfileBins:      20,
	}
}

// Tolerance is the clustering distance: half an ATR kept between 0.2% and 0.5% of price.
func Tolerance(price, atr float64, cfg Config) float64 {
	tol := cfg.ClusterATR * atr
	lo, hi := cfg.MinTolerancePct*price, cfg.MaxTolerancePct*price
	return math.Max(lo, math.Min(hi, tol))
}

// SupportResistance clusters confirmed swing lows below price into supports and swing highs
// above price into resistances, nearest first. A side with no swings gets one synthetic level.
func SupportResistance(swings []model.SwingPoint, price, atr float64, cfg Config) (supports, resistances []model.Level) {
	var lows, highs []float64
	for _, s := range swings {
		if s.Status != model.SwingConfirmed {
			continue
		}
		switch {
		case s.Kind == model.SwingLow && s.Price < price:
			lows = append(lows, s.Price)
		case s.Kind == model.SwingHigh && s.Price > price:
			highs = append(highs, s.Price)
		}
	}

	tol := Tolerance(price, atr, cfg)
	supports = nearest(cluster(lows, tol, model.LevelSupport, price, cfg), cfg.MaxLevels)
	resistances = nearest(cluster(highs, tol, model.LevelResistance, price, cfg), cfg.MaxLevels)

	if len(supports) == 0 {
		supports = []model.Level{synthetic(price*(1-cfg.FallbackPct), model.LevelSupport, price, cfg)}
	}
	if len(resistances) == 0 {
		resistances = []model.Level{synthetic(price*(1+cfg.FallbackPct), model.LevelResistance, price, cfg)}
	}
	return supports, resistances
}

// cluster groups sorted prices greedily: a price joins the open cluster when it is within tol of its mean.
func cluster(prices []float64, tol float64, kind model.LevelKind, price float64, cfg Config) []model.Level {
	if len(prices) == 0 {
		return nil
	}
	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)

	var out []model.Level
	sum, count := sorted[0], 1
	flush := func() {
		out = append(out, newLevel(sum/float64(count), count, kind, price, cfg))
	}
	for _, p := range sorted[1:] {
		if math.Abs(p-sum/float64(count)) <= tol {
			sum += p
			count++
			continue
		}
		flush()
		sum, count = p, 1
	}
	flush()
	return out
}

func newLevel(levelPrice float64, touches int, kind model.LevelKind, price float64, cfg Config) model.Level {
	hits := cfg.FullStrengthHits
	if hits <= 0 {
		hits = 5
	}
	l := model.Level{
		Price:    levelPrice,
		Kind:     kind,
		Touches:  touches,
		Strength: math.Min(1, float64(touches)/float64(hits)),
	}
	setDistance(&l, price)
	return l
}

func synthetic(levelPrice float64, kind model.LevelKind, price float64, cfg Config) model.Level {
	l := model.Level{Price: levelPrice, Kind: kind, Strength: cfg.FallbackStrength, Synthetic: true}
	setDistance(&l, price)
	return l
}

func setDistance(l *model.Level, price float64) {
	l.Distance = math.Abs(price - l.Price)
	if price > 0 {
		l.DistancePct = l.Distance / price * 100
	}
}

func nearest(levels []model.Level, n int) []model.Level {
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].Distance < levels[j].Distance })
	if n > 0 && len(levels) > n {
		levels = levels[:n]
	}
	return levels
}
