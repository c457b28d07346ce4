// Package cleaner detects and winsorizes outlier closes in a candle series.
package cleaner

import (
	"math"
	"sort"

	"MarketConfluence/internal/model"
)

const (
	// madScale converts MAD to a standard-deviation estimate for normal data.
	madScale = 1.4826
	// madFloor stops float noise on perfectly regular series from being flagged.
	madFloor = 1e-6
	// minCandles is the shortest series that gets cleaned.
	minCandles = 5
	// maxPasses bounds the repeat passes needed when clamping one close exposes its neighbour.
	maxPasses = 5
)

// Config tunes outlier detection.
type Config struct {
	Window    int     `yaml:"window"`
	Threshold float64 `yaml:"threshold"`
}

// DefaultConfig returns the standard rolling-MAD settings.
func DefaultConfig() Config {
	return Config{Window: 20, Threshold: 3.0}
}

// Result is the cleaned series with the indices that were adjusted.
type Result struct {
	Candles   []model.Candle
	Anomalies []int
	Quality   float64
}

// Clean returns a copy of candles with outlier closes clamped toward the local median.
// The input slice is never modified.
func Clean(candles []model.Candle, cfg Config) Result {
	out := make([]model.Candle, len(candles))
	copy(out, candles)
	if len(out) < minCandles {
		return Result{Candles: out, Quality: 1.0}
	}
	if cfg.Window < 3 {
		cfg.Window = DefaultConfig().Window
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultConfig().Threshold
	}

	seen := make(map[int]bool)
	var anomalies []int
	for pass := 0; pass < maxPasses; pass++ {
		moved := clampPass(out, cfg)
		if len(moved) == 0 {
			break
		}
		for _, i := range moved {
			if !seen[i] {
				seen[i] = true
				anomalies = append(anomalies, i)
			}
		}
	}
	sort.Ints(anomalies)

	quality := 1 - 2*float64(len(anomalies))/float64(len(out))
	if quality < 0.5 {
		quality = 0.5
	}
	return Result{Candles: out, Anomalies: anomalies, Quality: quality}
}

// clampPass runs one detection pass over out in place and returns the indices it moved.
// Every window is evaluated against the series as it was at the start of the pass.
func clampPass(out []model.Candle, cfg Config) []int {
	closes := model.Closes(out)
	returns := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			returns[i] = closes[i]/closes[i-1] - 1
		}
	}

	var moved []int
	half := cfg.Window / 2
	for i := 1; i < len(out); i++ {
		lo, hi := window(i, half, 1, len(out))
		med, mad := medianMAD(returns[lo:hi])
		scaled := math.Max(mad*madScale, madFloor)
		if math.Abs(returns[i]-med)/scaled <= cfg.Threshold {
			continue
		}

		clo, chi := window(i, half, 0, len(out))
		cmed, cmad := medianMAD(closes[clo:chi])
		band := cfg.Threshold * cmad * madScale
		clamped := math.Min(math.Max(closes[i], cmed-band), cmed+band)
		if clamped == closes[i] {
			continue
		}

		c := &out[i]
		c.Close = clamped
		if c.High < clamped {
			c.High = clamped
		}
		if c.Low > clamped {
			c.Low = clamped
		}
		moved = append(moved, i)
	}
	return moved
}

// window returns the [lo, hi) bounds of a centred window clipped to [first, n).
func window(i, half, first, n int) (int, int) {
	lo := i - half
	if lo < first {
		lo = first
	}
	hi := i + half + 1
	if hi > n {
		hi = n
	}
	return lo, hi
}

// medianMAD returns the median and the median absolute deviation of values.
func medianMAD(values []float64) (median, mad float64) {
	if len(values) == 0 {
		return 0, 0
	}
	median = medianOf(values)
	dev := make([]float64, len(values))
	for i, v := range values {
		dev[i] = math.Abs(v - median)
	}
	return median, medianOf(dev)
}

func medianOf(values []float64) float64 {
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
