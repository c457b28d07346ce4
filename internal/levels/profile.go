package levels

import (
	"cmp"
	"math"
	"slices"

	"MarketConfluence/internal/model"
)

const (
	valueAreaShare = 0.70
	hvnFactor      = 1.5
	lvnFactor      = 0.5
	rejectionRatio = 1.5
)

// BuildVolumeProfile buckets each candle's volume by its close into equal-width bins spanning
// the series' low to high. The value area is the smallest set of heaviest bins holding 70% of
// the volume, bounded by their price range. High-volume nodes become support or resistance
// only where a rejection wick touched them.
func BuildVolumeProfile(candles []model.Candle, bins int, price float64) model.VolumeProfile {
	var vp model.VolumeProfile
	if len(candles) == 0 || bins <= 0 {
		return vp
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range candles {
		lo = math.Min(lo, c.Low)
		hi = math.Max(hi, c.High)
	}
	if hi <= lo {
		hi = lo + math.Max(lo*1e-6, 1e-9)
	}
	step := (hi - lo) / float64(bins)

	nodes := make([]model.VolumeNode, bins)
	for i := range nodes {
		nodes[i].Low = lo + float64(i)*step
		nodes[i].High = nodes[i].Low + step
		nodes[i].Mid = nodes[i].Low + step/2
	}
	for _, c := range candles {
		if c.Volume <= 0 {
			continue
		}
		vp.TotalVolume += c.Volume
		nodes[binOf(c.Close, lo, step, bins)].Volume += c.Volume
	}
	vp.Nodes = nodes
	if vp.TotalVolume == 0 {
		return vp
	}

	// Bins by volume, heaviest first; equal volumes keep price order.
	order := make([]int, bins)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(nodes[b].Volume, nodes[a].Volume)
	})
	vp.POC = nodes[order[0]].Mid

	vp.ValueAreaLow, vp.ValueAreaHigh = math.Inf(1), math.Inf(-1)
	acc := 0.0
	for _, i := range order {
		acc += nodes[i].Volume
		vp.ValueAreaLow = math.Min(vp.ValueAreaLow, nodes[i].Low)
		vp.ValueAreaHigh = math.Max(vp.ValueAreaHigh, nodes[i].High)
		if acc >= valueAreaShare*vp.TotalVolume {
			break
		}
	}
	vp.PriceInValue = price >= vp.ValueAreaLow && price <= vp.ValueAreaHigh

	avg := vp.TotalVolume / float64(bins)
	for _, n := range nodes {
		switch {
		case n.Volume > hvnFactor*avg:
			vp.HighVolume = append(vp.HighVolume, n)
			switch {
			case n.Mid < price && rejectedAt(candles, n, true):
				vp.HVNSupports = append(vp.HVNSupports, n.Mid)
			case n.Mid > price && rejectedAt(candles, n, false):
				vp.HVNResistances = append(vp.HVNResistances, n.Mid)
			}
		case n.Volume < lvnFactor*avg:
			vp.LowVolume = append(vp.LowVolume, n)
		}
	}
	return vp
}

func binOf(p, lo, step float64, bins int) int {
	i := int((p - lo) / step)
	if i < 0 {
		return 0
	}
	if i >= bins {
		return bins - 1
	}
	return i
}

// rejectedAt reports whether a candle's wick into the node is longer than 1.5x its body.
// Lower wicks are checked for support, upper wicks for resistance.
func rejectedAt(candles []model.Candle, n model.VolumeNode, support bool) bool {
	for _, c := range candles {
		if support {
			if c.Low >= n.Low && c.Low <= n.High && c.LowerWick() > rejectionRatio*c.Body() && c.LowerWick() > 0 {
				return true
			}
			continue
		}
		if c.High >= n.Low && c.High <= n.High && c.UpperWick() > rejectionRatio*c.Body() && c.UpperWick() > 0 {
			return true
		}
	}
	return false
}
