package collector

import (
	"time"

	"MarketConfluence/internal/model"
)

// Resample aggregates ascending candles into buckets of the target timeframe.
// Buckets are aligned to UTC multiples of the target duration; a partial last bucket is kept.
func Resample(candles []model.Candle, to model.Timeframe) []model.Candle {
	d := to.Duration()
	if len(candles) == 0 || d <= 0 {
		return nil
	}

	var out []model.Candle
	var bar model.Candle
	var bucket time.Time
	started := false

	for _, c := range candles {
		b := c.Time.UTC().Truncate(d)
		if !started || !b.Equal(bucket) {
			if started {
				out = append(out, bar)
			}
			bucket = b
			bar = model.Candle{Time: b, Open: c.Open, High: c.High, Low: c.Low, Close: c.Close, Volume: c.Volume}
			started = true
			continue
		}
		if c.High > bar.High {
			bar.High = c.High
		}
		if c.Low < bar.Low {
			bar.Low = c.Low
		}
		bar.Close = c.Close
		bar.Volume += c.Volume
	}
	if started {
		out = append(out, bar)
	}
	return out
}
