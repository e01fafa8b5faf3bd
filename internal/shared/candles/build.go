// Package candles builds OHLCV candles from trade prints and rolls finer candles up into coarser ones.
// Both operations are pure: they never mutate their input and never fail, at worst returning fewer candles.
package candles

import (
	"math"
	"sort"

	"token_backend/internal/shared/market"
)

// Build groups trades into buckets of widthSeconds and returns one candle per non-empty bucket,
// sorted ascending by timestamp. Trades are consumed in time order, so the earliest print in a bucket
// opens it and the latest closes it. Trades with an unusable price are skipped; trades without a base
// amount move the price but add no volume.
func Build(trades []market.Trade, widthSeconds int64) []market.Candle {
	if widthSeconds <= 0 || len(trades) == 0 {
		return []market.Candle{}
	}

	ordered := make([]market.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp < ordered[j].Timestamp
	})

	buckets := make(map[int64]*market.Candle)
	for _, tr := range ordered {
		if !usable(tr.Price) {
			continue
		}
		start := BucketStart(tr.Timestamp, widthSeconds)
		vol := volumeOf(tr.AmountBase)

		c, ok := buckets[start]
		if !ok {
			buckets[start] = &market.Candle{
				Timestamp: start,
				Open:      tr.Price,
				High:      tr.Price,
				Low:       tr.Price,
				Close:     tr.Price,
				Volume:    vol,
			}
			continue
		}
		c.High = math.Max(c.High, tr.Price)
		c.Low = math.Min(c.Low, tr.Price)
		c.Close = tr.Price
		c.Volume += vol
	}

	out := make([]market.Candle, 0, len(buckets))
	for _, c := range buckets {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

// BucketStart floors ts to a multiple of widthSeconds, also for negative timestamps.
func BucketStart(ts, widthSeconds int64) int64 {
	start := (ts / widthSeconds) * widthSeconds
	if ts < 0 && start != ts {
		start -= widthSeconds
	}
	return start
}

func usable(price float64) bool {
	return price >= 0 && !math.IsNaN(price) && !math.IsInf(price, 0)
}

func volumeOf(amount *float64) float64 {
	if amount == nil || *amount < 0 || math.IsNaN(*amount) || math.IsInf(*amount, 0) {
		return 0
	}
	return *amount
}
