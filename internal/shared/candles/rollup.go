package candles

import (
	"math"
	"sort"

	"token_backend/internal/shared/market"
)

// Rollup buckets candles of timeframe from into timeframe to: open of the first bar, close of the last,
// max of highs, min of lows and the sum of volumes. The width of to must be an exact multiple of the
// width of from; otherwise the input is returned unchanged.
func Rollup(in []market.Candle, from, to market.Timeframe) []market.Candle {
	fw, tw := from.Seconds(), to.Seconds()
	if fw <= 0 || tw <= 0 || tw%fw != 0 || tw == fw || len(in) == 0 {
		return in
	}

	ordered := make([]market.Candle, len(in))
	copy(ordered, in)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp < ordered[j].Timestamp
	})

	out := make([]market.Candle, 0, len(ordered)/int(tw/fw)+1)
	for _, c := range ordered {
		start := BucketStart(c.Timestamp, tw)
		n := len(out)
		if n == 0 || out[n-1].Timestamp != start {
			c.Timestamp = start
			out = append(out, c)
			continue
		}
		cur := &out[n-1]
		cur.High = math.Max(cur.High, c.High)
		cur.Low = math.Min(cur.Low, c.Low)
		cur.Close = c.Close
		cur.Volume += c.Volume
	}
	return out
}
