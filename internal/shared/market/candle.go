// Package market defines the request-scoped market data types shared by every feature:
// candles, trades, timeframes, pool and token descriptors, and provider attempt records.
package market

// Candle is one OHLC bar. Timestamp is in seconds and marks the start of the bucket.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"` // base-asset amount, 0 when unknown
}

// Valid reports whether the bar satisfies low <= min(open,close) <= max(open,close) <= high.
func (c Candle) Valid() bool {
	lo, hi := c.Open, c.Close
	if lo > hi {
		lo, hi = hi, lo
	}
	return c.Low <= lo && hi <= c.High && c.Volume >= 0
}
