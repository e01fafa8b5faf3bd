package market

import "fmt"

// Timeframe is a requested candle granularity such as "1m" or "4h".
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF30m Timeframe = "30m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF12h Timeframe = "12h"
	TF1d  Timeframe = "1d"
)

var timeframeSeconds = map[Timeframe]int64{
	TF1m:  60,
	TF5m:  5 * 60,
	TF15m: 15 * 60,
	TF30m: 30 * 60,
	TF1h:  60 * 60,
	TF4h:  4 * 60 * 60,
	TF12h: 12 * 60 * 60,
	TF1d:  24 * 60 * 60,
}

// Timeframes lists every known timeframe from finest to coarsest.
var Timeframes = []Timeframe{TF1m, TF5m, TF15m, TF30m, TF1h, TF4h, TF12h, TF1d}

// ParseTimeframe validates s against the known timeframes.
// A few common aliases ("60m", "1H", "24h", "1D") are accepted.
func ParseTimeframe(s string) (Timeframe, error) {
	switch s {
	case "60m", "1H":
		return TF1h, nil
	case "4H":
		return TF4h, nil
	case "24h", "1D":
		return TF1d, nil
	}
	tf := Timeframe(s)
	if _, ok := timeframeSeconds[tf]; !ok {
		return "", fmt.Errorf("unknown timeframe %q", s)
	}
	return tf, nil
}

// Seconds returns the bucket width of tf, or 0 for an unknown timeframe.
func (tf Timeframe) Seconds() int64 {
	return timeframeSeconds[tf]
}

func (tf Timeframe) String() string {
	return string(tf)
}
