// Package coerce turns loosely typed upstream JSON into well-defined Go values.
//
// Every helper is total: it never panics and reports through its boolean result whether a usable value
// was found. Numbers may arrive as JSON numbers or as strings; timestamps may be seconds, milliseconds,
// numeric strings or RFC3339 text.
package coerce

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// millisThreshold separates second timestamps from millisecond timestamps (year 33658 in seconds).
const millisThreshold = 1_000_000_000_000

// Float parses r as a finite float64.
func Float(r gjson.Result) (float64, bool) {
	switch r.Type {
	case gjson.Number:
		return finite(r.Num)
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	}
	return 0, false
}

// FloatOr returns the parsed value of r or def.
func FloatOr(r gjson.Result, def float64) float64 {
	if f, ok := Float(r); ok {
		return f
	}
	return def
}

// FloatPtr returns a pointer to the parsed value of r, or nil when r is missing or unparseable.
func FloatPtr(r gjson.Result) *float64 {
	if f, ok := Float(r); ok {
		return &f
	}
	return nil
}

// First returns the first of paths present in obj. It lets clients accept alternate field names
// such as "price_usd" and "priceUsd".
func First(obj gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := obj.Get(p); r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

// FirstFloat is First followed by Float.
func FirstFloat(obj gjson.Result, paths ...string) (float64, bool) {
	for _, p := range paths {
		if f, ok := Float(obj.Get(p)); ok {
			return f, true
		}
	}
	return 0, false
}

// FirstFloatPtr is First followed by FloatPtr, skipping present but unparseable fields.
func FirstFloatPtr(obj gjson.Result, paths ...string) *float64 {
	if f, ok := FirstFloat(obj, paths...); ok {
		return &f
	}
	return nil
}

// FirstString returns the first non-empty string among paths.
func FirstString(obj gjson.Result, paths ...string) string {
	for _, p := range paths {
		r := obj.Get(p)
		if !r.Exists() || r.Type == gjson.Null {
			continue
		}
		if s := strings.TrimSpace(r.String()); s != "" {
			return s
		}
	}
	return ""
}

// Int parses r as an integer, accepting numeric strings.
func Int(r gjson.Result) (int64, bool) {
	f, ok := Float(r)
	if !ok || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// UnixSeconds normalizes a timestamp to seconds. Millisecond values are divided down and RFC3339
// strings are parsed.
func UnixSeconds(r gjson.Result) (int64, bool) {
	if r.Type == gjson.String {
		s := strings.TrimSpace(r.Str)
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.Unix(), true
		}
		if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
			return t.Unix(), true
		}
	}
	n, ok := Int(r)
	if !ok || n <= 0 {
		return 0, false
	}
	return NormalizeUnix(n), true
}

// NormalizeUnix converts a millisecond timestamp to seconds and leaves second timestamps alone.
func NormalizeUnix(ts int64) int64 {
	if ts >= millisThreshold {
		return ts / 1000
	}
	return ts
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
