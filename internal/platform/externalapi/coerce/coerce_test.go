package coerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		json     string
		expected float64
		ok       bool
	}{
		{"number", `{"v":1.5}`, 1.5, true},
		{"numeric string", `{"v":"0.000012"}`, 0.000012, true},
		{"padded string", `{"v":" 42 "}`, 42, true},
		{"empty string", `{"v":""}`, 0, false},
		{"garbage string", `{"v":"n/a"}`, 0, false},
		{"null", `{"v":null}`, 0, false},
		{"missing", `{}`, 0, false},
		{"bool", `{"v":true}`, 0, false},
		{"nan string", `{"v":"NaN"}`, 0, false},
		{"object", `{"v":{"usd":1}}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, ok := Float(gjson.Get(tt.json, "v"))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestFirstAlternateNames(t *testing.T) {
	t.Parallel()

	obj := gjson.Parse(`{"price_usd":null,"priceUsd":"bad","price":"3.25","name":"  ","symbol":"PEPE"}`)

	f, ok := FirstFloat(obj, "price_usd", "priceUsd", "price")
	require.True(t, ok)
	assert.Equal(t, 3.25, f)

	assert.Nil(t, FirstFloatPtr(obj, "price_usd", "priceUsd"))
	assert.Equal(t, "PEPE", FirstString(obj, "name", "symbol"))
	assert.Equal(t, `"bad"`, First(obj, "price_usd", "priceUsd").Raw)
	assert.False(t, First(obj, "missing").Exists())
	assert.Equal(t, 7.0, FloatOr(obj.Get("missing"), 7))
}

func TestUnixSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		json     string
		expected int64
		ok       bool
	}{
		{"seconds", `{"t":1700000000}`, 1700000000, true},
		{"milliseconds", `{"t":1700000000123}`, 1700000000, true},
		{"numeric string ms", `{"t":"1700000000123"}`, 1700000000, true},
		{"rfc3339", `{"t":"2023-11-14T22:13:20Z"}`, 1700000000, true},
		{"space separated", `{"t":"2023-11-14 22:13:20"}`, 1700000000, true},
		{"zero", `{"t":0}`, 0, false},
		{"garbage", `{"t":"yesterday"}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ts, ok := UnixSeconds(gjson.Get(tt.json, "t"))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, ts)
		})
	}
}

func TestInt(t *testing.T) {
	t.Parallel()

	n, ok := Int(gjson.Parse(`"18"`))
	assert.True(t, ok)
	assert.Equal(t, int64(18), n)

	_, ok = Int(gjson.Parse(`1e300`))
	assert.False(t, ok)
}
