package birdeye

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infrahttp "token_backend/internal/platform/http"
	"token_backend/internal/shared/market"
)

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(Config{APIKey: apiKey, BaseURL: srv.URL, CandleLimit: 10}, srv.Client(), nil)
	c.now = func() time.Time { return time.Unix(1700003600, 0) }
	return c
}

func TestClient_FetchCandles(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/defi/ohlcv/pair", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "solana", r.Header.Get("x-chain"))
		assert.Equal(t, "1H", r.URL.Query().Get("type"))
		assert.Equal(t, "1699967600", r.URL.Query().Get("time_from"))
		assert.Equal(t, "1700003600", r.URL.Query().Get("time_to"))

		_, _ = w.Write([]byte(`{"success":true,"data":{"items":[
			{"unixTime":1700002800,"o":2,"h":3,"l":1.5,"c":2.5,"v":"12"},
			{"unixTime":1699999200000,"o":"1","h":"2","l":"0.5","c":"2"},
			{"unixTime":1700006400,"o":1,"h":1,"l":1}
		]}}`))
	})

	candles, err := c.FetchCandles(context.Background(), "solana", "Pool111", market.TF1h)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, market.Candle{Timestamp: 1699999200, Open: 1, High: 2, Low: 0.5, Close: 2}, candles[0])
	assert.Equal(t, market.Candle{Timestamp: 1700002800, Open: 2, High: 3, Low: 1.5, Close: 2.5, Volume: 12}, candles[1])
}

func TestClient_NoAPIKeySkipsUpstream(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) { calls.Add(1) })

	_, err := c.FetchCandles(context.Background(), "solana", "Pool111", market.TF1h)
	assert.ErrorIs(t, err, ErrNoAPIKey)
	_, err = c.FetchTrades(context.Background(), "solana", "Pool111", 10)
	assert.ErrorIs(t, err, ErrNoAPIKey)
	assert.Zero(t, calls.Load())
}

func TestClient_UnsuccessfulEnvelope(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"Not found"}`))
	})

	_, err := c.FetchCandles(context.Background(), "ethereum", "0xpool", market.TF5m)
	assert.ErrorIs(t, err, infrahttp.ErrEmptyPayload)
	assert.Contains(t, err.Error(), "Not found")
}

func TestClient_FetchTrades(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/defi/txs/pair", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "desc", r.URL.Query().Get("sort_type"))

		_, _ = w.Write([]byte(`{"success":true,"data":{"items":[
			{"blockUnixTime":1700000000,"side":"buy","price":"0.5","base":{"uiAmount":20},"volumeUSD":10,"txHash":"sig1","owner":"W1"},
			{"blockUnixTime":1700000060,"side":"sell","pricePair":0.45,"volumeUsd":"4.5","txHash":"sig2"},
			{"blockUnixTime":1700000120,"side":"sell"}
		]}}`))
	})

	trades, err := c.FetchTrades(context.Background(), "solana", "Pool111", 500)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, int64(1700000060), trades[0].Timestamp)
	assert.Equal(t, market.Sell, trades[0].Side)
	assert.Equal(t, 0.45, trades[0].Price)
	assert.Nil(t, trades[0].AmountBase)
	assert.Equal(t, 4.5, *trades[0].AmountQuote)

	assert.Equal(t, 20.0, *trades[1].AmountBase)
	assert.Equal(t, "W1", trades[1].WalletAddress)
	assert.Equal(t, "sig1", trades[1].TransactionHash)
}

func TestClient_FetchCandles_HTTPError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.FetchCandles(context.Background(), "solana", "Pool111", market.TF1m)
	assert.ErrorIs(t, err, infrahttp.ErrHTTPStatus)
}
