package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token_backend/internal/app/config"
)

func TestNewEngine_UnsupportedChainMakesNoUpstreamCalls(t *testing.T) {
	// Point every provider at a server that fails the test if it is ever called.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call %s", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()
	for _, k := range []string{"GECKOTERMINAL_BASE_URL", "BIRDEYE_BASE_URL", "DEXSCREENER_BASE_URL", "GOPLUS_BASE_URL"} {
		t.Setenv(k, upstream.URL)
	}
	t.Setenv("BIRDEYE_API_KEY", "k")

	cfg := &config.Config{
		Port: 8080, GinMode: "test", LogLevel: "info",
		CacheTTL: time.Second, ProviderTimeout: time.Second,
		ResponseMaxAge: time.Second, ResponseSWR: time.Second,
	}
	r := NewEngine(cfg, nil)

	for _, path := range []string{
		"/ohlc?pairId=p&chain=tron&tf=1h&poolAddress=T1",
		"/trades?pairId=p&chain=tron&poolAddress=T1",
		"/pairs?chain=tron&address=T1",
		"/token?chain=tron&address=T1",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `"error":"unsupported_network"`, path)
	}
}
