// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"

	"token_backend/internal/platform/externalapi/birdeye"
	"token_backend/internal/platform/externalapi/dexscreener"
	"token_backend/internal/platform/externalapi/geckoterminal"
	"token_backend/internal/platform/externalapi/goplus"
	infrahttp "token_backend/internal/platform/http"
	"token_backend/internal/shared/market"
	"token_backend/internal/shared/ratelimiter"
)

// Providers holds one configured client per upstream. Birdeye is nil when no API key is set.
type Providers struct {
	GeckoTerminal *geckoterminal.Client
	Birdeye       *birdeye.Client
	DexScreener   *dexscreener.Client
	GoPlus        *goplus.Client
}

// NewProviders creates every provider client with its own HTTP client and outbound rate limiter.
func NewProviders() *Providers {
	p := &Providers{}

	gcfg := geckoterminal.LoadConfig()
	p.GeckoTerminal = geckoterminal.NewClient(gcfg, infrahttp.NewHTTPClient(gcfg.Timeout),
		ratelimiter.NewRateLimiter(market.ProviderGeckoTerminal, gcfg.RequestsPerSecond, gcfg.Burst))

	bcfg := birdeye.LoadConfig()
	if bcfg.APIKey != "" {
		p.Birdeye = birdeye.NewClient(bcfg, infrahttp.NewHTTPClient(bcfg.Timeout),
			ratelimiter.NewRateLimiter(market.ProviderBirdeye, bcfg.RequestsPerSecond, bcfg.Burst))
	} else {
		slog.Warn("BIRDEYE_API_KEY is not set; birdeye provider disabled")
	}

	dcfg := dexscreener.LoadConfig()
	p.DexScreener = dexscreener.NewClient(dcfg, infrahttp.NewHTTPClient(dcfg.Timeout),
		ratelimiter.NewRateLimiter(market.ProviderDexScreener, dcfg.RequestsPerSecond, dcfg.Burst))

	pcfg := goplus.LoadConfig()
	p.GoPlus = goplus.NewClient(pcfg, infrahttp.NewHTTPClient(pcfg.Timeout),
		ratelimiter.NewRateLimiter(market.ProviderGoPlus, pcfg.RequestsPerSecond, pcfg.Burst))

	return p
}
