package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	ohlchandler "token_backend/internal/feature/ohlc/transport/handler"
	pairshandler "token_backend/internal/feature/pairs/transport/handler"
	tokenhandler "token_backend/internal/feature/token/transport/handler"
	tradeshandler "token_backend/internal/feature/trades/transport/handler"
	"token_backend/internal/platform/http/handler"
	"token_backend/internal/platform/http/middleware"
)

// Options はルーター全体に効くHTTP設定です。
type Options struct {
	CORSMaxAge     time.Duration
	ResponseMaxAge time.Duration
	ResponseSWR    time.Duration
}

func NewRouter(opts Options, ohlc *ohlchandler.OHLCHandler, trades *tradeshandler.TradesHandler,
	pairs *pairshandler.PairsHandler, token *tokenhandler.TokenHandler) *gin.Engine {
	r := gin.New()
	// GET/OPTIONS 以外は 405
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	// 全オリジンからの参照を許可（ブラウザのフロントエンドから直接呼ばれる）
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Accept", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{
			handler.HeaderProvider,
			handler.HeaderFallbacksTried,
			handler.HeaderItems,
			handler.HeaderEffectiveTF,
			middleware.RequestIDHeader,
		},
		MaxAge: opts.CORSMaxAge,
	}))

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.OPTIONS("/healthz", handler.Health)

	// マーケットデータ
	data := r.Group("/")
	data.Use(middleware.CacheControl(opts.ResponseMaxAge, opts.ResponseSWR))
	{
		data.GET("/ohlc", ohlc.GetOHLC)
		data.GET("/trades", trades.GetTrades)
		data.GET("/pairs", pairs.GetPairs)
		data.GET("/token", token.GetToken)
	}

	return r
}
