// Package handler はOHLCフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"token_backend/internal/feature/ohlc/transport/http/dto"
	"token_backend/internal/feature/ohlc/usecase"
	platformhandler "token_backend/internal/platform/http/handler"
)

// OHLCUsecase はOHLCユースケースのインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type OHLCUsecase interface {
	GetCandles(ctx context.Context, in usecase.GetCandlesInput) (*usecase.GetCandlesOutput, error)
}

// OHLCHandler はOHLCデータのHTTPリクエストを処理します。
type OHLCHandler struct {
	uc OHLCUsecase
}

// NewOHLCHandler は指定されたusecaseでOHLCHandlerの新しいインスタンスを生成します。
func NewOHLCHandler(uc OHLCUsecase) *OHLCHandler {
	return &OHLCHandler{uc: uc}
}

// GetOHLC はプール・チェーン・時間足を受け取り、ローソク足と診断情報をJSONで返します。
//
// エンドポイント例:
// GET /ohlc?pairId=...&chain=ethereum&tf=1h&poolAddress=0x...&provider=birdeye
//
// 対応外チェーンやプロバイダ全滅の場合も200を返します。
func (h *OHLCHandler) GetOHLC(c *gin.Context) {
	in := usecase.GetCandlesInput{
		PairID:      c.Query("pairId"),
		PoolAddress: c.Query("poolAddress"),
		Chain:       c.Query("chain"),
		Timeframe:   c.Query("tf"),
		Provider:    c.Query("provider"),
	}

	out, err := h.uc.GetCandles(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidRequest) {
			platformhandler.RespondInvalid(c, err)
			return
		}
		platformhandler.RespondInternal(c, err)
		return
	}

	platformhandler.SetDiagnostics(c, out.Record)

	res := dto.OHLCResponse{
		PairID:      out.PairID,
		Chain:       out.Chain,
		TF:          out.Timeframe.String(),
		Candles:     out.Candles,
		Provider:    out.Provider,
		EffectiveTF: out.EffectiveTimeframe.String(),
		Attempts:    out.Record.Attempts,
	}
	if out.UnsupportedNetwork {
		res.Error = platformhandler.CodeUnsupportedNetwork
	}
	c.JSON(http.StatusOK, res)
}
