// Package handler は約定フィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"token_backend/internal/feature/trades/transport/http/dto"
	"token_backend/internal/feature/trades/usecase"
	platformhandler "token_backend/internal/platform/http/handler"
)

// TradesUsecase は約定ユースケースのインターフェースを定義します。
type TradesUsecase interface {
	GetTrades(ctx context.Context, in usecase.GetTradesInput) (*usecase.GetTradesOutput, error)
}

// TradesHandler は約定データのHTTPリクエストを処理します。
type TradesHandler struct {
	uc TradesUsecase
}

// NewTradesHandler は指定されたusecaseでTradesHandlerの新しいインスタンスを生成します。
func NewTradesHandler(uc TradesUsecase) *TradesHandler {
	return &TradesHandler{uc: uc}
}

// GetTrades は直近の約定を新しい順にJSONで返します。
//
// エンドポイント例:
// GET /trades?pairId=...&chain=solana&poolAddress=...&limit=100&window=24h
func (h *TradesHandler) GetTrades(c *gin.Context) {
	out, err := h.uc.GetTrades(c.Request.Context(), usecase.GetTradesInput{
		PairID:      c.Query("pairId"),
		PoolAddress: c.Query("poolAddress"),
		Chain:       c.Query("chain"),
		Limit:       c.Query("limit"),
		Window:      c.Query("window"),
		Provider:    c.Query("provider"),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidRequest) {
			platformhandler.RespondInvalid(c, err)
			return
		}
		platformhandler.RespondInternal(c, err)
		return
	}

	platformhandler.SetDiagnostics(c, out.Record)

	res := dto.TradesResponse{
		PairID:   out.PairID,
		Chain:    out.Chain,
		Trades:   out.Trades,
		Provider: out.Provider,
	}
	if out.UnsupportedNetwork {
		res.Error = platformhandler.CodeUnsupportedNetwork
	}
	c.JSON(http.StatusOK, res)
}
