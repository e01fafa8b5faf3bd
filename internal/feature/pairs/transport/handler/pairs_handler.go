// Package handler はプール一覧フィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"token_backend/internal/feature/pairs/transport/http/dto"
	"token_backend/internal/feature/pairs/usecase"
	platformhandler "token_backend/internal/platform/http/handler"
)

// PairsUsecase はプール一覧ユースケースのインターフェースを定義します。
type PairsUsecase interface {
	GetPairs(ctx context.Context, in usecase.GetPairsInput) (*usecase.GetPairsOutput, error)
}

// PairsHandler はプール一覧のHTTPリクエストを処理します。
type PairsHandler struct {
	uc PairsUsecase
}

// NewPairsHandler は指定されたusecaseでPairsHandlerの新しいインスタンスを生成します。
func NewPairsHandler(uc PairsUsecase) *PairsHandler {
	return &PairsHandler{uc: uc}
}

// GetPairs はトークンが取引されているプールの一覧をJSONで返します。
//
// エンドポイント例:
// GET /pairs?chain=ethereum&address=0x...
func (h *PairsHandler) GetPairs(c *gin.Context) {
	out, err := h.uc.GetPairs(c.Request.Context(), usecase.GetPairsInput{
		Chain:    c.Query("chain"),
		Address:  c.Query("address"),
		Provider: c.Query("provider"),
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

	res := dto.PairsResponse{
		Token:    out.Token,
		Pools:    out.Pools,
		Provider: out.Provider,
	}
	if out.UnsupportedNetwork {
		res.Error = platformhandler.CodeUnsupportedNetwork
	}
	c.JSON(http.StatusOK, res)
}
