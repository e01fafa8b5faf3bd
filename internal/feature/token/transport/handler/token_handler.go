// Package handler はトークン詳細フィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"token_backend/internal/feature/token/transport/http/dto"
	"token_backend/internal/feature/token/usecase"
	platformhandler "token_backend/internal/platform/http/handler"
)

// TokenUsecase はトークン詳細ユースケースのインターフェースを定義します。
type TokenUsecase interface {
	GetToken(ctx context.Context, in usecase.GetTokenInput) (*usecase.GetTokenOutput, error)
}

// TokenHandler はトークン詳細のHTTPリクエストを処理します。
type TokenHandler struct {
	uc TokenUsecase
}

// NewTokenHandler は指定されたusecaseでTokenHandlerの新しいインスタンスを生成します。
func NewTokenHandler(uc TokenUsecase) *TokenHandler {
	return &TokenHandler{uc: uc}
}

// GetToken はトークンのメタデータとKPIをJSONで返します。
//
// エンドポイント例:
// GET /token?chain=solana&address=...
func (h *TokenHandler) GetToken(c *gin.Context) {
	out, err := h.uc.GetToken(c.Request.Context(), usecase.GetTokenInput{
		Chain:   c.Query("chain"),
		Address: c.Query("address"),
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

	res := dto.TokenResponse{
		Info:     out.Info,
		KPIs:     out.KPIs,
		Pools:    out.Pools,
		Provider: out.Provider,
		Sources:  out.Sources,
	}
	if out.UnsupportedNetwork {
		res.Error = platformhandler.CodeUnsupportedNetwork
	}
	c.JSON(http.StatusOK, res)
}
