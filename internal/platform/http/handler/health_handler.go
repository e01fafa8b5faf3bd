// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーと共通のレスポンス処理を提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"token_backend/internal/shared/chains"
)

// HealthResponse は /healthz のレスポンスDTOです。
type HealthResponse struct {
	Status string   `json:"status"`
	Chains []string `json:"chains"`
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, HealthResponse{Status: "ok", Chains: chains.Supported()})
	}
}
