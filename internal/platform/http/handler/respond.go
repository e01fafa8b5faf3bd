package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"token_backend/internal/platform/http/middleware"
	"token_backend/internal/shared/market"
)

// Error codes carried in the "error" field of JSON bodies.
const (
	CodeInvalidRequest     = "invalid_request"
	CodeInternalError      = "internal_error"
	CodeUnsupportedNetwork = "unsupported_network"
)

// Diagnostic response headers.
const (
	HeaderProvider       = "x-provider"
	HeaderFallbacksTried = "x-fallbacks-tried"
	HeaderItems          = "x-items"
	HeaderEffectiveTF    = "x-effective-tf"
)

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// RespondInvalid は入力エラーを400で返します。
func RespondInvalid(c *gin.Context, err error) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:     CodeInvalidRequest,
		Message:   err.Error(),
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondInternal は内部エラーをログに残し、詳細を伏せて500で返します。
func RespondInternal(c *gin.Context, err error) {
	rid := middleware.GetRequestID(c)
	slog.Error("internal error", "path", c.Request.URL.Path, "request_id", rid, "error", err)
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: CodeInternalError, RequestID: rid})
}

// SetDiagnostics は試行したプロバイダ・件数・実際の時間足をレスポンスヘッダーに設定します。
func SetDiagnostics(c *gin.Context, rec market.AttemptRecord) {
	c.Header(HeaderProvider, rec.Provider)
	c.Header(HeaderFallbacksTried, strings.Join(rec.Tried(), ","))
	c.Header(HeaderItems, strconv.Itoa(rec.Items))
	if rec.EffectiveTimeframe != "" {
		c.Header(HeaderEffectiveTF, rec.EffectiveTimeframe.String())
	}
}
