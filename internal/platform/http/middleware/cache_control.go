package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl sets a public Cache-Control header with max-age and stale-while-revalidate on
// successful GET responses. Handlers may override it before writing.
func CacheControl(maxAge, staleWhileRevalidate time.Duration) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d",
		int(maxAge/time.Second), int(staleWhileRevalidate/time.Second))
	return func(c *gin.Context) {
		if c.Request.Method == "GET" {
			c.Header("Cache-Control", value)
		}
		c.Next()
	}
}
