package middleware

import (
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/gin-gonic/gin"
)

// Logger logs every request once it has been handled. Gateway webhooks are
// logged at Info; client and server errors at Warn and Error.
func Logger(logger coreport.Logger, clock coreport.TimeProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := clock.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := map[string]any{
			"method":     c.Request.Method,
			"path":       path,
			"route":      c.FullPath(),
			"status":     status,
			"latency_ms": clock.Since(start).Std().Milliseconds(),
			"ip":         c.ClientIP(),
			"request_id": c.GetHeader("X-Request-ID"),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.Errors()
		}

		switch {
		case status >= 500:
			logger.Error("Request failed", fields)
		case status >= 400:
			logger.Warn("Request rejected", fields)
		default:
			logger.Info("Request processed", fields)
		}
	}
}
