package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger returns a gin middleware that writes one access entry per request.
// Server errors are also reported on errLog when it is non-nil.
func Logger(access, errLog *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		access.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", statusCode),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		)

		if statusCode >= 500 && errLog != nil {
			errLog.Error("HTTP error response",
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.Int("status", statusCode),
				zap.Strings("errors", c.Errors.Errors()),
			)
		}
	}
}
