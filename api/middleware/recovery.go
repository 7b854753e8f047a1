package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/vidgrab-go/internal/domain"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into an internal error response.
// The panic value is logged and attached to the context but never sent
// to the client.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			err := domain.NewInternalError("internal server error", fmt.Errorf("panic: %v", rec))
			log.Error("Panic recovered",
				zap.Error(err),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Stack("stack"),
			)
			_ = c.Error(err)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(StatusFor(err), gin.H{"error": err.Message})
		}()
		c.Next()
	}
}
