package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/vidgrab-go/internal/domain"
	"golang.org/x/time/rate"
)

// RateLimit returns a middleware sharing one token bucket across all callers
// of the routes it guards. A disabled config lets every request through.
func RateLimit(config *domain.RateLimitConfig) gin.HandlerFunc {
	if config == nil || !config.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}
