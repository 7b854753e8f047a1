package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/vidgrab-go/internal/domain"
)

// CORS builds the cross-origin middleware. A "*" entry allows every origin.
func CORS(config *domain.CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}

	origins := []string{"*"}
	if config != nil && len(config.AllowOrigins) > 0 {
		origins = config.AllowOrigins
	}
	for _, origin := range origins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return cors.New(c)
		}
	}
	c.AllowOrigins = origins
	return cors.New(c)
}
