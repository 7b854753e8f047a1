package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/vidgrab-go/internal/domain"
)

// StatusFor maps a service error to its HTTP status code
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindUnsupportedPlatform:
		return http.StatusBadRequest
	case domain.KindToolUnavailable:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError records err on the context and writes the JSON error body
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(StatusFor(err), gin.H{"error": err.Error()})
}
