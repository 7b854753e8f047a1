package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/vidgrab-go/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("url and format are required"), http.StatusBadRequest},
		{"unsupported", domain.NewUnsupportedPlatformError("https://example.com"), http.StatusBadRequest},
		{"tool unavailable", domain.NewToolUnavailableError("yt-dlp"), http.StatusNotImplemented},
		{"resolution", domain.NewResolutionError("failed", errors.New("boom")), http.StatusInternalServerError},
		{"conversion", domain.NewConversionError("failed", nil), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := serve(r, http.MethodGet, "/panic", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "kaboom")

	entries := logs.FilterMessage("Panic recovered").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "panic: kaboom")
}

func TestRecovery_AttachesInternalError(t *testing.T) {
	var recorded []*gin.Error
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		recorded = c.Errors
	})
	r.Use(Recovery(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic(errors.New("nil map")) })

	serve(r, http.MethodGet, "/panic", nil)

	require.Len(t, recorded, 1)
	assert.Equal(t, domain.KindInternal, domain.KindOf(recorded[0].Err))
}

func TestLogger(t *testing.T) {
	accessCore, access := observer.New(zap.InfoLevel)
	errCore, errs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(Logger(zap.New(accessCore), zap.New(errCore)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) {
		AbortWithError(c, domain.NewResolutionError("failed to fetch video", errors.New("403")))
	})

	serve(r, http.MethodGet, "/ok?x=1", nil)
	w := serve(r, http.MethodGet, "/fail", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"failed to fetch video: 403"}`, w.Body.String())
	require.Equal(t, 2, access.Len())
	first := access.All()[0].ContextMap()
	assert.Equal(t, "/ok", first["path"])
	assert.Equal(t, "x=1", first["query"])
	assert.Equal(t, 1, errs.Len())
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(&domain.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 2}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/", nil).Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(&domain.RateLimitConfig{Enabled: false, Burst: 0}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	}
}

func TestCORS(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		r := gin.New()
		r.Use(CORS(&domain.CORSConfig{AllowOrigins: []string{"*"}}))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := serve(r, http.MethodGet, "/", map[string]string{"Origin": "http://anywhere.test"})
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("explicit list", func(t *testing.T) {
		r := gin.New()
		r.Use(CORS(&domain.CORSConfig{AllowOrigins: []string{"http://localhost:5173"}}))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := serve(r, http.MethodGet, "/", map[string]string{"Origin": "http://localhost:5173"})
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

		w = serve(r, http.MethodGet, "/", map[string]string{"Origin": "http://evil.test"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
