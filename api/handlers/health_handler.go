package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/vidgrab-go/internal/domain"
)

// AvailabilityProber reports which external tools are installed
type AvailabilityProber interface {
	Probe(ctx context.Context) *domain.ToolAvailability
}

// HealthHandler handles health and tool availability requests
type HealthHandler struct {
	prober  AvailabilityProber
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(prober AvailabilityProber, version string) *HealthHandler {
	return &HealthHandler{
		prober:  prober,
		version: version,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// ToolStatus describes one external tool
type ToolStatus struct {
	Installed bool    `json:"installed"`
	Version   *string `json:"version"`
}

// ToolsResponse is the body of GET /api/check-ytdlp. The top-level fields
// describe yt-dlp.
type ToolsResponse struct {
	Installed bool                     `json:"installed"`
	Version   *string                  `json:"version"`
	Platforms map[domain.Platform]bool `json:"platforms"`
	FFmpeg    ToolStatus               `json:"ffmpeg"`
}

// Health handles GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Message: "Server is running",
		Version: h.version,
	})
}

// CheckTools handles GET /api/check-ytdlp. It probes on every call.
func (h *HealthHandler) CheckTools(c *gin.Context) {
	a := h.prober.Probe(c.Request.Context())
	c.JSON(http.StatusOK, ToolsResponse{
		Installed: a.ExtractorInstalled,
		Version:   a.ExtractorVersion,
		Platforms: a.Platforms,
		FFmpeg: ToolStatus{
			Installed: a.ConverterInstalled,
			Version:   a.ConverterVersion,
		},
	})
}
