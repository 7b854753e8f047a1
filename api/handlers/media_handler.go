package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/vidgrab-go/api/middleware"
	"github.com/yourusername/vidgrab-go/internal/domain"
	"go.uber.org/zap"
)

// MetadataResolver fetches metadata for a URL of a known platform
type MetadataResolver interface {
	Resolve(ctx context.Context, url string, platform domain.Platform) (*domain.VideoMetadata, error)
}

// Downloader produces a staged file for a request and disposes of it once served
type Downloader interface {
	Download(ctx context.Context, req domain.DownloadRequest) (*domain.StagedFile, error)
	Release(file *domain.StagedFile)
}

// MediaHandler serves the info and download endpoints
type MediaHandler struct {
	resolver   MetadataResolver
	downloader Downloader
	logger     *zap.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(resolver MetadataResolver, downloader Downloader, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{
		resolver:   resolver,
		downloader: downloader,
		logger:     logger,
	}
}

// InfoRequest is the body of POST /api/info
type InfoRequest struct {
	URL string `json:"url"`
}

// InfoResponse is the metadata returned by POST /api/info
type InfoResponse struct {
	Title     string                    `json:"title"`
	Duration  int                       `json:"duration"`
	Thumbnail string                    `json:"thumbnail"`
	Platform  domain.Platform           `json:"platform"`
	Formats   []domain.FormatDescriptor `json:"formats"`
	Note      string                    `json:"note,omitempty"`
}

// GetInfo handles POST /api/info
func (h *MediaHandler) GetInfo(c *gin.Context) {
	var req InfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, domain.NewValidationError("invalid request body"))
		return
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		middleware.AbortWithError(c, domain.NewValidationError("url is required"))
		return
	}

	platform := domain.DetectPlatform(url)
	meta, err := h.resolver.Resolve(c.Request.Context(), url, platform)
	if err != nil {
		h.logger.Warn("Failed to resolve metadata",
			zap.String("url", url),
			zap.String("platform", string(platform)),
			zap.Error(err))
		middleware.AbortWithError(c, err)
		return
	}

	formats := meta.Formats
	if formats == nil {
		formats = []domain.FormatDescriptor{}
	}
	c.JSON(http.StatusOK, InfoResponse{
		Title:     meta.Title,
		Duration:  meta.DurationSeconds,
		Thumbnail: meta.Thumbnail,
		Platform:  platform,
		Formats:   formats,
		Note:      meta.Note,
	})
}

// Download handles POST /api/download. The staged file is streamed as an
// attachment and handed back for delayed removal once the response is written.
func (h *MediaHandler) Download(c *gin.Context) {
	var req domain.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, domain.NewValidationError("invalid request body"))
		return
	}

	file, err := h.downloader.Download(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("Download failed",
			zap.String("url", req.URL),
			zap.String("format", string(req.Format)),
			zap.Error(err))
		middleware.AbortWithError(c, err)
		return
	}
	defer h.downloader.Release(file)

	c.FileAttachment(file.Path, file.AttachmentName())
}
