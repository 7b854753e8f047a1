package app

import (
	"context"
	"strconv"
	"time"

	"github.com/yourusername/vidgrab-go/internal/domain"
	"go.uber.org/zap"
)

// Resolver turns a URL into video metadata, using the YouTube client for
// YouTube and the extractor for every other platform
type Resolver struct {
	youtube   domain.YouTubeClient
	extractor domain.Extractor
	timeout   time.Duration
	logger    *zap.Logger
}

// NewResolver creates a metadata resolver
func NewResolver(youtube domain.YouTubeClient, extractor domain.Extractor, timeout time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{
		youtube:   youtube,
		extractor: extractor,
		timeout:   timeout,
		logger:    logger,
	}
}

// Resolve returns metadata for url. When the extractor is missing for a
// non-YouTube platform the result is degraded rather than an error.
func (r *Resolver) Resolve(ctx context.Context, url string, platform domain.Platform) (*domain.VideoMetadata, error) {
	if url == "" {
		return nil, domain.NewValidationError("url is required")
	}
	if platform == domain.PlatformUnknown {
		return nil, domain.NewUnsupportedPlatformError(url)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if platform == domain.PlatformYouTube {
		return r.resolveYouTube(ctx, url)
	}
	return r.resolveWithExtractor(ctx, url, platform)
}

func (r *Resolver) resolveYouTube(ctx context.Context, url string) (*domain.VideoMetadata, error) {
	details, err := r.youtube.Video(ctx, url)
	if err != nil {
		return nil, domain.NewResolutionError("failed to fetch video info", err)
	}

	meta := &domain.VideoMetadata{
		Title:           details.Title,
		DurationSeconds: youtubeDurationSeconds(details),
		Formats:         details.Formats,
	}
	if meta.Formats == nil {
		meta.Formats = []domain.FormatDescriptor{}
	}
	if len(details.Thumbnails) > 0 {
		meta.Thumbnail = details.Thumbnails[0]
	}
	return meta, nil
}

func (r *Resolver) resolveWithExtractor(ctx context.Context, url string, platform domain.Platform) (*domain.VideoMetadata, error) {
	if _, err := r.extractor.Version(ctx); err != nil {
		r.logger.Warn("yt-dlp unavailable, returning degraded metadata",
			zap.String("platform", string(platform)),
			zap.Error(err))
		return domain.DegradedMetadata(), nil
	}

	data, err := r.extractor.DumpJSON(ctx, url)
	if err != nil {
		return nil, domain.NewResolutionError("failed to fetch video info", err)
	}

	meta, err := parseYTDLPInfo(data)
	if err != nil {
		return nil, domain.NewResolutionError("failed to fetch video info", err)
	}
	return meta, nil
}

// youtubeDurationSeconds normalises the client's duration. The parsed
// value wins; the raw millisecond string is the fallback.
func youtubeDurationSeconds(details *domain.VideoDetails) int {
	if details.Duration > 0 {
		return int(details.Duration.Round(time.Second) / time.Second)
	}
	if ms, err := strconv.ParseInt(details.ApproxDurationMs, 10, 64); err == nil && ms > 0 {
		return int((ms + 500) / 1000)
	}
	return 0
}
