package app

import (
	"context"
	"time"

	"github.com/yourusername/vidgrab-go/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Prober reports which external tools are installed. Nothing is cached;
// every call runs the tools again.
type Prober struct {
	extractor  domain.Extractor
	transcoder domain.Transcoder
	timeout    time.Duration
	logger     *zap.Logger
}

// NewProber creates an availability prober
func NewProber(extractor domain.Extractor, transcoder domain.Transcoder, timeout time.Duration, logger *zap.Logger) *Prober {
	return &Prober{
		extractor:  extractor,
		transcoder: transcoder,
		timeout:    timeout,
		logger:     logger,
	}
}

// Probe runs both version checks concurrently. It never fails: a tool that
// cannot be run is reported as not installed.
func (p *Prober) Probe(ctx context.Context) *domain.ToolAvailability {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var extractorVersion, converterVersion *string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		extractorVersion = p.version("yt-dlp", func() (string, error) { return p.extractor.Version(gctx) })
		return nil
	})
	g.Go(func() error {
		converterVersion = p.version("ffmpeg", func() (string, error) { return p.transcoder.Version(gctx) })
		return nil
	})
	g.Wait()

	return domain.NewToolAvailability(extractorVersion, converterVersion)
}

func (p *Prober) version(tool string, run func() (string, error)) *string {
	v, err := run()
	if err != nil {
		p.logger.Debug("Tool not available", zap.String("tool", tool), zap.Error(err))
		return nil
	}
	return &v
}
