package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/yourusername/vidgrab-go/internal/domain"
	"github.com/yourusername/vidgrab-go/pkg/logger"
	"go.uber.org/zap"
)

// OrchestratorDeps are the collaborators of an Orchestrator. History,
// Notifier and Events are optional.
type OrchestratorDeps struct {
	YouTube    domain.YouTubeClient
	Extractor  domain.Extractor
	Transcoder domain.Transcoder
	Stager     *Stager
	History    domain.HistoryRepository
	Notifier   domain.Notifier
	Events     *logger.MultiLogger
	Clock      clock.Clock
}

// Orchestrator validates a download request, acquires the media, converts
// it when needed and hands back a staged file
type Orchestrator struct {
	deps    OrchestratorDeps
	timeout time.Duration
	logger  *zap.Logger
}

// NewOrchestrator creates a download orchestrator
func NewOrchestrator(deps OrchestratorDeps, config *domain.DownloadConfig, logger *zap.Logger) *Orchestrator {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	return &Orchestrator{
		deps:    deps,
		timeout: config.ToolTimeout,
		logger:  logger,
	}
}

// Download runs one request to completion. Invalid requests fail before any
// external call. The work is detached from ctx cancellation so a client
// disconnect does not leave half-written files, but it is bounded by the
// tool timeout. On failure every file of the request has been removed.
func (o *Orchestrator) Download(ctx context.Context, req domain.DownloadRequest) (*domain.StagedFile, error) {
	req.Normalize()
	platform, err := req.Validate()
	if err != nil {
		return nil, err
	}

	workCtx := context.WithoutCancel(ctx)
	if o.timeout > 0 {
		var cancel context.CancelFunc
		workCtx, cancel = context.WithTimeout(workCtx, o.timeout)
		defer cancel()
	}

	record := domain.NewDownloadRecord(req, platform, o.deps.Clock.Now())
	o.logger.Info("Processing download",
		zap.String("id", record.ID),
		zap.String("url", req.URL),
		zap.String("platform", string(platform)),
		zap.String("format", string(req.Format)),
		zap.String("quality", string(req.Quality)))
	o.saveRecord(record, true)

	file, err := o.acquire(workCtx, req, platform)
	if err != nil {
		record.MarkFailed(err, o.deps.Clock.Now())
		o.logger.Error("Download failed",
			zap.String("id", record.ID),
			zap.String("url", req.URL),
			zap.Error(err))
		o.finish(record)
		return nil, err
	}

	record.MarkCompleted(file, o.deps.Clock.Now())
	o.logger.Info("Download completed",
		zap.String("id", record.ID),
		zap.String("file", file.Name()),
		zap.Int64("size", file.Size))
	o.finish(record)
	return file, nil
}

// Release schedules removal of a file after it has been served
func (o *Orchestrator) Release(file *domain.StagedFile) {
	o.deps.Stager.Release(file)
}

func (o *Orchestrator) acquire(ctx context.Context, req domain.DownloadRequest, platform domain.Platform) (*domain.StagedFile, error) {
	base := o.deps.Stager.Reserve()

	var err error
	switch {
	case platform == domain.PlatformYouTube && req.Format == domain.FormatMP3:
		err = o.youtubeAudio(ctx, req.URL, base)
	case platform == domain.PlatformYouTube:
		err = o.youtubeVideo(ctx, req, base)
	default:
		err = o.extract(ctx, req, base)
	}

	var file *domain.StagedFile
	if err == nil {
		file, err = o.deps.Stager.Stage(base, req.Format)
	}
	if err != nil {
		o.deps.Stager.Discard(base)
		return nil, err
	}
	return file, nil
}

// youtubeAudio fetches the best audio stream into the temp directory and
// converts it to MP3. The intermediate file never outlives this call.
func (o *Orchestrator) youtubeAudio(ctx context.Context, url, base string) error {
	if _, err := o.deps.Transcoder.Version(ctx); err != nil {
		return domain.NewToolUnavailableError("ffmpeg")
	}

	stream, ext, err := o.deps.YouTube.Stream(ctx, url, domain.SelectHighestAudio)
	if err != nil {
		return domain.NewResolutionError("failed to fetch audio stream", err)
	}
	tempPath := o.deps.Stager.TempPath(base, ext)
	defer os.Remove(tempPath)

	if err := writeStream(stream, tempPath); err != nil {
		return err
	}

	output := o.deps.Stager.OutputPath(base, domain.FormatMP3)
	if err := o.deps.Transcoder.ConvertToMP3(ctx, tempPath, output); err != nil {
		return domain.NewConversionError("conversion to mp3 failed", err)
	}
	return nil
}

// youtubeVideo writes the selected progressive stream straight to the
// downloads directory
func (o *Orchestrator) youtubeVideo(ctx context.Context, req domain.DownloadRequest, base string) error {
	selection := domain.SelectHighestVideo
	if req.Quality == domain.QualityLow {
		selection = domain.SelectLowestVideo
	}

	stream, _, err := o.deps.YouTube.Stream(ctx, req.URL, selection)
	if err != nil {
		return domain.NewResolutionError("failed to fetch video stream", err)
	}
	return writeStream(stream, o.deps.Stager.OutputPath(base, domain.FormatMP4))
}

// extract delegates acquisition and conversion to the extractor
func (o *Orchestrator) extract(ctx context.Context, req domain.DownloadRequest, base string) error {
	if _, err := o.deps.Extractor.Version(ctx); err != nil {
		return domain.NewToolUnavailableError("yt-dlp")
	}

	job := domain.ExtractJob{
		URL:      req.URL,
		Format:   req.Format,
		Quality:  req.Quality,
		Template: o.deps.Stager.Template(base),
	}
	if err := o.deps.Extractor.Download(ctx, job); err != nil {
		return domain.NewResolutionError("yt-dlp download failed", err)
	}
	return nil
}

// writeStream copies a media stream into path and closes the stream
func writeStream(stream io.ReadCloser, path string) error {
	defer stream.Close()

	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return domain.NewIOError("failed to create file", err)
	}

	if _, err := io.Copy(out, stream); err != nil {
		out.Close()
		return domain.NewIOError("stream interrupted", err)
	}
	if err := out.Close(); err != nil {
		return domain.NewIOError("failed to write file", err)
	}
	return nil
}

func (o *Orchestrator) saveRecord(record *domain.DownloadRecord, create bool) {
	if o.deps.History == nil {
		return
	}
	var err error
	if create {
		err = o.deps.History.Create(record)
	} else {
		err = o.deps.History.Update(record)
	}
	if err != nil {
		o.logger.Warn("Failed to save download history", zap.String("id", record.ID), zap.Error(err))
	}
}

// finish persists the final record and emits the lifecycle event
func (o *Orchestrator) finish(record *domain.DownloadRecord) {
	o.saveRecord(record, false)

	fields := []zap.Field{
		zap.String("id", record.ID),
		zap.String("url", record.URL),
		zap.String("platform", string(record.Platform)),
		zap.String("format", string(record.Format)),
		zap.String("quality", string(record.Quality)),
		zap.Int64("duration_ms", record.DurationMs),
	}

	if record.Status == domain.StatusCompleted {
		if o.deps.Events != nil {
			o.deps.Events.LogDownloadEvent("Download completed",
				append(fields, zap.String("file", record.FileName), zap.Int64("size", record.SizeBytes))...)
		}
		if o.deps.Notifier != nil {
			o.deps.Notifier.NotifyDownloadComplete(record)
		}
		return
	}

	if o.deps.Events != nil {
		o.deps.Events.LogDownloadEvent("Download failed",
			append(fields, zap.String("error_kind", string(record.ErrorKind)), zap.String("error", record.ErrorMessage))...)
		if record.ErrorKind != domain.KindToolUnavailable {
			o.deps.Events.LogAppError(fmt.Sprintf("download %s failed", record.ID), zap.String("error", record.ErrorMessage))
		}
	}
	if o.deps.Notifier != nil {
		o.deps.Notifier.NotifyDownloadFailed(record)
	}
}
