package infrastructure

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/floostack/transcoder/ffmpeg"
	"github.com/yourusername/vidgrab-go/internal/domain"
	"go.uber.org/zap"
)

// FFmpegTranscoder implements domain.Transcoder with ffmpeg
type FFmpegTranscoder struct {
	ffmpegBinary  string
	ffprobeBinary string
	logger        *zap.Logger
}

// NewFFmpegTranscoder creates an ffmpeg-backed transcoder
func NewFFmpegTranscoder(config *domain.ToolsConfig, logger *zap.Logger) *FFmpegTranscoder {
	return &FFmpegTranscoder{
		ffmpegBinary:  config.FFmpegBinary,
		ffprobeBinary: config.FFprobeBinary,
		logger:        logger,
	}
}

// Version runs `ffmpeg -version` and returns the first line of its output.
// ffprobe must answer `-version` as well, since every conversion reads the
// input's metadata through it first.
func (t *FFmpegTranscoder) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, t.ffmpegBinary, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("ffmpeg not available: %w", err)
	}
	if err := exec.CommandContext(ctx, t.ffprobeBinary, "-version").Run(); err != nil {
		return "", fmt.Errorf("ffprobe not available: %w", err)
	}
	return firstLine(string(out)), nil
}

// ConvertToMP3 transcodes the input's audio track into an MP3 file
func (t *FFmpegTranscoder) ConvertToMP3(ctx context.Context, input, output string) error {
	outputFormat := "mp3"
	audioCodec := "libmp3lame"
	overwrite := true
	skipVideo := true

	opts := &ffmpeg.Options{
		OutputFormat: &outputFormat,
		AudioCodec:   &audioCodec,
		SkipVideo:    &skipVideo,
		Overwrite:    &overwrite,
	}
	cfg := &ffmpeg.Config{
		ProgressEnabled: true,
		FfmpegBinPath:   t.ffmpegBinary,
		FfprobeBinPath:  t.ffprobeBinary,
	}

	tr := ffmpeg.
		New(cfg).
		Input(input).
		Output(output).
		WithContext(&ctx)

	progress, err := tr.Start(opts)
	if err != nil {
		return fmt.Errorf("ffmpeg failed to start: %w", err)
	}

	var last float64
	for p := range progress {
		last = p.GetProgress()
	}
	t.logger.Debug("ffmpeg finished", zap.String("output", output), zap.Float64("progress", last))

	if ctx.Err() != nil {
		os.Remove(output)
		return fmt.Errorf("ffmpeg interrupted: %w", ctx.Err())
	}

	// The progress channel closes only after the process has been waited on.
	cmd := tr.GetRunningCmdInstance()
	if cmd == nil || cmd.ProcessState == nil {
		os.Remove(output)
		return fmt.Errorf("ffmpeg exit status unknown")
	}
	if !cmd.ProcessState.Success() {
		os.Remove(output)
		return fmt.Errorf("ffmpeg exited with %s", cmd.ProcessState)
	}

	info, err := os.Stat(output)
	if err != nil {
		return fmt.Errorf("ffmpeg produced no output: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("ffmpeg produced an empty file")
	}
	return nil
}
