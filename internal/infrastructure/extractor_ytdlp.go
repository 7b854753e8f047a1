package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/vidgrab-go/internal/domain"
	"github.com/yourusername/vidgrab-go/pkg/logger"
	"go.uber.org/zap"
)

// YTDLPExtractor implements domain.Extractor by running yt-dlp
type YTDLPExtractor struct {
	binary         string
	cookieFile     string
	ffmpegLocation string
	logsDir        string
	logger         *zap.Logger

	logMu sync.Mutex // one invocation block at a time in the tool log
}

// NewYTDLPExtractor creates a yt-dlp extractor
func NewYTDLPExtractor(config *domain.ToolsConfig, logsDir string, logger *zap.Logger) *YTDLPExtractor {
	e := &YTDLPExtractor{
		binary:     config.YTDLPBinary,
		cookieFile: config.CookieFile,
		logsDir:    logsDir,
		logger:     logger,
	}
	// A bare "ffmpeg" is found on PATH by yt-dlp itself
	if strings.ContainsRune(config.FFmpegBinary, os.PathSeparator) {
		e.ffmpegLocation = config.FFmpegBinary
	}
	return e
}

// Version runs `yt-dlp --version` and returns the first line of its output
func (e *YTDLPExtractor) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, e.binary, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("yt-dlp not available: %w", err)
	}
	return firstLine(string(out)), nil
}

// DumpJSON returns yt-dlp's JSON description of a single video
func (e *YTDLPExtractor) DumpJSON(ctx context.Context, url string) ([]byte, error) {
	args := e.baseArgs("--dump-json")
	args = append(args, "--", url)

	var stdout bytes.Buffer
	if err := e.run(ctx, "info", args, &stdout); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Download fetches the media for the job into its output template
func (e *YTDLPExtractor) Download(ctx context.Context, job domain.ExtractJob) error {
	args := e.baseArgs(DownloadArgs(job)...)
	if e.ffmpegLocation != "" {
		args = append(args, "--ffmpeg-location", e.ffmpegLocation)
	}
	args = append(args, "--", job.URL)
	return e.run(ctx, "download", args, nil)
}

// DownloadArgs returns the format-selection and output arguments for a job
func DownloadArgs(job domain.ExtractJob) []string {
	var args []string
	switch job.Format {
	case domain.FormatMP3:
		args = append(args, "-x", "--audio-format", "mp3")
	default:
		selector := "best[ext=mp4]"
		if job.Quality == domain.QualityLow {
			selector = "worst[ext=mp4]"
		}
		args = append(args, "-f", selector)
	}
	return append(args, "-o", job.Template)
}

func (e *YTDLPExtractor) baseArgs(extra ...string) []string {
	args := []string{"--no-playlist", "--no-warnings"}
	if e.cookieFile != "" && fileExists(e.cookieFile) {
		args = append(args, "--cookies", e.cookieFile)
	}
	return append(args, extra...)
}

// run executes yt-dlp. stdout goes to the given writer (or the tool log when
// nil); stderr always goes to the tool log and is kept for the error message.
func (e *YTDLPExtractor) run(ctx context.Context, action string, args []string, stdout io.Writer) error {
	var output, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, e.binary, args...)
	if stdout != nil {
		cmd.Stdout = stdout
	} else {
		cmd.Stdout = &output
	}
	cmd.Stderr = io.MultiWriter(&output, &stderr)

	cmdLine := FormatCommand(e.binary, args...)
	e.logger.Debug("Running yt-dlp", zap.String("action", action), zap.String("command", cmdLine))

	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("yt-dlp %s timed out: %w", action, ctx.Err())
	} else if err != nil {
		if msg := toolMessage(stderr.String()); msg != "" {
			err = fmt.Errorf("%s: %w", msg, err)
		}
	}

	e.writeToolLog(action, cmdLine, output.Bytes(), err)
	return err
}

// writeToolLog appends one invocation block to today's tool log
func (e *YTDLPExtractor) writeToolLog(action, cmdLine string, output []byte, runErr error) {
	if e.logsDir == "" {
		return
	}

	e.logMu.Lock()
	defer e.logMu.Unlock()

	file, err := e.openLogFile()
	if err != nil {
		e.logger.Warn("Failed to open tool log", zap.Error(err))
		return
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	now := time.Now()
	fmt.Fprintf(w, "\n=== [%s] yt-dlp %s ===\n", now.Format("2006-01-02 15:04:05"), action)
	fmt.Fprintf(w, "$ %s\n", cmdLine)
	w.Write(output)
	if len(output) > 0 && output[len(output)-1] != '\n' {
		w.WriteByte('\n')
	}
	if runErr != nil {
		fmt.Fprintf(w, "[%s] FAILED: %v\n", now.Format("2006-01-02 15:04:05"), runErr)
	} else {
		fmt.Fprintf(w, "[%s] SUCCESS\n", now.Format("2006-01-02 15:04:05"))
	}
	w.WriteString("=== END ===\n")
	if err := w.Flush(); err != nil {
		e.logger.Warn("Failed to write tool log", zap.Error(err))
	}
}

func (e *YTDLPExtractor) openLogFile() (*os.File, error) {
	if err := os.MkdirAll(e.logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	path := logger.LogPath(e.logsDir, logger.CategoryTools, time.Now())
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// toolMessage picks the most useful line from a tool's stderr: the last
// ERROR line when present, else the last non-empty line.
func toolMessage(stderr string) string {
	var last, lastError string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		last = line
		if strings.HasPrefix(line, "ERROR:") {
			lastError = line
		}
	}
	if lastError != "" {
		return lastError
	}
	return last
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
