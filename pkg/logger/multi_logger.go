package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogCategory represents different log categories
type LogCategory string

const (
	CategoryAccess   LogCategory = "access"   // HTTP access log (JSON)
	CategoryDownload LogCategory = "download" // Download lifecycle events (JSON)
	CategoryError    LogCategory = "error"    // Application errors (JSON)
	CategoryTools    LogCategory = "tools"    // Raw yt-dlp output (plain text)
)

// Categories lists every category a LogReader can serve
func Categories() []LogCategory {
	return []LogCategory{CategoryAccess, CategoryDownload, CategoryError, CategoryTools}
}

// ValidCategory reports whether c is a known category
func ValidCategory(c LogCategory) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// LogPath returns the dated file path of a category, e.g. logs/access-20240131.log
func LogPath(logsDir string, category LogCategory, date time.Time) string {
	return filepath.Join(logsDir, fmt.Sprintf("%s-%s.log", category, date.Format("20060102")))
}

// MultiLogger writes structured events to one dated JSON file per category.
// Raw tool output is written by the extractor itself, not through this logger.
type MultiLogger struct {
	loggers map[LogCategory]*zap.Logger
	files   []*dailyFile
	config  MultiLoggerConfig
	mu      sync.RWMutex
}

// MultiLoggerConfig contains configuration for multi-output logging
type MultiLoggerConfig struct {
	Level   string // debug, info, warn, error
	LogsDir string // Directory for log files
}

// NewMultiLogger creates a new multi-output logger
func NewMultiLogger(config MultiLoggerConfig) (*MultiLogger, error) {
	if config.LogsDir == "" {
		return nil, fmt.Errorf("logs_dir must be specified")
	}
	if err := os.MkdirAll(config.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	ml := &MultiLogger{
		loggers: make(map[LogCategory]*zap.Logger),
		config:  config,
	}
	ml.loggers[CategoryAccess] = ml.structuredLogger(CategoryAccess, level)
	ml.loggers[CategoryDownload] = ml.structuredLogger(CategoryDownload, level)
	ml.loggers[CategoryError] = ml.structuredLogger(CategoryError, zapcore.ErrorLevel)

	return ml, nil
}

func jsonEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.CallerKey = ""
	return zapcore.NewJSONEncoder(encoderConfig)
}

func (ml *MultiLogger) structuredLogger(category LogCategory, level zapcore.Level) *zap.Logger {
	file := &dailyFile{dir: ml.config.LogsDir, category: category, now: time.Now}
	ml.files = append(ml.files, file)
	return zap.New(zapcore.NewCore(jsonEncoder(), file, level))
}

// GetLogsDir returns the logs directory path
func (ml *MultiLogger) GetLogsDir() string {
	return ml.config.LogsDir
}

// GetLogger returns the structured logger for a category, falling back to
// the error logger
func (ml *MultiLogger) GetLogger(category LogCategory) *zap.Logger {
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	if logger, ok := ml.loggers[category]; ok {
		return logger
	}
	return ml.loggers[CategoryError]
}

// Access returns the HTTP access logger
func (ml *MultiLogger) Access() *zap.Logger {
	return ml.GetLogger(CategoryAccess)
}

// Download returns the download event logger
func (ml *MultiLogger) Download() *zap.Logger {
	return ml.GetLogger(CategoryDownload)
}

// Error returns the error logger
func (ml *MultiLogger) Error() *zap.Logger {
	return ml.GetLogger(CategoryError)
}

// LogAppError logs an application-level error (Go errors, panics)
func (ml *MultiLogger) LogAppError(msg string, fields ...zap.Field) {
	ml.Error().Error(msg, fields...)
}

// LogDownloadEvent logs a download lifecycle event
func (ml *MultiLogger) LogDownloadEvent(event string, fields ...zap.Field) {
	ml.Download().Info(event, fields...)
}

// Attach returns a copy of base that also writes its error-level entries to
// the error category file
func (ml *MultiLogger) Attach(base *zap.Logger) *zap.Logger {
	errorCore := ml.Error().Core()
	return base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, errorCore)
	}))
}

// Sync flushes all loggers
func (ml *MultiLogger) Sync() error {
	ml.mu.RLock()
	defer ml.mu.RUnlock()

	var lastErr error
	for _, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close flushes all loggers and closes their files
func (ml *MultiLogger) Close() error {
	lastErr := ml.Sync()

	ml.mu.Lock()
	defer ml.mu.Unlock()
	for _, f := range ml.files {
		if err := f.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// dailyFile is a WriteSyncer that switches to a new dated file at midnight
type dailyFile struct {
	mu       sync.Mutex
	dir      string
	category LogCategory
	now      func() time.Time
	date     string
	file     *os.File
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	date := now.Format("20060102")
	if d.file == nil || date != d.date {
		if d.file != nil {
			d.file.Close()
		}
		file, err := os.OpenFile(LogPath(d.dir, d.category, now), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			d.file = nil
			return 0, err
		}
		d.file, d.date = file, date
	}
	return d.file.Write(p)
}

func (d *dailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	return d.file.Sync()
}

func (d *dailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}
