package infrastructure

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/yourusername/vidgrab-go/internal/domain"
	"go.uber.org/zap"
)

// NotificationService sends desktop notifications about finished downloads
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    func(name string, args ...string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		config: config,
		logger: logger,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Send sends a notification using the configured method
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var name string
	var args []string
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification %s with title %s`, appleScriptString(message), appleScriptString(title))
		if n.config.Sound {
			script += ` sound name "Glass"`
		}
		name, args = "osascript", []string{"-e", script}
	case "notify-send":
		name, args = "notify-send", []string{"--", title, message}
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if err := n.run(name, args...); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

// NotifyDownloadComplete sends a notification when a download is ready
func (n *NotificationService) NotifyDownloadComplete(record *domain.DownloadRecord) {
	message := fmt.Sprintf("%s ready: %s (%s)", strings.ToUpper(string(record.Format)), truncateString(record.URL, 40), record.Platform)
	n.Send("Download Completed", message)
}

// NotifyDownloadFailed sends a notification when a download fails
func (n *NotificationService) NotifyDownloadFailed(record *domain.DownloadRecord) {
	message := fmt.Sprintf("Failed: %s (%s)", truncateString(record.URL, 40), record.Platform)
	n.Send("Download Failed", message)
}

// appleScriptString quotes s as an AppleScript string literal
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
