package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/yourusername/vidgrab-go/internal/domain"
)

// EnvPrefix is the prefix of environment overrides, e.g. VIDGRAB_SERVER_PORT
const EnvPrefix = "VIDGRAB"

// LoadConfig loads configuration from defaults, an optional YAML file and
// the environment, in increasing order of precedence
func LoadConfig(configPath string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, config)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.vidgrab")
		v.AddConfigPath("/etc/vidgrab")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// PORT is the conventional variable on hosting platforms
	if _, ok := os.LookupEnv(EnvPrefix + "_SERVER_PORT"); !ok {
		if port := os.Getenv("PORT"); port != "" {
			p, err := strconv.Atoi(port)
			if err != nil {
				return nil, fmt.Errorf("invalid PORT: %q", port)
			}
			config.Server.Port = p
		}
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every key so environment overrides apply even
// without a config file
func setDefaults(v *viper.Viper, c *domain.Config) {
	for key, value := range configValues(c) {
		v.SetDefault(key, value)
	}
}

// configValues flattens the configuration into viper keys
func configValues(c *domain.Config) map[string]interface{} {
	return map[string]interface{}{
		"server.host": c.Server.Host,
		"server.port": c.Server.Port,

		"download.downloads_dir":  c.Download.DownloadsDir,
		"download.temp_dir":       c.Download.TempDir,
		"download.logs_dir":       c.Download.LogsDir,
		"download.cleanup_delay":  c.Download.CleanupDelay,
		"download.tool_timeout":   c.Download.ToolTimeout,
		"download.sweep_on_start": c.Download.SweepOnStart,

		"tools.ytdlp_binary":   c.Tools.YTDLPBinary,
		"tools.ffmpeg_binary":  c.Tools.FFmpegBinary,
		"tools.ffprobe_binary": c.Tools.FFprobeBinary,
		"tools.cookie_file":    c.Tools.CookieFile,

		"youtube.http_timeout": c.YouTube.HTTPTimeout,

		"history.enabled":       c.History.Enabled,
		"history.database_path": c.History.DatabasePath,

		"notification.enabled": c.Notification.Enabled,
		"notification.sound":   c.Notification.Sound,
		"notification.method":  c.Notification.Method,

		"logging.level":       c.Logging.Level,
		"logging.format":      c.Logging.Format,
		"logging.output_path": c.Logging.OutputPath,

		"ratelimit.enabled":             c.RateLimit.Enabled,
		"ratelimit.requests_per_second": c.RateLimit.RequestsPerSecond,
		"ratelimit.burst":               c.RateLimit.Burst,

		"cors.allow_origins": c.CORS.AllowOrigins,
	}
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.DownloadsDir = expandPath(config.Download.DownloadsDir)
	config.Download.TempDir = expandPath(config.Download.TempDir)
	config.Download.LogsDir = expandPath(config.Download.LogsDir)
	config.Tools.CookieFile = expandPath(config.Tools.CookieFile)
	config.History.DatabasePath = expandPath(config.History.DatabasePath)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and a leading ~ in a path
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Download.DownloadsDir == "" {
		return fmt.Errorf("downloads directory not configured")
	}

	if config.Download.TempDir == "" {
		return fmt.Errorf("temp directory not configured")
	}

	if filepath.Clean(config.Download.DownloadsDir) == filepath.Clean(config.Download.TempDir) {
		return fmt.Errorf("downloads and temp directories must differ")
	}

	if config.Download.CleanupDelay < 0 {
		return fmt.Errorf("cleanup delay cannot be negative")
	}

	if config.Download.ToolTimeout <= 0 {
		return fmt.Errorf("tool timeout must be positive")
	}

	if config.Tools.YTDLPBinary == "" || config.Tools.FFmpegBinary == "" {
		return fmt.Errorf("tool binaries not configured")
	}

	if config.History.Enabled && config.History.DatabasePath == "" {
		return fmt.Errorf("history database path not configured")
	}

	if config.RateLimit.Enabled && (config.RateLimit.RequestsPerSecond <= 0 || config.RateLimit.Burst < 1) {
		return fmt.Errorf("rate limit needs a positive rate and a burst of at least 1")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range configValues(config) {
		if d, ok := value.(time.Duration); ok {
			value = d.String()
		}
		v.Set(key, value)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
