package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Download     DownloadConfig     `mapstructure:"download"`
	Tools        ToolsConfig        `mapstructure:"tools"`
	YouTube      YouTubeConfig      `mapstructure:"youtube"`
	History      HistoryConfig      `mapstructure:"history"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
	CORS         CORSConfig         `mapstructure:"cors"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains staging and cleanup configuration
type DownloadConfig struct {
	DownloadsDir string        `mapstructure:"downloads_dir"`
	TempDir      string        `mapstructure:"temp_dir"`
	LogsDir      string        `mapstructure:"logs_dir"`
	CleanupDelay time.Duration `mapstructure:"cleanup_delay"`
	ToolTimeout  time.Duration `mapstructure:"tool_timeout"`
	SweepOnStart bool          `mapstructure:"sweep_on_start"`
}

// ToolsConfig locates the external tools
type ToolsConfig struct {
	YTDLPBinary   string `mapstructure:"ytdlp_binary"`
	FFmpegBinary  string `mapstructure:"ffmpeg_binary"`
	FFprobeBinary string `mapstructure:"ffprobe_binary"`
	CookieFile    string `mapstructure:"cookie_file"`
}

// YouTubeConfig contains YouTube client configuration
type YouTubeConfig struct {
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

// HistoryConfig contains download history configuration
type HistoryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DatabasePath string `mapstructure:"database_path"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Sound   bool   `mapstructure:"sound"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// RateLimitConfig bounds how often downloads may be started
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// CORSConfig contains cross-origin configuration
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 3000,
		},
		Download: DownloadConfig{
			DownloadsDir: "./downloads",
			TempDir:      "./temp",
			LogsDir:      "./logs",
			CleanupDelay: 60 * time.Second,
			ToolTimeout:  10 * time.Minute,
			SweepOnStart: true,
		},
		Tools: ToolsConfig{
			YTDLPBinary:   "yt-dlp",
			FFmpegBinary:  "ffmpeg",
			FFprobeBinary: "ffprobe",
			CookieFile:    "",
		},
		YouTube: YouTubeConfig{
			HTTPTimeout: 30 * time.Second,
		},
		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: "./data/history.db",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Sound:   false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 1,
			Burst:             5,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
	}
}
