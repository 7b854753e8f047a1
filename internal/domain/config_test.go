package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.NotNil(t, config)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 3000, config.Server.Port)
	assert.Equal(t, 60*time.Second, config.Download.CleanupDelay)
	assert.Equal(t, 10*time.Minute, config.Download.ToolTimeout)
	assert.Equal(t, "yt-dlp", config.Tools.YTDLPBinary)
	assert.Equal(t, "ffmpeg", config.Tools.FFmpegBinary)
	assert.True(t, config.History.Enabled)
	assert.False(t, config.Notification.Enabled)
	assert.Equal(t, 5, config.RateLimit.Burst)
	assert.Equal(t, []string{"*"}, config.CORS.AllowOrigins)
	assert.Equal(t, "info", config.Logging.Level)
}
