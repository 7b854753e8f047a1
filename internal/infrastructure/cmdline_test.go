package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteArg(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain flag", "--no-playlist", "--no-playlist"},
		{"empty", "", "''"},
		{"path with spaces", "/tmp/my downloads/a.mp4", "'/tmp/my downloads/a.mp4'"},
		{"url with query", "https://www.youtube.com/watch?v=abc&t=1", "'https://www.youtube.com/watch?v=abc&t=1'"},
		{"format selector", "best[ext=mp4]", "'best[ext=mp4]'"},
		{"output template", "downloads/download_1_ab.%(ext)s", "'downloads/download_1_ab.%(ext)s'"},
		{"single quote", "it's", `'it'"'"'s'`},
		{"command substitution", "$(rm -rf /)", "'$(rm -rf /)'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, QuoteArg(tt.input))
		})
	}
}

func TestFormatCommand(t *testing.T) {
	line := FormatCommand("yt-dlp", "-f", "best[ext=mp4]", "--", "https://x.com/u/status/1")
	assert.Equal(t, "yt-dlp -f 'best[ext=mp4]' -- https://x.com/u/status/1", line)
}
