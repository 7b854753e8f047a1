//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/vidgrab-go/api"
	"github.com/yourusername/vidgrab-go/internal/app"
	"github.com/yourusername/vidgrab-go/internal/domain"
	"github.com/yourusername/vidgrab-go/internal/infrastructure"
	"github.com/yourusername/vidgrab-go/pkg/logger"
)

// fakeYTDLP stands in for yt-dlp: it answers --version and --dump-json and
// writes a small file to the -o template
const fakeYTDLP = `#!/bin/sh
if [ "$1" = "--version" ]; then echo "2024.03.10"; exit 0; fi
out=""; ext="mp4"; dump=0; prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  case "$a" in --dump-json) dump=1;; -x) ext="mp3";; esac
  prev="$a"
done
if [ $dump -eq 1 ]; then echo '{"title":"Clip","duration":12.5,"thumbnails":[{"url":"https://t/1.jpg"}]}'; exit 0; fi
printf 'media' > "$(printf '%s' "$out" | sed "s/%(ext)s/$ext/")"
`

type testEnv struct {
	server  *httptest.Server
	clock   *clock.Mock
	stager  *app.Stager
	config  *domain.Config
	history domain.HistoryRepository
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake yt-dlp requires a POSIX shell")
	}
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	binary := filepath.Join(root, "yt-dlp")
	require.NoError(t, os.WriteFile(binary, []byte(fakeYTDLP), 0755))

	config := domain.DefaultConfig()
	config.Download.DownloadsDir = filepath.Join(root, "downloads")
	config.Download.TempDir = filepath.Join(root, "temp")
	config.Download.LogsDir = filepath.Join(root, "logs")
	config.Tools.YTDLPBinary = binary
	config.Tools.FFmpegBinary = filepath.Join(root, "missing", "ffmpeg")
	config.RateLimit.Enabled = false

	log := zap.NewNop()
	events, err := logger.NewMultiLogger(logger.MultiLoggerConfig{Level: "info", LogsDir: config.Download.LogsDir})
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	repo, err := infrastructure.NewSQLiteHistoryRepository(filepath.Join(root, "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	mock := clock.NewMock()
	stager := app.NewStager(&config.Download, mock, log)
	require.NoError(t, stager.Init())

	youtube := infrastructure.NewYouTubeClient(&config.YouTube)
	extractor := infrastructure.NewYTDLPExtractor(&config.Tools, config.Download.LogsDir, log)
	transcoder := infrastructure.NewFFmpegTranscoder(&config.Tools, log)

	router := api.SetupRouter(api.RouterDeps{
		Resolver: app.NewResolver(youtube, extractor, config.Download.ToolTimeout, log),
		Downloader: app.NewOrchestrator(app.OrchestratorDeps{
			YouTube:    youtube,
			Extractor:  extractor,
			Transcoder: transcoder,
			Stager:     stager,
			History:    repo,
			Events:     events,
			Clock:      mock,
		}, &config.Download, log),
		Prober:  app.NewProber(extractor, transcoder, 5*time.Second, log),
		History: repo,
		Events:  events,
		Config:  config,
		Logger:  log,
		Version: "integration",
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testEnv{server: server, clock: mock, stager: stager, config: config, history: repo}
}

func (e *testEnv) post(t *testing.T, path string, payload interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(e.server.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path string, out interface{}) {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestAPI_Info(t *testing.T) {
	env := setupTestServer(t)

	resp := env.post(t, "/api/info", map[string]string{"url": "https://www.instagram.com/reel/abc/"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "Clip", info["title"])
	assert.Equal(t, float64(13), info["duration"])
	assert.Equal(t, "https://t/1.jpg", info["thumbnail"])
	assert.Equal(t, "instagram", info["platform"])
}

func TestAPI_DownloadServesThenCleansUp(t *testing.T) {
	env := setupTestServer(t)

	resp := env.post(t, "/api/download", map[string]string{
		"url":    "https://www.tiktok.com/@user/video/123",
		"format": "mp4",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="download.mp4"`)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "media", string(body))

	staged, err := filepath.Glob(filepath.Join(env.config.Download.DownloadsDir, "download_*.mp4"))
	require.NoError(t, err)
	assert.Len(t, staged, 1)

	// Release runs after the body is written, so wait for the timer to be armed
	require.Eventually(t, func() bool { return env.stager.Pending() == 1 }, 2*time.Second, 10*time.Millisecond)
	env.clock.Add(env.config.Download.CleanupDelay)
	assert.Eventually(t, func() bool {
		left, _ := filepath.Glob(filepath.Join(env.config.Download.DownloadsDir, "*"))
		return len(left) == 0
	}, 2*time.Second, 20*time.Millisecond)

	var history struct {
		Records []domain.DownloadRecord `json:"records"`
	}
	env.get(t, "/api/history", &history)
	require.Len(t, history.Records, 1)
	assert.Equal(t, domain.StatusCompleted, history.Records[0].Status)
	assert.Equal(t, domain.PlatformTikTok, history.Records[0].Platform)
	assert.Equal(t, int64(5), history.Records[0].SizeBytes)

	toolLog := logger.LogPath(env.config.Download.LogsDir, logger.CategoryTools, time.Now())
	data, err := os.ReadFile(toolLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SUCCESS")
}

func TestAPI_YouTubeMP3WithoutFFmpeg(t *testing.T) {
	env := setupTestServer(t)

	resp := env.post(t, "/api/download", map[string]string{
		"url":    "https://youtu.be/dQw4w9WgXcQ",
		"format": "mp3",
	})

	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "ffmpeg")

	var stats domain.DownloadStats
	env.get(t, "/api/history/stats", &stats)
	assert.Equal(t, int64(1), stats.Failed)
}

func TestAPI_ValidationAndTools(t *testing.T) {
	env := setupTestServer(t)

	resp := env.post(t, "/api/download", map[string]string{"url": "https://youtu.be/x", "format": "avi"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.post(t, "/api/download", map[string]string{"url": "https://vimeo.com/1", "format": "mp4"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var tools struct {
		Installed bool            `json:"installed"`
		Version   *string         `json:"version"`
		Platforms map[string]bool `json:"platforms"`
		FFmpeg    struct {
			Installed bool `json:"installed"`
		} `json:"ffmpeg"`
	}
	env.get(t, "/api/check-ytdlp", &tools)
	assert.True(t, tools.Installed)
	require.NotNil(t, tools.Version)
	assert.Equal(t, "2024.03.10", *tools.Version)
	assert.True(t, tools.Platforms["facebook"])
	assert.False(t, tools.FFmpeg.Installed)

	var stats domain.DownloadStats
	env.get(t, "/api/history/stats", &stats)
	assert.Equal(t, int64(0), stats.Total)
}
