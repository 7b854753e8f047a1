package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer answers the endpoints the CLI uses
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","message":"Server is running","version":"9.9.9"}`))
	})
	mux.HandleFunc("/api/info", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if strings.Contains(body["url"], "example.com") {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"unsupported platform for url: ` + body["url"] + `"}`))
			return
		}
		w.Write([]byte(`{"title":"Clip","duration":75,"thumbnail":"","platform":"tiktok","formats":[{"id":"a"}]}`))
	})
	mux.HandleFunc("/api/download", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["format"] != "mp3" {
			w.WriteHeader(http.StatusNotImplemented)
			w.Write([]byte(`{"error":"yt-dlp is not installed"}`))
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="download.mp3"`)
		w.Write([]byte("ID3-audio-bytes"))
	})
	mux.HandleFunc("/api/check-ytdlp", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"installed":false,"version":null,"platforms":{"youtube":true},"ffmpeg":{"installed":true,"version":"ffmpeg version 6.1"}}`))
	})
	mux.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"total":7,"count":1,"records":[{"id":"0123456789","url":"https://youtu.be/a","platform":"youtube","format":"mp3","status":"completed","size_bytes":2048,"started_at":"2024-05-01T12:00:00Z"}]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func run(t *testing.T, server *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--server", server.URL, "--no-auto-start"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInfoCommand(t *testing.T) {
	server := fakeServer(t)

	out, err := run(t, server, "info", "https://www.tiktok.com/@u/video/1")

	require.NoError(t, err)
	assert.Contains(t, out, "Title:     Clip")
	assert.Contains(t, out, "Duration:  1m15s")
	assert.Contains(t, out, "Formats:   1")
}

func TestInfoCommand_ServerError(t *testing.T) {
	server := fakeServer(t)

	_, err := run(t, server, "info", "https://example.com/v")

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Message, "unsupported platform")
}

func TestDownloadCommand(t *testing.T) {
	server := fakeServer(t)
	output := filepath.Join(t.TempDir(), "song.mp3")

	out, err := run(t, server, "download", "https://youtu.be/a", "-f", "mp3", "-o", output)

	require.NoError(t, err)
	assert.Contains(t, out, "Saved "+output)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "ID3-audio-bytes", string(data))
}

func TestDownloadCommand_ErrorLeavesNoFile(t *testing.T) {
	server := fakeServer(t)
	dir := t.TempDir()
	output := filepath.Join(dir, "clip.mp4")

	_, err := run(t, server, "download", "https://www.tiktok.com/@u/video/1", "-f", "mp4", "-o", output)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "501")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHealthToolsHistoryCommands(t *testing.T) {
	server := fakeServer(t)

	out, err := run(t, server, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "ok: Server is running (version 9.9.9)")

	out, err = run(t, server, "tools")
	require.NoError(t, err)
	assert.Contains(t, out, "yt-dlp: not installed")
	assert.Contains(t, out, "ffmpeg: installed (ffmpeg version 6.1)")

	out, err = run(t, server, "history", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "01234...")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "1 of 7 records")
}

func TestServerEnv(t *testing.T) {
	env, err := serverEnv("http://127.0.0.1:4100")
	require.NoError(t, err)
	assert.Contains(t, env, "VIDGRAB_SERVER_HOST=127.0.0.1")
	assert.Contains(t, env, "VIDGRAB_SERVER_PORT=4100")

	env, err = serverEnv("http://localhost")
	require.NoError(t, err)
	for _, kv := range env {
		assert.False(t, strings.HasPrefix(kv, "VIDGRAB_SERVER_PORT="))
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 MiB", formatBytes(1536*1024))
	assert.Equal(t, "unknown", formatDuration(0))
	assert.Equal(t, "3m33s", formatDuration(213))
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w...", truncate("https://www.youtube.com/watch?v=dQw4w9WgXcQ", 40))
}
