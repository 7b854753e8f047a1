package app

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/mock"
	"github.com/yourusername/vidgrab-go/internal/domain"
)

// fakeYouTube implements domain.YouTubeClient
type fakeYouTube struct {
	details    *domain.VideoDetails
	videoErr   error
	content    string
	ext        string
	streamErr  error
	readErr    error
	selections []domain.StreamSelection
	calls      int32
	mu         sync.Mutex
}

func (f *fakeYouTube) Video(ctx context.Context, url string) (*domain.VideoDetails, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	return f.details, nil
}

func (f *fakeYouTube) Stream(ctx context.Context, url string, selection domain.StreamSelection) (io.ReadCloser, string, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.selections = append(f.selections, selection)
	f.mu.Unlock()
	if f.streamErr != nil {
		return nil, "", f.streamErr
	}
	ext := f.ext
	if ext == "" {
		ext = "webm"
	}
	if f.readErr != nil {
		return io.NopCloser(io.MultiReader(strings.NewReader(f.content), &failingReader{err: f.readErr})), ext, nil
	}
	return io.NopCloser(strings.NewReader(f.content)), ext, nil
}

// failingReader fails every read with err
type failingReader struct {
	err error
}

func (r *failingReader) Read(p []byte) (int, error) {
	return 0, r.err
}

// fakeExtractor implements domain.Extractor
type fakeExtractor struct {
	missing  bool
	dump     []byte
	dumpErr  error
	download func(job domain.ExtractJob) error
	jobs     []domain.ExtractJob
	calls    int32
}

func (f *fakeExtractor) Version(ctx context.Context) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.missing {
		return "", errors.New("exec: \"yt-dlp\": executable file not found in $PATH")
	}
	return "2024.03.10", nil
}

func (f *fakeExtractor) DumpJSON(ctx context.Context, url string) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.dump, f.dumpErr
}

func (f *fakeExtractor) Download(ctx context.Context, job domain.ExtractJob) error {
	atomic.AddInt32(&f.calls, 1)
	f.jobs = append(f.jobs, job)
	if f.download != nil {
		return f.download(job)
	}
	ext := string(job.Format)
	return os.WriteFile(strings.Replace(job.Template, "%(ext)s", ext, 1), []byte("media"), 0644)
}

// fakeTranscoder implements domain.Transcoder
type fakeTranscoder struct {
	missing    bool
	convertErr error
	inputs     []string
	calls      int32
}

func (f *fakeTranscoder) Version(ctx context.Context) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.missing {
		return "", errors.New("ffmpeg not available")
	}
	return "ffmpeg version 6.1.1", nil
}

func (f *fakeTranscoder) ConvertToMP3(ctx context.Context, input, output string) error {
	atomic.AddInt32(&f.calls, 1)
	f.inputs = append(f.inputs, input)
	if f.convertErr != nil {
		// leave a partial file behind like a crashed ffmpeg would
		os.WriteFile(output, []byte("partial"), 0644)
		return f.convertErr
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	return os.WriteFile(output, append([]byte("mp3:"), data...), 0644)
}

// mockHistory implements domain.HistoryRepository with testify/mock
type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) Create(record *domain.DownloadRecord) error {
	return m.Called(record).Error(0)
}

func (m *mockHistory) Update(record *domain.DownloadRecord) error {
	return m.Called(record).Error(0)
}

func (m *mockHistory) Delete(id string) error {
	return m.Called(id).Error(0)
}

func (m *mockHistory) FindByID(id string) (*domain.DownloadRecord, error) {
	args := m.Called(id)
	record, _ := args.Get(0).(*domain.DownloadRecord)
	return record, args.Error(1)
}

func (m *mockHistory) FindAll(filters map[string]interface{}) ([]*domain.DownloadRecord, error) {
	args := m.Called(filters)
	records, _ := args.Get(0).([]*domain.DownloadRecord)
	return records, args.Error(1)
}

func (m *mockHistory) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockHistory) GetStats() (*domain.DownloadStats, error) {
	args := m.Called()
	stats, _ := args.Get(0).(*domain.DownloadStats)
	return stats, args.Error(1)
}

// recordingNotifier implements domain.Notifier
type recordingNotifier struct {
	completed []string
	failed    []string
}

func (n *recordingNotifier) NotifyDownloadComplete(record *domain.DownloadRecord) {
	n.completed = append(n.completed, record.URL)
}

func (n *recordingNotifier) NotifyDownloadFailed(record *domain.DownloadRecord) {
	n.failed = append(n.failed, record.URL)
}
