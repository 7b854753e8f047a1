package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/yourusername/vidgrab-go/internal/domain"
	"go.uber.org/zap"
)

// stagedPrefix starts every file name the stager hands out
const stagedPrefix = "download_"

// Stager names, tracks and removes the files a request produces. Names are
// unique per request, and removal happens after a grace period measured on
// the injected clock.
type Stager struct {
	downloadsDir string
	tempDir      string
	delay        time.Duration
	clock        clock.Clock
	logger       *zap.Logger

	mu       sync.Mutex
	reserved map[string]struct{}     // base names in use by a request
	pending  map[string]*clock.Timer // path -> scheduled removal
}

// NewStager creates a stager over the configured directories
func NewStager(config *domain.DownloadConfig, clk clock.Clock, logger *zap.Logger) *Stager {
	return &Stager{
		downloadsDir: config.DownloadsDir,
		tempDir:      config.TempDir,
		delay:        config.CleanupDelay,
		clock:        clk,
		logger:       logger,
		reserved:     make(map[string]struct{}),
		pending:      make(map[string]*clock.Timer),
	}
}

// Init creates the staging directories
func (s *Stager) Init() error {
	for _, dir := range []string{s.downloadsDir, s.tempDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Reserve returns a fresh base name of the form download_<unix ms>_<token>.
// The name stays reserved until Discard or Release.
func (s *Stager) Reserve() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		base := fmt.Sprintf("%s%d_%s", stagedPrefix, s.clock.Now().UnixMilli(), token)
		if _, taken := s.reserved[base]; !taken {
			s.reserved[base] = struct{}{}
			return base
		}
	}
}

// OutputPath is where the final file for base is written
func (s *Stager) OutputPath(base string, format domain.OutputFormat) string {
	return filepath.Join(s.downloadsDir, base+"."+string(format))
}

// TempPath is where an intermediate file for base is written
func (s *Stager) TempPath(base, ext string) string {
	return filepath.Join(s.tempDir, base+"."+ext)
}

// Template is the extractor output template for base
func (s *Stager) Template(base string) string {
	return filepath.Join(s.downloadsDir, base+".%(ext)s")
}

// Stage checks that the output for base exists and is non-empty
func (s *Stager) Stage(base string, format domain.OutputFormat) (*domain.StagedFile, error) {
	path := s.OutputPath(base, format)
	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.NewIOError("output file not found", err)
	}
	if info.Size() == 0 {
		return nil, domain.NewIOError("output file is empty", errors.New(filepath.Base(path)))
	}
	return &domain.StagedFile{
		Path:      path,
		Format:    format,
		Size:      info.Size(),
		CreatedAt: s.clock.Now(),
	}, nil
}

// Discard removes every file belonging to base, in both directories, and
// frees the name
func (s *Stager) Discard(base string) {
	for _, dir := range []string{s.downloadsDir, s.tempDir} {
		matches, err := filepath.Glob(filepath.Join(dir, base+".*"))
		if err != nil {
			continue
		}
		for _, path := range matches {
			s.remove(path)
		}
	}

	s.mu.Lock()
	delete(s.reserved, base)
	s.mu.Unlock()
}

// Release schedules removal of a served file after the cleanup delay
func (s *Stager) Release(file *domain.StagedFile) {
	if file == nil {
		return
	}
	path := file.Path
	base := strings.TrimSuffix(file.Name(), filepath.Ext(path))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, scheduled := s.pending[path]; scheduled {
		return
	}
	s.pending[path] = s.clock.AfterFunc(s.delay, func() {
		s.remove(path)
		s.mu.Lock()
		delete(s.pending, path)
		delete(s.reserved, base)
		s.mu.Unlock()
	})
}

// Pending returns the number of scheduled removals
func (s *Stager) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush cancels scheduled removals and deletes their files now
func (s *Stager) Flush() {
	s.mu.Lock()
	paths := make([]string, 0, len(s.pending))
	for path, timer := range s.pending {
		timer.Stop()
		paths = append(paths, path)
	}
	s.pending = make(map[string]*clock.Timer)
	s.reserved = make(map[string]struct{})
	s.mu.Unlock()

	for _, path := range paths {
		s.remove(path)
	}
}

// Sweep removes staged files left behind by a previous run. It must be
// called before requests are accepted.
func (s *Stager) Sweep() int {
	removed := 0
	for _, dir := range []string{s.downloadsDir, s.tempDir} {
		matches, err := filepath.Glob(filepath.Join(dir, stagedPrefix+"*"))
		if err != nil {
			continue
		}
		for _, path := range matches {
			if s.remove(path) {
				removed++
			}
		}
	}
	if removed > 0 {
		s.logger.Info("Removed stale staged files", zap.Int("count", removed))
	}
	return removed
}

// remove deletes path if it still exists; a missing file is not an error
func (s *Stager) remove(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Failed to remove staged file", zap.String("path", path), zap.Error(err))
		return false
	}
	s.logger.Debug("Removed staged file", zap.String("path", path))
	return true
}
