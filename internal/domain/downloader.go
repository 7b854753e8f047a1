package domain

import (
	"context"
	"io"
)

// StreamSelection picks which YouTube stream to fetch
type StreamSelection string

const (
	SelectHighestAudio StreamSelection = "highestaudio"
	SelectHighestVideo StreamSelection = "highestvideo"
	SelectLowestVideo  StreamSelection = "lowestvideo"
)

// YouTubeClient fetches metadata and media streams from YouTube without
// the external extractor
type YouTubeClient interface {
	// Video returns the native metadata for a video
	Video(ctx context.Context, url string) (*VideoDetails, error)

	// Stream opens the selected media stream. The returned extension is the
	// container of the stream (e.g. "mp4", "webm").
	Stream(ctx context.Context, url string, selection StreamSelection) (io.ReadCloser, string, error)
}

// ExtractJob describes one extractor download invocation
type ExtractJob struct {
	URL      string
	Format   OutputFormat
	Quality  Quality
	Template string // output path template, ends in .%(ext)s
}

// Extractor is the external extraction tool (yt-dlp)
type Extractor interface {
	// Version returns the tool's version, or an error if it cannot be run
	Version(ctx context.Context) (string, error)

	// DumpJSON returns the tool's JSON metadata for a URL
	DumpJSON(ctx context.Context, url string) ([]byte, error)

	// Download fetches the media described by the job
	Download(ctx context.Context, job ExtractJob) error
}

// Transcoder converts media files (ffmpeg)
type Transcoder interface {
	// Version returns the converter's version, or an error if it cannot be run
	Version(ctx context.Context) (string, error)

	// ConvertToMP3 converts the input media into an MP3 file at output
	ConvertToMP3(ctx context.Context, input, output string) error
}

// Notifier sends user-facing notifications about finished downloads
type Notifier interface {
	NotifyDownloadComplete(record *DownloadRecord)
	NotifyDownloadFailed(record *DownloadRecord)
}
