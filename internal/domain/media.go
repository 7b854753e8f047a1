package domain

import (
	"fmt"
	"strings"
	"time"
)

// OutputFormat is the container the caller wants back
type OutputFormat string

const (
	FormatMP4 OutputFormat = "mp4"
	FormatMP3 OutputFormat = "mp3"
)

// Quality selects between the best and the smallest available rendition
type Quality string

const (
	QualityHigh Quality = "high"
	QualityLow  Quality = "low"
)

// DegradedNote is attached to metadata produced without the extractor
const DegradedNote = "yt-dlp is not installed. Install it for full support of this platform."

// DegradedTitle is the title placeholder used when no extractor is available
const DegradedTitle = "Video"

// VideoMetadata describes a video as reported by the platform client or extractor
type VideoMetadata struct {
	Title           string             `json:"title"`
	DurationSeconds int                `json:"duration"`
	Thumbnail       string             `json:"thumbnail"`
	Formats         []FormatDescriptor `json:"formats"`
	Note            string             `json:"note,omitempty"`
}

// IsDegraded reports whether the metadata is a placeholder
func (m *VideoMetadata) IsDegraded() bool {
	return m.Note != ""
}

// DegradedMetadata returns the placeholder metadata used when the extractor is missing
func DegradedMetadata() *VideoMetadata {
	return &VideoMetadata{
		Title:           DegradedTitle,
		DurationSeconds: 0,
		Thumbnail:       "",
		Formats:         []FormatDescriptor{},
		Note:            DegradedNote,
	}
}

// FormatDescriptor is an opaque description of one available rendition
type FormatDescriptor struct {
	ID       string `json:"id"`
	Ext      string `json:"ext,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Quality  string `json:"quality,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Bitrate  int    `json:"bitrate,omitempty"`
	Filesize int64  `json:"filesize,omitempty"`
	HasAudio bool   `json:"has_audio"`
	HasVideo bool   `json:"has_video"`
}

// VideoDetails is the platform client's native view of a video. Duration is
// reported both as a parsed value and as the raw millisecond string some
// responses carry; callers normalise it.
type VideoDetails struct {
	ID               string
	Title            string
	Duration         time.Duration
	ApproxDurationMs string
	Thumbnails       []string
	Formats          []FormatDescriptor
}

// DownloadRequest is a request to fetch and convert a video
type DownloadRequest struct {
	URL     string       `json:"url"`
	Format  OutputFormat `json:"format"`
	Quality Quality      `json:"quality,omitempty"`
}

// Normalize trims the request and applies the default quality
func (r *DownloadRequest) Normalize() {
	r.URL = strings.TrimSpace(r.URL)
	r.Format = OutputFormat(strings.ToLower(strings.TrimSpace(string(r.Format))))
	r.Quality = Quality(strings.ToLower(strings.TrimSpace(string(r.Quality))))
	if r.Quality == "" {
		r.Quality = QualityHigh
	}
}

// Validate checks the request fields and returns the detected platform
func (r *DownloadRequest) Validate() (Platform, error) {
	if r.URL == "" || r.Format == "" {
		return PlatformUnknown, NewValidationError("url and format are required")
	}
	if !ValidateFormat(r.Format) {
		return PlatformUnknown, NewValidationError(fmt.Sprintf("unsupported format: %s", r.Format))
	}
	if !ValidateQuality(r.Quality) {
		return PlatformUnknown, NewValidationError(fmt.Sprintf("unsupported quality: %s", r.Quality))
	}
	platform := DetectPlatform(r.URL)
	if platform == PlatformUnknown {
		return platform, NewUnsupportedPlatformError(r.URL)
	}
	return platform, nil
}

// ValidateFormat checks if an output format is valid
func ValidateFormat(format OutputFormat) bool {
	return format == FormatMP4 || format == FormatMP3
}

// ValidateQuality checks if a quality tier is valid
func ValidateQuality(quality Quality) bool {
	return quality == QualityHigh || quality == QualityLow
}
