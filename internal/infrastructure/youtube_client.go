package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/yourusername/vidgrab-go/internal/domain"
)

// YouTubeClient implements domain.YouTubeClient on top of kkdai/youtube
type YouTubeClient struct {
	client *youtube.Client
}

// NewYouTubeClient creates a YouTube client with the given HTTP timeout
func NewYouTubeClient(config *domain.YouTubeConfig) *YouTubeClient {
	timeout := config.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YouTubeClient{
		client: &youtube.Client{
			HTTPClient: &http.Client{Timeout: timeout},
		},
	}
}

// Video fetches the video's native metadata
func (c *YouTubeClient) Video(ctx context.Context, url string) (*domain.VideoDetails, error) {
	video, err := c.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, describeYouTubeError(err)
	}

	details := &domain.VideoDetails{
		ID:       video.ID,
		Title:    video.Title,
		Duration: video.Duration,
		Formats:  make([]domain.FormatDescriptor, 0, len(video.Formats)),
	}
	for _, thumb := range video.Thumbnails {
		if thumb.URL != "" {
			details.Thumbnails = append(details.Thumbnails, thumb.URL)
		}
	}
	for i := range video.Formats {
		f := &video.Formats[i]
		if details.ApproxDurationMs == "" && f.ApproxDurationMs != "" {
			details.ApproxDurationMs = f.ApproxDurationMs
		}
		details.Formats = append(details.Formats, describeFormat(f))
	}
	return details, nil
}

// Stream opens the media stream matching the selection
func (c *YouTubeClient) Stream(ctx context.Context, url string, selection domain.StreamSelection) (io.ReadCloser, string, error) {
	video, err := c.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, "", describeYouTubeError(err)
	}

	format, err := selectStream(video.Formats, selection)
	if err != nil {
		return nil, "", err
	}

	stream, _, err := c.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, "", describeYouTubeError(err)
	}
	return stream, containerOf(format.MimeType), nil
}

// selectStream picks a format the way ytdl's named filters do:
// highestaudio is the best audio-only stream, highestvideo and lowestvideo
// prefer progressive mp4 (audio and video in one file).
func selectStream(formats youtube.FormatList, selection domain.StreamSelection) (*youtube.Format, error) {
	var candidates []*youtube.Format

	switch selection {
	case domain.SelectHighestAudio:
		for i := range formats {
			f := &formats[i]
			if f.AudioChannels > 0 && f.Width == 0 && f.Height == 0 {
				candidates = append(candidates, f)
			}
		}
		if len(candidates) == 0 {
			// Fall back to anything with audio, ffmpeg strips the video track
			for i := range formats {
				if formats[i].AudioChannels > 0 {
					candidates = append(candidates, &formats[i])
				}
			}
		}
		if len(candidates) == 0 {
			return nil, errors.New("no audio formats available")
		}
		return pickBy(candidates, func(a, b *youtube.Format) bool {
			return bitrateOf(a) > bitrateOf(b)
		}), nil

	case domain.SelectHighestVideo, domain.SelectLowestVideo:
		for i := range formats {
			f := &formats[i]
			if f.AudioChannels > 0 && f.Height > 0 && containerOf(f.MimeType) == "mp4" {
				candidates = append(candidates, f)
			}
		}
		if len(candidates) == 0 {
			for i := range formats {
				if formats[i].AudioChannels > 0 && formats[i].Height > 0 {
					candidates = append(candidates, &formats[i])
				}
			}
		}
		if len(candidates) == 0 {
			return nil, errors.New("no progressive (audio+video) formats available")
		}
		if selection == domain.SelectLowestVideo {
			return pickBy(candidates, func(a, b *youtube.Format) bool {
				return a.Height < b.Height || (a.Height == b.Height && bitrateOf(a) < bitrateOf(b))
			}), nil
		}
		return pickBy(candidates, func(a, b *youtube.Format) bool {
			return a.Height > b.Height || (a.Height == b.Height && bitrateOf(a) > bitrateOf(b))
		}), nil
	}

	return nil, fmt.Errorf("unknown stream selection: %s", selection)
}

// pickBy returns the candidate for which better reports true against all others
func pickBy(candidates []*youtube.Format, better func(a, b *youtube.Format) bool) *youtube.Format {
	var best *youtube.Format
	for _, f := range candidates {
		if best == nil || better(f, best) {
			best = f
		}
	}
	return best
}

func bitrateOf(f *youtube.Format) int {
	if f.Bitrate > 0 {
		return f.Bitrate
	}
	return f.AverageBitrate
}

// containerOf extracts the container from a mime type such as
// `video/mp4; codecs="avc1.42001E, mp4a.40.2"`
func containerOf(mimeType string) string {
	mediaType := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	if idx := strings.Index(mediaType, "/"); idx >= 0 {
		mediaType = mediaType[idx+1:]
	}
	if mediaType == "" {
		return "bin"
	}
	return mediaType
}

func describeFormat(f *youtube.Format) domain.FormatDescriptor {
	quality := f.QualityLabel
	if quality == "" {
		quality = f.Quality
	}
	return domain.FormatDescriptor{
		ID:       strconv.Itoa(f.ItagNo),
		Ext:      containerOf(f.MimeType),
		MimeType: f.MimeType,
		Quality:  quality,
		Width:    f.Width,
		Height:   f.Height,
		Bitrate:  bitrateOf(f),
		Filesize: f.ContentLength,
		HasAudio: f.AudioChannels > 0,
		HasVideo: f.Width > 0 || f.Height > 0,
	}
}

func describeYouTubeError(err error) error {
	switch {
	case errors.Is(err, youtube.ErrLoginRequired):
		return fmt.Errorf("video requires login: %w", err)
	case errors.Is(err, youtube.ErrVideoPrivate):
		return fmt.Errorf("video is private: %w", err)
	case errors.Is(err, youtube.ErrInvalidCharactersInVideoID),
		errors.Is(err, youtube.ErrVideoIDMinLength):
		return fmt.Errorf("invalid YouTube video id: %w", err)
	}
	return err
}
