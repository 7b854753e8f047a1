package app

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/yourusername/vidgrab-go/internal/domain"
)

// ytdlpInfo is the subset of `yt-dlp --dump-json` output the resolver reads
type ytdlpInfo struct {
	Title      string        `json:"title"`
	Duration   *float64      `json:"duration"`
	Thumbnail  string        `json:"thumbnail"`
	Thumbnails []ytdlpThumb  `json:"thumbnails"`
	Formats    []ytdlpFormat `json:"formats"`
}

type ytdlpThumb struct {
	URL string `json:"url"`
}

type ytdlpFormat struct {
	FormatID       string   `json:"format_id"`
	Ext            string   `json:"ext"`
	FormatNote     string   `json:"format_note"`
	Width          *int     `json:"width"`
	Height         *int     `json:"height"`
	TBR            *float64 `json:"tbr"`
	Filesize       *int64   `json:"filesize"`
	FilesizeApprox *int64   `json:"filesize_approx"`
	VCodec         string   `json:"vcodec"`
	ACodec         string   `json:"acodec"`
}

// parseYTDLPInfo converts yt-dlp JSON into metadata. Missing fields take the
// same defaults as the degraded result: title "Video", duration 0.
func parseYTDLPInfo(data []byte) (*domain.VideoMetadata, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("unparseable yt-dlp output: %w", err)
	}

	meta := &domain.VideoMetadata{
		Title:           info.Title,
		DurationSeconds: durationSeconds(info.Duration),
		Thumbnail:       info.Thumbnail,
		Formats:         make([]domain.FormatDescriptor, 0, len(info.Formats)),
	}
	if meta.Title == "" {
		meta.Title = domain.DegradedTitle
	}
	if meta.Thumbnail == "" && len(info.Thumbnails) > 0 {
		meta.Thumbnail = info.Thumbnails[0].URL
	}

	for _, f := range info.Formats {
		desc := domain.FormatDescriptor{
			ID:       f.FormatID,
			Ext:      f.Ext,
			Quality:  f.FormatNote,
			HasAudio: f.ACodec != "" && f.ACodec != "none",
			HasVideo: f.VCodec != "" && f.VCodec != "none",
		}
		if f.Width != nil {
			desc.Width = *f.Width
		}
		if f.Height != nil {
			desc.Height = *f.Height
		}
		if f.TBR != nil {
			desc.Bitrate = int(*f.TBR * 1000)
		}
		if f.Filesize != nil {
			desc.Filesize = *f.Filesize
		} else if f.FilesizeApprox != nil {
			desc.Filesize = *f.FilesizeApprox
		}
		meta.Formats = append(meta.Formats, desc)
	}

	return meta, nil
}

// durationSeconds rounds a fractional duration to whole seconds; null,
// negative and non-finite values mean unknown (0)
func durationSeconds(d *float64) int {
	if d == nil || math.IsNaN(*d) || math.IsInf(*d, 0) || *d <= 0 {
		return 0
	}
	return int(math.Round(*d))
}
