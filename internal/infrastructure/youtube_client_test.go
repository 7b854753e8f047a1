package infrastructure

import (
	"testing"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/vidgrab-go/internal/domain"
)

func testFormats() youtube.FormatList {
	return youtube.FormatList{
		{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, QualityLabel: "360p", Width: 640, Height: 360, AudioChannels: 2, Bitrate: 500000},
		{ItagNo: 22, MimeType: `video/mp4; codecs="avc1.64001F, mp4a.40.2"`, QualityLabel: "720p", Width: 1280, Height: 720, AudioChannels: 2, Bitrate: 1500000},
		{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, QualityLabel: "1080p", Width: 1920, Height: 1080, Bitrate: 4000000},
		{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, AudioChannels: 2, Bitrate: 130000},
		{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, AudioChannels: 2, Bitrate: 160000, ApproxDurationMs: "125000"},
	}
}

func TestSelectStream(t *testing.T) {
	tests := []struct {
		selection domain.StreamSelection
		itag      int
	}{
		{domain.SelectHighestAudio, 251},
		{domain.SelectHighestVideo, 22},
		{domain.SelectLowestVideo, 18},
	}

	for _, tt := range tests {
		t.Run(string(tt.selection), func(t *testing.T) {
			format, err := selectStream(testFormats(), tt.selection)
			require.NoError(t, err)
			assert.Equal(t, tt.itag, format.ItagNo)
		})
	}
}

func TestSelectStream_NoCandidates(t *testing.T) {
	videoOnly := youtube.FormatList{
		{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Width: 1920, Height: 1080},
	}

	_, err := selectStream(videoOnly, domain.SelectHighestAudio)
	assert.Error(t, err)

	_, err = selectStream(videoOnly, domain.SelectHighestVideo)
	assert.Error(t, err)

	_, err = selectStream(testFormats(), "bestest")
	assert.Error(t, err)
}

func TestContainerOf(t *testing.T) {
	assert.Equal(t, "mp4", containerOf(`video/mp4; codecs="avc1.42001E, mp4a.40.2"`))
	assert.Equal(t, "webm", containerOf(`audio/webm; codecs="opus"`))
	assert.Equal(t, "bin", containerOf(""))
}

func TestDescribeFormat(t *testing.T) {
	formats := testFormats()

	desc := describeFormat(&formats[0])
	assert.Equal(t, "18", desc.ID)
	assert.Equal(t, "mp4", desc.Ext)
	assert.Equal(t, "360p", desc.Quality)
	assert.True(t, desc.HasAudio)
	assert.True(t, desc.HasVideo)

	audio := describeFormat(&formats[3])
	assert.True(t, audio.HasAudio)
	assert.False(t, audio.HasVideo)
}
