package domain

import "strings"

// Platform represents the source platform of a media URL
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformTwitter   Platform = "twitter" // X/Twitter
	PlatformFacebook  Platform = "facebook"
	PlatformUnknown   Platform = "unknown"
)

// platformMatchers is checked in order, first match wins
var platformMatchers = []struct {
	platform Platform
	needles  []string
}{
	{PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{PlatformInstagram, []string{"instagram.com"}},
	{PlatformTikTok, []string{"tiktok.com"}},
	{PlatformTwitter, []string{"twitter.com", "x.com"}},
	{PlatformFacebook, []string{"facebook.com", "fb.watch"}},
}

// SupportedPlatforms lists every platform the service knows how to handle
func SupportedPlatforms() []Platform {
	platforms := make([]Platform, 0, len(platformMatchers))
	for _, m := range platformMatchers {
		platforms = append(platforms, m.platform)
	}
	return platforms
}

// DetectPlatform classifies a URL by its text alone. It never fails; URLs that
// match nothing are reported as PlatformUnknown.
func DetectPlatform(url string) Platform {
	lower := strings.ToLower(url)
	for _, m := range platformMatchers {
		for _, needle := range m.needles {
			if strings.Contains(lower, needle) {
				return m.platform
			}
		}
	}
	return PlatformUnknown
}

// NeedsExtractor reports whether the platform is served by the external extractor
// rather than the native YouTube client
func (p Platform) NeedsExtractor() bool {
	return p != PlatformYouTube && p != PlatformUnknown
}
