package downloader

import (
	"net/url"
	"strings"
)

// supportedPlatforms routes URLs to the extraction engine instead of direct
// HTTP download. Matching is a substring check against the host, not full
// domain parsing; look-alike domains are an accepted false-positive risk.
var supportedPlatforms = []string{
	"youtube.com", "youtu.be", "youtube-nocookie.com",
	"instagram.com", "instagr.am",
	"tiktok.com", "vm.tiktok.com",
	"twitter.com", "x.com", "t.co",
	"facebook.com", "fb.watch",
	"reddit.com", "redd.it", "v.redd.it",
	"vimeo.com",
	"dailymotion.com", "dai.ly",
	"soundcloud.com",
	"twitch.tv", "clips.twitch.tv",
	"streamable.com",
	"imgur.com",
	"pinterest.com", "pin.it",
	"linkedin.com",
	"tumblr.com",
}

func IsPlatformURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	for _, platform := range supportedPlatforms {
		if strings.Contains(host, platform) {
			return true
		}
	}
	return false
}
