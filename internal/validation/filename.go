package validation

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

var contentDispositionFilename = regexp.MustCompile(`filename\*?=["']?([^"';\r\n]+)`)

// FilenameFromURL derives a display name for a direct download, preferring the
// Content-Disposition header, then the URL path, then a timestamp-based name
// with an extension guessed from Content-Type. The result is always sanitized.
func FilenameFromURL(rawURL string, header http.Header) string {
	if disposition := header.Get("Content-Disposition"); disposition != "" {
		if match := contentDispositionFilename.FindStringSubmatch(disposition); match != nil {
			name := strings.Trim(match[1], `"' `)
			if name != "" {
				return SanitizeFilename(name)
			}
		}
	}

	if parsed, err := url.Parse(rawURL); err == nil {
		name := path.Base(parsed.Path)
		if name != "" && name != "." && name != "/" && strings.Contains(name, ".") {
			return SanitizeFilename(name)
		}
	}

	ext := extensionFromContentType(header.Get("Content-Type"))
	return fmt.Sprintf("download_%s%s", time.Now().Format("20060102_150405"), ext)
}

func extensionFromContentType(contentType string) string {
	contentType = strings.ToLower(contentType)
	switch {
	case strings.Contains(contentType, "image/jpeg"), strings.Contains(contentType, "image/jpg"):
		return ".jpg"
	case strings.Contains(contentType, "image/png"):
		return ".png"
	case strings.Contains(contentType, "image/gif"):
		return ".gif"
	case strings.Contains(contentType, "video/mp4"):
		return ".mp4"
	case strings.Contains(contentType, "video/webm"):
		return ".webm"
	case strings.Contains(contentType, "audio/mpeg"):
		return ".mp3"
	case strings.Contains(contentType, "audio/wav"):
		return ".wav"
	case strings.Contains(contentType, "application/pdf"):
		return ".pdf"
	case strings.Contains(contentType, "application/zip"):
		return ".zip"
	case strings.Contains(contentType, "text/plain"):
		return ".txt"
	default:
		return ""
	}
}
