// Package validation guards every untrusted input that reaches the transfer
// pipeline: URLs from chat messages, filenames from HTTP headers, and byte
// counts against configured ceilings.
package validation

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/utils"
)

const (
	minURLLength    = 10
	maxFilenameSize = 250
)

var (
	unsafeChars  = regexp.MustCompile(`[<>:"/\\|?*` + "\x00" + `]`)
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
)

// ValidateURL accepts http(s) URLs with a host and rejects anything carrying
// control or quote characters (header/log injection via malformed URLs).
func ValidateURL(rawURL string) error {
	if len(rawURL) <= minURLLength {
		return utils.WrapError(utils.ErrInvalidInput, "URL too short", nil)
	}
	if strings.ContainsAny(rawURL, "<>\"'\n\r") {
		return utils.WrapError(utils.ErrInvalidInput, "URL contains forbidden characters", nil)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return utils.WrapError(utils.ErrInvalidInput, "URL does not parse", nil)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return utils.WrapError(utils.ErrInvalidInput, "URL scheme must be http or https", nil)
	}
	if parsed.Host == "" {
		return utils.WrapError(utils.ErrInvalidInput, "URL has no host", nil)
	}
	return nil
}

// SanitizeFilename strips path separators and filesystem-hazardous characters,
// trims leading/trailing dots and whitespace, and truncates to 250 bytes
// preserving the extension. Never returns an empty string. Idempotent.
func SanitizeFilename(name string) string {
	name = unsafeChars.ReplaceAllString(name, "_")
	name = controlChars.ReplaceAllString(name, "")
	name = strings.Trim(name, " .")

	if len(name) > maxFilenameSize {
		ext := filepath.Ext(name)
		if len(ext) >= maxFilenameSize {
			ext = ""
		}
		name = name[:maxFilenameSize-len(ext)] + ext
		name = strings.Trim(name, " .")
	}

	if name == "" {
		name = fmt.Sprintf("file_%d", time.Now().Unix())
	}
	return name
}

// CheckSize rejects any byte count strictly greater than the ceiling.
// The boundary value equal to the ceiling is accepted. A zero or negative
// observed value is treated as unknown and passes.
func CheckSize(observed, ceiling int64) error {
	if ceiling <= 0 || observed <= 0 {
		return nil
	}
	if observed > ceiling {
		return utils.WrapError(utils.ErrSizeExceeded, fmt.Sprintf("%s exceeds limit of %s",
			utils.FormatSize(observed), utils.FormatSize(ceiling)), map[string]any{
			"observed": observed,
			"ceiling":  ceiling,
		})
	}
	return nil
}
