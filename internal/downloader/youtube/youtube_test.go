package youtube

import (
	"errors"
	"testing"

	"github.com/kkdai/youtube/v2"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/utils"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://www.youtube.com/", false},
		{"https://www.youtube.com/watch?v=short", false},
		{"https://example.com/watch?v=dQw4w9WgXcQ", false},
		{"https://vimeo.com/12345678", false},
	}

	for _, tt := range tests {
		if got := Match(tt.url); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestPickFormat(t *testing.T) {
	mk := func(size int64) youtube.Format {
		return youtube.Format{ContentLength: size}
	}

	t.Run("largest under ceiling wins", func(t *testing.T) {
		formats := youtube.FormatList{mk(100), mk(900), mk(500)}
		got, err := pickFormat(formats, 1000)
		if err != nil {
			t.Fatalf("pickFormat() error = %v", err)
		}
		if got.ContentLength != 900 {
			t.Errorf("picked %d, want 900", got.ContentLength)
		}
	})

	t.Run("oversized formats skipped", func(t *testing.T) {
		formats := youtube.FormatList{mk(100), mk(5000)}
		got, err := pickFormat(formats, 1000)
		if err != nil {
			t.Fatalf("pickFormat() error = %v", err)
		}
		if got.ContentLength != 100 {
			t.Errorf("picked %d, want 100", got.ContentLength)
		}
	})

	t.Run("unknown size as last resort", func(t *testing.T) {
		formats := youtube.FormatList{mk(5000), mk(0)}
		got, err := pickFormat(formats, 1000)
		if err != nil {
			t.Fatalf("pickFormat() error = %v", err)
		}
		if got.ContentLength != 0 {
			t.Errorf("picked %d, want the unknown-size format", got.ContentLength)
		}
	})

	t.Run("all over the ceiling", func(t *testing.T) {
		formats := youtube.FormatList{mk(5000), mk(9000)}
		_, err := pickFormat(formats, 1000)
		if !errors.Is(err, utils.ErrSizeExceeded) {
			t.Errorf("error = %v, want ErrSizeExceeded", err)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		if _, err := pickFormat(youtube.FormatList{}, 1000); err == nil {
			t.Error("expected an error for an empty format list")
		}
	})
}

func TestExtensionFromMimeType(t *testing.T) {
	tests := []struct {
		mimeType string
		want     string
	}{
		{`video/mp4; codecs="avc1.42001E, mp4a.40.2"`, ".mp4"},
		{"video/webm", ".webm"},
		{"audio/webm; codecs=opus", ".webm"},
		{"video/3gpp", ".3gp"},
		{"something/else", ".mp4"},
	}

	for _, tt := range tests {
		if got := extensionFromMimeType(tt.mimeType); got != tt.want {
			t.Errorf("extensionFromMimeType(%q) = %q, want %q", tt.mimeType, got, tt.want)
		}
	}
}
