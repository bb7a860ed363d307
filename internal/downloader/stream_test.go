package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/utils"
)

func TestStreamToFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.bin")
	payload := strings.Repeat("x", 10*1024)

	size, err := StreamToFile(context.Background(), strings.NewReader(payload), dest, 0, 1024, int64(len(payload)), nil)
	if err != nil {
		t.Fatalf("StreamToFile() error = %v", err)
	}
	if size != int64(len(payload)) {
		t.Errorf("size = %d, want %d", size, len(payload))
	}

	written, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(written) != payload {
		t.Error("written content does not match the source")
	}
}

func TestStreamToFileCeilingAbortsMidStream(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.bin")
	payload := strings.Repeat("x", 10*1024)

	_, err := StreamToFile(context.Background(), strings.NewReader(payload), dest, 4*1024, 1024, 0, nil)
	if !errors.Is(err, utils.ErrSizeExceeded) {
		t.Fatalf("error = %v, want ErrSizeExceeded", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("partial file was not removed after the ceiling abort")
	}
}

func TestStreamToFileEmptySource(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.bin")

	_, err := StreamToFile(context.Background(), strings.NewReader(""), dest, 0, 1024, 0, nil)
	if !errors.Is(err, utils.ErrEmptyFile) {
		t.Fatalf("error = %v, want ErrEmptyFile", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("empty file was left on disk")
	}
}

// slowReader blocks until its context is done, then fails the read.
type slowReader struct {
	ctx context.Context
}

func (r *slowReader) Read(buf []byte) (int, error) {
	if len(buf) > 0 {
		buf[0] = 'x'
	}
	select {
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	case <-time.After(time.Millisecond):
		return 1, nil
	}
}

func TestStreamToFileCancellation(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.bin")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := StreamToFile(ctx, &slowReader{ctx: ctx}, dest, 0, 1, 0, nil)
	if !errors.Is(err, utils.ErrCancelled) {
		t.Fatalf("error = %v, want ErrCancelled", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("partial file was not removed after cancellation")
	}
}

func TestStreamToFileDeadline(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.bin")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := StreamToFile(ctx, &slowReader{ctx: ctx}, dest, 0, 1, 0, nil)
	if !errors.Is(err, utils.ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()

	first := UniquePath(dir, "video.mp4")
	if first != filepath.Join(dir, "video.mp4") {
		t.Errorf("first path = %q, want plain name", first)
	}
	if err := os.WriteFile(first, []byte("a"), 0o600); err != nil {
		t.Fatal(err)
	}

	second := UniquePath(dir, "video.mp4")
	if second != filepath.Join(dir, "video_1.mp4") {
		t.Errorf("second path = %q, want counter suffix before extension", second)
	}
	if err := os.WriteFile(second, []byte("b"), 0o600); err != nil {
		t.Fatal(err)
	}

	third := UniquePath(dir, "video.mp4")
	if third != filepath.Join(dir, "video_2.mp4") {
		t.Errorf("third path = %q, want incremented counter", third)
	}
}

func TestIsPlatformURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=abc123def45", true},
		{"https://youtu.be/abc123def45", true},
		{"https://vm.tiktok.com/ZMabcdef/", true},
		{"https://www.instagram.com/reel/xyz/", true},
		{"https://x.com/user/status/123", true},
		{"https://clips.twitch.tv/SomeClip", true},
		{"https://example.com/file.zip", false},
		{"https://cdn.example.org/video.mp4", false},
		{"not a url at all", false},
	}

	for _, tt := range tests {
		if got := IsPlatformURL(tt.url); got != tt.want {
			t.Errorf("IsPlatformURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
