// Package testutils provides shared fixtures for the test suite.
package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/config"
)

const testFileMode = 0o600

// TestConfig creates a configuration suitable for testing, with fast
// intervals and all directories under tempDir.
func TestConfig(tempDir string) *config.Config {
	cfg := &config.Config{
		BotToken:        "test-bot-token",
		GoFileUploadURL: "http://gofile.invalid/uploadfile",
		DownloadDir:     filepath.Join(tempDir, "downloads"),
		TempDir:         filepath.Join(tempDir, "temp"),
		DataDir:         filepath.Join(tempDir, "data"),
		LogLevel:        "error",

		DownloadSettings: config.DownloadConfig{
			MaxDownloadSize:        10 * 1024 * 1024,
			ChunkSize:              4 * 1024,
			RequestTimeout:         5 * time.Second,
			DownloadTimeout:        30 * time.Second,
			ProgressUpdateInterval: 10 * time.Millisecond,
		},

		UploadSettings: config.UploadConfig{
			MaxUploadSize: 10 * 1024 * 1024,
			UploadTimeout: 30 * time.Second,
		},

		CleanupSettings: config.CleanupConfig{
			Retention:     time.Hour,
			SweepInterval: time.Hour,
		},

		YTDLPSettings: config.YTDLPConfig{
			Enabled:     true,
			VideoFormat: "best",
			AudioFormat: "mp3",
		},
	}

	for _, dir := range []string{cfg.DownloadDir, cfg.TempDir, cfg.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			panic(err)
		}
	}
	return cfg
}

// CreateFile writes size bytes of repeating data to dir/name and returns the
// full path.
func CreateFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, testFileMode); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}
