package ytdlp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/testutils"
)

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantOK    bool
		wantTotal int64
		wantRate  float64
	}{
		{
			name:      "full line",
			line:      "[download]  12.3% of ~  10.00MiB at    1.00MiB/s ETA 00:05",
			wantOK:    true,
			wantTotal: 10 * 1024 * 1024,
			wantRate:  1024 * 1024,
		},
		{
			name:      "no tilde",
			line:      "[download]  50.0% of 200.00KiB at  100.00KiB/s ETA 00:01",
			wantOK:    true,
			wantTotal: 200 * 1024,
			wantRate:  100 * 1024,
		},
		{
			name:      "no speed or eta",
			line:      "[download] 100.0% of 5.00MiB",
			wantOK:    true,
			wantTotal: 5 * 1024 * 1024,
			wantRate:  0,
		},
		{name: "destination line", line: "[download] Destination: /tmp/out.mp4", wantOK: false},
		{name: "merger line", line: "[Merger] Merging formats", wantOK: false},
		{name: "empty", line: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, ok := parseProgressLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("parseProgressLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if sample.BytesTotal != tt.wantTotal {
				t.Errorf("BytesTotal = %d, want %d", sample.BytesTotal, tt.wantTotal)
			}
			if sample.Rate != tt.wantRate {
				t.Errorf("Rate = %v, want %v", sample.Rate, tt.wantRate)
			}
			if sample.BytesDone < 0 || sample.BytesDone > sample.BytesTotal {
				t.Errorf("BytesDone = %d out of range for total %d", sample.BytesDone, sample.BytesTotal)
			}
		})
	}
}

func TestBuildArgs(t *testing.T) {
	cfg := testutils.TestConfig(t.TempDir())
	template := filepath.Join(cfg.DownloadDir, "base.%(ext)s")

	t.Run("default video format", func(t *testing.T) {
		d := New(cfg, "https://example.com/v", "", false)
		args := d.buildArgs(template)

		assertArgPair(t, args, "-f", cfg.YTDLPSettings.VideoFormat)
		assertArgPair(t, args, "-o", template)
		if args[len(args)-1] != "https://example.com/v" {
			t.Errorf("URL must be the final argument, got %q", args[len(args)-1])
		}
		assertContains(t, args, "--max-filesize")
		assertContains(t, args, "--no-playlist")
		assertContains(t, args, "--newline")
	})

	t.Run("format hint overrides default", func(t *testing.T) {
		d := New(cfg, "https://example.com/v", "bestvideo+bestaudio", false)
		assertArgPair(t, d.buildArgs(template), "-f", "bestvideo+bestaudio")
	})

	t.Run("audio extraction", func(t *testing.T) {
		d := New(cfg, "https://example.com/v", "", true)
		args := d.buildArgs(template)

		assertContains(t, args, "-x")
		assertArgPair(t, args, "--audio-format", cfg.YTDLPSettings.AudioFormat)
		assertArgPair(t, args, "-f", "bestaudio/best")
	})
}

func assertContains(t *testing.T, args []string, want string) {
	t.Helper()
	for _, arg := range args {
		if arg == want {
			return
		}
	}
	t.Errorf("args %v missing %q", args, want)
}

func assertArgPair(t *testing.T, args []string, flag, value string) {
	t.Helper()
	for i, arg := range args {
		if arg == flag {
			if i+1 >= len(args) {
				t.Errorf("flag %q has no value", flag)
			} else if args[i+1] != value {
				t.Errorf("flag %q followed by %q, want %q", flag, args[i+1], value)
			}
			return
		}
	}
	t.Errorf("args %v missing flag %q", args, flag)
}

func TestLocateOutput(t *testing.T) {
	cfg := testutils.TestConfig(t.TempDir())
	d := New(cfg, "https://example.com/v", "", false)

	t.Run("finds the final file among partials", func(t *testing.T) {
		testutils.CreateFile(t, cfg.DownloadDir, "base1.mp4.part", 10)
		testutils.CreateFile(t, cfg.DownloadDir, "base1.ytdl", 10)
		want := testutils.CreateFile(t, cfg.DownloadDir, "base1.mp4", 10)

		got, err := d.locateOutput("base1")
		if err != nil {
			t.Fatalf("locateOutput() error = %v", err)
		}
		if got != want {
			t.Errorf("locateOutput() = %q, want %q", got, want)
		}
	})

	t.Run("no output at all", func(t *testing.T) {
		if _, err := d.locateOutput("missing"); err == nil {
			t.Error("expected an error when no file matches")
		}
	})

	t.Run("only partials left", func(t *testing.T) {
		testutils.CreateFile(t, cfg.DownloadDir, "base2.mkv.part", 10)
		if _, err := d.locateOutput("base2"); err == nil {
			t.Error("expected an error when only partial files remain")
		}
	})
}

func TestCleanupPartials(t *testing.T) {
	cfg := testutils.TestConfig(t.TempDir())
	d := New(cfg, "https://example.com/v", "", false)

	partial := testutils.CreateFile(t, cfg.DownloadDir, "dead.mp4.part", 10)
	final := testutils.CreateFile(t, cfg.DownloadDir, "dead.mp4", 10)
	unrelated := testutils.CreateFile(t, cfg.DownloadDir, "other.mp4", 10)

	d.cleanupPartials("dead")

	for _, path := range []string{partial, final} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s should have been removed", path)
		}
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Errorf("unrelated file was touched: %v", err)
	}
}
