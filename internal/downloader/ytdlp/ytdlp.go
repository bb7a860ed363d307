// Package ytdlp drives the external yt-dlp binary as the media-extraction
// engine: it resolves a platform URL into a local file while relaying the
// engine's own progress output (percent, total, speed, ETA) to the reporter.
package ytdlp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/config"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/downloader"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/logutils"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/progress"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/utils"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/validation"
)

const titleTimeout = 30 * time.Second

// progressLine matches yt-dlp --newline output:
//
//	[download]  12.3% of ~  10.00MiB at    1.00MiB/s ETA 00:05
var progressLine = regexp.MustCompile(
	`\[download\]\s+([\d.]+)%\s+of\s+~?\s*([\d.]+\w+)(?:\s+at\s+([\d.]+\w+)/s)?(?:\s+ETA\s+([\d:]+))?`)

type Downloader struct {
	cfg          *config.Config
	url          string
	formatHint   string
	extractAudio bool
}

func New(cfg *config.Config, rawURL, formatHint string, extractAudio bool) *Downloader {
	return &Downloader{
		cfg:          cfg,
		url:          rawURL,
		formatHint:   formatHint,
		extractAudio: extractAudio,
	}
}

func (d *Downloader) Fetch(ctx context.Context, reporter *progress.Reporter) (*downloader.Result, error) {
	if d.cfg.DownloadSettings.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.DownloadSettings.DownloadTimeout)
		defer cancel()
	}

	base := uuid.NewString()
	outputTemplate := filepath.Join(d.cfg.DownloadDir, base+".%(ext)s")

	cmd := exec.CommandContext(ctx, "yt-dlp", d.buildArgs(outputTemplate)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, utils.WrapError(utils.ErrFetchFailed, err.Error(), nil)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, utils.WrapError(utils.ErrFetchFailed, "failed to start yt-dlp: "+err.Error(), nil)
	}

	logutils.Log.WithField("url", d.url).Info("Starting yt-dlp download")

	var sawSizeAbort bool
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "max-filesize") {
			sawSizeAbort = true
			continue
		}
		if sample, ok := parseProgressLine(line); ok && reporter != nil {
			reporter.Report(sample)
		}
	}

	waitErr := cmd.Wait()

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		d.cleanupPartials(base)
		return nil, utils.WrapError(utils.ErrTimeout, "yt-dlp deadline elapsed", nil)
	case errors.Is(ctx.Err(), context.Canceled):
		d.cleanupPartials(base)
		return nil, utils.WrapError(utils.ErrCancelled, "yt-dlp cancelled", nil)
	}

	if sawSizeAbort {
		d.cleanupPartials(base)
		return nil, utils.WrapError(utils.ErrSizeExceeded,
			fmt.Sprintf("media exceeds limit of %s", utils.FormatSize(d.cfg.DownloadSettings.MaxDownloadSize)), nil)
	}

	if waitErr != nil {
		d.cleanupPartials(base)
		logutils.Log.WithError(waitErr).Errorf("yt-dlp exited with error: %s", stderr.String())
		return nil, utils.WrapError(utils.ErrFetchFailed, strings.TrimSpace(stderr.String()), nil)
	}

	path, err := d.locateOutput(base)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, utils.WrapError(utils.ErrFetchFailed, "yt-dlp reported no output file", nil)
	}
	if info.Size() == 0 {
		os.Remove(path)
		return nil, utils.WrapError(utils.ErrEmptyFile, "yt-dlp produced an empty file", nil)
	}

	title := d.fetchTitle()
	name := validation.SanitizeFilename(title + filepath.Ext(path))

	return &downloader.Result{
		Path:  path,
		Name:  name,
		Size:  info.Size(),
		Title: title,
	}, nil
}

func (d *Downloader) buildArgs(outputTemplate string) []string {
	args := []string{
		"--newline",
		"--no-playlist",
		"--no-warnings",
		"--no-color",
		"--max-filesize", strconv.FormatInt(d.cfg.DownloadSettings.MaxDownloadSize, 10),
		"-o", outputTemplate,
	}

	switch {
	case d.extractAudio:
		args = append(args, "-f", "bestaudio/best", "-x", "--audio-format", d.cfg.YTDLPSettings.AudioFormat)
	case d.formatHint != "":
		args = append(args, "-f", d.formatHint)
	default:
		args = append(args, "-f", d.cfg.YTDLPSettings.VideoFormat)
	}

	return append(args, d.url)
}

// locateOutput finds the produced file: the output template fixes the base
// name, only the extension is chosen by the engine.
func (d *Downloader) locateOutput(base string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(d.cfg.DownloadDir, base+".*"))
	if err != nil || len(matches) == 0 {
		return "", utils.WrapError(utils.ErrFetchFailed, "yt-dlp reported no output file", nil)
	}
	for _, match := range matches {
		switch filepath.Ext(match) {
		case ".part", ".ytdl", ".ytdlp", ".temp", ".tmp":
			continue
		}
		return match, nil
	}
	return "", utils.WrapError(utils.ErrFetchFailed, "yt-dlp left only partial files", nil)
}

func (d *Downloader) cleanupPartials(base string) {
	matches, err := filepath.Glob(filepath.Join(d.cfg.DownloadDir, base+".*"))
	if err != nil {
		return
	}
	for _, match := range matches {
		if removeErr := os.Remove(match); removeErr != nil && !os.IsNotExist(removeErr) {
			logutils.Log.WithError(removeErr).Debugf("Failed to cleanup partial file: %s", match)
		}
	}
}

func (d *Downloader) fetchTitle() string {
	ctx, cancel := context.WithTimeout(context.Background(), titleTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "yt-dlp", "--get-title", "--no-playlist", "--no-warnings", d.url)
	output, err := cmd.Output()
	if err != nil {
		logutils.Log.WithError(err).WithField("url", d.url).Debug("Failed to get media title")
		return "media"
	}
	title := strings.TrimSpace(string(output))
	if title == "" {
		return "media"
	}
	return title
}

func parseProgressLine(line string) (progress.Sample, bool) {
	match := progressLine.FindStringSubmatch(line)
	if match == nil {
		return progress.Sample{}, false
	}

	percent, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return progress.Sample{}, false
	}

	var sample progress.Sample
	if total, parseErr := humanize.ParseBytes(match[2]); parseErr == nil {
		sample.BytesTotal = int64(total)
		sample.BytesDone = int64(percent / 100 * float64(total))
	}
	if match[3] != "" {
		if speed, parseErr := humanize.ParseBytes(match[3]); parseErr == nil {
			sample.Rate = float64(speed)
		}
	}
	return sample, true
}
