// Package youtube is a native YouTube resolver used when the external
// extraction engine is disabled: it picks a muxed format under the size
// ceiling and streams it straight into ephemeral storage.
package youtube

import (
	"context"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/kkdai/youtube/v2"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/config"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/downloader"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/logutils"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/progress"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/utils"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/validation"
)

var videoIDPattern = regexp.MustCompile(
	`(?:youtube\.com/(?:[^/\n\s]+/\S+/|(?:v|e(?:mbed)?)/|shorts/|\S*?[?&]v=)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// Match reports whether the URL is a YouTube link this resolver can handle.
func Match(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	if !strings.Contains(host, "youtube.com") && !strings.Contains(host, "youtu.be") {
		return false
	}
	return videoIDPattern.MatchString(rawURL)
}

type Downloader struct {
	cfg *config.Config
	url string
}

func New(cfg *config.Config, rawURL string) *Downloader {
	return &Downloader{cfg: cfg, url: rawURL}
}

func (d *Downloader) Fetch(ctx context.Context, reporter *progress.Reporter) (*downloader.Result, error) {
	ceiling := d.cfg.DownloadSettings.MaxDownloadSize

	if d.cfg.DownloadSettings.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.DownloadSettings.DownloadTimeout)
		defer cancel()
	}

	match := videoIDPattern.FindStringSubmatch(d.url)
	if match == nil {
		return nil, utils.WrapError(utils.ErrInvalidInput, "not a recognizable YouTube URL", nil)
	}
	videoID := match[1]

	client := youtube.Client{}
	video, err := client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, utils.WrapError(utils.ErrFetchFailed, "failed to get video info: "+err.Error(), nil)
	}

	format, err := pickFormat(video.Formats.WithAudioChannels(), ceiling)
	if err != nil {
		return nil, err
	}

	if err := validation.CheckSize(format.ContentLength, ceiling); err != nil {
		return nil, err
	}

	stream, size, err := client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, utils.WrapError(utils.ErrFetchFailed, "failed to get video stream: "+err.Error(), nil)
	}
	defer stream.Close()

	ext := extensionFromMimeType(format.MimeType)
	dest := filepath.Join(d.cfg.DownloadDir, uuid.NewString()+ext)

	logutils.Log.WithFields(map[string]any{
		"video_id": videoID,
		"title":    video.Title,
		"dest":     dest,
	}).Info("Starting native YouTube download")

	written, err := downloader.StreamToFile(ctx, stream, dest, ceiling, d.cfg.DownloadSettings.ChunkSize, size, reporter)
	if err != nil {
		return nil, err
	}

	return &downloader.Result{
		Path:  dest,
		Name:  validation.SanitizeFilename(video.Title + ext),
		Size:  written,
		Title: video.Title,
	}, nil
}

// pickFormat prefers the largest muxed format that still fits the ceiling;
// formats with unknown size are a last resort.
func pickFormat(formats youtube.FormatList, ceiling int64) (*youtube.Format, error) {
	if len(formats) == 0 {
		return nil, utils.WrapError(utils.ErrFetchFailed, "no downloadable format with audio", nil)
	}

	var best *youtube.Format
	for i := range formats {
		format := &formats[i]
		if format.ContentLength <= 0 {
			continue
		}
		if ceiling > 0 && format.ContentLength > ceiling {
			continue
		}
		if best == nil || format.ContentLength > best.ContentLength {
			best = format
		}
	}
	if best != nil {
		return best, nil
	}

	for i := range formats {
		if formats[i].ContentLength <= 0 {
			return &formats[i], nil
		}
	}

	return nil, utils.WrapError(utils.ErrSizeExceeded, "every available format exceeds the size limit", nil)
}

func extensionFromMimeType(mimeType string) string {
	mimeType = strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(mimeType, "video/mp4"), strings.HasPrefix(mimeType, "audio/mp4"):
		return ".mp4"
	case strings.HasPrefix(mimeType, "video/webm"), strings.HasPrefix(mimeType, "audio/webm"):
		return ".webm"
	case strings.HasPrefix(mimeType, "video/3gpp"):
		return ".3gp"
	default:
		return ".mp4"
	}
}
