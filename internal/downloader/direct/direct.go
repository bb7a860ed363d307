// Package direct streams an arbitrary HTTP(S) URL into ephemeral storage:
// HEAD precheck against the size ceiling, then a chunked GET with continuous
// ceiling enforcement.
package direct

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/config"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/downloader"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/logutils"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/progress"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/utils"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/validation"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

type Downloader struct {
	cfg    *config.Config
	url    string
	client *http.Client
}

func New(cfg *config.Config, rawURL string) *Downloader {
	return &Downloader{
		cfg: cfg,
		url: rawURL,
		// Request timeout bounds the HEAD call; the GET stream is bounded by
		// the per-download deadline on ctx instead.
		client: &http.Client{},
	}
}

func (d *Downloader) Fetch(ctx context.Context, reporter *progress.Reporter) (*downloader.Result, error) {
	ceiling := d.cfg.DownloadSettings.MaxDownloadSize

	if d.cfg.DownloadSettings.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.DownloadSettings.DownloadTimeout)
		defer cancel()
	}

	declared, err := d.preflight(ctx, ceiling)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, http.NoBody)
	if err != nil {
		return nil, utils.WrapError(utils.ErrInvalidInput, err.Error(), nil)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, classifyTransportErr(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, utils.WrapError(utils.ErrFetchFailed, fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	total := declared
	if contentLength := resp.ContentLength; contentLength > 0 {
		total = contentLength
		if err := validation.CheckSize(contentLength, ceiling); err != nil {
			return nil, err
		}
	}

	name := validation.FilenameFromURL(d.url, resp.Header)
	dest := downloader.UniquePath(d.cfg.DownloadDir, name)

	logutils.Log.WithFields(map[string]any{
		"url":  d.url,
		"dest": dest,
	}).Info("Starting direct download")

	size, err := downloader.StreamToFile(ctx, resp.Body, dest, ceiling, d.cfg.DownloadSettings.ChunkSize, total, reporter)
	if err != nil {
		return nil, err
	}

	return &downloader.Result{
		Path: dest,
		Name: name,
		Size: size,
	}, nil
}

// preflight issues the HEAD request. A Content-Length over the ceiling fails
// fast with SizeExceeded before any GET is opened.
func (d *Downloader) preflight(ctx context.Context, ceiling int64) (int64, error) {
	reqCtx := ctx
	if d.cfg.DownloadSettings.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, d.cfg.DownloadSettings.RequestTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, d.url, http.NoBody)
	if err != nil {
		return 0, utils.WrapError(utils.ErrInvalidInput, err.Error(), nil)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, classifyTransportErr(reqCtx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, utils.WrapError(utils.ErrFetchFailed, fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	var declared int64
	if headerValue := resp.Header.Get("Content-Length"); headerValue != "" {
		if parsed, parseErr := strconv.ParseInt(headerValue, 10, 64); parseErr == nil {
			declared = parsed
		}
	}

	if err := validation.CheckSize(declared, ceiling); err != nil {
		return 0, err
	}
	return declared, nil
}

func classifyTransportErr(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return utils.WrapError(utils.ErrTimeout, "download deadline elapsed", nil)
	case errors.Is(ctx.Err(), context.Canceled):
		return utils.WrapError(utils.ErrCancelled, "download cancelled", nil)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return utils.WrapError(utils.ErrTimeout, err.Error(), nil)
	}
	return utils.WrapError(utils.ErrNetworkError, err.Error(), nil)
}
