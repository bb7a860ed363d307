// Package telegram fetches a file from Telegram's file storage into ephemeral
// storage via the Bot API file endpoint.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	tgfbot "github.com/gofile-uploader/telegram-gofile-bot/internal/bot"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/config"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/downloader"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/logutils"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/progress"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/utils"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/validation"
)

type Downloader struct {
	cfg          *config.Config
	bot          *tgfbot.Bot
	fileID       string
	declaredName string
}

func New(cfg *config.Config, b *tgfbot.Bot, fileID, declaredName string) *Downloader {
	return &Downloader{
		cfg:          cfg,
		bot:          b,
		fileID:       fileID,
		declaredName: declaredName,
	}
}

func (d *Downloader) Fetch(ctx context.Context, reporter *progress.Reporter) (*downloader.Result, error) {
	ceiling := d.cfg.DownloadSettings.MaxDownloadSize

	if d.cfg.DownloadSettings.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.DownloadSettings.DownloadTimeout)
		defer cancel()
	}

	fileURL, declaredSize, err := d.bot.FileURL(d.fileID)
	if err != nil {
		return nil, utils.WrapError(utils.ErrFetchFailed, err.Error(), map[string]any{
			"file_id": d.fileID,
		})
	}

	if err := validation.CheckSize(declaredSize, ceiling); err != nil {
		return nil, err
	}

	name := validation.SanitizeFilename(d.declaredName)
	dest := filepath.Join(d.cfg.TempDir, uuid.NewString()+filepath.Ext(name))

	logutils.Log.WithFields(map[string]any{
		"file_id": d.fileID,
		"dest":    dest,
	}).Info("Downloading Telegram file")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, http.NoBody)
	if err != nil {
		return nil, utils.WrapError(utils.ErrFetchFailed, err.Error(), nil)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, utils.WrapError(utils.ErrTimeout, "download deadline elapsed", nil)
		case errors.Is(ctx.Err(), context.Canceled):
			return nil, utils.WrapError(utils.ErrCancelled, "download cancelled", nil)
		}
		return nil, utils.WrapError(utils.ErrNetworkError, err.Error(), nil)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, utils.WrapError(utils.ErrFetchFailed, fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	total := declaredSize
	if resp.ContentLength > 0 {
		total = resp.ContentLength
	}

	size, err := downloader.StreamToFile(ctx, resp.Body, dest, ceiling, d.cfg.DownloadSettings.ChunkSize, total, reporter)
	if err != nil {
		return nil, err
	}

	if info, statErr := os.Stat(dest); statErr != nil || info.Size() == 0 {
		os.Remove(dest)
		return nil, utils.WrapError(utils.ErrFetchFailed, "downloaded file missing or empty", nil)
	}

	return &downloader.Result{
		Path: dest,
		Name: name,
		Size: size,
	}, nil
}
