// Package factory selects the fetcher for a transfer source.
package factory

import (
	tgfbot "github.com/gofile-uploader/telegram-gofile-bot/internal/bot"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/config"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/downloader"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/downloader/direct"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/downloader/telegram"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/downloader/youtube"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/downloader/ytdlp"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/logutils"
)

// ForURL routes a URL to the extraction engine (when enabled and the host is
// on the platform allow-list), the native YouTube resolver (engine disabled),
// or a direct chunked HTTP download.
func ForURL(cfg *config.Config, rawURL, formatHint string, extractAudio bool) downloader.Downloader {
	if downloader.IsPlatformURL(rawURL) {
		if cfg.YTDLPSettings.Enabled {
			logutils.Log.WithField("url", rawURL).Info("Using yt-dlp for supported platform")
			return ytdlp.New(cfg, rawURL, formatHint, extractAudio)
		}
		if youtube.Match(rawURL) {
			logutils.Log.WithField("url", rawURL).Info("Using native YouTube resolver")
			return youtube.New(cfg, rawURL)
		}
	}
	logutils.Log.WithField("url", rawURL).Info("Using direct download")
	return direct.New(cfg, rawURL)
}

// ForTelegramFile fetches a file the user sent to the chat.
func ForTelegramFile(cfg *config.Config, b *tgfbot.Bot, fileID, declaredName string) downloader.Downloader {
	return telegram.New(cfg, b, fileID, declaredName)
}
