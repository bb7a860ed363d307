// Package handlers routes Telegram updates into transfers and commands.
package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	tgfbot "github.com/gofile-uploader/telegram-gofile-bot/internal/bot"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/config"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/database"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/logutils"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/transfer"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/utils"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/validation"
)

type Handler struct {
	cfg  *config.Config
	bot  *tgfbot.Bot
	db   database.Database
	orch *transfer.Orchestrator
}

func NewHandler(cfg *config.Config, b *tgfbot.Bot, db database.Database, orch *transfer.Orchestrator) *Handler {
	return &Handler{
		cfg:  cfg,
		bot:  b,
		db:   db,
		orch: orch,
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	if banned, err := h.db.IsBanned(ctx, chatID); err == nil && banned {
		logutils.Log.WithField("chat_id", chatID).Debug("Ignoring update from banned user")
		return
	}
	if err := h.db.EnsureUser(ctx, chatID, msg.From.UserName); err != nil {
		logutils.Log.WithError(err).WithField("chat_id", chatID).Warn("Failed to ensure user record")
	}

	if msg.IsCommand() {
		h.handleCommand(ctx, msg)
		return
	}

	if ref, ok := fileRef(msg); ok {
		h.handleFile(ctx, chatID, ref)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text != "" {
		h.handleURL(ctx, chatID, text)
		return
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start", "help":
		h.bot.SendMessage(chatID, helpText(h.cfg))
	case "cancel":
		if h.orch.Cancel(chatID) {
			h.bot.SendMessage(chatID, "Operation cancelled.")
		} else {
			h.bot.SendMessage(chatID, "No active operation to cancel.")
		}
	case "link":
		h.handleLink(ctx, chatID, strings.TrimSpace(msg.CommandArguments()))
	case "unlink":
		if err := h.db.SetGoFileToken(ctx, chatID, ""); err != nil {
			h.bot.SendErrorMessage(chatID, "Failed to unlink GoFile account.")
			return
		}
		h.bot.SendMessage(chatID, "GoFile account unlinked. Uploads will be anonymous.")
	case "stats":
		h.handleStats(ctx, chatID)
	default:
		h.bot.SendMessage(chatID, "Unknown command. Send /help for usage.")
	}
}

func (h *Handler) handleLink(ctx context.Context, chatID int64, token string) {
	if token == "" {
		h.bot.SendMessage(chatID, "Usage: /link <gofile-api-token>")
		return
	}
	if err := h.db.SetGoFileToken(ctx, chatID, token); err != nil {
		h.bot.SendErrorMessage(chatID, "Failed to link GoFile account.")
		return
	}
	h.bot.SendMessage(chatID, "GoFile account linked. Uploads will go to your account.")
}

func (h *Handler) handleStats(ctx context.Context, chatID int64) {
	stats, err := h.db.GetUserStats(ctx, chatID)
	if err != nil {
		h.bot.SendErrorMessage(chatID, "Failed to load stats.")
		return
	}
	h.bot.SendMessage(chatID, fmt.Sprintf("Files uploaded: %d\nTotal size: %s",
		stats.Files, utils.FormatSize(stats.TotalBytes)))
}

func (h *Handler) handleFile(ctx context.Context, chatID int64, ref *transfer.TelegramFileRef) {
	if err := validation.CheckSize(ref.DeclaredSize, h.cfg.UploadSettings.MaxUploadSize); err != nil {
		h.bot.SendErrorMessage(chatID, utils.TransferErrorMessage(err))
		return
	}

	req := &transfer.Request{
		OwnerID:      chatID,
		Telegram:     ref,
		MaxSizeBytes: h.cfg.UploadSettings.MaxUploadSize,
	}
	h.runTransfer(ctx, req)
}

func (h *Handler) handleURL(ctx context.Context, chatID int64, rawURL string) {
	if err := validation.ValidateURL(rawURL); err != nil {
		h.bot.SendMessage(chatID, "Send me a file or a valid http(s) URL.")
		return
	}

	req := &transfer.Request{
		OwnerID: chatID,
		Remote: &transfer.RemoteURL{
			URL:          rawURL,
			ExtractAudio: h.cfg.YTDLPSettings.ExtractAudio,
		},
		MaxSizeBytes: h.cfg.UploadSettings.MaxUploadSize,
	}
	h.runTransfer(ctx, req)
}

// runTransfer posts the status message and drives the orchestrator. Exactly
// one terminal message is sent per operation.
func (h *Handler) runTransfer(ctx context.Context, req *transfer.Request) {
	chatID := req.OwnerID

	if token, err := h.db.GetGoFileToken(ctx, chatID); err == nil {
		req.Token = token
	}

	messageID, err := h.bot.SendStatus(chatID, "Starting transfer...")
	if err != nil {
		logutils.Log.WithError(err).WithField("chat_id", chatID).Error("Failed to send status message")
		return
	}
	sink := tgfbot.NewStatusSink(h.bot, chatID, messageID)

	result := h.orch.Run(ctx, req, sink)

	final := formatResult(result)
	if err := h.bot.UpdateStatus(chatID, messageID, final); err != nil {
		// The status message may have been deleted; fall back to a new one.
		h.bot.SendMessage(chatID, final)
	}
}

func formatResult(result *transfer.Result) string {
	if !result.OK {
		return "Transfer failed: " + result.Message
	}
	var b strings.Builder
	b.WriteString("Uploaded to GoFile!\n\n")
	fmt.Fprintf(&b, "Download: %s\n", result.DownloadURL)
	if result.DirectLink != "" {
		fmt.Fprintf(&b, "Direct link: %s\n", result.DirectLink)
	}
	fmt.Fprintf(&b, "Size: %s", utils.FormatSize(result.BytesTransferred))
	return b.String()
}

func helpText(cfg *config.Config) string {
	return fmt.Sprintf(`Send me a file or a URL and I will upload it to GoFile.

Supported inputs:
- Any document, video, audio, photo or voice message (up to %s)
- Direct download URLs
- Media platform URLs (YouTube, TikTok, Instagram, ...)

Commands:
/link <token> - upload into your GoFile account
/unlink - go back to anonymous uploads
/cancel - cancel the current operation
/stats - your upload stats`,
		utils.FormatSize(cfg.UploadSettings.MaxUploadSize))
}
