package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	tgfconfig "github.com/gofile-uploader/telegram-gofile-bot/internal/config"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/logutils"
)

type Bot struct {
	Api *tgbotapi.BotAPI
}

func InitBot(config *tgfconfig.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		logutils.Log.WithError(err).Error("Error creating bot")
		return nil, fmt.Errorf("error creating bot: %w", err)
	}
	logutils.Log.Infof("Authorized on account %s", api.Self.UserName)
	return &Bot{Api: api}, nil
}

func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.Api.Send(msg); err != nil {
		logutils.Log.WithError(err).Errorf("Message to chat %d not sent", chatID)
	}
}

func (b *Bot) SendErrorMessage(chatID int64, text string) {
	logutils.Log.Error(text)
	b.SendMessage(chatID, text)
}

// SendStatus posts the initial status message for an operation and returns
// its message ID so later updates can edit it in place.
func (b *Bot) SendStatus(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := b.Api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (b *Bot) UpdateStatus(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	_, err := b.Api.Send(edit)
	return err
}

// FileURL resolves a Telegram file reference to its Bot API download URL and
// the size the API reports for it.
func (b *Bot) FileURL(fileID string) (string, int64, error) {
	file, err := b.Api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", 0, err
	}
	return file.Link(b.Api.Token), int64(file.FileSize), nil
}
