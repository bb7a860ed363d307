package handlers

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/transfer"
)

// fileRef extracts a transferable file reference from a message, covering
// every media kind the chat platform can deliver. Names fall back to a
// timestamped default when the platform does not carry one.
func fileRef(msg *tgbotapi.Message) (*transfer.TelegramFileRef, bool) {
	now := time.Now().Unix()

	switch {
	case msg.Document != nil:
		name := msg.Document.FileName
		if name == "" {
			name = fmt.Sprintf("document_%d.bin", now)
		}
		return &transfer.TelegramFileRef{
			FileID:       msg.Document.FileID,
			DeclaredSize: int64(msg.Document.FileSize),
			DeclaredName: name,
			MediaKind:    "document",
		}, true

	case msg.Video != nil:
		name := msg.Video.FileName
		if name == "" {
			name = fmt.Sprintf("video_%d.mp4", now)
		}
		return &transfer.TelegramFileRef{
			FileID:       msg.Video.FileID,
			DeclaredSize: int64(msg.Video.FileSize),
			DeclaredName: name,
			MediaKind:    "video",
		}, true

	case msg.Audio != nil:
		name := msg.Audio.FileName
		if name == "" {
			name = fmt.Sprintf("audio_%d.mp3", now)
		}
		return &transfer.TelegramFileRef{
			FileID:       msg.Audio.FileID,
			DeclaredSize: int64(msg.Audio.FileSize),
			DeclaredName: name,
			MediaKind:    "audio",
		}, true

	case len(msg.Photo) > 0:
		// Telegram sends multiple sizes; the last one is the largest.
		photo := msg.Photo[len(msg.Photo)-1]
		return &transfer.TelegramFileRef{
			FileID:       photo.FileID,
			DeclaredSize: int64(photo.FileSize),
			DeclaredName: fmt.Sprintf("photo_%d.jpg", now),
			MediaKind:    "photo",
		}, true

	case msg.Voice != nil:
		return &transfer.TelegramFileRef{
			FileID:       msg.Voice.FileID,
			DeclaredSize: int64(msg.Voice.FileSize),
			DeclaredName: fmt.Sprintf("voice_%d.ogg", now),
			MediaKind:    "voice",
		}, true

	case msg.VideoNote != nil:
		return &transfer.TelegramFileRef{
			FileID:       msg.VideoNote.FileID,
			DeclaredSize: int64(msg.VideoNote.FileSize),
			DeclaredName: fmt.Sprintf("video_note_%d.mp4", now),
			MediaKind:    "video_note",
		}, true

	case msg.Animation != nil:
		name := msg.Animation.FileName
		if name == "" {
			name = fmt.Sprintf("animation_%d.gif", now)
		}
		return &transfer.TelegramFileRef{
			FileID:       msg.Animation.FileID,
			DeclaredSize: int64(msg.Animation.FileSize),
			DeclaredName: name,
			MediaKind:    "animation",
		}, true
	}

	return nil, false
}
