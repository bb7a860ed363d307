package bot

// StatusSink adapts one status message to the progress.Sink interface.
// Update edits the message in place; the chat message may have been deleted
// by the user, in which case the edit error propagates and the reporter
// swallows it.
type StatusSink struct {
	bot       *Bot
	chatID    int64
	messageID int
}

func NewStatusSink(b *Bot, chatID int64, messageID int) *StatusSink {
	return &StatusSink{bot: b, chatID: chatID, messageID: messageID}
}

func (s *StatusSink) Update(text string) error {
	return s.bot.UpdateStatus(s.chatID, s.messageID, text)
}
