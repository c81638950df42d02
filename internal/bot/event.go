package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"expenses_bot/internal/domain"
)

// EventFromUpdate converts a Telegram update into an IncomingEvent. Updates without a
// sender, without text and anything other than messages and button presses are skipped.
func EventFromUpdate(u tgbotapi.Update) (domain.IncomingEvent, bool) {
	switch {
	case u.Message != nil:
		msg := u.Message
		if msg.From == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
			return domain.IncomingEvent{}, false
		}
		return domain.IncomingEvent{
			UpdateID:  int64(u.UpdateID),
			UserID:    msg.From.ID,
			ChannelID: msg.Chat.ID,
			MessageID: int64(msg.MessageID),
			Kind:      domain.EventText,
			Text:      msg.Text,
			Private:   msg.Chat.IsPrivate(),
		}, true

	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
			return domain.IncomingEvent{}, false
		}
		return domain.IncomingEvent{
			UpdateID:   int64(u.UpdateID),
			UserID:     cq.From.ID,
			ChannelID:  cq.Message.Chat.ID,
			MessageID:  int64(cq.Message.MessageID),
			Kind:       domain.EventButton,
			ButtonData: cq.Data,
			CallbackID: cq.ID,
			Private:    cq.Message.Chat.IsPrivate(),
		}, true
	}
	return domain.IncomingEvent{}, false
}

// parseCommand splits "/last@my_bot 10" into ("last", "10").
func parseCommand(text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text, " ")
	name = strings.TrimPrefix(head, "/")
	name, _, _ = strings.Cut(name, "@")
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(name), strings.TrimSpace(rest), true
}
