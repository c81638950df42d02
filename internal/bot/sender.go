package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"expenses_bot/internal/domain"
	"expenses_bot/internal/logger"
)

// Client is the part of *tgbotapi.BotAPI used to talk to Telegram.
type Client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Sender delivers OutgoingReply values through the Bot API.
type Sender struct {
	client Client
}

func NewSender(client Client) *Sender {
	return &Sender{client: client}
}

// Reply edits r.EditMessageID in place when set and falls back to a new message if
// the edit is rejected.
func (s *Sender) Reply(ctx context.Context, r domain.OutgoingReply) error {
	if r.EditMessageID != 0 && (r.Keyboard == nil || r.Keyboard.Kind == domain.KeyboardInline) {
		edit := tgbotapi.NewEditMessageText(r.ChannelID, int(r.EditMessageID), r.Text)
		if r.Keyboard != nil {
			markup := inlineMarkup(r.Keyboard)
			edit.ReplyMarkup = &markup
		}
		_, err := s.client.Send(edit)
		if err == nil {
			return nil
		}
		logger.FromContext(ctx).Debug("edit failed, sending new message", "error", err)
	}

	msg := tgbotapi.NewMessage(r.ChannelID, r.Text)
	if markup := replyMarkup(r.Keyboard); markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := s.client.Send(msg)
	return err
}

func inlineMarkup(kb *domain.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// replyMarkup maps a keyboard to the value expected in MessageConfig.ReplyMarkup.
func replyMarkup(kb *domain.Keyboard) interface{} {
	if kb == nil {
		return nil
	}
	switch kb.Kind {
	case domain.KeyboardInline:
		if len(kb.Rows) == 0 {
			return nil
		}
		return inlineMarkup(kb)
	case domain.KeyboardReply:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
		for _, row := range kb.Rows {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(b.Text))
			}
			rows = append(rows, buttons)
		}
		markup := tgbotapi.NewReplyKeyboard(rows...)
		markup.ResizeKeyboard = true
		return markup
	case domain.KeyboardRemove:
		return tgbotapi.NewRemoveKeyboard(true)
	}
	return nil
}
