package handlers

import (
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/taskflowbot/internal/chat"
	"github.com/edgard/taskflowbot/internal/menu"
)

// ToEvent converts an update into a chat event. Updates that carry no user
// interaction (edits, channel posts, messages without text) report false.
func ToEvent(update *models.Update) (chat.Event, bool) {
	if update == nil {
		return chat.Event{}, false
	}

	if cq := update.CallbackQuery; cq != nil {
		ev := chat.Event{
			Kind:       chat.EventInline,
			UserID:     cq.From.ID,
			ChatID:     cq.From.ID,
			Name:       cq.Data,
			CallbackID: cq.ID,
		}
		switch {
		case cq.Message.Message != nil:
			ev.ChatID = cq.Message.Message.Chat.ID
			ev.MessageID = cq.Message.Message.ID
		case cq.Message.InaccessibleMessage != nil:
			ev.ChatID = cq.Message.InaccessibleMessage.Chat.ID
			ev.MessageID = cq.Message.InaccessibleMessage.MessageID
		}
		return ev, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return chat.Event{}, false
	}

	ev := chat.Event{UserID: msg.From.ID, ChatID: msg.Chat.ID, Text: msg.Text}
	switch {
	case strings.HasPrefix(msg.Text, "/"):
		ev.Kind = chat.EventCommand
		ev.Name, ev.Args = parseCommand(msg.Text)
	case menu.IsLabel(msg.Text):
		ev.Kind = chat.EventButton
		ev.Name = msg.Text
	default:
		ev.Kind = chat.EventText
	}
	return ev, true
}

// parseCommand splits "/task@bot 12" into "task" and "12".
func parseCommand(text string) (name, args string) {
	head, rest, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	name, _, _ = strings.Cut(head, "@")
	return strings.ToLower(name), strings.TrimSpace(rest)
}

// ReplyMarkup converts a keyboard into Bot API markup. A nil keyboard yields
// a nil markup, which removes an inline keyboard on edit.
func ReplyMarkup(kb *chat.Keyboard) models.ReplyMarkup {
	if kb == nil {
		return nil
	}

	if kb.Inline {
		rows := make([][]models.InlineKeyboardButton, 0, len(kb.Rows))
		for _, row := range kb.Rows {
			buttons := make([]models.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, models.InlineKeyboardButton{Text: b.Text, CallbackData: b.Token})
			}
			rows = append(rows, buttons)
		}
		return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
	}

	rows := make([][]models.KeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]models.KeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, models.KeyboardButton{Text: b.Text})
		}
		rows = append(rows, buttons)
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:        rows,
		ResizeKeyboard:  true,
		OneTimeKeyboard: kb.OneTime,
	}
}
