package handlers

import (
	"context"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/taskflowbot/internal/chat"
	"github.com/edgard/taskflowbot/internal/logger"
)

// NewEventHandler returns the handler that feeds updates into the task router.
func NewEventHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return eventHandler{deps}.Handle
}

// NewDefaultHandler returns the event handler wrapped in the access check,
// for use as the bot's default handler.
func NewDefaultHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return AllowedUsers(deps)(NewEventHandler(deps))
}

// eventHandler converts updates into chat events, routes them and executes
// the resulting actions.
type eventHandler struct {
	deps HandlerDeps
}

func (h eventHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "event", "request_id", logger.RequestID(ctx))

	ev, ok := ToEvent(update)
	if !ok {
		log.DebugContext(ctx, "Ignoring update without user interaction")
		return
	}

	actions := h.deps.Router.Dispatch(ctx, ev)
	Execute(ctx, h.deps.messenger(b), log, ev, actions)
}

// Execute performs actions in order on behalf of ev. Edits need the message
// an inline selection came from; without one they are sent as new messages.
// Failures are logged and the remaining actions still run.
func Execute(ctx context.Context, m Messenger, log *slog.Logger, ev chat.Event, actions []chat.Action) {
	for _, a := range actions {
		var err error

		switch a.Kind {
		case chat.ActionSendText:
			err = send(ctx, m, ev.ChatID, a)

		case chat.ActionEditText:
			if ev.MessageID == 0 {
				err = send(ctx, m, ev.ChatID, a)
				break
			}
			_, err = m.EditMessageText(ctx, &tgbot.EditMessageTextParams{
				ChatID:      ev.ChatID,
				MessageID:   ev.MessageID,
				Text:        a.Text,
				ReplyMarkup: ReplyMarkup(a.Keyboard),
			})

		case chat.ActionEditKeyboard:
			if ev.MessageID == 0 {
				log.WarnContext(ctx, "Keyboard edit without a message, skipping", "chat_id", ev.ChatID)
				continue
			}
			_, err = m.EditMessageReplyMarkup(ctx, &tgbot.EditMessageReplyMarkupParams{
				ChatID:      ev.ChatID,
				MessageID:   ev.MessageID,
				ReplyMarkup: ReplyMarkup(a.Keyboard),
			})

		case chat.ActionAcknowledge:
			if ev.CallbackID == "" {
				continue
			}
			_, err = m.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
				CallbackQueryID: ev.CallbackID,
				Text:            a.Text,
			})

		default:
			log.WarnContext(ctx, "Unknown action kind", "kind", a.Kind)
			continue
		}

		if err != nil {
			log.ErrorContext(ctx, "Failed to execute action", "action", a.Kind, "chat_id", ev.ChatID, "error", err)
		}
	}
}

func send(ctx context.Context, m Messenger, chatID int64, a chat.Action) error {
	_, err := m.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:      chatID,
		Text:        a.Text,
		ReplyMarkup: ReplyMarkup(a.Keyboard),
	})
	return err
}
