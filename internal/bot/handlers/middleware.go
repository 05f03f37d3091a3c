// Package handlers contains the Telegram side of the bot: update handlers,
// their registration table and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AllowedUsers creates a middleware that only lets configured users through.
// Others get the "not authorized" message, or a callback notice for inline
// selections, and processing stops. An empty allow list admits everyone.
func AllowedUsers(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			userID, ok := senderID(update)
			if !ok || deps.Config.IsUserAllowed(userID) {
				next(ctx, bot, update)
				return
			}

			log := deps.Logger.With("middleware", "AllowedUsers")
			log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID)

			m := deps.messenger(bot)
			text := deps.Config.Messages.NotAuthorized

			if update.CallbackQuery != nil {
				if _, err := m.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
					CallbackQueryID: update.CallbackQuery.ID,
					Text:            text,
				}); err != nil {
					log.ErrorContext(ctx, "Failed to answer unauthorized callback", "error", err, "user_id", userID)
				}
				return
			}

			chatID := update.Message.Chat.ID
			if _, err := m.SendMessage(ctx, &tgbot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
				log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "chat_id", chatID)
			}
		}
	}
}

func senderID(update *models.Update) (int64, bool) {
	switch {
	case update == nil:
		return 0, false
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID, true
	default:
		return 0, false
	}
}
