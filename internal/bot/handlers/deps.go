package handlers

import (
	"context"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/taskflowbot/internal/config"
	"github.com/edgard/taskflowbot/internal/dispatch"
)

// Messenger is the part of the Bot API the handlers call. *bot.Bot
// implements it.
type Messenger interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *tgbot.EditMessageTextParams) (*models.Message, error)
	EditMessageReplyMarkup(ctx context.Context, params *tgbot.EditMessageReplyMarkupParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *tgbot.AnswerCallbackQueryParams) (bool, error)
}

// HandlerDeps provides dependencies for Telegram handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Router *dispatch.Router

	// Messenger overrides the *bot.Bot passed to handlers. Tests set it.
	Messenger Messenger
}

func (d HandlerDeps) messenger(b *tgbot.Bot) Messenger {
	if d.Messenger != nil {
		return d.Messenger
	}
	return b
}
