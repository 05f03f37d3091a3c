package handlers

import (
	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/taskflowbot/internal/dispatch"
)

// RegisteredHandler represents a handler with its match rule and middleware.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands returns the handlers to register with the bot, keyed by
// what they match. Every slash command and every inline selection goes
// through the task router behind the access check. Plain text and reply
// keyboard buttons reach the router through NewDefaultHandler.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler, len(dispatch.Commands)+1)

	event := NewEventHandler(deps)
	guarded := []tgbot.Middleware{AllowedUsers(deps)}

	for _, cmd := range dispatch.Commands {
		handlers["/"+cmd.Name] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     cmd.Name,
			Handler:     event,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Middleware:  guarded,
		}
	}

	handlers["callback"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     "",
		Handler:     event,
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  guarded,
	}

	return handlers
}

// BotCommands lists the slash commands for the client command menu.
func BotCommands() []models.BotCommand {
	cmds := make([]models.BotCommand, 0, len(dispatch.Commands))
	for _, c := range dispatch.Commands {
		cmds = append(cmds, models.BotCommand{Command: c.Name, Description: c.Description})
	}
	return cmds
}
