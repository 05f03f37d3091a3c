package dispatch

import (
	"log/slog"

	"github.com/edgard/taskflowbot/internal/callback"
	"github.com/edgard/taskflowbot/internal/chat"
	"github.com/edgard/taskflowbot/internal/menu"
	"github.com/edgard/taskflowbot/internal/session"
	"github.com/edgard/taskflowbot/internal/wizard"
)

// Command describes a slash command for registration and the command menu.
type Command struct {
	Name        string
	Description string
}

// Commands are the slash commands the bot answers.
var Commands = []Command{
	{"start", "Show the main menu"},
	{"add", "Add a task"},
	{"list", "All active tasks"},
	{"today", "Tasks for today"},
	{"overdue", "Overdue tasks"},
	{"stats", "Statistics"},
	{"task", "Show a task: /task <id>"},
	{"cancel", "Cancel adding a task"},
	{"help", "Help"},
}

// textSteps are the wizard steps that consume free text.
var textSteps = []session.Step{
	session.StepAwaitingTitle,
	session.StepAwaitingDesc,
	session.StepAwaitingManualTime,
}

// NewTaskRouter builds the full routing table of the bot.
//
// Commands work at any step and leave the wizard alone, except /add and
// /cancel. While the wizard waits for text, reply-keyboard labels other than
// Add and Cancel are taken as input.
func NewTaskRouter(sessions session.Repository, wiz *wizard.Controller, q *Queries, logger *slog.Logger) *Router {
	r := NewRouter(sessions, logger, q.messages.GeneralError)

	r.Handle(chat.EventCommand, "start", q.Welcome)
	r.Handle(chat.EventCommand, "help", q.Help)
	r.Handle(chat.EventCommand, "add", wiz.Start)
	r.Handle(chat.EventCommand, "cancel", wiz.Cancel)
	r.Handle(chat.EventCommand, "list", q.All)
	r.Handle(chat.EventCommand, "today", q.Today)
	r.Handle(chat.EventCommand, "overdue", q.Overdue)
	r.Handle(chat.EventCommand, "stats", q.Stats)
	r.Handle(chat.EventCommand, "task", q.TaskCard)
	r.Handle(chat.EventCommand, "settings", q.Settings)

	r.Handle(chat.EventButton, menu.Add, wiz.Start)
	r.Handle(chat.EventButton, menu.Cancel, wiz.Cancel)
	r.Handle(chat.EventButton, menu.Tasks, q.TasksMenu)
	r.Handle(chat.EventButton, menu.Stats, q.Stats)
	r.Handle(chat.EventButton, menu.Settings, q.Settings)
	r.Handle(chat.EventButton, menu.Today, q.Today)
	r.Handle(chat.EventButton, menu.Overdue, q.Overdue)
	r.Handle(chat.EventButton, menu.All, q.All)
	r.Handle(chat.EventButton, menu.Back, q.Back)

	// Add and Cancel keep their meaning inside text steps.
	r.Handle(chat.EventButton, menu.Add, wiz.Start, textSteps...)
	r.Handle(chat.EventButton, menu.Cancel, wiz.Cancel, textSteps...)

	for _, kind := range []chat.EventKind{chat.EventText, chat.EventButton} {
		r.Handle(kind, "", wiz.Title, session.StepAwaitingTitle)
		r.Handle(kind, "", wiz.Description, session.StepAwaitingDesc)
		r.Handle(kind, "", wiz.ManualTime, session.StepAwaitingManualTime)
	}
	r.Handle(chat.EventText, "", Hint(MsgUseCalendar), session.StepAwaitingDate)
	r.Handle(chat.EventText, "", Hint(MsgUseTimeSlots), session.StepAwaitingTime)

	r.Handle(chat.EventInline, string(callback.KindDate), wiz.Date)
	r.Handle(chat.EventInline, string(callback.KindTime), wiz.Time)
	r.Handle(chat.EventInline, string(callback.KindCalendar), wiz.Navigate)
	r.Handle(chat.EventInline, string(callback.KindCancel), wiz.Cancel)
	r.Handle(chat.EventInline, string(callback.KindIgnore), q.Ignore)
	r.Handle(chat.EventInline, string(callback.KindDone), q.TaskAction)
	r.Handle(chat.EventInline, string(callback.KindStart), q.TaskAction)
	r.Handle(chat.EventInline, string(callback.KindDelete), q.TaskAction)

	r.Fallback(q.Unknown)
	return r
}
