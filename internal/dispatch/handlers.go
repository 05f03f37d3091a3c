package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/edgard/taskflowbot/internal/callback"
	"github.com/edgard/taskflowbot/internal/chat"
	"github.com/edgard/taskflowbot/internal/database"
	"github.com/edgard/taskflowbot/internal/menu"
	"github.com/edgard/taskflowbot/internal/report"
	"github.com/edgard/taskflowbot/internal/session"
)

// Messages are the configurable reply texts.
type Messages struct {
	Welcome      string
	Help         string
	GeneralError string
	Settings     string
}

// Fixed reply texts.
const (
	MsgChoose         = "Choose:"
	MsgMainMenu       = "Main menu:"
	MsgUnknown        = "I didn't get that. Use the menu below or /help."
	MsgUseCalendar    = "Choose a date on the calendar above, or press ❌ Cancel."
	MsgUseTimeSlots   = "Choose a time above, or press ❌ Cancel."
	MsgTaskUsage      = "Usage: /task <id>"
	MsgTaskNotFound   = "❌ Task not found"
	MsgTaskCompleted  = "✅ Task completed!"
	MsgTaskStarted    = "▶️ Task in progress!"
	MsgTaskDeleted    = "🗑 Task deleted!"
	NoticeTaskMissing = "❌ Task not found"
)

// TaskStore is the part of database.Store the query handlers use.
type TaskStore interface {
	ListTasks(ctx context.Context, filter database.Filter) ([]database.Task, error)
	GetTask(ctx context.Context, id int64) (*database.Task, error)
	UpdateTaskStatus(ctx context.Context, id int64, status database.Status) (bool, error)
	DeleteTask(ctx context.Context, id int64) (bool, error)
	Stats(ctx context.Context) (database.Stats, error)
}

// Queries holds the handlers that read and act on stored tasks, plus the
// static menu replies.
type Queries struct {
	store    TaskStore
	messages Messages
	logger   *slog.Logger
}

// NewQueries creates the query handlers.
func NewQueries(store TaskStore, messages Messages, logger *slog.Logger) *Queries {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Queries{store: store, messages: messages, logger: logger.With("component", "queries")}
}

func reply(text string, kb *chat.Keyboard) []chat.Action {
	return []chat.Action{chat.SendText(text, kb)}
}

// Welcome greets the user with the main menu.
func (q *Queries) Welcome(context.Context, chat.Event, *session.Session) ([]chat.Action, error) {
	return reply(q.messages.Welcome, menu.Main()), nil
}

// Help lists the available commands.
func (q *Queries) Help(context.Context, chat.Event, *session.Session) ([]chat.Action, error) {
	return reply(q.messages.Help, nil), nil
}

// Settings is a placeholder reply.
func (q *Queries) Settings(context.Context, chat.Event, *session.Session) ([]chat.Action, error) {
	return reply(q.messages.Settings, menu.Main()), nil
}

// TasksMenu opens the tasks submenu.
func (q *Queries) TasksMenu(context.Context, chat.Event, *session.Session) ([]chat.Action, error) {
	return reply(MsgChoose, menu.TasksMenu()), nil
}

// Back returns to the main menu.
func (q *Queries) Back(context.Context, chat.Event, *session.Session) ([]chat.Action, error) {
	return reply(MsgMainMenu, menu.Main()), nil
}

// Unknown answers events no route matched.
func (q *Queries) Unknown(ctx context.Context, ev chat.Event, _ *session.Session) ([]chat.Action, error) {
	if ev.Kind == chat.EventInline {
		q.logger.WarnContext(ctx, "Unrecognized inline token", "token", ev.Name, "user_id", ev.UserID)
		return []chat.Action{chat.Acknowledge("")}, nil
	}
	return reply(MsgUnknown, menu.Main()), nil
}

// Ignore silently acknowledges no-op inline cells.
func (q *Queries) Ignore(context.Context, chat.Event, *session.Session) ([]chat.Action, error) {
	return []chat.Action{chat.Acknowledge("")}, nil
}

// Hint returns a handler that replies with a fixed text and keeps the session.
func Hint(text string) HandlerFunc {
	return func(context.Context, chat.Event, *session.Session) ([]chat.Action, error) {
		return reply(text, menu.CancelOnly()), nil
	}
}

func (q *Queries) list(ctx context.Context, kind database.FilterKind, render func([]database.Task) string) ([]chat.Action, error) {
	tasks, err := q.store.ListTasks(ctx, database.Filter{Kind: kind})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s tasks: %w", kind, err)
	}
	return reply(render(tasks), menu.Main()), nil
}

// Today lists active tasks due today.
func (q *Queries) Today(ctx context.Context, _ chat.Event, _ *session.Session) ([]chat.Action, error) {
	return q.list(ctx, database.FilterToday, report.Today)
}

// Overdue lists pending tasks past their deadline.
func (q *Queries) Overdue(ctx context.Context, _ chat.Event, _ *session.Session) ([]chat.Action, error) {
	return q.list(ctx, database.FilterOverdue, report.Overdue)
}

// All lists all active tasks.
func (q *Queries) All(ctx context.Context, _ chat.Event, _ *session.Session) ([]chat.Action, error) {
	return q.list(ctx, database.FilterAllActive, report.All)
}

// Stats shows the task counters.
func (q *Queries) Stats(ctx context.Context, _ chat.Event, _ *session.Session) ([]chat.Action, error) {
	stats, err := q.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return reply(report.Stats(stats), menu.Main()), nil
}

// TaskCard shows one task with its action buttons. The id comes from the
// command arguments.
func (q *Queries) TaskCard(ctx context.Context, ev chat.Event, _ *session.Session) ([]chat.Action, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(ev.Args), 10, 64)
	if err != nil || id <= 0 {
		return reply(MsgTaskUsage, nil), nil
	}

	task, err := q.store.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load task %d: %w", id, err)
	}
	if task == nil {
		return reply(MsgTaskNotFound, menu.Main()), nil
	}
	return reply(report.Card(*task), menu.TaskActions(task.ID)), nil
}

// TaskAction applies done/start/delete tokens. On success the message is
// replaced by a confirmation; a missing task only gets a notice.
func (q *Queries) TaskAction(ctx context.Context, ev chat.Event, _ *session.Session) ([]chat.Action, error) {
	data, err := callback.Parse(ev.Name)
	if err != nil {
		q.logger.WarnContext(ctx, "Malformed task action token", "token", ev.Name, "error", err)
		return []chat.Action{chat.Acknowledge("")}, nil
	}

	var (
		found   bool
		confirm string
	)
	switch data.Kind {
	case callback.KindDone:
		found, err = q.store.UpdateTaskStatus(ctx, data.TaskID, database.StatusCompleted)
		confirm = MsgTaskCompleted
	case callback.KindStart:
		found, err = q.store.UpdateTaskStatus(ctx, data.TaskID, database.StatusRunning)
		confirm = MsgTaskStarted
	case callback.KindDelete:
		found, err = q.store.DeleteTask(ctx, data.TaskID)
		confirm = MsgTaskDeleted
	default:
		return []chat.Action{chat.Acknowledge("")}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply %s to task %d: %w", data.Kind, data.TaskID, err)
	}
	if !found {
		return []chat.Action{chat.Acknowledge(NoticeTaskMissing)}, nil
	}

	q.logger.InfoContext(ctx, "Task action applied", "action", data.Kind, "task_id", data.TaskID, "user_id", ev.UserID)
	return []chat.Action{chat.EditText(confirm, nil), chat.Acknowledge("")}, nil
}
