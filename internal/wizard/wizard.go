// Package wizard implements the five-step add-task conversation:
// title, description, date, time slot or manual HH:MM.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/edgard/taskflowbot/internal/callback"
	"github.com/edgard/taskflowbot/internal/chat"
	"github.com/edgard/taskflowbot/internal/menu"
	"github.com/edgard/taskflowbot/internal/picker"
	"github.com/edgard/taskflowbot/internal/session"
)

// ErrNoSession is returned when a step handler runs for a user without a
// wizard in progress.
var ErrNoSession = errors.New("no wizard session")

// User-facing texts.
const (
	MsgAskTitle       = "Enter the task title:"
	MsgEmptyTitle     = "The title cannot be empty. Enter the task title:"
	MsgAskDescription = "Enter a description:"
	MsgAskDate        = "Choose a date:"
	MsgAskManualTime  = "Enter the time as HH:MM (for example, 14:30):"
	MsgBadManualTime  = "❌ Invalid format. Enter the time as HH:MM (for example, 14:30):"
	MsgCancelled      = "Cancelled"
	MsgMainMenu       = "Main menu:"
	MsgDone           = "Done!"

	NoticeExpired  = "This selection has expired, start again with ➕ Add"
	NoticeBadDate  = "❌ Invalid date"
	NoticePastDate = "❌ This date is in the past, choose another one"
	NoticeBadTime  = "❌ Invalid time"
)

const (
	dateLayout    = "2006-01-02"
	displayDate   = "02.01.2006"
	displayDeadln = "02.01.2006 15:04"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// ParseClock parses a strict 24h HH:MM time of day. Surrounding whitespace
// is ignored.
func ParseClock(s string) (hour, minute int, ok bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, true
}

// TaskCreator persists a finished wizard.
type TaskCreator interface {
	CreateTask(ctx context.Context, title, description string, deadline time.Time) (int64, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source used for the calendar and past-date checks.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLocation sets the time zone deadlines are built in.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// Controller drives the add-task wizard. It keeps state only in the session
// repository, so a single Controller serves all users.
type Controller struct {
	sessions session.Repository
	tasks    TaskCreator
	logger   *slog.Logger
	now      func() time.Time
	loc      *time.Location
}

// New creates a wizard Controller.
func New(sessions session.Repository, tasks TaskCreator, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Controller{
		sessions: sessions,
		tasks:    tasks,
		logger:   logger.With("component", "wizard"),
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) today() time.Time {
	return c.now().In(c.loc)
}

// Start opens a new wizard, replacing any session in progress.
func (c *Controller) Start(ctx context.Context, ev chat.Event, _ *session.Session) ([]chat.Action, error) {
	if err := c.sessions.Set(ctx, ev.UserID, &session.Session{Step: session.StepAwaitingTitle}); err != nil {
		return nil, fmt.Errorf("failed to start wizard: %w", err)
	}
	c.logger.DebugContext(ctx, "Wizard started", "user_id", ev.UserID)
	return []chat.Action{chat.SendText(MsgAskTitle, menu.CancelOnly())}, nil
}

// Cancel discards the user's session from any step. Inline cancels also
// close the message they came from.
func (c *Controller) Cancel(ctx context.Context, ev chat.Event, s *session.Session) ([]chat.Action, error) {
	if err := c.sessions.Clear(ctx, ev.UserID); err != nil {
		return nil, fmt.Errorf("failed to cancel wizard: %w", err)
	}
	c.logger.DebugContext(ctx, "Wizard cancelled", "user_id", ev.UserID, "step", session.StepOf(s))

	if ev.Kind == chat.EventInline {
		return []chat.Action{
			chat.EditText(MsgCancelled, nil),
			chat.SendText(MsgMainMenu, menu.Main()),
			chat.Acknowledge(""),
		}, nil
	}
	return []chat.Action{chat.SendText(MsgCancelled, menu.Main())}, nil
}

// Title stores the task title and asks for the description.
func (c *Controller) Title(ctx context.Context, ev chat.Event, s *session.Session) ([]chat.Action, error) {
	if s == nil {
		return nil, ErrNoSession
	}
	title := strings.TrimSpace(ev.Text)
	if title == "" {
		return []chat.Action{chat.SendText(MsgEmptyTitle, menu.CancelOnly())}, nil
	}

	next := *s
	next.Title = title
	next.Step = session.StepAwaitingDesc
	if err := c.sessions.Set(ctx, ev.UserID, &next); err != nil {
		return nil, fmt.Errorf("failed to store title: %w", err)
	}
	return []chat.Action{chat.SendText(MsgAskDescription, menu.CancelOnly())}, nil
}

// Description stores the description and shows the calendar.
func (c *Controller) Description(ctx context.Context, ev chat.Event, s *session.Session) ([]chat.Action, error) {
	if s == nil {
		return nil, ErrNoSession
	}

	next := *s
	next.Description = strings.TrimSpace(ev.Text)
	next.Step = session.StepAwaitingDate
	if err := c.sessions.Set(ctx, ev.UserID, &next); err != nil {
		return nil, fmt.Errorf("failed to store description: %w", err)
	}
	return []chat.Action{chat.SendText(MsgAskDate, picker.Calendar(c.today(), 0, 0))}, nil
}

// Navigate redraws the calendar for another month. It works outside the
// wizard too, since it changes nothing but the keyboard.
func (c *Controller) Navigate(ctx context.Context, ev chat.Event, _ *session.Session) ([]chat.Action, error) {
	data, err := callback.Parse(ev.Name)
	if err != nil || data.Kind != callback.KindCalendar {
		c.logger.WarnContext(ctx, "Malformed calendar token", "token", ev.Name, "error", err)
		return []chat.Action{chat.Acknowledge("")}, nil
	}
	year, month := picker.NormalizeMonth(data.Year, data.Month)
	return []chat.Action{
		chat.EditKeyboard(picker.Calendar(c.today(), year, month)),
		chat.Acknowledge(""),
	}, nil
}

// Date stores the selected day and shows the time slots. Impossible and
// past dates are rejected and the step is kept.
func (c *Controller) Date(ctx context.Context, ev chat.Event, s *session.Session) ([]chat.Action, error) {
	if session.StepOf(s) != session.StepAwaitingDate {
		return []chat.Action{chat.Acknowledge(NoticeExpired)}, nil
	}

	data, err := callback.Parse(ev.Name)
	if err != nil || data.Kind != callback.KindDate {
		c.logger.WarnContext(ctx, "Malformed date token", "token", ev.Name, "error", err)
		return []chat.Action{chat.Acknowledge(NoticeBadDate)}, nil
	}
	if data.Year < 1 || data.Year > 9999 ||
		data.Month < 1 || data.Month > 12 || data.Day < 1 || data.Day > picker.DaysIn(data.Year, data.Month) {
		return []chat.Action{chat.Acknowledge(NoticeBadDate)}, nil
	}

	day := time.Date(data.Year, time.Month(data.Month), data.Day, 0, 0, 0, 0, c.loc)
	now := c.today()
	if day.Before(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)) {
		return []chat.Action{chat.Acknowledge(NoticePastDate)}, nil
	}

	next := *s
	next.Date = day.Format(dateLayout)
	next.Step = session.StepAwaitingTime
	if err := c.sessions.Set(ctx, ev.UserID, &next); err != nil {
		return nil, fmt.Errorf("failed to store date: %w", err)
	}

	text := fmt.Sprintf("Selected date: %s\n\nChoose a time:", day.Format(displayDate))
	return []chat.Action{
		chat.EditText(text, picker.TimeSlots()),
		chat.Acknowledge(""),
	}, nil
}

// Time either finishes the wizard with a fixed slot or switches to manual
// time entry.
func (c *Controller) Time(ctx context.Context, ev chat.Event, s *session.Session) ([]chat.Action, error) {
	if session.StepOf(s) != session.StepAwaitingTime {
		return []chat.Action{chat.Acknowledge(NoticeExpired)}, nil
	}

	data, err := callback.Parse(ev.Name)
	if err != nil || data.Kind != callback.KindTime {
		c.logger.WarnContext(ctx, "Malformed time token", "token", ev.Name, "error", err)
		return []chat.Action{chat.Acknowledge(NoticeBadTime)}, nil
	}

	if data.Manual {
		next := *s
		next.Step = session.StepAwaitingManualTime
		if err := c.sessions.Set(ctx, ev.UserID, &next); err != nil {
			return nil, fmt.Errorf("failed to switch to manual time: %w", err)
		}
		return []chat.Action{chat.EditText(MsgAskManualTime, nil), chat.Acknowledge("")}, nil
	}

	hour, minute, ok := ParseClock(data.Clock)
	if !ok {
		return []chat.Action{chat.Acknowledge(NoticeBadTime)}, nil
	}

	confirmation, err := c.finish(ctx, ev.UserID, s, hour, minute)
	if err != nil {
		return nil, err
	}
	return []chat.Action{
		chat.EditText(confirmation, nil),
		chat.SendText(MsgDone, menu.Main()),
		chat.Acknowledge(""),
	}, nil
}

// ManualTime finishes the wizard with a typed HH:MM time. Invalid input
// re-prompts and keeps the step.
func (c *Controller) ManualTime(ctx context.Context, ev chat.Event, s *session.Session) ([]chat.Action, error) {
	if s == nil {
		return nil, ErrNoSession
	}

	hour, minute, ok := ParseClock(ev.Text)
	if !ok {
		return []chat.Action{chat.SendText(MsgBadManualTime, menu.CancelOnly())}, nil
	}

	confirmation, err := c.finish(ctx, ev.UserID, s, hour, minute)
	if err != nil {
		return nil, err
	}
	return []chat.Action{chat.SendText(confirmation, menu.Main())}, nil
}

// finish creates the task and destroys the session. On failure the session
// is left untouched so the user can retry the last step.
func (c *Controller) finish(ctx context.Context, userID int64, s *session.Session, hour, minute int) (string, error) {
	deadline, err := Deadline(s, hour, minute, c.loc)
	if err != nil {
		return "", err
	}

	id, err := c.tasks.CreateTask(ctx, s.Title, s.Description, deadline)
	if err != nil {
		return "", fmt.Errorf("failed to create task from wizard: %w", err)
	}

	if err := c.sessions.Clear(ctx, userID); err != nil {
		// The task is already stored, so this is not reported to the user.
		c.logger.ErrorContext(ctx, "Failed to clear wizard session", "user_id", userID, "error", err)
	}

	c.logger.InfoContext(ctx, "Task created via wizard", "user_id", userID, "task_id", id)
	return Confirmation(s.Title, s.Description, deadline), nil
}

// Deadline combines the session date with a time of day in loc.
func Deadline(s *session.Session, hour, minute int, loc *time.Location) (time.Time, error) {
	if s == nil {
		return time.Time{}, ErrNoSession
	}
	day, err := time.ParseInLocation(dateLayout, s.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("session has invalid date %q: %w", s.Date, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}

// Confirmation renders the task-created message.
func Confirmation(title, description string, deadline time.Time) string {
	return fmt.Sprintf("✅ Task created!\n\n📋 %s\n📝 %s\n⏰ %s", title, description, deadline.Format(displayDeadln))
}
