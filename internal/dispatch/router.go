// Package dispatch routes chat events to task handlers using an explicit
// table keyed by event kind, trigger name and wizard step.
package dispatch

import (
	"cmp"
	"context"
	"io"
	"log/slog"
	"slices"

	"github.com/edgard/taskflowbot/internal/callback"
	"github.com/edgard/taskflowbot/internal/chat"
	"github.com/edgard/taskflowbot/internal/logger"
	"github.com/edgard/taskflowbot/internal/session"
)

// HandlerFunc handles one event for a user whose wizard session is s
// (nil when idle).
type HandlerFunc func(ctx context.Context, ev chat.Event, s *session.Session) ([]chat.Action, error)

// Key identifies a route. An empty Name matches any name of that kind;
// session.StepAny matches any step.
type Key struct {
	Kind chat.EventKind
	Name string
	Step session.Step
}

// Router resolves events to handlers. Resolution tries, in order:
//
//	(kind, name, step)
//	(kind, "",   step)
//	(kind, name, any)
//	(kind, "",   any)
//
// and falls back to the fallback handler.
type Router struct {
	sessions     session.Repository
	logger       *slog.Logger
	routes       map[Key]HandlerFunc
	fallback     HandlerFunc
	generalError string
}

// NewRouter creates an empty router. generalError is sent when a handler fails.
func NewRouter(sessions session.Repository, logger *slog.Logger, generalError string) *Router {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Router{
		sessions:     sessions,
		logger:       logger.With("component", "router"),
		routes:       make(map[Key]HandlerFunc),
		fallback:     func(context.Context, chat.Event, *session.Session) ([]chat.Action, error) { return nil, nil },
		generalError: generalError,
	}
}

// Handle registers h for the given kind, name and steps. With no steps the
// route matches any step. Registering the same key twice replaces the handler.
func (r *Router) Handle(kind chat.EventKind, name string, h HandlerFunc, steps ...session.Step) {
	if len(steps) == 0 {
		steps = []session.Step{session.StepAny}
	}
	for _, step := range steps {
		r.routes[Key{Kind: kind, Name: name, Step: step}] = h
	}
}

// Fallback sets the handler for events no route matches.
func (r *Router) Fallback(h HandlerFunc) {
	if h != nil {
		r.fallback = h
	}
}

// RouteName returns the name an event is routed by: the command name, the
// button label, the inline token prefix, or "" for free text.
func RouteName(ev chat.Event) string {
	switch ev.Kind {
	case chat.EventInline:
		return string(callback.Prefix(ev.Name))
	case chat.EventText:
		return ""
	default:
		return ev.Name
	}
}

// Resolve returns the handler for ev when the user is at step, and whether
// a route (rather than the fallback) matched.
func (r *Router) Resolve(ev chat.Event, step session.Step) (HandlerFunc, bool) {
	name := RouteName(ev)
	candidates := []Key{
		{ev.Kind, name, step},
		{ev.Kind, "", step},
		{ev.Kind, name, session.StepAny},
		{ev.Kind, "", session.StepAny},
	}
	for _, k := range candidates {
		if h, ok := r.routes[k]; ok {
			return h, true
		}
	}
	return r.fallback, false
}

// Routes lists the registered keys in a stable order.
func (r *Router) Routes() []Key {
	keys := make([]Key, 0, len(r.routes))
	for k := range r.routes {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		return cmp.Or(
			cmp.Compare(a.Kind, b.Kind),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.Step, b.Step),
		)
	})
	return keys
}

// Dispatch loads the user's session, runs the matching handler and returns
// the actions to execute. Handler errors are logged and turned into the
// general error reply. Inline events are always acknowledged exactly once.
func (r *Router) Dispatch(ctx context.Context, ev chat.Event) []chat.Action {
	log := r.logger.With("request_id", logger.RequestID(ctx))

	s, err := r.sessions.Get(ctx, ev.UserID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load session", "user_id", ev.UserID, "error", err)
		return r.failure(ev)
	}

	step := session.StepOf(s)
	h, matched := r.Resolve(ev, step)
	log.DebugContext(ctx, "Dispatching event",
		"kind", ev.Kind, "name", RouteName(ev), "step", step, "matched", matched, "user_id", ev.UserID)

	actions, err := h(ctx, ev, s)
	if err != nil {
		log.ErrorContext(ctx, "Handler failed",
			"kind", ev.Kind, "name", RouteName(ev), "step", step, "user_id", ev.UserID, "error", err)
		return r.failure(ev)
	}

	if ev.Kind == chat.EventInline && !acknowledged(actions) {
		actions = append(actions, chat.Acknowledge(""))
	}
	return actions
}

func (r *Router) failure(ev chat.Event) []chat.Action {
	actions := []chat.Action{chat.SendText(r.generalError, nil)}
	if ev.Kind == chat.EventInline {
		actions = append(actions, chat.Acknowledge(""))
	}
	return actions
}

func acknowledged(actions []chat.Action) bool {
	return slices.ContainsFunc(actions, func(a chat.Action) bool {
		return a.Kind == chat.ActionAcknowledge
	})
}
