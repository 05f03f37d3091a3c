// Package session holds the per-user add-task wizard state and the
// repositories that store it.
package session

import "context"

// Step is the position of a user inside the add-task wizard.
type Step string

const (
	// StepIdle means the user has no wizard in progress.
	StepIdle               Step = ""
	StepAwaitingTitle      Step = "awaiting_title"
	StepAwaitingDesc       Step = "awaiting_description"
	StepAwaitingDate       Step = "awaiting_date"
	StepAwaitingTime       Step = "awaiting_time"
	StepAwaitingManualTime Step = "awaiting_manual_time"

	// StepAny matches every step in routing tables. It is never stored.
	StepAny Step = "*"
)

// TextInput reports whether the step consumes free text from the user.
func (s Step) TextInput() bool {
	switch s {
	case StepAwaitingTitle, StepAwaitingDesc, StepAwaitingManualTime:
		return true
	}
	return false
}

// Session is the accumulated wizard state of one user.
type Session struct {
	Step        Step   `json:"step"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	// Date is the selected calendar day as YYYY-MM-DD.
	Date string `json:"date,omitempty"`
}

// StepOf returns the step of s, treating a nil session as idle.
func StepOf(s *Session) Step {
	if s == nil {
		return StepIdle
	}
	return s.Step
}

// Repository stores at most one session per user. Get returns nil, nil when
// the user has no session.
type Repository interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Set(ctx context.Context, userID int64, s *Session) error
	Clear(ctx context.Context, userID int64) error
}
