package database

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateTimeLayout is the on-disk format of task timestamps. It sorts
// lexicographically in chronological order, so range filters and ORDER BY
// work on the raw strings.
const DateTimeLayout = "2006-01-02 15:04:05"

// DateTime is a wall-clock timestamp persisted as DateTimeLayout text.
// Scanned values carry time.Local; the store re-anchors them to its location.
type DateTime struct {
	time.Time
}

// Value implements driver.Valuer.
func (d DateTime) Value() (driver.Value, error) {
	return d.Format(DateTimeLayout), nil
}

// Scan implements sql.Scanner.
func (d *DateTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into DateTime", src)
	}
}

func (d *DateTime) parse(s string) error {
	// Older rows may carry fractional seconds.
	if len(s) > len(DateTimeLayout) {
		s = s[:len(DateTimeLayout)]
	}
	t, err := time.ParseInLocation(DateTimeLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("invalid datetime %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// in re-anchors the wall clock of d to loc without shifting it.
func (d DateTime) in(loc *time.Location) DateTime {
	if d.IsZero() || loc == nil {
		return d
	}
	y, m, day := d.Date()
	return DateTime{time.Date(y, m, day, d.Hour(), d.Minute(), d.Second(), 0, loc)}
}

// Status is the lifecycle state of a task. Overdue is not a status; it is
// derived from the deadline at query time.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted:
		return true
	}
	return false
}

// Task is a single reminder row.
type Task struct {
	ID          int64    `db:"id"`
	Title       string   `db:"title"`
	Description string   `db:"description"`
	Deadline    DateTime `db:"deadline"`
	Status      Status   `db:"status"`
	CreatedAt   DateTime `db:"created_at"`
}

// Stats holds independent task counts. Overdue tasks are also counted as
// pending, so the counts do not add up to Total.
type Stats struct {
	Total     int `db:"total"`
	Pending   int `db:"pending"`
	Running   int `db:"running"`
	Completed int `db:"completed"`
	Overdue   int `db:"overdue"`
}

// FilterKind selects which tasks ListTasks returns.
type FilterKind int

const (
	// FilterAllActive returns every task that is not completed.
	FilterAllActive FilterKind = iota
	// FilterToday returns active tasks due on the current calendar day.
	FilterToday
	// FilterOverdue returns pending tasks whose deadline has passed.
	FilterOverdue
	// FilterByID returns the task with Filter.ID, if any.
	FilterByID
)

func (k FilterKind) String() string {
	switch k {
	case FilterAllActive:
		return "all_active"
	case FilterToday:
		return "today"
	case FilterOverdue:
		return "overdue"
	case FilterByID:
		return "by_id"
	default:
		return "unknown"
	}
}

// Filter is the argument of ListTasks.
type Filter struct {
	Kind FilterKind
	ID   int64
}
