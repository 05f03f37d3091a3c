package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrInvalidStatus is returned when a status outside pending/running/completed is written.
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrEmptyTitle is returned when creating a task without a title.
	ErrEmptyTitle = errors.New("task title is empty")
)

// Store defines the interface for task persistence.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// CreateTask inserts a pending task and returns its id.
	CreateTask(ctx context.Context, title, description string, deadline time.Time) (int64, error)

	// ListTasks returns the tasks selected by filter, ordered by deadline.
	ListTasks(ctx context.Context, filter Filter) ([]Task, error)

	// GetTask retrieves a task by id. Returns nil, nil if not found.
	GetTask(ctx context.Context, id int64) (*Task, error)

	// UpdateTaskStatus sets the status of a task and reports whether it existed.
	// Any status may move to any other.
	UpdateTaskStatus(ctx context.Context, id int64, status Status) (bool, error)

	// DeleteTask removes a task and reports whether it existed.
	DeleteTask(ctx context.Context, id int64) (bool, error)

	// Stats returns the aggregate task counts.
	Stats(ctx context.Context) (Stats, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// Option configures the sqlx store.
type Option func(*sqlxStore)

// WithClock overrides the source of "now" used by the today/overdue rules
// and by created_at.
func WithClock(now func() time.Time) Option {
	return func(s *sqlxStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone in which deadlines are interpreted.
func WithLocation(loc *time.Location) Option {
	return func(s *sqlxStore) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
	loc    *time.Location
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger, opts ...Option) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const selectTasks = `SELECT id, title, description, deadline, status, created_at FROM task`

func (s *sqlxStore) format(t time.Time) string {
	return t.In(s.loc).Format(DateTimeLayout)
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateTask inserts a new task with status pending and created_at = now.
func (s *sqlxStore) CreateTask(ctx context.Context, title, description string, deadline time.Time) (int64, error) {
	if strings.TrimSpace(title) == "" {
		return 0, ErrEmptyTitle
	}
	if deadline.IsZero() {
		return 0, fmt.Errorf("task must have a deadline")
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO task (title, description, deadline, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		title, description, s.format(deadline), string(StatusPending), s.format(s.now()),
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating task", "title", title, "error", err)
		return 0, fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read id of created task: %w", err)
	}

	s.logger.DebugContext(ctx, "Task created", "task_id", id, "deadline", s.format(deadline))
	return id, nil
}

// ListTasks returns the tasks selected by filter.
func (s *sqlxStore) ListTasks(ctx context.Context, filter Filter) ([]Task, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var (
		query string
		args  []any
	)

	switch filter.Kind {
	case FilterAllActive:
		query = selectTasks + ` WHERE status != ? ORDER BY deadline`
		args = []any{string(StatusCompleted)}
	case FilterToday:
		day := s.now().In(s.loc).Format("2006-01-02")
		query = selectTasks + ` WHERE status != ? AND deadline >= ? AND deadline <= ? ORDER BY deadline`
		args = []any{string(StatusCompleted), day + " 00:00:00", day + " 23:59:59"}
	case FilterOverdue:
		query = selectTasks + ` WHERE status = ? AND deadline < ? ORDER BY deadline`
		args = []any{string(StatusPending), s.format(s.now())}
	case FilterByID:
		query = selectTasks + ` WHERE id = ?`
		args = []any{filter.ID}
	default:
		return nil, fmt.Errorf("unknown task filter %d", filter.Kind)
	}

	var tasks []Task
	err := s.db.SelectContext(ctx, &tasks, query, args...)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while listing tasks", "filter", filter.Kind, "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing tasks", "filter", filter.Kind, "error", err)
		return nil, fmt.Errorf("failed to list %s tasks: %w", filter.Kind, err)
	}

	for i := range tasks {
		tasks[i].Deadline = tasks[i].Deadline.in(s.loc)
		tasks[i].CreatedAt = tasks[i].CreatedAt.in(s.loc)
	}

	s.logger.DebugContext(ctx, "Listed tasks", "filter", filter.Kind, "count", len(tasks))
	return tasks, nil
}

// GetTask retrieves a task by id. Returns nil, nil if not found.
func (s *sqlxStore) GetTask(ctx context.Context, id int64) (*Task, error) {
	tasks, err := s.ListTasks(ctx, Filter{Kind: FilterByID, ID: id})
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		s.logger.DebugContext(ctx, "No task found", "task_id", id)
		return nil, nil
	}
	return &tasks[0], nil
}

// UpdateTaskStatus sets the status of a task.
func (s *sqlxStore) UpdateTaskStatus(ctx context.Context, id int64, status Status) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	result, err := s.db.ExecContext(ctx, `UPDATE task SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating task status", "task_id", id, "status", status, "error", err)
		return false, fmt.Errorf("failed to update status of task %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	s.logger.DebugContext(ctx, "Task status updated", "task_id", id, "status", status, "found", affected > 0)
	return affected > 0, nil
}

// DeleteTask removes a task by id.
func (s *sqlxStore) DeleteTask(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM task WHERE id = ?`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting task", "task_id", id, "error", err)
		return false, fmt.Errorf("failed to delete task %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	s.logger.DebugContext(ctx, "Task deleted", "task_id", id, "found", affected > 0)
	return affected > 0, nil
}

// Stats returns five independent counts in a single query.
func (s *sqlxStore) Stats(ctx context.Context) (Stats, error) {
	query := `
        SELECT
            COUNT(*)                                                 AS total,
            COALESCE(SUM(status = 'pending'), 0)                     AS pending,
            COALESCE(SUM(status = 'running'), 0)                     AS running,
            COALESCE(SUM(status = 'completed'), 0)                   AS completed,
            COALESCE(SUM(status = 'pending' AND deadline < ?), 0)    AS overdue
        FROM task;
    `

	var stats Stats
	if err := s.db.GetContext(ctx, &stats, query, s.format(s.now())); err != nil {
		s.logger.ErrorContext(ctx, "Error computing task stats", "error", err)
		return Stats{}, fmt.Errorf("failed to compute task stats: %w", err)
	}
	return stats, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}

// compile-time check
var _ Store = (*sqlxStore)(nil)
