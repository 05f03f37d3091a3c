package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock is a settable time source for the lazy today/overdue rules.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestStore(t *testing.T, now time.Time) (Store, *clock) {
	t.Helper()

	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { CloseDB(db) })

	c := &clock{t: now}
	return NewStore(db, nil, WithClock(c.now), WithLocation(time.Local)), c
}

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.Local)
}

func ids(tasks []Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestCreateAndGetTask(t *testing.T) {
	t.Parallel()

	now := at(2024, time.June, 10, 8, 15)
	store, _ := newTestStore(t, now)
	ctx := context.Background()

	deadline := at(2024, time.June, 15, 9, 0)
	id, err := store.CreateTask(ctx, "Buy milk", "2%", deadline)
	require.NoError(t, err)
	assert.Positive(t, id)

	task, err := store.GetTask(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, task)

	assert.Equal(t, id, task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2%", task.Description)
	assert.Equal(t, StatusPending, task.Status)
	assert.True(t, deadline.Equal(task.Deadline.Time), "deadline %v != %v", task.Deadline.Time, deadline)
	assert.Equal(t, "2024-06-10 08:15:00", task.CreatedAt.Format(DateTimeLayout))
}

func TestCreateTask_Validation(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, at(2024, time.June, 10, 8, 0))
	ctx := context.Background()

	_, err := store.CreateTask(ctx, "   ", "desc", at(2024, time.June, 11, 9, 0))
	require.ErrorIs(t, err, ErrEmptyTitle)

	_, err = store.CreateTask(ctx, "title", "desc", time.Time{})
	require.Error(t, err)

	id, err := store.CreateTask(ctx, "no description", "", at(2024, time.June, 11, 9, 0))
	require.NoError(t, err)
	task, err := store.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, task.Description)
}

func TestListTasks_AllActive(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, at(2024, time.June, 10, 8, 0))
	ctx := context.Background()

	late, _ := store.CreateTask(ctx, "late", "", at(2024, time.July, 1, 9, 0))
	early, _ := store.CreateTask(ctx, "early", "", at(2024, time.June, 1, 9, 0))
	done, _ := store.CreateTask(ctx, "done", "", at(2024, time.June, 20, 9, 0))
	running, _ := store.CreateTask(ctx, "running", "", at(2024, time.June, 12, 9, 0))

	_, err := store.UpdateTaskStatus(ctx, done, StatusCompleted)
	require.NoError(t, err)
	_, err = store.UpdateTaskStatus(ctx, running, StatusRunning)
	require.NoError(t, err)

	tasks, err := store.ListTasks(ctx, Filter{Kind: FilterAllActive})
	require.NoError(t, err)
	assert.Equal(t, []int64{early, running, late}, ids(tasks))
}

func TestListTasks_Today(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, at(2024, time.June, 15, 12, 0))
	ctx := context.Background()

	midnight, _ := store.CreateTask(ctx, "midnight", "", at(2024, time.June, 15, 0, 0))
	lastMinute, _ := store.CreateTask(ctx, "last minute", "", time.Date(2024, time.June, 15, 23, 59, 59, 0, time.Local))
	morningPast, _ := store.CreateTask(ctx, "morning", "", at(2024, time.June, 15, 9, 0))
	_, _ = store.CreateTask(ctx, "yesterday", "", at(2024, time.June, 14, 23, 59))
	_, _ = store.CreateTask(ctx, "tomorrow", "", at(2024, time.June, 16, 0, 0))
	completed, _ := store.CreateTask(ctx, "completed", "", at(2024, time.June, 15, 18, 0))
	running, _ := store.CreateTask(ctx, "running", "", at(2024, time.June, 15, 17, 0))

	_, err := store.UpdateTaskStatus(ctx, completed, StatusCompleted)
	require.NoError(t, err)
	_, err = store.UpdateTaskStatus(ctx, running, StatusRunning)
	require.NoError(t, err)

	tasks, err := store.ListTasks(ctx, Filter{Kind: FilterToday})
	require.NoError(t, err)
	assert.Equal(t, []int64{midnight, morningPast, running, lastMinute}, ids(tasks),
		"today covers the whole calendar day regardless of time of day")
}

func TestListTasks_OverdueExcludesRunning(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, at(2024, time.June, 15, 12, 0))
	ctx := context.Background()

	pendingPast, _ := store.CreateTask(ctx, "pending past", "", at(2024, time.June, 15, 11, 59))
	olderPast, _ := store.CreateTask(ctx, "older", "", at(2024, time.June, 1, 9, 0))
	runningPast, _ := store.CreateTask(ctx, "running past", "", at(2024, time.June, 14, 9, 0))
	completedPast, _ := store.CreateTask(ctx, "completed past", "", at(2024, time.June, 14, 9, 0))
	_, _ = store.CreateTask(ctx, "exactly now", "", at(2024, time.June, 15, 12, 0))
	_, _ = store.CreateTask(ctx, "future", "", at(2024, time.June, 16, 9, 0))

	_, err := store.UpdateTaskStatus(ctx, runningPast, StatusRunning)
	require.NoError(t, err)
	_, err = store.UpdateTaskStatus(ctx, completedPast, StatusCompleted)
	require.NoError(t, err)

	tasks, err := store.ListTasks(ctx, Filter{Kind: FilterOverdue})
	require.NoError(t, err)
	assert.Equal(t, []int64{olderPast, pendingPast}, ids(tasks))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Overdue, "running task must not count as overdue")
}

func TestListTasks_ByID(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, at(2024, time.June, 10, 8, 0))
	ctx := context.Background()

	id, _ := store.CreateTask(ctx, "only", "", at(2024, time.June, 11, 9, 0))

	tasks, err := store.ListTasks(ctx, Filter{Kind: FilterByID, ID: id})
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, ids(tasks))

	tasks, err = store.ListTasks(ctx, Filter{Kind: FilterByID, ID: id + 100})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = store.ListTasks(ctx, Filter{Kind: FilterKind(42)})
	require.Error(t, err)
}

func TestUpdateTaskStatus(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, at(2024, time.June, 10, 8, 0))
	ctx := context.Background()

	id, _ := store.CreateTask(ctx, "task", "", at(2024, time.June, 11, 9, 0))

	// Any status may move to any other, including back from completed.
	for _, status := range []Status{StatusRunning, StatusCompleted, StatusPending, StatusCompleted} {
		ok, err := store.UpdateTaskStatus(ctx, id, status)
		require.NoError(t, err)
		assert.True(t, ok)

		task, err := store.GetTask(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, status, task.Status)
	}

	ok, err := store.UpdateTaskStatus(ctx, id+1, StatusRunning)
	require.NoError(t, err)
	assert.False(t, ok, "missing id is reported, not an error")

	_, err = store.UpdateTaskStatus(ctx, id, Status("archived"))
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, at(2024, time.June, 10, 8, 0))
	ctx := context.Background()

	id, _ := store.CreateTask(ctx, "task", "", at(2024, time.June, 11, 9, 0))

	ok, err := store.DeleteTask(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	task, err := store.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, task)

	ok, err = store.DeleteTask(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStats_BuyMilkScenario(t *testing.T) {
	t.Parallel()

	store, c := newTestStore(t, at(2024, time.June, 10, 8, 0))
	ctx := context.Background()

	_, err := store.CreateTask(ctx, "Buy milk", "2%", at(2024, time.June, 15, 9, 0))
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Pending: 1}, stats)

	c.t = at(2024, time.June, 15, 9, 1)

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Pending: 1, Overdue: 1}, stats, "overdue overlaps pending")
}

func TestStats_Empty(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, at(2024, time.June, 10, 8, 0))

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, at(2024, time.June, 10, 8, 0))
	require.NoError(t, store.Ping(context.Background()))
	require.NoError(t, store.RunSQLMaintenance(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, store.RunSQLMaintenance(ctx), context.Canceled)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	t.Parallel()

	db, err := NewDB(":memory:")
	require.NoError(t, err)
	defer CloseDB(db)

	require.NoError(t, ApplyMigrations(db.DB, ":memory:"))
	require.Error(t, ApplyMigrations(nil, "x"))
	require.Error(t, ApplyMigrations(db.DB, ""))
}

func TestExtractDBNameFromPath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"tasks.db":                     "tasks.db",
		"file:tasks.db?_pragma=foo(1)": "tasks.db",
		"file:my%20tasks.db":           "my tasks.db",
		":memory:":                     ":memory:",
	}
	for in, want := range tests {
		assert.Equal(t, want, ExtractDBNameFromPath(in), in)
	}
}
