package tasks

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/taskflowbot/internal/config"
	"github.com/edgard/taskflowbot/internal/database"
)

// vacuumStore counts maintenance runs and can be told to fail.
type vacuumStore struct {
	database.Store
	runs int
	err  error
}

func (s *vacuumStore) RunSQLMaintenance(ctx context.Context) error {
	s.runs++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("maintenance must run with a deadline")
	}
	return s.err
}

func newTaskDeps(store database.Store) TaskDeps {
	return TaskDeps{
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		Store:  store,
		Config: &config.Config{},
	}
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()

	registered := RegisterAllTasks(newTaskDeps(&vacuumStore{}))
	require.Len(t, registered, 1)
	assert.Contains(t, registered, config.SQLMaintenanceTask)
}

func TestSQLMaintenanceTask(t *testing.T) {
	t.Parallel()

	store := &vacuumStore{}
	task := newSQLMaintenanceTask(newTaskDeps(store))

	require.NoError(t, task(context.Background()))
	assert.Equal(t, 1, store.runs)

	store.err = errors.New("disk I/O error")
	err := task(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.err)
}

func TestSQLMaintenanceTask_RealDatabase(t *testing.T) {
	t.Parallel()

	db, err := database.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	task := newSQLMaintenanceTask(newTaskDeps(database.NewStore(db, nil)))
	assert.NoError(t, task(context.Background()))
}
