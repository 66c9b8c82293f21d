//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/phrazzld/taskboard-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type services struct {
	tasks     service.TaskService
	users     service.UserService
	reconcile service.ReconcileService
	taskStore store.TaskStore
}

func newServices(t *testing.T) (*services, func(query string)) {
	t.Helper()

	db := testdb.OpenTestDB(t)
	tx := store.NewDBTransactor(db)
	taskStore := postgres.NewPostgresTaskStore(db, nil)
	userStore := postgres.NewPostgresUserStore(db, nil)
	links := postgres.NewPostgresAssignmentStore(db, nil)

	tasks, err := service.NewTaskService(tx, taskStore, userStore, links, nil, nil)
	require.NoError(t, err)
	users, err := service.NewUserService(tx, taskStore, userStore, links, nil, nil)
	require.NoError(t, err)
	reconcile, err := service.NewReconcileService(tx, links, nil, nil)
	require.NoError(t, err)

	exec := func(query string) {
		_, err := db.ExecContext(context.Background(), query)
		require.NoError(t, err)
	}
	return &services{tasks: tasks, users: users, reconcile: reconcile, taskStore: taskStore}, exec
}

func TestIntegration_AssignmentMovesBetweenUsers(t *testing.T) {
	s, _ := newServices(t)
	ctx := context.Background()

	alice, err := s.users.CreateUser(ctx, service.CreateUserInput{Name: "alice"})
	require.NoError(t, err)
	bob, err := s.users.CreateUser(ctx, service.CreateUserInput{Name: "bob"})
	require.NoError(t, err)

	aliceID := alice.User.ID
	task, err := s.tasks.CreateTask(ctx, service.CreateTaskInput{Title: "ship it", Assignee: &aliceID})
	require.NoError(t, err)
	require.NotNil(t, task.Assignee)
	assert.Equal(t, aliceID, task.Assignee.ID)

	moved, err := s.tasks.AssignTask(ctx, task.Task.ID, bob.User.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.User.ID, moved.Assignee.ID)

	aliceTasks, err := s.tasks.FindTasksOfUser(ctx, service.UserRef{Name: "alice"})
	require.NoError(t, err)
	assert.Empty(t, aliceTasks)

	bobTasks, err := s.tasks.FindTasksOfUser(ctx, service.UserRef{ID: bob.User.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{task.Task.ID}, bobTasks)
}

func TestIntegration_StatusTransitions(t *testing.T) {
	s, _ := newServices(t)
	ctx := context.Background()

	task, err := s.tasks.CreateTask(ctx, service.CreateTaskInput{Title: "close ticket"})
	require.NoError(t, err)

	_, err = s.tasks.UpdateTaskStatus(ctx, task.Task.ID, "done")
	require.NoError(t, err)

	_, err = s.tasks.UpdateTaskStatus(ctx, task.Task.ID, "todo")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, err := s.taskStore.GetByID(ctx, task.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, stored.Status)
}

func TestIntegration_FailedCreateRollsBack(t *testing.T) {
	s, _ := newServices(t)
	ctx := context.Background()

	missing := uuid.New()
	_, err := s.tasks.CreateTask(ctx, service.CreateTaskInput{Title: "orphan", Assignee: &missing})
	assert.ErrorIs(t, err, store.ErrNotFound)

	all, err := s.taskStore.List(ctx, store.TaskFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestIntegration_ReconcileRestoresLinks(t *testing.T) {
	s, exec := newServices(t)
	ctx := context.Background()

	alice, err := s.users.CreateUser(ctx, service.CreateUserInput{Name: "alice"})
	require.NoError(t, err)
	aliceID := alice.User.ID
	_, err = s.tasks.CreateTask(ctx, service.CreateTaskInput{Title: "a", Assignee: &aliceID})
	require.NoError(t, err)

	exec("DELETE FROM user_tasks")

	report, err := s.reconcile.ReconcileLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.MissingRestored)
	assert.Equal(t, int64(0), report.StaleRemoved)

	ids, err := s.tasks.FindTasksOfUser(ctx, service.UserRef{Name: "alice"})
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}
