package service_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/platform/memory"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/stretchr/testify/require"
)

// env wires every service to one in-memory database.
type env struct {
	db        *memory.DB
	tasks     service.TaskService
	users     service.UserService
	reconcile service.ReconcileService
	links     *memory.AssignmentStore
	taskStore *memory.TaskStore
	emitter   *mocks.EventEmitter
	logs      *logger.Buffer
}

func newEnv(t *testing.T) *env {
	t.Helper()

	logs, log := logger.NewBufferLogger(slog.LevelDebug)
	db := memory.NewDB(log)
	taskStore := memory.NewTaskStore(db)
	userStore := memory.NewUserStore(db)
	links := memory.NewAssignmentStore(db)
	emitter := &mocks.EventEmitter{}

	tasks, err := service.NewTaskService(db, taskStore, userStore, links, emitter, log)
	require.NoError(t, err)
	users, err := service.NewUserService(db, taskStore, userStore, links, emitter, log)
	require.NoError(t, err)
	reconcile, err := service.NewReconcileService(db, links, emitter, log)
	require.NoError(t, err)

	return &env{
		db:        db,
		tasks:     tasks,
		users:     users,
		reconcile: reconcile,
		links:     links,
		taskStore: taskStore,
		emitter:   emitter,
		logs:      logs,
	}
}

func (e *env) createUser(t *testing.T, name string, tasks ...uuid.UUID) *service.UserDetails {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), service.CreateUserInput{Name: name, Tasks: tasks})
	require.NoError(t, err)
	return u
}

func (e *env) createTask(t *testing.T, title string, assignee *uuid.UUID) *service.TaskDetails {
	t.Helper()
	task, err := e.tasks.CreateTask(context.Background(), service.CreateTaskInput{
		Title:    title,
		Assignee: assignee,
	})
	require.NoError(t, err)
	return task
}

func taskIDs(tasks []*domain.Task) []uuid.UUID {
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
