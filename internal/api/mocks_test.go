package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/jobs"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// mockTaskService implements service.TaskService with overridable functions.
type mockTaskService struct {
	CreateTaskFn       func(ctx context.Context, input service.CreateTaskInput) (*service.TaskDetails, error)
	ListTasksFn        func(ctx context.Context, filter store.TaskFilter) ([]*service.TaskDetails, error)
	GetTaskFn          func(ctx context.Context, id uuid.UUID) (*service.TaskDetails, error)
	FindTasksOfUserFn  func(ctx context.Context, ref service.UserRef) ([]uuid.UUID, error)
	AssignTaskFn       func(ctx context.Context, taskID, userID uuid.UUID) (*service.TaskDetails, error)
	UnassignTaskFn     func(ctx context.Context, taskID, userID uuid.UUID) (*service.TaskDetails, error)
	UpdateTaskStatusFn func(ctx context.Context, taskID uuid.UUID, status string) (*service.TaskDetails, error)
	DeleteTaskFn       func(ctx context.Context, taskID uuid.UUID) (*service.TaskDetails, error)
}

var _ service.TaskService = (*mockTaskService)(nil)

func (m *mockTaskService) CreateTask(ctx context.Context, input service.CreateTaskInput) (*service.TaskDetails, error) {
	return m.CreateTaskFn(ctx, input)
}

func (m *mockTaskService) ListTasks(ctx context.Context, filter store.TaskFilter) ([]*service.TaskDetails, error) {
	return m.ListTasksFn(ctx, filter)
}

func (m *mockTaskService) GetTask(ctx context.Context, id uuid.UUID) (*service.TaskDetails, error) {
	return m.GetTaskFn(ctx, id)
}

func (m *mockTaskService) FindTasksOfUser(ctx context.Context, ref service.UserRef) ([]uuid.UUID, error) {
	return m.FindTasksOfUserFn(ctx, ref)
}

func (m *mockTaskService) AssignTask(ctx context.Context, taskID, userID uuid.UUID) (*service.TaskDetails, error) {
	return m.AssignTaskFn(ctx, taskID, userID)
}

func (m *mockTaskService) UnassignTask(ctx context.Context, taskID, userID uuid.UUID) (*service.TaskDetails, error) {
	return m.UnassignTaskFn(ctx, taskID, userID)
}

func (m *mockTaskService) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status string,
) (*service.TaskDetails, error) {
	return m.UpdateTaskStatusFn(ctx, taskID, status)
}

func (m *mockTaskService) DeleteTask(ctx context.Context, taskID uuid.UUID) (*service.TaskDetails, error) {
	return m.DeleteTaskFn(ctx, taskID)
}

// mockUserService implements service.UserService with overridable functions.
type mockUserService struct {
	CreateUserFn     func(ctx context.Context, input service.CreateUserInput) (*service.UserDetails, error)
	ListUsersFn      func(ctx context.Context, input service.ListUsersInput) (*service.UserPage, error)
	FindUserByNameFn func(ctx context.Context, name string) (*domain.User, error)
}

var _ service.UserService = (*mockUserService)(nil)

func (m *mockUserService) CreateUser(ctx context.Context, input service.CreateUserInput) (*service.UserDetails, error) {
	return m.CreateUserFn(ctx, input)
}

func (m *mockUserService) ListUsers(ctx context.Context, input service.ListUsersInput) (*service.UserPage, error) {
	return m.ListUsersFn(ctx, input)
}

func (m *mockUserService) FindUserByName(ctx context.Context, name string) (*domain.User, error) {
	return m.FindUserByNameFn(ctx, name)
}

// mockRunner records submitted jobs.
type mockRunner struct {
	submitted []jobs.Job
	err       error
	records   map[uuid.UUID]jobs.Record
}

func (m *mockRunner) Submit(_ context.Context, job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.submitted = append(m.submitted, job)
	return nil
}

func (m *mockRunner) Lookup(id uuid.UUID) (jobs.Record, bool) {
	rec, ok := m.records[id]
	return rec, ok
}

type mockReconciler struct{}

func (mockReconciler) ReconcileLinks(context.Context) (*service.ReconcileReport, error) {
	return &service.ReconcileReport{}, nil
}
