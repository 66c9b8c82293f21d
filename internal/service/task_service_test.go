package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewTaskService_MissingDependencies(t *testing.T) {
	t.Parallel()

	tasks, users, links := &mocks.TaskStore{}, &mocks.UserStore{}, &mocks.AssignmentStore{}
	tx := mocks.Transactor{}

	_, err := service.NewTaskService(nil, tasks, users, links, nil, nil)
	assert.ErrorIs(t, err, service.ErrMissingDependency)
	_, err = service.NewTaskService(tx, nil, users, links, nil, nil)
	assert.ErrorIs(t, err, service.ErrMissingDependency)
	_, err = service.NewTaskService(tx, tasks, nil, links, nil, nil)
	assert.ErrorIs(t, err, service.ErrMissingDependency)
	_, err = service.NewTaskService(tx, tasks, users, nil, nil, nil)
	assert.ErrorIs(t, err, service.ErrMissingDependency)

	svc, err := service.NewTaskService(tx, tasks, users, links, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestCreateTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unassigned defaults to todo", func(t *testing.T) {
		e := newEnv(t)
		got := e.createTask(t, "  Write docs  ", nil)

		assert.Equal(t, "Write docs", got.Task.Title)
		assert.Equal(t, domain.TaskStatusTodo, got.Task.Status)
		assert.Nil(t, got.Task.AssigneeID)
		assert.Nil(t, got.Assignee)
		assert.Equal(t, []string{events.TypeTaskCreated}, e.emitter.Types())
	})

	t.Run("with assignee links both sides", func(t *testing.T) {
		e := newEnv(t)
		alice := e.createUser(t, "alice")

		got := e.createTask(t, "Ship", &alice.User.ID)
		require.NotNil(t, got.Assignee)
		assert.Equal(t, alice.User.ID, got.Assignee.ID)
		assert.Equal(t, []uuid.UUID{got.Task.ID}, got.Assignee.Tasks)
	})

	t.Run("explicit status", func(t *testing.T) {
		e := newEnv(t)
		got, err := e.tasks.CreateTask(ctx, service.CreateTaskInput{Title: "Old", Status: "done"})
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusDone, got.Task.Status)
	})

	t.Run("invalid input", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.tasks.CreateTask(ctx, service.CreateTaskInput{Title: "   "})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = e.tasks.CreateTask(ctx, service.CreateTaskInput{Title: "x", Status: "blocked"})
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})

	t.Run("unknown assignee rolls back", func(t *testing.T) {
		e := newEnv(t)
		ghost := uuid.New()

		_, err := e.tasks.CreateTask(ctx, service.CreateTaskInput{Title: "Lost", Assignee: &ghost})
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		all, err := e.tasks.ListTasks(ctx, store.TaskFilter{IncludeDeleted: true})
		require.NoError(t, err)
		assert.Empty(t, all)
		assert.Empty(t, e.emitter.Events)
	})
}

func TestAssignTask_MovesBetweenUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	task := e.createTask(t, "Review", &alice.User.ID)

	got, err := e.tasks.AssignTask(ctx, task.Task.ID, bob.User.ID)
	require.NoError(t, err)
	assert.True(t, got.Task.IsAssignedTo(bob.User.ID))
	assert.Equal(t, []uuid.UUID{task.Task.ID}, got.Assignee.Tasks)

	aliceTasks, err := e.tasks.FindTasksOfUser(ctx, service.UserRef{ID: alice.User.ID.String()})
	require.NoError(t, err)
	assert.Empty(t, aliceTasks)

	last := e.emitter.Events[len(e.emitter.Events)-1]
	assert.Equal(t, events.TypeTaskAssigned, last.Type)
	var payload events.TaskPayload
	require.NoError(t, last.UnmarshalPayload(&payload))
	require.NotNil(t, payload.PreviousUserID)
	assert.Equal(t, alice.User.ID, *payload.PreviousUserID)
}

func TestAssignTask_SameUserIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	alice := e.createUser(t, "alice")
	task := e.createTask(t, "Review", &alice.User.ID)
	before := len(e.emitter.Events)

	got, err := e.tasks.AssignTask(ctx, task.Task.ID, alice.User.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{task.Task.ID}, got.Assignee.Tasks)
	assert.Len(t, e.emitter.Events, before)
}

func TestAssignTask_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	alice := e.createUser(t, "alice")
	task := e.createTask(t, "Review", nil)

	_, err := e.tasks.AssignTask(ctx, uuid.New(), alice.User.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	_, err = e.tasks.AssignTask(ctx, task.Task.ID, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = e.tasks.DeleteTask(ctx, task.Task.ID)
	require.NoError(t, err)
	_, err = e.tasks.AssignTask(ctx, task.Task.ID, alice.User.ID)
	assert.ErrorIs(t, err, domain.ErrTaskDeleted)
}

func TestUnassignTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	alice := e.createUser(t, "alice")
	bob := e.createUser(t, "bob")
	task := e.createTask(t, "Review", &alice.User.ID)

	// Not the holder: nothing changes.
	got, err := e.tasks.UnassignTask(ctx, task.Task.ID, bob.User.ID)
	require.NoError(t, err)
	assert.True(t, got.Task.IsAssignedTo(alice.User.ID))

	got, err = e.tasks.UnassignTask(ctx, task.Task.ID, alice.User.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Task.AssigneeID)
	assert.Nil(t, got.Assignee)

	ids, err := e.tasks.FindTasksOfUser(ctx, service.UserRef{Name: "alice"})
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, events.TypeTaskUnassigned, e.emitter.Types()[len(e.emitter.Events)-1])

	_, err = e.tasks.UnassignTask(ctx, task.Task.ID, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUpdateTaskStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	task := e.createTask(t, "Build", nil)

	got, err := e.tasks.UpdateTaskStatus(ctx, task.Task.ID, "in-progress")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, got.Task.Status)

	got, err = e.tasks.UpdateTaskStatus(ctx, task.Task.ID, "done")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, got.Task.Status)

	_, err = e.tasks.UpdateTaskStatus(ctx, task.Task.ID, "todo")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = e.tasks.UpdateTaskStatus(ctx, task.Task.ID, "paused")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = e.tasks.UpdateTaskStatus(ctx, uuid.New(), "done")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	stored, err := e.tasks.GetTask(ctx, task.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, stored.Task.Status)
}

func TestUpdateTaskStatus_SameStatusIsNoop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	task := e.createTask(t, "Idle", nil)
	before := len(e.emitter.Events)

	got, err := e.tasks.UpdateTaskStatus(ctx, task.Task.ID, "todo")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusTodo, got.Task.Status)
	assert.Equal(t, task.Task.UpdatedAt, got.Task.UpdatedAt)
	assert.Len(t, e.emitter.Events, before)

	// done -> done is still outside the table.
	_, err = e.tasks.UpdateTaskStatus(ctx, task.Task.ID, "done")
	require.NoError(t, err)
	_, err = e.tasks.UpdateTaskStatus(ctx, task.Task.ID, "done")
	var terr *domain.TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, []domain.TaskStatus{domain.TaskStatusArchive}, terr.Allowed())
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	alice := e.createUser(t, "alice")
	task := e.createTask(t, "Temp", &alice.User.ID)

	got, err := e.tasks.DeleteTask(ctx, task.Task.ID)
	require.NoError(t, err)
	assert.True(t, got.Task.IsDeleted)

	again, err := e.tasks.DeleteTask(ctx, task.Task.ID)
	require.NoError(t, err)
	assert.True(t, again.Task.IsDeleted)

	deletes := 0
	for _, typ := range e.emitter.Types() {
		if typ == events.TypeTaskDeleted {
			deletes++
		}
	}
	assert.Equal(t, 1, deletes)

	visible, err := e.tasks.ListTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := e.tasks.ListTasks(ctx, store.TaskFilter{IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].Assignee)
	assert.Equal(t, alice.User.ID, all[0].Assignee.ID)

	// Still readable by ID and still linked to its user.
	_, err = e.tasks.GetTask(ctx, task.Task.ID)
	require.NoError(t, err)
	ids, err := e.tasks.FindTasksOfUser(ctx, service.UserRef{ID: alice.User.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{task.Task.ID}, ids)
}

func TestListTasks_StatusFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	first := e.createTask(t, "one", nil)
	e.createTask(t, "two", nil)
	_, err := e.tasks.UpdateTaskStatus(ctx, first.Task.ID, "in-progress")
	require.NoError(t, err)

	status := domain.TaskStatusInProgress
	got, err := e.tasks.ListTasks(ctx, store.TaskFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first.Task.ID, got[0].Task.ID)
}

func TestFindTasksOfUser_References(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.tasks.FindTasksOfUser(ctx, service.UserRef{})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "userName", verr.Field)

	_, err = e.tasks.FindTasksOfUser(ctx, service.UserRef{ID: "not-a-uuid"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "userId", verr.Field)

	_, err = e.tasks.FindTasksOfUser(ctx, service.UserRef{Name: "   "})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "userName", verr.Field)

	_, err = e.tasks.FindTasksOfUser(ctx, service.UserRef{Name: "nobody"})
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestFindTasksOfUser_TrimsName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)

	ann := e.createUser(t, "Ann")
	task := e.createTask(t, "Draft", &ann.User.ID)

	ids, err := e.tasks.FindTasksOfUser(ctx, service.UserRef{Name: " Ann "})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{task.Task.ID}, ids)

	byName, err := e.users.FindUserByName(ctx, "Ann ")
	require.NoError(t, err)
	assert.Equal(t, ann.User.ID, byName.ID)
}

func TestTaskService_StoreFailureIsWrapped(t *testing.T) {
	t.Parallel()

	tasks, users, links := &mocks.TaskStore{}, &mocks.UserStore{}, &mocks.AssignmentStore{}
	dbErr := errors.New("connection reset")
	tasks.On("Create", mock.Anything, mock.Anything).Return(dbErr)

	emitter := &mocks.EventEmitter{}
	svc, err := service.NewTaskService(mocks.Transactor{}, tasks, users, links, emitter, nil)
	require.NoError(t, err)

	_, err = svc.CreateTask(context.Background(), service.CreateTaskInput{Title: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)

	var serr *service.ServiceError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "create_task", serr.Operation)
	assert.Empty(t, emitter.Events)
	tasks.AssertExpectations(t)
}

func TestTaskService_EmitFailureDoesNotFailOperation(t *testing.T) {
	t.Parallel()

	tasks, users, links := &mocks.TaskStore{}, &mocks.UserStore{}, &mocks.AssignmentStore{}
	tasks.On("Create", mock.Anything, mock.Anything).Return(nil)

	emitter := &mocks.EventEmitter{Err: errors.New("handler down")}
	svc, err := service.NewTaskService(mocks.Transactor{}, tasks, users, links, emitter, nil)
	require.NoError(t, err)

	got, err := svc.CreateTask(context.Background(), service.CreateTaskInput{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", got.Task.Title)
	assert.Len(t, emitter.Events, 1)
}

func TestGetTask_MissingAssigneeLeftNil(t *testing.T) {
	t.Parallel()

	ghost := uuid.New()
	task, err := domain.NewTask("orphan", "")
	require.NoError(t, err)
	task.AssigneeID = &ghost

	tasks, users, links := &mocks.TaskStore{}, &mocks.UserStore{}, &mocks.AssignmentStore{}
	tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	users.On("GetByIDs", mock.Anything, []uuid.UUID{ghost}).Return([]*domain.User{}, nil)

	svc, err := service.NewTaskService(mocks.Transactor{}, tasks, users, links, nil, nil)
	require.NoError(t, err)

	got, err := svc.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Assignee)
	users.AssertExpectations(t)
}
