package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskService provides task operations.
type TaskService interface {
	// CreateTask validates and persists a task, linking it to the assignee if one is given.
	CreateTask(ctx context.Context, input CreateTaskInput) (*TaskDetails, error)

	// ListTasks returns the tasks matching filter ordered by creation time.
	ListTasks(ctx context.Context, filter store.TaskFilter) ([]*TaskDetails, error)

	// GetTask returns one task, soft-deleted or not.
	GetTask(ctx context.Context, taskID uuid.UUID) (*TaskDetails, error)

	// FindTasksOfUser returns the task IDs held by the referenced user, in link order.
	FindTasksOfUser(ctx context.Context, ref UserRef) ([]uuid.UUID, error)

	// AssignTask makes userID the task's assignee, moving it from any previous holder.
	AssignTask(ctx context.Context, taskID, userID uuid.UUID) (*TaskDetails, error)

	// UnassignTask clears the assignment if userID currently holds the task.
	UnassignTask(ctx context.Context, taskID, userID uuid.UUID) (*TaskDetails, error)

	// UpdateTaskStatus applies a status transition allowed by the transition table.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, newStatus string) (*TaskDetails, error)

	// DeleteTask soft-deletes a task. Deleting a deleted task changes nothing.
	DeleteTask(ctx context.Context, taskID uuid.UUID) (*TaskDetails, error)
}

type taskServiceImpl struct {
	tx      store.Transactor
	tasks   store.TaskStore
	users   store.UserStore
	links   store.AssignmentStore
	emitter events.EventEmitter
	logger  *slog.Logger
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tx store.Transactor,
	tasks store.TaskStore,
	users store.UserStore,
	links store.AssignmentStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (TaskService, error) {
	switch {
	case tx == nil:
		return nil, missingDependency("create_task_service", "transactor")
	case tasks == nil:
		return nil, missingDependency("create_task_service", "tasks")
	case users == nil:
		return nil, missingDependency("create_task_service", "users")
	case links == nil:
		return nil, missingDependency("create_task_service", "links")
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tx:      tx,
		tasks:   tasks,
		users:   users,
		links:   links,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.
func (s *taskServiceImpl) CreateTask(ctx context.Context, input CreateTaskInput) (*TaskDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(input.Title, input.Description)
	if err != nil {
		return nil, NewServiceError("create_task", "invalid task", err)
	}
	if input.Status != "" {
		status, err := domain.ParseTaskStatus(input.Status)
		if err != nil {
			return nil, NewServiceError("create_task", "invalid status", err)
		}
		task.Status = status
	}

	var details *TaskDetails
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tasks, users, links := s.tasks.WithTx(tx), s.users.WithTx(tx), s.links.WithTx(tx)

		if input.Assignee == nil {
			if err := tasks.Create(ctx, task); err != nil {
				return err
			}
			details = &TaskDetails{Task: task}
			return nil
		}

		if _, err := activeUser(ctx, users, *input.Assignee); err != nil {
			return err
		}
		if err := task.AssignTo(*input.Assignee); err != nil {
			return err
		}
		if err := tasks.Create(ctx, task); err != nil {
			return err
		}
		if err := links.Link(ctx, *input.Assignee, task.ID); err != nil {
			return err
		}

		assignee, err := users.GetByID(ctx, *input.Assignee)
		if err != nil {
			return err
		}
		details = &TaskDetails{Task: task, Assignee: assignee}
		return nil
	})
	if err != nil {
		log.Debug("task creation failed", slog.String("error", err.Error()))
		return nil, NewServiceError("create_task", "failed to create task", err)
	}

	log.Info("task created", slog.String("task_id", task.ID.String()))
	emit(ctx, s.emitter, log, events.TypeTaskCreated, events.TaskPayload{
		TaskID: task.ID,
		Status: string(task.Status),
		UserID: task.AssigneeID,
	})
	return details, nil
}

// ListTasks implements TaskService.
func (s *taskServiceImpl) ListTasks(ctx context.Context, filter store.TaskFilter) ([]*TaskDetails, error) {
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("list_tasks", "failed to list tasks", err)
	}

	details, err := populateAssignees(ctx, s.users, tasks)
	if err != nil {
		return nil, NewServiceError("list_tasks", "failed to load assignees", err)
	}
	return details, nil
}

// GetTask implements TaskService.
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*TaskDetails, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("get_task", "failed to get task", err)
	}

	details, err := populateAssignees(ctx, s.users, []*domain.Task{task})
	if err != nil {
		return nil, NewServiceError("get_task", "failed to load assignee", err)
	}
	return details[0], nil
}

// FindTasksOfUser implements TaskService.
func (s *taskServiceImpl) FindTasksOfUser(ctx context.Context, ref UserRef) ([]uuid.UUID, error) {
	var (
		user *domain.User
		err  error
		name = strings.TrimSpace(ref.Name)
	)

	switch {
	case ref.ID != "":
		id, parseErr := uuid.Parse(ref.ID)
		if parseErr != nil {
			return nil, NewServiceError("find_tasks_of_user", "invalid user id",
				domain.NewValidationError("userId", "must be a valid UUID"))
		}
		user, err = activeUser(ctx, s.users, id)
	case name != "":
		user, err = s.users.FindFirstByName(ctx, name)
	default:
		return nil, NewServiceError("find_tasks_of_user", "missing user reference",
			domain.NewValidationError("userName", "userName or userId is required"))
	}
	if err != nil {
		return nil, NewServiceError("find_tasks_of_user", "failed to find user", err)
	}

	return user.Tasks, nil
}

// AssignTask implements TaskService.
func (s *taskServiceImpl) AssignTask(ctx context.Context, taskID, userID uuid.UUID) (*TaskDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		details  *TaskDetails
		previous *uuid.UUID
		changed  bool
	)
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tasks, users, links := s.tasks.WithTx(tx), s.users.WithTx(tx), s.links.WithTx(tx)

		task, err := tasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if _, err := activeUser(ctx, users, userID); err != nil {
			return err
		}
		if task.IsDeleted {
			return domain.ErrTaskDeleted
		}

		if !task.IsAssignedTo(userID) {
			previous = task.AssigneeID
			if _, err := links.UnlinkTask(ctx, task.ID); err != nil {
				return err
			}
			if err := task.AssignTo(userID); err != nil {
				return err
			}
			if err := tasks.Update(ctx, task); err != nil {
				return err
			}
			changed = true
		}

		// Idempotent; also repairs a missing link when the task side was already set.
		if err := links.Link(ctx, userID, task.ID); err != nil {
			return err
		}

		assignee, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		details = &TaskDetails{Task: task, Assignee: assignee}
		return nil
	})
	if err != nil {
		return nil, NewServiceError("assign_task", "failed to assign task", err)
	}

	if changed {
		log.Info("task assigned",
			slog.String("task_id", taskID.String()),
			slog.String("user_id", userID.String()))
		emit(ctx, s.emitter, log, events.TypeTaskAssigned, events.TaskPayload{
			TaskID:         taskID,
			UserID:         &userID,
			PreviousUserID: previous,
		})
	}
	return details, nil
}

// UnassignTask implements TaskService.
func (s *taskServiceImpl) UnassignTask(ctx context.Context, taskID, userID uuid.UUID) (*TaskDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		details *TaskDetails
		changed bool
	)
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tasks, users, links := s.tasks.WithTx(tx), s.users.WithTx(tx), s.links.WithTx(tx)

		task, err := tasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if _, err := users.GetByID(ctx, userID); err != nil {
			return err
		}

		if task.IsAssignedTo(userID) {
			task.Unassign()
			if err := tasks.Update(ctx, task); err != nil {
				return err
			}
			if _, err := links.Unlink(ctx, userID, task.ID); err != nil {
				return err
			}
			changed = true
		}

		populated, err := populateAssignees(ctx, users, []*domain.Task{task})
		if err != nil {
			return err
		}
		details = populated[0]
		return nil
	})
	if err != nil {
		return nil, NewServiceError("unassign_task", "failed to unassign task", err)
	}

	if changed {
		log.Info("task unassigned",
			slog.String("task_id", taskID.String()),
			slog.String("user_id", userID.String()))
		emit(ctx, s.emitter, log, events.TypeTaskUnassigned, events.TaskPayload{
			TaskID:         taskID,
			PreviousUserID: &userID,
		})
	}
	return details, nil
}

// UpdateTaskStatus implements TaskService.
func (s *taskServiceImpl) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	newStatus string,
) (*TaskDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	next, err := domain.ParseTaskStatus(newStatus)
	if err != nil {
		return nil, NewServiceError("update_task_status", "invalid status", err)
	}

	var (
		details  *TaskDetails
		previous domain.TaskStatus
	)
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tasks, users := s.tasks.WithTx(tx), s.users.WithTx(tx)

		task, err := tasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}

		previous = task.Status
		if err := task.TransitionTo(next); err != nil {
			return err
		}
		if previous != next {
			if err := tasks.Update(ctx, task); err != nil {
				return err
			}
		}

		populated, err := populateAssignees(ctx, users, []*domain.Task{task})
		if err != nil {
			return err
		}
		details = populated[0]
		return nil
	})
	if err != nil {
		return nil, NewServiceError("update_task_status", "failed to update task status", err)
	}
	if previous == next {
		return details, nil
	}

	log.Info("task status changed",
		slog.String("task_id", taskID.String()),
		slog.String("from", string(previous)),
		slog.String("to", string(next)))
	emit(ctx, s.emitter, log, events.TypeTaskStatusChanged, events.TaskPayload{
		TaskID:         taskID,
		Status:         string(next),
		PreviousStatus: string(previous),
	})
	return details, nil
}

// DeleteTask implements TaskService.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, taskID uuid.UUID) (*TaskDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		details *TaskDetails
		changed bool
	)
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tasks, users := s.tasks.WithTx(tx), s.users.WithTx(tx)

		task, err := tasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}

		if task.MarkDeleted() {
			if err := tasks.Update(ctx, task); err != nil {
				return err
			}
			changed = true
		}

		populated, err := populateAssignees(ctx, users, []*domain.Task{task})
		if err != nil {
			return err
		}
		details = populated[0]
		return nil
	})
	if err != nil {
		return nil, NewServiceError("delete_task", "failed to delete task", err)
	}

	if changed {
		log.Info("task deleted", slog.String("task_id", taskID.String()))
		emit(ctx, s.emitter, log, events.TypeTaskDeleted, events.TaskPayload{TaskID: taskID})
	}
	return details, nil
}

// activeUser loads a user and treats a soft-deleted one as missing.
func activeUser(ctx context.Context, users store.UserStore, id uuid.UUID) (*domain.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsDeleted {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// populateAssignees resolves every task's assignee with one store call.
// An assignee that no longer exists is left nil.
func populateAssignees(ctx context.Context, users store.UserStore, tasks []*domain.Task) ([]*TaskDetails, error) {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, t := range tasks {
		if t.AssigneeID != nil && !seen[*t.AssigneeID] {
			seen[*t.AssigneeID] = true
			ids = append(ids, *t.AssigneeID)
		}
	}

	byID := make(map[uuid.UUID]*domain.User, len(ids))
	if len(ids) > 0 {
		found, err := users.GetByIDs(ctx, ids)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		for _, u := range found {
			byID[u.ID] = u
		}
	}

	details := make([]*TaskDetails, len(tasks))
	for i, t := range tasks {
		d := &TaskDetails{Task: t}
		if t.AssigneeID != nil {
			d.Assignee = byID[*t.AssigneeID]
		}
		details[i] = d
	}
	return details, nil
}
