package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UserService provides user operations.
type UserService interface {
	// CreateUser persists a user and assigns it the given tasks in one transaction.
	CreateUser(ctx context.Context, input CreateUserInput) (*UserDetails, error)

	// ListUsers returns one page of non-deleted users with their tasks populated.
	ListUsers(ctx context.Context, input ListUsersInput) (*UserPage, error)

	// FindUserByName returns the oldest non-deleted user with exactly this name.
	FindUserByName(ctx context.Context, name string) (*domain.User, error)
}

type userServiceImpl struct {
	tx      store.Transactor
	tasks   store.TaskStore
	users   store.UserStore
	links   store.AssignmentStore
	emitter events.EventEmitter
	logger  *slog.Logger
}

var _ UserService = (*userServiceImpl)(nil)

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	tx store.Transactor,
	tasks store.TaskStore,
	users store.UserStore,
	links store.AssignmentStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (UserService, error) {
	switch {
	case tx == nil:
		return nil, missingDependency("create_user_service", "transactor")
	case tasks == nil:
		return nil, missingDependency("create_user_service", "tasks")
	case users == nil:
		return nil, missingDependency("create_user_service", "users")
	case links == nil:
		return nil, missingDependency("create_user_service", "links")
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		tx:      tx,
		tasks:   tasks,
		users:   users,
		links:   links,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "user_service")),
	}, nil
}

// CreateUser implements UserService.
func (s *userServiceImpl) CreateUser(ctx context.Context, input CreateUserInput) (*UserDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(input.Name)
	if err != nil {
		return nil, NewServiceError("create_user", "invalid user", err)
	}

	taskIDs := dedupe(input.Tasks)
	type move struct {
		taskID   uuid.UUID
		previous *uuid.UUID
	}
	var (
		details *UserDetails
		moves   []move
	)

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tasks, users, links := s.tasks.WithTx(tx), s.users.WithTx(tx), s.links.WithTx(tx)

		if err := users.Create(ctx, user); err != nil {
			return err
		}

		for _, taskID := range taskIDs {
			task, err := tasks.GetByIDForUpdate(ctx, taskID)
			if err != nil {
				return err
			}
			previous := task.AssigneeID
			if _, err := links.UnlinkTask(ctx, task.ID); err != nil {
				return err
			}
			if err := task.AssignTo(user.ID); err != nil {
				return fmt.Errorf("task %s: %w", task.ID, err)
			}
			if err := tasks.Update(ctx, task); err != nil {
				return err
			}
			if err := links.Link(ctx, user.ID, task.ID); err != nil {
				return err
			}
			moves = append(moves, move{taskID: task.ID, previous: previous})
		}

		stored, err := users.GetByID(ctx, user.ID)
		if err != nil {
			return err
		}
		populated, err := populateTasks(ctx, tasks, []*domain.User{stored})
		if err != nil {
			return err
		}
		details = populated[0]
		return nil
	})
	if err != nil {
		log.Debug("user creation failed", slog.String("error", err.Error()))
		return nil, NewServiceError("create_user", "failed to create user", err)
	}

	log.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.Int("task_count", len(taskIDs)))
	emit(ctx, s.emitter, log, events.TypeUserCreated, events.UserPayload{
		UserID:  user.ID,
		Name:    user.Name,
		TaskIDs: taskIDs,
	})
	userID := user.ID
	for _, m := range moves {
		emit(ctx, s.emitter, log, events.TypeTaskAssigned, events.TaskPayload{
			TaskID:         m.taskID,
			UserID:         &userID,
			PreviousUserID: m.previous,
		})
	}
	return details, nil
}

// ListUsers implements UserService.
func (s *userServiceImpl) ListUsers(ctx context.Context, input ListUsersInput) (*UserPage, error) {
	page, limit := input.Page, input.Limit
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if page < 1 {
		return nil, NewServiceError("list_users", "invalid page",
			domain.NewValidationError("page", "must be at least 1"))
	}
	if limit < 1 || limit > MaxLimit {
		return nil, NewServiceError("list_users", "invalid limit",
			domain.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", MaxLimit)))
	}

	filter := store.UserFilter{Name: strings.TrimSpace(input.Name)}

	users, err := s.users.List(ctx, filter, limit, limit*(page-1))
	if err != nil {
		return nil, NewServiceError("list_users", "failed to list users", err)
	}
	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, NewServiceError("list_users", "failed to count users", err)
	}

	details, err := populateTasks(ctx, s.tasks, users)
	if err != nil {
		return nil, NewServiceError("list_users", "failed to load tasks", err)
	}

	return &UserPage{Users: details, Page: page, Limit: limit, Total: total}, nil
}

// FindUserByName implements UserService.
func (s *userServiceImpl) FindUserByName(ctx context.Context, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewServiceError("find_user_by_name", "missing name",
			domain.NewValidationError("name", "is required"))
	}

	user, err := s.users.FindFirstByName(ctx, name)
	if err != nil {
		return nil, NewServiceError("find_user_by_name", "failed to find user", err)
	}
	return user, nil
}

// populateTasks resolves every user's task references with one store call,
// keeping each user's link order. Deleted tasks are included.
func populateTasks(ctx context.Context, tasks store.TaskStore, users []*domain.User) ([]*UserDetails, error) {
	var ids []uuid.UUID
	for _, u := range users {
		ids = append(ids, u.Tasks...)
	}

	byID := make(map[uuid.UUID]*domain.Task, len(ids))
	if len(ids) > 0 {
		found, err := tasks.GetByIDs(ctx, dedupe(ids))
		if err != nil {
			return nil, err
		}
		for _, t := range found {
			byID[t.ID] = t
		}
	}

	details := make([]*UserDetails, len(users))
	for i, u := range users {
		d := &UserDetails{User: u, Tasks: make([]*domain.Task, 0, len(u.Tasks))}
		for _, id := range u.Tasks {
			if t, ok := byID[id]; ok {
				d.Tasks = append(d.Tasks, t)
			}
		}
		details[i] = d
	}
	return details, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
