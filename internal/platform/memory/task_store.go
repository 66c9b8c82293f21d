package memory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskStore implements store.TaskStore on a DB.
type TaskStore struct {
	db *DB
}

// NewTaskStore returns a TaskStore sharing db's state.
func NewTaskStore(db *DB) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &TaskStore{db: db}
}

var _ store.TaskStore = (*TaskStore)(nil)

// WithTx implements store.TaskStore. Isolation comes from DB.RunInTransaction, so tx is ignored.
func (s *TaskStore) WithTx(_ *sql.Tx) store.TaskStore {
	return s
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.tasks[task.ID]; exists {
		return fmt.Errorf("%w: task %s", store.ErrDuplicate, task.ID)
	}
	if task.AssigneeID != nil {
		if _, ok := s.db.users[*task.AssigneeID]; !ok {
			return fmt.Errorf("%w: assignee %s does not exist", store.ErrInvalidEntity, *task.AssigneeID)
		}
	}

	s.db.tasks[task.ID] = cloneTask(task)
	return nil
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	t, ok := s.db.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

// GetByIDForUpdate implements store.TaskStore. Transactions are already
// serialized, so it is the same as GetByID.
func (s *TaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.GetByID(ctx, id)
}

// GetByIDs implements store.TaskStore.
func (s *TaskStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	seen := make(map[uuid.UUID]bool, len(ids))
	tasks := []*domain.Task{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if t, ok := s.db.tasks[id]; ok {
			tasks = append(tasks, cloneTask(t))
		}
	}
	sortTasks(tasks)
	return tasks, nil
}

// List implements store.TaskStore.
func (s *TaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	tasks := []*domain.Task{}
	for _, t := range s.db.tasks {
		if filter.Matches(t) {
			tasks = append(tasks, cloneTask(t))
		}
	}
	sortTasks(tasks)
	return tasks, nil
}

// Update implements store.TaskStore.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, ok := s.db.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	if task.AssigneeID != nil {
		if _, ok := s.db.users[*task.AssigneeID]; !ok {
			return fmt.Errorf("%w: assignee %s does not exist", store.ErrInvalidEntity, *task.AssigneeID)
		}
	}

	updated := cloneTask(task)
	updated.CreatedAt = existing.CreatedAt
	s.db.tasks[task.ID] = updated
	return nil
}
