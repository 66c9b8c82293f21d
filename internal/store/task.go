package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its ID, including soft-deleted tasks.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetByIDForUpdate behaves like GetByID but locks the task until the
	// surrounding transaction ends. Outside a transaction it is a plain read.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetByIDs retrieves the tasks with the given IDs ordered by creation time.
	// IDs that do not exist are skipped.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Task, error)

	// List returns the tasks matching filter ordered by creation time.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Update writes every mutable field of task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
