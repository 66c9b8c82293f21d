package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
// Users returned by the read methods have Tasks populated from the
// assignment links, in link order. Create does not write links; use
// AssignmentStore for that.
type UserStore interface {
	// Create saves a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID, including soft-deleted users.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByIDs retrieves the users with the given IDs. Missing IDs are skipped.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error)

	// FindFirstByName returns the oldest non-deleted user with exactly this name.
	// Returns ErrUserNotFound if there is none.
	FindFirstByName(ctx context.Context, name string) (*domain.User, error)

	// List returns non-deleted users matching filter ordered by creation time.
	List(ctx context.Context, filter UserFilter, limit, offset int) ([]*domain.User, error)

	// Count returns the number of users matching filter.
	Count(ctx context.Context, filter UserFilter) (int, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
