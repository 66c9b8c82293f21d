package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// AssignmentStore persists the user side of the assignment link: the
// ordered list of task IDs each user holds. A task ID is linked to at
// most one user.
type AssignmentStore interface {
	// Link appends taskID to the user's list. Linking a pair that already
	// exists is a no-op. Linking a task held by another user fails with
	// ErrDuplicate; callers unlink it first.
	Link(ctx context.Context, userID, taskID uuid.UUID) error

	// Unlink removes the pair and reports whether it existed.
	Unlink(ctx context.Context, userID, taskID uuid.UUID) (bool, error)

	// UnlinkTask removes whatever link taskID has and returns the user it
	// was linked to, or uuid.Nil if there was none.
	UnlinkTask(ctx context.Context, taskID uuid.UUID) (uuid.UUID, error)

	// TaskIDsForUser returns the user's task IDs in link order.
	TaskIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// PruneStale deletes links whose task no longer names the user as
	// assignee and returns how many were removed.
	PruneStale(ctx context.Context) (int64, error)

	// RestoreMissing adds links for assigned tasks that have none and
	// returns how many were added.
	RestoreMissing(ctx context.Context) (int64, error)

	// WithTx returns a new AssignmentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AssignmentStore
}
