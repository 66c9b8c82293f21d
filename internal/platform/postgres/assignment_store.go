package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// PostgresAssignmentStore implements store.AssignmentStore on the
// user_tasks table. The identity column position keeps link order.
type PostgresAssignmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAssignmentStore creates a new PostgreSQL implementation of the AssignmentStore interface.
func NewPostgresAssignmentStore(db store.DBTX, logger *slog.Logger) *PostgresAssignmentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAssignmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "assignment_store")),
	}
}

var _ store.AssignmentStore = (*PostgresAssignmentStore)(nil)

// WithTx implements store.AssignmentStore.WithTx.
func (s *PostgresAssignmentStore) WithTx(tx *sql.Tx) store.AssignmentStore {
	if tx == nil {
		return s
	}
	return &PostgresAssignmentStore{db: tx, logger: s.logger}
}

// Link implements store.AssignmentStore.Link
func (s *PostgresAssignmentStore) Link(ctx context.Context, userID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO user_tasks (user_id, task_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, task_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, userID, taskID); err != nil {
		log.Error("failed to link task",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("task_id", taskID.String()))
		return store.NewStoreError("assignment", "link", "failed to link task", MapError(err))
	}
	return nil
}

// Unlink implements store.AssignmentStore.Unlink
func (s *PostgresAssignmentStore) Unlink(ctx context.Context, userID, taskID uuid.UUID) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM user_tasks WHERE user_id = $1 AND task_id = $2`, userID, taskID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to unlink task",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("task_id", taskID.String()))
		return false, store.NewStoreError("assignment", "unlink", "failed to unlink task", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStoreError("assignment", "unlink", "failed to get rows affected", err)
	}
	return n > 0, nil
}

// UnlinkTask implements store.AssignmentStore.UnlinkTask
func (s *PostgresAssignmentStore) UnlinkTask(ctx context.Context, taskID uuid.UUID) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM user_tasks WHERE task_id = $1 RETURNING user_id`, taskID).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, store.NewStoreError("assignment", "unlink_task", "failed to unlink task", MapError(err))
	}
	return userID, nil
}

// TaskIDsForUser implements store.AssignmentStore.TaskIDsForUser
func (s *PostgresAssignmentStore) TaskIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT task_id FROM user_tasks WHERE user_id = $1 ORDER BY position`, userID)
	if err != nil {
		return nil, store.NewStoreError("assignment", "list", "failed to query task links", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, store.NewStoreError("assignment", "list", "failed to scan task link", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("assignment", "list", "failed to iterate task links", err)
	}
	return ids, nil
}

// PruneStale implements store.AssignmentStore.PruneStale
func (s *PostgresAssignmentStore) PruneStale(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM user_tasks ut
		USING tasks t
		WHERE ut.task_id = t.id
		  AND t.assignee_id IS DISTINCT FROM ut.user_id
	`
	return s.execCount(ctx, "prune_stale", query)
}

// RestoreMissing implements store.AssignmentStore.RestoreMissing
func (s *PostgresAssignmentStore) RestoreMissing(ctx context.Context) (int64, error) {
	query := `
		INSERT INTO user_tasks (user_id, task_id)
		SELECT t.assignee_id, t.id
		FROM tasks t
		WHERE t.assignee_id IS NOT NULL
		  AND NOT EXISTS (SELECT 1 FROM user_tasks ut WHERE ut.task_id = t.id)
		ORDER BY t.updated_at, t.id
		ON CONFLICT DO NOTHING
	`
	return s.execCount(ctx, "restore_missing", query)
}

func (s *PostgresAssignmentStore) execCount(ctx context.Context, op, query string) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		log.Error("reconciliation statement failed", slog.String("operation", op), slog.String("error", err.Error()))
		return 0, store.NewStoreError("assignment", op, "reconciliation statement failed", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("assignment", op, "failed to get rows affected", err)
	}

	log.Debug("reconciliation statement applied", slog.String("operation", op), slog.Int64("rows", n))
	return n, nil
}
