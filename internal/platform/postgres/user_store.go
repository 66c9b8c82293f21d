package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

const userColumns = "id, name, is_deleted, created_at, updated_at"

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	if tx == nil {
		return s
	}
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.IsDeleted,
		user.CreatedAt,
		user.UpdatedAt,
	); err != nil {
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return store.NewStoreError("user", "create", "failed to insert user", MapError(err))
	}

	log.Debug("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, "get", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindFirstByName implements store.UserStore.FindFirstByName
func (s *PostgresUserStore) FindFirstByName(ctx context.Context, name string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE name = $1 AND is_deleted = FALSE
		ORDER BY created_at, id
		LIMIT 1
	`
	return s.getOne(ctx, "find_by_name", query, name)
}

func (s *PostgresUserStore) getOne(ctx context.Context, op, query string, arg any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.String("operation", op))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user", slog.String("operation", op), slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", op, "failed to read user", MapError(err))
	}

	if err := s.populateTasks(ctx, op, []*domain.User{user}); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByIDs implements store.UserStore.GetByIDs
func (s *PostgresUserStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) ORDER BY created_at, id`
	return s.query(ctx, "get_by_ids", query, ids)
}

// List implements store.UserStore.List
func (s *PostgresUserStore) List(
	ctx context.Context,
	filter store.UserFilter,
	limit, offset int,
) ([]*domain.User, error) {
	where := userWhere(filter)
	query := `SELECT ` + userColumns + ` FROM users` + where.clause() +
		` ORDER BY created_at, id LIMIT ` + placeholders(where.next(), 1) +
		` OFFSET ` + placeholders(where.next()+1, 1)
	args := append(where.args, limit, offset)
	return s.query(ctx, "list", query, args...)
}

// Count implements store.UserStore.Count
func (s *PostgresUserStore) Count(ctx context.Context, filter store.UserFilter) (int, error) {
	where := userWhere(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where.clause(), where.args...).
		Scan(&total); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count users",
			slog.String("error", err.Error()))
		return 0, store.NewStoreError("user", "count", "failed to count users", MapError(err))
	}
	return total, nil
}

func userWhere(filter store.UserFilter) *whereBuilder {
	where := &whereBuilder{}
	where.add("is_deleted = FALSE")
	if filter.Name != "" {
		where.add("name = ?", filter.Name)
	}
	return where
}

func (s *PostgresUserStore) query(ctx context.Context, op, query string, args ...any) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query users", slog.String("operation", op), slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", op, "failed to query users", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, store.NewStoreError("user", op, "failed to scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("user", op, "failed to iterate users", err)
	}

	if err := s.populateTasks(ctx, op, users); err != nil {
		return nil, err
	}
	return users, nil
}

// populateTasks fills Tasks for every user with one query over user_tasks.
func (s *PostgresUserStore) populateTasks(ctx context.Context, op string, users []*domain.User) error {
	if len(users) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.User, len(users))
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		u.Tasks = []uuid.UUID{}
		byID[u.ID] = u
		ids = append(ids, u.ID)
	}

	// One array parameter keeps large batches under the bind parameter limit.
	query := `SELECT user_id, task_id FROM user_tasks WHERE user_id = ANY($1) ORDER BY position`
	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		return store.NewStoreError("user", op, "failed to load task links", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var userID, taskID uuid.UUID
		if err := rows.Scan(&userID, &taskID); err != nil {
			return store.NewStoreError("user", op, "failed to scan task link", err)
		}
		if u, ok := byID[userID]; ok {
			u.Tasks = append(u.Tasks, taskID)
		}
	}
	if err := rows.Err(); err != nil {
		return store.NewStoreError("user", op, "failed to iterate task links", err)
	}
	return nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.IsDeleted,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	user.Tasks = []uuid.UUID{}
	return &user, nil
}
