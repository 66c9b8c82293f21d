package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/taskboard-api/internal/api"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/memory"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
)

const connectTimeout = 5 * time.Second

// backend bundles the stores of one storage driver with its transaction
// runner and health probe.
type backend struct {
	tx     store.Transactor
	tasks  store.TaskStore
	users  store.UserStore
	links  store.AssignmentStore
	pinger api.Pinger
	close  func() error
}

// openBackend builds the backend selected by cfg.Driver. For postgres the
// embedded migrations are applied before the stores are returned.
func openBackend(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		return newMemoryBackend(logger), nil
	case config.DriverPostgres:
		db, closeDB, err := setupAppDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(db, "up", logger); err != nil {
			_ = closeDB()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		b := newPostgresBackend(db, logger)
		b.close = closeDB
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// setupAppDatabase creates a pgx connection pool and exposes it through
// database/sql for the stores and goose. The returned func closes both.
func setupAppDatabase(
	ctx context.Context,
	cfg config.DatabaseConfig,
	logger *slog.Logger,
) (*sql.DB, func() error, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse database URL: %s", redact.Error(err))
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute
	poolCfg.ConnConfig.ConnectTimeout = connectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %s", redact.Error(err))
	}

	db := stdlib.OpenDBFromPool(pool)
	closeDB := func() error {
		err := db.Close()
		pool.Close()
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = closeDB()
		return nil, nil, fmt.Errorf("failed to ping database: %s", redact.Error(err))
	}

	logger.Info("Database connection established",
		"max_conns", poolCfg.MaxConns,
		"min_conns", poolCfg.MinConns)
	return db, closeDB, nil
}

func newPostgresBackend(db *sql.DB, logger *slog.Logger) *backend {
	return &backend{
		tx:     store.NewDBTransactor(db),
		tasks:  postgres.NewPostgresTaskStore(db, logger),
		users:  postgres.NewPostgresUserStore(db, logger),
		links:  postgres.NewPostgresAssignmentStore(db, logger),
		pinger: db,
		close:  db.Close,
	}
}

func newMemoryBackend(logger *slog.Logger) *backend {
	db := memory.NewDB(logger)
	return &backend{
		tx:     db,
		tasks:  memory.NewTaskStore(db),
		users:  memory.NewUserStore(db),
		links:  memory.NewAssignmentStore(db),
		pinger: api.PingerFunc(db.Ping),
		close:  func() error { return nil },
	}
}
