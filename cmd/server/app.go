package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/jobs"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	backend *backend

	// jwtService is nil when authentication is disabled.
	jwtService auth.JWTService

	taskService      service.TaskService
	userService      service.UserService
	reconcileService service.ReconcileService

	eventEmitter *events.InMemoryEventEmitter
	jobRunner    *jobs.Runner
}

// newApplication wires services, events and background jobs on top of an
// open backend. The job runner is started before it returns; call cleanup to
// stop it.
func newApplication(cfg *config.Config, logger *slog.Logger, b *backend) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		backend: b,
	}

	if cfg.Auth.Enabled() {
		jwtService, err := auth.NewJWTService(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		app.jwtService = jwtService
		logger.Info("JWT authentication enabled",
			"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)
	} else {
		logger.Warn("JWT authentication disabled; API routes are open")
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewAuditHandler(logger))

	var err error
	app.taskService, err = service.NewTaskService(b.tx, b.tasks, b.users, b.links, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.userService, err = service.NewUserService(b.tx, b.tasks, b.users, b.links, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.reconcileService, err = service.NewReconcileService(b.tx, b.links, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconcile service: %w", err)
	}

	app.jobRunner, err = setupJobRunner(app)
	if err != nil {
		return nil, fmt.Errorf("failed to setup job runner: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupJobRunner creates and starts the background job runner, scheduling
// periodic link reconciliation when it is enabled.
func setupJobRunner(app *application) (*jobs.Runner, error) {
	rc := app.config.Reconcile
	runner := jobs.NewRunner(jobs.RunnerConfig{
		WorkerCount: rc.WorkerCount,
		QueueSize:   rc.QueueSize,
		MaxRecords:  rc.JobHistory,
	}, app.logger)

	if rc.Enabled {
		interval := time.Duration(rc.IntervalMinutes) * time.Minute
		if err := runner.Schedule(interval, jobs.ReconcileJobFactory(app.reconcileService, app.logger)); err != nil {
			return nil, fmt.Errorf("failed to schedule link reconciliation: %w", err)
		}
		app.logger.Info("Link reconciliation scheduled", "interval", interval.String())
	}

	runner.Start()
	return runner, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns when ctx is canceled or the server fails.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}

	if app.backend != nil && app.backend.close != nil {
		if err := app.backend.close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
