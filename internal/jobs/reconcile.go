package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// LinkReconciler is the part of service.ReconcileService a ReconcileJob needs.
type LinkReconciler interface {
	ReconcileLinks(ctx context.Context) (*service.ReconcileReport, error)
}

// ReconcileJob runs one link reconciliation pass.
type ReconcileJob struct {
	id         uuid.UUID
	reconciler LinkReconciler
	logger     *slog.Logger
}

var _ Job = (*ReconcileJob)(nil)

// NewReconcileJob creates a job that calls reconciler once.
func NewReconcileJob(reconciler LinkReconciler, logger *slog.Logger) *ReconcileJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileJob{
		id:         uuid.New(),
		reconciler: reconciler,
		logger:     logger,
	}
}

// ReconcileJobFactory returns a constructor suitable for Runner.Schedule.
func ReconcileJobFactory(reconciler LinkReconciler, logger *slog.Logger) func() Job {
	return func() Job {
		return NewReconcileJob(reconciler, logger)
	}
}

// ID implements Job.
func (j *ReconcileJob) ID() uuid.UUID { return j.id }

// Type implements Job.
func (j *ReconcileJob) Type() string { return TypeReconcileLinks }

// Execute implements Job.
func (j *ReconcileJob) Execute(ctx context.Context) error {
	report, err := j.reconciler.ReconcileLinks(ctx)
	if err != nil {
		return fmt.Errorf("reconcile links: %w", err)
	}

	j.logger.Debug("reconcile job finished",
		"job_id", j.id,
		"stale_removed", report.StaleRemoved,
		"missing_restored", report.MissingRestored)
	return nil
}
