package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// ReconcileService repairs assignment links so that they agree with each
// task's assignee. The task side is treated as the source of truth.
type ReconcileService interface {
	ReconcileLinks(ctx context.Context) (*ReconcileReport, error)
}

type reconcileServiceImpl struct {
	tx      store.Transactor
	links   store.AssignmentStore
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(
	tx store.Transactor,
	links store.AssignmentStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (ReconcileService, error) {
	if tx == nil {
		return nil, missingDependency("create_reconcile_service", "transactor")
	}
	if links == nil {
		return nil, missingDependency("create_reconcile_service", "links")
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &reconcileServiceImpl{
		tx:      tx,
		links:   links,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "reconcile_service")),
	}, nil
}

// ReconcileLinks removes stale links and restores missing ones in one transaction.
func (s *reconcileServiceImpl) ReconcileLinks(ctx context.Context) (*ReconcileReport, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	report := &ReconcileReport{}
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		links := s.links.WithTx(tx)

		stale, err := links.PruneStale(ctx)
		if err != nil {
			return err
		}
		missing, err := links.RestoreMissing(ctx)
		if err != nil {
			return err
		}

		report.StaleRemoved, report.MissingRestored = stale, missing
		return nil
	})
	if err != nil {
		return nil, NewServiceError("reconcile_links", "failed to reconcile links", err)
	}

	if report.StaleRemoved == 0 && report.MissingRestored == 0 {
		log.Debug("assignment links already consistent")
		return report, nil
	}

	log.Info("assignment links reconciled",
		slog.Int64("stale_removed", report.StaleRemoved),
		slog.Int64("missing_restored", report.MissingRestored))
	emit(ctx, s.emitter, log, events.TypeLinksReconciled, events.ReconcilePayload{
		StaleRemoved:    report.StaleRemoved,
		MissingRestored: report.MissingRestored,
	})
	return report, nil
}
