package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/jobs"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// JobSubmitter queues background jobs and reports on them.
type JobSubmitter interface {
	Submit(ctx context.Context, job jobs.Job) error
	Lookup(id uuid.UUID) (jobs.Record, bool)
}

// AdminHandler exposes maintenance operations.
type AdminHandler struct {
	runner     JobSubmitter
	reconciler jobs.LinkReconciler
	logger     *slog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(runner JobSubmitter, reconciler jobs.LinkReconciler, logger *slog.Logger) *AdminHandler {
	if runner == nil || reconciler == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("runner and reconciler cannot be nil for AdminHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AdminHandler")
	}

	return &AdminHandler{
		runner:     runner,
		reconciler: reconciler,
		logger:     logger.With(slog.String("component", "admin_handler")),
	}
}

// Reconcile handles POST /admin/reconcile. The job runs in the background.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	job := jobs.NewReconcileJob(h.reconciler, h.logger)
	if err := h.runner.Submit(r.Context(), job); err != nil {
		HandleAPIError(w, r, err, "Failed to queue reconciliation")
		return
	}

	log.Info("reconcile job queued", slog.String("job_id", job.ID().String()))
	shared.RespondWithData(w, r, http.StatusAccepted, JobResponse{
		ID:     job.ID(),
		Type:   job.Type(),
		Status: jobs.StatusPending,
	}, "Reconciliation Queued")
}

// GetJob handles GET /admin/jobs/{jobId}
func (h *AdminHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "jobId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	rec, ok := h.runner.Lookup(id)
	if !ok {
		HandleAPIError(w, r, store.ErrNotFound, "")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, rec, "Job Found")
}
