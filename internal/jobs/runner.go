package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// ErrRunnerStopped is recorded for jobs still queued when the runner stops.
var ErrRunnerStopped = errors.New("job runner stopped before the job ran")

// RunnerConfig holds configuration for the job runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue
	QueueSize int

	// MaxRecords caps how many completed or failed jobs Lookup can report.
	// The oldest finished records are evicted first.
	MaxRecords int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
		MaxRecords:  100,
	}
}

// Record is the last known state of a submitted job.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type schedule struct {
	interval time.Duration
	newJob   func() Job
}

// Runner manages background job processing and periodic scheduling.
type Runner struct {
	queue  *Queue
	pool   *WorkerPool
	logger *slog.Logger

	mu         sync.RWMutex
	records    map[uuid.UUID]Record
	finished   []uuid.UUID // finished record IDs, oldest first
	maxRecords int
	schedules  []schedule
	started    bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	now    func() time.Time
}

// NewRunner creates a new Runner. Call Start to begin processing.
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "job_runner")

	queue := NewQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)
	ctx, cancel := context.WithCancel(context.Background())

	maxRecords := config.MaxRecords
	if maxRecords <= 0 {
		maxRecords = DefaultRunnerConfig().MaxRecords
	}

	r := &Runner{
		queue:      queue,
		pool:       pool,
		logger:     logger,
		records:    make(map[uuid.UUID]Record),
		maxRecords: maxRecords,
		ctx:        ctx,
		cancel:     cancel,
		now:        time.Now,
	}
	pool.SetStatusHandler(r.setStatus)
	return r
}

// Schedule registers newJob to be submitted every interval once the runner starts.
func (r *Runner) Schedule(interval time.Duration, newJob func() Job) error {
	if interval <= 0 {
		return fmt.Errorf("schedule interval must be positive, got %s", interval)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return fmt.Errorf("cannot add a schedule to a started runner")
	}
	r.schedules = append(r.schedules, schedule{interval: interval, newJob: newJob})
	return nil
}

// Submit queues job for execution. It never blocks: a full queue is an error.
// ctx only scopes the submission; the job runs under the runner's context.
func (r *Runner) Submit(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to submit job: %w", err)
	}

	r.setStatus(job, StatusPending, nil)

	if err := r.queue.Enqueue(job); err != nil {
		r.mu.Lock()
		delete(r.records, job.ID())
		r.mu.Unlock()
		return fmt.Errorf("failed to submit job: %w", err)
	}

	logger.FromContextOrDefault(ctx, r.logger).Debug("job submitted",
		slog.String("job_id", job.ID().String()),
		slog.String("job_type", job.Type()))
	return nil
}

// Lookup returns the last known state of the job with the given ID.
func (r *Runner) Lookup(id uuid.UUID) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	return rec, ok
}

// Start launches the worker pool and any scheduled jobs.
func (r *Runner) Start() {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	schedules := r.schedules
	r.mu.Unlock()

	r.pool.Start()
	for _, s := range schedules {
		r.wg.Add(1)
		go r.tick(s)
	}
}

// Stop halts the schedulers, closes the queue and waits for the workers.
// Jobs still buffered once the workers exit are recorded as failed.
func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
	r.queue.Close()
	r.pool.Stop()

	dropped := 0
	for job := range r.queue.Channel() {
		r.setStatus(job, StatusFailed, ErrRunnerStopped)
		dropped++
	}
	if dropped > 0 {
		r.logger.Warn("queued jobs dropped at shutdown", "count", dropped)
	}
}

func (r *Runner) tick(s schedule) {
	defer r.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			job := s.newJob()
			if err := r.Submit(r.ctx, job); err != nil {
				r.logger.Warn("failed to submit scheduled job",
					"job_type", job.Type(),
					"error", err)
			}
		}
	}
}

func (r *Runner) setStatus(job Job, status Status, err error) {
	rec := Record{
		ID:        job.ID(),
		Type:      job.Type(),
		Status:    status,
		UpdatedAt: r.now().UTC(),
	}
	if err != nil {
		rec.Error = err.Error()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[rec.ID] = rec
	if status != StatusCompleted && status != StatusFailed {
		return
	}
	r.finished = append(r.finished, rec.ID)
	for len(r.finished) > r.maxRecords {
		delete(r.records, r.finished[0])
		r.finished = r.finished[1:]
	}
}
