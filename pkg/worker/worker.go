package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/queuectl/queuectl/pkg/core"
	"github.com/queuectl/queuectl/pkg/queue"
)

// Worker is one claim/execute/report loop against the shared store.
// Multiple workers need no coordination beyond the store's atomic claim.
type Worker struct {
	id      string
	manager *queue.Manager
	config  Config
	logger  *slog.Logger
}

// Config holds one worker's runtime settings.
type Config struct {
	// JobTimeout is the wall-clock limit for one command execution.
	JobTimeout time.Duration

	// PollInterval is how long to sleep when no job is claimable.
	PollInterval time.Duration

	// StorageRetry guards claims and outcome reports against transient
	// storage failures.
	StorageRetry RetryConfig
}

// NewWorker creates a worker bound to the given manager.
func NewWorker(m *queue.Manager, config Config, opts ...Option) *Worker {
	if config.StorageRetry.MaxAttempts == 0 {
		config.StorageRetry = DefaultRetryConfig()
	}

	w := &Worker{
		id:      uuid.New().String(),
		manager: m,
		config:  config,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt.apply(w)
	}
	return w
}

// ID returns the worker's claim identity.
func (w *Worker) ID() string {
	return w.id
}

// Run is the worker loop. It claims and executes jobs until ctx is
// cancelled, which is only observed between claim attempts: a command
// already running finishes (or hits its own timeout) and its outcome is
// reported before the worker exits.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Debug("worker started", "worker_id", w.id)
	defer w.logger.Debug("worker stopped", "worker_id", w.id)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.claim(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			// Storage trouble: already retried with backoff, so just log
			// and wait out the next poll cycle.
			w.logger.Error("claim failed", "worker_id", w.id, "error", err)
			if !w.sleep(ctx) {
				return
			}
			continue
		}
		if job == nil {
			if !w.sleep(ctx) {
				return
			}
			continue
		}

		w.process(job)
	}
}

// claim attempts to take one eligible job, retrying transient store errors.
func (w *Worker) claim(ctx context.Context) (*core.Job, error) {
	var job *core.Job
	err := retryWithBackoff(ctx, w.config.StorageRetry, func() error {
		var claimErr error
		job, claimErr = w.manager.Storage().ClaimNext(ctx, w.id, time.Now())
		return claimErr
	})
	return job, err
}

// process executes the claimed job and reports its outcome. Execution and
// reporting deliberately do not use the loop context: a pool-level stop
// must drain this cycle, and the per-job timeout is the only forceful
// interruption allowed.
func (w *Worker) process(job *core.Job) {
	w.logger.Info("processing job", "worker_id", w.id, "job_id", job.ID, "command", job.Command)
	start := time.Now()

	success, errMsg := runCommand(job.Command, w.config.JobTimeout)

	if success {
		w.logger.Info("job succeeded", "worker_id", w.id, "job_id", job.ID, "duration", time.Since(start))
	} else {
		w.logger.Warn("job failed", "worker_id", w.id, "job_id", job.ID, "error", errMsg)
	}

	reportCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := retryWithBackoff(reportCtx, w.config.StorageRetry, func() error {
		return w.manager.RecordOutcome(reportCtx, job.ID, success, errMsg)
	})
	if err != nil {
		// The claim stays in processing; the lease-expiry scan will return
		// it to pending.
		w.logger.Error("failed to report outcome", "worker_id", w.id, "job_id", job.ID, "error", err)
	}
}

// sleep waits one poll interval, returning false if ctx was cancelled.
func (w *Worker) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(w.config.PollInterval):
		return true
	}
}
