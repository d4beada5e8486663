package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/queuectl/queuectl/pkg/config"
	"github.com/queuectl/queuectl/pkg/queue"
)

// ErrDrainTimeout is returned by Stop when workers did not terminate within
// the window. Their in-flight jobs are recovered later by lease expiry.
var ErrDrainTimeout = errors.New("queuectl: shutdown timed out, abandoning workers")

// ErrPoolRunning is returned by Start when the pool is already active.
var ErrPoolRunning = errors.New("queuectl: worker pool already running")

// Pool owns N workers plus the maintenance loops: a periodic lease-expiry
// scan and a cron-scheduled cleanup of old completed jobs.
type Pool struct {
	manager *queue.Manager
	cfg     config.Config
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	cron   *cron.Cron
}

// NewPool creates a pool. The configuration is validated here; the pool
// refuses to exist with out-of-range settings.
func NewPool(m *queue.Manager, cfg config.Config) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pool{
		manager: m,
		cfg:     cfg,
		logger:  slog.Default(),
	}, nil
}

// SetLogger replaces the default logger. Must be called before Start.
func (p *Pool) SetLogger(l *slog.Logger) {
	p.logger = l
}

// Start spawns count workers, each an independent claimer against the same
// store, plus the maintenance loops. It returns immediately; use Stop (or
// cancel ctx) to shut down.
func (p *Pool) Start(ctx context.Context, count int) error {
	if count < 1 {
		return fmt.Errorf("queuectl: worker count must be >= 1, got %d", count)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		return ErrPoolRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)

	// A previous process may have died mid-execution; sweep before the
	// first worker claims anything.
	p.recoverStale(runCtx)

	workerCfg := Config{
		JobTimeout:   p.cfg.JobTimeout(),
		PollInterval: p.cfg.PollInterval(),
	}
	for i := 0; i < count; i++ {
		w := NewWorker(p.manager, workerCfg, WithLogger(p.logger))
		g.Go(func() error {
			w.Run(gctx)
			return nil
		})
	}

	g.Go(func() error {
		p.runRecoveryLoop(gctx)
		return nil
	})

	p.cron = cron.New()
	if _, err := p.cron.AddFunc(p.cfg.CleanupSchedule, func() { p.runCleanup(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("queuectl: invalid cleanup schedule %q: %w", p.cfg.CleanupSchedule, err)
	}
	p.cron.Start()

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	p.cancel = cancel
	p.done = done
	p.logger.Info("worker pool started", "workers", count,
		"poll_interval", p.cfg.PollInterval(), "job_timeout", p.cfg.JobTimeout())
	return nil
}

// Stop signals all workers to shut down and waits up to timeout for them to
// drain. Each worker finishes its current execute/report cycle first; no
// new claims happen after the signal. Workers still running when the window
// closes are abandoned and Stop returns ErrDrainTimeout.
func (p *Pool) Stop(timeout time.Duration) error {
	p.mu.Lock()
	cancel, done, c := p.cancel, p.done, p.cron
	p.cancel, p.done, p.cron = nil, nil, nil
	p.mu.Unlock()

	if done == nil {
		return nil
	}

	p.logger.Info("stopping worker pool", "timeout", timeout)
	if c != nil {
		c.Stop()
	}
	cancel()

	select {
	case <-done:
		p.logger.Info("worker pool stopped")
		return nil
	case <-time.After(timeout):
		p.logger.Warn("worker pool drain timed out")
		return ErrDrainTimeout
	}
}

// Wait blocks until every worker has terminated.
func (p *Pool) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// runRecoveryLoop periodically returns abandoned processing jobs to
// pending, independent of any single worker, so crashed or killed workers
// do not permanently strand jobs.
func (p *Pool) runRecoveryLoop(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.recoverStale(ctx)
		}
	}
}

func (p *Pool) recoverStale(ctx context.Context) {
	n, err := p.manager.Storage().RecoverStaleProcessing(ctx, p.cfg.LeaseTimeout(), time.Now())
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.logger.Error("stale job recovery failed", "error", err)
		}
		return
	}
	if n > 0 {
		p.logger.Warn("recovered stale processing jobs", "count", n)
	}
}

func (p *Pool) runCleanup(ctx context.Context) {
	cutoff := time.Now().Add(-p.cfg.CleanupRetention())
	n, err := p.manager.Storage().DeleteCompletedBefore(ctx, cutoff)
	if err != nil {
		p.logger.Error("completed job cleanup failed", "error", err)
		return
	}
	if n > 0 {
		p.logger.Info("cleaned up old completed jobs", "count", n, "cutoff", cutoff)
	}
}
