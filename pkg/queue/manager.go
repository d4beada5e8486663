// Package queue implements the job lifecycle API on top of core.Storage.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/queuectl/queuectl/pkg/backoff"
	"github.com/queuectl/queuectl/pkg/core"
	"github.com/queuectl/queuectl/pkg/security"
)

// Manager owns job lifecycle operations: enqueueing, listing, DLQ retries,
// and applying the retry/backoff policy to worker-reported outcomes.
type Manager struct {
	storage    core.Storage
	backoff    backoff.Strategy
	maxRetries int
	logger     *slog.Logger
}

// New creates a Manager. defaultMaxRetries applies to jobs enqueued without
// an explicit budget; it must be >= 0.
func New(s core.Storage, strategy backoff.Strategy, defaultMaxRetries int) (*Manager, error) {
	if defaultMaxRetries < 0 {
		return nil, core.ErrNegRetries
	}
	return &Manager{
		storage:    s,
		backoff:    strategy,
		maxRetries: defaultMaxRetries,
		logger:     slog.Default(),
	}, nil
}

// Storage returns the underlying storage.
func (m *Manager) Storage() core.Storage {
	return m.storage
}

// Enqueue validates and persists a new pending job, returning its snapshot.
// A nil maxRetries override uses the manager default.
func (m *Manager) Enqueue(ctx context.Context, id, command string, opts ...EnqueueOption) (*core.Job, error) {
	options := enqueueOptions{maxRetries: m.maxRetries}
	for _, opt := range opts {
		opt(&options)
	}

	verr := &core.ValidationError{}
	if err := security.ValidateJobID(id); err != nil {
		verr.Add(err)
	}
	if command == "" {
		verr.Add(core.ErrEmptyCommand)
	}
	if options.maxRetries < 0 {
		verr.Add(core.ErrNegRetries)
	}
	if verr.HasErrors() {
		return nil, verr
	}

	job := &core.Job{
		ID:         id,
		Command:    command,
		State:      core.StatePending,
		MaxRetries: options.maxRetries,
	}
	if err := m.storage.Insert(ctx, job); err != nil {
		return nil, err
	}

	m.logger.Info("job enqueued", "job_id", id, "max_retries", options.maxRetries)
	return job, nil
}

// Get retrieves a job by ID.
func (m *Manager) Get(ctx context.Context, id string) (*core.Job, error) {
	return m.storage.Get(ctx, id)
}

// List returns jobs, optionally filtered by state ("" for all).
func (m *Manager) List(ctx context.Context, state core.JobState, limit int) ([]*core.Job, error) {
	if state != "" && !state.Valid() {
		verr := &core.ValidationError{}
		verr.Add(fmt.Errorf("%w: %q", core.ErrUnknownState, state))
		return nil, verr
	}
	return m.storage.List(ctx, state, limit)
}

// Stats returns per-state job counts.
func (m *Manager) Stats(ctx context.Context) (*core.Stats, error) {
	return m.storage.Stats(ctx)
}

// DLQRetry revives a dead job: attempts back to zero, error cleared, state
// pending and immediately claimable.
func (m *Manager) DLQRetry(ctx context.Context, id string) error {
	if err := m.storage.ReviveDead(ctx, id, time.Now()); err != nil {
		return err
	}
	m.logger.Info("dead job requeued", "job_id", id)
	return nil
}

// RecordOutcome applies a worker's execution result. Success completes the
// job; failure schedules a retry with exponential backoff, or moves the job
// to the DLQ once the budget is spent.
func (m *Manager) RecordOutcome(ctx context.Context, id string, success bool, errMsg string) error {
	if success {
		return m.storage.ReportSuccess(ctx, id)
	}

	// The delay is computed from the attempt count as it will be after
	// ReportFailure increments it. The worker holding the claim is the only
	// writer, so the read is not racy.
	job, err := m.storage.Get(ctx, id)
	if err != nil {
		return err
	}
	delay := m.backoff.Delay(job.Attempts + 1)

	if err := m.storage.ReportFailure(ctx, id, errMsg, delay); err != nil {
		return err
	}

	if job.Attempts+1 > job.MaxRetries {
		m.logger.Warn("job moved to dead letter queue",
			"job_id", id, "attempts", job.Attempts+1, "error", errMsg)
	} else {
		m.logger.Info("job scheduled for retry",
			"job_id", id, "attempts", job.Attempts+1, "delay", delay)
	}
	return nil
}
