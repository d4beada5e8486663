// Package queuectl provides a persistent background job queue with retries,
// exponential backoff, and a dead letter queue.
//
// This is the main package users should import. It re-exports the public
// types from the pkg/ packages for a clean API surface.
//
// Basic usage:
//
//	db, _ := gorm.Open(sqlite.Open("queuectl.db"), &gorm.Config{})
//	store := queuectl.NewGormStorage(db)
//	store.Migrate(context.Background())
//
//	strategy, _ := queuectl.NewExponentialBackoff(2.0)
//	manager, _ := queuectl.NewManager(store, strategy, 3)
//
//	// Enqueue a shell command
//	manager.Enqueue(ctx, "backup-1", "tar czf /backups/data.tgz /data")
//
//	// Run workers
//	pool, _ := queuectl.NewPool(manager, queuectl.DefaultConfig())
//	pool.Start(ctx, 4)
//	defer pool.Stop(10 * time.Second)
package queuectl

import (
	"github.com/queuectl/queuectl/pkg/backoff"
	"github.com/queuectl/queuectl/pkg/config"
	"github.com/queuectl/queuectl/pkg/core"
	"github.com/queuectl/queuectl/pkg/queue"
	"github.com/queuectl/queuectl/pkg/storage"
	"github.com/queuectl/queuectl/pkg/worker"
)

// Type aliases re-exported from pkg/.
type (
	// Job represents one shell command queued for background execution.
	Job = core.Job

	// JobState represents the current state of a job.
	JobState = core.JobState

	// Stats holds per-state job counts.
	Stats = core.Stats

	// Storage defines the durable persistence layer for jobs.
	Storage = core.Storage

	// ValidationError aggregates field-level validation failures.
	ValidationError = core.ValidationError

	// Manager owns job lifecycle operations.
	Manager = queue.Manager

	// Pool owns N workers under one shutdown coordination.
	Pool = worker.Pool

	// Config holds the queue's runtime configuration.
	Config = config.Config
)

// Job states.
const (
	StatePending    = core.StatePending
	StateProcessing = core.StateProcessing
	StateCompleted  = core.StateCompleted
	StateDead       = core.StateDead
)

// Sentinel errors.
var (
	ErrDuplicateID  = core.ErrDuplicateID
	ErrNotFound     = core.ErrNotFound
	ErrInvalidState = core.ErrInvalidState
	ErrDrainTimeout = worker.ErrDrainTimeout
)

// NewGormStorage creates a GORM-backed storage.
var NewGormStorage = storage.NewGormStorage

// NewManager creates a queue manager.
var NewManager = queue.New

// NewPool creates a worker pool.
var NewPool = worker.NewPool

// NewExponentialBackoff creates the base^attempts retry delay strategy.
var NewExponentialBackoff = backoff.NewExponential

// DefaultConfig returns the default runtime configuration.
var DefaultConfig = config.Default

// WithMaxRetries overrides the default retry budget for one Enqueue call.
var WithMaxRetries = queue.WithMaxRetries
