package core

import (
	"context"
	"time"
)

// Stats holds per-state job counts.
type Stats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// Storage defines the durable persistence layer for jobs.
//
// Multiple worker processes may share one Storage; every mutation must be a
// single atomic operation against the store. In particular ClaimNext must
// guarantee that two concurrent callers never receive the same job.
type Storage interface {
	// Migrate creates the necessary database tables.
	Migrate(ctx context.Context) error

	// Insert persists a new pending job. Returns ErrDuplicateID if a job
	// with the same ID already exists.
	Insert(ctx context.Context, job *Job) error

	// ClaimNext atomically claims the oldest eligible job for workerID,
	// transitioning it to processing. Returns (nil, nil) when no job is
	// eligible. Eligible means pending with any backoff window elapsed at
	// the given instant.
	ClaimNext(ctx context.Context, workerID string, now time.Time) (*Job, error)

	// ReportSuccess transitions a processing job to completed.
	ReportSuccess(ctx context.Context, jobID string) error

	// ReportFailure increments the job's attempt count. If the count now
	// exceeds MaxRetries the job transitions to dead; otherwise it returns
	// to pending, not claimable again before now+backoffDelay. The error
	// message is recorded either way.
	ReportFailure(ctx context.Context, jobID string, errMsg string, backoffDelay time.Duration) error

	// RecoverStaleProcessing returns processing jobs whose claim is older
	// than leaseTimeout to pending, clearing claim fields. Attempts are not
	// incremented: the attempt was never conclusively reported. Returns the
	// number of jobs recovered.
	RecoverStaleProcessing(ctx context.Context, leaseTimeout time.Duration, now time.Time) (int64, error)

	// Get retrieves a job by ID. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, jobID string) (*Job, error)

	// List returns jobs, optionally filtered by state ("" means all),
	// newest update first, capped at limit.
	List(ctx context.Context, state JobState, limit int) ([]*Job, error)

	// ReviveDead returns a dead job to pending with attempts reset to zero
	// and the recorded error cleared. Returns ErrNotFound for unknown IDs
	// and ErrInvalidState if the job is not dead.
	ReviveDead(ctx context.Context, jobID string, now time.Time) error

	// Stats returns per-state job counts.
	Stats(ctx context.Context) (*Stats, error)

	// DeleteCompletedBefore removes completed jobs last updated before the
	// cutoff. Retention maintenance, never called on live states.
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
