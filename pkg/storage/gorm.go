package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/queuectl/queuectl/pkg/core"
	"github.com/queuectl/queuectl/pkg/security"
)

// claimCandidates bounds how many eligible jobs one ClaimNext call will
// race for before giving up the poll cycle.
const claimCandidates = 5

// GormStorage implements core.Storage using GORM. It works against SQLite
// and PostgreSQL; every mutation is a single conditional UPDATE (or a
// transaction) so concurrent workers can share one database safely.
type GormStorage struct {
	db *gorm.DB
}

var _ core.Storage = (*GormStorage)(nil)

// NewGormStorage creates a new GORM-backed storage.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

// Migrate creates the necessary tables.
func (s *GormStorage) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&core.Job{})
}

// Insert persists a new pending job.
func (s *GormStorage) Insert(ctx context.Context, job *core.Job) error {
	if job.State == "" {
		job.State = core.StatePending
	}
	err := s.db.WithContext(ctx).Create(job).Error
	if err != nil && isUniqueViolation(err) {
		return core.ErrDuplicateID
	}
	return err
}

// ClaimNext atomically claims the oldest eligible job for workerID.
//
// The claim itself is a conditional UPDATE whose WHERE clause re-checks
// eligibility, so the candidate SELECT never holds a lock: if another worker
// wins the race RowsAffected is 0 and we move to the next candidate. Losing
// every candidate is not an error, just an empty poll.
func (s *GormStorage) ClaimNext(ctx context.Context, workerID string, now time.Time) (*core.Job, error) {
	var candidates []string
	err := s.db.WithContext(ctx).
		Model(&core.Job{}).
		Where("state = ?", core.StatePending).
		Where("(next_attempt_at IS NULL OR next_attempt_at <= ?)", now).
		Order("created_at ASC").
		Limit(claimCandidates).
		Pluck("id", &candidates).Error
	if err != nil {
		return nil, err
	}

	for _, id := range candidates {
		result := s.db.WithContext(ctx).
			Model(&core.Job{}).
			Where("id = ? AND state = ?", id, core.StatePending).
			Where("(next_attempt_at IS NULL OR next_attempt_at <= ?)", now).
			Updates(map[string]any{
				"state":      core.StateProcessing,
				"claimed_by": workerID,
				"claimed_at": now,
				"updated_at": now,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			// Another worker won this one.
			continue
		}

		var job core.Job
		if err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &job, nil
	}

	return nil, nil
}

// ReportSuccess transitions a processing job to completed.
func (s *GormStorage) ReportSuccess(ctx context.Context, jobID string) error {
	now := time.Now()
	result := s.db.WithContext(ctx).
		Model(&core.Job{}).
		Where("id = ? AND state = ?", jobID, core.StateProcessing).
		Updates(map[string]any{
			"state":      core.StateCompleted,
			"claimed_by": "",
			"claimed_at": nil,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return s.stateConflict(ctx, jobID)
	}
	return nil
}

// ReportFailure increments the attempt count and either schedules a retry or
// moves the job to the dead letter queue.
func (s *GormStorage) ReportFailure(ctx context.Context, jobID string, errMsg string, backoffDelay time.Duration) error {
	sanitized := security.SanitizeErrorMessage(errMsg)
	now := time.Now()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job core.Job
		if err := tx.First(&job, "id = ?", jobID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return core.ErrNotFound
			}
			return err
		}
		if job.State != core.StateProcessing {
			return &core.InvalidStateError{JobID: jobID, State: job.State}
		}

		attempts := job.Attempts + 1
		updates := map[string]any{
			"attempts":   attempts,
			"last_error": sanitized,
			"claimed_by": "",
			"claimed_at": nil,
			"updated_at": now,
		}
		if attempts > job.MaxRetries {
			updates["state"] = core.StateDead
			updates["next_attempt_at"] = nil
		} else {
			updates["state"] = core.StatePending
			updates["next_attempt_at"] = now.Add(backoffDelay)
		}

		result := tx.Model(&core.Job{}).
			Where("id = ? AND state = ?", jobID, core.StateProcessing).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &core.InvalidStateError{JobID: jobID, State: job.State}
		}
		return nil
	})
}

// RecoverStaleProcessing returns abandoned processing jobs to pending.
// Attempts are left untouched: the attempt was never conclusively reported,
// so it does not count against the retry budget.
func (s *GormStorage) RecoverStaleProcessing(ctx context.Context, leaseTimeout time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-leaseTimeout)
	result := s.db.WithContext(ctx).
		Model(&core.Job{}).
		Where("state = ?", core.StateProcessing).
		Where("claimed_at < ?", cutoff).
		Updates(map[string]any{
			"state":      core.StatePending,
			"claimed_by": "",
			"claimed_at": nil,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

// ReviveDead moves a dead job back to pending with a fresh retry budget.
func (s *GormStorage) ReviveDead(ctx context.Context, jobID string, now time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&core.Job{}).
		Where("id = ? AND state = ?", jobID, core.StateDead).
		Updates(map[string]any{
			"state":           core.StatePending,
			"attempts":        0,
			"last_error":      "",
			"next_attempt_at": now,
			"updated_at":      now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return s.stateConflict(ctx, jobID)
	}
	return nil
}

// Get retrieves a job by ID.
func (s *GormStorage) Get(ctx context.Context, jobID string) (*core.Job, error) {
	var job core.Job
	err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// List returns jobs, optionally filtered by state, newest update first.
func (s *GormStorage) List(ctx context.Context, state core.JobState, limit int) ([]*core.Job, error) {
	q := s.db.WithContext(ctx).Model(&core.Job{})
	if state != "" {
		q = q.Where("state = ?", state)
	}

	var jobList []*core.Job
	err := q.Order("updated_at DESC").
		Limit(security.ClampLimit(limit, 100)).
		Find(&jobList).Error
	return jobList, err
}

// Stats returns per-state job counts.
func (s *GormStorage) Stats(ctx context.Context) (*core.Stats, error) {
	type row struct {
		State core.JobState
		Count int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&core.Job{}).
		Select("state, COUNT(*) as count").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &core.Stats{}
	for _, r := range rows {
		switch r.State {
		case core.StatePending:
			stats.Pending = r.Count
		case core.StateProcessing:
			stats.Processing = r.Count
		case core.StateCompleted:
			stats.Completed = r.Count
		case core.StateDead:
			stats.Dead = r.Count
		}
		stats.Total += r.Count
	}
	return stats, nil
}

// DeleteCompletedBefore removes completed jobs last updated before cutoff.
func (s *GormStorage) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("state = ? AND updated_at < ?", core.StateCompleted, cutoff).
		Delete(&core.Job{})
	return result.RowsAffected, result.Error
}

// stateConflict turns a zero-row conditional update into the right sentinel:
// ErrNotFound if the job does not exist, InvalidStateError otherwise.
func (s *GormStorage) stateConflict(ctx context.Context, jobID string) error {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}
	return &core.InvalidStateError{JobID: jobID, State: job.State}
}
