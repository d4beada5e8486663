package core

import (
	"time"
)

// JobState represents the current state of a job.
type JobState string

const (
	StatePending    JobState = "pending"
	StateProcessing JobState = "processing"
	StateCompleted  JobState = "completed"
	StateDead       JobState = "dead"
)

// States lists every valid job state.
var States = []JobState{StatePending, StateProcessing, StateCompleted, StateDead}

// Valid reports whether s is a known job state.
func (s JobState) Valid() bool {
	switch s {
	case StatePending, StateProcessing, StateCompleted, StateDead:
		return true
	}
	return false
}

// transitions is the closed transition table for the job state machine.
// pending -> processing (claim), processing -> completed (success),
// processing -> pending (retryable failure or lease recovery),
// processing -> dead (retry budget exhausted), dead -> pending (DLQ retry).
var transitions = map[JobState][]JobState{
	StatePending:    {StateProcessing},
	StateProcessing: {StateCompleted, StatePending, StateDead},
	StateCompleted:  {},
	StateDead:       {StatePending},
}

// CanTransition reports whether the state machine allows moving from one
// state to another. Anything not in the table is rejected.
func CanTransition(from, to JobState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Job represents one shell command queued for background execution.
type Job struct {
	ID            string     `gorm:"primaryKey;size:255" json:"id"`
	Command       string     `gorm:"type:text;not null" json:"command"`
	State         JobState   `gorm:"index;size:20;default:'pending'" json:"state"`
	Attempts      int        `gorm:"default:0" json:"attempts"`
	// No column default here: gorm skips zero-valued fields that carry a
	// default tag, which would rewrite a legitimate max_retries of 0.
	MaxRetries    int        `gorm:"not null" json:"max_retries"`
	NextAttemptAt *time.Time `gorm:"index" json:"next_attempt_at,omitempty"`
	ClaimedBy     string     `gorm:"size:36" json:"claimed_by,omitempty"`
	ClaimedAt     *time.Time `gorm:"index" json:"claimed_at,omitempty"`
	LastError     string     `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt     time.Time  `gorm:"index;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Terminal reports whether the job has finished its lifecycle. Dead jobs are
// terminal until explicitly revived through a DLQ retry.
func (j *Job) Terminal() bool {
	return j.State == StateCompleted || j.State == StateDead
}

// Eligible reports whether the job could be claimed at the given instant:
// pending, with any backoff window already elapsed.
func (j *Job) Eligible(now time.Time) bool {
	if j.State != StatePending {
		return false
	}
	return j.NextAttemptAt == nil || !j.NextAttemptAt.After(now)
}
