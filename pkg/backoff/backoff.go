// Package backoff computes retry delays for failed jobs.
package backoff

import (
	"fmt"
	"math"
	"time"
)

// Strategy computes the delay before a retry attempt. Implementations are
// stateless and safe for concurrent use.
type Strategy interface {
	// Delay returns how long a job must wait after its attempts-th failed
	// attempt (1-indexed) before it is claimable again.
	Delay(attempts int) time.Duration
}

// Exponential is the queuectl retry policy: delay = Base^attempts seconds.
// Strictly increasing in attempts for Base > 1, up to MaxDelay.
type Exponential struct {
	Base float64
}

// MaxDelay caps the computed delay. Base^attempts overflows float64 and
// time.Duration for large attempt counts, and an overflowed duration would
// schedule the retry in the past.
const MaxDelay = 24 * time.Hour

// NewExponential creates the exponential strategy. Base must be positive.
func NewExponential(base float64) (*Exponential, error) {
	if base <= 0 {
		return nil, fmt.Errorf("queuectl: backoff base must be > 0, got %v", base)
	}
	return &Exponential{Base: base}, nil
}

// Delay returns Base^attempts seconds, capped at MaxDelay. Attempts below 1
// are treated as 1.
func (e *Exponential) Delay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	secs := math.Pow(e.Base, float64(attempts))
	if secs >= MaxDelay.Seconds() {
		return MaxDelay
	}
	return time.Duration(secs * float64(time.Second))
}
