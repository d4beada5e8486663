package worker

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// RetryConfig tunes how a worker retries its own storage calls. This is
// resilience against a briefly unreachable database and has nothing to do
// with the job-level retry budget.
type RetryConfig struct {
	// MaxAttempts counts the first try as attempt one.
	MaxAttempts int

	// InitialBackoff is the wait after the first failed attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait once it has grown.
	MaxBackoff time.Duration

	// BackoffMultiplier grows the wait between attempts.
	BackoffMultiplier float64

	// JitterFraction randomizes each wait by up to this fraction either
	// way, so a fleet does not retry in lockstep.
	JitterFraction float64
}

// DefaultRetryConfig covers both claims and outcome reports unless a caller
// sets Config.StorageRetry explicitly.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
		JitterFraction:    0.2,
	}
}

// retryWithBackoff runs op, waiting between failed attempts. Context errors
// stop retrying immediately; the last storage error comes back once the
// attempt budget is spent.
func retryWithBackoff(ctx context.Context, config RetryConfig, op func() error) error {
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}

		if attempt >= config.MaxAttempts {
			break
		}

		wait := backoff
		if config.JitterFraction > 0 {
			wait += time.Duration(float64(backoff) * config.JitterFraction * (rand.Float64()*2 - 1))
		}
		if wait < 0 {
			wait = backoff
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		backoff = time.Duration(float64(backoff) * config.BackoffMultiplier)
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	return lastErr
}
