package queue

type enqueueOptions struct {
	maxRetries int
}

// EnqueueOption configures a single Enqueue call.
type EnqueueOption func(*enqueueOptions)

// WithMaxRetries overrides the manager's default retry budget for this job.
func WithMaxRetries(n int) EnqueueOption {
	return func(o *enqueueOptions) {
		o.maxRetries = n
	}
}
