// Package worker runs jobs: single claim/execute/report loops and the pool
// that coordinates them.
package worker

import (
	"log/slog"
)

// Option configures a Worker.
type Option interface {
	apply(*Worker)
}

type optionFunc func(*Worker)

func (f optionFunc) apply(w *Worker) { f(w) }

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(w *Worker) {
		w.logger = l
	})
}

// WithID overrides the generated worker identity. Useful in tests that
// assert on claim ownership.
func WithID(id string) Option {
	return optionFunc(func(w *Worker) {
		w.id = id
	})
}
