// Package config holds queuectl runtime configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/queuectl/queuectl/pkg/core"
)

// Config holds the tunables the queue core is constructed with. Durations
// are stored as integer seconds to match the persisted JSON format.
type Config struct {
	// MaxRetries is the default retry budget for new jobs.
	MaxRetries int `json:"max_retries"`

	// BackoffBase is the base of the exponential retry delay (seconds).
	BackoffBase float64 `json:"backoff_base"`

	// JobTimeoutSecs is the wall-clock limit for one command execution.
	JobTimeoutSecs int `json:"job_timeout"`

	// PollIntervalSecs is how long an idle worker sleeps between claims.
	PollIntervalSecs int `json:"poll_interval"`

	// ShutdownTimeoutSecs bounds the graceful drain on pool stop.
	ShutdownTimeoutSecs int `json:"worker_shutdown_timeout"`

	// CleanupSchedule is a cron expression for completed-job cleanup.
	CleanupSchedule string `json:"cleanup_schedule"`

	// CleanupRetentionDays is how long completed jobs are kept.
	CleanupRetentionDays int `json:"cleanup_retention_days"`

	// DBPath is the SQLite database file used by the CLI.
	DBPath string `json:"db_path"`
}

// Default returns the configuration used when no file exists yet.
func Default() Config {
	return Config{
		MaxRetries:           3,
		BackoffBase:          2.0,
		JobTimeoutSecs:       300,
		PollIntervalSecs:     1,
		ShutdownTimeoutSecs:  10,
		CleanupSchedule:      "@hourly",
		CleanupRetentionDays: 30,
		DBPath:               "queuectl.db",
	}
}

// Validate rejects out-of-range values. The core refuses to start with a
// bad configuration rather than silently clamping it.
func (c Config) Validate() error {
	verr := &core.ValidationError{}

	if c.MaxRetries < 0 {
		verr.Add(fmt.Errorf("max_retries must be >= 0, got %d", c.MaxRetries))
	}
	if c.BackoffBase <= 0 {
		verr.Add(fmt.Errorf("backoff_base must be > 0, got %v", c.BackoffBase))
	}
	if c.JobTimeoutSecs <= 0 {
		verr.Add(fmt.Errorf("job_timeout must be > 0 seconds, got %d", c.JobTimeoutSecs))
	}
	if c.PollIntervalSecs <= 0 {
		verr.Add(fmt.Errorf("poll_interval must be > 0 seconds, got %d", c.PollIntervalSecs))
	}
	if c.ShutdownTimeoutSecs < 0 {
		verr.Add(fmt.Errorf("worker_shutdown_timeout must be >= 0 seconds, got %d", c.ShutdownTimeoutSecs))
	}
	if c.CleanupRetentionDays < 0 {
		verr.Add(fmt.Errorf("cleanup_retention_days must be >= 0, got %d", c.CleanupRetentionDays))
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// JobTimeout returns the per-job execution limit.
func (c Config) JobTimeout() time.Duration {
	return time.Duration(c.JobTimeoutSecs) * time.Second
}

// PollInterval returns the idle worker sleep interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSecs) * time.Second
}

// ShutdownTimeout returns the graceful drain window.
func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSecs) * time.Second
}

// LeaseTimeout is how long a processing job may go unreported before the
// recovery scan presumes its worker is gone. One job timeout plus one poll
// interval of headroom, so an in-budget execution is never reclaimed.
func (c Config) LeaseTimeout() time.Duration {
	return c.JobTimeout() + c.PollInterval()
}

// CleanupRetention returns the completed-job retention window.
func (c Config) CleanupRetention() time.Duration {
	return time.Duration(c.CleanupRetentionDays) * 24 * time.Hour
}

// Load reads configuration from path, falling back to defaults for a
// missing file. Unknown keys are ignored; missing keys keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("queuectl: read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("queuectl: parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Save writes the configuration to path as indented JSON.
func (c Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
