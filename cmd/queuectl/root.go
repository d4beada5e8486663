package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/queuectl/queuectl/pkg/backoff"
	"github.com/queuectl/queuectl/pkg/config"
	"github.com/queuectl/queuectl/pkg/queue"
	"github.com/queuectl/queuectl/pkg/storage"
)

// app wires the shared components every subcommand needs. Construction is
// deferred until a command actually runs so `queuectl --help` never touches
// the database.
type app struct {
	configPath string
	dbPath     string

	cfg     config.Config
	manager *queue.Manager
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "queuectl",
		Short:         "A CLI-based background job queue",
		Long:          "queuectl manages background shell-command jobs with automatic retries,\nexponential backoff, and a dead letter queue.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "queuectl_config.json", "path to the configuration file")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "path to the SQLite database (overrides config)")

	root.AddCommand(
		newEnqueueCmd(a),
		newListCmd(a),
		newStatusCmd(a),
		newDLQCmd(a),
		newWorkerCmd(a),
		newConfigCmd(a),
	)
	return root
}

// loadConfig reads and validates the config file without opening the store.
func (a *app) loadConfig() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	a.cfg = cfg
	return nil
}

// init builds the storage and queue manager.
func (a *app) init() error {
	if err := a.loadConfig(); err != nil {
		return err
	}

	db, err := gorm.Open(sqlite.Open(a.cfg.DBPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("open database %s: %w", a.cfg.DBPath, err)
	}

	store, err := storage.NewGormStorageWithPool(db, storage.DefaultPoolConfig())
	if err != nil {
		return err
	}
	if err := store.Migrate(context.Background()); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	strategy, err := backoff.NewExponential(a.cfg.BackoffBase)
	if err != nil {
		return err
	}

	a.manager, err = queue.New(store, strategy, a.cfg.MaxRetries)
	return err
}

// newLogger builds the slog logger used by long-running commands.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
