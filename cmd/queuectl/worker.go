package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/queuectl/queuectl/pkg/worker"
)

func newWorkerCmd(a *app) *cobra.Command {
	workerCmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage worker processes",
	}

	var (
		count   int
		verbose bool
	)

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start workers and process jobs until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}

			logger := newLogger(verbose)

			pool, err := worker.NewPool(a.manager, a.cfg)
			if err != nil {
				return err
			}
			pool.SetLogger(logger)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := pool.Start(ctx, count); err != nil {
				return err
			}
			logger.Info("workers running, press Ctrl+C to stop")

			<-ctx.Done()
			stop()

			err = pool.Stop(a.cfg.ShutdownTimeout())
			if errors.Is(err, worker.ErrDrainTimeout) {
				logger.Warn("some workers were abandoned; their jobs will be recovered by lease expiry")
				os.Exit(1)
			}
			return err
		},
	}

	startCmd.Flags().IntVarP(&count, "count", "c", 1, "number of workers to start")
	startCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	workerCmd.AddCommand(startCmd)
	return workerCmd
}
