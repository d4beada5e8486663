package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/queuectl/queuectl/pkg/queue"
)

func newEnqueueCmd(a *app) *cobra.Command {
	var maxRetries int

	cmd := &cobra.Command{
		Use:   "enqueue <job-id> <command>",
		Short: "Add a job to the queue",
		Example: `  queuectl enqueue job1 "echo hello"
  queuectl enqueue backup "tar czf /backups/data.tgz /data" --max-retries 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}

			var opts []queue.EnqueueOption
			if cmd.Flags().Changed("max-retries") {
				opts = append(opts, queue.WithMaxRetries(maxRetries))
			}

			job, err := a.manager.Enqueue(cmd.Context(), args[0], args[1], opts...)
			if err != nil {
				return err
			}

			fmt.Printf("Enqueued job %s (max retries: %d)\n", job.ID, job.MaxRetries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxRetries, "max-retries", "r", 0, "maximum retry attempts for this job")
	return cmd
}
