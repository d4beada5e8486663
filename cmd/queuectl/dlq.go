package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/queuectl/queuectl/pkg/core"
)

func newDLQCmd(a *app) *cobra.Command {
	dlq := &cobra.Command{
		Use:   "dlq",
		Short: "Inspect and retry jobs in the dead letter queue",
	}

	var limit int

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs that exhausted their retry budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}

			jobs, err := a.manager.List(cmd.Context(), core.StateDead, limit)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Println("Dead letter queue is empty.")
				return nil
			}

			printJobs(jobs)
			return nil
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 100, "maximum number of jobs to show")

	retryCmd := &cobra.Command{
		Use:   "retry <job-id>",
		Short: "Requeue a dead job with a fresh retry budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}

			if err := a.manager.DLQRetry(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Job %s moved back to pending.\n", args[0])
			return nil
		},
	}

	dlq.AddCommand(listCmd, retryCmd)
	return dlq
}
