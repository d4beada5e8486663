package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/queuectl/queuectl/pkg/core"
)

func newListCmd(a *app) *cobra.Command {
	var (
		state string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, optionally filtered by state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}

			jobs, err := a.manager.List(cmd.Context(), core.JobState(state), limit)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Println("No jobs found.")
				return nil
			}

			printJobs(jobs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&state, "state", "s", "", "filter by state (pending, processing, completed, dead)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "maximum number of jobs to show")
	return cmd
}

func printJobs(jobs []*core.Job) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tATTEMPTS\tCOMMAND\tUPDATED\tLAST ERROR")
	for _, j := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%s\t%s\n",
			j.ID, j.State, j.Attempts, j.MaxRetries,
			truncate(j.Command, 40),
			j.UpdatedAt.Format(time.RFC3339),
			truncate(j.LastError, 50))
	}
	w.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
