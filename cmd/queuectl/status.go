package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show job counts per state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}

			stats, err := a.manager.Stats(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Pending:    %d\n", stats.Pending)
			fmt.Printf("Processing: %d\n", stats.Processing)
			fmt.Printf("Completed:  %d\n", stats.Completed)
			fmt.Printf("Dead:       %d\n", stats.Dead)
			fmt.Printf("Total:      %d\n", stats.Total)
			return nil
		},
	}
}
