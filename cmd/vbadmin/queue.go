package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunteer-bridge/backend/pkg/queue"
)

func queueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show notification queue depth and dead-letter count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := connect(ctx, true)
			if err != nil {
				return err
			}
			defer e.Close()

			q := queue.NewQueue(e.rdb.Client, e.logger)
			pending, err := q.Length(ctx)
			if err != nil {
				return err
			}
			dead, err := q.DLQLength(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outputFmt == "json" {
				return writeJSON(out, map[string]int64{"pending": pending, "dead_lettered": dead})
			}
			fmt.Fprintf(out, "pending:        %d\ndead-lettered:  %d\n", pending, dead)
			return nil
		},
	}
}
