package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volunteer-bridge/backend/pkg/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := connect(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			applied, err := database.Migrate(ctx, e.pool, e.logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outputFmt == "json" {
				return writeJSON(out, map[string]any{"applied": applied})
			}
			if len(applied) == 0 {
				fmt.Fprintln(out, "schema is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(out, "applied %s\n", name)
			}
			return nil
		},
	}
}
