// vbadmin runs operator tasks against the volunteer-bridge database.
//
// Usage:
//
//	vbadmin migrate
//	vbadmin match <opportunity-id> [--notify]
//	vbadmin promote <event-id>
//	vbadmin queue
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var outputFmt string

func main() {
	rootCmd := &cobra.Command{
		Use:          "vbadmin",
		Short:        "Operator commands for volunteer-bridge",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(matchCmd())
	rootCmd.AddCommand(promoteCmd())
	rootCmd.AddCommand(queueCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
