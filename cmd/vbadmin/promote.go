package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/volunteer-bridge/backend/internal/attendance"
)

func promoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <event-id>",
		Short: "Move waitlisted RSVPs into free seats",
		Long: `Promote the oldest WAITLISTED RSVPs while the event has free capacity.

Useful after seats were freed outside the API, for example by editing the database directly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid event id: %w", err)
			}
			ctx := cmd.Context()
			e, err := connect(ctx, true)
			if err != nil {
				return err
			}
			defer e.Close()

			svc := attendance.NewService(attendance.NewRepository(e.pool), e.notifier(), e.logger)
			promoted, err := svc.PromoteWaitlisted(ctx, eventID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outputFmt == "json" {
				return writeJSON(out, promoted)
			}
			fmt.Fprintf(out, "promoted %d RSVP(s)\n", len(promoted))
			for _, r := range promoted {
				fmt.Fprintf(out, "  %s\n", r.UserID)
			}
			return nil
		},
	}
}
