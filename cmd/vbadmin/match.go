package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/volunteer-bridge/backend/internal/matching"
	"github.com/volunteer-bridge/backend/internal/opportunities"
	"github.com/volunteer-bridge/backend/internal/users"
)

func matchCmd() *cobra.Command {
	var notify bool
	cmd := &cobra.Command{
		Use:   "match <opportunity-id>",
		Short: "Rank volunteers against an opportunity",
		Long: `Rank every volunteer by the number of required skills they hold.

Examples:
  # Show the ranking
  vbadmin match 3f0c...

  # Also send match notifications
  vbadmin match 3f0c... --notify`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oppID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid opportunity id: %w", err)
			}
			ctx := cmd.Context()
			e, err := connect(ctx, notify)
			if err != nil {
				return err
			}
			defer e.Close()

			userRepo := users.NewRepository(e.pool)
			var notifier matching.Notifier
			var history matching.NotificationHistory
			if notify {
				svc := e.notifier()
				notifier, history = svc, svc
			}
			matcher := matching.NewService(userRepo, notifier, history, e.cfg.Matching.NotifyDedup, e.logger)
			svc := opportunities.NewService(opportunities.NewRepository(e.pool), userRepo, matcher, e.logger)

			o, err := svc.Get(ctx, oppID)
			if err != nil {
				return err
			}
			res, err := svc.RunMatch(ctx, o, notify)
			if err != nil {
				return err
			}
			return printMatches(cmd, o.Title, res, notify)
		},
	}
	cmd.Flags().BoolVar(&notify, "notify", false, "Send a match notification to each matched volunteer")
	return cmd
}

func printMatches(cmd *cobra.Command, title string, res *opportunities.MatchResult, notify bool) error {
	out := cmd.OutOrStdout()
	if outputFmt == "json" {
		return writeJSON(out, res)
	}
	fmt.Fprintf(out, "%s: %d match(es)\n", title, len(res.Matches))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tVOLUNTEER\tNAME\tSKILLS")
	for _, m := range res.Matches {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.Score, m.Volunteer.ID, m.Volunteer.FullName, strings.Join(m.Volunteer.Skills, ","))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if notify {
		fmt.Fprintf(out, "notified %d volunteer(s)\n", res.Notified)
	}
	return nil
}
