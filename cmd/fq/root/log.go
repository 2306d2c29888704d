package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"focusquest/internal/engine"
	"focusquest/internal/ui"
)

func newLogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent activity from the event ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			events, err := svc.EventRepo().ListAll(ctx)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No activity yet."))
				return nil
			}
			if limit > 0 && len(events) > limit {
				events = events[len(events)-limit:]
			}

			for _, e := range events {
				payload, err := engine.DecodePayload(e)
				if err != nil {
					return err
				}

				var line string
				switch p := payload.(type) {
				case engine.TaskCompletedPayload:
					line = fmt.Sprintf("%s completed %s %s", ui.IconDone, ui.Muted.Render("#"+shortID(p.TaskID)), ui.Gold.Render(fmt.Sprintf("+%d XP", p.XPGain)))
				case engine.TaskReopenedPayload:
					line = fmt.Sprintf("%s reopened %s %s", ui.IconUndo, ui.Muted.Render("#"+shortID(p.TaskID)), ui.Muted.Render(fmt.Sprintf("-%d XP", p.XPReverted)))
				case engine.FocusSessionEndedPayload:
					line = fmt.Sprintf("%s focused %d min %s", ui.IconTimer, p.DurationMin, ui.Gold.Render(fmt.Sprintf("+%d XP", p.XPGain)))
				case engine.BadgeUnlockedPayload:
					line = fmt.Sprintf("%s unlocked %s", ui.IconTrophy, ui.Key.Render(p.AchievementID))
				case engine.LevelUpPayload:
					line = fmt.Sprintf("%s level %d → %d", ui.IconSparkle, p.LevelBefore, p.LevelAfter)
				case engine.PrestigeAppliedPayload:
					line = fmt.Sprintf("%s prestige rank %d %s", ui.IconCrown, p.Rank, ui.Gold.Render(fmt.Sprintf("+%d legacy", p.LegacyGained)))
				default:
					line = e.Type
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Muted.Render(e.OccurredAt), line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of events to show (0 for all)")

	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
