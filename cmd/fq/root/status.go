package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"focusquest/internal/engine"
	"focusquest/internal/storage"
	"focusquest/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the character sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := svc.CharacterRepo().GetFirst(ctx)
			if err != nil {
				return err
			}
			if c == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No character yet."))
				return nil
			}

			toNext := engine.XPToNext(c.Level) - c.XPCurrent
			if toNext < 0 {
				toNext = 0
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconSparkle, "Character"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Level", fmt.Sprintf("%d / %d", c.Level, c.SeasonCap)))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("XP", fmt.Sprintf("%d (next level at %d, %d to go)", c.XPCurrent, engine.XPToNext(c.Level), toNext)))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Lifetime XP", c.XPLifetime))
			if c.PrestigeRank > 0 || c.LegacyPoints > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Gold.Render(fmt.Sprintf("%s Prestige %d · %d legacy points", ui.IconCrown, c.PrestigeRank, c.LegacyPoints)))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "")

			fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render(ui.IconChart+" Stats"))
			for _, key := range engine.AllStats {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %d\n", ui.Key.Render(string(key)+":"), c.Stats[string(key)])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "")

			streak, err := svc.StreakRepo().GetFirst(ctx)
			if err != nil {
				return err
			}
			if streak != nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render(ui.IconFlame+" Streaks"))
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %d days\n", ui.Key.Render("Tasks:"), streak.TaskDays)
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %d days\n", ui.Key.Render("Focus:"), streak.FocusDays)
				fmt.Fprintln(cmd.OutOrStdout(), "")
			}

			today, err := svc.AggregateRepo().Get(ctx, time.Now().Format(storage.DayLayout))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render("📅 Today"))
			if today == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Nothing yet."))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %d min\n", ui.Key.Render("Focus:"), today.FocusMinutes)
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %d\n", ui.Key.Render("Completions:"), today.Completions)
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %d\n", ui.Key.Render("XP:"), today.XPGained)
			}
			return nil
		},
	}

	return cmd
}
