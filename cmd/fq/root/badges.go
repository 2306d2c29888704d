package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"focusquest/internal/storage"
	"focusquest/internal/ui"
)

func newBadgesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "badges",
		Short: "Show achievements and unlock progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.SyncAchievements(ctx); err != nil {
				return err
			}

			achievements, err := svc.AchievementRepo().ListAll(ctx)
			if err != nil {
				return err
			}
			progress, err := svc.AchievementRepo().ListProgress(ctx)
			if err != nil {
				return err
			}
			byID := make(map[string]storage.AchievementProgress, len(progress))
			for _, p := range progress {
				byID[p.AchievementID] = p
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconTrophy, "Achievements"))
			for _, a := range achievements {
				p := byID[a.ID]
				tier := ui.Muted.Render("[" + a.Tier + "]")
				if p.UnlockedAt != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s %s %s %s\n",
						ui.Good.Render(ui.IconDone), ui.Key.Render(a.Name), tier,
						ui.Gold.Render("unlocked "+(*p.UnlockedAt)[:10]))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s %s %s\n",
					ui.Muted.Render("·"), a.Name, tier,
					ui.Muted.Render(fmt.Sprintf("%d/%d", p.Value, a.RequirementValue)))
			}
			return nil
		},
	}
}
