package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"focusquest/internal/engine"
	"focusquest/internal/ui"
)

func newQuestsCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "quests",
		Short: "Show quests (use --refresh to regenerate daily/weekly sets)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if refresh {
				if _, err := svc.RefreshQuests(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconQuest+" Quests regenerated"))
			} else {
				// Progress re-derives from current totals on every look.
				if err := svc.SyncQuests(ctx); err != nil {
					return err
				}
			}

			quests, err := svc.QuestRepo().ListAll(ctx)
			if err != nil {
				return err
			}
			if len(quests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No quests yet. Run `fq quests --refresh`."))
				return nil
			}

			for _, q := range quests {
				mark := ui.Muted.Render(fmt.Sprintf("%d/%d", q.Progress, q.Target))
				if q.Status == engine.QuestComplete {
					mark = ui.Good.Render(ui.IconDone + " complete")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
					ui.Muted.Render("["+q.Kind+"]"), q.Title, mark,
					ui.Gold.Render(fmt.Sprintf("(+%d XP)", q.Reward)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Regenerate the daily and weekly quest sets")

	return cmd
}
