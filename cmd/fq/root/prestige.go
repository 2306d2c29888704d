package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"focusquest/internal/ui"
)

func newPrestigeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prestige",
		Short: "Reset the season at the level cap for a prestige rank and legacy points",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.ApplyPrestige(ctx)
			if err != nil {
				return err
			}
			if res == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Nothing to prestige."))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Prestige rank %s\n",
				ui.Gold.Render(ui.IconCrown), ui.Gold.Render(fmt.Sprintf("%d", res.Rank)))
			fmt.Fprintf(cmd.OutOrStdout(), "  +%d legacy points (%d total)\n", res.LegacyGained, res.LegacyPoints)
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("  Level and stats reset for the new season."))
			return nil
		},
	}
}
