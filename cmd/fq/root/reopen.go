package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"focusquest/internal/ui"
)

func newReopenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reopen <id>",
		Short: "Reopen a completed task (undo its reward)",
		Long: `Reopen a task, reversing the exact XP and stat gains its completion
stored. Streaks are not rewound. Quest and achievement progress re-derive
from current totals on the next sync, so they adjust automatically.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveTaskID(ctx, svc, args[0])
			if err != nil {
				return err
			}
			res, err := svc.ReopenTask(ctx, id)
			if err != nil {
				return err
			}
			if res == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Nothing to reopen (task missing or not done)."))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				ui.Warn.Render(ui.IconUndo+" Reopened"),
				ui.Muted.Render("#"+res.TaskID[:8]),
				ui.Muted.Render(fmt.Sprintf("(-%d XP)", res.XPReverted)))
			if res.XPReverted > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Level", fmt.Sprintf("%d → %d", res.LevelBefore, res.LevelAfter)))
			}
			if res.LevelDown {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render(ui.IconWarn+" Level decreased"))
			}
			return nil
		},
	}

	return cmd
}
