package root

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"focusquest/internal/ui"
)

func newDoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Complete a task",
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
			res, err := svc.CompleteTask(ctx, id)
			if err != nil {
				return err
			}
			if res == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Nothing to do (task missing or already done)."))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconDone+" Completed"), ui.Muted.Render("#"+res.TaskID[:8]))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("XP", fmt.Sprintf("+%d", res.XPGain)))

			keys := make([]string, 0, len(res.StatGains))
			for k := range res.StatGains {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s +%d\n", ui.Key.Render(k), res.StatGains[k])
			}

			if res.LevelUp {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s level %d → %d\n", ui.BadgeLevelUp, ui.IconSparkle, res.LevelBefore, res.LevelAfter)
			}
			if res.Spawned != nil && res.Spawned.DeadlineAt != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s next occurrence due %s\n", ui.Muted.Render(ui.IconLoop+" Respawned:"), res.Spawned.DeadlineAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	return cmd
}
