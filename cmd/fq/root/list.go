package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"focusquest/internal/engine"
	"focusquest/internal/ui"
)

func newListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			tasks, err := svc.TaskRepo().ListAll(ctx)
			if err != nil {
				return err
			}

			shown := 0
			for _, t := range tasks {
				if !all && t.Status == engine.TaskStatusDone {
					continue
				}
				shown++

				line := fmt.Sprintf("%s %s %s %s",
					ui.Muted.Render("#"+t.ID[:8]),
					ui.StatusText(t.Status),
					ui.PriorityText(t.Priority),
					t.Title)
				if t.CategoryID != nil {
					line += " " + ui.Muted.Render("@"+*t.CategoryID)
				}
				if t.DeadlineAt != nil {
					line += " " + ui.Warn.Render("due "+t.DeadlineAt.Format("2006-01-02"))
				}
				if t.Recurrence != nil {
					line += " " + ui.Muted.Render(ui.IconLoop+" "+t.Recurrence.Label)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)

				for _, st := range t.Subtasks {
					mark := "[ ]"
					if st.Done {
						mark = "[x]"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "    %s %s\n", ui.Muted.Render(mark), st.Title)
				}
			}
			if shown == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No tasks. Add one with `fq add`."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed tasks")

	return cmd
}
