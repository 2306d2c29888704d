package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"focusquest/internal/engine"
	"focusquest/internal/ui"
)

func newFocusCmd() *cobra.Command {
	var (
		category    string
		label       string
		sessionType string
	)

	cmd := &cobra.Command{
		Use:   "focus <minutes>",
		Short: "Log a finished focus session",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("minutes is required")
			}
			if _, err := strconv.Atoi(args[0]); err != nil {
				return errors.New("minutes must be an integer")
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

			duration, _ := strconv.Atoi(args[0])
			in := engine.FocusInput{DurationMin: duration, Type: sessionType}
			if category != "" {
				in.CategoryID = &category
			}
			if label != "" {
				in.Label = &label
			}

			res, err := svc.RecordFocusSession(ctx, in)
			if err != nil {
				return err
			}
			if res == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Break logged. Breaks don't earn XP."))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %d min %s\n", ui.Good.Render(ui.IconTimer+" Focused"), duration, ui.Muted.Render(fmt.Sprintf("(+%d XP)", res.XPGain)))
			if res.LevelUp {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s level %d → %d\n", ui.BadgeLevelUp, ui.IconSparkle, res.LevelBefore, res.LevelAfter)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category id")
	cmd.Flags().StringVarP(&label, "label", "l", "", "Session label")
	cmd.Flags().StringVar(&sessionType, "type", "work", "Session type (work|break|long_break)")

	return cmd
}
