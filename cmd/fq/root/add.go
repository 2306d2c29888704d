package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"focusquest/internal/engine"
	"focusquest/internal/storage"
	"focusquest/internal/ui"
)

func newAddCmd() *cobra.Command {
	var (
		category  string
		priority  string
		estimate  int
		deadline  string
		everyDays int
		weekdays  []int
		weeks     int
		tags      []string
		notes     string
		subtasks  []string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
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

			in := engine.CreateTaskInput{
				Title:           args[0],
				Priority:        engine.Priority(priority),
				EstimateMinutes: estimate,
				Tags:            tags,
				Notes:           notes,
				Subtasks:        subtasks,
			}
			if category != "" {
				in.CategoryID = &category
			}
			if deadline != "" {
				at, err := time.ParseInLocation("2006-01-02 15:04", deadline, time.Local)
				if err != nil {
					at, err = time.ParseInLocation(storage.DayLayout, deadline, time.Local)
					if err != nil {
						return fmt.Errorf("invalid deadline %q (want yyyy-MM-dd or yyyy-MM-dd HH:mm)", deadline)
					}
				}
				in.DeadlineAt = &at
			}
			switch {
			case len(weekdays) > 0:
				in.Recurrence = &storage.RecurrenceRule{
					Kind:          engine.RecurrenceWeeklyDays,
					IntervalWeeks: weeks,
					Weekdays:      weekdays,
				}
			case everyDays > 0:
				in.Recurrence = &storage.RecurrenceRule{
					Kind:         engine.RecurrenceDailyInterval,
					IntervalDays: everyDays,
				}
			}

			t, err := svc.CreateTask(ctx, in)
			if err != nil {
				return err
			}

			line := fmt.Sprintf("%s %s %s", ui.Good.Render("➕ Added"), t.Title, ui.Muted.Render("#"+t.ID[:8]))
			if t.Recurrence != nil {
				line += " " + ui.Muted.Render("("+t.Recurrence.Label+")")
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category id (work|health|learning|creative|social|home)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "Priority (low|medium|high)")
	cmd.Flags().IntVarP(&estimate, "estimate", "e", 25, "Estimated minutes")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline (yyyy-MM-dd or yyyy-MM-dd HH:mm)")
	cmd.Flags().IntVar(&everyDays, "every", 0, "Repeat every N days after completion")
	cmd.Flags().IntSliceVar(&weekdays, "weekdays", nil, "Repeat on weekdays (0=Sun..6=Sat)")
	cmd.Flags().IntVar(&weeks, "weeks", 1, "Week interval for --weekdays")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Tags (repeatable)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Free-text notes (never exported)")
	cmd.Flags().StringArrayVarP(&subtasks, "subtask", "s", nil, "Subtask title (repeatable)")

	return cmd
}
