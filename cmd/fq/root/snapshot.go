package root

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"focusquest/internal/storage"
)

func newSnapshotCmd() *cobra.Command {
	var fromStr, toStr string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print a shareable progress snapshot as JSON",
		Long:  "Builds an aggregate-only view of recent progress. No task titles, notes, tags, or category names leave the database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			now := time.Now()
			to := now
			from := now.AddDate(0, 0, -6)
			if fromStr != "" {
				from, err = time.ParseInLocation(storage.DayLayout, fromStr, time.Local)
				if err != nil {
					return fmt.Errorf("parse --from: %w", err)
				}
			}
			if toStr != "" {
				to, err = time.ParseInLocation(storage.DayLayout, toStr, time.Local)
				if err != nil {
					return fmt.Errorf("parse --to: %w", err)
				}
			}

			snap, err := svc.Snapshot(ctx, from, to)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "Window start (yyyy-MM-dd, default 6 days ago)")
	cmd.Flags().StringVar(&toStr, "to", "", "Window end (yyyy-MM-dd, default today)")

	return cmd
}
