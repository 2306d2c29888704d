package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"focusquest/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "fq",
	Short:         "Focusquest, an offline RPG productivity tracker",
	Long:          "Focusquest turns task completion and focused work into an RPG progression loop: XP, levels, stats, streaks, quests, and prestige. Everything stays in a local database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newAddCmd(),
		newDoneCmd(),
		newReopenCmd(),
		newFocusCmd(),
		newListCmd(),
		newStatusCmd(),
		newQuestsCmd(),
		newLogCmd(),
		newBadgesCmd(),
		newPrestigeCmd(),
		newSnapshotCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
