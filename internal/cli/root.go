package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "quadro",
	Short: "Quadro - Eisenhower matrix task client",
	Long: `Quadro is a terminal client for an Eisenhower-matrix task service.

Tasks are classified by urgency and importance into the four Eisenhower
quadrants. Quadro renders them as a kanban board or a 2x2 matrix with
mouse drag, applies every mutation optimistically with automatic rollback,
and keeps a local snapshot cache so reads keep working offline.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("quadro %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
