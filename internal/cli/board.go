package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Amna-05/quadro/internal/tui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive kanban board",
	Long: `Open the full-screen kanban board with one column per status.

Arrow keys move the selection, space completes or reopens, brackets move
a card between columns, and the mouse drags cards directly. Mutations
apply instantly and roll back with a notice if the service rejects them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := viewDeps()
		if err != nil {
			return err
		}
		p := tea.NewProgram(tui.NewBoard(deps), tea.WithAltScreen(), tea.WithMouseCellMotion())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running board: %w", err)
		}
		return nil
	},
}

// viewDeps assembles the shared machinery for the interactive views. Any
// filters left over from a previous command are cleared first.
func viewDeps() (tui.Deps, error) {
	if TaskSvc == nil || Tasks == nil || Views == nil || Mutations == nil || Filters == nil {
		return tui.Deps{}, fmt.Errorf("task service not initialized")
	}
	Filters.ResetAll()
	return tui.Deps{
		Collection:  Tasks,
		Engine:      Views,
		Coordinator: Mutations,
		Composer:    Filters,
		Load:        tuiLoad,
	}, nil
}

func init() {
	rootCmd.AddCommand(boardCmd)
}
