package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Amna-05/quadro/internal/tui"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Open the interactive Eisenhower matrix",
	Long: `Open the full-screen 2x2 Eisenhower matrix of open tasks.

Cells are the four quadrants: Do First, Schedule, Delegate, Eliminate.
Number keys 1-4 reclassify the selected task; dragging a card into
another cell does the same. A reclassification sends only the urgency
and importance flags, never the rest of the record.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := viewDeps()
		if err != nil {
			return err
		}
		p := tea.NewProgram(tui.NewMatrix(deps), tea.WithAltScreen(), tea.WithMouseCellMotion())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running matrix: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matrixCmd)
}
