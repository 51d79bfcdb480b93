package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Amna-05/quadro/internal/projection"
	"github.com/Amna-05/quadro/pkg/models"
)

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Show what deserves attention today",
	Long: `Show the tasks that should be worked on right now: everything
overdue, everything due today, and every open Do First task, ranked by
Eisenhower priority.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Views == nil {
			return fmt.Errorf("task service not initialized")
		}

		ws, err := loadWorkingSet(context.Background())
		if err != nil {
			return err
		}

		now := time.Now()
		spec := projection.Spec{
			GroupBy: projection.GroupByNone,
			SortBy:  projection.SortByPriority,
			Filter: func(t models.Task) bool {
				if t.Status == models.StatusDone {
					return false
				}
				return t.OverdueAt(now) || t.DueToday(now) || t.Quadrant() == models.QuadrantDoFirst
			},
		}
		tasks := Views.Project(Tasks.Snapshot(), spec, now)[0].Tasks

		if ws.StaleNote != "" {
			fmt.Printf("%s\n\n", ws.StaleNote)
		}
		fmt.Printf("Focus for %s\n\n", now.Format("Monday, Jan 2"))

		if len(tasks) == 0 {
			fmt.Println("Nothing overdue, due today, or in Do First. Pick from Schedule.")
			return nil
		}

		fmt.Printf("  %-10s %-10s %-11s %s\n", "ID", "WHY", "QUADRANT", "TITLE")
		for _, task := range tasks {
			fmt.Printf("  %-10s %-10s %-11s %s\n",
				shortID(task.ID),
				focusReason(task, now),
				task.Quadrant().Label(),
				task.Title,
			)
		}
		fmt.Printf("\n%d task(s) need attention\n", len(tasks))
		return nil
	},
}

// focusReason names the strongest reason a task made the focus list.
func focusReason(t models.Task, now time.Time) string {
	switch {
	case t.OverdueAt(now):
		return "overdue"
	case t.DueToday(now):
		return "due today"
	default:
		return "do first"
	}
}

func init() {
	rootCmd.AddCommand(focusCmd)
}
