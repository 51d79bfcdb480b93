package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Amna-05/quadro/internal/projection"
	"github.com/Amna-05/quadro/pkg/models"
)

var timelineAll bool

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show open tasks grouped by due day",
	Long: `Group open tasks into a due-date timeline: an Overdue bucket, one
bucket per upcoming day (Today, Tomorrow, weekday names), and a trailing
bucket for tasks without a due date. Use --all to include completed tasks.`,
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
			GroupBy: projection.GroupByDueBucket,
			SortBy:  projection.SortByDueDate,
		}
		if !timelineAll {
			spec.Filter = func(t models.Task) bool { return t.Status != models.StatusDone }
		}
		groups := Views.Project(Tasks.Snapshot(), spec, now)

		if ws.StaleNote != "" {
			fmt.Printf("%s\n\n", ws.StaleNote)
		}

		if len(groups) == 0 {
			fmt.Println("No open tasks.")
			return nil
		}

		for i, group := range groups {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("%s (%d)\n", group.Label, len(group.Tasks))
			for _, task := range group.Tasks {
				line := fmt.Sprintf("  %-10s %-11s %s", shortID(task.ID), task.Quadrant().Label(), task.Title)
				if hint := timelineHint(task, now); hint != "" {
					line += "  (" + hint + ")"
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}

// timelineHint adds the clock time for dated tasks due today or overdue age
// for everything already past.
func timelineHint(t models.Task, now time.Time) string {
	if t.DueDate == nil {
		return ""
	}
	due := t.DueDate.In(now.Location())
	if t.OverdueAt(now) {
		return "due " + due.Format("Jan 2")
	}
	if !due.Equal(time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location())) {
		return due.Format("15:04")
	}
	return ""
}

func init() {
	timelineCmd.Flags().BoolVar(&timelineAll, "all", false, "Include completed tasks")
	rootCmd.AddCommand(timelineCmd)
}
