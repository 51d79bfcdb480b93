package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Amna-05/quadro/internal/projection"
	"github.com/Amna-05/quadro/pkg/models"
)

var (
	listStatus   string
	listQuadrant string
	listCategory string
	listSearch   string
	listSort     string
	listLimit    int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks as a filtered table",
	Long: `List tasks from the task service, filtered and sorted.

Filters AND together. --sort orders by creation time, due date, or
Eisenhower priority (Do First before Schedule before Delegate before
Eliminate). When the service is unreachable the cached snapshot is shown
with an offline note.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Views == nil || Filters == nil {
			return fmt.Errorf("task service not initialized")
		}

		sortBy, err := parseSortFlag(listSort)
		if err != nil {
			return err
		}

		ws, err := loadWorkingSet(context.Background())
		if err != nil {
			return err
		}

		Filters.ResetAll()
		if listSearch != "" {
			Filters.SetText(listSearch)
		}
		if listStatus != "" {
			status := models.Status(strings.ToLower(listStatus))
			if !models.ValidStatus(status) {
				return fmt.Errorf("unknown status %q (expected todo, in_progress, or done)", listStatus)
			}
			Filters.SetStatus(status)
		}
		if listQuadrant != "" {
			quadrant, err := models.ParseQuadrant(strings.ToLower(listQuadrant))
			if err != nil {
				return err
			}
			Filters.SetQuadrant(quadrant)
		}
		if listCategory != "" {
			id, err := resolveCategoryID(listCategory, ws.Categories)
			if err != nil {
				return err
			}
			Filters.SetCategory(id)
		}

		now := time.Now()
		spec := Filters.Spec(projection.GroupByNone, sortBy)
		groups := Views.Project(Tasks.Snapshot(), spec, now)
		tasks := groups[0].Tasks
		if listLimit > 0 && len(tasks) > listLimit {
			tasks = tasks[:listLimit]
		}

		if ws.StaleNote != "" {
			fmt.Println(ws.StaleNote)
		}
		if chips := filterChipLine(); chips != "" {
			fmt.Println(chips)
		}
		if ws.StaleNote != "" || Filters.Active() {
			fmt.Println()
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks match.")
			return nil
		}

		names := categoryNames(ws.Categories)
		fmt.Printf("%-10s %-11s %-13s %-16s %s\n", "ID", "QUADRANT", "STATUS", "DUE", "TITLE")
		for _, task := range tasks {
			title := task.Title
			if name := names[task.CategoryID]; name != "" {
				title += "  [" + name + "]"
			}
			fmt.Printf("%-10s %-11s %-13s %-16s %s\n",
				shortID(task.ID),
				task.Quadrant().Label(),
				task.Status.Label(),
				dueColumn(task, now),
				title,
			)
		}
		fmt.Printf("\n%d task(s)\n", len(tasks))
		return nil
	},
}

// parseSortFlag maps the --sort value onto a projection sort key.
func parseSortFlag(s string) (projection.SortBy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "priority":
		return projection.SortByPriority, nil
	case "created":
		return projection.SortByCreated, nil
	case "due":
		return projection.SortByDueDate, nil
	}
	return "", fmt.Errorf("unknown sort key %q (expected created, due, or priority)", s)
}

// filterChipLine joins the active filter chips for table headers.
func filterChipLine() string {
	chips := Filters.Chips()
	if len(chips) == 0 {
		return ""
	}
	parts := make([]string, 0, len(chips))
	for _, chip := range chips {
		parts = append(parts, chip.Label)
	}
	return "Filters: " + strings.Join(parts, " | ")
}

// dueColumn renders the humanized due cell, empty for undated or done tasks.
func dueColumn(t models.Task, now time.Time) string {
	switch {
	case t.DueDate == nil, t.Status == models.StatusDone:
		return ""
	case t.OverdueAt(now):
		return "overdue"
	case t.DueToday(now):
		return "due today"
	default:
		return humanize.RelTime(*t.DueDate, now, "ago", "left")
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func categoryNames(categories []models.Category) map[string]string {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (todo, in_progress, done)")
	listCmd.Flags().StringVar(&listQuadrant, "quadrant", "", "Filter by quadrant (do-first, schedule, delegate, eliminate)")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category id or name")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Filter by title, description, or category text")
	listCmd.Flags().StringVar(&listSort, "sort", "priority", "Sort key (created, due, priority)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Show at most this many tasks (0 = all)")
	_ = listCmd.RegisterFlagCompletionFunc("status", completeStatuses)
	_ = listCmd.RegisterFlagCompletionFunc("quadrant", completeQuadrants)
	_ = listCmd.RegisterFlagCompletionFunc("category", completeCategories)
	_ = listCmd.RegisterFlagCompletionFunc("sort", completeSortKeys)
	rootCmd.AddCommand(listCmd)
}
