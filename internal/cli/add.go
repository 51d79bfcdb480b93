package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Amna-05/quadro/internal/client"
	"github.com/Amna-05/quadro/internal/observability"
)

var (
	addDesc      string
	addDue       string
	addUrgent    bool
	addImportant bool
	addCategory  string
	addTags      []string
)

// dueDateFormats are accepted by --due, tried in order. A bare date puts the
// task at local midnight of that day.
var dueDateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a new task",
	Long: `Create a task on the task service.

Urgency and importance place the task in its Eisenhower quadrant:
urgent+important is Do First, important-only is Schedule, urgent-only is
Delegate, neither is Eliminate. --category accepts a category id or name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskSvc == nil {
			return fmt.Errorf("task service not initialized")
		}

		title := strings.TrimSpace(strings.Join(args, " "))
		if title == "" {
			return fmt.Errorf("task title must not be empty")
		}

		due, err := parseDueDate(addDue)
		if err != nil {
			return err
		}

		ctx := context.Background()
		draft := client.NewTask{
			Title:       title,
			Description: addDesc,
			Urgent:      addUrgent,
			Important:   addImportant,
			DueDate:     due,
			TagIDs:      addTags,
		}

		if addCategory != "" {
			categories, err := TaskSvc.ListCategories(ctx)
			if err != nil {
				return fmt.Errorf("resolving category: %w", err)
			}
			id, err := resolveCategoryID(addCategory, categories)
			if err != nil {
				return err
			}
			draft.CategoryID = id
		}

		task, err := TaskSvc.CreateTask(ctx, draft)
		if err != nil {
			return fmt.Errorf("creating task: %w", err)
		}

		if EventLog != nil {
			_ = EventLog.Write(observability.Event{
				Time:   time.Now().UTC(),
				Type:   "task.created",
				TaskID: task.ID,
				Data:   map[string]any{"title": task.Title, "quadrant": string(task.Quadrant())},
			})
		}

		fmt.Printf("Created task %s\n", task.ID)
		fmt.Printf("  Title:    %s\n", task.Title)
		fmt.Printf("  Quadrant: %s\n", task.Quadrant().Label())
		fmt.Printf("  Status:   %s\n", task.Status.Label())
		if task.DueDate != nil {
			fmt.Printf("  Due:      %s\n", task.DueDate.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

// parseDueDate parses a --due value. An empty value means no due date.
func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateFormats {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid due date %q (use e.g. 2025-07-01, 2025-07-01 17:00, or RFC 3339)", s)
}

func init() {
	addCmd.Flags().StringVar(&addDesc, "desc", "", "Task description")
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date (e.g. 2025-07-01 or 2025-07-01 17:00)")
	addCmd.Flags().BoolVar(&addUrgent, "urgent", false, "Mark the task urgent")
	addCmd.Flags().BoolVar(&addImportant, "important", false, "Mark the task important")
	addCmd.Flags().StringVar(&addCategory, "category", "", "Category id or name")
	addCmd.Flags().StringSliceVar(&addTags, "tag", nil, "Tag id (repeatable)")
	_ = addCmd.RegisterFlagCompletionFunc("category", completeCategories)
	rootCmd.AddCommand(addCmd)
}
