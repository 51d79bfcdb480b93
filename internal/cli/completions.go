package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Amna-05/quadro/internal/client"
	"github.com/Amna-05/quadro/pkg/models"
)

// completeTaskIDs returns a completion function that lists task ids,
// optionally filtered to exclude certain statuses.
func completeTaskIDs(excludeStatuses ...models.Status) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if TaskSvc == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		tasks, err := TaskSvc.ListTasks(context.Background(), client.ListFilter{})
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		exclude := make(map[models.Status]bool)
		for _, s := range excludeStatuses {
			exclude[s] = true
		}

		var ids []string
		for _, task := range tasks {
			if exclude[task.Status] {
				continue
			}
			if toComplete == "" || strings.HasPrefix(task.ID, toComplete) {
				// Text after the tab renders as the completion description.
				ids = append(ids, task.ID+"\t"+task.Title)
			}
		}

		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeIDThenStatus completes the id argument first, then the status.
func completeIDThenStatus(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return completeTaskIDs()(cmd, args, toComplete)
	}
	return completeStatuses(cmd, args, toComplete)
}

// completeIDThenQuadrant completes the id argument first, then the quadrant.
func completeIDThenQuadrant(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return completeTaskIDs()(cmd, args, toComplete)
	}
	return completeQuadrants(cmd, args, toComplete)
}

// completeStatuses returns a completion function for status values.
func completeStatuses(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"todo\tQueued for later",
		"in_progress\tActively being worked on",
		"done\tCompleted",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeQuadrants returns a completion function for quadrant values.
func completeQuadrants(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"do-first\tUrgent and important",
		"schedule\tImportant, not urgent",
		"delegate\tUrgent, not important",
		"eliminate\tNeither urgent nor important",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeCategories returns a completion function for category names.
func completeCategories(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if TaskSvc == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	categories, err := TaskSvc.ListCategories(context.Background())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var names []string
	for _, c := range categories {
		if toComplete == "" || strings.HasPrefix(strings.ToLower(c.Name), strings.ToLower(toComplete)) {
			names = append(names, c.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeSortKeys returns a completion function for the list --sort flag.
func completeSortKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"priority\tEisenhower priority",
		"due\tDue date, earliest first",
		"created\tCreation time",
	}, cobra.ShellCompDirectiveNoFileComp
}
