package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Amna-05/quadro/internal/mutation"
	"github.com/Amna-05/quadro/pkg/models"
)

var completeUndo bool

var completeCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Complete a task (or reopen it with --undo)",
	Long: `Mark a task done, or reopen a completed task with --undo.

The change is applied optimistically and confirmed against the service;
a rejected change is rolled back and reported.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := mutableTask(args[0])
		if err != nil {
			return err
		}

		kind := mutation.CommandComplete
		if completeUndo {
			kind = mutation.CommandUncomplete
			if task.Status != models.StatusDone {
				fmt.Printf("%q is not completed\n", task.Title)
				return nil
			}
		} else if task.Status == models.StatusDone {
			fmt.Printf("%q is already done\n", task.Title)
			return nil
		}

		if err := runMutation(mutation.Command{Kind: kind, TaskID: task.ID}); err != nil {
			return err
		}
		if completeUndo {
			fmt.Printf("Reopened %q\n", task.Title)
		} else {
			fmt.Printf("Completed %q\n", task.Title)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Move a task to another status",
	Long: `Move a task to todo, in_progress, or done.

Only the status field is sent; the rest of the record is untouched.`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeIDThenStatus,
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := mutableTask(args[0])
		if err != nil {
			return err
		}

		status := models.Status(strings.ToLower(args[1]))
		if !models.ValidStatus(status) {
			return fmt.Errorf("unknown status %q (expected todo, in_progress, or done)", args[1])
		}
		if task.Status == status {
			fmt.Printf("%q is already in %s\n", task.Title, status.Label())
			return nil
		}

		if err := runMutation(mutation.Command{Kind: mutation.CommandStatusChange, TaskID: task.ID, Status: status}); err != nil {
			return err
		}
		fmt.Printf("Moved %q to %s\n", task.Title, status.Label())
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <id> <quadrant>",
	Short: "Reclassify a task into another quadrant",
	Long: `Reclassify a task into do-first, schedule, delegate, or eliminate.

Only the urgency and importance flags are sent; status, due date, and
everything else stay untouched.`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeIDThenQuadrant,
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := mutableTask(args[0])
		if err != nil {
			return err
		}

		quadrant, err := models.ParseQuadrant(strings.ToLower(args[1]))
		if err != nil {
			return err
		}
		if task.Quadrant() == quadrant {
			fmt.Printf("%q is already in %s\n", task.Title, quadrant.Label())
			return nil
		}

		urgent, important := quadrant.Attributes()
		c := mutation.Command{Kind: mutation.CommandReclassify, TaskID: task.ID, Urgent: urgent, Important: important}
		if err := runMutation(c); err != nil {
			return err
		}
		fmt.Printf("Moved %q to %s\n", task.Title, quadrant.Label())
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:               "delete <id>",
	Short:             "Delete a task",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := mutableTask(args[0])
		if err != nil {
			return err
		}
		if err := runMutation(mutation.Command{Kind: mutation.CommandDelete, TaskID: task.ID}); err != nil {
			return err
		}
		fmt.Printf("Deleted %q\n", task.Title)
		return nil
	},
}

// mutableTask loads the working set and resolves the id argument. Mutations
// require a live service; cached data would only produce a doomed dispatch.
func mutableTask(idArg string) (models.Task, error) {
	if Mutations == nil {
		return models.Task{}, fmt.Errorf("mutation coordinator not initialized")
	}
	ws, err := loadWorkingSet(context.Background())
	if err != nil {
		return models.Task{}, err
	}
	if ws.StaleNote != "" {
		return models.Task{}, fmt.Errorf("task service unreachable; mutations are not queued offline")
	}
	return resolveTask(idArg)
}

// runMutation pushes one command through the coordinator and surfaces a
// rollback as the command error.
func runMutation(cmd mutation.Command) error {
	res, err := Mutations.Run(context.Background(), cmd)
	if err != nil {
		return err
	}
	if !res.Committed {
		return fmt.Errorf("%s", res.Notice)
	}
	return nil
}

func init() {
	completeCmd.Flags().BoolVar(&completeUndo, "undo", false, "Reopen a completed task")
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(deleteCmd)
}
