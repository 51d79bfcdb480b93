package projection

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/Amna-05/quadro/internal/store"
	"github.com/Amna-05/quadro/pkg/models"
)

func genProjectedTask(t *rapid.T) models.Task {
	n := rapid.IntRange(0, 99999).Draw(t, "taskNum")
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).
		Add(time.Duration(rapid.IntRange(0, 300000).Draw(t, "createdOffset")) * time.Minute)

	statuses := models.AllStatuses()
	task := models.Task{
		ID:        fmt.Sprintf("task-%05d", n),
		Title:     fmt.Sprintf("task %d", n),
		Status:    statuses[rapid.IntRange(0, len(statuses)-1).Draw(t, "statusIdx")],
		Urgent:    rapid.Bool().Draw(t, "urgent"),
		Important: rapid.Bool().Draw(t, "important"),
		CreatedAt: created,
		UpdatedAt: created,
	}
	if rapid.Bool().Draw(t, "hasDue") {
		// Spread due dates across past and future relative to testNow.
		due := testNow.Add(time.Duration(rapid.IntRange(-20000, 20000).Draw(t, "dueOffset")) * time.Minute)
		task.DueDate = &due
	}
	return task
}

func genSpec(t *rapid.T) Spec {
	groupKeys := []GroupBy{GroupByNone, GroupByStatus, GroupByQuadrant, GroupByDueBucket}
	sortKeys := []SortBy{SortByCreated, SortByDueDate, SortByPriority}
	return Spec{
		GroupBy: groupKeys[rapid.IntRange(0, len(groupKeys)-1).Draw(t, "groupIdx")],
		SortBy:  sortKeys[rapid.IntRange(0, len(sortKeys)-1).Draw(t, "sortIdx")],
	}
}

func genUniqueProjectedTasks(t *rapid.T) []models.Task {
	tasks := rapid.SliceOfN(rapid.Custom(genProjectedTask), 0, 25).Draw(t, "tasks")
	seen := make(map[string]bool)
	var unique []models.Task
	for _, task := range tasks {
		if !seen[task.ID] {
			seen[task.ID] = true
			unique = append(unique, task)
		}
	}
	return unique
}

// Feature: quadro, Property 5: Projection Idempotence
func TestProjectionIdempotenceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tasks := genUniqueProjectedTasks(t)
		snap := store.Snapshot{Version: uint64(rapid.IntRange(1, 1000).Draw(t, "version")), Tasks: tasks}
		spec := genSpec(t)

		engine := NewEngine()
		first := engine.Project(snap, spec, testNow)
		second := engine.Project(snap, spec, testNow)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("re-projecting identical inputs changed the result")
		}

		fresh := NewEngine().Project(snap, spec, testNow)
		if !reflect.DeepEqual(first, fresh) {
			t.Fatalf("memoized result differs from a fresh engine's result")
		}
	})
}

// Feature: quadro, Property 6: Grouping Is A Partition
func TestProjectionPartitionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tasks := genUniqueProjectedTasks(t)
		snap := store.Snapshot{Version: 1, Tasks: tasks}
		spec := genSpec(t)

		groups := NewEngine().Project(snap, spec, testNow)

		seen := make(map[string]int)
		for _, g := range groups {
			for _, task := range g.Tasks {
				seen[task.ID]++
			}
		}

		for _, task := range tasks {
			if seen[task.ID] != 1 {
				t.Fatalf("task %s appears %d times across groups, want exactly once", task.ID, seen[task.ID])
			}
		}
		total := 0
		for _, g := range groups {
			total += len(g.Tasks)
		}
		if total != len(tasks) {
			t.Fatalf("groups hold %d tasks, snapshot has %d", total, len(tasks))
		}
	})
}
