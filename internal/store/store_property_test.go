package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"pgregory.net/rapid"

	"github.com/Amna-05/quadro/pkg/models"
)

func genStatus(t *rapid.T) models.Status {
	statuses := models.AllStatuses()
	return statuses[rapid.IntRange(0, len(statuses)-1).Draw(t, "statusIdx")]
}

func genStoredTask(t *rapid.T) models.Task {
	n := rapid.IntRange(0, 99999).Draw(t, "taskNum")
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).
		Add(time.Duration(rapid.IntRange(0, 10000).Draw(t, "createdOffset")) * time.Minute)

	task := models.Task{
		ID:        fmt.Sprintf("task-%05d", n),
		Title:     fmt.Sprintf("task %d", n),
		Status:    genStatus(t),
		Urgent:    rapid.Bool().Draw(t, "urgent"),
		Important: rapid.Bool().Draw(t, "important"),
		CreatedAt: created,
		UpdatedAt: created,
	}
	if rapid.Bool().Draw(t, "hasDue") {
		due := created.Add(time.Duration(rapid.IntRange(1, 20000).Draw(t, "dueOffset")) * time.Minute)
		task.DueDate = &due
	}
	return task
}

func genDelta(t *rapid.T, taskID string) Delta {
	d := Delta{
		ID:        uuid.New(),
		TaskID:    taskID,
		AppliedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	switch rapid.IntRange(0, 4).Draw(t, "deltaKind") {
	case 0:
		d.Kind = DeltaComplete
	case 1:
		d.Kind = DeltaUncomplete
	case 2:
		d.Kind = DeltaDelete
	case 3:
		d.Kind = DeltaReclassify
		u := rapid.Bool().Draw(t, "newUrgent")
		i := rapid.Bool().Draw(t, "newImportant")
		d.Urgent = &u
		d.Important = &i
	default:
		d.Kind = DeltaStatusChange
		s := genStatus(t)
		d.Status = &s
	}
	return d
}

func dedupeTasks(tasks []models.Task) []models.Task {
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

// Feature: quadro, Property 3: Optimistic Deltas Never Leak Into Canonical
func TestOptimisticIsolationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tasks := dedupeTasks(rapid.SliceOfN(rapid.Custom(genStoredTask), 1, 15).Draw(t, "tasks"))

		c := NewCollection()
		for _, task := range tasks {
			c.Upsert(task)
		}

		nDeltas := rapid.IntRange(1, 10).Draw(t, "nDeltas")
		for i := 0; i < nDeltas; i++ {
			target := tasks[rapid.IntRange(0, len(tasks)-1).Draw(t, fmt.Sprintf("target%d", i))]
			if err := c.ApplyOptimistic(genDelta(t, target.ID)); err != nil {
				t.Fatal(err)
			}
		}

		for _, orig := range tasks {
			got, ok := c.Get(orig.ID)
			if !ok {
				t.Fatalf("canonical record %s vanished under optimistic deltas", orig.ID)
			}
			if got.Status != orig.Status || got.Urgent != orig.Urgent || got.Important != orig.Important {
				t.Fatalf("canonical record %s changed under optimistic deltas: %+v vs %+v", orig.ID, got, orig)
			}
		}
	})
}

// Feature: quadro, Property 4: Rollback Restores The Last-Confirmed State
func TestRollbackRestoresCanonicalProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		task := genStoredTask(t)

		c := NewCollection()
		c.Upsert(task)

		nDeltas := rapid.IntRange(1, 5).Draw(t, "nDeltas")
		for i := 0; i < nDeltas; i++ {
			if err := c.ApplyOptimistic(genDelta(t, task.ID)); err != nil {
				t.Fatal(err)
			}
		}
		for i := 0; i < nDeltas; i++ {
			c.Reconcile(task.ID, Result{Committed: false})
		}

		effective, ok := c.Effective(task.ID)
		if !ok {
			t.Fatalf("task %s missing after full rollback", task.ID)
		}
		if effective.Status != task.Status || effective.Urgent != task.Urgent || effective.Important != task.Important {
			t.Fatalf("rollback left residue: %+v vs %+v", effective, task)
		}
		if len(c.Pending(task.ID)) != 0 {
			t.Fatal("expected no pending deltas after full rollback")
		}
	})
}
