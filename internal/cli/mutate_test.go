package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Amna-05/quadro/internal/client"
	"github.com/Amna-05/quadro/internal/storage"
	"github.com/Amna-05/quadro/pkg/models"
)

func saveCompleteFlags(t *testing.T) {
	t.Helper()
	orig := completeUndo
	t.Cleanup(func() { completeUndo = orig })
	completeUndo = false
}

// taskByID pulls the effective record out of the shared collection.
func taskByID(t *testing.T, id string) models.Task {
	t.Helper()
	task, ok := Tasks.Effective(id)
	if !ok {
		t.Fatalf("task %q not in collection", id)
	}
	return task
}

func TestCompleteCmd(t *testing.T) {
	saveCompleteFlags(t)
	svc := setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))

	var err error
	output := captureStdout(t, func() {
		err = completeCmd.RunE(completeCmd, []string{"a1b2c3d4"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, `Completed "file taxes"`) {
		t.Errorf("output = %q", output)
	}
	if len(svc.patched) != 1 || svc.patched[0] != "a1b2c3d4" {
		t.Errorf("expected one patch for a1b2c3d4, got %v", svc.patched)
	}
	if got := taskByID(t, "a1b2c3d4"); got.Status != models.StatusDone {
		t.Errorf("collection status = %q, want done", got.Status)
	}
}

func TestCompleteCmd_AlreadyDone(t *testing.T) {
	saveCompleteFlags(t)
	done := fixtureTask("a1b2c3d4", "renew passport")
	done.Status = models.StatusDone
	svc := setupCommandEnv(t, done)

	var err error
	output := captureStdout(t, func() {
		err = completeCmd.RunE(completeCmd, []string{"a1b2c3d4"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, `"renew passport" is already done`) {
		t.Errorf("output = %q", output)
	}
	if len(svc.patched) != 0 {
		t.Errorf("no patch should be sent, got %v", svc.patched)
	}
}

func TestCompleteCmd_Undo(t *testing.T) {
	saveCompleteFlags(t)
	completeUndo = true
	done := fixtureTask("a1b2c3d4", "renew passport")
	done.Status = models.StatusDone
	setupCommandEnv(t, done)

	var err error
	output := captureStdout(t, func() {
		err = completeCmd.RunE(completeCmd, []string{"a1b2c3d4"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, `Reopened "renew passport"`) {
		t.Errorf("output = %q", output)
	}
	if got := taskByID(t, "a1b2c3d4"); got.Status != models.StatusTodo {
		t.Errorf("collection status = %q, want todo", got.Status)
	}
}

func TestCompleteCmd_UndoNotCompleted(t *testing.T) {
	saveCompleteFlags(t)
	completeUndo = true
	svc := setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))

	var err error
	output := captureStdout(t, func() {
		err = completeCmd.RunE(completeCmd, []string{"a1b2c3d4"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, `"file taxes" is not completed`) {
		t.Errorf("output = %q", output)
	}
	if len(svc.patched) != 0 {
		t.Errorf("no patch should be sent, got %v", svc.patched)
	}
}

func TestStatusCmd(t *testing.T) {
	setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))

	var err error
	output := captureStdout(t, func() {
		err = statusCmd.RunE(statusCmd, []string{"a1b2c3d4", "in_progress"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, `Moved "file taxes" to In Progress`) {
		t.Errorf("output = %q", output)
	}
	if got := taskByID(t, "a1b2c3d4"); got.Status != models.StatusInProgress {
		t.Errorf("collection status = %q, want in_progress", got.Status)
	}
}

func TestStatusCmd_SameStatus(t *testing.T) {
	svc := setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))

	var err error
	output := captureStdout(t, func() {
		err = statusCmd.RunE(statusCmd, []string{"a1b2c3d4", "todo"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, `"file taxes" is already in To Do`) {
		t.Errorf("output = %q", output)
	}
	if len(svc.patched) != 0 {
		t.Errorf("no patch should be sent, got %v", svc.patched)
	}
}

func TestStatusCmd_InvalidStatus(t *testing.T) {
	setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))

	err := statusCmd.RunE(statusCmd, []string{"a1b2c3d4", "blocked"})
	if err == nil {
		t.Fatal("expected error for invalid status")
	}
	if !strings.Contains(err.Error(), `unknown status "blocked"`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMoveCmd(t *testing.T) {
	setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))

	var err error
	output := captureStdout(t, func() {
		err = moveCmd.RunE(moveCmd, []string{"a1b2c3d4", "schedule"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, `Moved "file taxes" to Schedule`) {
		t.Errorf("output = %q", output)
	}
	got := taskByID(t, "a1b2c3d4")
	if got.Urgent || !got.Important {
		t.Errorf("expected important-only after move, got urgent=%v important=%v", got.Urgent, got.Important)
	}
	if got.Quadrant() != models.QuadrantSchedule {
		t.Errorf("quadrant = %q, want schedule", got.Quadrant())
	}
}

func TestMoveCmd_SameQuadrant(t *testing.T) {
	svc := setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))

	var err error
	output := captureStdout(t, func() {
		err = moveCmd.RunE(moveCmd, []string{"a1b2c3d4", "do-first"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, `"file taxes" is already in Do First`) {
		t.Errorf("output = %q", output)
	}
	if len(svc.patched) != 0 {
		t.Errorf("no patch should be sent, got %v", svc.patched)
	}
}

func TestMoveCmd_InvalidQuadrant(t *testing.T) {
	setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))

	err := moveCmd.RunE(moveCmd, []string{"a1b2c3d4", "junk"})
	if err == nil {
		t.Fatal("expected error for invalid quadrant")
	}
	if !strings.Contains(err.Error(), `unknown quadrant "junk"`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDeleteCmd(t *testing.T) {
	svc := setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))

	var err error
	output := captureStdout(t, func() {
		err = deleteCmd.RunE(deleteCmd, []string{"a1b2c3d4"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, `Deleted "file taxes"`) {
		t.Errorf("output = %q", output)
	}
	if len(svc.deletes) != 1 || svc.deletes[0] != "a1b2c3d4" {
		t.Errorf("expected one delete for a1b2c3d4, got %v", svc.deletes)
	}
	if _, ok := Tasks.Effective("a1b2c3d4"); ok {
		t.Error("deleted task still in collection")
	}
}

func TestMutation_RollbackSurfacesNotice(t *testing.T) {
	saveCompleteFlags(t)
	svc := setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))
	svc.updateTaskFn = func(_ context.Context, _ string, _ client.TaskPatch) (*models.Task, error) {
		return nil, fmt.Errorf("409 conflict")
	}

	var err error
	captureStdout(t, func() {
		err = completeCmd.RunE(completeCmd, []string{"a1b2c3d4"})
	})
	if err == nil {
		t.Fatal("expected rollback error")
	}
	if err.Error() != `Could not complete "file taxes", changes were reverted` {
		t.Errorf("unexpected error: %v", err)
	}
	if got := taskByID(t, "a1b2c3d4"); got.Status != models.StatusTodo {
		t.Errorf("rollback should restore status, got %q", got.Status)
	}
}

func TestMutation_OfflineRefusal(t *testing.T) {
	saveCompleteFlags(t)
	svc := setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))
	svc.listTasksFn = func(_ context.Context, _ client.ListFilter) ([]models.Task, error) {
		return nil, fmt.Errorf("connection refused")
	}
	Cache = &cacheMock{snapshot: &storage.CachedSnapshot{
		Tasks:   []models.Task{fixtureTask("a1b2c3d4", "file taxes")},
		SavedAt: time.Now().Add(-time.Hour),
	}}

	err := completeCmd.RunE(completeCmd, []string{"a1b2c3d4"})
	if err == nil {
		t.Fatal("expected offline refusal")
	}
	if !strings.Contains(err.Error(), "task service unreachable; mutations are not queued offline") {
		t.Errorf("unexpected error: %v", err)
	}
	if len(svc.patched) != 0 {
		t.Errorf("no patch should be sent offline, got %v", svc.patched)
	}
}

func TestMutation_CoordinatorNotInitialized(t *testing.T) {
	saveCompleteFlags(t)
	setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))
	Mutations = nil

	err := completeCmd.RunE(completeCmd, []string{"a1b2c3d4"})
	if err == nil || !strings.Contains(err.Error(), "mutation coordinator not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}
