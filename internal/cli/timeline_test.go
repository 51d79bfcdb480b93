package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/Amna-05/quadro/pkg/models"
)

func TestTimelineHint(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

	undated := fixtureTask("a", "undated")
	if got := timelineHint(undated, now); got != "" {
		t.Errorf("undated: got %q, want empty", got)
	}

	pastDay := time.Date(2025, 6, 10, 17, 0, 0, 0, time.Local)
	overdue := fixtureTask("b", "overdue")
	overdue.DueDate = &pastDay
	if got := timelineHint(overdue, now); got != "due Jun 10" {
		t.Errorf("overdue: got %q", got)
	}

	todayClock := time.Date(2025, 6, 15, 17, 30, 0, 0, time.Local)
	dated := fixtureTask("c", "with clock time")
	dated.DueDate = &todayClock
	if got := timelineHint(dated, now); got != "17:30" {
		t.Errorf("clock hint: got %q", got)
	}

	midnight := time.Date(2025, 6, 16, 0, 0, 0, 0, time.Local)
	bareDate := fixtureTask("d", "bare date")
	bareDate.DueDate = &midnight
	if got := timelineHint(bareDate, now); got != "" {
		t.Errorf("bare date: got %q, want empty", got)
	}
}

func saveTimelineFlags(t *testing.T) {
	t.Helper()
	orig := timelineAll
	t.Cleanup(func() { timelineAll = orig })
	timelineAll = false
}

func TestTimelineCmd(t *testing.T) {
	saveTimelineFlags(t)
	now := time.Now()
	pastDay := now.AddDate(0, 0, -3)
	dueNow := now

	overdue := fixtureTask("a1b2c3d4", "file taxes")
	overdue.DueDate = &pastDay

	dueToday := fixtureTask("b2c3d4e5", "call accountant")
	dueToday.DueDate = &dueNow

	undated := fixtureTask("c3d4e5f6", "read go book")

	finished := fixtureTask("d4e5f6a7", "renew passport")
	finished.Status = models.StatusDone
	finished.DueDate = &dueNow

	setupCommandEnv(t, overdue, dueToday, undated, finished)

	var err error
	output := captureStdout(t, func() {
		err = timelineCmd.RunE(timelineCmd, nil)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"Overdue (1)",
		"file taxes",
		"Today (1)",
		"call accountant",
		"No due date (1)",
		"read go book",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "renew passport") {
		t.Errorf("done task should be excluded:\n%s", output)
	}
	// Buckets run from overdue to undated.
	if strings.Index(output, "Overdue (1)") > strings.Index(output, "No due date (1)") {
		t.Errorf("bucket order wrong:\n%s", output)
	}
}

func TestTimelineCmd_AllIncludesCompleted(t *testing.T) {
	saveTimelineFlags(t)
	timelineAll = true
	now := time.Now()

	finished := fixtureTask("a1b2c3d4", "renew passport")
	finished.Status = models.StatusDone
	finished.DueDate = &now

	setupCommandEnv(t, finished)

	var err error
	output := captureStdout(t, func() {
		err = timelineCmd.RunE(timelineCmd, nil)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "renew passport") {
		t.Errorf("done task should be listed with --all:\n%s", output)
	}
	if !strings.Contains(output, "Today (1)") {
		t.Errorf("output missing bucket:\n%s", output)
	}
}

func TestTimelineCmd_Empty(t *testing.T) {
	saveTimelineFlags(t)
	setupCommandEnv(t)

	var err error
	output := captureStdout(t, func() {
		err = timelineCmd.RunE(timelineCmd, nil)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "No open tasks.") {
		t.Errorf("output missing empty-state line:\n%s", output)
	}
}
