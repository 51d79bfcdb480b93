package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Amna-05/quadro/internal/observability"
	"github.com/Amna-05/quadro/pkg/models"
)

type metricsCalcMock struct {
	calcFn func(since time.Time) (*observability.Metrics, error)
}

func (m *metricsCalcMock) Calculate(since time.Time) (*observability.Metrics, error) {
	if m.calcFn != nil {
		return m.calcFn(since)
	}
	return &observability.Metrics{}, nil
}

type alertEngineMock struct {
	evalFn func(tasks []models.Task, now time.Time) []observability.Alert
}

func (m *alertEngineMock) Evaluate(tasks []models.Task, now time.Time) []observability.Alert {
	if m.evalFn != nil {
		return m.evalFn(tasks, now)
	}
	return nil
}

type notifierMock struct {
	notifyErr error
	received  [][]observability.Alert
}

func (m *notifierMock) Notify(alerts []observability.Alert) error {
	if m.notifyErr != nil {
		return m.notifyErr
	}
	m.received = append(m.received, alerts)
	return nil
}

func TestParseSinceDuration(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		input   string
		want    time.Time
		wantErr string
	}{
		{input: "", want: now.AddDate(0, 0, -7)},
		{input: "7d", want: now.AddDate(0, 0, -7)},
		{input: "30d", want: now.AddDate(0, 0, -30)},
		{input: "24h", want: now.Add(-24 * time.Hour)},
		{input: "-5d", want: now.AddDate(0, 0, 5)},
		{input: "xd", wantErr: "invalid day duration"},
		{input: "yh", wantErr: "invalid hour duration"},
		{input: "7x", wantErr: "unsupported duration format"},
		{input: "soon", wantErr: "unsupported duration format"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseSinceDuration(tt.input)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			diff := got.Sub(tt.want)
			if diff < -2*time.Second || diff > 2*time.Second {
				t.Errorf("got %v, want about %v", got, tt.want)
			}
		})
	}
}

func saveStatsFlags(t *testing.T) {
	t.Helper()
	origJSON, origSince, origNotify := statsJSON, statsSince, statsNotify
	t.Cleanup(func() {
		statsJSON, statsSince, statsNotify = origJSON, origSince, origNotify
	})
	statsJSON, statsSince, statsNotify = false, "7d", false
}

func sampleMetrics() *observability.Metrics {
	newest := time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)
	return &observability.Metrics{
		TasksCreated:    4,
		TasksCompleted:  3,
		TasksReopened:   1,
		TasksDeleted:    2,
		Reclassified:    5,
		MovesByStatus:   map[string]int{"in_progress": 2, "done": 3},
		MovesByQuadrant: map[string]int{"schedule": 5},
		Rollbacks:       1,
		EventCount:      18,
		NewestEvent:     &newest,
	}
}

func TestStatsCmd_NotInitialized(t *testing.T) {
	saveStatsFlags(t)
	setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))

	err := statsCmd.RunE(statsCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "observability not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStatsCmd_InvalidSince(t *testing.T) {
	saveStatsFlags(t)
	statsSince = "soon"
	setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))
	MetricsCalc = &metricsCalcMock{}
	AlertEngine = &alertEngineMock{}

	err := statsCmd.RunE(statsCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "parsing --since:") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStatsCmd_Table(t *testing.T) {
	saveStatsFlags(t)
	setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))
	MetricsCalc = &metricsCalcMock{
		calcFn: func(_ time.Time) (*observability.Metrics, error) { return sampleMetrics(), nil },
	}
	AlertEngine = &alertEngineMock{
		evalFn: func(tasks []models.Task, now time.Time) []observability.Alert {
			if len(tasks) != 1 {
				t.Errorf("expected snapshot with 1 task, got %d", len(tasks))
			}
			return []observability.Alert{
				{ID: "overdue_tasks", Severity: observability.SeverityHigh, Message: "6 task(s) are overdue", TriggeredAt: now},
				{ID: "do_first_overload", Severity: observability.SeverityMedium, Message: "Do First holds 9 open task(s)", TriggeredAt: now},
			}
		},
	}

	var err error
	output := captureStdout(t, func() {
		err = statsCmd.RunE(statsCmd, nil)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"Activity (since",
		"Events recorded:",
		"18",
		"Tasks created:",
		"Rollbacks:",
		"Status moves:",
		"done:",
		"Quadrant moves:",
		"Newest event:",
		"2 active alert(s):",
		"[HIGH] 6 task(s) are overdue",
		"[MEDIUM] Do First holds 9 open task(s)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestStatsCmd_NoAlerts(t *testing.T) {
	saveStatsFlags(t)
	setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))
	MetricsCalc = &metricsCalcMock{}
	AlertEngine = &alertEngineMock{}

	var err error
	output := captureStdout(t, func() {
		err = statsCmd.RunE(statsCmd, nil)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "No active alerts.") {
		t.Errorf("output missing empty alert line:\n%s", output)
	}
}

func TestStatsCmd_JSON(t *testing.T) {
	saveStatsFlags(t)
	statsJSON = true
	setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))
	MetricsCalc = &metricsCalcMock{
		calcFn: func(_ time.Time) (*observability.Metrics, error) { return sampleMetrics(), nil },
	}
	AlertEngine = &alertEngineMock{
		evalFn: func(_ []models.Task, now time.Time) []observability.Alert {
			return []observability.Alert{{ID: "overdue_tasks", Severity: observability.SeverityHigh, Message: "overdue", TriggeredAt: now}}
		},
	}

	var err error
	output := captureStdout(t, func() {
		err = statsCmd.RunE(statsCmd, nil)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		Metrics *observability.Metrics `json:"metrics"`
		Alerts  []observability.Alert  `json:"alerts"`
	}
	if err := json.Unmarshal([]byte(output), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, output)
	}
	if payload.Metrics == nil || payload.Metrics.TasksCreated != 4 {
		t.Errorf("metrics = %+v", payload.Metrics)
	}
	if len(payload.Alerts) != 1 || payload.Alerts[0].ID != "overdue_tasks" {
		t.Errorf("alerts = %+v", payload.Alerts)
	}
}

func TestStatsCmd_CalculateError(t *testing.T) {
	saveStatsFlags(t)
	setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))
	MetricsCalc = &metricsCalcMock{
		calcFn: func(_ time.Time) (*observability.Metrics, error) { return nil, fmt.Errorf("journal corrupt") },
	}
	AlertEngine = &alertEngineMock{}

	err := statsCmd.RunE(statsCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "calculating metrics: journal corrupt") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStatsCmd_NotifySendsAlerts(t *testing.T) {
	saveStatsFlags(t)
	statsNotify = true
	setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))
	MetricsCalc = &metricsCalcMock{}
	alerts := []observability.Alert{{ID: "overdue_tasks", Severity: observability.SeverityHigh, Message: "overdue"}}
	AlertEngine = &alertEngineMock{
		evalFn: func(_ []models.Task, _ time.Time) []observability.Alert { return alerts },
	}
	hook := &notifierMock{}
	Notifier = hook

	var err error
	captureStdout(t, func() {
		err = statsCmd.RunE(statsCmd, nil)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hook.received) != 1 || len(hook.received[0]) != 1 {
		t.Fatalf("expected one notification with one alert, got %+v", hook.received)
	}
	if hook.received[0][0].ID != "overdue_tasks" {
		t.Errorf("notified alert = %+v", hook.received[0][0])
	}
}

func TestStatsCmd_NotifyError(t *testing.T) {
	saveStatsFlags(t)
	statsNotify = true
	setupCommandEnv(t, fixtureTask("a1b2c3d4", "file taxes"))
	MetricsCalc = &metricsCalcMock{}
	AlertEngine = &alertEngineMock{
		evalFn: func(_ []models.Task, now time.Time) []observability.Alert {
			return []observability.Alert{{ID: "overdue_tasks", Message: "overdue", TriggeredAt: now}}
		},
	}
	Notifier = &notifierMock{notifyErr: fmt.Errorf("webhook returned status 500")}

	err := statsCmd.RunE(statsCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "notifying webhook: webhook returned status 500") {
		t.Errorf("unexpected error: %v", err)
	}
}
