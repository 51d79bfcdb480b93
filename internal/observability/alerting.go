package observability

import (
	"fmt"
	"time"

	"github.com/Amna-05/quadro/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	MaxOverdue          int `yaml:"max_overdue" json:"max_overdue"`
	MaxDoFirst          int `yaml:"max_do_first" json:"max_do_first"`
	StaleInProgressDays int `yaml:"stale_in_progress_days" json:"stale_in_progress_days"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		MaxOverdue:          5,
		MaxDoFirst:          8,
		StaleInProgressDays: 7,
	}
}

// AlertEngine evaluates alert conditions against a task snapshot.
type AlertEngine interface {
	Evaluate(tasks []models.Task, now time.Time) []Alert
}

// alertEngine implements AlertEngine by checking the snapshot against thresholds.
type alertEngine struct {
	thresholds AlertThresholds
}

// NewAlertEngine creates a new AlertEngine with the given thresholds.
func NewAlertEngine(thresholds AlertThresholds) AlertEngine {
	return &alertEngine{thresholds: thresholds}
}

// Evaluate checks all alert conditions, returning any triggered alerts.
func (ae *alertEngine) Evaluate(tasks []models.Task, now time.Time) []Alert {
	var alerts []Alert
	alerts = append(alerts, ae.checkOverdue(tasks, now)...)
	alerts = append(alerts, ae.checkDoFirstOverload(tasks, now)...)
	alerts = append(alerts, ae.checkStaleInProgress(tasks, now)...)
	return alerts
}

// checkOverdue counts open overdue tasks and alerts when the count exceeds the threshold.
func (ae *alertEngine) checkOverdue(tasks []models.Task, now time.Time) []Alert {
	overdue := 0
	for _, task := range tasks {
		if task.Status != models.StatusDone && task.OverdueAt(now) {
			overdue++
		}
	}

	if overdue <= ae.thresholds.MaxOverdue {
		return nil
	}
	return []Alert{{
		ID:          "overdue-count",
		Condition:   "too_many_overdue",
		Severity:    SeverityHigh,
		Message:     fmt.Sprintf("%d tasks are overdue, exceeding the maximum of %d", overdue, ae.thresholds.MaxOverdue),
		TriggeredAt: now,
	}}
}

// checkDoFirstOverload counts open do-first tasks and alerts when the quadrant is overloaded.
func (ae *alertEngine) checkDoFirstOverload(tasks []models.Task, now time.Time) []Alert {
	open := 0
	for _, task := range tasks {
		if task.Status != models.StatusDone && task.Quadrant() == models.QuadrantDoFirst {
			open++
		}
	}

	if open <= ae.thresholds.MaxDoFirst {
		return nil
	}
	return []Alert{{
		ID:          "do-first-overload",
		Condition:   "do_first_overload",
		Severity:    SeverityMedium,
		Message:     fmt.Sprintf("the do-first quadrant holds %d open tasks, exceeding the maximum of %d", open, ae.thresholds.MaxDoFirst),
		TriggeredAt: now,
	}}
}

// checkStaleInProgress looks for in-progress tasks with no recent updates.
func (ae *alertEngine) checkStaleInProgress(tasks []models.Task, now time.Time) []Alert {
	threshold := time.Duration(ae.thresholds.StaleInProgressDays) * 24 * time.Hour

	var alerts []Alert
	for _, task := range tasks {
		if task.Status != models.StatusInProgress {
			continue
		}
		if now.Sub(task.UpdatedAt) > threshold {
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("stale-%s", task.ID),
				Condition:   "task_stale",
				Severity:    SeverityMedium,
				Message:     fmt.Sprintf("task %q has been in progress without updates for more than %d days", task.Title, ae.thresholds.StaleInProgressDays),
				TriggeredAt: now,
			})
		}
	}
	return alerts
}
