package observability

import (
	"fmt"
	"time"
)

// Metrics holds aggregates derived from the mutation journal.
type Metrics struct {
	TasksCreated    int            `json:"tasks_created"`
	TasksCompleted  int            `json:"tasks_completed"`
	TasksReopened   int            `json:"tasks_reopened"`
	TasksDeleted    int            `json:"tasks_deleted"`
	Reclassified    int            `json:"reclassified"`
	MovesByStatus   map[string]int `json:"moves_by_status"`
	MovesByQuadrant map[string]int `json:"moves_by_quadrant"`
	Rollbacks       int            `json:"rollbacks"`
	EventCount      int            `json:"event_count"`
	OldestEvent     *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent     *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		MovesByStatus:   make(map[string]int),
		MovesByQuadrant: make(map[string]int),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "task.created":
			m.TasksCreated++
		case "task.completed":
			m.TasksCompleted++
		case "task.uncompleted":
			m.TasksReopened++
		case "task.deleted":
			m.TasksDeleted++
		case "task.status_changed":
			if status, ok := event.Data["status"].(string); ok {
				m.MovesByStatus[status]++
			}
		case "task.reclassified":
			m.Reclassified++
			if quadrant, ok := event.Data["quadrant"].(string); ok {
				m.MovesByQuadrant[quadrant]++
			}
		case "mutation.rolled_back":
			m.Rollbacks++
		}
	}

	return m, nil
}
