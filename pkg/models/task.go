package models

import "time"

// Status represents the current lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// AllStatuses lists every status in board-column order.
func AllStatuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// ValidStatus reports whether s is one of the known status values.
func ValidStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Label returns the human-readable form of the status.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// Task represents a task record as served by the task service. Urgent and
// Important are the sole source of prioritization; the quadrant is always
// derived from them, never stored.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Urgent      bool       `json:"is_urgent"`
	Important   bool       `json:"is_important"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CategoryID  string     `json:"category_id,omitempty"`
	TagIDs      []string   `json:"tag_ids,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OverdueAt reports whether the task's due date lies strictly in the past
// and on an earlier calendar day than now. A task due later today, or due
// earlier today, is not overdue; the boundary is the local midnight of now.
func (t Task) OverdueAt(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	due := t.DueDate.In(now.Location())
	if !due.Before(now) {
		return false
	}
	dy, dm, dd := due.Date()
	ny, nm, nd := now.Date()
	return dy != ny || dm != nm || dd != nd
}

// DueToday reports whether the task is due on the same calendar day as now.
func (t Task) DueToday(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	due := t.DueDate.In(now.Location())
	dy, dm, dd := due.Date()
	ny, nm, nd := now.Date()
	return dy == ny && dm == nm && dd == nd
}

// Category is externally-owned display metadata referenced by Task.CategoryID.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Tag is externally-owned display metadata referenced by Task.TagIDs.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
