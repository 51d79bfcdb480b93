package models

import "fmt"

// Quadrant is the Eisenhower priority quadrant derived from a task's urgent
// and important flags. It is a pure function of those two booleans; no code
// path stores a quadrant alongside a task.
type Quadrant string

const (
	QuadrantDoFirst   Quadrant = "do_first"
	QuadrantSchedule  Quadrant = "schedule"
	QuadrantDelegate  Quadrant = "delegate"
	QuadrantEliminate Quadrant = "eliminate"
)

// AllQuadrants lists every quadrant in priority-rank order.
func AllQuadrants() []Quadrant {
	return []Quadrant{QuadrantDoFirst, QuadrantSchedule, QuadrantDelegate, QuadrantEliminate}
}

// Classify maps the two priority flags to their quadrant. Total and
// deterministic; the inverse of Quadrant.Attributes.
func Classify(urgent, important bool) Quadrant {
	switch {
	case urgent && important:
		return QuadrantDoFirst
	case !urgent && important:
		return QuadrantSchedule
	case urgent && !important:
		return QuadrantDelegate
	default:
		return QuadrantEliminate
	}
}

// Attributes returns the (urgent, important) pair that classifies to q.
// The inverse of Classify. Panics on a value outside the four quadrants;
// that is a programming error, not a runtime condition.
func (q Quadrant) Attributes() (urgent, important bool) {
	switch q {
	case QuadrantDoFirst:
		return true, true
	case QuadrantSchedule:
		return false, true
	case QuadrantDelegate:
		return true, false
	case QuadrantEliminate:
		return false, false
	}
	panic(fmt.Sprintf("models: unknown quadrant %q", string(q)))
}

// Rank returns the quadrant's priority order, 0 being the highest.
func (q Quadrant) Rank() int {
	switch q {
	case QuadrantDoFirst:
		return 0
	case QuadrantSchedule:
		return 1
	case QuadrantDelegate:
		return 2
	case QuadrantEliminate:
		return 3
	}
	panic(fmt.Sprintf("models: unknown quadrant %q", string(q)))
}

// Label returns the human-readable form of the quadrant.
func (q Quadrant) Label() string {
	switch q {
	case QuadrantDoFirst:
		return "Do First"
	case QuadrantSchedule:
		return "Schedule"
	case QuadrantDelegate:
		return "Delegate"
	case QuadrantEliminate:
		return "Eliminate"
	}
	return string(q)
}

// ParseQuadrant converts user input to a Quadrant. Accepts the canonical
// snake_case form and the dashed form used on the command line.
func ParseQuadrant(s string) (Quadrant, error) {
	switch s {
	case "do_first", "do-first", "dofirst":
		return QuadrantDoFirst, nil
	case "schedule":
		return QuadrantSchedule, nil
	case "delegate":
		return QuadrantDelegate, nil
	case "eliminate":
		return QuadrantEliminate, nil
	}
	return "", fmt.Errorf("unknown quadrant %q (expected do-first, schedule, delegate, or eliminate)", s)
}

// Quadrant derives the task's priority quadrant from its urgent and
// important flags.
func (t Task) Quadrant() Quadrant {
	return Classify(t.Urgent, t.Important)
}
