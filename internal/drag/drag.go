// Package drag interprets pointer gestures against status-column and
// quadrant-cell drop targets and turns a completed drop into a single
// mutation command. The controller is pure bookkeeping over cell geometry;
// it never touches the task collection itself, which keeps the gesture's
// effect testable without a terminal.
package drag

import (
	"github.com/Amna-05/quadro/pkg/models"
)

// State is the controller's current phase. Terminal outcomes (dropped on a
// target, dropped outside, cancelled) resolve immediately back to idle, so
// only the two resting states are observable.
type State string

const (
	StateIdle     State = "idle"
	StateDragging State = "dragging"
)

// DefaultActivationDistance is the cell movement required before a pressed
// card starts dragging. One cell is the smallest observable motion under
// cell-granular mouse tracking.
const DefaultActivationDistance = 1

// TargetKind distinguishes the two drop-target families.
type TargetKind string

const (
	TargetStatusColumn TargetKind = "status_column"
	TargetQuadrantCell TargetKind = "quadrant_cell"
)

// Target is a currently-mounted drop region. Status is set for column
// targets, Quadrant for cell targets.
type Target struct {
	Kind     TargetKind
	Status   models.Status
	Quadrant models.Quadrant
	Bounds   Rect
}

// CommandKind identifies what a completed drop asks for.
type CommandKind string

const (
	CommandStatusChange CommandKind = "status_change"
	CommandReclassify   CommandKind = "reclassify"
)

// Command is the single mutation a drop resolves to.
type Command struct {
	Kind      CommandKind
	TaskID    string
	Status    models.Status
	Urgent    bool
	Important bool
}

// Controller runs the drag state machine for one view. Press arms it,
// movement past the activation distance starts the drag, and Release
// resolves the drop against the view's mounted targets.
type Controller struct {
	threshold int

	state      State
	pressed    bool
	task       models.Task
	origin     Target
	cardBounds Rect
	pressPos   Point
	pos        Point
}

// NewController creates an idle controller with the default activation
// distance.
func NewController() *Controller {
	return &Controller{threshold: DefaultActivationDistance, state: StateIdle}
}

// State returns the controller's resting state.
func (c *Controller) State() State {
	return c.state
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool {
	return c.state == StateDragging
}

// Task returns the task captured at press time, for overlay rendering.
func (c *Controller) Task() models.Task {
	return c.task
}

// Position returns the current pointer position.
func (c *Controller) Position() Point {
	return c.pos
}

// Origin returns the container the drag started from.
func (c *Controller) Origin() Target {
	return c.origin
}

// Press arms the controller on a card. The card's attributes are captured
// here; the short-circuit check on release compares against this capture,
// not against whatever the collection holds by then.
func (c *Controller) Press(task models.Task, origin Target, cardBounds Rect, pos Point) {
	c.pressed = true
	c.task = task
	c.origin = origin
	c.cardBounds = cardBounds
	c.pressPos = pos
	c.pos = pos
}

// Move tracks the pointer. An armed press becomes a drag once the pointer
// travels at least the activation distance in any direction.
func (c *Controller) Move(pos Point) {
	if !c.pressed && c.state != StateDragging {
		return
	}
	c.pos = pos
	if c.state != StateDragging {
		dx := abs(pos.X - c.pressPos.X)
		dy := abs(pos.Y - c.pressPos.Y)
		if dx >= c.threshold || dy >= c.threshold {
			c.state = StateDragging
		}
	}
}

// Release resolves the gesture. A press that never became a drag resolves
// to nothing (the view handles plain clicks itself). A drag resolves
// against the mounted targets: a status column issues a status change
// unless the task is already in that column, a quadrant cell issues a
// reclassification unless the attribute pair is unchanged, and anything
// else is a drop outside. The controller is idle afterwards either way.
func (c *Controller) Release(targets []Target) (Command, bool) {
	defer c.reset()

	if c.state != StateDragging {
		return Command{}, false
	}

	target, ok := resolveTarget(c.cardBounds.centeredOn(c.pos), c.pos, targets)
	if !ok {
		return Command{}, false
	}

	switch target.Kind {
	case TargetStatusColumn:
		if c.task.Status == target.Status {
			return Command{}, false
		}
		return Command{
			Kind:   CommandStatusChange,
			TaskID: c.task.ID,
			Status: target.Status,
		}, true

	case TargetQuadrantCell:
		urgent, important := target.Quadrant.Attributes()
		if c.task.Urgent == urgent && c.task.Important == important {
			return Command{}, false
		}
		return Command{
			Kind:      CommandReclassify,
			TaskID:    c.task.ID,
			Urgent:    urgent,
			Important: important,
		}, true
	}
	return Command{}, false
}

// Cancel abandons any press or drag in progress.
func (c *Controller) Cancel() {
	c.reset()
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.pressed = false
	c.task = models.Task{}
	c.origin = Target{}
	c.cardBounds = Rect{}
}

// resolveTarget picks the drop target for a released card. Candidates are
// the targets the card overlaps or whose bounds contain the pointer.
// Primary score: smallest summed corner distance between the card and the
// target. Ties: largest overlap-to-target-area ratio, so the target the
// card is most contained in wins. Remaining ties keep the earlier-mounted
// target, which makes resolution deterministic for identical inputs.
func resolveTarget(card Rect, pointer Point, targets []Target) (Target, bool) {
	bestIdx := -1
	var bestDist, bestRatio float64

	for i, t := range targets {
		overlap := intersect(card, t.Bounds)
		if overlap.Area() == 0 && !t.Bounds.Contains(pointer) {
			continue
		}

		dist := cornerDistance(card, t.Bounds)
		ratio := 0.0
		if a := t.Bounds.Area(); a > 0 {
			ratio = float64(overlap.Area()) / float64(a)
		}

		switch {
		case bestIdx == -1:
		case dist < bestDist:
		case dist == bestDist && ratio > bestRatio:
		default:
			continue
		}
		bestIdx, bestDist, bestRatio = i, dist, ratio
	}

	if bestIdx == -1 {
		return Target{}, false
	}
	return targets[bestIdx], true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
