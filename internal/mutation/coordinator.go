// Package mutation wraps the mutating task commands in an optimistic
// apply/dispatch/reconcile protocol. Every mutation overlays the collection
// immediately, dispatches to the task service asynchronously, and either
// commits into the canonical record or rolls back with a single user-visible
// notice. Mutations for the same task are strictly serialized; mutations for
// different tasks are independent.
package mutation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Amna-05/quadro/internal/store"
	"github.com/Amna-05/quadro/pkg/models"
)

// CommandKind identifies one of the mutating commands.
type CommandKind string

const (
	CommandComplete     CommandKind = "complete"
	CommandUncomplete   CommandKind = "uncomplete"
	CommandDelete       CommandKind = "delete"
	CommandReclassify   CommandKind = "reclassify"
	CommandStatusChange CommandKind = "status_change"
)

// Command is one user intent against a single task. Status is read for
// status-change commands, Urgent and Important for reclassifications.
type Command struct {
	Kind      CommandKind
	TaskID    string
	Status    models.Status
	Urgent    bool
	Important bool
}

// Patch carries the fields one update touches; unset fields stay untouched
// on the server. Completion patches only the status, reclassification only
// the two priority flags.
type Patch struct {
	Status    *models.Status
	Urgent    *bool
	Important *bool
}

// TaskService is the subset of the CRUD client the coordinator dispatches
// to. Defining it here keeps mutation independent of the client package.
type TaskService interface {
	UpdateTask(ctx context.Context, id string, patch Patch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// EventLogger is the subset of the observability event log the coordinator
// needs. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Outcome carries one dispatch result back into the event loop. Task is the
// service's authoritative record when the endpoint returns one.
type Outcome struct {
	DeltaID uuid.UUID
	TaskID  string
	Kind    CommandKind
	Task    *models.Task
	Err     error
}

// Dispatch performs one request against the task service. The interactive
// views run dispatches in the background and feed the Outcome back into
// Resolve; one-shot commands run them inline.
type Dispatch func(ctx context.Context) Outcome

// Resolution reports how one mutation resolved. Notice is the single
// user-visible message for a rollback, empty on success. HoldFor is the
// completion grace period on a committed completion. Next is the dispatch
// for the next mutation queued on the same task, nil when the queue is
// empty.
type Resolution struct {
	DeltaID   uuid.UUID
	TaskID    string
	Kind      CommandKind
	Committed bool
	Err       error
	Notice    string
	HoldFor   time.Duration
	Next      Dispatch
}

type pendingMutation struct {
	delta store.Delta
	cmd   Command
	title string
}

// Coordinator is the single funnel for task mutations. It owns the per-task
// serialization queue; the collection owns the overlays. Submit and Resolve
// belong to the owning event loop; only the returned dispatches may run on
// other goroutines.
type Coordinator struct {
	collection store.Collection
	service    TaskService
	events     EventLogger
	grace      time.Duration

	inflight map[string]pendingMutation
	waiting  map[string][]pendingMutation
}

// NewCoordinator creates a coordinator with all dependencies injected.
// events may be nil when event logging is not wanted.
func NewCoordinator(collection store.Collection, service TaskService, events EventLogger, grace time.Duration) *Coordinator {
	return &Coordinator{
		collection: collection,
		service:    service,
		events:     events,
		grace:      grace,
		inflight:   make(map[string]pendingMutation),
		waiting:    make(map[string][]pendingMutation),
	}
}

// Grace returns the completion grace period.
func (c *Coordinator) Grace() time.Duration {
	return c.grace
}

// Pending reports whether a mutation is in flight or queued for the task.
func (c *Coordinator) Pending(taskID string) bool {
	if _, ok := c.inflight[taskID]; ok {
		return true
	}
	return len(c.waiting[taskID]) > 0
}

// Submit applies the command's optimistic delta and returns the dispatch to
// run. When another mutation for the same task is still in flight the
// command is queued instead and the returned dispatch is nil; the queued
// dispatch surfaces later through Resolution.Next, in submission order.
func (c *Coordinator) Submit(cmd Command) (Dispatch, error) {
	current, ok := c.collection.Effective(cmd.TaskID)
	if !ok {
		return nil, fmt.Errorf("submitting %s: unknown task %q", cmd.Kind, cmd.TaskID)
	}
	if cmd.Kind == CommandStatusChange && !models.ValidStatus(cmd.Status) {
		return nil, fmt.Errorf("submitting status change: invalid status %q", cmd.Status)
	}

	delta, err := deltaFor(cmd)
	if err != nil {
		return nil, err
	}
	if err := c.collection.ApplyOptimistic(delta); err != nil {
		return nil, fmt.Errorf("submitting %s: %w", cmd.Kind, err)
	}

	p := pendingMutation{delta: delta, cmd: cmd, title: current.Title}
	if _, busy := c.inflight[cmd.TaskID]; busy {
		c.waiting[cmd.TaskID] = append(c.waiting[cmd.TaskID], p)
		return nil, nil
	}
	c.inflight[cmd.TaskID] = p
	return c.dispatchFor(p), nil
}

// Resolve reconciles one outcome into the collection and promotes the next
// queued mutation for that task, if any. A failed outcome rolls the delta
// back and produces the rollback notice. Panics when the outcome does not
// match the in-flight mutation; that is a bookkeeping bug.
func (c *Coordinator) Resolve(out Outcome) Resolution {
	p, ok := c.inflight[out.TaskID]
	if !ok || p.delta.ID != out.DeltaID {
		panic(fmt.Sprintf("mutation: resolve for task %q does not match the in-flight delta", out.TaskID))
	}
	delete(c.inflight, out.TaskID)

	committed := out.Err == nil
	c.collection.Reconcile(out.TaskID, store.Result{Committed: committed, Task: out.Task})

	res := Resolution{
		DeltaID:   out.DeltaID,
		TaskID:    out.TaskID,
		Kind:      out.Kind,
		Committed: committed,
		Err:       out.Err,
	}
	if committed {
		if out.Kind == CommandComplete {
			res.HoldFor = c.grace
		}
		c.logCommit(p)
	} else {
		res.Notice = rollbackNotice(p)
		c.logRollback(p, out.Err)
	}

	if queue := c.waiting[out.TaskID]; len(queue) > 0 {
		next := queue[0]
		if len(queue) == 1 {
			delete(c.waiting, out.TaskID)
		} else {
			c.waiting[out.TaskID] = queue[1:]
		}
		c.inflight[out.TaskID] = next
		res.Next = c.dispatchFor(next)
	}
	return res
}

// Run submits the command and drives it, and everything queued behind it on
// the same task, to resolution. One-shot commands and the MCP tools use
// this; the interactive views run dispatches as background commands and
// call Resolve from their update loop instead. When the command lands in
// the queue behind an in-flight mutation the zero Resolution is returned
// and the owning loop drives it via Resolution.Next.
func (c *Coordinator) Run(ctx context.Context, cmd Command) (Resolution, error) {
	dispatch, err := c.Submit(cmd)
	if err != nil {
		return Resolution{}, err
	}

	var last Resolution
	for dispatch != nil {
		out := dispatch(ctx)
		last = c.Resolve(out)
		dispatch = last.Next
	}
	return last, nil
}

func (c *Coordinator) dispatchFor(p pendingMutation) Dispatch {
	return func(ctx context.Context) Outcome {
		out := Outcome{DeltaID: p.delta.ID, TaskID: p.cmd.TaskID, Kind: p.cmd.Kind}
		if p.cmd.Kind == CommandDelete {
			out.Err = c.service.DeleteTask(ctx, p.cmd.TaskID)
			return out
		}
		out.Task, out.Err = c.service.UpdateTask(ctx, p.cmd.TaskID, patchFor(p.cmd))
		return out
	}
}

// deltaFor builds the overlay record for one command.
func deltaFor(cmd Command) (store.Delta, error) {
	d := store.Delta{
		ID:        uuid.New(),
		TaskID:    cmd.TaskID,
		AppliedAt: time.Now(),
	}
	switch cmd.Kind {
	case CommandComplete:
		d.Kind = store.DeltaComplete
	case CommandUncomplete:
		d.Kind = store.DeltaUncomplete
	case CommandDelete:
		d.Kind = store.DeltaDelete
	case CommandStatusChange:
		d.Kind = store.DeltaStatusChange
		s := cmd.Status
		d.Status = &s
	case CommandReclassify:
		d.Kind = store.DeltaReclassify
		u, i := cmd.Urgent, cmd.Important
		d.Urgent = &u
		d.Important = &i
	default:
		return store.Delta{}, fmt.Errorf("submitting mutation: unknown command kind %q", cmd.Kind)
	}
	return d, nil
}

// patchFor encodes the partial-update body for one command: completion and
// status changes send only the status, reclassification only the two flags.
func patchFor(cmd Command) Patch {
	switch cmd.Kind {
	case CommandComplete:
		s := models.StatusDone
		return Patch{Status: &s}
	case CommandUncomplete:
		s := models.StatusTodo
		return Patch{Status: &s}
	case CommandStatusChange:
		s := cmd.Status
		return Patch{Status: &s}
	case CommandReclassify:
		u, i := cmd.Urgent, cmd.Important
		return Patch{Urgent: &u, Important: &i}
	}
	return Patch{}
}

func rollbackNotice(p pendingMutation) string {
	verb := map[CommandKind]string{
		CommandComplete:     "complete",
		CommandUncomplete:   "reopen",
		CommandDelete:       "delete",
		CommandReclassify:   "move",
		CommandStatusChange: "update",
	}[p.cmd.Kind]
	return fmt.Sprintf("Could not %s %q, changes were reverted", verb, p.title)
}

func (c *Coordinator) logCommit(p pendingMutation) {
	if c.events == nil {
		return
	}
	data := map[string]any{"task_id": p.cmd.TaskID, "title": p.title}
	var eventType string
	switch p.cmd.Kind {
	case CommandComplete:
		eventType = "task.completed"
	case CommandUncomplete:
		eventType = "task.uncompleted"
	case CommandDelete:
		eventType = "task.deleted"
	case CommandStatusChange:
		eventType = "task.status_changed"
		data["status"] = string(p.cmd.Status)
	case CommandReclassify:
		eventType = "task.reclassified"
		data["quadrant"] = string(models.Classify(p.cmd.Urgent, p.cmd.Important))
	}
	// Logging is best effort.
	_ = c.events.LogEvent(eventType, data)
}

func (c *Coordinator) logRollback(p pendingMutation, cause error) {
	if c.events == nil {
		return
	}
	_ = c.events.LogEvent("mutation.rolled_back", map[string]any{
		"task_id": p.cmd.TaskID,
		"kind":    string(p.cmd.Kind),
		"reason":  cause.Error(),
	})
}
