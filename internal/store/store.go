package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Amna-05/quadro/pkg/models"
)

// DeltaKind identifies the mutation a delta speculates about.
type DeltaKind string

const (
	DeltaComplete     DeltaKind = "complete"
	DeltaUncomplete   DeltaKind = "uncomplete"
	DeltaDelete       DeltaKind = "delete"
	DeltaReclassify   DeltaKind = "reclassify"
	DeltaStatusChange DeltaKind = "status_change"
)

// Delta is a transient overlay describing one in-flight mutation. It is
// rendered over the canonical record until the service confirms or rejects
// the mutation; it is never persisted.
type Delta struct {
	ID        uuid.UUID
	TaskID    string
	Kind      DeltaKind
	Status    *models.Status
	Urgent    *bool
	Important *bool
	AppliedAt time.Time
}

// Result carries the authoritative outcome of one mutation back into the
// collection. Task is the service's returned record on success, when the
// endpoint produces one.
type Result struct {
	Committed bool
	Task      *models.Task
}

// Snapshot is an immutable copy of the collection with all pending deltas
// folded in, suitable for projection. Version increases on every observable
// change to the collection.
type Snapshot struct {
	Version uint64
	Tasks   []models.Task
}

// Collection is the single source of truth every view projects from.
// Canonical records change only through Upsert, Remove, Replace, or a
// committed Reconcile; optimistic deltas live in a per-task overlay that
// renders over the canonical value without ever leaking into it.
type Collection interface {
	// Upsert inserts or replaces a canonical record fetched from the service.
	Upsert(task models.Task)
	// Remove drops a canonical record.
	Remove(id string)
	// Replace swaps the entire canonical set for a fresh fetch. Pending
	// overlays survive; their mutations are still in flight.
	Replace(tasks []models.Task)
	// Get returns the canonical record, untouched by any overlay.
	Get(id string) (models.Task, bool)
	// Effective returns the record as views see it, overlays folded in.
	// The second return is false for unknown ids and for records hidden by
	// a pending delete.
	Effective(id string) (models.Task, bool)
	// Snapshot copies the overlaid collection for projection.
	Snapshot() Snapshot
	// ApplyOptimistic appends a delta to the task's overlay. The canonical
	// record is untouched.
	ApplyOptimistic(delta Delta) error
	// Reconcile resolves the oldest pending delta for the task: a committed
	// result folds it into the canonical record, a failed one discards it.
	// Returns the resolved delta. Panics if no delta is pending; that is a
	// bookkeeping bug, not a runtime condition.
	Reconcile(taskID string, result Result) Delta
	// Pending returns a copy of the task's unresolved deltas in submission
	// order.
	Pending(id string) []Delta
	// Version returns the current snapshot version.
	Version() uint64
}

// taskCollection implements Collection with map storage guarded by a mutex.
type taskCollection struct {
	mu        sync.Mutex
	canonical map[string]models.Task
	overlays  map[string][]Delta
	version   uint64
}

// NewCollection creates an empty task collection.
func NewCollection() Collection {
	return &taskCollection{
		canonical: make(map[string]models.Task),
		overlays:  make(map[string][]Delta),
	}
}

func (c *taskCollection) Upsert(task models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.canonical[task.ID] = task
	c.version++
}

func (c *taskCollection) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.canonical, id)
	c.version++
}

func (c *taskCollection) Replace(tasks []models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.canonical = make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		c.canonical[t.ID] = t
	}
	c.version++
}

func (c *taskCollection) Get(id string) (models.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.canonical[id]
	return t, ok
}

func (c *taskCollection) Effective(id string) (models.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.effectiveLocked(id)
}

func (c *taskCollection) effectiveLocked(id string) (models.Task, bool) {
	t, ok := c.canonical[id]
	if !ok {
		return models.Task{}, false
	}
	for _, d := range c.overlays[id] {
		if d.Kind == DeltaDelete {
			return models.Task{}, false
		}
		t = applyDelta(t, d)
	}
	return t, true
}

func (c *taskCollection) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	tasks := make([]models.Task, 0, len(c.canonical))
	for id := range c.canonical {
		if t, ok := c.effectiveLocked(id); ok {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	return Snapshot{Version: c.version, Tasks: tasks}
}

func (c *taskCollection) ApplyOptimistic(delta Delta) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.canonical[delta.TaskID]; !ok {
		return fmt.Errorf("applying optimistic delta: unknown task %q", delta.TaskID)
	}

	c.overlays[delta.TaskID] = append(c.overlays[delta.TaskID], delta)
	c.version++
	return nil
}

func (c *taskCollection) Reconcile(taskID string, result Result) Delta {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := c.overlays[taskID]
	if len(pending) == 0 {
		panic(fmt.Sprintf("store: reconcile without a pending delta for task %q", taskID))
	}

	resolved := pending[0]
	rest := append([]Delta(nil), pending[1:]...)
	if len(rest) == 0 {
		delete(c.overlays, taskID)
	} else {
		c.overlays[taskID] = rest
	}

	if result.Committed {
		c.commitLocked(resolved, result.Task)
	}
	c.version++
	return resolved
}

// commitLocked folds a confirmed delta into the canonical record. The
// service's authoritative record wins when present.
func (c *taskCollection) commitLocked(d Delta, authoritative *models.Task) {
	if d.Kind == DeltaDelete {
		delete(c.canonical, d.TaskID)
		return
	}
	if authoritative != nil {
		c.canonical[d.TaskID] = *authoritative
		return
	}
	if t, ok := c.canonical[d.TaskID]; ok {
		c.canonical[d.TaskID] = applyDelta(t, d)
	}
}

func (c *taskCollection) Pending(id string) []Delta {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Delta(nil), c.overlays[id]...)
}

func (c *taskCollection) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.version
}

// applyDelta returns the task with one delta's patch folded in. CompletedAt
// is set exactly when the status transitions into done and cleared whenever
// the status leaves done.
func applyDelta(t models.Task, d Delta) models.Task {
	switch d.Kind {
	case DeltaComplete:
		setStatus(&t, models.StatusDone, d.AppliedAt)
	case DeltaUncomplete:
		setStatus(&t, models.StatusTodo, d.AppliedAt)
	case DeltaStatusChange:
		if d.Status != nil {
			setStatus(&t, *d.Status, d.AppliedAt)
		}
	case DeltaReclassify:
		if d.Urgent != nil {
			t.Urgent = *d.Urgent
		}
		if d.Important != nil {
			t.Important = *d.Important
		}
	case DeltaDelete:
		// Handled by the overlay fold; a deleted task is hidden, not patched.
	}
	return t
}

func setStatus(t *models.Task, s models.Status, at time.Time) {
	if s == models.StatusDone {
		if t.Status != models.StatusDone || t.CompletedAt == nil {
			stamp := at
			t.CompletedAt = &stamp
		}
	} else {
		t.CompletedAt = nil
	}
	t.Status = s
}
