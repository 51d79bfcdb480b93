package projection

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Amna-05/quadro/internal/store"
	"github.com/Amna-05/quadro/pkg/models"
)

// GroupBy selects how a view partitions the task collection.
type GroupBy string

const (
	GroupByNone      GroupBy = "none"
	GroupByStatus    GroupBy = "status"
	GroupByQuadrant  GroupBy = "quadrant"
	GroupByDueBucket GroupBy = "due_bucket"
)

// SortBy selects the ordering inside each group.
type SortBy string

const (
	SortByCreated  SortBy = "created"
	SortByDueDate  SortBy = "due"
	SortByPriority SortBy = "priority"
)

// Predicate filters tasks before grouping. A nil predicate keeps everything.
type Predicate func(models.Task) bool

// Spec describes one view's projection: how to group, how to sort, and what
// to keep. FilterKey is a stable fingerprint of the predicate; projections
// with a non-nil Filter and an empty FilterKey are computed but not memoized.
type Spec struct {
	GroupBy   GroupBy
	SortBy    SortBy
	Filter    Predicate
	FilterKey string
}

// Group is one rendered partition: a kanban column, a matrix cell, or a
// timeline bucket. Callers must treat Tasks as read-only; the slice may be
// shared with the memo.
type Group struct {
	Key   string
	Label string
	Tasks []models.Task
}

type memoKey struct {
	version   uint64
	groupBy   GroupBy
	sortBy    SortBy
	filterKey string
	day       string
}

// Engine derives view structures from collection snapshots. Projections are
// pure functions of (snapshot, spec, calendar day); the engine memoizes the
// latest snapshot version's results and nothing else.
type Engine struct {
	mu   sync.Mutex
	memo map[memoKey][]Group
}

// NewEngine creates a projection engine with an empty memo.
func NewEngine() *Engine {
	return &Engine{memo: make(map[memoKey][]Group)}
}

// Project produces the grouped, sorted, filtered structure the view renders.
// Identical inputs yield structurally identical output. Unknown group or
// sort keys panic; they are programming errors.
func (e *Engine) Project(snap store.Snapshot, spec Spec, now time.Time) []Group {
	validateSpec(spec)

	key := memoKey{
		version:   snap.Version,
		groupBy:   spec.GroupBy,
		sortBy:    spec.SortBy,
		filterKey: spec.FilterKey,
		day:       now.Format("2006-01-02"),
	}
	memoizable := spec.Filter == nil || spec.FilterKey != ""

	if memoizable {
		e.mu.Lock()
		cached, ok := e.memo[key]
		e.mu.Unlock()
		if ok {
			return cached
		}
	}

	tasks := snap.Tasks
	if spec.Filter != nil {
		kept := make([]models.Task, 0, len(tasks))
		for _, task := range tasks {
			if spec.Filter(task) {
				kept = append(kept, task)
			}
		}
		tasks = kept
	}

	groups := groupTasks(tasks, spec.GroupBy, now)
	for i := range groups {
		sortTasks(groups[i].Tasks, spec.SortBy)
	}

	if memoizable {
		e.mu.Lock()
		for k := range e.memo {
			if k.version != snap.Version {
				delete(e.memo, k)
			}
		}
		e.memo[key] = groups
		e.mu.Unlock()
	}
	return groups
}

func validateSpec(spec Spec) {
	switch spec.GroupBy {
	case GroupByNone, GroupByStatus, GroupByQuadrant, GroupByDueBucket:
	default:
		panic(fmt.Sprintf("projection: unknown group key %q", spec.GroupBy))
	}
	switch spec.SortBy {
	case SortByCreated, SortByDueDate, SortByPriority:
	default:
		panic(fmt.Sprintf("projection: unknown sort key %q", spec.SortBy))
	}
}

// groupTasks partitions tasks per the group key. Status and quadrant
// groupings always emit their full fixed set of groups so that boards render
// empty columns; due-bucket grouping emits only buckets that hold tasks.
func groupTasks(tasks []models.Task, groupBy GroupBy, now time.Time) []Group {
	switch groupBy {
	case GroupByNone:
		all := make([]models.Task, len(tasks))
		copy(all, tasks)
		return []Group{{Key: "all", Label: "All Tasks", Tasks: all}}

	case GroupByStatus:
		byStatus := make(map[models.Status][]models.Task)
		for _, task := range tasks {
			byStatus[task.Status] = append(byStatus[task.Status], task)
		}
		groups := make([]Group, 0, 3)
		for _, s := range models.AllStatuses() {
			groups = append(groups, Group{Key: string(s), Label: s.Label(), Tasks: byStatus[s]})
		}
		return groups

	case GroupByQuadrant:
		byQuadrant := make(map[models.Quadrant][]models.Task)
		for _, task := range tasks {
			q := task.Quadrant()
			byQuadrant[q] = append(byQuadrant[q], task)
		}
		groups := make([]Group, 0, 4)
		for _, q := range models.AllQuadrants() {
			groups = append(groups, Group{Key: string(q), Label: q.Label(), Tasks: byQuadrant[q]})
		}
		return groups

	case GroupByDueBucket:
		return groupByDueBucket(tasks, now)
	}
	panic(fmt.Sprintf("projection: unknown group key %q", groupBy))
}

// sortTasks orders a group in place. Creation order (CreatedAt, then ID)
// is the final tie-break for every sort key, which keeps projections stable
// across runs.
func sortTasks(tasks []models.Task, sortBy SortBy) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return taskLess(tasks[i], tasks[j], sortBy)
	})
}

func taskLess(a, b models.Task, sortBy SortBy) bool {
	switch sortBy {
	case SortByCreated:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID

	case SortByDueDate:
		if c, decided := compareDue(a, b); decided {
			return c
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID

	case SortByPriority:
		ra, rb := a.Quadrant().Rank(), b.Quadrant().Rank()
		if ra != rb {
			return ra < rb
		}
		if c, decided := compareDue(a, b); decided {
			return c
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}
	panic(fmt.Sprintf("projection: unknown sort key %q", sortBy))
}

// compareDue orders due dates ascending with undated tasks last. The second
// return is false when the pair is tied and the caller should fall through
// to the next tie-break.
func compareDue(a, b models.Task) (less, decided bool) {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return false, false
	case a.DueDate == nil:
		return false, true
	case b.DueDate == nil:
		return true, true
	case a.DueDate.Equal(*b.DueDate):
		return false, false
	default:
		return a.DueDate.Before(*b.DueDate), true
	}
}
