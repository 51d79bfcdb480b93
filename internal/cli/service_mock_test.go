package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/Amna-05/quadro/internal/client"
	"github.com/Amna-05/quadro/internal/filter"
	"github.com/Amna-05/quadro/internal/mutation"
	"github.com/Amna-05/quadro/internal/projection"
	"github.com/Amna-05/quadro/internal/storage"
	"github.com/Amna-05/quadro/internal/store"
	"github.com/Amna-05/quadro/pkg/models"
)

// serviceMock implements client.Service over an in-memory task map. Setting
// a function field overrides the default behavior for that call.
type serviceMock struct {
	tasks      map[string]models.Task
	categories []models.Category
	tags       []models.Tag

	listTasksFn      func(ctx context.Context, f client.ListFilter) ([]models.Task, error)
	createTaskFn     func(ctx context.Context, draft client.NewTask) (*models.Task, error)
	updateTaskFn     func(ctx context.Context, id string, patch client.TaskPatch) (*models.Task, error)
	deleteTaskFn     func(ctx context.Context, id string) error
	listCategoriesFn func(ctx context.Context) ([]models.Category, error)

	created []client.NewTask
	patched []string
	deletes []string
}

func newServiceMock(tasks ...models.Task) *serviceMock {
	m := &serviceMock{tasks: make(map[string]models.Task)}
	for _, t := range tasks {
		m.tasks[t.ID] = t
	}
	return m
}

func (m *serviceMock) ListTasks(ctx context.Context, f client.ListFilter) ([]models.Task, error) {
	if m.listTasksFn != nil {
		return m.listTasksFn(ctx, f)
	}
	result := make([]models.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		result = append(result, t)
	}
	return result, nil
}

func (m *serviceMock) CreateTask(ctx context.Context, draft client.NewTask) (*models.Task, error) {
	if m.createTaskFn != nil {
		return m.createTaskFn(ctx, draft)
	}
	m.created = append(m.created, draft)
	t := models.Task{
		ID:          fmt.Sprintf("new-%05d", len(m.created)),
		Title:       draft.Title,
		Description: draft.Description,
		Status:      models.StatusTodo,
		Urgent:      draft.Urgent,
		Important:   draft.Important,
		DueDate:     draft.DueDate,
		CategoryID:  draft.CategoryID,
		TagIDs:      draft.TagIDs,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	m.tasks[t.ID] = t
	return &t, nil
}

func (m *serviceMock) UpdateTask(ctx context.Context, id string, patch client.TaskPatch) (*models.Task, error) {
	if m.updateTaskFn != nil {
		return m.updateTaskFn(ctx, id, patch)
	}
	t, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task not found: %s", id)
	}
	if patch.Status != nil {
		if *patch.Status == models.StatusDone {
			at := time.Now().UTC()
			t.CompletedAt = &at
		} else {
			t.CompletedAt = nil
		}
		t.Status = *patch.Status
	}
	if patch.Urgent != nil {
		t.Urgent = *patch.Urgent
	}
	if patch.Important != nil {
		t.Important = *patch.Important
	}
	m.tasks[id] = t
	m.patched = append(m.patched, id)
	return &t, nil
}

func (m *serviceMock) DeleteTask(ctx context.Context, id string) error {
	if m.deleteTaskFn != nil {
		return m.deleteTaskFn(ctx, id)
	}
	delete(m.tasks, id)
	m.deletes = append(m.deletes, id)
	return nil
}

func (m *serviceMock) ListCategories(ctx context.Context) ([]models.Category, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(ctx)
	}
	return m.categories, nil
}

func (m *serviceMock) ListTags(_ context.Context) ([]models.Tag, error) {
	return m.tags, nil
}

// mutationBridge adapts serviceMock to the coordinator's TaskService, the
// same way the app wiring adapts the real client.
type mutationBridge struct {
	svc *serviceMock
}

func (b *mutationBridge) UpdateTask(ctx context.Context, id string, patch mutation.Patch) (*models.Task, error) {
	return b.svc.UpdateTask(ctx, id, client.TaskPatch{
		Status:    patch.Status,
		Urgent:    patch.Urgent,
		Important: patch.Important,
	})
}

func (b *mutationBridge) DeleteTask(ctx context.Context, id string) error {
	return b.svc.DeleteTask(ctx, id)
}

// cacheMock implements storage.SnapshotCache in memory.
type cacheMock struct {
	snapshot *storage.CachedSnapshot
	saveErr  error
	loadErr  error
	saves    int
}

func (c *cacheMock) Save(snapshot storage.CachedSnapshot) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.snapshot = &snapshot
	c.saves++
	return nil
}

func (c *cacheMock) Load() (*storage.CachedSnapshot, error) {
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	if c.snapshot == nil {
		return nil, fmt.Errorf("no cached snapshot")
	}
	return c.snapshot, nil
}

func (c *cacheMock) SavedAt() (time.Time, error) {
	if c.snapshot == nil {
		return time.Time{}, fmt.Errorf("no cached snapshot")
	}
	return c.snapshot.SavedAt, nil
}

func (c *cacheMock) Close() error {
	return nil
}

// fixtureTask returns a do-first todo task created at a fixed time. Tests
// adjust fields as needed.
func fixtureTask(id, title string) models.Task {
	return models.Task{
		ID:        id,
		Title:     title,
		Status:    models.StatusTodo,
		Urgent:    true,
		Important: true,
		CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

// setupCommandEnv swaps the package vars for a fresh set wired around a
// service mock, restoring the originals when the test ends. Cache and the
// observability vars start nil; tests install their own mocks.
func setupCommandEnv(t *testing.T, tasks ...models.Task) *serviceMock {
	t.Helper()

	origSvc := TaskSvc
	origTasks := Tasks
	origViews := Views
	origMutations := Mutations
	origFilters := Filters
	origCache := Cache
	origEventLog := EventLog
	origEvents := Events
	origMetrics := MetricsCalc
	origAlerts := AlertEngine
	origNotifier := Notifier
	t.Cleanup(func() {
		TaskSvc = origSvc
		Tasks = origTasks
		Views = origViews
		Mutations = origMutations
		Filters = origFilters
		Cache = origCache
		EventLog = origEventLog
		Events = origEvents
		MetricsCalc = origMetrics
		AlertEngine = origAlerts
		Notifier = origNotifier
	})

	svc := newServiceMock(tasks...)
	TaskSvc = svc
	Tasks = store.NewCollection()
	Views = projection.NewEngine()
	Filters = filter.NewComposer()
	Mutations = mutation.NewCoordinator(Tasks, &mutationBridge{svc: svc}, nil, 0)
	Cache = nil
	EventLog = nil
	Events = nil
	MetricsCalc = nil
	AlertEngine = nil
	Notifier = nil
	return svc
}

// captureStdout captures stdout output during fn execution.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = origStdout

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading pipe: %v", err)
	}
	return string(out)
}
