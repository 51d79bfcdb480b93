package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Amna-05/quadro/internal/client"
	"github.com/Amna-05/quadro/internal/storage"
	"github.com/Amna-05/quadro/internal/tui"
	"github.com/Amna-05/quadro/pkg/models"
)

// workingSet is one load of the task snapshot plus its display metadata.
// StaleNote is non-empty when the data came from the offline cache.
type workingSet struct {
	Tasks      []models.Task
	Categories []models.Category
	Tags       []models.Tag
	StaleNote  string
}

// fetchSnapshot pulls the full working set from the task service. All three
// fetches must succeed; a partial snapshot would desynchronize the cache.
func fetchSnapshot(ctx context.Context) (*storage.CachedSnapshot, error) {
	tasks, err := TaskSvc.ListTasks(ctx, client.ListFilter{})
	if err != nil {
		return nil, err
	}
	categories, err := TaskSvc.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := TaskSvc.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	return &storage.CachedSnapshot{
		Tasks:      tasks,
		Categories: categories,
		Tags:       tags,
		SavedAt:    time.Now().UTC(),
	}, nil
}

// loadSnapshot fetches the working set and rewrites the snapshot cache.
// When the service is unreachable it falls back to the cached snapshot and
// reports it stale. The error is non-nil only when both sources failed.
func loadSnapshot(ctx context.Context) (snap *storage.CachedSnapshot, stale bool, err error) {
	fresh, fetchErr := fetchSnapshot(ctx)
	if fetchErr == nil {
		if Cache != nil {
			_ = Cache.Save(*fresh)
		}
		return fresh, false, nil
	}

	if Cache != nil {
		if cached, cacheErr := Cache.Load(); cacheErr == nil && cached != nil {
			return cached, true, nil
		}
	}
	return nil, false, fetchErr
}

// loadWorkingSet loads the snapshot into the shared collection and composer
// so projections and mutations act on current data. One-shot commands call
// this before doing anything else.
func loadWorkingSet(ctx context.Context) (workingSet, error) {
	if TaskSvc == nil || Tasks == nil {
		return workingSet{}, fmt.Errorf("task service not initialized")
	}

	snap, stale, err := loadSnapshot(ctx)
	if err != nil {
		return workingSet{}, fmt.Errorf("loading tasks: %w", err)
	}

	Tasks.Replace(snap.Tasks)
	if Filters != nil {
		Filters.SetCategories(snap.Categories)
	}

	ws := workingSet{Tasks: snap.Tasks, Categories: snap.Categories, Tags: snap.Tags}
	if stale {
		ws.StaleNote = fmt.Sprintf("offline, showing cached data from %s", humanize.Time(snap.SavedAt))
	}
	return ws, nil
}

// tuiLoad adapts loadSnapshot for the interactive views.
func tuiLoad() tui.LoadResult {
	snap, stale, err := loadSnapshot(context.Background())
	if err != nil {
		return tui.LoadResult{Err: err}
	}
	res := tui.LoadResult{Tasks: snap.Tasks, Categories: snap.Categories}
	if stale {
		res.Stale = true
		res.StaleSince = snap.SavedAt
	}
	return res
}

// resolveTask finds the task whose id equals or uniquely starts with idArg.
// The working set must already be loaded into the collection.
func resolveTask(idArg string) (models.Task, error) {
	if task, ok := Tasks.Effective(idArg); ok {
		return task, nil
	}

	var matches []models.Task
	for _, task := range Tasks.Snapshot().Tasks {
		if strings.HasPrefix(task.ID, idArg) {
			matches = append(matches, task)
		}
	}

	switch len(matches) {
	case 0:
		return models.Task{}, fmt.Errorf("no task matches id %q", idArg)
	case 1:
		return matches[0], nil
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	ids := make([]string, 0, len(matches))
	for _, task := range matches {
		ids = append(ids, task.ID)
	}
	return models.Task{}, fmt.Errorf("id %q is ambiguous: matches %s", idArg, strings.Join(ids, ", "))
}

// resolveCategoryID maps a category id or name (case-insensitive) to the id
// the service expects.
func resolveCategoryID(arg string, categories []models.Category) (string, error) {
	for _, c := range categories {
		if c.ID == arg {
			return c.ID, nil
		}
	}
	var matches []models.Category
	for _, c := range categories {
		if strings.EqualFold(c.Name, arg) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("unknown category %q", arg)
	case 1:
		return matches[0].ID, nil
	}
	return "", fmt.Errorf("category name %q is ambiguous; use the id", arg)
}
