package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Amna-05/quadro/pkg/models"
)

func openTestCache(t *testing.T) SnapshotCache {
	t.Helper()

	cache, err := NewSnapshotCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func sampleSnapshot() CachedSnapshot {
	due := time.Date(2025, 7, 4, 12, 0, 0, 0, time.UTC)
	completed := time.Date(2025, 6, 20, 16, 30, 0, 0, time.UTC)
	return CachedSnapshot{
		Tasks: []models.Task{
			{
				ID:         "t1",
				Title:      "file taxes",
				Status:     models.StatusTodo,
				Urgent:     true,
				Important:  true,
				DueDate:    &due,
				CategoryID: "cat-finance",
				TagIDs:     []string{"tag-a", "tag-b"},
				CreatedAt:  time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
				UpdatedAt:  time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
			},
			{
				ID:          "t2",
				Title:       "ship release",
				Description: "cut the tag and publish",
				Status:      models.StatusDone,
				Important:   true,
				CompletedAt: &completed,
				CreatedAt:   time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC),
				UpdatedAt:   completed,
			},
		},
		Categories: []models.Category{{ID: "cat-finance", Name: "Finance", Color: "#ff8800"}},
		Tags:       []models.Tag{{ID: "tag-a", Name: "deep-work"}},
		SavedAt:    time.Date(2025, 6, 21, 8, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	cache := openTestCache(t)

	if err := cache.Save(sampleSnapshot()); err != nil {
		t.Fatal(err)
	}

	loaded, err := cache.Load()
	if err != nil {
		t.Fatal(err)
	}

	if len(loaded.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(loaded.Tasks))
	}
	t1 := loaded.Tasks[0]
	if t1.ID != "t1" || !t1.Urgent || !t1.Important || t1.CategoryID != "cat-finance" {
		t.Fatalf("unexpected task: %+v", t1)
	}
	if t1.DueDate == nil || !t1.DueDate.Equal(time.Date(2025, 7, 4, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected due date: %v", t1.DueDate)
	}
	if len(t1.TagIDs) != 2 || t1.TagIDs[0] != "tag-a" {
		t.Fatalf("unexpected tag ids: %v", t1.TagIDs)
	}

	t2 := loaded.Tasks[1]
	if t2.Status != models.StatusDone || t2.CompletedAt == nil {
		t.Fatalf("unexpected task: %+v", t2)
	}
	if t2.DueDate != nil {
		t.Fatal("t2 has no due date")
	}

	if len(loaded.Categories) != 1 || loaded.Categories[0].Name != "Finance" {
		t.Fatalf("unexpected categories: %+v", loaded.Categories)
	}
	if len(loaded.Tags) != 1 || loaded.Tags[0].Name != "deep-work" {
		t.Fatalf("unexpected tags: %+v", loaded.Tags)
	}
	if !loaded.SavedAt.Equal(time.Date(2025, 6, 21, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected saved_at: %v", loaded.SavedAt)
	}
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	cache := openTestCache(t)

	if err := cache.Save(sampleSnapshot()); err != nil {
		t.Fatal(err)
	}
	second := CachedSnapshot{
		Tasks: []models.Task{{
			ID:        "t9",
			Title:     "only survivor",
			Status:    models.StatusInProgress,
			CreatedAt: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		}},
		SavedAt: time.Date(2025, 6, 22, 8, 0, 0, 0, time.UTC),
	}
	if err := cache.Save(second); err != nil {
		t.Fatal(err)
	}

	loaded, err := cache.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Tasks) != 1 || loaded.Tasks[0].ID != "t9" {
		t.Fatalf("expected only the new task, got %+v", loaded.Tasks)
	}
	if len(loaded.Categories) != 0 || len(loaded.Tags) != 0 {
		t.Fatal("old categories and tags must be gone")
	}
	if !loaded.SavedAt.Equal(second.SavedAt) {
		t.Fatalf("unexpected saved_at: %v", loaded.SavedAt)
	}
}

func TestLoadWithoutSnapshot(t *testing.T) {
	cache := openTestCache(t)

	if _, err := cache.Load(); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
	if _, err := cache.SavedAt(); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestCacheSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	cache, err := NewSnapshotCache(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cache.Save(sampleSnapshot()); err != nil {
		t.Fatal(err)
	}
	if err := cache.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSnapshotCache(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	loaded, err := reopened.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Tasks) != 2 {
		t.Fatalf("expected the snapshot to survive reopen, got %d tasks", len(loaded.Tasks))
	}
}
