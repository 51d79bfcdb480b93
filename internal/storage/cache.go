// Package storage persists the last fetched board so read commands keep
// working when the task service is unreachable.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Amna-05/quadro/pkg/models"
)

// ErrNoSnapshot is returned by Load when the cache has never been written.
var ErrNoSnapshot = errors.New("no cached snapshot")

// CachedSnapshot is the locally persisted copy of the remote data set.
type CachedSnapshot struct {
	Tasks      []models.Task
	Categories []models.Category
	Tags       []models.Tag
	SavedAt    time.Time
}

// SnapshotCache stores one snapshot of tasks, categories and tags. Save
// replaces the previous snapshot wholesale; the cache never merges.
type SnapshotCache interface {
	Save(snapshot CachedSnapshot) error
	Load() (*CachedSnapshot, error)
	SavedAt() (time.Time, error)
	Close() error
}

// sqliteCache keeps the snapshot in a single SQLite file.
type sqliteCache struct {
	db *sql.DB
}

// NewSnapshotCache opens (or creates) the cache database at path and applies
// the schema.
func NewSnapshotCache(path string) (SnapshotCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating cache schema: %w", err)
	}
	return &sqliteCache{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS tasks (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  is_urgent INTEGER NOT NULL DEFAULT 0,
  is_important INTEGER NOT NULL DEFAULT 0,
  due_date TEXT,
  category_id TEXT NOT NULL DEFAULT '',
  tag_ids TEXT NOT NULL DEFAULT '[]',
  completed_at TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  color TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS tags (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
`)
	return err
}

// Save replaces the cached snapshot inside one transaction.
func (c *sqliteCache) Save(snapshot CachedSnapshot) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("starting cache transaction: %w", err)
	}

	for _, stmt := range []string{`DELETE FROM tasks`, `DELETE FROM categories`, `DELETE FROM tags`} {
		if _, err := tx.Exec(stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clearing cache: %w", err)
		}
	}

	for _, task := range snapshot.Tasks {
		tagIDs, err := json.Marshal(task.TagIDs)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encoding tag ids for %s: %w", task.ID, err)
		}
		_, err = tx.Exec(`INSERT INTO tasks (id, title, description, status, is_urgent, is_important, due_date, category_id, tag_ids, completed_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			task.ID, task.Title, task.Description, string(task.Status),
			boolToInt(task.Urgent), boolToInt(task.Important),
			timeToNull(task.DueDate), task.CategoryID, string(tagIDs),
			timeToNull(task.CompletedAt),
			task.CreatedAt.UTC().Format(time.RFC3339Nano),
			task.UpdatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("caching task %s: %w", task.ID, err)
		}
	}

	for _, category := range snapshot.Categories {
		if _, err := tx.Exec(`INSERT INTO categories (id, name, color) VALUES (?, ?, ?)`,
			category.ID, category.Name, category.Color); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("caching category %s: %w", category.ID, err)
		}
	}

	for _, tag := range snapshot.Tags {
		if _, err := tx.Exec(`INSERT INTO tags (id, name) VALUES (?, ?)`, tag.ID, tag.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("caching tag %s: %w", tag.ID, err)
		}
	}

	savedAt := snapshot.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('saved_at', ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		savedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("recording cache time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cache: %w", err)
	}
	return nil
}

// Load returns the cached snapshot, or ErrNoSnapshot when Save has never run.
func (c *sqliteCache) Load() (*CachedSnapshot, error) {
	savedAt, err := c.SavedAt()
	if err != nil {
		return nil, err
	}
	snapshot := &CachedSnapshot{SavedAt: savedAt}

	rows, err := c.db.Query(`SELECT id, title, description, status, is_urgent, is_important, due_date, category_id, tag_ids, completed_at, created_at, updated_at
FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("reading cached tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var task models.Task
		var status, tagIDs, createdAt, updatedAt string
		var urgent, important int
		var dueDate, completedAt sql.NullString
		if err := rows.Scan(&task.ID, &task.Title, &task.Description, &status, &urgent, &important,
			&dueDate, &task.CategoryID, &tagIDs, &completedAt, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning cached task: %w", err)
		}
		task.Status = models.Status(status)
		task.Urgent = urgent != 0
		task.Important = important != 0
		if err := json.Unmarshal([]byte(tagIDs), &task.TagIDs); err != nil {
			return nil, fmt.Errorf("decoding tag ids for %s: %w", task.ID, err)
		}
		if task.DueDate, err = timeFromNull(dueDate); err != nil {
			return nil, fmt.Errorf("parsing due date for %s: %w", task.ID, err)
		}
		if task.CompletedAt, err = timeFromNull(completedAt); err != nil {
			return nil, fmt.Errorf("parsing completion time for %s: %w", task.ID, err)
		}
		if task.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing creation time for %s: %w", task.ID, err)
		}
		if task.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("parsing update time for %s: %w", task.ID, err)
		}
		snapshot.Tasks = append(snapshot.Tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading cached tasks: %w", err)
	}

	if snapshot.Categories, err = c.loadCategories(); err != nil {
		return nil, err
	}
	if snapshot.Tags, err = c.loadTags(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (c *sqliteCache) loadCategories() ([]models.Category, error) {
	rows, err := c.db.Query(`SELECT id, name, color FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("reading cached categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Color); err != nil {
			return nil, fmt.Errorf("scanning cached category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (c *sqliteCache) loadTags() ([]models.Tag, error) {
	rows, err := c.db.Query(`SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("reading cached tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("scanning cached tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// SavedAt returns when the cache was last written, or ErrNoSnapshot.
func (c *sqliteCache) SavedAt() (time.Time, error) {
	var value string
	err := c.db.QueryRow(`SELECT value FROM meta WHERE key = 'saved_at'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading cache time: %w", err)
	}
	savedAt, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing cache time: %w", err)
	}
	return savedAt, nil
}

func (c *sqliteCache) Close() error {
	return c.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timeToNull(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func timeFromNull(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, value.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
