// Package internal provides the App struct that wires all components of
// quadro together and initializes the CLI layer.
package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Amna-05/quadro/internal/cli"
	"github.com/Amna-05/quadro/internal/client"
	"github.com/Amna-05/quadro/internal/config"
	"github.com/Amna-05/quadro/internal/filter"
	"github.com/Amna-05/quadro/internal/mutation"
	"github.com/Amna-05/quadro/internal/observability"
	"github.com/Amna-05/quadro/internal/projection"
	"github.com/Amna-05/quadro/internal/storage"
	"github.com/Amna-05/quadro/internal/store"
	"github.com/Amna-05/quadro/pkg/models"
)

// App holds all service dependencies for quadro.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr config.Manager
	Config    *models.Config

	// Task service client
	Service client.Service

	// Working set
	Collection store.Collection
	Engine     *projection.Engine
	Composer   *filter.Composer

	// Mutations
	Coordinator *mutation.Coordinator

	// Offline cache
	Cache storage.SnapshotCache

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of quadro. basePath is the home
// directory holding config.yaml, the snapshot cache, and the event journal
// (typically ~/.quadro).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = config.NewManager(basePath)
	cfg, err := app.ConfigMgr.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := app.ConfigMgr.Validate(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Task service client ---
	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	app.Service = client.NewService(cfg.Server.BaseURL, cfg.Server.Token, timeout)

	// --- Working set ---
	app.Collection = store.NewCollection()
	app.Engine = projection.NewEngine()
	app.Composer = filter.NewComposer()

	// --- Offline cache ---
	// Non-fatal: without it, reads just lose their offline fallback.
	if cache, cacheErr := storage.NewSnapshotCache(filepath.Join(basePath, "cache.db")); cacheErr == nil {
		app.Cache = cache
	}

	// --- Observability ---
	thresholds := observability.DefaultAlertThresholds()
	if cfg.Alerts.MaxOverdue > 0 {
		thresholds.MaxOverdue = cfg.Alerts.MaxOverdue
	}
	if cfg.Alerts.MaxDoFirst > 0 {
		thresholds.MaxDoFirst = cfg.Alerts.MaxDoFirst
	}
	if cfg.Alerts.StaleInProgressDays > 0 {
		thresholds.StaleInProgressDays = cfg.Alerts.StaleInProgressDays
	}
	app.AlertEngine = observability.NewAlertEngine(thresholds)

	// Non-fatal: disable the journal if it can't be created.
	if eventLog, logErr := observability.NewJSONLEventLog(filepath.Join(basePath, "events.jsonl")); logErr == nil {
		app.EventLog = eventLog
		app.MetricsCalc = observability.NewMetricsCalculator(eventLog)
	}
	if cfg.Notifications.WebhookURL != "" {
		app.Notifier = observability.NewWebhookNotifier(cfg.Notifications.WebhookURL)
	}

	// --- Mutation coordinator ---
	var events mutation.EventLogger
	if app.EventLog != nil || app.Notifier != nil {
		events = &journalAdapter{log: app.EventLog, notifier: app.Notifier}
	}
	grace := time.Duration(cfg.UI.CompletionGraceMs) * time.Millisecond
	svcAdapter := &taskServiceAdapter{service: app.Service}
	app.Coordinator = mutation.NewCoordinator(app.Collection, svcAdapter, events, grace)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = app.Config
	cli.ConfigMgr = app.ConfigMgr
	cli.TaskSvc = app.Service
	cli.Tasks = app.Collection
	cli.Views = app.Engine
	cli.Mutations = app.Coordinator
	cli.Filters = app.Composer
	cli.Cache = app.Cache

	cli.EventLog = app.EventLog
	cli.Events = events
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the App: the snapshot cache database and
// the event journal file handle. Safe to call with either absent.
func (a *App) Close() error {
	var firstErr error
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			firstErr = err
		}
	}
	if a.EventLog != nil {
		if err := a.EventLog.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ResolveBasePath determines the quadro home directory. It checks the
// QUADRO_HOME env var, then falls back to ~/.quadro.
func ResolveBasePath() string {
	if home := os.Getenv("QUADRO_HOME"); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quadro"
	}
	return filepath.Join(home, ".quadro")
}

// --- Adapters ---

// taskServiceAdapter adapts client.Service to mutation.TaskService.
type taskServiceAdapter struct {
	service client.Service
}

func (a *taskServiceAdapter) UpdateTask(ctx context.Context, id string, patch mutation.Patch) (*models.Task, error) {
	return a.service.UpdateTask(ctx, id, client.TaskPatch{
		Status:    patch.Status,
		Urgent:    patch.Urgent,
		Important: patch.Important,
	})
}

func (a *taskServiceAdapter) DeleteTask(ctx context.Context, id string) error {
	return a.service.DeleteTask(ctx, id)
}

// journalAdapter adapts observability.EventLog to mutation.EventLogger and
// forwards rollbacks to the webhook notifier. Either sink may be nil.
type journalAdapter struct {
	log      observability.EventLog
	notifier observability.Notifier
}

func (a *journalAdapter) LogEvent(eventType string, data map[string]any) error {
	var err error
	if a.log != nil {
		event := observability.Event{
			Time: time.Now().UTC(),
			Type: eventType,
			Data: data,
		}
		if id, ok := data["task_id"].(string); ok {
			event.TaskID = id
		}
		err = a.log.Write(event)
	}

	if eventType == "mutation.rolled_back" && a.notifier != nil {
		// Notification is best effort; the journal error still surfaces.
		_ = a.notifier.Notify([]observability.Alert{{
			ID:          uuid.NewString(),
			Condition:   "mutation.rollback",
			Severity:    observability.SeverityMedium,
			Message:     rollbackMessage(data),
			TriggeredAt: time.Now().UTC(),
		}})
	}
	return err
}

// rollbackMessage summarizes a rollback event for the webhook.
func rollbackMessage(data map[string]any) string {
	kind, _ := data["kind"].(string)
	taskID, _ := data["task_id"].(string)
	reason, _ := data["reason"].(string)
	msg := fmt.Sprintf("%s on task %s was rolled back", kind, taskID)
	if reason != "" {
		msg += ": " + reason
	}
	return msg
}
