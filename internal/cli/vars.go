package cli

import (
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

// Core service instances, set during app initialization in app.go.
var (
	// BasePath is the quadro home directory (QUADRO_HOME or ~/.quadro).
	BasePath string
	// Config holds the loaded configuration.
	Config *models.Config
	// ConfigMgr loads, validates, and scaffolds config.yaml.
	ConfigMgr config.Manager

	// TaskSvc is the HTTP client for the task service.
	TaskSvc client.Service
	// Tasks is the canonical task collection with optimistic overlays.
	Tasks store.Collection
	// Views projects the collection into grouped, sorted slices.
	Views *projection.Engine
	// Mutations funnels every write through the optimistic coordinator.
	Mutations *mutation.Coordinator
	// Filters composes the active filter dimensions.
	Filters *filter.Composer
	// Cache is the offline snapshot cache.
	Cache storage.SnapshotCache
)

// Observability service instances, set during app initialization in app.go.
// Events is the journal adapter handed to the coordinator; commands that
// mutate outside it log through the same adapter.
var (
	EventLog    observability.EventLog
	Events      mutation.EventLogger
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
