// Package config loads, validates, and writes quadro's configuration file.
// Settings live in config.yaml under the quadro home directory and may be
// overridden per-key through QUADRO_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Amna-05/quadro/pkg/models"
)

// Manager defines the interface for loading, validating, and bootstrapping
// the configuration file.
type Manager interface {
	Load() (*models.Config, error)
	Validate(cfg *models.Config) error
	WriteDefault() (string, error)
	Path() string
}

// viperManager implements Manager using Viper for reading the YAML
// configuration file.
type viperManager struct {
	// basePath is the quadro home directory where config.yaml resides.
	basePath string
}

// NewManager creates a Manager that reads config.yaml relative to basePath.
func NewManager(basePath string) Manager {
	return &viperManager{basePath: basePath}
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *models.Config {
	return &models.Config{
		Server: models.ServerConfig{
			BaseURL:        "http://localhost:8787",
			Token:          "",
			TimeoutSeconds: 10,
		},
		UI: models.UIConfig{
			CompletionGraceMs: 900,
		},
		Alerts: models.AlertsConfig{
			MaxOverdue:          5,
			MaxDoFirst:          8,
			StaleInProgressDays: 7,
		},
	}
}

// Path returns the location of the configuration file.
func (m *viperManager) Path() string {
	return filepath.Join(m.basePath, "config.yaml")
}

// Load reads config.yaml from the base path using Viper. Missing keys fall
// back to defaults; a missing file returns the full default configuration.
// Environment variables of the form QUADRO_SERVER_TOKEN override file values.
func (m *viperManager) Load() (*models.Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(m.basePath)

	v.SetDefault("server.base_url", cfg.Server.BaseURL)
	v.SetDefault("server.token", cfg.Server.Token)
	v.SetDefault("server.timeout_seconds", cfg.Server.TimeoutSeconds)
	v.SetDefault("ui.completion_grace_ms", cfg.UI.CompletionGraceMs)
	v.SetDefault("notifications.webhook_url", "")
	v.SetDefault("alerts.max_overdue", cfg.Alerts.MaxOverdue)
	v.SetDefault("alerts.max_do_first", cfg.Alerts.MaxDoFirst)
	v.SetDefault("alerts.stale_in_progress_days", cfg.Alerts.StaleInProgressDays)

	v.SetEnvPrefix("QUADRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file found, run on defaults and env overrides.
			m.applyValues(v, cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config.yaml: %w", err)
	}

	m.applyValues(v, cfg)
	return cfg, nil
}

// applyValues maps nested YAML keys to the Config fields.
func (m *viperManager) applyValues(v *viper.Viper, cfg *models.Config) {
	cfg.Server.BaseURL = v.GetString("server.base_url")
	cfg.Server.Token = v.GetString("server.token")
	cfg.Server.TimeoutSeconds = v.GetInt("server.timeout_seconds")
	cfg.UI.CompletionGraceMs = v.GetInt("ui.completion_grace_ms")
	cfg.Notifications.WebhookURL = v.GetString("notifications.webhook_url")
	cfg.Alerts.MaxOverdue = v.GetInt("alerts.max_overdue")
	cfg.Alerts.MaxDoFirst = v.GetInt("alerts.max_do_first")
	cfg.Alerts.StaleInProgressDays = v.GetInt("alerts.stale_in_progress_days")
}

// Validate checks the configuration for invalid values and returns an error
// listing every problem found.
func (m *viperManager) Validate(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.Server.BaseURL == "" {
		errs = append(errs, "server.base_url must not be empty")
	} else if u, err := url.Parse(cfg.Server.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Sprintf("server.base_url %q is invalid, must be an http(s) URL", cfg.Server.BaseURL))
	}

	if cfg.Server.TimeoutSeconds < 1 || cfg.Server.TimeoutSeconds > 300 {
		errs = append(errs, fmt.Sprintf(
			"server.timeout_seconds %d is invalid, must be between 1 and 300",
			cfg.Server.TimeoutSeconds,
		))
	}

	if cfg.UI.CompletionGraceMs < 0 || cfg.UI.CompletionGraceMs > 10000 {
		errs = append(errs, fmt.Sprintf(
			"ui.completion_grace_ms %d is invalid, must be between 0 and 10000",
			cfg.UI.CompletionGraceMs,
		))
	}

	if cfg.Notifications.WebhookURL != "" {
		if u, err := url.Parse(cfg.Notifications.WebhookURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf(
				"notifications.webhook_url %q is invalid, must be an http(s) URL",
				cfg.Notifications.WebhookURL,
			))
		}
	}

	if cfg.Alerts.MaxOverdue < 0 {
		errs = append(errs, fmt.Sprintf("alerts.max_overdue must be non-negative, got %d", cfg.Alerts.MaxOverdue))
	}
	if cfg.Alerts.MaxDoFirst < 0 {
		errs = append(errs, fmt.Sprintf("alerts.max_do_first must be non-negative, got %d", cfg.Alerts.MaxDoFirst))
	}
	if cfg.Alerts.StaleInProgressDays < 1 {
		errs = append(errs, fmt.Sprintf("alerts.stale_in_progress_days must be at least 1, got %d", cfg.Alerts.StaleInProgressDays))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// WriteDefault creates the home directory and writes a default config.yaml,
// returning its path. An existing file is left untouched.
func (m *viperManager) WriteDefault() (string, error) {
	if err := os.MkdirAll(m.basePath, 0o755); err != nil {
		return "", fmt.Errorf("creating quadro home: %w", err)
	}

	path := m.Path()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	body, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}

	header := []byte("# quadro configuration.\n# server.token may instead be set via the QUADRO_SERVER_TOKEN environment variable.\n")
	if err := os.WriteFile(path, append(header, body...), 0o644); err != nil {
		return "", fmt.Errorf("writing default config: %w", err)
	}
	return path, nil
}
