package models

// ServerConfig holds the connection settings for the task service.
type ServerConfig struct {
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	Token          string `yaml:"token" mapstructure:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// UIConfig holds presentation settings shared by the interactive views.
type UIConfig struct {
	CompletionGraceMs int `yaml:"completion_grace_ms" mapstructure:"completion_grace_ms"`
}

// NotificationsConfig holds the optional rollback webhook. An empty URL
// disables outbound notifications.
type NotificationsConfig struct {
	WebhookURL string `yaml:"webhook_url,omitempty" mapstructure:"webhook_url"`
}

// AlertsConfig holds the thresholds evaluated by quadro stats.
type AlertsConfig struct {
	MaxOverdue          int `yaml:"max_overdue" mapstructure:"max_overdue"`
	MaxDoFirst          int `yaml:"max_do_first" mapstructure:"max_do_first"`
	StaleInProgressDays int `yaml:"stale_in_progress_days" mapstructure:"stale_in_progress_days"`
}

// Config holds all settings read from config.yaml via Viper.
type Config struct {
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	UI            UIConfig            `yaml:"ui" mapstructure:"ui"`
	Notifications NotificationsConfig `yaml:"notifications" mapstructure:"notifications"`
	Alerts        AlertsConfig        `yaml:"alerts" mapstructure:"alerts"`
}
