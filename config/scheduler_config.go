package config

// SchedulerConfig holds periodic ingest and cleanup settings
type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled" json:"enabled"`
	IntervalMinutes int    `mapstructure:"interval_minutes" json:"interval_minutes"`
	CleanupTime     string `mapstructure:"cleanup_time" json:"cleanup_time"` // "15:04"
}
