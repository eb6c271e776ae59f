package config

import "time"

// Config is the root configuration structure for formzone, read from
// formzone.yaml. It holds the location of the project being validated and
// the settings of the services around the validation engine.
type Config struct {
	// Project locates the project config folder and the batch output CSV.
	Project ProjectConfig `yaml:"project"`

	// Batch contains settings for document and batch validation.
	Batch BatchConfig `yaml:"batch"`

	// History contains settings for the validation run history store.
	History HistoryConfig `yaml:"history"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Watch contains settings for live re-validation on config changes.
	Watch WatchConfig `yaml:"watch"`
}

// ProjectConfig locates the project to validate.
type ProjectConfig struct {
	// ConfigFolder is the project folder holding json/project_config.json.
	ConfigFolder string `yaml:"config_folder"`

	// OutputCSV is the batch output CSV. Relative paths resolve against the
	// working directory.
	OutputCSV string `yaml:"output_csv"`
}

// BatchConfig contains settings for document and batch validation.
type BatchConfig struct {
	// SaveQueueSize is the number of pending CSV saves buffered before
	// enqueueing blocks.
	// Default: 256
	SaveQueueSize int `yaml:"save_queue_size"`

	// FlushTimeout bounds the wait for pending saves before exit.
	// Default: 5s
	FlushTimeout time.Duration `yaml:"flush_timeout"`

	// CheckFieldTypes also checks values against the project's field types.
	// Default: false
	CheckFieldTypes bool `yaml:"check_field_types"`
}

// HistoryConfig contains settings for the run history store.
type HistoryConfig struct {
	// Enabled records every validation run.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Driver is "sqlite" (pure Go), "sqlite3" (cgo) or "memory".
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file.
	// Default: "formzone-history.db"
	Path string `yaml:"path"`

	// RetentionDays is how long runs are kept. 0 keeps them forever.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for pruning old runs.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum level: "debug", "info", "warn" or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json", "text" or "console".
	// Default: "text"
	Format string `yaml:"format"`

	// Output is "stdout", "stderr" or a file path.
	// Default: "stderr"
	Output string `yaml:"output"`

	// AddSource includes file and line in log records.
	AddSource bool `yaml:"add_source"`

	// RedactPII masks personal data read off forms.
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns are extra redaction rules.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`

	// MaxSizeMB is the size at which a log file is rotated.
	// Default: 10
	MaxSizeMB int `yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	// Default: 3
	MaxBackups int `yaml:"max_backups"`

	// MaxAgeDays is how long rotated files are kept.
	// Default: 28
	MaxAgeDays int `yaml:"max_age_days"`
}

// RedactPattern is a custom log redaction rule.
type RedactPattern struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is where the metrics endpoint is served.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "formzone"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "validation"
	Subsystem string `yaml:"subsystem"`

	// RuleDurationBuckets defines histogram buckets for rule evaluation time
	// in seconds.
	RuleDurationBuckets []float64 `yaml:"rule_duration_buckets"`
}

// WatchConfig contains settings for live re-validation.
type WatchConfig struct {
	// Debounce is the quiet period after a change before rebuilding.
	// Default: 500ms
	Debounce time.Duration `yaml:"debounce"`
}
