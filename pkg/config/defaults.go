package config

import "time"

// Default values for configuration fields.
const (
	// Batch defaults
	DefaultSaveQueueSize = 256
	DefaultFlushTimeout  = 5 * time.Second

	// History defaults
	DefaultHistoryDriver        = "sqlite"
	DefaultHistoryPath          = "formzone-history.db"
	DefaultHistoryRetentionDays = 90
	DefaultHistoryPruneSchedule = "0 3 * * *"

	// Logging defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultLogOutput     = "stderr"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28

	// Metrics defaults
	DefaultMetricsListenAddress = "127.0.0.1:9464"
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsNamespace     = "formzone"
	DefaultMetricsSubsystem     = "validation"

	// Watch defaults
	DefaultWatchDebounce = 500 * time.Millisecond
)

// DefaultRuleDurationBuckets covers rule evaluation from 1µs to about 16ms.
var DefaultRuleDurationBuckets = []float64{
	0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.016,
}

// NewDefaultConfig returns a configuration with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	// Batch defaults
	if cfg.Batch.SaveQueueSize == 0 {
		cfg.Batch.SaveQueueSize = DefaultSaveQueueSize
	}
	if cfg.Batch.FlushTimeout == 0 {
		cfg.Batch.FlushTimeout = DefaultFlushTimeout
	}

	// History defaults
	if cfg.History.Driver == "" {
		cfg.History.Driver = DefaultHistoryDriver
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.History.RetentionDays == 0 {
		cfg.History.RetentionDays = DefaultHistoryRetentionDays
	}
	if cfg.History.PruneSchedule == "" {
		cfg.History.PruneSchedule = DefaultHistoryPruneSchedule
	}

	// Logging defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Logging.Output == "" {
		cfg.Telemetry.Logging.Output = DefaultLogOutput
	}
	if cfg.Telemetry.Logging.MaxSizeMB == 0 {
		cfg.Telemetry.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if cfg.Telemetry.Logging.MaxBackups == 0 {
		cfg.Telemetry.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if cfg.Telemetry.Logging.MaxAgeDays == 0 {
		cfg.Telemetry.Logging.MaxAgeDays = DefaultLogMaxAgeDays
	}

	// Metrics defaults
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.RuleDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RuleDurationBuckets = append([]float64(nil), DefaultRuleDurationBuckets...)
	}

	// Watch defaults
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
}
