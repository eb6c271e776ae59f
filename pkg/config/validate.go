package config

import (
	"fmt"
	"net"
	"regexp"
	"sort"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "history.driver").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// collecting every failed rule, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateBatch(&cfg.Batch)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateLogging(&cfg.Telemetry.Logging)...)
	errs = append(errs, validateMetrics(&cfg.Telemetry.Metrics)...)
	errs = append(errs, validateWatch(&cfg.Watch)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateBatch(cfg *BatchConfig) []FieldError {
	var errs []FieldError
	if cfg.SaveQueueSize < 0 {
		errs = append(errs, FieldError{Field: "batch.save_queue_size", Message: "must be positive"})
	}
	if cfg.FlushTimeout < 0 {
		errs = append(errs, FieldError{Field: "batch.flush_timeout", Message: "must not be negative"})
	}
	return errs
}

var validDrivers = map[string]bool{"sqlite": true, "sqlite3": true, "memory": true}

func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	if !validDrivers[cfg.Driver] {
		errs = append(errs, FieldError{
			Field:   "history.driver",
			Message: fmt.Sprintf("must be one of %s, got %q", keys(validDrivers), cfg.Driver),
		})
	}
	if cfg.Enabled && cfg.Driver != "memory" && cfg.Path == "" {
		errs = append(errs, FieldError{Field: "history.path", Message: "is required when history is enabled"})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{Field: "history.retention_days", Message: "must not be negative"})
	}
	if cfg.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "history.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}
	return errs
}

var (
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"json": true, "text": true, "console": true}
)

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	if !validLevels[strings.ToLower(cfg.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of %s, got %q", keys(validLevels), cfg.Level),
		})
	}
	if !validFormats[strings.ToLower(cfg.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be one of %s, got %q", keys(validFormats), cfg.Format),
		})
	}
	if cfg.MaxSizeMB < 0 || cfg.MaxBackups < 0 || cfg.MaxAgeDays < 0 {
		errs = append(errs, FieldError{Field: "telemetry.logging", Message: "rotation limits must not be negative"})
	}
	for i, p := range cfg.RedactPatterns {
		if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}
	return errs
}

func validateMetrics(cfg *MetricsConfig) []FieldError {
	var errs []FieldError
	if !cfg.Enabled {
		return errs
	}

	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.listen_address",
			Message: fmt.Sprintf("invalid address: %v", err),
		})
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "must start with /"})
	}
	for i := 1; i < len(cfg.RuleDurationBuckets); i++ {
		if cfg.RuleDurationBuckets[i] <= cfg.RuleDurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.rule_duration_buckets",
				Message: "must be strictly increasing",
			})
			break
		}
	}
	return errs
}

func validateWatch(cfg *WatchConfig) []FieldError {
	if cfg.Debounce < 0 {
		return []FieldError{{Field: "watch.debounce", Message: "must not be negative"}}
	}
	return nil
}

func keys(m map[string]bool) string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return "[" + strings.Join(out, ", ") + "]"
}
