package metrics

import (
	"time"

	"formzone-hq/indexer/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ValidationMetrics tracks rule and row evaluation.
//
// Metrics:
//   - formzone_validation_runs_total: rows validated
//   - formzone_validation_failures_total: failures reported, by strategy
//   - formzone_validation_rule_errors_total: rules dropped after an error, by strategy
//   - formzone_validation_rule_duration_seconds: rule evaluation time, by strategy
//   - formzone_validation_row_failures: failures per validated row
type ValidationMetrics struct {
	runsTotal     prometheus.Counter
	failuresTotal *prometheus.CounterVec
	ruleErrors    *prometheus.CounterVec
	ruleDuration  *prometheus.HistogramVec
	rowFailures   prometheus.Histogram
	rowDuration   prometheus.Histogram
}

// NewValidationMetrics creates and registers validation metrics.
func NewValidationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ValidationMetrics {
	vm := &ValidationMetrics{
		runsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of rows validated",
			},
		),

		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "failures_total",
				Help:      "Total number of validation failures reported",
			},
			[]string{"strategy"},
		),

		ruleErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_errors_total",
				Help:      "Total number of rule evaluations dropped after an error",
			},
			[]string{"strategy"},
		),

		ruleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_duration_seconds",
				Help:      "Duration of a single rule evaluation in seconds",
				Buckets:   cfg.RuleDurationBuckets,
			},
			[]string{"strategy"},
		),

		rowFailures: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "row_failures",
				Help:      "Number of failures per validated row",
				Buckets:   []float64{0, 1, 2, 5, 10, 25},
			},
		),

		rowDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "row_duration_seconds",
				Help:      "Duration of validating one row in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
	}

	registry.MustRegister(
		vm.runsTotal,
		vm.failuresTotal,
		vm.ruleErrors,
		vm.ruleDuration,
		vm.rowFailures,
		vm.rowDuration,
	)

	return vm
}

// RecordRule records one rule evaluation.
func (vm *ValidationMetrics) RecordRule(strategy string, failures int, d time.Duration, err error) {
	vm.ruleDuration.WithLabelValues(strategy).Observe(d.Seconds())
	if err != nil {
		vm.ruleErrors.WithLabelValues(strategy).Inc()
		return
	}
	if failures > 0 {
		vm.failuresTotal.WithLabelValues(strategy).Add(float64(failures))
	}
}

// RecordRun records one validated row.
func (vm *ValidationMetrics) RecordRun(failures int, d time.Duration) {
	vm.runsTotal.Inc()
	vm.rowFailures.Observe(float64(failures))
	vm.rowDuration.Observe(d.Seconds())
}
