package metrics

import (
	"sync"
	"time"

	"formzone-hq/indexer/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// otherStrategy is the label used once the cardinality limit is reached.
const otherStrategy = "other"

// Collector owns every Prometheus metric formzone exposes. It implements
// validation.Recorder so a ProjectValidations can report into it directly.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	validationMetrics *ValidationMetrics
	batchMetrics      *BatchMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a metrics collector. If registry is nil a fresh
// registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true}
//	collector := metrics.NewCollector(cfg, nil)
//	pv, err := validation.New(project, csv, validation.WithRecorder(collector))
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RuleDurationBuckets) == 0 {
		cfg.RuleDurationBuckets = append([]float64(nil), config.DefaultRuleDurationBuckets...)
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		validationMetrics:  NewValidationMetrics(cfg, registry),
		batchMetrics:       NewBatchMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(256),
	}
}

// RecordRule records one rule evaluation.
func (c *Collector) RecordRule(strategy string, failures int, d time.Duration, err error) {
	if !c.config.Enabled {
		return
	}
	if !c.cardinalityLimiter.Allow(strategy) {
		strategy = otherStrategy
	}
	c.validationMetrics.RecordRule(strategy, failures, d, err)
}

// RecordRun records one validated row.
func (c *Collector) RecordRun(rowIndex, failures int, d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.validationMetrics.RecordRun(failures, d)
}

// RecordBatch records a completed batch validation.
func (c *Collector) RecordBatch(documents, failures int, d time.Duration, cancelled bool) {
	if !c.config.Enabled {
		return
	}
	c.batchMetrics.RecordBatch(documents, failures, d, cancelled)
}

// RecordSaveError records a CSV save that failed or was dropped.
func (c *Collector) RecordSaveError() {
	if !c.config.Enabled {
		return
	}
	c.batchMetrics.RecordSaveError()
}

// SetLookupAvailable records whether the project's lookup list is loaded.
func (c *Collector) SetLookupAvailable(ok bool) {
	if !c.config.Enabled {
		return
	}
	c.batchMetrics.SetLookupAvailable(ok)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of distinct label values a metric may
// take.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter allowing maxCardinality values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already known or still fits under the limit.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
