package metrics

import (
	"time"

	"formzone-hq/indexer/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// BatchMetrics tracks batch runs and the services around them.
//
// Metrics:
//   - formzone_validation_documents_total: documents covered by batch runs
//   - formzone_validation_batches_total: batch runs, by outcome
//   - formzone_validation_batch_duration_seconds: batch run time
//   - formzone_validation_save_queue_errors_total: CSV saves that failed or were dropped
//   - formzone_validation_lookup_available: 1 when the lookup list is loaded
type BatchMetrics struct {
	documentsTotal  prometheus.Counter
	batchesTotal    *prometheus.CounterVec
	batchDuration   prometheus.Histogram
	saveErrors      prometheus.Counter
	lookupAvailable prometheus.Gauge
}

// NewBatchMetrics creates and registers batch metrics.
func NewBatchMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *BatchMetrics {
	bm := &BatchMetrics{
		documentsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "documents_total",
				Help:      "Total number of documents covered by batch runs",
			},
		),

		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "batches_total",
				Help:      "Total number of batch runs",
			},
			[]string{"outcome"},
		),

		batchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "batch_duration_seconds",
				Help:      "Duration of a batch run in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),

		saveErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "save_queue_errors_total",
				Help:      "Total number of CSV saves that failed or were dropped",
			},
		),

		lookupAvailable: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "lookup_available",
				Help:      "1 when the project's lookup list is loaded, 0 otherwise",
			},
		),
	}

	registry.MustRegister(
		bm.documentsTotal,
		bm.batchesTotal,
		bm.batchDuration,
		bm.saveErrors,
		bm.lookupAvailable,
	)

	return bm
}

// RecordBatch records a finished batch run.
func (bm *BatchMetrics) RecordBatch(documents, failures int, d time.Duration, cancelled bool) {
	outcome := "clean"
	switch {
	case cancelled:
		outcome = "cancelled"
	case failures > 0:
		outcome = "failures"
	}
	bm.batchesTotal.WithLabelValues(outcome).Inc()
	bm.documentsTotal.Add(float64(documents))
	bm.batchDuration.Observe(d.Seconds())
}

// RecordSaveError records a failed or dropped save.
func (bm *BatchMetrics) RecordSaveError() {
	bm.saveErrors.Inc()
}

// SetLookupAvailable sets the lookup availability gauge.
func (bm *BatchMetrics) SetLookupAvailable(ok bool) {
	if ok {
		bm.lookupAvailable.Set(1)
		return
	}
	bm.lookupAvailable.Set(0)
}
