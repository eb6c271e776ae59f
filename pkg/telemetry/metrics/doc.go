// Package metrics provides Prometheus metrics for formzone.
//
// # Overview
//
// A Collector records how validation behaves across runs: how many rows are
// checked, which strategies report failures, which rules are dropped after an
// error and how long they take. It implements validation.Recorder, so the
// validation engine reports into it without importing Prometheus.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	pv := validation.New(project, csvPath, validation.WithRecorder(collector))
//
//	go collector.Serve(ctx, logger, func(mux *http.ServeMux) {
//		health.Mount(mux, checker, info)
//	})
//
// # Metrics
//
//   - runs_total, row_failures, row_duration_seconds
//   - failures_total{strategy}, rule_errors_total{strategy},
//     rule_duration_seconds{strategy}
//   - documents_total, batches_total{outcome}, batch_duration_seconds
//   - save_queue_errors_total, lookup_available
//
// Every name carries the configured namespace and subsystem prefix
// (default "formzone_validation_"). Strategy labels are capped at 256
// distinct values; further names are reported as "other".
package metrics
