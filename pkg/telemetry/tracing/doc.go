// Package tracing provides OpenTelemetry span helpers for formzone.
//
// Batch and document validation open one span per run and one child span
// per row. Spans are created through the OpenTelemetry API only; the global
// provider is a no-op unless a program registers an SDK provider with
// otel.SetTracerProvider, so tracing costs nothing by default.
//
// # Attributes
//
// Custom attribute keys use the "formzone.*" namespace:
//   - formzone.run.id, formzone.run.kind: identify a validation run
//   - formzone.project, formzone.csv_path: what was validated
//   - formzone.row, formzone.tiff_path: one document
//   - formzone.failures, formzone.duration_ms: the outcome
package tracing
