// Package telemetry groups formzone's observability packages.
//
// # Components
//
//   - logging: slog setup with PII redaction and file rotation
//   - metrics: Prometheus collector for validation and batch runs
//   - tracing: OpenTelemetry spans around batch validation
//   - health: liveness and readiness probes for the watch command
//
// Nothing in this package itself is imported; each component is used
// directly.
package telemetry
