package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys. Custom keys use the "formzone.*" namespace.
const (
	// Run attributes
	AttrRunID    = "formzone.run.id"
	AttrRunKind  = "formzone.run.kind"
	AttrProject  = "formzone.project"
	AttrCSVPath  = "formzone.csv_path"
	AttrRowCount = "formzone.rows"

	// Row attributes
	AttrRow       = "formzone.row"
	AttrTiffPath  = "formzone.tiff_path"
	AttrFailures  = "formzone.failures"
	AttrRuleCount = "formzone.rules"

	// Error attributes
	AttrErrorType    = "formzone.error.type"
	AttrErrorMessage = "error.message"

	// Performance attributes
	AttrDuration = "formzone.duration_ms"
)

// SetRunAttributes sets the attributes identifying a validation run.
//
// Example:
//
//	SetRunAttributes(span, run.ID, "batch", "Census 2026", "/scans/batch1/index.csv")
func SetRunAttributes(span trace.Span, runID, kind, project, csvPath string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrRunID, runID),
		attribute.String(AttrRunKind, kind),
	}
	if project != "" {
		attrs = append(attrs, attribute.String(AttrProject, project))
	}
	if csvPath != "" {
		attrs = append(attrs, attribute.String(AttrCSVPath, csvPath))
	}
	span.SetAttributes(attrs...)
}

// SetRowAttributes sets the attributes of one validated row.
func SetRowAttributes(span trace.Span, row int, tiffPath string) {
	span.SetAttributes(attribute.Int(AttrRow, row))
	if tiffPath != "" {
		span.SetAttributes(attribute.String(AttrTiffPath, tiffPath))
	}
}

// SetResultAttributes records the failure count and duration of a run or row.
func SetResultAttributes(span trace.Span, failures int, durationMs int64) {
	span.SetAttributes(
		attribute.Int(AttrFailures, failures),
		attribute.Int64(AttrDuration, durationMs),
	)
}

// SetErrorAttributes sets error-related attributes on a span.
// This also records the error using span.RecordError() and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "cancelled")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent adds a named event to the span with optional attributes.
//
// Example:
//
//	AddEvent(span, "comments_written",
//	    attribute.Int("row", 3),
//	)
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
