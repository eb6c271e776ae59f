package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestTracer_StartWithGlobalProvider(t *testing.T) {
	tracer := NewTracer("formzone/test")

	ctx, span := tracer.Start(context.Background(), "batch.validate")
	defer span.End()

	if SpanFromContext(ctx).IsRecording() {
		t.Error("Expected noop span not to record")
	}
	if id := TraceID(ctx); id != "" {
		t.Errorf("Expected empty trace id for noop span, got %q", id)
	}
}

func TestAttributeHelpers_NoopSpan(t *testing.T) {
	_, span := noop.NewTracerProvider().Tracer("t").Start(context.Background(), "row")

	SetRunAttributes(span, "run-1", "batch", "", "")
	SetRowAttributes(span, 3, "scans/0003.tif")
	SetResultAttributes(span, 2, 15)
	SetErrorAttributes(span, nil, "none")
	SetErrorAttributes(span, errors.New("boom"), "internal")
	AddEvent(span, "comments_written", attribute.Int("row", 3))
	span.End()
}
