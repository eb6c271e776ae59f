package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for validation run ids.
	RunIDKey contextKey = "run_id"

	// RowKey is the context key for the output CSV row being validated.
	RowKey contextKey = "row"

	// ProjectKey is the context key for the project config folder.
	ProjectKey contextKey = "project"
)

// WithRunID adds a run id to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run id from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithRow adds a row index to the context.
func WithRow(ctx context.Context, row int) context.Context {
	return context.WithValue(ctx, RowKey, row)
}

// GetRow retrieves the row index from the context. The boolean is false
// when no row is set.
func GetRow(ctx context.Context) (int, bool) {
	row, ok := ctx.Value(RowKey).(int)
	return row, ok
}

// WithProject adds a project folder to the context.
func WithProject(ctx context.Context, project string) context.Context {
	return context.WithValue(ctx, ProjectKey, project)
}

// GetProject retrieves the project folder from the context.
func GetProject(ctx context.Context) string {
	if project, ok := ctx.Value(ProjectKey).(string); ok {
		return project
	}
	return ""
}

// extractContextFields returns the run fields in ctx as key-value pairs
// suitable for slog.
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if project := GetProject(ctx); project != "" {
		fields = append(fields, "project", project)
	}
	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, "run_id", runID)
	}
	if row, ok := GetRow(ctx); ok {
		fields = append(fields, "row", row)
	}

	return fields
}

// contextHandler adds the run fields held in the context passed to the
// *Context logging methods.
type contextHandler struct {
	next slog.Handler
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if fields := extractContextFields(ctx); len(fields) > 0 {
		rec = rec.Clone()
		rec.Add(fields...)
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name)}
}
