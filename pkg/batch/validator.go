package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"formzone-hq/indexer/pkg/comments"
	"formzone-hq/indexer/pkg/fieldtype"
	"formzone-hq/indexer/pkg/history"
	"formzone-hq/indexer/pkg/rowstore"
	"formzone-hq/indexer/pkg/telemetry/logging"
	"formzone-hq/indexer/pkg/telemetry/tracing"
	"formzone-hq/indexer/pkg/validation"
)

// TracerName is the OpenTelemetry instrumentation name of this package.
const TracerName = "formzone/batch"

// Recorder observes finished runs. pkg/telemetry/metrics implements it.
type Recorder interface {
	RecordBatch(documents, failures int, d time.Duration, cancelled bool)
}

// Result is the outcome of validating one row.
type Result struct {
	Row      int                  `json:"row"`
	TiffPath string               `json:"tiff_path,omitempty"`
	Failures []validation.Failure `json:"failures"`

	// Comments is the row's Comments cell after the merge.
	Comments string `json:"comments,omitempty"`
}

// Summary is the outcome of a batch run.
type Summary struct {
	RunID     string    `json:"run_id"`
	Documents int       `json:"documents"`
	Failures  int       `json:"failures"`
	Rows      []Result  `json:"rows"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	Cancelled bool      `json:"cancelled,omitempty"`
}

// Option configures a Validator.
type Option func(*Validator)

// WithFieldToPage sets the field to page mapping used for failures.
func WithFieldToPage(m map[string]int) Option {
	return func(v *Validator) { v.fieldToPage = m }
}

// WithSaveQueue routes saves through q. Without a queue the CSV is saved
// synchronously.
func WithSaveQueue(q *rowstore.SaveQueue) Option {
	return func(v *Validator) { v.queue = q }
}

// WithHistory persists every run to storage under the given project name.
func WithHistory(storage history.Storage, project string) Option {
	return func(v *Validator) {
		v.history = storage
		v.projectName = project
	}
}

// WithFieldTypes adds a field-type check of every typed field to each row.
func WithFieldTypes(fieldTypes map[string]string) Option {
	return func(v *Validator) { v.fieldTypes = fieldTypes }
}

// WithRecorder attaches a Recorder.
func WithRecorder(r Recorder) Option {
	return func(v *Validator) { v.recorder = r }
}

// WithProgress calls fn after each row of a batch with the number of rows
// done and the total.
func WithProgress(fn func(done, total int)) Option {
	return func(v *Validator) { v.progress = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// Validator validates rows of one output CSV against one project.
type Validator struct {
	project     *validation.ProjectValidations
	store       *rowstore.Store
	fieldToPage map[string]int
	fieldTypes  map[string]string

	queue       *rowstore.SaveQueue
	history     history.Storage
	projectName string
	recorder    Recorder
	progress    func(done, total int)
	tracer      *tracing.Tracer
	logger      *slog.Logger
}

// New creates a Validator for the rows of store.
func New(pv *validation.ProjectValidations, store *rowstore.Store, opts ...Option) *Validator {
	v := &Validator{
		project: pv,
		store:   store,
		tracer:  tracing.NewTracer(TracerName),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With("component", "batch")
	return v
}

// ValidateDocument validates one row and merges its failures into the row's
// Comments cell. The CSV is saved only when there were failures.
func (v *Validator) ValidateDocument(ctx context.Context, row int) (Result, error) {
	if !v.hasRules() {
		return Result{}, ErrNoValidations
	}
	if row < 0 || row >= v.store.RowCount() {
		return Result{}, &RowError{Row: row, Cause: &rowstore.RowRangeError{Row: row, Rows: v.store.RowCount()}}
	}

	run := history.NewRun(history.KindDocument, v.projectName, v.store.Path())
	ctx = v.runContext(ctx, run.ID)
	ctx, span := v.tracer.Start(ctx, "batch.validate_document")
	defer span.End()
	tracing.SetRunAttributes(span, run.ID, run.Kind, v.projectName, v.store.Path())

	v.reloadOutput()

	result, err := v.validateRow(ctx, row)
	if err != nil {
		tracing.SetErrorAttributes(span, err, "row")
		return Result{}, err
	}

	if len(result.Failures) > 0 {
		v.save()
	}

	run.Documents = 1
	run.Failures = len(result.Failures)
	run.Finished = time.Now().UTC()
	run.Entries = historyEntries(result)
	tracing.SetResultAttributes(span, run.Failures, run.Duration().Milliseconds())

	v.finish(ctx, run, false)
	return result, nil
}

// ValidateBatch validates every row. Cancellation is checked between rows:
// a cancelled run keeps the comments already merged, saves them, and returns
// the partial summary together with ctx.Err().
func (v *Validator) ValidateBatch(ctx context.Context) (Summary, error) {
	if !v.hasRules() {
		return Summary{}, ErrNoValidations
	}
	rows := v.store.RowCount()
	if rows == 0 {
		return Summary{}, ErrNoRows
	}

	run := history.NewRun(history.KindBatch, v.projectName, v.store.Path())
	ctx = v.runContext(ctx, run.ID)
	ctx, span := v.tracer.Start(ctx, "batch.validate_batch")
	defer span.End()
	tracing.SetRunAttributes(span, run.ID, run.Kind, v.projectName, v.store.Path())
	span.SetAttributes(attribute.Int(tracing.AttrRowCount, rows))

	summary := Summary{
		RunID:   run.ID,
		Started: run.Started,
		Rows:    make([]Result, 0, rows),
	}

	v.reloadOutput()

	var runErr error
	for row := 0; row < rows; row++ {
		if err := ctx.Err(); err != nil {
			summary.Cancelled = true
			runErr = err
			v.logger.InfoContext(ctx, "batch validation cancelled", "validated", summary.Documents, "rows", rows)
			break
		}

		result, err := v.validateRow(ctx, row)
		if v.progress != nil {
			v.progress(row+1, rows)
		}
		if err != nil {
			// A row that cannot be read or written is logged and skipped.
			v.logger.WarnContext(logging.WithRow(ctx, row), "skipping row", "error", err)
			continue
		}
		summary.Documents++
		summary.Failures += len(result.Failures)
		summary.Rows = append(summary.Rows, result)
		run.Entries = append(run.Entries, historyEntries(result)...)
	}

	if summary.Failures > 0 {
		v.save()
	}

	summary.Finished = time.Now().UTC()
	run.Documents = summary.Documents
	run.Failures = summary.Failures
	run.Finished = summary.Finished

	tracing.SetResultAttributes(span, summary.Failures, run.Duration().Milliseconds())
	if runErr != nil {
		tracing.SetErrorAttributes(span, runErr, "cancelled")
	}

	attrs := []any{
		"documents", summary.Documents,
		"failures", summary.Failures,
		"duration", run.Duration(),
	}
	if id := tracing.TraceID(ctx); id != "" {
		attrs = append(attrs, "trace_id", id)
	}
	v.logger.InfoContext(ctx, "batch validated", attrs...)

	v.finish(context.WithoutCancel(ctx), run, summary.Cancelled)
	return summary, runErr
}

// runContext carries the run id and project name to every log line of a run.
func (v *Validator) runContext(ctx context.Context, runID string) context.Context {
	ctx = logging.WithRunID(ctx, runID)
	if v.projectName != "" {
		ctx = logging.WithProject(ctx, v.projectName)
	}
	return ctx
}

func (v *Validator) hasRules() bool {
	return v.project != nil && v.project.HasRules()
}

// reloadOutput refreshes the lookup manager's copy of the output CSV. A
// failure leaves the previous copy in place.
func (v *Validator) reloadOutput() {
	if err := v.project.ReloadOutput(); err != nil {
		v.logger.Warn("failed to reload output table for lookup rules", "error", err)
	}
}

// validateRow runs the rules on row and merges any failures into its
// Comments cell.
func (v *Validator) validateRow(ctx context.Context, row int) (Result, error) {
	ctx = logging.WithRow(ctx, row)
	ctx, span := v.tracer.Start(ctx, "batch.validate_row")
	defer span.End()

	tiff, _ := v.store.TiffPath(row)
	tracing.SetRowAttributes(span, row, tiff)

	raw, err := v.store.RowValues(row)
	if err != nil {
		return Result{}, &RowError{Row: row, Cause: err}
	}

	failures := v.project.RunValidations(row, validation.ValuesFromStrings(raw), v.fieldToPage)
	failures = append(failures, v.fieldTypeFailures(ctx, raw, failures)...)

	result := Result{Row: row, TiffPath: tiff, Failures: failures}
	if cell, ok := v.store.Comments(row); ok {
		result.Comments = cell
	}
	span.SetAttributes(attribute.Int(tracing.AttrFailures, len(failures)))
	if len(failures) == 0 {
		return result, nil
	}

	cell := MergeComments(result.Comments, failures)
	if err := v.store.SetComments(row, cell); err != nil {
		return Result{}, &RowError{Row: row, Cause: err}
	}
	result.Comments = cell
	tracing.AddEvent(span, "comments_written", attribute.Int("count", len(failures)))
	v.logger.DebugContext(ctx, "comments merged", "failures", len(failures))
	return result, nil
}

// fieldTypeFailures checks every typed field whose (page, field) slot is not
// already taken by a rule failure.
func (v *Validator) fieldTypeFailures(ctx context.Context, raw map[string]string, existing []validation.Failure) []validation.Failure {
	if len(v.fieldTypes) == 0 {
		return nil
	}
	failed, err := fieldtype.Check(v.fieldTypes, raw)
	if err != nil {
		v.logger.WarnContext(ctx, "field type check skipped", "error", err)
		return nil
	}

	taken := make(map[validation.FailureKey]struct{}, len(existing))
	for _, f := range existing {
		taken[f.Key()] = struct{}{}
	}

	fields := make([]string, 0, len(failed))
	for field := range failed {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var out []validation.Failure
	for _, field := range fields {
		page := 1
		if p, ok := v.fieldToPage[field]; ok {
			page = p
		}
		f := validation.Failure{Page: page, Field: field, Message: fieldTypeMessage(field, v.fieldTypes[field], failed[field])}
		if _, dup := taken[f.Key()]; dup {
			continue
		}
		taken[f.Key()] = struct{}{}
		out = append(out, f)
	}
	return out
}

func fieldTypeMessage(field, typ, test string) string {
	if test == "is_empty" {
		return fmt.Sprintf("%s is empty", field)
	}
	return fmt.Sprintf("%s is not a valid %s", field, typ)
}

// save writes the store through the queue, or synchronously without one.
// Errors are logged; the in-memory rows stay authoritative.
func (v *Validator) save() {
	if v.queue != nil {
		if err := v.queue.EnqueueStore(v.store); err != nil {
			v.logger.Warn("failed to enqueue csv save", "path", v.store.Path(), "error", err)
		}
		return
	}
	if err := v.store.Save(); err != nil {
		v.logger.Error("failed to save csv", "path", v.store.Path(), "error", err)
	}
}

// finish records the run in metrics and history. A history failure is
// logged and does not fail the validation.
func (v *Validator) finish(ctx context.Context, run *history.Run, cancelled bool) {
	if v.recorder != nil {
		v.recorder.RecordBatch(run.Documents, run.Failures, run.Duration(), cancelled)
	}
	if v.history == nil {
		return
	}
	if err := v.history.Store(ctx, run); err != nil {
		v.logger.WarnContext(ctx, "failed to record validation run", "error", err)
		tracing.SpanFromContext(ctx).RecordError(err)
	}
}

// MergeComments adds failures to an existing Comments cell. A failure
// replaces an earlier comment on the same page and field.
func MergeComments(cell string, failures []validation.Failure) string {
	cs := comments.Parse(cell)
	for _, f := range failures {
		cs.Add(comments.Comment{Page: f.Page, Field: f.Field, Text: f.Message})
	}
	return cs.String()
}

func historyEntries(r Result) []history.Failure {
	out := make([]history.Failure, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, history.Failure{Row: r.Row, Page: f.Page, Field: f.Field, Message: f.Message})
	}
	return out
}
