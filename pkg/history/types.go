package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Run kinds.
const (
	KindDocument = "document"
	KindBatch    = "batch"
)

// Run is one invocation of document or batch validation.
type Run struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Project   string    `json:"project"`
	CSVPath   string    `json:"csv_path"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	Documents int       `json:"documents"`

	// Failures is the number of failures across all documents. Entries
	// holds them individually and is only populated by Store callers and
	// by Storage.Failures.
	Failures int       `json:"failures"`
	Entries  []Failure `json:"entries,omitempty"`
}

// Failure is one validation failure recorded against a run.
type Failure struct {
	Row     int    `json:"row"`
	Page    int    `json:"page"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewRun returns a run with a fresh id and the start time set to now.
func NewRun(kind, project, csvPath string) *Run {
	return &Run{
		ID:      uuid.New().String(),
		Kind:    kind,
		Project: project,
		CSVPath: csvPath,
		Started: time.Now().UTC(),
	}
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Query filters runs. Zero values match everything.
type Query struct {
	Project string
	Kind    string
	Since   *time.Time

	// Limit caps the number of runs returned, newest first.
	// Default: 50
	Limit int
}

// Storage persists validation runs.
type Storage interface {
	// Store persists a run and its failure entries.
	Store(ctx context.Context, run *Run) error

	// Runs returns runs matching the query, newest first, without entries.
	Runs(ctx context.Context, query Query) ([]*Run, error)

	// Failures returns the failure entries of a run ordered by row.
	Failures(ctx context.Context, runID string) ([]Failure, error)

	// Prune deletes runs started before the given time and returns how many
	// were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)

	// Close releases resources held by the backend.
	Close() error
}

const defaultLimit = 50
