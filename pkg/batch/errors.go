package batch

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNoValidations is returned when the project declares no rules.
	ErrNoValidations = errors.New("no project validations configured for this project")

	// ErrNoRows is returned when the output CSV has no data rows.
	ErrNoRows = errors.New("output csv has no document rows")
)

// RowError wraps a failure to read or write back one document row.
type RowError struct {
	Row   int
	Cause error
}

// Error returns the error message.
func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Cause)
}

// Unwrap returns the underlying error.
func (e *RowError) Unwrap() error {
	return e.Cause
}
