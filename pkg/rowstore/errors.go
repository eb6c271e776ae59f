package rowstore

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNoPath indicates a save was requested without a file path.
	ErrNoPath = errors.New("no csv path")

	// ErrQueueClosed indicates the save queue has been closed.
	ErrQueueClosed = errors.New("save queue closed")

	// ErrFlushTimeout indicates pending saves did not complete within the flush timeout.
	ErrFlushTimeout = errors.New("save queue flush timed out")
)

// UnknownFieldError indicates a field is not a column of the row store.
type UnknownFieldError struct {
	Field string
}

// Error returns the error message.
func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("field %q not in header", e.Field)
}

// RowRangeError indicates a row index outside the data rows.
type RowRangeError struct {
	Row  int
	Rows int
}

// Error returns the error message.
func (e *RowRangeError) Error() string {
	return fmt.Sprintf("row %d out of range (%d data rows)", e.Row, e.Rows)
}
