package lookup

import "fmt"

// LoadError indicates a lookup list or output CSV could not be read.
type LoadError struct {
	Path  string
	Line  int
	Cause error
}

// Error returns the error message.
func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Path, e.Line, e.Cause)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// FieldNotFoundError indicates a field is not a column of the output CSV.
type FieldNotFoundError struct {
	Field string
}

// Error returns the error message.
func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found in output header", e.Field)
}

// RowOutOfRangeError indicates the current row does not exist in the output
// table, usually because the cursor was not positioned for this batch.
type RowOutOfRangeError struct {
	Row  int
	Rows int
}

// Error returns the error message.
func (e *RowOutOfRangeError) Error() string {
	return fmt.Sprintf("row %d out of range (output has %d rows)", e.Row, e.Rows)
}

// ColumnOutOfRangeError indicates a lookup row is shorter than the requested column.
type ColumnOutOfRangeError struct {
	Key    string
	Column int
	Width  int
}

// Error returns the error message.
func (e *ColumnOutOfRangeError) Error() string {
	return fmt.Sprintf("lookup row %q has %d columns, column %d requested", e.Key, e.Width, e.Column)
}
