package history

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrRunNotFound indicates no run has the requested id.
	ErrRunNotFound = errors.New("run not found")

	// ErrUnknownDriver indicates the configured storage driver is not supported.
	ErrUnknownDriver = errors.New("unknown history driver")

	// ErrInvalidRun indicates a run without an id.
	ErrInvalidRun = errors.New("run has no id")
)

// StorageError represents an error from a storage backend.
type StorageError struct {
	Backend   string // Storage backend ("sqlite3", "sqlite", "memory")
	Operation string // Operation that failed ("store", "runs", "prune", ...)
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("history storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}
