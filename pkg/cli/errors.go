package cli

import (
	"context"
	"errors"
	"fmt"
)

// Exit codes returned by the formzone command.
const (
	ExitOK        = 0
	ExitError     = 1
	ExitFailures  = 2
	ExitCancelled = 130
)

// ErrFailuresFound is returned by validate commands that found failures, so
// scripts can tell a dirty batch from a broken run.
var ErrFailuresFound = errors.New("validation failures found")

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrFailuresFound):
		return ExitFailures
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	default:
		return ExitError
	}
}
