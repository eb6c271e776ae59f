package project

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates the project has no project_config.json.
var ErrNotFound = errors.New("project config not found")

// FieldError describes one structural problem in a project config.
type FieldError struct {
	Field string
	Tag   string
	Param string
	Value string
}

// Error returns the error message.
func (e FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: failed %s=%s (value %q)", e.Field, e.Tag, e.Param, e.Value)
	}
	return fmt.Sprintf("%s: failed %s (value %q)", e.Field, e.Tag, e.Value)
}

// ValidationError collects every structural problem found in a project config.
type ValidationError struct {
	Errors []FieldError
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid project config: " + e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("invalid project config (%d errors): %s", len(e.Errors), strings.Join(msgs, "; "))
}
