package validation

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrUnknownStrategy indicates a rule names a strategy that is not registered.
	ErrUnknownStrategy = errors.New("unknown validation strategy")

	// ErrLookupUnavailable indicates the project names a lookup list that could not be loaded.
	ErrLookupUnavailable = errors.New("lookup list unavailable")
)

// ParamError indicates a rule parameter is present but has the wrong type.
type ParamError struct {
	Param string
	Want  string
	Got   any
}

// Error returns the error message.
func (e *ParamError) Error() string {
	return fmt.Sprintf("param %q: expected %s, got %T (%v)", e.Param, e.Want, e.Got, e.Got)
}

// StrategyError wraps a failure raised while evaluating one rule.
type StrategyError struct {
	Strategy  string
	RuleIndex int
	Cause     error
}

// Error returns the error message.
func (e *StrategyError) Error() string {
	return fmt.Sprintf("rule %d (%s): %v", e.RuleIndex, e.Strategy, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StrategyError) Unwrap() error {
	return e.Cause
}

// LookupLoadError records why the lookup list could not be used.
type LookupLoadError struct {
	Path  string
	Cause error
}

// Error returns the error message.
func (e *LookupLoadError) Error() string {
	return fmt.Sprintf("lookup list %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *LookupLoadError) Unwrap() error {
	return e.Cause
}

// Is reports ErrLookupUnavailable so callers can test for it with errors.Is.
func (e *LookupLoadError) Is(target error) bool {
	return target == ErrLookupUnavailable
}
