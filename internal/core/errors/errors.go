// Package errors provides centralized error definitions for the engine.
// Errors are organized by taxonomy to avoid duplication and provide
// consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Validation errors. Fail fast, never retried.
var (
	// ErrInvalidInput indicates malformed or missing input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyContent indicates a request without analyzable text.
	ErrEmptyContent = errors.New("empty content")
)

// Dependency errors.
var (
	// ErrDependencyUnavailable indicates a retryable external failure.
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrDependencyFatal indicates a non-retryable external failure.
	ErrDependencyFatal = errors.New("dependency failure")

	// ErrRetryExhausted indicates all retry attempts were spent.
	ErrRetryExhausted = errors.New("retry attempts exhausted")
)

// Circuit breaker errors.
var (
	// ErrCircuitOpen indicates the circuit breaker has tripped and the
	// call was fast-failed without invoking the dependency. Callers map
	// this to degraded mode, never to a caller-visible failure.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// Analysis errors.
var (
	// ErrAllStagesFailed indicates no stage produced a usable score.
	// This is the only fatal analysis outcome; timeouts and degraded
	// dependencies produce partial results instead.
	ErrAllStagesFailed = errors.New("all analysis stages failed")

	// ErrNoResults indicates no matching records were found.
	ErrNoResults = errors.New("no results")
)

// Retryable reports whether err should be retried. Only errors tagged
// with ErrDependencyUnavailable qualify; validation errors, fatal
// dependency errors, and open circuits never do.
func Retryable(err error) bool {
	return errors.Is(err, ErrDependencyUnavailable)
}

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
