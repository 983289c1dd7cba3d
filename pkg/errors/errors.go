// Package errors provides structured error types for the distillation
// optimizer.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the pipeline and the optimizer
//   - Machine-readable codes that decide whether a failure is recoverable
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes are grouped by how the optimizer treats them:
//   - INVALID_*: configuration or input errors, raised before any simulator call
//   - SIMULATION_FAILED, NOT_CONVERGED, NUMERICAL: recoverable inside an
//     optimization trial, converted to a penalty value
//   - ROOT_NOT_BRACKETED: shortcut initialisation failures, always fatal
//   - NETWORK_ERROR, TIMEOUT: remote simulator transport failures
//   - INTERNAL_ERROR, UNSUPPORTED: unexpected conditions
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "feed stage %d outside (1, %d)", f, n)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // Reject before simulating
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNotConverged, origErr, "simulate %d stages", n)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidCaseFile Code = "INVALID_CASE_FILE"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Evaluation errors, recoverable inside the optimizer
	ErrCodeSimulationFailed Code = "SIMULATION_FAILED"
	ErrCodeNotConverged     Code = "NOT_CONVERGED"
	ErrCodeNumerical        Code = "NUMERICAL"

	// Initialisation errors
	ErrCodeRootNotBracketed Code = "ROOT_NOT_BRACKETED"

	// Transport errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Recoverable reports whether err is an evaluation failure that an
// optimization trial may absorb: simulator failures, non-convergence and
// undefined numerical ratios. Configuration and initialisation errors are
// never recoverable.
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeSimulationFailed, ErrCodeNotConverged, ErrCodeNumerical,
		ErrCodeNetwork, ErrCodeTimeout:
		return true
	}
	return false
}
