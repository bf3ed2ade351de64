// Package errors provides structured error types for toppgo.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API, and library use
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Configuration validation failures (bad column name, bad enum
//     value, unknown category). Always raised before any network call.
//   - NETWORK_*/TIMEOUT: Transport failures talking to the ToppGene service.
//   - PARSE_ERROR: The service response violates the expected schema.
//   - IO_ERROR: Local filesystem failures while exporting results.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidColumn, "no column named %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidColumn) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "enrich request failed")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors. These are always fatal and are raised during
	// validation, before any request reaches the ToppGene service.
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidColumn     Code = "INVALID_COLUMN"
	ErrCodeInvalidDirection  Code = "INVALID_DIRECTION"
	ErrCodeInvalidCorrection Code = "INVALID_CORRECTION"
	ErrCodeInvalidCategory   Code = "INVALID_CATEGORY"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"

	// Transport errors. Fatal for the current run; never retried beyond the
	// transport layer's own backoff.
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Response shape errors. Record-scoped where possible, batch-fatal when
	// the top-level response structure is unparseable.
	ErrCodeParse Code = "PARSE_ERROR"

	// Local filesystem errors during export.
	ErrCodeIO Code = "IO_ERROR"

	// Internal errors.
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// IsConfiguration reports whether err carries any of the INVALID_* codes.
// Callers use this to distinguish precondition violations from runtime
// failures.
func IsConfiguration(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidColumn, ErrCodeInvalidDirection,
		ErrCodeInvalidCorrection, ErrCodeInvalidCategory, ErrCodeInvalidFormat:
		return true
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
