// Package errors provides structured error types for modhouse.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP adapter and the core
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The configurator core fails in a small number of well-defined ways:
//   - CATALOG_ERROR: a DNA or system identifier could not be resolved
//   - GEOMETRY_FETCH_ERROR: module geometry could not be fetched
//   - LAYOUT_ASSEMBLY_ERROR: a matrix is malformed or its assembly failed
//   - NO_ACTIVE_LAYOUT: an operation needs an active layout that is missing
//   - NO_ALTERNATIVES: the degenerate, non-fatal "nothing to swap" case
//   - CUT_CONFIG_ERROR: a cut pass ran without a cut manager
//   - PRECONDITION_FAILED: a gesture arrived in the wrong engine phase
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDNA, "empty dna at index %d", i)
//	if errors.Is(err, errors.ErrCodeInvalidDNA) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeCatalog, origErr, "resolve %s", dna)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidDNA    Code = "INVALID_DNA"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Collaborator errors
	ErrCodeCatalog       Code = "CATALOG_ERROR"
	ErrCodeGeometryFetch Code = "GEOMETRY_FETCH_ERROR"

	// Layout and engine errors
	ErrCodeLayoutAssembly Code = "LAYOUT_ASSEMBLY_ERROR"
	ErrCodeNoActiveLayout Code = "NO_ACTIVE_LAYOUT"
	ErrCodeNoAlternatives Code = "NO_ALTERNATIVES"
	ErrCodeCutConfig      Code = "CUT_CONFIG_ERROR"
	ErrCodePrecondition   Code = "PRECONDITION_FAILED"

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

// Is reports whether err carries the given error code anywhere in its chain.
// Wrapped errors are walked outermost first, so a LAYOUT_ASSEMBLY_ERROR that
// wraps a GEOMETRY_FETCH_ERROR matches both codes.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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
