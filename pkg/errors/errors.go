// Package errors provides structured error types for repostats.
//
// Every failure that can leave the upstream client is tagged with a [Code] so
// the aggregation layer can decide how to degrade and the HTTP layer can
// report it without string matching.
//
// # Error Codes
//
//   - NOT_FOUND: the repository or sub-resource does not exist
//   - RATE_LIMITED: the upstream request budget is exhausted
//   - FORBIDDEN: the repository is private or otherwise inaccessible
//   - UPSTREAM_ERROR: the upstream replied with an unexpected status
//   - NETWORK_ERROR: the request never produced a response
//   - TRANSIENT_PROCESSING: the upstream is still computing (internal only)
//   - INVALID_INPUT: a request parameter failed validation
//   - INTERNAL_ERROR: anything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid owner: %s", owner)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "GET %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	ErrCodeNotFound            Code = "NOT_FOUND"
	ErrCodeRateLimited         Code = "RATE_LIMITED"
	ErrCodeForbidden           Code = "FORBIDDEN"
	ErrCodeUpstream            Code = "UPSTREAM_ERROR"
	ErrCodeNetwork             Code = "NETWORK_ERROR"
	ErrCodeTransientProcessing Code = "TRANSIENT_PROCESSING"
	ErrCodeInvalidInput        Code = "INVALID_INPUT"
	ErrCodeInternal            Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Status  int    // Upstream HTTP status, 0 when not applicable
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

// Upstream creates an UPSTREAM_ERROR for an unexpected HTTP status.
func Upstream(status int) *Error {
	return &Error{
		Code:    ErrCodeUpstream,
		Message: fmt.Sprintf("GitHub API error: %d", status),
		Status:  status,
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

// GetStatus returns the upstream HTTP status carried by err, or 0.
func GetStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
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
