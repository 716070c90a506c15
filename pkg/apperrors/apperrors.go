// Package apperrors defines the soft-error taxonomy shared by the
// scheduling policies and the simulator. Every error here is advisory: it
// is constructed, logged by the caller, and never propagated as a panic
// or a process-ending return.
package apperrors

import (
	"errors"
	"fmt"
)

// Error codes for the scheduler core and experiment harness.
const (
	CodeDuplicateJob  = "DUPLICATE_JOB"
	CodeMissingJob    = "MISSING_JOB"
	CodeInvalidConfig = "INVALID_CONFIG"
	CodeStaleEvent    = "STALE_EVENT"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target by code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Common error instances, used as errors.Is targets.
var (
	ErrDuplicateJob  = New(CodeDuplicateJob, "job already exists")
	ErrMissingJob    = New(CodeMissingJob, "job does not exist")
	ErrInvalidConfig = New(CodeInvalidConfig, "invalid configuration")
	ErrStaleEvent    = New(CodeStaleEvent, "stale completion event")
)

// IsDuplicateJob reports whether err is a duplicate-insertion soft error.
func IsDuplicateJob(err error) bool {
	return errors.Is(err, ErrDuplicateJob)
}

// IsMissingJob reports whether err is a missing-deletion soft error.
func IsMissingJob(err error) bool {
	return errors.Is(err, ErrMissingJob)
}

// GetErrorCode extracts the error code from an error, or CodeInvalidConfig's
// sibling "unknown" sentinel if err is not an *AppError.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}
