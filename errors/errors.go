package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code, so that
// errors.Is(err, ErrEmptyAggregate) matches any empty-aggregate failure.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// ErrEmptyAggregate is the sentinel for errors.Is checks against empty folds.
var ErrEmptyAggregate = &AppError{Code: ErrCodeEmptyAggregate, Message: "aggregate over empty sequence"}

// --- Common Error Constructors ---

// EmptyAggregate creates a new AppError for a fold finalized with zero elements.
func EmptyAggregate(operation string) *AppError {
	return &AppError{
		Code:    ErrCodeEmptyAggregate,
		Message: fmt.Sprintf("cannot compute %s over an empty sequence", operation),
		Details: map[string]any{"operation": operation},
	}
}

// StageFailed wraps an error returned by a caller-supplied function. index is
// the zero-based ordinal of the element being processed by that stage.
func StageFailed(stage string, index int, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeStageFailed,
		Message: fmt.Sprintf("stage %s failed at element %d", stage, index),
		Details: map[string]any{"stage": stage, "index": index},
		Cause:   cause,
	}
}

// InvalidArgument creates a new AppError for an unusable operator argument.
func InvalidArgument(name, reason string) *AppError {
	details := make(map[string]any)
	if name != "" {
		details["argument"] = name
	}
	return &AppError{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("Invalid argument: %s", reason),
		Details: details,
	}
}

// InvalidConfig creates a new AppError for configuration that failed validation.
func InvalidConfig(reason string) *AppError {
	return &AppError{Code: ErrCodeInvalidConfig, Message: reason}
}

// Unavailable creates a new AppError for an accessor that could not produce
// the named value.
func Unavailable(value string) *AppError {
	return &AppError{
		Code:    ErrCodeUnavailable,
		Message: fmt.Sprintf("%s unavailable", value),
		Details: map[string]any{"value": value},
	}
}

// MalformedRecord creates a new AppError for a source record that could not
// be decoded. line is 1-based.
func MalformedRecord(line int, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedRecord,
		Message: fmt.Sprintf("malformed record at line %d: %s", line, reason),
		Details: map[string]any{"line": line},
	}
}

// Internal creates a new AppError for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "An unexpected error occurred.",
		Cause:   cause,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
