package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeInvalidRule  ErrorCode = "INVALID_RULE"
	ErrCodeInvalidDate  ErrorCode = "INVALID_DATE"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeQueued       ErrorCode = "QUEUED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrTaskNotFound    = NewError(ErrCodeNotFound, "task not found")
	ErrSubtaskNotFound = NewError(ErrCodeNotFound, "subtask not found")
	ErrInvalidPayload  = NewError(ErrCodeInvalid, "invalid payload")
	ErrInstanceRule    = NewError(ErrCodeInvalidRule, "generated instances cannot carry a recurrence rule")
	ErrUnauthorized    = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrQueued          = NewError(ErrCodeQueued, "storage unavailable, command queued")
)

// InvalidDate classifies a malformed boundary date.
func InvalidDate(value string, err error) *Error {
	return WrapError(ErrCodeInvalidDate, fmt.Sprintf("invalid date %q", value), err)
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// IsClassified reports whether err carries any domain classification.
func IsClassified(err error) bool {
	var dErr *Error
	return errors.As(err, &dErr)
}
