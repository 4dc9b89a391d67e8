package common

import (
	"errors"
	"fmt"
)

// Error codes carried by AppError.
const (
	CodeValidation    = "validation_error"
	CodeDuplicateCode = "duplicate_code"
	CodeNotFound      = "not_found"
)

var (
	// ErrValidation matches any AppError raised for out-of-range construction parameters.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateCode matches any AppError raised when a code is registered twice.
	ErrDuplicateCode = errors.New("duplicate code")
	// ErrNotFound matches any AppError raised for an unknown code.
	ErrNotFound = errors.New("not found")
)

var sentinels = map[string]error{
	CodeValidation:    ErrValidation,
	CodeDuplicateCode: ErrDuplicateCode,
	CodeNotFound:      ErrNotFound,
}

// AppError represents an error with an attached code.
type AppError struct {
	Code    string
	Message string
	Err     error
	Details any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Message
	}
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is the sentinel associated with the error code.
func (e *AppError) Is(target error) bool {
	if e == nil {
		return false
	}
	sentinel, ok := sentinels[e.Code]
	return ok && sentinel == target
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// ValidationError reports an out-of-range construction parameter.
func ValidationError(format string, args ...any) *AppError {
	return NewAppError(CodeValidation, fmt.Sprintf(format, args...), nil)
}

// DuplicateCodeError reports that kind/code is already registered.
func DuplicateCodeError(kind, code string) *AppError {
	return NewAppError(CodeDuplicateCode, fmt.Sprintf("%s %q already exists", kind, code), nil)
}

// NotFoundError reports that kind/code is unknown.
func NotFoundError(kind, code string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s %q not found", kind, code), nil)
}
