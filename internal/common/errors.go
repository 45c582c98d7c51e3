package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors. These anchor the error taxonomy: the
// backend-unavailable sentinel lives in the oracle package; unusable model
// output and validation-rejected records are not errors at all (nil results
// and dropped records, handled by the fallback ladder).
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrStorageWrite = errors.New("storage write failed")
	ErrValidation   = errors.New("validation failed")
	ErrInternal     = errors.New("internal error")
)

// NewAppError builds an AppError with a stable code for log filtering.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
