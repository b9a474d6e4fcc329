// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// Common engine errors
var (
	ErrBatchCancelled = errors.New("batch cancelled")
	ErrNoProcessFunc  = errors.New("process function is required")
	ErrJobPanic       = errors.New("job processing panicked")
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeCancelled ErrorCode = "CANCELLED"
	ErrCodeJobFailed ErrorCode = "JOB_FAILED"
	ErrCodePanic     ErrorCode = "PANIC"
	ErrCodeRateLimit ErrorCode = "RATE_LIMIT"
)

// EngineError wraps errors with additional context
type EngineError struct {
	Code       ErrorCode
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}
