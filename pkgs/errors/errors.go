package errors

import (
	stderrors "errors"
	"fmt"
)

// Error types for different categories of failures
const (
	// Input errors
	ErrInputRead    = "INPUT_READ_ERROR"
	ErrInputDecode  = "INPUT_DECODE_ERROR"
	ErrFrontend     = "FRONTEND_ERROR"
	ErrNoSystems    = "NO_SYSTEMS_FOUND"
	ErrConfigLoad   = "CONFIG_ERROR"
	ErrOutputWrite  = "OUTPUT_WRITE_ERROR"
	ErrStaleOutput  = "STALE_OUTPUT"
	ErrWatch        = "WATCH_ERROR"
	ErrInvalidInput = "INVALID_INPUT"

	// Analysis and generation errors
	ErrAnalysis       = "ANALYSIS_ERROR"
	ErrRegistry       = "REGISTRY_ERROR"
	ErrStrictDiag     = "STRICT_DIAGNOSTIC"
	ErrCodeGeneration = "CODE_GENERATION_ERROR"
	ErrFormat         = "FORMAT_ERROR"
)

// EcsGenError represents a structured error with type and context
type EcsGenError struct {
	Type    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *EcsGenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows error unwrapping
func (e *EcsGenError) Unwrap() error {
	return e.Cause
}

// New creates a new EcsGenError
func New(errorType, message string) *EcsGenError {
	return &EcsGenError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap creates a new EcsGenError wrapping an existing error
func Wrap(errorType, message string, cause error) *EcsGenError {
	return &EcsGenError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *EcsGenError) WithContext(key string, value interface{}) *EcsGenError {
	e.Context[key] = value
	return e
}

// GetContext returns context value by key
func (e *EcsGenError) GetContext(key string) (interface{}, bool) {
	value, exists := e.Context[key]
	return value, exists
}

// NewInputError creates an input-related error
func NewInputError(path string, cause error) *EcsGenError {
	return Wrap(ErrInputRead, fmt.Sprintf("cannot read %s", path), cause).
		WithContext("path", path)
}

// NewFrontendError creates an error for source that could not be parsed
func NewFrontendError(path string, cause error) *EcsGenError {
	return Wrap(ErrFrontend, fmt.Sprintf("cannot parse %s", path), cause).
		WithContext("path", path)
}

// NewRegistryError creates an error for an inconsistent node registry. It is
// fatal for the affected system only.
func NewRegistryError(system string, cause error) *EcsGenError {
	return Wrap(ErrRegistry, fmt.Sprintf("inconsistent iteration registry in %s", system), cause).
		WithContext("system", system)
}

// NewStaleOutputError reports a generated file that no longer matches its source.
func NewStaleOutputError(path string) *EcsGenError {
	return New(ErrStaleOutput, fmt.Sprintf("%s is out of date; run ecsgen generate", path)).
		WithContext("path", path)
}

// TypeOf returns the type of the first EcsGenError in err's chain.
func TypeOf(err error) (string, bool) {
	var e *EcsGenError
	if stderrors.As(err, &e) {
		return e.Type, true
	}
	return "", false
}

// IsErrorType checks if an error chain contains an EcsGenError of a specific type
func IsErrorType(err error, errorType string) bool {
	t, ok := TypeOf(err)
	return ok && t == errorType
}
