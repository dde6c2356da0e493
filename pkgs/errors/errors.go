package errors

import (
	"fmt"
)

// Error types for different categories of failures
const (
	// Input/File errors
	ErrInputRead = "INPUT_READ_ERROR"

	// Grammar errors
	ErrGrammarParse = "GRAMMAR_PARSE_ERROR"

	// Reference-engine errors
	ErrCheckerExec   = "CHECKER_EXEC_ERROR"
	ErrCheckerOutput = "CHECKER_OUTPUT_ERROR"

	// Configuration errors
	ErrConfigLoad     = "CONFIG_LOAD_ERROR"
	ErrConfigValidate = "CONFIG_VALIDATION_ERROR"

	// System errors
	ErrWatch = "WATCH_ERROR"
)

// BeanwalkError represents a structured error with type and context
type BeanwalkError struct {
	Type    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *BeanwalkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows error unwrapping
func (e *BeanwalkError) Unwrap() error {
	return e.Cause
}

// New creates a new BeanwalkError
func New(errorType, message string) *BeanwalkError {
	return &BeanwalkError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap creates a new BeanwalkError wrapping an existing error
func Wrap(errorType, message string, cause error) *BeanwalkError {
	return &BeanwalkError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *BeanwalkError) WithContext(key string, value interface{}) *BeanwalkError {
	e.Context[key] = value
	return e
}

// Helper functions for common error scenarios

// NewInputError creates an input-related error
func NewInputError(message string, cause error) *BeanwalkError {
	return Wrap(ErrInputRead, message, cause)
}

// NewCheckerError creates a reference-engine execution error
func NewCheckerError(command string, cause error) *BeanwalkError {
	return Wrap(ErrCheckerExec, fmt.Sprintf("failed to run checker '%s'", command), cause).
		WithContext("command", command)
}

// NewConfigError creates a configuration loading error
func NewConfigError(path string, cause error) *BeanwalkError {
	return Wrap(ErrConfigLoad, fmt.Sprintf("failed to load config '%s'", path), cause).
		WithContext("path", path)
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType string) bool {
	if bwErr, ok := err.(*BeanwalkError); ok {
		return bwErr.Type == errorType
	}
	return false
}
