package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
var (
	// ErrMissingDependency is returned by constructors given a nil collaborator.
	ErrMissingDependency = errors.New("missing dependency")
)

// ServiceError wraps errors from a service operation with context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "assign_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError. It returns nil for a nil err.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Operation: operation, Message: message, Err: err}
}

func missingDependency(operation, name string) error {
	return &ServiceError{
		Operation: operation,
		Message:   name + " cannot be nil",
		Err:       ErrMissingDependency,
	}
}
