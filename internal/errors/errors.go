// Package errors provides centralized error definitions and error handling
// utilities for the winremote codebase. It defines sentinel errors for the
// task execution core, semantic error types, and classification helpers.
//
// Creating errors:
//
//	// Semantic error
//	err := errors.NewNotFoundError("task", "a1b2c3d4e5f6")
//
//	// Tool error with context
//	err := errors.NewToolError("command exited non-zero", cause).WithTool("Shell")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrTaskNotFound) { ... }
//
//	var toolErr *errors.ToolError
//	if errors.As(err, &toolErr) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Task lifecycle sentinel errors
var (
	// ErrTaskNotFound indicates that a task id is unknown to the registry.
	ErrTaskNotFound = New("task not found")
	// ErrAlreadyTerminal indicates a cancel request against a finished task.
	ErrAlreadyTerminal = New("task already in terminal state")
	// ErrInvalidTransition indicates an attempted transition out of order.
	ErrInvalidTransition = New("invalid status transition")
	// ErrCancelled indicates that a task ended via cancellation.
	ErrCancelled = New("task cancelled")
	// ErrUnknownCategory indicates a submission with an unrecognized category.
	ErrUnknownCategory = New("unknown tool category")
)

// Tool dispatch sentinel errors
var (
	// ErrToolNotFound indicates that no tool is registered under a name.
	ErrToolNotFound = New("tool not found")
	// ErrToolDisabled indicates that a tool is excluded by tier configuration.
	ErrToolDisabled = New("tool disabled by configuration")
)

// Server sentinel errors
var (
	// ErrUnauthorized indicates a missing or invalid auth key.
	ErrUnauthorized = New("unauthorized")
	// ErrForbidden indicates a client outside the IP allowlist.
	ErrForbidden = New("forbidden")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
)

// ToolError represents a failure raised inside a wrapped tool operation.
// It is always captured at the executor boundary and converted into a
// failed task result, never propagated.
//
// Example:
//
//	err := errors.NewToolError("command exited non-zero", cause).WithTool("Shell")
//	fmt.Println(err) // "tool error [tool=Shell]: command exited non-zero: exit status 1"
type ToolError struct {
	message  string
	cause    error
	Tool     string
	Category string
}

// NewToolError creates a new ToolError.
func NewToolError(message string, cause error) *ToolError {
	return &ToolError{message: message, cause: cause}
}

// WithTool adds the tool name to the error context.
func (e *ToolError) WithTool(name string) *ToolError {
	e.Tool = name
	return e
}

// WithCategory adds the concurrency category to the error context.
func (e *ToolError) WithCategory(category string) *ToolError {
	e.Category = category
	return e
}

// Error returns the formatted error message.
func (e *ToolError) Error() string {
	var parts []string
	if e.Tool != "" {
		parts = append(parts, fmt.Sprintf("tool=%s", e.Tool))
	}
	if e.Category != "" {
		parts = append(parts, fmt.Sprintf("category=%s", e.Category))
	}

	prefix := "tool error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("tool error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Unwrap returns the underlying error.
func (e *ToolError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *ToolError) Is(target error) bool {
	if _, ok := target.(*ToolError); ok {
		return true
	}
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("task", "a1b2c3d4e5f6")
//	fmt.Println(err) // "task 'a1b2c3d4e5f6' not found"
type NotFoundError struct {
	ResourceType string
	ResourceID   string
	cause        error
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{ResourceType: resourceType, ResourceID: resourceID}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Unwrap returns the underlying error.
func (e *NotFoundError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	if errors.Is(target, ErrTaskNotFound) && e.ResourceType == "task" {
		return true
	}
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var notFound *NotFoundError
	return As(err, &notFound) || Is(err, ErrTaskNotFound) || Is(err, ErrToolNotFound)
}

// IsCancelled returns true if the error indicates a cancelled task,
// including an operation that returned its context's cancellation error.
func IsCancelled(err error) bool {
	if err == nil {
		return false
	}
	return Is(err, ErrCancelled)
}

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to submit task")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to cancel task %s", taskID)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
