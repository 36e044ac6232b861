package engine

import (
	"errors"
	"fmt"
)

// Common engine errors.
var (
	// ErrEngineUnavailable is returned when a backend is not installed or
	// its model server is not reachable. Availability is probed explicitly
	// before use; the condition is recoverable and re-checked on a later call.
	ErrEngineUnavailable = errors.New("engine not installed")

	// ErrInitFailed is returned when an available backend fails during
	// construction. Construction is retried on a later call.
	ErrInitFailed = errors.New("engine initialization failed")

	// ErrRecognitionFailed indicates the backend raised or returned
	// malformed output during actual recognition.
	ErrRecognitionFailed = errors.New("recognition failed")

	// ErrUnknownEngine is returned for an engine name outside the fixed
	// enumeration.
	ErrUnknownEngine = errors.New("unknown engine")
)

// EngineError wraps errors with context about which engine and operation failed.
type EngineError struct {
	// Op is the operation that failed (e.g., "Get", "Recognize").
	Op string

	// Engine is the identifier of the engine involved.
	Engine ID

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("engine %s: %s failed: %s: %v", e.Engine, e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("engine %s: %s failed: %v", e.Engine, e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *EngineError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewEngineError creates a new EngineError.
func NewEngineError(op string, id ID, err error, details string) *EngineError {
	return &EngineError{
		Op:      op,
		Engine:  id,
		Err:     err,
		Details: details,
	}
}
