package errors

import (
	"errors"
	"fmt"
)

// Common error types for categorization and handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")

	// ErrServiceUnavailable indicates a required service is unavailable
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrAgentCommunication indicates the call to the remote agent failed
	ErrAgentCommunication = errors.New("agent communication failed")

	// ErrKnowledgeBase indicates a knowledge-base operation failed
	ErrKnowledgeBase = errors.New("knowledge base operation failed")

	// ErrUnsupportedFile indicates an upload with a file type the knowledge base does not accept
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrBusy indicates another request for the same session is still in flight
	ErrBusy = errors.New("request already in progress")
)

// WrapError wraps an error with context message and stack
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput checks if error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsServiceUnavailable checks if error is a service unavailable error
func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// IsUnsupportedFile checks if error is an unsupported file type error
func IsUnsupportedFile(err error) bool {
	return errors.Is(err, ErrUnsupportedFile)
}

// IsBusy checks if error reports an in-flight request
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}
