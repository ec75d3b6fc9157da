// Package errors defines the closed error taxonomy for the bridge.
// Every failure that crosses a component boundary is one of these kinds;
// raw engine or file system errors never leave a component uncategorized.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// FileNotFound indicates the requested file does not exist
	FileNotFound ErrorCode = "FILE_NOT_FOUND"
	// FileNotInProject indicates the file is not inside any open codebase
	FileNotInProject ErrorCode = "FILE_NOT_IN_PROJECT"
	// ElementNotFound indicates no model element exists at the location
	ElementNotFound ErrorCode = "ELEMENT_NOT_FOUND"
	// ElementNotRefactorable indicates the element cannot be the target of the operation
	ElementNotRefactorable ErrorCode = "ELEMENT_NOT_REFACTORABLE"
	// LocationOutOfBounds indicates line or column is outside the file's valid range
	LocationOutOfBounds ErrorCode = "LOCATION_OUT_OF_BOUNDS"
	// IndexingInProgress indicates the codebase is indexing and queries are unreliable
	IndexingInProgress ErrorCode = "INDEXING_IN_PROGRESS"
	// ProjectNotFound indicates no open codebase matched the requested project
	ProjectNotFound ErrorCode = "PROJECT_NOT_FOUND"
	// InvalidInput indicates the request shape or parameter values are invalid
	InvalidInput ErrorCode = "INVALID_INPUT"
	// RefactoringFailed indicates the engine rejected or aborted the mutation
	RefactoringFailed ErrorCode = "REFACTORING_FAILED"
	// PluginNotAvailable indicates the language is supported but its optional
	// component is not currently loaded
	PluginNotAvailable ErrorCode = "PLUGIN_NOT_AVAILABLE"
	// UnsupportedLanguage indicates the language is outside the supported set
	UnsupportedLanguage ErrorCode = "UNSUPPORTED_LANGUAGE"
	// InternalError indicates an unexpected error, reported with a redacted message
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// BridgeError represents a categorized bridge failure with a stable code
// and a human-readable message. The underlying cause is kept for logs and
// never serialized to callers.
type BridgeError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	cause   error
}

// New creates a BridgeError with the given code and message
func New(code ErrorCode, message string) *BridgeError {
	return &BridgeError{Code: code, Message: message}
}

// Newf creates a BridgeError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BridgeError {
	return &BridgeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a BridgeError that records cause for logging.
// The cause text is not exposed through the JSON representation.
func Wrap(code ErrorCode, message string, cause error) *BridgeError {
	return &BridgeError{Code: code, Message: message, cause: cause}
}

// Internal maps an unexpected error to InternalError with a redacted message.
func Internal(cause error) *BridgeError {
	return &BridgeError{
		Code:    InternalError,
		Message: "internal error; see server logs for details",
		cause:   cause,
	}
}

// Error implements the error interface
func (e *BridgeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *BridgeError) Unwrap() error {
	return e.cause
}

// CodeOf extracts the error code from err. Unrecognized errors map to
// InternalError so the boundary always reports a closed-set code.
func CodeOf(err error) ErrorCode {
	var be *BridgeError
	if errors.As(err, &be) {
		return be.Code
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		return ErrorCode("TIMEOUT")
	}
	return InternalError
}

// TimeoutError reports that a writer-context operation did not complete
// within its deadline. It is deliberately not a BridgeError: callers must
// treat timeout as distinct from logical failure because the underlying
// mutation may still be in flight.
type TimeoutError struct {
	Label   string
	Timeout time.Duration
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %q did not complete within %s", e.Label, e.Timeout)
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
