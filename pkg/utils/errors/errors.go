package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an application error.
type ErrorType uint

const (
	// ErrorTypeUnknown represents an unclassified error
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeInvalidArgument represents an invalid argument error
	ErrorTypeInvalidArgument
	// ErrorTypeNotFound represents a not found error
	ErrorTypeNotFound
	// ErrorTypeUnavailable represents required data that could not be resolved
	ErrorTypeUnavailable
	// ErrorTypeTimeout represents a timeout error
	ErrorTypeTimeout
	// ErrorTypeInternal represents an internal error
	ErrorTypeInternal
)

// AppError represents an application error with a type and optional cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error returns the error message.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new unclassified error.
func New(message string) error {
	return &AppError{
		Type:    ErrorTypeUnknown,
		Message: message,
	}
}

// Newf creates a new unclassified error from a format string.
func Newf(format string, args ...interface{}) error {
	return &AppError{
		Type:    ErrorTypeUnknown,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with a message, preserving the original type when the
// wrapped error is already an AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Message: message,
			Err:     err,
		}
	}
	return &AppError{
		Type:    ErrorTypeUnknown,
		Message: message,
		Err:     err,
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// InvalidArgument creates a new InvalidArgument error.
func InvalidArgument(message string) error {
	return &AppError{
		Type:    ErrorTypeInvalidArgument,
		Message: message,
	}
}

// NotFound creates a new NotFound error.
func NotFound(message string) error {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// Unavailable creates a new Unavailable error.
func Unavailable(message string) error {
	return &AppError{
		Type:    ErrorTypeUnavailable,
		Message: message,
	}
}

// Timeout creates a new Timeout error.
func Timeout(message string) error {
	return &AppError{
		Type:    ErrorTypeTimeout,
		Message: message,
	}
}

// Internal creates a new Internal error.
func Internal(message string) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
	}
}

// TypeOf returns the classification of err, or ErrorTypeUnknown for errors
// that are not AppErrors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// IsNotFound reports whether err is classified NotFound.
func IsNotFound(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}

// IsUnavailable reports whether err is classified Unavailable.
func IsUnavailable(err error) bool {
	return TypeOf(err) == ErrorTypeUnavailable
}

// IsInvalidArgument reports whether err is classified InvalidArgument.
func IsInvalidArgument(err error) bool {
	return TypeOf(err) == ErrorTypeInvalidArgument
}
