package domain

import (
	"errors"
	"net/http"
)

// Error kinds shared by the store, service and handler layers
var (
	// ErrURLRequired is returned when the original URL is missing or empty
	ErrURLRequired = errors.New("URL is required")

	// ErrURLNotFound is returned when a short id doesn't exist
	ErrURLNotFound = errors.New("URL not found")

	// ErrShortIDTaken is returned by a store when the unique constraint on short_id rejects an insert
	ErrShortIDTaken = errors.New("short id already exists")

	// ErrGenerationExhausted is returned when every create attempt hit a taken short id
	ErrGenerationExhausted = errors.New("short id generation exhausted")
)

// AppError wraps errors with additional context for better debugging
type AppError struct {
	Err        error  // Original error
	Message    string // User-friendly message
	StatusCode int    // HTTP status code
	Internal   bool   // Whether to log as internal error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal && e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a 400 error for missing input
func NewValidationError(message string) *AppError {
	return &AppError{
		Err:        ErrURLRequired,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Internal:   false,
	}
}

// NewNotFoundError creates a 404 error carrying the client-facing message
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Err:        ErrURLNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
		Internal:   false,
	}
}

// NewInternalError wraps an unexpected store failure
func NewInternalError(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "store error",
		StatusCode: http.StatusInternalServerError,
		Internal:   true,
	}
}

// IsInternal reports whether err carries an internal AppError
func IsInternal(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Internal
}
