package domain

import (
	"errors"
	"net/http"
)

var (
	ErrNoSession      = errors.New("no active session")
	ErrSessionExpired = errors.New("session expired")
	ErrForbidden      = errors.New("operation not permitted for this session")
)

// ValidationError is raised locally, before any upstream call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ServerError is a failure reported by the shipping API: a non-2xx status
// or a `success:false` payload. Message is the server text, unmodified.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return e.Message
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func AsServerError(err error) (*ServerError, bool) {
	var s *ServerError
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}

// ErrPartialFanOut matches a PartialFailureError with errors.Is.
var ErrPartialFanOut = errors.New("partial failure across zone rows")

// PartialFailureError reports that some per-row calls of a bulk operation
// failed. Err is the first failure; its message is what the user sees.
type PartialFailureError struct {
	Failed int
	Total  int
	Err    error
}

func (e *PartialFailureError) Error() string {
	return e.Err.Error()
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

func (e *PartialFailureError) Is(target error) bool {
	return target == ErrPartialFanOut
}
