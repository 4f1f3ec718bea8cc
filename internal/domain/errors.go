package domain

import "errors"

// Error taxonomy shared by services and the HTTP layer. Services wrap these
// with context using fmt.Errorf("...: %w", err); callers match with errors.Is.
var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrForbidden        = errors.New("access denied")
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrSignatureInvalid = errors.New("invalid payment signature")
	ErrConflict         = errors.New("conflict")
	ErrUpstreamFailure  = errors.New("upstream service failure")
)

// ValidationError carries the offending field so handlers can report it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError that matches ErrValidation.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
