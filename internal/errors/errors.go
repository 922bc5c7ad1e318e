package errors

import (
	"errors"
	"fmt"
)

// Taxonomy roots. Handlers map these to HTTP status codes; the specific
// sentinels below wrap a root so errors.Is works against either level.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
)

// NotFound kinds.
var (
	ErrCodeNotFound = fmt.Errorf("%w: code", ErrNotFound)
	ErrNoVisits     = fmt.Errorf("%w: no visits recorded for this code", ErrNotFound)
)

// Forbidden kinds.
var (
	ErrNotOwner        = fmt.Errorf("%w: caller does not own this code", ErrForbidden)
	ErrStaticImmutable = fmt.Errorf("%w: static codes cannot be updated", ErrForbidden)
	ErrStaticNoToken   = fmt.Errorf("%w: static codes have no redirect token", ErrForbidden)
)

// Validation kinds.
var (
	ErrInvalidURL  = fmt.Errorf("%w: target must be a well-formed absolute URL", ErrValidation)
	ErrInvalidKind = fmt.Errorf("%w: kind must be 'static' or 'dynamic'", ErrValidation)
)

// ErrTokenGenerationFailed is returned when no unique redirect token could be
// generated within the retry budget.
var ErrTokenGenerationFailed = errors.New("failed to generate unique redirect token")

// ExternalServiceError marks a failure of an external collaborator
// (geo lookup, QR encoder, summarizer). Callers decide per collaborator
// whether it is absorbed or surfaced.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// External wraps err as an ExternalServiceError for the named collaborator.
func External(service string, err error) error {
	return &ExternalServiceError{Service: service, Err: err}
}

// IsExternal reports whether err is (or wraps) an ExternalServiceError.
func IsExternal(err error) bool {
	var ese *ExternalServiceError
	return errors.As(err, &ese)
}
