package paginate

import (
	"errors"
	"fmt"
)

// InvalidPageSizeError reports a non-positive page size. It indicates a
// caller bug.
type InvalidPageSizeError struct {
	// PageSize is the rejected value.
	PageSize int
}

// Error returns the error string.
func (e *InvalidPageSizeError) Error() string {
	return fmt.Sprintf("paginate: page size must be positive, got %d", e.PageSize)
}

// IsInvalidPageSize returns true if the error is an InvalidPageSizeError.
func IsInvalidPageSize(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidPageSizeError
	return errors.As(err, &e)
}

// ParameterCollisionError reports that a synthesized filter parameter name
// is already bound in the caller's parameter map. Callers must not use the
// reserved "_paged_" naming scheme for their own parameters.
type ParameterCollisionError struct {
	// Name is the colliding parameter name.
	Name string
}

// Error returns the error string.
func (e *ParameterCollisionError) Error() string {
	return fmt.Sprintf("paginate: synthesized parameter %q collides with a caller-supplied parameter", e.Name)
}

// IsParameterCollision returns true if the error is a
// ParameterCollisionError.
func IsParameterCollision(err error) bool {
	if err == nil {
		return false
	}
	var e *ParameterCollisionError
	return errors.As(err, &e)
}

// MalformedQueryError reports a query document the planner cannot work
// with, such as one without a single root vertex selection. Structural
// query validation belongs to the parser; this error only covers the
// minimal shape the planner relies on.
type MalformedQueryError struct {
	// Reason describes what is missing or unexpected.
	Reason string
}

// Error returns the error string.
func (e *MalformedQueryError) Error() string {
	return fmt.Sprintf("paginate: malformed query: %s", e.Reason)
}

// IsMalformedQuery returns true if the error is a MalformedQueryError.
func IsMalformedQuery(err error) bool {
	if err == nil {
		return false
	}
	var e *MalformedQueryError
	return errors.As(err, &e)
}
