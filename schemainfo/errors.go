package schemainfo

import (
	"errors"
	"fmt"
)

// ErrInvalidBinding is the sentinel matched by every structural binding
// error. A binding error indicates a malformed static binding and is never
// retryable without fixing the input.
var ErrInvalidBinding = errors.New("schemainfo: invalid schema binding")

// MissingTableError reports a type with no bound table.
type MissingTableError struct {
	// Type is the schema type missing a table.
	Type string
}

// Error returns the error string.
func (e *MissingTableError) Error() string {
	return fmt.Sprintf("schemainfo: no table bound for type %q", e.Type)
}

// Is reports whether the target error matches ErrInvalidBinding.
func (e *MissingTableError) Is(err error) bool { return err == ErrInvalidBinding }

// MissingPrimaryKeyError reports a bound table without a primary key.
type MissingPrimaryKeyError struct {
	// Type is the schema type whose table lacks a primary key.
	Type string
	// Table is the name of the offending table.
	Table string
}

// Error returns the error string.
func (e *MissingPrimaryKeyError) Error() string {
	return fmt.Sprintf("schemainfo: table %q bound for type %q has no primary key", e.Table, e.Type)
}

// Is reports whether the target error matches ErrInvalidBinding.
func (e *MissingPrimaryKeyError) Is(err error) bool { return err == ErrInvalidBinding }

// MissingColumnError reports a property field with no same-named column on
// its type's table.
type MissingColumnError struct {
	// Type is the schema type declaring the field.
	Type string
	// Field is the property field missing a column.
	Field string
}

// Error returns the error string.
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("schemainfo: table for type %q has no column for property field %q", e.Type, e.Field)
}

// Is reports whether the target error matches ErrInvalidBinding.
func (e *MissingColumnError) Is(err error) bool { return err == ErrInvalidBinding }

// MissingJoinDescriptorError reports a vertex field with no join
// descriptor.
type MissingJoinDescriptorError struct {
	// Type is the schema type declaring the field.
	Type string
	// Field is the vertex field missing a join descriptor.
	Field string
}

// Error returns the error string.
func (e *MissingJoinDescriptorError) Error() string {
	return fmt.Sprintf("schemainfo: no join descriptor for vertex field %q on type %q", e.Field, e.Type)
}

// Is reports whether the target error matches ErrInvalidBinding.
func (e *MissingJoinDescriptorError) Is(err error) bool { return err == ErrInvalidBinding }

// TypeEquivalenceError reports a type-equivalence hint whose key or value
// does not resolve to the required kind of schema entity.
type TypeEquivalenceError struct {
	// Key is the hint key (an object or interface type name).
	Key string
	// Value is the hint value (a union type name).
	Value string
	// Reason describes which side failed to resolve and why.
	Reason string
}

// Error returns the error string.
func (e *TypeEquivalenceError) Error() string {
	return fmt.Sprintf("schemainfo: type equivalence hint %q -> %q: %s", e.Key, e.Value, e.Reason)
}

// Is reports whether the target error matches ErrInvalidBinding.
func (e *TypeEquivalenceError) Is(err error) bool { return err == ErrInvalidBinding }

// IsBindingError returns true if the error is a structural binding error.
func IsBindingError(err error) bool {
	return errors.Is(err, ErrInvalidBinding)
}

// UnknownVertexError reports a name that is not a vertex class in the
// schema graph. It indicates a caller bug, not bad data.
type UnknownVertexError struct {
	// Name is the unresolved vertex class name.
	Name string
}

// Error returns the error string.
func (e *UnknownVertexError) Error() string {
	return fmt.Sprintf("schemainfo: unknown vertex class %q", e.Name)
}

// IsUnknownVertex returns true if the error is an UnknownVertexError.
func IsUnknownVertex(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownVertexError
	return errors.As(err, &e)
}

// UnknownEdgeError reports a name that is not an edge class in the schema
// graph. It indicates a caller bug, not bad data.
type UnknownEdgeError struct {
	// Name is the unresolved edge class name.
	Name string
}

// Error returns the error string.
func (e *UnknownEdgeError) Error() string {
	return fmt.Sprintf("schemainfo: unknown edge class %q", e.Name)
}

// IsUnknownEdge returns true if the error is an UnknownEdgeError.
func IsUnknownEdge(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownEdgeError
	return errors.As(err, &e)
}
