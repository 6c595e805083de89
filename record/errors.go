// Package record defines error types for field access, state transitions,
// and reference assignment.
package record

import (
	"fmt"

	"github.com/CaliLuke/go-record/schema"
)

// UnknownFieldError is returned when the internal unchecked accessor hits a
// name that is neither a loaded field nor a loaded reference. This signals a
// programming error, not a user-recoverable condition.
type UnknownFieldError struct {
	TypeName string
	Field    string
}

// Error returns the error message for UnknownFieldError.
func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s: unknown field %q", e.TypeName, e.Field)
}

// InvalidFieldError is returned when a public accessor or mutator is given a
// name the class does not declare as either a field or a relation.
type InvalidFieldError struct {
	TypeName string
	Field    string
}

// Error returns the error message for InvalidFieldError.
func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("%s: %q is not a declared field or relation", e.TypeName, e.Field)
}

// InvalidStateError is returned when a transition to an unrecognized
// lifecycle state is attempted.
type InvalidStateError struct {
	State State
}

// Error returns the error message for InvalidStateError.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid record state %d", int(e.State))
}

// InvalidReferenceError is returned when the value supplied to a reference
// setter does not match the relation's required shape: a collection for
// to-many and many-to-many relations, a single record for to-one.
type InvalidReferenceError struct {
	TypeName string
	Relation string
	Shape    schema.RelationShape
}

// Error returns the error message for InvalidReferenceError.
func (e *InvalidReferenceError) Error() string {
	want := "a *Record"
	if e.Shape == schema.OneToMany || e.Shape == schema.ManyToMany {
		want = "a *Collection"
	}
	return fmt.Sprintf("%s: %s relation %q requires %s", e.TypeName, e.Shape, e.Relation, want)
}

// UnknownReferenceError is returned when a reference is requested that was
// never loaded or set.
type UnknownReferenceError struct {
	TypeName string
	Name     string
}

// Error returns the error message for UnknownReferenceError.
func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("%s: reference %q is not loaded", e.TypeName, e.Name)
}

// EncodingError is returned when a field value cannot be encoded for the
// write payload or the binary snapshot, or decoded back.
type EncodingError struct {
	TypeName string
	Field    string
	Cause    error
}

// Error returns the error message for EncodingError.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding %s.%s: %v", e.TypeName, e.Field, e.Cause)
}

// Unwrap returns the underlying cause of the EncodingError.
func (e *EncodingError) Unwrap() error {
	return e.Cause
}
