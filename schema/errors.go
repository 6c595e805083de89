// Package schema defines error types for descriptor construction and lookup.
package schema

import "fmt"

// NotRegisteredError is returned when a class descriptor is requested for a
// type name that has not been registered.
type NotRegisteredError struct {
	TypeName string
}

// Error returns the error message for NotRegisteredError.
func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("class %q is not registered", e.TypeName)
}

// DuplicateFieldError is returned when a field or relation name is declared
// more than once on a class.
type DuplicateFieldError struct {
	TypeName string
	Field    string
}

// Error returns the error message for DuplicateFieldError.
func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("class %q already declares %q", e.TypeName, e.Field)
}

// ConflictError is returned when a type name is registered twice with
// different descriptors.
type ConflictError struct {
	TypeName string
}

// Error returns the error message for ConflictError.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("class name %q already registered", e.TypeName)
}

// DefinitionError is returned when a parsed class definition is structurally
// invalid (unknown parent, missing identifier, bad discriminator map).
type DefinitionError struct {
	TypeName string
	Message  string
}

// Error returns the error message for DefinitionError.
func (e *DefinitionError) Error() string {
	return fmt.Sprintf("class %q: %s", e.TypeName, e.Message)
}
