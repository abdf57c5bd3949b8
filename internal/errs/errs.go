// Package errs holds the error taxonomy shared by every cascade package.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidDefinition is returned when a property definition is structurally malformed.
	ErrInvalidDefinition = errors.New("cascade: invalid definition")

	// ErrIncompatibleDefinition is returned when an overriding definition disagrees
	// with the inherited definition it overrides.
	ErrIncompatibleDefinition = errors.New("cascade: incompatible definition")

	// ErrMalformedGraph is returned when the dependency graph cannot be fully layered.
	ErrMalformedGraph = errors.New("cascade: malformed graph")

	// ErrUse is returned when a user is activated or deactivated on an instance it was never registered with.
	ErrUse = errors.New("cascade: use error")

	// ErrInternal signals a broken engine invariant. You're welcome to report it.
	ErrInternal = errors.New("cascade: internal error")

	ErrNoConstructor        = errors.New("cascade: no matching constructor")
	ErrAmbiguousConstructor = errors.New("cascade: ambiguous constructors")
	ErrUnknownProperty      = errors.New("cascade: unknown property")
	ErrReadOnly             = errors.New("cascade: property is read-only")
	ErrTypeMismatch         = errors.New("cascade: type mismatch")
)

// Invalid wraps ErrInvalidDefinition with a formatted message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDefinition, fmt.Sprintf(format, args...))
}

// Internal wraps ErrInternal with a formatted message.
func Internal(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternal, fmt.Sprintf(format, args...))
}

// MalformedGraphError names the definitions that could not be placed in any layer.
type MalformedGraphError struct {
	Names []string
}

func (e *MalformedGraphError) Error() string {
	return fmt.Sprintf("%s: attempted to create an empty layer of the dependency graph, "+
		"this usually indicates a circular dependency in one of: %s",
		ErrMalformedGraph, strings.Join(e.Names, ", "))
}

func (e *MalformedGraphError) Unwrap() error { return ErrMalformedGraph }

// CallbackError carries a panic recovered from a computation or a user callback
// while a propagation pass was running.
type CallbackError struct {
	// Target is the property name, or "user" for observer callbacks.
	Target string
	Value  any
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("cascade: %s panicked: %v", e.Target, e.Value)
}

// Unwrap exposes the recovered value when it was an error.
func (e *CallbackError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
