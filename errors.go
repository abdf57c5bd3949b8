package cascade

import "github.com/AnatoleLucet/cascade/internal/errs"

var (
	ErrInvalidDefinition      = errs.ErrInvalidDefinition
	ErrIncompatibleDefinition = errs.ErrIncompatibleDefinition
	ErrMalformedGraph         = errs.ErrMalformedGraph
	ErrUse                    = errs.ErrUse
	ErrInternal               = errs.ErrInternal
	ErrNoConstructor          = errs.ErrNoConstructor
	ErrAmbiguousConstructor   = errs.ErrAmbiguousConstructor
	ErrUnknownProperty        = errs.ErrUnknownProperty
	ErrReadOnly               = errs.ErrReadOnly
	ErrTypeMismatch           = errs.ErrTypeMismatch
)

// MalformedGraphError lists the properties that could not be ordered, usually
// because they depend on each other.
type MalformedGraphError = errs.MalformedGraphError

// CallbackError is what an error handler receives when a computation or a
// user panics during propagation.
type CallbackError = errs.CallbackError
