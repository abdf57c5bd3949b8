// Package definition validates author-supplied property definitions and merges
// them with inherited ones into an immutable, ordered Set.
package definition

import (
	"reflect"

	"github.com/AnatoleLucet/cascade/internal/compare"
	"github.com/AnatoleLucet/cascade/internal/invoke"
)

// Definition is a property definition as written by a model author.
type Definition struct {
	// Type tags the property. It selects the default comparator and must match
	// the type of any inherited definition it overrides.
	Type reflect.Type

	// Value is the literal default of a fundamental property. It must be
	// assignable to Type. A definition with neither Value nor Compute whose
	// Type is nilable (pointer, interface, map, slice, func, chan) defaults
	// to nil.
	Value any

	// Compute derives the property from Dependencies. A Compute function with no
	// dependencies is a default factory, called once per instance.
	Compute any

	// Dependencies lists, in argument order, the properties Compute reads.
	Dependencies []string

	// Compare overrides the default comparator for Type.
	Compare func(a, b any) bool

	// Patch updates a computed value incrementally: (old, deps...) -> new.
	// It is used instead of Compute once a previous value exists.
	Patch any
}

type Kind int

const (
	KindFundamental Kind = iota
	KindComputed
)

func (k Kind) String() string {
	switch k {
	case KindFundamental:
		return "fundamental"
	case KindComputed:
		return "computed"
	default:
		return "unknown"
	}
}

// Property is a validated definition. It is never mutated once its Set is built.
type Property struct {
	Name string
	Type reflect.Type
	Kind Kind

	// fundamental
	Default any
	Factory *invoke.Func

	// computed
	Compute      *invoke.Func
	Patch        *invoke.Func
	Dependencies []string

	Compare compare.Func
}

// Edges returns the distinct dependency names in first-seen order.
func (p *Property) Edges() []string {
	seen := make(map[string]struct{}, len(p.Dependencies))
	edges := make([]string, 0, len(p.Dependencies))
	for _, dep := range p.Dependencies {
		if _, ok := seen[dep]; ok {
			continue
		}
		seen[dep] = struct{}{}
		edges = append(edges, dep)
	}
	return edges
}

// Initial returns the value a fresh instance starts with.
func (p *Property) Initial() any {
	if p.Factory != nil {
		return p.Factory.Call()
	}
	return p.Default
}

// Set is an ordered collection of validated properties.
type Set struct {
	names []string
	props map[string]*Property
}

// Names returns property names in declaration order: inherited names first.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Get looks up a property by name.
func (s *Set) Get(name string) (*Property, bool) {
	if s == nil {
		return nil, false
	}
	p, ok := s.props[name]
	return p, ok
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Nilable reports whether nil is a valid value of type t.
func Nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// Assignable reports whether v can be stored in a property of type t.
func Assignable(v any, t reflect.Type) bool {
	if v == nil {
		return Nilable(t)
	}
	return reflect.TypeOf(v).AssignableTo(t)
}
