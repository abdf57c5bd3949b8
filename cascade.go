// Package cascade is a reactive property-graph engine.
//
// A model is declared from property definitions. Fundamental properties hold
// state and can be set, computed properties derive their value from other
// properties. Instances of a model cache property values and, whenever a
// fundamental property changes, propagate the change to the computed
// properties and users depending on it, in dependency order and recomputing
// each affected property at most once.
//
//	square, _ := cascade.NewModel(cascade.Definitions{
//		"side": {Type: cascade.TypeOf[float64](), Value: 0.0},
//		"area": {
//			Type:         cascade.TypeOf[float64](),
//			Dependencies: []string{"side"},
//			Compute:      func(side float64) float64 { return side * side },
//		},
//	})
//
//	sq, _ := square.New()
//	sq.Use(cascade.NewUser([]string{"area"}, func(area float64) {
//		fmt.Println("area is", area)
//	}))
//	sq.Set("side", 5.0) // area is 25
package cascade

import (
	"reflect"

	"github.com/AnatoleLucet/cascade/internal/definition"
)

// Definition describes one property of a model. Exactly one of Value and
// Compute must be set.
//
// A Compute function with Dependencies derives the property from them: it
// receives their values in order and returns the new value. A Compute function
// without dependencies is a default factory, called once per instance.
type Definition = definition.Definition

// Definitions maps property names to their definition.
type Definitions map[string]Definition

// TypeOf returns the reflect.Type of T, for use in Definition.Type.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// assignable reports whether v can be stored in a property of type t.
func assignable(v any, t reflect.Type) bool {
	return definition.Assignable(v, t)
}
