// Package compare picks the equality test used to decide whether a property changed.
package compare

import (
	"reflect"
	"time"
)

// Func reports whether two property values are equal.
type Func func(a, b any) bool

var timeType = reflect.TypeFor[time.Time]()

// For returns the default comparator for values declared with type t.
func For(t reflect.Type) Func {
	if t == nil {
		return Default
	}

	switch {
	case t == timeType:
		return Times
	case t.Kind() == reflect.Slice || t.Kind() == reflect.Array:
		return Sequences
	case t.Kind() == reflect.Interface:
		// the declared type says nothing, decide on the dynamic values
		return Default
	case t.Comparable():
		return Scalars
	default:
		return Deep
	}
}

// Default dispatches on the dynamic types of a and b.
func Default(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	switch {
	case ta == timeType:
		return Times(a, b)
	case ta.Kind() == reflect.Slice || ta.Kind() == reflect.Array:
		return Sequences(a, b)
	case ta.Comparable():
		return Scalars(a, b)
	default:
		return Deep(a, b)
	}
}

// Times compares two time.Time values by instant.
func Times(a, b any) bool {
	ta, aok := a.(time.Time)
	tb, bok := b.(time.Time)
	if !aok || !bok {
		return Default(a, b)
	}
	return ta.Equal(tb)
}

// Sequences compares slices and arrays element by element, recursing with Default.
// A nil slice and an empty slice are equal.
func Sequences(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !isSequence(va) || !isSequence(vb) {
		return Scalars(a, b)
	}

	if va.Len() != vb.Len() {
		return false
	}

	for i := 0; i < va.Len(); i++ {
		if !Default(va.Index(i).Interface(), vb.Index(i).Interface()) {
			return false
		}
	}

	return true
}

// Scalars compares with ==, falling back to reflect.DeepEqual when the dynamic
// values are not comparable (e.g. a slice stored behind an interface type).
func Scalars(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return reflect.DeepEqual(a, b)
	}

	return a == b
}

// Deep compares with reflect.DeepEqual.
func Deep(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

func isSequence(v reflect.Value) bool {
	return v.IsValid() && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array)
}
