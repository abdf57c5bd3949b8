// Package invoke adapts arbitrary Go functions to the uniform call shape used
// by computations, patches and users: a slice of values in, one value out.
package invoke

import (
	"fmt"
	"reflect"
)

// Func is a validated function with a known arity.
type Func struct {
	fn    reflect.Value
	typ   reflect.Type
	fast  func(...any) any
	arity int
}

// New checks that fn is a function accepting arity arguments and returning at
// most one value.
func New(fn any, arity int) (*Func, error) {
	if fn == nil {
		return nil, fmt.Errorf("function is nil")
	}

	if fast, ok := fn.(func(...any) any); ok {
		return &Func{fast: fast, arity: arity}, nil
	}

	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("expected a function, got %s", t)
	}
	if v.IsNil() {
		return nil, fmt.Errorf("function is nil")
	}
	if t.NumOut() > 1 {
		return nil, fmt.Errorf("function must return at most one value, %s returns %d", t, t.NumOut())
	}

	if t.IsVariadic() {
		if t.NumIn()-1 > arity {
			return nil, fmt.Errorf("function %s needs at least %d arguments, only %d provided", t, t.NumIn()-1, arity)
		}
	} else if t.NumIn() != arity {
		return nil, fmt.Errorf("function %s takes %d arguments, %d provided", t, t.NumIn(), arity)
	}

	return &Func{fn: v, typ: t, arity: arity}, nil
}

// Arity is the number of arguments Call expects.
func (f *Func) Arity() int { return f.arity }

// Call invokes the function. Nil arguments become the zero value of the
// parameter type and numbers are converted between numeric kinds.
func (f *Func) Call(args ...any) any {
	if f.fast != nil {
		return f.fast(args...)
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		in[i] = f.argument(i, arg)
	}

	out := f.fn.Call(in)
	if len(out) == 0 {
		return nil
	}
	return out[0].Interface()
}

func (f *Func) argument(i int, arg any) reflect.Value {
	pt := f.paramType(i)

	if arg == nil {
		return reflect.Zero(pt)
	}

	v := reflect.ValueOf(arg)
	switch {
	case v.Type().AssignableTo(pt):
		return v
	case numeric(v.Type()) && numeric(pt):
		return v.Convert(pt)
	default:
		panic(fmt.Sprintf("argument %d: cannot use %s as %s", i, v.Type(), pt))
	}
}

func numeric(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (f *Func) paramType(i int) reflect.Type {
	if f.typ.IsVariadic() && i >= f.typ.NumIn()-1 {
		return f.typ.In(f.typ.NumIn() - 1).Elem()
	}
	return f.typ.In(i)
}
