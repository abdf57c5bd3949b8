package cascade

import (
	"fmt"
	"reflect"

	"github.com/AnatoleLucet/cascade/internal/graph"
)

// Prop is a typed handle on one property of a model, resolved once and
// usable with every instance of that model or of models extending it.
type Prop[T any] struct {
	node *graph.Node
}

// PropOf resolves name on m and checks that its values are T.
func PropOf[T any](m *Model, name string) (Prop[T], error) {
	node, err := m.node(name)
	if err != nil {
		return Prop[T]{}, err
	}

	if want := reflect.TypeFor[T](); !node.Type.AssignableTo(want) {
		return Prop[T]{}, fmt.Errorf("%w: %q holds %s, not %s", ErrTypeMismatch, name, node.Type, want)
	}

	return Prop[T]{node: node}, nil
}

func (p Prop[T]) Name() string { return p.node.Name }

// Get reads the property on in.
func (p Prop[T]) Get(in *Instance) T {
	node, err := in.model.node(p.node.Name)
	if err != nil {
		panic(err)
	}
	return as[T](in.runtime.Get(node))
}

// Set writes the property on in, see Instance.Set.
func (p Prop[T]) Set(in *Instance, value T) error {
	return in.Set(p.node.Name, value)
}
