package cascade

import (
	"fmt"

	"github.com/AnatoleLucet/cascade/internal/definition"
	"github.com/AnatoleLucet/cascade/internal/graph"
	"github.com/AnatoleLucet/cascade/internal/runtime"
)

// Instance is a live copy of a model. It is safe for concurrent use, and
// computations and users may read or write the instance invoking them.
type Instance struct {
	model   *Model
	runtime *runtime.Instance
}

// New creates an instance, passing args to the first matching constructor.
// Constructor arguments are written as one batch.
func (m *Model) New(args ...any) (*Instance, error) {
	c, err := m.match(args)
	if err != nil {
		return nil, err
	}

	in := &Instance{model: m}

	cfg := runtime.Config{
		Model:    m.config.name,
		Logger:   m.config.logger,
		Recorder: m.config.recorder,
	}
	if handler := m.config.onError; handler != nil {
		cfg.OnError = func(err error) { handler(in, err) }
	}
	in.runtime = runtime.New(m.graph, cfg)

	if len(args) > 0 {
		in.runtime.Batch(func() {
			for i, param := range c.params {
				in.runtime.Set(param, args[i])
			}
		})
	}

	return in, nil
}

func (in *Instance) Model() *Model { return in.model }

// Get returns the current value of a property. Computed properties nobody
// observes are evaluated on demand.
func (in *Instance) Get(name string) (any, error) {
	node, err := in.model.node(name)
	if err != nil {
		return nil, err
	}
	return in.runtime.Get(node), nil
}

// Set writes a fundamental property. Setting a value equal to the current one
// does nothing, otherwise dependents are updated and users invoked, right away
// or when the last fence is lifted.
func (in *Instance) Set(name string, value any) error {
	node, err := in.settable(name, value)
	if err != nil {
		return err
	}

	in.runtime.Set(node, value)
	return nil
}

func (in *Instance) settable(name string, value any) (*graph.Node, error) {
	node, err := in.model.node(name)
	if err != nil {
		return nil, err
	}

	if node.Kind == definition.KindComputed {
		return nil, fmt.Errorf("%w: %q is computed", ErrReadOnly, name)
	}
	if !assignable(value, node.Type) {
		return nil, fmt.Errorf("%w: cannot use %T as %s for %q", ErrTypeMismatch, value, node.Type, name)
	}

	return node, nil
}

// Use registers u on the instance and invokes it once with the current
// values of its dependencies, returning what it returns. From then on u is
// invoked whenever one of them changes. Using a deactivated user reactivates
// it without invoking it, using an active one does nothing.
func (in *Instance) Use(u *User) (any, error) {
	if u.err != nil {
		return nil, u.err
	}

	deps := make([]*graph.Node, len(u.deps))
	for i, name := range u.deps {
		node, err := in.model.node(name)
		if err != nil {
			return nil, err
		}
		deps[i] = node
	}

	return in.runtime.Use(u, deps, u.fn), nil
}

// Activate resumes a user that was deactivated. It is not invoked until one
// of its dependencies changes.
func (in *Instance) Activate(u *User) error {
	return in.runtime.Activate(u)
}

// Deactivate stops invoking u. Properties only u was observing stop being
// recomputed eagerly.
func (in *Instance) Deactivate(u *User) error {
	return in.runtime.Deactivate(u)
}

// Active reports whether u is registered on the instance and not deactivated.
func (in *Instance) Active(u *User) bool {
	_, active := in.runtime.Registered(u)
	return active
}

// Observers returns how many active users read name, directly or through
// other properties. Properties with no observer are only computed on read.
func (in *Instance) Observers(name string) (int, error) {
	node, err := in.model.node(name)
	if err != nil {
		return 0, err
	}
	return in.runtime.Observers(node), nil
}

// Fenced reports whether propagation is currently deferred.
func (in *Instance) Fenced() bool { return in.runtime.Fenced() > 0 }

// Fence defers propagation until the matching Unfence. Fences nest.
func (in *Instance) Fence() { in.runtime.Fence() }

// Unfence lifts a fence. Lifting the last one propagates every change made
// while fenced in a single pass.
func (in *Instance) Unfence() { in.runtime.Unfence() }

// Batch runs fn fenced. The instance is locked for the whole call, fn must
// not wait on other goroutines using it.
func (in *Instance) Batch(fn func()) { in.runtime.Batch(fn) }

// MustGet returns a property value as a T and panics if the property is
// unknown or holds another type.
func MustGet[T any](in *Instance, name string) T {
	v, err := in.Get(name)
	if err != nil {
		panic(err)
	}
	return as[T](v)
}
