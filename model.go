package cascade

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/AnatoleLucet/cascade/internal/definition"
	"github.com/AnatoleLucet/cascade/internal/graph"
)

// Model is a validated, layered set of properties. It is immutable and safe
// to share: every instance created from it reads the same graph.
type Model struct {
	config *config

	set   *definition.Set
	graph *graph.Graph

	constructors []constructor
}

type constructor struct {
	params []*graph.Node
}

// NewModel validates defs, merged over the base model if any, and orders them
// into dependency layers.
func NewModel(defs Definitions, opts ...Option) (*Model, error) {
	cfg := newConfig(opts)

	var base *definition.Set
	if cfg.base != nil {
		base = cfg.base.set
	}

	set, err := definition.Validate(defs, base)
	if err != nil {
		return nil, err
	}

	g, err := graph.Build(set, cfg.logger.With("model", cfg.name))
	if err != nil {
		return nil, err
	}

	m := &Model{
		config: cfg,
		set:    set,
		graph:  g,
	}

	if err := m.buildConstructors(); err != nil {
		return nil, err
	}

	cfg.logger.Debug("model built",
		"model", cfg.name,
		"properties", set.Len(),
		"layers", len(g.Layers),
		"constructors", len(m.constructors),
	)

	return m, nil
}

// Extend derives a model from m. Constructors are not inherited.
func (m *Model) Extend(defs Definitions, opts ...Option) (*Model, error) {
	return NewModel(defs, append([]Option{WithBase(m)}, opts...)...)
}

func (m *Model) Name() string { return m.config.name }

// Properties lists property names, inherited ones first.
func (m *Model) Properties() []string {
	return m.set.Names()
}

// Layers groups property names by depth. Layer 0 holds the properties with no
// dependencies, every other property sits one layer below its deepest
// dependency.
func (m *Model) Layers() [][]string {
	return m.graph.Names()
}

// Dependents lists the properties computed directly from name.
func (m *Model) Dependents(name string) ([]string, error) {
	node, err := m.node(name)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(node.Dependents()))
	for i, dep := range node.Dependents() {
		out[i] = dep.Name
	}
	return out, nil
}

// Type returns the declared type of a property.
func (m *Model) Type(name string) (reflect.Type, error) {
	node, err := m.node(name)
	if err != nil {
		return nil, err
	}
	return node.Type, nil
}

func (m *Model) node(name string) (*graph.Node, error) {
	node, ok := m.graph.Node(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q on model %s", ErrUnknownProperty, name, m.config.name)
	}
	return node, nil
}

func (m *Model) buildConstructors() error {
	for _, names := range m.config.constructors {
		c := constructor{params: make([]*graph.Node, len(names))}

		for i, name := range names {
			node, ok := m.graph.Node(name)
			if !ok {
				return fmt.Errorf("%w: constructor parameter %q is not a property", ErrInvalidDefinition, name)
			}
			if node.Kind != definition.KindFundamental {
				return fmt.Errorf("%w: constructor parameter %q is computed", ErrInvalidDefinition, name)
			}
			c.params[i] = node
		}

		for _, other := range m.constructors {
			if other.sameSignature(c) {
				return fmt.Errorf("%w: %w: (%s) and (%s) accept the same arguments",
					ErrInvalidDefinition, ErrAmbiguousConstructor, other, c)
			}
		}

		m.constructors = append(m.constructors, c)
	}

	return nil
}

func (c constructor) sameSignature(other constructor) bool {
	if len(c.params) != len(other.params) {
		return false
	}
	for i := range c.params {
		if c.params[i].Type != other.params[i].Type {
			return false
		}
	}
	return true
}

func (c constructor) accepts(args []any) bool {
	if len(args) != len(c.params) {
		return false
	}
	for i, arg := range args {
		if !assignable(arg, c.params[i].Type) {
			return false
		}
	}
	return true
}

func (c constructor) String() string {
	names := make([]string, len(c.params))
	for i, p := range c.params {
		names[i] = p.Name + " " + p.Type.String()
	}
	return strings.Join(names, ", ")
}

func (m *Model) match(args []any) (constructor, error) {
	for _, c := range m.constructors {
		if c.accepts(args) {
			return c, nil
		}
	}

	types := make([]string, len(args))
	for i, arg := range args {
		if arg == nil {
			types[i] = "nil"
		} else {
			types[i] = reflect.TypeOf(arg).String()
		}
	}
	return constructor{}, fmt.Errorf("%w: %s has no constructor taking %d arguments (%s)",
		ErrNoConstructor, m.config.name, len(args), strings.Join(types, ", "))
}
