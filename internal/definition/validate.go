package definition

import (
	"fmt"
	"slices"

	"github.com/AnatoleLucet/cascade/internal/compare"
	"github.com/AnatoleLucet/cascade/internal/errs"
	"github.com/AnatoleLucet/cascade/internal/invoke"
)

// Validate checks defs, merges them over base and returns the resulting Set.
// The caller's definitions are copied, never modified.
func Validate(defs map[string]Definition, base *Set) (*Set, error) {
	set := &Set{
		names: base.Names(),
		props: make(map[string]*Property, base.Len()+len(defs)),
	}
	for _, name := range set.names {
		p, _ := base.Get(name)
		set.props[name] = p
	}

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		def := defs[name]

		if name == "" {
			return nil, errs.Invalid("property name must not be empty")
		}

		if parent, ok := set.props[name]; ok && def.Type != nil && parent.Type != def.Type {
			return nil, fmt.Errorf("%w: the definition for %s (%s) doesn't match the definition on the base model (%s)",
				errs.ErrIncompatibleDefinition, name, def.Type, parent.Type)
		}

		prop, err := property(name, def)
		if err != nil {
			return nil, err
		}

		if _, ok := set.props[name]; !ok {
			set.names = append(set.names, name)
		}
		set.props[name] = prop
	}

	// dependencies may point at inherited definitions or at ones declared later
	for _, name := range set.names {
		for _, dep := range set.props[name].Dependencies {
			if _, ok := set.props[dep]; !ok {
				return nil, errs.Invalid("missing dependency %q of %q, check if it is mistyped", dep, name)
			}
		}
	}

	return set, nil
}

func property(name string, def Definition) (*Property, error) {
	if def.Type == nil {
		return nil, errs.Invalid("%q has no type, every definition must declare one", name)
	}

	hasCompute := def.Compute != nil
	hasValue := def.Value != nil || (!hasCompute && Nilable(def.Type))

	switch {
	case !hasValue && !hasCompute:
		return nil, errs.Invalid("%q needs a default value or a computing function", name)
	case hasValue && hasCompute:
		return nil, errs.Invalid("%q declares both a value and a computing function", name)
	}

	p := &Property{
		Name:    name,
		Type:    def.Type,
		Compare: def.Compare,
	}
	if p.Compare == nil {
		p.Compare = compare.For(def.Type)
	}

	if hasValue {
		if len(def.Dependencies) > 0 || def.Patch != nil {
			return nil, errs.Invalid("fundamental property %q must not have dependencies or a patch", name)
		}

		if !Assignable(def.Value, def.Type) {
			return nil, errs.Invalid("default of %q has type %T, want %s", name, def.Value, def.Type)
		}

		p.Kind = KindFundamental
		p.Default = def.Value
		return p, nil
	}

	if len(def.Dependencies) == 0 {
		factory, err := invoke.New(def.Compute, 0)
		if err != nil {
			return nil, errs.Invalid("%q: %v (computed properties must list their dependencies explicitly)", name, err)
		}
		if def.Patch != nil {
			return nil, errs.Invalid("%q has no dependencies, a patch is meaningless", name)
		}

		p.Kind = KindFundamental
		p.Factory = factory
		return p, nil
	}

	compute, err := invoke.New(def.Compute, len(def.Dependencies))
	if err != nil {
		return nil, errs.Invalid("%q: %v", name, err)
	}

	p.Kind = KindComputed
	p.Compute = compute
	p.Dependencies = slices.Clone(def.Dependencies)

	if def.Patch != nil {
		patch, err := invoke.New(def.Patch, len(def.Dependencies)+1)
		if err != nil {
			return nil, errs.Invalid("%q patch: %v", name, err)
		}
		p.Patch = patch
	}

	return p, nil
}
