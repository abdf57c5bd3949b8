// Package hcldef reads model definitions from HCL files:
//
//	model "Rectangle" {}
//
//	property "width"  { type = number  value = 0 }
//	property "height" { type = number  value = 0 }
//	property "area"   { type = number  value = width * height }
//
//	constructor { params = ["width", "height"] }
//
// A value referencing no other property is a literal default. A value
// referencing properties is a computation over them.
package hcldef

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/AnatoleLucet/cascade/internal/definition"
	"github.com/AnatoleLucet/cascade/internal/errs"
)

// File is the content of one model file.
type File struct {
	// Name is the label of the model block, empty when there is none.
	Name string

	Definitions  map[string]definition.Definition
	Constructors [][]string
}

type fileRoot struct {
	Models       []*modelBlock       `hcl:"model,block"`
	Properties   []*propertyBlock    `hcl:"property,block"`
	Constructors []*constructorBlock `hcl:"constructor,block"`
}

type modelBlock struct {
	Name string `hcl:"name,label"`
}

type propertyBlock struct {
	Name         string         `hcl:"name,label"`
	Type         hcl.Expression `hcl:"type"`
	Value        hcl.Expression `hcl:"value"`
	Dependencies []string       `hcl:"dependencies,optional"`
}

type constructorBlock struct {
	Params []string `hcl:"params"`
}

// Load parses the model file at path.
func Load(path string, logger *slog.Logger) (*File, error) {
	f, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", errs.ErrInvalidDefinition, path, diags)
	}

	return decode(f, path, logger)
}

// Parse parses src as a model file. filename only appears in diagnostics.
func Parse(src []byte, filename string, logger *slog.Logger) (*File, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", errs.ErrInvalidDefinition, filename, diags)
	}

	return decode(f, filename, logger)
}

type declared struct {
	block *propertyBlock
	ty    cty.Type
}

func decode(f *hcl.File, filename string, logger *slog.Logger) (*File, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to decode %s: %w", errs.ErrInvalidDefinition, filename, diags)
	}

	out := &File{
		Definitions: make(map[string]definition.Definition, len(root.Properties)),
	}

	switch len(root.Models) {
	case 0:
	case 1:
		out.Name = root.Models[0].Name
	default:
		return nil, errs.Invalid("%s declares %d models, a file holds at most one", filename, len(root.Models))
	}

	// types first, computed values are checked against their dependencies' types
	types := make(map[string]declared, len(root.Properties))
	for _, p := range root.Properties {
		if _, ok := types[p.Name]; ok {
			return nil, errs.Invalid("property %q is declared twice in %s", p.Name, filename)
		}

		ty, _, diags := typeOf(p.Type)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%w: type of %q: %w", errs.ErrInvalidDefinition, p.Name, diags)
		}
		types[p.Name] = declared{block: p, ty: ty}
	}

	for _, p := range root.Properties {
		def, err := property(p, types)
		if err != nil {
			return nil, err
		}
		out.Definitions[p.Name] = def

		logger.Debug("decoded property", "file", filename, "property", p.Name, "dependencies", def.Dependencies)
	}

	for _, c := range root.Constructors {
		out.Constructors = append(out.Constructors, c.Params)
	}

	logger.Debug("model file loaded", "file", filename, "model", out.Name,
		"properties", len(out.Definitions), "constructors", len(out.Constructors))
	return out, nil
}

func property(p *propertyBlock, types map[string]declared) (definition.Definition, error) {
	ty, goTy, _ := typeOf(p.Type)

	deps := p.Dependencies
	if deps == nil {
		deps = references(p.Value)
	}

	if len(deps) == 0 {
		value, err := literal(p.Name, p.Value, ty)
		if err != nil {
			return definition.Definition{}, err
		}
		return definition.Definition{Type: goTy, Value: value}, nil
	}

	if err := check(p.Name, p.Value, ty, deps, types); err != nil {
		return definition.Definition{}, err
	}

	return definition.Definition{
		Type:         goTy,
		Dependencies: deps,
		Compute:      computation(p.Name, p.Value, ty, deps),
	}, nil
}

// references lists the root names of the variables expr reads, in source order.
func references(expr hcl.Expression) []string {
	var names []string
	for _, traversal := range expr.Variables() {
		name := traversal.RootName()
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

func literal(name string, expr hcl.Expression, ty cty.Type) (any, error) {
	val, diags := expr.Value(&hcl.EvalContext{Functions: functions})
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: value of %q: %w", errs.ErrInvalidDefinition, name, diags)
	}

	val, err := convert.Convert(val, ty)
	if err != nil {
		return nil, errs.Invalid("value of %q is not a %s: %v", name, ty.FriendlyName(), err)
	}

	return toNative(val)
}

// check evaluates expr against unknown values of the dependency types so type
// errors surface when the file is loaded instead of on first evaluation.
func check(name string, expr hcl.Expression, ty cty.Type, deps []string, types map[string]declared) error {
	vars := make(map[string]cty.Value, len(deps))
	for _, dep := range deps {
		if d, ok := types[dep]; ok {
			vars[dep] = cty.UnknownVal(d.ty)
		} else {
			// declared on a base model, its type is unknown here
			vars[dep] = cty.DynamicVal
		}
	}

	val, diags := expr.Value(&hcl.EvalContext{Variables: vars, Functions: functions})
	if diags.HasErrors() {
		return fmt.Errorf("%w: value of %q: %w", errs.ErrInvalidDefinition, name, diags)
	}

	if _, err := convert.Convert(val, ty); err != nil {
		return errs.Invalid("value of %q is not a %s: %v", name, ty.FriendlyName(), err)
	}
	return nil
}

func computation(name string, expr hcl.Expression, ty cty.Type, deps []string) func(...any) any {
	return func(args ...any) any {
		vars := make(map[string]cty.Value, len(deps))
		for i, dep := range deps {
			val, err := toCty(args[i])
			if err != nil {
				panic(fmt.Errorf("%s: dependency %q: %w", name, dep, err))
			}
			vars[dep] = val
		}

		val, diags := expr.Value(&hcl.EvalContext{Variables: vars, Functions: functions})
		if diags.HasErrors() {
			panic(fmt.Errorf("%s: %w", name, diags))
		}

		val, err := convert.Convert(val, ty)
		if err != nil {
			panic(fmt.Errorf("%s: %w", name, err))
		}

		native, err := toNative(val)
		if err != nil {
			panic(fmt.Errorf("%s: %w", name, err))
		}
		return native
	}
}
