package hcldef

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// typeOf resolves a type constraint such as `number` or `list(string)` and the
// Go type values of that constraint are stored as.
func typeOf(expr hcl.Expression) (cty.Type, reflect.Type, hcl.Diagnostics) {
	ty, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return cty.NilType, nil, diags
	}

	return ty, goType(ty), nil
}

func goType(ty cty.Type) reflect.Type {
	switch {
	case ty == cty.Number:
		return reflect.TypeFor[float64]()
	case ty == cty.String:
		return reflect.TypeFor[string]()
	case ty == cty.Bool:
		return reflect.TypeFor[bool]()
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		return reflect.TypeFor[[]any]()
	case ty.IsMapType() || ty.IsObjectType():
		return reflect.TypeFor[map[string]any]()
	default:
		return reflect.TypeFor[any]()
	}
}

// toNative converts a cty value into its natural Go counterpart.
func toNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number to float64: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		slice := make([]any, 0)
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			native, err := toNative(elem)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsMapType() || ty.IsObjectType():
		m := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			native, err := toNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			m[key.AsString()] = native
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}

// toCty converts a Go value read from an instance into a cty value.
func toCty(v any) (cty.Value, error) {
	switch v := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	case float64:
		return cty.NumberFloatVal(v), nil
	case int:
		return cty.NumberIntVal(int64(v)), nil

	case []any:
		if len(v) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(v))
		for i, e := range v {
			var err error
			if elems[i], err = toCty(e); err != nil {
				return cty.NilVal, err
			}
		}
		return cty.TupleVal(elems), nil

	case map[string]any:
		if len(v) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(v))
		for k, e := range v {
			val, err := toCty(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in attribute %q: %w", k, err)
			}
			attrs[k] = val
		}
		return cty.ObjectVal(attrs), nil
	}

	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer type of %T: %w", v, err)
	}
	return gocty.ToCtyValue(v, ty)
}
