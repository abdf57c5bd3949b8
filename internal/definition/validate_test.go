package definition

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/cascade/internal/errs"
)

var number = reflect.TypeFor[float64]()

func rectangle() map[string]Definition {
	return map[string]Definition{
		"width":  {Type: number, Value: 0.0},
		"height": {Type: number, Value: 0.0},
		"area": {
			Type:         number,
			Dependencies: []string{"width", "height"},
			Compute:      func(w, h float64) float64 { return w * h },
		},
		"perimeter": {
			Type:         number,
			Dependencies: []string{"width", "height"},
			Compute:      func(w, h float64) float64 { return 2 * (w + h) },
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("produces ordered properties", func(t *testing.T) {
		set, err := Validate(rectangle(), nil)
		require.NoError(t, err)

		if diff := cmp.Diff([]string{"area", "height", "perimeter", "width"}, set.Names()); diff != "" {
			t.Errorf("names mismatch (-want +got):\n%s", diff)
		}

		area, ok := set.Get("area")
		require.True(t, ok)
		assert.Equal(t, KindComputed, area.Kind)
		assert.Equal(t, []string{"width", "height"}, area.Dependencies)
		assert.Equal(t, 30.0, area.Compute.Call(5.0, 6.0))

		width, _ := set.Get("width")
		assert.Equal(t, KindFundamental, width.Kind)
		assert.Equal(t, 0.0, width.Initial())
	})

	t.Run("does not touch the caller's definitions", func(t *testing.T) {
		deps := []string{"width", "height"}
		defs := rectangle()
		area := defs["area"]
		area.Dependencies = deps
		defs["area"] = area

		set, err := Validate(defs, nil)
		require.NoError(t, err)

		p, _ := set.Get("area")
		p.Dependencies[0] = "changed"
		assert.Equal(t, []string{"width", "height"}, deps)
		assert.Nil(t, defs["width"].Compare)
	})

	t.Run("missing type", func(t *testing.T) {
		_, err := Validate(map[string]Definition{
			"x": {Value: 3},
		}, nil)
		assert.ErrorIs(t, err, errs.ErrInvalidDefinition)
	})

	t.Run("missing value", func(t *testing.T) {
		_, err := Validate(map[string]Definition{
			"x": {Type: number},
		}, nil)
		assert.ErrorIs(t, err, errs.ErrInvalidDefinition)
	})

	t.Run("nilable types default to nil", func(t *testing.T) {
		set, err := Validate(map[string]Definition{
			"err":   {Type: reflect.TypeFor[error]()},
			"next":  {Type: reflect.TypeFor[*int]()},
			"attrs": {Type: reflect.TypeFor[map[string]any](), Value: nil},
		}, nil)
		require.NoError(t, err)

		for _, name := range []string{"err", "next", "attrs"} {
			p, ok := set.Get(name)
			require.True(t, ok, name)
			assert.Equal(t, KindFundamental, p.Kind, name)
			assert.Nil(t, p.Initial(), name)
		}
	})

	t.Run("default must match the type", func(t *testing.T) {
		_, err := Validate(map[string]Definition{
			"x": {Type: number, Value: 0},
		}, nil)
		assert.ErrorIs(t, err, errs.ErrInvalidDefinition)
		assert.ErrorContains(t, err, `default of "x" has type int, want float64`)

		_, err = Validate(map[string]Definition{
			"x": {Type: reflect.TypeFor[fmt.Stringer](), Value: 1.0},
		}, nil)
		assert.ErrorIs(t, err, errs.ErrInvalidDefinition)

		_, err = Validate(map[string]Definition{
			"x": {Type: reflect.TypeFor[any](), Value: 1},
		}, nil)
		assert.NoError(t, err)
	})

	t.Run("conflicting fields", func(t *testing.T) {
		_, err := Validate(map[string]Definition{
			"x": {Type: number, Value: 1.0, Compute: func() float64 { return 1 }},
		}, nil)
		assert.ErrorIs(t, err, errs.ErrInvalidDefinition)

		_, err = Validate(map[string]Definition{
			"x": {Type: number, Value: 1.0, Dependencies: []string{"y"}},
			"y": {Type: number, Value: 1.0},
		}, nil)
		assert.ErrorIs(t, err, errs.ErrInvalidDefinition)

		_, err = Validate(map[string]Definition{
			"x": {Type: number, Value: 1.0, Patch: func(old float64) float64 { return old }},
		}, nil)
		assert.ErrorIs(t, err, errs.ErrInvalidDefinition)
	})

	t.Run("computation without dependencies", func(t *testing.T) {
		_, err := Validate(map[string]Definition{
			"x": {Type: number, Value: 1.0},
			"y": {Type: number, Compute: func(x float64) float64 { return x }},
		}, nil)
		assert.ErrorIs(t, err, errs.ErrInvalidDefinition)
	})

	t.Run("arity mismatch", func(t *testing.T) {
		_, err := Validate(map[string]Definition{
			"x": {Type: number, Value: 1.0},
			"y": {Type: number, Dependencies: []string{"x"}, Compute: func(a, b float64) float64 { return a }},
		}, nil)
		assert.ErrorIs(t, err, errs.ErrInvalidDefinition)

		_, err = Validate(map[string]Definition{
			"x": {Type: number, Value: 1.0},
			"y": {
				Type:         number,
				Dependencies: []string{"x"},
				Compute:      func(a float64) float64 { return a },
				Patch:        func(a float64) float64 { return a },
			},
		}, nil)
		assert.ErrorIs(t, err, errs.ErrInvalidDefinition)
	})

	t.Run("missing dependency", func(t *testing.T) {
		_, err := Validate(map[string]Definition{
			"regular": {Type: number, Value: 5.0},
			"y":       {Type: number, Dependencies: []string{"nonExistent"}, Compute: func(v any) any { return v }},
		}, nil)
		require.ErrorIs(t, err, errs.ErrInvalidDefinition)
		assert.Contains(t, err.Error(), "nonExistent")
	})

	t.Run("default factory is fundamental", func(t *testing.T) {
		set, err := Validate(map[string]Definition{
			"items": {Type: reflect.TypeFor[[]string](), Compute: func() []string { return []string{} }},
		}, nil)
		require.NoError(t, err)

		items, _ := set.Get("items")
		assert.Equal(t, KindFundamental, items.Kind)
		assert.Equal(t, []string{}, items.Initial())
	})

	t.Run("duplicate dependencies make one edge", func(t *testing.T) {
		set, err := Validate(map[string]Definition{
			"x": {Type: number, Value: 2.0},
			"square": {
				Type:         number,
				Dependencies: []string{"x", "x"},
				Compute:      func(a, b float64) float64 { return a * b },
			},
		}, nil)
		require.NoError(t, err)

		sq, _ := set.Get("square")
		assert.Equal(t, []string{"x"}, sq.Edges())
		assert.Equal(t, []string{"x", "x"}, sq.Dependencies)
	})
}

func TestValidateInheritance(t *testing.T) {
	shape, err := Validate(map[string]Definition{
		"area":      {Type: number, Value: 0.0},
		"perimeter": {Type: number, Value: 0.0},
	}, nil)
	require.NoError(t, err)

	t.Run("merges base definitions", func(t *testing.T) {
		rect, err := Validate(rectangle(), shape)
		require.NoError(t, err)

		assert.Equal(t, []string{"area", "perimeter", "height", "width"}, rect.Names())

		area, _ := rect.Get("area")
		assert.Equal(t, KindComputed, area.Kind)

		// the base set is untouched
		baseArea, _ := shape.Get("area")
		assert.Equal(t, KindFundamental, baseArea.Kind)
	})

	t.Run("dependencies resolve against inherited definitions", func(t *testing.T) {
		circle, err := Validate(map[string]Definition{
			"radius": {Type: number, Value: 0.0},
			"area": {
				Type:         number,
				Dependencies: []string{"radius"},
				Compute:      func(r float64) float64 { return math.Pi * r * r },
			},
			"half": {
				Type:         number,
				Dependencies: []string{"perimeter"},
				Compute:      func(p float64) float64 { return p / 2 },
			},
		}, shape)
		require.NoError(t, err)
		assert.Equal(t, 4, circle.Len())
	})

	t.Run("rejects a different overriding type", func(t *testing.T) {
		_, err := Validate(map[string]Definition{
			"area": {Type: reflect.TypeFor[map[string]any](), Value: map[string]any{}},
		}, shape)
		assert.ErrorIs(t, err, errs.ErrIncompatibleDefinition)
	})
}
