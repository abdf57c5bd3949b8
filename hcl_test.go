package cascade

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHCL(t *testing.T) {
	m, err := LoadHCL("internal/hcldef/testdata/rectangle.hcl")
	require.NoError(t, err)

	assert.Equal(t, "Rectangle", m.Name())
	assert.Equal(t, []string{"area", "height", "label", "perimeter", "tags", "width"}, m.Properties())

	rect, err := m.New(2.0, 3.0)
	require.NoError(t, err)

	assert.Equal(t, 6.0, MustGet[float64](rect, "area"))
	assert.Equal(t, 10.0, MustGet[float64](rect, "perimeter"))
	assert.Equal(t, "rect 2x3", MustGet[string](rect, "label"))
	assert.Equal(t, []any{}, MustGet[[]any](rect, "tags"))

	_, err = m.New(1.0)
	assert.ErrorIs(t, err, ErrNoConstructor)
}

func TestParseHCL(t *testing.T) {
	src := []byte(`
model "Thermometer" {}

property "celsius" {
  type  = number
  value = 20
}

property "reading" {
  type  = string
  value = format("%.1f°F", celsius * 9 / 5 + 32)
}
`)

	t.Run("propagates like any model", func(t *testing.T) {
		log := []string{}

		m, err := ParseHCL(src, "thermometer.hcl")
		require.NoError(t, err)
		assert.Equal(t, "Thermometer", m.Name())

		in, err := m.New()
		require.NoError(t, err)

		_, err = in.Use(NewUser([]string{"reading"}, func(r string) {
			log = append(log, r)
		}))
		require.NoError(t, err)

		require.NoError(t, in.Set("celsius", 100.0))
		assert.ErrorIs(t, in.Set("reading", "hot"), ErrReadOnly)

		assert.Equal(t, []string{"68.0°F", "212.0°F"}, log)
	})

	t.Run("options override the file", func(t *testing.T) {
		m, err := ParseHCL(src, "thermometer.hcl", WithName("Probe"), WithConstructors([]string{"celsius"}))
		require.NoError(t, err)
		assert.Equal(t, "Probe", m.Name())

		in, err := m.New(-40.0)
		require.NoError(t, err)
		assert.Equal(t, "-40.0°F", MustGet[string](in, "reading"))
	})

	t.Run("option constructors replace the file's", func(t *testing.T) {
		withConstructor := append([]byte(`
constructor {
  params = ["celsius"]
}
`), src...)

		m, err := ParseHCL(withConstructor, "thermometer.hcl", WithConstructors([]string{"celsius"}))
		require.NoError(t, err)
		in, err := m.New(0.0)
		require.NoError(t, err)
		assert.Equal(t, "32.0°F", MustGet[string](in, "reading"))

		m, err = ParseHCL(withConstructor, "thermometer.hcl", WithConstructors([]string{}))
		require.NoError(t, err)
		_, err = m.New()
		require.NoError(t, err)
		_, err = m.New(0.0)
		assert.ErrorIs(t, err, ErrNoConstructor)

		// without options the file decides
		m, err = ParseHCL(withConstructor, "thermometer.hcl")
		require.NoError(t, err)
		_, err = m.New()
		assert.ErrorIs(t, err, ErrNoConstructor)
		in, err = m.New(10.0)
		require.NoError(t, err)
		assert.Equal(t, "50.0°F", MustGet[string](in, "reading"))
	})

	t.Run("extends loaded models", func(t *testing.T) {
		m, err := ParseHCL(src, "thermometer.hcl")
		require.NoError(t, err)

		kelvin, err := m.Extend(Definitions{
			"kelvin": {
				Type:         number,
				Dependencies: []string{"celsius"},
				Compute:      func(c float64) float64 { return c + 273.15 },
			},
		})
		require.NoError(t, err)

		in, err := kelvin.New()
		require.NoError(t, err)
		assert.Equal(t, 293.15, MustGet[float64](in, "kelvin"))
	})

	t.Run("invalid sources", func(t *testing.T) {
		for name, src := range map[string]string{
			"syntax":        `property "x" {`,
			"unknown type":  `property "x" { type = decimal value = 1 }`,
			"missing value": `property "x" { type = number }`,
			"cycle": `
property "a" {
  type  = number
  value = b + 1
}
property "b" {
  type  = number
  value = a + 1
}`,
		} {
			t.Run(name, func(t *testing.T) {
				_, err := ParseHCL([]byte(src), fmt.Sprintf("%s.hcl", name))
				assert.Error(t, err)
			})
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadHCL("testdata/nope.hcl")
		assert.ErrorIs(t, err, ErrInvalidDefinition)
	})
}
