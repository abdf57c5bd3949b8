package invoke

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("rejects non functions", func(t *testing.T) {
		_, err := New(42, 0)
		assert.Error(t, err)

		_, err = New(nil, 0)
		assert.Error(t, err)

		var fn func(int) int
		_, err = New(fn, 1)
		assert.Error(t, err)
	})

	t.Run("checks arity", func(t *testing.T) {
		_, err := New(func(a, b float64) float64 { return a * b }, 1)
		assert.Error(t, err)

		_, err = New(func(a, b float64) float64 { return a * b }, 2)
		assert.NoError(t, err)
	})

	t.Run("rejects multiple results", func(t *testing.T) {
		_, err := New(func() (int, error) { return 0, nil }, 0)
		assert.Error(t, err)
	})

	t.Run("variadic accepts extra arguments", func(t *testing.T) {
		_, err := New(func(first int, rest ...int) int { return first }, 3)
		assert.NoError(t, err)

		_, err = New(func(a, b int, rest ...int) int { return a }, 1)
		assert.Error(t, err)
	})
}

func TestCall(t *testing.T) {
	t.Run("typed function", func(t *testing.T) {
		f, err := New(func(w, h float64) float64 { return w * h }, 2)
		require.NoError(t, err)

		assert.Equal(t, 30.0, f.Call(5.0, 6.0))
	})

	t.Run("converts numbers and zeroes nils", func(t *testing.T) {
		f, err := New(func(a float64, s string) string {
			if s == "" {
				return "empty"
			}
			return s
		}, 2)
		require.NoError(t, err)

		assert.Equal(t, "empty", f.Call(3, nil))
	})

	t.Run("fast path", func(t *testing.T) {
		f, err := New(func(args ...any) any { return len(args) }, 3)
		require.NoError(t, err)

		assert.Equal(t, 3, f.Call(1, "two", nil))
		assert.Equal(t, 3, f.Arity())
	})

	t.Run("no result yields nil", func(t *testing.T) {
		called := false
		f, err := New(func(int) { called = true }, 1)
		require.NoError(t, err)

		assert.Nil(t, f.Call(1))
		assert.True(t, called)
	})

	t.Run("variadic", func(t *testing.T) {
		f, err := New(func(nums ...int) int {
			sum := 0
			for _, n := range nums {
				sum += n
			}
			return sum
		}, 3)
		require.NoError(t, err)

		assert.Equal(t, 6, f.Call(1, 2, 3))
	})

	t.Run("panics on incompatible argument", func(t *testing.T) {
		f, err := New(func(s string) string { return s }, 1)
		require.NoError(t, err)

		assert.Panics(t, func() { f.Call(42) })
	})
}
