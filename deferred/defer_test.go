package deferred

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shalevy1/meerkat/column"
	"github.com/shalevy1/meerkat/errors"
)

func intsFrame(t *testing.T, cols map[string][]int) *column.Frame {
	t.Helper()
	m := make(map[string]column.Column, len(cols))
	for name, vals := range cols {
		m[name] = column.FromSlice(vals)
	}
	f, err := column.NewFrame(m)
	require.NoError(t, err)
	return f
}

func TestDeferShapes(t *testing.T) {
	data := column.FromSlice([]int{1, 2, 3})

	t.Run("single value yields a column", func(t *testing.T) {
		d, err := Defer(data, func(x int) int { return x * 2 })
		require.NoError(t, err)

		col, ok := d.(*Column)
		require.True(t, ok)
		assert.Equal(t, 3, col.Len())
		typ, typed := col.OutputType()
		assert.True(t, typed)
		assert.Equal(t, column.Int, typ)
	})

	t.Run("map return yields a frame keyed by the map", func(t *testing.T) {
		d, err := Defer(data, func(x int) map[string]int {
			return map[string]int{"b": x + 1, "a": x - 1}
		})
		require.NoError(t, err)

		f, ok := d.(*Frame)
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b"}, f.Names())

		v, err := f.Col("a").At(1)
		require.NoError(t, err)
		assert.Equal(t, 1, v)
		v, err = f.Col("b").At(1)
		require.NoError(t, err)
		assert.Equal(t, 3, v)
	})

	t.Run("multi-return yields a positionally named frame", func(t *testing.T) {
		d, err := Defer(data, func(x int) (int, int) { return x, x * x })
		require.NoError(t, err)

		f, ok := d.(*Frame)
		require.True(t, ok)
		assert.Equal(t, []string{"0", "1"}, f.Names())

		v, err := f.Col("1").At(2)
		require.NoError(t, err)
		assert.Equal(t, 9, v)
	})

	t.Run("single output override collapses composites", func(t *testing.T) {
		d, err := Defer(data, func(x int) map[string]int {
			return map[string]int{"a": x}
		}, WithSingleOutput())
		require.NoError(t, err)

		col, ok := d.(*Column)
		require.True(t, ok)
		typ, typed := col.OutputType()
		assert.True(t, typed)
		assert.Equal(t, column.Object, typ)

		v, err := col.At(0)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"a": 1}, v)
	})

	t.Run("trailing error return is split off", func(t *testing.T) {
		d, err := Defer(data, func(x int) (int, error) { return x + 10, nil })
		require.NoError(t, err)

		col, ok := d.(*Column)
		require.True(t, ok)
		v, err := col.At(0)
		require.NoError(t, err)
		assert.Equal(t, 11, v)
	})
}

func TestDeferFrameBinding(t *testing.T) {
	frame := intsFrame(t, map[string][]int{
		"x": {1, 2, 3},
		"y": {10, 20, 30},
	})

	t.Run("struct fields match columns by name", func(t *testing.T) {
		type row struct{ X, Y int }
		d, err := Defer(frame, func(r row) int { return r.X + r.Y })
		require.NoError(t, err)

		v, err := d.(*Column).At(1)
		require.NoError(t, err)
		assert.Equal(t, 22, v)
	})

	t.Run("missing column for a field is rejected", func(t *testing.T) {
		type row struct{ X, Z int }
		_, err := Defer(frame, func(r row) int { return r.X })
		require.Error(t, err)
		assert.True(t, errors.Is(errors.Config, err))
		assert.Contains(t, err.Error(), `"Z" does not have a corresponding column`)
	})

	t.Run("positional inputs bind in order", func(t *testing.T) {
		d, err := Defer(frame, func(y, x int) int { return y - x }, WithInputs("y", "x"))
		require.NoError(t, err)

		v, err := d.(*Column).At(2)
		require.NoError(t, err)
		assert.Equal(t, 27, v)
	})

	t.Run("positional inputs must name existing columns", func(t *testing.T) {
		_, err := Defer(frame, func(z int) int { return z }, WithInputs("z"))
		require.Error(t, err)
		assert.True(t, errors.Is(errors.Config, err))
	})

	t.Run("named inputs map columns onto struct fields", func(t *testing.T) {
		type row struct{ Left, Right int }
		d, err := Defer(frame, func(r row) int { return r.Left * r.Right },
			WithNamedInputs(map[string]string{"x": "Left", "y": "Right"}))
		require.NoError(t, err)

		v, err := d.(*Column).At(0)
		require.NoError(t, err)
		assert.Equal(t, 10, v)
	})

	t.Run("named inputs must name existing struct fields", func(t *testing.T) {
		type row struct{ Left int }
		_, err := Defer(frame, func(r row) int { return r.Left },
			WithNamedInputs(map[string]string{"x": "Missing"}))
		require.Error(t, err)
		assert.True(t, errors.Is(errors.Config, err))
	})

	t.Run("non-struct parameter without bindings is rejected", func(t *testing.T) {
		_, err := Defer(frame, func(x int) int { return x })
		require.Error(t, err)
		assert.True(t, errors.Is(errors.Config, err))
	})
}

func TestDeferOutputOptions(t *testing.T) {
	data := column.FromSlice([]int{1, 2, 3})

	t.Run("outputs rename tuple columns", func(t *testing.T) {
		d, err := Defer(data, func(x int) (int, int) { return x, -x },
			WithOutputs("pos", "neg"))
		require.NoError(t, err)

		f := d.(*Frame)
		assert.Equal(t, []string{"pos", "neg"}, f.Names())
		v, err := f.Col("neg").At(0)
		require.NoError(t, err)
		assert.Equal(t, -1, v)
	})

	t.Run("outputs count must match the return arity", func(t *testing.T) {
		_, err := Defer(data, func(x int) (int, int) { return x, x },
			WithOutputs("only"))
		require.Error(t, err)
		assert.True(t, errors.Is(errors.Config, err))
	})

	t.Run("outputs map renames mapping columns", func(t *testing.T) {
		d, err := Defer(data, func(x int) map[string]int {
			return map[string]int{"raw": x}
		}, WithOutputsMap(map[string]string{"raw": "value"}))
		require.NoError(t, err)

		f := d.(*Frame)
		assert.Equal(t, []string{"value"}, f.Names())
		v, err := f.Col("value").At(1)
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})

	t.Run("output type overrides inference", func(t *testing.T) {
		d, err := Defer(data, func(x int) int { return x },
			WithOutputType(column.Object))
		require.NoError(t, err)

		typ, typed := d.(*Column).OutputType()
		assert.True(t, typed)
		assert.Equal(t, column.Object, typ)
	})

	t.Run("a single type cannot be given for a frame", func(t *testing.T) {
		_, err := Defer(data, func(x int) (int, int) { return x, x },
			WithOutputType(column.Int))
		require.Error(t, err)
		assert.True(t, errors.Is(errors.Config, err))
	})

	t.Run("output types must cover every column", func(t *testing.T) {
		_, err := Defer(data, func(x int) (int, int) { return x, x },
			WithOutputTypes(map[string]column.Type{"0": column.Int}))
		require.Error(t, err)
		assert.True(t, errors.Is(errors.Config, err))
	})
}

func TestDeferValidation(t *testing.T) {
	t.Run("data must be a column or frame", func(t *testing.T) {
		_, err := Defer(42, func(x int) int { return x })
		require.Error(t, err)
		assert.True(t, errors.Is(errors.Config, err))
	})

	t.Run("function must be a func", func(t *testing.T) {
		_, err := Defer(column.FromSlice([]int{1}), "not a func")
		require.Error(t, err)
		assert.True(t, errors.Is(errors.Config, err))
	})

	t.Run("variadic functions are rejected", func(t *testing.T) {
		_, err := Defer(column.FromSlice([]int{1}), func(xs ...int) int { return 0 })
		require.Error(t, err)
		assert.True(t, errors.Is(errors.Config, err))
	})

	t.Run("function must return a value", func(t *testing.T) {
		_, err := Defer(column.FromSlice([]int{1}), func(x int) {})
		require.Error(t, err)
		assert.True(t, errors.Is(errors.Config, err))
	})
}
