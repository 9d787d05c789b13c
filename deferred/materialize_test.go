package deferred

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shalevy1/meerkat/column"
	"github.com/shalevy1/meerkat/errors"
)

func collect(t *testing.T, col column.Column) []any {
	t.Helper()
	out := make([]any, col.Len())
	for i := range out {
		out[i] = col.Get(i)
	}
	return out
}

func TestMaterializeColumn(t *testing.T) {
	ctx := context.Background()

	t.Run("applies the function row by row", func(t *testing.T) {
		d, err := Defer(column.FromSlice([]int{1, 2, 3}), func(x int) int { return x * 2 })
		require.NoError(t, err)

		col, err := d.(*Column).Materialize(ctx)
		require.NoError(t, err)
		assert.Equal(t, []any{2, 4, 6}, collect(t, col))
		assert.Equal(t, column.Int, col.Type())
	})

	t.Run("result rows correspond to source rows for any batch size", func(t *testing.T) {
		data := column.FromSlice([]int{5, 6, 7, 8, 9})
		want := []any{10, 12, 14, 16, 18}

		for _, bs := range []int{1, 2, 3, 100} {
			t.Run(fmt.Sprintf("batch size %d", bs), func(t *testing.T) {
				d, err := Defer(data, func(x int) int { return x * 2 })
				require.NoError(t, err)

				col, err := d.(*Column).Materialize(ctx, WithBatchSize(bs))
				require.NoError(t, err)
				assert.Equal(t, want, collect(t, col))
			})
		}
	})

	t.Run("parallel fetches preserve row order", func(t *testing.T) {
		vals := make([]int, 64)
		for i := range vals {
			vals[i] = i
		}
		d, err := Defer(column.FromSlice(vals), func(x int) int { return x + 1 })
		require.NoError(t, err)

		col, err := d.(*Column).Materialize(ctx, WithBatchSize(4), WithParallelism(8))
		require.NoError(t, err)
		require.Equal(t, 64, col.Len())
		for i := 0; i < 64; i++ {
			assert.Equal(t, i+1, col.Get(i))
		}
	})

	t.Run("batched functions see whole batches", func(t *testing.T) {
		var calls int
		d, err := Defer(column.FromSlice([]int{1, 2, 3, 4}), func(xs []int) []int {
			calls++
			out := make([]int, len(xs))
			for i, x := range xs {
				out[i] = x * 10
			}
			return out
		}, WithBatched(), WithBatchSize(2))
		require.NoError(t, err)

		calls = 0
		col, err := d.(*Column).Materialize(ctx, WithBatchSize(2))
		require.NoError(t, err)
		assert.Equal(t, []any{10, 20, 30, 40}, collect(t, col))
		assert.Equal(t, 2, calls)
	})

	t.Run("function errors abort materialization", func(t *testing.T) {
		d, err := Defer(column.FromSlice([]int{1, 2, 3}), func(x int) (int, error) {
			if x == 2 {
				return 0, fmt.Errorf("bad row %d", x)
			}
			return x, nil
		})
		require.NoError(t, err)

		_, err = d.(*Column).Materialize(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad row 2")
	})

	t.Run("empty input without a declared type cannot be inferred", func(t *testing.T) {
		d, err := Defer(column.FromSlice([]int{}), func(x int) int { return x })
		require.NoError(t, err)

		_, err = d.(*Column).Materialize(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(errors.Inference, err))
	})

	t.Run("empty input with a declared type materializes empty", func(t *testing.T) {
		d, err := Defer(column.FromSlice([]int{}), func(x int) int { return x },
			WithOutputType(column.Int))
		require.NoError(t, err)

		col, err := d.(*Column).Materialize(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, col.Len())
	})

	t.Run("canceled context aborts", func(t *testing.T) {
		d, err := Defer(column.FromSlice([]int{1, 2, 3}), func(x int) int { return x })
		require.NoError(t, err)

		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = d.(*Column).Materialize(canceled)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestMaterializeFrame(t *testing.T) {
	ctx := context.Background()

	t.Run("frame columns feed the function and come back materialized", func(t *testing.T) {
		frame := intsFrame(t, map[string][]int{
			"x": {1, 2, 3},
			"y": {10, 20, 30},
		})
		type row struct{ X, Y int }
		d, err := Defer(frame, func(r row) int { return r.X + r.Y })
		require.NoError(t, err)

		col, err := d.(*Column).Materialize(ctx)
		require.NoError(t, err)
		assert.Equal(t, []any{11, 22, 33}, collect(t, col))
	})

	t.Run("composite outputs share one evaluation", func(t *testing.T) {
		var calls int
		d, err := Defer(column.FromSlice([]int{1, 2}), func(x int) map[string]int {
			calls++
			return map[string]int{"double": x * 2, "square": x * x}
		})
		require.NoError(t, err)

		f := d.(*Frame)
		calls = 0
		out, err := f.Materialize(ctx)
		require.NoError(t, err)
		// One call per row, not per row per column.
		assert.Equal(t, 2, calls)
		assert.Equal(t, []any{2, 4}, collect(t, out.Col("double")))
		assert.Equal(t, []any{1, 4}, collect(t, out.Col("square")))
	})
}

func TestMap(t *testing.T) {
	ctx := context.Background()

	t.Run("composes defer and materialize", func(t *testing.T) {
		out, err := Map(ctx, column.FromSlice([]int{1, 2, 3}), func(x int) int { return x * 2 })
		require.NoError(t, err)

		col, ok := out.(column.Column)
		require.True(t, ok)
		assert.Equal(t, []any{2, 4, 6}, collect(t, col))
	})

	t.Run("returns a frame for composite outputs", func(t *testing.T) {
		out, err := Map(ctx, column.FromSlice([]int{3}), func(x int) (int, int) { return x, -x })
		require.NoError(t, err)

		f, ok := out.(*column.Frame)
		require.True(t, ok)
		assert.Equal(t, []string{"0", "1"}, f.Names())
		assert.Equal(t, -3, f.Col("1").Get(0))
	})
}
