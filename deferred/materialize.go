package deferred

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shalevy1/meerkat/column"
	"github.com/shalevy1/meerkat/errors"
)

// resolveType fixes the output type before materialization, probing
// row 0 when the type was not declared up front.
func (c *Column) resolveType() error {
	if c.typed {
		return nil
	}
	if c.Len() == 0 {
		return errors.Errorf("materialize", errors.Inference,
			"cannot infer the output type of an empty deferred column; pass an explicit output type")
	}
	v, err := c.At(0)
	if err != nil {
		return err
	}
	c.outputType = column.TypeOf(v)
	c.typed = true
	return nil
}

// Materialize executes the deferred column to completion and returns
// a concrete column of the declared output type. Result row i always
// corresponds to source row i, for any batch size or parallelism.
func (c *Column) Materialize(ctx context.Context, opts ...Option) (column.Column, error) {
	o := newOptions(opts)

	if err := c.resolveType(); err != nil {
		return nil, err
	}

	if o.distributed {
		return c.materializeDistributed(ctx, o)
	}

	o.logger.WithFields(logrus.Fields{
		"rows":       c.Len(),
		"batch_size": o.batchSize,
	}).Debug("materializing deferred column")

	raws, err := fetchAll(ctx, c.block, o)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(raws))
	for i, raw := range raws {
		v, err := extract(raw, c.sel)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return column.Build(c.outputType, values), nil
}

// Materialize executes the deferred frame to completion. The shared
// block is evaluated once; each member column is then carved out of
// the raw results.
func (f *Frame) Materialize(ctx context.Context, opts ...Option) (*column.Frame, error) {
	o := newOptions(opts)

	cols := make(map[string]column.Column, len(f.names))

	if o.distributed {
		for _, name := range f.names {
			dc := f.cols[name]
			if err := dc.resolveType(); err != nil {
				return nil, err
			}
			col, err := dc.materializeDistributed(ctx, o)
			if err != nil {
				return nil, err
			}
			cols[name] = col
		}
		return column.NewFrame(cols)
	}

	o.logger.WithFields(logrus.Fields{
		"rows":       f.Len(),
		"columns":    len(f.names),
		"batch_size": o.batchSize,
	}).Debug("materializing deferred frame")

	raws, err := fetchAll(ctx, f.block, o)
	if err != nil {
		return nil, err
	}

	for _, name := range f.names {
		dc := f.cols[name]
		if err := dc.resolveType(); err != nil {
			return nil, err
		}
		values := make([]any, len(raws))
		for i, raw := range raws {
			v, err := extract(raw, dc.sel)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		cols[name] = column.Build(dc.outputType, values)
	}
	return column.NewFrame(cols)
}

// Map applies function to each row of data and materializes the
// result: the composition of Defer and Materialize. The returned
// value is a column.Column or a *column.Frame depending on the
// function's output shape.
func Map(ctx context.Context, data, function any, opts ...Option) (any, error) {
	d, err := Defer(data, function, opts...)
	if err != nil {
		return nil, err
	}
	switch v := d.(type) {
	case *Column:
		return v.Materialize(ctx, opts...)
	case *Frame:
		return v.Materialize(ctx, opts...)
	}
	return nil, errors.Errorf("map", errors.Other, "unexpected deferred value %T", d)
}

// fetchAll evaluates every row of the block in batchSize ranges,
// preserving row order. With parallelism > 1 batches are fetched
// concurrently into per-batch slots and reassembled in order.
func fetchAll(ctx context.Context, block *Block, o *options) ([]any, error) {
	n := block.Len()
	if n == 0 {
		return nil, nil
	}
	bs := o.batchSize
	if bs < 1 {
		bs = 1
	}
	count := (n + bs - 1) / bs

	if o.parallelism <= 1 {
		out := make([]any, 0, n)
		for b := 0; b < count; b++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rows, err := block.Fetch(b*bs, (b+1)*bs)
			if err != nil {
				return nil, err
			}
			out = append(out, rows...)
		}
		return out, nil
	}

	results := make([][]any, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallelism)
	for b := 0; b < count; b++ {
		b := b
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, err := block.Fetch(b*bs, (b+1)*bs)
			if err != nil {
				return err
			}
			results[b] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]any, 0, n)
	for _, rows := range results {
		out = append(out, rows...)
	}
	return out, nil
}
