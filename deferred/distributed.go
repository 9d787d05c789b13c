package deferred

import (
	"context"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shalevy1/meerkat/column"
	"github.com/shalevy1/meerkat/errors"
)

// step is one hop of a linearized pipeline: the operation to replay
// and the output selector of the deferred column at that hop.
type step struct {
	op  *Op
	sel *blockKey
}

// linearize walks from a deferred column backward through its chain
// of input bindings to the single base column. Pipelines that branch
// (more than one bound input at any hop) are not supported by the
// partitioned runner and are rejected with a topology error.
func linearize(c *Column) (column.Column, []step, error) {
	var steps []step
	cur := c
	for {
		op := cur.block.op
		steps = append(steps, step{op: op, sel: cur.sel})

		n := len(op.args) + len(op.kwargs)
		switch {
		case n == 0:
			return nil, nil, errors.Errorf("materialize", errors.Topology,
				"deferred pipeline has an operation with no bound inputs")
		case n > 1:
			return nil, nil, errors.Errorf("materialize", errors.Topology,
				"distributed materialization requires a linear pipeline; found an operation with %d positional and %d named inputs",
				len(op.args), len(op.kwargs))
		}

		var src Source
		if len(op.args) == 1 {
			src = op.args[0]
		} else {
			src = op.kwargs[0].src
		}

		switch s := src.(type) {
		case *Column:
			cur = s
		case colSource:
			return s.col, steps, nil
		default:
			return nil, nil, errors.Errorf("materialize", errors.Topology,
				"base input of the pipeline is an unsupported %T", src)
		}
	}
}

// execContext is the process-wide shared execution context for the
// partitioned runner. It is initialized lazily, exactly once, and is
// never torn down mid-run.
type execContext struct {
	workers int
}

var (
	execOnce sync.Once
	exec     *execContext
)

func sharedContext(log *logrus.Logger) *execContext {
	execOnce.Do(func() {
		exec = &execContext{workers: runtime.NumCPU()}
		log.WithField("workers", exec.workers).Debug("initialized shared execution context")
	})
	return exec
}

type span struct {
	lo, hi int
}

func partitionRanges(n, blocks int) []span {
	if n == 0 {
		return nil
	}
	if blocks < 1 {
		blocks = 1
	}
	if blocks > n {
		blocks = n
	}
	size := (n + blocks - 1) / blocks
	parts := make([]span, 0, blocks)
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		parts = append(parts, span{lo: lo, hi: hi})
	}
	return parts
}

// materializeDistributed replays the linearized chain of functions in
// forward order over partitions of the base column, reassembling the
// partitions in row order into the declared output type.
func (c *Column) materializeDistributed(ctx context.Context, o *options) (column.Column, error) {
	base, steps, err := linearize(c)
	if err != nil {
		return nil, err
	}
	ec := sharedContext(o.logger)

	n := base.Len()
	parts := partitionRanges(n, o.numBlocks)

	limit := o.blocksPerWindow
	if limit < 1 || limit > ec.workers {
		limit = ec.workers
	}

	o.logger.WithFields(logrus.Fields{
		"rows":       n,
		"partitions": len(parts),
		"window":     limit,
	}).Debug("materializing deferred column on the shared pool")

	results := make([][]any, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for pi, p := range parts {
		pi, p := pi, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vals := make([]any, 0, p.hi-p.lo)
			for row := p.lo; row < p.hi; row++ {
				v := base.Get(row)
				// steps were collected walking backward; replay in
				// the original forward order.
				for i := len(steps) - 1; i >= 0; i-- {
					var err error
					v, err = steps[i].op.applyValue(v)
					if err != nil {
						return err
					}
					v, err = extract(v, steps[i].sel)
					if err != nil {
						return err
					}
				}
				vals = append(vals, v)
			}
			results[pi] = vals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	flat := make([]any, 0, n)
	for _, part := range results {
		flat = append(flat, part...)
	}
	return column.Build(c.outputType, flat), nil
}
