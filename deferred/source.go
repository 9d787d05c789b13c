// Package deferred implements the lazy, block-backed execution
// pipeline: a per-row function bound to one or more columns becomes a
// deferred column or frame, materialized later in batches or by the
// partitioned runner.
package deferred

import "github.com/shalevy1/meerkat/column"

// Source is the input contract of a deferred operation: indexed row
// reads that may fail. Concrete columns never fail; deferred columns
// used as inputs surface the wrapped function's errors here.
type Source interface {
	At(i int) (any, error)
	Len() int
}

// colSource adapts a concrete column to the Source contract.
type colSource struct {
	col column.Column
}

func (s colSource) At(i int) (any, error) { return s.col.Get(i), nil }

func (s colSource) Len() int { return s.col.Len() }
