package deferred

import (
	"reflect"

	"github.com/shalevy1/meerkat/column"
	"github.com/shalevy1/meerkat/errors"
)

// Deferred is either a *Column or a *Frame produced by Defer.
type Deferred interface {
	Len() int
	deferred()
}

// blockKey selects one output of a composite-returning function.
type blockKey struct {
	name  string // mapping key, or the stringified position
	index int    // tuple position, -1 for mappings
}

// Column is a lazy view over a block plus the declared type of the
// column it materializes into. Calling Materialize executes it to
// completion.
type Column struct {
	block *Block
	sel   *blockKey // nil for plain and "single" outputs

	outputType column.Type
	typed      bool // outputType has been resolved
}

func (c *Column) deferred() {}

// Len returns the number of rows the column will have once
// materialized.
func (c *Column) Len() int { return c.block.Len() }

// OutputType returns the declared output type and whether it has
// been resolved yet.
func (c *Column) OutputType() (column.Type, bool) { return c.outputType, c.typed }

// At evaluates a single row. It satisfies the Source contract, which
// lets a deferred column be used as the input of a further Defer
// call, composing a lazy pipeline.
func (c *Column) At(i int) (any, error) {
	rows, err := c.block.Fetch(i, i+1)
	if err != nil {
		return nil, err
	}
	return extract(rows[0], c.sel)
}

// Frame is a named set of deferred columns sharing one block, one
// per output of a composite-returning function.
type Frame struct {
	names []string
	cols  map[string]*Column
	block *Block
}

func (f *Frame) deferred() {}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.block.Len() }

// Names returns the column names in order.
func (f *Frame) Names() []string { return f.names }

// Col returns the named deferred column, or nil if absent.
func (f *Frame) Col(name string) *Column { return f.cols[name] }

// extract pulls the selected output out of a raw per-row result.
func extract(raw any, sel *blockKey) (any, error) {
	if sel == nil {
		return raw, nil
	}

	if sel.index >= 0 {
		if tuple, ok := raw.([]any); ok {
			if sel.index >= len(tuple) {
				return nil, errors.Errorf("fetch", errors.Inference,
					"row has %d outputs, need index %d", len(tuple), sel.index)
			}
			return tuple[sel.index], nil
		}
		rv := reflect.ValueOf(raw)
		if rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
			if sel.index >= rv.Len() {
				return nil, errors.Errorf("fetch", errors.Inference,
					"row has %d outputs, need index %d", rv.Len(), sel.index)
			}
			return rv.Index(sel.index).Interface(), nil
		}
		return nil, errors.Errorf("fetch", errors.Inference,
			"expected a tuple row, got %T", raw)
	}

	rv := reflect.ValueOf(raw)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, errors.Errorf("fetch", errors.Inference,
			"expected a string-keyed map row, got %T", raw)
	}
	mv := rv.MapIndex(reflect.ValueOf(sel.name))
	if !mv.IsValid() {
		return nil, errors.Errorf("fetch", errors.Inference,
			"row is missing output key %q", sel.name)
	}
	return mv.Interface(), nil
}
