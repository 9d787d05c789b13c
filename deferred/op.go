package deferred

import (
	"reflect"

	"github.com/shalevy1/meerkat/errors"
)

// Format describes how the wrapped function's per-row return value
// maps onto output columns.
type Format int

const (
	// FormatNone is a plain value per row: one output column.
	FormatNone Format = iota
	// FormatMapping is a map per row: one output column per key.
	FormatMapping
	// FormatSequence is a tuple per row (a multi-return function):
	// one output column per position.
	FormatSequence
	// FormatSingle forces a composite return into a single
	// object-typed column, unprocessed.
	FormatSingle
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// kwarg is a named input binding: the values of src are assigned to
// the struct field of the function's parameter.
type kwarg struct {
	field string
	src   Source
}

// Op wraps a pure per-row function together with its resolved input
// bindings. It answers "what is row i" without touching the rest of
// the dataset. Immutable after construction, except the return
// format, which may be resolved lazily on first probe.
type Op struct {
	fn     reflect.Value
	fnType reflect.Type

	args       []Source // positional bindings, in order
	kwargs     []kwarg  // struct-field bindings, in field order
	structType reflect.Type

	isBatched bool
	batchSize int

	format Format

	numOuts int  // value results, excluding a trailing error
	hasErr  bool // function returns a trailing error
}

func newOp(fn any, args []Source, kwargs []kwarg, structType reflect.Type, batched bool, batchSize int) (*Op, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, errors.Errorf("defer", errors.Config, "function must be a func, got %T", fn)
	}

	t := v.Type()
	if t.IsVariadic() {
		return nil, errors.Errorf("defer", errors.Config, "variadic functions are not supported")
	}

	hasErr := t.NumOut() > 0 && t.Out(t.NumOut()-1) == errType
	numOuts := t.NumOut()
	if hasErr {
		numOuts--
	}
	if numOuts < 1 {
		return nil, errors.Errorf("defer", errors.Config, "function must return at least one value")
	}

	wantIn := len(args)
	if structType != nil {
		wantIn = 1
	}
	if t.NumIn() != wantIn {
		return nil, errors.Errorf("defer", errors.Config,
			"function takes %d arguments, %d inputs are bound", t.NumIn(), wantIn)
	}

	op := &Op{
		fn:         v,
		fnType:     t,
		args:       args,
		kwargs:     kwargs,
		structType: structType,
		isBatched:  batched,
		batchSize:  batchSize,
		numOuts:    numOuts,
		hasErr:     hasErr,
	}

	if err := op.checkLengths(); err != nil {
		return nil, err
	}
	return op, nil
}

// checkLengths enforces that all bound inputs share one length.
func (op *Op) checkLengths() error {
	length := -1
	check := func(n int) error {
		if length == -1 {
			length = n
		} else if n != length {
			return errors.Errorf("defer", errors.Config,
				"bound inputs have mismatched lengths: %d vs %d", length, n)
		}
		return nil
	}
	for _, a := range op.args {
		if err := check(a.Len()); err != nil {
			return err
		}
	}
	for _, k := range op.kwargs {
		if err := check(k.src.Len()); err != nil {
			return err
		}
	}
	return nil
}

// Len is the common length of the bound inputs.
func (op *Op) Len() int {
	if len(op.args) > 0 {
		return op.args[0].Len()
	}
	if len(op.kwargs) > 0 {
		return op.kwargs[0].src.Len()
	}
	return 0
}

// convert makes v assignable to t, converting numeric kinds when the
// backend hands out a wider type than the function expects.
func convert(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == t || rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, errors.Errorf("fetch", errors.Config,
		"cannot pass %T as %s", v, t)
}

// results interprets one function invocation: a trailing error is
// split off, a single value passes through, multiple values become a
// tuple.
func (op *Op) results(outs []reflect.Value) (any, error) {
	if op.hasErr {
		if e := outs[len(outs)-1]; !e.IsNil() {
			return nil, e.Interface().(error)
		}
		outs = outs[:len(outs)-1]
	}
	if len(outs) == 1 {
		return outs[0].Interface(), nil
	}
	tuple := make([]any, len(outs))
	for i, o := range outs {
		tuple[i] = o.Interface()
	}
	return tuple, nil
}

// callRow invokes the function for one row.
func (op *Op) callRow(row int) (any, error) {
	var in []reflect.Value

	if op.structType != nil {
		sv := reflect.New(op.structType).Elem()
		for _, k := range op.kwargs {
			raw, err := k.src.At(row)
			if err != nil {
				return nil, err
			}
			fv, err := convert(raw, sv.FieldByName(k.field).Type())
			if err != nil {
				return nil, err
			}
			sv.FieldByName(k.field).Set(fv)
		}
		in = []reflect.Value{sv}
	} else {
		in = make([]reflect.Value, len(op.args))
		for i, a := range op.args {
			raw, err := a.At(row)
			if err != nil {
				return nil, err
			}
			av, err := convert(raw, op.fnType.In(i))
			if err != nil {
				return nil, err
			}
			in[i] = av
		}
	}

	return op.results(op.fn.Call(in))
}

// batchInput assembles the values of src over [lo, hi) into a slice
// of the given parameter type.
func batchInput(src Source, lo, hi int, t reflect.Type) (reflect.Value, error) {
	if t.Kind() != reflect.Slice {
		return reflect.Value{}, errors.Errorf("fetch", errors.Config,
			"batched function parameters must be slices, got %s", t)
	}
	out := reflect.MakeSlice(t, hi-lo, hi-lo)
	for row := lo; row < hi; row++ {
		raw, err := src.At(row)
		if err != nil {
			return reflect.Value{}, err
		}
		rv, err := convert(raw, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(row - lo).Set(rv)
	}
	return out, nil
}

// callBatch invokes a batched function once for the rows [lo, hi) and
// splits the returned batch back into per-row values.
func (op *Op) callBatch(lo, hi int) ([]any, error) {
	var in []reflect.Value

	if op.structType != nil {
		sv := reflect.New(op.structType).Elem()
		for _, k := range op.kwargs {
			bv, err := batchInput(k.src, lo, hi, sv.FieldByName(k.field).Type())
			if err != nil {
				return nil, err
			}
			sv.FieldByName(k.field).Set(bv)
		}
		in = []reflect.Value{sv}
	} else {
		in = make([]reflect.Value, len(op.args))
		for i, a := range op.args {
			bv, err := batchInput(a, lo, hi, op.fnType.In(i))
			if err != nil {
				return nil, err
			}
			in[i] = bv
		}
	}

	outs := op.fn.Call(in)
	if op.hasErr {
		if e := outs[len(outs)-1]; !e.IsNil() {
			return nil, e.Interface().(error)
		}
		outs = outs[:len(outs)-1]
	}

	n := hi - lo
	rows := make([]any, n)
	for _, o := range outs {
		if o.Kind() != reflect.Slice || o.Len() != n {
			return nil, errors.Errorf("fetch", errors.Config,
				"batched function must return a slice of %d per-row values, got %s", n, o.Type())
		}
	}
	for row := 0; row < n; row++ {
		if len(outs) == 1 {
			rows[row] = outs[0].Index(row).Interface()
		} else {
			tuple := make([]any, len(outs))
			for i, o := range outs {
				tuple[i] = o.Index(row).Interface()
			}
			rows[row] = tuple
		}
	}
	return rows, nil
}

// applyValue runs the operation against a single already-fetched
// input value. Only valid for single-input operations; the
// partitioned runner uses it to replay a linearized chain. The
// receiver is not mutated, so replays may run concurrently.
func (op *Op) applyValue(v any) (any, error) {
	src := sliceSource{values: []any{v}}

	clone := *op
	switch {
	case len(op.args) == 1 && len(op.kwargs) == 0:
		clone.args = []Source{src}
	case len(op.args) == 0 && len(op.kwargs) == 1:
		kw := op.kwargs[0]
		kw.src = src
		clone.kwargs = []kwarg{kw}
	default:
		return nil, errors.Errorf("materialize", errors.Topology,
			"cannot replay an operation with %d inputs", len(op.args)+len(op.kwargs))
	}

	if op.isBatched {
		rows, err := clone.callBatch(0, 1)
		if err != nil {
			return nil, err
		}
		return rows[0], nil
	}
	return clone.callRow(0)
}

// sliceSource serves fixed values; used by chain replay.
type sliceSource struct {
	values []any
}

func (s sliceSource) At(i int) (any, error) { return s.values[i], nil }

func (s sliceSource) Len() int { return len(s.values) }
