package deferred

import (
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/shalevy1/meerkat/column"
	"github.com/shalevy1/meerkat/config"
	"github.com/shalevy1/meerkat/errors"
)

var defaultLogger = config.Default().Logger()

// options collects Defer and materialization settings. One set is
// shared so Map can forward a single option list to both stages.
type options struct {
	batched   bool
	batchSize int

	inputs      []string
	namedInputs map[string]string // column name -> struct field

	outputs    []string          // tuple output names, in order
	outputsMap map[string]string // function output key -> column name
	single     bool

	outputType  *column.Type
	outputTypes map[string]column.Type

	parallelism     int
	distributed     bool
	numBlocks       int
	blocksPerWindow int
	logger          *logrus.Logger
}

// Option configures Defer, Materialize and Map.
type Option func(*options)

func newOptions(opts []Option) *options {
	c := config.Default()
	o := &options{
		batchSize:       c.BatchSize,
		parallelism:     c.Parallelism,
		numBlocks:       c.NumBlocks,
		blocksPerWindow: c.BlocksPerWindow,
		logger:          defaultLogger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithBatched marks the function as batched: it takes slices of rows
// and returns a slice of per-row results, one call per batch.
func WithBatched() Option {
	return func(o *options) { o.batched = true }
}

// WithBatchSize sets the row range size used per fetch.
func WithBatchSize(n int) Option {
	return func(o *options) { o.batchSize = n }
}

// WithInputs binds the named frame columns to the function's
// parameters positionally, in the given order.
func WithInputs(cols ...string) Option {
	return func(o *options) { o.inputs = cols }
}

// WithNamedInputs binds frame columns to fields of the function's
// struct parameter: keys are column names, values are field names.
func WithNamedInputs(m map[string]string) Option {
	return func(o *options) { o.namedInputs = m }
}

// WithOutputs names the columns produced by a tuple-returning
// function, in positional order.
func WithOutputs(names ...string) Option {
	return func(o *options) { o.outputs = names }
}

// WithOutputsMap renames the columns produced by a map-returning
// function: keys are the function's output keys, values the column
// names.
func WithOutputsMap(m map[string]string) Option {
	return func(o *options) { o.outputsMap = m }
}

// WithSingleOutput forces a composite-returning function into a
// single object-typed column holding the unprocessed per-row value.
func WithSingleOutput() Option {
	return func(o *options) { o.single = true }
}

// WithOutputType overrides the inferred type of a single output
// column.
func WithOutputType(t column.Type) Option {
	return func(o *options) { o.outputType = &t }
}

// WithOutputTypes overrides the inferred types of frame outputs,
// keyed by column name.
func WithOutputTypes(m map[string]column.Type) Option {
	return func(o *options) { o.outputTypes = m }
}

// WithParallelism bounds concurrent local batch fetches. Ordering of
// the materialized rows is preserved regardless.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}

// WithDistributed materializes through the shared partitioned runner
// instead of the local batch loop. numBlocks is the partition count,
// blocksPerWindow bounds how many partitions run at once; values < 1
// keep the configured defaults.
func WithDistributed(numBlocks, blocksPerWindow int) Option {
	return func(o *options) {
		o.distributed = true
		if numBlocks > 0 {
			o.numBlocks = numBlocks
		}
		if blocksPerWindow > 0 {
			o.blocksPerWindow = blocksPerWindow
		}
	}
}

// WithLogger sets the logger used during materialization.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Defer builds a deferred column or frame that lazily applies
// function to each row of data.
//
// data is a column.Column (values passed as the single positional
// argument), a *column.Frame (inputs resolved per the options, or by
// matching the function's struct parameter fields against column
// names), or a *Column from a previous Defer call.
//
// The function may return a trailing error. A single value per row
// yields a *Column; a map yields a *Frame with one column per key; a
// multi-return function yields a *Frame with positional column names
// ("0", "1", ...). WithSingleOutput collapses composite returns into
// one object column.
func Defer(data, function any, opts ...Option) (Deferred, error) {
	o := newOptions(opts)

	args, kwargs, structType, err := bind(data, function, o)
	if err != nil {
		return nil, err
	}

	op, err := newOp(function, args, kwargs, structType, o.batched, o.batchSize)
	if err != nil {
		return nil, err
	}
	block := newBlock(op)

	var first any
	probed := false
	if op.Len() > 0 {
		rows, err := block.Fetch(0, 1)
		if err != nil {
			return nil, err
		}
		first = rows[0]
		probed = true
	}

	format := resolveFormat(op, o, first, probed)
	op.format = format

	switch format {
	case FormatMapping:
		return buildMappingFrame(block, o, first, probed)
	case FormatSequence:
		return buildSequenceFrame(block, op, o, first, probed)
	default:
		return buildSingleColumn(block, format, o, first, probed)
	}
}

// bind resolves the function's input bindings from the data source.
func bind(data, function any, o *options) ([]Source, []kwarg, reflect.Type, error) {
	switch d := data.(type) {
	case *Column:
		return []Source{d}, nil, nil, nil
	case column.Column:
		return []Source{colSource{d}}, nil, nil, nil
	case *column.Frame:
		return bindFrame(d, function, o)
	}
	return nil, nil, nil, errors.Errorf("defer", errors.Config,
		"cannot defer over %T; expected a column or a frame", data)
}

func bindFrame(frame *column.Frame, function any, o *options) ([]Source, []kwarg, reflect.Type, error) {
	fnType := reflect.TypeOf(function)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return nil, nil, nil, errors.Errorf("defer", errors.Config,
			"function must be a func, got %T", function)
	}

	if o.inputs != nil {
		srcs := make([]Source, 0, len(o.inputs))
		for _, name := range o.inputs {
			if !frame.Has(name) {
				return nil, nil, nil, errors.Errorf("defer", errors.Config,
					"input %q does not have a corresponding column in the frame", name)
			}
			srcs = append(srcs, colSource{frame.Col(name)})
		}
		return srcs, nil, nil, nil
	}

	if fnType.NumIn() != 1 || fnType.In(0).Kind() != reflect.Struct {
		return nil, nil, nil, errors.Errorf("defer", errors.Config,
			"function over a frame must take a single struct parameter; pass WithInputs to bind columns positionally")
	}
	st := fnType.In(0)

	if o.namedInputs != nil {
		fieldFor := make(map[string]string, len(o.namedInputs)) // field -> column
		for colName, field := range o.namedInputs {
			if !frame.Has(colName) {
				return nil, nil, nil, errors.Errorf("defer", errors.Config,
					"input %q does not have a corresponding column in the frame", colName)
			}
			if _, ok := st.FieldByName(field); !ok {
				return nil, nil, nil, errors.Errorf("defer", errors.Config,
					"parameter struct %s has no field %q", st, field)
			}
			fieldFor[field] = colName
		}
		var kwargs []kwarg
		for i := 0; i < st.NumField(); i++ {
			f := st.Field(i)
			colName, ok := fieldFor[f.Name]
			if !ok {
				continue
			}
			kwargs = append(kwargs, kwarg{field: f.Name, src: colSource{frame.Col(colName)}})
		}
		return nil, kwargs, st, nil
	}

	// Match every exported field of the struct parameter against a
	// same-named column. This is the only place the engine inspects
	// a function's shape.
	var kwargs []kwarg
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if !frame.Has(name) {
			name = strings.ToLower(f.Name)
		}
		if !frame.Has(name) {
			return nil, nil, nil, errors.Errorf("defer", errors.Config,
				"required input %q does not have a corresponding column in the frame; pass WithInputs or WithNamedInputs", f.Name)
		}
		kwargs = append(kwargs, kwarg{field: f.Name, src: colSource{frame.Col(name)}})
	}
	return nil, kwargs, st, nil
}

func resolveFormat(op *Op, o *options, first any, probed bool) Format {
	switch {
	case o.single:
		return FormatSingle
	case o.outputsMap != nil:
		return FormatMapping
	case o.outputs != nil:
		return FormatSequence
	case op.numOuts > 1:
		return FormatSequence
	case probed:
		rv := reflect.ValueOf(first)
		if rv.IsValid() && rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
			return FormatMapping
		}
	}
	return FormatNone
}

func buildSingleColumn(block *Block, format Format, o *options, first any, probed bool) (*Column, error) {
	if o.outputTypes != nil {
		return nil, errors.Errorf("defer", errors.Config,
			"single-column output takes one output type, not a mapping")
	}

	dc := &Column{block: block}
	switch {
	case o.outputType != nil:
		dc.outputType = *o.outputType
		dc.typed = true
	case format == FormatSingle:
		dc.outputType = column.Object
		dc.typed = true
	case probed:
		dc.outputType = column.TypeOf(first)
		dc.typed = true
	}
	return dc, nil
}

func buildMappingFrame(block *Block, o *options, first any, probed bool) (*Frame, error) {
	if o.outputType != nil {
		return nil, errors.Errorf("defer", errors.Config,
			"mapping output takes a mapping of output types, not a single type")
	}

	var keys []string
	if o.outputsMap != nil {
		for k := range o.outputsMap {
			keys = append(keys, k)
		}
	} else {
		rv := reflect.ValueOf(first)
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
	}
	sort.Strings(keys)

	frameCols := make(map[string]*Column, len(keys))
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		name := k
		if o.outputsMap != nil {
			name = o.outputsMap[k]
		}
		dc := &Column{block: block, sel: &blockKey{name: k, index: -1}}
		if err := typeFrameColumn(dc, name, o, first, probed); err != nil {
			return nil, err
		}
		frameCols[name] = dc
		names = append(names, name)
	}
	sort.Strings(names)

	return &Frame{names: names, cols: frameCols, block: block}, nil
}

func buildSequenceFrame(block *Block, op *Op, o *options, first any, probed bool) (*Frame, error) {
	if o.outputType != nil {
		return nil, errors.Errorf("defer", errors.Config,
			"sequence output takes a mapping of output types, not a single type")
	}

	width := op.numOuts
	if width <= 1 {
		// A single-return function can only produce a sequence when
		// explicit output names are given for its slice elements.
		width = len(o.outputs)
	}
	if o.outputs != nil && len(o.outputs) != width {
		return nil, errors.Errorf("defer", errors.Config,
			"outputs has %d names but the function returns %d values", len(o.outputs), width)
	}

	frameCols := make(map[string]*Column, width)
	names := make([]string, 0, width)
	for i := 0; i < width; i++ {
		name := strconv.Itoa(i)
		if o.outputs != nil {
			name = o.outputs[i]
		}
		dc := &Column{block: block, sel: &blockKey{name: strconv.Itoa(i), index: i}}
		if err := typeFrameColumn(dc, name, o, first, probed); err != nil {
			return nil, err
		}
		frameCols[name] = dc
		names = append(names, name)
	}

	return &Frame{names: names, cols: frameCols, block: block}, nil
}

func typeFrameColumn(dc *Column, name string, o *options, first any, probed bool) error {
	if o.outputTypes != nil {
		t, ok := o.outputTypes[name]
		if !ok {
			return errors.Errorf("defer", errors.Config,
				"output types are missing an entry for column %q", name)
		}
		dc.outputType = t
		dc.typed = true
		return nil
	}
	if !probed {
		return nil // resolved at first materialization, or never for empty data
	}
	v, err := extract(first, dc.sel)
	if err != nil {
		return err
	}
	dc.outputType = column.TypeOf(v)
	dc.typed = true
	return nil
}
