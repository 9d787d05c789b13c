package column

import (
	"sort"

	"github.com/shalevy1/meerkat/errors"
)

// Frame is an ordered mapping of column names to columns of equal
// length.
type Frame struct {
	names []string
	cols  map[string]Column
}

// NewFrame builds a frame from named columns. Column names are kept
// in sorted order for deterministic iteration. All columns must have
// the same length.
func NewFrame(cols map[string]Column) (*Frame, error) {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	length := -1
	for _, name := range names {
		n := cols[name].Len()
		if length == -1 {
			length = n
		} else if n != length {
			return nil, errors.Errorf("column.NewFrame", errors.Config,
				"column %q has length %d, expected %d", name, n, length)
		}
	}

	return &Frame{names: names, cols: cols}, nil
}

// Col returns the named column, or nil if absent.
func (f *Frame) Col(name string) Column { return f.cols[name] }

// Has tells whether the frame contains the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Names returns the column names in order.
func (f *Frame) Names() []string { return f.names }

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.names) == 0 {
		return 0
	}
	return f.cols[f.names[0]].Len()
}
