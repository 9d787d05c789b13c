package column

import (
	"reflect"
	"sort"
	"strings"

	"github.com/shalevy1/meerkat/errors"
)

// Sort returns a copy of the frame with rows ordered by the given
// columns, earlier names taking precedence. ascending is broadcast
// when it holds a single entry and defaults to ascending everywhere
// when nil; otherwise it must have one entry per sort column. The
// sort is stable.
func (f *Frame) Sort(by []string, ascending []bool) (*Frame, error) {
	if len(by) == 0 {
		return nil, errors.Errorf("sort", errors.Config,
			"sort needs at least one column")
	}

	switch len(ascending) {
	case 0:
		ascending = make([]bool, len(by))
		for i := range ascending {
			ascending[i] = true
		}
	case 1:
		asc := ascending[0]
		ascending = make([]bool, len(by))
		for i := range ascending {
			ascending[i] = asc
		}
	}
	if len(ascending) != len(by) {
		return nil, errors.Errorf("sort", errors.Config,
			"ascending has %d entries, by has %d columns", len(ascending), len(by))
	}

	keys := make([]Column, len(by))
	for i, name := range by {
		col := f.Col(name)
		if col == nil {
			return nil, errors.Errorf("sort", errors.Config,
				"sort column %q does not exist in the frame", name)
		}
		if col.Type() == Object {
			return nil, errors.Errorf("sort", errors.Config,
				"sort column %q is not orderable", name)
		}
		keys[i] = col
	}

	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for k, key := range keys {
			c := compareValues(key.Get(idx[a]), key.Get(idx[b]))
			if c == 0 {
				continue
			}
			if ascending[k] {
				return c < 0
			}
			return c > 0
		}
		return false
	})

	cols := make(map[string]Column, len(f.names))
	for _, name := range f.names {
		src := f.cols[name]
		vals := make([]any, len(idx))
		for i, j := range idx {
			vals[i] = src.Get(j)
		}
		cols[name] = Build(src.Type(), vals)
	}
	return NewFrame(cols)
}

// compareValues orders two values drawn from the same scalar column.
func compareValues(a, b any) int {
	switch x := a.(type) {
	case string:
		return strings.Compare(x, b.(string))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case y: // x is false
			return -1
		default:
			return 1
		}
	}

	af, bf := toFloat(a), toFloat(b)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	}
	return 0
}

func toFloat(v any) float64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	default:
		return rv.Float()
	}
}
