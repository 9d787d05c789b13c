package column

import "reflect"

// sliceColumn is the Go-slice-backed scalar column. It is the
// reference backend: cheap, in-memory, and used by default for plain
// slice inputs.
type sliceColumn struct {
	values reflect.Value // always a slice
	typ    Type
}

// FromSlice wraps a Go slice as a column. The element type tag is
// derived from the slice's element type.
func FromSlice[T any](values []T) Column {
	var probe T
	return &sliceColumn{
		values: reflect.ValueOf(values),
		typ:    TypeOf(probe),
	}
}

func (c *sliceColumn) Get(i int) any {
	return c.values.Index(i).Interface()
}

func (c *sliceColumn) Slice(lo, hi int) Column {
	return &sliceColumn{values: c.values.Slice(lo, hi), typ: c.typ}
}

func (c *sliceColumn) Len() int { return c.values.Len() }

func (c *sliceColumn) Type() Type { return c.typ }

// Values returns the backing slice.
func (c *sliceColumn) Values() any { return c.values.Interface() }
