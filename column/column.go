// Package column defines the storage view consumed by the deferred
// execution engine: a column exposes indexed reads, slicing, a length
// and an element type tag. Backends are interchangeable through the
// Column interface; the concrete backend is picked once, at
// construction, by the NewScalar factory.
package column

import (
	"reflect"
)

// Type is the element type tag of a column.
type Type int

const (
	// Object holds arbitrary per-row values.
	Object Type = iota
	// Int holds signed integers.
	Int
	// Float holds floating point values.
	Float
	// String holds strings.
	String
	// Bool holds booleans.
	Bool
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Bool:
		return "bool"
	default:
		return "object"
	}
}

// Column is the storage view contract. Any backend honoring it is
// interchangeable from the engine's point of view.
type Column interface {
	// Get returns the value at row i.
	Get(i int) any
	// Slice returns a view over rows [lo, hi).
	Slice(lo, hi int) Column
	// Len returns the number of rows.
	Len() int
	// Type returns the element type tag.
	Type() Type
}

// TypeOf maps a runtime value to its column type tag.
func TypeOf(v any) Type {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Int
	case float32, float64:
		return Float
	case string:
		return String
	case bool:
		return Bool
	default:
		return Object
	}
}

// Build assembles a concrete column of the given type from already
// computed row values. For Object it always produces an ObjectColumn;
// for scalar tags it produces a slice-backed column when the values
// are homogeneous, falling back to an ObjectColumn otherwise.
func Build(typ Type, values []any) Column {
	if typ == Object || len(values) == 0 {
		return NewObject(values)
	}

	elem := reflect.TypeOf(values[0])
	if elem == nil {
		return NewObject(values)
	}

	out := reflect.MakeSlice(reflect.SliceOf(elem), 0, len(values))
	for _, v := range values {
		if reflect.TypeOf(v) != elem {
			return NewObject(values)
		}
		out = reflect.Append(out, reflect.ValueOf(v))
	}

	return &sliceColumn{values: out, typ: typ}
}
