package column

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// ArrowColumn is an Arrow-array-backed scalar column. Slicing is
// zero-copy through array.NewSlice.
type ArrowColumn struct {
	arr arrow.Array
	typ Type
}

// FromArrow wraps an Arrow array as a column.
func FromArrow(arr arrow.Array) *ArrowColumn {
	return &ArrowColumn{arr: arr, typ: arrowType(arr.DataType())}
}

func arrowType(dt arrow.DataType) Type {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return Int
	case arrow.FLOAT32, arrow.FLOAT64:
		return Float
	case arrow.STRING, arrow.LARGE_STRING:
		return String
	case arrow.BOOL:
		return Bool
	default:
		return Object
	}
}

func (c *ArrowColumn) Get(i int) any {
	if c.arr.IsNull(i) {
		return nil
	}
	switch a := c.arr.(type) {
	case *array.Int64:
		return a.Value(i)
	case *array.Int32:
		return a.Value(i)
	case *array.Float64:
		return a.Value(i)
	case *array.Float32:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	default:
		return c.arr.GetOneForMarshal(i)
	}
}

func (c *ArrowColumn) Slice(lo, hi int) Column {
	return &ArrowColumn{
		arr: array.NewSlice(c.arr, int64(lo), int64(hi)),
		typ: c.typ,
	}
}

func (c *ArrowColumn) Len() int { return c.arr.Len() }

func (c *ArrowColumn) Type() Type { return c.typ }

// Array returns the backing Arrow array.
func (c *ArrowColumn) Array() arrow.Array { return c.arr }
