package column

// ObjectColumn holds arbitrary per-row values. It is the target of
// the "single" output override and the fallback backend whenever row
// values are heterogeneous.
type ObjectColumn struct {
	values []any
}

// NewObject wraps a slice of arbitrary values as a column.
func NewObject(values []any) *ObjectColumn {
	return &ObjectColumn{values: values}
}

func (c *ObjectColumn) Get(i int) any { return c.values[i] }

func (c *ObjectColumn) Slice(lo, hi int) Column {
	return &ObjectColumn{values: c.values[lo:hi]}
}

func (c *ObjectColumn) Len() int { return len(c.values) }

func (c *ObjectColumn) Type() Type { return Object }

// Values returns the backing slice.
func (c *ObjectColumn) Values() []any { return c.values }
