package deferred

// Block groups the deferred operation behind one or more deferred
// columns so that evaluating row i for all of them costs a single
// function call. A block is owned by the columns built from it and is
// never mutated after creation.
type Block struct {
	op *Op
}

func newBlock(op *Op) *Block { return &Block{op: op} }

// Len returns the number of rows the block can produce.
func (b *Block) Len() int { return b.op.Len() }

// Fetch evaluates rows [lo, hi) and returns the raw per-row results.
// A batched operation gets one call for the whole range; otherwise
// the function is invoked once per row.
func (b *Block) Fetch(lo, hi int) ([]any, error) {
	if n := b.Len(); hi > n {
		hi = n
	}
	if lo >= hi {
		return nil, nil
	}

	if b.op.isBatched {
		return b.op.callBatch(lo, hi)
	}

	rows := make([]any, 0, hi-lo)
	for row := lo; row < hi; row++ {
		v, err := b.op.callRow(row)
		if err != nil {
			return nil, err
		}
		rows = append(rows, v)
	}
	return rows, nil
}
