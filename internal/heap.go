package internal

import "iter"

// PriorityHeap orders nodes by their height in the dependency graph,
// so a cycle drains them in topological order: a node runs only after
// everything above it has run.
type PriorityHeap struct {
	min int
	max int

	nodes []*heapNode // [height]head

	lookup map[*Node]*heapNode // for O(1) removal
}

type heapNode struct {
	node *Node

	next *heapNode
	prev *heapNode
}

func NewHeap() *PriorityHeap {
	return &PriorityHeap{
		min:    0,
		max:    0,
		nodes:  make([]*heapNode, 2000),
		lookup: make(map[*Node]*heapNode),
	}
}

func (h *PriorityHeap) Insert(node *Node) {
	if node.HasFlag(FlagInHeap) {
		return
	}
	node.AddFlag(FlagInHeap)

	entry := &heapNode{node: node}
	h.lookup[node] = entry

	height := node.height

	if h.nodes[height] == nil {
		h.nodes[height] = entry
		entry.prev = entry // loop to self
		entry.next = nil
	} else {
		head := h.nodes[height]
		tail := head.prev

		tail.next = entry
		entry.prev = tail
		entry.next = nil
		head.prev = entry
	}

	if height > h.max {
		h.max = height
	}
}

func (h *PriorityHeap) InsertAll(nodes iter.Seq[*Node]) {
	for node := range nodes {
		h.Insert(node)
	}
}

func (h *PriorityHeap) Remove(node *Node) {
	if !node.HasFlag(FlagInHeap) {
		return
	}
	node.RemoveFlag(FlagInHeap)

	entry, ok := h.lookup[node]
	if !ok {
		return
	}
	delete(h.lookup, node)

	height := entry.node.height

	// single node
	if entry.prev == entry {
		h.nodes[height] = nil
		entry.prev = entry
		entry.next = nil
		return
	}

	// multiple nodes
	head := h.nodes[height]
	if entry == head {
		h.nodes[height] = entry.next
	} else {
		entry.prev.next = entry.next
	}

	next := entry.next
	if next == nil {
		next = head
	}
	next.prev = entry.prev

	entry.prev = entry
	entry.next = nil
}

// Drain processes entries in topological order, leaving the heap
// empty. If process returns false the drain stops early and the
// remaining entries are discarded.
func (h *PriorityHeap) Drain(process func(*Node) bool) {
	for h.min = 0; h.min <= h.max; h.min++ {
		entry := h.nodes[h.min]

		for entry != nil {
			h.Remove(entry.node)
			if !process(entry.node) {
				h.Reset()
				return
			}
			entry = h.nodes[h.min]
		}
	}

	h.max = 0
}

// Reset discards all pending entries.
func (h *PriorityHeap) Reset() {
	for node := range h.lookup {
		node.RemoveFlag(FlagInHeap)
	}
	h.lookup = make(map[*Node]*heapNode)
	for i := range h.nodes {
		h.nodes[i] = nil
	}
	h.max = 0
}
