package internal

import (
	"iter"
	"reflect"

	"github.com/google/uuid"
)

// Store is a single cell of mutable, observable state: the unit the
// graph reacts to. A directed edge Store -> Node exists for each node
// whose last execution read this store.
type Store struct {
	rt *Runtime
	id string

	value       any
	backendOnly bool

	// height in the dependency graph: 0 for root stores, the
	// producing node's height otherwise.
	height   int
	producer *Node

	subsHead *DependencyLink
}

// NewStore creates a root store bound to this runtime.
func (r *Runtime) NewStore(initial any) *Store {
	return &Store{
		rt:    r,
		id:    uuid.NewString(),
		value: initial,
	}
}

// ID returns the store's unique identity, used as the modification
// target.
func (s *Store) ID() string { return s.id }

// SetBackendOnly marks the store's modifications as internal
// bookkeeping, never forwarded across the system boundary.
func (s *Store) SetBackendOnly(b bool) { s.backendOnly = b }

// Read returns the current value. When called from inside an
// executing node, the read registers a dependency edge from this
// store to that node.
func (s *Store) Read() any {
	if s.rt.tracker.ShouldTrack() {
		s.rt.tracker.currentNode.Link(s)
	}
	return s.value
}

// Set applies the new value immediately and runs one trigger cycle
// for this store. The value is not rolled back if the cycle fails;
// callers retrying after a failed cycle rely on set being idempotent.
func (s *Store) Set(v any) *Result {
	return s.rt.Trigger(s, v)
}

func (s *Store) modification() Modification {
	return Modification{
		TargetID:    s.id,
		Value:       s.value,
		BackendOnly: s.backendOnly,
	}
}

// Subs iterates over the nodes subscribed to this store.
func (s *Store) Subs() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		link := s.subsHead
		for link != nil {
			if !yield(link.sub) {
				return
			}
			link = link.nextSub
		}
	}
}

func (s *Store) addSubLink(link *DependencyLink) {
	if s.subsHead == nil {
		s.subsHead = link
		link.prevSub = link // loop to self
		link.nextSub = nil
	} else {
		tail := s.subsHead.prevSub
		tail.nextSub = link
		link.prevSub = tail
		link.nextSub = nil
		s.subsHead.prevSub = link
	}
}

func (s *Store) removeSubLink(link *DependencyLink) {
	if s.subsHead == nil {
		return
	}

	if link == s.subsHead {
		s.subsHead = link.nextSub
		if s.subsHead != nil {
			s.subsHead.prevSub = link.prevSub
		}
		return
	}

	link.prevSub.nextSub = link.nextSub
	if link.nextSub != nil {
		link.nextSub.prevSub = link.prevSub
	} else {
		s.subsHead.prevSub = link.prevSub
	}
}

// isEqual is the widest applicable equality check: deep equality over
// arbitrary values.
func isEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
