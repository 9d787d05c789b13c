package internal

import (
	"iter"
	"reflect"
	"sort"
	"strconv"

	"github.com/google/uuid"
)

type NodeFlags int

const (
	FlagNone NodeFlags = iota
	FlagInHeap
)

// Node wraps a plain function as a reactive graph node. Each
// execution records which stores were read, runs the body exactly
// once, and publishes the result through the node's output store(s).
// The argument bindings captured at wrapping time are reused on every
// re-invocation; only store values are re-read at call time.
type Node struct {
	id string
	fn func() (any, error)

	// nestedReturn decomposes a composite result into per-element
	// stores so consumers can depend on sub-elements individually.
	nestedReturn bool

	// height in the dependency graph; nodes execute in height order
	// within a cycle.
	height int

	// lastCycle stamps the runtime clock of the node's most recent
	// execution, guaranteeing at-most-once execution per cycle.
	lastCycle int

	flags NodeFlags

	depsHead *DependencyLink

	out      *Store
	elements map[string]*Store
}

// NewNode wraps fn as a reactive node and executes it once to record
// its dependencies and populate its output stores. The initial
// execution produces no modifications.
func (r *Runtime) NewNode(fn func() (any, error), nestedReturn bool) (*Node, error) {
	n := &Node{
		id:           uuid.NewString(),
		fn:           fn,
		nestedReturn: nestedReturn,
		lastCycle:    -1,
		out:          r.NewStore(nil),
	}
	n.out.producer = n
	if nestedReturn {
		n.elements = make(map[string]*Store)
	}

	var value any
	var err error
	r.tracker.RunWithNode(n, func() {
		value, err = fn()
	})
	if err != nil {
		return nil, err
	}
	n.publish(value, nil)
	return n, nil
}

// ID returns the node's unique identity.
func (n *Node) ID() string { return n.id }

// Output returns the node's primary output store.
func (n *Node) Output() *Store { return n.out }

// Element returns the output store for one element of a nested
// return, creating it on first use so a consumer may subscribe
// before the element exists.
func (n *Node) Element(name string) *Store {
	if n.elements == nil {
		n.elements = make(map[string]*Store)
	}
	s, ok := n.elements[name]
	if !ok {
		s = n.out.rt.NewStore(nil)
		s.producer = n
		s.height = n.height
		n.elements[name] = s
	}
	return s
}

// Link creates a bidirectional dependency link between this node and
// the given store, bumping the node's height above the store's.
func (n *Node) Link(dep *Store) {
	// dont link if already present as the most recent dependency
	if n.depsHead != nil {
		tail := n.depsHead.prevDep
		if tail.dep == dep {
			return
		}
	}

	link := &DependencyLink{dep: dep, sub: n}

	n.addDepLink(link)
	dep.addSubLink(link)

	if dep.height >= n.height {
		n.height = dep.height + 1
	}
}

func (n *Node) addDepLink(link *DependencyLink) {
	if n.depsHead == nil {
		n.depsHead = link
		link.prevDep = link // loop to self
		link.nextDep = nil
	} else {
		tail := n.depsHead.prevDep
		tail.nextDep = link
		link.prevDep = tail
		link.nextDep = nil
		n.depsHead.prevDep = link
	}
}

// Deps iterates over the node's current dependencies.
func (n *Node) Deps() iter.Seq[*Store] {
	return func(yield func(*Store) bool) {
		link := n.depsHead
		for link != nil {
			if !yield(link.dep) {
				return
			}
			link = link.nextDep
		}
	}
}

// ClearDeps removes all dependency links; they are re-recorded on the
// next execution.
func (n *Node) ClearDeps() {
	for link := n.depsHead; link != nil; {
		next := link.nextDep
		link.dep.removeSubLink(link)
		link = next
	}
	n.depsHead = nil
}

func (n *Node) HasFlag(f NodeFlags) bool { return n.flags&f != 0 }
func (n *Node) AddFlag(f NodeFlags)      { n.flags |= f }
func (n *Node) RemoveFlag(f NodeFlags)   { n.flags &^= f }

// publish writes the execution result into the node's output stores.
// When res is non-nil, changed outputs are recorded as modifications
// and their subscribers are scheduled for this cycle.
func (n *Node) publish(value any, res *cycle) {
	n.updateStore(n.out, value, res)

	if !n.nestedReturn {
		return
	}
	for _, el := range nestedElements(value) {
		n.updateStore(n.Element(el.key), el.value, res)
	}
}

func (n *Node) updateStore(s *Store, value any, res *cycle) {
	changed := !isEqual(s.value, value)
	s.value = value
	s.height = n.height

	if res == nil {
		return
	}
	if changed {
		res.record(s.modification())
	}
	// Downstream nodes re-execute regardless of change; only actual
	// changes are recorded.
	res.schedule(s)
}

type element struct {
	key   string
	value any
}

// nestedElements flattens a composite return value into named
// elements: map keys for string-keyed maps, stringified positions
// for slices and arrays.
func nestedElements(value any) []element {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return nil
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		els := make([]element, 0, len(keys))
		for _, k := range keys {
			els = append(els, element{key: k, value: rv.MapIndex(reflect.ValueOf(k)).Interface()})
		}
		return els
	case reflect.Slice, reflect.Array:
		els := make([]element, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			els = append(els, element{key: strconv.Itoa(i), value: rv.Index(i).Interface()})
		}
		return els
	default:
		return nil
	}
}
