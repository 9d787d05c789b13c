// Package meerkat is a reactive dataflow graph combined with a lazy,
// block-backed columnar execution engine. Stores hold observable
// state; wrapping a function with Reactive makes its store reads
// tracked, so a later Set re-executes only the downstream portion of
// the graph and reports what changed. The deferred and column
// packages provide the lazy columnar half; Defer and Map are
// re-exported here for convenience.
package meerkat

import (
	"strconv"

	"github.com/shalevy1/meerkat/internal"
)

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// Result is the record of one trigger cycle: the dispatched value,
// the ordered modifications, and the error if the cycle aborted.
type Result = internal.Result

// Modification is one recorded change to an observable value.
type Modification = internal.Modification

// Store is a single cell of mutable, observable state.
type Store[T any] struct {
	store *internal.Store
}

// NewStore creates a store with an initial value. Reading it from
// inside a reactive node registers a dependency; setting it triggers
// a propagation cycle.
func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{
		internal.GetRuntime().NewStore(initial),
	}
}

// Get returns the current value, tracking the dependency when called
// from inside a reactive node.
func (s *Store[T]) Get() T {
	return as[T](s.store.Read())
}

// Set applies the new value and runs one trigger cycle, returning
// its result. A failed cycle does not roll the value back. Setting a
// value equal to the current one still runs the cycle; it simply
// records no modification for this store.
func (s *Store[T]) Set(v T) *Result {
	return s.store.Set(v)
}

// ID returns the store's identity, used as the modification target.
func (s *Store[T]) ID() string { return s.store.ID() }

// BackendOnly marks the store's modifications as internal
// bookkeeping: they are recorded but never forwarded across the
// system boundary.
func (s *Store[T]) BackendOnly() *Store[T] {
	s.store.SetBackendOnly(true)
	return s
}

// Reactive wraps a plain function as a reactive graph node. The
// function runs once immediately, recording which stores it reads;
// whenever one of them is set, it re-executes with the same bindings.
// The returned store holds the node's latest result and can itself
// be read by further reactive nodes.
func Reactive[T any](fn func() T) (*Store[T], error) {
	return ReactiveE(func() (T, error) {
		return fn(), nil
	})
}

// ReactiveE is Reactive for functions that can fail. An error during
// a trigger cycle aborts the cycle and is reported in its result; an
// error during the initial run is returned here.
func ReactiveE[T any](fn func() (T, error)) (*Store[T], error) {
	node, err := internal.GetRuntime().NewNode(func() (any, error) {
		return fn()
	}, false)
	if err != nil {
		return nil, err
	}
	return &Store[T]{node.Output()}, nil
}

// Composite is the handle of a reactive node whose composite return
// value is decomposed into per-element stores, so consumers can
// depend on sub-elements individually.
type Composite struct {
	node *internal.Node
}

// ReactiveNested wraps a function returning a composite (a
// string-keyed map or a slice) so each element becomes its own
// observable store in addition to the whole value.
func ReactiveNested(fn func() (any, error)) (*Composite, error) {
	node, err := internal.GetRuntime().NewNode(fn, true)
	if err != nil {
		return nil, err
	}
	return &Composite{node: node}, nil
}

// Store returns the store holding the whole composite value.
func (c *Composite) Store() *Store[any] {
	return &Store[any]{c.node.Output()}
}

// Element returns the store holding one element of the composite,
// by map key.
func (c *Composite) Element(name string) *Store[any] {
	return &Store[any]{c.node.Element(name)}
}

// ElementAt returns the store holding one element of the composite,
// by position.
func (c *Composite) ElementAt(i int) *Store[any] {
	return c.Element(strconv.Itoa(i))
}

// Untrack runs the given function without tracking any reactive
// dependencies.
func Untrack[T any](fn func() T) T {
	var result T
	internal.GetRuntime().Untrack(func() { result = fn() })
	return result
}
