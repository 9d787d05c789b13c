// Package internal implements the reactive graph runtime: stores,
// nodes, dependency links, and the trigger/propagation engine. The
// root meerkat package layers the typed public API on top.
package internal

import (
	"sync"
)

// Runtime owns one reactive graph. Trigger cycles for a runtime are
// strictly serialized; a mutation arriving while a cycle is in
// flight queues behind it and runs after that cycle's emit step.
type Runtime struct {
	mu sync.Mutex

	heap    *PriorityHeap
	tracker *Tracker
	queue   *TriggerQueue

	// clock increments once per trigger cycle; nodes stamp it to
	// guarantee at-most-once execution per cycle.
	clock   int
	running bool

	// drainGID is the goroutine currently draining the queue, valid
	// while running is set. A Set issued from a node body on that
	// goroutine would deadlock against its own cycle, so Trigger
	// rejects it instead.
	drainGID int64

	capture   *captureState
	transport func(*Result)
}

func NewRuntime() *Runtime {
	return &Runtime{
		heap:    NewHeap(),
		tracker: NewTracker(),
		queue:   NewTriggerQueue(),
	}
}

// SetTransport registers the consumer that receives each completed
// cycle's result. BackendOnly modifications are filtered out before
// the handoff.
func (r *Runtime) SetTransport(fn func(*Result)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transport = fn
}

// Untrack runs fn without recording reactive dependencies.
func (r *Runtime) Untrack(fn func()) {
	r.tracker.RunUntracked(fn)
}

func (r *Runtime) emit(res *Result) {
	r.mu.Lock()
	capture := r.capture
	transport := r.transport
	r.mu.Unlock()

	if capture != nil {
		capture.absorb(res)
		return
	}
	if transport != nil {
		transport(res.Frontend())
	}
}
