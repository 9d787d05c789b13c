package internal

// cycle is the in-flight state of one propagation pass.
type cycle struct {
	rt  *Runtime
	res *Result
}

func (c *cycle) record(m Modification) {
	c.res.Modifications = append(c.res.Modifications, m)
}

func (c *cycle) schedule(s *Store) {
	c.rt.heap.InsertAll(s.Subs())
}

// Trigger applies the new value to the store and runs one trigger
// cycle, returning the cycle's result. If another cycle is in flight
// the request queues behind it and its cycle runs after that cycle's
// emit step. A Set issued from inside a node body of the in-flight
// cycle is rejected with a failed result; the value is not applied.
func (r *Runtime) Trigger(s *Store, value any) *Result {
	req := &triggerRequest{store: s, value: value, done: make(chan *Result, 1)}

	r.mu.Lock()
	if r.running && r.drainGID == getGID() {
		r.mu.Unlock()
		res := newResult()
		msg := "store written from inside a reactive node"
		res.Error = &msg
		return res
	}
	r.queue.Enqueue(req)
	r.mu.Unlock()

	r.drain()
	return <-req.done
}

// drain processes queued triggers until the queue is empty. Exactly
// one goroutine runs cycles at a time; others leave their request to
// the goroutine currently draining.
func (r *Runtime) drain() {
	for {
		r.mu.Lock()
		if r.running {
			r.mu.Unlock()
			return
		}
		req := r.queue.Dequeue()
		if req == nil {
			r.mu.Unlock()
			return
		}
		r.running = true
		r.drainGID = getGID()
		r.clock++
		r.mu.Unlock()

		res := r.runCycle(req)

		r.mu.Lock()
		r.running = false
		r.mu.Unlock()

		r.emit(res)
		req.done <- res
	}
}

// runCycle executes one full propagation pass: collect the store's
// direct subscribers, drain them in dependency order, record every
// changed output, and stop at the first node failure.
func (r *Runtime) runCycle(req *triggerRequest) *Result {
	s := req.store
	old := s.value
	// The value is applied before the cycle runs and is not rolled
	// back if the cycle fails.
	s.value = req.value

	res := newResult()
	c := &cycle{rt: r, res: res}

	if !isEqual(old, s.value) {
		c.record(s.modification())
	}

	r.heap.InsertAll(s.Subs())

	r.heap.Drain(func(n *Node) bool {
		if n.lastCycle == r.clock {
			return true
		}
		n.lastCycle = r.clock

		if err := r.execute(n, c); err != nil {
			msg := err.Error()
			res.Error = &msg
			res.Modifications = res.Modifications[:0]
			return false
		}
		return true
	})

	return res
}

// execute re-runs one node: dependencies are cleared and re-recorded,
// the body runs exactly once, and the outputs are published.
func (r *Runtime) execute(n *Node, c *cycle) error {
	n.ClearDeps()

	var value any
	var err error
	r.tracker.RunWithNode(n, func() {
		value, err = n.fn()
	})
	if err != nil {
		return err
	}

	n.publish(value, c)
	return nil
}
