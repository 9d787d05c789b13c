package internal

// captureState accumulates the modifications of every cycle caused
// while a capture is active, so a dispatched endpoint reports one
// combined result instead of one per store mutation.
type captureState struct {
	mods []Modification
	err  *string
}

func (cs *captureState) absorb(res *Result) {
	if cs.err != nil {
		return
	}
	if res.Error != nil {
		cs.err = res.Error
		cs.mods = nil
		return
	}
	cs.mods = append(cs.mods, res.Modifications...)
}

// Capture runs fn and folds the modifications of all trigger cycles
// it causes into a single result. A trigger failure inside fn stops
// accumulation: the result carries the error and an empty
// modification list. The combined result is emitted to the transport
// once, after fn returns.
func (r *Runtime) Capture(fn func() (any, error)) *Result {
	cs := &captureState{}

	r.mu.Lock()
	prev := r.capture
	r.capture = cs
	r.mu.Unlock()

	value, err := fn()

	r.mu.Lock()
	r.capture = prev
	transport := r.transport
	r.mu.Unlock()

	res := newResult()
	switch {
	case err != nil:
		msg := err.Error()
		res.Error = &msg
	case cs.err != nil:
		res.Error = cs.err
	default:
		res.Result = value
		res.Modifications = append(res.Modifications, cs.mods...)
	}

	if prev == nil && transport != nil {
		transport(res.Frontend())
	}
	return res
}
