package internal

// Modification records one observed value change produced by a
// trigger cycle. BackendOnly marks internal bookkeeping that must
// not cross the system boundary.
type Modification struct {
	TargetID    string `json:"target_id"`
	Value       any    `json:"new_value"`
	BackendOnly bool   `json:"-"`
}

// Result is the serializable record of one completed trigger cycle,
// in the shape the external transport expects.
type Result struct {
	Result        any            `json:"result"`
	Modifications []Modification `json:"modifications"`
	Error         *string        `json:"error"`
}

func newResult() *Result {
	return &Result{Modifications: make([]Modification, 0)}
}

// Frontend returns a copy of the result with backend-only
// modifications filtered out, ready to cross the system boundary.
func (r *Result) Frontend() *Result {
	out := &Result{
		Result:        r.Result,
		Modifications: make([]Modification, 0, len(r.Modifications)),
		Error:         r.Error,
	}
	for _, m := range r.Modifications {
		if m.BackendOnly {
			continue
		}
		out.Modifications = append(out.Modifications, m)
	}
	return out
}

// Failed tells whether the cycle aborted.
func (r *Result) Failed() bool { return r.Error != nil }
