package internal

// triggerRequest is one queued store mutation awaiting its cycle.
type triggerRequest struct {
	store *Store
	value any
	done  chan *Result
}

// TriggerQueue holds mutations that arrived while a cycle was in
// flight. They are processed strictly in arrival order, each after
// the previous cycle's emit step.
type TriggerQueue struct {
	reqs []*triggerRequest
}

func NewTriggerQueue() *TriggerQueue {
	return &TriggerQueue{
		reqs: make([]*triggerRequest, 0),
	}
}

func (q *TriggerQueue) Enqueue(req *triggerRequest) {
	q.reqs = append(q.reqs, req)
}

func (q *TriggerQueue) Dequeue() *triggerRequest {
	if len(q.reqs) == 0 {
		return nil
	}
	req := q.reqs[0]
	q.reqs = q.reqs[1:]
	return req
}
