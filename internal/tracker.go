package internal

// Tracker records which node is currently executing so that store
// reads register dependency edges against it.
type Tracker struct {
	tracking bool

	currentNode *Node
}

func NewTracker() *Tracker {
	return &Tracker{
		tracking: true,
	}
}

func (t *Tracker) RunWithNode(node *Node, fn func()) {
	prev := t.currentNode
	t.currentNode = node
	defer func() { t.currentNode = prev }()

	fn()
}

func (t *Tracker) RunUntracked(fn func()) {
	prev := t.tracking
	t.tracking = false
	defer func() { t.tracking = prev }()

	fn()
}

func (t *Tracker) ShouldTrack() bool {
	return t.currentNode != nil && t.tracking
}
