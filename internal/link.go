package internal

// DependencyLink is one edge of the bidirectional dependency graph
// between a store (dep) and a subscribed node (sub).
type DependencyLink struct {
	dep *Store
	sub *Node

	prevDep *DependencyLink
	nextDep *DependencyLink

	prevSub *DependencyLink
	nextSub *DependencyLink
}
