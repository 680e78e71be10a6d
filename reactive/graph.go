package reactive

import "slices"

// depNode is the per-node record of the dependency graph. Both lists
// are ordered sets: insertion order, no duplicates.
//
// Edges only exist as symmetric pairs. If B is in A's subscribers then
// A is in B's dependencies, always; a half-edge means the graph is
// corrupt.
type depNode struct {
	// subscribers are the observers that read this node during their
	// last run.
	subscribers []NodeID
	// dependencies are the nodes this node read during its last run,
	// if it is itself an observer.
	dependencies []NodeID
}

// graph maps NodeIDs to their edge lists. Entries are created lazily on
// the first edge touching a node, so a signal that nobody has read yet
// has no entry at all.
type graph struct {
	nodes map[NodeID]*depNode
}

func newGraph() *graph {
	return &graph{nodes: map[NodeID]*depNode{}}
}

func (g *graph) node(id NodeID) *depNode {
	n, ok := g.nodes[id]
	if !ok {
		n = &depNode{}
		g.nodes[id] = n
	}
	return n
}

// addEdge records "sub read dep", creating both halves of the edge.
// Idempotent: reading the same node many times in one run produces one
// edge.
func (g *graph) addEdge(dep, sub NodeID) {
	dn := g.node(dep)
	if slices.Contains(dn.subscribers, sub) {
		return
	}
	dn.subscribers = append(dn.subscribers, sub)
	g.node(sub).dependencies = append(g.node(sub).dependencies, dep)
}

// subscribers returns a copy of the node's subscriber list. Cloning
// lets callers iterate while edges are being rewritten underneath them.
func (g *graph) subscribers(id NodeID) []NodeID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return slices.Clone(n.subscribers)
}

func (g *graph) dependencies(id NodeID) []NodeID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return slices.Clone(n.dependencies)
}

// clearDependencies drops every outgoing edge of sub, removing sub from
// each dependency's subscriber list. Must run immediately before a
// computation re-executes so that reads from the previous run are
// forgotten.
func (g *graph) clearDependencies(sub NodeID) {
	n, ok := g.nodes[sub]
	if !ok {
		return
	}
	deps := n.dependencies
	n.dependencies = nil

	for _, dep := range deps {
		dn, ok := g.nodes[dep]
		if !ok {
			panic("reactive: dependency edge points at a node missing from the graph")
		}
		i := slices.Index(dn.subscribers, sub)
		if i < 0 {
			panic("reactive: asymmetric dependency edge")
		}
		dn.subscribers = slices.Delete(dn.subscribers, i, i+1)
	}
}

// removeNode erases id from the graph entirely: outgoing edges, inbound
// edges and the entry itself.
func (g *graph) removeNode(id NodeID) {
	g.clearDependencies(id)

	n, ok := g.nodes[id]
	if !ok {
		return
	}
	for _, sub := range n.subscribers {
		sn, ok := g.nodes[sub]
		if !ok {
			panic("reactive: subscriber edge points at a node missing from the graph")
		}
		i := slices.Index(sn.dependencies, id)
		if i < 0 {
			panic("reactive: asymmetric subscriber edge")
		}
		sn.dependencies = slices.Delete(sn.dependencies, i, i+1)
	}
	delete(g.nodes, id)
}
