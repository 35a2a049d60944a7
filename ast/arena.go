// Copyright © 2024 The ELPS authors

package ast

import (
	"fmt"

	"fortio.org/safecast"
)

// NodeID addresses a Node inside an Arena.
type NodeID uint32

// NoNode is the zero NodeID. Slot 0 of every arena is a sentinel so that an
// unset child slot never aliases a real node.
const NoNode NodeID = 0

// Valid reports whether id refers to a real node.
func (id NodeID) Valid() bool {
	return id != NoNode
}

// Arena owns every node produced by one parse. Nodes are appended and never
// freed individually; the arena is dropped as a whole with the analysis
// session that produced it.
type Arena struct {
	nodes []Node
}

// NewArena returns an arena with room for roughly sizeHint nodes.
func NewArena(sizeHint int) *Arena {
	if sizeHint < 1 {
		sizeHint = 1
	}
	a := &Arena{nodes: make([]Node, 1, sizeHint+1)}
	return a
}

// New appends a node of the given kind and returns its id.
func (a *Arena) New(kind Kind, span Span) NodeID {
	id, err := safecast.Conv[uint32](len(a.nodes))
	if err != nil {
		panic(fmt.Sprintf("ast: arena overflow: %v", err))
	}
	a.nodes = append(a.nodes, Node{Kind: kind, Span: span})
	return NodeID(id)
}

// Add appends a fully built node and returns its id.
func (a *Arena) Add(n Node) NodeID {
	id := a.New(n.Kind, n.Span)
	a.nodes[id] = n
	return id
}

// Node returns the node for id. It panics if id was never issued by a.
func (a *Arena) Node(id NodeID) *Node {
	if id == NoNode || int(id) >= len(a.nodes) {
		panic(fmt.Sprintf("ast: node id %d out of bounds (len %d)", id, len(a.nodes)))
	}
	return &a.nodes[id]
}

// Kind is shorthand for a.Node(id).Kind that tolerates NoNode.
func (a *Arena) Kind(id NodeID) Kind {
	if id == NoNode {
		return Invalid
	}
	return a.Node(id).Kind
}

// Len returns the number of nodes issued, excluding the sentinel.
func (a *Arena) Len() int {
	return len(a.nodes) - 1
}

// Each calls fn for every node in allocation order.
func (a *Arena) Each(fn func(NodeID, *Node)) {
	for i := 1; i < len(a.nodes); i++ {
		fn(NodeID(i), &a.nodes[i])
	}
}
