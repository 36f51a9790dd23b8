package ir

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNode is returned when a key was never registered.
	ErrUnknownNode = errors.New("unknown iteration node")
	// ErrAlreadyClaimed is returned when a node is claimed a second time.
	ErrAlreadyClaimed = errors.New("iteration node already claimed")
	// ErrDuplicateKey is returned when a key is registered twice.
	ErrDuplicateKey = errors.New("duplicate iteration node key")
)

// Arena owns every node of one method. Claim moves a node out of the arena;
// after that the slot stays empty, so a node can be rendered at most once.
type Arena struct {
	slots   map[Key]*Node
	claimed map[Key]bool
	order   []Key
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{
		slots:   make(map[Key]*Node),
		claimed: make(map[Key]bool),
	}
}

// Register adds n under n.Key.
func (a *Arena) Register(n *Node) error {
	if _, ok := a.slots[n.Key]; ok || a.claimed[n.Key] {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, n.Key)
	}
	a.slots[n.Key] = n
	a.order = append(a.order, n.Key)
	return nil
}

// Claim removes and returns the node registered under key.
func (a *Arena) Claim(key Key) (*Node, error) {
	if a.claimed[key] {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyClaimed, key)
	}
	n, ok := a.slots[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, key)
	}
	delete(a.slots, key)
	a.claimed[key] = true
	return n, nil
}

// Lookup returns an unclaimed node without taking ownership.
func (a *Arena) Lookup(key Key) (*Node, bool) {
	n, ok := a.slots[key]
	return n, ok
}

// Nodes returns the unclaimed nodes in registration order.
func (a *Arena) Nodes() []*Node {
	nodes := make([]*Node, 0, len(a.slots))
	for _, k := range a.order {
		if n, ok := a.slots[k]; ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Len returns the number of unclaimed nodes.
func (a *Arena) Len() int {
	return len(a.slots)
}

// Clone returns an arena holding the same unclaimed nodes with no claims
// recorded. Nodes are shared, not copied.
func (a *Arena) Clone() *Arena {
	c := NewArena()
	for _, n := range a.Nodes() {
		c.slots[n.Key] = n
		c.order = append(c.order, n.Key)
	}
	return c
}
