package dependency

import (
	"fmt"
	"sort"
	"strings"
)

// NodeID is the unique identifier of a node, the task name.
type NodeID string

// Node is a task together with its dependency list.
type Node struct {
	ID        NodeID
	DependsOn []NodeID
}

// CycleError reports a dependency loop. Path starts and ends at the same node.
type CycleError struct {
	Path []NodeID
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = string(id)
	}
	return fmt.Sprintf("circular dependency between tasks: %s", strings.Join(parts, " -> "))
}

// UnknownNodeError reports a reference to a node that was never added.
type UnknownNodeError struct {
	ID       NodeID
	Referrer NodeID
}

func (e *UnknownNodeError) Error() string {
	if e.Referrer == "" {
		return fmt.Sprintf("task '%s' not found", e.ID)
	}
	return fmt.Sprintf("task '%s' depends on unknown task '%s'", e.Referrer, e.ID)
}

// Graph is not safe for concurrent writes.
type Graph struct {
	nodes map[NodeID]*Node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[NodeID]*Node)}
}

// AddNode adds (or replaces) a node in the graph.
func (g *Graph) AddNode(n Node) {
	if g.nodes == nil {
		g.nodes = make(map[NodeID]*Node)
	}
	// Copy to avoid external mutations
	copied := n
	copied.DependsOn = append([]NodeID(nil), n.DependsOn...)
	g.nodes[n.ID] = &copied
}

// AddDependency records that from depends on to.
func (g *Graph) AddDependency(from, to NodeID) {
	n, ok := g.nodes[from]
	if !ok {
		g.AddNode(Node{ID: from, DependsOn: []NodeID{to}})
		return
	}
	for _, dep := range n.DependsOn {
		if dep == to {
			return
		}
	}
	n.DependsOn = append(n.DependsOn, to)
}

// Get returns a pointer to the stored node or nil if it does not exist.
func (g *Graph) Get(id NodeID) *Node {
	return g.nodes[id]
}

// Dependencies returns a slice of immediate dependency IDs for the given node.
func (g *Graph) Dependencies(id NodeID) []NodeID {
	if n, ok := g.nodes[id]; ok {
		depsCopy := make([]NodeID, len(n.DependsOn))
		copy(depsCopy, n.DependsOn)
		return depsCopy
	}
	return nil
}

// Dependents returns all node IDs that have a direct dependency on the given
// node, sorted.
func (g *Graph) Dependents(id NodeID) []NodeID {
	var res []NodeID
	for _, n := range g.nodes {
		for _, dep := range n.DependsOn {
			if dep == id {
				res = append(res, n.ID)
				break
			}
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// Order returns roots and their transitive dependencies, each exactly once,
// with every node after all of its dependencies. Ties keep the order in
// which dependencies were declared, then the order of roots.
func (g *Graph) Order(roots ...NodeID) ([]NodeID, error) {
	const (
		unvisited = iota
		visiting
		visited
	)

	state := make(map[NodeID]int)
	var order []NodeID
	var stack []NodeID

	var visit func(id, referrer NodeID) error
	visit = func(id, referrer NodeID) error {
		n, ok := g.nodes[id]
		if !ok {
			return &UnknownNodeError{ID: id, Referrer: referrer}
		}

		switch state[id] {
		case visited:
			return nil
		case visiting:
			start := 0
			for i, s := range stack {
				if s == id {
					start = i
					break
				}
			}
			path := append(append([]NodeID(nil), stack[start:]...), id)
			return &CycleError{Path: path}
		}

		state[id] = visiting
		stack = append(stack, id)
		for _, dep := range n.DependsOn {
			if err := visit(dep, id); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = visited
		order = append(order, id)
		return nil
	}

	for _, root := range roots {
		if err := visit(root, ""); err != nil {
			return nil, err
		}
	}
	return order, nil
}
