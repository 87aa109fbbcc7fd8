// Package graph holds a small directed graph keyed by symbol name and
// finds its elementary cycles.
package graph

import "strings"

// Graph is a directed graph over named nodes. Node and edge order follow
// insertion so that traversal, and therefore reporting, is deterministic.
type Graph struct {
	nodes []string
	index map[string]int
	edges [][]int
	seen  []map[int]struct{}
}

// New returns a graph containing the given nodes.
func New(nodes ...string) *Graph {
	g := &Graph{index: make(map[string]int)}
	for _, n := range nodes {
		g.AddNode(n)
	}
	return g
}

// AddNode adds n if it is not already present.
func (g *Graph) AddNode(n string) {
	if _, ok := g.index[n]; ok {
		return
	}
	g.index[n] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.edges = append(g.edges, nil)
	g.seen = append(g.seen, make(map[int]struct{}))
}

// AddEdge adds from → to, creating missing nodes. Self-edges and
// duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	if from == to {
		return
	}
	g.AddNode(from)
	g.AddNode(to)
	f, t := g.index[from], g.index[to]
	if _, dup := g.seen[f][t]; dup {
		return
	}
	g.seen[f][t] = struct{}{}
	g.edges[f] = append(g.edges[f], t)
}

// Nodes returns node names in insertion order.
func (g *Graph) Nodes() []string {
	return g.nodes
}

// FindCycles runs a depth-first search from every node in insertion order,
// keeping a recursion stack. Each back edge to a node on the stack yields the
// stack segment from that node to the top. A cycle found from several entry
// points is reported once, keyed by its minimal rotation.
func (g *Graph) FindCycles() [][]string {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make([]int, len(g.nodes))
	var stack []int
	reported := make(map[string]struct{})
	var cycles [][]string

	var visit func(n int)
	visit = func(n int) {
		state[n] = onStack
		stack = append(stack, n)
		for _, next := range g.edges[n] {
			switch state[next] {
			case onStack:
				start := 0
				for i, s := range stack {
					if s == next {
						start = i
						break
					}
				}
				cycle := make([]string, 0, len(stack)-start)
				for _, s := range stack[start:] {
					cycle = append(cycle, g.nodes[s])
				}
				key := rotationKey(cycle)
				if _, dup := reported[key]; !dup {
					reported[key] = struct{}{}
					cycles = append(cycles, cycle)
				}
			case unvisited:
				visit(next)
			}
		}
		stack = stack[:len(stack)-1]
		state[n] = done
	}

	for n := range g.nodes {
		if state[n] == unvisited {
			visit(n)
		}
	}
	return cycles
}

// rotationKey returns the lexicographically smallest rotation of cycle,
// joined, so that A→B→C and B→C→A share a key.
func rotationKey(cycle []string) string {
	best := -1
	var bestKey string
	for i := range cycle {
		rotated := make([]string, 0, len(cycle))
		rotated = append(rotated, cycle[i:]...)
		rotated = append(rotated, cycle[:i]...)
		key := strings.Join(rotated, "\x00")
		if best < 0 || key < bestKey {
			best, bestKey = i, key
		}
	}
	return bestKey
}

// FormatCycle renders a cycle closed on its first node: "A → B → A".
func FormatCycle(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	return strings.Join(cycle, " → ") + " → " + cycle[0]
}
