package causal

import (
	"fmt"
	"sort"

	"goinsight/domain/core"
)

// EdgeDirection describes edge orientation after constraint-based discovery
type EdgeDirection string

const (
	// DirectionUndetermined means the skeleton edge has not been oriented
	DirectionUndetermined EdgeDirection = "undetermined"
	// DirectionForward means X causes Y
	DirectionForward EdgeDirection = "forward"
	// DirectionBackward means Y causes X
	DirectionBackward EdgeDirection = "backward"
)

// Edge is a (possibly oriented) causal edge between two variables.
// X and Y are stored in lexical order; Direction is relative to that order.
type Edge struct {
	X            core.VariableKey `json:"x"`
	Y            core.VariableKey `json:"y"`
	Direction    EdgeDirection    `json:"direction"`
	Strength     float64          `json:"strength"`     // [0,1]
	Significance float64          `json:"significance"` // p-value-like, lower is stronger
}

// Cause returns the cause variable for an oriented edge
func (e Edge) Cause() core.VariableKey {
	if e.Direction == DirectionBackward {
		return e.Y
	}
	return e.X
}

// Effect returns the effect variable for an oriented edge
func (e Edge) Effect() core.VariableKey {
	if e.Direction == DirectionBackward {
		return e.X
	}
	return e.Y
}

// Graph is a partially directed causal structure over observed variables.
// The skeleton phase removes edges monotonically; orientation only adds
// direction, never adds or removes edges.
type Graph struct {
	Variables []core.VariableKey
	edges     map[pairKey]*Edge
	// sepsets records the conditioning set that separated each removed pair
	sepsets map[pairKey][]core.VariableKey
}

type pairKey struct {
	a, b core.VariableKey
}

func makePair(x, y core.VariableKey) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// NewCompleteGraph starts from the complete undirected graph over variables
func NewCompleteGraph(variables []core.VariableKey) *Graph {
	vars := make([]core.VariableKey, len(variables))
	copy(vars, variables)
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })

	g := &Graph{
		Variables: vars,
		edges:     make(map[pairKey]*Edge),
		sepsets:   make(map[pairKey][]core.VariableKey),
	}
	for i := 0; i < len(vars); i++ {
		for j := i + 1; j < len(vars); j++ {
			pk := makePair(vars[i], vars[j])
			g.edges[pk] = &Edge{X: pk.a, Y: pk.b, Direction: DirectionUndetermined}
		}
	}
	return g
}

// Adjacent reports whether x and y share an edge
func (g *Graph) Adjacent(x, y core.VariableKey) bool {
	_, ok := g.edges[makePair(x, y)]
	return ok
}

// GetEdge returns the edge between x and y, if present
func (g *Graph) GetEdge(x, y core.VariableKey) (*Edge, bool) {
	e, ok := g.edges[makePair(x, y)]
	return e, ok
}

// RemoveEdge deletes the x-y edge and records the witnessing separation set.
// Removal is monotone: once removed an edge never reappears.
func (g *Graph) RemoveEdge(x, y core.VariableKey, sepset []core.VariableKey) {
	pk := makePair(x, y)
	delete(g.edges, pk)
	recorded := make([]core.VariableKey, len(sepset))
	copy(recorded, sepset)
	g.sepsets[pk] = recorded
}

// SeparationSet returns the conditioning set that removed the x-y edge
func (g *Graph) SeparationSet(x, y core.VariableKey) ([]core.VariableKey, bool) {
	s, ok := g.sepsets[makePair(x, y)]
	return s, ok
}

// SetEdgeStats records strength and significance on a surviving edge
func (g *Graph) SetEdgeStats(x, y core.VariableKey, strength, significance float64) error {
	e, ok := g.edges[makePair(x, y)]
	if !ok {
		return fmt.Errorf("no edge between %s and %s", x, y)
	}
	e.Strength = strength
	e.Significance = significance
	return nil
}

// Orient directs the edge from cause to effect. It fails if the edge is
// absent or already oriented the opposite way (orientation never flips).
func (g *Graph) Orient(cause, effect core.VariableKey) error {
	pk := makePair(cause, effect)
	e, ok := g.edges[pk]
	if !ok {
		return fmt.Errorf("no edge between %s and %s", cause, effect)
	}
	want := DirectionForward
	if pk.a != cause {
		want = DirectionBackward
	}
	if e.Direction != DirectionUndetermined && e.Direction != want {
		return fmt.Errorf("edge %s-%s already oriented", pk.a, pk.b)
	}
	e.Direction = want
	return nil
}

// IsOriented reports whether the edge from x toward y is directed x→y
func (g *Graph) IsOriented(x, y core.VariableKey) bool {
	pk := makePair(x, y)
	e, ok := g.edges[pk]
	if !ok {
		return false
	}
	if pk.a == x {
		return e.Direction == DirectionForward
	}
	return e.Direction == DirectionBackward
}

// Undirected reports whether the x-y edge exists and carries no orientation
func (g *Graph) Undirected(x, y core.VariableKey) bool {
	e, ok := g.edges[makePair(x, y)]
	return ok && e.Direction == DirectionUndetermined
}

// Neighbors returns all variables adjacent to x, sorted for determinism
func (g *Graph) Neighbors(x core.VariableKey) []core.VariableKey {
	var out []core.VariableKey
	for _, v := range g.Variables {
		if v != x && g.Adjacent(x, v) {
			out = append(out, v)
		}
	}
	return out
}

// Edges returns all edges in deterministic (lexical) order
func (g *Graph) Edges() []Edge {
	keys := make([]pairKey, 0, len(g.edges))
	for pk := range g.edges {
		keys = append(keys, pk)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})
	out := make([]Edge, 0, len(keys))
	for _, pk := range keys {
		out = append(out, *g.edges[pk])
	}
	return out
}

// EdgeCount returns the number of surviving edges
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// HasDirectedPath reports whether a directed path from src to dst exists.
// Used by orientation propagation to avoid creating cycles.
func (g *Graph) HasDirectedPath(src, dst core.VariableKey) bool {
	visited := make(map[core.VariableKey]bool)
	var walk func(core.VariableKey) bool
	walk = func(at core.VariableKey) bool {
		if at == dst {
			return true
		}
		visited[at] = true
		for _, n := range g.Neighbors(at) {
			if !visited[n] && g.IsOriented(at, n) && walk(n) {
				return true
			}
		}
		return false
	}
	return walk(src)
}
