package causal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goinsight/domain/core"
)

func vars(names ...string) []core.VariableKey {
	out := make([]core.VariableKey, len(names))
	for i, n := range names {
		out[i] = core.VariableKey(n)
	}
	return out
}

func TestNewCompleteGraph(t *testing.T) {
	g := NewCompleteGraph(vars("c", "a", "b"))

	assert.Equal(t, vars("a", "b", "c"), g.Variables)
	assert.Equal(t, 3, g.EdgeCount())
	assert.True(t, g.Adjacent("a", "b"))
	assert.True(t, g.Adjacent("b", "a"))
}

func TestRemoveEdgeIsMonotone(t *testing.T) {
	g := NewCompleteGraph(vars("a", "b", "c"))

	g.RemoveEdge("a", "b", vars("c"))
	assert.False(t, g.Adjacent("a", "b"))
	assert.Equal(t, 2, g.EdgeCount())

	// Removing again is a no-op, the edge never comes back
	g.RemoveEdge("a", "b", nil)
	assert.False(t, g.Adjacent("a", "b"))
	assert.Equal(t, 2, g.EdgeCount())
}

func TestSeparationSetRecorded(t *testing.T) {
	g := NewCompleteGraph(vars("a", "b", "c"))

	g.RemoveEdge("a", "b", vars("c"))

	sepset, ok := g.SeparationSet("a", "b")
	require.True(t, ok)
	assert.Equal(t, vars("c"), sepset)

	// Order of endpoints does not matter
	sepset, ok = g.SeparationSet("b", "a")
	require.True(t, ok)
	assert.Equal(t, vars("c"), sepset)
}

func TestOrientConflicts(t *testing.T) {
	g := NewCompleteGraph(vars("a", "b"))

	require.NoError(t, g.Orient("a", "b"))
	assert.True(t, g.IsOriented("a", "b"))

	// Re-orienting the same way is fine, the opposite way is not
	assert.NoError(t, g.Orient("a", "b"))
	assert.Error(t, g.Orient("b", "a"))
}

func TestNeighborsSorted(t *testing.T) {
	g := NewCompleteGraph(vars("d", "b", "a", "c"))
	g.RemoveEdge("a", "c", nil)

	assert.Equal(t, vars("b", "d"), g.Neighbors("a"))
}

func TestHasDirectedPath(t *testing.T) {
	g := NewCompleteGraph(vars("a", "b", "c"))
	g.RemoveEdge("a", "c", nil)
	require.NoError(t, g.Orient("a", "b"))
	require.NoError(t, g.Orient("b", "c"))

	assert.True(t, g.HasDirectedPath("a", "c"))
	assert.False(t, g.HasDirectedPath("c", "a"))
}

func TestEdgesDeterministicOrder(t *testing.T) {
	g := NewCompleteGraph(vars("b", "c", "a"))

	edges := g.Edges()
	require.Len(t, edges, 3)
	assert.Equal(t, core.VariableKey("a"), edges[0].X)
	assert.Equal(t, core.VariableKey("b"), edges[0].Y)
	assert.Equal(t, core.VariableKey("a"), edges[1].X)
	assert.Equal(t, core.VariableKey("c"), edges[1].Y)
	assert.Equal(t, core.VariableKey("b"), edges[2].X)
	assert.Equal(t, core.VariableKey("c"), edges[2].Y)
}
