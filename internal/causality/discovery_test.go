package causality

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goinsight/domain/core"
	"goinsight/internal/config"
	"goinsight/internal/testkit"
)

func discoveryConfig() config.CausalityConfig {
	return config.Default().Causality
}

func vk(s string) core.VariableKey {
	return core.VariableKey(s)
}

func TestLearnStructureRetainsDependentEdge(t *testing.T) {
	data := testkit.New(42).LinearPair(200, 2.0, 0.3)
	d := NewDiscovery(discoveryConfig(), 4)

	graph, err := d.LearnStructure(context.Background(), data)
	require.NoError(t, err)

	assert.True(t, graph.Adjacent("driver_x", "output_y"),
		"a strongly dependent pair must keep its edge")
}

func TestLearnStructureSeparatesConfoundedPair(t *testing.T) {
	data := testkit.New(42).ConfoundedChain(400, 0.5)
	d := NewDiscovery(discoveryConfig(), 4)

	graph, err := d.LearnStructure(context.Background(), data)
	require.NoError(t, err)

	// x and y are dependent only through z; conditioning on z separates them
	assert.False(t, graph.Adjacent("effect_x", "effect_y"),
		"conditioning on the confounder should remove the x-y edge")
	assert.True(t, graph.Adjacent("confounder_z", "effect_x"))
	assert.True(t, graph.Adjacent("confounder_z", "effect_y"))

	sepset, ok := graph.SeparationSet("effect_x", "effect_y")
	require.True(t, ok)
	assert.Contains(t, sepset, vk("confounder_z"))
}

func TestLearnStructureIsDeterministic(t *testing.T) {
	data := testkit.New(42).ConfoundedChain(300, 0.5)
	d := NewDiscovery(discoveryConfig(), 4)

	first, err := d.LearnStructure(context.Background(), data)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := d.LearnStructure(context.Background(), data)
		require.NoError(t, err)

		firstEdges := first.Edges()
		againEdges := again.Edges()
		require.Len(t, againEdges, len(firstEdges))
		for j := range firstEdges {
			assert.Equal(t, firstEdges[j].X, againEdges[j].X)
			assert.Equal(t, firstEdges[j].Y, againEdges[j].Y)
			assert.Equal(t, firstEdges[j].Direction, againEdges[j].Direction)
		}
	}
}

func TestLearnStructureTinyDataYieldsEmptyGraph(t *testing.T) {
	data := testkit.New(42).LinearPair(3, 2.0, 0.1)
	d := NewDiscovery(discoveryConfig(), 1)

	graph, err := d.LearnStructure(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 0, graph.EdgeCount())
}

func TestDiscoverCausalityProducesInsights(t *testing.T) {
	data := testkit.New(42).LinearPair(200, 2.0, 0.3)
	d := NewDiscovery(discoveryConfig(), 4)

	insights, err := d.DiscoverCausality(context.Background(), data)
	require.NoError(t, err)
	require.NotEmpty(t, insights)

	ci := insights[0]
	assert.Greater(t, ci.Strength, 0.8)
	assert.LessOrEqual(t, ci.Significance, discoveryConfig().MinEdgeSignificance)
	assert.NotEmpty(t, ci.Mechanism)
	assert.NotEmpty(t, ci.Evidence)
}
