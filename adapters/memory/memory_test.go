package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goinsight/domain/core"
	"goinsight/domain/insight"
	"goinsight/ports"
)

func storedInsight(title string) insight.Insight {
	return insight.Insight{
		ID:             core.InsightID(core.NewID()),
		InsightType:    insight.InsightExplanatory,
		Title:          title,
		Confidence:     0.8,
		Importance:     0.7,
		SourcePatterns: []core.PatternID{core.PatternID(core.NewID())},
		CreatedAt:      core.Now(),
	}
}

func TestRepositoryStoresAndReplays(t *testing.T) {
	repo := NewInsightRepository()
	ctx := context.Background()

	first := storedInsight("first")
	second := storedInsight("second")
	require.NoError(t, repo.StoreInsight(ctx, &first))
	require.NoError(t, repo.StoreInsight(ctx, &second))

	assert.Len(t, repo.Stored(), 2)

	patterns, err := repo.GetHistoricalPatterns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, patterns, 2)
	// Most recent first
	assert.Equal(t, "second", patterns[0].Description)

	limited, err := repo.GetHistoricalPatterns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestEMAMetaLearnerTracksAcceptance(t *testing.T) {
	m := NewEMAMetaLearner()
	ctx := context.Background()

	state, err := m.LearnFromInsights(ctx, ports.MetaLearnerState{}, []insight.Insight{storedInsight("a")}, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, state.PassCount)
	assert.InDelta(t, 0.5, state.AcceptanceRateEMA, 1e-9)
	assert.InDelta(t, 0.5, state.LastAcceptanceRate, 1e-9)

	// A starved pass eases the confidence floor
	for i := 0; i < 10; i++ {
		state, err = m.LearnFromInsights(ctx, state, nil, 50)
		require.NoError(t, err)
	}
	assert.Less(t, state.ConfidenceAdjust, 0.0)
	assert.GreaterOrEqual(t, state.ConfidenceAdjust, -m.MaxAdjust)
}

func TestEMAMetaLearnerZeroCandidates(t *testing.T) {
	m := NewEMAMetaLearner()

	state, err := m.LearnFromInsights(context.Background(), ports.MetaLearnerState{}, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, state.PassCount)
	assert.Equal(t, 0.0, state.LastAcceptanceRate)
}
