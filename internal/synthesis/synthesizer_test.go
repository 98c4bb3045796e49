package synthesis

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goinsight/domain/core"
	"goinsight/domain/insight"
	"goinsight/internal/config"
)

func synthConfig() config.SynthesisConfig {
	return config.Default().Synthesis
}

func mkInsight(it insight.InsightType, title string, confidence, importance float64) insight.Insight {
	return insight.Insight{
		ID:          core.InsightID(core.NewID()),
		InsightType: it,
		Title:       title,
		Description: title,
		Confidence:  confidence,
		Importance:  importance,
		Evidence:    []string{"evidence for " + title},
		CreatedAt:   core.Now(),
	}
}

func TestSynthesizeRequiresMinInstances(t *testing.T) {
	s := NewSynthesizer(synthConfig())

	// A single predictive insight cannot satisfy any rule
	insights := []insight.Insight{
		mkInsight(insight.InsightPredictive, "metric_a is heading toward 5", 0.9, 0.9),
	}
	metas, err := s.SynthesizeInsights(context.Background(), insights)
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestSynthesizeCombinesConvergingPredictions(t *testing.T) {
	s := NewSynthesizer(synthConfig())

	insights := []insight.Insight{
		mkInsight(insight.InsightPredictive, "metric_a is heading toward 5", 0.9, 0.9),
		mkInsight(insight.InsightPredictive, "metric_b is heading toward 3", 0.8, 0.8),
	}
	metas, err := s.SynthesizeInsights(context.Background(), insights)
	require.NoError(t, err)
	require.NotEmpty(t, metas)

	m := metas[0]
	assert.Equal(t, "converging_predictions", m.SynthesisMethod)
	assert.Len(t, m.ComponentInsights, 2)
	assert.Greater(t, m.Importance, synthConfig().MinImportance)
	assert.Greater(t, m.Novelty, 0.0)
}

func TestSynthesizeDiscardsLowImportance(t *testing.T) {
	s := NewSynthesizer(synthConfig())

	insights := []insight.Insight{
		mkInsight(insight.InsightPredictive, "metric_a is heading toward 5", 0.9, 0.1),
		mkInsight(insight.InsightPredictive, "metric_b is heading toward 3", 0.8, 0.1),
	}
	metas, err := s.SynthesizeInsights(context.Background(), insights)
	require.NoError(t, err)
	assert.Empty(t, metas, "meta-insights built from unimportant components stay unimportant")
}

func TestImportanceAndNoveltyComputedNotSupplied(t *testing.T) {
	s := NewSynthesizer(synthConfig())

	insights := []insight.Insight{
		mkInsight(insight.InsightExplanatory, "metric_a and metric_b move together", 0.9, 0.9),
		mkInsight(insight.InsightPrescriptive, "Act on the rising trend in metric_a", 0.8, 0.8),
	}
	metas, err := s.SynthesizeInsights(context.Background(), insights)
	require.NoError(t, err)
	require.NotEmpty(t, metas)

	for _, m := range metas {
		assert.Greater(t, m.Importance, 0.0)
		assert.Greater(t, m.Novelty, 0.0)
	}
}

func TestConflictResolutionKeepsHigherConfidence(t *testing.T) {
	up := mkInsight(insight.InsightPredictive, "metric_a rising toward 9", 0.95, 0.9)
	down := mkInsight(insight.InsightPredictive, "metric_a falling toward 1", 0.6, 0.9)
	pool := []insight.Insight{up, down}

	strong := buildMeta("rule_a", []insight.Insight{up})
	weak := buildMeta("rule_b", []insight.Insight{down})

	survivors := resolveConflicts([]insight.MetaInsight{weak, strong}, pool)
	require.Len(t, survivors, 1)
	assert.Equal(t, "rule_a", survivors[0].SynthesisMethod)
}

func TestContradictoryForecastsNeverBothSurvive(t *testing.T) {
	s := NewSynthesizer(synthConfig())

	insights := []insight.Insight{
		mkInsight(insight.InsightPredictive, "metric_a rising toward 9", 0.9, 0.9),
		mkInsight(insight.InsightPredictive, "metric_a falling toward 1", 0.9, 0.9),
	}
	metas, err := s.SynthesizeInsights(context.Background(), insights)
	require.NoError(t, err)

	// The contradictory pair must collapse into at most one claim, and
	// the survivor must not smuggle both directions through.
	require.LessOrEqual(t, len(metas), 1)
	for _, m := range metas {
		up := strings.Contains(m.Description, "rising")
		down := strings.Contains(m.Description, "falling")
		assert.False(t, up && down, "a surviving synthesis must not carry opposing claims: %s", m.Description)
		assert.Len(t, m.ComponentInsights, 1)
	}
}

func TestOpposingForecastsBecomeSeparateCandidates(t *testing.T) {
	up := mkInsight(insight.InsightPredictive, "metric_a rising toward 9", 0.9, 0.9)
	down := mkInsight(insight.InsightPredictive, "metric_a falling toward 1", 0.9, 0.9)
	steady := mkInsight(insight.InsightPredictive, "metric_b holding near 4", 0.8, 0.8)

	groups := splitOpposing([]insight.Insight{up, down, steady})
	require.Len(t, groups, 2)
	assert.Equal(t, up.ID, groups[0][0].ID)
	assert.Equal(t, down.ID, groups[1][0].ID)
	// Neutral components ride along with both sides
	assert.Len(t, groups[0], 2)
	assert.Len(t, groups[1], 2)

	agreeing := splitOpposing([]insight.Insight{up, steady})
	require.Len(t, agreeing, 1)
	assert.Len(t, agreeing[0], 2)
}

func TestComplementaryTypesNeedsMixedTypes(t *testing.T) {
	s := NewComplementaryTypes(synthConfig())

	same := []insight.Insight{
		mkInsight(insight.InsightExplanatory, "Outlier in metric_a", 0.9, 0.9),
		mkInsight(insight.InsightExplanatory, "metric_a and metric_b move together", 0.8, 0.8),
	}
	metas, err := s.Synthesize(context.Background(), same)
	require.NoError(t, err)
	assert.Empty(t, metas)

	mixed := []insight.Insight{
		mkInsight(insight.InsightExplanatory, "Outlier in metric_a", 0.9, 0.9),
		mkInsight(insight.InsightPrescriptive, "Act on the rising trend in metric_a", 0.8, 0.8),
	}
	metas, err = s.Synthesize(context.Background(), mixed)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Len(t, metas[0].ComponentInsights, 2)
}
