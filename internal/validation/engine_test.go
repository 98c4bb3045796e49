package validation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goinsight/domain/core"
	"goinsight/domain/insight"
	"goinsight/internal/config"
)

func validationConfig() config.ValidationConfig {
	return config.Default().Validation
}

func wellFormedInsight() insight.Insight {
	return insight.Insight{
		ID:          core.InsightID(core.NewID()),
		InsightType: insight.InsightExplanatory,
		Title:       "metric_a and metric_b move together",
		Description: "Observed correlation of 0.85 suggests metric_a and metric_b share a driver.",
		Confidence:  0.85,
		Importance:  0.7,
		Evidence: []string{
			"correlation 0.85 over 120 samples",
			"pattern may reflect a shared upstream driver",
			"relationship stable across the observation window",
		},
		Recommendations: []string{
			"Check whether a common factor drives both metric_a and metric_b before treating one as a lever",
		},
		CreatedAt: core.Now(),
	}
}

func TestWellFormedInsightPasses(t *testing.T) {
	e := NewEngine(validationConfig(), 2)
	ins := wellFormedInsight()

	result := e.ValidateInsight(&ins, nil)
	assert.True(t, result.IsValid)
	assert.Greater(t, result.OverallScore, validationConfig().ValidThreshold)
	assert.Equal(t, ins.ID, result.InsightID)
}

func TestEvidenceFreeInsightFails(t *testing.T) {
	e := NewEngine(validationConfig(), 2)
	ins := wellFormedInsight()
	ins.Evidence = nil
	// High confidence keeps the weighted score above threshold on the
	// other axes, so this exercises the zero-evidence gate directly.
	ins.Confidence = 0.9

	result := e.ValidateInsight(&ins, nil)
	assert.False(t, result.IsValid, "an insight citing no evidence must fail validation")
	assert.Equal(t, 0.0, result.EvidenceScore)
	assert.NotEmpty(t, result.Issues)
}

func TestValidationIsIdempotent(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	e := NewEngine(validationConfig(), 2).WithClock(clock)
	ins := wellFormedInsight()
	ins.CreatedAt = core.NewTimestamp(clock())

	first := e.ValidateInsight(&ins, nil)
	for i := 0; i < 5; i++ {
		again := e.ValidateInsight(&ins, nil)
		assert.Equal(t, first, again)
	}
}

func TestConsistencyPenaltiesCompose(t *testing.T) {
	// Internal contradiction and implausible confidence should both bite:
	// 0.5 * 0.8 = 0.4, not 0.5 + something.
	ins := wellFormedInsight()
	ins.Title = "metric_a rising"
	ins.Description = "metric_a shows an increase and also a sustained decrease."
	ins.Confidence = 0.95
	ins.Evidence = []string{"single observation"}

	score, issues := checkConsistency(&ins, nil)
	assert.InDelta(t, 0.4, score, 1e-9)
	assert.Len(t, issues, 2)
}

func TestConflictWithAcceptedKnowledge(t *testing.T) {
	accepted := wellFormedInsight()
	accepted.Title = "metric_a rising steadily"
	accepted.Description = "metric_a shows a sustained increase."

	ins := wellFormedInsight()
	ins.Title = "metric_a falling"
	ins.Description = "metric_a shows a sustained decrease."

	score, issues := checkConsistency(&ins, []insight.Insight{accepted})
	assert.InDelta(t, 0.7, score, 1e-9)
	assert.NotEmpty(t, issues)
}

func TestOverallScoreUsesConfiguredWeights(t *testing.T) {
	cfg := config.ValidationConfig{
		ConsistencyWeight:   1.0,
		EvidenceWeight:      0,
		ActionabilityWeight: 0,
		BiasWeight:          0,
		ValidThreshold:      0.6,
	}
	e := NewEngine(cfg, 1)
	ins := wellFormedInsight()
	ins.Evidence = nil // would fail under default weights

	result := e.ValidateInsight(&ins, nil)
	assert.InDelta(t, result.ConsistencyScore, result.OverallScore, 1e-9)
}

func TestValidateAllPreservesOrder(t *testing.T) {
	e := NewEngine(validationConfig(), 4)
	var insights []insight.Insight
	for i := 0; i < 20; i++ {
		insights = append(insights, wellFormedInsight())
	}

	results, err := e.ValidateAll(context.Background(), insights, nil)
	require.NoError(t, err)
	require.Len(t, results, len(insights))
	for i := range insights {
		assert.Equal(t, insights[i].ID, results[i].InsightID)
	}
}
