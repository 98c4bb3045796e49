package generators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal/analyzers"
	"goinsight/internal/config"
	"goinsight/internal/testkit"
)

func generatorConfig() config.GeneratorConfig {
	return config.Default().Generators
}

func patternsFor(t *testing.T, seed int64) ([]insight.Pattern, *dataset.ProcessedData) {
	t.Helper()
	data := testkit.New(seed).ConfoundedChain(120, 0.3)
	engine := analyzers.NewEngine(config.Default().Analyzers)
	patterns, _, err := engine.AnalyzeAll(context.Background(), data, false)
	require.NoError(t, err)
	return patterns, data
}

func TestPredictiveEnsemblesOnePerVariable(t *testing.T) {
	data := testkit.New(42).TrendSeries(60, 0.5, 0.5)
	engine := analyzers.NewEngine(config.Default().Analyzers)
	patterns, _, err := engine.AnalyzeAll(context.Background(), data, false)
	require.NoError(t, err)

	g := NewPredictiveGenerator(generatorConfig())
	insights, err := g.GenerateInsights(context.Background(), patterns, data)
	require.NoError(t, err)

	// One ensembled forecast per variable, never one per model
	seen := make(map[string]int)
	for _, ins := range insights {
		assert.Equal(t, insight.InsightPredictive, ins.InsightType)
		assert.Greater(t, ins.Confidence, generatorConfig().PredictiveFloor)
		seen[ins.Title]++
	}
	for title, count := range seen {
		assert.Equal(t, 1, count, "duplicate forecast insight: %s", title)
	}
}

func TestForecastProjectsTrendForward(t *testing.T) {
	data := testkit.New(42).TrendSeries(60, 0.5, 0.3)
	g := NewPredictiveGenerator(generatorConfig())

	predictions, err := g.Forecast(context.Background(), data, insight.PredictionContext{
		TargetVariables: []core.VariableKey{"metric_trend"},
		Horizon:         5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, predictions)

	p := predictions[0]
	assert.Equal(t, core.VariableKey("metric_trend"), p.TargetVariable)
	assert.Equal(t, 5, p.Horizon)
	assert.Less(t, p.Interval[0], p.Predicted)
	assert.Greater(t, p.Interval[1], p.Predicted)
}

func TestExplanatoryExplainsCorrelations(t *testing.T) {
	patterns, data := patternsFor(t, 42)
	g := NewExplanatoryGenerator(generatorConfig())

	insights, err := g.GenerateInsights(context.Background(), patterns, data)
	require.NoError(t, err)
	require.NotEmpty(t, insights)

	for _, ins := range insights {
		assert.Equal(t, insight.InsightExplanatory, ins.InsightType)
		assert.Greater(t, ins.Confidence, generatorConfig().ExplanatoryFloor)
		assert.NotEmpty(t, ins.SourcePatterns)
	}
}

func TestPrescriptiveRecommendsOnTrend(t *testing.T) {
	data := testkit.New(42).TrendSeries(60, -0.5, 0.3)
	engine := analyzers.NewEngine(config.Default().Analyzers)
	patterns, _, err := engine.AnalyzeAll(context.Background(), data, false)
	require.NoError(t, err)

	g := NewPrescriptiveGenerator(generatorConfig())
	insights, err := g.GenerateInsights(context.Background(), patterns, data)
	require.NoError(t, err)
	require.NotEmpty(t, insights)

	for _, ins := range insights {
		assert.Equal(t, insight.InsightPrescriptive, ins.InsightType)
		assert.NotEmpty(t, ins.Recommendations)
	}
}

func TestCreativeRequiresSharedVariables(t *testing.T) {
	a := insight.Pattern{
		ID:          core.PatternID(core.NewID()),
		PatternType: insight.PatternTrend,
		Description: "Rising trend in metric_a",
		Confidence:  0.9,
		Metadata:    map[string]interface{}{"variable": "metric_a"},
		DetectedAt:  core.Now(),
	}
	b := insight.Pattern{
		ID:          core.PatternID(core.NewID()),
		PatternType: insight.PatternAnomaly,
		Description: "Outlier in metric_b",
		Confidence:  0.9,
		Metadata:    map[string]interface{}{"variable": "metric_b", "anomaly_score": 0.9},
		DetectedAt:  core.Now(),
	}

	g := NewCreativeGenerator(generatorConfig())
	insights, err := g.GenerateInsights(context.Background(), []insight.Pattern{a, b}, nil)
	require.NoError(t, err)
	assert.Empty(t, insights, "patterns about different variables must not combine")

	b.Metadata["variable"] = "metric_a"
	insights, err = g.GenerateInsights(context.Background(), []insight.Pattern{a, b}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, insights)
	assert.Equal(t, insight.InsightCreative, insights[0].InsightType)
	assert.Len(t, insights[0].SourcePatterns, 2)
}

func TestEngineRegistrationOrderStable(t *testing.T) {
	patterns, data := patternsFor(t, 42)
	engine := NewEngine(generatorConfig())

	first, _, err := engine.GenerateAll(context.Background(), patterns, data, true)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, _, err := engine.GenerateAll(context.Background(), patterns, data, true)
		require.NoError(t, err)
		require.Len(t, again, len(first))
		for j := range first {
			assert.Equal(t, first[j].InsightType, again[j].InsightType)
			assert.Equal(t, first[j].Title, again[j].Title)
		}
	}
}
