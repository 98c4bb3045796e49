package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goinsight/adapters/memory"
	"goinsight/domain/core"
	"goinsight/domain/insight"
	"goinsight/internal/config"
	"goinsight/internal/testkit"
)

func newTestExtractor(t *testing.T) (*Extractor, *memory.InsightRepository) {
	t.Helper()
	cfg := config.Default()
	repo := memory.NewInsightRepository()
	ext, err := New(&cfg, repo, memory.NewEMAMetaLearner())
	require.NoError(t, err)
	return ext, repo
}

func richDataset(seed int64) *testkit.Generator {
	return testkit.New(seed)
}

func TestExtractInsightsFullPass(t *testing.T) {
	ext, repo := newTestExtractor(t)
	gen := richDataset(42)
	data := gen.WithSegments(gen.ConfoundedChain(120, 0.3), 3)

	report, err := ext.ExtractInsights(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, StateIdle, ext.State(), "extractor returns to Idle after a pass")
	assert.NotEmpty(t, report.Patterns)
	assert.NotEmpty(t, report.Insights)
	assert.Equal(t, data.Fingerprint, report.Fingerprint)

	// Every accepted insight carries its validation score and clears the floors
	for _, ins := range report.Insights {
		require.NotNil(t, ins.ValidationScore)
		assert.Greater(t, *ins.ValidationScore, ext.cfg.Validation.ValidThreshold)
		assert.GreaterOrEqual(t, ins.Confidence, ext.cfg.MinConfidence)
		assert.GreaterOrEqual(t, ins.Importance, ext.cfg.MinImportance)
	}

	// Accepted insights were handed to the repository
	assert.Len(t, repo.Stored(), len(report.Insights))
}

func TestExtractInsightsSortedByRank(t *testing.T) {
	ext, _ := newTestExtractor(t)
	gen := richDataset(42)
	data := gen.WithSegments(gen.ConfoundedChain(120, 0.3), 3)

	report, err := ext.ExtractInsights(context.Background(), data)
	require.NoError(t, err)
	require.NotEmpty(t, report.Insights)

	for i := 1; i < len(report.Insights); i++ {
		assert.GreaterOrEqual(t, report.Insights[i-1].Rank(), report.Insights[i].Rank(),
			"insights must be ordered by importance*confidence descending")
	}
}

func TestExtractInsightsHonorsCap(t *testing.T) {
	cfg := config.Default()
	cfg.MaxInsightsPerAnalysis = 2
	repo := memory.NewInsightRepository()
	ext, err := New(&cfg, repo, memory.NewEMAMetaLearner())
	require.NoError(t, err)

	gen := richDataset(42)
	data := gen.WithSegments(gen.ConfoundedChain(120, 0.3), 3)

	report, err := ext.ExtractInsights(context.Background(), data)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(report.Insights), 2)
}

func TestExtractInsightsEmptyData(t *testing.T) {
	ext, repo := newTestExtractor(t)
	data := richDataset(42).Empty("a", "b")

	report, err := ext.ExtractInsights(context.Background(), data)
	require.NoError(t, err, "an empty dataset is valid input")
	assert.Empty(t, report.Patterns)
	assert.Empty(t, report.Insights)
	assert.Empty(t, repo.Stored())
}

func TestExtractInsightsDeterministicAcrossRuns(t *testing.T) {
	gen := richDataset(42)
	data := gen.WithSegments(gen.ConfoundedChain(120, 0.3), 3)

	ext1, _ := newTestExtractor(t)
	first, err := ext1.ExtractInsights(context.Background(), data)
	require.NoError(t, err)

	ext2, _ := newTestExtractor(t)
	second, err := ext2.ExtractInsights(context.Background(), data)
	require.NoError(t, err)

	require.Len(t, second.Insights, len(first.Insights))
	for i := range first.Insights {
		assert.Equal(t, first.Insights[i].Title, second.Insights[i].Title)
		assert.Equal(t, first.Insights[i].InsightType, second.Insights[i].InsightType)
	}
}

func TestExtractInsightsCancellation(t *testing.T) {
	ext, _ := newTestExtractor(t)
	data := richDataset(42).ConfoundedChain(120, 0.3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ext.ExtractInsights(ctx, data)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateIdle, ext.State())
}

type recordingRepo struct {
	*memory.InsightRepository
	historyCalls int
	history      []insight.Pattern
}

func (r *recordingRepo) GetHistoricalPatterns(ctx context.Context, limit int) ([]insight.Pattern, error) {
	r.historyCalls++
	return r.history, nil
}

func TestValidationConsultsStoredHistory(t *testing.T) {
	cfg := config.Default()
	repo := &recordingRepo{InsightRepository: memory.NewInsightRepository()}
	ext, err := New(&cfg, repo, memory.NewEMAMetaLearner())
	require.NoError(t, err)

	gen := richDataset(42)
	data := gen.WithSegments(gen.ConfoundedChain(120, 0.3), 3)

	_, err = ext.ExtractInsights(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.historyCalls, "each pass fetches accepted history once for validation")
}

func TestPriorKnowledgeCarriesClaims(t *testing.T) {
	p := insight.Pattern{
		Description: "metric_a rising steadily",
		Confidence:  0.8,
		DetectedAt:  core.Now(),
	}
	prior := priorKnowledge([]insight.Pattern{p})
	require.Len(t, prior, 1)
	assert.Equal(t, p.Description, prior[0].Description)
	assert.Equal(t, p.Description, prior[0].Title)
	assert.Equal(t, 0.8, prior[0].Confidence)
}

type failingRepo struct{}

func (failingRepo) StoreInsight(ctx context.Context, ins *insight.Insight) error {
	return errors.New("connection refused")
}

func (failingRepo) GetHistoricalPatterns(ctx context.Context, limit int) ([]insight.Pattern, error) {
	return nil, errors.New("connection refused")
}

func TestRepositoryFailureWrapped(t *testing.T) {
	cfg := config.Default()
	ext, err := New(&cfg, failingRepo{}, memory.NewEMAMetaLearner())
	require.NoError(t, err)

	gen := richDataset(42)
	data := gen.WithSegments(gen.ConfoundedChain(120, 0.3), 3)

	report, err := ext.ExtractInsights(context.Background(), data)
	require.Error(t, err)
	assert.True(t, core.IsCollaboratorError(err))
	assert.Equal(t, StateIdle, ext.State())

	// The extraction work is not thrown away with the storage failure
	require.NotNil(t, report)
	assert.NotEmpty(t, report.Insights)
}

func TestMetaLearnerStateAdvances(t *testing.T) {
	ext, _ := newTestExtractor(t)
	gen := richDataset(42)
	data := gen.WithSegments(gen.ConfoundedChain(120, 0.3), 3)

	require.Equal(t, 0, ext.MetaState().PassCount)

	_, err := ext.ExtractInsights(context.Background(), data)
	require.NoError(t, err)

	state := ext.MetaState()
	assert.Equal(t, 1, state.PassCount)
	assert.Greater(t, state.LastAcceptanceRate, 0.0)
}

func TestGeneratePredictionsEntryPoint(t *testing.T) {
	ext, _ := newTestExtractor(t)
	data := richDataset(42).TrendSeries(60, 0.5, 0.3)

	predictions, err := ext.GeneratePredictions(context.Background(), data, insight.PredictionContext{Horizon: 2})
	require.NoError(t, err)
	require.NotEmpty(t, predictions)
	assert.Equal(t, core.VariableKey("metric_trend"), predictions[0].TargetVariable)
}

func TestDiscoverCausalityEntryPoint(t *testing.T) {
	ext, _ := newTestExtractor(t)
	data := richDataset(42).LinearPair(200, 2.0, 0.3)

	insights, err := ext.DiscoverCausality(context.Background(), data)
	require.NoError(t, err)
	assert.NotEmpty(t, insights)
}
