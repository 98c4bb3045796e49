package analyzers

import (
	"context"
	"fmt"
	"math"
	"sort"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal/config"
	"goinsight/internal/stats"
)

// TemporalAnalyzer detects trends, seasonality, and change points.
// Row order is treated as time order; explicit timestamps refine the evidence.
type TemporalAnalyzer struct {
	cfg  config.AnalyzerConfig
	dist *stats.Distributions
}

// NewTemporalAnalyzer creates a temporal pattern analyzer
func NewTemporalAnalyzer(cfg config.AnalyzerConfig) *TemporalAnalyzer {
	return &TemporalAnalyzer{cfg: cfg, dist: stats.NewDistributions()}
}

// Name returns the analyzer name
func (a *TemporalAnalyzer) Name() string {
	return "temporal"
}

// AnalyzePatterns scans for trend, seasonality, and change-point patterns.
// Within each category patterns are ordered by descending confidence, ties
// broken by earliest evidence row.
func (a *TemporalAnalyzer) AnalyzePatterns(ctx context.Context, data *dataset.ProcessedData) ([]insight.Pattern, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if data.RowCount() < 4 {
		return nil, nil
	}

	trends := a.trendPatterns(data)
	seasonal := a.seasonalityPatterns(data)
	changes := a.changePointPatterns(data)

	sortByConfidence(trends)
	sortByConfidence(seasonal)
	sortByConfidence(changes)

	out := make([]insight.Pattern, 0, len(trends)+len(seasonal)+len(changes))
	out = append(out, trends...)
	out = append(out, seasonal...)
	out = append(out, changes...)
	return out, nil
}

// trendPatterns regresses each variable on the time index. Any non-flat trend
// is kept; confidence is the statistical significance of the slope.
func (a *TemporalAnalyzer) trendPatterns(data *dataset.ProcessedData) []insight.Pattern {
	var patterns []insight.Pattern
	t := timeIndex(data.RowCount())

	for j, key := range data.Matrix.VariableKeys {
		col := data.ColumnAt(j)
		slope, intercept, rsq := stats.LinearTrend(t, col)
		if slope == 0 {
			continue
		}

		pValue := stats.SlopePValue(t, col, slope, intercept)
		direction := "increasing"
		if slope < 0 {
			direction = "decreasing"
		}

		p := insight.Pattern{
			ID:          core.PatternID(core.NewID()),
			PatternType: insight.PatternTrend,
			Description: fmt.Sprintf("%s shows an %s trend (slope=%.4f, R²=%.3f, p=%.4f)",
				key, direction, slope, rsq, pValue),
			Confidence: confidenceFromPValue(pValue),
			Evidence: []string{
				fmt.Sprintf("slope %.4f per step over %d samples", slope, len(col)),
				fmt.Sprintf("R² %.3f, slope p-value %.4f", rsq, pValue),
			},
			Metadata: map[string]interface{}{
				"variable":     string(key),
				"slope":        slope,
				"intercept":    intercept,
				"r_squared":    rsq,
				"p_value":      pValue,
				"first_row":    0,
				"sample_count": len(col),
			},
			DetectedAt: core.Now(),
		}
		patterns = append(patterns, p)
	}
	return patterns
}

// seasonalityPatterns finds the autocorrelation peak across candidate periods
func (a *TemporalAnalyzer) seasonalityPatterns(data *dataset.ProcessedData) []insight.Pattern {
	var patterns []insight.Pattern
	n := data.RowCount()
	if n < 8 {
		return nil
	}

	for j, key := range data.Matrix.VariableKeys {
		col := data.ColumnAt(j)

		bestPeriod, bestACF := 0, 0.0
		for period := 2; period <= n/2; period++ {
			acf := autocorrelation(col, period)
			if acf > bestACF {
				bestACF = acf
				bestPeriod = period
			}
		}
		if bestPeriod == 0 || bestACF < 0.3 {
			continue
		}

		// Significance of an autocorrelation at this lag
		pValue := a.dist.CorrelationPValue(bestACF, n-bestPeriod)

		p := insight.Pattern{
			ID:          core.PatternID(core.NewID()),
			PatternType: insight.PatternSeasonality,
			Description: fmt.Sprintf("%s repeats with period %d (strength=%.3f, p=%.4f)",
				key, bestPeriod, bestACF, pValue),
			Confidence: confidenceFromPValue(pValue),
			Evidence: []string{
				fmt.Sprintf("autocorrelation %.3f at lag %d", bestACF, bestPeriod),
				fmt.Sprintf("%d samples scanned", n),
			},
			Metadata: map[string]interface{}{
				"variable":  string(key),
				"period":    bestPeriod,
				"strength":  bestACF,
				"p_value":   pValue,
				"first_row": 0,
			},
			DetectedAt: core.Now(),
		}
		patterns = append(patterns, p)
	}
	return patterns
}

// changePointPatterns finds the split maximizing the mean shift per variable
func (a *TemporalAnalyzer) changePointPatterns(data *dataset.ProcessedData) []insight.Pattern {
	var patterns []insight.Pattern
	n := data.RowCount()
	if n < 10 {
		return nil
	}

	for j, key := range data.Matrix.VariableKeys {
		col := data.ColumnAt(j)

		bestIdx, bestT := 0, 0.0
		for split := 4; split <= n-4; split++ {
			t := welchT(col[:split], col[split:])
			if math.Abs(t) > math.Abs(bestT) {
				bestT = t
				bestIdx = split
			}
		}
		if bestIdx == 0 {
			continue
		}

		df := n - 2
		pValue := a.dist.TTestPValue(bestT, df)
		conf := confidenceFromPValue(pValue)
		if conf < 0.5 {
			continue
		}

		before := mean(col[:bestIdx])
		after := mean(col[bestIdx:])

		p := insight.Pattern{
			ID:          core.PatternID(core.NewID()),
			PatternType: insight.PatternChangePoint,
			Description: fmt.Sprintf("%s shifts at row %d (%.3f → %.3f, p=%.4f)",
				key, bestIdx, before, after, pValue),
			Confidence: conf,
			Evidence: []string{
				fmt.Sprintf("mean shift %.3f at row %d", after-before, bestIdx),
				fmt.Sprintf("welch t=%.2f, p=%.4f", bestT, pValue),
			},
			Metadata: map[string]interface{}{
				"variable":    string(key),
				"change_row":  bestIdx,
				"magnitude":   after - before,
				"mean_before": before,
				"mean_after":  after,
				"p_value":     pValue,
				"first_row":   bestIdx,
			},
			DetectedAt: core.Now(),
		}
		patterns = append(patterns, p)
	}
	return patterns
}

// sortByConfidence orders descending by confidence, ties by earliest evidence row
func sortByConfidence(patterns []insight.Pattern) {
	sort.SliceStable(patterns, func(i, j int) bool {
		if patterns[i].Confidence != patterns[j].Confidence {
			return patterns[i].Confidence > patterns[j].Confidence
		}
		return firstRow(patterns[i]) < firstRow(patterns[j])
	})
}

func firstRow(p insight.Pattern) int {
	if v, ok := p.Metadata["first_row"].(int); ok {
		return v
	}
	return 0
}

func timeIndex(n int) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i)
	}
	return t
}

func autocorrelation(col []float64, lag int) float64 {
	if lag >= len(col) {
		return 0
	}
	return stats.PearsonCorrelation(col[:len(col)-lag], col[lag:])
}

func mean(col []float64) float64 {
	if len(col) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range col {
		sum += v
	}
	return sum / float64(len(col))
}

func welchT(a, b []float64) float64 {
	if len(a) < 2 || len(b) < 2 {
		return 0
	}
	meanA, meanB := mean(a), mean(b)
	varA, varB := variance(a, meanA), variance(b, meanB)
	denom := math.Sqrt(varA/float64(len(a)) + varB/float64(len(b)))
	if denom == 0 {
		return 0
	}
	return (meanA - meanB) / denom
}

func variance(col []float64, m float64) float64 {
	if len(col) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range col {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(col)-1)
}
