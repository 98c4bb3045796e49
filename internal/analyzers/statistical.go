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

// StatisticalAnalyzer detects correlations, distribution fits and anomalies.
// Thresholds are policy constants taken from configuration, not per-call magic.
type StatisticalAnalyzer struct {
	cfg  config.AnalyzerConfig
	dist *stats.Distributions
}

// NewStatisticalAnalyzer creates a statistical pattern analyzer
func NewStatisticalAnalyzer(cfg config.AnalyzerConfig) *StatisticalAnalyzer {
	return &StatisticalAnalyzer{cfg: cfg, dist: stats.NewDistributions()}
}

// Name returns the analyzer name
func (a *StatisticalAnalyzer) Name() string {
	return "statistical"
}

// AnalyzePatterns scans for correlation, distribution, and anomaly patterns
func (a *StatisticalAnalyzer) AnalyzePatterns(ctx context.Context, data *dataset.ProcessedData) ([]insight.Pattern, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if data.RowCount() < 3 {
		return nil, nil
	}

	var patterns []insight.Pattern
	patterns = append(patterns, a.correlationPatterns(data)...)
	patterns = append(patterns, a.distributionPatterns(data)...)
	patterns = append(patterns, a.anomalyPatterns(data)...)
	return patterns, nil
}

// correlationPatterns keeps variable pairs whose |r| clears the threshold
func (a *StatisticalAnalyzer) correlationPatterns(data *dataset.ProcessedData) []insight.Pattern {
	var patterns []insight.Pattern
	n := data.ColumnCount()

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			x := data.ColumnAt(i)
			y := data.ColumnAt(j)
			r := stats.PearsonCorrelation(x, y)
			if math.Abs(r) <= a.cfg.CorrelationThreshold {
				continue
			}

			varX := data.Matrix.VariableKeys[i]
			varY := data.Matrix.VariableKeys[j]
			pValue := a.dist.CorrelationPValue(r, len(x))

			direction := "positive"
			if r < 0 {
				direction = "negative"
			}

			p := insight.Pattern{
				ID:          core.PatternID(core.NewID()),
				PatternType: insight.PatternCorrelation,
				Description: fmt.Sprintf("%s %s correlation between %s and %s (r=%.3f, p=%.4f)",
					correlationStrength(r), direction, varX, varY, r, pValue),
				Confidence: confidenceFromPValue(pValue),
				Evidence: []string{
					fmt.Sprintf("pearson r=%.3f over %d samples", r, len(x)),
					fmt.Sprintf("p-value %.4f", pValue),
				},
				Metadata: map[string]interface{}{
					"variable_x":  string(varX),
					"variable_y":  string(varY),
					"correlation": r,
					"p_value":     pValue,
					"sample_size": len(x),
				},
				DetectedAt: core.Now(),
			}
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// distributionPatterns keeps per-variable fits whose goodness clears the threshold.
// Fit quality is the Jarque-Bera p-value: high p means shape consistent with normal.
func (a *StatisticalAnalyzer) distributionPatterns(data *dataset.ProcessedData) []insight.Pattern {
	var patterns []insight.Pattern

	for j, key := range data.Matrix.VariableKeys {
		col := data.ColumnAt(j)
		summary, err := stats.Describe(col)
		if err != nil || summary.StdDev == 0 {
			continue
		}

		goodness := a.normalFitGoodness(col, summary)
		if goodness <= a.cfg.DistributionFitThreshold {
			continue
		}

		p := insight.Pattern{
			ID:          core.PatternID(core.NewID()),
			PatternType: insight.PatternDistribution,
			Description: fmt.Sprintf("%s follows a normal distribution (mean=%.3f, sd=%.3f, fit=%.3f)",
				key, summary.Mean, summary.StdDev, goodness),
			Confidence: goodness,
			Evidence: []string{
				fmt.Sprintf("jarque-bera fit %.3f over %d samples", goodness, summary.N),
				fmt.Sprintf("mean %.3f, sd %.3f, median %.3f", summary.Mean, summary.StdDev, summary.Median),
			},
			Metadata: map[string]interface{}{
				"variable":     string(key),
				"distribution": "normal",
				"mean":         summary.Mean,
				"std_dev":      summary.StdDev,
				"goodness":     goodness,
			},
			DetectedAt: core.Now(),
		}
		patterns = append(patterns, p)
	}
	return patterns
}

// normalFitGoodness computes the Jarque-Bera p-value for a column
func (a *StatisticalAnalyzer) normalFitGoodness(col []float64, summary stats.Summary) float64 {
	n := float64(len(col))
	if n < 8 {
		return 0
	}

	var m3, m4 float64
	for _, v := range col {
		d := v - summary.Mean
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m3 /= n
	m4 /= n

	sd3 := summary.StdDev * summary.StdDev * summary.StdDev
	skew := m3 / sd3
	kurt := m4/(summary.StdDev*summary.StdDev*summary.StdDev*summary.StdDev) - 3

	jb := n / 6 * (skew*skew + kurt*kurt/4)
	return a.dist.ChiSquarePValue(jb, 2)
}

// anomalyPatterns keeps observations whose anomaly score clears the threshold.
// Scores use the modified z-score (median/MAD) so outliers can't mask themselves.
func (a *StatisticalAnalyzer) anomalyPatterns(data *dataset.ProcessedData) []insight.Pattern {
	var patterns []insight.Pattern

	for j, key := range data.Matrix.VariableKeys {
		col := data.ColumnAt(j)
		if len(col) < 8 {
			continue
		}

		median, mad := medianAndMAD(col)
		if mad == 0 {
			continue
		}

		for i, v := range col {
			z := 0.6745 * (v - median) / mad
			score := anomalyScore(z)
			if score <= a.cfg.AnomalyScoreThreshold {
				continue
			}

			p := insight.Pattern{
				ID:          core.PatternID(core.NewID()),
				PatternType: insight.PatternAnomaly,
				Description: fmt.Sprintf("anomalous value %.3f in %s at row %d (score=%.3f)",
					v, key, i, score),
				Confidence: score,
				Evidence: []string{
					fmt.Sprintf("modified z-score %.2f against median %.3f", z, median),
					fmt.Sprintf("row %d of %d samples", i, len(col)),
				},
				Metadata: map[string]interface{}{
					"variable":      string(key),
					"row":           i,
					"value":         v,
					"anomaly_score": score,
				},
				DetectedAt: core.Now(),
			}
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// anomalyScore maps a modified z-score into [0,1]; |z|=3.5 is the usual cut
func anomalyScore(z float64) float64 {
	score := math.Abs(z) / 4.5
	if score > 1 {
		score = 1
	}
	return score
}

func medianAndMAD(col []float64) (median, mad float64) {
	sorted := make([]float64, len(col))
	copy(sorted, col)
	sort.Float64s(sorted)
	median = quantile(sorted, 0.5)

	devs := make([]float64, len(col))
	for i, v := range col {
		devs[i] = math.Abs(v - median)
	}
	sort.Float64s(devs)
	mad = quantile(devs, 0.5)
	return median, mad
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func correlationStrength(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs < 0.6:
		return "moderate"
	case abs < 0.8:
		return "strong"
	default:
		return "very strong"
	}
}

// confidenceFromPValue converts a p-value to a [0,1] confidence score
func confidenceFromPValue(pValue float64) float64 {
	if pValue < 0 {
		return 1
	}
	if pValue > 1 {
		return 0
	}
	return 1 - pValue
}
