package analyzers

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal/config"
	"goinsight/internal/stats"
)

// StructuralAnalyzer detects variable clusters and redundancy in the
// correlation structure of the data.
type StructuralAnalyzer struct {
	cfg  config.AnalyzerConfig
	dist *stats.Distributions
}

// NewStructuralAnalyzer creates a structural pattern analyzer
func NewStructuralAnalyzer(cfg config.AnalyzerConfig) *StructuralAnalyzer {
	return &StructuralAnalyzer{cfg: cfg, dist: stats.NewDistributions()}
}

// Name returns the analyzer name
func (a *StructuralAnalyzer) Name() string {
	return "structural"
}

// AnalyzePatterns scans for cluster and redundancy structure
func (a *StructuralAnalyzer) AnalyzePatterns(ctx context.Context, data *dataset.ProcessedData) ([]insight.Pattern, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	n := data.ColumnCount()
	if n < 2 || data.RowCount() < 3 {
		return nil, nil
	}

	// Correlation adjacency over the configured threshold
	adj := make([][]float64, n)
	for i := range adj {
		adj[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := stats.PearsonCorrelation(data.ColumnAt(i), data.ColumnAt(j))
			adj[i][j], adj[j][i] = r, r
		}
	}

	var patterns []insight.Pattern
	patterns = append(patterns, a.clusterPatterns(data, adj)...)
	patterns = append(patterns, a.redundancyPatterns(data, adj)...)
	return patterns, nil
}

// clusterPatterns finds connected groups of mutually correlated variables
func (a *StructuralAnalyzer) clusterPatterns(data *dataset.ProcessedData, adj [][]float64) []insight.Pattern {
	n := data.ColumnCount()
	visited := make([]bool, n)
	var patterns []insight.Pattern

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		// BFS over the thresholded correlation graph
		cluster := []int{start}
		visited[start] = true
		for q := 0; q < len(cluster); q++ {
			at := cluster[q]
			for next := 0; next < n; next++ {
				if !visited[next] && math.Abs(adj[at][next]) > a.cfg.CorrelationThreshold {
					visited[next] = true
					cluster = append(cluster, next)
				}
			}
		}
		if len(cluster) < 3 {
			continue
		}
		sort.Ints(cluster)

		names := make([]string, len(cluster))
		var sumAbs float64
		var edges int
		for i, ci := range cluster {
			names[i] = string(data.Matrix.VariableKeys[ci])
			for _, cj := range cluster[i+1:] {
				sumAbs += math.Abs(adj[ci][cj])
				edges++
			}
		}
		avg := sumAbs / float64(edges)

		p := insight.Pattern{
			ID:          core.PatternID(core.NewID()),
			PatternType: insight.PatternStructural,
			Description: fmt.Sprintf("variable cluster {%s} with mean |r|=%.3f",
				strings.Join(names, ", "), avg),
			Confidence: math.Min(avg, 1),
			Evidence: []string{
				fmt.Sprintf("%d variables linked above |r|=%.2f", len(cluster), a.cfg.CorrelationThreshold),
				fmt.Sprintf("mean absolute correlation %.3f", avg),
			},
			Metadata: map[string]interface{}{
				"variables":        names,
				"mean_correlation": avg,
				"cluster_size":     len(cluster),
			},
			DetectedAt: core.Now(),
		}
		patterns = append(patterns, p)
	}
	return patterns
}

// redundancyPatterns flags near-duplicate variables (|r| >= 0.95), which
// usually indicate a derived column rather than an independent signal.
func (a *StructuralAnalyzer) redundancyPatterns(data *dataset.ProcessedData, adj [][]float64) []insight.Pattern {
	var patterns []insight.Pattern
	n := data.ColumnCount()

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(adj[i][j]) < 0.95 {
				continue
			}
			varX := data.Matrix.VariableKeys[i]
			varY := data.Matrix.VariableKeys[j]

			p := insight.Pattern{
				ID:          core.PatternID(core.NewID()),
				PatternType: insight.PatternStructural,
				Description: fmt.Sprintf("%s and %s are near-duplicates (|r|=%.3f), likely derived",
					varX, varY, math.Abs(adj[i][j])),
				Confidence: math.Abs(adj[i][j]),
				Evidence: []string{
					fmt.Sprintf("correlation %.3f over %d samples", adj[i][j], data.RowCount()),
				},
				Metadata: map[string]interface{}{
					"variable_x":  string(varX),
					"variable_y":  string(varY),
					"correlation": adj[i][j],
					"redundant":   true,
				},
				DetectedAt: core.Now(),
			}
			patterns = append(patterns, p)
		}
	}
	return patterns
}
