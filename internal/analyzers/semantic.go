package analyzers

import (
	"context"
	"fmt"
	"sort"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal/config"
)

// SemanticAnalyzer detects concept co-occurrence regularities across segments
type SemanticAnalyzer struct {
	cfg config.AnalyzerConfig
}

// NewSemanticAnalyzer creates a semantic pattern analyzer
func NewSemanticAnalyzer(cfg config.AnalyzerConfig) *SemanticAnalyzer {
	return &SemanticAnalyzer{cfg: cfg}
}

// Name returns the analyzer name
func (a *SemanticAnalyzer) Name() string {
	return "semantic"
}

// AnalyzePatterns scans segment concept references for recurring pairs
func (a *SemanticAnalyzer) AnalyzePatterns(ctx context.Context, data *dataset.ProcessedData) ([]insight.Pattern, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if len(data.Segments) < 3 {
		return nil, nil
	}

	conceptNames := make(map[core.ConceptID]string, len(data.Concepts))
	for _, c := range data.Concepts {
		conceptNames[c.ID] = c.Name
	}

	type pair struct{ a, b core.ConceptID }
	occur := make(map[core.ConceptID]int)
	coOccur := make(map[pair]int)

	for _, seg := range data.Segments {
		concepts := uniqueConcepts(seg.Concepts)
		for _, c := range concepts {
			occur[c]++
		}
		for i := 0; i < len(concepts); i++ {
			for j := i + 1; j < len(concepts); j++ {
				x, y := concepts[i], concepts[j]
				if x > y {
					x, y = y, x
				}
				coOccur[pair{x, y}]++
			}
		}
	}

	// Deterministic iteration over pairs
	pairs := make([]pair, 0, len(coOccur))
	for p := range coOccur {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})

	total := len(data.Segments)
	var patterns []insight.Pattern
	for _, pr := range pairs {
		count := coOccur[pr]
		if count < 2 {
			continue
		}
		// Jaccard overlap of the two concepts' segment sets
		union := occur[pr.a] + occur[pr.b] - count
		if union == 0 {
			continue
		}
		jaccard := float64(count) / float64(union)
		if jaccard < 0.5 {
			continue
		}

		nameA := conceptName(conceptNames, pr.a)
		nameB := conceptName(conceptNames, pr.b)

		p := insight.Pattern{
			ID:          core.PatternID(core.NewID()),
			PatternType: insight.PatternSemantic,
			Description: fmt.Sprintf("concepts %q and %q co-occur in %d of %d segments (overlap=%.2f)",
				nameA, nameB, count, total, jaccard),
			Confidence: jaccard,
			Evidence: []string{
				fmt.Sprintf("%d co-occurrences across %d segments", count, total),
				fmt.Sprintf("jaccard overlap %.2f", jaccard),
			},
			Metadata: map[string]interface{}{
				"concept_a":      string(pr.a),
				"concept_b":      string(pr.b),
				"co_occurrences": count,
				"jaccard":        jaccard,
			},
			DetectedAt: core.Now(),
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func uniqueConcepts(in []core.ConceptID) []core.ConceptID {
	seen := make(map[core.ConceptID]bool, len(in))
	var out []core.ConceptID
	for _, c := range in {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func conceptName(names map[core.ConceptID]string, id core.ConceptID) string {
	if n, ok := names[id]; ok {
		return n
	}
	return string(id)
}
