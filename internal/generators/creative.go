package generators

import (
	"context"
	"fmt"
	"math"
	"sort"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal/config"
)

// CreativeGenerator looks for unexpected pairings across pattern
// categories. A semantic pattern touching the same theme as a temporal
// one, or a cluster overlapping an anomaly, hints at a story no single
// analyzer can tell. Confidence is deliberately discounted since these
// are speculative by construction.
type CreativeGenerator struct {
	cfg config.GeneratorConfig
}

// NewCreativeGenerator creates a creative insight generator
func NewCreativeGenerator(cfg config.GeneratorConfig) *CreativeGenerator {
	return &CreativeGenerator{cfg: cfg}
}

// Name returns the generator name
func (g *CreativeGenerator) Name() string {
	return "creative"
}

// GenerateInsights pairs patterns of different categories that share a variable
func (g *CreativeGenerator) GenerateInsights(ctx context.Context, patterns []insight.Pattern, data *dataset.ProcessedData) ([]insight.Insight, error) {
	var out []insight.Insight
	seen := make(map[string]bool)

	for i := 0; i < len(patterns); i++ {
		for j := i + 1; j < len(patterns); j++ {
			a, b := patterns[i], patterns[j]
			if a.PatternType == b.PatternType {
				continue
			}
			shared := sharedVariables(a, b)
			if len(shared) == 0 {
				continue
			}

			pairKey := string(a.ID) + "|" + string(b.ID)
			if seen[pairKey] {
				continue
			}
			seen[pairKey] = true

			// Geometric mean discounted: both signals must hold for the
			// combination to mean anything.
			conf := 0.8 * geomMean(a.Confidence, b.Confidence)
			if conf <= g.cfg.CreativeFloor {
				continue
			}

			ins := insight.Insight{
				ID:          core.InsightID(core.NewID()),
				InsightType: insight.InsightCreative,
				Title:       fmt.Sprintf("%s and %s signals converge on %s", a.PatternType, b.PatternType, shared[0]),
				Description: fmt.Sprintf("A %s pattern and a %s pattern both involve %s. Read together they suggest a mechanism neither shows alone: %s, while %s.",
					a.PatternType, b.PatternType, joinVars(shared), lowerFirst(a.Description), lowerFirst(b.Description)),
				Confidence: conf,
				Importance: geomMean(importanceOf(a), importanceOf(b)),
				Evidence:   append(append([]string{}, a.Evidence...), b.Evidence...),
				Recommendations: []string{
					fmt.Sprintf("Examine %s with both lenses at once; the combined signal may expose a driver the individual views miss", joinVars(shared)),
				},
				SourcePatterns: []core.PatternID{a.ID, b.ID},
				CreatedAt:      core.Now(),
			}
			out = append(out, ins)
		}
	}
	return out, nil
}

// sharedVariables intersects the variable mentions of two patterns
func sharedVariables(a, b insight.Pattern) []string {
	av := variableMentions(a)
	bv := variableMentions(b)
	var shared []string
	for v := range av {
		if bv[v] {
			shared = append(shared, v)
		}
	}
	sort.Strings(shared)
	return shared
}

func variableMentions(p insight.Pattern) map[string]bool {
	vars := make(map[string]bool)
	for _, k := range []string{"variable", "variable_x", "variable_y"} {
		if v, ok := p.Metadata[k].(string); ok && v != "" {
			vars[v] = true
		}
	}
	if list, ok := p.Metadata["variables"].([]string); ok {
		for _, v := range list {
			vars[v] = true
		}
	}
	return vars
}

func importanceOf(p insight.Pattern) float64 {
	if score, ok := p.Metadata["anomaly_score"].(float64); ok {
		return score
	}
	if r, ok := p.Metadata["correlation"].(float64); ok {
		if r < 0 {
			r = -r
		}
		return r
	}
	return p.Confidence
}

func geomMean(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	return math.Sqrt(a * b)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] = r[0] + ('a' - 'A')
	}
	return string(r)
}

func joinVars(vars []string) string {
	out := ""
	for i, v := range vars {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}
