package synthesis

import (
	"context"
	"fmt"
	"strings"

	"goinsight/domain/insight"
	"goinsight/internal/config"
	"goinsight/ports"
)

// Synthesizer runs every registered strategy, unions the candidates,
// resolves conflicts in one serialized step, computes importance and
// novelty for the survivors, and discards anything at or below the
// importance floor.
type Synthesizer struct {
	cfg        config.SynthesisConfig
	strategies []ports.SynthesisStrategy
}

// NewSynthesizer builds the default strategy set
func NewSynthesizer(cfg config.SynthesisConfig) *Synthesizer {
	return &Synthesizer{
		cfg: cfg,
		strategies: []ports.SynthesisStrategy{
			NewPatternCombination(DefaultRules(cfg)),
			NewComplementaryTypes(cfg),
		},
	}
}

// Strategies returns the registered strategies in registration order
func (s *Synthesizer) Strategies() []ports.SynthesisStrategy {
	return s.strategies
}

// SynthesizeInsights produces the surviving meta-insights for one pass
func (s *Synthesizer) SynthesizeInsights(ctx context.Context, insights []insight.Insight) ([]insight.MetaInsight, error) {
	var candidates []insight.MetaInsight
	for _, strategy := range s.strategies {
		metas, err := strategy.Synthesize(ctx, insights)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", strategy.Name(), err)
		}
		candidates = append(candidates, metas...)
	}

	// Conflict resolution needs the full candidate set at once.
	resolved := resolveConflicts(candidates, insights)

	var out []insight.MetaInsight
	for i := range resolved {
		m := &resolved[i]
		m.Importance = computeImportance(*m, insights)
		m.Novelty = computeNovelty(*m, insights)
		if m.Importance <= s.cfg.MinImportance {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

// resolveConflicts keeps the higher-combined-confidence meta-insight of
// any conflicting pair. Two candidates conflict when they claim the
// same entities through components that disagree in direction.
func resolveConflicts(candidates []insight.MetaInsight, pool []insight.Insight) []insight.MetaInsight {
	dropped := make([]bool, len(candidates))
	for i := 0; i < len(candidates); i++ {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(candidates); j++ {
			if dropped[j] {
				continue
			}
			if !conflicting(candidates[i], candidates[j], pool) {
				continue
			}
			// Earlier candidate wins ties, keeping resolution stable.
			if combinedConfidence(candidates[j], pool) > combinedConfidence(candidates[i], pool) {
				dropped[i] = true
				break
			}
			dropped[j] = true
		}
	}

	var out []insight.MetaInsight
	for i, m := range candidates {
		if !dropped[i] {
			out = append(out, m)
		}
	}
	return out
}

// conflicting detects incompatible claims about shared entities by
// comparing the directional language of each candidate's components.
func conflicting(a, b insight.MetaInsight, pool []insight.Insight) bool {
	shared := intersect(metaEntities(a, pool), metaEntities(b, pool))
	if len(shared) == 0 {
		return false
	}
	dirA := claimDirection(a, pool)
	dirB := claimDirection(b, pool)
	return dirA != 0 && dirB != 0 && dirA != dirB
}

// claimDirection reduces a candidate's components to a net direction:
// +1 when the language says up, -1 down, 0 mixed or neutral.
func claimDirection(m insight.MetaInsight, pool []insight.Insight) int {
	byID := poolIndex(pool)
	dir := 0
	for _, id := range m.ComponentInsights {
		ins, ok := byID[string(id)]
		if !ok {
			continue
		}
		d := textDirection(ins.Title + " " + ins.Description)
		if d == 0 {
			continue
		}
		if dir == 0 {
			dir = d
		} else if dir != d {
			return 0
		}
	}
	return dir
}

func textDirection(text string) int {
	lower := strings.ToLower(text)
	up := strings.Contains(lower, "rising") || strings.Contains(lower, "increase") || strings.Contains(lower, "growth") || strings.Contains(lower, "upward")
	down := strings.Contains(lower, "falling") || strings.Contains(lower, "decrease") || strings.Contains(lower, "decline") || strings.Contains(lower, "downward")
	switch {
	case up && !down:
		return 1
	case down && !up:
		return -1
	default:
		return 0
	}
}

// computeImportance averages component importance with a bonus for
// breadth: more independent components make the synthesis matter more.
func computeImportance(m insight.MetaInsight, pool []insight.Insight) float64 {
	byID := poolIndex(pool)
	var sum float64
	n := 0
	for _, id := range m.ComponentInsights {
		if ins, ok := byID[string(id)]; ok {
			sum += ins.Importance
			n++
		}
	}
	if n == 0 {
		return 0
	}
	base := sum / float64(n)
	bonus := 0.05 * float64(n-1)
	if bonus > 0.2 {
		bonus = 0.2
	}
	v := base + bonus
	if v > 1 {
		v = 1
	}
	return v
}

// computeNovelty rewards type diversity and emergent properties; a
// synthesis of near-identical insights says little new.
func computeNovelty(m insight.MetaInsight, pool []insight.Insight) float64 {
	byID := poolIndex(pool)
	types := make(map[insight.InsightType]bool)
	for _, id := range m.ComponentInsights {
		if ins, ok := byID[string(id)]; ok {
			types[ins.InsightType] = true
		}
	}
	v := 0.3 + 0.2*float64(len(types)-1) + 0.1*float64(len(m.EmergentProperties))
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

func combinedConfidence(m insight.MetaInsight, pool []insight.Insight) float64 {
	byID := poolIndex(pool)
	var sum float64
	n := 0
	for _, id := range m.ComponentInsights {
		if ins, ok := byID[string(id)]; ok {
			sum += ins.Confidence
			n++
		}
	}
	if n == 0 {
		return m.Confidence
	}
	return sum / float64(n)
}

func metaEntities(m insight.MetaInsight, pool []insight.Insight) map[string]bool {
	byID := poolIndex(pool)
	out := make(map[string]bool)
	for _, id := range m.ComponentInsights {
		if ins, ok := byID[string(id)]; ok {
			for _, e := range EntityMentions(ins) {
				out[e] = true
			}
		}
	}
	return out
}

func poolIndex(pool []insight.Insight) map[string]insight.Insight {
	byID := make(map[string]insight.Insight, len(pool))
	for _, ins := range pool {
		byID[string(ins.ID)] = ins
	}
	return byID
}

func intersect(a, b map[string]bool) []string {
	var out []string
	for k := range a {
		if b[k] {
			out = append(out, k)
		}
	}
	return out
}
