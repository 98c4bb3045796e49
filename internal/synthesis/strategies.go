package synthesis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"goinsight/domain/core"
	"goinsight/domain/insight"
	"goinsight/internal/config"
	"goinsight/ports"
)

// ============================================================================
// PATTERN COMBINATION
// ============================================================================

// PatternCombination groups insights by the combination rules it was
// built with. A rule matches when at least MinInstances insights of the
// rule's types exist; each match becomes one meta-insight candidate.
type PatternCombination struct {
	rules []ports.CombinationRule
}

// DefaultRules are the stock combination rules
func DefaultRules(cfg config.SynthesisConfig) []ports.CombinationRule {
	return []ports.CombinationRule{
		{
			Name:         "converging_predictions",
			InsightTypes: []insight.InsightType{insight.InsightPredictive},
			MinInstances: cfg.MinInstances,
		},
		{
			Name:         "explained_prescription",
			InsightTypes: []insight.InsightType{insight.InsightExplanatory, insight.InsightPrescriptive},
			MinInstances: cfg.MinInstances,
		},
		{
			Name:         "causal_forecast",
			InsightTypes: []insight.InsightType{insight.InsightCausal, insight.InsightPredictive},
			MinInstances: cfg.MinInstances,
		},
	}
}

// NewPatternCombination creates the strategy over a rule set
func NewPatternCombination(rules []ports.CombinationRule) *PatternCombination {
	return &PatternCombination{rules: rules}
}

// Name returns the strategy name
func (s *PatternCombination) Name() string {
	return "pattern_combination"
}

// Synthesize matches each rule against the insight set
func (s *PatternCombination) Synthesize(ctx context.Context, insights []insight.Insight) ([]insight.MetaInsight, error) {
	var out []insight.MetaInsight
	for _, rule := range s.rules {
		matched := matchRule(rule, insights)
		if len(matched) < rule.MinInstances {
			continue
		}
		for _, group := range splitOpposing(matched) {
			out = append(out, buildMeta(rule.Name, group))
		}
	}
	return out, nil
}

// splitOpposing refuses to combine components that make opposing
// directional claims. Agreeing sets come back as one group; a set
// containing both upward and downward claims becomes one group per
// direction, so conflict resolution sees separate candidates and keeps
// exactly one side. Direction-neutral components join both sides.
func splitOpposing(matched []insight.Insight) [][]insight.Insight {
	var up, down, neutral []insight.Insight
	for _, ins := range matched {
		switch textDirection(ins.Title + " " + ins.Description) {
		case 1:
			up = append(up, ins)
		case -1:
			down = append(down, ins)
		default:
			neutral = append(neutral, ins)
		}
	}
	if len(up) == 0 || len(down) == 0 {
		return [][]insight.Insight{matched}
	}
	return [][]insight.Insight{
		append(append([]insight.Insight{}, up...), neutral...),
		append(append([]insight.Insight{}, down...), neutral...),
	}
}

// matchRule collects insights whose type appears in the rule, preserving
// input order.
func matchRule(rule ports.CombinationRule, insights []insight.Insight) []insight.Insight {
	wanted := make(map[insight.InsightType]bool, len(rule.InsightTypes))
	for _, t := range rule.InsightTypes {
		wanted[t] = true
	}
	var matched []insight.Insight
	for _, ins := range insights {
		if wanted[ins.InsightType] {
			matched = append(matched, ins)
		}
	}
	// Multi-type rules require every named type to be present at least once.
	if len(rule.InsightTypes) > 1 {
		present := make(map[insight.InsightType]bool)
		for _, ins := range matched {
			present[ins.InsightType] = true
		}
		for _, t := range rule.InsightTypes {
			if !present[t] {
				return nil
			}
		}
	}
	return matched
}

// ============================================================================
// COMPLEMENTARY TYPES
// ============================================================================

// ComplementaryTypes pairs insights of different types that reference
// common entities, on the theory that an explanation plus a prediction
// about the same subject is worth more than either alone.
type ComplementaryTypes struct {
	minInstances int
}

// NewComplementaryTypes creates the strategy
func NewComplementaryTypes(cfg config.SynthesisConfig) *ComplementaryTypes {
	return &ComplementaryTypes{minInstances: cfg.MinInstances}
}

// Name returns the strategy name
func (s *ComplementaryTypes) Name() string {
	return "complementary_types"
}

// Synthesize groups by shared entity across differing types
func (s *ComplementaryTypes) Synthesize(ctx context.Context, insights []insight.Insight) ([]insight.MetaInsight, error) {
	byEntity := make(map[string][]insight.Insight)
	var entities []string
	for _, ins := range insights {
		for _, ent := range EntityMentions(ins) {
			if _, seen := byEntity[ent]; !seen {
				entities = append(entities, ent)
			}
			byEntity[ent] = append(byEntity[ent], ins)
		}
	}
	sort.Strings(entities)

	var out []insight.MetaInsight
	for _, ent := range entities {
		group := byEntity[ent]
		if len(group) < s.minInstances || !hasMixedTypes(group) {
			continue
		}
		meta := buildMeta("complementary_types", group)
		meta.Title = fmt.Sprintf("Multiple perspectives converge on %s", ent)
		meta.EmergentProperties = append(meta.EmergentProperties, fmt.Sprintf("entity %s appears in %d independent insights", ent, len(group)))
		out = append(out, meta)
	}
	return out, nil
}

func hasMixedTypes(group []insight.Insight) bool {
	for _, ins := range group[1:] {
		if ins.InsightType != group[0].InsightType {
			return true
		}
	}
	return false
}

// EntityMentions extracts the variable names an insight talks about.
// Titles are the stable carrier: every generator names its variables
// there.
func EntityMentions(ins insight.Insight) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range strings.Fields(ins.Title) {
		tok = strings.Trim(tok, ".,:;!?")
		if !looksLikeVariable(tok) || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// looksLikeVariable accepts snake_case or dotted identifiers, the forms
// variable keys take. Plain prose words do not match.
func looksLikeVariable(tok string) bool {
	if len(tok) < 2 {
		return false
	}
	hasSep := strings.ContainsAny(tok, "_.")
	for _, r := range tok {
		if !(r == '_' || r == '.' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return hasSep
}

// ============================================================================
// SHARED
// ============================================================================

// buildMeta assembles a candidate meta-insight. Importance and novelty
// are left zero: the synthesizer computes both after conflict
// resolution, never the strategy.
func buildMeta(method string, components []insight.Insight) insight.MetaInsight {
	ids := make([]core.InsightID, len(components))
	var evidence []string
	var confSum float64
	types := make(map[insight.InsightType]bool)
	for i, c := range components {
		ids[i] = c.ID
		evidence = append(evidence, c.Evidence...)
		confSum += c.Confidence
		types[c.InsightType] = true
	}

	var emergent []string
	if len(types) > 1 {
		emergent = append(emergent, fmt.Sprintf("%d distinct insight types agree", len(types)))
	}

	return insight.MetaInsight{
		Insight: insight.Insight{
			ID:          core.InsightID(core.NewID()),
			InsightType: insight.InsightSynthetic,
			Title:       fmt.Sprintf("Synthesis of %d insights via %s", len(components), method),
			Description: describeComponents(components),
			Confidence:  confSum / float64(len(components)),
			Evidence:    evidence,
			CreatedAt:   core.Now(),
		},
		ComponentInsights:  ids,
		EmergentProperties: emergent,
		SynthesisMethod:    method,
	}
}

func describeComponents(components []insight.Insight) string {
	var b strings.Builder
	b.WriteString("Combined view: ")
	for i, c := range components {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(c.Title)
	}
	b.WriteString(".")
	return b.String()
}
