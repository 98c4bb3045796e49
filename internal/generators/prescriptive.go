package generators

import (
	"context"
	"fmt"
	"math"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal/config"
)

// PrescriptiveGenerator turns actionable patterns into recommendations.
// Trends, change points, and redundancy clusters all have an obvious
// next action; correlations and anomalies are left to the explanatory
// generator.
type PrescriptiveGenerator struct {
	cfg config.GeneratorConfig
}

// NewPrescriptiveGenerator creates a prescriptive insight generator
func NewPrescriptiveGenerator(cfg config.GeneratorConfig) *PrescriptiveGenerator {
	return &PrescriptiveGenerator{cfg: cfg}
}

// Name returns the generator name
func (g *PrescriptiveGenerator) Name() string {
	return "prescriptive"
}

// GenerateInsights emits recommendation-first insights above the floor
func (g *PrescriptiveGenerator) GenerateInsights(ctx context.Context, patterns []insight.Pattern, data *dataset.ProcessedData) ([]insight.Insight, error) {
	var out []insight.Insight
	for _, p := range patterns {
		var ins *insight.Insight
		switch p.PatternType {
		case insight.PatternTrend:
			ins = g.prescribeForTrend(p)
		case insight.PatternChangePoint:
			ins = g.prescribeForChangePoint(p)
		case insight.PatternStructural:
			ins = g.prescribeForStructure(p)
		}
		if ins == nil || ins.Confidence <= g.cfg.PrescriptiveFloor {
			continue
		}
		out = append(out, *ins)
	}
	return out, nil
}

func (g *PrescriptiveGenerator) prescribeForTrend(p insight.Pattern) *insight.Insight {
	varName, _ := p.Metadata["variable"].(string)
	slope, ok := p.Metadata["slope"].(float64)
	if varName == "" || !ok {
		return nil
	}

	direction := "rising"
	action := fmt.Sprintf("Decide whether the growth in %s should be sustained or capped, and set a threshold alert", varName)
	if slope < 0 {
		direction = "falling"
		action = fmt.Sprintf("Intervene on the decline in %s before it compounds, starting with its strongest correlates", varName)
	}
	rsq, _ := p.Metadata["r_squared"].(float64)
	return &insight.Insight{
		ID:              core.InsightID(core.NewID()),
		InsightType:     insight.InsightPrescriptive,
		Title:           fmt.Sprintf("Act on the %s trend in %s", direction, varName),
		Description:     fmt.Sprintf("%s shows a sustained %s trend (slope %.4f, fit %.2f). A standing response beats reacting point by point.", varName, direction, slope, rsq),
		Confidence:      p.Confidence,
		Importance:      trendImportance(slope, rsq),
		Evidence:        append([]string{}, p.Evidence...),
		Recommendations: []string{action},
		SourcePatterns:  []core.PatternID{p.ID},
		CreatedAt:       core.Now(),
	}
}

func (g *PrescriptiveGenerator) prescribeForChangePoint(p insight.Pattern) *insight.Insight {
	varName, _ := p.Metadata["variable"].(string)
	magnitude, ok := p.Metadata["magnitude"].(float64)
	if varName == "" || !ok {
		return nil
	}
	row, _ := p.Metadata["change_row"].(int)

	return &insight.Insight{
		ID:          core.InsightID(core.NewID()),
		InsightType: insight.InsightPrescriptive,
		Title:       fmt.Sprintf("Investigate the regime shift in %s", varName),
		Description: fmt.Sprintf("%s shifted by %.3f around observation %d. Whatever changed then is still in effect.", varName, magnitude, row),
		Confidence:  p.Confidence,
		Importance:  clamp01(math.Abs(magnitude) / (math.Abs(magnitude) + 1)),
		Evidence:    append([]string{}, p.Evidence...),
		Recommendations: []string{
			fmt.Sprintf("Audit what changed around observation %d and either formalize it or roll it back", row),
			fmt.Sprintf("Rebaseline alerts on %s against the post-shift level", varName),
		},
		SourcePatterns: []core.PatternID{p.ID},
		CreatedAt:      core.Now(),
	}
}

func (g *PrescriptiveGenerator) prescribeForStructure(p insight.Pattern) *insight.Insight {
	redundant, _ := p.Metadata["redundant"].(bool)
	if !redundant {
		return nil
	}
	varX, _ := p.Metadata["variable_x"].(string)
	varY, _ := p.Metadata["variable_y"].(string)
	if varX == "" || varY == "" {
		return nil
	}

	return &insight.Insight{
		ID:          core.InsightID(core.NewID()),
		InsightType: insight.InsightPrescriptive,
		Title:       fmt.Sprintf("Consolidate %s and %s", varX, varY),
		Description: fmt.Sprintf("%s and %s carry nearly identical signal. Tracking both doubles cost without adding information.", varX, varY),
		Confidence:  p.Confidence,
		Importance:  0.5,
		Evidence:    append([]string{}, p.Evidence...),
		Recommendations: []string{
			fmt.Sprintf("Keep one of %s and %s as canonical and derive the other, or drop it", varX, varY),
		},
		SourcePatterns: []core.PatternID{p.ID},
		CreatedAt:      core.Now(),
	}
}

func trendImportance(slope, rsq float64) float64 {
	strength := math.Abs(slope) / (math.Abs(slope) + 1)
	return clamp01(0.4*strength + 0.6*rsq)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
