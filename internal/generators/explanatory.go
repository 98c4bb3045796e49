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

// ExplanatoryGenerator turns correlation and anomaly patterns into
// explanations of why the data looks the way it does.
type ExplanatoryGenerator struct {
	cfg config.GeneratorConfig
}

// NewExplanatoryGenerator creates an explanatory insight generator
func NewExplanatoryGenerator(cfg config.GeneratorConfig) *ExplanatoryGenerator {
	return &ExplanatoryGenerator{cfg: cfg}
}

// Name returns the generator name
func (g *ExplanatoryGenerator) Name() string {
	return "explanatory"
}

// GenerateInsights explains correlations and anomalies above the floor
func (g *ExplanatoryGenerator) GenerateInsights(ctx context.Context, patterns []insight.Pattern, data *dataset.ProcessedData) ([]insight.Insight, error) {
	var out []insight.Insight
	for _, p := range patterns {
		var ins *insight.Insight
		switch p.PatternType {
		case insight.PatternCorrelation:
			ins = g.explainCorrelation(p)
		case insight.PatternAnomaly:
			ins = g.explainAnomaly(p, data)
		}
		if ins == nil || ins.Confidence <= g.cfg.ExplanatoryFloor {
			continue
		}
		out = append(out, *ins)
	}
	return out, nil
}

func (g *ExplanatoryGenerator) explainCorrelation(p insight.Pattern) *insight.Insight {
	varX, _ := p.Metadata["variable_x"].(string)
	varY, _ := p.Metadata["variable_y"].(string)
	r, ok := p.Metadata["correlation"].(float64)
	if varX == "" || varY == "" || !ok {
		return nil
	}

	relation := "move together"
	if r < 0 {
		relation = "move in opposite directions"
	}
	return &insight.Insight{
		ID:          core.InsightID(core.NewID()),
		InsightType: insight.InsightExplanatory,
		Title:       fmt.Sprintf("%s and %s %s", varX, varY, relation),
		Description: fmt.Sprintf("Observed correlation of %.2f suggests %s and %s share a driver or one influences the other.", r, varX, varY),
		Confidence:  p.Confidence,
		Importance:  math.Abs(r),
		Evidence:    append([]string{}, p.Evidence...),
		Recommendations: []string{
			fmt.Sprintf("Check whether a common factor drives both %s and %s before treating one as a lever", varX, varY),
		},
		SourcePatterns: []core.PatternID{p.ID},
		CreatedAt:      core.Now(),
	}
}

func (g *ExplanatoryGenerator) explainAnomaly(p insight.Pattern, data *dataset.ProcessedData) *insight.Insight {
	varName, _ := p.Metadata["variable"].(string)
	score, okS := p.Metadata["anomaly_score"].(float64)
	value, okV := p.Metadata["value"].(float64)
	row, _ := p.Metadata["row"].(int)
	if varName == "" || !okS || !okV {
		return nil
	}

	desc := fmt.Sprintf("%s recorded %.3f, far outside its usual range (anomaly score %.2f).", varName, value, score)
	if ts := timestampAt(data, row); ts != "" {
		desc = fmt.Sprintf("%s recorded %.3f at %s, far outside its usual range (anomaly score %.2f).", varName, value, ts, score)
	}
	return &insight.Insight{
		ID:          core.InsightID(core.NewID()),
		InsightType: insight.InsightExplanatory,
		Title:       fmt.Sprintf("Outlier in %s", varName),
		Description: desc,
		Confidence:  p.Confidence,
		Importance:  score,
		Evidence:    append([]string{}, p.Evidence...),
		Recommendations: []string{
			fmt.Sprintf("Verify the %s reading is real before letting it skew aggregates", varName),
		},
		SourcePatterns: []core.PatternID{p.ID},
		CreatedAt:      core.Now(),
	}
}

func timestampAt(data *dataset.ProcessedData, row int) string {
	if data == nil || row < 0 || row >= len(data.Timestamps) {
		return ""
	}
	return data.Timestamps[row].Time().Format("2006-01-02")
}
