package causality

import (
	"context"
	"fmt"
	"math"
	"sort"

	"goinsight/domain/causal"
	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal/stats"
)

// DiscoverCausality learns the structure and bridges accepted edges into the
// insight layer. Only edges whose independence-test significance clears the
// configured threshold become insights; each gets a best-effort mechanism.
func (d *Discovery) DiscoverCausality(ctx context.Context, data *dataset.ProcessedData) ([]insight.CausalInsight, error) {
	graph, err := d.LearnStructure(ctx, data)
	if err != nil {
		return nil, err
	}
	return d.InsightsFromGraph(graph, data), nil
}

// InsightsFromGraph converts graph edges into causal insights
func (d *Discovery) InsightsFromGraph(graph *causal.Graph, data *dataset.ProcessedData) []insight.CausalInsight {
	var out []insight.CausalInsight
	for _, e := range graph.Edges() {
		if e.Significance > d.cfg.MinEdgeSignificance {
			continue
		}

		cause, effect := e.Cause(), e.Effect()
		oriented := e.Direction != causal.DirectionUndetermined
		mechanism := d.inferMechanism(data, cause, effect, oriented)

		title := fmt.Sprintf("%s influences %s", cause, effect)
		description := fmt.Sprintf(
			"Constraint-based discovery links %s to %s (strength=%.3f, p=%.4f).",
			cause, effect, e.Strength, e.Significance)
		if !oriented {
			title = fmt.Sprintf("%s and %s are causally linked", cause, effect)
			description += " Direction could not be determined from observational data alone."
		}

		ci := insight.CausalInsight{
			Insight: insight.Insight{
				ID:          core.InsightID(core.NewID()),
				InsightType: insight.InsightCausal,
				Title:       title,
				Description: description,
				Confidence:  1 - e.Significance,
				Importance:  e.Strength,
				Evidence: []string{
					fmt.Sprintf("edge survived conditional-independence pruning (p=%.4f)", e.Significance),
					fmt.Sprintf("marginal association strength %.3f", e.Strength),
				},
				Recommendations: []string{
					fmt.Sprintf("Investigate interventions on %s to shift %s", cause, effect),
				},
				CreatedAt: core.Now(),
			},
			Cause:        cause,
			Effect:       effect,
			Strength:     e.Strength,
			Significance: e.Significance,
			Mechanism:    mechanism,
		}
		out = append(out, ci)
	}
	return out
}

// inferMechanism produces a best-effort mechanism string from the
// functional shape of the cause-effect relationship.
func (d *Discovery) inferMechanism(data *dataset.ProcessedData, cause, effect core.VariableKey, oriented bool) string {
	x, errX := data.GetColumnData(cause)
	y, errY := data.GetColumnData(effect)
	if errX != nil || errY != nil || len(x) < 4 {
		return "undetermined mechanism"
	}

	r := stats.PearsonCorrelation(x, y)
	shape := "linear"
	if monotonicDisagreement(x, y, r) {
		shape = "non-linear monotonic"
	}

	direction := "amplifying"
	if r < 0 {
		direction = "suppressing"
	}
	if !oriented {
		return fmt.Sprintf("%s association, direction undetermined", shape)
	}
	return fmt.Sprintf("%s %s mechanism: changes in %s precede proportional changes in %s",
		shape, direction, cause, effect)
}

// monotonicDisagreement is a rough non-linearity signal: rank correlation
// noticeably exceeding the linear correlation implies a bent monotone curve.
func monotonicDisagreement(x, y []float64, r float64) bool {
	rho := stats.PearsonCorrelation(ranks(x), ranks(y))
	return math.Abs(rho)-math.Abs(r) > 0.15
}

func ranks(data []float64) []float64 {
	idx := make([]int, len(data))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return data[idx[a]] < data[idx[b]] })
	out := make([]float64, len(data))
	for rank, i := range idx {
		out[i] = float64(rank + 1)
	}
	return out
}
