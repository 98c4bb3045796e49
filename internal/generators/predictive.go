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
	"goinsight/internal/stats"
)

// PredictiveGenerator extrapolates trend patterns and runs independent
// forecasting models, merging overlapping forecasts by confidence-weighted
// ensembling rather than concatenation.
type PredictiveGenerator struct {
	cfg  config.GeneratorConfig
	dist *stats.Distributions
}

// NewPredictiveGenerator creates a predictive insight generator
func NewPredictiveGenerator(cfg config.GeneratorConfig) *PredictiveGenerator {
	return &PredictiveGenerator{cfg: cfg, dist: stats.NewDistributions()}
}

// Name returns the generator name
func (g *PredictiveGenerator) Name() string {
	return "predictive"
}

// forecast is one model's view of a variable's next value
type forecast struct {
	variable   core.VariableKey
	horizon    int
	predicted  float64
	confidence float64
	model      string
	evidence   []string
	patterns   []core.PatternID
}

// GenerateInsights emits one insight per ensembled variable forecast
func (g *PredictiveGenerator) GenerateInsights(ctx context.Context, patterns []insight.Pattern, data *dataset.ProcessedData) ([]insight.Insight, error) {
	forecasts := g.collectForecasts(patterns, data, 1)
	merged := ensemble(forecasts)

	var out []insight.Insight
	for _, f := range merged {
		if f.confidence <= g.cfg.PredictiveFloor {
			continue
		}
		ins := insight.Insight{
			ID:          core.InsightID(core.NewID()),
			InsightType: insight.InsightPredictive,
			Title:       fmt.Sprintf("%s is heading toward %.3f", f.variable, f.predicted),
			Description: fmt.Sprintf("Ensemble of %s forecasts %s at %.3f next step (confidence %.2f).",
				f.model, f.variable, f.predicted, f.confidence),
			Confidence: f.confidence,
			Importance: forecastImportance(data, f),
			Evidence:   f.evidence,
			Recommendations: []string{
				fmt.Sprintf("Plan for %s near %.3f in the next period", f.variable, f.predicted),
			},
			SourcePatterns: f.patterns,
			CreatedAt:      core.Now(),
		}
		out = append(out, ins)
	}
	return out, nil
}

// Forecast is the targeted entry point used by GeneratePredictions
func (g *PredictiveGenerator) Forecast(ctx context.Context, data *dataset.ProcessedData, pctx insight.PredictionContext) ([]insight.PredictiveInsight, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	horizon := pctx.Horizon
	if horizon < 1 {
		horizon = 1
	}

	targets := pctx.TargetVariables
	if len(targets) == 0 {
		targets = data.Matrix.VariableKeys
	}

	var out []insight.PredictiveInsight
	for _, key := range targets {
		col, err := data.GetColumnData(key)
		if err != nil || len(col) < 4 {
			continue
		}

		merged := ensemble(g.modelForecasts(key, col, horizon))
		for _, f := range merged {
			if f.confidence <= g.cfg.PredictiveFloor {
				continue
			}
			spread := residualSpread(col)
			pi := insight.PredictiveInsight{
				Insight: insight.Insight{
					ID:          core.InsightID(core.NewID()),
					InsightType: insight.InsightPredictive,
					Title:       fmt.Sprintf("Forecast for %s", key),
					Description: fmt.Sprintf("%s projects %s at %.3f after %d steps.", f.model, key, f.predicted, horizon),
					Confidence:  f.confidence,
					Importance:  forecastImportance(data, f),
					Evidence:    f.evidence,
					CreatedAt:   core.Now(),
				},
				TargetVariable: key,
				Horizon:        horizon,
				Predicted:      f.predicted,
				Interval:       [2]float64{f.predicted - 1.96*spread, f.predicted + 1.96*spread},
				Model:          f.model,
			}
			out = append(out, pi)
		}
	}
	return out, nil
}

// collectForecasts gathers trend extrapolations plus the independent models
func (g *PredictiveGenerator) collectForecasts(patterns []insight.Pattern, data *dataset.ProcessedData, horizon int) []forecast {
	var forecasts []forecast

	// Trend patterns extrapolated forward
	for _, p := range patterns {
		if p.PatternType != insight.PatternTrend {
			continue
		}
		varName, _ := p.Metadata["variable"].(string)
		slope, okS := p.Metadata["slope"].(float64)
		intercept, okI := p.Metadata["intercept"].(float64)
		if varName == "" || !okS || !okI {
			continue
		}
		n := data.RowCount()
		predicted := intercept + slope*float64(n-1+horizon)
		forecasts = append(forecasts, forecast{
			variable:   core.VariableKey(varName),
			horizon:    horizon,
			predicted:  predicted,
			confidence: p.Confidence,
			model:      "trend extrapolation",
			evidence:   append([]string{}, p.Evidence...),
			patterns:   []core.PatternID{p.ID},
		})
	}

	// Independent models over every numeric column
	for _, key := range data.Matrix.VariableKeys {
		col, err := data.GetColumnData(key)
		if err != nil || len(col) < 4 {
			continue
		}
		forecasts = append(forecasts, g.modelForecasts(key, col, horizon)...)
	}
	return forecasts
}

// modelForecasts runs the independent forecasting models over one column
func (g *PredictiveGenerator) modelForecasts(key core.VariableKey, col []float64, horizon int) []forecast {
	var out []forecast

	// Moving average of the last quarter of the series
	window := len(col) / 4
	if window < 2 {
		window = 2
	}
	ma := meanOf(col[len(col)-window:])
	out = append(out, forecast{
		variable:   key,
		horizon:    horizon,
		predicted:  ma,
		confidence: movingAverageConfidence(col, window),
		model:      "moving average",
		evidence:   []string{fmt.Sprintf("mean of last %d observations %.3f", window, ma)},
	})

	// Exponential smoothing
	const alpha = 0.3
	level := col[0]
	for _, v := range col[1:] {
		level = alpha*v + (1-alpha)*level
	}
	out = append(out, forecast{
		variable:   key,
		horizon:    horizon,
		predicted:  level,
		confidence: smoothingConfidence(col, level),
		model:      "exponential smoothing",
		evidence:   []string{fmt.Sprintf("smoothed level %.3f (alpha %.1f)", level, alpha)},
	})
	return out
}

// ensemble merges forecasts per variable by confidence-weighted averaging
func ensemble(forecasts []forecast) []forecast {
	grouped := make(map[core.VariableKey][]forecast)
	for _, f := range forecasts {
		grouped[f.variable] = append(grouped[f.variable], f)
	}

	keys := make([]core.VariableKey, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var out []forecast
	for _, k := range keys {
		group := grouped[k]
		var weightSum, weighted, confSum float64
		merged := forecast{variable: k, horizon: group[0].horizon}
		models := make([]string, 0, len(group))
		for _, f := range group {
			w := f.confidence
			if w <= 0 {
				continue
			}
			weighted += w * f.predicted
			weightSum += w
			confSum += f.confidence
			models = append(models, f.model)
			merged.evidence = append(merged.evidence, f.evidence...)
			merged.patterns = append(merged.patterns, f.patterns...)
		}
		if weightSum == 0 {
			continue
		}
		merged.predicted = weighted / weightSum
		merged.confidence = confSum / float64(len(group))
		merged.model = fmt.Sprintf("%d models (%s)", len(models), joinModels(models))
		out = append(out, merged)
	}
	return out
}

func joinModels(models []string) string {
	out := ""
	for i, m := range models {
		if i > 0 {
			out += ", "
		}
		out += m
	}
	return out
}

// movingAverageConfidence penalizes volatile tails
func movingAverageConfidence(col []float64, window int) float64 {
	tail := col[len(col)-window:]
	m := meanOf(tail)
	if m == 0 {
		m = 1e-9
	}
	var sd float64
	for _, v := range tail {
		d := v - m
		sd += d * d
	}
	sd = math.Sqrt(sd / float64(len(tail)))
	cv := math.Abs(sd / m)
	conf := 1 / (1 + cv)
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}

// smoothingConfidence scores one-step-ahead errors of the smoother
func smoothingConfidence(col []float64, finalLevel float64) float64 {
	const alpha = 0.3
	level := col[0]
	var sumSq, sumAbs float64
	for _, v := range col[1:] {
		err := v - level
		sumSq += err * err
		sumAbs += math.Abs(v)
		level = alpha*v + (1-alpha)*level
	}
	if sumAbs == 0 {
		return 0.5
	}
	nrmse := math.Sqrt(sumSq/float64(len(col)-1)) / (sumAbs / float64(len(col)-1))
	conf := 1 / (1 + nrmse)
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}

// forecastImportance scales with the predicted move relative to history
func forecastImportance(data *dataset.ProcessedData, f forecast) float64 {
	col, err := data.GetColumnData(f.variable)
	if err != nil || len(col) == 0 {
		return 0.3
	}
	last := col[len(col)-1]
	span := spanOf(col)
	if span == 0 {
		return 0.3
	}
	move := math.Abs(f.predicted-last) / span
	if move > 1 {
		move = 1
	}
	return 0.3 + 0.7*move
}

func residualSpread(col []float64) float64 {
	m := meanOf(col)
	var sd float64
	for _, v := range col {
		d := v - m
		sd += d * d
	}
	return math.Sqrt(sd / float64(len(col)))
}

func meanOf(col []float64) float64 {
	if len(col) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range col {
		sum += v
	}
	return sum / float64(len(col))
}

func spanOf(col []float64) float64 {
	min, max := col[0], col[0]
	for _, v := range col {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}
