package generators

import (
	"context"
	"fmt"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal/config"
	"goinsight/ports"
)

// Engine runs all registered insight generators. Like the analyzer
// engine, generators execute concurrently but results are collected by
// registration index so output order never depends on scheduling.
type Engine struct {
	generators []ports.InsightGenerator
	predictive *PredictiveGenerator
}

// NewEngine builds the generator set enabled by configuration, in fixed
// registration order: predictive, explanatory, prescriptive, creative.
func NewEngine(cfg config.GeneratorConfig) *Engine {
	e := &Engine{}
	if cfg.EnablePredictive {
		e.predictive = NewPredictiveGenerator(cfg)
		e.generators = append(e.generators, e.predictive)
	}
	if cfg.EnableExplanatory {
		e.generators = append(e.generators, NewExplanatoryGenerator(cfg))
	}
	if cfg.EnablePrescriptive {
		e.generators = append(e.generators, NewPrescriptiveGenerator(cfg))
	}
	if cfg.EnableCreative {
		e.generators = append(e.generators, NewCreativeGenerator(cfg))
	}
	return e
}

// Generators returns the registered generators in registration order
func (e *Engine) Generators() []ports.InsightGenerator {
	return e.generators
}

// Predictive exposes the predictive generator for targeted forecasting,
// or nil when disabled.
func (e *Engine) Predictive() *PredictiveGenerator {
	return e.predictive
}

// Result pairs one generator's output with any recoverable failure
type Result struct {
	Generator string
	Insights  []insight.Insight
	Err       error
}

// GenerateAll runs every generator over the same pattern set and
// concatenates insights in registration order. Generator failures are
// recoverable: the failing generator contributes nothing and a
// diagnostic is reported.
func (e *Engine) GenerateAll(ctx context.Context, patterns []insight.Pattern, data *dataset.ProcessedData, parallel bool) ([]insight.Insight, []Result, error) {
	results := make([]Result, len(e.generators))

	if parallel {
		type indexed struct {
			idx int
			res Result
		}
		ch := make(chan indexed, len(e.generators))
		for i, gen := range e.generators {
			go func(idx int, g ports.InsightGenerator) {
				insights, err := g.GenerateInsights(ctx, patterns, data)
				ch <- indexed{idx: idx, res: Result{Generator: g.Name(), Insights: insights, Err: err}}
			}(i, gen)
		}
		for range e.generators {
			r := <-ch
			results[r.idx] = r.res
		}
	} else {
		for i, gen := range e.generators {
			insights, err := gen.GenerateInsights(ctx, patterns, data)
			results[i] = Result{Generator: gen.Name(), Insights: insights, Err: err}
		}
	}

	var all []insight.Insight
	var diagnostics []Result
	for _, r := range results {
		if r.Err != nil {
			if core.IsDataShapeError(r.Err) {
				return nil, nil, r.Err
			}
			diagnostics = append(diagnostics, Result{
				Generator: r.Generator,
				Err:       core.NewAnalysisError(r.Generator, fmt.Errorf("generator skipped: %w", r.Err)),
			})
			continue
		}
		all = append(all, r.Insights...)
	}
	return all, diagnostics, nil
}
