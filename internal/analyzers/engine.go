package analyzers

import (
	"context"
	"fmt"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal/config"
	"goinsight/ports"
)

// Engine runs all registered pattern analyzers. Analyzers execute
// concurrently, but results are collected by registration index so output
// order never depends on scheduling.
type Engine struct {
	analyzers []ports.PatternAnalyzer
}

// NewEngine builds the analyzer set enabled by configuration, in fixed
// registration order: statistical, temporal, structural, semantic.
func NewEngine(cfg config.AnalyzerConfig) *Engine {
	var analyzers []ports.PatternAnalyzer
	if cfg.EnableStatistical {
		analyzers = append(analyzers, NewStatisticalAnalyzer(cfg))
	}
	if cfg.EnableTemporal {
		analyzers = append(analyzers, NewTemporalAnalyzer(cfg))
	}
	if cfg.EnableStructural {
		analyzers = append(analyzers, NewStructuralAnalyzer(cfg))
	}
	if cfg.EnableSemantic {
		analyzers = append(analyzers, NewSemanticAnalyzer(cfg))
	}
	return &Engine{analyzers: analyzers}
}

// Analyzers returns the registered analyzers in registration order
func (e *Engine) Analyzers() []ports.PatternAnalyzer {
	return e.analyzers
}

// Result pairs one analyzer's output with any recoverable failure
type Result struct {
	Analyzer string
	Patterns []insight.Pattern
	Err      error
}

// AnalyzeAll runs every analyzer and concatenates patterns in registration
// order. A fatal data-shape error aborts; any other analyzer failure is
// reported as a per-analyzer diagnostic and that contribution stays empty.
func (e *Engine) AnalyzeAll(ctx context.Context, data *dataset.ProcessedData, parallel bool) ([]insight.Pattern, []Result, error) {
	results := make([]Result, len(e.analyzers))

	if parallel {
		type indexed struct {
			idx int
			res Result
		}
		ch := make(chan indexed, len(e.analyzers))
		for i, analyzer := range e.analyzers {
			go func(idx int, a ports.PatternAnalyzer) {
				patterns, err := a.AnalyzePatterns(ctx, data)
				ch <- indexed{idx: idx, res: Result{Analyzer: a.Name(), Patterns: patterns, Err: err}}
			}(i, analyzer)
		}
		for range e.analyzers {
			r := <-ch
			results[r.idx] = r.res
		}
	} else {
		for i, analyzer := range e.analyzers {
			patterns, err := analyzer.AnalyzePatterns(ctx, data)
			results[i] = Result{Analyzer: analyzer.Name(), Patterns: patterns, Err: err}
		}
	}

	var all []insight.Pattern
	var diagnostics []Result
	for _, r := range results {
		if r.Err != nil {
			if core.IsDataShapeError(r.Err) {
				return nil, nil, r.Err
			}
			diagnostics = append(diagnostics, Result{
				Analyzer: r.Analyzer,
				Err:      core.NewAnalysisError(r.Analyzer, fmt.Errorf("analyzer skipped: %w", r.Err)),
			})
			continue
		}
		all = append(all, r.Patterns...)
	}
	return all, diagnostics, nil
}
