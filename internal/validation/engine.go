package validation

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"goinsight/domain/insight"
	"goinsight/internal/config"
)

// Engine runs the four validation checks over insights. Validating one
// insight is a pure function of the insight plus the already-accepted
// set, so repeat calls return identical results.
type Engine struct {
	cfg         config.ValidationConfig
	parallelism int
	clock       func() time.Time
}

// NewEngine creates a validation engine
func NewEngine(cfg config.ValidationConfig, parallelism int) *Engine {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Engine{cfg: cfg, parallelism: parallelism, clock: time.Now}
}

// WithClock overrides the recency clock, for tests
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// ValidateInsight scores one insight on the four axes and combines them
// by the configured weights.
func (e *Engine) ValidateInsight(ins *insight.Insight, accepted []insight.Insight) insight.ValidationResult {
	consistency, issues := checkConsistency(ins, accepted)
	evidence, evidenceIssues := checkEvidence(ins, e.clock())
	actionability, barriers := checkActionability(ins)
	bias, biases := checkBias(ins)

	overall := e.cfg.ConsistencyWeight*consistency +
		e.cfg.EvidenceWeight*evidence +
		e.cfg.ActionabilityWeight*actionability +
		e.cfg.BiasWeight*bias

	// No evidence, no pass. The other axes can keep the weighted score
	// above threshold, but an unevidenced claim is never accepted.
	valid := overall > e.cfg.ValidThreshold && evidence > 0

	return insight.ValidationResult{
		InsightID:          ins.ID,
		ConsistencyScore:   consistency,
		EvidenceScore:      evidence,
		ActionabilityScore: actionability,
		BiasScore:          bias,
		Issues:             append(issues, evidenceIssues...),
		Barriers:           barriers,
		Biases:             biases,
		OverallScore:       overall,
		IsValid:            valid,
	}
}

// ValidateAll validates each insight independently under a bounded
// worker pool. Results are indexed by input position so ordering never
// depends on scheduling. The accepted set is read-only during the pass;
// validation of one insight never sees another candidate's outcome.
func (e *Engine) ValidateAll(ctx context.Context, insights []insight.Insight, accepted []insight.Insight) ([]insight.ValidationResult, error) {
	results := make([]insight.ValidationResult, len(insights))
	sem := semaphore.NewWeighted(int64(e.parallelism))
	var wg sync.WaitGroup

	for i := range insights {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer sem.Release(1)
			results[idx] = e.ValidateInsight(&insights[idx], accepted)
		}(i)
	}
	wg.Wait()
	return results, nil
}
