package extractor

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	internal "goinsight/internal"
	"goinsight/internal/analyzers"
	"goinsight/internal/causality"
	"goinsight/internal/config"
	"goinsight/internal/generators"
	"goinsight/internal/synthesis"
	"goinsight/internal/validation"
	"goinsight/ports"
)

// ============================================================================
// STATE MACHINE
// ============================================================================

// State is the extractor's pipeline position. Every extraction pass
// walks the full sequence and returns to Idle, success or failure.
type State string

const (
	StateIdle               State = "idle"
	StateAnalyzingPatterns  State = "analyzing_patterns"
	StateGeneratingInsights State = "generating_insights"
	StateSynthesizing       State = "synthesizing"
	StateValidating         State = "validating"
	StateFiltering          State = "filtering"
	StatePersisting         State = "persisting"
)

// ============================================================================
// EXTRACTOR
// ============================================================================

// Extractor orchestrates one analysis pass: analyzers, generators,
// synthesis, validation, filtering, persistence, meta-learning. Each
// call starts fresh from Idle; nothing carries over between passes
// except the collaborators and the meta-learner state.
type Extractor struct {
	cfg         *config.EngineConfig
	analyzers   *analyzers.Engine
	generators  *generators.Engine
	synthesizer *synthesis.Synthesizer
	validator   *validation.Engine
	discovery   *causality.Discovery

	repo    ports.InsightRepository
	learner ports.MetaLearner
	logger  *internal.Logger

	mu        sync.Mutex
	state     State
	metaState ports.MetaLearnerState
}

// New wires an extractor from configuration and collaborators
func New(cfg *config.EngineConfig, repo ports.InsightRepository, learner ports.MetaLearner) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{
		cfg:         cfg,
		analyzers:   analyzers.NewEngine(cfg.Analyzers),
		generators:  generators.NewEngine(cfg.Generators),
		synthesizer: synthesis.NewSynthesizer(cfg.Synthesis),
		validator:   validation.NewEngine(cfg.Validation, cfg.Parallelism),
		discovery:   causality.NewDiscovery(cfg.Causality, cfg.Parallelism),
		repo:        repo,
		learner:     learner,
		logger:      internal.DefaultLogger.WithScope("extractor"),
		state:       StateIdle,
	}, nil
}

// State reports the current pipeline position
func (e *Extractor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// MetaState returns a copy of the current meta-learner state
func (e *Extractor) MetaState() ports.MetaLearnerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metaState
}

// SetMetaState seeds the meta-learner state, for resuming or tests
func (e *Extractor) SetMetaState(state ports.MetaLearnerState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metaState = state
}

func (e *Extractor) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// ExtractionReport is the outcome of one full pass
type ExtractionReport struct {
	ExtractionID core.ExtractionID          `json:"extraction_id"`
	Fingerprint  core.DataFingerprint       `json:"fingerprint"`
	Patterns     []insight.Pattern          `json:"patterns"`
	Insights     []insight.Insight          `json:"insights"`
	MetaInsights []insight.MetaInsight      `json:"meta_insights,omitempty"`
	Validations  []insight.ValidationResult `json:"validations"`
	Diagnostics  []string                   `json:"diagnostics,omitempty"`
	Candidates   int                        `json:"candidates"`
}

// ============================================================================
// FULL PIPELINE
// ============================================================================

// ExtractInsights runs the whole pipeline synchronously. Cancellation
// is honored between stages only; a stage that has begun runs to its
// natural stopping point so partial pattern or insight sets are never
// exposed.
func (e *Extractor) ExtractInsights(ctx context.Context, data *dataset.ProcessedData) (report *ExtractionReport, err error) {
	defer e.setState(StateIdle)

	if err := data.Validate(); err != nil {
		return nil, err
	}

	report = &ExtractionReport{
		ExtractionID: core.ExtractionID(core.NewID()),
		Fingerprint:  data.Fingerprint,
	}

	// Stage 1: pattern analysis
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}
	e.setState(StateAnalyzingPatterns)
	patterns, analyzerDiags, err := e.analyzers.AnalyzeAll(ctx, data, e.cfg.Parallelism > 1)
	if err != nil {
		return nil, err
	}
	for _, d := range analyzerDiags {
		report.Diagnostics = append(report.Diagnostics, d.Err.Error())
	}
	report.Patterns = patterns
	e.logger.Debug("pattern analysis produced %d patterns", len(patterns))

	// Stage 2: insight generation
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}
	e.setState(StateGeneratingInsights)
	candidates, generatorDiags, err := e.generators.GenerateAll(ctx, patterns, data, e.cfg.Parallelism > 1)
	if err != nil {
		return nil, err
	}
	for _, d := range generatorDiags {
		report.Diagnostics = append(report.Diagnostics, d.Err.Error())
	}
	report.Candidates = len(candidates)

	// Stage 3: synthesis, with its serialized conflict resolution
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}
	e.setState(StateSynthesizing)
	metas, err := e.synthesizer.SynthesizeInsights(ctx, candidates)
	if err != nil {
		return nil, err
	}
	report.MetaInsights = metas

	// Meta-insights join the candidate pool for validation and filtering.
	pool := make([]insight.Insight, 0, len(candidates)+len(metas))
	pool = append(pool, candidates...)
	for _, m := range metas {
		pool = append(pool, m.Insight)
	}

	// Stage 4: validation against prior accepted knowledge
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}
	e.setState(StateValidating)
	historical, err := e.repo.GetHistoricalPatterns(ctx, historyLimit)
	if err != nil {
		// Missing history degrades the consistency check, not the pass.
		report.Diagnostics = append(report.Diagnostics, core.NewRepositoryError(err).Error())
		e.logger.Warn("historical pattern fetch failed: %v", err)
	}
	validations, err := e.validator.ValidateAll(ctx, pool, priorKnowledge(historical))
	if err != nil {
		return nil, err
	}
	report.Validations = validations

	// Stage 5: filtering and ordering
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}
	e.setState(StateFiltering)
	accepted := e.filter(pool, validations, report)
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Rank() > accepted[j].Rank()
	})
	if len(accepted) > e.cfg.MaxInsightsPerAnalysis {
		accepted = accepted[:e.cfg.MaxInsightsPerAnalysis]
	}
	report.Insights = accepted

	// Stage 6: persistence and meta-learning. Collaborator calls happen
	// without any extractor lock held.
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}
	e.setState(StatePersisting)
	for i := range accepted {
		if err := e.repo.StoreInsight(ctx, &accepted[i]); err != nil {
			// The computed report is still good; callers get it back
			// alongside the persistence failure.
			return report, core.NewRepositoryError(fmt.Errorf("store insight %s: %w", accepted[i].ID, err))
		}
	}

	state := e.MetaState()
	next, err := e.learner.LearnFromInsights(ctx, state, accepted, report.Candidates)
	if err != nil {
		// Meta-learning failure degrades adaptation, not the pass.
		report.Diagnostics = append(report.Diagnostics, core.NewMetaLearnerError(err).Error())
		e.logger.Warn("meta-learner update failed: %v", err)
	} else {
		e.SetMetaState(next)
	}

	e.logger.Info("extraction %s accepted %d of %d candidates", report.ExtractionID, len(accepted), report.Candidates)
	return report, nil
}

// historyLimit caps how many stored patterns feed the consistency check
const historyLimit = 100

// priorKnowledge reshapes historical patterns into the accepted-claim
// form the consistency check compares against.
func priorKnowledge(patterns []insight.Pattern) []insight.Insight {
	out := make([]insight.Insight, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, insight.Insight{
			Title:       p.Description,
			Description: p.Description,
			Confidence:  p.Confidence,
			CreatedAt:   p.DetectedAt,
		})
	}
	return out
}

// filter applies validation outcomes and the confidence floor. The
// floor is nudged by the meta-learner's adjustment.
func (e *Extractor) filter(pool []insight.Insight, validations []insight.ValidationResult, report *ExtractionReport) []insight.Insight {
	minConfidence := e.cfg.MinConfidence + e.MetaState().ConfidenceAdjust
	if minConfidence < 0 {
		minConfidence = 0
	}

	var accepted []insight.Insight
	for i := range pool {
		v := validations[i]
		if !v.IsValid {
			e.logger.Debug("rejected %s: validation score %.2f", pool[i].ID, v.OverallScore)
			continue
		}
		if pool[i].Confidence < minConfidence || pool[i].Importance < e.cfg.MinImportance {
			continue
		}
		ins := pool[i]
		score := v.OverallScore
		ins.ValidationScore = &score
		accepted = append(accepted, ins)
	}
	return accepted
}

// ============================================================================
// TARGETED ENTRY POINTS
// ============================================================================

// DiscoverCausality bypasses the pipeline and runs structure learning
// directly over the data.
func (e *Extractor) DiscoverCausality(ctx context.Context, data *dataset.ProcessedData) ([]insight.CausalInsight, error) {
	return e.discovery.DiscoverCausality(ctx, data)
}

// GeneratePredictions bypasses the pipeline and forecasts the requested
// variables directly.
func (e *Extractor) GeneratePredictions(ctx context.Context, data *dataset.ProcessedData, pctx insight.PredictionContext) ([]insight.PredictiveInsight, error) {
	gen := e.generators.Predictive()
	if gen == nil {
		return nil, core.NewConfigurationError("generators.predictive", "predictive generator is disabled")
	}
	return gen.Forecast(ctx, data, pctx)
}

func checkpoint(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
