package ports

import (
	"context"

	"goinsight/domain/insight"
)

// MetaLearnerState is explicit state threaded through extraction passes so
// tests can run passes in isolation with a deterministic starting point.
type MetaLearnerState struct {
	PassCount          int     `json:"pass_count"`
	AcceptanceRateEMA  float64 `json:"acceptance_rate_ema"`
	ConfidenceAdjust   float64 `json:"confidence_adjust"`   // additive nudge to min_confidence
	LastAcceptanceRate float64 `json:"last_acceptance_rate"`
}

// MetaLearner consumes accepted insights after a pass and returns updated
// state used to tune future thresholds.
type MetaLearner interface {
	LearnFromInsights(ctx context.Context, state MetaLearnerState, accepted []insight.Insight, candidates int) (MetaLearnerState, error)
}
