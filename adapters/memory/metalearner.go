package memory

import (
	"context"

	"goinsight/domain/insight"
	"goinsight/ports"
)

// EMAMetaLearner tunes the confidence floor from acceptance rates using
// an exponential moving average. High acceptance relaxes nothing; low
// acceptance eases the floor so a strict configuration cannot starve
// the pipeline forever.
type EMAMetaLearner struct {
	// Smoothing is the EMA weight on the newest observation
	Smoothing float64
	// MaxAdjust bounds the absolute confidence nudge
	MaxAdjust float64
}

// NewEMAMetaLearner creates a meta-learner with the stock smoothing
func NewEMAMetaLearner() *EMAMetaLearner {
	return &EMAMetaLearner{Smoothing: 0.3, MaxAdjust: 0.15}
}

// LearnFromInsights folds one pass's acceptance rate into the state
func (m *EMAMetaLearner) LearnFromInsights(ctx context.Context, state ports.MetaLearnerState, accepted []insight.Insight, candidates int) (ports.MetaLearnerState, error) {
	rate := 0.0
	if candidates > 0 {
		rate = float64(len(accepted)) / float64(candidates)
	}

	next := state
	next.PassCount++
	next.LastAcceptanceRate = rate
	if state.PassCount == 0 {
		next.AcceptanceRateEMA = rate
	} else {
		next.AcceptanceRateEMA = m.Smoothing*rate + (1-m.Smoothing)*state.AcceptanceRateEMA
	}

	// Starving pipelines ease the floor, flooded ones tighten it.
	switch {
	case next.AcceptanceRateEMA < 0.1:
		next.ConfidenceAdjust -= 0.02
	case next.AcceptanceRateEMA > 0.8:
		next.ConfidenceAdjust += 0.02
	}
	if next.ConfidenceAdjust > m.MaxAdjust {
		next.ConfidenceAdjust = m.MaxAdjust
	}
	if next.ConfidenceAdjust < -m.MaxAdjust {
		next.ConfidenceAdjust = -m.MaxAdjust
	}
	return next, nil
}
