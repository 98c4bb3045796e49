package ports

import (
	"context"

	"goinsight/domain/insight"
)

// SynthesisStrategy combines related insights into meta-insight candidates.
// Strategies never set importance or novelty; those are computed after
// conflict resolution.
type SynthesisStrategy interface {
	Name() string
	Synthesize(ctx context.Context, insights []insight.Insight) ([]insight.MetaInsight, error)
}

// CombinationRule declares what a PatternCombination strategy looks for
type CombinationRule struct {
	Name         string
	InsightTypes []insight.InsightType // types that must all be present
	MinInstances int                   // minimum component insights per meta-insight
}
