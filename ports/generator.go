package ports

import (
	"context"

	"goinsight/domain/dataset"
	"goinsight/domain/insight"
)

// InsightGenerator turns the complete pattern set into candidate insights.
// Each generator only emits insights whose local confidence clears its own
// configured floor; floors are generator-specific.
type InsightGenerator interface {
	Name() string
	GenerateInsights(ctx context.Context, patterns []insight.Pattern, data *dataset.ProcessedData) ([]insight.Insight, error)
}
