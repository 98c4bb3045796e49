package ports

import (
	"context"

	"goinsight/domain/dataset"
	"goinsight/domain/insight"
)

// PatternAnalyzer scans processed data for one family of regularities.
// Implementations are stateless per call, never mutate data, and return an
// empty slice (not an error) when nothing is found. They fail only on
// malformed input, signaling core.ErrDataShape.
type PatternAnalyzer interface {
	Name() string
	AnalyzePatterns(ctx context.Context, data *dataset.ProcessedData) ([]insight.Pattern, error)
}
