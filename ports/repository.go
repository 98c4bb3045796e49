package ports

import (
	"context"

	"goinsight/domain/insight"
)

// InsightRepository persists accepted insights. Implementations signal their
// own failures distinctly; the engine wraps them in core.ErrRepository and
// never lets them corrupt the in-memory result set.
type InsightRepository interface {
	StoreInsight(ctx context.Context, ins *insight.Insight) error
	GetHistoricalPatterns(ctx context.Context, limit int) ([]insight.Pattern, error)
}
