package memory

import (
	"context"
	"sync"

	"goinsight/domain/insight"
)

// InsightRepository is an in-memory repository for tests and
// single-process runs. Exported concretely so callers can inspect what
// was stored.
type InsightRepository struct {
	mu       sync.RWMutex
	insights []insight.Insight
}

// NewInsightRepository creates an empty in-memory repository
func NewInsightRepository() *InsightRepository {
	return &InsightRepository{}
}

// StoreInsight appends a copy of the insight
func (r *InsightRepository) StoreInsight(ctx context.Context, ins *insight.Insight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insights = append(r.insights, *ins)
	return nil
}

// GetHistoricalPatterns replays the source patterns of stored insights,
// most recent first, up to limit.
func (r *InsightRepository) GetHistoricalPatterns(ctx context.Context, limit int) ([]insight.Pattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []insight.Pattern
	for i := len(r.insights) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		ins := r.insights[i]
		for _, pid := range ins.SourcePatterns {
			out = append(out, insight.Pattern{
				ID:          pid,
				PatternType: insight.PatternStructural,
				Description: ins.Title,
				Confidence:  ins.Confidence,
				DetectedAt:  ins.CreatedAt,
			})
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// Stored returns a snapshot of everything stored so far
func (r *InsightRepository) Stored() []insight.Insight {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]insight.Insight, len(r.insights))
	copy(out, r.insights)
	return out
}
