package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"goinsight/domain/core"
	"goinsight/domain/insight"
	"goinsight/ports"
)

// insightRepository implements the InsightRepository interface over
// Postgres, storing flexible fields as JSONB.
type insightRepository struct {
	db *sqlx.DB
}

// NewInsightRepository creates a Postgres insight repository
func NewInsightRepository(db *sqlx.DB) ports.InsightRepository {
	return &insightRepository{db: db}
}

// StoreInsight inserts one accepted insight
func (r *insightRepository) StoreInsight(ctx context.Context, ins *insight.Insight) error {
	evidenceJSON, err := json.Marshal(ins.Evidence)
	if err != nil {
		return fmt.Errorf("failed to marshal evidence: %w", err)
	}
	recsJSON, err := json.Marshal(ins.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	patternsJSON, err := json.Marshal(ins.SourcePatterns)
	if err != nil {
		return fmt.Errorf("failed to marshal source patterns: %w", err)
	}

	query := `INSERT INTO insights (
		id, insight_type, title, description, confidence, importance,
		evidence, recommendations, source_patterns, validation_score, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
	)`

	_, err = r.db.ExecContext(ctx, query,
		ins.ID, ins.InsightType, ins.Title, ins.Description, ins.Confidence, ins.Importance,
		evidenceJSON, recsJSON, patternsJSON, ins.ValidationScore, ins.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to store insight: %w", err)
	}
	return nil
}

// GetHistoricalPatterns reconstructs the patterns cited by recently
// stored insights, newest first.
func (r *insightRepository) GetHistoricalPatterns(ctx context.Context, limit int) ([]insight.Pattern, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT title, confidence, source_patterns, created_at
		FROM insights ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical insights: %w", err)
	}
	defer rows.Close()

	var out []insight.Pattern
	for rows.Next() {
		var (
			title        string
			confidence   float64
			patternsJSON []byte
			createdAt    time.Time
		)
		if err := rows.Scan(&title, &confidence, &patternsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan insight row: %w", err)
		}

		var patternIDs []string
		if len(patternsJSON) > 0 {
			if err := json.Unmarshal(patternsJSON, &patternIDs); err != nil {
				return nil, fmt.Errorf("failed to unmarshal source patterns: %w", err)
			}
		}
		for _, pid := range patternIDs {
			out = append(out, insight.Pattern{
				ID:          core.PatternID(pid),
				PatternType: insight.PatternStructural,
				Description: title,
				Confidence:  confidence,
				DetectedAt:  core.NewTimestamp(createdAt),
			})
			if len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, rows.Err()
}
