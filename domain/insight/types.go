package insight

import (
	"fmt"

	"goinsight/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// PatternType classifies detected regularities
type PatternType string

const (
	PatternCorrelation  PatternType = "correlation"
	PatternDistribution PatternType = "distribution"
	PatternAnomaly      PatternType = "anomaly"
	PatternTrend        PatternType = "trend"
	PatternSeasonality  PatternType = "seasonality"
	PatternChangePoint  PatternType = "change_point"
	PatternStructural   PatternType = "structural"
	PatternSemantic     PatternType = "semantic"
)

// InsightType classifies generated insights
type InsightType string

const (
	InsightPredictive   InsightType = "predictive"
	InsightExplanatory  InsightType = "explanatory"
	InsightPrescriptive InsightType = "prescriptive"
	InsightCreative     InsightType = "creative"
	InsightSynthetic    InsightType = "synthetic"
	InsightCausal       InsightType = "causal"
)

// Pattern is a detected regularity in processed data.
// Patterns are created by exactly one analyzer per pass and are immutable;
// only insights derived from them are persisted.
type Pattern struct {
	ID          core.PatternID         `json:"id"`
	PatternType PatternType            `json:"pattern_type"`
	Description string                 `json:"description"`
	Confidence  float64                `json:"confidence"` // [0,1], derived from significance
	Evidence    []string               `json:"evidence"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	DetectedAt  core.Timestamp         `json:"detected_at"`
}

// Insight is an actionable claim derived from one or more patterns.
// Importance reflects impact; confidence reflects certainty. They are independent.
type Insight struct {
	ID              core.InsightID   `json:"id"`
	InsightType     InsightType      `json:"insight_type"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Confidence      float64          `json:"confidence"` // [0,1]
	Importance      float64          `json:"importance"` // [0,1]
	Evidence        []string         `json:"evidence"`
	Recommendations []string         `json:"actionable_recommendations,omitempty"`
	SourcePatterns  []core.PatternID `json:"source_patterns,omitempty"`

	// ValidationScore is assigned post-hoc by validation; nil until validated.
	ValidationScore *float64       `json:"validation_score,omitempty"`
	CreatedAt       core.Timestamp `json:"created_at"`
}

// MetaInsight is synthesized from multiple component insights.
// Importance and novelty are always computed after creation, never supplied
// directly by the synthesis strategy.
type MetaInsight struct {
	Insight
	ComponentInsights  []core.InsightID `json:"component_insights"`
	EmergentProperties []string         `json:"emergent_properties,omitempty"`
	Novelty            float64          `json:"novelty"` // [0,1]
	SynthesisMethod    string           `json:"synthesis_method"`
}

// ============================================================================
// VALIDATION
// ============================================================================

// ValidationResult is the per-insight scoring record produced by validation.
// Sub-scores are each in [0,1]; the overall score is a configured deterministic
// combination of the four.
type ValidationResult struct {
	InsightID          core.InsightID `json:"insight_id"`
	ConsistencyScore   float64        `json:"consistency_score"`
	EvidenceScore      float64        `json:"evidence_score"`
	ActionabilityScore float64        `json:"actionability_score"`
	BiasScore          float64        `json:"bias_score"`

	Issues   []string `json:"issues,omitempty"`
	Barriers []string `json:"barriers,omitempty"`
	Biases   []string `json:"biases,omitempty"`

	OverallScore float64 `json:"overall_score"`
	IsValid      bool    `json:"is_valid"`
}

// ============================================================================
// TARGETED ENTRY-POINT OUTPUTS
// ============================================================================

// CausalInsight bridges an accepted causal edge into the insight layer
type CausalInsight struct {
	Insight
	Cause        core.VariableKey `json:"cause"`
	Effect       core.VariableKey `json:"effect"`
	Strength     float64          `json:"strength"`     // [0,1]
	Significance float64          `json:"significance"` // p-value-like, lower is stronger
	Mechanism    string           `json:"mechanism"`
}

// PredictiveInsight is a targeted forecast from GeneratePredictions
type PredictiveInsight struct {
	Insight
	TargetVariable core.VariableKey `json:"target_variable"`
	Horizon        int              `json:"horizon"` // steps ahead
	Predicted      float64          `json:"predicted"`
	Interval       [2]float64       `json:"interval"` // lower, upper bound
	Model          string           `json:"model"`
}

// PredictionContext scopes a GeneratePredictions call
type PredictionContext struct {
	TargetVariables []core.VariableKey `json:"target_variables,omitempty"` // empty = all numeric
	Horizon         int                `json:"horizon"`
}

// ============================================================================
// CONSTRUCTORS
// ============================================================================

// NewPattern creates a pattern with invariant checks
func NewPattern(pt PatternType, description string, confidence float64, evidence []string) (*Pattern, error) {
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("confidence must be in [0,1], got %f", confidence)
	}
	if description == "" {
		return nil, fmt.Errorf("description must be set")
	}
	return &Pattern{
		ID:          core.PatternID(core.NewID()),
		PatternType: pt,
		Description: description,
		Confidence:  confidence,
		Evidence:    evidence,
		Metadata:    map[string]interface{}{},
		DetectedAt:  core.Now(),
	}, nil
}

// MustNewPattern creates a pattern (panics on invalid input).
// Use only in tests and development.
func MustNewPattern(pt PatternType, description string, confidence float64, evidence []string) *Pattern {
	p, err := NewPattern(pt, description, confidence, evidence)
	if err != nil {
		panic(err)
	}
	return p
}

// NewInsight creates an insight with invariant checks
func NewInsight(it InsightType, title, description string, confidence, importance float64) (*Insight, error) {
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("confidence must be in [0,1], got %f", confidence)
	}
	if importance < 0 || importance > 1 {
		return nil, fmt.Errorf("importance must be in [0,1], got %f", importance)
	}
	if title == "" {
		return nil, fmt.Errorf("title must be set")
	}
	return &Insight{
		ID:          core.InsightID(core.NewID()),
		InsightType: it,
		Title:       title,
		Description: description,
		Confidence:  confidence,
		Importance:  importance,
		Evidence:    []string{},
		CreatedAt:   core.Now(),
	}, nil
}

// Validated reports whether the insight has passed validation
func (i *Insight) Validated() bool {
	return i.ValidationScore != nil
}

// Rank is the primary sort key for emitted insights
func (i *Insight) Rank() float64 {
	return i.Importance * i.Confidence
}
