package config

import (
	"os"
	"strconv"

	"goinsight/domain/core"
)

// EngineConfig is the complete configuration surface of the insight engine.
// Invalid thresholds are rejected at construction time, never at call time.
type EngineConfig struct {
	MinConfidence          float64
	MinImportance          float64
	MaxInsightsPerAnalysis int

	Analyzers  AnalyzerConfig
	Generators GeneratorConfig
	Validation ValidationConfig
	Synthesis  SynthesisConfig
	Causality  CausalityConfig

	// Parallelism bounds concurrent work within a pass; 0 means sequential
	Parallelism int
	Seed        int64
}

// AnalyzerConfig holds per-analyzer enables and policy thresholds
type AnalyzerConfig struct {
	EnableStatistical bool
	EnableTemporal    bool
	EnableStructural  bool
	EnableSemantic    bool

	CorrelationThreshold     float64 // keep pairs with |r| above this
	DistributionFitThreshold float64 // keep fits with goodness above this
	AnomalyScoreThreshold    float64 // keep anomalies scoring above this
}

// GeneratorConfig holds per-generator enables and confidence floors
type GeneratorConfig struct {
	EnablePredictive   bool
	EnableExplanatory  bool
	EnablePrescriptive bool
	EnableCreative     bool

	PredictiveFloor   float64
	ExplanatoryFloor  float64
	PrescriptiveFloor float64
	CreativeFloor     float64
}

// ValidationConfig holds the deterministic sub-score combination policy.
// The four weights must sum to 1.
type ValidationConfig struct {
	ConsistencyWeight   float64
	EvidenceWeight      float64
	ActionabilityWeight float64
	BiasWeight          float64
	ValidThreshold      float64
}

// SynthesisConfig holds synthesis thresholds
type SynthesisConfig struct {
	MinImportance float64 // meta-insights at or below this are discarded
	MinInstances  int     // default minimum component insights per rule
}

// CausalityConfig bounds constraint-based discovery
type CausalityConfig struct {
	Alpha                  float64 // independence significance: p > alpha means independent
	MaxConditioningSetSize int     // caps worst-case work; exceeding degrades gracefully
	MinEdgeSignificance    float64 // edges must clear this to become causal insights
}

// Default returns the documented policy constants
func Default() EngineConfig {
	return EngineConfig{
		MinConfidence:          0.5,
		MinImportance:          0.3,
		MaxInsightsPerAnalysis: 50,
		Analyzers: AnalyzerConfig{
			EnableStatistical:        true,
			EnableTemporal:           true,
			EnableStructural:         true,
			EnableSemantic:           true,
			CorrelationThreshold:     0.5,
			DistributionFitThreshold: 0.8,
			AnomalyScoreThreshold:    0.8,
		},
		Generators: GeneratorConfig{
			EnablePredictive:   true,
			EnableExplanatory:  true,
			EnablePrescriptive: true,
			EnableCreative:     true,
			PredictiveFloor:    0.6,
			ExplanatoryFloor:   0.5,
			PrescriptiveFloor:  0.5,
			CreativeFloor:      0.4,
		},
		Validation: ValidationConfig{
			ConsistencyWeight:   0.3,
			EvidenceWeight:      0.3,
			ActionabilityWeight: 0.2,
			BiasWeight:          0.2,
			ValidThreshold:      0.6,
		},
		Synthesis: SynthesisConfig{
			MinImportance: 0.5,
			MinInstances:  2,
		},
		Causality: CausalityConfig{
			Alpha:                  0.05,
			MaxConditioningSetSize: 3,
			MinEdgeSignificance:    0.05,
		},
		Parallelism: 4,
		Seed:        42,
	}
}

// Load reads configuration from environment variables over the defaults
func Load() (EngineConfig, error) {
	cfg := Default()

	cfg.MinConfidence = getEnvFloatOrDefault("MIN_CONFIDENCE", cfg.MinConfidence)
	cfg.MinImportance = getEnvFloatOrDefault("MIN_IMPORTANCE", cfg.MinImportance)
	cfg.MaxInsightsPerAnalysis = getEnvIntOrDefault("MAX_INSIGHTS_PER_ANALYSIS", cfg.MaxInsightsPerAnalysis)

	cfg.Analyzers.EnableStatistical = getEnvBoolOrDefault("ENABLE_STATISTICAL", cfg.Analyzers.EnableStatistical)
	cfg.Analyzers.EnableTemporal = getEnvBoolOrDefault("ENABLE_TEMPORAL", cfg.Analyzers.EnableTemporal)
	cfg.Analyzers.EnableStructural = getEnvBoolOrDefault("ENABLE_STRUCTURAL", cfg.Analyzers.EnableStructural)
	cfg.Analyzers.EnableSemantic = getEnvBoolOrDefault("ENABLE_SEMANTIC", cfg.Analyzers.EnableSemantic)
	cfg.Analyzers.CorrelationThreshold = getEnvFloatOrDefault("CORRELATION_THRESHOLD", cfg.Analyzers.CorrelationThreshold)
	cfg.Analyzers.DistributionFitThreshold = getEnvFloatOrDefault("DISTRIBUTION_FIT_THRESHOLD", cfg.Analyzers.DistributionFitThreshold)
	cfg.Analyzers.AnomalyScoreThreshold = getEnvFloatOrDefault("ANOMALY_SCORE_THRESHOLD", cfg.Analyzers.AnomalyScoreThreshold)

	cfg.Generators.PredictiveFloor = getEnvFloatOrDefault("PREDICTIVE_FLOOR", cfg.Generators.PredictiveFloor)
	cfg.Generators.ExplanatoryFloor = getEnvFloatOrDefault("EXPLANATORY_FLOOR", cfg.Generators.ExplanatoryFloor)

	cfg.Causality.Alpha = getEnvFloatOrDefault("CAUSALITY_ALPHA", cfg.Causality.Alpha)
	cfg.Causality.MaxConditioningSetSize = getEnvIntOrDefault("MAX_CONDITIONING_SET_SIZE", cfg.Causality.MaxConditioningSetSize)

	cfg.Parallelism = getEnvIntOrDefault("PARALLELISM", cfg.Parallelism)
	cfg.Seed = int64(getEnvIntOrDefault("SEED", int(cfg.Seed)))

	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}

// Validate rejects out-of-range values with core.ErrConfiguration
func (c EngineConfig) Validate() error {
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return core.NewConfigurationError("min_confidence", "must be in [0,1]")
	}
	if c.MinImportance < 0 || c.MinImportance > 1 {
		return core.NewConfigurationError("min_importance", "must be in [0,1]")
	}
	if c.MaxInsightsPerAnalysis < 0 {
		return core.NewConfigurationError("max_insights_per_analysis", "must be >= 0")
	}
	for name, v := range map[string]float64{
		"correlation_threshold":      c.Analyzers.CorrelationThreshold,
		"distribution_fit_threshold": c.Analyzers.DistributionFitThreshold,
		"anomaly_score_threshold":    c.Analyzers.AnomalyScoreThreshold,
		"predictive_floor":           c.Generators.PredictiveFloor,
		"explanatory_floor":          c.Generators.ExplanatoryFloor,
		"prescriptive_floor":         c.Generators.PrescriptiveFloor,
		"creative_floor":             c.Generators.CreativeFloor,
		"valid_threshold":            c.Validation.ValidThreshold,
		"synthesis_min_importance":   c.Synthesis.MinImportance,
	} {
		if v < 0 || v > 1 {
			return core.NewConfigurationError(name, "must be in [0,1]")
		}
	}
	for name, w := range map[string]float64{
		"consistency_weight":   c.Validation.ConsistencyWeight,
		"evidence_weight":      c.Validation.EvidenceWeight,
		"actionability_weight": c.Validation.ActionabilityWeight,
		"bias_weight":          c.Validation.BiasWeight,
	} {
		if w < 0 {
			return core.NewConfigurationError(name, "must be >= 0")
		}
	}
	weightSum := c.Validation.ConsistencyWeight + c.Validation.EvidenceWeight +
		c.Validation.ActionabilityWeight + c.Validation.BiasWeight
	if weightSum < 0.999 || weightSum > 1.001 {
		return core.NewConfigurationError("validation_weights", "must sum to 1")
	}
	if c.Causality.Alpha <= 0 || c.Causality.Alpha >= 1 {
		return core.NewConfigurationError("causality_alpha", "must be in (0,1)")
	}
	if c.Causality.MaxConditioningSetSize < 0 {
		return core.NewConfigurationError("max_conditioning_set_size", "must be >= 0")
	}
	if c.Synthesis.MinInstances < 2 {
		return core.NewConfigurationError("synthesis_min_instances", "must be >= 2")
	}
	if c.Parallelism < 0 {
		return core.NewConfigurationError("parallelism", "must be >= 0")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
