package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goinsight/domain/core"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadWeights(t *testing.T) {
	cfg := Default()
	cfg.Validation.ConsistencyWeight = 0.9

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
}

func TestValidateRejectsNegativeWeight(t *testing.T) {
	cfg := Default()
	// Sums to 1 but a negative weight offsets an inflated one
	cfg.Validation.ConsistencyWeight = -0.1
	cfg.Validation.EvidenceWeight = 0.7

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
}

func TestValidateRejectsBadAlpha(t *testing.T) {
	cfg := Default()
	cfg.Causality.Alpha = 1.5

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
}

func TestValidateRejectsTinyMinInstances(t *testing.T) {
	cfg := Default()
	cfg.Synthesis.MinInstances = 1

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("MIN_CONFIDENCE", "0.7")
	t.Setenv("CAUSALITY_ALPHA", "0.01")
	t.Setenv("PARALLELISM", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.7, cfg.MinConfidence, 1e-9)
	assert.InDelta(t, 0.01, cfg.Causality.Alpha, 1e-9)
	assert.Equal(t, 8, cfg.Parallelism)
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	t.Setenv("CAUSALITY_ALPHA", "2.0")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
}
