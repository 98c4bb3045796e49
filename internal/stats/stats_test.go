package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	col := []float64{1, 2, 3, 4, 5}

	s, err := Describe(col)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, s.Mean, 1e-9)
	assert.InDelta(t, 3.0, s.Median, 1e-9)
	assert.InDelta(t, 1.0, s.Min, 1e-9)
	assert.InDelta(t, 5.0, s.Max, 1e-9)
}

func TestPearsonCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}
	assert.InDelta(t, 1.0, PearsonCorrelation(x, y), 1e-9)

	inv := []float64{10, 8, 6, 4, 2}
	assert.InDelta(t, -1.0, PearsonCorrelation(x, inv), 1e-9)

	// Degenerate inputs report no correlation instead of NaN
	constant := []float64{3, 3, 3, 3, 3}
	assert.Equal(t, 0.0, PearsonCorrelation(x, constant))
}

func TestLinearTrend(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{1, 3, 5, 7, 9}

	slope, intercept, rsq := LinearTrend(x, y)
	assert.InDelta(t, 2.0, slope, 1e-9)
	assert.InDelta(t, 1.0, intercept, 1e-9)
	assert.InDelta(t, 1.0, rsq, 1e-9)
}

func TestFisherZPValue(t *testing.T) {
	d := NewDistributions()

	// Strong correlation over many samples is highly significant
	pStrong := d.FisherZPValue(0.9, 200, 0)
	assert.Less(t, pStrong, 0.001)

	// Near-zero correlation is not
	pWeak := d.FisherZPValue(0.01, 200, 0)
	assert.Greater(t, pWeak, 0.5)

	// Conditioning reduces effective sample size, weakening significance
	pCond := d.FisherZPValue(0.2, 30, 3)
	pFree := d.FisherZPValue(0.2, 30, 0)
	assert.Greater(t, pCond, pFree)

	// Perfect correlation stays finite
	pPerfect := d.FisherZPValue(1.0, 50, 0)
	assert.False(t, math.IsNaN(pPerfect))
	assert.Less(t, pPerfect, 0.001)
}

func TestCorrelationPValue(t *testing.T) {
	d := NewDistributions()
	assert.Less(t, d.CorrelationPValue(0.95, 100), 0.001)
	assert.Greater(t, d.CorrelationPValue(0.05, 20), 0.5)
}

func TestZScores(t *testing.T) {
	col := []float64{10, 10, 10, 10, 20}
	z := ZScores(col)
	require.Len(t, z, 5)
	assert.Greater(t, z[4], 1.0)
	assert.Less(t, z[0], 0.0)
}
