package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions provides unified access to the statistical distributions the
// engine needs, replacing fragmented CDF approximations.
type Distributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

// TTestPValue computes the two-tailed p-value for a t-statistic
func (d *Distributions) TTestPValue(tStatistic float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(degreesOfFreedom)}
	return 2 * (1 - tDist.CDF(math.Abs(tStatistic)))
}

// CorrelationPValue computes the exact p-value for a correlation coefficient
func (d *Distributions) CorrelationPValue(correlation float64, sampleSize int) float64 {
	if sampleSize < 3 {
		return 1.0
	}
	if math.Abs(correlation) >= 1.0 {
		return 0.0
	}

	df := float64(sampleSize - 2)
	tStatistic := correlation * math.Sqrt(df/(1-correlation*correlation))
	return d.TTestPValue(tStatistic, int(df))
}

// ChiSquarePValue computes the p-value for a chi-square statistic
func (d *Distributions) ChiSquarePValue(chiSquare float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}

	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return 1 - chiDist.CDF(chiSquare)
}

// FTestPValue computes the p-value for an F statistic (regression fit)
func (d *Distributions) FTestPValue(fStatistic float64, df1, df2 int) float64 {
	if df1 <= 0 || df2 <= 0 {
		return 1.0
	}

	fDist := distuv.F{D1: float64(df1), D2: float64(df2)}
	return 1 - fDist.CDF(fStatistic)
}

// NormalCDF computes the standard normal cumulative distribution function
func (d *Distributions) NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormalQuantile computes the standard normal quantile (inverse CDF)
func (d *Distributions) NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// FisherZPValue computes the p-value of a (partial) correlation via the
// Fisher z-transform. condSize is the number of conditioning variables.
func (d *Distributions) FisherZPValue(partialCorrelation float64, sampleSize, condSize int) float64 {
	n := float64(sampleSize)
	k := float64(condSize)
	if n-k-3 <= 0 {
		return 1.0
	}

	r := partialCorrelation
	// Guard against |r| == 1 blowing up the transform
	if r >= 1 {
		r = 1 - 1e-12
	} else if r <= -1 {
		r = -1 + 1e-12
	}

	z := 0.5 * math.Log((1+r)/(1-r))
	statistic := math.Sqrt(n-k-3) * math.Abs(z)
	return 2 * (1 - d.NormalCDF(statistic))
}
