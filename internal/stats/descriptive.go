package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics for one variable
type Summary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Median float64
	Q25    float64
	Q75    float64
	N      int
}

// Describe computes descriptive statistics for a column
func Describe(data []float64) (Summary, error) {
	s := Summary{N: len(data)}
	if len(data) == 0 {
		return s, nil
	}

	var err error
	if s.Mean, err = mstats.Mean(data); err != nil {
		return s, err
	}
	if s.StdDev, err = mstats.StandardDeviation(data); err != nil {
		return s, err
	}
	if s.Min, err = mstats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = mstats.Max(data); err != nil {
		return s, err
	}
	if s.Median, err = mstats.Median(data); err != nil {
		return s, err
	}
	if s.Q25, err = mstats.Percentile(data, 25); err != nil {
		return s, err
	}
	if s.Q75, err = mstats.Percentile(data, 75); err != nil {
		return s, err
	}
	return s, nil
}

// PearsonCorrelation computes Pearson's r, returning 0 for degenerate input
func PearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 3 {
		return 0
	}
	r, err := mstats.Pearson(x, y)
	if err != nil || math.IsNaN(r) {
		return 0
	}
	// Clamp for floating point drift
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// LinearTrend fits y = intercept + slope*x by least squares and returns the
// slope, intercept and R² of the fit.
func LinearTrend(x, y []float64) (slope, intercept, rsquared float64) {
	if len(x) != len(y) || len(x) < 3 {
		return 0, 0, 0
	}
	intercept, slope = stat.LinearRegression(x, y, nil, false)
	rsquared = stat.RSquared(x, y, nil, intercept, slope)
	if math.IsNaN(slope) || math.IsNaN(intercept) {
		return 0, 0, 0
	}
	if math.IsNaN(rsquared) || rsquared < 0 {
		rsquared = 0
	}
	return slope, intercept, rsquared
}

// SlopePValue computes the two-tailed significance of a regression slope
func SlopePValue(x, y []float64, slope, intercept float64) float64 {
	n := len(x)
	if n < 4 {
		return 1.0
	}

	var rss, sxx float64
	meanX := stat.Mean(x, nil)
	for i := range x {
		resid := y[i] - (intercept + slope*x[i])
		rss += resid * resid
		dx := x[i] - meanX
		sxx += dx * dx
	}
	if sxx == 0 {
		return 1.0
	}
	se := math.Sqrt(rss / float64(n-2) / sxx)
	if se == 0 {
		return 0.0
	}

	t := slope / se
	return NewDistributions().TTestPValue(t, n-2)
}

// ZScores standardizes a column ((x - mean) / sd). Zero variance yields zeros.
func ZScores(data []float64) []float64 {
	out := make([]float64, len(data))
	mean := stat.Mean(data, nil)
	sd := stat.StdDev(data, nil)
	if sd == 0 || math.IsNaN(sd) {
		return out
	}
	for i, v := range data {
		out[i] = (v - mean) / sd
	}
	return out
}
