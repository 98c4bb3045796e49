package causality

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/internal/stats"
)

// IndependenceTester runs Fisher-z conditional independence tests over the
// correlation structure of a dataset. Tests that cannot be computed are
// reported as dependent (conservative: the edge is kept).
type IndependenceTester struct {
	corr    map[[2]int]float64
	columns [][]float64
	index   map[core.VariableKey]int
	n       int
	dist    *stats.Distributions
}

// TestOutcome is the result of one conditional independence test
type TestOutcome struct {
	PValue      float64
	Correlation float64
	Computed    bool
}

// NewIndependenceTester precomputes pairwise correlations for the dataset
func NewIndependenceTester(data *dataset.ProcessedData) *IndependenceTester {
	cols := data.ColumnCount()
	t := &IndependenceTester{
		corr:    make(map[[2]int]float64),
		columns: make([][]float64, cols),
		index:   make(map[core.VariableKey]int, cols),
		n:       data.RowCount(),
		dist:    stats.NewDistributions(),
	}
	for j, key := range data.Matrix.VariableKeys {
		t.index[key] = j
		t.columns[j] = data.ColumnAt(j)
	}
	for i := 0; i < cols; i++ {
		for j := i + 1; j < cols; j++ {
			t.corr[[2]int{i, j}] = stats.PearsonCorrelation(t.columns[i], t.columns[j])
		}
	}
	return t
}

func (t *IndependenceTester) pairCorr(i, j int) float64 {
	if i == j {
		return 1
	}
	if i > j {
		i, j = j, i
	}
	return t.corr[[2]int{i, j}]
}

// Test computes the significance of the partial correlation of x and y given
// the conditioning set. Insufficient samples or a singular correlation matrix
// yields Computed=false, which callers must treat as "not independent".
func (t *IndependenceTester) Test(x, y core.VariableKey, conditioning []core.VariableKey) TestOutcome {
	xi, okX := t.index[x]
	yi, okY := t.index[y]
	if !okX || !okY {
		return TestOutcome{Computed: false}
	}
	if t.n < len(conditioning)+4 {
		return TestOutcome{Computed: false}
	}

	if len(conditioning) == 0 {
		r := t.pairCorr(xi, yi)
		return TestOutcome{
			PValue:      t.dist.FisherZPValue(r, t.n, 0),
			Correlation: r,
			Computed:    true,
		}
	}

	r, ok := t.partialCorrelation(xi, yi, conditioning)
	if !ok {
		return TestOutcome{Computed: false}
	}
	return TestOutcome{
		PValue:      t.dist.FisherZPValue(r, t.n, len(conditioning)),
		Correlation: r,
		Computed:    true,
	}
}

// partialCorrelation inverts the correlation submatrix over {x, y} ∪ S and
// reads the partial correlation off the precision matrix.
func (t *IndependenceTester) partialCorrelation(xi, yi int, conditioning []core.VariableKey) (float64, bool) {
	idx := make([]int, 0, len(conditioning)+2)
	idx = append(idx, xi, yi)
	for _, c := range conditioning {
		ci, ok := t.index[c]
		if !ok {
			return 0, false
		}
		idx = append(idx, ci)
	}

	k := len(idx)
	sub := mat.NewSymDense(k, nil)
	for a := 0; a < k; a++ {
		for b := a; b < k; b++ {
			sub.SetSym(a, b, t.pairCorr(idx[a], idx[b]))
		}
	}

	var precision mat.Dense
	if err := precision.Inverse(sub); err != nil {
		return 0, false
	}

	pxx := precision.At(0, 0)
	pyy := precision.At(1, 1)
	pxy := precision.At(0, 1)
	denom := math.Sqrt(pxx * pyy)
	if denom == 0 || math.IsNaN(denom) {
		return 0, false
	}

	r := -pxy / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}

// SampleSize returns the number of rows the tester was built over
func (t *IndependenceTester) SampleSize() int {
	return t.n
}
