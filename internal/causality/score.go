package causality

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"goinsight/domain/causal"
	"goinsight/domain/core"
	"goinsight/domain/dataset"
)

// bicScorer computes Gaussian BIC scores for local graph neighborhoods.
// Higher is better. Only local comparisons are made; this validates the
// discovered structure rather than searching for a global optimum.
type bicScorer struct {
	columns map[core.VariableKey][]float64
	n       int
}

func newBICScorer(data *dataset.ProcessedData) *bicScorer {
	s := &bicScorer{
		columns: make(map[core.VariableKey][]float64, data.ColumnCount()),
		n:       data.RowCount(),
	}
	for j, key := range data.Matrix.VariableKeys {
		s.columns[key] = data.ColumnAt(j)
	}
	return s
}

// edgeScore scores the effect node with cause included among its parents
func (s *bicScorer) edgeScore(graph *causal.Graph, cause, effect core.VariableKey) float64 {
	parents := s.parentsOf(graph, effect)
	if !containsVariable(parents, cause) {
		parents = append(parents, cause)
	}
	return s.nodeBIC(effect, parents)
}

// removedScore scores the effect node with the cause excluded
func (s *bicScorer) removedScore(graph *causal.Graph, cause, effect core.VariableKey) float64 {
	parents := s.parentsOf(graph, effect)
	kept := parents[:0]
	for _, p := range parents {
		if p != cause {
			kept = append(kept, p)
		}
	}
	return s.nodeBIC(effect, kept)
}

func (s *bicScorer) parentsOf(graph *causal.Graph, node core.VariableKey) []core.VariableKey {
	var parents []core.VariableKey
	for _, v := range graph.Neighbors(node) {
		if graph.IsOriented(v, node) {
			parents = append(parents, v)
		}
	}
	return parents
}

// nodeBIC computes log-likelihood minus complexity for a linear-Gaussian
// node given its parents. Singular designs score -Inf so they never win.
func (s *bicScorer) nodeBIC(node core.VariableKey, parents []core.VariableKey) float64 {
	y, ok := s.columns[node]
	if !ok || s.n < len(parents)+2 {
		return math.Inf(-1)
	}

	rss := s.residualSS(y, parents)
	if rss <= 0 {
		rss = 1e-12
	}

	n := float64(s.n)
	k := float64(len(parents) + 1) // parents plus intercept
	logLik := -n / 2 * (math.Log(2*math.Pi*rss/n) + 1)
	return logLik - k/2*math.Log(n)
}

// residualSS solves the least-squares regression of y on the parents
func (s *bicScorer) residualSS(y []float64, parents []core.VariableKey) float64 {
	cols := len(parents) + 1
	design := mat.NewDense(s.n, cols, nil)
	for i := 0; i < s.n; i++ {
		design.Set(i, 0, 1) // intercept
	}
	for j, p := range parents {
		col := s.columns[p]
		for i := 0; i < s.n; i++ {
			design.Set(i, j+1, col[i])
		}
	}

	target := mat.NewVecDense(s.n, nil)
	for i, v := range y {
		target.SetVec(i, v)
	}

	var coef mat.VecDense
	if err := coef.SolveVec(design, target); err != nil {
		// Singular design: fall back to intercept-only residuals
		m := meanOf(y)
		var rss float64
		for _, v := range y {
			d := v - m
			rss += d * d
		}
		return rss
	}

	var fitted mat.VecDense
	fitted.MulVec(design, &coef)

	var rss float64
	for i := 0; i < s.n; i++ {
		d := y[i] - fitted.AtVec(i)
		rss += d * d
	}
	return rss
}

func meanOf(col []float64) float64 {
	if len(col) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range col {
		sum += v
	}
	return sum / float64(len(col))
}
