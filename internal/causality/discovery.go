package causality

import (
	"context"
	"math"
	"sync"

	"golang.org/x/sync/semaphore"

	"goinsight/domain/causal"
	"goinsight/domain/core"
	"goinsight/domain/dataset"
	internal "goinsight/internal"
	"goinsight/internal/config"
)

// Discovery implements constraint-based causal structure learning in the
// PC-algorithm family: skeleton pruning by conditional-independence testing,
// v-structure orientation, orientation propagation, and a score check.
type Discovery struct {
	cfg config.CausalityConfig
	// parallelism bounds concurrent pair tests within one level; 0 = sequential
	parallelism int
	logger      *internal.Logger
}

// NewDiscovery creates a causal discovery engine
func NewDiscovery(cfg config.CausalityConfig, parallelism int) *Discovery {
	return &Discovery{
		cfg:         cfg,
		parallelism: parallelism,
		logger:      internal.DefaultLogger.WithScope("causality"),
	}
}

// LearnStructure runs the full four-stage discovery and returns the graph.
// Empty data yields an empty graph, not an error.
func (d *Discovery) LearnStructure(ctx context.Context, data *dataset.ProcessedData) (*causal.Graph, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	graph := causal.NewCompleteGraph(data.Matrix.VariableKeys)
	if data.ColumnCount() < 2 || data.RowCount() < 4 {
		// Nothing testable: drop all edges, leave an empty structure
		for _, e := range graph.Edges() {
			graph.RemoveEdge(e.X, e.Y, nil)
		}
		return graph, nil
	}

	tester := NewIndependenceTester(data)

	if err := d.learnSkeleton(ctx, graph, tester); err != nil {
		return nil, err
	}
	d.recordEdgeStats(graph, tester)
	d.orientVStructures(graph)
	d.propagateOrientations(graph)
	d.validateWithScore(graph, data)

	d.logger.Debug("causal discovery finished: %d variables, %d edges",
		len(graph.Variables), graph.EdgeCount())
	return graph, nil
}

// removal is a skeleton pruning decision collected during one level
type removal struct {
	x, y   core.VariableKey
	sepset []core.VariableKey
}

// learnSkeleton prunes the complete graph level by level. Within a level all
// surviving pairs are tested against a snapshot of the adjacency, so parallel
// execution cannot change which sets get tested; removals are applied in
// deterministic pair order after the level completes. Removal is monotone.
func (d *Discovery) learnSkeleton(ctx context.Context, graph *causal.Graph, tester *IndependenceTester) error {
	maxLevel := len(graph.Variables) - 2
	if maxLevel > d.cfg.MaxConditioningSetSize {
		// Bounded search degrades gracefully: the skeleton keeps more edges
		// than a full search would.
		maxLevel = d.cfg.MaxConditioningSetSize
	}

	for level := 0; level <= maxLevel; level++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		edges := graph.Edges()
		if len(edges) == 0 {
			return nil
		}

		removals := make([]*removal, len(edges))
		if d.parallelism > 1 {
			sem := semaphore.NewWeighted(int64(d.parallelism))
			var wg sync.WaitGroup
			for i, e := range edges {
				if err := sem.Acquire(ctx, 1); err != nil {
					return err
				}
				wg.Add(1)
				go func(idx int, x, y core.VariableKey) {
					defer sem.Release(1)
					defer wg.Done()
					removals[idx] = d.testPair(graph, tester, x, y, level)
				}(i, e.X, e.Y)
			}
			wg.Wait()
		} else {
			for i, e := range edges {
				removals[i] = d.testPair(graph, tester, e.X, e.Y, level)
			}
		}

		removed := 0
		for _, r := range removals {
			if r != nil {
				graph.RemoveEdge(r.x, r.y, r.sepset)
				removed++
			}
		}
		d.logger.Trace("skeleton level %d: removed %d of %d edges", level, removed, len(edges))
	}
	return nil
}

// testPair enumerates conditioning sets of the given size from the other
// variables, in deterministic order, and returns the first separating set.
// An uncomputable test keeps the edge (conservative).
func (d *Discovery) testPair(graph *causal.Graph, tester *IndependenceTester, x, y core.VariableKey, level int) *removal {
	others := make([]core.VariableKey, 0, len(graph.Variables)-2)
	for _, v := range graph.Variables {
		if v != x && v != y {
			others = append(others, v)
		}
	}
	if len(others) < level {
		return nil
	}

	var found *removal
	forEachSubset(others, level, func(set []core.VariableKey) bool {
		outcome := tester.Test(x, y, set)
		if !outcome.Computed {
			return true // keep scanning; never remove on an uncomputable test
		}
		if outcome.PValue > d.cfg.Alpha {
			witness := make([]core.VariableKey, len(set))
			copy(witness, set)
			found = &removal{x: x, y: y, sepset: witness}
			return false // stop at the first witnessing set
		}
		return true
	})
	return found
}

// forEachSubset visits all size-k subsets in lexical index order. The visit
// callback returns false to stop enumeration. The passed slice is reused;
// visitors must copy if they retain it.
func forEachSubset(items []core.VariableKey, k int, visit func([]core.VariableKey) bool) {
	if k == 0 {
		visit(nil)
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	buf := make([]core.VariableKey, k)
	for {
		for i, at := range idx {
			buf[i] = items[at]
		}
		if !visit(buf) {
			return
		}
		// Advance the combination
		i := k - 1
		for i >= 0 && idx[i] == len(items)-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// recordEdgeStats annotates surviving edges with marginal strength and significance
func (d *Discovery) recordEdgeStats(graph *causal.Graph, tester *IndependenceTester) {
	for _, e := range graph.Edges() {
		outcome := tester.Test(e.X, e.Y, nil)
		if !outcome.Computed {
			continue
		}
		_ = graph.SetEdgeStats(e.X, e.Y, math.Abs(outcome.Correlation), outcome.PValue)
	}
}

// orientVStructures orients X→Z←Y for every unshielded triple where Z is not
// in the separating set of X and Y. This is the only rule permitted to
// introduce orientation directly from independence evidence.
func (d *Discovery) orientVStructures(graph *causal.Graph) {
	for _, z := range graph.Variables {
		neighbors := graph.Neighbors(z)
		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				x, y := neighbors[i], neighbors[j]
				if graph.Adjacent(x, y) {
					continue // shielded
				}
				sepset, ok := graph.SeparationSet(x, y)
				if !ok {
					continue
				}
				if containsVariable(sepset, z) {
					continue
				}
				// Collider: both arrows point at z
				if err := graph.Orient(x, z); err != nil {
					continue
				}
				if err := graph.Orient(y, z); err != nil {
					continue
				}
				d.logger.Trace("v-structure %s -> %s <- %s", x, z, y)
			}
		}
	}
}

// propagateOrientations applies Meek-style rules until a fixpoint: avoid new
// v-structures and avoid directed cycles, without further independence tests.
func (d *Discovery) propagateOrientations(graph *causal.Graph) {
	for changed := true; changed; {
		changed = false
		for _, b := range graph.Variables {
			for _, c := range graph.Variables {
				if b == c || !graph.Undirected(b, c) {
					continue
				}

				// Rule 1: a→b, b-c, a and c non-adjacent ⇒ b→c
				// (orienting c→b would create a new v-structure at b)
				for _, a := range graph.Variables {
					if a == b || a == c {
						continue
					}
					if graph.IsOriented(a, b) && !graph.Adjacent(a, c) {
						if graph.Orient(b, c) == nil {
							changed = true
						}
						break
					}
				}
				if !graph.Undirected(b, c) {
					continue
				}

				// Rule 2: a directed path b⇒c already exists ⇒ b→c
				// (orienting c→b would close a cycle)
				if graph.HasDirectedPath(b, c) {
					if graph.Orient(b, c) == nil {
						changed = true
					}
				}
			}
		}
	}
}

// validateWithScore confirms the graph against local alternatives: every
// oriented edge must score at least as well as its reversal or removal.
// Locally inferior orientations fall back to undetermined rather than flip,
// so the check only ever weakens claims.
func (d *Discovery) validateWithScore(graph *causal.Graph, data *dataset.ProcessedData) {
	scorer := newBICScorer(data)
	for _, e := range graph.Edges() {
		if e.Direction == causal.DirectionUndetermined {
			continue
		}
		cause, effect := e.Cause(), e.Effect()
		current := scorer.edgeScore(graph, cause, effect)
		reversed := scorer.edgeScore(graph, effect, cause)
		removed := scorer.removedScore(graph, cause, effect)

		if reversed > current || removed > current {
			if err := d.demoteEdge(graph, e.X, e.Y); err == nil {
				d.logger.Debug("score check demoted %s-%s to undetermined", e.X, e.Y)
			}
		}
	}
}

// demoteEdge resets an oriented edge to undetermined while keeping its stats
func (d *Discovery) demoteEdge(graph *causal.Graph, x, y core.VariableKey) error {
	e, ok := graph.GetEdge(x, y)
	if !ok {
		return nil
	}
	e.Direction = causal.DirectionUndetermined
	return nil
}

func containsVariable(set []core.VariableKey, v core.VariableKey) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
