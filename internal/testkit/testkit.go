// Package testkit generates seeded synthetic datasets with known
// ground-truth structure, so tests can assert on what the engine should
// find rather than on opaque fixtures.
package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
)

// Generator produces deterministic synthetic data from a seed
type Generator struct {
	rng *rand.Rand
}

// New creates a generator; the same seed always yields the same data
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// LinearPair builds x and a noisy linear function of x. With small
// noise the pair correlates strongly and x plausibly causes y.
func (g *Generator) LinearPair(n int, slope, noise float64) *dataset.ProcessedData {
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = g.rng.NormFloat64() * 2
		y[i] = slope*x[i] + g.rng.NormFloat64()*noise
	}
	return g.build(map[core.VariableKey][]float64{
		"driver_x": x,
		"output_y": y,
	}, []core.VariableKey{"driver_x", "output_y"})
}

// ConfoundedChain builds z driving both x and y, with no direct x-y
// link. Conditioning on z should separate x and y.
func (g *Generator) ConfoundedChain(n int, noise float64) *dataset.ProcessedData {
	z := make([]float64, n)
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		z[i] = g.rng.NormFloat64() * 2
		x[i] = 1.5*z[i] + g.rng.NormFloat64()*noise
		y[i] = -1.2*z[i] + g.rng.NormFloat64()*noise
	}
	return g.build(map[core.VariableKey][]float64{
		"confounder_z": z,
		"effect_x":     x,
		"effect_y":     y,
	}, []core.VariableKey{"confounder_z", "effect_x", "effect_y"})
}

// TrendSeries builds a linear upward series with noise
func (g *Generator) TrendSeries(n int, slope, noise float64) *dataset.ProcessedData {
	col := make([]float64, n)
	for i := 0; i < n; i++ {
		col[i] = slope*float64(i) + g.rng.NormFloat64()*noise
	}
	return g.build(map[core.VariableKey][]float64{"metric_trend": col},
		[]core.VariableKey{"metric_trend"})
}

// SeasonalSeries builds a sinusoid with the given period plus noise
func (g *Generator) SeasonalSeries(n, period int, amplitude, noise float64) *dataset.ProcessedData {
	col := make([]float64, n)
	for i := 0; i < n; i++ {
		col[i] = amplitude*math.Sin(2*math.Pi*float64(i)/float64(period)) + g.rng.NormFloat64()*noise
	}
	return g.build(map[core.VariableKey][]float64{"metric_seasonal": col},
		[]core.VariableKey{"metric_seasonal"})
}

// ChangePointSeries builds a series whose mean jumps at the given row
func (g *Generator) ChangePointSeries(n, changeAt int, before, after, noise float64) *dataset.ProcessedData {
	col := make([]float64, n)
	for i := 0; i < n; i++ {
		level := before
		if i >= changeAt {
			level = after
		}
		col[i] = level + g.rng.NormFloat64()*noise
	}
	return g.build(map[core.VariableKey][]float64{"metric_shift": col},
		[]core.VariableKey{"metric_shift"})
}

// WithOutlier plants one extreme value into the named column
func (g *Generator) WithOutlier(data *dataset.ProcessedData, key core.VariableKey, row int, value float64) *dataset.ProcessedData {
	for j, k := range data.Matrix.VariableKeys {
		if k == key {
			data.Matrix.Data[row][j] = value
		}
	}
	data.Fingerprint = refingerprint(data)
	return data
}

// WithSegments attaches text segments sharing concepts, feeding the
// semantic analyzer.
func (g *Generator) WithSegments(data *dataset.ProcessedData, cooccurring int) *dataset.ProcessedData {
	latency := core.ConceptID("concept-latency")
	errors := core.ConceptID("concept-errors")
	capacity := core.ConceptID("concept-capacity")
	data.Concepts = []dataset.ConceptRef{
		{ID: latency, Name: "latency", Weight: 0.8},
		{ID: errors, Name: "errors", Weight: 0.9},
		{ID: capacity, Name: "capacity", Weight: 0.5},
	}
	for i := 0; i < cooccurring; i++ {
		data.Segments = append(data.Segments, dataset.Segment{
			ID:       core.SegmentID(fmt.Sprintf("seg-%d", i)),
			Text:     "latency spike coincided with elevated error rate",
			Concepts: []core.ConceptID{latency, errors},
		})
	}
	data.Segments = append(data.Segments, dataset.Segment{
		ID:       core.SegmentID("seg-cap"),
		Text:     "capacity headroom unchanged",
		Concepts: []core.ConceptID{capacity},
	})
	return data
}

// Empty builds a dataset with variables but zero rows
func (g *Generator) Empty(keys ...core.VariableKey) *dataset.ProcessedData {
	cols := make(map[core.VariableKey][]float64, len(keys))
	for _, k := range keys {
		cols[k] = nil
	}
	return g.build(cols, keys)
}

// build assembles ProcessedData with daily timestamps ending now
func (g *Generator) build(cols map[core.VariableKey][]float64, keys []core.VariableKey) *dataset.ProcessedData {
	data, err := dataset.NewProcessedData(keys, cols)
	if err != nil {
		panic(fmt.Sprintf("testkit: %v", err))
	}
	n := data.RowCount()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	data.Timestamps = make([]core.Timestamp, n)
	for i := 0; i < n; i++ {
		data.Timestamps[i] = core.NewTimestamp(base.Add(time.Duration(i) * 24 * time.Hour))
	}
	return data
}

func refingerprint(data *dataset.ProcessedData) core.DataFingerprint {
	cols := make(map[string][]float64, len(data.Matrix.VariableKeys))
	for j, k := range data.Matrix.VariableKeys {
		col := make([]float64, len(data.Matrix.Data))
		for i := range data.Matrix.Data {
			col[i] = data.Matrix.Data[i][j]
		}
		cols[string(k)] = col
	}
	return core.ComputeDataFingerprint(cols)
}
