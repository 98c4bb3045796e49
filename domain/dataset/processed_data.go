package dataset

import (
	"fmt"

	"goinsight/domain/core"
)

// ProcessedData is the canonical input object for insight extraction.
// It is produced by the upstream pipeline and treated as immutable here.
type ProcessedData struct {
	// Core observation data
	Matrix     Matrix
	ColumnMeta []ColumnMeta

	// Optional per-row timestamps (enables temporal analysis when present)
	Timestamps []core.Timestamp

	// Upstream context
	Segments     []Segment
	Concepts     []ConceptRef
	SeedPatterns []string
	Metadata     map[string]interface{}

	// Fingerprint for replayability
	Fingerprint core.DataFingerprint
	CreatedAt   core.Timestamp
}

// Matrix represents dense numerical data ready for statistical analysis
type Matrix struct {
	Data         [][]float64        // rows=samples, cols=variables
	VariableKeys []core.VariableKey // column variable keys
}

// ColumnMeta contains metadata for each matrix column
type ColumnMeta struct {
	VariableKey     core.VariableKey
	StatisticalType StatisticalType
	Unit            string
}

// Segment is a reference to an upstream text/observation segment
type Segment struct {
	ID       core.SegmentID
	Text     string
	Concepts []core.ConceptID
}

// ConceptRef is a reference into the upstream concept graph
type ConceptRef struct {
	ID       core.ConceptID
	Name     string
	Related  []core.ConceptID
	Weight   float64
	Category string
}

// StatisticalType defines variable types for analysis
type StatisticalType string

const (
	TypeNumeric     StatisticalType = "numeric"
	TypeCategorical StatisticalType = "categorical"
	TypeBinary      StatisticalType = "binary"
	TypeTimestamp   StatisticalType = "timestamp"
	TypeUnknown     StatisticalType = "unknown"
)

// RowCount returns the number of samples
func (d *ProcessedData) RowCount() int {
	return len(d.Matrix.Data)
}

// ColumnCount returns the number of variables
func (d *ProcessedData) ColumnCount() int {
	return len(d.Matrix.VariableKeys)
}

// IsEmpty reports whether the data carries no observations at all.
// Empty is a valid input: analysis over it yields empty results, not an error.
func (d *ProcessedData) IsEmpty() bool {
	return d.RowCount() == 0 && len(d.Segments) == 0
}

// GetColumnData extracts one variable's column as a slice
func (d *ProcessedData) GetColumnData(key core.VariableKey) ([]float64, error) {
	for j, k := range d.Matrix.VariableKeys {
		if k == key {
			col := make([]float64, len(d.Matrix.Data))
			for i, row := range d.Matrix.Data {
				col[i] = row[j]
			}
			return col, nil
		}
	}
	return nil, fmt.Errorf("variable %s not found", key)
}

// ColumnAt extracts the column at index j
func (d *ProcessedData) ColumnAt(j int) []float64 {
	col := make([]float64, len(d.Matrix.Data))
	for i, row := range d.Matrix.Data {
		col[i] = row[j]
	}
	return col
}

// Validate checks structural consistency. A shape violation is fatal to the
// pass; an empty dataset is explicitly not a violation.
func (d *ProcessedData) Validate() error {
	if len(d.ColumnMeta) != 0 && len(d.ColumnMeta) != len(d.Matrix.VariableKeys) {
		return core.NewDataShapeError(fmt.Sprintf(
			"column meta count %d does not match variable count %d",
			len(d.ColumnMeta), len(d.Matrix.VariableKeys)))
	}
	for i, row := range d.Matrix.Data {
		if len(row) != len(d.Matrix.VariableKeys) {
			return core.NewDataShapeError(fmt.Sprintf(
				"row %d has %d values, expected %d", i, len(row), len(d.Matrix.VariableKeys)))
		}
	}
	if len(d.Timestamps) != 0 && len(d.Timestamps) != len(d.Matrix.Data) {
		return core.NewDataShapeError(fmt.Sprintf(
			"timestamp count %d does not match row count %d",
			len(d.Timestamps), len(d.Matrix.Data)))
	}
	seen := make(map[core.VariableKey]bool, len(d.Matrix.VariableKeys))
	for _, k := range d.Matrix.VariableKeys {
		if k == "" {
			return core.NewDataShapeError("empty variable key")
		}
		if seen[k] {
			return core.NewDataShapeError(fmt.Sprintf("duplicate variable key %s", k))
		}
		seen[k] = true
	}
	return nil
}

// NewProcessedData builds a ProcessedData from columns keyed by variable,
// computing the fingerprint. Column order follows the keys slice.
func NewProcessedData(keys []core.VariableKey, columns map[core.VariableKey][]float64) (*ProcessedData, error) {
	rows := 0
	byName := make(map[string][]float64, len(columns))
	for _, k := range keys {
		col, ok := columns[k]
		if !ok {
			return nil, core.NewDataShapeError(fmt.Sprintf("missing column for variable %s", k))
		}
		if rows == 0 {
			rows = len(col)
		} else if len(col) != rows {
			return nil, core.NewDataShapeError(fmt.Sprintf(
				"column %s has %d values, expected %d", k, len(col), rows))
		}
		byName[string(k)] = col
	}

	data := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, len(keys))
		for j, k := range keys {
			row[j] = columns[k][i]
		}
		data[i] = row
	}

	meta := make([]ColumnMeta, len(keys))
	for j, k := range keys {
		meta[j] = ColumnMeta{VariableKey: k, StatisticalType: TypeNumeric}
	}

	pd := &ProcessedData{
		Matrix:      Matrix{Data: data, VariableKeys: keys},
		ColumnMeta:  meta,
		Metadata:    map[string]interface{}{},
		Fingerprint: core.ComputeDataFingerprint(byName),
		CreatedAt:   core.Now(),
	}
	if err := pd.Validate(); err != nil {
		return nil, err
	}
	return pd, nil
}
