package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goinsight/domain/core"
)

func TestNewProcessedData(t *testing.T) {
	data, err := NewProcessedData(
		[]core.VariableKey{"a", "b"},
		map[core.VariableKey][]float64{
			"a": {1, 2, 3},
			"b": {4, 5, 6},
		},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, data.RowCount())
	assert.Equal(t, 2, data.ColumnCount())
	assert.NotEmpty(t, data.Fingerprint)

	col, err := data.GetColumnData("b")
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6}, col)

	_, err = data.GetColumnData("missing")
	assert.Error(t, err)
}

func TestNewProcessedDataRejectsRaggedColumns(t *testing.T) {
	_, err := NewProcessedData(
		[]core.VariableKey{"a", "b"},
		map[core.VariableKey][]float64{
			"a": {1, 2, 3},
			"b": {4, 5},
		},
	)
	require.Error(t, err)
	assert.True(t, core.IsDataShapeError(err))
}

func TestEmptyDataIsValid(t *testing.T) {
	data, err := NewProcessedData(
		[]core.VariableKey{"a"},
		map[core.VariableKey][]float64{"a": nil},
	)
	require.NoError(t, err)
	assert.True(t, data.IsEmpty())
	assert.NoError(t, data.Validate())
}

func TestValidateRejectsTimestampMismatch(t *testing.T) {
	data, err := NewProcessedData(
		[]core.VariableKey{"a"},
		map[core.VariableKey][]float64{"a": {1, 2, 3}},
	)
	require.NoError(t, err)

	data.Timestamps = []core.Timestamp{core.Now()}
	err = data.Validate()
	require.Error(t, err)
	assert.True(t, core.IsDataShapeError(err))
}

func TestFingerprintIsDeterministic(t *testing.T) {
	build := func() *ProcessedData {
		d, err := NewProcessedData(
			[]core.VariableKey{"b", "a"},
			map[core.VariableKey][]float64{
				"a": {1.5, 2.5},
				"b": {3.5, 4.5},
			},
		)
		require.NoError(t, err)
		return d
	}

	assert.Equal(t, build().Fingerprint, build().Fingerprint)
}

func TestFingerprintChangesWithData(t *testing.T) {
	first, err := NewProcessedData(
		[]core.VariableKey{"a"},
		map[core.VariableKey][]float64{"a": {1, 2, 3}},
	)
	require.NoError(t, err)

	second, err := NewProcessedData(
		[]core.VariableKey{"a"},
		map[core.VariableKey][]float64{"a": {1, 2, 4}},
	)
	require.NoError(t, err)

	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)
}
