package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goinsight/domain/core"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSVWithTimestamps(t *testing.T) {
	path := writeTempCSV(t, `date,Request Count,error_rate
2026-01-01,100,0.01
2026-01-02,110,0.02
2026-01-03,95,0.015
`)

	data, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	assert.Equal(t, 3, data.RowCount())
	assert.Equal(t, []core.VariableKey{"request_count", "error_rate"}, data.Matrix.VariableKeys)
	require.Len(t, data.Timestamps, 3)
	assert.Equal(t, "2026-01-01", data.Timestamps[0].Time().Format("2006-01-02"))

	col, err := data.GetColumnData("request_count")
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 110, 95}, col)
}

func TestReadCSVSkipsNonNumericColumns(t *testing.T) {
	path := writeTempCSV(t, `region,value
east,1.5
west,2.5
`)

	data, err := NewDataReader(path).ReadData()
	require.NoError(t, err)
	assert.Equal(t, []core.VariableKey{"value"}, data.Matrix.VariableKeys)
}

func TestReadCSVEmptyCellsRepeatPrevious(t *testing.T) {
	path := writeTempCSV(t, `idx,value
1,1.0
2,
3,3.0
`)

	data, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	col, err := data.GetColumnData("value")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 1.0, 3.0}, col)
}

func TestReadRejectsHeaderOnlyFile(t *testing.T) {
	path := writeTempCSV(t, "a,b\n")

	_, err := NewDataReader(path).ReadData()
	assert.Error(t, err)
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewDataReader("/nonexistent/data.xlsx").ReadData()
	assert.Error(t, err)
}
