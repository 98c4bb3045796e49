package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
)

// DataReader loads tabular Excel or CSV files into ProcessedData. The
// first row is the header; a column named "timestamp" or "date" becomes
// the observation timestamps, every other parseable-numeric column
// becomes a variable.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData loads the file into ProcessedData
func (r *DataReader) ReadData() (*dataset.ProcessedData, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}
	return buildProcessedData(rows)
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

// buildProcessedData splits the sheet into a timestamp column and
// numeric variable columns. Columns that never parse as numbers are
// skipped.
func buildProcessedData(rows [][]string) (*dataset.ProcessedData, error) {
	header := rows[0]
	data := rows[1:]

	timestampCol := -1
	for i, name := range header {
		lower := strings.ToLower(strings.TrimSpace(name))
		if lower == "timestamp" || lower == "date" || lower == "time" {
			timestampCol = i
			break
		}
	}

	var keys []core.VariableKey
	columns := make(map[core.VariableKey][]float64)
	for i, name := range header {
		if i == timestampCol {
			continue
		}
		key := core.VariableKey(normalizeKey(name))
		if key == "" {
			continue
		}
		col, ok := numericColumn(data, i)
		if !ok {
			continue
		}
		keys = append(keys, key)
		columns[key] = col
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no numeric columns found")
	}

	pd, err := dataset.NewProcessedData(keys, columns)
	if err != nil {
		return nil, err
	}

	if timestampCol >= 0 {
		timestamps, ok := timestampColumn(data, timestampCol)
		if ok {
			pd.Timestamps = timestamps
		}
	}
	return pd, nil
}

func normalizeKey(name string) string {
	key := strings.TrimSpace(strings.ToLower(name))
	key = strings.ReplaceAll(key, " ", "_")
	return key
}

// numericColumn extracts column i, requiring every non-empty cell to
// parse; empty cells repeat the previous value.
func numericColumn(data [][]string, i int) ([]float64, bool) {
	col := make([]float64, 0, len(data))
	last := 0.0
	parsed := 0
	for _, row := range data {
		cell := ""
		if i < len(row) {
			cell = strings.TrimSpace(row[i])
		}
		if cell == "" {
			col = append(col, last)
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
		if err != nil {
			return nil, false
		}
		col = append(col, v)
		last = v
		parsed++
	}
	return col, parsed > 0
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

func timestampColumn(data [][]string, i int) ([]core.Timestamp, bool) {
	out := make([]core.Timestamp, 0, len(data))
	for _, row := range data {
		cell := ""
		if i < len(row) {
			cell = strings.TrimSpace(row[i])
		}
		t, ok := parseTimestamp(cell)
		if !ok {
			return nil, false
		}
		out = append(out, core.NewTimestamp(t))
	}
	return out, true
}

func parseTimestamp(cell string) (time.Time, bool) {
	if cell == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, true
		}
	}
	// Excel serial dates count days from 1899-12-30.
	if serial, err := strconv.ParseFloat(cell, 64); err == nil && serial > 0 {
		base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		return base.Add(time.Duration(serial * 24 * float64(time.Hour))), true
	}
	return time.Time{}, false
}
