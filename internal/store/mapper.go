package store

import (
	"fmt"
	"strconv"
)

// ToRecords converts raw sheet rows into records. The first row is treated
// as the header; an empty input yields an empty slice. Data rows shorter
// than the header leave the trailing columns absent from the record.
func ToRecords(rows [][]interface{}) []Record {
	if len(rows) == 0 {
		return []Record{}
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		record := Record{Values: make(map[string]interface{})}

		for j := 0; j < len(row) && j < len(header); j++ {
			col := columnName(header[j])
			if col == "" || row[j] == nil {
				continue
			}
			record.Values[col] = FromCellValue(row[j])
		}

		records = append(records, record)
	}

	return records
}

// ColumnIndex locates a column in the header row, returning -1 when the
// column does not exist. Callers decide whether a missing column is fatal;
// a sheet without an id column is a schema error.
func ColumnIndex(header []interface{}, name string) int {
	for i, cell := range header {
		if columnName(cell) == name {
			return i
		}
	}
	return -1
}

// columnName normalizes a header cell to a column name
func columnName(cell interface{}) string {
	if cell == nil {
		return ""
	}
	if s, ok := cell.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", cell)
}

// FromCellValue converts a raw spreadsheet cell value to a Go type. Cells
// arrive as strings or float64 depending on the backend; numbers and
// booleans are recognized so typed accessors behave the same either way.
func FromCellValue(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
		if val == "true" || val == "TRUE" {
			return true
		}
		if val == "false" || val == "FALSE" {
			return false
		}
		return val
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
		return val
	case int:
		return int64(val)
	case bool, int64:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ToCellValue converts a Go value to a spreadsheet cell value
func ToCellValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return fmt.Sprintf("%g", val)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", val)
	}
}
