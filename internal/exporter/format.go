package exporter

import (
	"math"
	"strconv"
	"time"
)

// leadingTextColumns is the number of leading data columns (date, time)
// written as text even when they look numeric
const leadingTextColumns = 2

// cellValue converts a table cell to the value stored in the workbook.
// Numeric text becomes a number; empty cells are left unset.
func cellValue(s string) interface{} {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return s
	}
	return f
}

// rowValues converts one table row for the stream writer
func rowValues(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, cell := range row {
		if i < leadingTextColumns {
			out[i] = cell
			continue
		}
		out[i] = cellValue(cell)
	}
	return out
}

// FormatValue renders a metadata value the way it reads in the report
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.DateTime)
	case interface{ String() string }:
		return val.String()
	default:
		return ""
	}
}
