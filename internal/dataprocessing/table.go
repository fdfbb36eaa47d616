package dataprocessing

import (
	"strconv"
	"strings"
)

// Table is an ordered set of named columns over string cells.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// PositionalColumns returns the names "0".."n-1" used before a table is reshaped
func PositionalColumns(n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = strconv.Itoa(i)
	}
	return cols
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.Columns)
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the cells of column i in row order
func (t *Table) Column(i int) []string {
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			out[r] = row[i]
		}
	}
	return out
}

// HasColumns reports whether the table's columns equal names, in order
func (t *Table) HasColumns(names []string) bool {
	if len(t.Columns) != len(names) {
		return false
	}
	for i := range names {
		if t.Columns[i] != names[i] {
			return false
		}
	}
	return true
}

// isEmptyColumn reports whether column i is blank in every row
func (t *Table) isEmptyColumn(i int) bool {
	for _, row := range t.Rows {
		if i < len(row) && strings.TrimSpace(row[i]) != "" {
			return false
		}
	}
	return true
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}
