package dataprocessing

import (
	"fmt"
	"strings"

	apperrors "inpcalc/internal/errors"
)

// ReshapeStats describes what Reshape did to a table
type ReshapeStats struct {
	AlreadyShaped  bool
	Rows           int
	DroppedColumns int
}

// Reshape transforms a raw instrument table into the template's column layout:
//
//  1. a table already carrying the template columns is returned unchanged
//  2. column 0 "<date> <time>" is split; time replaces it and date is prepended
//  3. trailing columns empty in every row are dropped
//  4. columns are renamed positionally to the template names
//
// A column count that differs from the template fails with SchemaMismatch.
// Row count and order are preserved; raw is never modified.
func Reshape(raw *Table, templateColumns []string) (*Table, error) {
	out, _, err := ReshapeWithStats(raw, templateColumns)
	return out, err
}

// ReshapeWithStats is Reshape that also reports what changed
func ReshapeWithStats(raw *Table, templateColumns []string) (*Table, ReshapeStats, error) {
	if raw == nil {
		return nil, ReshapeStats{}, fmt.Errorf("reshape: nil table")
	}
	if len(templateColumns) == 0 {
		return nil, ReshapeStats{}, fmt.Errorf("reshape: template has no columns")
	}

	if raw.HasColumns(templateColumns) {
		return raw, ReshapeStats{AlreadyShaped: true, Rows: raw.Len()}, nil
	}

	split, err := splitDateTime(raw)
	if err != nil {
		return nil, ReshapeStats{}, err
	}

	dropped := dropTrailingEmptyColumns(split)

	if split.Width() != len(templateColumns) {
		return nil, ReshapeStats{}, apperrors.SchemaMismatch("column count", len(templateColumns), split.Width())
	}
	split.Columns = append([]string(nil), templateColumns...)

	return split, ReshapeStats{Rows: split.Len(), DroppedColumns: dropped}, nil
}

// splitDateTime returns a copy of t with column 0 split into date and time
func splitDateTime(t *Table) (*Table, error) {
	out := &Table{
		Columns: PositionalColumns(t.Width() + 1),
		Rows:    make([][]string, len(t.Rows)),
	}

	for i, row := range t.Rows {
		if len(row) == 0 {
			return nil, apperrors.SchemaMismatch(fmt.Sprintf("date/time fields in row %d", i+1), 2, 0)
		}
		parts := strings.Fields(row[0])
		if len(parts) != 2 {
			return nil, apperrors.SchemaMismatch(fmt.Sprintf("date/time fields in row %d", i+1), 2, len(parts))
		}

		next := make([]string, 0, len(row)+1)
		next = append(next, parts[0], parts[1])
		next = append(next, row[1:]...)
		out.Rows[i] = next
	}

	return out, nil
}

// dropTrailingEmptyColumns trims columns that are blank in every row from the
// right of t and returns how many were removed. A table without rows is left alone.
func dropTrailingEmptyColumns(t *Table) int {
	if t.Len() == 0 {
		return 0
	}

	width := t.Width()
	for width > 0 && t.isEmptyColumn(width-1) {
		width--
	}
	dropped := t.Width() - width
	if dropped == 0 {
		return 0
	}

	t.Columns = t.Columns[:width]
	for i, row := range t.Rows {
		if len(row) > width {
			t.Rows[i] = row[:width]
		}
	}
	return dropped
}
