package dataprocessing

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "inpcalc/internal/errors"
)

// maxRawLineBytes bounds a single instrument record
const maxRawLineBytes = 1 << 20

// ParseRawFile reads a raw instrument file. See ParseRaw for the format.
func ParseRawFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.SourceNotFound(path, err)
	}
	defer f.Close()

	table, err := ParseRaw(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse raw file %s: %w", path, err)
	}
	return table, nil
}

// ParseRaw reads whitespace-delimited instrument records with no header.
// The leading "<date> <time>" pair is kept together as column 0. A line
// ending in a delimiter carries an empty trailing padding cell, as the
// instrument writes it. Short rows are padded with empty cells so that every
// row has the table's width; columns are named positionally.
func ParseRaw(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxRawLineBytes)

	var rows [][]string
	width := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, apperrors.SchemaMismatch(
				fmt.Sprintf("leading date/time fields on line %d", lineNo), 2, len(fields))
		}

		row := make([]string, 0, len(fields))
		row = append(row, fields[0]+" "+fields[1])
		row = append(row, fields[2:]...)
		if last := line[len(line)-1]; last == ' ' || last == '\t' {
			row = append(row, "")
		}

		if len(row) > width {
			width = len(row)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read raw data: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.SchemaMismatch("raw data rows (minimum)", 1, 0)
	}

	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}

	return &Table{Columns: PositionalColumns(width), Rows: rows}, nil
}
