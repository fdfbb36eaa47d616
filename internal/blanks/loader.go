package blanks

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "inpcalc/internal/errors"
	"inpcalc/internal/validation"
)

// Series is the frozen-count column of one blank workbook section
type Series struct {
	Sheet  string
	Values []float64
}

// Reference holds the blank series in configured section order
type Reference struct {
	Source string
	Series []Series
}

// Lookup returns the series loaded for sheet
func (r *Reference) Lookup(sheet string) (Series, bool) {
	if r == nil {
		return Series{}, false
	}
	for _, s := range r.Series {
		if s.Sheet == sheet {
			return s, true
		}
	}
	return Series{}, false
}

// Total returns the number of values across all series
func (r *Reference) Total() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, s := range r.Series {
		n += len(s.Values)
	}
	return n
}

// Options describes where the blank values live in the workbook
type Options struct {
	Sections  []string // sheet names, one series each
	Header    string   // column header of the values, e.g. "N(frozen)"
	HeaderRow int      // 1-based
}

// Loader reads blank correction series from the blank source workbook
type Loader struct {
	opts      Options
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewLoader creates a blank loader
func NewLoader(opts Options, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.HeaderRow < 1 {
		opts.HeaderRow = 1
	}
	return &Loader{
		opts:      opts,
		validator: validation.NewFileValidator(logger),
		logger:    logger.With("component", "blank_loader"),
	}
}

// Load reads every configured section of the workbook at path. Values are
// returned exactly as stored, stopping at the first empty cell of the column.
// A missing workbook, section or column, or a non-numeric value, fails with
// BlankSourceUnavailable.
func (l *Loader) Load(path string) (*Reference, error) {
	if err := l.validator.ValidateExcelFile(path); err != nil {
		return nil, apperrors.BlankSourceUnavailable(path, "", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.BlankSourceUnavailable(path, "", err)
	}
	defer f.Close()

	ref := &Reference{Source: path}
	for _, section := range l.opts.Sections {
		values, err := l.readSection(f, path, section)
		if err != nil {
			return nil, err
		}
		ref.Series = append(ref.Series, Series{Sheet: section, Values: values})

		l.logger.Debug("Blank section loaded",
			slog.String("section", section),
			slog.Int("values", len(values)))
	}

	return ref, nil
}

func (l *Loader) readSection(f *excelize.File, path, section string) ([]float64, error) {
	if idx, err := f.GetSheetIndex(section); err != nil || idx < 0 {
		return nil, apperrors.BlankSourceUnavailable(path, section, fmt.Errorf("section not found"))
	}

	rows, err := f.GetRows(section, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.BlankSourceUnavailable(path, section, err)
	}

	col := -1
	if l.opts.HeaderRow <= len(rows) {
		for i, cell := range rows[l.opts.HeaderRow-1] {
			if strings.TrimSpace(cell) == l.opts.Header {
				col = i
				break
			}
		}
	}
	if col < 0 {
		return nil, apperrors.BlankSourceUnavailable(path, section,
			fmt.Errorf("column %q not found in row %d", l.opts.Header, l.opts.HeaderRow)).
			WithContext("column", l.opts.Header)
	}

	var values []float64
	for r := l.opts.HeaderRow; r < len(rows); r++ {
		row := rows[r]
		if col >= len(row) || strings.TrimSpace(row[col]) == "" {
			break
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+1)
			return nil, apperrors.BlankSourceUnavailable(path, section,
				fmt.Errorf("non-numeric value %q in %s", row[col], cell)).
				WithContext("column", l.opts.Header).
				WithContext("cell", cell)
		}
		values = append(values, v)
	}

	return values, nil
}
