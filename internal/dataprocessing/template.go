package dataprocessing

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadTemplateColumns returns the data sheet header of the analysis template.
// headerRow is 1-based. Trailing blank header cells are not columns.
func ReadTemplateColumns(templatePath, sheet string, headerRow int) ([]string, error) {
	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open template %s: %w", templatePath, err)
	}
	defer f.Close()

	return TemplateColumns(f, sheet, headerRow)
}

// TemplateColumns reads the header row of sheet from an open workbook
func TemplateColumns(f *excelize.File, sheet string, headerRow int) ([]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("template has no sheet %q", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read template sheet %q: %w", sheet, err)
	}
	if headerRow < 1 || headerRow > len(rows) {
		return nil, fmt.Errorf("template sheet %q has no header row %d", sheet, headerRow)
	}

	header := rows[headerRow-1]
	end := len(header)
	for end > 0 && strings.TrimSpace(header[end-1]) == "" {
		end--
	}
	if end == 0 {
		return nil, fmt.Errorf("template sheet %q header row %d is empty", sheet, headerRow)
	}

	return append([]string(nil), header[:end]...), nil
}
