package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"inpcalc/internal/blanks"
	"inpcalc/internal/dataprocessing"
	apperrors "inpcalc/internal/errors"
	"inpcalc/internal/files"
	"inpcalc/internal/validation"
	"inpcalc/pkg/contracts/domain"
)

// Layout describes where a report's parts go inside the template workbook
type Layout struct {
	DataSheet           string
	ResultSheets        []string
	MetadataKeyColumn   string
	MetadataValueColumn string
	MetadataStartRow    int // 1-based
	BlankColumn         string
	BlankStartRow       int // 1-based
	RowKeyColumn        string
}

// EmitRequest is everything one report is built from
type EmitRequest struct {
	Key      files.Key
	Table    *dataprocessing.Table
	Metadata domain.OrderedMetadata
	Blanks   *blanks.Reference
}

// ReportWriter fills a copy of the analysis template and persists it as
// the calculated report. The template file itself is never written.
type ReportWriter struct {
	templatePath string
	layout       Layout
	naming       files.Naming
	manager      *files.Manager
	validator    *validation.FileValidator
	logger       *slog.Logger
}

// NewReportWriter creates a report writer for the given template
func NewReportWriter(templatePath string, layout Layout, naming files.Naming, logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{
		templatePath: templatePath,
		layout:       layout,
		naming:       naming,
		manager:      files.NewManager(logger),
		validator:    validation.NewFileValidator(logger),
		logger:       logger.With("component", "report_writer"),
	}
}

// ReportPath returns where Emit will write the report for key
func (w *ReportWriter) ReportPath(key files.Key) string {
	return w.naming.ReportPath(key)
}

// Emit writes the report for req and returns its path.
//
// The workbook is assembled in memory first; schema problems surface as
// SchemaMismatch or BlankSourceUnavailable before anything touches disk.
// Persistence goes through a locked temp file renamed into place, so a
// failed run never leaves a partial report behind.
func (w *ReportWriter) Emit(ctx context.Context, req EmitRequest) (string, error) {
	dst := w.naming.ReportPath(req.Key)

	if req.Table == nil {
		return "", fmt.Errorf("emit %s: nil table", dst)
	}

	if err := w.validator.ValidateExcelFile(w.templatePath); err != nil {
		return "", apperrors.WriteFailure(dst, err).WithContext("template", w.templatePath)
	}
	book, err := excelize.OpenFile(w.templatePath)
	if err != nil {
		return "", apperrors.WriteFailure(dst, fmt.Errorf("open template: %w", err)).
			WithContext("template", w.templatePath)
	}
	defer book.Close()

	if err := w.writeDataSheet(book, req.Table); err != nil {
		return "", apperrors.WriteFailure(dst, err)
	}

	for _, sheet := range w.layout.ResultSheets {
		if err := w.fillResultSheet(book, sheet, req); err != nil {
			return "", err
		}
	}

	// Formulas in the result sheets refer to the replaced data sheet
	fullCalc := true
	if err := book.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: &fullCalc}); err != nil {
		w.logger.Warn("Failed to request recalculation on load", slog.String("error", err.Error()))
	}

	if err := w.persist(ctx, book, dst); err != nil {
		return "", err
	}

	w.logger.Info("Report written",
		slog.String("path", dst),
		slog.Int("rows", req.Table.Len()),
		slog.Int("metadata_entries", len(req.Metadata)),
		slog.Int("blank_values", req.Blanks.Total()))
	return dst, nil
}

// writeDataSheet replaces the data sheet with: a blank row, the header
// row, then one row per record
func (w *ReportWriter) writeDataSheet(book *excelize.File, table *dataprocessing.Table) error {
	sheet := w.layout.DataSheet

	idx, err := book.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("find sheet %q: %w", sheet, err)
	}
	if idx >= 0 {
		if err := book.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("delete sheet %q: %w", sheet, err)
		}
	}
	if _, err := book.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", sheet, err)
	}

	sw, err := book.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("stream sheet %q: %w", sheet, err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A2", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, rowValues(row)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	return sw.Flush()
}

// fillResultSheet writes the metadata pairs and the sheet's blank series
func (w *ReportWriter) fillResultSheet(book *excelize.File, sheet string, req EmitRequest) error {
	idx, err := book.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return apperrors.New(apperrors.KindSchemaMismatch,
			fmt.Sprintf("template has no result sheet %q", sheet), err).
			WithContext("sheet", sheet).
			WithContext("template", w.templatePath)
	}

	for i, pair := range req.Metadata {
		row := w.layout.MetadataStartRow + i
		if err := book.SetCellValue(sheet, cellName(w.layout.MetadataKeyColumn, row), pair.Key); err != nil {
			return apperrors.WriteFailure(w.naming.ReportPath(req.Key), err)
		}
		if err := book.SetCellValue(sheet, cellName(w.layout.MetadataValueColumn, row), pair.Value); err != nil {
			return apperrors.WriteFailure(w.naming.ReportPath(req.Key), err)
		}
	}

	series, ok := req.Blanks.Lookup(sheet)
	if !ok {
		source := ""
		if req.Blanks != nil {
			source = req.Blanks.Source
		}
		return apperrors.BlankSourceUnavailable(source, sheet, fmt.Errorf("no blank series loaded for sheet"))
	}

	declared, err := w.declaredRows(book, sheet)
	if err != nil {
		return apperrors.WriteFailure(w.naming.ReportPath(req.Key), err)
	}
	if declared > 0 && declared != len(series.Values) {
		return apperrors.SchemaMismatch(fmt.Sprintf("blank rows in sheet %q", sheet), declared, len(series.Values)).
			WithContext("sheet", sheet)
	}

	for i, v := range series.Values {
		if err := book.SetCellValue(sheet, cellName(w.layout.BlankColumn, w.layout.BlankStartRow+i), v); err != nil {
			return apperrors.WriteFailure(w.naming.ReportPath(req.Key), err)
		}
	}
	return nil
}

// declaredRows counts the contiguous populated cells of the row key column
// from the blank start row down, stopping at the sheet's last used row.
// Zero means the template does not fix the number of result rows.
func (w *ReportWriter) declaredRows(book *excelize.File, sheet string) (int, error) {
	last, err := lastUsedRow(book, sheet)
	if err != nil {
		return 0, err
	}

	n := 0
	for row := w.layout.BlankStartRow; row <= last; row++ {
		cell := cellName(w.layout.RowKeyColumn, row)
		value, err := book.GetCellValue(sheet, cell)
		if err != nil {
			return 0, err
		}
		formula, err := book.GetCellFormula(sheet, cell)
		if err != nil {
			return 0, err
		}
		if value == "" && formula == "" {
			break
		}
		n++
	}
	return n, nil
}

// lastUsedRow returns the number of rows stored for sheet, counting rows
// that hold only formulas
func lastUsedRow(book *excelize.File, sheet string) (int, error) {
	rows, err := book.Rows(sheet)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
	}
	return n, rows.Error()
}

func (w *ReportWriter) persist(ctx context.Context, book *excelize.File, dst string) error {
	dir := filepath.Dir(dst)
	if err := w.manager.EnsureWritableDirectory(dir); err != nil {
		return apperrors.WriteFailure(dst, err)
	}

	unlock, err := w.manager.Lock(ctx, dst)
	if err != nil {
		return apperrors.WriteFailure(dst, err)
	}
	defer unlock()

	tmp, err := w.manager.TempPath(dst)
	if err != nil {
		return apperrors.WriteFailure(dst, err)
	}
	if err := book.SaveAs(tmp); err != nil {
		w.manager.Discard(tmp)
		return apperrors.WriteFailure(dst, fmt.Errorf("save workbook: %w", err))
	}
	if err := w.manager.Commit(tmp, dst); err != nil {
		w.manager.Discard(tmp)
		return apperrors.WriteFailure(dst, err)
	}
	return nil
}

func cellName(column string, row int) string {
	return fmt.Sprintf("%s%d", column, row)
}
