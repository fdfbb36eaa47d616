package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"inpcalc/internal/dataprocessing"
)

// CSVWriter exports reshaped tables as CSV, the layout the template's data
// sheet is named after
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With("component", "csv_writer")}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix    bool // Add UTF-8 BOM for Excel compatibility
	LeadingBlank bool // Start with an empty line like the data sheet does
}

// WriteTable writes t to filePath, creating parent directories
func (w *CSVWriter) WriteTable(filePath string, t *dataprocessing.Table, opts WriteOptions) error {
	if t == nil {
		return fmt.Errorf("write %s: nil table", filePath)
	}

	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", t.Len()))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := w.Write(file, t, opts); err != nil {
		file.Close()
		os.Remove(filePath)
		return err
	}
	return file.Close()
}

// Write encodes t to out
func (w *CSVWriter) Write(out io.Writer, t *dataprocessing.Table, opts WriteOptions) error {
	if opts.BOMPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)

	if opts.LeadingBlank {
		if err := writer.Write(make([]string, len(t.Columns))); err != nil {
			return fmt.Errorf("failed to write leading row: %w", err)
		}
	}
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range t.Rows {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
