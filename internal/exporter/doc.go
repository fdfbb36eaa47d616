// Package exporter writes calculation results.
//
// ReportWriter is the report emitter: it opens the analysis template,
// replaces the data sheet with the reshaped table, writes the sample
// metadata and blank correction series into every result sheet and saves
// the workbook as <base>_calculated.xlsx under the output root.
//
// Example usage:
//
//	w := exporter.NewReportWriter(paths.TemplateFile, layout, naming, logger)
//	path, err := w.Emit(ctx, exporter.EmitRequest{
//	    Key:      files.KeyFor(sample),
//	    Table:    shaped,
//	    Metadata: sample.MetadataPairs(src.Path),
//	    Blanks:   ref,
//	})
//
// CSVWriter exports a reshaped table as plain CSV for inspection.
package exporter
