// Package dataprocessing turns raw instrument output into the analysis
// template's data layout.
//
// # Components
//
//	1. ParseRaw / ParseRawFile: whitespace-delimited instrument records into a Table
//	2. ReadTemplateColumns: the template data sheet's header row, via excelize
//	3. Reshape: split date/time, drop padding columns, rename to template columns
//
// # Usage
//
//	raw, err := dataprocessing.ParseRawFile(src.Path)
//	if err != nil {
//	    return err
//	}
//	cols, err := dataprocessing.ReadTemplateColumns(templatePath, "data.csv", 2)
//	if err != nil {
//	    return err
//	}
//	shaped, err := dataprocessing.Reshape(raw, cols)
//
// # Data Flow
//
//	raw file → ParseRaw → Table("0".."n") → Reshape → Table(template columns)
//
// # Error Handling
//
// Structural problems (missing date/time pair, column count different from
// the template, empty raw file) are reported as SchemaMismatch errors
// carrying the expected and actual counts.
package dataprocessing
