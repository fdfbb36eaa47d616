package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"

	apperrors "inpcalc/internal/errors"
	"inpcalc/internal/exporter"
	"inpcalc/pkg/contracts/domain"
)

// metadataTimestampLayout is how workbook date serials are handed to the
// sample parser
const metadataTimestampLayout = "20060102 150405"

// LoadMetadataFile reads a sample's metadata from a flat YAML mapping
func LoadMetadataFile(path string) (*domain.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInvalidMetadata, "cannot read metadata file", err).
			WithContext("path", path)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.New(apperrors.KindInvalidMetadata, "metadata file is not a YAML mapping", err).
			WithContext("path", path)
	}

	fields := make(map[string]string, len(doc))
	for key, value := range doc {
		switch value.(type) {
		case map[interface{}]interface{}, []interface{}:
			return nil, apperrors.InvalidMetadata(key, value, "nested values are not allowed")
		}
		fields[key] = exporter.FormatValue(value)
	}
	return domain.SampleFromFields(fields)
}

// LoadMetadataRow reads a sample's metadata from one row of a workbook
// whose first row holds the field names. row is the worksheet row number.
func LoadMetadataRow(path, sheet string, row int) (*domain.Sample, error) {
	if row < 2 {
		return nil, apperrors.InvalidMetadata("row", row, "data rows start at 2")
	}

	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.New(apperrors.KindInvalidMetadata, "cannot open metadata workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInvalidMetadata, fmt.Sprintf("cannot read sheet %q", sheet), err).
			WithContext("path", path)
	}
	if len(rows) < row {
		return nil, apperrors.InvalidMetadata("row", row,
			fmt.Sprintf("sheet %q has %d rows", sheet, len(rows)))
	}

	header, values := rows[0], rows[row-1]
	fields := make(map[string]string, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		value := ""
		if i < len(values) {
			value = values[i]
		}
		fields[name] = workbookValue(name, value)
	}
	return domain.SampleFromFields(fields)
}

// workbookValue turns a date serial in a date column into a timestamp
func workbookValue(name, value string) string {
	canonical, _ := domain.NormalizeFieldName(name)
	if canonical != "collection_date" && canonical != "analysis_date" {
		return value
	}
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial < 1 || serial > 2958465 {
		return value
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return value
	}
	return t.Round(time.Second).Format(metadataTimestampLayout)
}
