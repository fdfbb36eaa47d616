package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"inpcalc/internal/config"
	"inpcalc/pkg/contracts/domain"
)

// TemplateColumns is the data sheet header written by WriteTemplate
var TemplateColumns = []string{"day", "time", "T(C)", "N(frozen)", "tube"}

// Workspace is a throwaway directory laid out like a calculator base
// directory: raw root, output root, template and blank source at their
// default relative locations
type Workspace struct {
	t    *testing.T
	Root string
}

// NewWorkspace creates an empty workspace under t.TempDir()
func NewWorkspace(t *testing.T) *Workspace {
	t.Helper()
	return &Workspace{t: t, Root: t.TempDir()}
}

// NewStandardWorkspace creates a workspace with a template declaring
// rows result rows and a blank source holding rows values per result sheet
func NewStandardWorkspace(t *testing.T, rows int) *Workspace {
	t.Helper()
	w := NewWorkspace(t)
	w.WriteTemplate(rows)

	values := make([]float64, rows)
	for i := range values {
		values[i] = float64(i) + 0.5
	}
	series := make(map[string][]float64)
	for _, sheet := range config.DefaultResultSheets {
		series[sheet] = values
	}
	w.WriteBlanks(series)
	return w
}

// Path joins rel onto the workspace root
func (w *Workspace) Path(rel string) string {
	return filepath.Join(w.Root, filepath.FromSlash(rel))
}

// RawRoot returns the absolute raw data root
func (w *Workspace) RawRoot() string { return w.Path(config.DefaultRawRoot) }

// OutputRoot returns the absolute report root
func (w *Workspace) OutputRoot() string { return w.Path(config.DefaultOutputRoot) }

// TemplatePath returns the absolute template location
func (w *Workspace) TemplatePath() string { return w.Path(config.DefaultTemplateFile) }

// BlankSource returns the absolute blank workbook location
func (w *Workspace) BlankSource() string { return w.Path(config.DefaultBlankSource) }

// Config returns the default configuration rooted at the workspace
func (w *Workspace) Config() *config.Config {
	cfg := config.Default()
	cfg.Paths.BaseDir = w.Root
	return cfg
}

// WriteTemplate saves an analysis template: a data sheet with the header on
// row 2 and result sheets declaring rows row keys from row 2
func (w *Workspace) WriteTemplate(rows int) string {
	w.t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(TemplateColumns))
	for i, c := range TemplateColumns {
		header[i] = c
	}
	require.NoError(w.t, f.SetSheetName(f.GetSheetName(0), config.DefaultDataSheet))
	require.NoError(w.t, f.SetCellValue(config.DefaultDataSheet, "A1", "instrument export"))
	require.NoError(w.t, f.SetSheetRow(config.DefaultDataSheet, "A2", &header))

	for _, sheet := range config.DefaultResultSheets {
		_, err := f.NewSheet(sheet)
		require.NoError(w.t, err)
		require.NoError(w.t, f.SetCellValue(sheet, "A1", "tube"))
		for i := 0; i < rows; i++ {
			require.NoError(w.t, f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), i+1))
		}
	}

	path := w.TemplatePath()
	require.NoError(w.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(w.t, f.SaveAs(path))
	return path
}

// WriteBlanks saves the blank workbook with one sheet per entry, sheets in
// name order, each holding a "N(frozen)" column
func (w *Workspace) WriteBlanks(series map[string][]float64) string {
	w.t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheets := make([]string, 0, len(series))
	for sheet := range series {
		sheets = append(sheets, sheet)
	}
	sort.Strings(sheets)

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(w.t, f.SetSheetName(f.GetSheetName(0), sheet))
		} else {
			_, err := f.NewSheet(sheet)
			require.NoError(w.t, err)
		}
		require.NoError(w.t, f.SetCellValue(sheet, "A1", "T(C)"))
		require.NoError(w.t, f.SetCellValue(sheet, "B1", config.DefaultBlankHeader))
		for r, v := range series[sheet] {
			require.NoError(w.t, f.SetCellValue(sheet, fmt.Sprintf("A%d", r+2), -float64(r)))
			require.NoError(w.t, f.SetCellValue(sheet, fmt.Sprintf("B%d", r+2), v))
		}
	}

	path := w.BlankSource()
	require.NoError(w.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(w.t, f.SaveAs(path))
	return path
}

// WriteRaw saves rows instrument records as <raw_root>/<type>/<base>.csv.
// Each record carries the template's three value columns and a trailing space.
func (w *Workspace) WriteRaw(sampleType, base string, rows int) string {
	w.t.Helper()

	var b strings.Builder
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "20200420 1200%02d %.1f %d %d \n", i, -1.5-float64(i)/2, 32-i, i%2)
	}

	path := filepath.Join(w.RawRoot(), sampleType, base+"."+config.DefaultRawExtension)
	require.NoError(w.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(w.t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

// SampleInput returns complete metadata for a sample collected 2020-04-20 12:00
func SampleInput(sampleType, location string) domain.SampleInput {
	tubes := 32
	volume := 0.2
	return domain.SampleInput{
		Type:             sampleType,
		Location:         location,
		Process:          "UF",
		CollectionDate:   "20200420 120000",
		AnalysisDate:     "20200422 093000",
		SampleSourceName: "station 4",
		TubeCount:        &tubes,
		VolumePerTube:    &volume,
	}
}

// NewSample builds a validated sample from SampleInput
func NewSample(t *testing.T, sampleType, location string) *domain.Sample {
	t.Helper()
	s, err := domain.NewSample(SampleInput(sampleType, location))
	require.NoError(t, err)
	return s
}

// RawBaseName returns the raw file base name for a sample built by NewSample
func RawBaseName(sampleType, location string) string {
	parts := []string{sampleType}
	if location != "" {
		parts = append(parts, location)
	}
	parts = append(parts, "UF", "200420", "1200")
	return strings.Join(parts, "_")
}
