package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "inpcalc/internal/errors"
	"inpcalc/pkg/contracts/domain"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMetadataFile(t *testing.T) {
	path := writeYAML(t, `
type: seawater
location: bubbler
process: UF
collection_date: "20200420 120000"
analysis_date: 2020-04-22 09:30
sample_name: station 4
num_tubes: 32
vol_tube: 0.2
sigma: 1.96
`)

	s, err := LoadMetadataFile(path)
	require.NoError(t, err)
	assert.Equal(t, domain.SampleType("seawater"), s.Type())
	assert.Equal(t, domain.Location("bubbler"), s.Location())
	assert.Equal(t, "UF", s.Process())
	assert.Equal(t, time.Date(2020, 4, 20, 12, 0, 0, 0, time.UTC), s.CollectionDate())
	assert.Equal(t, "station 4", s.SourceName())
	assert.Equal(t, 32, s.TubeCount())
	assert.Equal(t, 0.2, s.VolumePerTube())
	assert.Equal(t, 1.96, s.ConfidenceSigma())
}

func TestLoadMetadataFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		kind    error
	}{
		{"not a mapping", "- seawater\n- bubbler\n", apperrors.ErrInvalidMetadata},
		{"nested value", "type: seawater\nprocess:\n  step: UF\n", apperrors.ErrInvalidMetadata},
		{"unknown field", "type: seawater\nprocess: UF\ncolour: blue\ncollection_date: \"20200420 1200\"\n", apperrors.ErrInvalidMetadata},
		{"missing process", "type: seawater\ncollection_date: \"20200420 1200\"\n", apperrors.ErrMissingMetadataField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMetadataFile(writeYAML(t, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	_, err := LoadMetadataFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidMetadata)
}

func writeMetadataWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := "samples"
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{
		"Type", "Location", "Process", "Sample Collection Date", "Analysis Date",
		"Sample Name", "# Tubes", "Vol Tube", "Issues",
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{
		"aerosol", "coriolis", "H", time.Date(2020, 5, 1, 8, 30, 0, 0, time.UTC), "20200503 1000",
		"mast", 12, 0.5,
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{
		"seawater", "", "UF", "20200420 1200", "20200422 0930", "station 4", 32, 0.2,
	}))

	path := filepath.Join(t.TempDir(), "metadata.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadMetadataRow(t *testing.T) {
	path := writeMetadataWorkbook(t)

	t.Run("date serial", func(t *testing.T) {
		s, err := LoadMetadataRow(path, "samples", 2)
		require.NoError(t, err)
		assert.Equal(t, domain.SampleType("aerosol"), s.Type())
		assert.Equal(t, domain.Location("coriolis"), s.Location())
		assert.Equal(t, time.Date(2020, 5, 1, 8, 30, 0, 0, time.UTC), s.CollectionDate())
		assert.Equal(t, 12, s.TubeCount())
		assert.Equal(t, 0.5, s.VolumePerTube())
	})

	t.Run("text date and short row", func(t *testing.T) {
		s, err := LoadMetadataRow(path, "", 3)
		require.NoError(t, err)
		assert.Equal(t, domain.SampleType("seawater"), s.Type())
		assert.Empty(t, s.Location())
		assert.Equal(t, time.Date(2020, 4, 20, 12, 0, 0, 0, time.UTC), s.CollectionDate())
	})

	t.Run("header row", func(t *testing.T) {
		_, err := LoadMetadataRow(path, "samples", 1)
		assert.ErrorIs(t, err, apperrors.ErrInvalidMetadata)
	})

	t.Run("past the last row", func(t *testing.T) {
		_, err := LoadMetadataRow(path, "samples", 9)
		assert.ErrorIs(t, err, apperrors.ErrInvalidMetadata)
	})

	t.Run("unknown sheet", func(t *testing.T) {
		_, err := LoadMetadataRow(path, "other", 2)
		assert.ErrorIs(t, err, apperrors.ErrInvalidMetadata)
	})
}
