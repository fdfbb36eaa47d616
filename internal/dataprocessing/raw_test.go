package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "inpcalc/internal/errors"
)

func TestParseRaw(t *testing.T) {
	input := "20200420 120000 -1.5 32 0 \n" +
		"20200420 120010 -2.0 32 1 \r\n" +
		"\n" +
		"20200420 120020   -2.5\t31   2 \n"

	table, err := ParseRaw(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1", "2", "3", "4"}, table.Columns)
	require.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"20200420 120000", "-1.5", "32", "0", ""}, table.Rows[0])
	assert.Equal(t, []string{"20200420 120010", "-2.0", "32", "1", ""}, table.Rows[1])
	assert.Equal(t, []string{"20200420 120020", "-2.5", "31", "2", ""}, table.Rows[2])
}

func TestParseRawPadsShortRows(t *testing.T) {
	input := "20200420 120000 1 2 3\n20200420 120010 4\n"

	table, err := ParseRaw(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 4, table.Width())
	assert.Equal(t, []string{"20200420 120010", "4", "", ""}, table.Rows[1])
}

func TestParseRawErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"only blank lines", "\n  \n"},
		{"missing time field", "20200420\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRaw(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)
		})
	}
}

func TestParseRawFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seawater_bubbler_UF_200420_1200.csv")
	require.NoError(t, os.WriteFile(path, []byte("20200420 120000 1 2 \n"), 0644))

	table, err := ParseRawFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	_, err = ParseRawFile(filepath.Join(dir, "absent.csv"))
	assert.ErrorIs(t, err, apperrors.ErrSourceNotFound)
}
