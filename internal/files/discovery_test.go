package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "inpcalc/internal/errors"
	"inpcalc/pkg/contracts/domain"
)

func writeRawFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
}

func TestFindRawFiles(t *testing.T) {
	root := t.TempDir()
	naming := Naming{RawRoot: root, OutputRoot: t.TempDir(), RawExtension: "csv", ReportExtension: "xlsx"}
	writeRawFiles(t, filepath.Join(root, "seawater"),
		"seawater_bubbler_UF_200421_0900.csv",
		"seawater_UF_200420_1200.csv",
		"seawater_bubbler_UF_200420_1200.CSV",
		"notes.csv",
		"seawater_bubbler_UF_200420_1200.xlsx",
		"aerosol_bubbler_UF_200420_1200.csv",
	)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "seawater", "archive.csv"), 0755))

	discovery := NewDiscovery(naming, nil)
	files, err := discovery.FindRawFiles(domain.SampleTypeSeawater)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"seawater_UF_200420_1200.csv",
		"seawater_bubbler_UF_200420_1200.CSV",
		"seawater_bubbler_UF_200421_0900.csv",
	}, names)

	assert.Equal(t, domain.LocationBubbler, files[2].Key.Location)
	assert.Equal(t, time.Date(2020, 4, 21, 9, 0, 0, 0, time.UTC), files[2].CollectedAt)

	latest, ok := GetLatestFile(files)
	require.True(t, ok)
	assert.Equal(t, "seawater_bubbler_UF_200421_0900.csv", latest.Name)

	day := FilterFilesByDateRange(files,
		time.Date(2020, 4, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 4, 20, 23, 59, 0, 0, time.UTC))
	assert.Len(t, day, 2)
}

func TestFindRawFilesMissingDirectory(t *testing.T) {
	discovery := NewDiscovery(Naming{RawRoot: t.TempDir(), RawExtension: "csv"}, nil)

	_, err := discovery.FindRawFiles(domain.SampleTypeAerosol)
	assert.ErrorIs(t, err, apperrors.ErrSourceNotFound)
}

func TestHasReport(t *testing.T) {
	naming := Naming{RawRoot: t.TempDir(), OutputRoot: t.TempDir(), RawExtension: "csv", ReportExtension: "xlsx"}
	discovery := NewDiscovery(naming, nil)
	key := Key{Type: "seawater", Location: "bubbler", Process: "UF", Date: "200420", Time: "1200"}

	assert.False(t, discovery.HasReport(key))

	writeRawFiles(t, naming.ReportDir(key), filepath.Base(naming.ReportPath(key)))
	assert.True(t, discovery.HasReport(key))
}

func TestGetLatestFileEmpty(t *testing.T) {
	_, ok := GetLatestFile(nil)
	assert.False(t, ok)
}
