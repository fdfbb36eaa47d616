package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "inpcalc/internal/errors"
	"inpcalc/internal/services"
	sharedtest "inpcalc/internal/shared/testutil"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func sampleArgs(ws *sharedtest.Workspace, sampleType, location string) []string {
	args := []string{
		"--base-dir", ws.Root,
		"--type", sampleType,
		"--process", "UF",
		"--collected", "20200420 120000",
		"--analysed", "20200422 093000",
		"--source-name", "station 4",
		"--tubes", "32",
		"--volume", "0.2",
	}
	if location != "" {
		args = append(args, "--location", location)
	}
	return args
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "inpcalc v"), out)

	out, _, err = runCLI(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info["version"])
}

func TestCalculateFromFlags(t *testing.T) {
	ws := sharedtest.NewStandardWorkspace(t, 3)
	ws.WriteRaw("seawater", sharedtest.RawBaseName("seawater", "bubbler"), 3)

	out, _, err := runCLI(t, append([]string{"calculate"}, sampleArgs(ws, "seawater", "bubbler")...)...)
	require.NoError(t, err)

	report := filepath.Join(ws.OutputRoot(), "seawater", "bubbler",
		sharedtest.RawBaseName("seawater", "bubbler")+"_calculated.xlsx")
	assert.Equal(t, "...IN data calculated!\nCalculated report file saved to "+report+".\n", out)
	assert.FileExists(t, report)
}

func TestCalculateFromMetadataFile(t *testing.T) {
	ws := sharedtest.NewStandardWorkspace(t, 3)
	ws.WriteRaw("aerosol", sharedtest.RawBaseName("aerosol", "coriolis"), 3)

	metadata := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, os.WriteFile(metadata, []byte(`
type: aerosol
location: coriolis
process: UF
collection_date: "20200420 1200"
analysis_date: "20200422 0930"
sample_name: mast
num_tubes: 32
vol_tube: 0.2
`), 0644))

	out, _, err := runCLI(t, "calculate", "--base-dir", ws.Root, "--metadata", metadata, "--json")
	require.NoError(t, err)

	var view calculateView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "aerosol_coriolis", view.Routine)
	assert.Equal(t, 3, view.Rows)
	assert.FileExists(t, view.ReportPath)

	out, _, err = runCLI(t, "history", "show", view.RunID, "--base-dir", ws.Root)
	require.NoError(t, err)
	assert.Contains(t, out, "succeeded")
	assert.Contains(t, out, view.ReportPath)
}

func TestCalculateFailures(t *testing.T) {
	ws := sharedtest.NewStandardWorkspace(t, 3)

	tests := []struct {
		name string
		args []string
		kind error
		code int
	}{
		{
			name: "raw file missing",
			args: sampleArgs(ws, "seawater", ""),
			kind: apperrors.ErrSourceNotFound,
			code: exitSourceNotFound,
		},
		{
			name: "metadata incomplete",
			args: []string{"--base-dir", ws.Root, "--type", "seawater"},
			kind: apperrors.ErrMissingMetadataField,
			code: exitMissingMetadata,
		},
		{
			name: "unknown location",
			args: append(sampleArgs(ws, "aerosol", ""), "--location", "tower"),
			kind: apperrors.ErrInvalidMetadata,
			code: exitInvalidMetadata,
		},
		{
			name: "metadata file with inline flags",
			args: []string{"--base-dir", ws.Root, "--metadata", "sample.yaml", "--type", "seawater"},
			kind: services.ErrInvalidInput,
			code: exitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, append([]string{"calculate"}, tt.args...)...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.code, exitCode(err))
			assert.Empty(t, out)
		})
	}
	assert.NoDirExists(t, ws.OutputRoot())
}

func TestCalculateStagesOnFailure(t *testing.T) {
	ws := sharedtest.NewStandardWorkspace(t, 3)
	ws.WriteTemplate(4)
	ws.WriteRaw("seawater", sharedtest.RawBaseName("seawater", ""), 3)

	args := append([]string{"calculate", "--stages"}, sampleArgs(ws, "seawater", "")...)
	_, stderr, err := runCLI(t, args...)
	require.Error(t, err)
	assert.Equal(t, exitSchemaMismatch, exitCode(err))
	assert.Contains(t, stderr, "emit")
	assert.Contains(t, stderr, "failed")
}

func TestLocateCommand(t *testing.T) {
	ws := sharedtest.NewWorkspace(t)
	args := append([]string{"locate"}, sampleArgs(ws, "aerosol", "bubbler")...)

	out, _, err := runCLI(t, args...)
	assert.ErrorIs(t, err, apperrors.ErrSourceNotFound)
	assert.Contains(t, out, "aerosol_bubbler")
	assert.Contains(t, out, sharedtest.RawBaseName("aerosol", "bubbler")+".csv")

	ws.WriteRaw("aerosol", sharedtest.RawBaseName("aerosol", "bubbler"), 2)
	out, _, err = runCLI(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "yes")
}

func TestExportCommand(t *testing.T) {
	ws := sharedtest.NewStandardWorkspace(t, 3)
	ws.WriteRaw("seawater", sharedtest.RawBaseName("seawater", ""), 5)
	dst := filepath.Join(t.TempDir(), "reshaped.csv")

	args := append([]string{"export", "-o", dst}, sampleArgs(ws, "seawater", "")...)
	out, _, err := runCLI(t, args...)
	require.NoError(t, err)
	assert.Equal(t, "Exported 5 rows to "+dst+"\n", out)
	assert.FileExists(t, dst)
}

func TestListCommand(t *testing.T) {
	ws := sharedtest.NewStandardWorkspace(t, 3)
	ws.WriteRaw("seawater", sharedtest.RawBaseName("seawater", "bubbler"), 3)
	ws.WriteRaw("seawater", "seawater_H_200501_0830", 3)

	_, _, err := runCLI(t, append([]string{"calculate"}, sampleArgs(ws, "seawater", "bubbler")...)...)
	require.NoError(t, err)

	out, _, err := runCLI(t, "list", "seawater", "--base-dir", ws.Root, "--json")
	require.NoError(t, err)
	var views []rawEntryView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	assert.True(t, views[0].Calculated)
	assert.False(t, views[1].Calculated)

	out, _, err = runCLI(t, "list", "seawater", "--base-dir", ws.Root, "--pending")
	require.NoError(t, err)
	assert.Contains(t, out, "seawater_H_200501_0830")
	assert.NotContains(t, out, sharedtest.RawBaseName("seawater", "bubbler"))

	out, _, err = runCLI(t, "list", "seawater", "--base-dir", ws.Root, "--latest")
	require.NoError(t, err)
	assert.Contains(t, out, "seawater_H_200501_0830")
	assert.NotContains(t, out, sharedtest.RawBaseName("seawater", "bubbler"))

	_, _, err = runCLI(t, "list", "seawater", "--base-dir", ws.Root, "--from", "yesterday")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, _, err = runCLI(t, "list", "aerosol", "--base-dir", ws.Root)
	assert.ErrorIs(t, err, apperrors.ErrSourceNotFound)
}

func TestHistoryCommand(t *testing.T) {
	ws := sharedtest.NewStandardWorkspace(t, 3)

	out, _, err := runCLI(t, "history", "--base-dir", ws.Root)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")

	_, _, err = runCLI(t, append([]string{"calculate"}, sampleArgs(ws, "aerosol", "bubbler")...)...)
	require.Error(t, err)

	out, _, err = runCLI(t, "history", "--base-dir", ws.Root, "--status", "failed")
	require.NoError(t, err)
	assert.Contains(t, out, "SOURCE_NOT_FOUND at locate")
	assert.Contains(t, out, "aerosol/bubbler/UF")

	_, _, err = runCLI(t, "history", "--base-dir", ws.Root, "--status", "pending")
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestCheckCommand(t *testing.T) {
	ws := sharedtest.NewStandardWorkspace(t, 3)

	out, _, err := runCLI(t, "check", "--base-dir", ws.Root)
	assert.ErrorIs(t, err, errNotReady)
	assert.Contains(t, out, "raw_root")

	require.NoError(t, os.MkdirAll(ws.RawRoot(), 0755))
	out, _, err = runCLI(t, "check", "--base-dir", ws.Root)
	require.NoError(t, err)
	assert.NotContains(t, out, "failed")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, exitOK},
		{errors.New("plain"), exitFailure},
		{apperrors.MissingMetadataField("process"), exitMissingMetadata},
		{apperrors.InvalidMetadata("tube_count", "x", "not an integer"), exitInvalidMetadata},
		{apperrors.UnsupportedSampleKind("aerosol", "tower"), exitUnsupportedSampleKind},
		{apperrors.SourceNotFound("/raw.csv", os.ErrNotExist), exitSourceNotFound},
		{apperrors.SchemaMismatch("columns", 5, 7), exitSchemaMismatch},
		{apperrors.BlankSourceUnavailable("/b.xlsx", "summary_UF_H", os.ErrNotExist), exitBlankSourceUnavailable},
		{apperrors.WriteFailure("/out.xlsx", os.ErrPermission), exitWriteFailure},
		{errors.Join(apperrors.WriteFailure("/out.xlsx", os.ErrPermission), nil), exitWriteFailure},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, exitCode(tt.err), "%v", tt.err)
	}
}
