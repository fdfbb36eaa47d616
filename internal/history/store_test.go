package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "inpcalc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRun(started time.Time, status Status) *Run {
	return &Run{
		StartedAt:      started,
		FinishedAt:     started.Add(1500 * time.Millisecond),
		SampleType:     "seawater",
		Location:       "bubbler",
		Process:        "UF",
		CollectionDate: "20200420 120000",
		Routine:        "seawater",
		Status:         status,
		SourcePath:     "/data/raw/IN/seawater/seawater_bubbler_UF_200420_1200.csv",
		Rows:           120,
		BlankValues:    64,
		Duration:       1500 * time.Millisecond,
	}
}

func TestRecordAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	started := time.Date(2020, 4, 20, 12, 0, 0, 500, time.UTC)
	run := testRun(started, StatusSucceeded)
	run.ReportPath = "/data/interim/IN/calculated/seawater/bubbler/seawater_bubbler_UF_200420_1200_calculated.xlsx"

	require.NoError(t, store.Record(ctx, run))
	require.NotEmpty(t, run.ID)

	got, err := store.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.True(t, started.Equal(got.StartedAt))
	assert.Equal(t, run.ReportPath, got.ReportPath)
	assert.Equal(t, 120, got.Rows)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.Empty(t, got.ErrorKind)
}

func TestRecordFailure(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := testRun(time.Now(), StatusFailed)
	run.Location = ""
	run.ErrorKind = "SOURCE_NOT_FOUND"
	run.ErrorMessage = "raw data source not found"
	run.FailedStage = "locate"
	require.NoError(t, store.Record(ctx, run))

	got, err := store.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "SOURCE_NOT_FOUND", got.ErrorKind)
	assert.Equal(t, "locate", got.FailedStage)
	assert.Empty(t, got.Location)
}

func TestRecordRequiresStatus(t *testing.T) {
	store := openTestStore(t)
	assert.Error(t, store.Record(context.Background(), testRun(time.Now(), "")))
}

func TestRecordDuplicateID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := testRun(time.Now(), StatusSucceeded)
	require.NoError(t, store.Record(ctx, run))
	assert.Error(t, store.Record(ctx, run))
}

func TestGetNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Get(context.Background(), NewRunID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2020, 4, 20, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		status := StatusSucceeded
		if i%3 == 0 {
			status = StatusFailed
		}
		run := testRun(base.Add(time.Duration(i)*100*time.Millisecond), status)
		run.Process = fmt.Sprintf("P%d", i)
		if i >= 4 {
			run.SampleType = "aerosol"
			run.Location = "coriolis"
		}
		require.NoError(t, store.Record(ctx, run))
	}

	tests := []struct {
		name      string
		filter    Filter
		processes []string
	}{
		{"all, most recent first", Filter{}, []string{"P5", "P4", "P3", "P2", "P1", "P0"}},
		{"limit", Filter{Limit: 2}, []string{"P5", "P4"}},
		{"by type", Filter{SampleType: "aerosol"}, []string{"P5", "P4"}},
		{"by location", Filter{Location: "bubbler"}, []string{"P3", "P2", "P1", "P0"}},
		{"failed only", Filter{Status: StatusFailed}, []string{"P3", "P0"}},
		{"no match", Filter{SampleType: "dust"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := store.List(ctx, tt.filter)
			require.NoError(t, err)

			var got []string
			for _, r := range runs {
				got = append(got, r.Process)
			}
			assert.Equal(t, tt.processes, got)
		})
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inpcalc.db")
	ctx := context.Background()

	first, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Record(ctx, testRun(time.Now(), StatusSucceeded)))
	require.NoError(t, first.Close())

	second, err := Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	runs, err := second.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, path, second.Path())
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}
