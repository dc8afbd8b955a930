package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data4good/donorscope/join"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	d, err := OpenWithMigrations(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestRecordAndRecallRun(t *testing.T) {
	d := testDB(t)

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	run := RunRecord{
		ID:             "run_3f2a",
		StartedAt:      started,
		FinishedAt:     started.Add(4 * time.Second),
		InputDir:       "/data/in",
		OutputDir:      "/data/out",
		SourceRows:     1042,
		ResolvedRows:   1035,
		UnresolvedRows: 7,
	}
	unmatched := []join.Unmatched{
		{SourceRow: 3, Hop: 0, RawKey: "A002", Reason: join.ReasonNoMatch},
		{SourceRow: 9, Hop: 1, RawKey: "", Reason: join.ReasonMissingKey},
	}

	require.NoError(t, RecordRun(d, run, unmatched))

	runs, err := RecentRuns(d, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run_3f2a", runs[0].ID)
	assert.Equal(t, 1042, runs[0].SourceRows)
	assert.Equal(t, 7, runs[0].UnresolvedRows)
	assert.True(t, runs[0].StartedAt.Equal(started))

	records, err := UnmatchedForRun(d, "run_3f2a")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, join.ReasonNoMatch, records[0].Reason)
	assert.Equal(t, "A002", records[0].RawKey)
	assert.Equal(t, join.ReasonMissingKey, records[1].Reason)
}

func TestRecentRunsOrdering(t *testing.T) {
	d := testDB(t)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"run_old", "run_mid", "run_new"} {
		run := RunRecord{
			ID:         id,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
		}
		require.NoError(t, RecordRun(d, run, nil))
	}

	runs, err := RecentRuns(d, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run_new", runs[0].ID)
	assert.Equal(t, "run_mid", runs[1].ID)
}

func TestRecordRunDuplicateIDFails(t *testing.T) {
	d := testDB(t)

	run := RunRecord{ID: "run_dup", StartedAt: time.Now(), FinishedAt: time.Now()}
	require.NoError(t, RecordRun(d, run, nil))

	err := RecordRun(d, run, nil)
	require.Error(t, err)

	// The failed insert must not leave partial state behind.
	runs, err := RecentRuns(d, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestUnmatchedForUnknownRunIsEmpty(t *testing.T) {
	d := testDB(t)

	records, err := UnmatchedForRun(d, "run_missing")
	require.NoError(t, err)
	assert.Empty(t, records)
}
