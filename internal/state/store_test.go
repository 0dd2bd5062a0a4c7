package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Open(":memory:"))
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate())
	return s
}

func testRun() *Run {
	started := time.Now().UTC().Truncate(time.Second)
	return &Run{
		ID:          NewRunID(),
		RosterPath:  "testdata/roster.csv",
		StatusPath:  "testdata/status.csv",
		RosterRows:  285,
		StatusRows:  212,
		RosterDupes: 3,
		StatusDupes: 1,
		MergedRows:  285,
		Unmatched:   73,
		Status:      RunStatusCompleted,
		StartedAt:   started,
		CompletedAt: started.Add(2 * time.Second),
	}
}

func TestStore_SaveAndGetRun(t *testing.T) {
	s := newTestStore(t)

	run := testRun()
	require.NoError(t, s.SaveRun(run))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.RosterRows, got.RosterRows)
	assert.Equal(t, run.RosterDupes, got.RosterDupes)
	assert.Equal(t, run.MergedRows, got.MergedRows)
	assert.Equal(t, run.Unmatched, got.Unmatched)
	assert.Equal(t, RunStatusCompleted, got.Status)
	assert.Empty(t, got.Error)
}

func TestStore_SaveFailedRun(t *testing.T) {
	s := newTestStore(t)

	run := testRun()
	run.Status = RunStatusFailed
	run.Error = "parse roster.csv: missing key column scientific_name"
	require.NoError(t, s.SaveRun(run))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Contains(t, got.Error, "missing key column")
}

func TestStore_GetRun_Prefix(t *testing.T) {
	s := newTestStore(t)

	run := testRun()
	require.NoError(t, s.SaveRun(run))

	got, err := s.GetRun(run.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
}

func TestStore_GetRun_AmbiguousPrefix(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"feed0001", "feed0002"} {
		run := testRun()
		run.ID = id
		require.NoError(t, s.SaveRun(run))
	}

	_, err := s.GetRun("feed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestStore_GetRun_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRun("no-such-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestStore_ListRuns(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		run := testRun()
		run.StartedAt = run.StartedAt.Add(time.Duration(i) * time.Minute)
		run.CompletedAt = run.StartedAt.Add(time.Second)
		require.NoError(t, s.SaveRun(run))
	}

	runs, err := s.ListRuns(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// Newest first.
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
	assert.True(t, runs[1].StartedAt.After(runs[2].StartedAt))
}

func TestStore_NotOpened(t *testing.T) {
	s := NewStore()
	require.Error(t, s.SaveRun(testRun()))
	_, err := s.ListRuns(1)
	require.Error(t, err)
}
