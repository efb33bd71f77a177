package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesDatabaseAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, path)
}

func TestOpenCreatesNestedDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history", "run.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, path)
}

func TestRecordAndRecent(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "run.db"))
	require.NoError(t, err)
	defer store.Close()

	run := &Run{
		DocPath:  "scene.stof",
		RanAt:    time.Now(),
		Passed:   2,
		Failed:   1,
		Duration: 5 * time.Millisecond,
		Results: []Result{
			{Path: "obj.test_a", Ok: true},
			{Path: "obj.test_b", Ok: true},
			{Path: "obj.test_c", Ok: false, Message: "assertEq failed"},
		},
	}
	require.NoError(t, store.Record(run))

	recent, err := store.Recent("scene.stof", 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, 2, recent[0].Passed)
	assert.Equal(t, 1, recent[0].Failed)
	assert.Len(t, recent[0].Results, 3)
}

func TestRecentFiltersByDocPath(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "run.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Record(&Run{DocPath: "a.stof", Passed: 1}))
	require.NoError(t, store.Record(&Run{DocPath: "b.stof", Passed: 1}))

	recent, err := store.Recent("a.stof", 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "a.stof", recent[0].DocPath)
}

func TestRecentRespectsLimit(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "run.db"))
	require.NoError(t, err)
	defer store.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Record(&Run{DocPath: "scene.stof", Passed: 1}))
	}

	recent, err := store.Recent("scene.stof", 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
