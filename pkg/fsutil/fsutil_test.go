package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/symexlab/statoor/pkg/store"
)

func makeRunDir(t *testing.T, parent, name string) string {
	t.Helper()

	dir := filepath.Join(parent, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, store.StatsFileName), nil, 0o644,
	))

	return dir
}

func TestIsRunDir(t *testing.T) {
	parent := t.TempDir()
	run := makeRunDir(t, parent, "run1")

	assert.True(t, IsRunDir(run))
	assert.False(t, IsRunDir(parent))
	assert.False(t, IsRunDir(filepath.Join(parent, "missing")))
}

func TestDiscoverRuns_DirectRunDir(t *testing.T) {
	run := makeRunDir(t, t.TempDir(), "run1")

	runs, err := DiscoverRuns([]string{run})
	require.NoError(t, err)
	assert.Equal(t, []string{run}, runs)
}

func TestDiscoverRuns_ParentDirectory(t *testing.T) {
	parent := t.TempDir()
	run2 := makeRunDir(t, parent, "run2")
	run1 := makeRunDir(t, parent, "run1")

	// A directory without a counter store is skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(parent, "other"), 0o755))

	runs, err := DiscoverRuns([]string{parent})
	require.NoError(t, err)
	assert.Equal(t, []string{run1, run2}, runs)
}

func TestDiscoverRuns_NoneFound(t *testing.T) {
	_, err := DiscoverRuns([]string{t.TempDir()})
	assert.Error(t, err)
}

func TestDiscoverRuns_MissingPath(t *testing.T) {
	_, err := DiscoverRuns([]string{
		filepath.Join(t.TempDir(), "missing"),
	})
	assert.Error(t, err)
}
