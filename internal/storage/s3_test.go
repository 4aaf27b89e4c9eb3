package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "scene_tile_0_0.png"))
	touch(t, filepath.Join(dir, "scene_tile_0_32.WEBP"))
	touch(t, filepath.Join(dir, "manifest.csv"))
	touch(t, filepath.Join(dir, "manifest.db"))
	touch(t, filepath.Join(dir, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "T1"), 0o755))

	names, err := collectFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"scene_tile_0_0.png", "scene_tile_0_32.WEBP",
		"manifest.csv", "manifest.db",
	}, names)
}

func TestCollectFilesSkipsRoleDirectories(t *testing.T) {
	// A dual-time output root contains only the T1/ and T2/ directories;
	// enumeration there yields nothing, so callers must upload each role
	// directory, not the root.
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "T1"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "T2"), 0o755))
	touch(t, filepath.Join(dir, "T1", "a_0_0.png"))
	touch(t, filepath.Join(dir, "T2", "b_0_0.png"))

	names, err := collectFiles(dir)
	require.NoError(t, err)
	assert.Empty(t, names)

	names, err = collectFiles(filepath.Join(dir, "T1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a_0_0.png"}, names)
}

func TestCollectFilesMissingDir(t *testing.T) {
	_, err := collectFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
