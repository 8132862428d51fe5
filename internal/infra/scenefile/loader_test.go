package scenefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()

	valid := buildSnapshot([]testItem{{pos: [3]float32{5, 5, 5}, size: [3]float32{2, 2, 2}}}, []byte("blob"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lobby.sbx"), valid, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gallery.sbx"), valid, 0o644))

	// Corrupt and unrelated files must be skipped, not fatal.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.sbx"), []byte("XXXXnope"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "drafts.sbx"), 0o755))

	scenes, err := LoadDirectory(dir)
	require.NoError(t, err)

	assert.Len(t, scenes, 2)
	require.Contains(t, scenes, "lobby")
	require.Contains(t, scenes, "gallery")
	assert.Equal(t, "lobby", scenes["lobby"].Name)
	assert.Equal(t, 1, scenes["lobby"].Items)
}

func TestLoadDirectory_MissingDir(t *testing.T) {
	scenes, err := LoadDirectory(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	assert.Nil(t, scenes)
	assert.Contains(t, err.Error(), "failed to read scene directory")
}

func TestLoadDirectory_EmptyDir(t *testing.T) {
	scenes, err := LoadDirectory(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, scenes)
}
