package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFileCreatesParents(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src.txt")
	dst := filepath.Join(tmp, "a", "b", "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0755))

	require.NoError(t, CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestCopyFileMissingSource(t *testing.T) {
	tmp := t.TempDir()
	err := CopyFile(filepath.Join(tmp, "missing"), filepath.Join(tmp, "dst"))
	require.Error(t, err)
}

func TestCopyDir(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	dst := filepath.Join(tmp, "dst")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "top.txt"), []byte("top"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "nested", "deep.txt"), []byte("deep"), 0644))

	require.NoError(t, CopyDir(src, dst))

	assert.FileExists(t, filepath.Join(dst, "top.txt"))
	assert.FileExists(t, filepath.Join(dst, "nested", "deep.txt"))
}

func TestExists(t *testing.T) {
	tmp := t.TempDir()
	assert.True(t, Exists(tmp))
	assert.False(t, Exists(filepath.Join(tmp, "nope")))
}
