package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreLayout(t *testing.T) {
	dir := t.TempDir()
	ds, err := newDiskStorage(dir)
	require.NoError(t, err)

	path, err := ds.store([]byte("payload"))
	require.NoError(t, err)

	rel, err := filepath.Rel(dir, path)
	require.NoError(t, err)

	parts := strings.Split(rel, string(filepath.Separator))
	require.Len(t, parts, 3)
	assert.Equal(t, parts[2][0:2], parts[0])
	assert.Equal(t, parts[2][2:4], parts[1])
	assert.Len(t, parts[2], 32)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), content)
}

func TestDiskStoreFreshNames(t *testing.T) {
	ds, err := newDiskStorage(t.TempDir())
	require.NoError(t, err)

	a, err := ds.store([]byte("a"))
	require.NoError(t, err)
	b, err := ds.store([]byte("a"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDiskLoadMissing(t *testing.T) {
	ds, err := newDiskStorage(t.TempDir())
	require.NoError(t, err)

	buf, err := ds.load(filepath.Join(ds.root, "no", "such", "file"))
	require.NoError(t, err)
	assert.Nil(t, buf)
}

func TestDiskLoadRoundTrip(t *testing.T) {
	ds, err := newDiskStorage(t.TempDir())
	require.NoError(t, err)

	content := []byte(strings.Repeat("x", 4096))
	path, err := ds.store(content)
	require.NoError(t, err)

	buf, err := ds.load(path)
	require.NoError(t, err)
	require.NotNil(t, buf)
	defer buf.Close()

	assert.Equal(t, content, buf.Bytes())
}

func TestDiskRemove(t *testing.T) {
	ds, err := newDiskStorage(t.TempDir())
	require.NoError(t, err)

	path, err := ds.store([]byte("gone soon"))
	require.NoError(t, err)

	assert.True(t, ds.remove(path, false))
	assert.False(t, ds.remove(path, false))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDiskRemoveRecursive(t *testing.T) {
	dir := t.TempDir()
	ds, err := newDiskStorage(dir)
	require.NoError(t, err)

	sub := filepath.Join(dir, "aa")
	require.NoError(t, os.MkdirAll(filepath.Join(sub, "bb"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "bb", "f"), []byte("x"), 0o644))

	assert.False(t, ds.remove(sub, false))
	assert.True(t, ds.remove(sub, true))

	_, err = os.Stat(sub)
	assert.True(t, os.IsNotExist(err))
}
