package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnedBuffer(t *testing.T) {
	buf := newOwnedBuffer([]byte("hello"))

	assert.True(t, buf.Valid())
	assert.Equal(t, 5, buf.Size())
	assert.Equal(t, []byte("hello"), buf.Data())
	assert.Equal(t, []byte("hello"), buf.Bytes())

	require.NoError(t, buf.Close())
	assert.False(t, buf.Valid())
	require.NoError(t, buf.Close())
}

func TestOwnedBufferEmpty(t *testing.T) {
	buf := newOwnedBuffer(nil)

	assert.True(t, buf.Valid())
	assert.Equal(t, 0, buf.Size())
	assert.Empty(t, buf.Bytes())
}

func TestBufferBytesIsACopy(t *testing.T) {
	data := []byte("abc")
	buf := newOwnedBuffer(data)

	out := buf.Bytes()
	out[0] = 'x'
	assert.Equal(t, []byte("abc"), buf.Data())
}

func TestMappedBufferOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob")
	content := []byte("mapped file contents")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	ds, err := newDiskStorage(dir)
	require.NoError(t, err)

	buf, err := ds.load(path)
	require.NoError(t, err)
	require.NotNil(t, buf)

	assert.True(t, buf.Valid())
	assert.Equal(t, content, buf.Bytes())
	assert.Equal(t, len(content), buf.Size())

	require.NoError(t, buf.Close())
	assert.False(t, buf.Valid())
}

func TestNilBuffer(t *testing.T) {
	var buf *Buffer

	assert.False(t, buf.Valid())
	assert.Equal(t, 0, buf.Size())
	assert.Nil(t, buf.Data())
	assert.NoError(t, buf.Close())
}
