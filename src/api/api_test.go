package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUninitialized(t *testing.T) {
	assert.False(t, Set("k", []byte("v"), 0))
	assert.Nil(t, Get("k"))
	assert.False(t, Del("k"))
	assert.False(t, Check())
	assert.False(t, Close())
}

func TestLifecycle(t *testing.T) {
	require.True(t, Init(t.TempDir(), 1000))
	defer Close()

	require.True(t, Set("k", []byte("value"), 0))
	assert.Equal(t, []byte("value"), Get("k"))
	assert.True(t, Exists("k"))
	assert.Equal(t, uint64(1), Count())
	assert.Equal(t, uint64(5), Size())
	assert.Equal(t, []string{"k"}, Keys())

	assert.False(t, Add("k", []byte("other"), 0))
	require.True(t, Add("k2", []byte("second"), 0))

	assert.Equal(t, []byte("second"), Pop("k2"))
	assert.False(t, Exists("k2"))

	assert.True(t, Touch("k", 7200))
	assert.True(t, Expire())
	assert.Equal(t, []byte("value"), Get("k"))

	assert.True(t, Del("k"))
	assert.Nil(t, Get("k"))

	assert.True(t, Set("k3", []byte("x"), 0))
	assert.True(t, Clear())
	assert.Equal(t, uint64(0), Count())
	assert.True(t, Check())
}

func TestInitFailure(t *testing.T) {
	assert.False(t, Init("/proc/definitely/not/writable", 0))
}
