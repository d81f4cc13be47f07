package cache

import (
	"golang.org/x/sys/unix"
)

// Buffer is a read-only byte view over either a memory-mapped file or
// an owned in-memory slice. A Buffer stays valid after the cache call
// that produced it returns; mapped buffers hold the mapping until
// Close is called.
type Buffer struct {
	data   []byte
	mapped bool
	valid  bool
}

func newOwnedBuffer(data []byte) *Buffer {
	return &Buffer{data: data, valid: true}
}

func newMappedBuffer(data []byte) *Buffer {
	return &Buffer{data: data, mapped: true, valid: true}
}

// Data returns the underlying bytes without copying. The slice must
// not be written to and must not be used after Close.
func (b *Buffer) Data() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Size returns the byte length of the view.
func (b *Buffer) Size() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Bytes returns an owned copy of the view's contents, safe to keep
// after Close.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Valid reports whether the buffer holds a usable view. A zero-length
// view is still valid.
func (b *Buffer) Valid() bool {
	return b != nil && b.valid
}

// Close releases the mapping for file-backed buffers. Closing an owned
// buffer only invalidates it. Close is idempotent.
func (b *Buffer) Close() error {
	if b == nil || !b.valid {
		return nil
	}
	b.valid = false
	if b.mapped && len(b.data) > 0 {
		data := b.data
		b.data = nil
		return unix.Munmap(data)
	}
	b.data = nil
	return nil
}
