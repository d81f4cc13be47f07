package cache

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// diskStorage allocates, reads and frees blob files under the cache
// root. File names are random 128-bit identifiers, fanned out over two
// levels of two-character directories so no single directory grows
// unbounded.
type diskStorage struct {
	root string
}

func newDiskStorage(root string) (*diskStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &diskStorage{root: root}, nil
}

func (ds *diskStorage) generateRandomFilename() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// store writes value to a freshly named file and returns its full
// path. Identifiers are never reused, so the file is created
// exclusively; a partial file is removed on write failure.
func (ds *diskStorage) store(value []byte) (string, error) {
	name := ds.generateRandomFilename()
	path := filepath.Join(ds.root, name[0:2], name[2:4], name)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create blob file: %w", err)
	}
	if _, err := f.Write(value); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write blob file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close blob file: %w", err)
	}
	return path, nil
}

// load maps the file at path into memory and returns a read-only view.
// A missing file yields (nil, nil); an existing but unreadable file
// yields an error.
func (ds *diskStorage) load(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open blob file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat blob file: %w", err)
	}
	if info.Size() == 0 {
		return newOwnedBuffer(nil), nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to map blob file: %w", err)
	}
	return newMappedBuffer(data), nil
}

// remove deletes the file at path, or the whole subtree when recursive
// is set and path is a directory. Returns false if nothing was
// removed.
func (ds *diskStorage) remove(path string, recursive bool) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if recursive && info.IsDir() {
		return os.RemoveAll(path) == nil
	}
	return os.Remove(path) == nil
}
