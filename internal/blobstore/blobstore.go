// Package blobstore stores attachment blobs under opaque relative paths.
package blobstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned when no blob exists at the given path.
	ErrNotFound = errors.New("blob not found")
	// ErrBadPath is returned for paths that escape the store root.
	ErrBadPath = errors.New("invalid blob path")
)

// Store is the object storage surface: write a blob, read it back,
// remove it. Paths are forward-slash relative keys chosen by the caller.
type Store interface {
	Save(path string, data []byte) error
	Read(path string) ([]byte, error)
	Remove(path string) error
}

// DiskStore keeps blobs as plain files under a root directory.
type DiskStore struct {
	Root string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{Root: root}
}

// resolve maps a blob key to an absolute file path, rejecting keys that
// would climb out of the root.
func (d *DiskStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", ErrBadPath
	}
	return filepath.Join(d.Root, clean), nil
}

func (d *DiskStore) Save(path string, data []byte) error {
	full, err := d.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func (d *DiskStore) Read(path string) ([]byte, error) {
	full, err := d.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (d *DiskStore) Remove(path string) error {
	full, err := d.resolve(path)
	if err != nil {
		return err
	}
	err = os.Remove(full)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
