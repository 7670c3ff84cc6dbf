package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskStore keeps artifacts as files in a single directory.
// References are the file paths, e.g. "uploads/A-001_20240101120000_1a2b3c4d.jpg".
type DiskStore struct {
	Dir string
}

// NewDiskStore creates dir if needed and returns a store rooted there.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &DiskStore{Dir: dir}, nil
}

// Save writes data under name and returns its reference.
func (s *DiskStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	ref := filepath.Join(s.Dir, filepath.Base(name))
	if err := os.WriteFile(ref, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", ref, err)
	}
	return ref, nil
}

// Read returns the artifact bytes, or nil when the file no longer exists.
func (s *DiskStore) Read(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, nil
	}
	data, err := os.ReadFile(ref)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ref, err)
	}
	return data, nil
}

// Remove deletes the artifact. A missing file is not an error.
func (s *DiskStore) Remove(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	if err := os.Remove(ref); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", ref, err)
	}
	return nil
}
