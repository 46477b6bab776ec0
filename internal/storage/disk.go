package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// DiskStore writes images into a local directory served under /uploads.
// Filenames are timestamp-based to avoid collisions between uploads.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the upload directory when missing.
func NewDiskStore(dir string) (*DiskStore, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the backing directory (for static file serving).
func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), strings.ToLower(filepath.Ext(filename)))
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path.Join(s.dir, name), nil
}

// Remove deletes a stored image. A missing file is not an error: the path
// field may outlive the file it pointed to.
func (s *DiskStore) Remove(ctx context.Context, p string) error {
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(p)
}
