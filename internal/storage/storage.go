package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// ImageStore persists uploaded questionnaire images. Save returns the path
// under which the image is later referenced (and removable).
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, path string) error
}

// AllowedImage reports whether an upload is acceptable: .jpeg/.jpg/.png by
// extension and by declared media type. Content is not sniffed.
func AllowedImage(filename, contentType string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpeg", ".jpg", ".png":
	default:
		return false
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "jpeg") || strings.Contains(ct, "jpg") || strings.Contains(ct, "png")
}
