// Package storage provides the blob area for original and processed images:
// an opaque write-bytes-at-key / read-bytes-from-key capability with disk and
// S3 backends.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Store abstracts the blob area. Keys are slash-separated relative paths
// such as "originals/ab12cd.png".
type Store interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// validateKey rejects keys that could escape the blob area. Absolute paths
// and any ".." component are refused before a backend sees the key.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage: empty key")
	}
	if filepath.IsAbs(key) || strings.HasPrefix(key, "/") {
		return fmt.Errorf("storage: absolute key not allowed: %s", key)
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("storage: path traversal detected: %s", key)
	}
	return nil
}
