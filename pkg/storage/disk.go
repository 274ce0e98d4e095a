package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/coolprogrammerarpit007/bg-remover/pkg/errors"
)

// DiskStore keeps blobs on the local filesystem under a root directory.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create storage root")
	}
	slog.Info("disk_store_ready", "root", root)
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *DiskStore) Write(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return errors.Wrap(err, "failed to create blob directory")
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		slog.Error("disk_write_failed", "key", key, "error", err)
		return errors.Wrap(err, "failed to write blob")
	}
	slog.Debug("disk_write_complete", "key", key, "size_bytes", len(data))
	return nil
}

func (s *DiskStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		slog.Error("disk_read_failed", "key", key, "error", err)
		return nil, errors.Wrap(err, "failed to read blob")
	}
	return data, nil
}

func (s *DiskStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to delete blob")
	}
	return nil
}
