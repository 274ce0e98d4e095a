package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/coolprogrammerarpit007/bg-remover/internal/config"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/db"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/engine"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/errors"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/imaging"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/pipeline"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/storage"
)

// ensureDirectories creates the database directory.
func ensureDirectories(sqlitePath string) error {
	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
		return errors.Wrap(err, "failed to create database directory")
	}
	return nil
}

// newBlobStore builds the configured blob backend.
func newBlobStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.StorageBackend == "s3" {
		return storage.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region)
	}
	return storage.NewDiskStore(cfg.DataDir)
}

// newProcessor builds the processing pipeline from configuration.
func newProcessor(cfg *config.Config) *pipeline.Processor {
	client := engine.NewClient(cfg.EngineURL)
	executor := engine.NewExecutor(client, cfg.Budget(), engine.Options{
		Model:               cfg.EngineModel,
		AlphaMatting:        cfg.AlphaMatting,
		ForegroundThreshold: cfg.ForegroundThreshold,
		BackgroundThreshold: cfg.BackgroundThreshold,
	})
	pre := imaging.NewPreprocessor(cfg.MaxDimension, cfg.ContrastBoost, cfg.SharpnessBoost)
	post := imaging.NewPostprocessor()
	return pipeline.New(executor, pre, post)
}

// purgeExpired deletes failed records past the retention window together
// with their stored originals. Returns the number of records removed.
func purgeExpired(ctx context.Context, repo *db.Repository, blobs storage.Store, retentionDays int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	records, err := repo.ListByStatusBefore(db.StatusFailed, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list expired records")
	}

	removed := 0
	for _, rec := range records {
		if err := blobs.Delete(ctx, rec.OriginalPath); err != nil {
			slog.Warn("cleanup_blob_delete_failed", "record_id", rec.ID, "key", rec.OriginalPath, "error", err)
		}
		if err := repo.Delete(rec.ID); err != nil {
			slog.Warn("cleanup_record_delete_failed", "record_id", rec.ID, "error", err)
			continue
		}
		removed++
	}

	slog.Info("cleanup_complete", "removed", removed, "cutoff", cutoff)
	return removed, nil
}
