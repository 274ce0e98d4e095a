package commands

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/coolprogrammerarpit007/bg-remover/internal/config"
	"github.com/coolprogrammerarpit007/bg-remover/internal/handler"
	"github.com/coolprogrammerarpit007/bg-remover/internal/server"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/cache"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/db"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/errors"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/record"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the background removal HTTP service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	if err := ensureDirectories(cfg.SQLitePath); err != nil {
		return err
	}

	ctx := cmd.Context()

	repo, err := db.NewRepository(cfg.SQLitePath)
	if err != nil {
		return errors.Wrap(err, "failed to open record store")
	}
	defer repo.Close()

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to initialize blob storage")
	}

	var resultCache *cache.ResultCache
	if cfg.RedisAddr != "" {
		resultCache = cache.NewResultCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := resultCache.Ping(pingCtx)
		cancel()
		if err != nil {
			slog.Warn("cache_unavailable", "addr", cfg.RedisAddr, "error", err)
			resultCache.Close()
			resultCache = nil
		} else {
			defer resultCache.Close()
		}
	}

	processor := newProcessor(cfg)
	records := record.NewManager(repo)
	images := handler.NewImageHandler(cfg, processor, records, repo, blobs, resultCache)

	scheduler := cron.New()
	if cfg.RetentionDays > 0 {
		_, err := scheduler.AddFunc(cfg.CleanupSchedule, func() {
			if _, err := purgeExpired(context.Background(), repo, blobs, cfg.RetentionDays); err != nil {
				slog.Error("cleanup_failed", "error", err)
			}
		})
		if err != nil {
			return errors.Wrap(err, "invalid cleanup schedule")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	srv := server.New(cfg.ListenAddr, server.NewRouter(images))

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "addr", cfg.ListenAddr, "engine_url", cfg.EngineURL, "timeout_seconds", cfg.TimeoutSeconds)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server failed")
	case sig := <-stop:
		slog.Info("server_shutting_down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}

	slog.Info("server_stopped")
	return nil
}
