package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coolprogrammerarpit007/bg-remover/internal/config"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/db"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/errors"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete failed records older than the retention window",
	RunE:  runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	repo, err := db.NewRepository(cfg.SQLitePath)
	if err != nil {
		return errors.Wrap(err, "failed to open record store")
	}
	defer repo.Close()

	blobs, err := newBlobStore(cmd.Context(), cfg)
	if err != nil {
		return errors.Wrap(err, "failed to initialize blob storage")
	}

	removed, err := purgeExpired(cmd.Context(), repo, blobs, cfg.RetentionDays)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d expired record(s).\n", removed)
	return nil
}
