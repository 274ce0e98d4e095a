package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coolprogrammerarpit007/bg-remover/internal/config"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/db"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/errors"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List image records, newest first",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	repo, err := db.NewRepository(cfg.SQLitePath)
	if err != nil {
		return errors.Wrap(err, "failed to open record store")
	}
	defer repo.Close()

	records, err := repo.List()
	if err != nil {
		return errors.Wrap(err, "failed to list records")
	}

	if len(records) == 0 {
		fmt.Println("No image records found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tORIGINAL\tCREATED\tPROCESSED\tERROR")
	for _, rec := range records {
		processedAt := "-"
		if rec.ProcessedAt != nil {
			processedAt = rec.ProcessedAt.Format("2006-01-02 15:04:05")
		}
		errMsg := rec.ErrorMessage
		if errMsg == "" {
			errMsg = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID, rec.Status, rec.OriginalFilename,
			rec.CreatedAt.Format("2006-01-02 15:04:05"), processedAt, errMsg)
	}
	return w.Flush()
}
