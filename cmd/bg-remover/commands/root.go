package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "bg-remover",
	Short: "Background Remover - image background removal service",
	Long:  `Removes image backgrounds through an external segmentation engine, with per-image lifecycle tracking.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("listen-addr", ":8080", "HTTP listen address")
	rootCmd.PersistentFlags().String("sqlite-path", ".artifacts/images.db", "SQLite database path")
	rootCmd.PersistentFlags().String("storage-backend", "disk", "Blob storage backend (disk or s3)")
	rootCmd.PersistentFlags().String("data-dir", "images", "Blob root for disk storage")
	rootCmd.PersistentFlags().String("engine-url", "http://localhost:7000", "Segmentation engine base URL")
	rootCmd.PersistentFlags().Int("timeout-seconds", 20, "Segmentation wall-clock budget in seconds")

	viper.BindPFlag("listen-addr", rootCmd.PersistentFlags().Lookup("listen-addr"))
	viper.BindPFlag("sqlite-path", rootCmd.PersistentFlags().Lookup("sqlite-path"))
	viper.BindPFlag("storage-backend", rootCmd.PersistentFlags().Lookup("storage-backend"))
	viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("engine-url", rootCmd.PersistentFlags().Lookup("engine-url"))
	viper.BindPFlag("timeout-seconds", rootCmd.PersistentFlags().Lookup("timeout-seconds"))
}
