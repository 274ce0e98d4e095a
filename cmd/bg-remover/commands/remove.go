package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coolprogrammerarpit007/bg-remover/internal/config"
	"github.com/coolprogrammerarpit007/bg-remover/pkg/errors"
)

var removeOutput string

var removeCmd = &cobra.Command{
	Use:   "remove <image-file>",
	Short: "Remove the background of a single local image",
	Long:  `Runs one image through validation, enhancement, segmentation, and alpha refinement without touching the record store.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	removeCmd.Flags().StringVarP(&removeOutput, "output", "o", "", "Output path (default: <input>_processed.png)")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	input := args[0]
	raw, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(err, "failed to read input image")
	}

	processor := newProcessor(cfg)
	result := processor.Process(cmd.Context(), raw)

	if !result.Succeeded {
		fmt.Fprintf(os.Stderr, "%s\n", result.Message)
		for k, v := range result.Diagnostics {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", k, v)
		}
		return fmt.Errorf("processing failed")
	}

	output := removeOutput
	if output == "" {
		stem := strings.TrimSuffix(input, filepath.Ext(input))
		output = stem + "_processed.png"
	}
	if err := os.WriteFile(output, result.Payload, 0644); err != nil {
		return errors.Wrap(err, "failed to write output image")
	}

	fmt.Printf("%s\n", result.Message)
	fmt.Printf("Wrote %s (%d bytes)\n", output, len(result.Payload))
	return nil
}
