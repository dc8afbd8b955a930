package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/data4good/donorscope/cmd/donorscope/commands"
	"github.com/data4good/donorscope/logger"
)

var rootCmd = &cobra.Command{
	Use:   "donorscope",
	Short: "Donorscope - donor analytics pipeline",
	Long: `Donorscope - campaign engagement and donor segmentation pipeline.

Donorscope loads CRM CSV exports, resolves campaign tracking records to
donor accounts through a configurable join path, attaches donor personas
computed from the giving history, and emits report artifacts. Records that
cannot be resolved are never dropped; they land in the unmatched report.

Available commands:
  run      - Execute the resolution pipeline
  validate - Check input files against the configured schemas
  history  - Show recent runs from the audit store
  config   - Show or save the configuration

Examples:
  donorscope run                       # Run with configured defaults
  donorscope run --input-dir ./export  # Run against a specific export
  donorscope run --watch               # Rerun whenever inputs change
  donorscope validate                  # Check inputs without running
  donorscope history                   # Show recent run outcomes`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output JSON instead of console text")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.ValidateCmd)
	rootCmd.AddCommand(commands.HistoryCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
