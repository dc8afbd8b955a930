// Package commands implements the donorscope CLI commands.
package commands

import (
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/data4good/donorscope/config"
	"github.com/data4good/donorscope/display"
	"github.com/data4good/donorscope/errors"
	"github.com/data4good/donorscope/logger"
	"github.com/data4good/donorscope/pipeline"
	"github.com/data4good/donorscope/report"
)

var (
	runInputDir  string
	runOutputDir string
	runJoinPath  string
	runWatch     bool
	runNoPDF     bool
)

// RunCmd executes the resolution pipeline.
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the resolution pipeline",
	Long: `Execute the resolution pipeline against the configured input directory.

Loads the configured CSV sources, resolves the join path, attaches donor
personas, and writes report artifacts into the output directory. With
--watch, stays running and reruns whenever a CSV in the input directory
changes.`,
	RunE: runPipeline,
}

func init() {
	RunCmd.Flags().StringVar(&runInputDir, "input-dir", "", "Override the configured input directory")
	RunCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "Override the configured output directory")
	RunCmd.Flags().StringVar(&runJoinPath, "join-path", "", "YAML file overriding the configured join path")
	RunCmd.Flags().BoolVar(&runWatch, "watch", false, "Rerun whenever a CSV in the input directory changes")
	RunCmd.Flags().BoolVar(&runNoPDF, "no-pdf", false, "Skip chart rendering and the PDF digest")
}

func loadRunConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}

	if runInputDir != "" {
		cfg.Input.Dir = runInputDir
	}
	if runOutputDir != "" {
		cfg.Output.Dir = runOutputDir
	}
	if runNoPDF {
		cfg.Output.PDFReport = false
	}
	if runJoinPath != "" {
		if err := config.LoadJoinPath(cfg, runJoinPath); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	jsonOut := display.ShouldOutputJSON(cmd)
	verbosity, _ := cmd.Root().PersistentFlags().GetCount("verbose")

	if !jsonOut {
		pterm.DefaultHeader.WithFullWidth().Printf("Donorscope - Resolution Run")
		pterm.Println()
		pterm.Info.Printf("Input directory:  %s\n", cfg.Input.Dir)
		pterm.Info.Printf("Output directory: %s\n", cfg.Output.Dir)
		pterm.Println()
	}

	result, err := pipeline.Run(cfg)
	if err != nil {
		return err
	}
	printResult(result, jsonOut, verbosity)

	if !runWatch {
		return nil
	}

	watcher, err := pipeline.NewWatcher(cfg, func(r *pipeline.Result) {
		printResult(r, jsonOut, verbosity)
	})
	if err != nil {
		return err
	}
	watcher.Start()

	if !jsonOut {
		pterm.Info.Printf("Watching %s for changes (Ctrl-C to stop)\n", cfg.Input.Dir)
	}
	watcher.Wait()
	return nil
}

func printResult(result *pipeline.Result, jsonOut bool, verbosity int) {
	if jsonOut {
		_ = display.OutputJSON(runSummary{
			RunID:          result.RunID,
			SourceRows:     result.SourceRows,
			ResolvedRows:   result.ResolvedRows,
			UnresolvedRows: result.UnresolvedRows,
			Personas:       result.Personas,
			DurationMs:     result.Elapsed().Milliseconds(),
		})
		return
	}
	report.PrintSummary(result.SourceRows, result.Report, result.Personas, result.Elapsed())

	if logger.ShouldOutput(verbosity, logger.OutputHopDetail) && result.UnresolvedRows > 0 {
		byHop := result.Report.ByHop()
		hops := make([]int, 0, len(byHop))
		for hop := range byHop {
			hops = append(hops, hop)
		}
		sort.Ints(hops)
		pterm.Info.Println("Unresolved per hop:")
		for _, hop := range hops {
			pterm.Printf("  hop %d: %d\n", hop, byHop[hop])
		}
		pterm.Println()
	}

	if logger.ShouldOutput(verbosity, logger.OutputUnmatchedRecords) {
		for _, u := range result.Report.Records {
			pterm.Printf("  row %d - hop %d, key %q (%s)\n", u.SourceRow, u.Hop, u.RawKey, u.Reason)
		}
	}
}

type runSummary struct {
	RunID          string         `json:"run_id"`
	SourceRows     int            `json:"source_rows"`
	ResolvedRows   int            `json:"resolved_rows"`
	UnresolvedRows int            `json:"unresolved_rows"`
	Personas       map[string]int `json:"personas"`
	DurationMs     int64          `json:"duration_ms"`
}
