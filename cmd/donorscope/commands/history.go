package commands

import (
	"database/sql"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/data4good/donorscope/config"
	"github.com/data4good/donorscope/db"
	"github.com/data4good/donorscope/display"
	"github.com/data4good/donorscope/errors"
)

var (
	historyLimit     int
	historyUnmatched string
)

// HistoryCmd shows recent runs from the audit store.
var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs from the audit store",
	Long: `Show recent pipeline runs recorded in the audit database.

With --unmatched, lists the unmatched records of one run instead.`,
	RunE: runHistory,
}

func init() {
	HistoryCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of runs to show")
	HistoryCmd.Flags().StringVar(&historyUnmatched, "unmatched", "", "Show unmatched records for the given run ID")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Database.Path == "" {
		return errors.New("no audit database configured (database.path)")
	}

	d, err := db.OpenWithMigrations(cfg.Database.Path, nil)
	if err != nil {
		return err
	}
	defer d.Close()

	if historyUnmatched != "" {
		return showUnmatched(cmd, d, historyUnmatched)
	}

	runs, err := db.RecentRuns(d, historyLimit)
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(runs)
	}

	if len(runs) == 0 {
		pterm.Info.Println("No recorded runs")
		return nil
	}

	pterm.Info.Printf("Last %d runs:\n", len(runs))
	for _, r := range runs {
		pterm.Printf("  %s  %s  rows=%d resolved=%d unresolved=%d  (%s)\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.SourceRows, r.ResolvedRows, r.UnresolvedRows,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}
	return nil
}

func showUnmatched(cmd *cobra.Command, d *sql.DB, runID string) error {
	records, err := db.UnmatchedForRun(d, runID)
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(records)
	}

	if len(records) == 0 {
		pterm.Info.Printf("No unmatched records for %s\n", runID)
		return nil
	}

	pterm.Info.Printf("%d unmatched records for %s:\n", len(records), runID)
	for _, u := range records {
		pterm.Printf("  row %d - hop %d, key %q (%s)\n", u.SourceRow, u.Hop, u.RawKey, u.Reason)
	}
	return nil
}
