package report

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"

	"github.com/data4good/donorscope/join"
)

// Console summary sample size. Enough to recognize a pattern in the failures
// without flooding the terminal.
const unmatchedSampleSize = 5

// PrintSummary writes the operator-facing run summary to the terminal.
func PrintSummary(sourceRows int, rep *join.Report, personaCounts map[string]int, elapsed time.Duration) {
	resolved := sourceRows - rep.Count()

	pterm.Println()
	pterm.Success.Printf("Resolution complete!\n")
	pterm.Println()

	pterm.Info.Printf("Statistics:\n")
	pterm.Printf("  Source rows:     %d\n", sourceRows)
	pterm.Printf("  Resolved:        %s\n", pterm.Green(fmt.Sprintf("%d", resolved)))
	pterm.Printf("  Unresolved:      %s\n", pterm.Yellow(fmt.Sprintf("%d", rep.Count())))
	pterm.Printf("  Processing time: %s\n", elapsed.Round(time.Millisecond))
	pterm.Println()

	if len(personaCounts) > 0 {
		pterm.Info.Println("Personas:")
		for _, name := range sortedKeys(personaCounts) {
			pterm.Printf("  %-12s %d\n", name, personaCounts[name])
		}
		pterm.Println()
	}

	if rep.Count() > 0 {
		byReason := rep.ByReason()
		pterm.Warning.Printf("%d records did not resolve\n", rep.Count())
		for _, reason := range []join.Reason{join.ReasonMissingKey, join.ReasonNoMatch, join.ReasonAmbiguous} {
			if n := byReason[reason]; n > 0 {
				pterm.Printf("  %s: %d\n", reason, n)
			}
		}
		pterm.Println()

		pterm.Info.Printf("Sample unmatched records (showing first %d):\n", unmatchedSampleSize)
		for _, u := range rep.Sample(unmatchedSampleSize) {
			pterm.Printf("  row %d - hop %d, key %q (%s)\n", u.SourceRow, u.Hop, u.RawKey, u.Reason)
		}
		pterm.Println()
	}
}
