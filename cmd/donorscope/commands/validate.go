package commands

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/data4good/donorscope/config"
	"github.com/data4good/donorscope/display"
	"github.com/data4good/donorscope/join"
	"github.com/data4good/donorscope/relation"
)

// ValidateCmd checks the input files against the configured schemas without
// running the pipeline.
var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check input files against the configured schemas",
	Long: `Check every configured source for presence and required columns.

All problems are reported in one pass, so a fresh CRM export can be fixed
in one round trip instead of one failure at a time. When every source loads,
the join path is dry-resolved and per-hop match coverage is reported, which
makes a wrong key hypothesis visible before a full run.`,
	RunE: runValidate,
}

var validateInputDir string

func init() {
	ValidateCmd.Flags().StringVar(&validateInputDir, "input-dir", "", "Override the configured input directory")
}

type sourceProblem struct {
	Source  string `json:"source"`
	File    string `json:"file"`
	Problem string `json:"problem"`
}

type hopCoverage struct {
	Hop       int    `json:"hop"`
	Left      string `json:"left"`
	LeftKey   string `json:"left_key"`
	Right     string `json:"right"`
	RightKey  string `json:"right_key"`
	Unmatched int    `json:"unmatched"`
}

type validationResult struct {
	Checked    int             `json:"checked"`
	Problems   []sourceProblem `json:"problems"`
	SourceRows int             `json:"source_rows,omitempty"`
	Resolved   int             `json:"resolved,omitempty"`
	Coverage   []hopCoverage   `json:"coverage,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if validateInputDir != "" {
		cfg.Input.Dir = validateInputDir
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Deterministic order for output
	names := make([]string, 0, len(cfg.Input.Sources))
	for name := range cfg.Input.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	result := validationResult{Checked: len(names)}
	rels := make(join.Relations, len(names))
	for _, name := range names {
		src := cfg.Input.Sources[name]
		rel, err := relation.Load(relation.Spec{
			Name:     name,
			Path:     filepath.Join(cfg.Input.Dir, src.File),
			Required: src.Required,
			Renames:  src.Renames,
		})
		if err != nil {
			result.Problems = append(result.Problems, sourceProblem{
				Source:  name,
				File:    src.File,
				Problem: err.Error(),
			})
			continue
		}
		rels[name] = rel
	}

	// With every source loaded, dry-resolve the join path and report how far
	// records actually get per hop.
	if len(result.Problems) == 0 {
		path := join.PathFromConfig(cfg.Pipeline.Hops)
		joined, rep, err := join.Resolve(rels, path)
		if err != nil {
			result.Problems = append(result.Problems, sourceProblem{
				Source:  cfg.Pipeline.Source,
				Problem: err.Error(),
			})
		} else {
			byHop := rep.ByHop()
			result.SourceRows = joined.Relation.Len()
			result.Resolved = joined.Relation.Len() - rep.Count()
			for i, hop := range joined.Path() {
				result.Coverage = append(result.Coverage, hopCoverage{
					Hop:       i,
					Left:      hop.Left,
					LeftKey:   hop.LeftKey,
					Right:     hop.Right,
					RightKey:  hop.RightKey,
					Unmatched: byHop[i],
				})
			}
		}
	}

	if display.ShouldOutputJSON(cmd) {
		if err := display.OutputJSON(result); err != nil {
			return err
		}
		if len(result.Problems) > 0 {
			return fmt.Errorf("%d sources failed validation", len(result.Problems))
		}
		return nil
	}

	if len(result.Problems) > 0 {
		pterm.Warning.Printf("%d of %d sources have problems:\n", len(result.Problems), result.Checked)
		for _, p := range result.Problems {
			if p.File != "" {
				pterm.Printf("  %s (%s): %s\n", p.Source, p.File, p.Problem)
			} else {
				pterm.Printf("  %s: %s\n", p.Source, p.Problem)
			}
		}
		return fmt.Errorf("%d sources failed validation", len(result.Problems))
	}

	pterm.Success.Printf("All %d sources are valid\n", result.Checked)
	pterm.Println()
	pterm.Info.Printf("Join path coverage (%d of %d rows resolve):\n", result.Resolved, result.SourceRows)
	for _, c := range result.Coverage {
		pterm.Printf("  hop %d  %s.%s -> %s.%s  unmatched=%d\n",
			c.Hop, c.Left, c.LeftKey, c.Right, c.RightKey, c.Unmatched)
	}
	return nil
}
