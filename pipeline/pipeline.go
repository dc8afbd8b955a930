// Package pipeline orchestrates one resolution run: load the configured
// sources, compute the persona table from the opportunity history, resolve
// the join path, attach personas, and emit the report artifacts.
package pipeline

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/data4good/donorscope/config"
	"github.com/data4good/donorscope/db"
	"github.com/data4good/donorscope/errors"
	"github.com/data4good/donorscope/join"
	"github.com/data4good/donorscope/logger"
	"github.com/data4good/donorscope/persona"
	"github.com/data4good/donorscope/relation"
	"github.com/data4good/donorscope/report"
	"github.com/data4good/donorscope/trends"
)

// Result summarizes one finished run.
type Result struct {
	RunID          string
	StartedAt      time.Time
	FinishedAt     time.Time
	SourceRows     int
	ResolvedRows   int
	UnresolvedRows int

	Report    *join.Report
	Personas  map[string]int
	Artifacts *report.Artifacts
}

// Elapsed is the wall time the run took.
func (r *Result) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// LoadSources loads every configured source from the input directory.
func LoadSources(cfg *config.Config) (join.Relations, error) {
	rels := make(join.Relations, len(cfg.Input.Sources))
	for name, src := range cfg.Input.Sources {
		rel, err := relation.Load(relation.Spec{
			Name:     name,
			Path:     filepath.Join(cfg.Input.Dir, src.File),
			Required: src.Required,
			Renames:  src.Renames,
		})
		if err != nil {
			return nil, err
		}
		rels[name] = rel
	}
	return rels, nil
}

// Run executes the full pipeline against cfg and writes artifacts into the
// configured output directory. When a database path is configured the run is
// recorded in the audit store.
func Run(cfg *config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	runID := "run_" + uuid.NewString()[:8]
	logger.Infow("Starting resolution run", "run_id", runID, "source", cfg.Input.Dir)

	rels, err := LoadSources(cfg)
	if err != nil {
		return nil, err
	}

	// Persona table from the opportunity history. A config without an
	// opportunities source still resolves; every record then reports as
	// unresolved in the persona column.
	var stats []persona.Stats
	table := map[string]string{}
	if opps, ok := rels[config.SourceOpportunities]; ok {
		stats, err = persona.Aggregate(opps, cfg.Persona.ReferenceYear)
		if err != nil {
			return nil, err
		}
		table = persona.BuildTable(stats, persona.Thresholds{
			AmountThreshold:  cfg.Persona.AmountThreshold,
			DormancyMaxYears: cfg.Persona.DormancyMaxYears,
		})
	} else {
		logger.Warnw("No opportunities source configured; persona table is empty")
	}

	// Giving trends need export columns (record type, first gift year, close
	// probability) that not every extract carries; absent columns skip the
	// analysis rather than failing the run.
	var giving *trends.Analysis
	if accounts, ok := rels[config.SourceAccounts]; ok {
		giving = trends.Compute(accounts, rels[config.SourceOpportunities], cfg.Persona.ReferenceYear)
		if giving == nil {
			logger.Infow("Trend columns absent; skipping giving trend aggregates")
		}
	}

	path := join.PathFromConfig(cfg.Pipeline.Hops)
	joined, rep, err := join.Resolve(rels, path)
	if err != nil {
		return nil, err
	}

	final, err := join.Attach(joined, cfg.Pipeline.PersonaKey, table)
	if err != nil {
		return nil, err
	}

	arts, err := report.Emit(cfg.Output.Dir, report.Inputs{
		Resolved:  final,
		Report:    rep,
		Stats:     stats,
		Summary:   persona.Summarize(stats),
		Addresses: rels[config.SourceAddresses],
		Trends:    giving,
		PDFReport: cfg.Output.PDFReport,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:          runID,
		StartedAt:      started,
		FinishedAt:     time.Now(),
		SourceRows:     final.Len(),
		ResolvedRows:   final.Len() - rep.Count(),
		UnresolvedRows: rep.Count(),
		Report:         rep,
		Personas:       report.PersonaCounts(final),
		Artifacts:      arts,
	}

	if cfg.Database.Path != "" {
		if err := recordRun(cfg, result); err != nil {
			// The artifacts are already on disk; a broken audit store
			// should not fail the run.
			logger.Errorw("Failed to record run in audit store", "run_id", runID, "error", err)
		}
	}

	logger.Infow("Resolution run complete",
		"run_id", runID,
		"rows", result.SourceRows,
		"unresolved", result.UnresolvedRows,
		"duration_ms", result.Elapsed().Milliseconds(),
	)
	return result, nil
}

func recordRun(cfg *config.Config, result *Result) error {
	d, err := db.OpenWithMigrations(cfg.Database.Path, logger.Logger)
	if err != nil {
		return errors.Wrap(err, "open audit store")
	}
	defer d.Close()

	return db.RecordRun(d, db.RunRecord{
		ID:             result.RunID,
		StartedAt:      result.StartedAt,
		FinishedAt:     result.FinishedAt,
		InputDir:       cfg.Input.Dir,
		OutputDir:      cfg.Output.Dir,
		SourceRows:     result.SourceRows,
		ResolvedRows:   result.ResolvedRows,
		UnresolvedRows: result.UnresolvedRows,
	}, result.Report.Records)
}
