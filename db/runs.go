package db

import (
	"database/sql"
	"time"

	"github.com/data4good/donorscope/errors"
	"github.com/data4good/donorscope/join"
)

// RunRecord is one audited pipeline run.
type RunRecord struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	InputDir       string
	OutputDir      string
	SourceRows     int
	ResolvedRows   int
	UnresolvedRows int
}

// RecordRun inserts a finished run and its unmatched records in one
// transaction. A partially recorded run would misreport history, so either
// everything lands or nothing does.
func RecordRun(db *sql.DB, run RunRecord, unmatched []join.Unmatched) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin run record tx")
	}

	_, err = tx.Exec(`
		INSERT INTO runs (id, started_at, finished_at, input_dir, output_dir, source_rows, resolved_rows, unresolved_rows)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.InputDir, run.OutputDir,
		run.SourceRows, run.ResolvedRows, run.UnresolvedRows,
	)
	if err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "insert run %s", run.ID)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO unmatched_records (run_id, source_row, hop, raw_key, reason)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "prepare unmatched insert")
	}
	defer stmt.Close()

	for _, u := range unmatched {
		if _, err := stmt.Exec(run.ID, u.SourceRow, u.Hop, u.RawKey, string(u.Reason)); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "insert unmatched record for run %s", run.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "commit run %s", run.ID)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func RecentRuns(db *sql.DB, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.Query(`
		SELECT id, started_at, finished_at, input_dir, output_dir, source_rows, resolved_rows, unresolved_rows
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query recent runs")
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.InputDir, &r.OutputDir,
			&r.SourceRows, &r.ResolvedRows, &r.UnresolvedRows); err != nil {
			return nil, errors.Wrap(err, "scan run row")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// UnmatchedForRun returns the unmatched records recorded for a run, in
// source row order.
func UnmatchedForRun(db *sql.DB, runID string) ([]join.Unmatched, error) {
	rows, err := db.Query(`
		SELECT source_row, hop, raw_key, reason
		FROM unmatched_records
		WHERE run_id = ?
		ORDER BY source_row`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "query unmatched records for run %s", runID)
	}
	defer rows.Close()

	var records []join.Unmatched
	for rows.Next() {
		var u join.Unmatched
		var reason string
		if err := rows.Scan(&u.SourceRow, &u.Hop, &u.RawKey, &reason); err != nil {
			return nil, errors.Wrap(err, "scan unmatched record")
		}
		u.Reason = join.Reason(reason)
		records = append(records, u)
	}
	return records, rows.Err()
}
