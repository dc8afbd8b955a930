// Package relation holds in-memory tabular data loaded from CSV exports.
//
// A Relation is an ordered sequence of string records with a fixed set of
// named columns. Values stay strings as loaded; key canonicalization is the
// ident package's job at join time, so a column that holds 123 in one export
// and "123.0" in another still compares equal where it matters.
package relation

import (
	"github.com/data4good/donorscope/errors"
)

// Relation is an ordered set of records with named columns.
// Row order is the source file's order; join determinism and reproducible
// unmatched reports depend on it, so nothing here reorders rows.
type Relation struct {
	Name    string
	Columns []string
	rows    [][]string
	colIdx  map[string]int
}

// New creates an empty relation with the given column schema.
func New(name string, columns []string) *Relation {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return &Relation{
		Name:    name,
		Columns: append([]string(nil), columns...),
		colIdx:  idx,
	}
}

// Append adds a record. The record must match the column count exactly.
func (r *Relation) Append(row []string) error {
	if len(row) != len(r.Columns) {
		return errors.Newf("relation %q: record has %d fields, schema has %d columns",
			r.Name, len(row), len(r.Columns))
	}
	r.rows = append(r.rows, row)
	return nil
}

// Len returns the number of records.
func (r *Relation) Len() int {
	return len(r.rows)
}

// Row returns the record at index i. The returned slice is not a copy.
func (r *Relation) Row(i int) []string {
	return r.rows[i]
}

// ColumnIndex returns the position of a named column.
func (r *Relation) ColumnIndex(name string) (int, bool) {
	i, ok := r.colIdx[name]
	return i, ok
}

// HasColumn reports whether the relation declares the named column.
func (r *Relation) HasColumn(name string) bool {
	_, ok := r.colIdx[name]
	return ok
}

// Value returns the value of the named column in record i.
func (r *Relation) Value(i int, column string) (string, bool) {
	idx, ok := r.colIdx[column]
	if !ok {
		return "", false
	}
	return r.rows[i][idx], true
}
