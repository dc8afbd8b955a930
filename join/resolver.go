package join

import (
	"fmt"

	"github.com/data4good/donorscope/errors"
	"github.com/data4good/donorscope/ident"
	"github.com/data4good/donorscope/logger"
	"github.com/data4good/donorscope/relation"
)

// Joined is the result of resolving a join path: one output record per
// source record, in source order, with hop-contributed columns empty where
// the chain broke.
type Joined struct {
	Relation *relation.Relation
	Resolved []bool // per source row: did it survive every hop
	path     []Hop
}

// KeyColumn maps a configured key column name to its name in the joined
// relation, accounting for collision prefixes added during resolution.
// The last hop's contribution wins, since the persona table is keyed by the
// identifier reached at the end of the path.
func (j *Joined) KeyColumn(name string) (string, bool) {
	if len(j.path) > 0 {
		for hop := len(j.path) - 1; hop >= 0; hop-- {
			rel := j.path[hop].Right
			// The hop-numbered form is used when the relation name alone did
			// not disambiguate, so it identifies this hop's contribution more
			// precisely and is checked first.
			numbered := fmt.Sprintf("%s#%d.%s", rel, hop, name)
			if j.Relation.HasColumn(numbered) {
				return numbered, true
			}
			prefixed := rel + "." + name
			if j.Relation.HasColumn(prefixed) {
				return prefixed, true
			}
		}
	}
	if j.Relation.HasColumn(name) {
		return name, true
	}
	return "", false
}

// Path returns the hops this result was resolved with.
func (j *Joined) Path() []Hop {
	return j.path
}

// Resolve executes the join path against the loaded relations.
//
// Hops are processed in order. At each hop the surviving record's key value
// is normalized and looked up in an index of the right relation built on
// normalized keys. Exactly one match advances the record; zero, ambiguous,
// or missing keys classify it unresolved at that hop and route it to the
// report, never silently dropped. The live set only shrinks, and every
// source record appears exactly once in the output.
//
// Structural problems (unknown relation, key column absent from its
// relation's schema) are fatal: they mean the path disagrees with the data's
// shape, not that coverage is partial.
func Resolve(rels Relations, path []Hop) (*Joined, *Report, error) {
	if len(path) == 0 {
		return nil, nil, errors.New("join path has no hops")
	}

	source, ok := rels[path[0].Left]
	if !ok {
		return nil, nil, errors.Newf("join path source relation %q not loaded", path[0].Left)
	}

	// Validate the chain shape and build per-hop key indexes up front so a
	// misconfigured path fails before any per-record work.
	type hopIndex struct {
		right    *relation.Relation
		keyIdx   int
		ns       ident.Namespace
		rowsFor  map[string][]int
		outNames []string
	}

	taken := make(map[string]bool, len(source.Columns))
	outColumns := append([]string(nil), source.Columns...)
	for _, c := range source.Columns {
		taken[c] = true
	}

	indexes := make([]hopIndex, len(path))
	left := source
	for i, hop := range path {
		if left.Name != hop.Left {
			return nil, nil, errors.Newf("hop %d left relation %q does not chain from %q", i, hop.Left, left.Name)
		}
		if !left.HasColumn(hop.LeftKey) {
			return nil, nil, errors.NewSchemaError(hop.Left, hop.LeftKey)
		}
		right, ok := rels[hop.Right]
		if !ok {
			return nil, nil, errors.Newf("hop %d right relation %q not loaded", i, hop.Right)
		}
		keyIdx, ok := right.ColumnIndex(hop.RightKey)
		if !ok {
			return nil, nil, errors.NewSchemaError(hop.Right, hop.RightKey)
		}

		ns := ident.Namespace{
			Name:     fmt.Sprintf("%s.%s", hop.Right, hop.RightKey),
			FoldCase: hop.FoldCase,
		}

		// Index right rows by normalized key. Rows whose key is empty are
		// unindexable: missing keys must never match each other.
		rowsFor := make(map[string][]int, right.Len())
		for r := 0; r < right.Len(); r++ {
			canon, err := ns.Normalize(right.Row(r)[keyIdx])
			if err != nil {
				continue
			}
			rowsFor[canon] = append(rowsFor[canon], r)
		}

		// Hop-contributed output columns, collision-prefixed with the hop's
		// relation name.
		outNames := make([]string, len(right.Columns))
		for c, name := range right.Columns {
			outName := name
			if taken[outName] {
				outName = hop.Right + "." + name
			}
			if taken[outName] {
				outName = fmt.Sprintf("%s#%d.%s", hop.Right, i, name)
			}
			taken[outName] = true
			outNames[c] = outName
		}
		outColumns = append(outColumns, outNames...)

		indexes[i] = hopIndex{right: right, keyIdx: keyIdx, ns: ns, rowsFor: rowsFor, outNames: outNames}
		left = right
	}

	out := relation.New(source.Name+"_resolved", outColumns)
	resolved := make([]bool, source.Len())
	report := &Report{}

	for rowIdx := 0; rowIdx < source.Len(); rowIdx++ {
		record := append([]string(nil), source.Row(rowIdx)...)

		cur := source
		curRow := rowIdx
		failedAt := -1

		for i, hop := range path {
			idx := &indexes[i]

			leftKeyIdx, _ := cur.ColumnIndex(hop.LeftKey)
			raw := cur.Row(curRow)[leftKeyIdx]

			canon, err := idx.ns.Normalize(raw)
			if err != nil {
				report.Records = append(report.Records, Unmatched{
					SourceRow: rowIdx, Hop: i, RawKey: raw, Reason: ReasonMissingKey,
				})
				failedAt = i
				break
			}

			matches := idx.rowsFor[canon]
			switch len(matches) {
			case 0:
				report.Records = append(report.Records, Unmatched{
					SourceRow: rowIdx, Hop: i, RawKey: raw, Reason: ReasonNoMatch,
				})
				failedAt = i
			case 1:
				record = append(record, idx.right.Row(matches[0])...)
				cur = idx.right
				curRow = matches[0]
				continue
			default:
				report.Records = append(report.Records, Unmatched{
					SourceRow: rowIdx, Hop: i, RawKey: raw, Reason: ReasonAmbiguous,
				})
				failedAt = i
			}
			break
		}

		if failedAt >= 0 {
			// Pad the hop-contributed columns from the failed hop onward so
			// the record still appears exactly once in the output.
			for i := failedAt; i < len(path); i++ {
				record = append(record, make([]string, len(indexes[i].outNames))...)
			}
		} else {
			resolved[rowIdx] = true
		}

		if err := out.Append(record); err != nil {
			return nil, nil, err
		}
	}

	for i := range path {
		logger.Debugw("Hop complete", "hop", i, "unresolved", report.ByHop()[i])
	}
	logger.Infow("Join path resolved",
		"rows", source.Len(),
		"unresolved", report.Count(),
	)

	return &Joined{Relation: out, Resolved: resolved, path: path}, report, nil
}
