package join

// Reason classifies why a record left the live set at a hop.
type Reason string

const (
	// ReasonMissingKey marks a record whose key value was empty at the hop.
	// Partial non-coverage is expected, not exceptional.
	ReasonMissingKey Reason = "missing-key"

	// ReasonNoMatch marks a record whose normalized key found no right-side row.
	ReasonNoMatch Reason = "no-match"

	// ReasonAmbiguous marks a record whose normalized key matched more than one
	// right-side row. Arbitrarily picking one would be silent data corruption,
	// so the record is routed here instead.
	ReasonAmbiguous Reason = "ambiguous"
)

// Unmatched is one record the join chain could not carry to the end:
// which source row, at which hop, on which raw key value, and why.
type Unmatched struct {
	SourceRow int    // index into the source relation (0-based)
	Hop       int    // hop index where resolution failed (0-based)
	RawKey    string // the key value as it appeared in the data
	Reason    Reason
}

// Report accumulates unmatched records across all hops of a resolution.
// Its non-emptiness is itself a signal operators must be able to inspect.
type Report struct {
	Records []Unmatched
}

// Count returns the number of unmatched records.
func (r *Report) Count() int {
	return len(r.Records)
}

// ByReason tallies unmatched records per failure reason.
func (r *Report) ByReason() map[Reason]int {
	tally := make(map[Reason]int)
	for _, rec := range r.Records {
		tally[rec.Reason]++
	}
	return tally
}

// ByHop tallies unmatched records per hop index.
func (r *Report) ByHop() map[int]int {
	tally := make(map[int]int)
	for _, rec := range r.Records {
		tally[rec.Hop]++
	}
	return tally
}

// Sample returns up to n unmatched records, in source order, for operator
// inspection.
func (r *Report) Sample(n int) []Unmatched {
	if n > len(r.Records) {
		n = len(r.Records)
	}
	return r.Records[:n]
}
