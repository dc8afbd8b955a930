// Package join executes declarative multi-hop equi-join paths across loaded
// relations and reports, rather than hides, every record the chain loses.
//
// The historical failure mode this package exists to prevent: a chain of
// merges silently producing an empty result with no indication of where it
// broke. Every transformation here is total over its input: each source
// record maps to exactly one output record, success or explicit failure tag.
package join

import (
	"github.com/data4good/donorscope/config"
	"github.com/data4good/donorscope/relation"
)

// Hop is one equi-join step: rows of the left relation matched against rows
// of the right relation on equality of normalized key values.
type Hop struct {
	Left     string
	LeftKey  string
	Right    string
	RightKey string
	FoldCase bool
}

// PathFromConfig converts configured hops into a join path.
func PathFromConfig(hops []config.HopConfig) []Hop {
	path := make([]Hop, len(hops))
	for i, h := range hops {
		path[i] = Hop{
			Left:     h.Left,
			LeftKey:  h.LeftKey,
			Right:    h.Right,
			RightKey: h.RightKey,
			FoldCase: h.FoldCase,
		}
	}
	return path
}

// Relations indexes loaded relations by their logical source name.
type Relations map[string]*relation.Relation
