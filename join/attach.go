package join

import (
	"github.com/data4good/donorscope/errors"
	"github.com/data4good/donorscope/ident"
	"github.com/data4good/donorscope/logger"
	"github.com/data4good/donorscope/relation"
)

// Unresolved is the persona marker for records no join path carried to a
// persona label. Unresolved records are retained in the output, never dropped.
const Unresolved = "UNRESOLVED"

// PersonaColumn is the name of the column Attach adds to the resolved relation.
const PersonaColumn = "PERSONA"

// Attach performs the final hop: looking up each fully joined record's target
// identifier in the persona table and appending the label as a new column.
//
// The table must be keyed by normalized identifiers (the persona package
// builds it that way). Records that did not survive the join path, or whose
// identifier has no persona, get the Unresolved marker. Every record of the
// joined relation appears exactly once in the result.
func Attach(joined *Joined, personaKey string, table map[string]string) (*relation.Relation, error) {
	keyCol, ok := joined.KeyColumn(personaKey)
	if !ok {
		return nil, errors.Newf("persona key column %q not present in joined relation", personaKey)
	}
	keyIdx, _ := joined.Relation.ColumnIndex(keyCol)

	ns := ident.Namespace{Name: "persona-key"}

	out := relation.New(joined.Relation.Name, append(append([]string(nil), joined.Relation.Columns...), PersonaColumn))

	attached := 0
	for i := 0; i < joined.Relation.Len(); i++ {
		persona := Unresolved
		if joined.Resolved[i] {
			if canon, err := ns.Normalize(joined.Relation.Row(i)[keyIdx]); err == nil {
				if label, ok := table[canon]; ok {
					persona = label
					attached++
				}
			}
		}
		record := append(append([]string(nil), joined.Relation.Row(i)...), persona)
		if err := out.Append(record); err != nil {
			return nil, err
		}
	}

	logger.Infow("Personas attached",
		"rows", out.Len(),
		"unresolved", out.Len()-attached,
	)

	return out, nil
}
