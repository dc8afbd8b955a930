package relation

import (
	"encoding/csv"
	"os"

	"github.com/data4good/donorscope/errors"
	"github.com/data4good/donorscope/logger"
)

// Spec declares one CSV source: where it lives, which raw columns must be
// present, and the working names raw headers are renamed to after validation.
type Spec struct {
	Name     string
	Path     string
	Required []string
	Renames  map[string]string
}

// Load reads a CSV source into a Relation.
//
// Returns MissingSourceError if the file is absent and SchemaError naming the
// missing column if a required column is not in the header. Required columns
// are checked against the raw header, before renames apply, because that is
// what the export either does or does not contain.
//
// The file is read fully and closed before returning; row order is preserved.
func Load(spec Spec) (*Relation, error) {
	if _, err := os.Stat(spec.Path); os.IsNotExist(err) {
		return nil, errors.NewMissingSource(spec.Name, spec.Path)
	}

	f, err := os.Open(spec.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "open source %q", spec.Name)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "read source %q", spec.Name)
	}
	if len(records) == 0 {
		return nil, errors.NewSchemaError(spec.Name, "(empty file, no header)")
	}

	header := records[0]
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	for _, req := range spec.Required {
		if !present[req] {
			return nil, errors.NewSchemaError(spec.Name, req)
		}
	}

	columns := make([]string, len(header))
	for i, col := range header {
		if renamed, ok := spec.Renames[col]; ok {
			columns[i] = renamed
		} else {
			columns[i] = col
		}
	}

	rel := New(spec.Name, columns)
	for _, row := range records[1:] {
		if err := rel.Append(row); err != nil {
			return nil, err
		}
	}

	logger.Debugw("Loaded source", "source", spec.Name, "rows", rel.Len())
	return rel, nil
}
