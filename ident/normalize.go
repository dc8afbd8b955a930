// Package ident canonicalizes identifier values so equality comparison is
// meaningful across sources that store the same logical ID differently.
//
// The motivating failure: one export holds an account number as 123, another
// as "123.0". Printed side by side they look identical, compared raw they
// never match, and a merge keyed on them silently produces zero rows. Every
// join key passes through Normalize before comparison so that mismatch class
// cannot recur.
//
// Namespaces are declarative: an identifier is only meaningful together with
// its namespace, and nothing here joins across namespaces: callers declare
// which namespace each key column belongs to and must not conflate them even
// when canonical forms coincide textually.
package ident

import (
	"math"
	"strconv"
	"strings"

	"github.com/data4good/donorscope/errors"
)

// Namespace identifies one identifier system (short account codes, long
// opaque IDs, person IDs). Donor IDs are typically case-sensitive codes, so
// case is preserved unless the namespace opts into folding.
type Namespace struct {
	Name     string
	FoldCase bool
}

// Normalize produces the canonical form of a raw identifier value.
//
// Rules:
//   - incidental whitespace is trimmed
//   - empty/missing values return ErrUnnormalizable; missing keys must never
//     match each other
//   - numeric-looking values are unified to a single textual form, so 123,
//     "123" and "123.0" all normalize to "123"
//   - case is preserved unless the namespace folds it
func (ns Namespace) Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", errors.Wrapf(errors.ErrUnnormalizable, "namespace %q", ns.Name)
	}

	if canon, ok := normalizeNumeric(s); ok {
		return canon, nil
	}

	if ns.FoldCase {
		s = strings.ToLower(s)
	}
	return s, nil
}

// normalizeNumeric unifies numeric representations. Only values that parse
// entirely as a finite number are touched; alphanumeric codes pass through.
//
// Integer-valued strings take an exact path: long account numbers exceed
// float64's 2^53 integer range, and rounding them would collapse distinct
// IDs into one canonical form. Only true decimals go through float parsing.
func normalizeNumeric(s string) (string, bool) {
	if canon, ok := normalizeInteger(s); ok {
		return canon, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// normalizeInteger canonicalizes integer-valued strings without a float64
// round trip. A trailing all-zero fraction ("123.0", "123.00") still counts
// as integral; exports produce that form when a numeric column passes
// through a float dtype.
func normalizeInteger(s string) (string, bool) {
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		frac := s[dot+1:]
		if frac == "" || strings.Trim(frac, "0") != "" {
			return "", false
		}
		s = s[:dot]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}
