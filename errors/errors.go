// Package errors provides error handling for donorscope.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints surfaced to operators on fatal pipeline errors
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Add hints for operators
//	return errors.WithHint(err, "check that the export completed")
//
//	// Check errors
//	if errors.Is(err, errors.ErrUnnormalizable) {
//	    // record as unresolved, do not abort
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// Operator-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// ErrUnnormalizable marks an identifier value that has no canonical form
// (empty or whitespace-only). Missing keys never match each other; a record
// carrying one is classified unresolved at that hop, not treated as a fault.
var ErrUnnormalizable = New("identifier value is not normalizable")

// MissingSourceError reports a required input file that does not exist.
// Fatal: the run aborts before any report is emitted.
type MissingSourceError struct {
	Source string // logical source name, e.g. "contacts"
	Path   string // resolved file path
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("required source %q missing: %s", e.Source, e.Path)
}

// NewMissingSource builds a MissingSourceError with an operator hint attached.
func NewMissingSource(source, path string) error {
	err := &MissingSourceError{Source: source, Path: path}
	return WithHint(WithStack(err), "verify the CSV export landed in the input directory")
}

// IsMissingSource reports whether err is or wraps a MissingSourceError.
func IsMissingSource(err error) bool {
	var mse *MissingSourceError
	return As(err, &mse)
}

// SchemaError reports a required column absent from a loaded relation.
// Fatal, names both the relation and the column.
type SchemaError struct {
	Relation string
	Column   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("relation %q is missing required column %q", e.Relation, e.Column)
}

// NewSchemaError builds a SchemaError with an operator hint attached.
func NewSchemaError(relation, column string) error {
	err := &SchemaError{Relation: relation, Column: column}
	return WithHint(WithStack(err), "the export schema may have changed; compare headers against the configured required columns")
}

// IsSchemaError reports whether err is or wraps a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return As(err, &se)
}

// IsFatal reports whether err must abort the run. Per-record resolution
// failures are never fatal; they accumulate in the unmatched report.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return IsMissingSource(err) || IsSchemaError(err)
}
