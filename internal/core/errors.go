package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for import handling.
var (
	ErrNoFile            = errors.New("no file provided")
	ErrNotCSV            = errors.New("file is not csv type")
	ErrEmptyFile         = errors.New("empty file: no header row")
	ErrMissingNameColumn = errors.New("missing required column: Name")
	ErrTooManyImports    = errors.New("too many imports in progress, please try again later")
)

// ValidationError carries per-field messages for rejected input.
// Nothing has been written to the store when it is returned.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range e.fieldNames() {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldNames returns the failing fields in form order, unknown keys last.
func (e *ValidationError) fieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, aok := fieldIndex[names[i]]
		b, bok := fieldIndex[names[j]]
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		default:
			return names[i] < names[j]
		}
	})
	return names
}

// ConflictError reports a uniqueness violation attributed to one field.
type ConflictError struct {
	Field      string
	Constraint string
	Message    string
	Err        error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s (constraint %s)", e.Message, e.Constraint)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// FieldErrors returns the conflict in the same shape validation failures use.
func (e *ConflictError) FieldErrors() FieldErrors {
	return FieldErrors{e.Field: {e.Message}}
}

// ImportError identifies the CSV line that aborted an import.
type ImportError struct {
	Line int
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
