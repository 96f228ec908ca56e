package dataset

import (
	"fmt"
	"strings"
)

// Role names used in schema resolution failures.
const (
	RoleYear = "year"
	RoleDebt = "debt"
)

// LoadError reports that the source file could not be read or parsed as
// delimited tabular text. The message always names the attempted path so the
// user can correct it and reload; the condition is recoverable and must not
// crash the host process.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("couldn't load data from %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError wraps err as a load failure for path.
func NewLoadError(path string, err error) *LoadError {
	return &LoadError{Path: path, Err: err}
}

// SchemaError reports that one or both column roles could not be resolved
// from the file's headers. Missing lists the unresolved role names and
// Columns the headers that were available, so the message is actionable.
type SchemaError struct {
	Missing []string
	Columns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("could not resolve required column role(s) %s from columns [%s]",
		strings.Join(e.Missing, ", "), strings.Join(e.Columns, ", "))
}

// NewSchemaError records the unresolved roles against the available columns.
func NewSchemaError(missing, columns []string) *SchemaError {
	return &SchemaError{Missing: missing, Columns: columns}
}
