package table

import (
	"fmt"
	"strings"
)

// LoadError indicates the source could not be opened or read as delimited text.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load failed"
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SchemaError lists expected columns absent from a table header.
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("schema %s: missing column(s): %s", e.Path, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("schema: missing column(s): %s", strings.Join(e.Missing, ", "))
}
