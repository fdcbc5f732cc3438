package extract

import (
	"errors"
	"fmt"
	"strings"
)

// QueryError reports a data-access failure: store unreachable, malformed
// query, permission denied. The extractor surfaces it immediately and never
// retries; these reports are meant to be run interactively and corrected by
// the person running them.
type QueryError struct {
	Op    string // "connect", "query", "scan", "build"
	Query string // the SQL that failed, empty when none was built
	Err   error
}

func (e *QueryError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("extract: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("extract: %s: %v (query: %s)", e.Op, e.Err, e.Query)
}

func (e *QueryError) Unwrap() error { return e.Err }

// DimensionError reports a requested grouping dimension that does not exist
// on the source table. The extractor fails fast with this error rather than
// silently returning an empty result.
type DimensionError struct {
	Table     string
	Dimension string
	Known     []string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("extract: table %q has no column %q (columns: %s)",
		e.Table, e.Dimension, strings.Join(e.Known, ", "))
}

// IsDimensionError reports whether err wraps a DimensionError.
func IsDimensionError(err error) bool {
	var de *DimensionError
	return errors.As(err, &de)
}
