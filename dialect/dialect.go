// Package dialect abstracts vendor-specific SQL syntax behind a single
// capability interface, one variant per supported database. Call sites ask
// the dialect for date truncation, percentiles, upsert syntax, and
// placeholder format instead of branching on dialect strings.
package dialect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
)

// Name identifies a supported SQL dialect.
type Name string

const (
	Postgres  Name = "postgres"
	MySQL     Name = "mysql"
	SQLServer Name = "sqlserver"
	SQLite    Name = "sqlite"
	BigQuery  Name = "bigquery"
	Snowflake Name = "snowflake"
)

// Grain is a date-truncation granularity.
type Grain string

const (
	GrainDay     Grain = "day"
	GrainWeek    Grain = "week"
	GrainMonth   Grain = "month"
	GrainQuarter Grain = "quarter"
	GrainYear    Grain = "year"
)

// Dialect is the capability interface every vendor variant implements.
// Methods that a vendor genuinely cannot express return ok=false; call
// sites turn that into a descriptive error rather than emitting SQL that
// the store would reject.
type Dialect interface {
	// Name returns the dialect identifier.
	Name() Name

	// Driver returns the database/sql driver name used to open
	// connections for this dialect.
	Driver() string

	// Placeholder returns the parameter placeholder format.
	Placeholder() squirrel.PlaceholderFormat

	// DateTrunc returns the expression truncating expr to the grain.
	DateTrunc(g Grain, expr string) (string, bool)

	// Percentile returns the continuous-percentile expression for the
	// given fraction (0 < fraction < 1) over expr.
	Percentile(fraction float64, expr string) (string, bool)

	// UpsertSuffix returns the INSERT suffix implementing
	// insert-or-update for the given conflict and update columns.
	// Dialects whose only upsert is MERGE return ok=false.
	UpsertSuffix(conflictCols, updateCols []string) (string, bool)

	// CurrentTimestamp returns the current-timestamp expression.
	CurrentTimestamp() string

	// ColumnsQuery returns the query listing the column names of a
	// table, in ordinal order, with its bound arguments.
	ColumnsQuery(table string) (string, []any)
}

var registry = map[Name]Dialect{
	Postgres:  postgres{},
	MySQL:     mysql{},
	SQLServer: sqlserver{},
	SQLite:    sqlite{},
	BigQuery:  bigquery{},
	Snowflake: snowflake{},
}

// Parse returns the dialect for a name such as "postgres" or "sqlite".
// Matching is case-insensitive. Unknown names produce an error listing the
// supported dialects.
func Parse(s string) (Dialect, error) {
	d, ok := registry[Name(strings.ToLower(strings.TrimSpace(s)))]
	if !ok {
		return nil, fmt.Errorf("dialect: unknown dialect %q (supported: %s)", s, strings.Join(Names(), ", "))
	}
	return d, nil
}

// Names returns the supported dialect names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, string(n))
	}
	sort.Strings(names)
	return names
}
