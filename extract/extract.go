// Package extract issues parameterized aggregation queries against a
// relational store and returns tabular results as frames. Queries are built
// with squirrel in the store's dialect; failures surface immediately with
// no retries.
package extract

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/shopspring/decimal"

	"github.com/trailblazer-analytics/reportpipe"
	"github.com/trailblazer-analytics/reportpipe/dialect"
)

// PeriodColumn is the alias given to the truncated time column when a
// Request sets a Grain.
const PeriodColumn = "period"

// Measure is one aggregate expression in a Request.
type Measure struct {
	Expr string // SQL aggregate, e.g. "COUNT(*)" or "SUM(order_total)"
	As   string // result column name
}

// Request describes one aggregation: a table, a reporting window on its
// time column, grouping dimensions, and the measures to compute per group.
type Request struct {
	Table      string
	TimeColumn string
	Window     reportpipe.Window

	// Dimensions are grouping columns. Each must exist on the table;
	// a missing dimension fails the extract with a DimensionError.
	Dimensions []string

	// Grain, when set, adds a truncated copy of TimeColumn as an extra
	// grouping dimension aliased as PeriodColumn.
	Grain dialect.Grain

	Measures []Measure

	// Filters are equality predicates on source columns, applied before
	// grouping. Filter columns are validated like dimensions.
	Filters map[string]any

	OrderBy []string
	Limit   uint64
}

// WithWindow returns a copy of the request bound to a window.
func (r Request) WithWindow(w reportpipe.Window) Request {
	r.Window = w
	return r
}

// SQL extracts frames from a relational store. One store connection is
// acquired for the duration of each extract and released immediately
// after; connections are never shared across concurrent extracts.
type SQL struct {
	db *sql.DB
	d  dialect.Dialect
}

// NewSQL creates an extractor over an open store handle.
func NewSQL(db *sql.DB, d dialect.Dialect) *SQL {
	return &SQL{db: db, d: d}
}

// Dialect returns the extractor's dialect.
func (s *SQL) Dialect() dialect.Dialect { return s.d }

// Columns lists the column names of a table via the dialect's
// introspection query.
func (s *SQL) Columns(ctx context.Context, table string) ([]string, error) {
	return listColumns(ctx, s.db, s.d, table)
}

func listColumns(ctx context.Context, q sqlscan.Querier, d dialect.Dialect, table string) ([]string, error) {
	query, args := d.ColumnsQuery(table)
	var names []string
	if err := sqlscan.Select(ctx, q, &names, query, args...); err != nil {
		return nil, &QueryError{Op: "query", Query: query, Err: err}
	}
	if len(names) == 0 {
		return nil, &QueryError{Op: "query", Query: query, Err: fmt.Errorf("table %q not found or has no columns", table)}
	}
	return names, nil
}

// validateColumns fails fast with a DimensionError when a requested
// grouping or filter column is absent from the source table.
func validateColumns(ctx context.Context, q sqlscan.Querier, d dialect.Dialect, req Request) error {
	known, err := listColumns(ctx, q, d, req.Table)
	if err != nil {
		return err
	}
	set := make(map[string]struct{}, len(known))
	for _, c := range known {
		set[c] = struct{}{}
	}

	check := func(col string) error {
		if _, ok := set[col]; !ok {
			return &DimensionError{Table: req.Table, Dimension: col, Known: known}
		}
		return nil
	}

	for _, dim := range req.Dimensions {
		if err := check(dim); err != nil {
			return err
		}
	}
	for col := range req.Filters {
		if err := check(col); err != nil {
			return err
		}
	}
	if req.TimeColumn != "" {
		if err := check(req.TimeColumn); err != nil {
			return err
		}
	}
	return nil
}

// Extract runs the aggregation and returns one row per group. The
// requested dimensions and filter columns are validated against the source
// schema first; an unknown column fails fast with a descriptive error
// instead of silently returning an empty result.
func (s *SQL) Extract(ctx context.Context, req Request) (*reportpipe.Frame, error) {
	if len(req.Measures) == 0 {
		return nil, &QueryError{Op: "build", Err: fmt.Errorf("request for table %q has no measures", req.Table)}
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, &QueryError{Op: "connect", Err: err}
	}
	defer conn.Close()

	if err := validateColumns(ctx, conn, s.d, req); err != nil {
		return nil, err
	}

	query, args, cols, err := s.build(req)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &QueryError{Op: "query", Query: query, Err: err}
	}
	defer rows.Close()

	frame, err := scanFrame(rows, cols)
	if err != nil {
		return nil, &QueryError{Op: "scan", Query: query, Err: err}
	}
	return frame, nil
}

// build assembles the aggregation query and the frame columns it produces.
func (s *SQL) build(req Request) (string, []any, []reportpipe.Column, error) {
	b := squirrel.Select().From(req.Table).PlaceholderFormat(s.d.Placeholder())

	var cols []reportpipe.Column
	var groupBy []string

	for _, dim := range req.Dimensions {
		b = b.Column(dim)
		groupBy = append(groupBy, dim)
		cols = append(cols, reportpipe.Dim(dim))
	}

	if req.Grain != "" {
		if req.TimeColumn == "" {
			return "", nil, nil, &QueryError{Op: "build", Err: fmt.Errorf("grain %q requires a time column", req.Grain)}
		}
		trunc, ok := s.d.DateTrunc(req.Grain, req.TimeColumn)
		if !ok {
			return "", nil, nil, &QueryError{Op: "build", Err: fmt.Errorf("dialect %s cannot truncate to %q", s.d.Name(), req.Grain)}
		}
		b = b.Column(trunc + " AS " + PeriodColumn)
		groupBy = append(groupBy, trunc)
		cols = append(cols, reportpipe.Dim(PeriodColumn))
	}

	for _, m := range req.Measures {
		b = b.Column(m.Expr + " AS " + m.As)
		cols = append(cols, reportpipe.Measure(m.As))
	}

	if req.TimeColumn != "" && !req.Window.IsZero() {
		b = b.Where(squirrel.GtOrEq{req.TimeColumn: req.Window.Start}).
			Where(squirrel.Lt{req.TimeColumn: req.Window.End})
	}
	if len(req.Filters) > 0 {
		b = b.Where(squirrel.Eq(req.Filters))
	}
	if len(groupBy) > 0 {
		b = b.GroupBy(groupBy...)
	}
	if len(req.OrderBy) > 0 {
		b = b.OrderBy(req.OrderBy...)
	}
	if req.Limit > 0 {
		b = b.Limit(req.Limit)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return "", nil, nil, &QueryError{Op: "build", Err: err}
	}
	return query, args, cols, nil
}

// scanFrame reads all rows into a frame, converting driver values to cells
// by column role.
func scanFrame(rows *sql.Rows, cols []reportpipe.Column) (*reportpipe.Frame, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(names) != len(cols) {
		return nil, fmt.Errorf("result has %d columns, expected %d", len(names), len(cols))
	}

	frame := reportpipe.NewFrame(cols...)
	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		vals := make([]reportpipe.Value, len(cols))
		for i, v := range raw {
			vals[i] = cellValue(v, cols[i].Role)
		}
		if err := frame.Append(vals...); err != nil {
			return nil, err
		}
	}
	return frame, rows.Err()
}

// cellValue converts one driver value to a frame cell. Measures arriving
// as text (drivers without numeric types, NUMERIC columns) are parsed as
// decimals; anything unparseable stays a string.
func cellValue(v any, role reportpipe.Role) reportpipe.Value {
	switch x := v.(type) {
	case nil:
		return reportpipe.Null()
	case int64:
		return reportpipe.NumberInt(x)
	case float64:
		return reportpipe.NumberFloat(x)
	case bool:
		if x {
			return reportpipe.NumberInt(1)
		}
		return reportpipe.NumberInt(0)
	case time.Time:
		return reportpipe.Timestamp(x)
	case []byte:
		return textCell(string(x), role)
	case string:
		return textCell(x, role)
	default:
		return reportpipe.Text(fmt.Sprint(x))
	}
}

func textCell(s string, role reportpipe.Role) reportpipe.Value {
	if role == reportpipe.RoleMeasure {
		if d, err := decimal.NewFromString(s); err == nil {
			return reportpipe.Number(d)
		}
	}
	return reportpipe.Text(s)
}
