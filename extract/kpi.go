package extract

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/shopspring/decimal"

	"github.com/trailblazer-analytics/reportpipe"
)

// KPI is one scalar metric: an aggregate expression evaluated over the
// reporting window, such as total revenue for the last 30 days.
type KPI struct {
	Name       string
	Expr       string // SQL aggregate, e.g. "SUM(order_total)"
	Table      string
	TimeColumn string
	Filters    map[string]any
}

// scalarRow receives the single aggregate value of a KPI query.
type scalarRow struct {
	Value sql.NullFloat64 `db:"value"`
}

// Scalar evaluates one KPI over the window. An aggregate over zero rows
// (SUM, AVG of an empty window) comes back NULL and yields a null cell.
func (s *SQL) Scalar(ctx context.Context, kpi KPI, window reportpipe.Window) (reportpipe.Value, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return reportpipe.Null(), &QueryError{Op: "connect", Err: err}
	}
	defer conn.Close()

	return s.scalarOn(ctx, conn, kpi, window)
}

func (s *SQL) scalarOn(ctx context.Context, q sqlscan.Querier, kpi KPI, window reportpipe.Window) (reportpipe.Value, error) {
	b := squirrel.Select(kpi.Expr + " AS value").
		From(kpi.Table).
		PlaceholderFormat(s.d.Placeholder())

	if kpi.TimeColumn != "" && !window.IsZero() {
		b = b.Where(squirrel.GtOrEq{kpi.TimeColumn: window.Start}).
			Where(squirrel.Lt{kpi.TimeColumn: window.End})
	}
	if len(kpi.Filters) > 0 {
		b = b.Where(squirrel.Eq(kpi.Filters))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return reportpipe.Null(), &QueryError{Op: "build", Err: err}
	}

	var row scalarRow
	if err := sqlscan.Get(ctx, q, &row, query, args...); err != nil {
		return reportpipe.Null(), &QueryError{Op: "query", Query: query, Err: err}
	}
	if !row.Value.Valid {
		return reportpipe.Null(), nil
	}
	return reportpipe.NumberFloat(row.Value.Float64), nil
}

// KPISummary evaluates each KPI over the window and over the prior window
// of equal length, producing the executive-summary frame: one row per KPI
// with its value, the prior-period value, and the period-over-period growth
// percentage.
//
// A missing prior value renders blank rather than zero, and a zero prior
// yields a null growth rather than a division error.
func (s *SQL) KPISummary(ctx context.Context, kpis []KPI, window reportpipe.Window) (*reportpipe.Frame, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, &QueryError{Op: "connect", Err: err}
	}
	defer conn.Close()

	frame := reportpipe.NewFrame(
		reportpipe.Dim("kpi"),
		reportpipe.Measure("value"),
		reportpipe.Measure("prior"),
		reportpipe.Measure("growth_pct"),
	)

	prior := window.Prior()
	for _, kpi := range kpis {
		cur, err := s.scalarOn(ctx, conn, kpi, window)
		if err != nil {
			return nil, err
		}
		prev, err := s.scalarOn(ctx, conn, kpi, prior)
		if err != nil {
			return nil, err
		}
		frame.MustAppend(reportpipe.Text(kpi.Name), cur, prev, growth(cur, prev))
	}
	return frame, nil
}

// growth computes (cur-prev)/prev as a percentage, null when either side
// is null or the prior is zero.
func growth(cur, prev reportpipe.Value) reportpipe.Value {
	if cur.IsNull() || prev.IsNull() || prev.Decimal().IsZero() {
		return reportpipe.Null()
	}
	pct := cur.Decimal().Sub(prev.Decimal()).
		Div(prev.Decimal()).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return reportpipe.Number(pct)
}
