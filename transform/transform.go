// Package transform reshapes extracted frames into comparison shapes:
// funnel conversion rates, cohort retention, period-over-period trends,
// and pivots.
//
// Every transform is a pure function of its input frame: identical input
// produces identical output, and the input frame is never mutated. The
// shared edge-case policy is null, not failure: a ratio with a zero
// denominator is a null cell, and a missing prior-period comparison is a
// null cell rendered blank rather than zero.
package transform

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/trailblazer-analytics/reportpipe"
)

var hundred = decimal.NewFromInt(100)

// ratePct returns num/den as a percentage rounded to two places, or null
// when the denominator is zero.
func ratePct(num, den decimal.Decimal) reportpipe.Value {
	if den.IsZero() {
		return reportpipe.Null()
	}
	return reportpipe.Number(num.Div(den).Mul(hundred).Round(2))
}

// columnIndex resolves a named column or reports which transform wanted it.
func columnIndex(f *reportpipe.Frame, op, name string) (int, error) {
	i, ok := f.ColumnIndex(name)
	if !ok {
		return 0, fmt.Errorf("%s: frame has no column %q", op, name)
	}
	return i, nil
}

// numberAt returns the numeric cell at (row, col), distinguishing null
// from non-numeric values.
func numberAt(f *reportpipe.Frame, op string, row, col int) (decimal.Decimal, bool, error) {
	v := f.Rows[row][col]
	if v.IsNull() {
		return decimal.Decimal{}, false, nil
	}
	if v.Kind() != reportpipe.KindNumber {
		return decimal.Decimal{}, false, fmt.Errorf("%s: row %d column %q is not numeric", op, row, f.Cols[col].Name)
	}
	return v.Decimal(), true, nil
}
