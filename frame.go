package reportpipe

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind discriminates the value held in a frame cell.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindTime
)

// Role marks a column as a grouping dimension or a numeric measure.
type Role int

const (
	RoleDimension Role = iota
	RoleMeasure
)

// Column describes one named field of a frame.
type Column struct {
	Name string
	Role Role
}

// Dim returns a dimension column.
func Dim(name string) Column { return Column{Name: name, Role: RoleDimension} }

// Measure returns a measure column.
func Measure(name string) Column { return Column{Name: name, Role: RoleMeasure} }

// Value is a single frame cell: a null, a number, a string, or a timestamp.
// Numbers are decimals so ratio and percentage math stays exact.
//
// The zero Value is null. Null is the explicit edge-case policy for
// reporting math: a zero denominator or a missing prior period yields a
// null cell (rendered blank), never a panic, an infinity, or a zero.
type Value struct {
	kind Kind
	num  decimal.Decimal
	str  string
	ts   time.Time
}

// Null returns the null value.
func Null() Value { return Value{} }

// Number returns a numeric value.
func Number(d decimal.Decimal) Value { return Value{kind: KindNumber, num: d} }

// NumberInt returns a numeric value from an int64.
func NumberInt(n int64) Value { return Number(decimal.NewFromInt(n)) }

// NumberFloat returns a numeric value from a float64.
func NumberFloat(f float64) Value { return Number(decimal.NewFromFloat(f)) }

// Text returns a string value.
func Text(s string) Value { return Value{kind: KindString, str: s} }

// Timestamp returns a time value.
func Timestamp(t time.Time) Value { return Value{kind: KindTime, ts: t} }

// Kind reports what the cell holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Decimal returns the numeric value, or decimal zero for non-numbers.
func (v Value) Decimal() decimal.Decimal { return v.num }

// Float64 returns the numeric value as a float64, or 0 for non-numbers.
func (v Value) Float64() float64 { return v.num.InexactFloat64() }

// Time returns the timestamp value, or the zero time for non-times.
func (v Value) Time() time.Time { return v.ts }

// Equal reports whether two cells hold the same value.
// Numbers compare by numeric equality, so 30 equals 30.0.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num.Equal(o.num)
	case KindString:
		return v.str == o.str
	case KindTime:
		return v.ts.Equal(o.ts)
	default:
		return true
	}
}

// String implements fmt.Stringer for display. Null renders as the empty
// string so missing comparisons appear blank rather than zero.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return v.num.String()
	case KindString:
		return v.str
	case KindTime:
		return v.ts.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Frame is an in-flight result set: a sequence of rows, each an ordered
// tuple of named fields (dimension keys plus numeric measures). A frame is
// produced fresh by each pipeline run and discarded after rendering; it has
// no identity or persistence beyond a single execution.
type Frame struct {
	Cols []Column
	Rows [][]Value
}

// NewFrame creates an empty frame with the given columns.
func NewFrame(cols ...Column) *Frame {
	return &Frame{Cols: cols}
}

// Append adds one row. The number of values must match the column count.
func (f *Frame) Append(vals ...Value) error {
	if len(vals) != len(f.Cols) {
		return fmt.Errorf("frame: row has %d values, frame has %d columns", len(vals), len(f.Cols))
	}
	f.Rows = append(f.Rows, vals)
	return nil
}

// MustAppend adds one row and panics on arity mismatch. Intended for
// fixtures and transforms that construct rows from known columns.
func (f *Frame) MustAppend(vals ...Value) {
	if err := f.Append(vals...); err != nil {
		panic(err)
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Rows) }

// ColumnIndex returns the position of a named column.
func (f *Frame) ColumnIndex(name string) (int, bool) {
	for i, c := range f.Cols {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Value returns the cell at a row and named column.
func (f *Frame) Value(row int, col string) (Value, bool) {
	i, ok := f.ColumnIndex(col)
	if !ok || row < 0 || row >= len(f.Rows) {
		return Value{}, false
	}
	return f.Rows[row][i], true
}

// Clone returns a deep copy of the frame. Values are immutable, so rows are
// copied at the slice level.
func (f *Frame) Clone() *Frame {
	out := &Frame{Cols: make([]Column, len(f.Cols)), Rows: make([][]Value, len(f.Rows))}
	copy(out.Cols, f.Cols)
	for i, row := range f.Rows {
		out.Rows[i] = make([]Value, len(row))
		copy(out.Rows[i], row)
	}
	return out
}

// Equal reports whether two frames have identical columns and cells.
// Useful for asserting transform purity in tests.
func (f *Frame) Equal(o *Frame) bool {
	if len(f.Cols) != len(o.Cols) || len(f.Rows) != len(o.Rows) {
		return false
	}
	for i := range f.Cols {
		if f.Cols[i] != o.Cols[i] {
			return false
		}
	}
	for i := range f.Rows {
		for j := range f.Rows[i] {
			if !f.Rows[i][j].Equal(o.Rows[i][j]) {
				return false
			}
		}
	}
	return true
}
