package transform

import (
	"github.com/trailblazer-analytics/reportpipe"
)

// Trend adds period-over-period comparison columns to a frame whose rows
// are consecutive periods in ascending order. For each selected measure m,
// the output grows two columns: m_prev (the previous row's value) and
// m_change_pct (the percentage change against it).
//
// The first row has no prior period: its comparison cells are null,
// rendered blank rather than zero. A prior value of zero or null likewise
// yields a null change.
type Trend struct {
	// PeriodColumn names the period dimension. Default "period". The
	// column must exist; rows are assumed already ordered by it.
	PeriodColumn string
	// Measures selects which measure columns to compare. Empty means
	// every RoleMeasure column.
	Measures []string
}

func (t Trend) periodColumn() string {
	if t.PeriodColumn == "" {
		return "period"
	}
	return t.PeriodColumn
}

// Apply appends the comparison columns. Pure: the input frame is not
// modified.
func (t Trend) Apply(frame *reportpipe.Frame) (*reportpipe.Frame, error) {
	if _, err := columnIndex(frame, "trend", t.periodColumn()); err != nil {
		return nil, err
	}

	measures := t.Measures
	if len(measures) == 0 {
		for _, c := range frame.Cols {
			if c.Role == reportpipe.RoleMeasure {
				measures = append(measures, c.Name)
			}
		}
	}

	measureIdx := make([]int, len(measures))
	for i, m := range measures {
		idx, err := columnIndex(frame, "trend", m)
		if err != nil {
			return nil, err
		}
		measureIdx[i] = idx
	}

	cols := make([]reportpipe.Column, len(frame.Cols), len(frame.Cols)+2*len(measures))
	copy(cols, frame.Cols)
	for _, m := range measures {
		cols = append(cols, reportpipe.Measure(m+"_prev"), reportpipe.Measure(m+"_change_pct"))
	}
	out := reportpipe.NewFrame(cols...)

	for i := range frame.Rows {
		row := make([]reportpipe.Value, len(frame.Rows[i]), len(cols))
		copy(row, frame.Rows[i])

		for _, idx := range measureIdx {
			prev := reportpipe.Null()
			change := reportpipe.Null()

			if i > 0 {
				prev = frame.Rows[i-1][idx]
			}
			cur := frame.Rows[i][idx]

			if prev.Kind() == reportpipe.KindNumber && cur.Kind() == reportpipe.KindNumber && !prev.Decimal().IsZero() {
				change = ratePct(cur.Decimal().Sub(prev.Decimal()), prev.Decimal())
			}

			row = append(row, prev, change)
		}

		out.MustAppend(row...)
	}

	return out, nil
}
