package transform

import (
	"github.com/trailblazer-analytics/reportpipe"
)

// Pivot reshapes long (row key, column key, value) rows into a wide frame:
// one output row per distinct row key, one measure column per distinct
// column key. Column order follows first appearance in the input; missing
// combinations are null cells. When the same (row, column) pair appears
// more than once, the later row wins.
//
// The classic use is turning a cohort retention list into the familiar
// cohort-by-period matrix.
type Pivot struct {
	RowColumn    string
	ColumnColumn string
	ValueColumn  string
}

// Apply reshapes the frame. Pure: the input frame is not modified.
func (p Pivot) Apply(frame *reportpipe.Frame) (*reportpipe.Frame, error) {
	rowIdx, err := columnIndex(frame, "pivot", p.RowColumn)
	if err != nil {
		return nil, err
	}
	colIdx, err := columnIndex(frame, "pivot", p.ColumnColumn)
	if err != nil {
		return nil, err
	}
	valIdx, err := columnIndex(frame, "pivot", p.ValueColumn)
	if err != nil {
		return nil, err
	}

	// First-appearance orders for output rows and columns.
	var rowKeys, colKeys []string
	rowSeen := make(map[string]int)
	colSeen := make(map[string]int)
	cells := make(map[string]map[string]reportpipe.Value)
	rowLabel := make(map[string]reportpipe.Value)

	for i := range frame.Rows {
		rk := frame.Rows[i][rowIdx].String()
		ck := frame.Rows[i][colIdx].String()

		if _, ok := rowSeen[rk]; !ok {
			rowSeen[rk] = len(rowKeys)
			rowKeys = append(rowKeys, rk)
			cells[rk] = make(map[string]reportpipe.Value)
			rowLabel[rk] = frame.Rows[i][rowIdx]
		}
		if _, ok := colSeen[ck]; !ok {
			colSeen[ck] = len(colKeys)
			colKeys = append(colKeys, ck)
		}
		cells[rk][ck] = frame.Rows[i][valIdx]
	}

	cols := make([]reportpipe.Column, 0, 1+len(colKeys))
	cols = append(cols, reportpipe.Dim(p.RowColumn))
	for _, ck := range colKeys {
		cols = append(cols, reportpipe.Measure(ck))
	}
	out := reportpipe.NewFrame(cols...)

	for _, rk := range rowKeys {
		row := make([]reportpipe.Value, 0, len(cols))
		row = append(row, rowLabel[rk])
		for _, ck := range colKeys {
			v, ok := cells[rk][ck]
			if !ok {
				v = reportpipe.Null()
			}
			row = append(row, v)
		}
		out.MustAppend(row...)
	}

	return out, nil
}
