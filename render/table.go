// Package render turns transformed frames into human-facing artifacts: a
// styled console table, a CSV file, or threshold alerts.
package render

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/trailblazer-analytics/reportpipe"
)

// Table renders a frame as a bordered console table. Null cells render
// blank so a missing comparison is visually distinct from zero. Measure
// columns are right-aligned.
type Table struct {
	w     io.Writer
	title string

	headerStyle lipgloss.Style
	cellStyle   lipgloss.Style
	titleStyle  lipgloss.Style
}

// NewTable creates a table renderer writing to w.
func NewTable(w io.Writer) *Table {
	return &Table{
		w:           w,
		headerStyle: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		cellStyle:   lipgloss.NewStyle().Padding(0, 1),
		titleStyle:  lipgloss.NewStyle().Bold(true),
	}
}

// WithTitle sets a heading printed above the table.
func (t *Table) WithTitle(title string) *Table {
	t.title = title
	return t
}

// Render writes the frame as a table.
func (t *Table) Render(_ context.Context, frame *reportpipe.Frame) error {
	headers := make([]string, len(frame.Cols))
	measure := make([]bool, len(frame.Cols))
	for i, c := range frame.Cols {
		headers[i] = c.Name
		measure[i] = c.Role == reportpipe.RoleMeasure
	}

	rows := make([][]string, len(frame.Rows))
	for i, r := range frame.Rows {
		row := make([]string, len(r))
		for j, v := range r {
			row[j] = v.String()
		}
		rows[i] = row
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return t.headerStyle
			}
			style := t.cellStyle
			if col >= 0 && col < len(measure) && measure[col] {
				style = style.Align(lipgloss.Right)
			}
			return style
		})

	if t.title != "" {
		if _, err := fmt.Fprintln(t.w, t.titleStyle.Render(t.title)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(t.w, tbl.Render())
	return err
}
