package render

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/trailblazer-analytics/reportpipe"
)

// CSV renders a frame as comma-separated values with a header row. Null
// cells render as empty fields.
type CSV struct {
	w io.Writer
}

// NewCSV creates a CSV renderer writing to w.
func NewCSV(w io.Writer) *CSV {
	return &CSV{w: w}
}

// Render writes the frame as CSV.
func (c *CSV) Render(_ context.Context, frame *reportpipe.Frame) error {
	cw := csv.NewWriter(c.w)

	header := make([]string, len(frame.Cols))
	for i, col := range frame.Cols {
		header[i] = col.Name
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(frame.Cols))
	for _, row := range frame.Rows {
		for i, v := range row {
			record[i] = v.String()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
