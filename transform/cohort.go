package transform

import (
	"fmt"

	"github.com/trailblazer-analytics/reportpipe"
)

// Cohort turns (cohort, period offset, active count) rows into a retention
// view. Entities are grouped by a shared start event — the cohort — and
// tracked over subsequent periods relative to that start. The cohort's size
// is its active count at period 0; retention for any later period is
// active/size as a percentage.
//
// A cohort with no period-0 row, or a period-0 count of zero, yields null
// retention cells for all of its rows rather than an error: there is
// nothing to divide by, and blank is the policy for missing comparisons.
type Cohort struct {
	// CohortColumn names the cohort dimension. Default "cohort".
	CohortColumn string
	// PeriodColumn names the integer period-offset dimension, 0 being
	// the cohort's start period. Default "period".
	PeriodColumn string
	// ActiveColumn names the active-count measure. Default "active".
	ActiveColumn string
}

func (c Cohort) cohortColumn() string {
	if c.CohortColumn == "" {
		return "cohort"
	}
	return c.CohortColumn
}

func (c Cohort) periodColumn() string {
	if c.PeriodColumn == "" {
		return "period"
	}
	return c.PeriodColumn
}

func (c Cohort) activeColumn() string {
	if c.ActiveColumn == "" {
		return "active"
	}
	return c.ActiveColumn
}

// Apply computes retention percentages. Pure: the input frame is not
// modified, and rows keep their input order.
func (c Cohort) Apply(frame *reportpipe.Frame) (*reportpipe.Frame, error) {
	cohortIdx, err := columnIndex(frame, "cohort", c.cohortColumn())
	if err != nil {
		return nil, err
	}
	periodIdx, err := columnIndex(frame, "cohort", c.periodColumn())
	if err != nil {
		return nil, err
	}
	activeIdx, err := columnIndex(frame, "cohort", c.activeColumn())
	if err != nil {
		return nil, err
	}

	// First pass: cohort size = active count at period 0.
	sizes := make(map[string]reportpipe.Value)
	for i := range frame.Rows {
		period, ok, err := numberAt(frame, "cohort", i, periodIdx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("cohort: row %d has no period offset", i)
		}
		if !period.IsZero() {
			continue
		}
		active, ok, err := numberAt(frame, "cohort", i, activeIdx)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		sizes[frame.Rows[i][cohortIdx].String()] = reportpipe.Number(active)
	}

	out := reportpipe.NewFrame(
		reportpipe.Dim(c.cohortColumn()),
		reportpipe.Dim(c.periodColumn()),
		reportpipe.Measure(c.activeColumn()),
		reportpipe.Measure("retention_pct"),
	)

	for i := range frame.Rows {
		active, hasActive, err := numberAt(frame, "cohort", i, activeIdx)
		if err != nil {
			return nil, err
		}

		retention := reportpipe.Null()
		size, hasSize := sizes[frame.Rows[i][cohortIdx].String()]
		if hasActive && hasSize {
			retention = ratePct(active, size.Decimal())
		}

		activeCell := reportpipe.Null()
		if hasActive {
			activeCell = reportpipe.Number(active)
		}
		out.MustAppend(frame.Rows[i][cohortIdx], frame.Rows[i][periodIdx], activeCell, retention)
	}

	return out, nil
}
