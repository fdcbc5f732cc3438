package transform

import (
	"errors"
	"fmt"

	"github.com/trailblazer-analytics/reportpipe"
)

// ErrFunnelOrder reports an inclusion funnel whose step counts grow: step
// N's count exceeded step N-1's, which cannot happen when each step is a
// subset of the one before it.
var ErrFunnelOrder = errors.New("funnel: step count exceeds previous step")

// Funnel turns an ordered step/count frame into conversion rates. Input
// rows are the funnel steps in order, one row per step. Output carries each
// step's count, its conversion rate against the previous step, and its
// overall rate against the first step.
//
// The first step has no previous step, so its conversion rate is null
// (rendered blank). A step following a zero-count step also gets a null
// conversion rate; division by zero never raises.
type Funnel struct {
	// StepColumn names the step dimension. Default "step".
	StepColumn string
	// CountColumn names the count measure. Default "count".
	CountColumn string
	// Strict enforces the inclusion invariant: each step's count must
	// not exceed the previous step's. Violations return ErrFunnelOrder.
	Strict bool
}

func (f Funnel) stepColumn() string {
	if f.StepColumn == "" {
		return "step"
	}
	return f.StepColumn
}

func (f Funnel) countColumn() string {
	if f.CountColumn == "" {
		return "count"
	}
	return f.CountColumn
}

// Apply computes the funnel. Pure: the input frame is not modified.
func (f Funnel) Apply(frame *reportpipe.Frame) (*reportpipe.Frame, error) {
	stepIdx, err := columnIndex(frame, "funnel", f.stepColumn())
	if err != nil {
		return nil, err
	}
	countIdx, err := columnIndex(frame, "funnel", f.countColumn())
	if err != nil {
		return nil, err
	}

	out := reportpipe.NewFrame(
		reportpipe.Dim(f.stepColumn()),
		reportpipe.Measure(f.countColumn()),
		reportpipe.Measure("conversion_pct"),
		reportpipe.Measure("overall_pct"),
	)

	var first, prev reportpipe.Value
	for i := range frame.Rows {
		count, ok, err := numberAt(frame, "funnel", i, countIdx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("funnel: step %s has no count", frame.Rows[i][stepIdx])
		}

		if f.Strict && i > 0 && !prev.IsNull() && count.GreaterThan(prev.Decimal()) {
			return nil, fmt.Errorf("%w: step %s has %s, previous step has %s",
				ErrFunnelOrder, frame.Rows[i][stepIdx], count, prev.Decimal())
		}

		conversion := reportpipe.Null()
		if i > 0 && !prev.IsNull() {
			conversion = ratePct(count, prev.Decimal())
		}

		overall := reportpipe.Null()
		if i == 0 {
			first = reportpipe.Number(count)
		}
		if !first.IsNull() {
			overall = ratePct(count, first.Decimal())
		}

		out.MustAppend(frame.Rows[i][stepIdx], reportpipe.Number(count), conversion, overall)
		prev = reportpipe.Number(count)
	}

	return out, nil
}
