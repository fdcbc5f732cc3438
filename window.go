package reportpipe

import (
	"fmt"
	"time"
)

// Window is a half-open reporting interval [Start, End). The extract stage
// receives the window and returns one row per group for rows whose time
// column falls inside it.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window and validates that Start precedes End.
func NewWindow(start, end time.Time) (Window, error) {
	if !start.Before(end) {
		return Window{}, fmt.Errorf("window: start %s is not before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Window{Start: start, End: end}, nil
}

// LastDays returns the window covering the given number of days ending at
// now. The common "last 30 days" dashboard window.
func LastDays(now time.Time, days int) Window {
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

// Duration returns the window length.
func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

// Prior returns the window of equal length immediately before this one,
// used for period-over-period comparison.
func (w Window) Prior() Window {
	return Window{Start: w.Start.Add(-w.Duration()), End: w.Start}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// IsZero reports whether the window is unset.
func (w Window) IsZero() bool { return w.Start.IsZero() && w.End.IsZero() }

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}
