package reportpipe

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
)

// Stats provides run statistics with thread-safe access.
// Counter fields use atomic operations so concurrent section extractions
// can update them safely.
type Stats struct {
	sections    atomic.Int64
	skipped     atomic.Int64
	extracted   atomic.Int64
	transformed atomic.Int64
	rendered    atomic.Int64
	errors      atomic.Int64
}

// NewStats creates a Stats with initial counter values.
func NewStats(sections, skipped, extracted, transformed, rendered, errors int64) *Stats {
	s := &Stats{}
	s.sections.Store(sections)
	s.skipped.Store(skipped)
	s.extracted.Store(extracted)
	s.transformed.Store(transformed)
	s.rendered.Store(rendered)
	s.errors.Store(errors)
	return s
}

// Sections returns the number of sections run.
func (s *Stats) Sections() int64 { return s.sections.Load() }

// Skipped returns the number of sections skipped via ActionSkip.
func (s *Stats) Skipped() int64 { return s.skipped.Load() }

// Extracted returns the number of rows extracted.
func (s *Stats) Extracted() int64 { return s.extracted.Load() }

// Transformed returns the number of rows produced by transforms.
func (s *Stats) Transformed() int64 { return s.transformed.Load() }

// Rendered returns the number of rows rendered.
func (s *Stats) Rendered() int64 { return s.rendered.Load() }

// Errors returns the number of errors encountered.
func (s *Stats) Errors() int64 { return s.errors.Load() }

// LogValue implements slog.LogValuer for structured logging.
func (s *Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("sections", s.Sections()),
		slog.Int64("skipped", s.Skipped()),
		slog.Int64("extracted", s.Extracted()),
		slog.Int64("transformed", s.Transformed()),
		slog.Int64("rendered", s.Rendered()),
		slog.Int64("errors", s.Errors()),
	)
}

// statsJSON is the JSON representation for marshaling/unmarshaling Stats.
type statsJSON struct {
	Sections    int64 `json:"sections"`
	Skipped     int64 `json:"skipped"`
	Extracted   int64 `json:"extracted"`
	Transformed int64 `json:"transformed"`
	Rendered    int64 `json:"rendered"`
	Errors      int64 `json:"errors"`
}

// MarshalJSON implements json.Marshaler for Stats serialization.
func (s *Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(statsJSON{
		Sections:    s.sections.Load(),
		Skipped:     s.skipped.Load(),
		Extracted:   s.extracted.Load(),
		Transformed: s.transformed.Load(),
		Rendered:    s.rendered.Load(),
		Errors:      s.errors.Load(),
	})
}

// UnmarshalJSON implements json.Unmarshaler for Stats deserialization.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var v statsJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.sections.Store(v.Sections)
	s.skipped.Store(v.Skipped)
	s.extracted.Store(v.Extracted)
	s.transformed.Store(v.Transformed)
	s.rendered.Store(v.Rendered)
	s.errors.Store(v.Errors)
	return nil
}

// Internal increment methods.
func (s *Stats) incSections(n int64)    { s.sections.Add(n) }
func (s *Stats) incSkipped(n int64)     { s.skipped.Add(n) }
func (s *Stats) incExtracted(n int64)   { s.extracted.Add(n) }
func (s *Stats) incTransformed(n int64) { s.transformed.Add(n) }
func (s *Stats) incRendered(n int64)    { s.rendered.Add(n) }
func (s *Stats) incErrors(n int64)      { s.errors.Add(n) }
