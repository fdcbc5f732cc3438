package reportpipe

import "time"

// Default configuration values.
const (
	DefaultSectionWorkers = 1
	DefaultQueryTimeout   = 0 * time.Second // no timeout
)

// SectionWorkers controls extraction parallelism for sectioned runs.
// Implement this interface to set the concurrency level from the job struct
// rather than the pipeline builder.
//
// The value can be overridden at runtime via WithSectionWorkers, which takes
// precedence. If neither is set, DefaultSectionWorkers (1) is used — a plain
// sequential run.
//
// Tuning guidance:
//   - 1 worker keeps a single store connection in use at a time
//   - A handful of workers (2-4) speeds up dashboards with many independent
//     sections; match to the store's connection pool size
//
// Rendering is always sequential regardless of this value.
//
// Example:
//
//	func (j *Dashboard) SectionWorkers() int { return 4 }
type SectionWorkers interface {
	// SectionWorkers returns the number of concurrent section extractions.
	SectionWorkers() int
}

// QueryTimeout bounds each extract step. Implement this interface to set
// the timeout from the job struct rather than the pipeline builder.
//
// The value can be overridden at runtime via WithQueryTimeout, which takes
// precedence. If neither is set, DefaultQueryTimeout (0, no timeout) is
// used: the extract blocks until the store answers or the caller cancels
// the context.
//
// Example:
//
//	func (j *MyReport) QueryTimeout() time.Duration { return 30 * time.Second }
type QueryTimeout interface {
	// QueryTimeout returns the maximum duration of one extract step.
	// A zero value disables the timeout.
	QueryTimeout() time.Duration
}

// resolveSectionWorkers returns the effective section worker count.
// Priority: WithSectionWorkers > SectionWorkers interface > DefaultSectionWorkers.
func (p *Pipeline) resolveSectionWorkers() int {
	if p.sectionWorkerCount != nil {
		return *p.sectionWorkerCount
	}
	if p.sectionWorkers != nil {
		return p.sectionWorkers.SectionWorkers()
	}
	return DefaultSectionWorkers
}

// resolveQueryTimeout returns the effective query timeout.
// Priority: WithQueryTimeout > QueryTimeout interface > DefaultQueryTimeout.
func (p *Pipeline) resolveQueryTimeout() time.Duration {
	if p.queryTimeout != nil {
		return *p.queryTimeout
	}
	if p.queryTimeoutIface != nil {
		return p.queryTimeoutIface.QueryTimeout()
	}
	return DefaultQueryTimeout
}
