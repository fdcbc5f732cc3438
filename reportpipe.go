package reportpipe

import "context"

// Stage identifies where in the pipeline an event occurred.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageRender    Stage = "render"
)

// Action tells the pipeline what to do after an error.
type Action string

const (
	ActionFail Action = "fail" // Stop the run and return the error
	ActionSkip Action = "skip" // Skip the section and continue
)

// Job defines the core reporting operations. This is the only required
// interface to implement.
//
// A job describes one report: Extract pulls an aggregated Frame from the
// store for the requested window, and Render turns the (possibly
// transformed) Frame into a human-facing artifact. Each run is single-shot
// and stateless: nothing is carried between invocations beyond what Extract
// re-derives from the store.
//
// For reshaping the extracted frame, implement [Transformer]. Without it the
// extracted frame is rendered as-is.
type Job interface {
	// Extract produces one row per group for the reporting window.
	// It must not retry on failure; errors are surfaced to the caller.
	Extract(ctx context.Context, window Window) (*Frame, error)

	// Render turns the transformed frame into output for a human
	// (console table, file, alert channel).
	Render(ctx context.Context, frame *Frame) error
}

// Transformer reshapes the extracted frame into the comparison shape needed
// for reporting: funnel conversion rates, period-over-period deltas, pivots.
//
// Transform must behave as a pure function of its input: given the same
// frame it returns the same output, and it must not mutate the input frame
// (use Frame.Clone when a rewrite is needed).
//
// Example:
//
//	func (j *MyReport) Transform(ctx context.Context, f *reportpipe.Frame) (*reportpipe.Frame, error) {
//	    return transform.Funnel{Strict: true}.Apply(f)
//	}
type Transformer interface {
	Transform(ctx context.Context, frame *Frame) (*Frame, error)
}

// Sectioner splits a report into independently extracted sections, such as
// the pages of a dashboard. When implemented, the pipeline calls
// ExtractSection once per name returned by Sections — possibly concurrently,
// see [SectionWorkers] — instead of calling Extract.
//
// Rendering always happens sequentially in the order Sections returns, so
// concurrent extraction never interleaves output.
//
// Example:
//
//	func (j *Dashboard) Sections() []string { return []string{"revenue", "customers"} }
//
//	func (j *Dashboard) ExtractSection(ctx context.Context, name string, w reportpipe.Window) (*reportpipe.Frame, error) {
//	    return j.extractor.Extract(ctx, j.requests[name].WithWindow(w))
//	}
type Sectioner interface {
	// Sections returns the section names in render order.
	Sections() []string

	// ExtractSection extracts the frame for one named section.
	ExtractSection(ctx context.Context, name string, window Window) (*Frame, error)
}

// SectionTransformer transforms a section's frame with knowledge of the
// section name. In sectioned runs it takes precedence over [Transformer];
// if neither is implemented, frames pass through unchanged.
type SectionTransformer interface {
	TransformSection(ctx context.Context, name string, frame *Frame) (*Frame, error)
}

// SectionRenderer renders a section's frame with knowledge of the section
// name. In sectioned runs it takes precedence over Job.Render.
type SectionRenderer interface {
	RenderSection(ctx context.Context, name string, frame *Frame) error
}
