package reportpipe

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Pipeline orchestrates one report run: extract, transform, render.
// Control flow is linear and single-shot per invocation; no state survives
// between runs.
type Pipeline struct {
	job Job

	// Configuration overrides (nil means use interface value or default)
	sectionWorkerCount *int
	queryTimeout       *time.Duration

	// Optional capabilities (detected from job interfaces)
	transformer        Transformer
	sectioner          Sectioner
	sectionTransformer SectionTransformer
	sectionRenderer    SectionRenderer
	errHandler         ErrorHandler
	starter            Starter
	stopper            Stopper
	sectionWorkers     SectionWorkers
	queryTimeoutIface  QueryTimeout
}

// New creates a new Pipeline for the given job.
// The job must implement Job. Optional interfaces are auto-detected:
// [Transformer], [Sectioner], [SectionTransformer], [SectionRenderer],
// [ErrorHandler], [Starter], [Stopper], [SectionWorkers], [QueryTimeout].
func New(job Job) *Pipeline {
	p := &Pipeline{job: job}

	if t, ok := job.(Transformer); ok {
		p.transformer = t
	}
	if s, ok := job.(Sectioner); ok {
		p.sectioner = s
	}
	if t, ok := job.(SectionTransformer); ok {
		p.sectionTransformer = t
	}
	if r, ok := job.(SectionRenderer); ok {
		p.sectionRenderer = r
	}
	if h, ok := job.(ErrorHandler); ok {
		p.errHandler = h
	}
	if s, ok := job.(Starter); ok {
		p.starter = s
	}
	if s, ok := job.(Stopper); ok {
		p.stopper = s
	}
	if w, ok := job.(SectionWorkers); ok {
		p.sectionWorkers = w
	}
	if q, ok := job.(QueryTimeout); ok {
		p.queryTimeoutIface = q
	}

	return p
}

// WithSectionWorkers overrides the number of concurrent section extractions.
// Priority: this method > SectionWorkers interface > DefaultSectionWorkers.
// Values less than 1 are ignored.
func (p *Pipeline) WithSectionWorkers(n int) *Pipeline {
	if n >= 1 {
		p.sectionWorkerCount = &n
	}
	return p
}

// WithQueryTimeout overrides the per-extract timeout.
// Priority: this method > QueryTimeout interface > DefaultQueryTimeout.
// Set to 0 to disable. Negative values are ignored.
func (p *Pipeline) WithQueryTimeout(d time.Duration) *Pipeline {
	if d < 0 {
		return p
	}
	p.queryTimeout = &d
	return p
}

// Run executes the report for the given window. Each call is an independent
// run with a fresh run ID; nothing is carried over from previous calls.
func (p *Pipeline) Run(ctx context.Context, window Window) error {
	stats := &Stats{}

	ctx = withRunID(ctx, uuid.NewString())
	if p.starter != nil {
		ctx = p.starter.Start(ctx)
	}

	var err error
	if p.sectioner != nil {
		err = p.runSections(ctx, window, stats)
	} else {
		err = p.runSingle(ctx, window, stats)
	}

	if p.stopper != nil {
		p.stopper.Stop(ctx, stats, err)
	}

	return err
}

// runSingle executes the plain linear pipeline: one extract, an optional
// transform, one render.
func (p *Pipeline) runSingle(ctx context.Context, window Window, stats *Stats) error {
	stats.incSections(1)

	frame, err := p.extractOne(ctx, window)
	if err != nil {
		return p.stageError(ctx, StageExtract, "", err, stats)
	}
	stats.incExtracted(int64(frame.Len()))

	if p.transformer != nil {
		frame, err = p.transformer.Transform(ctx, frame)
		if err != nil {
			return p.stageError(ctx, StageTransform, "", err, stats)
		}
		stats.incTransformed(int64(frame.Len()))
	}

	if err := p.job.Render(ctx, frame); err != nil {
		return p.stageError(ctx, StageRender, "", err, stats)
	}
	stats.incRendered(int64(frame.Len()))

	return nil
}

// runSections extracts and transforms every section (concurrently when
// SectionWorkers > 1), then renders sequentially in declared order so
// concurrent extraction never interleaves output.
func (p *Pipeline) runSections(ctx context.Context, window Window, stats *Stats) error {
	names := p.sectioner.Sections()
	frames := make([]*Frame, len(names)) // nil entry = section skipped

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.resolveSectionWorkers())

	for i, name := range names {
		group.Go(func() error {
			stats.incSections(1)

			frame, err := p.extractSection(groupCtx, name, window)
			if err != nil {
				return p.stageError(groupCtx, StageExtract, name, err, stats)
			}
			stats.incExtracted(int64(frame.Len()))

			frame, err = p.transformSection(groupCtx, name, frame)
			if err != nil {
				return p.stageError(groupCtx, StageTransform, name, err, stats)
			}
			if p.sectionTransformer != nil || p.transformer != nil {
				stats.incTransformed(int64(frame.Len()))
			}

			frames[i] = frame
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	for i, name := range names {
		if frames[i] == nil {
			continue
		}
		if err := p.renderSection(ctx, name, frames[i]); err != nil {
			if serr := p.stageError(ctx, StageRender, name, err, stats); serr != nil {
				return serr
			}
			continue
		}
		stats.incRendered(int64(frames[i].Len()))
	}

	return nil
}

// extractOne runs the extract step under the resolved query timeout.
func (p *Pipeline) extractOne(ctx context.Context, window Window) (*Frame, error) {
	ctx, cancel := p.withQueryTimeout(ctx)
	defer cancel()
	return p.job.Extract(ctx, window)
}

func (p *Pipeline) extractSection(ctx context.Context, name string, window Window) (*Frame, error) {
	ctx, cancel := p.withQueryTimeout(ctx)
	defer cancel()
	return p.sectioner.ExtractSection(ctx, name, window)
}

// transformSection applies the section transform.
// Precedence: SectionTransformer > Transformer > pass-through.
func (p *Pipeline) transformSection(ctx context.Context, name string, frame *Frame) (*Frame, error) {
	switch {
	case p.sectionTransformer != nil:
		return p.sectionTransformer.TransformSection(ctx, name, frame)
	case p.transformer != nil:
		return p.transformer.Transform(ctx, frame)
	default:
		return frame, nil
	}
}

// renderSection renders one section.
// Precedence: SectionRenderer > Job.Render.
func (p *Pipeline) renderSection(ctx context.Context, name string, frame *Frame) error {
	if p.sectionRenderer != nil {
		return p.sectionRenderer.RenderSection(ctx, name, frame)
	}
	return p.job.Render(ctx, frame)
}

func (p *Pipeline) withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d := p.resolveQueryTimeout(); d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return ctx, func() {}
}

// stageError applies the error policy for a failed stage. Without an
// ErrorHandler the error is wrapped and returned (fail fast, no retry).
// With an ErrorHandler that returns ActionSkip, the section is dropped and
// the run continues.
func (p *Pipeline) stageError(ctx context.Context, stage Stage, section string, err error, stats *Stats) error {
	stats.incErrors(1)
	if p.errHandler != nil && p.errHandler.OnError(ctx, stage, err) == ActionSkip {
		stats.incSkipped(1)
		return nil
	}
	if section != "" {
		return fmt.Errorf("%s %q: %w", stage, section, err)
	}
	return fmt.Errorf("%s: %w", stage, err)
}

type runIDKey struct{}

func withRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run ID attached by Run, or "" when the
// context did not come from a pipeline run. Renderers and notifiers use it
// to stamp artifacts and alerts with the run that produced them.
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
