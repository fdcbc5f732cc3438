// Package reportpipe provides a batch analytical reporting pipeline:
// extract an aggregated result set from a relational store, reshape it for
// comparison, and render it for a human.
//
// The package uses an interface-based API where your report type implements
// only the interfaces it needs. The pipeline auto-detects implemented
// interfaces and configures itself accordingly. Runtime configuration
// overrides are also available via method chaining.
//
// Every run is single-shot and stateless: Extract re-derives everything
// from the store, the transform is a pure function of the extracted frame,
// and nothing is carried between invocations. Failures surface immediately
// to the caller with no retries, matching interactively run reports.
//
// # Quick Start
//
// Implement the required Job interface:
//
//	type SalesReport struct {
//	    ex  *extract.SQL
//	    out io.Writer
//	}
//
//	func (r *SalesReport) Extract(ctx context.Context, w reportpipe.Window) (*reportpipe.Frame, error) {
//	    return r.ex.Extract(ctx, extract.Request{
//	        Table:      "orders",
//	        TimeColumn: "order_date",
//	        Window:     w,
//	        Dimensions: []string{"region"},
//	        Measures: []extract.Measure{
//	            {Expr: "COUNT(*)", As: "orders"},
//	            {Expr: "SUM(order_total)", As: "revenue"},
//	        },
//	    })
//	}
//
//	func (r *SalesReport) Render(ctx context.Context, f *reportpipe.Frame) error {
//	    return render.NewTable(r.out).Render(ctx, f)
//	}
//
//	// Run the report for the last 30 days
//	window := reportpipe.LastDays(time.Now(), 30)
//	err := reportpipe.New(&SalesReport{ex: ex, out: os.Stdout}).Run(ctx, window)
//
// # Interface-Based Design
//
// The pipeline auto-detects optional interfaces. Just implement what you
// need:
//
//	// Reshape the extracted frame by implementing Transformer
//	func (r *SalesReport) Transform(ctx context.Context, f *reportpipe.Frame) (*reportpipe.Frame, error) {
//	    return transform.Trend{PeriodColumn: "month"}.Apply(f)
//	}
//
//	// Keep a broken dashboard section from failing the whole run
//	func (r *Dashboard) OnError(ctx context.Context, stage reportpipe.Stage, err error) reportpipe.Action {
//	    log.Warn("section failed", "stage", stage, "error", err)
//	    return reportpipe.ActionSkip
//	}
//
//	// Log final stats by implementing Stopper
//	func (r *SalesReport) Stop(ctx context.Context, stats *reportpipe.Stats, err error) {
//	    log.Info("run complete", "stats", stats)
//	}
//
// # Sectioned Runs
//
// A dashboard is a report with several independently extracted sections.
// Implement Sectioner to split the run:
//
//	func (r *Dashboard) Sections() []string { return []string{"kpis", "daily_sales", "top_products"} }
//
//	func (r *Dashboard) ExtractSection(ctx context.Context, name string, w reportpipe.Window) (*reportpipe.Frame, error) {
//	    return r.ex.Extract(ctx, r.requests[name].WithWindow(w))
//	}
//
// Sections extract concurrently when SectionWorkers is raised, but always
// render sequentially in declared order:
//
//	err := reportpipe.New(dashboard).
//	    WithSectionWorkers(4).
//	    WithQueryTimeout(30 * time.Second).
//	    Run(ctx, window)
//
// # Configuration
//
// Every configuration knob follows the same pattern: a WithXxx builder
// method and a matching Xxx interface with an Xxx() method. The builder
// always takes priority.
//
// Configuration priority (highest to lowest):
//  1. WithXxx() method overrides
//  2. Interface implementations
//  3. Default values
//
// # Edge-Case Policy
//
// Reporting math never panics on awkward data. A ratio with a zero
// denominator is null, not an exception and not infinity. A missing
// prior-period comparison is null, rendered blank rather than zero. These
// rules live in the Value type and the transform package.
package reportpipe
