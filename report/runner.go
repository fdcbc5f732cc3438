package report

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/trailblazer-analytics/reportpipe"
	"github.com/trailblazer-analytics/reportpipe/dialect"
	"github.com/trailblazer-analytics/reportpipe/extract"
	"github.com/trailblazer-analytics/reportpipe/render"
	"github.com/trailblazer-analytics/reportpipe/transform"
)

// frameRenderer is the surface shared by the table and CSV renderers.
type frameRenderer interface {
	Render(ctx context.Context, frame *reportpipe.Frame) error
}

type transformFunc func(*reportpipe.Frame) (*reportpipe.Frame, error)

// section is a compiled SectionConfig: the extract request plus the
// behavior attached to its output.
type section struct {
	name      string
	request   extract.Request
	transform transformFunc     // nil = pass-through
	renderer  frameRenderer
	evaluator *render.Evaluator // nil when the section has no alerts
}

// Runner executes a report definition against an open store handle.
// Each Run call is one independent report run.
type Runner struct {
	cfg    *Config
	db     *sql.DB
	logger *log.Logger
	out    io.Writer
}

// NewRunner wires a definition to a store handle, a logger, and the writer
// receiving rendered output.
func NewRunner(cfg *Config, db *sql.DB, logger *log.Logger, out io.Writer) *Runner {
	return &Runner{cfg: cfg, db: db, logger: logger, out: out}
}

// Run compiles the definition and executes the pipeline for the window
// ending now.
func (r *Runner) Run(ctx context.Context) error {
	d, err := dialect.Parse(r.cfg.Store.Dialect)
	if err != nil {
		return err
	}

	j, err := r.compile(d)
	if err != nil {
		return err
	}

	p := reportpipe.New(j)
	if r.cfg.Workers > 1 {
		p.WithSectionWorkers(r.cfg.Workers)
	}
	if timeout, _ := r.cfg.queryTimeout(); timeout > 0 {
		p.WithQueryTimeout(timeout)
	}

	window := reportpipe.LastDays(time.Now(), r.cfg.WindowDays)
	return p.Run(ctx, window)
}

// compile turns the definition into a pipeline job.
func (r *Runner) compile(d dialect.Dialect) (*job, error) {
	cooldown, _ := r.cfg.alertCooldown()

	j := &job{
		name:   r.cfg.Name,
		ex:     extract.NewSQL(r.db, d),
		byName: make(map[string]*section, len(r.cfg.Sections)),
		logger: r.logger,
	}

	for _, sc := range r.cfg.Sections {
		if _, dup := j.byName[sc.Name]; dup {
			return nil, fmt.Errorf("report: duplicate section %q", sc.Name)
		}

		s := &section{
			name: sc.Name,
			request: extract.Request{
				Table:      sc.Table,
				TimeColumn: sc.TimeColumn,
				Grain:      dialect.Grain(sc.Grain),
				Dimensions: sc.Dimensions,
				Filters:    sc.Filters,
				OrderBy:    sc.OrderBy,
				Limit:      sc.Limit,
			},
		}
		for _, m := range sc.Measures {
			s.request.Measures = append(s.request.Measures, extract.Measure{Expr: m.Expr, As: m.As})
		}

		tf, err := buildTransform(sc.Transform)
		if err != nil {
			return nil, fmt.Errorf("report: section %q: %w", sc.Name, err)
		}
		s.transform = tf

		if sc.Output == "csv" {
			s.renderer = render.NewCSV(r.out)
		} else {
			s.renderer = render.NewTable(r.out).WithTitle(sc.Name)
		}

		if len(sc.Alerts) > 0 {
			rules, err := buildRules(sc.Alerts)
			if err != nil {
				return nil, fmt.Errorf("report: section %q: %w", sc.Name, err)
			}
			s.evaluator = render.NewEvaluator(logNotifier(r.logger), rules...).WithCooldown(cooldown)
		}

		j.sections = append(j.sections, s)
		j.byName[sc.Name] = s
	}

	return j, nil
}

func buildTransform(tc *TransformConfig) (transformFunc, error) {
	if tc == nil {
		return nil, nil
	}
	switch tc.Kind {
	case "funnel":
		return transform.Funnel{
			StepColumn:  tc.StepColumn,
			CountColumn: tc.CountColumn,
			Strict:      tc.Strict,
		}.Apply, nil
	case "cohort":
		return transform.Cohort{
			CohortColumn: tc.CohortColumn,
			PeriodColumn: tc.PeriodColumn,
			ActiveColumn: tc.ActiveColumn,
		}.Apply, nil
	case "trend":
		return transform.Trend{
			PeriodColumn: tc.PeriodColumn,
			Measures:     tc.Measures,
		}.Apply, nil
	case "pivot":
		if tc.RowColumn == "" || tc.ColumnColumn == "" || tc.ValueColumn == "" {
			return nil, fmt.Errorf("pivot transform needs row_column, column_column and value_column")
		}
		return transform.Pivot{
			RowColumn:    tc.RowColumn,
			ColumnColumn: tc.ColumnColumn,
			ValueColumn:  tc.ValueColumn,
		}.Apply, nil
	default:
		return nil, fmt.Errorf("unknown transform kind %q", tc.Kind)
	}
}

func buildRules(configs []AlertConfig) ([]render.Rule, error) {
	rules := make([]render.Rule, 0, len(configs))
	for _, ac := range configs {
		op, err := render.ParseOp(ac.Op)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", ac.Name, err)
		}
		threshold, err := decimal.NewFromString(ac.Threshold)
		if err != nil {
			return nil, fmt.Errorf("rule %q: threshold %q: %w", ac.Name, ac.Threshold, err)
		}
		rules = append(rules, render.Rule{
			Name:       ac.Name,
			Column:     ac.Column,
			Op:         op,
			Threshold:  threshold,
			KeyColumns: ac.KeyColumns,
		})
	}
	return rules, nil
}

// logNotifier delivers alerts as warning log lines.
func logNotifier(logger *log.Logger) render.Notifier {
	return render.NotifierFunc(func(_ context.Context, a render.Alert) error {
		logger.Warn("alert raised",
			"rule", a.Rule,
			"key", a.Key,
			"value", a.Value.String(),
			"op", string(a.Op),
			"threshold", a.Threshold.String(),
			"run_id", a.RunID,
		)
		return nil
	})
}

// job is the compiled report: a sectioned pipeline job with lifecycle
// logging and per-section transforms, renderers and alert rules.
type job struct {
	name     string
	ex       *extract.SQL
	sections []*section
	byName   map[string]*section
	logger   *log.Logger

	startedAt time.Time
}

var (
	_ reportpipe.Job                = (*job)(nil)
	_ reportpipe.Sectioner          = (*job)(nil)
	_ reportpipe.SectionTransformer = (*job)(nil)
	_ reportpipe.SectionRenderer    = (*job)(nil)
	_ reportpipe.Starter            = (*job)(nil)
	_ reportpipe.Stopper            = (*job)(nil)
)

func (j *job) Sections() []string {
	names := make([]string, len(j.sections))
	for i, s := range j.sections {
		names[i] = s.name
	}
	return names
}

func (j *job) ExtractSection(ctx context.Context, name string, window reportpipe.Window) (*reportpipe.Frame, error) {
	s, ok := j.byName[name]
	if !ok {
		return nil, fmt.Errorf("report: unknown section %q", name)
	}
	return j.ex.Extract(ctx, s.request.WithWindow(window))
}

func (j *job) TransformSection(_ context.Context, name string, frame *reportpipe.Frame) (*reportpipe.Frame, error) {
	s, ok := j.byName[name]
	if !ok || s.transform == nil {
		return frame, nil
	}
	return s.transform(frame)
}

func (j *job) RenderSection(ctx context.Context, name string, frame *reportpipe.Frame) error {
	s, ok := j.byName[name]
	if !ok {
		return fmt.Errorf("report: unknown section %q", name)
	}
	if err := s.renderer.Render(ctx, frame); err != nil {
		return err
	}
	if s.evaluator != nil {
		alerts, err := s.evaluator.Evaluate(ctx, frame)
		if err != nil {
			return err
		}
		if len(alerts) > 0 {
			j.logger.Info("section raised alerts", "section", name, "count", len(alerts))
		}
	}
	return nil
}

// Extract and Render satisfy the required Job interface; sectioned runs go
// through ExtractSection/RenderSection instead.
func (j *job) Extract(ctx context.Context, window reportpipe.Window) (*reportpipe.Frame, error) {
	return j.ExtractSection(ctx, j.sections[0].name, window)
}

func (j *job) Render(ctx context.Context, frame *reportpipe.Frame) error {
	return j.RenderSection(ctx, j.sections[0].name, frame)
}

func (j *job) Start(ctx context.Context) context.Context {
	j.startedAt = time.Now()
	j.logger.Info("report starting",
		"report", j.name,
		"sections", len(j.sections),
		"run_id", reportpipe.RunIDFromContext(ctx),
	)
	return ctx
}

func (j *job) Stop(ctx context.Context, stats *reportpipe.Stats, err error) {
	elapsed := time.Since(j.startedAt)
	if err != nil {
		j.logger.Error("report failed",
			"report", j.name,
			"error", err,
			"elapsed", elapsed,
			"run_id", reportpipe.RunIDFromContext(ctx),
		)
		return
	}
	j.logger.Info("report complete",
		"report", j.name,
		"rows", stats.Rendered(),
		"skipped", stats.Skipped(),
		"elapsed", elapsed,
		"run_id", reportpipe.RunIDFromContext(ctx),
	)
}
