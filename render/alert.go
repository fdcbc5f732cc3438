package render

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trailblazer-analytics/reportpipe"
)

// Op is a threshold comparison operator.
type Op string

const (
	OpAbove   Op = ">"
	OpAtLeast Op = ">="
	OpBelow   Op = "<"
	OpAtMost  Op = "<="
)

// ParseOp returns the operator for its symbol.
func ParseOp(s string) (Op, error) {
	switch Op(strings.TrimSpace(s)) {
	case OpAbove:
		return OpAbove, nil
	case OpAtLeast:
		return OpAtLeast, nil
	case OpBelow:
		return OpBelow, nil
	case OpAtMost:
		return OpAtMost, nil
	}
	return "", fmt.Errorf("alert: unknown operator %q (supported: > >= < <=)", s)
}

// breached reports whether value op threshold holds.
func (o Op) breached(value, threshold decimal.Decimal) bool {
	switch o {
	case OpAbove:
		return value.GreaterThan(threshold)
	case OpAtLeast:
		return value.GreaterThanOrEqual(threshold)
	case OpBelow:
		return value.LessThan(threshold)
	case OpAtMost:
		return value.LessThanOrEqual(threshold)
	}
	return false
}

// Rule compares one measure column of a frame against a threshold.
type Rule struct {
	Name      string
	Column    string
	Op        Op
	Threshold decimal.Decimal

	// KeyColumns identify a row for de-duplication, typically the
	// frame's dimension columns. Empty means all breaches of this rule
	// share one key.
	KeyColumns []string
}

// Alert is one threshold breach.
type Alert struct {
	ID        string // unique per alert
	RunID     string // the pipeline run that produced it
	Rule      string
	Key       string
	Value     decimal.Decimal
	Threshold decimal.Decimal
	Op        Op
	At        time.Time
}

func (a Alert) String() string {
	return fmt.Sprintf("%s: %s %s %s (key %q)", a.Rule, a.Value, a.Op, a.Threshold, a.Key)
}

// Notifier receives alerts. Implementations deliver them to a channel a
// human watches: a log line, a webhook, a mail.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// NotifierFunc adapts a plain function to the [Notifier] interface.
type NotifierFunc func(ctx context.Context, alert Alert) error

func (f NotifierFunc) Notify(ctx context.Context, alert Alert) error { return f(ctx, alert) }

// Evaluator compares frame measures against threshold rules and emits at
// most one notification per rule and row key per run.
//
// De-duplication across runs is opt-in via WithCooldown: repeat breaches of
// the same rule and key within the cooldown window are suppressed. The
// suppression cache is in-memory only and dies with the process, keeping
// runs otherwise stateless.
type Evaluator struct {
	notifier Notifier
	rules    []Rule
	cooldown time.Duration
	now      func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// NewEvaluator creates an evaluator delivering breaches to the notifier.
func NewEvaluator(notifier Notifier, rules ...Rule) *Evaluator {
	return &Evaluator{
		notifier: notifier,
		rules:    rules,
		now:      time.Now,
		lastSent: make(map[string]time.Time),
	}
}

// WithCooldown suppresses repeat alerts for the same rule and key within d.
// Zero disables cross-run de-duplication (the default).
func (e *Evaluator) WithCooldown(d time.Duration) *Evaluator {
	if d >= 0 {
		e.cooldown = d
	}
	return e
}

// WithClock overrides the evaluator's clock.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	if now != nil {
		e.now = now
	}
	return e
}

// Evaluate checks every rule against every row and notifies each breach
// once. Null and non-numeric cells never breach. A rule naming a column
// the frame does not have is a configuration error.
func (e *Evaluator) Evaluate(ctx context.Context, frame *reportpipe.Frame) ([]Alert, error) {
	runID := reportpipe.RunIDFromContext(ctx)
	seen := make(map[string]struct{}) // per-run: one alert per rule+key

	var alerts []Alert
	for _, rule := range e.rules {
		colIdx, ok := frame.ColumnIndex(rule.Column)
		if !ok {
			return alerts, fmt.Errorf("alert: rule %q names unknown column %q", rule.Name, rule.Column)
		}

		keyIdx := make([]int, 0, len(rule.KeyColumns))
		for _, kc := range rule.KeyColumns {
			i, ok := frame.ColumnIndex(kc)
			if !ok {
				return alerts, fmt.Errorf("alert: rule %q names unknown key column %q", rule.Name, kc)
			}
			keyIdx = append(keyIdx, i)
		}

		for _, row := range frame.Rows {
			cell := row[colIdx]
			if cell.Kind() != reportpipe.KindNumber {
				continue
			}
			if !rule.Op.breached(cell.Decimal(), rule.Threshold) {
				continue
			}

			key := rowKey(rule, row, keyIdx)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			if e.suppressed(key) {
				continue
			}

			alert := Alert{
				ID:        uuid.NewString(),
				RunID:     runID,
				Rule:      rule.Name,
				Key:       key,
				Value:     cell.Decimal(),
				Threshold: rule.Threshold,
				Op:        rule.Op,
				At:        e.now(),
			}
			if err := e.notifier.Notify(ctx, alert); err != nil {
				return alerts, fmt.Errorf("alert: notify %q: %w", rule.Name, err)
			}
			e.markSent(key)
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}

func rowKey(rule Rule, row []reportpipe.Value, keyIdx []int) string {
	parts := make([]string, 0, 1+len(keyIdx))
	parts = append(parts, rule.Name)
	for _, i := range keyIdx {
		parts = append(parts, row[i].String())
	}
	return strings.Join(parts, "|")
}

func (e *Evaluator) suppressed(key string) bool {
	if e.cooldown <= 0 {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	sent, ok := e.lastSent[key]
	return ok && e.now().Sub(sent) < e.cooldown
}

func (e *Evaluator) markSent(key string) {
	if e.cooldown <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSent[key] = e.now()
}
