package render_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/trailblazer-analytics/reportpipe"
	"github.com/trailblazer-analytics/reportpipe/render"
)

func threshold(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// collect returns a notifier appending into sink.
func collect(sink *[]render.Alert) render.Notifier {
	return render.NotifierFunc(func(_ context.Context, a render.Alert) error {
		*sink = append(*sink, a)
		return nil
	})
}

func refundFrame() *reportpipe.Frame {
	f := reportpipe.NewFrame(reportpipe.Dim("region"), reportpipe.Measure("refund_pct"))
	f.MustAppend(reportpipe.Text("west"), reportpipe.NumberInt(12))
	f.MustAppend(reportpipe.Text("east"), reportpipe.NumberInt(3))
	f.MustAppend(reportpipe.Text("south"), reportpipe.Null())
	return f
}

func TestParseOp(t *testing.T) {
	for _, s := range []string{">", ">=", "<", "<="} {
		op, err := render.ParseOp(" " + s + " ")
		require.NoError(t, err)
		require.Equal(t, render.Op(s), op)
	}

	_, err := render.ParseOp("!=")
	require.Error(t, err)
}

func TestEvaluator_Breach(t *testing.T) {
	var sink []render.Alert
	e := render.NewEvaluator(collect(&sink), render.Rule{
		Name:       "high refunds",
		Column:     "refund_pct",
		Op:         render.OpAbove,
		Threshold:  threshold("10"),
		KeyColumns: []string{"region"},
	})

	alerts, err := e.Evaluate(context.Background(), refundFrame())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, alerts, sink)

	a := alerts[0]
	require.Equal(t, "high refunds", a.Rule)
	require.Equal(t, "high refunds|west", a.Key)
	require.True(t, a.Value.Equal(threshold("12")))
	require.NotEmpty(t, a.ID)
}

func TestEvaluator_NullNeverBreaches(t *testing.T) {
	var sink []render.Alert
	e := render.NewEvaluator(collect(&sink), render.Rule{
		Name:      "low refunds",
		Column:    "refund_pct",
		Op:        render.OpBelow,
		Threshold: threshold("100"),
	})

	f := reportpipe.NewFrame(reportpipe.Measure("refund_pct"))
	f.MustAppend(reportpipe.Null())

	alerts, err := e.Evaluate(context.Background(), f)
	require.NoError(t, err)
	require.Empty(t, alerts, "a missing value is not a breach of a < rule")
}

func TestEvaluator_OnePerRuleAndKeyPerRun(t *testing.T) {
	var sink []render.Alert
	e := render.NewEvaluator(collect(&sink), render.Rule{
		Name:      "any refunds",
		Column:    "refund_pct",
		Op:        render.OpAbove,
		Threshold: threshold("0"),
		// No key columns: every breaching row shares one key.
	})

	alerts, err := e.Evaluate(context.Background(), refundFrame())
	require.NoError(t, err)
	require.Len(t, alerts, 1, "two breaching rows, one key, one alert")
}

func TestEvaluator_UnknownColumn(t *testing.T) {
	e := render.NewEvaluator(render.NotifierFunc(func(context.Context, render.Alert) error { return nil }),
		render.Rule{Name: "bad", Column: "nope", Op: render.OpAbove, Threshold: threshold("1")})

	_, err := e.Evaluate(context.Background(), refundFrame())
	require.Error(t, err)
	require.Contains(t, err.Error(), `"nope"`)
}

func TestEvaluator_NotifierErrorStopsEvaluation(t *testing.T) {
	cause := errors.New("webhook down")
	e := render.NewEvaluator(render.NotifierFunc(func(context.Context, render.Alert) error { return cause }),
		render.Rule{Name: "r", Column: "refund_pct", Op: render.OpAbove, Threshold: threshold("1"), KeyColumns: []string{"region"}})

	_, err := e.Evaluate(context.Background(), refundFrame())
	require.ErrorIs(t, err, cause)
}

func TestEvaluator_Cooldown(t *testing.T) {
	clock := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	var sink []render.Alert
	e := render.NewEvaluator(collect(&sink), render.Rule{
		Name:       "high refunds",
		Column:     "refund_pct",
		Op:         render.OpAbove,
		Threshold:  threshold("10"),
		KeyColumns: []string{"region"},
	}).
		WithCooldown(time.Hour).
		WithClock(func() time.Time { return clock })

	// First run notifies.
	alerts, err := e.Evaluate(context.Background(), refundFrame())
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	// A rerun inside the cooldown is suppressed.
	clock = clock.Add(10 * time.Minute)
	alerts, err = e.Evaluate(context.Background(), refundFrame())
	require.NoError(t, err)
	require.Empty(t, alerts)

	// After the cooldown the same breach fires again.
	clock = clock.Add(time.Hour)
	alerts, err = e.Evaluate(context.Background(), refundFrame())
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	require.Len(t, sink, 2)
}

func TestEvaluator_NoCooldownByDefault(t *testing.T) {
	var sink []render.Alert
	e := render.NewEvaluator(collect(&sink), render.Rule{
		Name:       "high refunds",
		Column:     "refund_pct",
		Op:         render.OpAbove,
		Threshold:  threshold("10"),
		KeyColumns: []string{"region"},
	})

	for i := 0; i < 2; i++ {
		alerts, err := e.Evaluate(context.Background(), refundFrame())
		require.NoError(t, err)
		require.Len(t, alerts, 1)
	}
	require.Len(t, sink, 2, "without a cooldown every run notifies afresh")
}
