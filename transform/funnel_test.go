package transform_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trailblazer-analytics/reportpipe"
	"github.com/trailblazer-analytics/reportpipe/transform"
)

func funnelFrame(counts ...int64) *reportpipe.Frame {
	steps := []string{"active", "ordered", "repeat", "advocate"}
	f := reportpipe.NewFrame(reportpipe.Dim("step"), reportpipe.Measure("count"))
	for i, n := range counts {
		f.MustAppend(reportpipe.Text(steps[i]), reportpipe.NumberInt(n))
	}
	return f
}

func TestFunnel_ConversionRates(t *testing.T) {
	in := funnelFrame(100, 40, 10, 3)

	out, err := transform.Funnel{}.Apply(in)
	require.NoError(t, err)
	require.Equal(t, 4, out.Len())

	conv := func(row int) reportpipe.Value {
		v, ok := out.Value(row, "conversion_pct")
		require.True(t, ok)
		return v
	}
	overall := func(row int) reportpipe.Value {
		v, ok := out.Value(row, "overall_pct")
		require.True(t, ok)
		return v
	}

	require.True(t, conv(0).IsNull(), "first step has no previous step")
	require.Equal(t, "40", conv(1).String())
	require.Equal(t, "25", conv(2).String())
	require.Equal(t, "30", conv(3).String())

	require.Equal(t, "100", overall(0).String())
	require.Equal(t, "40", overall(1).String())
	require.Equal(t, "10", overall(2).String())
	require.Equal(t, "3", overall(3).String())
}

func TestFunnel_ZeroCountStep(t *testing.T) {
	in := funnelFrame(100, 0, 0)

	out, err := transform.Funnel{}.Apply(in)
	require.NoError(t, err)

	// Step after a zero-count step: null conversion, never a division error.
	v, _ := out.Value(2, "conversion_pct")
	require.True(t, v.IsNull())
	v, _ = out.Value(1, "conversion_pct")
	require.Equal(t, "0", v.String())
}

func TestFunnel_StrictOrderViolation(t *testing.T) {
	in := funnelFrame(100, 40, 55)

	_, err := transform.Funnel{Strict: true}.Apply(in)
	require.ErrorIs(t, err, transform.ErrFunnelOrder)

	// Non-strict mode lets the data through.
	out, err := transform.Funnel{}.Apply(in)
	require.NoError(t, err)
	require.Equal(t, 3, out.Len())
}

func TestFunnel_CustomColumns(t *testing.T) {
	in := reportpipe.NewFrame(reportpipe.Dim("stage"), reportpipe.Measure("customers"))
	in.MustAppend(reportpipe.Text("signup"), reportpipe.NumberInt(10))
	in.MustAppend(reportpipe.Text("paid"), reportpipe.NumberInt(5))

	out, err := transform.Funnel{StepColumn: "stage", CountColumn: "customers"}.Apply(in)
	require.NoError(t, err)

	v, ok := out.Value(1, "conversion_pct")
	require.True(t, ok)
	require.Equal(t, "50", v.String())
}

func TestFunnel_MissingColumn(t *testing.T) {
	in := reportpipe.NewFrame(reportpipe.Dim("step"))
	in.MustAppend(reportpipe.Text("active"))

	_, err := transform.Funnel{}.Apply(in)
	require.Error(t, err)
	require.Contains(t, err.Error(), "count")
}

func TestFunnel_PureInputUnchanged(t *testing.T) {
	in := funnelFrame(100, 40)
	snapshot := in.Clone()

	_, err := transform.Funnel{}.Apply(in)
	require.NoError(t, err)
	require.True(t, in.Equal(snapshot))

	again, err := transform.Funnel{}.Apply(in)
	require.NoError(t, err)
	first, err := transform.Funnel{}.Apply(in)
	require.NoError(t, err)
	require.True(t, first.Equal(again))
}
