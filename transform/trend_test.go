package transform_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trailblazer-analytics/reportpipe"
	"github.com/trailblazer-analytics/reportpipe/transform"
)

func trendFrame() *reportpipe.Frame {
	f := reportpipe.NewFrame(reportpipe.Dim("period"), reportpipe.Measure("revenue"))
	f.MustAppend(reportpipe.Text("2024-01"), reportpipe.NumberInt(200))
	f.MustAppend(reportpipe.Text("2024-02"), reportpipe.NumberInt(250))
	f.MustAppend(reportpipe.Text("2024-03"), reportpipe.NumberInt(225))
	return f
}

func TestTrend_ChangeColumns(t *testing.T) {
	out, err := transform.Trend{}.Apply(trendFrame())
	require.NoError(t, err)

	cell := func(row int, col string) reportpipe.Value {
		v, ok := out.Value(row, col)
		require.True(t, ok)
		return v
	}

	require.True(t, cell(0, "revenue_prev").IsNull(), "first period has no prior")
	require.True(t, cell(0, "revenue_change_pct").IsNull())

	require.Equal(t, "200", cell(1, "revenue_prev").String())
	require.Equal(t, "25", cell(1, "revenue_change_pct").String())

	require.Equal(t, "250", cell(2, "revenue_prev").String())
	require.Equal(t, "-10", cell(2, "revenue_change_pct").String())
}

func TestTrend_ZeroPrior(t *testing.T) {
	f := reportpipe.NewFrame(reportpipe.Dim("period"), reportpipe.Measure("orders"))
	f.MustAppend(reportpipe.Text("2024-01"), reportpipe.NumberInt(0))
	f.MustAppend(reportpipe.Text("2024-02"), reportpipe.NumberInt(12))

	out, err := transform.Trend{}.Apply(f)
	require.NoError(t, err)

	v, _ := out.Value(1, "orders_change_pct")
	require.True(t, v.IsNull(), "division by a zero prior yields blank")
	v, _ = out.Value(1, "orders_prev")
	require.Equal(t, "0", v.String())
}

func TestTrend_NullPrior(t *testing.T) {
	f := reportpipe.NewFrame(reportpipe.Dim("period"), reportpipe.Measure("orders"))
	f.MustAppend(reportpipe.Text("2024-01"), reportpipe.Null())
	f.MustAppend(reportpipe.Text("2024-02"), reportpipe.NumberInt(12))

	out, err := transform.Trend{}.Apply(f)
	require.NoError(t, err)

	v, _ := out.Value(1, "orders_change_pct")
	require.True(t, v.IsNull())
}

func TestTrend_SelectedMeasuresOnly(t *testing.T) {
	f := reportpipe.NewFrame(
		reportpipe.Dim("period"),
		reportpipe.Measure("revenue"),
		reportpipe.Measure("orders"),
	)
	f.MustAppend(reportpipe.Text("2024-01"), reportpipe.NumberInt(100), reportpipe.NumberInt(10))
	f.MustAppend(reportpipe.Text("2024-02"), reportpipe.NumberInt(150), reportpipe.NumberInt(15))

	out, err := transform.Trend{Measures: []string{"orders"}}.Apply(f)
	require.NoError(t, err)

	_, ok := out.ColumnIndex("orders_change_pct")
	require.True(t, ok)
	_, ok = out.ColumnIndex("revenue_change_pct")
	require.False(t, ok)
}

func TestTrend_MissingPeriodColumn(t *testing.T) {
	f := reportpipe.NewFrame(reportpipe.Dim("month"), reportpipe.Measure("revenue"))

	_, err := transform.Trend{}.Apply(f)
	require.Error(t, err)
	require.Contains(t, err.Error(), "period")
}

func TestTrend_PureInputUnchanged(t *testing.T) {
	in := trendFrame()
	snapshot := in.Clone()

	_, err := transform.Trend{}.Apply(in)
	require.NoError(t, err)
	require.True(t, in.Equal(snapshot))
}
