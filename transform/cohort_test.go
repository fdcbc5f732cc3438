package transform_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/trailblazer-analytics/reportpipe"
	"github.com/trailblazer-analytics/reportpipe/transform"
)

func cohortFrame() *reportpipe.Frame {
	f := reportpipe.NewFrame(
		reportpipe.Dim("cohort"),
		reportpipe.Dim("period"),
		reportpipe.Measure("active"),
	)
	f.MustAppend(reportpipe.Text("2024-01"), reportpipe.NumberInt(0), reportpipe.NumberInt(10))
	f.MustAppend(reportpipe.Text("2024-01"), reportpipe.NumberInt(1), reportpipe.NumberInt(3))
	f.MustAppend(reportpipe.Text("2024-02"), reportpipe.NumberInt(0), reportpipe.NumberInt(8))
	f.MustAppend(reportpipe.Text("2024-02"), reportpipe.NumberInt(1), reportpipe.NumberInt(4))
	return f
}

func TestCohort_Retention(t *testing.T) {
	out, err := transform.Cohort{}.Apply(cohortFrame())
	require.NoError(t, err)
	require.Equal(t, 4, out.Len())

	retention := func(row int) reportpipe.Value {
		v, ok := out.Value(row, "retention_pct")
		require.True(t, ok)
		return v
	}

	// 3 of 10 retained is exactly 30, not 29.999….
	require.True(t, retention(1).Decimal().Equal(decimal.RequireFromString("30")))
	require.Equal(t, "100", retention(0).String())
	require.Equal(t, "50", retention(3).String())
}

func TestCohort_MissingBasePeriod(t *testing.T) {
	f := reportpipe.NewFrame(
		reportpipe.Dim("cohort"),
		reportpipe.Dim("period"),
		reportpipe.Measure("active"),
	)
	// No period-0 row for this cohort.
	f.MustAppend(reportpipe.Text("2024-03"), reportpipe.NumberInt(1), reportpipe.NumberInt(5))

	out, err := transform.Cohort{}.Apply(f)
	require.NoError(t, err)

	v, _ := out.Value(0, "retention_pct")
	require.True(t, v.IsNull(), "no cohort size to divide by yields blank, not zero")
}

func TestCohort_ZeroSizeCohort(t *testing.T) {
	f := reportpipe.NewFrame(
		reportpipe.Dim("cohort"),
		reportpipe.Dim("period"),
		reportpipe.Measure("active"),
	)
	f.MustAppend(reportpipe.Text("2024-04"), reportpipe.NumberInt(0), reportpipe.NumberInt(0))
	f.MustAppend(reportpipe.Text("2024-04"), reportpipe.NumberInt(1), reportpipe.NumberInt(0))

	out, err := transform.Cohort{}.Apply(f)
	require.NoError(t, err)

	for row := 0; row < out.Len(); row++ {
		v, _ := out.Value(row, "retention_pct")
		require.True(t, v.IsNull(), "row %d", row)
	}
}

func TestCohort_CustomColumns(t *testing.T) {
	f := reportpipe.NewFrame(
		reportpipe.Dim("signup_month"),
		reportpipe.Dim("offset"),
		reportpipe.Measure("buyers"),
	)
	f.MustAppend(reportpipe.Text("2024-01"), reportpipe.NumberInt(0), reportpipe.NumberInt(4))
	f.MustAppend(reportpipe.Text("2024-01"), reportpipe.NumberInt(2), reportpipe.NumberInt(1))

	out, err := transform.Cohort{
		CohortColumn: "signup_month",
		PeriodColumn: "offset",
		ActiveColumn: "buyers",
	}.Apply(f)
	require.NoError(t, err)

	v, ok := out.Value(1, "retention_pct")
	require.True(t, ok)
	require.Equal(t, "25", v.String())
}

func TestCohort_PureInputUnchanged(t *testing.T) {
	in := cohortFrame()
	snapshot := in.Clone()

	_, err := transform.Cohort{}.Apply(in)
	require.NoError(t, err)
	require.True(t, in.Equal(snapshot))
}
