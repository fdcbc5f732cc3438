package transform_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trailblazer-analytics/reportpipe"
	"github.com/trailblazer-analytics/reportpipe/transform"
)

func TestPivot_CohortMatrix(t *testing.T) {
	f := reportpipe.NewFrame(
		reportpipe.Dim("cohort"),
		reportpipe.Dim("period"),
		reportpipe.Measure("retention_pct"),
	)
	f.MustAppend(reportpipe.Text("2024-01"), reportpipe.Text("0"), reportpipe.NumberInt(100))
	f.MustAppend(reportpipe.Text("2024-01"), reportpipe.Text("1"), reportpipe.NumberInt(30))
	f.MustAppend(reportpipe.Text("2024-02"), reportpipe.Text("0"), reportpipe.NumberInt(100))

	out, err := transform.Pivot{
		RowColumn:    "cohort",
		ColumnColumn: "period",
		ValueColumn:  "retention_pct",
	}.Apply(f)
	require.NoError(t, err)

	require.Equal(t, 2, out.Len())
	require.Len(t, out.Cols, 3)
	require.Equal(t, "cohort", out.Cols[0].Name)
	require.Equal(t, "0", out.Cols[1].Name)
	require.Equal(t, "1", out.Cols[2].Name)

	v, _ := out.Value(0, "1")
	require.Equal(t, "30", v.String())

	// 2024-02 has no period-1 observation yet.
	v, _ = out.Value(1, "1")
	require.True(t, v.IsNull())
}

func TestPivot_LaterRowWins(t *testing.T) {
	f := reportpipe.NewFrame(
		reportpipe.Dim("region"),
		reportpipe.Dim("month"),
		reportpipe.Measure("revenue"),
	)
	f.MustAppend(reportpipe.Text("west"), reportpipe.Text("jan"), reportpipe.NumberInt(1))
	f.MustAppend(reportpipe.Text("west"), reportpipe.Text("jan"), reportpipe.NumberInt(2))

	out, err := transform.Pivot{RowColumn: "region", ColumnColumn: "month", ValueColumn: "revenue"}.Apply(f)
	require.NoError(t, err)

	v, _ := out.Value(0, "jan")
	require.Equal(t, "2", v.String())
}

func TestPivot_MissingColumn(t *testing.T) {
	f := reportpipe.NewFrame(reportpipe.Dim("region"))

	_, err := transform.Pivot{RowColumn: "region", ColumnColumn: "month", ValueColumn: "revenue"}.Apply(f)
	require.Error(t, err)
	require.Contains(t, err.Error(), "month")
}
