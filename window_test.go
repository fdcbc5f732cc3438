package reportpipe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trailblazer-analytics/reportpipe"
)

func TestNewWindow_Validates(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	w, err := reportpipe.NewWindow(start, end)
	require.NoError(t, err)
	require.Equal(t, start, w.Start)
	require.Equal(t, end, w.End)

	_, err = reportpipe.NewWindow(end, start)
	require.Error(t, err)

	_, err = reportpipe.NewWindow(start, start)
	require.Error(t, err)
}

func TestWindow_Prior(t *testing.T) {
	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	w := reportpipe.LastDays(now, 30)
	prior := w.Prior()

	require.Equal(t, w.Duration(), prior.Duration())
	require.Equal(t, w.Start, prior.End)
	require.Equal(t, now.AddDate(0, 0, -60), prior.Start)
}

func TestWindow_Contains(t *testing.T) {
	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	w := reportpipe.LastDays(now, 30)

	require.True(t, w.Contains(w.Start))
	require.False(t, w.Contains(w.End)) // half-open
	require.True(t, w.Contains(now.AddDate(0, 0, -1)))
	require.False(t, w.Contains(now.AddDate(0, 0, -31)))
}
