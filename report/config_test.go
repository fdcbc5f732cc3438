package report_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trailblazer-analytics/reportpipe/report"
)

const validDefinition = `
name: weekly health
store:
  dialect: sqlite
  dsn: file:reports.db
sections:
  - name: revenue by region
    table: orders
    time_column: order_date
    dimensions: [region]
    measures:
      - expr: SUM(order_total)
        as: revenue
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := report.Load([]byte(validDefinition))
	require.NoError(t, err)

	require.Equal(t, "weekly health", cfg.Name)
	require.Equal(t, 30, cfg.WindowDays, "window defaults to the last 30 days")
	require.Len(t, cfg.Sections, 1)
	require.Equal(t, "revenue by region", cfg.Sections[0].Name)
	require.Equal(t, "SUM(order_total)", cfg.Sections[0].Measures[0].Expr)
}

func TestLoad_FullDefinition(t *testing.T) {
	cfg, err := report.Load([]byte(`
name: order funnel
window_days: 7
workers: 4
query_timeout: 30s
alert_cooldown: 1h
store:
  dialect: postgres
  dsn: postgres://localhost/shop
sections:
  - name: funnel
    table: funnel_steps
    dimensions: [step]
    measures:
      - expr: SUM(members)
        as: count
    transform:
      kind: funnel
      strict: true
    output: table
    alerts:
      - name: low conversion
        column: conversion_pct
        op: "<"
        threshold: "50"
        key_columns: [step]
`))
	require.NoError(t, err)
	require.Equal(t, 7, cfg.WindowDays)
	require.Equal(t, 4, cfg.Workers)
	require.True(t, cfg.Sections[0].Transform.Strict)
	require.Equal(t, "<", cfg.Sections[0].Alerts[0].Op)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing name",
			yaml: `
store: {dialect: sqlite, dsn: x}
sections:
  - name: s
    table: t
    measures: [{expr: "COUNT(*)", as: n}]
`,
		},
		{
			name: "no sections",
			yaml: `
name: r
store: {dialect: sqlite, dsn: x}
sections: []
`,
		},
		{
			name: "section without measures",
			yaml: `
name: r
store: {dialect: sqlite, dsn: x}
sections:
  - name: s
    table: t
`,
		},
		{
			name: "unknown grain",
			yaml: `
name: r
store: {dialect: sqlite, dsn: x}
sections:
  - name: s
    table: t
    grain: fortnight
    measures: [{expr: "COUNT(*)", as: n}]
`,
		},
		{
			name: "unknown output",
			yaml: `
name: r
store: {dialect: sqlite, dsn: x}
sections:
  - name: s
    table: t
    output: pdf
    measures: [{expr: "COUNT(*)", as: n}]
`,
		},
		{
			name: "unknown transform kind",
			yaml: `
name: r
store: {dialect: sqlite, dsn: x}
sections:
  - name: s
    table: t
    transform: {kind: rollup}
    measures: [{expr: "COUNT(*)", as: n}]
`,
		},
		{
			name: "bad query timeout",
			yaml: `
name: r
query_timeout: soon
store: {dialect: sqlite, dsn: x}
sections:
  - name: s
    table: t
    measures: [{expr: "COUNT(*)", as: n}]
`,
		},
		{
			name: "negative cooldown",
			yaml: `
name: r
alert_cooldown: -5m
store: {dialect: sqlite, dsn: x}
sections:
  - name: s
    table: t
    measures: [{expr: "COUNT(*)", as: n}]
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := report.Load([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := report.LoadFile("definitions/nope.yaml")
	require.Error(t, err)
}
