package dialect

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// onConflictSuffix builds the Postgres/SQLite ON CONFLICT clause shared by
// both dialects.
func onConflictSuffix(conflictCols, updateCols []string) string {
	sets := make([]string, len(updateCols))
	for i, c := range updateCols {
		sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
	}
	return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(conflictCols, ", "), strings.Join(sets, ", "))
}

type postgres struct{}

func (postgres) Name() Name { return Postgres }
func (postgres) Driver() string { return "pgx" }
func (postgres) Placeholder() squirrel.PlaceholderFormat { return squirrel.Dollar }
func (postgres) CurrentTimestamp() string { return "CURRENT_TIMESTAMP" }

func (postgres) DateTrunc(g Grain, expr string) (string, bool) {
	return fmt.Sprintf("date_trunc('%s', %s)", g, expr), true
}

func (postgres) Percentile(fraction float64, expr string) (string, bool) {
	return fmt.Sprintf("percentile_cont(%g) WITHIN GROUP (ORDER BY %s)", fraction, expr), true
}

func (postgres) UpsertSuffix(conflictCols, updateCols []string) (string, bool) {
	return onConflictSuffix(conflictCols, updateCols), true
}

func (postgres) ColumnsQuery(table string) (string, []any) {
	return "SELECT column_name FROM information_schema.columns WHERE table_name = $1 ORDER BY ordinal_position", []any{table}
}

type mysql struct{}

func (mysql) Name() Name { return MySQL }
func (mysql) Driver() string { return "mysql" }
func (mysql) Placeholder() squirrel.PlaceholderFormat { return squirrel.Question }
func (mysql) CurrentTimestamp() string { return "CURRENT_TIMESTAMP" }

func (mysql) DateTrunc(g Grain, expr string) (string, bool) {
	switch g {
	case GrainDay:
		return fmt.Sprintf("DATE(%s)", expr), true
	case GrainWeek:
		return fmt.Sprintf("DATE_SUB(DATE(%s), INTERVAL WEEKDAY(%s) DAY)", expr, expr), true
	case GrainMonth:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-01')", expr), true
	case GrainQuarter:
		return fmt.Sprintf("MAKEDATE(YEAR(%s), 1) + INTERVAL QUARTER(%s) - 1 QUARTER", expr, expr), true
	case GrainYear:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-01-01')", expr), true
	}
	return "", false
}

func (mysql) Percentile(float64, string) (string, bool) { return "", false }

func (mysql) UpsertSuffix(_, updateCols []string) (string, bool) {
	sets := make([]string, len(updateCols))
	for i, c := range updateCols {
		sets[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
	}
	return "ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", "), true
}

func (mysql) ColumnsQuery(table string) (string, []any) {
	return "SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position", []any{table}
}

type sqlserver struct{}

func (sqlserver) Name() Name { return SQLServer }
func (sqlserver) Driver() string { return "sqlserver" }
func (sqlserver) Placeholder() squirrel.PlaceholderFormat { return squirrel.AtP }
func (sqlserver) CurrentTimestamp() string { return "CURRENT_TIMESTAMP" }

func (sqlserver) DateTrunc(g Grain, expr string) (string, bool) {
	return fmt.Sprintf("DATETRUNC(%s, %s)", g, expr), true
}

func (sqlserver) Percentile(fraction float64, expr string) (string, bool) {
	return fmt.Sprintf("PERCENTILE_CONT(%g) WITHIN GROUP (ORDER BY %s) OVER ()", fraction, expr), true
}

// SQL Server upserts via MERGE statements, which cannot be expressed as an
// INSERT suffix.
func (sqlserver) UpsertSuffix(_, _ []string) (string, bool) { return "", false }

func (sqlserver) ColumnsQuery(table string) (string, []any) {
	return "SELECT column_name FROM information_schema.columns WHERE table_name = @p1 ORDER BY ordinal_position", []any{table}
}

type sqlite struct{}

func (sqlite) Name() Name { return SQLite }
func (sqlite) Driver() string { return "sqlite" }
func (sqlite) Placeholder() squirrel.PlaceholderFormat { return squirrel.Question }
func (sqlite) CurrentTimestamp() string { return "CURRENT_TIMESTAMP" }

func (sqlite) DateTrunc(g Grain, expr string) (string, bool) {
	switch g {
	case GrainDay:
		return fmt.Sprintf("date(%s)", expr), true
	case GrainWeek:
		// ISO week starting Monday
		return fmt.Sprintf("date(%s, 'weekday 0', '-6 days')", expr), true
	case GrainMonth:
		return fmt.Sprintf("date(%s, 'start of month')", expr), true
	case GrainYear:
		return fmt.Sprintf("date(%s, 'start of year')", expr), true
	}
	return "", false
}

func (sqlite) Percentile(float64, string) (string, bool) { return "", false }

func (sqlite) UpsertSuffix(conflictCols, updateCols []string) (string, bool) {
	return onConflictSuffix(conflictCols, updateCols), true
}

func (sqlite) ColumnsQuery(table string) (string, []any) {
	return "SELECT name FROM pragma_table_info(?)", []any{table}
}

type bigquery struct{}

func (bigquery) Name() Name { return BigQuery }
func (bigquery) Driver() string { return "bigquery" }
func (bigquery) Placeholder() squirrel.PlaceholderFormat { return squirrel.Question }
func (bigquery) CurrentTimestamp() string { return "CURRENT_TIMESTAMP()" }

func (bigquery) DateTrunc(g Grain, expr string) (string, bool) {
	return fmt.Sprintf("DATE_TRUNC(%s, %s)", expr, strings.ToUpper(string(g))), true
}

func (bigquery) Percentile(fraction float64, expr string) (string, bool) {
	return fmt.Sprintf("PERCENTILE_CONT(%s, %g) OVER ()", expr, fraction), true
}

// BigQuery upserts via MERGE statements only.
func (bigquery) UpsertSuffix(_, _ []string) (string, bool) { return "", false }

func (bigquery) ColumnsQuery(table string) (string, []any) {
	return "SELECT column_name FROM INFORMATION_SCHEMA.COLUMNS WHERE table_name = ? ORDER BY ordinal_position", []any{table}
}

type snowflake struct{}

func (snowflake) Name() Name { return Snowflake }
func (snowflake) Driver() string { return "snowflake" }
func (snowflake) Placeholder() squirrel.PlaceholderFormat { return squirrel.Question }
func (snowflake) CurrentTimestamp() string { return "CURRENT_TIMESTAMP" }

func (snowflake) DateTrunc(g Grain, expr string) (string, bool) {
	return fmt.Sprintf("DATE_TRUNC('%s', %s)", strings.ToUpper(string(g)), expr), true
}

func (snowflake) Percentile(fraction float64, expr string) (string, bool) {
	return fmt.Sprintf("PERCENTILE_CONT(%g) WITHIN GROUP (ORDER BY %s)", fraction, expr), true
}

// Snowflake upserts via MERGE statements only.
func (snowflake) UpsertSuffix(_, _ []string) (string, bool) { return "", false }

func (snowflake) ColumnsQuery(table string) (string, []any) {
	return "SELECT column_name FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position", []any{table}
}
