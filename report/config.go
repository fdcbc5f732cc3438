// Package report loads declarative report definitions and runs them.
// A definition names the store, the reporting window, and a list of
// sections; each section is one extract request with an optional transform,
// an output format, and alert rules.
package report

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

// Config is one report definition.
type Config struct {
	Name  string      `yaml:"name" validate:"required"`
	Store StoreConfig `yaml:"store"`

	// WindowDays sets the reporting window: the last N days ending at
	// run time. Defaults to 30.
	WindowDays int `yaml:"window_days" validate:"gte=1"`

	// Workers bounds concurrent section extraction. Defaults to 1
	// (sequential).
	Workers int `yaml:"workers" validate:"gte=0"`

	// QueryTimeout bounds each extract, as a Go duration string such as
	// "30s". Empty means no timeout.
	QueryTimeout string `yaml:"query_timeout"`

	// AlertCooldown suppresses repeat alerts for the same rule and key
	// within the window, as a Go duration string. Empty disables
	// cross-run de-duplication.
	AlertCooldown string `yaml:"alert_cooldown"`

	Sections []SectionConfig `yaml:"sections" validate:"min=1,dive"`
}

// StoreConfig names the relational store a report runs against.
type StoreConfig struct {
	Dialect string `yaml:"dialect" validate:"required"`
	DSN     string `yaml:"dsn" validate:"required"`
}

// SectionConfig is one independently extracted slice of a report.
type SectionConfig struct {
	Name       string `yaml:"name" validate:"required"`
	Table      string `yaml:"table" validate:"required"`
	TimeColumn string `yaml:"time_column"`

	// Grain adds a truncated copy of the time column as a "period"
	// grouping dimension.
	Grain string `yaml:"grain" validate:"omitempty,oneof=day week month quarter year"`

	Dimensions []string        `yaml:"dimensions"`
	Measures   []MeasureConfig `yaml:"measures" validate:"min=1,dive"`
	Filters    map[string]any  `yaml:"filters"`
	OrderBy    []string        `yaml:"order_by"`
	Limit      uint64          `yaml:"limit"`

	Transform *TransformConfig `yaml:"transform"`

	// Output selects the renderer. Defaults to "table".
	Output string `yaml:"output" validate:"omitempty,oneof=table csv"`

	Alerts []AlertConfig `yaml:"alerts" validate:"dive"`
}

// MeasureConfig is one aggregate expression of a section.
type MeasureConfig struct {
	Expr string `yaml:"expr" validate:"required"`
	As   string `yaml:"as" validate:"required"`
}

// TransformConfig selects and parameterizes a section's transform.
type TransformConfig struct {
	Kind string `yaml:"kind" validate:"required,oneof=funnel cohort trend pivot"`

	// Funnel
	StepColumn  string `yaml:"step_column"`
	CountColumn string `yaml:"count_column"`
	Strict      bool   `yaml:"strict"`

	// Cohort
	CohortColumn string `yaml:"cohort_column"`
	ActiveColumn string `yaml:"active_column"`

	// Funnel/cohort/trend share the period naming; trend also selects
	// measures.
	PeriodColumn string   `yaml:"period_column"`
	Measures     []string `yaml:"measures"`

	// Pivot
	RowColumn    string `yaml:"row_column"`
	ColumnColumn string `yaml:"column_column"`
	ValueColumn  string `yaml:"value_column"`
}

// AlertConfig is one threshold rule on a section's output.
type AlertConfig struct {
	Name       string   `yaml:"name" validate:"required"`
	Column     string   `yaml:"column" validate:"required"`
	Op         string   `yaml:"op" validate:"required"`
	Threshold  string   `yaml:"threshold" validate:"required"`
	KeyColumns []string `yaml:"key_columns"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load parses and validates a report definition.
func Load(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("report: parse definition: %w", err)
	}

	if cfg.WindowDays == 0 {
		cfg.WindowDays = 30
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("report: invalid definition: %w", err)
	}
	if _, err := cfg.queryTimeout(); err != nil {
		return nil, err
	}
	if _, err := cfg.alertCooldown(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads and parses a report definition from disk.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: read definition: %w", err)
	}
	return Load(data)
}

func (c *Config) queryTimeout() (time.Duration, error) {
	return parseDuration("query_timeout", c.QueryTimeout)
}

func (c *Config) alertCooldown() (time.Duration, error) {
	return parseDuration("alert_cooldown", c.AlertCooldown)
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("report: %s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("report: %s: negative duration %q", field, s)
	}
	return d, nil
}
