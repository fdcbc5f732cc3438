package main

import (
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/trailblazer-analytics/reportpipe/dialect"
	"github.com/trailblazer-analytics/reportpipe/report"
)

func newRunCmd(logger *log.Logger) *cobra.Command {
	var (
		dsn  string
		days int
	)

	cmd := &cobra.Command{
		Use:   "run <definition.yaml>",
		Short: "Run a report definition",
		Long: `Run loads a YAML report definition, connects to the store it names,
and executes the pipeline once for the reporting window ending now.
Failures surface immediately; nothing is retried.

Bundled drivers cover postgres and sqlite. Other dialects build their SQL
here but need their driver linked into a custom binary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := report.LoadFile(args[0])
			if err != nil {
				return err
			}
			if dsn != "" {
				cfg.Store.DSN = dsn
			}
			if days > 0 {
				cfg.WindowDays = days
			}

			d, err := dialect.Parse(cfg.Store.Dialect)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := sql.Open(d.Driver(), cfg.Store.DSN)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer db.Close()

			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("store unreachable: %w", err)
			}

			logger.Debug("store connected", "dialect", d.Name(), "report", cfg.Name)
			return report.NewRunner(cfg, db, logger, os.Stdout).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", "", "override the store DSN from the definition")
	cmd.Flags().IntVar(&days, "days", 0, "override the reporting window in days")

	return cmd
}
