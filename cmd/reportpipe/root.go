package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "reportpipe",
	})

	cmd := &cobra.Command{
		Use:   "reportpipe",
		Short: "Batch analytical reporting pipeline",
		Long: `reportpipe runs declarative analytical reports against a relational
store: it extracts aggregated result sets, reshapes them (funnels, cohort
retention, trends, pivots), and renders tables, CSV files and threshold
alerts. Each run is single-shot and stateless.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newRunCmd(logger),
		newRenameCmd(logger),
		newDialectsCmd(),
	)

	return cmd
}
