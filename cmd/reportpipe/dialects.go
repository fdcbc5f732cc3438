package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trailblazer-analytics/reportpipe/dialect"
)

func newDialectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported SQL dialects",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range dialect.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
