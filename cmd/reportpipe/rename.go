package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/trailblazer-analytics/reportpipe/internal/renamer"
)

func newRenameCmd(logger *log.Logger) *cobra.Command {
	var (
		oldName string
		newName string
		root    string
		globs   []string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "rename-author",
		Short: "Rewrite author attributions across a documentation tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := renamer.Rename(afero.NewOsFs(), root, renamer.Options{
				Old:    oldName,
				New:    newName,
				Globs:  globs,
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}

			for _, f := range report.Changed {
				logger.Info("changed", "file", f, "dry_run", dryRun)
			}
			for f, ferr := range report.Failed {
				logger.Error("failed", "file", f, "error", ferr)
			}
			logger.Info("rename complete",
				"examined", report.Examined,
				"changed", len(report.Changed),
				"failed", len(report.Failed),
			)

			if !report.Ok() {
				return fmt.Errorf("rename finished with %d failed files", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&oldName, "old", "", "author string to replace")
	cmd.Flags().StringVar(&newName, "new", "", "replacement author string")
	cmd.Flags().StringVar(&root, "root", ".", "directory tree to rewrite")
	cmd.Flags().StringSliceVar(&globs, "glob", []string{"*.md", "*.sql"}, "base-name globs selecting files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")

	return cmd
}
