// Package renamer rewrites author attributions across a documentation
// tree. The file tree is an explicit filesystem handle passed in, and the
// result is a change-report value; nothing global is mutated, which keeps
// the operation testable against an in-memory filesystem.
package renamer

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Options controls one rename pass.
type Options struct {
	// Old is the author string to replace. Required.
	Old string
	// New is the replacement author string. Required.
	New string
	// Globs filter files by base name, e.g. "*.md", "*.sql".
	// Empty means every regular file.
	Globs []string
	// DryRun reports what would change without writing anything.
	DryRun bool
}

// ChangeReport is the outcome of a rename pass.
type ChangeReport struct {
	// Changed lists the files rewritten (or, in a dry run, the files
	// that would be rewritten), relative to the walk root.
	Changed []string
	// Examined counts the files whose content was inspected.
	Examined int
	// Failed maps file paths to the error that stopped them.
	Failed map[string]error
}

// Ok reports whether the pass completed without per-file errors.
func (r ChangeReport) Ok() bool { return len(r.Failed) == 0 }

// Rename walks root on fsys and replaces every occurrence of opts.Old with
// opts.New in matching files. Files that cannot be read or written are
// recorded in the report rather than aborting the walk, so one unreadable
// file does not stop a documentation-wide rename.
func Rename(fsys afero.Fs, root string, opts Options) (ChangeReport, error) {
	report := ChangeReport{Failed: make(map[string]error)}

	if opts.Old == "" {
		return report, fmt.Errorf("renamer: old author is empty")
	}
	if opts.New == "" {
		return report, fmt.Errorf("renamer: new author is empty")
	}
	for _, g := range opts.Globs {
		if _, err := path.Match(g, ""); err != nil {
			return report, fmt.Errorf("renamer: bad glob %q: %w", g, err)
		}
	}

	err := afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			report.Failed[p] = err
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if !matches(opts.Globs, filepath.Base(p)) {
			return nil
		}

		report.Examined++

		data, err := afero.ReadFile(fsys, p)
		if err != nil {
			report.Failed[p] = err
			return nil
		}
		content := string(data)
		if !strings.Contains(content, opts.Old) {
			return nil
		}

		if !opts.DryRun {
			updated := strings.ReplaceAll(content, opts.Old, opts.New)
			if err := afero.WriteFile(fsys, p, []byte(updated), info.Mode()); err != nil {
				report.Failed[p] = err
				return nil
			}
		}
		report.Changed = append(report.Changed, p)
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("renamer: walk %s: %w", root, err)
	}

	return report, nil
}

func matches(globs []string, base string) bool {
	if len(globs) == 0 {
		return true
	}
	for _, g := range globs {
		if ok, _ := path.Match(g, base); ok {
			return true
		}
	}
	return false
}
