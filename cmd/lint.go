// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luthersystems/jsscope/lint"
	"github.com/luthersystems/jsscope/semantic"
)

// LintCommand creates the "lint" cobra command. Embedders can pass
// WithGlobals or WithEnvironments to declare the names their host
// provides.
func LintCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var (
		jsonOut    bool
		checks     string
		listAll    bool
		excludes   []string
		envs       []string
		configPath string
		noConfig   bool
		workspace  string
		cacheDir   string
		jobs       int
	)

	cmd := &cobra.Command{
		Use:           "lint [flags] [files...]",
		SilenceUsage:  true,
		SilenceErrors: true,
		Short:         "Report undefined, unused and misused names in JavaScript files",
		Long: `Run static analysis checks on JavaScript source files.

The linter resolves every identifier to its declaration and reports the
names that resolve badly: undefined variables, unused bindings, shadowing,
assignments to constants and the like. It does not report style issues;
use "jsscope fmt" for that.

With no files, reads from stdin. With files, analyzes them concurrently and
reports all findings to stderr. A directory argument ending in /... names
every source file below it.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable or unparsable files)

To suppress a diagnostic, add a comment on the line above:
  // jsscope-disable-next-line no-undef

or at the end of the line:
  legacy(); // jsscope-disable-line

Declare globals the file expects with a block comment:
  /* global jQuery, analytics:writable */

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc(0) + `Examples:
  jsscope lint app.js                                # Lint a single file
  jsscope lint ./...                                 # Lint every file below .
  jsscope lint --json app.js                         # Output diagnostics as JSON
  jsscope lint --checks=no-undef app.js              # Run only specific checks
  jsscope lint --env browser app.js                  # Predefine browser globals
  jsscope lint --workspace . src/page.js             # Share script globals across files
  jsscope lint --exclude='dist' ./...                # Exclude a directory
  cat app.js | jsscope lint                          # Lint from stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
			if listAll {
				for _, name := range lint.AnalyzerNames() {
					fmt.Fprintln(stdout, name) //nolint:errcheck // best-effort output
				}
				return nil
			}

			var project *lint.Config
			switch {
			case noConfig:
			case configPath != "":
				c, err := lint.LoadConfig(configPath)
				if err != nil {
					return exitCode(2, err)
				}
				project = c
			default:
				if path, ok := lint.FindConfig("."); ok {
					c, err := lint.LoadConfig(path)
					if err != nil {
						return exitCode(2, err)
					}
					project = c
				}
			}

			analysis := &semantic.Config{Jobs: jobs, Logger: cfg.log}
			if cacheDir != "" {
				cache, err := semantic.OpenDiskCache(cacheDir)
				if err != nil {
					return exitCode(2, err)
				}
				analysis.Cache = cache
			}
			l, err := cfg.linter(project, envs, analysis)
			if err != nil {
				return exitCode(2, err)
			}
			if checks != "" {
				analyzers, err := selectAnalyzers(l.Analyzers, strings.Split(checks, ","))
				if err != nil {
					return exitCode(2, err)
				}
				l.Analyzers = analyzers
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if workspace != "" {
				syms, err := semantic.ScanWorkspace(ctx, workspace, l.Analysis)
				if err != nil {
					return exitCode(2, fmt.Errorf("scanning workspace: %w", err))
				}
				l.Workspace = syms
			}

			var files []semantic.File
			sources := make(map[string][]byte)
			if len(args) == 0 {
				src, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return exitCode(2, fmt.Errorf("reading stdin: %w", err))
				}
				files = append(files, semantic.File{Path: "<stdin>", Source: src})
				sources["<stdin>"] = src
			} else {
				paths, err := expandArgs(args, excludes)
				if err != nil {
					return exitCode(2, err)
				}
				for _, path := range paths {
					src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
					if err != nil {
						return exitCode(2, fmt.Errorf("%s: %w", path, err))
					}
					files = append(files, semantic.File{Path: path, Source: src})
				}
			}

			results, err := l.LintFiles(ctx, files)
			if err != nil {
				return exitCode(2, err)
			}
			var all []lint.Diagnostic
			failed := false
			for _, res := range results {
				if res.Err != nil {
					failed = true
					renderSyntaxError(stderr, res.Path, res.Err, sources)
					continue
				}
				all = append(all, res.Diagnostics...)
			}
			lint.SortDiagnostics(all)

			if jsonOut {
				if err := lint.FormatJSON(stdout, all); err != nil {
					return exitCode(2, err)
				}
			} else {
				renderLintDiagnostics(stderr, all, sources)
			}
			switch {
			case failed:
				return exitCode(2, nil)
			case len(all) > 0:
				return exitCode(1, nil)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&jsonOut, "json", false,
		"Output diagnostics as JSON.")
	flags.StringVar(&checks, "checks", "",
		"Comma-separated list of checks to run (default: all enabled).")
	flags.BoolVar(&listAll, "list", false,
		"List available checks and exit.")
	flags.StringArrayVar(&excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	flags.StringSliceVar(&envs, "env", nil,
		"Predefined global environments: "+environmentList()+".")
	flags.StringVar(&configPath, "config", "",
		"Project configuration file (default: nearest "+lint.ConfigFileName+").")
	flags.BoolVar(&noConfig, "no-config", false,
		"Ignore "+lint.ConfigFileName+" files.")
	flags.StringVar(&workspace, "workspace", "",
		"Directory whose script declarations are shared as globals.")
	flags.StringVar(&cacheDir, "cache", "",
		"Directory caching workspace declarations between runs.")
	flags.IntVarP(&jobs, "jobs", "j", 0,
		"Files analyzed in parallel (default: unlimited).")

	return cmd
}

// linter builds the linter for a project configuration, adding the
// environments named on the command line and the embedder's globals.
func (c *cmdConfig) linter(project *lint.Config, envs []string, analysis *semantic.Config) (*lint.Linter, error) {
	var merged lint.Config
	if project != nil {
		merged = *project
	}
	merged.Env = append(append([]string(nil), merged.Env...), envs...)
	for _, e := range c.envs {
		merged.Env = append(merged.Env, string(e))
	}
	l, err := lint.NewLinter(&merged, analysis)
	if err != nil {
		if project != nil && project.Path != "" {
			return nil, fmt.Errorf("%s: %w", project.Path, err)
		}
		return nil, err
	}
	for name, writable := range c.globals {
		l.Globals[name] = writable
	}
	return l, nil
}

// selectAnalyzers keeps the analyzers named in names. Names that are not
// among the enabled analyzers are an error.
func selectAnalyzers(enabled []*lint.Analyzer, names []string) ([]*lint.Analyzer, error) {
	if _, err := lint.LookupAnalyzers(names); err != nil {
		return nil, err
	}
	byName := make(map[string]*lint.Analyzer, len(enabled))
	for _, a := range enabled {
		byName[a.Name] = a
	}
	var out []*lint.Analyzer
	var disabled []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if a, ok := byName[name]; ok {
			out = append(out, a)
		} else {
			disabled = append(disabled, name)
		}
	}
	if len(disabled) > 0 {
		return nil, errors.New("checks disabled by configuration: " + strings.Join(disabled, ", "))
	}
	return out, nil
}

func environmentList() string {
	envs := semantic.Environments()
	names := make([]string, len(envs))
	for i, e := range envs {
		names[i] = string(e)
	}
	return strings.Join(names, ", ")
}

// configDir returns the directory a project configuration applies to.
func configDir(project *lint.Config) string {
	if project == nil || project.Path == "" {
		return ""
	}
	return filepath.Dir(project.Path)
}
