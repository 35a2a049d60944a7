// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luthersystems/jsscope/formatter"
)

var (
	fmtWrite      bool
	fmtDiff       bool
	fmtList       bool
	fmtIndentSize int
	fmtTabs       bool
	fmtCaseIndent bool
	fmtExcludes   []string
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] [files...]",
	Short: "Reindent JavaScript source files",
	Long: `Reindent JavaScript source files by bracket depth.

The formatter parses each file, then rewrites the leading whitespace of
every line from the nesting of brackets, blocks and continued expressions.
Tokens never move between lines. String, template, regexp and JSX text as
well as comments are left as written. Runs of blank lines are collapsed
and trailing whitespace is removed. The formatter is idempotent.

With no files, reads from stdin and writes to stdout.
With files, prints formatted output to stdout unless -w is given.

Modes:
  (default)   Print formatted code to stdout
  -w          Write result back to source file
  -d          Display a diff of changes
  -l          List files that would be changed

Examples:
  jsscope fmt app.js                 Print formatted output
  jsscope fmt -w app.js              Format in place
  jsscope fmt -w ./...               Format every source file below .
  jsscope fmt -d app.js              Show what would change
  jsscope fmt -l ./...               List files needing formatting
  cat app.js | jsscope fmt           Format from stdin
  jsscope fmt --indent-size 4 a.js   Use 4-space indentation`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := formatter.DefaultConfig()
		cfg.IndentSize = fmtIndentSize
		cfg.UseTabs = fmtTabs
		cfg.IndentCaseBodies = fmtCaseIndent
		stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

		if len(args) == 0 {
			src, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return exitCode(1, fmt.Errorf("reading stdin: %w", err))
			}
			out, err := formatter.Format(src, cfg)
			if err != nil {
				renderSyntaxError(stderr, "<stdin>", err, map[string][]byte{"<stdin>": src})
				return exitCode(1, nil)
			}
			_, err = stdout.Write(out)
			return err
		}

		expanded, err := expandArgs(args, fmtExcludes)
		if err != nil {
			return exitCode(1, err)
		}

		failed := false
		for _, path := range expanded {
			changed, err := fmtFile(stdout, stderr, path, cfg)
			if err != nil {
				failed = true
			} else if fmtList && changed {
				failed = true
			}
		}
		if failed {
			return exitCode(1, nil)
		}
		return nil
	},
}

func fmtFile(stdout, stderr io.Writer, path string, cfg *formatter.Config) (bool, error) {
	src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		fmt.Fprintln(stderr, err) //nolint:errcheck // best-effort output
		return false, err
	}
	out, err := formatter.FormatFile(src, path, cfg)
	if err != nil {
		renderSyntaxError(stderr, path, err, map[string][]byte{path: src})
		return false, err
	}

	changed := !bytes.Equal(src, out)

	if fmtList {
		if changed {
			fmt.Fprintln(stdout, path) //nolint:errcheck // best-effort output
		}
		return changed, nil
	}

	if fmtDiff {
		if changed {
			printUnifiedDiff(stdout, path, src, out)
		}
		return changed, nil
	}

	if fmtWrite {
		if !changed {
			return false, nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return false, fmt.Errorf("%s: %w", path, err)
		}
		return true, os.WriteFile(path, out, info.Mode().Perm())
	}

	// Default: print to stdout
	_, err = stdout.Write(out)
	return changed, err
}

// printUnifiedDiff prints the changed lines of a reindented file. The
// formatter only rewrites indentation and drops surplus blank lines, so
// the two files can be walked in lockstep.
func printUnifiedDiff(w io.Writer, path string, original, formatted []byte) {
	fmt.Fprintf(w, "--- %s\n+++ %s\n", path, path) //nolint:errcheck // best-effort output

	origLines := splitLines(original)
	fmtLines := splitLines(formatted)

	i, j := 0, 0
	for i < len(origLines) || j < len(fmtLines) {
		switch {
		case i < len(origLines) && j < len(fmtLines) && origLines[i] == fmtLines[j]:
			fmt.Fprintf(w, " %s\n", origLines[i]) //nolint:errcheck
			i++
			j++
		case i < len(origLines) && (j == len(fmtLines) || strings.TrimSpace(origLines[i]) == "" && fmtLines[j] != ""):
			fmt.Fprintf(w, "-%s\n", origLines[i]) //nolint:errcheck
			i++
		case i < len(origLines):
			fmt.Fprintf(w, "-%s\n+%s\n", origLines[i], fmtLines[j]) //nolint:errcheck
			i++
			j++
		default:
			fmt.Fprintf(w, "+%s\n", fmtLines[j]) //nolint:errcheck
			j++
		}
	}
}

func splitLines(data []byte) []string {
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}

func init() {
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false,
		"Write result to (source) file instead of stdout.")
	fmtCmd.Flags().BoolVarP(&fmtDiff, "diff", "d", false,
		"Display diffs instead of rewriting files.")
	fmtCmd.Flags().BoolVarP(&fmtList, "list", "l", false,
		"List files whose formatting differs from jsscope fmt's.")
	fmtCmd.Flags().IntVar(&fmtIndentSize, "indent-size", 2,
		"Number of spaces per indentation level.")
	fmtCmd.Flags().BoolVar(&fmtTabs, "tabs", false,
		"Indent with tabs instead of spaces.")
	fmtCmd.Flags().BoolVar(&fmtCaseIndent, "indent-case", true,
		"Indent statements under a case label.")
	fmtCmd.Flags().StringArrayVar(&fmtExcludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
}
