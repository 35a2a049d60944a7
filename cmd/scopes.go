// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/semantic"
)

var (
	scopesModule   bool
	scopesScript   bool
	scopesSnapshot string
)

var scopesCmd = &cobra.Command{
	Use:   "scopes [flags] [file]",
	Short: "Print the scope tree of a JavaScript file",
	Long: `Print the scope tree of a JavaScript file.

Each scope is listed with its kind and flags, followed by the names it
binds and the references that resolve to them. Names no scope declares
are listed under the root scope as unresolved.

With no file, reads from stdin. The source type follows the file
extension; --module and --script override it.

The --snapshot flag additionally writes the scope, symbol and reference
tables as a MessagePack document that other tools can load.

Examples:
  jsscope scopes app.js
  jsscope scopes --module lib.js
  jsscope scopes --snapshot app.msgpack app.js
  echo 'let x = 1; x++' | jsscope scopes`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if scopesModule && scopesScript {
			return exitCode(2, fmt.Errorf("--module and --script are exclusive"))
		}
		path := "<stdin>"
		var src []byte
		var err error
		if len(args) == 1 {
			path = args[0]
			src, err = os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
		} else {
			src, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return exitCode(2, err)
		}

		st := ast.SourceTypeFromPath(path)
		switch {
		case scopesModule:
			st.Module = true
		case scopesScript:
			st.Module = false
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		sem, err := semantic.ParseAndAnalyze(ctx, path, src, &semantic.Config{SourceType: &st})
		if err != nil {
			renderSyntaxError(cmd.ErrOrStderr(), path, err, map[string][]byte{path: src})
			return exitCode(1, nil)
		}

		out := cmd.OutOrStdout()
		if err := semantic.Dump(out, sem, dumpStyle(out)); err != nil {
			return err
		}
		if scopesSnapshot != "" {
			return writeSnapshotFile(scopesSnapshot, sem)
		}
		return nil
	},
}

// dumpStyle colors scope headers, names and flags when w is a terminal.
func dumpStyle(w io.Writer) semantic.DumpStyle {
	if !colorMode().Enabled(w) {
		return semantic.DumpStyle{}
	}
	paint := func(attrs ...color.Attribute) func(string) string {
		c := color.New(attrs...)
		c.EnableColor()
		return func(s string) string { return c.Sprint(s) }
	}
	return semantic.DumpStyle{
		Scope: paint(color.FgBlue, color.Bold),
		Name:  paint(color.FgGreen),
		Flags: paint(color.FgHiBlack),
	}
}

func writeSnapshotFile(path string, sem *semantic.Semantic) (err error) {
	f, err := os.Create(path) //nolint:gosec // user-requested output file
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return semantic.WriteSnapshot(f, sem.Snapshot())
}

func init() {
	rootCmd.AddCommand(scopesCmd)

	scopesCmd.Flags().BoolVar(&scopesModule, "module", false,
		"Analyze the input as an ES module.")
	scopesCmd.Flags().BoolVar(&scopesScript, "script", false,
		"Analyze the input as a classic script.")
	scopesCmd.Flags().StringVar(&scopesSnapshot, "snapshot", "",
		"Also write the analysis tables to this file as MessagePack.")
}
