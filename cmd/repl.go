// Copyright © 2018 The ELPS authors

package cmd

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/luthersystems/jsscope/repl"
)

var replModule bool

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Explore the scopes of JavaScript interactively",
	Long: `Start an interactive scope explorer.

Each line of JavaScript is appended to a growing program that is analyzed
again as soon as the statement is complete. New top level bindings and
new unresolved names are printed as they appear. Incomplete statements
continue on the next line. Colon commands inspect the analysis; :help
lists them. Line editing, completion and command history are supported
via readline. Use Ctrl-D or :quit to exit.

Example session:
  jsscope> let total = 0;
  total let
  jsscope> for (const n of items) total += n;
  items unresolved
  jsscope> :refs total
  total #0 declared at 1:5
    2:24 read|write scope=1
  jsscope> :scopes
  ...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return repl.RunRepl(filepath.Base(os.Args[0])+"> ",
			repl.WithModule(replModule),
			repl.WithColor(colorMode()),
			repl.WithLogger(logrus.StandardLogger()))
	},
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().BoolVar(&replModule, "module", false,
		"Analyze the program as an ES module.")
}
