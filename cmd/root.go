// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jsscope",
	Short: "JavaScript scope analysis",
	Long: `jsscope resolves every identifier of a JavaScript program to the
binding it denotes. It builds the scope tree, the symbol table and the
reference table of each file and puts them to work in a linter, a
formatter, a scope explorer and a language server.

Getting started:
  jsscope lint file.js          Report undefined and unused names
  jsscope lint ./...            Lint every source file below .
  jsscope scopes file.js        Print the scope tree of a file
  jsscope fmt -w file.js        Reindent a file in place
  jsscope repl                  Explore scopes interactively
  jsscope lsp                   Serve editors over stdio
  jsscope doc no-shadow         Describe a check

Source files:
  .js and .cjs files are scripts unless a jsscope.toml says otherwise.
  .mjs and .jsx files are modules. .ts .tsx .mts .cts accept type-only
  imports.

Configuration:
  Project settings (environments, extra globals, disabled checks) live in
  jsscope.toml, found in the working directory or any parent. CLI
  defaults such as --color and --log-level may be set in $HOME/.jsscope.yaml
  or with JSSCOPE_COLOR and JSSCOPE_LOG_LEVEL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging()
	},
}

// exitError carries a process exit code out of a command. Commands return
// it instead of calling os.Exit so that they can be tested.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// exitCode wraps err with a process exit code. A nil err only sets the
// code.
func exitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	code := 1
	var ee *exitError
	if errors.As(err, &ee) {
		code = ee.code
		err = ee.err
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "jsscope:", err)
	}
	os.Exit(code)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "cli-config", "", "CLI defaults file (default is $HOME/.jsscope.yaml)")
	flags.String("color", "auto", `Control colored output: "auto", "always", or "never".`)
	flags.String("log-level", "warning", "Log level: debug, info, warning or error.")
	_ = viper.BindPFlag("color", flags.Lookup("color"))
	_ = viper.BindPFlag("log-level", flags.Lookup("log-level"))

	rootCmd.AddCommand(LintCommand())
	rootCmd.AddCommand(LSPCommand())
	rootCmd.AddCommand(DocCommand())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		// Search config in home directory with name ".jsscope" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".jsscope")
	}

	viper.SetEnvPrefix("jsscope")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logrus.WithField("file", viper.ConfigFileUsed()).Debug("using CLI config")
	}
}

// setupLogging points logrus at stderr, which leaves stdout to command
// output and to the LSP transport.
func setupLogging() error {
	level, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return exitCode(2, err)
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors: !colorMode().Enabled(os.Stderr),
	})
	return nil
}
