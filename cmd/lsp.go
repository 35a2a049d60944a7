// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luthersystems/jsscope/lint"
	"github.com/luthersystems/jsscope/lsp"
	"github.com/luthersystems/jsscope/semantic"
)

// LSPCommand creates the "lsp" cobra command with optional embedder
// configuration. Embedders can pass WithGlobals or WithEnvironments to
// declare the names their host provides.
func LSPCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var (
		stdio      bool
		port       int
		configPath string
	)

	cmd := &cobra.Command{
		Use:           "lsp [flags]",
		SilenceUsage:  true,
		SilenceErrors: true,
		Short:         "Start the jsscope Language Server Protocol server",
		Long: `Start an LSP server for JavaScript source files.

The language server keeps the scope analysis of every open document
current and provides diagnostics, hover, go-to-definition, find
references, document highlights, completion, document and workspace
symbols, rename, formatting, folding ranges, semantic tokens and quick
fixes. Top level declarations of scripts elsewhere in the workspace are
indexed so that definitions and references work across files.

The lint checks follow the nearest jsscope.toml of the working directory
unless --config names one.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  jsscope lsp                        Start with stdio transport
  jsscope lsp --stdio                Same as above (explicit)
  jsscope lsp --port 7998            Start with TCP on port 7998

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "jsscope lsp --stdio" for javascript files.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var project *lint.Config
			if configPath == "" {
				configPath, _ = lint.FindConfig(".")
			}
			if configPath != "" {
				c, err := lint.LoadConfig(configPath)
				if err != nil {
					return exitCode(2, err)
				}
				project = c
			}
			l, err := cfg.linter(project, nil, &semantic.Config{Logger: cfg.log})
			if err != nil {
				return exitCode(2, err)
			}

			serverOpts := []lsp.Option{lsp.WithLinter(l), lsp.WithLogger(cfg.log)}
			if dir := configDir(project); dir != "" {
				serverOpts = append(serverOpts, lsp.WithRoot(dir))
			}
			srv := lsp.New(serverOpts...)

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				cfg.log.WithField("addr", addr).Info("jsscope LSP server listening")
				if err := srv.RunTCP(addr); err != nil {
					return fmt.Errorf("lsp server error: %w", err)
				}
				return nil
			}
			if err := srv.RunStdio(); err != nil {
				return fmt.Errorf("lsp server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")
	cmd.Flags().StringVar(&configPath, "config", "",
		"Project configuration file (default: nearest "+lint.ConfigFileName+").")

	return cmd
}
