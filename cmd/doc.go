// Copyright © 2021 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/luthersystems/jsscope/docs"
	"github.com/luthersystems/jsscope/lint"
)

const defaultDocWidth = 80

// DocCommand creates the "doc" cobra command.
func DocCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var (
		list      bool
		guide     bool
		configRef bool
		globals   bool
		envs      []string
	)

	cmd := &cobra.Command{
		Use:           "doc [flags] CHECK",
		SilenceUsage:  true,
		SilenceErrors: true,
		Short:         "Show documentation for lint checks and scoping rules",
		Long: `Show built-in documentation for jsscope.

By default, describes the lint check named by CHECK: what it reports, its
default severity and how to silence it. Use -l to list every check with
its summary line.

Use --globals to list the predefined globals of the builtin environment
and of any environments named with --env.

Use --guide for an overview of how jsscope resolves names (scopes,
hoisting, the temporal dead zone, modules and classes) and --config for
the reference of jsscope.toml and of the directives recognized in source
comments.

Examples:
  jsscope doc no-undef          Describe the no-undef check
  jsscope doc -l                List all checks
  jsscope doc --globals --env node
                                List the globals Node.js scripts may use
  jsscope doc --guide           Read the scoping guide
  jsscope doc --config          Read the configuration reference`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			width := docWidth(out)
			switch {
			case list:
				_, err := io.WriteString(out, lint.AnalyzerDoc(0))
				return err
			case guide:
				return writeWrapped(out, docs.ScopingGuide, width)
			case configRef:
				return writeWrapped(out, docs.ConfigReference, width)
			case globals:
				return cfg.listGlobals(out, envs)
			case len(args) == 0:
				_ = cmd.Help()
				return exitCode(2, nil)
			}
			return describeCheck(out, args[0], width)
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false,
		"List every lint check with its summary.")
	cmd.Flags().BoolVarP(&guide, "guide", "g", false,
		"Show the guide to scope resolution.")
	cmd.Flags().BoolVar(&configRef, "config", false,
		"Show the configuration and directive reference.")
	cmd.Flags().BoolVar(&globals, "globals", false,
		"List predefined globals and whether they are writable.")
	cmd.Flags().StringSliceVar(&envs, "env", nil,
		"Environments to include with --globals: "+environmentList()+".")

	return cmd
}

func describeCheck(w io.Writer, name string, width int) error {
	analyzers, err := lint.LookupAnalyzers([]string{name})
	if err != nil {
		return exitCode(1, err)
	}
	if len(analyzers) == 0 {
		return exitCode(2, fmt.Errorf("no check named %q", name))
	}
	a := analyzers[0]
	summary, body, _ := strings.Cut(a.Doc, "\n")
	var b strings.Builder
	fmt.Fprintf(&b, "%s (default severity: %s)\n\n", a.Name, a.Severity)
	fmt.Fprintf(&b, "%s\n", summary)
	if body = strings.TrimSpace(body); body != "" {
		for _, para := range strings.Split(body, "\n\n") {
			b.WriteByte('\n')
			b.WriteString(wordwrap.String(para, width))
			b.WriteByte('\n')
		}
	}
	b.WriteString("\nTo silence one report, put this comment on the line above it:\n")
	b.WriteString(indent.String("// jsscope-disable-next-line "+a.Name, 2))
	b.WriteString("\nTo turn the check off for a project, add it to jsscope.toml:\n")
	b.WriteString(indent.String(fmt.Sprintf("disable = [%q]", a.Name), 2))
	b.WriteByte('\n')
	_, err = io.WriteString(w, b.String())
	return err
}

func (c *cmdConfig) listGlobals(w io.Writer, envs []string) error {
	l, err := c.linter(nil, envs, nil)
	if err != nil {
		return exitCode(2, err)
	}
	names := make([]string, 0, len(l.Globals))
	for name := range l.Globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mode := "readonly"
		if l.Globals[name] {
			mode = "writable"
		}
		if _, err := fmt.Fprintf(w, "%-28s %s\n", name, mode); err != nil {
			return err
		}
	}
	return nil
}

// writeWrapped writes a markdown document, wrapping prose paragraphs to
// width and leaving indented blocks as they are.
func writeWrapped(w io.Writer, doc string, width int) error {
	var b strings.Builder
	for _, para := range strings.Split(doc, "\n\n") {
		if strings.HasPrefix(para, "    ") || strings.HasPrefix(para, "```") ||
			strings.HasPrefix(para, "#") || strings.HasPrefix(para, "- ") {
			b.WriteString(para)
		} else {
			b.WriteString(wordwrap.String(strings.Join(strings.Fields(para), " "), width))
		}
		b.WriteString("\n\n")
	}
	_, err := io.WriteString(w, strings.TrimRight(b.String(), "\n")+"\n")
	return err
}

// docWidth returns the terminal width of w, capped at defaultDocWidth.
func docWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultDocWidth
	}
	width, _, err := term.GetSize(int(f.Fd())) //nolint:gosec // file descriptors fit in an int
	if err != nil || width <= 0 {
		return defaultDocWidth
	}
	return min(width, defaultDocWidth)
}
