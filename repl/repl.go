// Copyright © 2018 The ELPS authors

// Package repl implements an interactive scope explorer. Lines of
// JavaScript accumulate into a program that is re-analyzed after every
// complete statement, and colon commands inspect the resulting scopes,
// symbols and references.
package repl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ergochat/readline"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/diagnostic"
	"github.com/luthersystems/jsscope/parser"
	"github.com/luthersystems/jsscope/semantic"
)

const replFile = "<repl>"

type config struct {
	stdin  io.ReadCloser
	stderr io.WriteCloser
	module bool
	color  diagnostic.ColorMode
	log    logrus.FieldLogger
}

func newConfig(opts ...Option) *config {
	config := &config{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output to the REPL.
func WithStderr(stderr io.WriteCloser) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithModule starts the session in module mode.
func WithModule(module bool) Option {
	return func(c *config) {
		c.module = module
	}
}

// WithColor sets when output is colored.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// WithLogger sets the logger handed to the analyzer.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) {
		c.log = log
	}
}

// RunRepl runs the explorer until its input is exhausted or :quit is
// entered. The continuation prompt is used while a statement is incomplete.
func RunRepl(prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	var out io.Writer = os.Stderr
	if cfg.stderr != nil {
		out = cfg.stderr
	}
	s := newSession(out, cfg)
	cont := strings.Repeat(" ", max(len(prompt)-2, 0)) + "> "

	hist := historyPath()
	ensureHistoryFilePermissions(hist)
	rlCfg := &readline.Config{
		Stdout:            out,
		Stderr:            out,
		Prompt:            prompt,
		HistoryFile:       hist,
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{s: s},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	for {
		line, err := rl.ReadSlice()
		if err == readline.ErrInterrupt {
			s.pending = nil
			rl.SetPrompt(prompt)
			continue
		}
		if err != nil {
			break
		}
		text := string(line)
		if len(s.pending) == 0 {
			trimmed := strings.TrimSpace(text)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ":") {
				if s.command(trimmed) {
					break
				}
				continue
			}
		}
		if s.input(text) {
			rl.SetPrompt(cont)
		} else {
			rl.SetPrompt(prompt)
		}
	}
	return nil
}

// session is the program being explored.
type session struct {
	out     io.Writer
	cfg     *config
	file    string
	src     []byte
	pending []byte
	module  bool
	sem     *semantic.Semantic
	style   semantic.DumpStyle
	colored bool
}

func newSession(out io.Writer, cfg *config) *session {
	s := &session{
		out:     out,
		cfg:     cfg,
		file:    replFile,
		module:  cfg.module,
		colored: cfg.color.Enabled(out),
	}
	s.style = semantic.DumpStyle{
		Scope: s.paint(color.FgBlue, color.Bold),
		Name:  s.paint(color.FgGreen),
		Flags: s.paint(color.FgHiBlack),
	}
	s.reset()
	return s
}

func (s *session) paint(attrs ...color.Attribute) func(string) string {
	c := color.New(attrs...)
	if s.colored {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return func(text string) string { return c.Sprint(text) }
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...) //nolint:errcheck // best-effort REPL output
}

func (s *session) analysisConfig() *semantic.Config {
	st := ast.SourceType{Module: s.module}
	if s.file != replFile {
		st = ast.SourceTypeFromPath(s.file)
		st.Module = s.module
	}
	return &semantic.Config{SourceType: &st, Logger: s.cfg.log}
}

func (s *session) analyze(src []byte) (*semantic.Semantic, error) {
	return semantic.ParseAndAnalyze(context.Background(), s.file, src, s.analysisConfig())
}

// reset empties the program.
func (s *session) reset() {
	s.src = nil
	s.pending = nil
	sem, err := s.analyze(nil)
	if err != nil {
		s.cfg.log.WithError(err).Error("empty program failed to analyze")
	}
	s.sem = sem
}

// input appends a line of source. It reports whether the statement is
// still incomplete.
func (s *session) input(line string) bool {
	var candidate []byte
	candidate = append(candidate, s.src...)
	candidate = append(candidate, s.pending...)
	candidate = append(candidate, line...)
	candidate = append(candidate, '\n')

	sem, err := s.analyze(candidate)
	if err != nil {
		if lerr, ok := parser.IsSyntaxError(err); ok && lerr.Source != nil &&
			lerr.Source.Pos >= len(bytes.TrimRightFunc(candidate, unicode.IsSpace)) {
			s.pending = append(s.pending, line...)
			s.pending = append(s.pending, '\n')
			return true
		}
		s.pending = nil
		s.renderError(candidate, err)
		return false
	}

	bound := make(map[string]bool)
	unresolved := make(map[string]bool)
	if s.sem != nil {
		for name := range s.sem.RootScope().Bindings() {
			bound[name] = true
		}
		for _, name := range s.sem.Scopes.UnresolvedNames() {
			unresolved[name] = true
		}
	}
	s.src = candidate
	s.pending = nil
	s.sem = sem

	for name, id := range sem.RootScope().Bindings() {
		if bound[name] {
			continue
		}
		s.printf("%s %s\n", s.style.Name(name), s.style.Flags(sem.Symbol(id).Flags.String()))
	}
	for _, name := range sem.Scopes.UnresolvedNames() {
		if !unresolved[name] {
			s.printf("%s %s\n", s.style.Name(name), s.style.Flags("unresolved"))
		}
	}
	return false
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".jsscope_history")
}

// ensureHistoryFilePermissions creates the history file if needed and
// restricts it to the current user.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o600) //nolint:gosec // path is under the home directory
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0o600)
}
