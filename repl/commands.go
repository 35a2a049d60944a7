// Copyright © 2024 The ELPS authors

package repl

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/diagnostic"
	"github.com/luthersystems/jsscope/lint"
	"github.com/luthersystems/jsscope/semantic"
)

type command struct {
	name  string
	args  string
	help  string
	run   func(s *session, arg string)
	exits bool
}

var commands []command

func init() {
	commands = []command{
		{name: ":help", help: "show this help", run: (*session).help},
		{name: ":scopes", help: "print the scope tree", run: (*session).scopes},
		{name: ":symbols", help: "list every declared symbol", run: (*session).symbols},
		{name: ":refs", args: "NAME", help: "list the references of NAME", run: (*session).refs},
		{name: ":unresolved", help: "list names no scope declares", run: (*session).unresolved},
		{name: ":lint", help: "run the default checks", run: (*session).lint},
		{name: ":source", help: "print the program", run: (*session).source},
		{name: ":load", args: "FILE", help: "replace the program with FILE", run: (*session).load},
		{name: ":module", args: "[on|off]", help: "toggle module source type", run: (*session).setModule},
		{name: ":reset", help: "clear the program", run: func(s *session, _ string) { s.reset() }},
		{name: ":quit", help: "leave the explorer", exits: true},
	}
}

// command runs a colon command line. It reports whether the session should
// end.
func (s *session) command(line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if c.exits {
			return true
		}
		c.run(s, arg)
		return false
	}
	s.printf("unknown command %s (try :help)\n", name)
	return false
}

func (s *session) help(string) {
	for _, c := range commands {
		usage := c.name
		if c.args != "" {
			usage += " " + c.args
		}
		s.printf("  %-18s %s\n", usage, c.help)
	}
}

func (s *session) scopes(string) {
	if err := semantic.Dump(s.out, s.sem, s.style); err != nil {
		s.cfg.log.WithError(err).Debug("dump failed")
	}
}

func (s *session) position(span ast.Span) string {
	loc := s.sem.Program.Location(span.Start)
	return fmt.Sprintf("%d:%d", loc.Line, loc.Col)
}

func (s *session) symbols(string) {
	for id, sym := range s.sem.Symbols.All() {
		s.printf("#%-3d %s %s scope=%d refs=%d at %s\n", id,
			s.style.Name(sym.Name),
			s.style.Flags(sym.Flags.String()),
			sym.Scope,
			len(s.sem.SymbolReferences(id)),
			s.position(sym.Span))
	}
}

func (s *session) refs(name string) {
	if name == "" {
		s.printf("usage: :refs NAME\n")
		return
	}
	found := false
	for id, sym := range s.sem.Symbols.All() {
		if sym.Name != name {
			continue
		}
		found = true
		s.printf("%s #%d declared at %s\n", s.style.Name(name), id, s.position(sym.Span))
		for _, ref := range s.sem.SymbolReferences(id) {
			s.printRef(s.sem.Reference(ref))
		}
	}
	if refs := s.sem.Scopes.RootUnresolvedReferences()[name]; len(refs) > 0 {
		found = true
		s.printf("%s %s\n", s.style.Name(name), s.style.Flags("unresolved"))
		for _, ref := range refs {
			s.printRef(s.sem.Reference(ref))
		}
	}
	if !found {
		s.printf("no symbol or reference named %s\n", name)
	}
}

func (s *session) printRef(r *semantic.Reference) {
	s.printf("  %s %s scope=%d\n", s.position(r.Span), s.style.Flags(r.Flags.String()), r.Scope)
}

func (s *session) unresolved(string) {
	globals, err := semantic.Globals()
	if err != nil {
		s.cfg.log.WithError(err).Debug("globals unavailable")
	}
	for _, name := range s.sem.Scopes.UnresolvedNames() {
		kind := "undeclared"
		if writable, ok := globals[name]; ok {
			kind = "readonly global"
			if writable {
				kind = "writable global"
			}
		}
		s.printf("%s %d %s\n", s.style.Name(name), len(s.sem.Scopes.RootUnresolvedReferences()[name]), s.style.Flags(kind))
	}
}

func (s *session) lint(string) {
	l := &lint.Linter{Analyzers: lint.DefaultAnalyzers()}
	diags, err := l.LintSemantic(context.Background(), s.sem)
	if err != nil {
		s.printf("lint: %v\n", err)
		return
	}
	if len(diags) == 0 {
		s.printf("no problems\n")
		return
	}
	lint.SortDiagnostics(diags)
	src := s.src
	r := &diagnostic.Renderer{
		Color:        s.cfg.color,
		SourceReader: func(string) ([]byte, error) { return src, nil },
	}
	_ = r.RenderAll(s.out, lint.Annotate(diags))
}

func (s *session) source(string) {
	lines := strings.SplitAfter(string(s.src), "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		s.printf("%4d  %s", i+1, line)
		if !strings.HasSuffix(line, "\n") {
			s.printf("\n")
		}
	}
}

func (s *session) load(path string) {
	if path == "" {
		s.printf("usage: :load FILE\n")
		return
	}
	src, err := os.ReadFile(path) //nolint:gosec // user-requested file
	if err != nil {
		s.printf("%v\n", err)
		return
	}
	prevFile, prevModule := s.file, s.module
	s.file = path
	s.module = ast.SourceTypeFromPath(path).Module
	sem, err := s.analyze(src)
	if err != nil {
		s.renderError(src, err)
		s.file, s.module = prevFile, prevModule
		return
	}
	s.src, s.pending, s.sem = src, nil, sem
	s.printf("loaded %s: %d scopes, %d symbols, %d references\n", path,
		sem.Scopes.Len(), sem.Symbols.Len(), sem.References.Len())
}

func (s *session) setModule(arg string) {
	module := !s.module
	switch arg {
	case "on":
		module = true
	case "off":
		module = false
	}
	prev := s.module
	s.module = module
	sem, err := s.analyze(s.src)
	if err != nil {
		s.renderError(s.src, err)
		s.module = prev
		return
	}
	s.sem = sem
	mode := "script"
	if module {
		mode = "module"
	}
	s.printf("source type: %s\n", mode)
}

// commandNames returns the commands starting with prefix.
func commandNames(prefix string) []string {
	var names []string
	for _, c := range commands {
		if strings.HasPrefix(c.name, prefix) {
			names = append(names, c.name)
		}
	}
	sort.Strings(names)
	return names
}
