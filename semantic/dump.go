// Copyright © 2024 The ELPS authors

package semantic

import (
	"fmt"
	"io"
	"strings"
)

// DumpStyle decorates the parts of a scope dump. Nil functions leave the
// text unchanged, which is what tests use; the CLI plugs in colors.
type DumpStyle struct {
	Scope func(string) string
	Name  func(string) string
	Flags func(string) string
}

func (s DumpStyle) apply(f func(string) string, text string) string {
	if f == nil {
		return text
	}
	return f(text)
}

// Dump writes the scope tree of sem, one scope per line with its bindings
// indented below it, followed by the unresolved names.
//
//	scope 0 top (Program)
//	  x #0 var refs=1
//	  scope 1 function (FunctionDeclaration)
//	unresolved: console(1)
func Dump(w io.Writer, sem *Semantic, style DumpStyle) error {
	children := make(map[ScopeID][]ScopeID)
	for id, s := range sem.Scopes.Descendants() {
		if s.Parent != NoScope {
			children[s.Parent] = append(children[s.Parent], id)
		}
	}
	var b strings.Builder
	var dump func(id ScopeID, depth int)
	dump = func(id ScopeID, depth int) {
		s := sem.Scope(id)
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(&b, "%s%s %s (%s)\n", indent,
			style.apply(style.Scope, fmt.Sprintf("scope %d", id)),
			style.apply(style.Flags, s.Flags.String()),
			sem.Program.Arena.Kind(s.Node))
		for name, symID := range s.Bindings() {
			sym := sem.Symbol(symID)
			fmt.Fprintf(&b, "%s  %s #%d %s refs=%d\n", indent,
				style.apply(style.Name, name), symID,
				style.apply(style.Flags, sym.Flags.String()),
				len(sem.SymbolReferences(symID)))
		}
		for _, c := range children[id] {
			dump(c, depth+1)
		}
	}
	dump(sem.Scopes.RootScopeID(), 0)

	names := sem.Scopes.UnresolvedNames()
	if len(names) > 0 {
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = fmt.Sprintf("%s(%d)", style.apply(style.Name, name), len(sem.Scopes.RootUnresolvedReferences()[name]))
		}
		fmt.Fprintf(&b, "unresolved: %s\n", strings.Join(parts, " "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// DumpString is Dump without decoration into a string.
func DumpString(sem *Semantic) string {
	var b strings.Builder
	_ = Dump(&b, sem, DumpStyle{})
	return b.String()
}
