// Copyright © 2024 The ELPS authors

package lsp

import (
	"sort"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/astutil"
	"github.com/luthersystems/jsscope/semantic"
)

// textDocumentCompletion handles the textDocument/completion request. While
// the document has a syntax error the last model that parsed is used.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	v := s.ensureAnalysis(doc)

	offset := positionToOffset(v.lines, v.content, params.Position)
	prefix := identPrefix(v.content, offset)

	sem := v.sem
	if sem == nil {
		sem = v.lastGood
	}
	if sem == nil {
		return []protocol.CompletionItem{}, nil
	}
	offset = min(offset, len(sem.Program.Source))

	if strings.HasPrefix(prefix, "#") {
		return privateCompletions(sem, offset, prefix), nil
	}
	return s.scopeCompletions(sem, offset, prefix), nil
}

// scopeCompletions returns the bindings visible at offset, innermost first,
// followed by predefined globals and the globals other scripts declare.
func (s *Server) scopeCompletions(sem *semantic.Semantic, offset int, prefix string) []protocol.CompletionItem {
	items := []protocol.CompletionItem{}
	seen := make(map[string]bool)
	add := func(name string, kind protocol.CompletionItemKind, detail string) {
		if seen[name] || !strings.HasPrefix(name, prefix) {
			return
		}
		seen[name] = true
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &kind,
			Detail: &detail,
		})
	}

	for scope := range sem.Scopes.Ancestors(sem.ScopeAt(offset)) {
		for name, id := range sem.Scope(scope).Bindings() {
			flags := sem.Symbol(id).Flags
			add(name, mapCompletionItemKind(flags), symbolKindLabel(flags))
		}
	}

	globals := s.currentLinter().Globals
	if globals == nil {
		globals, _ = semantic.Globals()
	}
	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		add(name, protocol.CompletionItemKindVariable, "global")
	}

	if sem.Program.SourceType.Module {
		return items
	}
	for _, ext := range s.index.Symbols() {
		if ext.Module || ext.File == sem.Program.File {
			continue
		}
		add(ext.Name, mapCompletionItemKind(ext.Flags), s.relPath(ext.File))
	}
	return items
}

// privateCompletions lists the private element names of the classes
// enclosing offset.
func privateCompletions(sem *semantic.Semantic, offset int, prefix string) []protocol.CompletionItem {
	items := []protocol.CompletionItem{}
	path := astutil.PathAt(sem.Program.Arena, sem.Program.Root, offset)
	seen := make(map[string]bool)
	for i := len(path) - 1; i >= 0; i-- {
		k := sem.Program.Arena.Kind(path[i])
		if k != ast.ClassDeclaration && k != ast.ClassExpression {
			continue
		}
		cls, ok := sem.ClassOf(path[i])
		if !ok {
			continue
		}
		for _, e := range sem.Classes.Class(cls).Elements {
			if !e.IsPrivate || seen[e.Name] || !strings.HasPrefix(e.Name, prefix) {
				continue
			}
			seen[e.Name] = true
			kind := protocol.CompletionItemKindField
			if e.Kind != semantic.ElementProperty {
				kind = protocol.CompletionItemKindMethod
			}
			detail := e.Kind.String()
			items = append(items, protocol.CompletionItem{
				Label:  e.Name,
				Kind:   &kind,
				Detail: &detail,
			})
		}
	}
	return items
}
