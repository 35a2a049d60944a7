// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentCodeAction handles the textDocument/codeAction request.
// It returns quick-fix actions for the lint diagnostics in the request.
func (s *Server) textDocumentCodeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	// If the client only wants specific kinds, check we support them.
	if len(params.Context.Only) > 0 && !slices.Contains(params.Context.Only, protocol.CodeActionKindQuickFix) {
		return nil, nil
	}

	v := s.ensureAnalysis(doc)

	var actions []protocol.CodeAction
	for _, diag := range params.Context.Diagnostics {
		// Only handle diagnostics from our lint source. Syntax errors
		// have no fixes.
		if diag.Source == nil || *diag.Source != "jsscope-lint" {
			continue
		}
		analyzer := lintAnalyzer(diag)
		if analyzer == "" {
			continue
		}

		switch analyzer {
		case "no-undef":
			if a, ok := declareGlobalAction(v, diag); ok {
				actions = append(actions, a)
			}
		case "no-unused-vars":
			if a, ok := prefixUnusedAction(v, diag); ok {
				actions = append(actions, a)
			}
		}
		// All lint diagnostics can be suppressed.
		actions = append(actions, suppressLintAction(v, diag, analyzer))
	}

	if len(actions) == 0 {
		return nil, nil
	}
	return actions, nil
}

// lintAnalyzer returns the analyzer that reported diag.
func lintAnalyzer(diag protocol.Diagnostic) string {
	if name, ok := diag.Data.(string); ok && name != "" {
		return name
	}
	if diag.Code != nil {
		if name, ok := diag.Code.Value.(string); ok {
			return name
		}
	}
	return ""
}

func quickFix(title, uri string, diag protocol.Diagnostic, edits ...protocol.TextEdit) protocol.CodeAction {
	kind := protocol.CodeActionKindQuickFix
	return protocol.CodeAction{
		Title:       title,
		Kind:        &kind,
		Diagnostics: []protocol.Diagnostic{diag},
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{uri: edits},
		},
	}
}

// diagnosticText returns the source text a diagnostic covers.
func diagnosticText(v view, diag protocol.Diagnostic) string {
	start := positionToOffset(v.lines, v.content, diag.Range.Start)
	end := positionToOffset(v.lines, v.content, diag.Range.End)
	if end <= start {
		return ""
	}
	return v.content[start:end]
}

// declareGlobalAction inserts a /* global name */ comment at the top of the
// file, below a hashbang line.
func declareGlobalAction(v view, diag protocol.Diagnostic) (protocol.CodeAction, bool) {
	name := diagnosticText(v, diag)
	if !validIdentifier(name) {
		return protocol.CodeAction{}, false
	}
	var pos protocol.Position
	if strings.HasPrefix(v.content, "#!") {
		pos.Line = 1
	}
	return quickFix(fmt.Sprintf("Declare '%s' as a global", name), v.uri, diag, protocol.TextEdit{
		Range:   protocol.Range{Start: pos, End: pos},
		NewText: fmt.Sprintf("/* global %s */\n", name),
	}), true
}

// prefixUnusedAction renames an unused binding so that it starts with an
// underscore, which marks it as intentionally unused.
func prefixUnusedAction(v view, diag protocol.Diagnostic) (protocol.CodeAction, bool) {
	if v.sem == nil {
		return protocol.CodeAction{}, false
	}
	t, ok := targetAt(v.sem, positionToOffset(v.lines, v.content, diag.Range.Start))
	if !ok || !t.resolved() {
		return protocol.CodeAction{}, false
	}
	var edits []protocol.TextEdit
	for _, occ := range occurrences(v.sem, t.sym) {
		start := offsetToPosition(v.lines, v.content, occ.span.Start)
		edits = append(edits, protocol.TextEdit{
			Range:   protocol.Range{Start: start, End: start},
			NewText: "_",
		})
	}
	return quickFix(fmt.Sprintf("Rename '%s' to '_%s'", t.name, t.name), v.uri, diag, edits...), true
}

// suppressLintAction inserts a jsscope-disable-next-line comment above the
// diagnostic line, indented like it.
func suppressLintAction(v view, diag protocol.Diagnostic, analyzer string) protocol.CodeAction {
	line := int(diag.Range.Start.Line) + 1
	text := v.lines.LineText(line)
	indent := text[:len(text)-len(strings.TrimLeft(text, " \t"))]
	pos := protocol.Position{Line: diag.Range.Start.Line}
	return quickFix(
		fmt.Sprintf("Suppress %s for this line", analyzer), v.uri, diag,
		protocol.TextEdit{
			Range:   protocol.Range{Start: pos, End: pos},
			NewText: fmt.Sprintf("%s// jsscope-disable-next-line %s\n", indent, analyzer),
		},
	)
}
