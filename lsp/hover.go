// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsscope/semantic"
)

// textDocumentHover handles the textDocument/hover request.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	v, t, ok := s.targetAtPosition(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}

	var content string
	if t.resolved() {
		content = buildHoverContent(v, t.sym)
	} else {
		content = s.globalHoverContent(v, t.name)
	}
	r := spanRange(v.lines, v.content, t.span)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
		Range: &r,
	}, nil
}

// buildHoverContent builds Markdown hover text for a declared symbol.
func buildHoverContent(v view, id semantic.SymbolID) string {
	var sb strings.Builder
	sym := v.sem.Symbol(id)

	// Header: **kind** `name`
	fmt.Fprintf(&sb, "**%s** `%s`", symbolKindLabel(sym.Flags), sym.Name)

	line, _ := v.lines.Position(sym.Span.Start)
	if text := strings.TrimSpace(v.lines.LineText(line)); text != "" {
		fmt.Fprintf(&sb, "\n\n```js\n%s\n```", text)
	}

	reads, writes := 0, 0
	for _, ref := range v.sem.SymbolReferences(id) {
		r := v.sem.Reference(ref)
		if r.IsRead() {
			reads++
		}
		if r.IsWrite() {
			writes++
		}
	}
	fmt.Fprintf(&sb, "\n\n%s, %s", plural(reads, "read"), plural(writes, "write"))
	if n := len(sym.Redeclarations); n > 0 {
		fmt.Fprintf(&sb, ", %s", plural(n, "redeclaration"))
	}
	return sb.String()
}

// globalHoverContent describes a name no scope of the file declares.
func (s *Server) globalHoverContent(v view, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**global** `%s`", name)

	decls := s.index.Globals(name, uriToPath(v.uri))
	globals := s.currentLinter().Globals
	if globals == nil {
		globals, _ = semantic.Globals()
	}
	writable, predefined := globals[name]
	switch {
	case len(decls) > 0:
		files := make([]string, 0, len(decls))
		for _, d := range decls {
			files = append(files, s.relPath(d.File))
		}
		fmt.Fprintf(&sb, "\n\n*Declared in %s*", strings.Join(files, ", "))
	case predefined && writable:
		sb.WriteString("\n\nwritable")
	case predefined:
		sb.WriteString("\n\nreadonly")
	default:
		sb.WriteString("\n\n*Not declared in the workspace*")
	}
	return sb.String()
}

// relPath shortens a workspace file name for display.
func (s *Server) relPath(path string) string {
	if s.rootPath == "" {
		return path
	}
	if rel, err := filepath.Rel(s.rootPath, path); err == nil {
		return rel
	}
	return path
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
