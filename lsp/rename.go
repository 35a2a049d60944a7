// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsscope/parser/token"
)

// textDocumentPrepareRename validates that the identifier under the cursor
// is renameable and returns its range.
func (s *Server) textDocumentPrepareRename(_ *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
	v, t, ok := s.targetAtPosition(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	// Per LSP spec, prepareRename returns null (not error) for
	// non-renameable symbols. Globals are only renameable when some
	// workspace script declares them.
	if !t.resolved() && len(s.index.Globals(t.name, uriToPath(v.uri))) == 0 {
		return nil, nil
	}
	return &protocol.RangeWithPlaceholder{
		Range:       spanRange(v.lines, v.content, t.span),
		Placeholder: t.name,
	}, nil
}

// textDocumentRename handles the textDocument/rename request.
func (s *Server) textDocumentRename(_ *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	v, t, ok := s.targetAtPosition(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, fmt.Errorf("no symbol at position")
	}
	if !validIdentifier(params.NewName) {
		return nil, fmt.Errorf("invalid identifier: %q", params.NewName)
	}
	current := uriToPath(v.uri)
	decls := s.index.Globals(t.name, current)
	if !t.resolved() && len(decls) == 0 {
		return nil, fmt.Errorf("cannot rename undeclared global: %s", t.name)
	}

	edits := make(map[protocol.DocumentUri][]protocol.TextEdit)
	for _, occ := range targetOccurrences(v.sem, t) {
		edits[v.uri] = append(edits[v.uri], protocol.TextEdit{
			Range:   spanRange(v.lines, v.content, occ.span),
			NewText: params.NewName,
		})
	}
	if !isSharedGlobal(v.sem, t) {
		return &protocol.WorkspaceEdit{Changes: edits}, nil
	}

	add := func(loc protocol.Location) {
		edits[loc.URI] = append(edits[loc.URI], protocol.TextEdit{
			Range:   loc.Range,
			NewText: params.NewName,
		})
	}
	for _, ext := range decls {
		if loc, ok := s.location(ext.File, ext.Span); ok {
			add(loc)
		}
	}
	for _, ref := range s.index.Refs(t.name, current) {
		if loc, ok := s.location(ref.File, ref.Span); ok {
			add(loc)
		}
	}
	return &protocol.WorkspaceEdit{Changes: edits}, nil
}

// validIdentifier reports whether name can replace a binding identifier.
func validIdentifier(name string) bool {
	if name == "" || name == "let" {
		return false
	}
	if _, reserved := token.Keywords[name]; reserved {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '#' || !isIdentByte(c) || (i == 0 && c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
