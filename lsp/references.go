// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentReferences handles the textDocument/references request.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	v, t, ok := s.targetAtPosition(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	includeDecl := params.Context.IncludeDeclaration

	var locs []protocol.Location
	for _, occ := range targetOccurrences(v.sem, t) {
		if occ.decl && !includeDecl {
			continue
		}
		locs = append(locs, protocol.Location{
			URI:   v.uri,
			Range: spanRange(v.lines, v.content, occ.span),
		})
	}

	// Cross-file uses of script globals from the workspace index.
	if !isSharedGlobal(v.sem, t) {
		return locs, nil
	}
	current := uriToPath(v.uri)
	if includeDecl {
		for _, ext := range s.index.Globals(t.name, current) {
			if loc, ok := s.location(ext.File, ext.Span); ok {
				locs = append(locs, loc)
			}
		}
	}
	for _, ref := range s.index.Refs(t.name, current) {
		if loc, ok := s.location(ref.File, ref.Span); ok {
			locs = append(locs, loc)
		}
	}
	return locs, nil
}

// textDocumentDocumentHighlight handles the textDocument/documentHighlight
// request. Declarations and assignments are marked as writes.
func (s *Server) textDocumentDocumentHighlight(_ *glsp.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	v, t, ok := s.targetAtPosition(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	var highlights []protocol.DocumentHighlight
	for _, occ := range targetOccurrences(v.sem, t) {
		kind := protocol.DocumentHighlightKindRead
		if occ.decl || occ.write {
			kind = protocol.DocumentHighlightKindWrite
		}
		highlights = append(highlights, protocol.DocumentHighlight{
			Range: spanRange(v.lines, v.content, occ.span),
			Kind:  &kind,
		})
	}
	return highlights, nil
}
