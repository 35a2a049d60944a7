// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// targetAtPosition analyzes the document if needed and returns the
// identifier under the cursor. Documents with a syntax error have no
// targets.
func (s *Server) targetAtPosition(uri string, pos protocol.Position) (view, target, bool) {
	doc := s.docs.Get(uri)
	if doc == nil {
		return view{}, target{}, false
	}
	v := s.ensureAnalysis(doc)
	if v.sem == nil {
		return v, target{}, false
	}
	t, ok := targetAt(v.sem, positionToOffset(v.lines, v.content, pos))
	return v, t, ok
}

// textDocumentDefinition handles the textDocument/definition request.
// Globals resolve to their declarations in other scripts of the workspace.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	v, t, ok := s.targetAtPosition(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}

	if t.resolved() {
		sym := v.sem.Symbol(t.sym)
		return protocol.Location{
			URI:   v.uri,
			Range: spanRange(v.lines, v.content, sym.Span),
		}, nil
	}

	var locs []protocol.Location
	for _, ext := range s.index.Globals(t.name, uriToPath(v.uri)) {
		if loc, ok := s.location(ext.File, ext.Span); ok {
			locs = append(locs, loc)
		}
	}
	switch len(locs) {
	case 0:
		return nil, nil
	case 1:
		return locs[0], nil
	}
	return locs, nil
}
