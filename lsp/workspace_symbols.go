// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsscope/semantic"
)

// workspaceSymbol handles the workspace/symbol request.
// It returns all top-level declarations across the workspace that match the
// query string. An empty query returns all symbols.
func (s *Server) workspaceSymbol(_ *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	s.ensureWorkspaceIndex()

	query := strings.ToLower(params.Query)
	var results []protocol.SymbolInformation
	seen := make(map[string]bool)

	// Open documents first: their content may be ahead of the index.
	for _, doc := range s.docs.All() {
		v := s.ensureAnalysis(doc)
		if v.sem == nil {
			continue
		}
		path := uriToPath(v.uri)
		seen[path] = true
		for _, sym := range semantic.ExtractSymbols(v.sem) {
			if !matchesQuery(sym.Name, query) {
				continue
			}
			results = append(results, protocol.SymbolInformation{
				Name:     sym.Name,
				Kind:     mapSymbolKind(sym.Flags),
				Location: protocol.Location{URI: v.uri, Range: spanRange(v.lines, v.content, sym.Span)},
			})
		}
	}

	for _, sym := range s.index.Symbols() {
		if seen[sym.File] || !matchesQuery(sym.Name, query) {
			continue
		}
		si, ok := s.externalSymbolToInfo(sym)
		if !ok {
			continue
		}
		results = append(results, si)
	}
	return results, nil
}

// externalSymbolToInfo converts a workspace declaration to a
// protocol.SymbolInformation. Returns false if its file can no longer be
// read.
func (s *Server) externalSymbolToInfo(sym semantic.ExternalSymbol) (protocol.SymbolInformation, bool) {
	loc, ok := s.location(sym.File, sym.Span)
	if !ok {
		return protocol.SymbolInformation{}, false
	}
	var container *string
	if sym.Module {
		c := "module"
		container = &c
	}
	return protocol.SymbolInformation{
		Name:          sym.Name,
		Kind:          mapSymbolKind(sym.Flags),
		Location:      loc,
		ContainerName: container,
	}, true
}

// matchesQuery performs case-insensitive substring matching. An empty query
// matches everything (per LSP spec: empty string requests all symbols).
func matchesQuery(name, lowerQuery string) bool {
	if lowerQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), lowerQuery)
}
