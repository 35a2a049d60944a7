// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/semantic"
)

// textDocumentDocumentSymbol handles the textDocument/documentSymbol request.
// Top level bindings are listed with the functions and classes nested in
// function bodies, and the elements of classes, as children.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	v := s.ensureAnalysis(doc)
	if v.sem == nil {
		return nil, nil
	}

	symbols := []protocol.DocumentSymbol{}
	for _, id := range v.sem.RootScope().Bindings() {
		symbols = append(symbols, documentSymbol(v, id))
	}
	// Return as []DocumentSymbol (the preferred hierarchical form).
	return symbols, nil
}

func documentSymbol(v view, id semantic.SymbolID) protocol.DocumentSymbol {
	sym := v.sem.Symbol(id)
	decl := v.sem.Program.Node(sym.Decl)
	rng := spanRange(v.lines, v.content, decl.Span)
	sel := spanRange(v.lines, v.content, sym.Span)
	if decl.Span.Start > sym.Span.Start || decl.Span.End < sym.Span.End {
		rng = sel
	}
	detail := symbolKindLabel(sym.Flags)
	ds := protocol.DocumentSymbol{
		Name:           sym.Name,
		Detail:         &detail,
		Kind:           mapSymbolKind(sym.Flags),
		Range:          rng,
		SelectionRange: sel,
	}

	switch decl.Kind {
	case ast.FunctionDeclaration:
		ds.Children = nestedSymbols(v, sym.Decl)
	case ast.ClassDeclaration:
		ds.Children = classElementSymbols(v, sym.Decl)
	}
	return ds
}

// nestedSymbols lists the functions and classes declared directly in the
// body of fn.
func nestedSymbols(v view, fn ast.NodeID) []protocol.DocumentSymbol {
	scope, ok := v.sem.NodeScope(fn)
	if !ok {
		return nil
	}
	var out []protocol.DocumentSymbol
	for _, id := range v.sem.Scope(scope).Bindings() {
		flags := v.sem.Symbol(id).Flags
		if flags&(semantic.SymbolFunction|semantic.SymbolClass) == 0 {
			continue
		}
		out = append(out, documentSymbol(v, id))
	}
	return out
}

func classElementSymbols(v view, node ast.NodeID) []protocol.DocumentSymbol {
	cls, ok := v.sem.ClassOf(node)
	if !ok {
		return nil
	}
	var out []protocol.DocumentSymbol
	for _, e := range v.sem.Classes.Class(cls).Elements {
		kind := protocol.SymbolKindProperty
		if e.Kind != semantic.ElementProperty {
			kind = protocol.SymbolKindMethod
		}
		detail := e.Kind.String()
		if e.Static {
			detail = "static " + detail
		}
		out = append(out, protocol.DocumentSymbol{
			Name:           e.Name,
			Detail:         &detail,
			Kind:           kind,
			Range:          spanRange(v.lines, v.content, v.sem.Program.Node(e.Node).Span),
			SelectionRange: spanRange(v.lines, v.content, e.Span),
		})
	}
	return out
}
