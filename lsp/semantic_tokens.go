// Copyright © 2024 The ELPS authors

package lsp

import (
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/semantic"
)

// Semantic token type indices: must match the order in semanticTokenLegend().
const (
	semTokenNamespace = iota
	semTokenClass
	semTokenParameter
	semTokenVariable
	semTokenFunction
)

// Semantic token modifier bit flags: must match the order in semanticTokenLegend().
const (
	semModDeclaration = 1 << iota
	semModReadonly
	semModDefaultLibrary
	semModModification
)

// semanticTokenLegend returns the legend that the client uses to decode tokens.
func semanticTokenLegend() protocol.SemanticTokensLegend {
	return protocol.SemanticTokensLegend{
		TokenTypes: []string{
			"namespace", // 0
			"class",     // 1
			"parameter", // 2
			"variable",  // 3
			"function",  // 4
		},
		TokenModifiers: []string{
			"declaration",    // bit 0
			"readonly",       // bit 1
			"defaultLibrary", // bit 2
			"modification",   // bit 3
		},
	}
}

// rawToken is an intermediate representation before delta encoding.
type rawToken struct {
	line      int // 0-based
	startChar int // 0-based, UTF-16
	length    int
	tokenType int
	modifiers int
}

// textDocumentSemanticTokensFull handles the textDocument/semanticTokens/full
// request. Every declared or referenced identifier is classified by the
// binding it denotes.
func (s *Server) textDocumentSemanticTokensFull(_ *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	v := s.ensureAnalysis(doc)
	if v.sem == nil {
		return nil, nil
	}

	globals := s.currentLinter().Globals
	if globals == nil {
		globals, _ = semantic.Globals()
	}
	tokens := collectSemanticTokens(v, globals)

	// Sort by position (line, then character).
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].line != tokens[j].line {
			return tokens[i].line < tokens[j].line
		}
		return tokens[i].startChar < tokens[j].startChar
	})

	return &protocol.SemanticTokens{Data: deltaEncode(tokens)}, nil
}

func collectSemanticTokens(v view, globals map[string]bool) []rawToken {
	sem := v.sem
	var tokens []rawToken
	add := func(span ast.Span, typ, mods int) {
		start := offsetToPosition(v.lines, v.content, span.Start)
		end := offsetToPosition(v.lines, v.content, span.End)
		if end.Line != start.Line || end.Character <= start.Character {
			return
		}
		tokens = append(tokens, rawToken{
			line:      int(start.Line),
			startChar: int(start.Character),
			length:    int(end.Character - start.Character),
			tokenType: typ,
			modifiers: mods,
		})
	}

	for _, sym := range sem.Symbols.All() {
		typ, mods := classifySymbol(sym.Flags)
		add(sym.Span, typ, mods|semModDeclaration)
		for _, r := range sym.Redeclarations {
			add(r.Span, typ, mods|semModDeclaration)
		}
	}
	for _, ref := range sem.References.All() {
		var typ, mods int
		if ref.Resolved() {
			typ, mods = classifySymbol(sem.Symbol(ref.Symbol).Flags)
		} else {
			typ = semTokenVariable
			if writable, ok := globals[ref.Name]; ok {
				mods = semModDefaultLibrary
				if !writable {
					mods |= semModReadonly
				}
			}
		}
		if ref.IsWrite() {
			mods |= semModModification
		}
		add(ref.Span, typ, mods)
	}
	return tokens
}

// classifySymbol maps symbol flags to a token type and modifiers.
func classifySymbol(flags semantic.SymbolFlags) (int, int) {
	mods := 0
	if flags.IsConst() {
		mods |= semModReadonly
	}
	switch {
	case flags&(semantic.SymbolClass|semantic.SymbolClassExpressionName) != 0:
		return semTokenClass, mods
	case flags&(semantic.SymbolFunction|semantic.SymbolFunctionExpressionName) != 0:
		return semTokenFunction, mods
	case flags.Has(semantic.SymbolParameter):
		return semTokenParameter, mods
	case flags&(semantic.SymbolImport|semantic.SymbolTypeImport) != 0:
		return semTokenNamespace, mods
	default:
		return semTokenVariable, mods
	}
}

// deltaEncode converts sorted raw tokens into the LSP delta-encoded format.
// Each token is 5 integers: [deltaLine, deltaStartChar, length, tokenType, tokenModifiers].
func deltaEncode(tokens []rawToken) []protocol.UInteger {
	data := make([]protocol.UInteger, 0, len(tokens)*5)
	prevLine := 0
	prevChar := 0
	for _, tok := range tokens {
		deltaLine := tok.line - prevLine
		deltaChar := tok.startChar
		if deltaLine == 0 {
			deltaChar = tok.startChar - prevChar
		}
		data = append(data,
			safeUint(deltaLine),
			safeUint(deltaChar),
			safeUint(tok.length),
			safeUint(tok.tokenType),
			safeUint(tok.modifiers),
		)
		prevLine = tok.line
		prevChar = tok.startChar
	}
	return data
}
