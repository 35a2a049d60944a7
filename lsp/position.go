// Copyright © 2024 The ELPS authors

package lsp

import (
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/astutil"
	"github.com/luthersystems/jsscope/parser/token"
	"github.com/luthersystems/jsscope/semantic"
)

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// utf16Len counts the UTF-16 code units LSP clients use for columns.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// offsetToPosition converts a byte offset into a 0-based LSP position.
func offsetToPosition(lines *token.LineIndex, src string, offset int) protocol.Position {
	offset = max(min(offset, len(src)), 0)
	line, _ := lines.Position(offset)
	start := lines.Offset(line, 1)
	return protocol.Position{
		Line:      safeUint(line - 1),
		Character: safeUint(utf16Len(src[start:offset])),
	}
}

// positionToOffset is the inverse of offsetToPosition. Characters past the
// end of the line clamp to the line end.
func positionToOffset(lines *token.LineIndex, src string, pos protocol.Position) int {
	off := lines.Offset(int(pos.Line)+1, 1)
	units := 0
	for off < len(src) && units < int(pos.Character) {
		r, size := utf8.DecodeRuneInString(src[off:])
		if r == '\n' || r == '\r' {
			break
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
		off += size
	}
	return off
}

func spanRange(lines *token.LineIndex, src string, span ast.Span) protocol.Range {
	return protocol.Range{
		Start: offsetToPosition(lines, src, span.Start),
		End:   offsetToPosition(lines, src, span.End),
	}
}

// lintRange converts a lint position, whose columns count runes, into an
// LSP range. A diagnostic without an end column covers one character.
func lintRange(lines *token.LineIndex, src string, line, col, endCol int) protocol.Range {
	start := lines.Offset(line, max(col, 1))
	end := start + 1
	if endCol > col {
		end = lines.Offset(line, endCol)
	}
	end = min(end, len(src))
	return protocol.Range{
		Start: offsetToPosition(lines, src, start),
		End:   offsetToPosition(lines, src, max(end, start)),
	}
}

// target is the identifier under the cursor.
type target struct {
	name  string
	span  ast.Span
	sym   semantic.SymbolID // NoSymbol for globals
	ref   semantic.ReferenceID
	isRef bool
}

func (t target) resolved() bool {
	return t.sym != semantic.NoSymbol
}

// targetAt finds the declared or referenced identifier at offset. A cursor
// just past the end of an identifier also selects it.
func targetAt(sem *semantic.Semantic, offset int) (target, bool) {
	for _, off := range []int{offset, offset - 1} {
		if off < 0 {
			continue
		}
		node := astutil.NodeAt(sem.Program.Arena, sem.Program.Root, off)
		if node == ast.NoNode {
			continue
		}
		n := sem.Program.Node(node)
		if sym, ok := sem.SymbolOf(node); ok {
			return target{name: n.Name, span: n.Span, sym: sym}, true
		}
		if ref, ok := sem.ReferenceOf(node); ok {
			r := sem.Reference(ref)
			return target{name: r.Name, span: r.Span, sym: r.Symbol, ref: ref, isRef: true}, true
		}
	}
	return target{}, false
}

// occurrence is one appearance of a symbol's name in its file.
type occurrence struct {
	span  ast.Span
	decl  bool
	write bool
}

// occurrences lists the declaration, redeclarations and references of sym
// in source order.
func occurrences(sem *semantic.Semantic, sym semantic.SymbolID) []occurrence {
	s := sem.Symbol(sym)
	out := []occurrence{{span: s.Span, decl: true}}
	for _, r := range s.Redeclarations {
		out = append(out, occurrence{span: r.Span, decl: true})
	}
	for _, id := range sem.SymbolReferences(sym) {
		r := sem.Reference(id)
		out = append(out, occurrence{span: r.Span, write: r.IsWrite()})
	}
	sortOccurrences(out)
	return out
}

// globalOccurrences lists the unresolved references to name.
func globalOccurrences(sem *semantic.Semantic, name string) []occurrence {
	var out []occurrence
	for _, id := range sem.Scopes.RootUnresolvedReferences()[name] {
		r := sem.Reference(id)
		out = append(out, occurrence{span: r.Span, write: r.IsWrite()})
	}
	sortOccurrences(out)
	return out
}

func sortOccurrences(occ []occurrence) {
	sort.SliceStable(occ, func(i, j int) bool { return occ[i].span.Start < occ[j].span.Start })
}

// targetOccurrences lists every appearance of the target in its file.
func targetOccurrences(sem *semantic.Semantic, t target) []occurrence {
	if t.resolved() {
		return occurrences(sem, t.sym)
	}
	return globalOccurrences(sem, t.name)
}

// isSharedGlobal reports whether the target is visible to other files: a
// global or a top level declaration of a script.
func isSharedGlobal(sem *semantic.Semantic, t target) bool {
	if !t.resolved() {
		return true
	}
	return !sem.Program.SourceType.Module && sem.Symbol(t.sym).Scope == sem.Scopes.RootScopeID()
}

// identPrefix returns the identifier characters before offset.
func identPrefix(src string, offset int) string {
	start := offset
	for start > 0 && isIdentByte(src[start-1]) {
		start--
	}
	return src[start:offset]
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c == '#' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// mapSymbolKind converts symbol flags to an LSP SymbolKind.
func mapSymbolKind(flags semantic.SymbolFlags) protocol.SymbolKind {
	switch {
	case flags&(semantic.SymbolClass|semantic.SymbolClassExpressionName) != 0:
		return protocol.SymbolKindClass
	case flags&(semantic.SymbolFunction|semantic.SymbolFunctionExpressionName) != 0:
		return protocol.SymbolKindFunction
	case flags&(semantic.SymbolImport|semantic.SymbolTypeImport) != 0:
		return protocol.SymbolKindModule
	case flags.Has(semantic.SymbolConstVariable):
		return protocol.SymbolKindConstant
	default:
		return protocol.SymbolKindVariable
	}
}

// mapCompletionItemKind converts symbol flags to an LSP CompletionItemKind.
func mapCompletionItemKind(flags semantic.SymbolFlags) protocol.CompletionItemKind {
	switch {
	case flags&(semantic.SymbolClass|semantic.SymbolClassExpressionName) != 0:
		return protocol.CompletionItemKindClass
	case flags&(semantic.SymbolFunction|semantic.SymbolFunctionExpressionName) != 0:
		return protocol.CompletionItemKindFunction
	case flags&(semantic.SymbolImport|semantic.SymbolTypeImport) != 0:
		return protocol.CompletionItemKindModule
	case flags.Has(semantic.SymbolConstVariable):
		return protocol.CompletionItemKindConstant
	default:
		return protocol.CompletionItemKindVariable
	}
}

// symbolKindLabel names the kind of declaration for hover text.
func symbolKindLabel(flags semantic.SymbolFlags) string {
	switch {
	case flags.Has(semantic.SymbolParameter):
		return "parameter"
	case flags&(semantic.SymbolClass|semantic.SymbolClassExpressionName) != 0:
		return "class"
	case flags&(semantic.SymbolFunction|semantic.SymbolFunctionExpressionName) != 0:
		return "function"
	case flags.Has(semantic.SymbolTypeImport):
		return "type import"
	case flags.Has(semantic.SymbolImport):
		return "import"
	case flags.Has(semantic.SymbolCatchVariable):
		return "catch parameter"
	case flags.Has(semantic.SymbolConstVariable):
		return "const"
	case flags.Has(semantic.SymbolBlockScopedVariable):
		return "let"
	default:
		return "var"
	}
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	rest, ok := strings.CutPrefix(uri, "file://")
	if !ok {
		return uri
	}
	if path, err := url.PathUnescape(rest); err == nil {
		return filepath.FromSlash(path)
	}
	return rest
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if filepath.IsAbs(path) {
		return "file://" + filepath.ToSlash(path)
	}
	return path
}
