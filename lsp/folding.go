// Copyright © 2024 The ELPS authors

package lsp

import (
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/semantic"
)

// foldable lists the node kinds whose bodies can be collapsed.
var foldable = map[ast.Kind]bool{
	ast.BlockStatement:   true,
	ast.StaticBlock:      true,
	ast.ObjectExpression: true,
	ast.ObjectPattern:    true,
	ast.ArrayExpression:  true,
	ast.ArrayPattern:     true,
	ast.SwitchStatement:  true,
	ast.ClassDeclaration: true,
	ast.ClassExpression:  true,
	ast.TemplateLiteral:  true,
	ast.JSXElement:       true,
	ast.JSXFragment:      true,
}

// textDocumentFoldingRange handles the textDocument/foldingRange request.
// It returns folding ranges for multi-line blocks and literals, comment
// blocks and runs of import declarations.
func (s *Server) textDocumentFoldingRange(_ *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	v := s.ensureAnalysis(doc)
	sem := v.sem
	if sem == nil {
		sem = v.lastGood
	}
	if sem == nil {
		return nil, nil
	}
	ranges := foldingRanges(sem)
	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].StartLine < ranges[j].StartLine })
	return ranges, nil
}

func foldingRanges(sem *semantic.Semantic) []protocol.FoldingRange {
	prog := sem.Program
	lines := prog.Lines
	var ranges []protocol.FoldingRange
	add := func(start, end int, kind protocol.FoldingRangeKind, keepLast bool) {
		startLine, _ := lines.Position(start)
		endLine, _ := lines.Position(max(end-1, start))
		if !keepLast {
			// Leave the closing bracket visible.
			endLine--
		}
		if endLine <= startLine {
			return
		}
		k := string(kind)
		ranges = append(ranges, protocol.FoldingRange{
			StartLine: safeUint(startLine - 1),
			EndLine:   safeUint(endLine - 1),
			Kind:      &k,
		})
	}

	prog.Arena.Each(func(_ ast.NodeID, n *ast.Node) {
		if foldable[n.Kind] {
			add(n.Span.Start, n.Span.End, protocol.FoldingRangeKindRegion, false)
		}
	})

	// Block comments fold on their own, line comments in runs of
	// consecutive lines.
	runStart, runEnd, prevLine := -1, -1, -1
	flush := func() {
		if runStart >= 0 {
			add(runStart, runEnd, protocol.FoldingRangeKindComment, true)
		}
		runStart = -1
	}
	for _, c := range prog.Comments {
		if c.Block {
			flush()
			add(c.Span.Start, c.Span.End, protocol.FoldingRangeKindComment, true)
			continue
		}
		line, _ := lines.Position(c.Span.Start)
		if runStart < 0 || line != prevLine+1 {
			flush()
			runStart = c.Span.Start
		}
		runEnd, prevLine = c.Span.End, line
	}
	flush()

	first := ast.NoNode
	var last ast.NodeID
	for _, stmt := range prog.Node(prog.Root).List {
		if prog.Arena.Kind(stmt) == ast.ImportDeclaration {
			if first == ast.NoNode {
				first = stmt
			}
			last = stmt
			continue
		}
		if first != ast.NoNode {
			add(prog.Node(first).Span.Start, prog.Node(last).Span.End, protocol.FoldingRangeKindImports, true)
			first = ast.NoNode
		}
	}
	if first != ast.NoNode {
		add(prog.Node(first).Span.Start, prog.Node(last).Span.End, protocol.FoldingRangeKindImports, true)
	}
	return ranges
}
