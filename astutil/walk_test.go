// Copyright © 2024 The ELPS authors

package astutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/astutil"
	"github.com/luthersystems/jsscope/parser"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse("test.js", []byte(src))
	require.NoError(t, err)
	return prog
}

func TestWalk_SourceOrder(t *testing.T) {
	prog := parse(t, "function f(a, b) { return a }")
	var names []string
	astutil.Walk(prog.Arena, prog.Root, func(id, _ ast.NodeID, _ int) bool {
		n := prog.Node(id)
		if n.Kind == ast.BindingIdentifier || n.Kind == ast.Identifier {
			names = append(names, n.Name)
		}
		return true
	})
	assert.Equal(t, []string{"f", "a", "b", "a"}, names)
}

func TestWalk_DoWhileBodyFirst(t *testing.T) {
	prog := parse(t, "do { x } while (y)")
	var names []string
	astutil.WalkKind(prog.Arena, prog.Root, ast.Identifier, func(id ast.NodeID) {
		names = append(names, prog.Node(id).Name)
	})
	assert.Equal(t, []string{"x", "y"}, names)
}

func TestWalk_SkipChildren(t *testing.T) {
	prog := parse(t, "a; (function () { b })")
	var names []string
	astutil.Walk(prog.Arena, prog.Root, func(id, _ ast.NodeID, _ int) bool {
		n := prog.Node(id)
		if n.Kind == ast.Identifier {
			names = append(names, n.Name)
		}
		return !n.Kind.IsFunction()
	})
	assert.Equal(t, []string{"a"}, names)
}

func TestWalk_ParentAndDepth(t *testing.T) {
	prog := parse(t, "x")
	var depths []int
	var parents []ast.NodeID
	astutil.Walk(prog.Arena, prog.Root, func(id, parent ast.NodeID, depth int) bool {
		depths = append(depths, depth)
		parents = append(parents, parent)
		return true
	})
	assert.Equal(t, []int{0, 1, 2}, depths)
	assert.Equal(t, ast.NoNode, parents[0])
	assert.Equal(t, prog.Root, parents[1])
}

func TestNodeAt(t *testing.T) {
	src := "let total = price * qty"
	prog := parse(t, src)
	id := astutil.NodeAt(prog.Arena, prog.Root, 14)
	require.NotEqual(t, ast.NoNode, id)
	n := prog.Node(id)
	assert.Equal(t, ast.Identifier, n.Kind)
	assert.Equal(t, "price", n.Name)

	path := astutil.PathAt(prog.Arena, prog.Root, 14)
	assert.Equal(t, prog.Root, path[0])
	assert.Equal(t, ast.BinaryExpression, prog.Node(path[len(path)-2]).Kind)
}

func TestNodeAt_EndOfIdentifier(t *testing.T) {
	prog := parse(t, "foo;")
	id := astutil.NodeAt(prog.Arena, prog.Root, 3)
	assert.Equal(t, "foo", prog.Node(id).Name)
}

func TestBindingIdentifiers(t *testing.T) {
	prog := parse(t, "const { a, b: [c, ...d], e = f, ...g } = obj")
	decl := prog.Node(prog.Node(prog.Root).List[0])
	pattern := prog.Node(decl.List[0]).A
	var names []string
	for _, id := range astutil.BindingIdentifiers(prog.Arena, pattern) {
		names = append(names, prog.Node(id).Name)
	}
	assert.Equal(t, []string{"a", "c", "d", "e", "g"}, names)
}

func TestDump(t *testing.T) {
	prog := parse(t, "let x = 1")
	assert.Equal(t,
		"(Program (VariableDeclaration:let (VariableDeclarator (BindingIdentifier x) (NumericLiteral 1))))",
		astutil.Dump(prog.Arena, prog.Root))
}
