// Copyright © 2024 The ELPS authors

// Package astutil provides shared syntax tree walking utilities.
//
// These helpers are used by the semantic, lint, formatter and lsp packages
// for traversing parsed JavaScript programs.
package astutil

import (
	"github.com/luthersystems/jsscope/ast"
)

// EachChild calls fn for every present child of id in source order.
func EachChild(a *ast.Arena, id ast.NodeID, fn func(child ast.NodeID)) {
	if id == ast.NoNode {
		return
	}
	n := a.Node(id)
	visit := func(ids ...ast.NodeID) {
		for _, c := range ids {
			if c != ast.NoNode {
				fn(c)
			}
		}
	}
	switch n.Kind {
	case ast.FunctionDeclaration, ast.FunctionExpression:
		visit(n.A)
		visit(n.List...)
		visit(n.B)
	case ast.ArrowFunctionExpression:
		visit(n.List...)
		visit(n.B)
	case ast.ClassDeclaration, ast.ClassExpression:
		visit(n.A, n.B)
		visit(n.List...)
	case ast.DoWhileStatement:
		visit(n.D, n.A)
	case ast.ImportDeclaration:
		visit(n.List...)
		visit(n.A)
	case ast.ExportNamedDeclaration:
		visit(n.A)
		visit(n.List...)
		visit(n.B)
	case ast.JSXElement:
		visit(n.A)
		visit(n.List...)
		visit(n.B)
	default:
		visit(n.A, n.B, n.C)
		visit(n.List...)
		visit(n.D)
	}
}

// Children returns the children of id in source order.
func Children(a *ast.Arena, id ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	EachChild(a, id, func(c ast.NodeID) {
		out = append(out, c)
	})
	return out
}

// Walk calls fn for every node under root, depth-first in source order.
// parent is ast.NoNode for root. Returning false from fn skips the children
// of that node.
func Walk(a *ast.Arena, root ast.NodeID, fn func(id, parent ast.NodeID, depth int) bool) {
	walkNode(a, root, ast.NoNode, 0, fn)
}

func walkNode(a *ast.Arena, id, parent ast.NodeID, depth int, fn func(ast.NodeID, ast.NodeID, int) bool) {
	if id == ast.NoNode {
		return
	}
	if !fn(id, parent, depth) {
		return
	}
	EachChild(a, id, func(c ast.NodeID) {
		walkNode(a, c, id, depth+1, fn)
	})
}

// WalkKind calls fn for every node of the given kind under root.
func WalkKind(a *ast.Arena, root ast.NodeID, kind ast.Kind, fn func(id ast.NodeID)) {
	Walk(a, root, func(id, _ ast.NodeID, _ int) bool {
		if a.Node(id).Kind == kind {
			fn(id)
		}
		return true
	})
}

// PathAt returns the chain of nodes whose spans contain offset, outermost
// first. The last element is the innermost node at offset. An offset equal
// to a node's end is treated as inside it so that a cursor placed just after
// an identifier still resolves to that identifier.
func PathAt(a *ast.Arena, root ast.NodeID, offset int) []ast.NodeID {
	var path []ast.NodeID
	id := root
	for id != ast.NoNode {
		path = append(path, id)
		next := ast.NoNode
		EachChild(a, id, func(c ast.NodeID) {
			if next != ast.NoNode {
				return
			}
			sp := a.Node(c).Span
			if sp.Start <= offset && offset <= sp.End && sp.Len() > 0 {
				next = c
			}
		})
		id = next
	}
	return path
}

// NodeAt returns the innermost node containing offset, or ast.NoNode.
func NodeAt(a *ast.Arena, root ast.NodeID, offset int) ast.NodeID {
	path := PathAt(a, root, offset)
	if len(path) == 0 {
		return ast.NoNode
	}
	return path[len(path)-1]
}

// BindingIdentifiers returns every BindingIdentifier declared by a binding
// pattern, in source order. Default values are not searched.
func BindingIdentifiers(a *ast.Arena, pattern ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	collectBindings(a, pattern, &out)
	return out
}

func collectBindings(a *ast.Arena, id ast.NodeID, out *[]ast.NodeID) {
	if id == ast.NoNode {
		return
	}
	n := a.Node(id)
	switch n.Kind {
	case ast.BindingIdentifier:
		*out = append(*out, id)
	case ast.ArrayPattern, ast.ObjectPattern:
		for _, c := range n.List {
			collectBindings(a, c, out)
		}
	case ast.Property:
		collectBindings(a, n.B, out)
	case ast.AssignmentPattern, ast.RestElement:
		collectBindings(a, n.A, out)
	}
}
