// Copyright © 2024 The ELPS authors

package astutil

import (
	"strings"

	"github.com/luthersystems/jsscope/ast"
)

// Dump renders the tree under id as a compact s-expression. Leaves print
// their name, operators and declaration kinds are appended to the kind after
// a colon, e.g.
//
//	(VariableDeclaration:let (VariableDeclarator (BindingIdentifier x) (NumericLiteral 1)))
//
// Dump is meant for tests and debugging output.
func Dump(a *ast.Arena, id ast.NodeID) string {
	var b strings.Builder
	dump(&b, a, id)
	return b.String()
}

func dump(b *strings.Builder, a *ast.Arena, id ast.NodeID) {
	n := a.Node(id)
	b.WriteByte('(')
	b.WriteString(n.Kind.String())
	if n.Op != "" {
		b.WriteByte(':')
		b.WriteString(n.Op)
	}
	if n.Name != "" {
		b.WriteByte(' ')
		b.WriteString(n.Name)
	}
	EachChild(a, id, func(c ast.NodeID) {
		b.WriteByte(' ')
		dump(b, a, c)
	})
	b.WriteByte(')')
}
