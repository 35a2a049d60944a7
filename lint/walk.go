// Copyright © 2024 The ELPS authors

package lint

import (
	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/astutil"
	"github.com/luthersystems/jsscope/semantic"
)

// Symbols calls fn for every symbol of the pass in declaration order.
func (p *Pass) Symbols(fn func(id semantic.SymbolID, sym *semantic.Symbol)) {
	for id, sym := range p.Semantic.Symbols.All() {
		fn(id, sym)
	}
}

// UnresolvedReferences calls fn for every reference that bound to no
// declaration, grouped by name in first-use order.
func (p *Pass) UnresolvedReferences(fn func(name string, ref *semantic.Reference)) {
	unresolved := p.Semantic.Scopes.RootUnresolvedReferences()
	for _, name := range p.Semantic.Scopes.UnresolvedNames() {
		for _, id := range unresolved[name] {
			fn(name, p.Semantic.Reference(id))
		}
	}
}

// Writes returns the references that assign sym.
func (p *Pass) Writes(sym semantic.SymbolID) []*semantic.Reference {
	var out []*semantic.Reference
	for _, id := range p.Semantic.SymbolReferences(sym) {
		if ref := p.Semantic.Reference(id); ref.IsWrite() {
			out = append(out, ref)
		}
	}
	return out
}

// IsUsed reports whether any reference reads sym or names it in a type
// position.
func (p *Pass) IsUsed(sym semantic.SymbolID) bool {
	for _, id := range p.Semantic.SymbolReferences(sym) {
		ref := p.Semantic.Reference(id)
		if ref.IsRead() || ref.Flags&semantic.ReferenceType != 0 {
			return true
		}
	}
	return false
}

// IsTypeofOperand reports whether node is the operand of a typeof
// expression.
func (p *Pass) IsTypeofOperand(node ast.NodeID) bool {
	parent := p.Parent(node)
	if parent == ast.NoNode {
		return false
	}
	pn := p.Program.Node(parent)
	return pn.Kind == ast.UnaryExpression && pn.Op == "typeof" && pn.A == node
}

// inOrdinaryFunction reports whether code in scope can see the implicit
// arguments object.
func (p *Pass) inOrdinaryFunction(scope semantic.ScopeID) bool {
	for id := range p.Semantic.Scopes.Ancestors(scope) {
		f := p.Semantic.Scope(id).Flags
		if f.IsFunction() && !f.Has(semantic.ScopeArrow) {
			return true
		}
	}
	return false
}

// sameVarScope reports whether two scopes hoist var declarations to the
// same function, static block, or program.
func (p *Pass) sameVarScope(a, b semantic.ScopeID) bool {
	return p.Semantic.Scopes.NearestVarScope(a) == p.Semantic.Scopes.NearestVarScope(b)
}

// paramBindings returns the BindingIdentifiers of a function's parameters
// in declaration order.
func paramBindings(prog *ast.Program, fn ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	for _, param := range prog.Node(fn).List {
		out = append(out, astutil.BindingIdentifiers(prog.Arena, param)...)
	}
	return out
}

// declaratorInit returns the initializer of the declarator of decl that
// binds name, or ast.NoNode.
func declaratorInit(prog *ast.Program, decl, name ast.NodeID) ast.NodeID {
	dn := prog.Node(decl)
	if dn.Kind != ast.VariableDeclaration {
		return ast.NoNode
	}
	for _, d := range dn.List {
		for _, id := range astutil.BindingIdentifiers(prog.Arena, prog.Node(d).A) {
			if id == name {
				return prog.Node(d).B
			}
		}
	}
	return ast.NoNode
}
