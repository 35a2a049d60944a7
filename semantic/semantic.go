// Copyright © 2024 The ELPS authors

// Package semantic builds the scope tree, symbol table, reference table and
// class table for a parsed JavaScript program.
//
// A Builder walks the syntax tree once. Declarations are bound as they are
// met and every name use is recorded as a Reference without being looked
// up. Each scope keeps the references it could not bind yet; when the walk
// leaves a scope they are matched against that scope's bindings and the
// rest move to the parent. Whatever is left at the root is a global (or a
// typo) and is kept in the root bucket of the ScopeTree. Deferring the
// lookup is what lets hoisted var and function declarations bind uses that
// precede them in the source.
//
// A resolved *Semantic is safe for concurrent reads. The mutation methods
// (NewScope, AddBinding, ChangeParentID, DeclareSymbol, AddFlags,
// AddReference, Resolve) require exclusive access.
package semantic

import (
	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/astutil"
)

// Semantic is the result of analyzing one program.
type Semantic struct {
	Program    *ast.Program
	Scopes     *ScopeTree
	Symbols    *SymbolTable
	References *ReferenceTable
	Classes    *ClassTable

	nodeScope     map[ast.NodeID]ScopeID
	nodeSymbol    map[ast.NodeID]SymbolID
	nodeReference map[ast.NodeID]ReferenceID
	nodeClass     map[ast.NodeID]ClassID
	hasYield      map[ast.NodeID]bool
	unusedLabels  []ast.NodeID
	strayPrivate  []ast.NodeID
}

func newSemantic(prog *ast.Program) *Semantic {
	return &Semantic{
		Program:       prog,
		Scopes:        NewScopeTree(),
		Symbols:       NewSymbolTable(),
		References:    NewReferenceTable(),
		Classes:       NewClassTable(),
		nodeScope:     make(map[ast.NodeID]ScopeID),
		nodeSymbol:    make(map[ast.NodeID]SymbolID),
		nodeReference: make(map[ast.NodeID]ReferenceID),
		nodeClass:     make(map[ast.NodeID]ClassID),
		hasYield:      make(map[ast.NodeID]bool),
	}
}

// RootScope returns the root scope.
func (s *Semantic) RootScope() *Scope {
	return s.Scopes.Scope(s.Scopes.RootScopeID())
}

// Scope is shorthand for s.Scopes.Scope(id).
func (s *Semantic) Scope(id ScopeID) *Scope {
	return s.Scopes.Scope(id)
}

// Symbol is shorthand for s.Symbols.Symbol(id).
func (s *Semantic) Symbol(id SymbolID) *Symbol {
	return s.Symbols.Symbol(id)
}

// Reference is shorthand for s.References.Reference(id).
func (s *Semantic) Reference(id ReferenceID) *Reference {
	return s.References.Reference(id)
}

// NodeScope returns the scope introduced by node, if any.
func (s *Semantic) NodeScope(node ast.NodeID) (ScopeID, bool) {
	id, ok := s.nodeScope[node]
	return id, ok
}

// ScopeAt returns the innermost scope containing the byte offset.
func (s *Semantic) ScopeAt(offset int) ScopeID {
	path := astutil.PathAt(s.Program.Arena, s.Program.Root, offset)
	for i := len(path) - 1; i >= 0; i-- {
		if id, ok := s.nodeScope[path[i]]; ok {
			return id
		}
	}
	return s.Scopes.RootScopeID()
}

// SymbolOf returns the symbol declared by a BindingIdentifier node.
func (s *Semantic) SymbolOf(node ast.NodeID) (SymbolID, bool) {
	id, ok := s.nodeSymbol[node]
	return id, ok
}

// ReferenceOf returns the reference recorded for an identifier node.
func (s *Semantic) ReferenceOf(node ast.NodeID) (ReferenceID, bool) {
	id, ok := s.nodeReference[node]
	return id, ok
}

// ClassOf returns the class table entry for a class node.
func (s *Semantic) ClassOf(node ast.NodeID) (ClassID, bool) {
	id, ok := s.nodeClass[node]
	return id, ok
}

// SymbolAt returns the symbol declared or referenced by the identifier at
// the byte offset.
func (s *Semantic) SymbolAt(offset int) (SymbolID, bool) {
	node := astutil.NodeAt(s.Program.Arena, s.Program.Root, offset)
	if node == ast.NoNode {
		return NoSymbol, false
	}
	if sym, ok := s.nodeSymbol[node]; ok {
		return sym, true
	}
	if ref, ok := s.nodeReference[node]; ok {
		r := s.Reference(ref)
		return r.Symbol, r.Resolved()
	}
	return NoSymbol, false
}

// SymbolDeclaration returns the node that declared sym: the variable
// declaration, function, class, catch clause or import.
func (s *Semantic) SymbolDeclaration(sym SymbolID) ast.NodeID {
	return s.Symbol(sym).Decl
}

// SymbolReferences returns the references resolved to sym.
func (s *Semantic) SymbolReferences(sym SymbolID) []ReferenceID {
	return s.Symbols.ResolvedReferences(sym)
}

// IsReferenceToGlobal reports whether ref did not resolve to any binding.
func (s *Semantic) IsReferenceToGlobal(ref ReferenceID) bool {
	return !s.Reference(ref).Resolved()
}

// HasYield reports whether the function node contains a yield expression
// directly in its body.
func (s *Semantic) HasYield(fn ast.NodeID) bool {
	return s.hasYield[fn]
}

// UnusedLabels returns the LabelIdentifier nodes of labels that no break or
// continue statement targets.
func (s *Semantic) UnusedLabels() []ast.NodeID {
	return s.unusedLabels
}

// PrivateNamesOutsideClass returns PrivateIdentifier uses that have no
// enclosing class at all.
func (s *Semantic) PrivateNamesOutsideClass() []ast.NodeID {
	return s.strayPrivate
}

// IsWritten reports whether any reference writes sym.
func (s *Semantic) IsWritten(sym SymbolID) bool {
	for _, ref := range s.SymbolReferences(sym) {
		if s.Reference(ref).IsWrite() {
			return true
		}
	}
	return false
}

// DeclareSymbol declares name in scope and binds it, for passes that add
// bindings after analysis.
func (s *Semantic) DeclareSymbol(name string, node ast.NodeID, flags SymbolFlags, scope ScopeID) SymbolID {
	span := ast.Span{}
	if node != ast.NoNode {
		span = s.Program.Node(node).Span
	}
	sym := s.Symbols.DeclareSymbol(name, node, span, flags, scope)
	s.Scopes.AddBinding(scope, name, sym)
	if node != ast.NoNode {
		s.nodeSymbol[node] = sym
	}
	return sym
}

// AddReference records a use of the identifier node in scope. The new
// reference starts out in the root unresolved bucket until Resolve is
// called for it.
func (s *Semantic) AddReference(node ast.NodeID, scope ScopeID, flags ReferenceFlags) ReferenceID {
	n := s.Program.Node(node)
	s.Scope(scope)
	ref := s.References.AddReference(n.Name, node, n.Span, scope, flags)
	s.nodeReference[node] = ref
	s.Scopes.AddUnresolved(n.Name, ref)
	return ref
}

// MoveBinding rebinds name from one scope to another and updates the
// symbol's scope.
func (s *Semantic) MoveBinding(from, to ScopeID, name string) bool {
	sym, ok := s.Scopes.RemoveBinding(from, name)
	if !ok {
		return false
	}
	s.Scopes.AddBinding(to, name, sym)
	s.Symbol(sym).Scope = to
	return true
}

// Resolve points ref at sym and keeps the per-symbol index and the root
// unresolved bucket consistent. A reference that was already resolved
// moves to the new symbol.
func (s *Semantic) Resolve(ref ReferenceID, sym SymbolID) {
	r := s.Reference(ref)
	s.Symbol(sym)
	if r.Resolved() {
		s.Symbols.removeResolvedReference(r.Symbol, ref)
	} else {
		s.Scopes.DeleteUnresolved(r.Name, ref)
	}
	s.References.Resolve(ref, sym)
	s.Symbols.addResolvedReference(sym, ref)
}
