// Copyright © 2024 The ELPS authors

package semantic

import (
	"iter"

	"github.com/luthersystems/jsscope/ast"
)

// Symbol is a declared binding.
type Symbol struct {
	Name  string
	Node  ast.NodeID // the BindingIdentifier of the first declaration
	Decl  ast.NodeID // the declaring statement, function, class or import
	Span  ast.Span
	Flags SymbolFlags
	Scope ScopeID

	// Redeclarations lists later var or function declarations of the same
	// name in the same scope that were merged into this symbol.
	Redeclarations []Redeclaration
}

// Redeclaration is a repeated declaration merged into an existing symbol.
type Redeclaration struct {
	Node ast.NodeID
	Span ast.Span
}

// SymbolTable is the append-only table of symbols. It also indexes the
// references that resolved to each symbol.
type SymbolTable struct {
	symbols    []Symbol
	references [][]ReferenceID
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// DeclareSymbol appends a symbol. It does not bind the name in any scope;
// see ScopeTree.AddBinding.
func (t *SymbolTable) DeclareSymbol(name string, node ast.NodeID, span ast.Span, flags SymbolFlags, scope ScopeID) SymbolID {
	id := nextID[SymbolID]("symbol", len(t.symbols))
	t.symbols = append(t.symbols, Symbol{
		Name:  name,
		Node:  node,
		Decl:  node,
		Span:  span,
		Flags: flags,
		Scope: scope,
	})
	t.references = append(t.references, nil)
	return id
}

// Symbol returns the symbol for id.
func (t *SymbolTable) Symbol(id SymbolID) *Symbol {
	if int(id) >= len(t.symbols) {
		invariantf("symbol", "symbol id %d out of bounds (len %d)", id, len(t.symbols))
	}
	return &t.symbols[id]
}

// Len returns the number of symbols.
func (t *SymbolTable) Len() int {
	return len(t.symbols)
}

// All yields every symbol in declaration order.
func (t *SymbolTable) All() iter.Seq2[SymbolID, *Symbol] {
	return func(yield func(SymbolID, *Symbol) bool) {
		for i := range t.symbols {
			if !yield(SymbolID(i), &t.symbols[i]) {
				return
			}
		}
	}
}

// AddFlags ors flags into the symbol's flags.
func (t *SymbolTable) AddFlags(id SymbolID, flags SymbolFlags) {
	t.Symbol(id).Flags |= flags
}

// AddRedeclaration records a declaration merged into id.
func (t *SymbolTable) AddRedeclaration(id SymbolID, node ast.NodeID, span ast.Span) {
	sym := t.Symbol(id)
	sym.Redeclarations = append(sym.Redeclarations, Redeclaration{Node: node, Span: span})
}

// ResolvedReferences returns the references resolved to id in resolution
// order.
func (t *SymbolTable) ResolvedReferences(id SymbolID) []ReferenceID {
	t.Symbol(id)
	return t.references[id]
}

func (t *SymbolTable) addResolvedReference(id SymbolID, ref ReferenceID) {
	t.Symbol(id)
	t.references[id] = append(t.references[id], ref)
}

func (t *SymbolTable) removeResolvedReference(id SymbolID, ref ReferenceID) {
	refs := t.references[id]
	for i, r := range refs {
		if r == ref {
			t.references[id] = append(refs[:i], refs[i+1:]...)
			return
		}
	}
}
