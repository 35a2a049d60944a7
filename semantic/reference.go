// Copyright © 2024 The ELPS authors

package semantic

import (
	"iter"

	"github.com/luthersystems/jsscope/ast"
)

// Reference is a single use of a name.
type Reference struct {
	Name   string
	Node   ast.NodeID
	Span   ast.Span
	Scope  ScopeID // the scope the use occurs in
	Flags  ReferenceFlags
	Symbol SymbolID // NoSymbol until resolved; stays NoSymbol for globals
}

// Resolved reports whether the reference points at a declared symbol.
func (r *Reference) Resolved() bool {
	return r.Symbol != NoSymbol
}

// IsRead reports whether the reference reads its binding.
func (r *Reference) IsRead() bool {
	return r.Flags.IsRead()
}

// IsWrite reports whether the reference assigns its binding.
func (r *Reference) IsWrite() bool {
	return r.Flags.IsWrite()
}

// ReferenceTable is the append-only table of references.
type ReferenceTable struct {
	refs []Reference
}

// NewReferenceTable returns an empty table.
func NewReferenceTable() *ReferenceTable {
	return &ReferenceTable{}
}

// AddReference appends an unresolved reference.
func (t *ReferenceTable) AddReference(name string, node ast.NodeID, span ast.Span, scope ScopeID, flags ReferenceFlags) ReferenceID {
	id := nextID[ReferenceID]("reference", len(t.refs))
	t.refs = append(t.refs, Reference{
		Name:   name,
		Node:   node,
		Span:   span,
		Scope:  scope,
		Flags:  flags,
		Symbol: NoSymbol,
	})
	return id
}

// Resolve points ref at sym. It only updates the reference itself; use
// Semantic.Resolve to keep the per-symbol index and the root bucket in
// step.
func (t *ReferenceTable) Resolve(ref ReferenceID, sym SymbolID) {
	t.Reference(ref).Symbol = sym
}

// Reference returns the reference for id.
func (t *ReferenceTable) Reference(id ReferenceID) *Reference {
	if int(id) >= len(t.refs) {
		invariantf("reference", "reference id %d out of bounds (len %d)", id, len(t.refs))
	}
	return &t.refs[id]
}

// Len returns the number of references.
func (t *ReferenceTable) Len() int {
	return len(t.refs)
}

// All yields every reference in encounter order.
func (t *ReferenceTable) All() iter.Seq2[ReferenceID, *Reference] {
	return func(yield func(ReferenceID, *Reference) bool) {
		for i := range t.refs {
			if !yield(ReferenceID(i), &t.refs[i]) {
				return
			}
		}
	}
}
