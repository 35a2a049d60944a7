// Copyright © 2024 The ELPS authors

package semantic

import (
	"iter"

	"github.com/luthersystems/jsscope/ast"
)

// Scope is a lexical scope. Bindings keep declaration order so that dumps
// and completion lists are stable.
type Scope struct {
	Parent ScopeID
	Flags  ScopeFlags
	Node   ast.NodeID // the node that introduced the scope

	names    []string
	bindings map[string]SymbolID
}

// Bindings yields the scope's bindings in declaration order.
func (s *Scope) Bindings() iter.Seq2[string, SymbolID] {
	return func(yield func(string, SymbolID) bool) {
		for _, name := range s.names {
			if !yield(name, s.bindings[name]) {
				return
			}
		}
	}
}

// Len returns the number of names bound in the scope.
func (s *Scope) Len() int {
	return len(s.names)
}

// ScopeTree is the append-only table of scopes for one program, together
// with the root bucket of references that resolved to no binding.
type ScopeTree struct {
	scopes []Scope

	unresolvedNames []string
	unresolved      map[string][]ReferenceID
}

// NewScopeTree returns an empty tree. The first scope created must be the
// root.
func NewScopeTree() *ScopeTree {
	return &ScopeTree{unresolved: make(map[string][]ReferenceID)}
}

// NewScope appends a scope. Flags are stored as given; callers compute any
// inherited flags themselves. The root scope is created with parent
// NoScope and must carry ScopeTop.
func (t *ScopeTree) NewScope(parent ScopeID, flags ScopeFlags, node ast.NodeID) ScopeID {
	id := nextID[ScopeID]("scope", len(t.scopes))
	switch {
	case parent == NoScope && id != 0:
		invariantf("new scope", "scope %d has no parent", id)
	case parent == NoScope && flags&ScopeTop == 0:
		invariantf("new scope", "root scope must be a top scope")
	case parent != NoScope && parent >= id:
		invariantf("new scope", "parent %d of scope %d does not exist", parent, id)
	}
	t.scopes = append(t.scopes, Scope{
		Parent:   parent,
		Flags:    flags,
		Node:     node,
		bindings: make(map[string]SymbolID),
	})
	return id
}

// Scope returns the scope for id. Callers holding the returned pointer must
// not create scopes concurrently.
func (t *ScopeTree) Scope(id ScopeID) *Scope {
	if int(id) >= len(t.scopes) {
		invariantf("scope", "scope id %d out of bounds (len %d)", id, len(t.scopes))
	}
	return &t.scopes[id]
}

// Len returns the number of scopes.
func (t *ScopeTree) Len() int {
	return len(t.scopes)
}

// RootScopeID returns the id of the root scope.
func (t *ScopeTree) RootScopeID() ScopeID {
	return 0
}

// AddBinding binds name in scope. A name already bound in the same scope is
// overwritten; the earlier symbol stays addressable through its id.
func (t *ScopeTree) AddBinding(scope ScopeID, name string, sym SymbolID) {
	s := t.Scope(scope)
	if _, ok := s.bindings[name]; !ok {
		s.names = append(s.names, name)
	}
	s.bindings[name] = sym
}

// RemoveBinding deletes name from scope and reports whether it was bound.
func (t *ScopeTree) RemoveBinding(scope ScopeID, name string) (SymbolID, bool) {
	s := t.Scope(scope)
	sym, ok := s.bindings[name]
	if !ok {
		return NoSymbol, false
	}
	delete(s.bindings, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	return sym, true
}

// GetBinding looks name up in scope only.
func (t *ScopeTree) GetBinding(scope ScopeID, name string) (SymbolID, bool) {
	sym, ok := t.Scope(scope).bindings[name]
	return sym, ok
}

// FindBinding looks name up in scope and then in each ancestor, returning
// the innermost binding.
func (t *ScopeTree) FindBinding(scope ScopeID, name string) (SymbolID, bool) {
	for id := range t.Ancestors(scope) {
		if sym, ok := t.scopes[id].bindings[name]; ok {
			return sym, true
		}
	}
	return NoSymbol, false
}

// Ancestors yields scope, its parent, and so on up to the root.
func (t *ScopeTree) Ancestors(scope ScopeID) iter.Seq[ScopeID] {
	return func(yield func(ScopeID) bool) {
		for id := scope; id != NoScope; id = t.Scope(id).Parent {
			if !yield(id) {
				return
			}
		}
	}
}

// AncestorIDs collects Ancestors into a slice.
func (t *ScopeTree) AncestorIDs(scope ScopeID) []ScopeID {
	var ids []ScopeID
	for id := range t.Ancestors(scope) {
		ids = append(ids, id)
	}
	return ids
}

// Depth returns the number of ancestors of scope, excluding itself.
func (t *ScopeTree) Depth(scope ScopeID) int {
	n := -1
	for range t.Ancestors(scope) {
		n++
	}
	return n
}

// IsAncestor reports whether ancestor is scope or one of its ancestors.
func (t *ScopeTree) IsAncestor(ancestor, scope ScopeID) bool {
	for id := range t.Ancestors(scope) {
		if id == ancestor {
			return true
		}
	}
	return false
}

// ChangeParentID moves scope under parent. After a move, parent ids are no
// longer guaranteed to be smaller than their children. Moving a scope under
// itself or one of its descendants would close a cycle and panics.
func (t *ScopeTree) ChangeParentID(scope, parent ScopeID) {
	if scope == 0 {
		invariantf("change parent", "the root scope has no parent")
	}
	t.Scope(parent)
	s := t.Scope(scope)
	if t.IsAncestor(scope, parent) {
		invariantf("change parent", "scope %d is %d or one of its ancestors", scope, parent)
	}
	s.Parent = parent
}

// Descendants yields every scope in creation order.
func (t *ScopeTree) Descendants() iter.Seq2[ScopeID, *Scope] {
	return func(yield func(ScopeID, *Scope) bool) {
		for i := range t.scopes {
			if !yield(ScopeID(i), &t.scopes[i]) {
				return
			}
		}
	}
}

// ChildIDs returns the direct children of scope in creation order.
func (t *ScopeTree) ChildIDs(scope ScopeID) []ScopeID {
	var ids []ScopeID
	for id, s := range t.Descendants() {
		if id != 0 && s.Parent == scope {
			ids = append(ids, id)
		}
	}
	return ids
}

// NearestVarScope returns the closest scope, starting at scope, that
// receives var declarations.
func (t *ScopeTree) NearestVarScope(scope ScopeID) ScopeID {
	for id := range t.Ancestors(scope) {
		if t.scopes[id].Flags.IsVar() {
			return id
		}
	}
	invariantf("var scope", "scope %d has no var scope ancestor", scope)
	return NoScope
}

// RootUnresolvedReferences returns the references that resolved to no
// binding, keyed by name. The map must not be modified.
func (t *ScopeTree) RootUnresolvedReferences() map[string][]ReferenceID {
	return t.unresolved
}

// UnresolvedNames returns the unresolved names in first-use order.
func (t *ScopeTree) UnresolvedNames() []string {
	return t.unresolvedNames
}

// AddUnresolved appends refs to the root bucket for name.
func (t *ScopeTree) AddUnresolved(name string, refs ...ReferenceID) {
	if _, ok := t.unresolved[name]; !ok {
		t.unresolvedNames = append(t.unresolvedNames, name)
	}
	t.unresolved[name] = append(t.unresolved[name], refs...)
}

// DeleteUnresolved removes ref from the root bucket for name.
func (t *ScopeTree) DeleteUnresolved(name string, ref ReferenceID) {
	refs := t.unresolved[name]
	for i, r := range refs {
		if r == ref {
			refs = append(refs[:i], refs[i+1:]...)
			break
		}
	}
	if len(refs) > 0 {
		t.unresolved[name] = refs
		return
	}
	delete(t.unresolved, name)
	for i, n := range t.unresolvedNames {
		if n == name {
			t.unresolvedNames = append(t.unresolvedNames[:i], t.unresolvedNames[i+1:]...)
			break
		}
	}
}
