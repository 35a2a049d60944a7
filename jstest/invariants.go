// Copyright © 2024 The ELPS authors

package jstest

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luthersystems/jsscope/semantic"
)

// AssertInvariants checks the structural properties every freshly built
// semantic model must satisfy:
//
//	Scope 0 is the root, has no parent and carries the top flag.
//
//	Every other scope's parent was created before it, and its ancestor
//	chain ends at the root.
//
//	A scope whose parent is strict is strict.
//
//	Every reference is either resolved to a symbol whose scope is an
//	ancestor of (or equal to) the reference's scope, or listed in the root
//	unresolved bucket under its name. The one exception is a default value
//	in a catch parameter pattern: it resolves in the catch clause scope,
//	after which the parameters move down into the catch body.
//
//	The per-symbol reference index agrees with the reference table.
//
// AssertInvariants must not be used after mutating the tables with
// ChangeParentID.
func AssertInvariants(t *testing.T, sem *semantic.Semantic) bool {
	t.Helper()
	ok := true
	scopes := sem.Scopes

	root := sem.Scope(0)
	ok = assert.Equal(t, semantic.NoScope, root.Parent, "root has a parent") && ok
	ok = assert.True(t, root.Flags.Has(semantic.ScopeTop), "root is not a top scope") && ok

	for id, s := range scopes.Descendants() {
		if id == 0 {
			continue
		}
		ok = assert.Less(t, s.Parent, id, "scope %d parent %d created later", id, s.Parent) && ok
		chain := scopes.AncestorIDs(id)
		ok = assert.Equal(t, semantic.ScopeID(0), chain[len(chain)-1], "scope %d ancestors do not end at root", id) && ok
		if sem.Scope(s.Parent).Flags.IsStrict() {
			ok = assert.True(t, s.Flags.IsStrict(), "scope %d under a strict scope is not strict", id) && ok
		}
	}

	unresolved := scopes.RootUnresolvedReferences()
	for id, ref := range sem.References.All() {
		if ref.Resolved() {
			sym := sem.Symbol(ref.Symbol)
			ok = assert.True(t, scopes.IsAncestor(sym.Scope, ref.Scope) || movedCatchParameter(sem, ref, sym),
				"reference %d (%s) resolved to symbol %d outside its scope chain", id, ref.Name, ref.Symbol) && ok
			ok = assert.Contains(t, sem.SymbolReferences(ref.Symbol), id,
				"symbol %d does not index reference %d", ref.Symbol, id) && ok
			continue
		}
		ok = assert.True(t, slices.Contains(unresolved[ref.Name], id),
			"unresolved reference %d (%s) missing from the root bucket", id, ref.Name) && ok
	}
	return ok
}

func movedCatchParameter(sem *semantic.Semantic, ref *semantic.Reference, sym *semantic.Symbol) bool {
	return sym.Flags.Has(semantic.SymbolCatchVariable) &&
		sem.Scope(ref.Scope).Flags.Has(semantic.ScopeCatchClause) &&
		sem.Scope(sym.Scope).Parent == ref.Scope
}
