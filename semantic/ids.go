// Copyright © 2024 The ELPS authors

package semantic

import (
	"fmt"

	"fortio.org/safecast"
)

// ScopeID identifies a scope in a ScopeTree. IDs are dense and assigned in
// creation order; the root scope is always 0.
type ScopeID uint32

// SymbolID identifies a symbol in a SymbolTable.
type SymbolID uint32

// ReferenceID identifies a reference in a ReferenceTable.
type ReferenceID uint32

// ClassID identifies a class in a ClassTable.
type ClassID uint32

// ElementID indexes the element list of a single class.
type ElementID uint32

const (
	// NoScope is the parent of the root scope.
	NoScope = ^ScopeID(0)
	// NoSymbol marks an unresolved reference.
	NoSymbol = ^SymbolID(0)
	// NoClass is the parent of a top level class.
	NoClass = ^ClassID(0)
)

// nextID converts a table length into the id of the next entry. A table
// that outgrows the id space is a bug in the caller, not a property of the
// input program.
func nextID[T ~uint32](table string, n int) T {
	id, err := safecast.Conv[uint32](n)
	if err != nil || id == ^uint32(0) {
		panic(&InvariantError{Op: "alloc", Msg: fmt.Sprintf("%s table overflow at %d entries", table, n)})
	}
	return T(id)
}
