// Copyright © 2024 The ELPS authors

package semantic

import "strings"

// ScopeFlags describe the kind of a scope and the context it inherits.
type ScopeFlags uint16

const (
	ScopeStrictMode ScopeFlags = 1 << iota
	ScopeTop
	ScopeFunction
	ScopeArrow
	ScopeClassStaticBlock
	ScopeConstructor
	ScopeGetAccessor
	ScopeSetAccessor
	ScopeCatchClause
	ScopeWith
	ScopeClassBody

	// ScopeModifiers are inherited by every non-function scope so that a
	// block nested in a constructor still knows it is in a constructor.
	ScopeModifiers = ScopeConstructor | ScopeGetAccessor | ScopeSetAccessor
	// ScopeVar marks the scopes that receive var declarations.
	ScopeVar = ScopeTop | ScopeFunction | ScopeClassStaticBlock
)

var scopeFlagNames = []string{
	"strict", "top", "function", "arrow", "static-block", "constructor",
	"get", "set", "catch", "with", "class",
}

// Has reports whether all bits of mask are set.
func (f ScopeFlags) Has(mask ScopeFlags) bool {
	return f&mask == mask
}

// IsStrict reports whether code in the scope runs in strict mode.
func (f ScopeFlags) IsStrict() bool {
	return f&ScopeStrictMode != 0
}

// IsVar reports whether var declarations hoist to this scope.
func (f ScopeFlags) IsVar() bool {
	return f&ScopeVar != 0
}

// IsFunction reports whether the scope is a function or arrow scope.
func (f ScopeFlags) IsFunction() bool {
	return f&ScopeFunction != 0
}

func (f ScopeFlags) String() string {
	return flagString(uint32(f), scopeFlagNames)
}

// SymbolFlags classify a declared binding.
type SymbolFlags uint32

const (
	SymbolFunctionScopedVariable SymbolFlags = 1 << iota // var, sloppy parameters
	SymbolBlockScopedVariable                            // let, const
	SymbolConstVariable
	SymbolFunction
	SymbolClass
	SymbolCatchVariable
	SymbolImport
	SymbolTypeImport
	SymbolExport
	SymbolFunctionExpressionName
	SymbolClassExpressionName
	SymbolParameter

	SymbolVariable = SymbolFunctionScopedVariable | SymbolBlockScopedVariable
	// symbolVarLike declarations may be repeated in one scope and denote
	// the same binding.
	symbolVarLike = SymbolFunctionScopedVariable | SymbolFunction | SymbolParameter
)

var symbolFlagNames = []string{
	"var", "let", "const", "function", "class", "catch", "import",
	"type-import", "export", "function-name", "class-name", "param",
}

// Has reports whether all bits of mask are set.
func (f SymbolFlags) Has(mask SymbolFlags) bool {
	return f&mask == mask
}

// IsConst reports whether the binding may not be reassigned.
func (f SymbolFlags) IsConst() bool {
	return f&(SymbolConstVariable|SymbolImport|SymbolTypeImport) != 0
}

func (f SymbolFlags) String() string {
	return flagString(uint32(f), symbolFlagNames)
}

// ReferenceFlags record how a name is used.
type ReferenceFlags uint8

const (
	ReferenceRead ReferenceFlags = 1 << iota
	ReferenceWrite
	// ReferenceType marks a name used only in a type position, such as
	// the specifiers of `export type { T }`.
	ReferenceType

	ReferenceReadWrite = ReferenceRead | ReferenceWrite
)

var referenceFlagNames = []string{"read", "write", "type"}

// IsRead reports whether the reference reads the binding.
func (f ReferenceFlags) IsRead() bool {
	return f&ReferenceRead != 0
}

// IsWrite reports whether the reference assigns the binding.
func (f ReferenceFlags) IsWrite() bool {
	return f&ReferenceWrite != 0
}

func (f ReferenceFlags) String() string {
	return flagString(uint32(f), referenceFlagNames)
}

func flagString(bits uint32, names []string) string {
	if bits == 0 {
		return "none"
	}
	var parts []string
	for i, name := range names {
		if bits&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}
