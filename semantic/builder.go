// Copyright © 2024 The ELPS authors

package semantic

import (
	"github.com/luthersystems/jsscope/ast"
)

// Builder walks one program and fills its semantic tables. A Builder is
// used for a single Build call and must not be shared between goroutines.
type Builder struct {
	prog *ast.Program
	a    *ast.Arena
	sem  *Semantic

	current ScopeID
	stack   []ScopeID
	pending []*pendingRefs

	class     ClassID
	functions []ast.NodeID // enclosing non-arrow functions
	labels    []*label
	exports   []ReferenceID
	built     bool

	// hoisted maps sloppy block functions bound in their var scope to the
	// block that declares them.
	hoisted map[SymbolID]ScopeID
}

// pendingRefs holds the references recorded in one scope that no binding
// has claimed yet, keyed by name in first-use order.
type pendingRefs struct {
	names []string
	refs  map[string][]ReferenceID
}

func newPendingRefs() *pendingRefs {
	return &pendingRefs{refs: make(map[string][]ReferenceID)}
}

func (p *pendingRefs) add(name string, refs ...ReferenceID) {
	if _, ok := p.refs[name]; !ok {
		p.names = append(p.names, name)
	}
	p.refs[name] = append(p.refs[name], refs...)
}

type label struct {
	name string
	node ast.NodeID
	used bool
}

// NewBuilder returns a builder for prog.
func NewBuilder(prog *ast.Program) *Builder {
	return &Builder{
		prog:    prog,
		a:       prog.Arena,
		sem:     newSemantic(prog),
		class:   NoClass,
		hoisted: make(map[SymbolID]ScopeID),
	}
}

// Build walks the program and returns the resolved tables. It panics with
// an *InvariantError if the builder breaks one of its own invariants; use
// Analyze to get that as an error.
func (b *Builder) Build() *Semantic {
	if b.built {
		invariantf("build", "builder reused")
	}
	b.built = true

	root := b.prog.Root
	flags := ScopeTop
	if b.prog.SourceType.Strict() || b.prog.HasUseStrict(root) {
		flags |= ScopeStrictMode
	}
	id := b.sem.Scopes.NewScope(NoScope, flags, root)
	b.sem.nodeScope[root] = id
	b.current = id
	b.stack = []ScopeID{id}
	b.pending = []*pendingRefs{newPendingRefs()}

	b.visitStatements(b.a.Node(root).List)

	if len(b.stack) != 1 {
		invariantf("build", "%d scopes still open after the walk", len(b.stack)-1)
	}
	globals := newPendingRefs()
	b.resolvePending(id, b.pending[0], globals)
	for _, name := range globals.names {
		b.sem.Scopes.AddUnresolved(name, globals.refs[name]...)
	}
	for _, ref := range b.exports {
		if r := b.sem.Reference(ref); r.Resolved() {
			b.sem.Symbols.AddFlags(r.Symbol, SymbolExport)
		}
	}
	return b.sem
}

// pushScope opens a scope as a child of the current one. Strict mode is
// inherited from the parent and non-function scopes inherit the parent's
// modifiers.
func (b *Builder) pushScope(flags ScopeFlags, node ast.NodeID) ScopeID {
	parent := b.sem.Scopes.Scope(b.current).Flags
	if parent.IsStrict() {
		flags |= ScopeStrictMode
	}
	if flags&ScopeFunction == 0 {
		flags |= parent & ScopeModifiers
	}
	id := b.sem.Scopes.NewScope(b.current, flags, node)
	b.sem.nodeScope[node] = id
	b.current = id
	b.stack = append(b.stack, id)
	b.pending = append(b.pending, newPendingRefs())
	return id
}

// popScope closes the current scope, binding its pending references and
// handing the rest to the parent.
func (b *Builder) popScope() {
	top := len(b.stack) - 1
	if top < 1 {
		invariantf("pop scope", "scope stack underflow")
	}
	b.resolvePending(b.stack[top], b.pending[top], b.pending[top-1])
	b.stack = b.stack[:top]
	b.pending = b.pending[:top]
	b.current = b.stack[top-1]
}

// resolveEarly binds the current scope's pending references now and moves
// the rest to the parent, leaving an empty frame. Function parameters use
// it so that default values never see declarations in the body.
func (b *Builder) resolveEarly() {
	top := len(b.pending) - 1
	if top < 1 {
		invariantf("resolve early", "no enclosing scope")
	}
	b.resolvePending(b.current, b.pending[top], b.pending[top-1])
	b.pending[top] = newPendingRefs()
}

func (b *Builder) resolvePending(scope ScopeID, from, into *pendingRefs) {
	for _, name := range from.names {
		refs := from.refs[name]
		sym, ok := b.sem.Scopes.GetBinding(scope, name)
		if !ok {
			into.add(name, refs...)
			continue
		}
		for _, ref := range refs {
			b.sem.References.Resolve(ref, sym)
			b.sem.Symbols.addResolvedReference(sym, ref)
		}
	}
}

// reference records a use of name at node in the current scope.
func (b *Builder) reference(node ast.NodeID, flags ReferenceFlags) ReferenceID {
	n := b.a.Node(node)
	ref := b.sem.References.AddReference(n.Name, node, n.Span, b.current, flags)
	b.sem.nodeReference[node] = ref
	b.pending[len(b.pending)-1].add(n.Name, ref)
	return ref
}

// declare binds the BindingIdentifier node in scope. A var-like
// declaration of a name that already has a var-like binding in the same
// scope merges into the existing symbol; any other collision creates a new
// symbol that takes over the name. A hoisted block function that loses the
// name to a lexical declaration falls back to its block.
func (b *Builder) declare(node ast.NodeID, flags SymbolFlags, scope ScopeID, decl ast.NodeID) SymbolID {
	n := b.a.Node(node)
	if existing, ok := b.sem.Scopes.GetBinding(scope, n.Name); ok {
		if b.sem.Symbol(existing).Flags&symbolVarLike != 0 && flags&symbolVarLike != 0 {
			b.sem.Symbols.AddFlags(existing, flags)
			b.sem.Symbols.AddRedeclaration(existing, node, n.Span)
			b.sem.nodeSymbol[node] = existing
			return existing
		}
		if block, ok := b.hoisted[existing]; ok && b.sem.Symbol(existing).Scope == scope {
			b.sem.Symbol(existing).Scope = block
			delete(b.hoisted, existing)
		}
	}
	id := b.sem.Symbols.DeclareSymbol(n.Name, node, n.Span, flags, scope)
	b.sem.Symbol(id).Decl = decl
	b.sem.Scopes.AddBinding(scope, n.Name, id)
	b.sem.nodeSymbol[node] = id
	return id
}

// declarePattern declares every name bound by a binding pattern. Default
// values and computed keys are visited as expressions in source order.
func (b *Builder) declarePattern(id ast.NodeID, flags SymbolFlags, scope ScopeID, decl ast.NodeID) {
	if id == ast.NoNode {
		return
	}
	n := b.a.Node(id)
	switch n.Kind {
	case ast.BindingIdentifier:
		b.declare(id, flags, scope, decl)
	case ast.ArrayPattern:
		for _, elem := range n.List {
			b.declarePattern(elem, flags, scope, decl)
		}
	case ast.ObjectPattern:
		for _, prop := range n.List {
			pn := b.a.Node(prop)
			if pn.Kind != ast.Property {
				b.declarePattern(prop, flags, scope, decl)
				continue
			}
			if pn.Flags.Has(ast.FlagComputed) {
				b.visit(pn.A)
			}
			b.declarePattern(pn.B, flags, scope, decl)
		}
	case ast.AssignmentPattern:
		b.declarePattern(n.A, flags, scope, decl)
		b.visit(n.B)
	case ast.RestElement:
		b.declarePattern(n.A, flags, scope, decl)
	default:
		invariantf("declare pattern", "unexpected %s in binding pattern", n.Kind)
	}
}

// visitTarget records the names assigned by an assignment target. Plain
// identifiers get flags; the leaves of a destructuring target are writes.
// Member expressions only read their object.
func (b *Builder) visitTarget(id ast.NodeID, flags ReferenceFlags) {
	if id == ast.NoNode {
		return
	}
	n := b.a.Node(id)
	switch n.Kind {
	case ast.Identifier:
		b.reference(id, flags)
	case ast.ArrayPattern:
		for _, elem := range n.List {
			b.visitTarget(elem, ReferenceWrite)
		}
	case ast.ObjectPattern:
		for _, prop := range n.List {
			pn := b.a.Node(prop)
			if pn.Kind != ast.Property {
				b.visitTarget(prop, ReferenceWrite)
				continue
			}
			if pn.Flags.Has(ast.FlagComputed) {
				b.visit(pn.A)
			}
			b.visitTarget(pn.B, ReferenceWrite)
		}
	case ast.AssignmentPattern:
		b.visitTarget(n.A, ReferenceWrite)
		b.visit(n.B)
	case ast.RestElement:
		b.visitTarget(n.A, ReferenceWrite)
	default:
		b.visit(id)
	}
}

func (b *Builder) visitStatements(list []ast.NodeID) {
	for _, stmt := range list {
		b.visit(stmt)
	}
}
