// Copyright © 2024 The ELPS authors

package semantic

import (
	"strings"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/astutil"
)

func (b *Builder) visit(id ast.NodeID) {
	if id == ast.NoNode {
		return
	}
	n := b.a.Node(id)
	switch n.Kind {
	case ast.Identifier:
		b.reference(id, ReferenceRead)
	case ast.BlockStatement:
		b.pushScope(0, id)
		b.visitStatements(n.List)
		b.popScope()
	case ast.VariableDeclaration:
		b.visitVariableDeclaration(id)
	case ast.FunctionDeclaration, ast.FunctionExpression, ast.ArrowFunctionExpression:
		b.visitFunction(id, 0)
	case ast.ClassDeclaration, ast.ClassExpression:
		b.visitClass(id)
	case ast.ForStatement, ast.ForInStatement, ast.ForOfStatement:
		b.visitFor(id)
	case ast.SwitchStatement:
		b.visit(n.A)
		b.pushScope(0, id)
		b.visitStatements(n.List)
		b.popScope()
	case ast.CatchClause:
		b.visitCatch(id)
	case ast.WithStatement:
		b.visit(n.A)
		b.pushScope(ScopeWith, id)
		b.visit(n.D)
		b.popScope()
	case ast.LabeledStatement:
		b.visitLabeled(id)
	case ast.BreakStatement, ast.ContinueStatement:
		if n.A != ast.NoNode {
			b.useLabel(b.a.Node(n.A).Name)
		}
	case ast.ImportDeclaration:
		b.visitImport(id)
	case ast.ExportNamedDeclaration:
		b.visitExportNamed(id)
	case ast.ExportDefaultDeclaration:
		b.visitExportDefault(id)
	case ast.ExportAllDeclaration:
		// re-exports bind nothing locally
	case ast.AssignmentExpression:
		if n.Op == "=" {
			b.visitTarget(n.A, ReferenceWrite)
		} else {
			b.visitTarget(n.A, ReferenceReadWrite)
		}
		b.visit(n.B)
	case ast.UpdateExpression:
		b.visitTarget(n.A, ReferenceReadWrite)
	case ast.MemberExpression:
		b.visit(n.A)
		switch {
		case n.Flags.Has(ast.FlagComputed):
			b.visit(n.B)
		case b.a.Kind(n.B) == ast.PrivateIdentifier:
			b.privateReference(n.B)
		}
	case ast.PrivateInExpression:
		b.privateReference(n.A)
		b.visit(n.B)
	case ast.Property:
		b.visitProperty(id)
	case ast.YieldExpression:
		if len(b.functions) > 0 {
			b.sem.hasYield[b.functions[len(b.functions)-1]] = true
		}
		b.visit(n.A)
	case ast.JSXElement:
		b.visitJSXName(n.A)
		for _, attr := range n.List {
			b.visit(attr)
		}
		b.visit(n.B)
	case ast.JSXAttribute:
		b.visit(n.B)
	case ast.BindingIdentifier, ast.IdentifierName, ast.LabelIdentifier, ast.PrivateIdentifier,
		ast.JSXIdentifier, ast.JSXMemberExpression, ast.JSXText,
		ast.ThisExpression, ast.Super, ast.MetaProperty,
		ast.StringLiteral, ast.NumericLiteral, ast.BigIntLiteral, ast.BooleanLiteral,
		ast.NullLiteral, ast.RegExpLiteral, ast.EmptyStatement, ast.DebuggerStatement:
	default:
		astutil.EachChild(b.a, id, b.visit)
	}
}

func (b *Builder) visitVariableDeclaration(id ast.NodeID) {
	n := b.a.Node(id)
	scope := b.current
	var flags SymbolFlags
	switch n.Op {
	case "var":
		flags = SymbolFunctionScopedVariable
		scope = b.sem.Scopes.NearestVarScope(b.current)
	case "const":
		flags = SymbolBlockScopedVariable | SymbolConstVariable
	default:
		flags = SymbolBlockScopedVariable
	}
	for _, d := range n.List {
		dn := b.a.Node(d)
		b.declarePattern(dn.A, flags, scope, id)
		b.visit(dn.B)
	}
}

// visitFunction handles all three function forms. modifiers carries the
// constructor and accessor bits of a method.
func (b *Builder) visitFunction(id ast.NodeID, modifiers ScopeFlags) {
	n := b.a.Node(id)
	if n.Kind == ast.FunctionDeclaration && n.A != ast.NoNode {
		b.declareFunction(n.A, id)
	}

	flags := ScopeFunction | modifiers
	if n.Kind == ast.ArrowFunctionExpression {
		flags |= ScopeArrow
	}
	if n.Flags.Has(ast.FlagUseStrict) {
		flags |= ScopeStrictMode
	}
	b.pushScope(flags, id)
	if n.Kind == ast.FunctionExpression && n.A != ast.NoNode {
		b.declare(n.A, SymbolFunctionExpressionName, b.current, id)
	}

	labels := b.labels
	b.labels = nil
	if n.Kind != ast.ArrowFunctionExpression {
		b.functions = append(b.functions, id)
	}

	for _, param := range n.List {
		b.declarePattern(param, SymbolParameter, b.current, id)
	}
	b.resolveEarly()

	if n.Flags.Has(ast.FlagExpressionBody) {
		b.visit(n.B)
	} else if n.B != ast.NoNode {
		b.visitStatements(b.a.Node(n.B).List)
	}

	if n.Kind != ast.ArrowFunctionExpression {
		b.functions = b.functions[:len(b.functions)-1]
	}
	b.labels = labels
	b.popScope()
}

func (b *Builder) visitClass(id ast.NodeID) {
	n := b.a.Node(id)
	if n.Kind == ast.ClassDeclaration && n.A != ast.NoNode {
		b.declare(n.A, SymbolClass, b.current, id)
	}
	b.pushScope(ScopeStrictMode|ScopeClassBody, id)
	if n.Kind == ast.ClassExpression && n.A != ast.NoNode {
		b.declare(n.A, SymbolClassExpressionName, b.current, id)
	}

	// The heritage clause belongs to the enclosing class for private names.
	b.visit(n.B)

	cls := b.sem.Classes.DeclareClass(b.class, id, b.current)
	b.sem.nodeClass[id] = cls
	outer := b.class
	b.class = cls
	for _, member := range n.List {
		b.declareElement(cls, member)
	}
	for _, member := range n.List {
		b.visitClassMember(member)
	}
	b.class = outer
	b.popScope()
}

// declareElement adds a named class member to the class table. Elements are
// declared before any member body is walked so that a private name can be
// used above its definition.
func (b *Builder) declareElement(cls ClassID, member ast.NodeID) {
	mn := b.a.Node(member)
	var kind ElementKind
	switch mn.Kind {
	case ast.MethodDefinition:
		switch mn.Op {
		case "get":
			kind = ElementGetter
		case "set":
			kind = ElementSetter
		default:
			kind = ElementMethod
		}
	case ast.PropertyDefinition:
		kind = ElementProperty
	default:
		return
	}
	if mn.Flags.Has(ast.FlagComputed) {
		return
	}
	key := b.a.Node(mn.A)
	name, private := key.Name, false
	switch key.Kind {
	case ast.PrivateIdentifier:
		name, private = "#"+key.Name, true
	case ast.IdentifierName, ast.StringLiteral, ast.NumericLiteral, ast.BigIntLiteral:
	default:
		return
	}
	b.sem.Classes.AddElement(cls, Element{
		Name:      name,
		Span:      key.Span,
		Node:      member,
		IsPrivate: private,
		Static:    mn.Flags.Has(ast.FlagStatic),
		Kind:      kind,
	})
}

func (b *Builder) visitClassMember(member ast.NodeID) {
	mn := b.a.Node(member)
	switch mn.Kind {
	case ast.MethodDefinition:
		if mn.Flags.Has(ast.FlagComputed) {
			b.visit(mn.A)
		}
		var modifiers ScopeFlags
		switch mn.Op {
		case "constructor":
			modifiers = ScopeConstructor
		case "get":
			modifiers = ScopeGetAccessor
		case "set":
			modifiers = ScopeSetAccessor
		}
		b.visitFunction(mn.B, modifiers)
	case ast.PropertyDefinition:
		if mn.Flags.Has(ast.FlagComputed) {
			b.visit(mn.A)
		}
		b.visit(mn.B)
	case ast.StaticBlock:
		b.pushScope(ScopeClassStaticBlock, member)
		labels := b.labels
		b.labels = nil
		b.visitStatements(mn.List)
		b.labels = labels
		b.popScope()
	}
}

// privateReference routes a #name use to the class table.
func (b *Builder) privateReference(id ast.NodeID) {
	n := b.a.Node(id)
	if b.class == NoClass {
		b.sem.strayPrivate = append(b.sem.strayPrivate, id)
		return
	}
	name := "#" + n.Name
	cls, elems := b.sem.Classes.ResolvePrivate(b.class, name)
	b.sem.Classes.AddPrivateReference(b.class, PrivateReference{
		Node:     id,
		Name:     name,
		Span:     n.Span,
		Class:    cls,
		Elements: elems,
	})
}

// visitFor opens a scope for the loop header only when it declares let or
// const bindings.
func (b *Builder) visitFor(id ast.NodeID) {
	n := b.a.Node(id)
	lexical := false
	if init := n.A; init != ast.NoNode {
		in := b.a.Node(init)
		lexical = in.Kind == ast.VariableDeclaration && in.Op != "var"
	}
	if lexical {
		b.pushScope(0, id)
	}
	if n.Kind == ast.ForStatement {
		b.visit(n.A)
		b.visit(n.B)
		b.visit(n.C)
	} else {
		if b.a.Kind(n.A) == ast.VariableDeclaration {
			b.visit(n.A)
		} else {
			b.visitTarget(n.A, ReferenceWrite)
		}
		b.visit(n.B)
	}
	b.visit(n.D)
	if lexical {
		b.popScope()
	}
}

// visitCatch binds the catch parameter in its own scope, resolves the
// parameter's default values there, and then moves the bindings into the
// body block so that body declarations and parameter share a scope.
func (b *Builder) visitCatch(id ast.NodeID) {
	n := b.a.Node(id)
	catch := b.pushScope(ScopeCatchClause, id)
	b.declarePattern(n.A, SymbolCatchVariable, catch, id)
	b.resolveEarly()

	body := b.a.Node(n.B)
	block := b.pushScope(0, n.B)
	var names []string
	for name := range b.sem.Scope(catch).Bindings() {
		names = append(names, name)
	}
	for _, name := range names {
		b.sem.MoveBinding(catch, block, name)
	}
	b.visitStatements(body.List)
	b.popScope()
	b.popScope()
}

// declareFunction binds the name of a function declaration. Block level
// functions are lexical in strict code. In sloppy code they are bound in
// their block and also in the enclosing var scope, provided no scope from
// the block up to the var scope binds the name yet.
func (b *Builder) declareFunction(node, decl ast.NodeID) {
	block := b.current
	varScope := b.sem.Scopes.NearestVarScope(block)
	if block == varScope || b.sem.Scope(block).Flags.IsStrict() || !b.hoistable(b.a.Node(node).Name, block, varScope) {
		b.declare(node, SymbolFunction, block, decl)
		return
	}
	sym := b.declare(node, SymbolFunction, varScope, decl)
	b.sem.Scopes.AddBinding(block, b.a.Node(node).Name, sym)
	b.hoisted[sym] = block
}

func (b *Builder) hoistable(name string, block, varScope ScopeID) bool {
	for id := range b.sem.Scopes.Ancestors(block) {
		if _, ok := b.sem.Scopes.GetBinding(id, name); ok {
			return false
		}
		if id == varScope {
			break
		}
	}
	return true
}

func (b *Builder) visitLabeled(id ast.NodeID) {
	n := b.a.Node(id)
	l := &label{name: b.a.Node(n.A).Name, node: n.A}
	b.labels = append(b.labels, l)
	b.visit(n.D)
	b.labels = b.labels[:len(b.labels)-1]
	if !l.used {
		b.sem.unusedLabels = append(b.sem.unusedLabels, l.node)
	}
}

func (b *Builder) useLabel(name string) {
	for i := len(b.labels) - 1; i >= 0; i-- {
		if b.labels[i].name == name {
			b.labels[i].used = true
			return
		}
	}
}

func (b *Builder) visitImport(id ast.NodeID) {
	n := b.a.Node(id)
	typeOnly := n.Flags.Has(ast.FlagTypeOnly)
	for _, spec := range n.List {
		sn := b.a.Node(spec)
		flags := SymbolImport
		if typeOnly || sn.Flags.Has(ast.FlagTypeOnly) {
			flags = SymbolTypeImport
		}
		b.declare(sn.B, flags, b.current, id)
	}
}

func (b *Builder) visitExportNamed(id ast.NodeID) {
	n := b.a.Node(id)
	if n.A != ast.NoNode {
		b.visit(n.A)
		b.exportDeclaration(n.A)
		return
	}
	if n.B != ast.NoNode {
		return
	}
	for _, spec := range n.List {
		sn := b.a.Node(spec)
		flags := ReferenceRead
		if n.Flags.Has(ast.FlagTypeOnly) || sn.Flags.Has(ast.FlagTypeOnly) {
			flags = ReferenceType
		}
		b.exports = append(b.exports, b.reference(sn.A, flags))
	}
}

func (b *Builder) visitExportDefault(id ast.NodeID) {
	decl := b.a.Node(id).A
	b.visit(decl)
	switch b.a.Kind(decl) {
	case ast.FunctionDeclaration, ast.ClassDeclaration:
		b.exportDeclaration(decl)
	case ast.Identifier:
		if ref, ok := b.sem.nodeReference[decl]; ok {
			b.exports = append(b.exports, ref)
		}
	}
}

// exportDeclaration flags the symbols declared by an exported declaration.
func (b *Builder) exportDeclaration(decl ast.NodeID) {
	dn := b.a.Node(decl)
	var names []ast.NodeID
	switch dn.Kind {
	case ast.VariableDeclaration:
		for _, d := range dn.List {
			names = append(names, astutil.BindingIdentifiers(b.a, b.a.Node(d).A)...)
		}
	case ast.FunctionDeclaration, ast.ClassDeclaration:
		if dn.A != ast.NoNode {
			names = append(names, dn.A)
		}
	}
	for _, name := range names {
		if sym, ok := b.sem.nodeSymbol[name]; ok {
			b.sem.Symbols.AddFlags(sym, SymbolExport)
		}
	}
}

func (b *Builder) visitProperty(id ast.NodeID) {
	n := b.a.Node(id)
	if n.Flags.Has(ast.FlagComputed) {
		b.visit(n.A)
	}
	if b.a.Kind(n.B) != ast.FunctionExpression || !(n.Flags.Has(ast.FlagMethod) || n.Op == "get" || n.Op == "set") {
		b.visit(n.B)
		return
	}
	var modifiers ScopeFlags
	switch n.Op {
	case "get":
		modifiers = ScopeGetAccessor
	case "set":
		modifiers = ScopeSetAccessor
	}
	b.visitFunction(n.B, modifiers)
}

// visitJSXName records a reference for component element names. Lowercase
// tags are intrinsic elements and namespaced names are never bindings.
func (b *Builder) visitJSXName(id ast.NodeID) {
	if id == ast.NoNode {
		return
	}
	n := b.a.Node(id)
	switch n.Kind {
	case ast.JSXIdentifier:
		if isComponentName(n.Name) {
			b.reference(id, ReferenceRead)
		}
	case ast.JSXMemberExpression:
		root := id
		for b.a.Kind(root) == ast.JSXMemberExpression {
			root = b.a.Node(root).A
		}
		if rn := b.a.Node(root); rn.Kind == ast.JSXIdentifier && rn.Name != "this" {
			b.reference(root, ReferenceRead)
		}
	}
}

func isComponentName(name string) bool {
	if name == "" || name == "this" || strings.ContainsAny(name, ":-") {
		return false
	}
	return !(name[0] >= 'a' && name[0] <= 'z')
}
