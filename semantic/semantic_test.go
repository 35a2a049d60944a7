// Copyright © 2024 The ELPS authors

package semantic_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/jstest"
	"github.com/luthersystems/jsscope/semantic"
)

// symbolsNamed returns the ids of every symbol called name, in
// declaration order.
func symbolsNamed(sem *semantic.Semantic, name string) []semantic.SymbolID {
	var ids []semantic.SymbolID
	for id, sym := range sem.Symbols.All() {
		if sym.Name == name {
			ids = append(ids, id)
		}
	}
	return ids
}

func symbolNamed(t *testing.T, sem *semantic.Semantic, name string) semantic.SymbolID {
	t.Helper()
	ids := symbolsNamed(sem, name)
	require.Len(t, ids, 1, "symbols named %q", name)
	return ids[0]
}

// refsNamed returns the references to name in encounter order.
func refsNamed(sem *semantic.Semantic, name string) []*semantic.Reference {
	var refs []*semantic.Reference
	for _, ref := range sem.References.All() {
		if ref.Name == name {
			refs = append(refs, ref)
		}
	}
	return refs
}

func TestVarHoisting(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `function f() { { var x = 1; } return x; }`)
	jstest.AssertInvariants(t, sem)

	x := symbolNamed(t, sem, "x")
	fn := sem.Symbol(x).Scope
	assert.True(t, sem.Scope(fn).Flags.Has(semantic.ScopeFunction))
	refs := refsNamed(sem, "x")
	require.Len(t, refs, 1)
	assert.Equal(t, x, refs[0].Symbol)
	assert.Equal(t, []semantic.ReferenceID{0}, sem.SymbolReferences(x))
}

func TestBlockScoping(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `{ let x = 1; } x;`)
	jstest.AssertInvariants(t, sem)

	refs := refsNamed(sem, "x")
	require.Len(t, refs, 1)
	assert.False(t, refs[0].Resolved())
	assert.Len(t, sem.Scopes.RootUnresolvedReferences()["x"], 1)
	assert.Equal(t, []string{"x"}, sem.Scopes.UnresolvedNames())
}

func TestBlockScoping_OuterDeclaration(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `let x = 0; { let x = 1; x; } x;`)
	jstest.AssertInvariants(t, sem)

	ids := symbolsNamed(sem, "x")
	require.Len(t, ids, 2)
	refs := refsNamed(sem, "x")
	require.Len(t, refs, 2)
	assert.Equal(t, ids[1], refs[0].Symbol, "inner use binds the block declaration")
	assert.Equal(t, ids[0], refs[1].Symbol, "outer use binds the top level declaration")
}

func TestRoundTrip_NestedFunctionHoisting(t *testing.T) {
	sem := jstest.Analyze(t, "test.js",
		`function outer(){ function inner(){ return y; } var y = 1; return inner(); }`)
	jstest.AssertInvariants(t, sem)

	y := symbolNamed(t, sem, "y")
	outer := symbolNamed(t, sem, "outer")
	outerScope, ok := sem.NodeScope(sem.SymbolDeclaration(outer))
	require.True(t, ok)
	assert.Equal(t, outerScope, sem.Symbol(y).Scope)

	refs := refsNamed(sem, "y")
	require.Len(t, refs, 1)
	assert.Equal(t, y, refs[0].Symbol)
	assert.NotEqual(t, outerScope, refs[0].Scope, "the use is inside inner")

	inner := refsNamed(sem, "inner")
	require.Len(t, inner, 1)
	assert.Equal(t, symbolNamed(t, sem, "inner"), inner[0].Symbol)
	assert.Empty(t, sem.Scopes.UnresolvedNames())
}

func TestPrivateMember(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `class C { #a = 1; m() { return this.#a; } }`)
	jstest.AssertInvariants(t, sem)

	require.Equal(t, 1, sem.Classes.Len())
	cls := sem.Classes.Class(0)
	require.Len(t, cls.Elements, 2)
	assert.Equal(t, "#a", cls.Elements[0].Name)
	assert.True(t, cls.Elements[0].IsPrivate)
	assert.Equal(t, semantic.ElementProperty, cls.Elements[0].Kind)
	assert.Equal(t, semantic.ElementMethod, cls.Elements[1].Kind)

	require.Len(t, cls.PrivateRefs, 1)
	ref := cls.PrivateRefs[0]
	assert.Equal(t, semantic.ClassID(0), ref.Class)
	assert.Equal(t, []semantic.ElementID{0}, ref.Elements)
	assert.Empty(t, sem.Scopes.UnresolvedNames())
	assert.Empty(t, symbolsNamed(sem, "#a"))
	assert.Empty(t, symbolsNamed(sem, "a"))
}

func TestPrivateMember_AccessorPairAndOuterClass(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `
class Outer {
  get #v() { return 1 }
  set #v(x) {}
  m() {
    return class Inner { n(o) { return o.#v + this.#w } }
  }
}`)
	outer, ok := sem.ClassOf(sem.Program.Node(sem.Program.Root).List[0])
	require.True(t, ok)
	assert.Equal(t, []semantic.ElementID{0, 1}, sem.Classes.ElementIDs(outer, "#v"))

	inner := semantic.ClassID(1)
	assert.Equal(t, outer, sem.Classes.Class(inner).Parent)
	refs := sem.Classes.PrivateReferences(inner)
	require.Len(t, refs, 2)
	assert.Equal(t, outer, refs[0].Class, "#v resolves through the enclosing class")
	assert.Equal(t, []semantic.ElementID{0, 1}, refs[0].Elements)
	assert.False(t, refs[1].Resolved(), "#w is declared nowhere")
	assert.Empty(t, sem.Classes.PrivateReferences(outer))
}

func TestPrivateMember_UsedBeforeDefinition(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `class C { m() { return #x in this } #x }`)
	refs := sem.Classes.PrivateReferences(0)
	require.Len(t, refs, 1)
	assert.True(t, refs[0].Resolved())
}

func TestPrivateNameOutsideClass(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `this.#x`)
	assert.Len(t, sem.PrivateNamesOutsideClass(), 1)
}

func TestStrictModeInheritance(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `
function sloppy() { { } }
function strict() { "use strict"; { () => { } } }
class K { m() { { } } }`)
	jstest.AssertInvariants(t, sem)

	strictness := map[ast.Kind][]bool{}
	for _, s := range sem.Scopes.Descendants() {
		kind := sem.Program.Arena.Kind(s.Node)
		strictness[kind] = append(strictness[kind], s.Flags.IsStrict())
	}
	assert.Equal(t, []bool{false}, strictness[ast.ProgramNode])
	assert.Equal(t, []bool{false, true}, strictness[ast.FunctionDeclaration])
	assert.Equal(t, []bool{false, true, true}, strictness[ast.BlockStatement])
	assert.Equal(t, []bool{true}, strictness[ast.ArrowFunctionExpression])
	assert.Equal(t, []bool{true}, strictness[ast.ClassDeclaration])
	assert.Equal(t, []bool{true}, strictness[ast.FunctionExpression])
}

func TestStrictMode_ModuleRoot(t *testing.T) {
	sem := jstest.Analyze(t, "test.mjs", `function f() { { } }`)
	for id, s := range sem.Scopes.Descendants() {
		assert.True(t, s.Flags.IsStrict(), "scope %d", id)
	}
}

func TestScopeModifiers(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `
class A {
  constructor() { { } }
  get x() { return () => 1 }
}`)
	var flags []string
	for _, s := range sem.Scopes.Descendants() {
		flags = append(flags, s.Flags.String())
	}
	want := []string{
		"top",
		"strict|class",
		"strict|function|constructor",
		"strict|constructor",
		"strict|function|get",
		"strict|function|arrow",
	}
	if diff := cmp.Diff(want, flags); diff != "" {
		t.Errorf("scope flags mismatch (-want +got):\n%s", diff)
	}
}

func TestScopeNestingDepth(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `function f() { { if (a) { let b } } }`)
	depths := map[ast.Kind][]int{}
	for id, s := range sem.Scopes.Descendants() {
		kind := sem.Program.Arena.Kind(s.Node)
		depths[kind] = append(depths[kind], sem.Scopes.Depth(id))
		chain := sem.Scopes.AncestorIDs(id)
		assert.Equal(t, semantic.ScopeID(0), chain[len(chain)-1])
		assert.Equal(t, id, chain[0])
	}
	assert.Equal(t, []int{0}, depths[ast.ProgramNode])
	assert.Equal(t, []int{1}, depths[ast.FunctionDeclaration])
	assert.Equal(t, []int{2, 3}, depths[ast.BlockStatement])
}

func TestFindBinding_Idempotent(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `var a; function f() { let b; { a; b; } }`)
	for id := range sem.Scopes.Descendants() {
		for _, name := range []string{"a", "b", "c"} {
			s1, ok1 := sem.Scopes.FindBinding(id, name)
			s2, ok2 := sem.Scopes.FindBinding(id, name)
			assert.Equal(t, ok1, ok2)
			assert.Equal(t, s1, s2)
		}
	}
	last := semantic.ScopeID(sem.Scopes.Len() - 1)
	b, ok := sem.Scopes.FindBinding(last, "b")
	require.True(t, ok)
	assert.Equal(t, "b", sem.Symbol(b).Name)
	_, ok = sem.Scopes.GetBinding(last, "b")
	assert.False(t, ok, "GetBinding does not walk ancestors")
}

func TestParameterDefaultsResolveBeforeBody(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `
function f(a = b, c = a) { var b; return b; }`)
	jstest.AssertInvariants(t, sem)

	bs := refsNamed(sem, "b")
	require.Len(t, bs, 2)
	assert.False(t, bs[0].Resolved(), "default value does not see the body var")
	assert.True(t, bs[1].Resolved())

	as := refsNamed(sem, "a")
	require.Len(t, as, 1)
	assert.Equal(t, symbolNamed(t, sem, "a"), as[0].Symbol)
	assert.True(t, sem.Symbol(as[0].Symbol).Flags.Has(semantic.SymbolParameter))
}

func TestCatchParameterMovesIntoBody(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `try {} catch ({ a, b = a }) { a; let c; }`)
	jstest.AssertInvariants(t, sem)

	a := symbolNamed(t, sem, "a")
	c := symbolNamed(t, sem, "c")
	assert.Equal(t, sem.Symbol(c).Scope, sem.Symbol(a).Scope, "parameter shares the body scope")
	assert.True(t, sem.Symbol(a).Flags.Has(semantic.SymbolCatchVariable))

	body := sem.Scope(sem.Symbol(a).Scope)
	assert.Equal(t, ast.BlockStatement, sem.Program.Arena.Kind(body.Node))
	catch := sem.Scope(body.Parent)
	assert.True(t, catch.Flags.Has(semantic.ScopeCatchClause))
	assert.Equal(t, 0, catch.Len())

	refs := refsNamed(sem, "a")
	require.Len(t, refs, 2)
	for _, r := range refs {
		assert.Equal(t, a, r.Symbol)
	}
	assert.Equal(t, body.Parent, refs[0].Scope, "default value resolves in the catch clause")
	assert.Equal(t, sem.Symbol(a).Scope, refs[1].Scope)
}

func TestFunctionAndClassExpressionNames(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `
const f = function g() { return g; };
const K = class Inner { m() { return Inner; } };
g; Inner;`)
	jstest.AssertInvariants(t, sem)

	g := symbolNamed(t, sem, "g")
	assert.True(t, sem.Symbol(g).Flags.Has(semantic.SymbolFunctionExpressionName))
	assert.NotEqual(t, semantic.ScopeID(0), sem.Symbol(g).Scope)
	inner := symbolNamed(t, sem, "Inner")
	assert.True(t, sem.Symbol(inner).Flags.Has(semantic.SymbolClassExpressionName))

	gs := refsNamed(sem, "g")
	require.Len(t, gs, 2)
	assert.Equal(t, g, gs[0].Symbol)
	assert.False(t, gs[1].Resolved())
	is := refsNamed(sem, "Inner")
	require.Len(t, is, 2)
	assert.Equal(t, inner, is[0].Symbol)
	assert.False(t, is[1].Resolved())
}

func TestClassDeclarationBindsOutside(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `class A extends B { m() { return A } } A;`)
	a := symbolNamed(t, sem, "A")
	assert.Equal(t, semantic.ScopeID(0), sem.Symbol(a).Scope)
	assert.Len(t, sem.SymbolReferences(a), 2)
	assert.Equal(t, []string{"B"}, sem.Scopes.UnresolvedNames())
}

func TestForLetScope(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `
for (let i = 0; i < 3; i++) {}
for (var j = 0; j < 3; j++) {}
for (const k of ks) {}
i; j;`)
	jstest.AssertInvariants(t, sem)

	i := symbolNamed(t, sem, "i")
	assert.Equal(t, ast.ForStatement, sem.Program.Arena.Kind(sem.Scope(sem.Symbol(i).Scope).Node))
	j := symbolNamed(t, sem, "j")
	assert.Equal(t, semantic.ScopeID(0), sem.Symbol(j).Scope)
	k := symbolNamed(t, sem, "k")
	assert.Equal(t, ast.ForOfStatement, sem.Program.Arena.Kind(sem.Scope(sem.Symbol(k).Scope).Node))
	assert.True(t, sem.Symbol(k).Flags.IsConst())

	is := refsNamed(sem, "i")
	require.Len(t, is, 3)
	assert.Equal(t, semantic.ReferenceRead, is[0].Flags)
	assert.Equal(t, semantic.ReferenceReadWrite, is[1].Flags)
	assert.False(t, is[2].Resolved())
	assert.Len(t, sem.SymbolReferences(j), 3)
	assert.Equal(t, []string{"ks", "i"}, sem.Scopes.UnresolvedNames())
}

func TestReferenceFlags(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `
let a = 1;
a = 2;
a += 3;
a++;
b.c = a;
[a] = [1];
({ a } = {});
for (a in o) {}
typeof a;`)
	jstest.AssertInvariants(t, sem)

	var got []semantic.ReferenceFlags
	for _, r := range refsNamed(sem, "a") {
		got = append(got, r.Flags)
	}
	want := []semantic.ReferenceFlags{
		semantic.ReferenceWrite,
		semantic.ReferenceReadWrite,
		semantic.ReferenceReadWrite,
		semantic.ReferenceRead,
		semantic.ReferenceWrite,
		semantic.ReferenceWrite,
		semantic.ReferenceWrite,
		semantic.ReferenceRead,
	}
	assert.Equal(t, want, got)

	bs := refsNamed(sem, "b")
	require.Len(t, bs, 1)
	assert.Equal(t, semantic.ReferenceRead, bs[0].Flags, "member assignment only reads the object")
	assert.True(t, sem.IsWritten(symbolNamed(t, sem, "a")))
}

func TestRedeclarations(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `
var x; var x; function x() {}
function f(a) { var a; let b; { let b; } }
function g(p) { let p; }`)
	jstest.AssertInvariants(t, sem)

	x := symbolNamed(t, sem, "x")
	assert.True(t, sem.Symbol(x).Flags.Has(semantic.SymbolFunctionScopedVariable|semantic.SymbolFunction))
	assert.Len(t, sem.Symbol(x).Redeclarations, 2)

	a := symbolNamed(t, sem, "a")
	assert.True(t, sem.Symbol(a).Flags.Has(semantic.SymbolParameter|semantic.SymbolFunctionScopedVariable))
	assert.Len(t, sem.Symbol(a).Redeclarations, 1)

	assert.Len(t, symbolsNamed(sem, "b"), 2, "shadowing in a nested block is not a redeclaration")

	ps := symbolsNamed(sem, "p")
	require.Len(t, ps, 2, "a lexical redeclaration gets its own symbol")
	bound, ok := sem.Scopes.GetBinding(sem.Symbol(ps[0]).Scope, "p")
	require.True(t, ok)
	assert.Equal(t, ps[1], bound, "the last declaration wins the binding")
}

func TestBlockFunctionDeclarations(t *testing.T) {
	sloppy := jstest.Analyze(t, "test.js", `{ function f() {} } f();`)
	assert.Equal(t, semantic.ScopeID(0), sloppy.Symbol(symbolNamed(t, sloppy, "f")).Scope)
	assert.Empty(t, sloppy.Scopes.UnresolvedNames())

	strict := jstest.Analyze(t, "test.mjs", `{ function f() {} } f();`)
	assert.NotEqual(t, semantic.ScopeID(0), strict.Symbol(symbolNamed(t, strict, "f")).Scope)
	assert.Equal(t, []string{"f"}, strict.Scopes.UnresolvedNames())

	for _, tc := range []struct {
		name, src, outer string
	}{
		{"let before", `let f = 1; { function f() {} f; } f;`, "let"},
		{"let after", `{ function f() {} f; } let f = 1; f;`, "let"},
		{"class", `class f {} { function f() {} f; } f;`, "class"},
		{"enclosing block", `{ const f = 1; { function f() {} f; } f; }`, "const"},
		{"var", `var f; { function f() {} f; } f;`, "var"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sem := jstest.Analyze(t, "test.js", tc.src)
			jstest.AssertInvariants(t, sem)

			syms := symbolsNamed(sem, "f")
			require.Len(t, syms, 2)
			var fn, outer semantic.SymbolID
			for _, id := range syms {
				if sem.Symbol(id).Flags.Has(semantic.SymbolFunction) {
					fn = id
				} else {
					outer = id
				}
			}
			fnScope := sem.Scope(sem.Symbol(fn).Scope)
			assert.Equal(t, ast.BlockStatement, sem.Program.Arena.Kind(fnScope.Node), tc.outer)

			refs := refsNamed(sem, "f")
			require.Len(t, refs, 2)
			assert.Equal(t, fn, refs[0].Symbol, "use inside the block")
			assert.Equal(t, outer, refs[1].Symbol, "use after the block")
			assert.Empty(t, sem.Scopes.UnresolvedNames())
		})
	}
}

func TestLabels(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `
outer: for (;;) { inner: for (;;) { break outer; } }
a: { function f() { b: while (1) continue b; } }`)
	var names []string
	for _, id := range sem.UnusedLabels() {
		names = append(names, sem.Program.Node(id).Name)
	}
	assert.Equal(t, []string{"inner", "a"}, names)
}

func TestExports(t *testing.T) {
	sem := jstest.Analyze(t, "test.mjs", `
export const a = 1, { d } = o;
function b() {}
export { b };
export default c;
let c;
const hidden = 2;
export function e() {}
export { x as y } from "mod";`)
	jstest.AssertInvariants(t, sem)

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		assert.True(t, sem.Symbol(symbolNamed(t, sem, name)).Flags.Has(semantic.SymbolExport), name)
	}
	assert.False(t, sem.Symbol(symbolNamed(t, sem, "hidden")).Flags.Has(semantic.SymbolExport))
	assert.Equal(t, []string{"o"}, sem.Scopes.UnresolvedNames(), "re-exports are not references")
}

func TestImports(t *testing.T) {
	sem := jstest.Analyze(t, "test.ts", `
import def, { a as b, type T } from "m";
import * as ns from "n";
import type { U } from "u";
def(b, ns);`)
	assert.True(t, sem.Symbol(symbolNamed(t, sem, "def")).Flags.Has(semantic.SymbolImport))
	assert.True(t, sem.Symbol(symbolNamed(t, sem, "b")).Flags.Has(semantic.SymbolImport))
	assert.Empty(t, symbolsNamed(sem, "a"))
	assert.True(t, sem.Symbol(symbolNamed(t, sem, "T")).Flags.Has(semantic.SymbolTypeImport))
	assert.True(t, sem.Symbol(symbolNamed(t, sem, "U")).Flags.Has(semantic.SymbolTypeImport))
	assert.Empty(t, sem.Scopes.UnresolvedNames())
}

func TestJSXReferences(t *testing.T) {
	sem := jstest.Analyze(t, "test.jsx", `
import Foo from "foo";
const x = <Foo.Bar title={t}><div data-x="1" /><Baz /><my-el /></Foo.Bar>;`)
	jstest.AssertInvariants(t, sem)

	foo := refsNamed(sem, "Foo")
	require.Len(t, foo, 1)
	assert.Equal(t, symbolNamed(t, sem, "Foo"), foo[0].Symbol)
	assert.Empty(t, refsNamed(sem, "div"))
	assert.Empty(t, refsNamed(sem, "Bar"))
	assert.Empty(t, refsNamed(sem, "my-el"))
	assert.Equal(t, []string{"t", "Baz"}, sem.Scopes.UnresolvedNames())
}

func TestHasYield(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `function* g() { yield 1 } function* h() {}`)
	body := sem.Program.Node(sem.Program.Root).List
	assert.True(t, sem.HasYield(body[0]))
	assert.False(t, sem.HasYield(body[1]))
}

func TestWithAndSwitchScopes(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `
with (obj) { prop; }
switch (v) { case 1: let z = 1; break; default: z; }`)
	jstest.AssertInvariants(t, sem)

	var withScope, switchScope bool
	for _, s := range sem.Scopes.Descendants() {
		switch sem.Program.Arena.Kind(s.Node) {
		case ast.WithStatement:
			withScope = s.Flags.Has(semantic.ScopeWith)
		case ast.SwitchStatement:
			switchScope = true
		}
	}
	assert.True(t, withScope)
	assert.True(t, switchScope)
	zs := refsNamed(sem, "z")
	require.Len(t, zs, 1)
	assert.True(t, zs[0].Resolved(), "case clauses share the switch scope")
}

func TestStaticBlock(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `class C { static { var v = 1; v; } }`)
	v := symbolNamed(t, sem, "v")
	s := sem.Scope(sem.Symbol(v).Scope)
	assert.True(t, s.Flags.Has(semantic.ScopeClassStaticBlock))
	assert.True(t, s.Flags.IsVar())
	assert.Len(t, sem.SymbolReferences(v), 1)
}

func TestScopeAtAndSymbolAt(t *testing.T) {
	src := "let total = 1;\nfunction f(n) { return n + total }"
	sem := jstest.Analyze(t, "test.js", src)

	off := len("let total = 1;\nfunction f(n) { return ")
	scope := sem.ScopeAt(off)
	assert.True(t, sem.Scope(scope).Flags.Has(semantic.ScopeFunction))

	sym, ok := sem.SymbolAt(off)
	require.True(t, ok)
	assert.Equal(t, "n", sem.Symbol(sym).Name)

	sym, ok = sem.SymbolAt(len("let to"))
	require.True(t, ok)
	assert.Equal(t, "total", sem.Symbol(sym).Name)
	assert.Len(t, sem.SymbolReferences(sym), 1)
}

func TestDump(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `function f() { { var x = 1; } return x + y; }`)
	want := `scope 0 top (Program)
  f #0 function refs=0
  scope 1 function (FunctionDeclaration)
    x #1 var refs=1
    scope 2 none (BlockStatement)
unresolved: y(1)
`
	if diff := cmp.Diff(want, semantic.DumpString(sem)); diff != "" {
		t.Errorf("dump mismatch (-want +got):\n%s", diff)
	}
}

func TestResolutionTotality(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", `
"use strict";
var counter = 0;
const handlers = {
  inc(n = step) { counter += n; return this },
  get value() { return counter },
  [key]: () => counter,
};
class Queue extends Base {
  #items = [];
  static create(...xs) { const q = new Queue(); for (const x of xs) q.push(x); return q }
  push(x) { this.#items.push(x); return this.#items.length }
}
try { run(handlers) } catch (err) { console.error(err) } finally { counter = 0 }
label: do { if (counter > 10) break label; counter++ } while (true);
const { a, b: [c = a, ...rest], ...others } = source;
`)
	jstest.AssertInvariants(t, sem)
	assert.Equal(t, []string{"step", "key", "Base", "run", "console", "source"}, sem.Scopes.UnresolvedNames())
}
