// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/semantic"
)

// AnalyzerNoUndef reports references to names that are neither declared in
// the file nor predefined globals.
var AnalyzerNoUndef = &Analyzer{
	Name:     "no-undef",
	Doc:      "Report uses of undeclared variables.\n\nA name that no declaration in scope binds and that is not a predefined global is almost always a typo or a missing import. The operand of typeof is exempt because probing for an undeclared global is a common feature test. Globals can be declared with a /* global name */ comment, the [globals] table of jsscope.toml, or an env.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		pass.UnresolvedReferences(func(name string, ref *semantic.Reference) {
			if _, ok := pass.Globals[name]; ok {
				return
			}
			if ref.Flags&semantic.ReferenceType != 0 {
				return
			}
			if name == "arguments" && pass.inOrdinaryFunction(ref.Scope) {
				return
			}
			if !ref.IsWrite() && pass.IsTypeofOperand(ref.Node) {
				return
			}
			pass.Reportf(ref.Span, "'%s' is not defined", name)
		})
		return nil
	},
}

// AnalyzerNoUnusedVars reports declarations that are never read.
var AnalyzerNoUnusedVars = &Analyzer{
	Name:     "no-unused-vars",
	Doc:      "Report variables, functions, classes and imports that are never read.\n\nNames starting with an underscore are ignored. Parameters are only reported when they come after the last used parameter, since earlier ones hold a position in the signature. Exported bindings and the top level declarations of scripts are visible to other files and are not reported. Catch parameters are not reported.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		root := pass.Semantic.Scopes.RootScopeID()
		module := pass.Program.SourceType.Module
		lastUsedParam := make(map[ast.NodeID]int)
		pass.Symbols(func(id semantic.SymbolID, sym *semantic.Symbol) {
			switch {
			case strings.HasPrefix(sym.Name, "_"),
				sym.Flags&semantic.SymbolExport != 0,
				sym.Flags&(semantic.SymbolFunctionExpressionName|semantic.SymbolClassExpressionName|semantic.SymbolCatchVariable) != 0,
				sym.Scope == root && !module:
				return
			}
			if pass.IsUsed(id) {
				return
			}
			if sym.Flags&semantic.SymbolParameter != 0 && sym.Flags&semantic.SymbolFunctionScopedVariable == 0 {
				last, ok := lastUsedParam[sym.Decl]
				if !ok {
					last = -1
					for i, p := range paramBindings(pass.Program, sym.Decl) {
						if s, ok := pass.Semantic.SymbolOf(p); ok && pass.IsUsed(s) {
							last = i
						}
					}
					lastUsedParam[sym.Decl] = last
				}
				if paramIndex(pass.Program, sym.Decl, sym.Node) < last {
					return
				}
			}
			if pass.Semantic.IsWritten(id) {
				pass.Reportf(sym.Span, "'%s' is assigned a value but never used", sym.Name)
				return
			}
			pass.Reportf(sym.Span, "'%s' is defined but never used", sym.Name)
		})
		return nil
	},
}

func paramIndex(prog *ast.Program, fn, node ast.NodeID) int {
	for i, p := range paramBindings(prog, fn) {
		if p == node {
			return i
		}
	}
	return -1
}

// AnalyzerNoRedeclare reports a name declared twice in the same scope.
var AnalyzerNoRedeclare = &Analyzer{
	Name:     "no-redeclare",
	Doc:      "Report names declared more than once in the same scope.\n\nRepeated var and function declarations are legal and denote a single binding, but usually indicate a copy and paste mistake. A let, const, class or import that collides with another declaration is a syntax error at runtime.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		type key struct {
			scope semantic.ScopeID
			name  string
		}
		first := make(map[key]*semantic.Symbol)
		pass.Symbols(func(id semantic.SymbolID, sym *semantic.Symbol) {
			if sym.Flags&semantic.SymbolParameter == 0 {
				for _, re := range sym.Redeclarations {
					pass.ReportWithNotes(Diagnostic{
						Pos:      pass.Position(re.Span),
						Message:  fmt.Sprintf("'%s' is already defined", sym.Name),
						Severity: SeverityWarning,
					}, fmt.Sprintf("first declared on line %d", pass.Program.Location(sym.Span.Start).Line))
				}
			}
			k := key{sym.Scope, sym.Name}
			prev, ok := first[k]
			if !ok {
				first[k] = sym
				return
			}
			if prev.Flags&(semantic.SymbolFunctionExpressionName|semantic.SymbolClassExpressionName) != 0 {
				return
			}
			pass.ReportWithNotes(Diagnostic{
				Pos:     pass.Position(sym.Span),
				Message: fmt.Sprintf("'%s' has already been declared", sym.Name),
			}, fmt.Sprintf("first declared on line %d", pass.Program.Location(prev.Span.Start).Line))
		})
		return nil
	},
}

// AnalyzerNoUseBeforeDefine reports reads of a binding above its
// declaration within the same function.
var AnalyzerNoUseBeforeDefine = &Analyzer{
	Name:     "no-use-before-define",
	Doc:      "Report variables and classes used before their declaration.\n\nA let, const or class binding read before its declaration runs throws a ReferenceError, and a var read early is undefined. Uses inside nested functions are allowed because they typically run later. Function declarations and imports are hoisted completely and are never reported.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		for _, ref := range pass.Semantic.References.All() {
			if !ref.Resolved() || ref.Flags&semantic.ReferenceType != 0 {
				continue
			}
			sym := pass.Semantic.Symbol(ref.Symbol)
			if sym.Flags&(semantic.SymbolFunction|semantic.SymbolImport|semantic.SymbolTypeImport|semantic.SymbolParameter) != 0 {
				continue
			}
			if pass.Program.Node(pass.Parent(ref.Node)).Kind == ast.ExportSpecifier {
				continue
			}
			if !pass.sameVarScope(ref.Scope, sym.Scope) {
				continue
			}
			early := ref.Span.Start < sym.Span.Start
			if !early && sym.Flags&semantic.SymbolBlockScopedVariable != 0 {
				init := declaratorInit(pass.Program, sym.Decl, sym.Node)
				early = init != ast.NoNode && pass.Program.Node(init).Span.Contains(ref.Span.Start)
			}
			if early {
				pass.Reportf(ref.Span, "'%s' was used before it was defined", ref.Name)
			}
		}
		return nil
	},
}

// AnalyzerNoGlobalAssign reports assignments to read-only globals.
var AnalyzerNoGlobalAssign = &Analyzer{
	Name:     "no-global-assign",
	Doc:      "Report assignments to read-only global variables.\n\nBuiltins like undefined, Object or window should never be overwritten. Globals declared writable, either through an env or a /* global name:writable */ comment, may be assigned.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		pass.UnresolvedReferences(func(name string, ref *semantic.Reference) {
			if !ref.IsWrite() {
				return
			}
			if writable, ok := pass.Globals[name]; ok && !writable {
				pass.Reportf(ref.Span, "read-only global '%s' should not be modified", name)
			}
		})
		return nil
	},
}

// AnalyzerNoShadow reports declarations that hide a binding of an
// enclosing scope.
var AnalyzerNoShadow = &Analyzer{
	Name:     "no-shadow",
	Doc:      "Report declarations that shadow a variable of an enclosing scope.\n\nShadowing makes the outer binding unreachable and is a frequent source of confusion. An outer variable declared after the inner one is not reported, except for function declarations, which are hoisted. The name of a function or class expression is never reported.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		scopes := pass.Semantic.Scopes
		pass.Symbols(func(id semantic.SymbolID, sym *semantic.Symbol) {
			if sym.Flags&(semantic.SymbolFunctionExpressionName|semantic.SymbolClassExpressionName) != 0 {
				return
			}
			parent := pass.Semantic.Scope(sym.Scope).Parent
			if parent == semantic.NoScope {
				return
			}
			outerID, ok := scopes.FindBinding(parent, sym.Name)
			if !ok || outerID == id {
				return
			}
			outer := pass.Semantic.Symbol(outerID)
			if outer.Flags&(semantic.SymbolFunctionExpressionName|semantic.SymbolClassExpressionName) != 0 {
				return
			}
			if outer.Flags&semantic.SymbolFunction == 0 && outer.Span.Start > sym.Span.Start {
				return
			}
			pass.Reportf(sym.Span, "'%s' is already declared in the upper scope on line %d",
				sym.Name, pass.Program.Location(outer.Span.Start).Line)
		})
		return nil
	},
}

// AnalyzerNoConstAssign reports assignments to const and import bindings.
var AnalyzerNoConstAssign = &Analyzer{
	Name:     "no-const-assign",
	Doc:      "Report assignments to constant bindings.\n\nAssigning a const variable or an imported binding throws a TypeError at runtime.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		pass.Symbols(func(id semantic.SymbolID, sym *semantic.Symbol) {
			if !sym.Flags.IsConst() {
				return
			}
			what := "a constant"
			if sym.Flags&(semantic.SymbolImport|semantic.SymbolTypeImport) != 0 {
				what = "an import binding"
			}
			for _, ref := range pass.Writes(id) {
				pass.Reportf(ref.Span, "'%s' is %s and cannot be reassigned", sym.Name, what)
			}
		})
		return nil
	},
}

// AnalyzerNoUnusedLabels reports labels no break or continue refers to.
var AnalyzerNoUnusedLabels = &Analyzer{
	Name:     "no-unused-labels",
	Doc:      "Report labels that are never used.\n\nA label that no break or continue statement targets has no effect.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		for _, node := range pass.Semantic.UnusedLabels() {
			n := pass.Program.Node(node)
			pass.Reportf(n.Span, "'%s:' is defined but never used", n.Name)
		}
		return nil
	},
}

// AnalyzerNoClassAssign reports assignments to class bindings.
var AnalyzerNoClassAssign = &Analyzer{
	Name:     "no-class-assign",
	Doc:      "Report reassignment of class declarations.\n\nOverwriting the binding of a class is legal for declarations but almost always a mistake. Assigning the name of a class expression inside its body throws a TypeError.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		pass.Symbols(func(id semantic.SymbolID, sym *semantic.Symbol) {
			if sym.Flags&(semantic.SymbolClass|semantic.SymbolClassExpressionName) == 0 {
				return
			}
			for _, ref := range pass.Writes(id) {
				pass.Reportf(ref.Span, "'%s' is a class", sym.Name)
			}
		})
		return nil
	},
}

// AnalyzerNoFuncAssign reports assignments to function declarations.
var AnalyzerNoFuncAssign = &Analyzer{
	Name:     "no-func-assign",
	Doc:      "Report reassignment of function declarations.\n\nA function declaration that is later assigned is usually a mistake. Bindings also declared with var or as a parameter are not reported, since the reassignment is then deliberate.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		pass.Symbols(func(id semantic.SymbolID, sym *semantic.Symbol) {
			if sym.Flags&semantic.SymbolFunction == 0 {
				return
			}
			if sym.Flags&(semantic.SymbolFunctionScopedVariable|semantic.SymbolParameter) != 0 {
				return
			}
			for _, ref := range pass.Writes(id) {
				pass.Reportf(ref.Span, "'%s' is a function", sym.Name)
			}
		})
		return nil
	},
}

// AnalyzerNoUndefPrivate reports private names that no enclosing class
// declares.
var AnalyzerNoUndefPrivate = &Analyzer{
	Name:     "no-undef-private",
	Doc:      "Report private names not declared by an enclosing class.\n\nA #name must be declared in the body of the class that uses it or of a class around it. Any other use is a syntax error.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		for _, cls := range pass.Semantic.Classes.All() {
			for i := range cls.PrivateRefs {
				ref := &cls.PrivateRefs[i]
				if !ref.Resolved() {
					pass.Reportf(ref.Span, "private name '%s' is not defined in an enclosing class", ref.Name)
				}
			}
		}
		for _, node := range pass.Semantic.PrivateNamesOutsideClass() {
			n := pass.Program.Node(node)
			pass.Reportf(n.Span, "private name '#%s' used outside of a class", n.Name)
		}
		return nil
	},
}

// AnalyzerNames returns a sorted list of all default analyzer names.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// AnalyzerDoc returns a formatted documentation string for all analyzers.
// Descriptions are wrapped to width columns; zero keeps only the summary
// line of each.
func AnalyzerDoc(width int) string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s (%s)\n", a.Name, a.Severity)
		summary, body, _ := strings.Cut(a.Doc, "\n")
		fmt.Fprintf(&b, "    %s\n", summary)
		if body = strings.TrimSpace(body); width > 0 && body != "" {
			b.WriteString(indent.String(wordwrap.String(body, width-6), 6))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String()
}
