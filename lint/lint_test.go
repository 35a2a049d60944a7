// Copyright © 2024 The ELPS authors

package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/jsscope/jstest"
	"github.com/luthersystems/jsscope/parser"
	"github.com/luthersystems/jsscope/semantic"
)

func testLinter(t *testing.T, analyzers ...*Analyzer) *Linter {
	t.Helper()
	return &Linter{
		Analyzers: analyzers,
		Analysis:  &semantic.Config{Logger: jstest.NewLogrus(t)},
	}
}

// lintSource runs all default analyzers on the given source and returns diagnostics.
func lintSource(t *testing.T, filename, source string) []Diagnostic {
	t.Helper()
	diags, err := testLinter(t, DefaultAnalyzers()...).LintFile(context.Background(), []byte(source), filename)
	require.NoError(t, err)
	return diags
}

// lintCheck runs a single analyzer on the given script source.
func lintCheck(t *testing.T, analyzer *Analyzer, source string) []Diagnostic {
	t.Helper()
	return lintCheckFile(t, analyzer, "test.js", source)
}

func lintCheckFile(t *testing.T, analyzer *Analyzer, filename, source string) []Diagnostic {
	t.Helper()
	diags, err := testLinter(t, analyzer).LintFile(context.Background(), []byte(source), filename)
	require.NoError(t, err)
	return diags
}

// assertHasDiag checks that at least one diagnostic contains the given substring.
func assertHasDiag(t *testing.T, diags []Diagnostic, substr string) {
	t.Helper()
	for _, d := range diags {
		if strings.Contains(d.Message, substr) {
			return
		}
	}
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, d.String())
	}
	t.Errorf("expected diagnostic containing %q, got: %v", substr, msgs)
}

// assertNoDiags checks that there are no diagnostics.
func assertNoDiags(t *testing.T, diags []Diagnostic) {
	t.Helper()
	if len(diags) > 0 {
		var msgs []string
		for _, d := range diags {
			msgs = append(msgs, d.String())
		}
		t.Errorf("expected no diagnostics, got %d: %v", len(diags), msgs)
	}
}

// assertDiagOnLine checks that a diagnostic exists on the given line with the given substring.
func assertDiagOnLine(t *testing.T, diags []Diagnostic, line int, substr string) {
	t.Helper()
	for _, d := range diags {
		if d.Pos.Line == line && strings.Contains(d.Message, substr) {
			return
		}
	}
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, fmt.Sprintf("line %d: %s", d.Pos.Line, d.Message))
	}
	t.Errorf("expected diagnostic on line %d containing %q, got: %v", line, substr, msgs)
}

// --- Position.String() ---

func TestPosition_String(t *testing.T) {
	assert.Equal(t, "test.js", Position{File: "test.js"}.String())
	assert.Equal(t, "test.js:10", Position{File: "test.js", Line: 10}.String())
	assert.Equal(t, "test.js:10:5", Position{File: "test.js", Line: 10, Col: 5}.String())
}

// --- Diagnostic.String() ---

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Pos:      Position{File: "test.js", Line: 10, Col: 3},
		Message:  "'x' is not defined",
		Analyzer: "no-undef",
		Notes:    []string{"declare it"},
	}
	assert.Equal(t, "test.js:10:3: 'x' is not defined (no-undef)\n  = note: declare it", d.String())
}

func TestSeverity_JSON(t *testing.T) {
	b, err := json.Marshal(Diagnostic{})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"severity":"warning"`)

	var d Diagnostic
	require.NoError(t, json.Unmarshal([]byte(`{"severity":"error"}`), &d))
	assert.Equal(t, SeverityError, d.Severity)
	assert.Error(t, json.Unmarshal([]byte(`{"severity":"fatal"}`), &d))
}

// --- Linter ---

func TestLintFile_AnalyzerError(t *testing.T) {
	errAnalyzer := &Analyzer{
		Name: "fail",
		Doc:  "Always fails.",
		Run: func(pass *Pass) error {
			return fmt.Errorf("intentional failure")
		},
	}
	_, err := testLinter(t, errAnalyzer, AnalyzerNoUndef).LintFile(context.Background(), []byte("x"), "test.js")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intentional failure")
	assert.Contains(t, err.Error(), "test.js: analyzer fail")
}

func TestLintFile_SyntaxError(t *testing.T) {
	_, err := testLinter(t, DefaultAnalyzers()...).LintFile(context.Background(), []byte("let = ;"), "test.js")
	require.Error(t, err)
	_, ok := parser.IsSyntaxError(err)
	assert.True(t, ok)
}

func TestLintFile_SortedAcrossAnalyzers(t *testing.T) {
	source := "undefined = 1\nfunction f(a) { let a2; q }\n"
	diags := lintSource(t, "test.js", source)
	require.NotEmpty(t, diags)
	for i := 1; i < len(diags); i++ {
		prev, cur := diags[i-1].Pos, diags[i].Pos
		assert.True(t, prev.Line < cur.Line || (prev.Line == cur.Line && prev.Col <= cur.Col), "%v before %v", prev, cur)
	}
	assertDiagOnLine(t, diags, 1, "read-only global 'undefined'")
	assertDiagOnLine(t, diags, 2, "'q' is not defined")
	assertDiagOnLine(t, diags, 2, "'a2' is defined but never used")
}

func TestLintFiles(t *testing.T) {
	l := testLinter(t, AnalyzerNoUndef)
	results, err := l.LintFiles(context.Background(), []semantic.File{
		{Path: "a.js", Source: []byte("missing()")},
		{Path: "b.js", Source: []byte("let = ;")},
		{Path: "c.js", Source: []byte("var ok = 1; ok")},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Len(t, results[0].Diagnostics, 1)
	assert.Equal(t, "a.js", results[0].Diagnostics[0].Pos.File)
	assert.Error(t, results[1].Err)
	assert.Empty(t, results[2].Diagnostics)
}

func TestLinter_WorkspaceGlobals(t *testing.T) {
	l := testLinter(t, AnalyzerNoUndef, AnalyzerNoGlobalAssign)
	l.Workspace = []semantic.ExternalSymbol{
		{Name: "helper", Flags: semantic.SymbolFunction, File: "util.js"},
		{Name: "VERSION", Flags: semantic.SymbolBlockScopedVariable | semantic.SymbolConstVariable, File: "util.js"},
		{Name: "exported", File: "mod.mjs", Module: true},
	}
	diags, err := l.LintFile(context.Background(), []byte("helper()\nVERSION = 2\nexported()\n"), "main.js")
	require.NoError(t, err)
	require.Len(t, diags, 2)
	assertDiagOnLine(t, diags, 2, "read-only global 'VERSION'")
	assertDiagOnLine(t, diags, 3, "'exported' is not defined")
}

// --- no-undef ---

func TestNoUndef_Positive(t *testing.T) {
	diags := lintCheck(t, AnalyzerNoUndef, "foo();\nvar x = bar;\ny = 1;\n")
	require.Len(t, diags, 3)
	assertDiagOnLine(t, diags, 1, "'foo' is not defined")
	assertDiagOnLine(t, diags, 2, "'bar' is not defined")
	assertDiagOnLine(t, diags, 3, "'y' is not defined")
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Equal(t, 1, diags[0].Pos.Col)
	assert.Equal(t, 4, diags[0].Pos.EndCol)
}

func TestNoUndef_Negative_Builtins(t *testing.T) {
	assertNoDiags(t, lintCheck(t, AnalyzerNoUndef, "Math.max(parseInt('1'), Infinity)"))
}

func TestNoUndef_Negative_Typeof(t *testing.T) {
	assertNoDiags(t, lintCheck(t, AnalyzerNoUndef, "if (typeof window !== 'undefined') {}"))
}

func TestNoUndef_Arguments(t *testing.T) {
	assertNoDiags(t, lintCheck(t, AnalyzerNoUndef, "function f() { return () => arguments }"))
	diags := lintCheck(t, AnalyzerNoUndef, "const f = () => arguments")
	assertHasDiag(t, diags, "'arguments' is not defined")
}

func TestNoUndef_GlobalDirective(t *testing.T) {
	source := "/* global foo, bar:writable */\nfoo(bar)\n// global baz\nbaz()\n"
	diags := lintCheck(t, AnalyzerNoUndef, source)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 4, "'baz' is not defined")
}

func TestNoUndef_GlobalOff(t *testing.T) {
	diags := lintCheck(t, AnalyzerNoUndef, "/* global Map:off */\nnew Map()\n")
	assertDiagOnLine(t, diags, 2, "'Map' is not defined")
}

// --- no-unused-vars ---

func TestNoUnusedVars_Module(t *testing.T) {
	source := `import { a, b } from 'x'
const c = 1
let d
d = 2
export const e = 1
a()
`
	diags := lintCheckFile(t, AnalyzerNoUnusedVars, "test.mjs", source)
	require.Len(t, diags, 3)
	assertDiagOnLine(t, diags, 1, "'b' is defined but never used")
	assertDiagOnLine(t, diags, 2, "'c' is defined but never used")
	assertDiagOnLine(t, diags, 3, "'d' is assigned a value but never used")
}

func TestNoUnusedVars_ParamsAfterUsed(t *testing.T) {
	diags := lintCheck(t, AnalyzerNoUnusedVars, "function f(a, b, c) { return b }")
	require.Len(t, diags, 1)
	assertHasDiag(t, diags, "'c' is defined but never used")
}

func TestNoUnusedVars_Negative_ScriptTopLevel(t *testing.T) {
	assertNoDiags(t, lintCheck(t, AnalyzerNoUnusedVars, "var shared = 1\nfunction api() {}\n"))
}

func TestNoUnusedVars_Negative_Ignored(t *testing.T) {
	source := `function f(_x) {
  const _unused = 1
  try { g() } catch (err) {}
  return function named() {}
}`
	assertNoDiags(t, lintCheck(t, AnalyzerNoUnusedVars, source))
}

func TestNoUnusedVars_Nested(t *testing.T) {
	diags := lintCheck(t, AnalyzerNoUnusedVars, "function f() {\n  let tmp = 1\n  class Helper {}\n}\n")
	assertDiagOnLine(t, diags, 2, "'tmp' is defined but never used")
	assertDiagOnLine(t, diags, 3, "'Helper' is defined but never used")
}

// --- no-redeclare ---

func TestNoRedeclare_Var(t *testing.T) {
	diags := lintCheck(t, AnalyzerNoRedeclare, "var a = 1;\nvar a = 2;\n")
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 2, "'a' is already defined")
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, []string{"first declared on line 1"}, diags[0].Notes)
}

func TestNoRedeclare_Lexical(t *testing.T) {
	diags := lintCheck(t, AnalyzerNoRedeclare, "var b;\nlet b;\n")
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 2, "'b' has already been declared")
	assert.Equal(t, SeverityError, diags[0].Severity)
}

func TestNoRedeclare_Negative(t *testing.T) {
	source := `function f(a) { var a; }
(function g(g) {})
let c; { let c; }`
	assertNoDiags(t, lintCheck(t, AnalyzerNoRedeclare, source))
}

// --- no-use-before-define ---

func TestNoUseBeforeDefine_Positive(t *testing.T) {
	source := "x = 1\nlet x\nnew C()\nclass C {}\nconst y = y + 1\n"
	diags := lintCheck(t, AnalyzerNoUseBeforeDefine, source)
	require.Len(t, diags, 3)
	assertDiagOnLine(t, diags, 1, "'x' was used before it was defined")
	assertDiagOnLine(t, diags, 3, "'C' was used before it was defined")
	assertDiagOnLine(t, diags, 5, "'y' was used before it was defined")
}

func TestNoUseBeforeDefine_Negative(t *testing.T) {
	source := `f()
function f() { return later }
let later = 1
const g = () => g()
`
	assertNoDiags(t, lintCheck(t, AnalyzerNoUseBeforeDefine, source))
}

func TestNoUseBeforeDefine_Negative_ExportList(t *testing.T) {
	assertNoDiags(t, lintCheckFile(t, AnalyzerNoUseBeforeDefine, "test.mjs", "export { v }\nconst v = 1\n"))
}

// --- no-global-assign ---

func TestNoGlobalAssign(t *testing.T) {
	source := "/* global cfg:writable, ro */\nundefined = 1\ncfg = {}\nro++\nNaN\n"
	diags := lintCheck(t, AnalyzerNoGlobalAssign, source)
	require.Len(t, diags, 2)
	assertDiagOnLine(t, diags, 2, "read-only global 'undefined' should not be modified")
	assertDiagOnLine(t, diags, 4, "read-only global 'ro'")
}

func TestNoGlobalAssign_Negative_Shadowed(t *testing.T) {
	assertNoDiags(t, lintCheck(t, AnalyzerNoGlobalAssign, "function f(Object) { Object = 1 }"))
}

// --- no-shadow ---

func TestNoShadow_Positive(t *testing.T) {
	source := "let x = 1\nfunction f(x) {\n  { let x }\n}\n"
	diags := lintCheck(t, AnalyzerNoShadow, source)
	require.Len(t, diags, 2)
	assertDiagOnLine(t, diags, 2, "'x' is already declared in the upper scope on line 1")
	assertDiagOnLine(t, diags, 3, "'x' is already declared in the upper scope on line 2")
}

func TestNoShadow_HoistedFunction(t *testing.T) {
	source := "function outer() { let helper }\nfunction helper() {}\n"
	diags := lintCheck(t, AnalyzerNoShadow, source)
	assertDiagOnLine(t, diags, 1, "'helper' is already declared in the upper scope on line 2")
}

func TestNoShadow_Negative(t *testing.T) {
	source := `function outer() { let later }
let later
const fact = function fact(n) { return n ? n * fact(n - 1) : 1 }
try {} catch (e) { let e2 }`
	assertNoDiags(t, lintCheck(t, AnalyzerNoShadow, source))
}

// --- no-const-assign ---

func TestNoConstAssign(t *testing.T) {
	source := "import def from 'x'\nconst a = 1\na = 2\ndef = 3\nfor (const k of []) {}\n"
	diags := lintCheckFile(t, AnalyzerNoConstAssign, "test.mjs", source)
	require.Len(t, diags, 2)
	assertDiagOnLine(t, diags, 3, "'a' is a constant")
	assertDiagOnLine(t, diags, 4, "'def' is an import binding")
}

func TestNoConstAssign_Destructuring(t *testing.T) {
	diags := lintCheck(t, AnalyzerNoConstAssign, "const c = 1\n;[c] = [2]\n")
	assertDiagOnLine(t, diags, 2, "'c' is a constant")
}

// --- no-unused-labels ---

func TestNoUnusedLabels(t *testing.T) {
	source := "outer: for (;;) {\n  inner: for (;;) { break outer }\n}\n"
	diags := lintCheck(t, AnalyzerNoUnusedLabels, source)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 2, "'inner:' is defined but never used")
}

// --- no-class-assign / no-func-assign ---

func TestNoClassAssign(t *testing.T) {
	diags := lintCheck(t, AnalyzerNoClassAssign, "class A {}\nA = 0\nconst B = class Named { m() { Named = 1 } }\n")
	require.Len(t, diags, 2)
	assertDiagOnLine(t, diags, 2, "'A' is a class")
	assertDiagOnLine(t, diags, 3, "'Named' is a class")
}

func TestNoFuncAssign(t *testing.T) {
	diags := lintCheck(t, AnalyzerNoFuncAssign, "function f() {}\nf = 1\nfunction g() {}\nvar g = 2\ng = 3\n")
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 2, "'f' is a function")
}

// --- no-undef-private ---

func TestNoUndefPrivate(t *testing.T) {
	source := `class A {
  #a;
  m() { return this.#a + this.#b }
  n() { return class { k() { return this.#a } } }
}
`
	diags := lintCheck(t, AnalyzerNoUndefPrivate, source)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 3, "private name '#b' is not defined")
}

// --- directives ---

func TestDirective_DisableLine(t *testing.T) {
	source := "a // jsscope-disable-line no-undef\nb // jsscope-disable-line\nc // nolint:no-shadow\nd\n"
	diags := lintCheck(t, AnalyzerNoUndef, source)
	require.Len(t, diags, 2)
	assertDiagOnLine(t, diags, 3, "'c'")
	assertDiagOnLine(t, diags, 4, "'d'")
}

func TestDirective_DisableNextLine(t *testing.T) {
	source := "// jsscope-disable-next-line no-undef\na\nb\n"
	diags := lintCheck(t, AnalyzerNoUndef, source)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 3, "'b'")
}

func TestDirective_DisableEnableRange(t *testing.T) {
	source := "/* jsscope-disable no-undef */\na\nb\n/* jsscope-enable no-undef */\nc\n/* jsscope-disable */\nd\n"
	diags := lintCheck(t, AnalyzerNoUndef, source)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 5, "'c'")
}

func TestDirective_Invalid(t *testing.T) {
	source := "x // jsscope-disable-line no-such-check\n/* global a:sometimes */\n// nolint ???\n"
	diags := lintCheck(t, AnalyzerNoUnusedLabels, source)
	require.Len(t, diags, 3)
	for _, d := range diags {
		assert.Equal(t, "directive", d.Analyzer)
	}
	assertDiagOnLine(t, diags, 1, `unknown check "no-such-check"`)
	assertDiagOnLine(t, diags, 2, `invalid global value "sometimes"`)
	assertDiagOnLine(t, diags, 3, "malformed directive")
}

func TestParseDirective(t *testing.T) {
	d, err := parseDirective(" globals a, b:writable ,c:off", true)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"a", "readonly"}, {"b", "writable"}, {"c", "off"}}, d.globals)

	d, err = parseDirective("nolint:no-undef,no-shadow", false)
	require.NoError(t, err)
	assert.Equal(t, kwNolint, d.keyword)
	assert.Equal(t, []string{"no-undef", "no-shadow"}, d.checks)

	d, err = parseDirective("global state is bad", false)
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = parseDirective("just a comment", true)
	require.NoError(t, err)
	assert.Nil(t, d)
}

// --- config ---

func TestConfig_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
source_type = "module"
env = ["browser"]
disable = ["no-shadow"]

[globals]
analytics = "writable"
window = "off"

[severity]
no-unused-vars = "error"
`), 0o600))
	sub := filepath.Join(dir, "src", "lib")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	found, ok := FindConfig(sub)
	require.True(t, ok)
	assert.Equal(t, path, found)

	cfg, err := LoadConfig(found)
	require.NoError(t, err)

	globals, err := cfg.PredefinedGlobals()
	require.NoError(t, err)
	assert.True(t, globals["analytics"])
	assert.False(t, globals["document"])
	_, ok = globals["window"]
	assert.False(t, ok)

	analyzers, err := cfg.Analyzers()
	require.NoError(t, err)
	assert.Len(t, analyzers, len(DefaultAnalyzers())-1)
	for _, a := range analyzers {
		assert.NotEqual(t, "no-shadow", a.Name)
		if a.Name == "no-unused-vars" {
			assert.Equal(t, SeverityError, a.Severity)
		}
	}
	assert.Equal(t, SeverityWarning, AnalyzerNoUnusedVars.Severity, "defaults are not modified")

	l, err := NewLinter(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, l.Analysis)
	assert.True(t, l.Analysis.SourceType.Module)
}

func TestConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("enviroment = [\"node\"]\n"), 0o600))
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "unknown keys: enviroment")

	_, err = (&Config{Disable: []string{"no-such"}}).Analyzers()
	assert.ErrorContains(t, err, "unknown check: no-such")
	_, err = (&Config{Env: []string{"mars"}}).PredefinedGlobals()
	assert.Error(t, err)
	_, err = (&Config{SourceType: "esm"}).SourceTypeOverride()
	assert.Error(t, err)
}

// --- output ---

func TestFormatText(t *testing.T) {
	var buf bytes.Buffer
	FormatText(&buf, []Diagnostic{{Pos: Position{File: "a.js", Line: 1, Col: 2}, Message: "m", Analyzer: "x"}})
	assert.Equal(t, "a.js:1:2: m (x)\n", buf.String())
}

func TestFormatJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestAnalyzerDoc(t *testing.T) {
	doc := AnalyzerDoc(60)
	for _, name := range AnalyzerNames() {
		assert.Contains(t, doc, "  "+name+" (")
	}
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(line, "      ") {
			assert.LessOrEqual(t, len(line), 60, line)
		}
	}
}

func TestLookupAnalyzers(t *testing.T) {
	as, err := LookupAnalyzers([]string{"no-shadow", " no-undef"})
	require.NoError(t, err)
	require.Len(t, as, 2)
	assert.Equal(t, AnalyzerNoShadow, as[0])
	_, err = LookupAnalyzers([]string{"nope"})
	assert.Error(t, err)
}
