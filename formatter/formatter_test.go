// Copyright © 2024 The ELPS authors

package formatter

import (
	"fmt"
	"testing"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formatTest struct {
	name     string
	input    string
	expected string
	config   *Config
	filename string
}

func runFormatTests(t *testing.T, tests []formatTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := tt.filename
			if filename == "" {
				filename = "<stdin>"
			}
			got, err := FormatFile([]byte(tt.input), filename, tt.config)
			require.NoError(t, err, "Format failed")
			assert.Equal(t, tt.expected, string(got), "formatted output mismatch")

			// Idempotency: formatting the output again should produce identical output
			got2, err := FormatFile(got, filename, tt.config)
			require.NoError(t, err, "Format (idempotency) failed")
			assert.Equal(t, string(got), string(got2), "not idempotent")

			roundTripEqual(t, filename, tt.input, string(got))
		})
	}
}

// roundTripEqual parses both sources and compares the node kinds and names
// in allocation order.
func roundTripEqual(t *testing.T, filename, original, formatted string) {
	t.Helper()
	shape := func(src string) []string {
		prog, err := parseForFormat(filename, []byte(src))
		require.NoError(t, err)
		var nodes []string
		prog.Arena.Each(func(_ ast.NodeID, n *ast.Node) {
			nodes = append(nodes, fmt.Sprintf("%s %s", n.Kind, n.Name))
		})
		return nodes
	}
	assert.Equal(t, shape(original), shape(formatted), "AST mismatch after round-trip")
}

func TestIndentBlocks(t *testing.T) {
	runFormatTests(t, []formatTest{
		{
			name:     "function body",
			input:    "function f() {\nreturn 1\n}\n",
			expected: "function f() {\n  return 1\n}\n",
		},
		{
			name:     "nested if",
			input:    "if (a) {\n        if (b) {\nc()\n  }\n}",
			expected: "if (a) {\n  if (b) {\n    c()\n  }\n}\n",
		},
		{
			name:     "else on closing line",
			input:    "if (a) {\nb()\n} else {\nc()\n}",
			expected: "if (a) {\n  b()\n} else {\n  c()\n}\n",
		},
		{
			name:     "class members",
			input:    "class A {\n#n = 0;\nget n() {\nreturn this.#n\n}\n}",
			expected: "class A {\n  #n = 0;\n  get n() {\n    return this.#n\n  }\n}\n",
		},
	})
}

func TestIndentBrackets(t *testing.T) {
	runFormatTests(t, []formatTest{
		{
			name:     "object argument",
			input:    "foo({\na: 1,\nb: 2,\n})",
			expected: "foo({\n  a: 1,\n  b: 2,\n})\n",
		},
		{
			name:     "array of objects",
			input:    "const xs = [\n{\na: 1,\n},\n]",
			expected: "const xs = [\n  {\n    a: 1,\n  },\n]\n",
		},
		{
			name:     "wrapped arguments",
			input:    "foo(a,\nb)",
			expected: "foo(a,\n  b)\n",
		},
		{
			name:     "callback argument",
			input:    "items.forEach(function (item) {\nuse(item)\n})",
			expected: "items.forEach(function (item) {\n  use(item)\n})\n",
		},
	})
}

func TestIndentSwitch(t *testing.T) {
	runFormatTests(t, []formatTest{
		{
			name:     "case bodies",
			input:    "switch (x) {\ncase 1:\nf()\nbreak\ndefault:\ng()\n}",
			expected: "switch (x) {\n  case 1:\n    f()\n    break\n  default:\n    g()\n}\n",
		},
		{
			name:     "braced case",
			input:    "switch (x) {\ncase 1: {\nf()\n}\n}",
			expected: "switch (x) {\n  case 1: {\n    f()\n  }\n}\n",
		},
		{
			name:     "flat case bodies",
			input:    "switch (x) {\ncase 1:\nf()\n}",
			expected: "switch (x) {\n  case 1:\n  f()\n}\n",
			config:   &Config{IndentSize: 2, MaxBlankLines: 1},
		},
		{
			name:     "identifier starting with case",
			input:    "switch (x) {\ncase 1:\ncases++\n}",
			expected: "switch (x) {\n  case 1:\n    cases++\n}\n",
		},
	})
}

func TestIndentContinuation(t *testing.T) {
	runFormatTests(t, []formatTest{
		{
			name:     "member chain",
			input:    "const x = a\n.b()\n.c()",
			expected: "const x = a\n  .b()\n  .c()\n",
		},
		{
			name:     "conditional",
			input:    "const y = cond\n? 1\n: 2",
			expected: "const y = cond\n  ? 1\n  : 2\n",
		},
		{
			name:     "logical",
			input:    "const ok = a\n&& b\n|| c",
			expected: "const ok = a\n  && b\n  || c\n",
		},
		{
			name:     "chain with callback",
			input:    "fetch(url)\n.then(() => {\ndone()\n})",
			expected: "fetch(url)\n  .then(() => {\n    done()\n  })\n",
		},
		{
			name:     "spread is not a continuation",
			input:    "f(\n...args\n)",
			expected: "f(\n  ...args\n)\n",
		},
	})
}

func TestLiteralsPreserved(t *testing.T) {
	runFormatTests(t, []formatTest{
		{
			name:     "template literal",
			input:    "function f() {\nreturn `a\n    b\n\n\n\nc`\n}",
			expected: "function f() {\n  return `a\n    b\n\n\n\nc`\n}\n",
		},
		{
			name:     "brace in string",
			input:    "const s = '{'\nx()",
			expected: "const s = '{'\nx()\n",
		},
		{
			name:     "brace in regexp",
			input:    "const r = /[{(]/g\nx()",
			expected: "const r = /[{(]/g\nx()\n",
		},
		{
			name:     "trailing space in template",
			input:    "const t = `a  \nb`",
			expected: "const t = `a  \nb`\n",
		},
		{
			name:     "jsx text",
			input:    "const el = (\n<div>\n   <span />\n</div>\n)",
			expected: "const el = (\n  <div>\n   <span />\n</div>\n)\n",
			filename: "view.jsx",
		},
	})
}

func TestComments(t *testing.T) {
	runFormatTests(t, []formatTest{
		{
			name:     "doc comment",
			input:    "function f() {\n/**\n* doc\n   */\nreturn 1\n}",
			expected: "function f() {\n  /**\n   * doc\n   */\n  return 1\n}\n",
		},
		{
			name:     "brace in line comment",
			input:    "if (a) { // {\nb()\n}",
			expected: "if (a) { // {\n  b()\n}\n",
		},
		{
			name:     "bracket in block comment",
			input:    "if (a) { /* ( */\nb()\n}",
			expected: "if (a) { /* ( */\n  b()\n}\n",
		},
		{
			name:     "free text block comment",
			input:    "/*\n  keep\n      this\n*/\nx()",
			expected: "/*\n  keep\n      this\n */\nx()\n",
		},
		{
			name:     "comment only",
			input:    "// nothing here\n",
			expected: "// nothing here\n",
		},
	})
}

func TestWhitespace(t *testing.T) {
	runFormatTests(t, []formatTest{
		{
			name:     "blank lines collapsed",
			input:    "a()\n\n\n\nb()",
			expected: "a()\n\nb()\n",
		},
		{
			name:     "no leading blank lines",
			input:    "\n\n  a()",
			expected: "a()\n",
		},
		{
			name:     "no trailing blank lines",
			input:    "a()\n\n\n",
			expected: "a()\n",
		},
		{
			name:     "trailing whitespace",
			input:    "a()   \nb()\t\n",
			expected: "a()\nb()\n",
		},
		{
			name:     "crlf",
			input:    "if (a) {\r\nb()\r\n}\r\n",
			expected: "if (a) {\n  b()\n}\n",
		},
		{
			name:     "blank lines kept",
			input:    "a()\n\n\nb()",
			expected: "a()\n\n\nb()\n",
			config:   &Config{IndentSize: 2, MaxBlankLines: 2},
		},
		{
			name:     "hashbang",
			input:    "#!/usr/bin/env node\nif (a) {\nb()\n}",
			expected: "#!/usr/bin/env node\nif (a) {\n  b()\n}\n",
		},
	})
}

func TestConfig(t *testing.T) {
	runFormatTests(t, []formatTest{
		{
			name:     "four spaces",
			input:    "if (a) {\nif (b) {\nc()\n}\n}",
			expected: "if (a) {\n    if (b) {\n        c()\n    }\n}\n",
			config:   &Config{IndentSize: 4, MaxBlankLines: 1},
		},
		{
			name:     "tabs",
			input:    "if (a) {\nif (b) {\nc()\n}\n}",
			expected: "if (a) {\n\tif (b) {\n\t\tc()\n\t}\n}\n",
			config:   &Config{IndentSize: 2, UseTabs: true, MaxBlankLines: 1},
		},
	})
}

func TestModuleFallback(t *testing.T) {
	got, err := Format([]byte("import x from 'y'\nexport default {\nx,\n}\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "import x from 'y'\nexport default {\n  x,\n}\n", string(got))
}

func TestEdgeEmptyInput(t *testing.T) {
	got, err := Format(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSyntaxError(t *testing.T) {
	_, err := FormatFile([]byte("if (\n"), "bad.js", nil)
	require.Error(t, err)
	lerr, ok := parser.IsSyntaxError(err)
	require.True(t, ok, "expected a syntax error, got %v", err)
	assert.Equal(t, "bad.js", lerr.Source.File)
}
