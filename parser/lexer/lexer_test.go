// Copyright © 2024 The ELPS authors

package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/jsscope/parser/token"
)

type testTok struct {
	typ  token.Type
	text string
}

func testToken(typ token.Type, text string) testTok {
	return testTok{typ, text}
}

func lexAll(t *testing.T, src string) []testTok {
	t.Helper()
	lex := New("test", []byte(src), nil)
	var toks []testTok
	for {
		tok := lex.Token()
		toks = append(toks, testToken(tok.Type, tok.Text))
		if tok.Type == token.EOF {
			return toks
		}
		lex.Next()
		require.Less(t, len(toks), 1000, "lexer did not terminate")
	}
}

func TestLexer(t *testing.T) {
	tests := []struct {
		input  string
		tokens []testTok
	}{
		{``, []testTok{
			testToken(token.EOF, ""),
		}},
		{`abc`, []testTok{
			testToken(token.IDENT, "abc"),
			testToken(token.EOF, ""),
		}},
		{`let x = 1;`, []testTok{
			testToken(token.IDENT, "let"),
			testToken(token.IDENT, "x"),
			testToken(token.ASSIGN, "="),
			testToken(token.NUMBER, "1"),
			testToken(token.SEMICOLON, ";"),
			testToken(token.EOF, ""),
		}},
		{`var function class`, []testTok{
			testToken(token.VAR, "var"),
			testToken(token.FUNCTION, "function"),
			testToken(token.CLASS, "class"),
			testToken(token.EOF, ""),
		}},
		{`a += b ** c >>>= d ?? e ??= f`, []testTok{
			testToken(token.IDENT, "a"),
			testToken(token.PLUS_ASSIGN, "+="),
			testToken(token.IDENT, "b"),
			testToken(token.STAR_STAR, "**"),
			testToken(token.IDENT, "c"),
			testToken(token.SHR_UNSIGNED_ASSIGN, ">>>="),
			testToken(token.IDENT, "d"),
			testToken(token.NULLISH, "??"),
			testToken(token.IDENT, "e"),
			testToken(token.NULLISH_ASSIGN, "??="),
			testToken(token.IDENT, "f"),
			testToken(token.EOF, ""),
		}},
		{`x++ --y a?.b c?.5:1`, []testTok{
			testToken(token.IDENT, "x"),
			testToken(token.INC, "++"),
			testToken(token.DEC, "--"),
			testToken(token.IDENT, "y"),
			testToken(token.IDENT, "a"),
			testToken(token.QUESTION_DOT, "?."),
			testToken(token.IDENT, "b"),
			testToken(token.IDENT, "c"),
			testToken(token.QUESTION, "?"),
			testToken(token.NUMBER, ".5"),
			testToken(token.COLON, ":"),
			testToken(token.NUMBER, "1"),
			testToken(token.EOF, ""),
		}},
		{`(...args) => {}`, []testTok{
			testToken(token.PAREN_L, "("),
			testToken(token.ELLIPSIS, "..."),
			testToken(token.IDENT, "args"),
			testToken(token.PAREN_R, ")"),
			testToken(token.ARROW, "=>"),
			testToken(token.BRACE_L, "{"),
			testToken(token.BRACE_R, "}"),
			testToken(token.EOF, ""),
		}},
		{`0x1F 0b101 1_000 1e-3 10n`, []testTok{
			testToken(token.NUMBER, "0x1F"),
			testToken(token.NUMBER, "0b101"),
			testToken(token.NUMBER, "1_000"),
			testToken(token.NUMBER, "1e-3"),
			testToken(token.BIGINT, "10n"),
			testToken(token.EOF, ""),
		}},
		{`"abc" 'd\'e'`, []testTok{
			testToken(token.STRING, `"abc"`),
			testToken(token.STRING, `'d\'e'`),
			testToken(token.EOF, ""),
		}},
		{"`a${", []testTok{
			testToken(token.TEMPLATE_HEAD, "`a${"),
			testToken(token.EOF, ""),
		}},
		{"this.#secret", []testTok{
			testToken(token.THIS, "this"),
			testToken(token.DOT, "."),
			testToken(token.PRIVATE_NAME, "#secret"),
			testToken(token.EOF, ""),
		}},
		{"a // line\n/* block */ b", []testTok{
			testToken(token.IDENT, "a"),
			testToken(token.IDENT, "b"),
			testToken(token.EOF, ""),
		}},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			assert.Equal(t, test.tokens, lexAll(t, test.input))
		})
	}
}

func TestLexer_Values(t *testing.T) {
	lex := New("test", []byte(`"a\nb" \u0061bc #priv`), nil)
	assert.Equal(t, token.STRING, lex.Type())
	assert.Equal(t, "a\nb", lex.Value)

	lex.Next()
	assert.Equal(t, token.IDENT, lex.Type())
	assert.Equal(t, "abc", lex.Value)
	assert.True(t, lex.Escaped)

	lex.Next()
	assert.Equal(t, token.PRIVATE_NAME, lex.Type())
	assert.Equal(t, "priv", lex.Value)
}

func TestLexer_EscapedKeywordIsIdentifier(t *testing.T) {
	lex := New("test", []byte(`v\u0061r`), nil)
	assert.Equal(t, token.IDENT, lex.Type())
	assert.Equal(t, "var", lex.Value)
}

func TestLexer_NewlineBefore(t *testing.T) {
	lex := New("test", []byte("a\nb /*\n*/ c d"), nil)
	assert.False(t, lex.Token().NewlineBefore)
	lex.Next()
	assert.True(t, lex.Token().NewlineBefore)
	lex.Next()
	assert.True(t, lex.Token().NewlineBefore, "multi-line block comment counts as a line break")
	lex.Next()
	assert.False(t, lex.Token().NewlineBefore)
}

func TestLexer_Comments(t *testing.T) {
	lex := New("test", []byte("#!/usr/bin/env node\n// one\nx /* two */"), nil)
	for lex.Type() != token.EOF {
		lex.Next()
	}
	require.Len(t, lex.Comments, 3)
	assert.Equal(t, "#!/usr/bin/env node", lex.Comments[0].Text)
	assert.Equal(t, "// one", lex.Comments[1].Text)
	assert.False(t, lex.Comments[1].Block)
	assert.Equal(t, "/* two */", lex.Comments[2].Text)
	assert.True(t, lex.Comments[2].Block)
}

func TestLexer_SaveRestore(t *testing.T) {
	lex := New("test", []byte("a /* c */ b"), nil)
	state := lex.Save()
	lex.Next()
	assert.Equal(t, "b", lex.Value)
	assert.Len(t, lex.Comments, 1)
	lex.Restore(state)
	assert.Equal(t, "a", lex.Value)
	assert.Empty(t, lex.Comments)
}

func TestLexer_ScanRegExp(t *testing.T) {
	lex := New("test", []byte(`/[/]+\d/gi.test`), nil)
	require.Equal(t, token.SLASH, lex.Type())
	lex.ScanRegExp()
	assert.Equal(t, token.REGEXP, lex.Type())
	assert.Equal(t, `/[/]+\d/gi`, lex.Token().Text)
	lex.Next()
	assert.Equal(t, token.DOT, lex.Type())
}

func TestLexer_TemplateContinuation(t *testing.T) {
	lex := New("test", []byte("`a${x}b${y}c`"), nil)
	assert.Equal(t, token.TEMPLATE_HEAD, lex.Type())
	assert.Equal(t, "a", lex.Value)
	lex.Next()
	assert.Equal(t, token.IDENT, lex.Type())
	lex.Next()
	lex.RescanTemplateContinuation()
	assert.Equal(t, token.TEMPLATE_MIDDLE, lex.Type())
	assert.Equal(t, "b", lex.Value)
	lex.Next()
	lex.Next()
	lex.RescanTemplateContinuation()
	assert.Equal(t, token.TEMPLATE_TAIL, lex.Type())
	assert.Equal(t, "c", lex.Value)
	lex.Next()
	assert.Equal(t, token.EOF, lex.Type())
}

func TestLexer_JSX(t *testing.T) {
	lex := New("test", []byte(`<div data-id="x">hi {name}</div>`), nil)
	require.Equal(t, token.LT, lex.Type())
	lex.NextInsideJSXElement()
	assert.Equal(t, token.IDENT, lex.Type())
	assert.Equal(t, "div", lex.Value)
	lex.NextInsideJSXElement()
	assert.Equal(t, "data-id", lex.Value)
	lex.NextInsideJSXElement()
	assert.Equal(t, token.ASSIGN, lex.Type())
	lex.NextInsideJSXElement()
	assert.Equal(t, token.STRING, lex.Type())
	assert.Equal(t, "x", lex.Value)
	lex.NextInsideJSXElement()
	assert.Equal(t, token.GT, lex.Type())
	lex.NextJSXChild()
	assert.Equal(t, token.JSX_TEXT, lex.Type())
	assert.Equal(t, "hi ", lex.Value)
	lex.NextJSXChild()
	assert.Equal(t, token.BRACE_L, lex.Type())
}

func TestLexer_Errors(t *testing.T) {
	for _, src := range []string{`"abc`, "/* open", "`tmpl", "3in", "a # b"} {
		t.Run(src, func(t *testing.T) {
			defer func() {
				r := recover()
				require.NotNil(t, r)
				b, ok := r.(Bailout)
				require.True(t, ok)
				assert.Error(t, b.Err)
			}()
			lex := New("test", []byte(src), nil)
			for lex.Type() != token.EOF {
				lex.Next()
			}
		})
	}
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("foo"))
	assert.True(t, IsIdentifier("$_x1"))
	assert.True(t, IsIdentifier("ünïcode"))
	assert.False(t, IsIdentifier(""))
	assert.False(t, IsIdentifier("1abc"))
	assert.False(t, IsIdentifier("a-b"))
}
