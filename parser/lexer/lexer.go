// Copyright © 2024 The ELPS authors

// Package lexer converts JavaScript source text into tokens.
//
// The lexer is driven by the parser one token at a time rather than being run
// to completion first, because several JavaScript tokens are context
// sensitive: a '/' may start a regular expression, a '}' may continue a
// template literal, and JSX text and attribute names follow their own rules.
// The parser asks for the appropriate rescan when it knows which one applies.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/luthersystems/jsscope/parser/token"
)

// Comment is a comment skipped between tokens.
type Comment struct {
	Pos   int
	End   int
	Text  string
	Block bool
}

// Bailout is the panic value used to abandon lexing or parsing at the first
// syntax error. Parser entry points recover it and return Err.
type Bailout struct {
	Err *token.LocationError
}

// Lexer produces JavaScript tokens from a source buffer.
type Lexer struct {
	file  string
	src   string
	lines *token.LineIndex

	pos int // offset of the next unread byte
	tok token.Token

	// Value holds the cooked value of the current token: the decoded name
	// of identifiers and private names, or the decoded contents of strings.
	Value string
	// Escaped is set when an identifier contained a unicode escape.
	Escaped bool

	Comments []Comment
}

// State is a snapshot of the lexer used for bounded lookahead.
type State struct {
	pos      int
	tok      token.Token
	value    string
	escaped  bool
	comments int
}

// New returns a lexer positioned on the first token of src.
func New(file string, src []byte, lines *token.LineIndex) *Lexer {
	lex := &Lexer{
		file:  file,
		src:   string(src),
		lines: lines,
	}
	if lines == nil {
		lex.lines = token.NewLineIndex(src)
	}
	if strings.HasPrefix(lex.src, "#!") {
		end := lex.lineEnd(0)
		lex.Comments = append(lex.Comments, Comment{Pos: 0, End: end, Text: lex.src[:end]})
		lex.pos = end
	}
	lex.Next()
	return lex
}

// Token returns the current token.
func (lex *Lexer) Token() token.Token {
	return lex.tok
}

// Type returns the type of the current token.
func (lex *Lexer) Type() token.Type {
	return lex.tok.Type
}

// Raw returns the source text of the current token.
func (lex *Lexer) Raw() string {
	return lex.src[lex.tok.Pos:lex.tok.End]
}

// Save captures the lexer state.
func (lex *Lexer) Save() State {
	return State{pos: lex.pos, tok: lex.tok, value: lex.Value, escaped: lex.Escaped, comments: len(lex.Comments)}
}

// Restore rewinds the lexer to a previously saved state.
func (lex *Lexer) Restore(s State) {
	lex.pos = s.pos
	lex.tok = s.tok
	lex.Value = s.value
	lex.Escaped = s.escaped
	lex.Comments = lex.Comments[:s.comments]
}

// Errorf abandons lexing with a syntax error at offset pos.
func (lex *Lexer) Errorf(pos int, format string, v ...interface{}) {
	panic(Bailout{Err: &token.LocationError{
		Err:    fmt.Errorf(format, v...),
		Source: lex.lines.Location(lex.file, pos),
	}})
}

func (lex *Lexer) peekByte(off int) byte {
	if lex.pos+off < len(lex.src) {
		return lex.src[lex.pos+off]
	}
	return 0
}

func (lex *Lexer) lineEnd(from int) int {
	for i := from; i < len(lex.src); i++ {
		switch lex.src[i] {
		case '\n', '\r':
			return i
		}
		if strings.HasPrefix(lex.src[i:], "\u2028") || strings.HasPrefix(lex.src[i:], "\u2029") {
			return i
		}
	}
	return len(lex.src)
}

// skipTrivia consumes whitespace and comments and reports whether a line
// terminator was crossed.
func (lex *Lexer) skipTrivia() bool {
	newline := false
	for lex.pos < len(lex.src) {
		c := lex.src[lex.pos]
		switch {
		case c == '\n' || c == '\r':
			newline = true
			lex.pos++
		case c == ' ' || c == '\t' || c == '\v' || c == '\f':
			lex.pos++
		case c == '/' && lex.peekByte(1) == '/':
			end := lex.lineEnd(lex.pos)
			lex.Comments = append(lex.Comments, Comment{Pos: lex.pos, End: end, Text: lex.src[lex.pos:end]})
			lex.pos = end
		case c == '/' && lex.peekByte(1) == '*':
			rel := strings.Index(lex.src[lex.pos+2:], "*/")
			if rel < 0 {
				lex.Errorf(lex.pos, "unterminated comment")
			}
			end := lex.pos + 2 + rel + 2
			text := lex.src[lex.pos:end]
			if strings.ContainsAny(text, "\n\r\u2028\u2029") {
				newline = true
			}
			lex.Comments = append(lex.Comments, Comment{Pos: lex.pos, End: end, Text: text, Block: true})
			lex.pos = end
		case c < utf8.RuneSelf:
			return newline
		default:
			r, size := utf8.DecodeRuneInString(lex.src[lex.pos:])
			switch {
			case r == '\u2028' || r == '\u2029':
				newline = true
			case r == '\ufeff' || unicode.Is(unicode.Zs, r):
			default:
				return newline
			}
			lex.pos += size
		}
	}
	return newline
}

// Next advances to the next token in the regular (expression) context. A
// '/' is always returned as SLASH or SLASH_ASSIGN; the parser calls
// ScanRegExp when a regular expression is expected instead.
func (lex *Lexer) Next() {
	newline := lex.skipTrivia()
	lex.Value = ""
	lex.Escaped = false
	start := lex.pos
	typ := lex.scan()
	lex.tok = token.Token{
		Type:          typ,
		Text:          lex.src[start:lex.pos],
		Pos:           start,
		End:           lex.pos,
		NewlineBefore: newline,
	}
}

func (lex *Lexer) scan() token.Type {
	if lex.pos >= len(lex.src) {
		return token.EOF
	}
	c := lex.src[lex.pos]
	switch c {
	case '{':
		lex.pos++
		return token.BRACE_L
	case '}':
		lex.pos++
		return token.BRACE_R
	case '(':
		lex.pos++
		return token.PAREN_L
	case ')':
		lex.pos++
		return token.PAREN_R
	case '[':
		lex.pos++
		return token.BRACKET_L
	case ']':
		lex.pos++
		return token.BRACKET_R
	case ';':
		lex.pos++
		return token.SEMICOLON
	case ',':
		lex.pos++
		return token.COMMA
	case ':':
		lex.pos++
		return token.COLON
	case '~':
		lex.pos++
		return token.TILDE
	case '@':
		lex.pos++
		return token.AT
	case '.':
		if isDigit(lex.peekByte(1)) {
			return lex.scanNumber()
		}
		if lex.peekByte(1) == '.' && lex.peekByte(2) == '.' {
			lex.pos += 3
			return token.ELLIPSIS
		}
		lex.pos++
		return token.DOT
	case '?':
		switch {
		case lex.peekByte(1) == '?' && lex.peekByte(2) == '=':
			lex.pos += 3
			return token.NULLISH_ASSIGN
		case lex.peekByte(1) == '?':
			lex.pos += 2
			return token.NULLISH
		case lex.peekByte(1) == '.' && !isDigit(lex.peekByte(2)):
			lex.pos += 2
			return token.QUESTION_DOT
		}
		lex.pos++
		return token.QUESTION
	case '=':
		switch {
		case lex.peekByte(1) == '>':
			lex.pos += 2
			return token.ARROW
		case lex.peekByte(1) == '=' && lex.peekByte(2) == '=':
			lex.pos += 3
			return token.EQ_STRICT
		case lex.peekByte(1) == '=':
			lex.pos += 2
			return token.EQ
		}
		lex.pos++
		return token.ASSIGN
	case '!':
		switch {
		case lex.peekByte(1) == '=' && lex.peekByte(2) == '=':
			lex.pos += 3
			return token.NE_STRICT
		case lex.peekByte(1) == '=':
			lex.pos += 2
			return token.NE
		}
		lex.pos++
		return token.BANG
	case '+':
		return lex.operator(token.PLUS, token.PLUS_ASSIGN, '+', token.INC)
	case '-':
		return lex.operator(token.MINUS, token.MINUS_ASSIGN, '-', token.DEC)
	case '%':
		return lex.operator(token.PERCENT, token.PERCENT_ASSIGN, 0, 0)
	case '^':
		return lex.operator(token.CARET, token.CARET_ASSIGN, 0, 0)
	case '/':
		return lex.operator(token.SLASH, token.SLASH_ASSIGN, 0, 0)
	case '*':
		if lex.peekByte(1) == '*' {
			lex.pos++
			return lex.operator(token.STAR_STAR, token.STAR_STAR_ASSIGN, 0, 0)
		}
		return lex.operator(token.STAR, token.STAR_ASSIGN, 0, 0)
	case '&':
		if lex.peekByte(1) == '&' {
			lex.pos++
			return lex.operator(token.AND, token.AND_ASSIGN, 0, 0)
		}
		return lex.operator(token.AMP, token.AMP_ASSIGN, 0, 0)
	case '|':
		if lex.peekByte(1) == '|' {
			lex.pos++
			return lex.operator(token.OR, token.OR_ASSIGN, 0, 0)
		}
		return lex.operator(token.BAR, token.BAR_ASSIGN, 0, 0)
	case '<':
		if lex.peekByte(1) == '<' {
			lex.pos++
			return lex.operator(token.SHL, token.SHL_ASSIGN, 0, 0)
		}
		return lex.operator(token.LT, token.LE, 0, 0)
	case '>':
		if lex.peekByte(1) == '>' && lex.peekByte(2) == '>' {
			lex.pos += 2
			return lex.operator(token.SHR_UNSIGNED, token.SHR_UNSIGNED_ASSIGN, 0, 0)
		}
		if lex.peekByte(1) == '>' {
			lex.pos++
			return lex.operator(token.SHR, token.SHR_ASSIGN, 0, 0)
		}
		return lex.operator(token.GT, token.GE, 0, 0)
	case '\'', '"':
		return lex.scanString(c)
	case '`':
		lex.pos++
		return lex.scanTemplate(token.TEMPLATE_NOSUB, token.TEMPLATE_HEAD)
	case '#':
		lex.pos++
		if !lex.atIdentifierStart() {
			lex.Errorf(lex.pos-1, "invalid character '#'")
		}
		lex.scanIdentifierName()
		return token.PRIVATE_NAME
	}
	if isDigit(c) {
		return lex.scanNumber()
	}
	if lex.atIdentifierStart() {
		lex.scanIdentifierName()
		if !lex.Escaped {
			if kw, ok := token.Keywords[lex.Value]; ok {
				return kw
			}
		}
		return token.IDENT
	}
	r, _ := utf8.DecodeRuneInString(lex.src[lex.pos:])
	lex.Errorf(lex.pos, "unexpected character %q", r)
	return token.ERROR
}

// operator scans a one character operator which may be followed by '=' (the
// assignment form) or doubled (increment and decrement).
func (lex *Lexer) operator(single, assign token.Type, double byte, doubled token.Type) token.Type {
	lex.pos++
	switch {
	case lex.peekByte(0) == '=':
		lex.pos++
		return assign
	case double != 0 && lex.peekByte(0) == double:
		lex.pos++
		return doubled
	}
	return single
}

func (lex *Lexer) atIdentifierStart() bool {
	if lex.pos >= len(lex.src) {
		return false
	}
	c := lex.src[lex.pos]
	if c == '\\' {
		return lex.peekByte(1) == 'u'
	}
	if c < utf8.RuneSelf {
		return isIdentStart(rune(c))
	}
	r, _ := utf8.DecodeRuneInString(lex.src[lex.pos:])
	return isIdentStart(r)
}

func (lex *Lexer) scanIdentifierName() {
	var b strings.Builder
	start := lex.pos
	for lex.pos < len(lex.src) {
		c := lex.src[lex.pos]
		if c == '\\' {
			if lex.peekByte(1) != 'u' {
				lex.Errorf(lex.pos, "invalid escape in identifier")
			}
			if b.Len() == 0 {
				b.WriteString(lex.src[start:lex.pos])
			}
			lex.pos += 2
			b.WriteRune(lex.scanUnicodeEscape())
			lex.Escaped = true
			continue
		}
		r, size := rune(c), 1
		if c >= utf8.RuneSelf {
			r, size = utf8.DecodeRuneInString(lex.src[lex.pos:])
		}
		if lex.pos > start && !isIdentPart(r) || lex.pos == start && !isIdentStart(r) {
			break
		}
		if lex.Escaped {
			b.WriteRune(r)
		}
		lex.pos += size
	}
	if lex.Escaped {
		lex.Value = b.String()
	} else {
		lex.Value = lex.src[start:lex.pos]
	}
}

// scanUnicodeEscape decodes the part of a \u escape following "\u".
func (lex *Lexer) scanUnicodeEscape() rune {
	if lex.peekByte(0) == '{' {
		end := strings.IndexByte(lex.src[lex.pos:], '}')
		if end < 0 {
			lex.Errorf(lex.pos, "unterminated unicode escape")
		}
		v, err := strconv.ParseUint(lex.src[lex.pos+1:lex.pos+end], 16, 32)
		if err != nil || v > unicode.MaxRune {
			lex.Errorf(lex.pos, "invalid unicode escape")
		}
		lex.pos += end + 1
		return rune(v)
	}
	if lex.pos+4 > len(lex.src) {
		lex.Errorf(lex.pos, "invalid unicode escape")
	}
	v, err := strconv.ParseUint(lex.src[lex.pos:lex.pos+4], 16, 32)
	if err != nil {
		lex.Errorf(lex.pos, "invalid unicode escape")
	}
	lex.pos += 4
	return rune(v)
}

func (lex *Lexer) scanNumber() token.Type {
	start := lex.pos
	if lex.src[lex.pos] == '0' && lex.pos+1 < len(lex.src) {
		switch lex.src[lex.pos+1] | 0x20 {
		case 'x', 'o', 'b':
			lex.pos += 2
			for lex.pos < len(lex.src) && (isHexDigit(lex.src[lex.pos]) || lex.src[lex.pos] == '_') {
				lex.pos++
			}
			if lex.pos == start+2 {
				lex.Errorf(start, "invalid number literal")
			}
			return lex.numberSuffix(start)
		}
	}
	lex.digits()
	if lex.peekByte(0) == '.' {
		lex.pos++
		lex.digits()
	}
	if c := lex.peekByte(0); c == 'e' || c == 'E' {
		lex.pos++
		if c := lex.peekByte(0); c == '+' || c == '-' {
			lex.pos++
		}
		if !isDigit(lex.peekByte(0)) {
			lex.Errorf(start, "invalid number literal")
		}
		lex.digits()
	}
	return lex.numberSuffix(start)
}

func (lex *Lexer) numberSuffix(start int) token.Type {
	typ := token.NUMBER
	if lex.peekByte(0) == 'n' {
		lex.pos++
		typ = token.BIGINT
	}
	if lex.atIdentifierStart() || isDigit(lex.peekByte(0)) {
		lex.Errorf(start, "identifier directly after number")
	}
	return typ
}

func (lex *Lexer) digits() {
	for lex.pos < len(lex.src) && (isDigit(lex.src[lex.pos]) || lex.src[lex.pos] == '_') {
		lex.pos++
	}
}

func (lex *Lexer) scanString(quote byte) token.Type {
	start := lex.pos
	lex.pos++
	var b strings.Builder
	for {
		if lex.pos >= len(lex.src) {
			lex.Errorf(start, "unterminated string literal")
		}
		c := lex.src[lex.pos]
		switch c {
		case quote:
			lex.pos++
			lex.Value = b.String()
			return token.STRING
		case '\n', '\r':
			lex.Errorf(start, "unterminated string literal")
		case '\\':
			lex.pos++
			lex.escape(&b)
		default:
			b.WriteByte(c)
			lex.pos++
		}
	}
}

// escape decodes one escape sequence; lex.pos is just past the backslash.
func (lex *Lexer) escape(b *strings.Builder) {
	if lex.pos >= len(lex.src) {
		lex.Errorf(lex.pos, "unterminated escape sequence")
	}
	c := lex.src[lex.pos]
	lex.pos++
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		if !isDigit(lex.peekByte(0)) {
			b.WriteByte(0)
			return
		}
		b.WriteByte(c)
	case 'x':
		if lex.pos+2 > len(lex.src) {
			lex.Errorf(lex.pos, "invalid hex escape")
		}
		v, err := strconv.ParseUint(lex.src[lex.pos:lex.pos+2], 16, 8)
		if err != nil {
			lex.Errorf(lex.pos, "invalid hex escape")
		}
		b.WriteRune(rune(v))
		lex.pos += 2
	case 'u':
		b.WriteRune(lex.scanUnicodeEscape())
	case '\r':
		if lex.peekByte(0) == '\n' {
			lex.pos++
		}
	case '\n':
	default:
		lex.pos--
		r, size := utf8.DecodeRuneInString(lex.src[lex.pos:])
		lex.pos += size
		if r != '\u2028' && r != '\u2029' {
			b.WriteRune(r)
		}
	}
}

// scanTemplate scans template characters up to the closing backtick or the
// next substitution. lex.pos is just past the opening '`' or '}'.
func (lex *Lexer) scanTemplate(whole, head token.Type) token.Type {
	start := lex.pos
	var b strings.Builder
	for {
		if lex.pos >= len(lex.src) {
			lex.Errorf(start-1, "unterminated template literal")
		}
		c := lex.src[lex.pos]
		switch {
		case c == '`':
			lex.pos++
			lex.Value = b.String()
			return whole
		case c == '$' && lex.peekByte(1) == '{':
			lex.pos += 2
			lex.Value = b.String()
			return head
		case c == '\\':
			lex.pos++
			lex.escape(&b)
		default:
			b.WriteByte(c)
			lex.pos++
		}
	}
}

// RescanTemplateContinuation turns the current '}' into the continuation of
// a template literal, producing TEMPLATE_MIDDLE or TEMPLATE_TAIL.
func (lex *Lexer) RescanTemplateContinuation() {
	if lex.tok.Type != token.BRACE_R {
		lex.Errorf(lex.tok.Pos, "expected '}' in template literal")
	}
	lex.pos = lex.tok.Pos + 1
	typ := lex.scanTemplate(token.TEMPLATE_TAIL, token.TEMPLATE_MIDDLE)
	lex.tok.Type = typ
	lex.tok.End = lex.pos
	lex.tok.Text = lex.src[lex.tok.Pos:lex.pos]
}

// ScanRegExp rescans the current SLASH or SLASH_ASSIGN token as a regular
// expression literal.
func (lex *Lexer) ScanRegExp() {
	start := lex.tok.Pos
	lex.pos = start + 1
	inClass := false
	for {
		if lex.pos >= len(lex.src) {
			lex.Errorf(start, "unterminated regular expression")
		}
		c := lex.src[lex.pos]
		switch {
		case c == '\n' || c == '\r':
			lex.Errorf(start, "unterminated regular expression")
		case c == '\\':
			lex.pos++
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			lex.pos++
			for lex.pos < len(lex.src) && isIdentPart(rune(lex.src[lex.pos])) {
				lex.pos++
			}
			lex.tok.Type = token.REGEXP
			lex.tok.End = lex.pos
			lex.tok.Text = lex.src[start:lex.pos]
			lex.Value = lex.tok.Text
			return
		}
		lex.pos++
	}
}

// NextInsideJSXElement advances inside a JSX tag, where names may contain
// dashes and strings have no escapes.
func (lex *Lexer) NextInsideJSXElement() {
	newline := lex.skipTrivia()
	lex.Value = ""
	lex.Escaped = false
	start := lex.pos
	var typ token.Type
	switch c := lex.peekByte(0); {
	case lex.pos >= len(lex.src):
		typ = token.EOF
	case c == '\'' || c == '"':
		end := strings.IndexByte(lex.src[lex.pos+1:], c)
		if end < 0 {
			lex.Errorf(start, "unterminated string literal")
		}
		lex.Value = lex.src[lex.pos+1 : lex.pos+1+end]
		lex.pos += end + 2
		typ = token.STRING
	case lex.atIdentifierStart():
		lex.scanIdentifierName()
		for lex.peekByte(0) == '-' {
			lex.pos++
			for lex.pos < len(lex.src) && (isIdentPart(rune(lex.src[lex.pos])) || lex.src[lex.pos] == '-') {
				lex.pos++
			}
		}
		lex.Value = lex.src[start:lex.pos]
		typ = token.IDENT
	default:
		switch c {
		case '<':
			typ = token.LT
		case '>':
			typ = token.GT
		case '/':
			typ = token.SLASH
		case '{':
			typ = token.BRACE_L
		case '}':
			typ = token.BRACE_R
		case '=':
			typ = token.ASSIGN
		case ':':
			typ = token.COLON
		case '.':
			typ = token.DOT
		default:
			lex.Errorf(start, "unexpected character %q in JSX element", c)
		}
		lex.pos++
	}
	lex.tok = token.Token{Type: typ, Text: lex.src[start:lex.pos], Pos: start, End: lex.pos, NewlineBefore: newline}
}

// NextJSXChild advances over JSX element children: text up to the next '<'
// or '{' is returned as a single JSX_TEXT token.
func (lex *Lexer) NextJSXChild() {
	lex.Value = ""
	lex.Escaped = false
	start := lex.pos
	var typ token.Type
	switch {
	case lex.pos >= len(lex.src):
		typ = token.EOF
	case lex.src[lex.pos] == '<':
		lex.pos++
		typ = token.LT
	case lex.src[lex.pos] == '{':
		lex.pos++
		typ = token.BRACE_L
	default:
		end := strings.IndexAny(lex.src[lex.pos:], "<{")
		if end < 0 {
			end = len(lex.src) - lex.pos
		}
		lex.pos += end
		lex.Value = lex.src[start:lex.pos]
		typ = token.JSX_TEXT
	}
	lex.tok = token.Token{Type: typ, Text: lex.src[start:lex.pos], Pos: start, End: lex.pos}
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || 'a' <= c|0x20 && c|0x20 <= 'f'
}

func isIdentStart(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '$', r == '_':
		return true
	case r < utf8.RuneSelf:
		return false
	}
	return unicode.IsLetter(r) || unicode.Is(unicode.Nl, r) || unicode.Is(unicode.Other_ID_Start, r)
}

func isIdentPart(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '$', r == '_':
		return true
	case r < utf8.RuneSelf:
		return false
	case r == '\u200c' || r == '\u200d':
		return true
	}
	return isIdentStart(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) ||
		unicode.Is(unicode.Nd, r) || unicode.Is(unicode.Pc, r)
}

// IsIdentifier reports whether text is a valid identifier name.
func IsIdentifier(text string) bool {
	if text == "" {
		return false
	}
	for i, r := range text {
		if i == 0 && !isIdentStart(r) || i > 0 && !isIdentPart(r) {
			return false
		}
	}
	return true
}
