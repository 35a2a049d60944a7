// Copyright © 2024 The ELPS authors

package token

import "fmt"

// Token is a lexeme produced by the JavaScript lexer. Pos and End are byte
// offsets into the source. NewlineBefore records whether a line terminator
// separated this token from the previous one, which drives automatic
// semicolon insertion and the restricted productions.
type Token struct {
	Type          Type
	Text          string
	Pos           int
	End           int
	NewlineBefore bool
}

type Type uint

// Type constants used for the JavaScript lexer/parser.
const (
	INVALID Type = iota
	ERROR
	EOF

	HASH_BANG

	// Literals
	IDENT
	PRIVATE_NAME
	NUMBER
	BIGINT
	STRING
	REGEXP
	TEMPLATE_NOSUB
	TEMPLATE_HEAD
	TEMPLATE_MIDDLE
	TEMPLATE_TAIL

	// JSX
	JSX_TEXT

	// Punctuation
	BRACE_L
	BRACE_R
	PAREN_L
	PAREN_R
	BRACKET_L
	BRACKET_R
	DOT
	ELLIPSIS
	SEMICOLON
	COMMA
	LT
	GT
	LE
	GE
	EQ
	NE
	EQ_STRICT
	NE_STRICT
	PLUS
	MINUS
	STAR
	STAR_STAR
	SLASH
	PERCENT
	INC
	DEC
	SHL
	SHR
	SHR_UNSIGNED
	AMP
	BAR
	CARET
	BANG
	TILDE
	AND
	OR
	NULLISH
	QUESTION
	QUESTION_DOT
	COLON
	ARROW
	AT

	// Assignment
	ASSIGN
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	STAR_STAR_ASSIGN
	SLASH_ASSIGN
	PERCENT_ASSIGN
	SHL_ASSIGN
	SHR_ASSIGN
	SHR_UNSIGNED_ASSIGN
	AMP_ASSIGN
	BAR_ASSIGN
	CARET_ASSIGN
	AND_ASSIGN
	OR_ASSIGN
	NULLISH_ASSIGN

	// Reserved words
	BREAK
	CASE
	CATCH
	CLASS
	CONST
	CONTINUE
	DEBUGGER
	DEFAULT
	DELETE
	DO
	ELSE
	ENUM
	EXPORT
	EXTENDS
	FALSE
	FINALLY
	FOR
	FUNCTION
	IF
	IMPORT
	IN
	INSTANCEOF
	NEW
	NULL
	RETURN
	SUPER
	SWITCH
	THIS
	THROW
	TRUE
	TRY
	TYPEOF
	VAR
	VOID
	WHILE
	WITH

	numTokenTypes
)

var typeStrings = [numTokenTypes]string{
	INVALID:             "invalid",
	ERROR:               "error",
	EOF:                 "EOF",
	HASH_BANG:           "#!",
	IDENT:               "identifier",
	PRIVATE_NAME:        "private name",
	NUMBER:              "number",
	BIGINT:              "bigint",
	STRING:              "string",
	REGEXP:              "regexp",
	TEMPLATE_NOSUB:      "template",
	TEMPLATE_HEAD:       "template head",
	TEMPLATE_MIDDLE:     "template middle",
	TEMPLATE_TAIL:       "template tail",
	JSX_TEXT:            "jsx text",
	BRACE_L:             "{",
	BRACE_R:             "}",
	PAREN_L:             "(",
	PAREN_R:             ")",
	BRACKET_L:           "[",
	BRACKET_R:           "]",
	DOT:                 ".",
	ELLIPSIS:            "...",
	SEMICOLON:           ";",
	COMMA:               ",",
	LT:                  "<",
	GT:                  ">",
	LE:                  "<=",
	GE:                  ">=",
	EQ:                  "==",
	NE:                  "!=",
	EQ_STRICT:           "===",
	NE_STRICT:           "!==",
	PLUS:                "+",
	MINUS:               "-",
	STAR:                "*",
	STAR_STAR:           "**",
	SLASH:               "/",
	PERCENT:             "%",
	INC:                 "++",
	DEC:                 "--",
	SHL:                 "<<",
	SHR:                 ">>",
	SHR_UNSIGNED:        ">>>",
	AMP:                 "&",
	BAR:                 "|",
	CARET:               "^",
	BANG:                "!",
	TILDE:               "~",
	AND:                 "&&",
	OR:                  "||",
	NULLISH:             "??",
	QUESTION:            "?",
	QUESTION_DOT:        "?.",
	COLON:               ":",
	ARROW:               "=>",
	AT:                  "@",
	ASSIGN:              "=",
	PLUS_ASSIGN:         "+=",
	MINUS_ASSIGN:        "-=",
	STAR_ASSIGN:         "*=",
	STAR_STAR_ASSIGN:    "**=",
	SLASH_ASSIGN:        "/=",
	PERCENT_ASSIGN:      "%=",
	SHL_ASSIGN:          "<<=",
	SHR_ASSIGN:          ">>=",
	SHR_UNSIGNED_ASSIGN: ">>>=",
	AMP_ASSIGN:          "&=",
	BAR_ASSIGN:          "|=",
	CARET_ASSIGN:        "^=",
	AND_ASSIGN:          "&&=",
	OR_ASSIGN:           "||=",
	NULLISH_ASSIGN:      "??=",
	BREAK:               "break",
	CASE:                "case",
	CATCH:               "catch",
	CLASS:               "class",
	CONST:               "const",
	CONTINUE:            "continue",
	DEBUGGER:            "debugger",
	DEFAULT:             "default",
	DELETE:              "delete",
	DO:                  "do",
	ELSE:                "else",
	ENUM:                "enum",
	EXPORT:              "export",
	EXTENDS:             "extends",
	FALSE:               "false",
	FINALLY:             "finally",
	FOR:                 "for",
	FUNCTION:            "function",
	IF:                  "if",
	IMPORT:              "import",
	IN:                  "in",
	INSTANCEOF:          "instanceof",
	NEW:                 "new",
	NULL:                "null",
	RETURN:              "return",
	SUPER:               "super",
	SWITCH:              "switch",
	THIS:                "this",
	THROW:               "throw",
	TRUE:                "true",
	TRY:                 "try",
	TYPEOF:              "typeof",
	VAR:                 "var",
	VOID:                "void",
	WHILE:               "while",
	WITH:                "with",
}

func (typ Type) String() string {
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// IsKeyword reports whether typ is a reserved word.
func (typ Type) IsKeyword() bool {
	return typ >= BREAK && typ < numTokenTypes
}

// IsAssign reports whether typ is an assignment operator.
func (typ Type) IsAssign() bool {
	return typ >= ASSIGN && typ <= NULLISH_ASSIGN
}

// Keywords maps reserved words to their token type.
var Keywords = map[string]Type{}

func init() {
	for typ := BREAK; typ < numTokenTypes; typ++ {
		Keywords[typeStrings[typ]] = typ
	}
}

// StrictModeReservedWords may not be used as binding names in strict code.
var StrictModeReservedWords = map[string]bool{
	"implements": true,
	"interface":  true,
	"let":        true,
	"package":    true,
	"private":    true,
	"protected":  true,
	"public":     true,
	"static":     true,
	"yield":      true,
}

type Location struct {
	File string // a name representing the source stream
	Path string // a physical location which may differ from File
	Pos  int
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
