// Copyright © 2024 The ELPS authors

// Package parser implements a recursive descent JavaScript parser producing
// an arena allocated ast.Program.
//
// The parser accepts ES2022 scripts and modules, JSX when the source type
// enables it, and the `import type` / `export type` forms of TypeScript. It
// stops at the first syntax error and reports it with a source location.
package parser

import (
	"errors"
	"fmt"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/parser/lexer"
	"github.com/luthersystems/jsscope/parser/token"
)

// Option configures a parse.
type Option func(*Parser)

// WithSourceType overrides the source type inferred from the file name.
func WithSourceType(st ast.SourceType) Option {
	return func(p *Parser) {
		p.sourceType = st
	}
}

// Parser holds the state of a single parse. It is not reusable.
type Parser struct {
	file       string
	src        []byte
	lines      *token.LineIndex
	lex        *lexer.Lexer
	arena      *ast.Arena
	sourceType ast.SourceType

	prevEnd int // end offset of the last consumed token

	noIn        bool
	inFunction  bool
	inGenerator bool
	inAsync     bool
}

// Parse parses src as the contents of file. The source type is inferred
// from the file extension unless WithSourceType is given.
func Parse(file string, src []byte, opts ...Option) (prog *ast.Program, err error) {
	p := &Parser{
		file:       file,
		src:        src,
		lines:      token.NewLineIndex(src),
		arena:      ast.NewArena(len(src) / 4),
		sourceType: ast.SourceTypeFromPath(file),
	}
	for _, opt := range opts {
		opt(p)
	}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(lexer.Bailout)
			if !ok {
				panic(r)
			}
			prog, err = nil, b.Err
		}
	}()
	p.lex = lexer.New(file, src, p.lines)
	root := p.parseProgram()
	prog = &ast.Program{
		Arena:      p.arena,
		Root:       root,
		File:       file,
		Source:     src,
		SourceType: p.sourceType,
		Lines:      p.lines,
	}
	for _, c := range p.lex.Comments {
		prog.Comments = append(prog.Comments, ast.Comment{
			Span:  ast.Span{Start: c.Pos, End: c.End},
			Text:  c.Text,
			Block: c.Block,
		})
	}
	return prog, nil
}

// IsSyntaxError reports whether err was produced by a failed parse and
// returns its location.
func IsSyntaxError(err error) (*token.LocationError, bool) {
	var lerr *token.LocationError
	if errors.As(err, &lerr) {
		return lerr, true
	}
	return nil, false
}

func (p *Parser) parseProgram() ast.NodeID {
	body, strict := p.parseDirectivesAndStatements(token.EOF, true)
	n := ast.Node{Kind: ast.ProgramNode, List: body, Span: ast.Span{Start: 0, End: len(p.src)}}
	if strict {
		n.Flags |= ast.FlagUseStrict
	}
	return p.arena.Add(n)
}

// parseDirectivesAndStatements parses a statement list terminated by end,
// recognizing a leading directive prologue.
func (p *Parser) parseDirectivesAndStatements(end token.Type, topLevel bool) ([]ast.NodeID, bool) {
	var body []ast.NodeID
	strict := false
	prologue := true
	for !p.at(end) {
		if p.at(token.EOF) {
			p.unexpected()
		}
		isString := p.at(token.STRING)
		raw := ""
		if isString {
			raw = p.lex.Raw()
		}
		stmt := p.parseStatementListItem(topLevel)
		if prologue {
			if isString && p.isDirective(stmt) {
				p.arena.Node(stmt).Flags |= ast.FlagDirective
				if raw == `"use strict"` || raw == `'use strict'` {
					strict = true
				}
			} else {
				prologue = false
			}
		}
		body = append(body, stmt)
	}
	return body, strict
}

func (p *Parser) isDirective(stmt ast.NodeID) bool {
	n := p.arena.Node(stmt)
	if n.Kind != ast.ExpressionStatement {
		return false
	}
	expr := p.arena.Node(n.A)
	return expr.Kind == ast.StringLiteral && !expr.Flags.Has(ast.FlagParenthesized)
}

// --- token helpers ---

func (p *Parser) tok() token.Token {
	return p.lex.Token()
}

func (p *Parser) at(typ token.Type) bool {
	return p.lex.Type() == typ
}

func (p *Parser) next() {
	p.prevEnd = p.lex.Token().End
	p.lex.Next()
}

func (p *Parser) nextInsideJSXElement() {
	p.prevEnd = p.lex.Token().End
	p.lex.NextInsideJSXElement()
}

func (p *Parser) nextJSXChild() {
	p.prevEnd = p.lex.Token().End
	p.lex.NextJSXChild()
}

func (p *Parser) eat(typ token.Type) bool {
	if p.at(typ) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(typ token.Type) {
	if !p.at(typ) {
		p.errorf("expected %q but found %s", typ, p.describe())
	}
	p.next()
}

// isContextual reports whether the current token is the unescaped
// identifier name.
func (p *Parser) isContextual(name string) bool {
	return p.at(token.IDENT) && !p.lex.Escaped && p.lex.Value == name
}

func (p *Parser) expectContextual(name string) {
	if !p.isContextual(name) {
		p.errorf("expected %q but found %s", name, p.describe())
	}
	p.next()
}

// isIdentifierName reports whether the current token can be used where an
// IdentifierName (which includes reserved words) is expected.
func (p *Parser) isIdentifierName() bool {
	return p.at(token.IDENT) || p.lex.Type().IsKeyword()
}

// identifierNameValue returns the name of the current identifier or keyword.
func (p *Parser) identifierNameValue() string {
	if p.at(token.IDENT) {
		return p.lex.Value
	}
	return p.tok().Text
}

// peek returns the token after the current one without consuming anything.
func (p *Parser) peek() token.Token {
	state := p.lex.Save()
	p.lex.Next()
	tok := p.lex.Token()
	p.lex.Restore(state)
	return tok
}

// semicolon consumes a statement terminator, applying automatic semicolon
// insertion.
func (p *Parser) semicolon() {
	if p.eat(token.SEMICOLON) {
		return
	}
	if p.at(token.BRACE_R) || p.at(token.EOF) || p.tok().NewlineBefore {
		return
	}
	p.errorf("expected \";\" but found %s", p.describe())
}

func (p *Parser) describe() string {
	switch p.lex.Type() {
	case token.EOF:
		return "end of file"
	case token.IDENT, token.STRING, token.NUMBER:
		return fmt.Sprintf("%q", p.tok().Text)
	}
	return fmt.Sprintf("%q", p.lex.Type().String())
}

func (p *Parser) unexpected() {
	p.errorf("unexpected %s", p.describe())
}

func (p *Parser) errorf(format string, v ...interface{}) {
	p.lex.Errorf(p.tok().Pos, format, v...)
}

func (p *Parser) errorAt(pos int, format string, v ...interface{}) {
	p.lex.Errorf(pos, format, v...)
}

// add stores n with a span from start to the end of the last consumed token.
func (p *Parser) add(start int, n ast.Node) ast.NodeID {
	n.Span = ast.Span{Start: start, End: p.prevEnd}
	return p.arena.Add(n)
}

// leaf allocates a leaf node covering the current token and advances.
func (p *Parser) leaf(kind ast.Kind, name string) ast.NodeID {
	tok := p.tok()
	id := p.arena.Add(ast.Node{Kind: kind, Name: name, Span: ast.Span{Start: tok.Pos, End: tok.End}})
	p.next()
	return id
}

func (p *Parser) node(id ast.NodeID) *ast.Node {
	return p.arena.Node(id)
}

type functionContext struct {
	inFunction, inGenerator, inAsync, noIn bool
}

func (p *Parser) enterFunction(async, generator bool) functionContext {
	saved := functionContext{p.inFunction, p.inGenerator, p.inAsync, p.noIn}
	p.inFunction = true
	p.inAsync = async
	p.inGenerator = generator
	p.noIn = false
	return saved
}

func (p *Parser) leaveFunction(saved functionContext) {
	p.inFunction = saved.inFunction
	p.inGenerator = saved.inGenerator
	p.inAsync = saved.inAsync
	p.noIn = saved.noIn
}
