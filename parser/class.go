// Copyright © 2024 The ELPS authors

package parser

import (
	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/parser/token"
)

// parseClass parses a class declaration or expression starting at the
// `class` keyword.
func (p *Parser) parseClass(start int, isStatement bool) ast.NodeID {
	return p.parseClassNamed(start, isStatement, isStatement)
}

func (p *Parser) parseClassNamed(start int, isStatement, requireName bool) ast.NodeID {
	p.expect(token.CLASS)
	id := ast.NoNode
	if p.at(token.IDENT) {
		id = p.leaf(ast.BindingIdentifier, p.lex.Value)
	} else if requireName {
		p.errorf("expected class name but found %s", p.describe())
	}
	super := ast.NoNode
	if p.eat(token.EXTENDS) {
		super = p.parseLeftHandSide()
	}

	p.expect(token.BRACE_L)
	var members []ast.NodeID
	hasConstructor := false
	for !p.at(token.BRACE_R) {
		if p.eat(token.SEMICOLON) {
			continue
		}
		if p.at(token.EOF) {
			p.unexpected()
		}
		m := p.parseClassMember()
		n := p.node(m)
		if n.Kind == ast.MethodDefinition && n.Op == "constructor" {
			if hasConstructor {
				p.errorAt(n.Span.Start, "a class may only have one constructor")
			}
			hasConstructor = true
		}
		members = append(members, m)
	}
	p.next()

	kind := ast.ClassExpression
	if isStatement {
		kind = ast.ClassDeclaration
	}
	return p.add(start, ast.Node{Kind: kind, A: id, B: super, List: members})
}

// isModifierFollower reports whether the token after a contextual modifier
// (static, get, set, async) means the modifier is actually a member name.
func isModifierFollower(tok token.Token) bool {
	switch tok.Type {
	case token.PAREN_L, token.ASSIGN, token.SEMICOLON, token.BRACE_R, token.EOF:
		return true
	}
	return false
}

func (p *Parser) parseClassMember() ast.NodeID {
	start := p.tok().Pos
	var flags ast.Flags

	if p.isContextual("static") {
		next := p.peek()
		if next.Type == token.BRACE_L {
			p.next()
			return p.parseStaticBlock(start)
		}
		if !isModifierFollower(next) {
			p.next()
			flags |= ast.FlagStatic
		}
	}

	op := "method"
	async, generator := false, false
	if p.at(token.IDENT) && !p.lex.Escaped {
		switch p.lex.Value {
		case "get", "set", "async":
			next := p.peek()
			if !isModifierFollower(next) && !(p.lex.Value == "async" && next.NewlineBefore) {
				if p.lex.Value == "async" {
					async = true
				} else {
					op = p.lex.Value
				}
				p.next()
			}
		}
	}
	if p.eat(token.STAR) {
		generator = true
	}

	keyTok := p.tok()
	key, computed := p.parsePropertyKey()
	if computed {
		flags |= ast.FlagComputed
	}

	if p.at(token.PAREN_L) {
		if op == "method" && !computed && flags&ast.FlagStatic == 0 && p.isConstructorKey(key) {
			if async || generator {
				p.errorAt(keyTok.Pos, "constructor can't be an async method or generator")
			}
			op = "constructor"
		}
		fn := p.parseMethodFunction(keyTok.Pos, async, generator)
		return p.add(start, ast.Node{Kind: ast.MethodDefinition, Op: op, Flags: flags, A: key, B: fn})
	}
	if op != "method" || async || generator {
		p.errorf("expected \"(\" but found %s", p.describe())
	}

	value := ast.NoNode
	if p.eat(token.ASSIGN) {
		// Initializers behave like the body of a method: no yield or await.
		saved := p.enterFunction(false, false)
		value = p.parseAssign()
		p.leaveFunction(saved)
	}
	p.semicolon()
	return p.add(start, ast.Node{Kind: ast.PropertyDefinition, Flags: flags, A: key, B: value})
}

func (p *Parser) isConstructorKey(key ast.NodeID) bool {
	n := p.node(key)
	return (n.Kind == ast.IdentifierName || n.Kind == ast.StringLiteral) && n.Name == "constructor"
}

// parseStaticBlock parses `{ ... }` after `static`.
func (p *Parser) parseStaticBlock(start int) ast.NodeID {
	p.expect(token.BRACE_L)
	saved := p.enterFunction(false, false)
	p.inFunction = false
	var body []ast.NodeID
	for !p.at(token.BRACE_R) {
		if p.at(token.EOF) {
			p.unexpected()
		}
		body = append(body, p.parseStatementListItem(false))
	}
	p.leaveFunction(saved)
	p.next()
	return p.add(start, ast.Node{Kind: ast.StaticBlock, List: body})
}
