// Copyright © 2024 The ELPS authors

package parser

import (
	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/parser/token"
)

// parseStatementListItem parses a statement or a declaration. Module items
// (import and export) are only accepted at the top level.
func (p *Parser) parseStatementListItem(topLevel bool) ast.NodeID {
	switch {
	case p.at(token.IMPORT) && topLevel:
		next := p.peek().Type
		if next != token.PAREN_L && next != token.DOT {
			return p.parseImportDeclaration()
		}
	case p.at(token.EXPORT) && topLevel:
		return p.parseExportDeclaration()
	}
	return p.parseStatement()
}

func (p *Parser) parseStatement() ast.NodeID {
	start := p.tok().Pos
	switch p.lex.Type() {
	case token.BRACE_L:
		return p.parseBlock()
	case token.SEMICOLON:
		p.next()
		return p.add(start, ast.Node{Kind: ast.EmptyStatement})
	case token.VAR, token.CONST:
		decl := p.parseVariableDeclaration(p.tok().Text)
		p.semicolon()
		p.node(decl).Span.End = p.prevEnd
		return decl
	case token.FUNCTION:
		return p.parseFunction(start, false, true)
	case token.CLASS:
		return p.parseClass(start, true)
	case token.IF:
		p.next()
		p.expect(token.PAREN_L)
		test := p.parseExpression()
		p.expect(token.PAREN_R)
		cons := p.parseStatement()
		alt := ast.NoNode
		if p.eat(token.ELSE) {
			alt = p.parseStatement()
		}
		return p.add(start, ast.Node{Kind: ast.IfStatement, A: test, B: cons, C: alt})
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		p.next()
		p.expect(token.PAREN_L)
		test := p.parseExpression()
		p.expect(token.PAREN_R)
		body := p.parseStatement()
		return p.add(start, ast.Node{Kind: ast.WhileStatement, A: test, D: body})
	case token.DO:
		p.next()
		body := p.parseStatement()
		p.expect(token.WHILE)
		p.expect(token.PAREN_L)
		test := p.parseExpression()
		p.expect(token.PAREN_R)
		p.eat(token.SEMICOLON)
		return p.add(start, ast.Node{Kind: ast.DoWhileStatement, A: test, D: body})
	case token.RETURN:
		if !p.inFunction {
			p.errorf("return outside of function")
		}
		p.next()
		arg := ast.NoNode
		if !p.at(token.SEMICOLON) && !p.at(token.BRACE_R) && !p.at(token.EOF) && !p.tok().NewlineBefore {
			arg = p.parseExpression()
		}
		p.semicolon()
		return p.add(start, ast.Node{Kind: ast.ReturnStatement, A: arg})
	case token.THROW:
		p.next()
		if p.tok().NewlineBefore {
			p.errorf("illegal newline after throw")
		}
		arg := p.parseExpression()
		p.semicolon()
		return p.add(start, ast.Node{Kind: ast.ThrowStatement, A: arg})
	case token.BREAK, token.CONTINUE:
		kind := ast.BreakStatement
		if p.at(token.CONTINUE) {
			kind = ast.ContinueStatement
		}
		p.next()
		label := ast.NoNode
		if p.at(token.IDENT) && !p.tok().NewlineBefore {
			label = p.leaf(ast.LabelIdentifier, p.lex.Value)
		}
		p.semicolon()
		return p.add(start, ast.Node{Kind: kind, A: label})
	case token.TRY:
		return p.parseTry()
	case token.SWITCH:
		return p.parseSwitch()
	case token.WITH:
		p.next()
		p.expect(token.PAREN_L)
		obj := p.parseExpression()
		p.expect(token.PAREN_R)
		body := p.parseStatement()
		return p.add(start, ast.Node{Kind: ast.WithStatement, A: obj, D: body})
	case token.DEBUGGER:
		p.next()
		p.semicolon()
		return p.add(start, ast.Node{Kind: ast.DebuggerStatement})
	case token.IDENT:
		switch {
		case p.isContextual("let") && p.letStartsDeclaration():
			decl := p.parseVariableDeclaration("let")
			p.semicolon()
			p.node(decl).Span.End = p.prevEnd
			return decl
		case p.isContextual("async"):
			next := p.peek()
			if next.Type == token.FUNCTION && !next.NewlineBefore {
				p.next()
				return p.parseFunction(start, true, true)
			}
		}
	}

	expr := p.parseExpression()
	if p.at(token.COLON) && p.node(expr).Kind == ast.Identifier && !p.node(expr).Flags.Has(ast.FlagParenthesized) {
		p.node(expr).Kind = ast.LabelIdentifier
		p.next()
		body := p.parseStatement()
		return p.add(start, ast.Node{Kind: ast.LabeledStatement, A: expr, D: body})
	}
	p.semicolon()
	return p.add(start, ast.Node{Kind: ast.ExpressionStatement, A: expr})
}

// letStartsDeclaration reports whether the contextual `let` under the cursor
// begins a lexical declaration rather than naming a variable.
func (p *Parser) letStartsDeclaration() bool {
	switch p.peek().Type {
	case token.BRACKET_L, token.BRACE_L, token.IDENT:
		return true
	}
	return false
}

func (p *Parser) parseBlock() ast.NodeID {
	start := p.tok().Pos
	p.expect(token.BRACE_L)
	var body []ast.NodeID
	for !p.at(token.BRACE_R) {
		if p.at(token.EOF) {
			p.unexpected()
		}
		body = append(body, p.parseStatementListItem(false))
	}
	p.next()
	return p.add(start, ast.Node{Kind: ast.BlockStatement, List: body})
}

// parseFunctionBody parses a braced function body with its directive
// prologue. The body is represented as a BlockStatement flagged
// FlagUseStrict when the prologue contains "use strict".
func (p *Parser) parseFunctionBody() ast.NodeID {
	start := p.tok().Pos
	p.expect(token.BRACE_L)
	body, strict := p.parseDirectivesAndStatements(token.BRACE_R, false)
	p.next()
	n := ast.Node{Kind: ast.BlockStatement, List: body}
	if strict {
		n.Flags |= ast.FlagUseStrict
	}
	return p.add(start, n)
}

// parseVariableDeclaration parses `var`, `let` or `const` followed by one or
// more declarators. The terminating semicolon is left to the caller.
func (p *Parser) parseVariableDeclaration(kind string) ast.NodeID {
	start := p.tok().Pos
	p.next()
	var decls []ast.NodeID
	for {
		dstart := p.tok().Pos
		target := p.parseBindingTarget()
		init := ast.NoNode
		if p.eat(token.ASSIGN) {
			init = p.parseAssign()
		}
		decls = append(decls, p.add(dstart, ast.Node{Kind: ast.VariableDeclarator, A: target, B: init}))
		if !p.eat(token.COMMA) {
			break
		}
	}
	return p.add(start, ast.Node{Kind: ast.VariableDeclaration, Op: kind, List: decls})
}

func (p *Parser) parseFor() ast.NodeID {
	start := p.tok().Pos
	p.next()
	var flags ast.Flags
	if p.isContextual("await") {
		if !p.inAsync && !(p.sourceType.Module && !p.inFunction) {
			p.errorf("for await is only valid in async functions")
		}
		flags |= ast.FlagAwait
		p.next()
	}
	p.expect(token.PAREN_L)

	init := ast.NoNode
	isDecl := false
	if !p.at(token.SEMICOLON) {
		saved := p.noIn
		p.noIn = true
		switch {
		case p.at(token.VAR), p.at(token.CONST):
			init = p.parseVariableDeclaration(p.tok().Text)
			isDecl = true
		case p.isContextual("let") && p.letStartsDeclaration():
			init = p.parseVariableDeclaration("let")
			isDecl = true
		default:
			init = p.parseExpression()
		}
		p.noIn = saved
	}

	if p.at(token.IN) || p.isContextual("of") {
		kind := ast.ForInStatement
		if p.isContextual("of") {
			kind = ast.ForOfStatement
		}
		if isDecl {
			if len(p.node(init).List) != 1 {
				p.errorf("only one variable declaration allowed in for-%s loop", p.tok().Text)
			}
		} else {
			p.toAssignmentTarget(init)
		}
		p.next()
		var right ast.NodeID
		if kind == ast.ForOfStatement {
			right = p.parseAssign()
		} else {
			right = p.parseExpression()
		}
		p.expect(token.PAREN_R)
		body := p.parseStatement()
		return p.add(start, ast.Node{Kind: kind, Flags: flags, A: init, B: right, D: body})
	}

	p.expect(token.SEMICOLON)
	test := ast.NoNode
	if !p.at(token.SEMICOLON) {
		test = p.parseExpression()
	}
	p.expect(token.SEMICOLON)
	update := ast.NoNode
	if !p.at(token.PAREN_R) {
		update = p.parseExpression()
	}
	p.expect(token.PAREN_R)
	body := p.parseStatement()
	return p.add(start, ast.Node{Kind: ast.ForStatement, A: init, B: test, C: update, D: body})
}

func (p *Parser) parseTry() ast.NodeID {
	start := p.tok().Pos
	p.next()
	block := p.parseBlock()
	handler := ast.NoNode
	if p.at(token.CATCH) {
		cstart := p.tok().Pos
		p.next()
		param := ast.NoNode
		if p.eat(token.PAREN_L) {
			param = p.parseBindingTarget()
			p.expect(token.PAREN_R)
		}
		body := p.parseBlock()
		handler = p.add(cstart, ast.Node{Kind: ast.CatchClause, A: param, B: body})
	}
	finalizer := ast.NoNode
	if p.eat(token.FINALLY) {
		finalizer = p.parseBlock()
	}
	if handler == ast.NoNode && finalizer == ast.NoNode {
		p.errorf("missing catch or finally after try")
	}
	return p.add(start, ast.Node{Kind: ast.TryStatement, A: block, B: handler, C: finalizer})
}

func (p *Parser) parseSwitch() ast.NodeID {
	start := p.tok().Pos
	p.next()
	p.expect(token.PAREN_L)
	disc := p.parseExpression()
	p.expect(token.PAREN_R)
	p.expect(token.BRACE_L)
	var cases []ast.NodeID
	sawDefault := false
	for !p.at(token.BRACE_R) {
		cstart := p.tok().Pos
		test := ast.NoNode
		switch {
		case p.eat(token.CASE):
			test = p.parseExpression()
		case p.at(token.DEFAULT):
			if sawDefault {
				p.errorf("multiple default clauses in switch")
			}
			sawDefault = true
			p.next()
		default:
			p.unexpected()
		}
		p.expect(token.COLON)
		var body []ast.NodeID
		for !p.at(token.CASE) && !p.at(token.DEFAULT) && !p.at(token.BRACE_R) {
			if p.at(token.EOF) {
				p.unexpected()
			}
			body = append(body, p.parseStatementListItem(false))
		}
		cases = append(cases, p.add(cstart, ast.Node{Kind: ast.SwitchCase, A: test, List: body}))
	}
	p.next()
	return p.add(start, ast.Node{Kind: ast.SwitchStatement, A: disc, List: cases})
}
