// Copyright © 2024 The ELPS authors

package parser

import (
	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/parser/token"
)

// Binary operator precedence, lowest first.
const (
	precLowest = iota
	precNullish
	precLogicalOr
	precLogicalAnd
	precBitwiseOr
	precBitwiseXor
	precBitwiseAnd
	precEquals
	precCompare
	precShift
	precAdd
	precMultiply
	precExponent
)

func (p *Parser) binaryPrecedence(typ token.Type) int {
	switch typ {
	case token.NULLISH:
		return precNullish
	case token.OR:
		return precLogicalOr
	case token.AND:
		return precLogicalAnd
	case token.BAR:
		return precBitwiseOr
	case token.CARET:
		return precBitwiseXor
	case token.AMP:
		return precBitwiseAnd
	case token.EQ, token.NE, token.EQ_STRICT, token.NE_STRICT:
		return precEquals
	case token.LT, token.GT, token.LE, token.GE, token.INSTANCEOF:
		return precCompare
	case token.IN:
		if p.noIn {
			return precLowest
		}
		return precCompare
	case token.SHL, token.SHR, token.SHR_UNSIGNED:
		return precShift
	case token.PLUS, token.MINUS:
		return precAdd
	case token.STAR, token.SLASH, token.PERCENT:
		return precMultiply
	case token.STAR_STAR:
		return precExponent
	}
	return precLowest
}

// parseExpression parses a comma separated Expression.
func (p *Parser) parseExpression() ast.NodeID {
	start := p.tok().Pos
	expr := p.parseAssign()
	if !p.at(token.COMMA) {
		return expr
	}
	list := []ast.NodeID{expr}
	for p.eat(token.COMMA) {
		list = append(list, p.parseAssign())
	}
	return p.add(start, ast.Node{Kind: ast.SequenceExpression, List: list})
}

// parseAssign parses an AssignmentExpression, including arrow functions and
// yield expressions.
func (p *Parser) parseAssign() ast.NodeID {
	start := p.tok().Pos
	if p.inGenerator && p.isContextual("yield") {
		return p.parseYield()
	}
	left := p.parseConditional()
	typ := p.lex.Type()
	if !typ.IsAssign() {
		return left
	}
	if typ == token.ASSIGN {
		p.toAssignmentTarget(left)
	} else if !p.isSimpleAssignmentTarget(left) {
		p.errorAt(start, "invalid assignment target")
	}
	op := p.tok().Text
	p.next()
	right := p.parseAssign()
	return p.add(start, ast.Node{Kind: ast.AssignmentExpression, Op: op, A: left, B: right})
}

func (p *Parser) parseYield() ast.NodeID {
	start := p.tok().Pos
	p.next()
	var flags ast.Flags
	arg := ast.NoNode
	if !p.tok().NewlineBefore {
		if p.eat(token.STAR) {
			flags |= ast.FlagDelegate
			arg = p.parseAssign()
		} else if p.startsExpression() {
			arg = p.parseAssign()
		}
	}
	return p.add(start, ast.Node{Kind: ast.YieldExpression, Flags: flags, A: arg})
}

// startsExpression reports whether the current token can begin the operand
// of a yield.
func (p *Parser) startsExpression() bool {
	typ := p.lex.Type()
	switch typ {
	case token.PAREN_R, token.BRACKET_R, token.BRACE_R, token.COMMA, token.SEMICOLON,
		token.COLON, token.EOF, token.QUESTION, token.ARROW, token.IN, token.INSTANCEOF:
		return false
	case token.PLUS, token.MINUS, token.SLASH, token.SLASH_ASSIGN, token.LT:
		return true
	}
	if typ.IsAssign() {
		return false
	}
	return p.binaryPrecedence(typ) == precLowest
}

func (p *Parser) parseConditional() ast.NodeID {
	start := p.tok().Pos
	test := p.parseBinary(precLowest)
	if !p.eat(token.QUESTION) {
		return test
	}
	saved := p.noIn
	p.noIn = false
	cons := p.parseAssign()
	p.noIn = saved
	p.expect(token.COLON)
	alt := p.parseAssign()
	return p.add(start, ast.Node{Kind: ast.ConditionalExpression, A: test, B: cons, C: alt})
}

func (p *Parser) parseBinary(minPrec int) ast.NodeID {
	start := p.tok().Pos
	var left ast.NodeID
	if p.at(token.PRIVATE_NAME) {
		// `#x in obj` brand check
		left = p.leaf(ast.PrivateIdentifier, p.lex.Value)
		if !p.at(token.IN) {
			p.errorf("unexpected private name")
		}
	} else {
		left = p.parseUnary()
	}
	for {
		typ := p.lex.Type()
		prec := p.binaryPrecedence(typ)
		if prec == precLowest || prec <= minPrec {
			return left
		}
		op := p.tok().Text
		p.next()
		nextMin := prec
		if prec == precExponent {
			nextMin = prec - 1
		}
		right := p.parseBinary(nextMin)
		kind := ast.BinaryExpression
		switch typ {
		case token.AND, token.OR, token.NULLISH:
			kind = ast.LogicalExpression
		case token.IN:
			if p.node(left).Kind == ast.PrivateIdentifier {
				left = p.add(start, ast.Node{Kind: ast.PrivateInExpression, A: left, B: right})
				continue
			}
		}
		left = p.add(start, ast.Node{Kind: kind, Op: op, A: left, B: right})
	}
}

func (p *Parser) parseUnary() ast.NodeID {
	start := p.tok().Pos
	switch p.lex.Type() {
	case token.DELETE, token.VOID, token.TYPEOF, token.PLUS, token.MINUS, token.TILDE, token.BANG:
		op := p.tok().Text
		p.next()
		arg := p.parseUnary()
		if p.at(token.STAR_STAR) {
			p.errorf("unparenthesized unary expression cannot appear on the left of **")
		}
		return p.add(start, ast.Node{Kind: ast.UnaryExpression, Op: op, A: arg})
	case token.INC, token.DEC:
		op := p.tok().Text
		p.next()
		arg := p.parseUnary()
		if !p.isSimpleAssignmentTarget(arg) {
			p.errorAt(start, "invalid update target")
		}
		return p.add(start, ast.Node{Kind: ast.UpdateExpression, Op: op, Flags: ast.FlagPrefix, A: arg})
	case token.IDENT:
		if p.isContextual("await") && (p.inAsync || p.sourceType.Module && !p.inFunction) {
			p.next()
			arg := p.parseUnary()
			return p.add(start, ast.Node{Kind: ast.AwaitExpression, A: arg})
		}
	}
	expr := p.parseLeftHandSide()
	if (p.at(token.INC) || p.at(token.DEC)) && !p.tok().NewlineBefore {
		if !p.isSimpleAssignmentTarget(expr) {
			p.errorAt(start, "invalid update target")
		}
		op := p.tok().Text
		p.next()
		return p.add(start, ast.Node{Kind: ast.UpdateExpression, Op: op, A: expr})
	}
	return expr
}

// parseLeftHandSide parses member accesses, calls, optional chains and
// tagged templates following a primary expression.
func (p *Parser) parseLeftHandSide() ast.NodeID {
	start := p.tok().Pos
	var expr ast.NodeID
	if p.at(token.NEW) {
		expr = p.parseNew()
	} else {
		expr = p.parsePrimary()
	}
	return p.parseSuffixes(start, expr, true)
}

func (p *Parser) parseSuffixes(start int, expr ast.NodeID, allowCall bool) ast.NodeID {
	for {
		switch p.lex.Type() {
		case token.DOT:
			p.next()
			prop := p.parseMemberName()
			expr = p.add(start, ast.Node{Kind: ast.MemberExpression, A: expr, B: prop})
		case token.QUESTION_DOT:
			if !allowCall {
				p.errorf("optional chain not allowed in new expression")
			}
			p.next()
			switch p.lex.Type() {
			case token.PAREN_L:
				args := p.parseArguments()
				expr = p.add(start, ast.Node{Kind: ast.CallExpression, Flags: ast.FlagOptional, A: expr, List: args})
			case token.BRACKET_L:
				p.next()
				prop := p.withIn(p.parseExpression)
				p.expect(token.BRACKET_R)
				expr = p.add(start, ast.Node{Kind: ast.MemberExpression, Flags: ast.FlagOptional | ast.FlagComputed, A: expr, B: prop})
			default:
				prop := p.parseMemberName()
				expr = p.add(start, ast.Node{Kind: ast.MemberExpression, Flags: ast.FlagOptional, A: expr, B: prop})
			}
		case token.BRACKET_L:
			p.next()
			prop := p.withIn(p.parseExpression)
			p.expect(token.BRACKET_R)
			expr = p.add(start, ast.Node{Kind: ast.MemberExpression, Flags: ast.FlagComputed, A: expr, B: prop})
		case token.PAREN_L:
			if !allowCall {
				return expr
			}
			args := p.parseArguments()
			expr = p.add(start, ast.Node{Kind: ast.CallExpression, A: expr, List: args})
		case token.TEMPLATE_NOSUB, token.TEMPLATE_HEAD:
			quasi := p.parseTemplate()
			expr = p.add(start, ast.Node{Kind: ast.TaggedTemplateExpression, A: expr, B: quasi})
		default:
			return expr
		}
	}
}

// withIn runs fn with the `in` operator allowed.
func (p *Parser) withIn(fn func() ast.NodeID) ast.NodeID {
	saved := p.noIn
	p.noIn = false
	id := fn()
	p.noIn = saved
	return id
}

func (p *Parser) parseMemberName() ast.NodeID {
	if p.at(token.PRIVATE_NAME) {
		return p.leaf(ast.PrivateIdentifier, p.lex.Value)
	}
	if !p.isIdentifierName() {
		p.errorf("expected property name but found %s", p.describe())
	}
	return p.leaf(ast.IdentifierName, p.identifierNameValue())
}

func (p *Parser) parseArguments() []ast.NodeID {
	p.expect(token.PAREN_L)
	saved := p.noIn
	p.noIn = false
	var args []ast.NodeID
	for !p.at(token.PAREN_R) {
		if p.at(token.ELLIPSIS) {
			start := p.tok().Pos
			p.next()
			arg := p.parseAssign()
			args = append(args, p.add(start, ast.Node{Kind: ast.SpreadElement, A: arg}))
		} else {
			args = append(args, p.parseAssign())
		}
		if !p.eat(token.COMMA) {
			break
		}
	}
	p.noIn = saved
	p.expect(token.PAREN_R)
	return args
}

func (p *Parser) parseNew() ast.NodeID {
	start := p.tok().Pos
	p.next()
	if p.eat(token.DOT) {
		if !p.isContextual("target") {
			p.errorf("expected new.target")
		}
		p.next()
		return p.add(start, ast.Node{Kind: ast.MetaProperty, Name: "new.target"})
	}
	var callee ast.NodeID
	if p.at(token.NEW) {
		callee = p.parseNew()
	} else {
		callee = p.parsePrimary()
	}
	callee = p.parseSuffixes(p.node(callee).Span.Start, callee, false)
	var args []ast.NodeID
	if p.at(token.PAREN_L) {
		args = p.parseArguments()
	}
	return p.add(start, ast.Node{Kind: ast.NewExpression, A: callee, List: args})
}

func (p *Parser) parsePrimary() ast.NodeID {
	tok := p.tok()
	start := tok.Pos
	switch tok.Type {
	case token.THIS:
		return p.leaf(ast.ThisExpression, "this")
	case token.NULL:
		return p.leaf(ast.NullLiteral, "null")
	case token.TRUE, token.FALSE:
		return p.leaf(ast.BooleanLiteral, tok.Text)
	case token.NUMBER:
		return p.leaf(ast.NumericLiteral, tok.Text)
	case token.BIGINT:
		return p.leaf(ast.BigIntLiteral, tok.Text)
	case token.STRING:
		return p.leaf(ast.StringLiteral, p.lex.Value)
	case token.SLASH, token.SLASH_ASSIGN:
		p.lex.ScanRegExp()
		return p.leaf(ast.RegExpLiteral, p.lex.Value)
	case token.TEMPLATE_NOSUB, token.TEMPLATE_HEAD:
		return p.parseTemplate()
	case token.BRACKET_L:
		return p.parseArrayLiteral()
	case token.BRACE_L:
		return p.parseObjectLiteral()
	case token.FUNCTION:
		return p.parseFunction(start, false, false)
	case token.CLASS:
		return p.parseClass(start, false)
	case token.PAREN_L:
		return p.parseParenOrArrow(start, false)
	case token.SUPER:
		id := p.leaf(ast.Super, "super")
		switch p.lex.Type() {
		case token.DOT, token.BRACKET_L, token.PAREN_L:
			return id
		}
		p.errorAt(start, "'super' keyword unexpected here")
	case token.IMPORT:
		p.next()
		if p.eat(token.DOT) {
			if !p.isContextual("meta") {
				p.errorf("expected import.meta")
			}
			p.next()
			return p.add(start, ast.Node{Kind: ast.MetaProperty, Name: "import.meta"})
		}
		p.expect(token.PAREN_L)
		src := p.withIn(p.parseAssign)
		if p.eat(token.COMMA) && !p.at(token.PAREN_R) {
			p.withIn(p.parseAssign)
			p.eat(token.COMMA)
		}
		p.expect(token.PAREN_R)
		return p.add(start, ast.Node{Kind: ast.ImportExpression, A: src})
	case token.LT:
		if p.sourceType.JSX {
			return p.parseJSXElement(start, p.next)
		}
	case token.IDENT:
		return p.parseIdentifierExpression()
	}
	p.unexpected()
	return ast.NoNode
}

// parseIdentifierExpression handles identifiers, including the arrow
// function and async function forms that start with one.
func (p *Parser) parseIdentifierExpression() ast.NodeID {
	tok := p.tok()
	start := tok.Pos
	name := p.lex.Value
	next := p.peek()

	if next.Type == token.ARROW && !next.NewlineBefore {
		param := p.leaf(ast.BindingIdentifier, name)
		return p.parseArrowRest(start, []ast.NodeID{param}, false)
	}

	if name == "async" && !p.lex.Escaped && !next.NewlineBefore {
		switch next.Type {
		case token.FUNCTION:
			p.next()
			return p.parseFunction(start, true, false)
		case token.IDENT:
			// async x => ...
			state := p.lex.Save()
			p.next()
			paramName := p.lex.Value
			after := p.peek()
			if after.Type == token.ARROW && !after.NewlineBefore {
				param := p.leaf(ast.BindingIdentifier, paramName)
				return p.parseArrowRest(start, []ast.NodeID{param}, true)
			}
			p.lex.Restore(state)
		case token.PAREN_L:
			p.next()
			return p.parseParenOrArrow(start, true)
		}
	}
	return p.leaf(ast.Identifier, name)
}

// parseParenOrArrow parses a parenthesized expression or the parameter list
// of an arrow function. With async set, the `async` identifier has already
// been consumed and the parens are either arrow parameters or the arguments
// of a call to a function named async.
func (p *Parser) parseParenOrArrow(start int, async bool) ast.NodeID {
	p.expect(token.PAREN_L)
	saved := p.noIn
	p.noIn = false
	var items []ast.NodeID
	hasRest := false
	for !p.at(token.PAREN_R) {
		if p.at(token.ELLIPSIS) {
			rstart := p.tok().Pos
			p.next()
			arg := p.parseAssign()
			items = append(items, p.add(rstart, ast.Node{Kind: ast.SpreadElement, A: arg}))
			hasRest = true
		} else {
			items = append(items, p.parseAssign())
		}
		if !p.eat(token.COMMA) {
			break
		}
	}
	p.noIn = saved
	p.expect(token.PAREN_R)

	if p.at(token.ARROW) && !p.tok().NewlineBefore {
		for _, item := range items {
			p.toPattern(item, true)
		}
		return p.parseArrowRest(start, items, async)
	}

	if async {
		callee := p.arena.Add(ast.Node{Kind: ast.Identifier, Name: "async", Span: ast.Span{Start: start, End: start + len("async")}})
		return p.add(start, ast.Node{Kind: ast.CallExpression, A: callee, List: items})
	}
	if len(items) == 0 || hasRest {
		p.errorAt(start, "expected \"=>\" after arrow parameters")
	}
	var expr ast.NodeID
	if len(items) == 1 {
		expr = items[0]
	} else {
		expr = p.add(p.node(items[0]).Span.Start, ast.Node{Kind: ast.SequenceExpression, List: items})
		p.node(expr).Span.End = p.node(items[len(items)-1]).Span.End
	}
	p.node(expr).Flags |= ast.FlagParenthesized
	return expr
}

// parseArrowRest parses `=> body` given already converted parameters.
func (p *Parser) parseArrowRest(start int, params []ast.NodeID, async bool) ast.NodeID {
	p.expect(token.ARROW)
	saved := p.enterFunction(async, false)
	defer p.leaveFunction(saved)
	var flags ast.Flags
	if async {
		flags |= ast.FlagAsync
	}
	var body ast.NodeID
	if p.at(token.BRACE_L) {
		body = p.parseFunctionBody()
		if p.node(body).Flags.Has(ast.FlagUseStrict) {
			flags |= ast.FlagUseStrict
		}
	} else {
		p.noIn = saved.noIn
		body = p.parseAssign()
		flags |= ast.FlagExpressionBody
	}
	return p.add(start, ast.Node{Kind: ast.ArrowFunctionExpression, Flags: flags, B: body, List: params})
}

func (p *Parser) parseTemplate() ast.NodeID {
	start := p.tok().Pos
	if p.at(token.TEMPLATE_NOSUB) {
		p.next()
		return p.add(start, ast.Node{Kind: ast.TemplateLiteral})
	}
	var exprs []ast.NodeID
	p.next()
	for {
		exprs = append(exprs, p.withIn(p.parseExpression))
		if !p.at(token.BRACE_R) {
			p.errorf("expected \"}\" in template literal but found %s", p.describe())
		}
		p.lex.RescanTemplateContinuation()
		tail := p.at(token.TEMPLATE_TAIL)
		p.next()
		if tail {
			break
		}
	}
	return p.add(start, ast.Node{Kind: ast.TemplateLiteral, List: exprs})
}

func (p *Parser) parseArrayLiteral() ast.NodeID {
	start := p.tok().Pos
	p.next()
	saved := p.noIn
	p.noIn = false
	var elems []ast.NodeID
	for !p.at(token.BRACKET_R) {
		switch {
		case p.at(token.COMMA):
			p.next()
			elems = append(elems, ast.NoNode)
			continue
		case p.at(token.ELLIPSIS):
			estart := p.tok().Pos
			p.next()
			arg := p.parseAssign()
			elems = append(elems, p.add(estart, ast.Node{Kind: ast.SpreadElement, A: arg}))
		default:
			elems = append(elems, p.parseAssign())
		}
		if !p.at(token.BRACKET_R) {
			p.expect(token.COMMA)
		}
	}
	p.noIn = saved
	p.next()
	return p.add(start, ast.Node{Kind: ast.ArrayExpression, List: elems})
}

func (p *Parser) parseObjectLiteral() ast.NodeID {
	start := p.tok().Pos
	p.next()
	saved := p.noIn
	p.noIn = false
	var props []ast.NodeID
	for !p.at(token.BRACE_R) {
		props = append(props, p.parseObjectMember())
		if !p.at(token.BRACE_R) {
			p.expect(token.COMMA)
		}
	}
	p.noIn = saved
	p.next()
	return p.add(start, ast.Node{Kind: ast.ObjectExpression, List: props})
}

func (p *Parser) parseObjectMember() ast.NodeID {
	start := p.tok().Pos
	if p.eat(token.ELLIPSIS) {
		arg := p.parseAssign()
		return p.add(start, ast.Node{Kind: ast.SpreadElement, A: arg})
	}

	var flags ast.Flags
	op := "init"
	async, generator := false, false
	if p.at(token.IDENT) && !p.lex.Escaped {
		switch p.lex.Value {
		case "get", "set", "async":
			next := p.peek()
			if next.Type != token.COMMA && next.Type != token.COLON && next.Type != token.PAREN_L &&
				next.Type != token.BRACE_R && next.Type != token.ASSIGN && !(p.lex.Value == "async" && next.NewlineBefore) {
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

	if p.at(token.PAREN_L) || op != "init" || async || generator {
		fn := p.parseMethodFunction(keyTok.Pos, async, generator)
		if op == "init" {
			flags |= ast.FlagMethod
		}
		return p.add(start, ast.Node{Kind: ast.Property, Op: op, Flags: flags, A: key, B: fn})
	}

	if p.eat(token.COLON) {
		value := p.parseAssign()
		return p.add(start, ast.Node{Kind: ast.Property, Op: op, Flags: flags, A: key, B: value})
	}

	// shorthand property: { a } or the cover grammar { a = 1 }
	if computed || keyTok.Type != token.IDENT {
		p.errorAt(keyTok.Pos, "expected \":\" after property key")
	}
	kn := p.node(key)
	value := p.arena.Add(ast.Node{Kind: ast.Identifier, Name: kn.Name, Span: kn.Span})
	init := ast.NoNode
	if p.eat(token.ASSIGN) {
		init = p.parseAssign()
	}
	return p.add(start, ast.Node{Kind: ast.Property, Op: op, Flags: flags | ast.FlagShorthand, A: key, B: value, C: init})
}

// parsePropertyKey parses an object or class member key.
func (p *Parser) parsePropertyKey() (ast.NodeID, bool) {
	switch p.lex.Type() {
	case token.STRING:
		return p.leaf(ast.StringLiteral, p.lex.Value), false
	case token.NUMBER:
		return p.leaf(ast.NumericLiteral, p.tok().Text), false
	case token.BIGINT:
		return p.leaf(ast.BigIntLiteral, p.tok().Text), false
	case token.BRACKET_L:
		p.next()
		key := p.withIn(p.parseAssign)
		p.expect(token.BRACKET_R)
		return key, true
	case token.PRIVATE_NAME:
		return p.leaf(ast.PrivateIdentifier, p.lex.Value), false
	}
	if !p.isIdentifierName() {
		p.errorf("expected property name but found %s", p.describe())
	}
	return p.leaf(ast.IdentifierName, p.identifierNameValue()), false
}

// isSimpleAssignmentTarget reports whether id may appear on the left of a
// compound assignment or as the operand of ++ and --.
func (p *Parser) isSimpleAssignmentTarget(id ast.NodeID) bool {
	n := p.node(id)
	switch n.Kind {
	case ast.Identifier:
		return true
	case ast.MemberExpression:
		return !n.Flags.Has(ast.FlagOptional)
	}
	return false
}
