// Copyright © 2024 The ELPS authors

package parser

import (
	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/parser/token"
)

// parseFunction parses a function declaration or expression. The current
// token is the `function` keyword; a preceding `async` has been consumed by
// the caller and is indicated by async.
func (p *Parser) parseFunction(start int, async bool, isStatement bool) ast.NodeID {
	return p.parseFunctionNamed(start, async, isStatement, isStatement)
}

func (p *Parser) parseFunctionNamed(start int, async, isStatement, requireName bool) ast.NodeID {
	p.expect(token.FUNCTION)
	var flags ast.Flags
	generator := p.eat(token.STAR)
	if generator {
		flags |= ast.FlagGenerator
	}
	if async {
		flags |= ast.FlagAsync
	}

	id := ast.NoNode
	if p.at(token.IDENT) {
		id = p.leaf(ast.BindingIdentifier, p.lex.Value)
	} else if requireName {
		p.errorf("expected function name but found %s", p.describe())
	}

	saved := p.enterFunction(async, generator)
	params := p.parseFormalParameters()
	body := p.parseFunctionBody()
	p.leaveFunction(saved)

	if p.node(body).Flags.Has(ast.FlagUseStrict) {
		flags |= ast.FlagUseStrict
	}
	kind := ast.FunctionExpression
	if isStatement {
		kind = ast.FunctionDeclaration
	}
	return p.add(start, ast.Node{Kind: kind, Flags: flags, A: id, B: body, List: params})
}

// parseMethodFunction parses the parameters and body of an object or class
// method. The key has already been consumed.
func (p *Parser) parseMethodFunction(start int, async, generator bool) ast.NodeID {
	flags := ast.FlagMethod
	if async {
		flags |= ast.FlagAsync
	}
	if generator {
		flags |= ast.FlagGenerator
	}
	saved := p.enterFunction(async, generator)
	params := p.parseFormalParameters()
	body := p.parseFunctionBody()
	p.leaveFunction(saved)
	if p.node(body).Flags.Has(ast.FlagUseStrict) {
		flags |= ast.FlagUseStrict
	}
	return p.add(start, ast.Node{Kind: ast.FunctionExpression, Flags: flags, B: body, List: params})
}

func (p *Parser) parseFormalParameters() []ast.NodeID {
	p.expect(token.PAREN_L)
	var params []ast.NodeID
	for !p.at(token.PAREN_R) {
		if p.at(token.ELLIPSIS) {
			params = append(params, p.parseBindingRest())
			if !p.at(token.PAREN_R) {
				p.errorf("rest parameter must be last formal parameter")
			}
			break
		}
		params = append(params, p.parseBindingElement())
		if !p.eat(token.COMMA) {
			break
		}
	}
	p.expect(token.PAREN_R)
	return params
}
