// Copyright © 2024 The ELPS authors

package parser

import (
	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/parser/token"
)

// parseJSXElement parses a JSX element or fragment. The current token is the
// opening '<'. Once the element is closed, after advances past the final '>'
// in whichever lexer mode the enclosing context requires.
func (p *Parser) parseJSXElement(start int, after func()) ast.NodeID {
	p.nextInsideJSXElement()

	if p.at(token.GT) {
		p.nextJSXChild()
		children := p.parseJSXChildren(start, "", after)
		return p.add(start, ast.Node{Kind: ast.JSXFragment, List: p.node(children).List})
	}

	name, full := p.parseJSXElementName()
	var attrs []ast.NodeID
	for !p.at(token.GT) && !p.at(token.SLASH) {
		attrs = append(attrs, p.parseJSXAttribute())
	}

	if p.at(token.SLASH) {
		p.nextInsideJSXElement()
		if !p.at(token.GT) {
			p.errorf("expected \">\" but found %s", p.describe())
		}
		after()
		return p.add(start, ast.Node{Kind: ast.JSXElement, A: name, List: attrs})
	}

	p.nextJSXChild()
	children := p.parseJSXChildren(start, full, after)
	return p.add(start, ast.Node{Kind: ast.JSXElement, A: name, B: children, List: attrs})
}

// parseJSXElementName parses a tag name. Member names (a.b.c) become nested
// JSXMemberExpression nodes; namespaced names (a:b) stay a single
// JSXIdentifier.
func (p *Parser) parseJSXElementName() (ast.NodeID, string) {
	if !p.at(token.IDENT) {
		p.errorf("expected JSX element name but found %s", p.describe())
	}
	start := p.tok().Pos
	full := p.lex.Value
	id := p.jsxLeaf(ast.JSXIdentifier, full)
	if p.at(token.COLON) {
		p.nextInsideJSXElement()
		if !p.at(token.IDENT) {
			p.errorf("expected JSX namespace name but found %s", p.describe())
		}
		full += ":" + p.lex.Value
		end := p.tok().End
		p.nextInsideJSXElement()
		n := p.node(id)
		n.Name = full
		n.Span.End = end
		return id, full
	}
	for p.at(token.DOT) {
		p.nextInsideJSXElement()
		if !p.at(token.IDENT) {
			p.errorf("expected JSX member name but found %s", p.describe())
		}
		full += "." + p.lex.Value
		prop := p.jsxLeaf(ast.JSXIdentifier, p.lex.Value)
		id = p.add(start, ast.Node{Kind: ast.JSXMemberExpression, A: id, B: prop})
	}
	return id, full
}

// jsxLeaf allocates a leaf for the current token and advances inside the
// JSX tag.
func (p *Parser) jsxLeaf(kind ast.Kind, name string) ast.NodeID {
	tok := p.tok()
	id := p.arena.Add(ast.Node{Kind: kind, Name: name, Span: ast.Span{Start: tok.Pos, End: tok.End}})
	p.nextInsideJSXElement()
	return id
}

func (p *Parser) parseJSXAttribute() ast.NodeID {
	start := p.tok().Pos
	if p.at(token.BRACE_L) {
		p.next()
		p.expect(token.ELLIPSIS)
		arg := p.withIn(p.parseAssign)
		if !p.at(token.BRACE_R) {
			p.errorf("expected \"}\" but found %s", p.describe())
		}
		p.nextInsideJSXElement()
		return p.add(start, ast.Node{Kind: ast.JSXSpreadAttribute, A: arg})
	}
	if !p.at(token.IDENT) {
		p.errorf("expected JSX attribute name but found %s", p.describe())
	}
	name := p.lex.Value
	nameID := p.jsxLeaf(ast.JSXIdentifier, name)
	if p.at(token.COLON) {
		p.nextInsideJSXElement()
		if !p.at(token.IDENT) {
			p.errorf("expected JSX attribute name but found %s", p.describe())
		}
		n := p.node(nameID)
		n.Name = name + ":" + p.lex.Value
		n.Span.End = p.tok().End
		p.nextInsideJSXElement()
	}
	value := ast.NoNode
	if p.at(token.ASSIGN) {
		p.nextInsideJSXElement()
		vstart := p.tok().Pos
		switch p.lex.Type() {
		case token.STRING:
			value = p.jsxLeaf(ast.StringLiteral, p.lex.Value)
		case token.BRACE_L:
			p.next()
			expr := p.withIn(p.parseAssign)
			if !p.at(token.BRACE_R) {
				p.errorf("expected \"}\" but found %s", p.describe())
			}
			p.nextInsideJSXElement()
			value = p.add(vstart, ast.Node{Kind: ast.JSXExpressionContainer, A: expr})
		case token.LT:
			value = p.parseJSXElement(vstart, p.nextInsideJSXElement)
		default:
			p.errorf("expected JSX attribute value but found %s", p.describe())
		}
	}
	return p.add(start, ast.Node{Kind: ast.JSXAttribute, A: nameID, B: value})
}

// parseJSXChildren parses element children up to and including the closing
// tag, which must match name (empty for fragments). The current token is
// the first child token.
func (p *Parser) parseJSXChildren(start int, name string, after func()) ast.NodeID {
	childStart := p.tok().Pos
	var children []ast.NodeID
	for {
		switch p.lex.Type() {
		case token.JSX_TEXT:
			tok := p.tok()
			children = append(children, p.arena.Add(ast.Node{
				Kind: ast.JSXText,
				Name: p.lex.Value,
				Span: ast.Span{Start: tok.Pos, End: tok.End},
			}))
			p.nextJSXChild()
		case token.BRACE_L:
			cstart := p.tok().Pos
			p.next()
			expr := ast.NoNode
			if p.at(token.ELLIPSIS) {
				sstart := p.tok().Pos
				p.next()
				arg := p.withIn(p.parseAssign)
				expr = p.add(sstart, ast.Node{Kind: ast.SpreadElement, A: arg})
			} else if !p.at(token.BRACE_R) {
				expr = p.withIn(p.parseExpression)
			}
			if !p.at(token.BRACE_R) {
				p.errorf("expected \"}\" but found %s", p.describe())
			}
			p.nextJSXChild()
			children = append(children, p.add(cstart, ast.Node{Kind: ast.JSXExpressionContainer, A: expr}))
		case token.LT:
			cstart := p.tok().Pos
			state := p.lex.Save()
			p.lex.NextInsideJSXElement()
			closing := p.at(token.SLASH)
			p.lex.Restore(state)
			if !closing {
				children = append(children, p.parseJSXElement(cstart, p.nextJSXChild))
				continue
			}
			holder := p.arena.Add(ast.Node{
				Kind: ast.JSXChildren,
				List: children,
				Span: ast.Span{Start: childStart, End: cstart},
			})
			p.parseJSXClosing(name)
			after()
			return holder
		case token.EOF:
			p.errorAt(start, "unterminated JSX element")
		default:
			p.unexpected()
		}
	}
}

// parseJSXClosing consumes `</name` and leaves the cursor on the final '>'.
func (p *Parser) parseJSXClosing(name string) {
	p.nextInsideJSXElement() // '/'
	p.nextInsideJSXElement()
	closing := ""
	if !p.at(token.GT) {
		if !p.at(token.IDENT) {
			p.errorf("expected JSX closing tag but found %s", p.describe())
		}
		closing = p.lex.Value
		p.nextInsideJSXElement()
		for p.at(token.DOT) || p.at(token.COLON) {
			sep := p.tok().Text
			p.nextInsideJSXElement()
			if !p.at(token.IDENT) {
				p.errorf("expected JSX closing tag but found %s", p.describe())
			}
			closing += sep + p.lex.Value
			p.nextInsideJSXElement()
		}
	}
	if closing != name {
		if name == "" {
			p.errorf("expected closing fragment tag but found </%s>", closing)
		}
		p.errorf("expected closing tag </%s> but found </%s>", name, closing)
	}
	if !p.at(token.GT) {
		p.errorf("expected \">\" but found %s", p.describe())
	}
}
