// Copyright © 2024 The ELPS authors

package parser

import (
	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/parser/token"
)

// parseBindingTarget parses a BindingIdentifier or a destructuring binding
// pattern.
func (p *Parser) parseBindingTarget() ast.NodeID {
	switch p.lex.Type() {
	case token.BRACKET_L:
		return p.parseArrayBindingPattern()
	case token.BRACE_L:
		return p.parseObjectBindingPattern()
	case token.IDENT:
		return p.leaf(ast.BindingIdentifier, p.lex.Value)
	}
	p.errorf("expected binding name but found %s", p.describe())
	return ast.NoNode
}

// parseBindingElement parses a binding target with an optional default.
func (p *Parser) parseBindingElement() ast.NodeID {
	start := p.tok().Pos
	target := p.parseBindingTarget()
	if !p.eat(token.ASSIGN) {
		return target
	}
	def := p.withIn(p.parseAssign)
	return p.add(start, ast.Node{Kind: ast.AssignmentPattern, A: target, B: def})
}

func (p *Parser) parseBindingRest() ast.NodeID {
	start := p.tok().Pos
	p.expect(token.ELLIPSIS)
	arg := p.parseBindingTarget()
	return p.add(start, ast.Node{Kind: ast.RestElement, A: arg})
}

func (p *Parser) parseArrayBindingPattern() ast.NodeID {
	start := p.tok().Pos
	p.next()
	var elems []ast.NodeID
	for !p.at(token.BRACKET_R) {
		if p.eat(token.COMMA) {
			elems = append(elems, ast.NoNode)
			continue
		}
		if p.at(token.ELLIPSIS) {
			elems = append(elems, p.parseBindingRest())
			if !p.at(token.BRACKET_R) {
				p.errorf("rest element must be last in an array pattern")
			}
			break
		}
		elems = append(elems, p.parseBindingElement())
		if !p.at(token.BRACKET_R) {
			p.expect(token.COMMA)
		}
	}
	p.expect(token.BRACKET_R)
	return p.add(start, ast.Node{Kind: ast.ArrayPattern, List: elems})
}

func (p *Parser) parseObjectBindingPattern() ast.NodeID {
	start := p.tok().Pos
	p.next()
	var props []ast.NodeID
	for !p.at(token.BRACE_R) {
		if p.at(token.ELLIPSIS) {
			props = append(props, p.parseBindingRest())
			if !p.at(token.BRACE_R) {
				p.errorf("rest element must be last in an object pattern")
			}
			break
		}
		props = append(props, p.parseBindingProperty())
		if !p.at(token.BRACE_R) {
			p.expect(token.COMMA)
		}
	}
	p.expect(token.BRACE_R)
	return p.add(start, ast.Node{Kind: ast.ObjectPattern, List: props})
}

func (p *Parser) parseBindingProperty() ast.NodeID {
	start := p.tok().Pos
	keyTok := p.tok()
	key, computed := p.parsePropertyKey()
	var flags ast.Flags
	if computed {
		flags |= ast.FlagComputed
	}
	if p.eat(token.COLON) {
		value := p.parseBindingElement()
		return p.add(start, ast.Node{Kind: ast.Property, Op: "init", Flags: flags, A: key, B: value})
	}
	if computed || keyTok.Type != token.IDENT {
		p.errorAt(keyTok.Pos, "expected \":\" after property key")
	}
	kn := p.node(key)
	value := p.arena.Add(ast.Node{Kind: ast.BindingIdentifier, Name: kn.Name, Span: kn.Span})
	if p.eat(token.ASSIGN) {
		def := p.withIn(p.parseAssign)
		value = p.add(keyTok.Pos, ast.Node{Kind: ast.AssignmentPattern, A: value, B: def})
	}
	return p.add(start, ast.Node{Kind: ast.Property, Op: "init", Flags: flags | ast.FlagShorthand, A: key, B: value})
}

// toAssignmentTarget converts an expression parsed before a `=` (or as the
// left side of a for-in/of loop) into an assignment target in place.
func (p *Parser) toAssignmentTarget(id ast.NodeID) {
	p.toPattern(id, false)
}

// toPattern rewrites the expression id into a pattern. With binding set the
// result declares names (arrow parameters): identifiers become
// BindingIdentifier and member expressions are rejected. Otherwise the
// pattern assigns to existing references.
func (p *Parser) toPattern(id ast.NodeID, binding bool) {
	n := p.node(id)
	switch n.Kind {
	case ast.Identifier:
		if binding {
			n.Kind = ast.BindingIdentifier
		}
		return
	case ast.BindingIdentifier, ast.ObjectPattern, ast.ArrayPattern, ast.AssignmentPattern:
		return
	case ast.MemberExpression:
		if !binding && !n.Flags.Has(ast.FlagOptional) {
			return
		}
	case ast.ArrayExpression:
		if n.Flags.Has(ast.FlagParenthesized) {
			break
		}
		n.Kind = ast.ArrayPattern
		elems := n.List
		for i, elem := range elems {
			if elem == ast.NoNode {
				continue
			}
			if p.node(elem).Kind == ast.SpreadElement && i != len(elems)-1 {
				p.errorAt(p.node(elem).Span.Start, "rest element must be last in an array pattern")
			}
			p.toPattern(elem, binding)
		}
		return
	case ast.ObjectExpression:
		if n.Flags.Has(ast.FlagParenthesized) {
			break
		}
		n.Kind = ast.ObjectPattern
		props := n.List
		for i, prop := range props {
			if p.node(prop).Kind == ast.SpreadElement && i != len(props)-1 {
				p.errorAt(p.node(prop).Span.Start, "rest element must be last in an object pattern")
			}
			p.toPattern(prop, binding)
		}
		return
	case ast.SpreadElement:
		n.Kind = ast.RestElement
		p.toPattern(n.A, binding)
		return
	case ast.Property:
		if n.Op != "init" || n.Flags.Has(ast.FlagMethod) {
			p.errorAt(n.Span.Start, "invalid destructuring target")
		}
		value, def, span := n.B, n.C, n.Span
		p.toPattern(value, binding)
		if def != ast.NoNode {
			vspan := p.node(value).Span
			pat := p.arena.Add(ast.Node{
				Kind: ast.AssignmentPattern,
				A:    value,
				B:    def,
				Span: ast.Span{Start: vspan.Start, End: span.End},
			})
			n = p.node(id)
			n.B = pat
			n.C = ast.NoNode
		}
		return
	case ast.AssignmentExpression:
		if n.Op != "=" || n.Flags.Has(ast.FlagParenthesized) {
			break
		}
		n.Kind = ast.AssignmentPattern
		n.Op = ""
		p.toPattern(n.A, binding)
		return
	}
	p.errorAt(p.node(id).Span.Start, "invalid destructuring target")
}
