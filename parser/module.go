// Copyright © 2024 The ELPS authors

package parser

import (
	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/parser/token"
)

func (p *Parser) requireModule() {
	if !p.sourceType.Module {
		p.errorf("%s declarations may only appear in a module", p.tok().Text)
	}
}

// parseImportDeclaration parses every static import form, including
// `import type` and inline `type` specifiers.
func (p *Parser) parseImportDeclaration() ast.NodeID {
	p.requireModule()
	start := p.tok().Pos
	p.expect(token.IMPORT)

	var flags ast.Flags
	if p.isContextual("type") {
		next := p.peek()
		if next.Type == token.BRACE_L || next.Type == token.STAR ||
			next.Type == token.IDENT && next.Text != "from" {
			flags |= ast.FlagTypeOnly
			p.next()
		}
	}

	if p.at(token.STRING) {
		src := p.leaf(ast.StringLiteral, p.lex.Value)
		p.parseImportAttributes()
		p.semicolon()
		return p.add(start, ast.Node{Kind: ast.ImportDeclaration, Flags: flags, A: src})
	}

	var specs []ast.NodeID
	if p.at(token.IDENT) {
		sstart := p.tok().Pos
		local := p.leaf(ast.BindingIdentifier, p.lex.Value)
		specs = append(specs, p.add(sstart, ast.Node{Kind: ast.ImportDefaultSpecifier, B: local}))
		if !p.eat(token.COMMA) {
			return p.finishImport(start, flags, specs)
		}
	}
	switch p.lex.Type() {
	case token.STAR:
		sstart := p.tok().Pos
		p.next()
		p.expectContextual("as")
		if !p.at(token.IDENT) {
			p.errorf("expected namespace name but found %s", p.describe())
		}
		local := p.leaf(ast.BindingIdentifier, p.lex.Value)
		specs = append(specs, p.add(sstart, ast.Node{Kind: ast.ImportNamespaceSpecifier, B: local}))
	case token.BRACE_L:
		p.next()
		for !p.at(token.BRACE_R) {
			specs = append(specs, p.parseImportSpecifier())
			if !p.eat(token.COMMA) {
				break
			}
		}
		p.expect(token.BRACE_R)
	default:
		p.unexpected()
	}
	return p.finishImport(start, flags, specs)
}

func (p *Parser) finishImport(start int, flags ast.Flags, specs []ast.NodeID) ast.NodeID {
	p.expectContextual("from")
	if !p.at(token.STRING) {
		p.errorf("expected module specifier but found %s", p.describe())
	}
	src := p.leaf(ast.StringLiteral, p.lex.Value)
	p.parseImportAttributes()
	p.semicolon()
	return p.add(start, ast.Node{Kind: ast.ImportDeclaration, Flags: flags, A: src, List: specs})
}

func (p *Parser) parseImportSpecifier() ast.NodeID {
	start := p.tok().Pos
	var flags ast.Flags
	if p.isContextual("type") {
		next := p.peek()
		if next.Type == token.IDENT || next.Type == token.STRING || next.Type.IsKeyword() {
			if next.Text != "as" {
				flags |= ast.FlagTypeOnly
				p.next()
			}
		}
	}
	var imported ast.NodeID
	isString := p.at(token.STRING)
	plainIdent := p.at(token.IDENT)
	name := ""
	if isString {
		name = p.lex.Value
		imported = p.leaf(ast.StringLiteral, name)
	} else {
		if !p.isIdentifierName() {
			p.errorf("expected import name but found %s", p.describe())
		}
		name = p.identifierNameValue()
		imported = p.leaf(ast.IdentifierName, name)
	}
	var local ast.NodeID
	if p.isContextual("as") {
		p.next()
		if !p.at(token.IDENT) {
			p.errorf("expected local name but found %s", p.describe())
		}
		local = p.leaf(ast.BindingIdentifier, p.lex.Value)
	} else {
		if !plainIdent {
			p.errorAt(start, "import name %q must be followed by \"as\"", name)
		}
		in := p.node(imported)
		local = p.arena.Add(ast.Node{Kind: ast.BindingIdentifier, Name: in.Name, Span: in.Span})
	}
	return p.add(start, ast.Node{Kind: ast.ImportSpecifier, Flags: flags, A: imported, B: local})
}

// parseImportAttributes skips a `with { ... }` or `assert { ... }` clause.
func (p *Parser) parseImportAttributes() {
	if !p.at(token.WITH) && !(p.isContextual("assert") && !p.tok().NewlineBefore) {
		return
	}
	p.next()
	p.parseObjectLiteral()
}

// parseExportDeclaration parses every export form.
func (p *Parser) parseExportDeclaration() ast.NodeID {
	p.requireModule()
	start := p.tok().Pos
	p.expect(token.EXPORT)

	var flags ast.Flags
	if p.isContextual("type") {
		next := p.peek()
		if next.Type == token.BRACE_L || next.Type == token.STAR {
			flags |= ast.FlagTypeOnly
			p.next()
		}
	}

	switch p.lex.Type() {
	case token.DEFAULT:
		p.next()
		return p.parseExportDefault(start)
	case token.STAR:
		p.next()
		exported := ast.NoNode
		if p.isContextual("as") {
			p.next()
			exported = p.parseModuleExportName()
		}
		p.expectContextual("from")
		src := p.parseModuleSource()
		p.parseImportAttributes()
		p.semicolon()
		return p.add(start, ast.Node{Kind: ast.ExportAllDeclaration, Flags: flags, A: exported, B: src})
	case token.BRACE_L:
		return p.parseExportNamed(start, flags)
	case token.VAR, token.CONST:
		decl := p.parseVariableDeclaration(p.tok().Text)
		p.semicolon()
		p.node(decl).Span.End = p.prevEnd
		return p.add(start, ast.Node{Kind: ast.ExportNamedDeclaration, A: decl})
	case token.FUNCTION:
		decl := p.parseFunction(p.tok().Pos, false, true)
		return p.add(start, ast.Node{Kind: ast.ExportNamedDeclaration, A: decl})
	case token.CLASS:
		decl := p.parseClass(p.tok().Pos, true)
		return p.add(start, ast.Node{Kind: ast.ExportNamedDeclaration, A: decl})
	case token.IDENT:
		dstart := p.tok().Pos
		switch {
		case p.isContextual("let"):
			decl := p.parseVariableDeclaration("let")
			p.semicolon()
			p.node(decl).Span.End = p.prevEnd
			return p.add(start, ast.Node{Kind: ast.ExportNamedDeclaration, A: decl})
		case p.isContextual("async"):
			p.next()
			decl := p.parseFunction(dstart, true, true)
			return p.add(start, ast.Node{Kind: ast.ExportNamedDeclaration, A: decl})
		}
	}
	p.unexpected()
	return ast.NoNode
}

func (p *Parser) parseExportDefault(start int) ast.NodeID {
	dstart := p.tok().Pos
	var decl ast.NodeID
	switch {
	case p.at(token.FUNCTION):
		decl = p.parseFunctionNamed(dstart, false, true, false)
	case p.at(token.CLASS):
		decl = p.parseClassNamed(dstart, true, false)
	case p.isContextual("async") && p.peek().Type == token.FUNCTION && !p.peek().NewlineBefore:
		p.next()
		decl = p.parseFunctionNamed(dstart, true, true, false)
	default:
		decl = p.parseAssign()
		p.semicolon()
	}
	return p.add(start, ast.Node{Kind: ast.ExportDefaultDeclaration, A: decl})
}

// parseExportNamed parses `export { a, b as c } [from "mod"]`. Without a
// source clause the local names are references into the module scope;
// re-exports only name bindings of another module.
func (p *Parser) parseExportNamed(start int, flags ast.Flags) ast.NodeID {
	p.expect(token.BRACE_L)
	var specs []ast.NodeID
	for !p.at(token.BRACE_R) {
		sstart := p.tok().Pos
		var sflags ast.Flags
		if p.isContextual("type") {
			next := p.peek()
			if (next.Type == token.IDENT || next.Type.IsKeyword()) && next.Text != "as" {
				sflags |= ast.FlagTypeOnly
				p.next()
			}
		}
		local := p.parseModuleExportName()
		exported := ast.NoNode
		if p.isContextual("as") {
			p.next()
			exported = p.parseModuleExportName()
		} else {
			ln := p.node(local)
			exported = p.arena.Add(ast.Node{Kind: ast.IdentifierName, Name: ln.Name, Span: ln.Span})
		}
		specs = append(specs, p.add(sstart, ast.Node{Kind: ast.ExportSpecifier, Flags: sflags, A: local, B: exported}))
		if !p.eat(token.COMMA) {
			break
		}
	}
	p.expect(token.BRACE_R)

	src := ast.NoNode
	if p.isContextual("from") {
		p.next()
		src = p.parseModuleSource()
		p.parseImportAttributes()
	} else {
		for _, spec := range specs {
			local := p.node(p.node(spec).A)
			if local.Kind == ast.StringLiteral {
				p.errorAt(local.Span.Start, "string export names require a from clause")
			}
			local.Kind = ast.Identifier
		}
	}
	p.semicolon()
	return p.add(start, ast.Node{Kind: ast.ExportNamedDeclaration, Flags: flags, B: src, List: specs})
}

func (p *Parser) parseModuleExportName() ast.NodeID {
	if p.at(token.STRING) {
		return p.leaf(ast.StringLiteral, p.lex.Value)
	}
	if !p.isIdentifierName() {
		p.errorf("expected export name but found %s", p.describe())
	}
	return p.leaf(ast.IdentifierName, p.identifierNameValue())
}

func (p *Parser) parseModuleSource() ast.NodeID {
	if !p.at(token.STRING) {
		p.errorf("expected module specifier but found %s", p.describe())
	}
	return p.leaf(ast.StringLiteral, p.lex.Value)
}
