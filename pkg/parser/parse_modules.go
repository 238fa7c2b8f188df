package parser

import (
	"strings"

	"github.com/quill-lang/quill/pkg/lexer"
)

// parseImportStatement handles the `import` forms:
//
//	import x from "m"
//	import {a, b as c} from "m"
//	import * as ns from "m"
//	import "m"
//	import a.b [as c]
func (p *Parser) parseImportStatement() Statement {
	decl := &ImportDeclaration{Token: p.curToken}
	p.nextToken()

	switch p.curToken.Type {
	case lexer.STRING:
		decl.Kind = ImportSideEffect
		decl.Source = p.curToken.Literal
	case lexer.LBRACE:
		decl.Kind = ImportNamed
		decl.Specifiers = p.parseSpecifiers(lexer.RBRACE)
		decl.Source = p.parseFromSource()
	case lexer.ASTERISK:
		decl.Kind = ImportNamespace
		p.expectPeek(lexer.AS)
		p.expectPeek(lexer.IDENT)
		decl.Namespace = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		decl.Source = p.parseFromSource()
	case lexer.IDENT:
		if p.peekTokenIs(lexer.FROM) {
			decl.Kind = ImportDefault
			decl.Default = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
			decl.Source = p.parseFromSource()
			break
		}
		decl.Kind = ImportModule
		decl.Source = p.parseDottedName()
		if p.peekTokenIs(lexer.AS) {
			p.nextToken()
			p.expectPeek(lexer.IDENT)
			decl.Namespace = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		}
	default:
		p.fail(p.curToken, "module name")
	}
	p.endStatement()
	return decl
}

// parseFromImport handles `from module import names`, `from module import (names)`
// and `from module import *`. Relative modules start with dots.
func (p *Parser) parseFromImport() Statement {
	decl := &ImportDeclaration{Token: p.curToken, Kind: ImportFrom}
	p.nextToken()

	var module strings.Builder
	for p.curTokenIs(lexer.DOT) || p.curTokenIs(lexer.SPREAD) {
		module.WriteString(p.curToken.Literal)
		p.nextToken()
	}
	switch {
	case p.curTokenIs(lexer.STRING) && module.Len() == 0:
		module.WriteString(p.curToken.Literal)
	case p.curTokenIs(lexer.IDENT):
		module.WriteString(p.parseDottedName())
	case module.Len() > 0 && p.curTokenIs(lexer.IMPORT):
		// `from . import x`: step back so the IMPORT check below sees it
		p.reset(p.pos - 1)
	default:
		p.fail(p.curToken, "module name")
	}
	decl.Source = module.String()

	p.expectPeek(lexer.IMPORT)
	switch {
	case p.peekTokenIs(lexer.ASTERISK):
		p.nextToken()
		decl.Wildcard = true
	case p.peekTokenIs(lexer.LPAREN):
		p.nextToken()
		decl.Specifiers = p.parseSpecifiers(lexer.RPAREN)
	default:
		decl.Specifiers = p.parseSpecifierRun()
	}
	p.endStatement()
	return decl
}

// parseDottedName reads `a.b.c` starting on the current identifier.
func (p *Parser) parseDottedName() string {
	var name strings.Builder
	name.WriteString(p.curToken.Literal)
	for p.peekTokenIs(lexer.DOT) {
		p.nextToken()
		name.WriteString("." + p.expectName().Value)
	}
	return name.String()
}

func (p *Parser) parseFromSource() string {
	p.expectPeek(lexer.FROM)
	p.expectPeek(lexer.STRING)
	return p.curToken.Literal
}

// parseSpecifiers parses `name [as alias], ...` from the opening delimiter
// through closer. Line breaks are allowed inside.
func (p *Parser) parseSpecifiers(closer lexer.TokenType) []*ImportSpecifier {
	var specs []*ImportSpecifier
	for {
		p.skipNewlines()
		if p.peekTokenIs(closer) {
			break
		}
		specs = append(specs, p.parseSpecifier())
		p.skipNewlines()
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	p.skipNewlines()
	p.expectPeek(closer)
	return specs
}

// parseSpecifierRun parses an unbracketed specifier list ending the line.
func (p *Parser) parseSpecifierRun() []*ImportSpecifier {
	specs := []*ImportSpecifier{p.parseSpecifier()}
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		specs = append(specs, p.parseSpecifier())
	}
	return specs
}

func (p *Parser) parseSpecifier() *ImportSpecifier {
	spec := &ImportSpecifier{Name: p.expectName()}
	if p.peekTokenIs(lexer.AS) {
		p.nextToken()
		spec.Alias = p.expectName()
	}
	return spec
}

// parseExportStatement handles named lists, re-exports, `export default`
// and exported declarations.
func (p *Parser) parseExportStatement() Statement {
	decl := &ExportDeclaration{Token: p.curToken}
	p.nextToken()

	switch {
	case p.curTokenIs(lexer.LBRACE):
		decl.Kind = ExportNamed
		decl.Specifiers = p.parseSpecifiers(lexer.RBRACE)
		if p.peekTokenIs(lexer.FROM) {
			p.nextToken()
			p.expectPeek(lexer.STRING)
			decl.Source = p.curToken.Literal
		}
	case p.curTokenIs(lexer.ASTERISK):
		decl.Kind = ExportAll
		if p.peekTokenIs(lexer.AS) {
			p.nextToken()
			decl.Namespace = p.expectName()
		}
		decl.Source = p.parseFromSource()
	case p.curTokenIs(lexer.IDENT) && p.curToken.Literal == "default":
		decl.Kind = ExportDefault
		p.nextToken()
		switch p.curToken.Type {
		case lexer.DEF, lexer.ASYNC, lexer.CLASS, lexer.AT:
			decl.Declaration = p.parseStatement()
			return decl
		}
		decl.Value = p.parseExpression(LOWEST)
	case p.curTokenIs(lexer.DEF), p.curTokenIs(lexer.ASYNC), p.curTokenIs(lexer.CLASS),
		p.curTokenIs(lexer.AT), p.curTokenIs(lexer.LET), p.curTokenIs(lexer.CONST):
		decl.Kind = ExportDecl
		decl.Declaration = p.parseStatement()
		return decl
	case p.curTokenIs(lexer.IDENT):
		decl.Kind = ExportDecl
		stmt := p.parseExpressionOrAssignment()
		assign, ok := stmt.(*AssignStatement)
		if !ok || assign.Operator != "=" {
			p.failMsg(stmt.Start(), "export needs a declaration or an assignment to a name")
		}
		if _, ok := assign.Target.(*Identifier); !ok {
			p.failMsg(stmt.Start(), "export needs a declaration or an assignment to a name")
		}
		decl.Declaration = assign
		return decl
	default:
		p.fail(p.curToken, "export clause")
	}
	p.endStatement()
	return decl
}
