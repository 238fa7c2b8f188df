package parser

import (
	"github.com/quill-lang/quill/pkg/lexer"
)

// parseTypeAnnotation parses a type from the current token:
// unions bind loosest, then intersections, then primaries.
func (p *Parser) parseTypeAnnotation() TypeExpression {
	tok := p.curToken
	first := p.parseIntersectionType()
	if !p.peekTokenIs(lexer.PIPE) {
		return first
	}
	union := &UnionTypeExpr{Token: tok, Types: []TypeExpression{first}}
	for p.peekTokenIs(lexer.PIPE) {
		p.nextToken()
		p.nextToken()
		union.Types = append(union.Types, p.parseIntersectionType())
	}
	return union
}

func (p *Parser) parseIntersectionType() TypeExpression {
	tok := p.curToken
	first := p.parsePrimaryType()
	if !p.peekTokenIs(lexer.AMPERSAND) {
		return first
	}
	inter := &IntersectionTypeExpr{Token: tok, Types: []TypeExpression{first}}
	for p.peekTokenIs(lexer.AMPERSAND) {
		p.nextToken()
		p.nextToken()
		inter.Types = append(inter.Types, p.parsePrimaryType())
	}
	return inter
}

func (p *Parser) parsePrimaryType() TypeExpression {
	tok := p.curToken
	switch tok.Type {
	case lexer.NONE:
		return &TypeName{Token: tok, Name: "None"}
	case lexer.IDENT:
		named := &TypeName{Token: tok, Name: tok.Literal}
		for p.peekTokenIs(lexer.DOT) {
			p.nextToken()
			named.Name += "." + p.expectName().Value
		}
		if p.peekTokenIs(lexer.LBRACKET) {
			p.nextToken()
			named.Args = p.parseTypeList(lexer.RBRACKET)
		}
		return named
	case lexer.STRING, lexer.INT, lexer.FLOAT, lexer.TRUE, lexer.FALSE:
		return &LiteralTypeExpr{Token: tok, Value: p.prefixParseFns[tok.Type]()}
	case lexer.LBRACKET:
		return &TypeListExpr{Token: tok, Types: p.parseTypeList(lexer.RBRACKET)}
	case lexer.LPAREN:
		p.nextToken()
		inner := p.parseTypeAnnotation()
		p.expectPeek(lexer.RPAREN)
		return inner
	}
	p.fail(tok, "type")
	return nil
}

// parseTypeList parses comma-separated types up to closer, from the opener.
func (p *Parser) parseTypeList(closer lexer.TokenType) []TypeExpression {
	var types []TypeExpression
	if p.peekTokenIs(closer) {
		p.nextToken()
		return types
	}
	for {
		p.nextToken()
		types = append(types, p.parseTypeAnnotation())
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	p.expectPeek(closer)
	return types
}
