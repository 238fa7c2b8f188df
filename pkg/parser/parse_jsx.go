package parser

import (
	"github.com/quill-lang/quill/pkg/lexer"
)

// parseJSXElement parses markup from its '<'. The lexer has already split
// the element into tag, attribute, text and `{expr}` tokens; tag and
// attribute names (data-id, Foo.Bar) arrive as single identifiers.
func (p *Parser) parseJSXElement() Expression {
	el := &JSXElement{Token: p.curToken}
	p.expectPeek(lexer.IDENT)
	el.Tag = p.curToken.Literal

attributes:
	for {
		switch {
		case isName(p.peekToken):
			p.nextToken()
			attr := &JSXAttribute{Name: p.curToken.Literal}
			if p.peekTokenIs(lexer.ASSIGN) {
				p.nextToken()
				p.nextToken()
				switch p.curToken.Type {
				case lexer.STRING:
					attr.Value = &StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
				case lexer.LBRACE:
					p.nextToken()
					attr.Value = p.parseExpression(LOWEST)
					p.expectPeek(lexer.RBRACE)
				default:
					p.fail(p.curToken, "attribute value")
				}
			}
			el.Attributes = append(el.Attributes, attr)
		case p.peekTokenIs(lexer.LBRACE):
			p.nextToken()
			p.expectPeek(lexer.SPREAD)
			p.nextToken()
			attr := &JSXAttribute{Spread: true, Value: p.parseExpression(LOWEST)}
			p.expectPeek(lexer.RBRACE)
			el.Attributes = append(el.Attributes, attr)
		default:
			break attributes
		}
	}

	if p.peekTokenIs(lexer.SELF_CLOSE) {
		p.nextToken()
		el.SelfClosing = true
		return el
	}
	p.expectPeek(lexer.GT)

	for {
		switch p.peekToken.Type {
		case lexer.JSX_TEXT:
			p.nextToken()
			el.Children = append(el.Children, &JSXText{Token: p.curToken, Value: p.curToken.Literal})
		case lexer.LBRACE:
			p.nextToken()
			if p.peekTokenIs(lexer.RBRACE) {
				p.nextToken()
				continue
			}
			p.nextToken()
			el.Children = append(el.Children, p.parseExpression(LOWEST))
			p.expectPeek(lexer.RBRACE)
		case lexer.LT:
			p.nextToken()
			if p.peekTokenIs(lexer.SLASH) {
				p.nextToken()
				p.expectPeek(lexer.IDENT)
				if p.curToken.Literal != el.Tag {
					p.failMsg(p.curToken, "closing tag </%s> does not match <%s>", p.curToken.Literal, el.Tag)
				}
				p.expectPeek(lexer.GT)
				return el
			}
			el.Children = append(el.Children, p.parseJSXElement())
		default:
			p.fail(p.peekToken, "closing tag </"+el.Tag+">")
		}
	}
}
