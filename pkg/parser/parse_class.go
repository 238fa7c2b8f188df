package parser

import (
	"github.com/quill-lang/quill/pkg/lexer"
)

// parseFunctionDef parses `def name(params) [-> T]:` with cur on DEF. tok is
// the statement's first token (DEF or ASYNC).
func (p *Parser) parseFunctionDef(tok lexer.Token, decorators []*Decorator, async bool) *FunctionDef {
	fn := &FunctionDef{Token: tok, IsAsync: async, Decorators: decorators}
	p.expectPeek(lexer.IDENT)
	fn.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	p.expectPeek(lexer.LPAREN)
	fn.Parameters = p.parseParameterList(true)
	if err := checkParameterOrder(fn.Parameters); err != nil {
		p.failMsg(err.Token, "%s", err.msg)
	}
	if p.peekTokenIs(lexer.RARROW) {
		p.nextToken()
		p.nextToken()
		fn.ReturnType = p.parseTypeAnnotation()
	}
	p.nextToken()
	fn.Body = p.parseBlock()
	return fn
}

type paramError struct {
	Token lexer.Token
	msg   string
}

// checkParameterOrder enforces: no required parameter after a defaulted
// one, at most one *args and one **kwargs, and **kwargs last.
func checkParameterOrder(params []*Parameter) *paramError {
	seenDefault, seenRest := false, false
	var kwRest *Parameter
	for _, param := range params {
		switch {
		case kwRest != nil:
			return &paramError{param.Token, "no parameters may follow **" + kwRest.Name.Value}
		case param.IsKwRest:
			kwRest = param
		case param.IsRest:
			if seenRest {
				return &paramError{param.Token, "only one *args parameter is allowed"}
			}
			seenRest = true
		case param.Default != nil:
			seenDefault = true
		case seenDefault && !seenRest:
			return &paramError{param.Token, "parameter " + param.Name.Value + " without a default follows a defaulted parameter"}
		}
	}
	return nil
}

// parseDecorated collects `@decorator` lines and attaches them to the
// following def or class.
func (p *Parser) parseDecorated() Statement {
	var decorators []*Decorator
	for p.curTokenIs(lexer.AT) {
		dec := &Decorator{Token: p.curToken}
		p.nextToken()
		dec.Expression = p.parseExpression(LOWEST)
		switch dec.Expression.(type) {
		case *Identifier, *MemberExpression, *CallExpression:
		default:
			p.failMsg(dec.Token, "invalid decorator %s", dec.Expression.String())
		}
		decorators = append(decorators, dec)
		if p.peekTokenIs(lexer.NEWLINE) {
			p.nextToken()
		}
		p.nextToken()
	}

	switch p.curToken.Type {
	case lexer.DEF:
		return p.parseFunctionDef(p.curToken, decorators, false)
	case lexer.ASYNC:
		tok := p.curToken
		p.expectPeek(lexer.DEF)
		return p.parseFunctionDef(tok, decorators, true)
	case lexer.CLASS:
		return p.parseClassDef(decorators)
	}
	p.fail(p.curToken, "def or class after decorator")
	return nil
}

// parseClassDef parses `class Name[(Base)]:`. The body is read as a block
// and then sorted into fields and methods.
func (p *Parser) parseClassDef(decorators []*Decorator) *ClassDef {
	class := &ClassDef{Token: p.curToken, Decorators: decorators}
	p.expectPeek(lexer.IDENT)
	class.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		if !p.peekTokenIs(lexer.RPAREN) {
			p.nextToken()
			class.SuperClass = p.parseExpression(LOWEST)
			if p.peekTokenIs(lexer.COMMA) {
				p.failMsg(p.peekToken, "multiple inheritance is not supported")
			}
		}
		p.expectPeek(lexer.RPAREN)
	}

	p.nextToken()
	body := p.parseBlock()
	for i, stmt := range body.Statements {
		switch s := stmt.(type) {
		case *FunctionDef:
			class.Methods = append(class.Methods, s)
		case *AssignStatement:
			name, ok := s.Target.(*Identifier)
			if !ok || s.Operator != "=" {
				p.failMsg(s.Token, "class fields must be plain names")
			}
			class.Fields = append(class.Fields, &ClassField{Token: s.Token, Name: name, TypeAnnotation: s.TypeAnnotation, Value: s.Value})
		case *LetStatement:
			class.Fields = append(class.Fields, &ClassField{Token: s.Token, Name: s.Name, TypeAnnotation: s.TypeAnnotation, Value: s.Value})
		case *ExpressionStatement:
			if lit, ok := s.Expression.(*StringLiteral); ok && i == 0 {
				class.Docstring = lit.Value
				continue
			}
			p.failMsg(s.Token, "unexpected expression in class body")
		case *PassStatement:
		default:
			p.failMsg(stmt.Start(), "unexpected statement in class body")
		}
	}
	return class
}
