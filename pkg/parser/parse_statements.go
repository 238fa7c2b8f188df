package parser

import (
	"github.com/quill-lang/quill/pkg/lexer"
)

func (p *Parser) parseStatement() Statement {
	debugPrint("parseStatement: cur=%s", p.curToken)
	switch p.curToken.Type {
	case lexer.LET, lexer.CONST:
		return p.parseLetStatement()
	case lexer.DEF:
		return p.parseFunctionDef(p.curToken, nil, false)
	case lexer.ASYNC:
		tok := p.curToken
		switch {
		case p.peekTokenIs(lexer.DEF):
			p.nextToken()
			return p.parseFunctionDef(tok, nil, true)
		case p.peekTokenIs(lexer.FOR):
			p.nextToken()
			stmt := p.parseForStatement()
			stmt.Token, stmt.IsAsync = tok, true
			return stmt
		case p.peekTokenIs(lexer.WITH):
			p.nextToken()
			stmt := p.parseWithStatement()
			stmt.Token, stmt.IsAsync = tok, true
			return stmt
		}
	case lexer.CLASS:
		return p.parseClassDef(nil)
	case lexer.AT:
		return p.parseDecorated()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.TRY:
		return p.parseTryStatement()
	case lexer.WITH:
		return p.parseWithStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.BREAK:
		stmt := &BreakStatement{Token: p.curToken}
		p.endStatement()
		return stmt
	case lexer.CONTINUE:
		stmt := &ContinueStatement{Token: p.curToken}
		p.endStatement()
		return stmt
	case lexer.PASS:
		stmt := &PassStatement{Token: p.curToken}
		p.endStatement()
		return stmt
	case lexer.RAISE:
		return p.parseRaiseStatement()
	case lexer.ASSERT:
		return p.parseAssertStatement()
	case lexer.DEL:
		return p.parseDeleteStatement()
	case lexer.GLOBAL, lexer.NONLOCAL:
		return p.parseGlobalStatement()
	case lexer.IMPORT:
		return p.parseImportStatement()
	case lexer.FROM:
		return p.parseFromImport()
	case lexer.EXPORT:
		return p.parseExportStatement()
	case lexer.INDENT:
		p.failMsg(p.curToken, "unexpected indent")
	case lexer.IDENT:
		if p.curToken.Literal == "match" && !p.peekIsTerminator() && !p.peekTokenIs(lexer.ASSIGN) && !p.peekTokenIs(lexer.DOT) {
			var stmt Statement
			if p.attempt(func() { stmt = p.parseMatchStatement() }) {
				return stmt
			}
		}
	case lexer.LBRACE:
		var stmt Statement
		if p.attempt(func() { stmt = p.parseObjectDestructuring("") }) {
			return stmt
		}
	}
	return p.parseExpressionOrAssignment()
}

// parseExpressionOrAssignment handles expression statements, plain and
// compound assignment, annotated assignment and tuple destructuring.
func (p *Parser) parseExpressionOrAssignment() Statement {
	tok := p.curToken
	expr := p.parseExpressionList()

	switch {
	case p.peekTokenIs(lexer.COLON) && isAnnotatable(expr):
		p.nextToken()
		p.nextToken()
		stmt := &AssignStatement{Token: tok, Target: expr, Operator: "=", TypeAnnotation: p.parseTypeAnnotation()}
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			stmt.Value = p.parseExpressionList()
		}
		p.endStatement()
		return stmt

	case assignOperators[p.peekToken.Type]:
		p.nextToken()
		opTok := p.curToken
		p.nextToken()
		value := p.parseExpressionList()

		var stmt Statement
		switch target := expr.(type) {
		case *Identifier, *MemberExpression, *IndexExpression:
			stmt = &AssignStatement{Token: tok, Target: target, Operator: opTok.Literal, Value: value}
		case *TupleLiteral, *ListLiteral:
			if opTok.Type != lexer.ASSIGN {
				p.failMsg(opTok, "'%s' cannot assign to multiple targets", opTok.Literal)
			}
			stmt = &DestructuringAssignment{Token: tok, Pattern: p.toPattern(target).(Pattern), Value: value}
		default:
			p.failMsg(tok, "cannot assign to %s", expr.String())
		}
		p.endStatement()
		return stmt
	}

	stmt := &ExpressionStatement{Token: tok, Expression: expr}
	p.endStatement()
	return stmt
}

func isAnnotatable(e Expression) bool {
	switch e.(type) {
	case *Identifier, *MemberExpression:
		return true
	}
	return false
}

// parseLetStatement handles `let`/`const` declarations, including the
// destructuring forms `let [a, b] = xs` and `const {a, b} = obj`.
func (p *Parser) parseLetStatement() Statement {
	tok := p.curToken
	kind := "let"
	if tok.Type == lexer.CONST {
		kind = "const"
	}

	switch {
	case p.peekTokenIs(lexer.LBRACE):
		p.nextToken()
		return p.parseObjectDestructuring(kind)
	case p.peekTokenIs(lexer.LBRACKET):
		p.nextToken()
		pattern := p.toPattern(p.parseListLiteral())
		p.expectPeek(lexer.ASSIGN)
		p.nextToken()
		stmt := &DestructuringAssignment{Token: tok, Kind: kind, Pattern: pattern.(Pattern), Value: p.parseExpressionList()}
		p.endStatement()
		return stmt
	}

	stmt := &LetStatement{Token: tok}
	p.expectPeek(lexer.IDENT)
	stmt.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		stmt.TypeAnnotation = p.parseTypeAnnotation()
	}
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Value = p.parseExpressionList()
	} else if stmt.IsConst() {
		p.failMsg(stmt.Name.Token, "const %s must be initialized", stmt.Name.Value)
	}
	p.endStatement()
	return stmt
}

// parseObjectDestructuring parses `{a, b: c, ...rest} = value` from the '{'.
func (p *Parser) parseObjectDestructuring(kind string) Statement {
	tok := p.curToken
	pattern := p.parseObjectPattern()
	p.expectPeek(lexer.ASSIGN)
	p.nextToken()
	stmt := &DestructuringAssignment{Token: tok, Kind: kind, Pattern: pattern, Value: p.parseExpressionList()}
	p.endStatement()
	return stmt
}

func (p *Parser) parseObjectPattern() *ObjectPattern {
	pattern := &ObjectPattern{Token: p.curToken}
	p.skipNewlines()
	if p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		return pattern
	}
	for {
		p.skipNewlines()
		p.nextToken()
		switch {
		case p.curTokenIs(lexer.SPREAD) || p.curTokenIs(lexer.POWER):
			p.expectPeek(lexer.IDENT)
			pattern.Rest = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		case p.curTokenIs(lexer.IDENT):
			prop := &PatternProperty{Key: &Identifier{Token: p.curToken, Value: p.curToken.Literal}}
			if p.peekTokenIs(lexer.COLON) {
				p.nextToken()
				p.nextToken()
				prop.Target = p.parsePatternTarget()
			}
			if p.peekTokenIs(lexer.ASSIGN) {
				p.nextToken()
				p.nextToken()
				prop.Default = p.parseExpression(LOWEST)
			}
			pattern.Properties = append(pattern.Properties, prop)
		default:
			p.fail(p.curToken, "property name")
		}
		p.skipNewlines()
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
		p.skipNewlines()
		if p.peekTokenIs(lexer.RBRACE) {
			break
		}
	}
	p.skipNewlines()
	p.expectPeek(lexer.RBRACE)
	return pattern
}

func (p *Parser) parsePatternTarget() Expression {
	switch p.curToken.Type {
	case lexer.LBRACE:
		return p.parseObjectPattern()
	case lexer.LBRACKET:
		return p.toPattern(p.parseListLiteral())
	case lexer.IDENT:
		return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}
	p.fail(p.curToken, "destructuring target")
	return nil
}

// --- Blocks ---

// parseBlock parses a suite starting at ':' or '{'. Colon suites are either
// an indented block or simple statements on the same line. On return the
// cursor sits on the token that closed the block.
func (p *Parser) parseBlock() *BlockStatement {
	switch p.curToken.Type {
	case lexer.COLON:
		block := &BlockStatement{Token: p.curToken}
		if !p.peekTokenIs(lexer.NEWLINE) {
			for {
				p.nextToken()
				block.Statements = append(block.Statements, p.parseStatement())
				if !p.curTokenIs(lexer.SEMICOLON) || p.peekIsTerminator() {
					break
				}
			}
			return block
		}
		p.nextToken()
		if !p.peekTokenIs(lexer.INDENT) {
			p.fail(p.peekToken, "indented block")
		}
		p.nextToken()
		p.nextToken()
		for !p.curTokenIs(lexer.DEDENT) {
			if p.curTokenIs(lexer.EOF) {
				p.fail(p.curToken, "dedent")
			}
			if p.curTokenIs(lexer.NEWLINE) || p.curTokenIs(lexer.SEMICOLON) {
				p.nextToken()
				continue
			}
			block.Statements = append(block.Statements, p.parseStatement())
			p.nextToken()
		}
		return block
	case lexer.LBRACE:
		return p.parseBraceBlock()
	}
	p.fail(p.curToken, "':' or '{'")
	return nil
}

// parseBraceBlock parses `{ statements }`; cur ends on the '}'.
func (p *Parser) parseBraceBlock() *BlockStatement {
	block := &BlockStatement{Token: p.curToken}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) {
		switch p.curToken.Type {
		case lexer.EOF:
			p.fail(p.curToken, "'}'")
		case lexer.NEWLINE, lexer.SEMICOLON:
			p.nextToken()
			continue
		}
		block.Statements = append(block.Statements, p.parseStatement())
		p.nextToken()
	}
	return block
}

// --- Compound statements ---

func (p *Parser) parseIfStatement() *IfStatement {
	stmt := &IfStatement{Token: p.curToken}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	p.nextToken()
	stmt.Consequence = p.parseBlock()

	p.skipNewlineBefore(lexer.ELIF, lexer.ELSE)
	switch {
	case p.peekTokenIs(lexer.ELIF):
		p.nextToken()
		stmt.Alternative = p.parseIfStatement()
	case p.peekTokenIs(lexer.ELSE):
		p.nextToken()
		if p.peekTokenIs(lexer.IF) {
			p.nextToken()
			stmt.Alternative = p.parseIfStatement()
		} else {
			p.nextToken()
			stmt.Alternative = p.parseBlock()
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() *WhileStatement {
	stmt := &WhileStatement{Token: p.curToken}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	p.nextToken()
	stmt.Body = p.parseBlock()
	return stmt
}

// parseForStatement accepts `for target in iterable:` and the brace form
// `for (target in iterable) {` (also spelled with `of`).
func (p *Parser) parseForStatement() *ForStatement {
	stmt := &ForStatement{Token: p.curToken}
	if p.peekTokenIs(lexer.LPAREN) {
		if p.attempt(func() {
			p.nextToken()
			p.nextToken()
			stmt.Target = p.parseTargetList()
			if p.peekTokenIs(lexer.IDENT) && p.peekToken.Literal == "of" {
				p.nextToken()
			} else {
				p.expectPeek(lexer.IN)
			}
			p.nextToken()
			stmt.Iterable = p.parseExpression(LOWEST)
			p.expectPeek(lexer.RPAREN)
			p.expectPeek(lexer.LBRACE)
		}) {
			stmt.Body = p.parseBraceBlock()
			return stmt
		}
	}

	p.nextToken()
	stmt.Target = p.parseTargetList()
	p.expectPeek(lexer.IN)
	p.nextToken()
	stmt.Iterable = p.parseExpressionList()
	p.nextToken()
	stmt.Body = p.parseBlock()
	return stmt
}

func (p *Parser) parseTryStatement() *TryStatement {
	stmt := &TryStatement{Token: p.curToken}
	p.nextToken()
	stmt.Body = p.parseBlock()

	for {
		p.skipNewlineBefore(lexer.EXCEPT)
		if !p.peekTokenIs(lexer.EXCEPT) {
			break
		}
		p.nextToken()
		handler := &ExceptHandler{Token: p.curToken}
		if !p.peekTokenIs(lexer.COLON) && !p.peekTokenIs(lexer.LBRACE) {
			p.nextToken()
			handler.Type = p.parseExpression(LOWEST)
			if p.peekTokenIs(lexer.AS) {
				p.nextToken()
				p.expectPeek(lexer.IDENT)
				handler.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
			}
		}
		p.nextToken()
		handler.Body = p.parseBlock()
		stmt.Handlers = append(stmt.Handlers, handler)
	}

	p.skipNewlineBefore(lexer.ELSE)
	if p.peekTokenIs(lexer.ELSE) {
		if len(stmt.Handlers) == 0 {
			p.failMsg(p.peekToken, "try/else requires an except clause")
		}
		p.nextToken()
		p.nextToken()
		stmt.Else = p.parseBlock()
	}
	p.skipNewlineBefore(lexer.FINALLY)
	if p.peekTokenIs(lexer.FINALLY) {
		p.nextToken()
		p.nextToken()
		stmt.Finally = p.parseBlock()
	}
	if len(stmt.Handlers) == 0 && stmt.Finally == nil {
		p.failMsg(stmt.Token, "try statement needs an except or finally clause")
	}
	return stmt
}

func (p *Parser) parseWithStatement() *WithStatement {
	stmt := &WithStatement{Token: p.curToken}
	for {
		p.nextToken()
		item := &WithItem{Context: p.parseExpression(LOWEST)}
		if p.peekTokenIs(lexer.AS) {
			p.nextToken()
			p.expectPeek(lexer.IDENT)
			item.Target = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		}
		stmt.Items = append(stmt.Items, item)
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	p.nextToken()
	stmt.Body = p.parseBlock()
	return stmt
}

// parseMatchStatement parses `match subject:` with `case` arms. `match` is
// a soft keyword, so callers run this speculatively.
func (p *Parser) parseMatchStatement() *MatchStatement {
	stmt := &MatchStatement{Token: p.curToken}
	p.nextToken()
	stmt.Subject = p.parseExpressionList()
	p.nextToken()

	var closer lexer.TokenType
	switch p.curToken.Type {
	case lexer.COLON:
		p.expectPeek(lexer.NEWLINE)
		if !p.peekTokenIs(lexer.INDENT) {
			p.fail(p.peekToken, "indented block")
		}
		p.nextToken()
		closer = lexer.DEDENT
	case lexer.LBRACE:
		closer = lexer.RBRACE
	default:
		p.fail(p.curToken, "':' or '{'")
	}

	p.nextToken()
	for !p.curTokenIs(closer) {
		switch p.curToken.Type {
		case lexer.EOF:
			p.fail(p.curToken, describeType(closer))
		case lexer.NEWLINE, lexer.SEMICOLON:
			p.nextToken()
			continue
		}
		stmt.Cases = append(stmt.Cases, p.parseMatchCase())
		p.nextToken()
	}
	if len(stmt.Cases) == 0 {
		p.failMsg(stmt.Token, "match statement needs at least one case")
	}
	return stmt
}

func (p *Parser) parseMatchCase() *MatchCase {
	if !p.curTokenIs(lexer.IDENT) || p.curToken.Literal != "case" {
		p.fail(p.curToken, "'case'")
	}
	mc := &MatchCase{Token: p.curToken}
	p.nextToken()
	mc.Pattern = p.parseMatchPattern(true)
	if p.peekTokenIs(lexer.IF) {
		p.nextToken()
		p.nextToken()
		mc.Guard = p.parseExpression(LOWEST)
	}
	p.nextToken()
	mc.Body = p.parseBlock()
	return mc
}

// parseMatchPattern parses alternatives joined by '|'. At the top level a
// comma-separated list is an open sequence pattern.
func (p *Parser) parseMatchPattern(top bool) MatchPattern {
	tok := p.curToken
	pattern := p.parseOrPattern()
	if !top || !p.peekTokenIs(lexer.COMMA) {
		return pattern
	}
	seq := &SequencePattern{Token: tok, Elements: []MatchPattern{pattern}}
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if p.peekTokenIs(lexer.COLON) || p.peekTokenIs(lexer.LBRACE) || p.peekTokenIs(lexer.IF) {
			break
		}
		p.nextToken()
		seq.Elements = append(seq.Elements, p.parseOrPattern())
	}
	return seq
}

func (p *Parser) parseOrPattern() MatchPattern {
	tok := p.curToken
	first := p.parseClosedPattern()
	if !p.peekTokenIs(lexer.PIPE) {
		return first
	}
	or := &OrPattern{Token: tok, Alternatives: []MatchPattern{first}}
	for p.peekTokenIs(lexer.PIPE) {
		p.nextToken()
		p.nextToken()
		or.Alternatives = append(or.Alternatives, p.parseClosedPattern())
	}
	return or
}

func (p *Parser) parseClosedPattern() MatchPattern {
	tok := p.curToken
	switch tok.Type {
	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.TRUE, lexer.FALSE, lexer.NONE:
		return &LiteralPattern{Token: tok, Value: p.prefixParseFns[tok.Type]()}
	case lexer.MINUS:
		if !p.peekTokenIs(lexer.INT) && !p.peekTokenIs(lexer.FLOAT) {
			p.fail(p.peekToken, "number")
		}
		return &LiteralPattern{Token: tok, Value: p.parsePrefixExpression()}
	case lexer.IDENT:
		if tok.Literal == "_" {
			return &WildcardPattern{Token: tok}
		}
		if p.peekTokenIs(lexer.DOT) {
			return &ValuePattern{Token: tok, Value: p.parseExpression(LESSGREATER)}
		}
		if p.peekTokenIs(lexer.LPAREN) {
			p.failMsg(tok, "class patterns are not supported")
		}
		return &CapturePattern{Token: tok, Name: &Identifier{Token: tok, Value: tok.Literal}}
	case lexer.LPAREN, lexer.LBRACKET:
		closer := lexer.RPAREN
		if tok.Type == lexer.LBRACKET {
			closer = lexer.RBRACKET
		}
		seq := &SequencePattern{Token: tok}
		trailingComma := false
		for !p.peekTokenIs(closer) {
			p.nextToken()
			seq.Elements = append(seq.Elements, p.parseOrPattern())
			trailingComma = false
			if !p.peekTokenIs(lexer.COMMA) {
				break
			}
			p.nextToken()
			trailingComma = true
		}
		p.expectPeek(closer)
		// (p) is a grouping, not a one-element sequence
		if tok.Type == lexer.LPAREN && len(seq.Elements) == 1 && !trailingComma {
			return seq.Elements[0]
		}
		return seq
	}
	p.fail(tok, "pattern")
	return nil
}

// --- Simple statements ---

func (p *Parser) parseReturnStatement() *ReturnStatement {
	stmt := &ReturnStatement{Token: p.curToken}
	if !p.peekIsTerminator() {
		p.nextToken()
		stmt.ReturnValue = p.parseExpressionList()
	}
	p.endStatement()
	return stmt
}

func (p *Parser) parseRaiseStatement() *RaiseStatement {
	stmt := &RaiseStatement{Token: p.curToken}
	if !p.peekIsTerminator() {
		p.nextToken()
		stmt.Exception = p.parseExpression(LOWEST)
		if p.peekTokenIs(lexer.FROM) {
			p.nextToken()
			p.nextToken()
			stmt.Cause = p.parseExpression(LOWEST)
		}
	}
	p.endStatement()
	return stmt
}

func (p *Parser) parseAssertStatement() *AssertStatement {
	stmt := &AssertStatement{Token: p.curToken}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		stmt.Message = p.parseExpression(LOWEST)
	}
	p.endStatement()
	return stmt
}

func (p *Parser) parseDeleteStatement() *DeleteStatement {
	stmt := &DeleteStatement{Token: p.curToken}
	for {
		p.nextToken()
		target := p.parseExpression(LOWEST)
		switch target.(type) {
		case *Identifier, *MemberExpression, *IndexExpression:
		default:
			p.failMsg(target.Start(), "cannot delete %s", target.String())
		}
		stmt.Targets = append(stmt.Targets, target)
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	p.endStatement()
	return stmt
}

func (p *Parser) parseGlobalStatement() *GlobalStatement {
	stmt := &GlobalStatement{Token: p.curToken, Nonlocal: p.curTokenIs(lexer.NONLOCAL)}
	for {
		p.expectPeek(lexer.IDENT)
		stmt.Names = append(stmt.Names, &Identifier{Token: p.curToken, Value: p.curToken.Literal})
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	p.endStatement()
	return stmt
}
