package parser

import (
	"strconv"
	"strings"

	"github.com/quill-lang/quill/pkg/lexer"
)

// --- Literals ---

func (p *Parser) parseIdentifier() Expression {
	ident := &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if p.peekTokenIs(lexer.ARROW) {
		p.nextToken()
		param := &Parameter{Token: ident.Token, Name: ident}
		return p.parseArrowBody(ident.Token, []*Parameter{param}, false)
	}
	return ident
}

func (p *Parser) parseIntegerLiteral() Expression {
	lit := &IntegerLiteral{Token: p.curToken}
	text := strings.ReplaceAll(p.curToken.Literal, "_", "")
	// base 0 honours the 0x/0o/0b prefixes; plain decimals keep base 10
	base := 10
	if len(text) > 1 && text[0] == '0' && strings.ContainsAny(text[1:2], "xXoObB") {
		base = 0
	}
	value, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		p.failMsg(p.curToken, "integer literal %s is out of range", p.curToken.Literal)
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseFloatLiteral() Expression {
	lit := &FloatLiteral{Token: p.curToken}
	value, err := strconv.ParseFloat(strings.ReplaceAll(p.curToken.Literal, "_", ""), 64)
	if err != nil {
		p.failMsg(p.curToken, "could not parse %q as float", p.curToken.Literal)
	}
	lit.Value = value
	return lit
}

// parseStringLiteral joins adjacent literals: "a" "b" is "ab".
func (p *Parser) parseStringLiteral() Expression {
	lit := &StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
	for p.peekTokenIs(lexer.STRING) {
		p.nextToken()
		lit.Value += p.curToken.Literal
	}
	return lit
}

func (p *Parser) parseBooleanLiteral() Expression {
	return &BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNoneLiteral() Expression {
	return &NoneLiteral{Token: p.curToken}
}

// --- Operators ---

func (p *Parser) parsePrefixExpression() Expression {
	expr := &UnaryExpression{Token: p.curToken, Operator: p.curToken.Literal}
	var precedence int
	switch p.curToken.Type {
	case lexer.MINUS, lexer.PLUS:
		// -x ** 2 is -(x ** 2)
		precedence = PRODUCT
	case lexer.NOT:
		precedence = LOGICAL_NOT
	default:
		precedence = PREFIX
	}
	p.nextToken()
	expr.Operand = p.parseExpression(precedence)
	return expr
}

func (p *Parser) parseInfixExpression(left Expression) Expression {
	expr := &BinaryExpression{Token: p.curToken, Operator: p.curToken.Literal, Left: left}
	precedence := p.curPrecedence()

	switch p.curToken.Type {
	case lexer.LOGICAL_AND:
		expr.Operator = "and"
	case lexer.LOGICAL_OR:
		expr.Operator = "or"
	case lexer.IS:
		if p.peekTokenIs(lexer.NOT) {
			p.nextToken()
			expr.Operator = "is not"
		}
	case lexer.NOT:
		p.expectPeek(lexer.IN)
		expr.Operator = "not in"
	case lexer.POWER:
		precedence-- // right-associative
	}

	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	return expr
}

// parseConditionalExpression handles `cond ? a : b`. The alternative binds
// loosely so ternaries chain to the right.
func (p *Parser) parseConditionalExpression(condition Expression) Expression {
	expr := &ConditionalExpression{Token: p.curToken, Condition: condition}
	p.nextToken()
	expr.Consequence = p.parseExpression(LOWEST)
	p.expectPeek(lexer.COLON)
	p.nextToken()
	expr.Alternative = p.parseExpression(TERNARY - 1)
	return expr
}

// parseIfElseExpression handles `a if cond else b`, producing the same node
// as `cond ? a : b`. The condition may not itself be a bare conditional.
func (p *Parser) parseIfElseExpression(consequence Expression) Expression {
	expr := &ConditionalExpression{Token: p.curToken, Consequence: consequence}
	p.nextToken()
	expr.Condition = p.parseExpression(TERNARY)
	p.expectPeek(lexer.ELSE)
	p.nextToken()
	expr.Alternative = p.parseExpression(TERNARY - 1)
	return expr
}

func (p *Parser) parseAssignmentExpression(left Expression) Expression {
	target, ok := left.(*Identifier)
	if !ok {
		p.failMsg(p.curToken, "cannot use := with %s", left.String())
	}
	expr := &AssignmentExpression{Token: p.curToken, Target: target}
	p.nextToken()
	expr.Value = p.parseExpression(LOWEST)
	return expr
}

func (p *Parser) parseSpreadElement() Expression {
	spread := &SpreadElement{Token: p.curToken, Double: p.curTokenIs(lexer.POWER)}
	p.nextToken()
	spread.Argument = p.parseExpression(PREFIX)
	return spread
}

func (p *Parser) parseYieldExpression() Expression {
	expr := &YieldExpression{Token: p.curToken}
	if p.peekIsTerminator() || p.peekTokenIs(lexer.RPAREN) || p.peekTokenIs(lexer.COMMA) {
		return expr
	}
	p.nextToken()
	expr.Value = p.parseExpression(LOWEST)
	return expr
}

func (p *Parser) parseNewExpression() Expression {
	expr := &NewExpression{Token: p.curToken}
	p.nextToken()
	expr.Callee = p.parseExpression(CALL)
	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		expr.Arguments = p.parseCallArguments()
	}
	return expr
}

// --- Calls, members, indexing ---

func (p *Parser) parseCallExpression(function Expression) Expression {
	call := &CallExpression{Token: p.curToken, Function: function}
	call.Arguments = p.parseCallArguments()
	return call
}

// parseCallArguments parses from '(' to the matching ')'. A sole generator
// argument is allowed: sum(x for x in xs).
func (p *Parser) parseCallArguments() []Expression {
	var args []Expression
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return args
	}
	open := p.curToken
	p.nextToken()
	for {
		arg := p.parseArgument()
		if len(args) == 0 && p.peekTokenIs(lexer.FOR) {
			arg = &Comprehension{Token: open, Kind: ListComp, Element: arg, Clauses: p.parseComprehensionClauses()}
		}
		args = append(args, arg)
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(lexer.RPAREN) {
			break
		}
		p.nextToken()
	}
	p.expectPeek(lexer.RPAREN)
	return args
}

func (p *Parser) parseArgument() Expression {
	if p.curTokenIs(lexer.IDENT) && p.peekTokenIs(lexer.ASSIGN) {
		name := &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		p.nextToken()
		p.nextToken()
		return &KeywordArgument{Token: name.Token, Name: name, Value: p.parseExpression(LOWEST)}
	}
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseMemberExpression(object Expression) Expression {
	expr := &MemberExpression{Token: p.curToken, Object: object, Optional: p.curTokenIs(lexer.OPTIONAL_CHAIN)}
	expr.Property = p.expectName()
	return expr
}

// parseIndexExpression handles a[i] and the slice forms a[lo:hi:step].
func (p *Parser) parseIndexExpression(left Expression) Expression {
	tok := p.curToken
	p.nextToken()

	var lower Expression
	if !p.curTokenIs(lexer.COLON) {
		lower = p.parseExpression(LOWEST)
		if !p.peekTokenIs(lexer.COLON) {
			p.expectPeek(lexer.RBRACKET)
			return &IndexExpression{Token: tok, Left: left, Index: lower}
		}
		p.nextToken()
	}

	slice := &SliceExpression{Token: tok, Left: left, Lower: lower}
	if !p.peekTokenIs(lexer.COLON) && !p.peekTokenIs(lexer.RBRACKET) {
		p.nextToken()
		slice.Upper = p.parseExpression(LOWEST)
	}
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		if !p.peekTokenIs(lexer.RBRACKET) {
			p.nextToken()
			slice.Step = p.parseExpression(LOWEST)
		}
	}
	p.expectPeek(lexer.RBRACKET)
	return slice
}

// --- Groups, tuples and arrow functions ---

// parseGroupedExpression covers `(expr)`, tuples, generator expressions and
// arrow functions. The contents are first read as an expression list; if
// that fails they are retried as a full parameter list.
func (p *Parser) parseGroupedExpression() Expression {
	tok := p.curToken
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		if p.peekTokenIs(lexer.ARROW) {
			p.nextToken()
			return p.parseArrowBody(tok, nil, false)
		}
		return &TupleLiteral{Token: tok}
	}

	var result Expression
	if p.attempt(func() { result = p.parseParenContents(tok) }) {
		return result
	}
	if p.attempt(func() { result = p.parseArrowWithParams(tok, false) }) {
		return result
	}
	// neither reading worked; report the error of the plain reading
	return p.parseParenContents(tok)
}

func (p *Parser) parseParenContents(tok lexer.Token) Expression {
	p.nextToken()
	first := p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.FOR) {
		comp := &Comprehension{Token: tok, Kind: ListComp, Element: first, Clauses: p.parseComprehensionClauses()}
		p.expectPeek(lexer.RPAREN)
		return comp
	}

	elements := []Expression{first}
	trailingComma := false
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if p.peekTokenIs(lexer.RPAREN) {
			trailingComma = true
			break
		}
		p.nextToken()
		elements = append(elements, p.parseExpression(LOWEST))
	}
	p.expectPeek(lexer.RPAREN)

	if p.peekTokenIs(lexer.ARROW) {
		params := make([]*Parameter, 0, len(elements))
		for _, el := range elements {
			switch n := el.(type) {
			case *Identifier:
				params = append(params, &Parameter{Token: n.Token, Name: n})
			case *SpreadElement:
				id, ok := n.Argument.(*Identifier)
				if !ok || n.Double {
					p.failMsg(n.Token, "invalid rest parameter")
				}
				params = append(params, &Parameter{Token: n.Token, Name: id, IsRest: true})
			default:
				p.failMsg(el.Start(), "arrow function parameters must be names")
			}
		}
		p.nextToken()
		return p.parseArrowBody(tok, params, false)
	}

	if len(elements) == 1 && !trailingComma {
		return first
	}
	return &TupleLiteral{Token: tok, Elements: elements}
}

// parseArrowWithParams parses `(params) [-> T] => body` from the '('.
func (p *Parser) parseArrowWithParams(tok lexer.Token, async bool) Expression {
	params := p.parseParameterList(true)
	if p.peekTokenIs(lexer.RARROW) {
		// return annotations on arrows are accepted and ignored
		p.nextToken()
		p.nextToken()
		p.parseTypeAnnotation()
	}
	p.expectPeek(lexer.ARROW)
	return p.parseArrowBody(tok, params, async)
}

// parseArrowBody parses what follows '=>'. A '{' opens a block body when it
// parses as one and a dict literal otherwise.
func (p *Parser) parseArrowBody(tok lexer.Token, params []*Parameter, async bool) Expression {
	p.nextToken()
	fn := &ArrowFunction{Token: tok, Parameters: params, IsAsync: async}
	if p.curTokenIs(lexer.LBRACE) {
		var block *BlockStatement
		if p.attempt(func() { block = p.parseBraceBlock() }) {
			fn.Body = block
			return fn
		}
	}
	fn.Body = p.parseExpression(LOWEST)
	return fn
}

func (p *Parser) parseAsyncArrow() Expression {
	tok := p.curToken
	switch {
	case p.peekTokenIs(lexer.LPAREN):
		p.nextToken()
		return p.parseArrowWithParams(tok, true)
	case p.peekTokenIs(lexer.IDENT):
		p.nextToken()
		param := &Parameter{Token: p.curToken, Name: &Identifier{Token: p.curToken, Value: p.curToken.Literal}}
		p.expectPeek(lexer.ARROW)
		return p.parseArrowBody(tok, []*Parameter{param}, true)
	}
	p.fail(p.peekToken, "arrow function after 'async'")
	return nil
}

// parseLambda handles `lambda a, b=1: body`. Lambda parameters take no
// annotations since ':' ends the parameter list.
func (p *Parser) parseLambda() Expression {
	fn := &ArrowFunction{Token: p.curToken, IsLambda: true}
	if !p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		for {
			if param := p.parseParameter(false); param != nil {
				fn.Parameters = append(fn.Parameters, param)
			}
			if !p.peekTokenIs(lexer.COMMA) {
				break
			}
			p.nextToken()
			p.nextToken()
		}
	}
	p.expectPeek(lexer.COLON)
	p.nextToken()
	fn.Body = p.parseExpression(LOWEST)
	return fn
}

// parseParameterList parses from '(' to the matching ')'.
func (p *Parser) parseParameterList(annotations bool) []*Parameter {
	var params []*Parameter
	p.skipNewlines()
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	for {
		if param := p.parseParameter(annotations); param != nil {
			params = append(params, param)
		}
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(lexer.RPAREN) {
			break
		}
		p.nextToken()
	}
	p.expectPeek(lexer.RPAREN)
	return params
}

// parseParameter returns nil for the bare `*` and `/` markers.
func (p *Parser) parseParameter(annotations bool) *Parameter {
	param := &Parameter{Token: p.curToken}
	switch p.curToken.Type {
	case lexer.ASTERISK, lexer.SLASH:
		if p.peekTokenIs(lexer.COMMA) || p.peekTokenIs(lexer.RPAREN) {
			return nil
		}
		if p.curTokenIs(lexer.SLASH) {
			p.fail(p.peekToken, "',' or ')'")
		}
		param.IsRest = true
		p.nextToken()
	case lexer.SPREAD:
		param.IsRest = true
		p.nextToken()
	case lexer.POWER:
		param.IsKwRest = true
		p.nextToken()
	}
	if !p.curTokenIs(lexer.IDENT) {
		p.fail(p.curToken, "parameter name")
	}
	param.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if annotations && p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		param.TypeAnnotation = p.parseTypeAnnotation()
	}
	if p.peekTokenIs(lexer.ASSIGN) {
		if param.IsRest || param.IsKwRest {
			p.failMsg(p.peekToken, "rest parameter %s cannot have a default", param.Name.Value)
		}
		p.nextToken()
		p.nextToken()
		param.Default = p.parseExpression(LOWEST)
	}
	return param
}

// --- Collections ---

func (p *Parser) parseListLiteral() Expression {
	list := &ListLiteral{Token: p.curToken}
	if p.peekTokenIs(lexer.RBRACKET) {
		p.nextToken()
		return list
	}
	p.nextToken()
	first := p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.FOR) {
		comp := &Comprehension{Token: list.Token, Kind: ListComp, Element: first, Clauses: p.parseComprehensionClauses()}
		p.expectPeek(lexer.RBRACKET)
		return comp
	}
	list.Elements = append(list.Elements, first)
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if p.peekTokenIs(lexer.RBRACKET) {
			break
		}
		p.nextToken()
		list.Elements = append(list.Elements, p.parseExpression(LOWEST))
	}
	p.expectPeek(lexer.RBRACKET)
	return list
}

// parseBraceLiteral parses dicts, sets and their comprehensions. Line
// breaks inside the braces are insignificant.
func (p *Parser) parseBraceLiteral() Expression {
	tok := p.curToken
	p.skipNewlines()
	if p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		return &DictLiteral{Token: tok}
	}
	p.nextToken()

	if p.curTokenIs(lexer.POWER) {
		dict := &DictLiteral{Token: tok, Entries: []*DictEntry{p.parseDictEntry()}}
		return p.finishDict(dict)
	}

	first := p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if p.peekTokenIs(lexer.FOR) {
			comp := &Comprehension{Token: tok, Kind: DictComp, Key: first, Element: value, Clauses: p.parseComprehensionClauses()}
			p.skipNewlines()
			p.expectPeek(lexer.RBRACE)
			return comp
		}
		dict := &DictLiteral{Token: tok, Entries: []*DictEntry{{Key: first, Value: value}}}
		return p.finishDict(dict)
	}

	if p.peekTokenIs(lexer.FOR) {
		comp := &Comprehension{Token: tok, Kind: SetComp, Element: first, Clauses: p.parseComprehensionClauses()}
		p.skipNewlines()
		p.expectPeek(lexer.RBRACE)
		return comp
	}
	set := &SetLiteral{Token: tok, Elements: []Expression{first}}
	for p.nextElement() {
		set.Elements = append(set.Elements, p.parseExpression(LOWEST))
	}
	p.skipNewlines()
	p.expectPeek(lexer.RBRACE)
	return set
}

func (p *Parser) finishDict(dict *DictLiteral) Expression {
	for p.nextElement() {
		dict.Entries = append(dict.Entries, p.parseDictEntry())
	}
	p.skipNewlines()
	p.expectPeek(lexer.RBRACE)
	return dict
}

// nextElement moves to the next element of a brace collection, reporting
// false at the closing brace.
func (p *Parser) nextElement() bool {
	p.skipNewlines()
	if !p.peekTokenIs(lexer.COMMA) {
		return false
	}
	p.nextToken()
	p.skipNewlines()
	if p.peekTokenIs(lexer.RBRACE) {
		return false
	}
	p.nextToken()
	return true
}

func (p *Parser) parseDictEntry() *DictEntry {
	if p.curTokenIs(lexer.POWER) {
		p.nextToken()
		return &DictEntry{Value: p.parseExpression(LOWEST), Spread: true}
	}
	entry := &DictEntry{Key: p.parseExpression(LOWEST)}
	p.expectPeek(lexer.COLON)
	p.nextToken()
	entry.Value = p.parseExpression(LOWEST)
	return entry
}

// parseComprehensionClauses parses one or more `for ... in ... [if ...]`
// clauses following the element expression.
func (p *Parser) parseComprehensionClauses() []*ComprehensionClause {
	var clauses []*ComprehensionClause
	for p.peekTokenIs(lexer.FOR) || (p.peekTokenIs(lexer.ASYNC) && p.peekSecondIs(lexer.FOR)) {
		p.nextToken()
		clause := &ComprehensionClause{Token: p.curToken}
		if p.curTokenIs(lexer.ASYNC) {
			clause.IsAsync = true
			p.nextToken()
		}
		p.nextToken()
		clause.Target = p.parseTargetList()
		p.expectPeek(lexer.IN)
		p.nextToken()
		clause.Iterable = p.parseExpression(TERNARY)
		for p.peekTokenIs(lexer.IF) {
			p.nextToken()
			p.nextToken()
			clause.Conditions = append(clause.Conditions, p.parseExpression(TERNARY))
		}
		clauses = append(clauses, clause)
	}
	return clauses
}

// parseTargetList parses loop targets: `x`, `k, v` or `(a, [b, c])`. Targets
// stop before `in`.
func (p *Parser) parseTargetList() Expression {
	first := p.toPattern(p.parseExpression(LESSGREATER))
	if !p.peekTokenIs(lexer.COMMA) {
		return first
	}
	pattern := &ArrayPattern{Token: first.Start(), Elements: []Expression{first}}
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if p.peekTokenIs(lexer.IN) {
			break
		}
		p.nextToken()
		pattern.Elements = append(pattern.Elements, p.toPattern(p.parseExpression(LESSGREATER)))
	}
	return pattern
}

// toPattern converts an expression parsed in target position into an
// assignment target.
func (p *Parser) toPattern(e Expression) Expression {
	switch n := e.(type) {
	case *Identifier, *MemberExpression, *IndexExpression, *ArrayPattern, *ObjectPattern:
		return e
	case *TupleLiteral:
		return p.arrayPattern(n.Token, n.Elements)
	case *ListLiteral:
		return p.arrayPattern(n.Token, n.Elements)
	}
	p.failMsg(e.Start(), "cannot assign to %s", e.String())
	return nil
}

func (p *Parser) arrayPattern(tok lexer.Token, elements []Expression) *ArrayPattern {
	pattern := &ArrayPattern{Token: tok}
	for i, el := range elements {
		if spread, ok := el.(*SpreadElement); ok {
			id, isIdent := spread.Argument.(*Identifier)
			if !isIdent || spread.Double || i != len(elements)-1 {
				p.failMsg(spread.Token, "rest element must be a trailing name")
			}
			pattern.Elements = append(pattern.Elements, &RestElement{Token: spread.Token, Target: id})
			continue
		}
		pattern.Elements = append(pattern.Elements, p.toPattern(el))
	}
	return pattern
}
