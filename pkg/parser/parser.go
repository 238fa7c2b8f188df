package parser

import (
	"fmt"
	"strings"

	"github.com/quill-lang/quill/pkg/errors"
	"github.com/quill-lang/quill/pkg/lexer"
	"github.com/quill-lang/quill/pkg/source"
)

// --- Debug Flag ---
const debugParser = false

func debugPrint(format string, args ...interface{}) {
	if debugParser {
		fmt.Printf("[Parser Debug] "+format+"\n", args...)
	}
}

// Parser builds an AST from a token slice. It keeps a cursor into the
// slice so speculative sub-parses can be abandoned by restoring a mark.
type Parser struct {
	tokens []lexer.Token
	pos    int
	source *source.SourceFile
	err    *errors.SyntaxError

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// Parsing functions types for Pratt parser
type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression
)

// bailout unwinds the recursive descent on the first error.
type bailout struct{}

// Precedence levels, lowest first.
const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // :=
	TERNARY     // ?: and a if c else b
	LOGICAL_OR  // or ||
	LOGICAL_AND // and &&
	LOGICAL_NOT // not
	EQUALS      // == != is
	LESSGREATER // < > <= >= in, not in
	SUM         // + -
	PRODUCT     // * / // %
	POWER       // ** (right-associative)
	PREFIX      // !x await x
	CALL        // f(x)
	INDEX       // a[i]
	MEMBER      // a.b
)

var precedences = map[lexer.TokenType]int{
	lexer.WALRUS:         ASSIGNMENT,
	lexer.QUESTION:       TERNARY,
	lexer.IF:             TERNARY,
	lexer.OR:             LOGICAL_OR,
	lexer.LOGICAL_OR:     LOGICAL_OR,
	lexer.AND:            LOGICAL_AND,
	lexer.LOGICAL_AND:    LOGICAL_AND,
	lexer.EQ:             EQUALS,
	lexer.NOT_EQ:         EQUALS,
	lexer.IS:             EQUALS,
	lexer.LT:             LESSGREATER,
	lexer.GT:             LESSGREATER,
	lexer.LE:             LESSGREATER,
	lexer.GE:             LESSGREATER,
	lexer.IN:             LESSGREATER,
	lexer.NOT:            LESSGREATER, // infix only as "not in"
	lexer.PLUS:           SUM,
	lexer.MINUS:          SUM,
	lexer.ASTERISK:       PRODUCT,
	lexer.SLASH:          PRODUCT,
	lexer.FLOOR_DIV:      PRODUCT,
	lexer.PERCENT:        PRODUCT,
	lexer.POWER:          POWER,
	lexer.LPAREN:         CALL,
	lexer.LBRACKET:       INDEX,
	lexer.DOT:            MEMBER,
	lexer.OPTIONAL_CHAIN: MEMBER,
}

var assignOperators = map[lexer.TokenType]bool{
	lexer.ASSIGN:           true,
	lexer.PLUS_ASSIGN:      true,
	lexer.MINUS_ASSIGN:     true,
	lexer.ASTERISK_ASSIGN:  true,
	lexer.SLASH_ASSIGN:     true,
	lexer.FLOOR_DIV_ASSIGN: true,
	lexer.PERCENT_ASSIGN:   true,
	lexer.POWER_ASSIGN:     true,
}

// New creates a parser over tokens. The slice is expected to end with EOF,
// as produced by lexer.Tokenize.
func New(tokens []lexer.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, lexer.Token{Type: lexer.EOF, Line: line, Column: 1})
	}
	p := &Parser{
		tokens:         tokens,
		prefixParseFns: make(map[lexer.TokenType]prefixParseFn),
		infixParseFns:  make(map[lexer.TokenType]infixParseFn),
	}

	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.FSTRING, p.parseFStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.NONE, p.parseNoneLiteral)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseListLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseBraceLiteral)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.PLUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.NOT, p.parsePrefixExpression)
	p.registerPrefix(lexer.AWAIT, p.parsePrefixExpression)
	p.registerPrefix(lexer.NEW, p.parseNewExpression)
	p.registerPrefix(lexer.LAMBDA, p.parseLambda)
	p.registerPrefix(lexer.ASYNC, p.parseAsyncArrow)
	p.registerPrefix(lexer.ASTERISK, p.parseSpreadElement)
	p.registerPrefix(lexer.SPREAD, p.parseSpreadElement)
	p.registerPrefix(lexer.POWER, p.parseSpreadElement)
	p.registerPrefix(lexer.LT, p.parseJSXElement)
	p.registerPrefix(lexer.YIELD, p.parseYieldExpression)

	for _, tt := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH, lexer.FLOOR_DIV, lexer.PERCENT, lexer.POWER,
		lexer.EQ, lexer.NOT_EQ, lexer.LT, lexer.GT, lexer.LE, lexer.GE, lexer.IN, lexer.NOT, lexer.IS,
		lexer.AND, lexer.OR, lexer.LOGICAL_AND, lexer.LOGICAL_OR,
	} {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(lexer.QUESTION, p.parseConditionalExpression)
	p.registerInfix(lexer.IF, p.parseIfElseExpression)
	p.registerInfix(lexer.WALRUS, p.parseAssignmentExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)
	p.registerInfix(lexer.DOT, p.parseMemberExpression)
	p.registerInfix(lexer.OPTIONAL_CHAIN, p.parseMemberExpression)

	p.reset(0)
	return p
}

// WithSource attaches the source file reported in error positions.
func (p *Parser) WithSource(sf *source.SourceFile) *Parser {
	p.source = sf
	return p
}

// Parse parses a complete token stream into a Program.
func Parse(tokens []lexer.Token) (*Program, error) {
	return New(tokens).ParseProgram()
}

// ParseString tokenizes and parses src.
func ParseString(src string) (*Program, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(toks)
}

// ParseProgram parses statements until EOF. The first error aborts the parse.
func (p *Parser) ParseProgram() (prog *Program, err error) {
	defer p.recoverBailout(&err)
	prog = &Program{}
	for !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.NEWLINE) || p.curTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}
		prog.Statements = append(prog.Statements, p.parseStatement())
		p.nextToken()
	}
	return prog, nil
}

// ParseExpression parses tokens holding a single expression.
func ParseExpression(tokens []lexer.Token) (Expression, error) {
	return New(tokens).parseStandaloneExpression()
}

func (p *Parser) parseStandaloneExpression() (expr Expression, err error) {
	defer p.recoverBailout(&err)
	if p.curTokenIs(lexer.EOF) || p.curTokenIs(lexer.NEWLINE) {
		p.fail(p.curToken, "expression")
	}
	expr = p.parseExpression(LOWEST)
	if !p.peekTokenIs(lexer.NEWLINE) && !p.peekTokenIs(lexer.EOF) {
		p.fail(p.peekToken, "end of expression")
	}
	return expr, nil
}

func (p *Parser) recoverBailout(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if _, ok := r.(bailout); !ok {
		panic(r)
	}
	*err = p.err
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// --- Cursor ---

func (p *Parser) at(i int) lexer.Token {
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) nextToken() {
	p.pos++
	p.curToken = p.at(p.pos)
	p.peekToken = p.at(p.pos + 1)
}

// mark returns a checkpoint of the cursor.
func (p *Parser) mark() int { return p.pos }

// reset restores the cursor to a checkpoint.
func (p *Parser) reset(m int) {
	p.pos = m
	p.curToken = p.at(m)
	p.peekToken = p.at(m + 1)
}

// attempt runs a speculative sub-parse. On failure the cursor is restored
// to where it was, the error is discarded and attempt reports false.
func (p *Parser) attempt(fn func()) (ok bool) {
	m := p.mark()
	defer func() {
		if r := recover(); r != nil {
			if _, isBailout := r.(bailout); !isBailout {
				panic(r)
			}
			debugPrint("attempt failed at %s: %v", p.curToken, p.err)
			p.reset(m)
			p.err = nil
			ok = false
		}
	}()
	fn()
	return true
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

// peekSecondIs checks the token after peekToken.
func (p *Parser) peekSecondIs(t lexer.TokenType) bool { return p.at(p.pos+2).Type == t }

// expectPeek checks the type of the next token and advances if it matches.
func (p *Parser) expectPeek(t lexer.TokenType) {
	if !p.peekTokenIs(t) {
		p.fail(p.peekToken, describeType(t))
	}
	p.nextToken()
}

// expectName advances over the next token if it can serve as a name
// (identifiers and keywords, as in `obj.class`).
func (p *Parser) expectName() *Identifier {
	if !isName(p.peekToken) {
		p.fail(p.peekToken, "identifier")
	}
	p.nextToken()
	return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func isName(tok lexer.Token) bool {
	if tok.Type == lexer.IDENT {
		return true
	}
	return lexer.IsKeyword(tok.Type) && tok.Literal != "" && isLetterStart(tok.Literal)
}

func isLetterStart(s string) bool {
	c := s[0]
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func (p *Parser) skipNewlines() {
	for p.peekTokenIs(lexer.NEWLINE) {
		p.nextToken()
	}
}

// skipNewlineBefore steps over a line break when the token after it is one
// of the continuation keywords (brace-style `}` NEWLINE `else`).
func (p *Parser) skipNewlineBefore(types ...lexer.TokenType) {
	if !p.peekTokenIs(lexer.NEWLINE) {
		return
	}
	next := p.at(p.pos + 2).Type
	for _, t := range types {
		if next == t {
			p.nextToken()
			return
		}
	}
}

func (p *Parser) peekIsTerminator() bool {
	switch p.peekToken.Type {
	case lexer.NEWLINE, lexer.SEMICOLON, lexer.EOF, lexer.DEDENT, lexer.RBRACE:
		return true
	}
	return false
}

// endStatement requires a statement to end at a newline, a semicolon or the
// end of input. Block closers also end the last statement of a block.
func (p *Parser) endStatement() {
	switch p.peekToken.Type {
	case lexer.NEWLINE, lexer.SEMICOLON:
		p.nextToken()
	case lexer.EOF, lexer.DEDENT, lexer.RBRACE:
	default:
		p.fail(p.peekToken, "end of statement")
	}
}

// --- Error Handling ---

func (p *Parser) position(tok lexer.Token) errors.Position {
	return errors.Position{
		Line:     tok.Line,
		Column:   tok.Column,
		StartPos: tok.StartPos,
		EndPos:   tok.EndPos,
		Source:   p.source,
	}
}

// fail records an unmet expectation at tok and aborts the parse.
func (p *Parser) fail(tok lexer.Token, expected string) {
	p.err = &errors.SyntaxError{
		Position: p.position(tok),
		Expected: expected,
		Found:    describeToken(tok),
	}
	panic(bailout{})
}

// failMsg aborts the parse with a free-form message.
func (p *Parser) failMsg(tok lexer.Token, format string, args ...any) {
	p.err = &errors.SyntaxError{
		Position: p.position(tok),
		Found:    describeToken(tok),
		Msg:      fmt.Sprintf(format, args...),
	}
	panic(bailout{})
}

func describeToken(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.NEWLINE:
		return "newline"
	case lexer.INDENT:
		return "indent"
	case lexer.DEDENT:
		return "dedent"
	case lexer.IDENT:
		return "identifier '" + tok.Literal + "'"
	case lexer.STRING, lexer.FSTRING:
		return "string"
	case lexer.INT, lexer.FLOAT:
		return "number " + tok.Literal
	}
	return "'" + tok.Literal + "'"
}

func describeType(t lexer.TokenType) string {
	switch t {
	case lexer.EOF:
		return "end of input"
	case lexer.NEWLINE:
		return "newline"
	case lexer.INDENT:
		return "indented block"
	case lexer.DEDENT:
		return "dedent"
	case lexer.IDENT:
		return "identifier"
	case lexer.STRING:
		return "string"
	}
	if lexer.IsKeyword(t) {
		return "'" + strings.ToLower(string(t)) + "'"
	}
	return "'" + string(t) + "'"
}

// --- Pratt core ---

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) parseExpression(precedence int) Expression {
	debugPrint("parseExpression(prec=%d): cur=%s", precedence, p.curToken)
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.fail(p.curToken, "expression")
	}
	leftExp := prefix()

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}
	return leftExp
}

// parseExpressionList parses `a` or a bare tuple `a, b, c`.
func (p *Parser) parseExpressionList() Expression {
	first := p.parseExpression(LOWEST)
	if !p.peekTokenIs(lexer.COMMA) {
		return first
	}
	tuple := &TupleLiteral{Token: first.Start(), Elements: []Expression{first}}
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if p.peekIsTerminator() || p.peekTokenIs(lexer.ASSIGN) || p.peekTokenIs(lexer.COLON) {
			break
		}
		p.nextToken()
		tuple.Elements = append(tuple.Elements, p.parseExpression(LOWEST))
	}
	return tuple
}
