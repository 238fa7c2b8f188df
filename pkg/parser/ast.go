package parser

import (
	"bytes"
	"strings"

	"github.com/quill-lang/quill/pkg/lexer"
)

// --- Interfaces ---

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string // Literal of the token the node starts with
	String() string       // Source-like rendering, for debugging and tests
	Start() lexer.Token   // Token the node starts with, for positions
}

// Statement represents a statement node in the AST.
type Statement interface {
	Node
	statementNode()
}

// Expression represents an expression node in the AST.
type Expression interface {
	Node
	expressionNode()
}

// --- Program Node ---

// Program is the root node of the AST: the ordered top-level statements of
// one source file. A Program is read-only once Parse returns it.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Start() lexer.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].Start()
	}
	return lexer.Token{Type: lexer.EOF, Line: 1, Column: 1}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// --- Statement Nodes ---

// BlockStatement is the body of a compound statement, from either surface
// syntax (indented block or braces).
type BlockStatement struct {
	Token      lexer.Token // ':' or '{'
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) Start() lexer.Token   { return bs.Token }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for i, s := range bs.Statements {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	out.WriteString(" }")
	return out.String()
}

// LetStatement is an explicit `let` or `const` declaration.
// let <Name> : <TypeAnnotation> = <Value>
type LetStatement struct {
	Token          lexer.Token // LET or CONST
	Name           *Identifier
	TypeAnnotation TypeExpression
	Value          Expression
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LetStatement) Start() lexer.Token   { return ls.Token }
func (ls *LetStatement) IsConst() bool        { return ls.Token.Type == lexer.CONST }
func (ls *LetStatement) String() string {
	var out bytes.Buffer
	out.WriteString(ls.TokenLiteral() + " " + ls.Name.String())
	if ls.TypeAnnotation != nil {
		out.WriteString(": " + ls.TypeAnnotation.String())
	}
	if ls.Value != nil {
		out.WriteString(" = " + ls.Value.String())
	}
	return out.String()
}

// AssignStatement is `target = value`, a compound assignment such as
// `x += 1`, or an annotated declaration `x: int = 0` (Value may be nil).
type AssignStatement struct {
	Token          lexer.Token // first token of the target
	Target         Expression  // *Identifier, *MemberExpression or *IndexExpression
	Operator       string      // "=", "+=", ...
	TypeAnnotation TypeExpression
	Value          Expression
}

func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) Start() lexer.Token   { return as.Token }
func (as *AssignStatement) String() string {
	var out bytes.Buffer
	out.WriteString(as.Target.String())
	if as.TypeAnnotation != nil {
		out.WriteString(": " + as.TypeAnnotation.String())
	}
	if as.Value != nil {
		out.WriteString(" " + as.Operator + " " + as.Value.String())
	}
	return out.String()
}

// DestructuringAssignment unpacks a value into a pattern:
// `a, b = pair`, `[a, *rest] = xs`, `{name, age} = person`, `const [x, y] = p`.
type DestructuringAssignment struct {
	Token   lexer.Token
	Kind    string // "", "let" or "const"
	Pattern Pattern
	Value   Expression
}

func (da *DestructuringAssignment) statementNode()       {}
func (da *DestructuringAssignment) TokenLiteral() string { return da.Token.Literal }
func (da *DestructuringAssignment) Start() lexer.Token   { return da.Token }
func (da *DestructuringAssignment) String() string {
	prefix := ""
	if da.Kind != "" {
		prefix = da.Kind + " "
	}
	return prefix + da.Pattern.String() + " = " + da.Value.String()
}

// ExpressionStatement wraps an expression used as a statement.
type ExpressionStatement struct {
	Token      lexer.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Start() lexer.Token   { return es.Token }
func (es *ExpressionStatement) String() string {
	if es.Expression == nil {
		return ""
	}
	return es.Expression.String()
}

// Parameter is one function parameter.
type Parameter struct {
	Token          lexer.Token
	Name           *Identifier
	TypeAnnotation TypeExpression
	Default        Expression
	IsRest         bool // *args
	IsKwRest       bool // **kwargs
}

func (p *Parameter) String() string {
	var out bytes.Buffer
	switch {
	case p.IsRest:
		out.WriteString("*")
	case p.IsKwRest:
		out.WriteString("**")
	}
	out.WriteString(p.Name.Value)
	if p.TypeAnnotation != nil {
		out.WriteString(": " + p.TypeAnnotation.String())
	}
	if p.Default != nil {
		out.WriteString(" = " + p.Default.String())
	}
	return out.String()
}

func paramsString(params []*Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// Decorator is one `@expr` line preceding a def or class.
type Decorator struct {
	Token      lexer.Token // '@'
	Expression Expression  // *Identifier, *MemberExpression or *CallExpression
}

func (d *Decorator) String() string { return "@" + d.Expression.String() }

// FunctionDef is a `def` or `async def` declaration.
type FunctionDef struct {
	Token      lexer.Token // DEF (or ASYNC)
	Name       *Identifier
	Parameters []*Parameter
	ReturnType TypeExpression
	Body       *BlockStatement
	IsAsync    bool
	Decorators []*Decorator
}

func (fd *FunctionDef) statementNode()       {}
func (fd *FunctionDef) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDef) Start() lexer.Token   { return fd.Token }
func (fd *FunctionDef) String() string {
	var out bytes.Buffer
	for _, d := range fd.Decorators {
		out.WriteString(d.String() + " ")
	}
	if fd.IsAsync {
		out.WriteString("async ")
	}
	out.WriteString("def " + fd.Name.Value + "(" + paramsString(fd.Parameters) + ")")
	if fd.ReturnType != nil {
		out.WriteString(" -> " + fd.ReturnType.String())
	}
	out.WriteString(" " + fd.Body.String())
	return out.String()
}

// HasDecorator reports whether the function carries a bare `@name` decorator.
func (fd *FunctionDef) HasDecorator(name string) bool {
	for _, d := range fd.Decorators {
		if id, ok := d.Expression.(*Identifier); ok && id.Value == name {
			return true
		}
	}
	return false
}

// ClassField is a class-level `name: T = value` member.
type ClassField struct {
	Token          lexer.Token
	Name           *Identifier
	TypeAnnotation TypeExpression
	Value          Expression
}

func (cf *ClassField) String() string {
	s := cf.Name.Value
	if cf.TypeAnnotation != nil {
		s += ": " + cf.TypeAnnotation.String()
	}
	if cf.Value != nil {
		s += " = " + cf.Value.String()
	}
	return s
}

// ClassDef is a class declaration with an optional single superclass.
type ClassDef struct {
	Token      lexer.Token // CLASS
	Name       *Identifier
	SuperClass Expression
	Fields     []*ClassField
	Methods    []*FunctionDef
	Docstring  string
	Decorators []*Decorator
}

func (cd *ClassDef) statementNode()       {}
func (cd *ClassDef) TokenLiteral() string { return cd.Token.Literal }
func (cd *ClassDef) Start() lexer.Token   { return cd.Token }
func (cd *ClassDef) String() string {
	var out bytes.Buffer
	out.WriteString("class " + cd.Name.Value)
	if cd.SuperClass != nil {
		out.WriteString("(" + cd.SuperClass.String() + ")")
	}
	out.WriteString(" { ")
	for _, f := range cd.Fields {
		out.WriteString(f.String() + "; ")
	}
	for _, m := range cd.Methods {
		out.WriteString(m.String() + "; ")
	}
	out.WriteString("}")
	return out.String()
}

// IfStatement covers if/elif/else. An elif chain is an *IfStatement in
// Alternative; a plain else is a *BlockStatement.
type IfStatement struct {
	Token       lexer.Token // IF or ELIF
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Start() lexer.Token   { return is.Token }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if " + is.Condition.String() + " " + is.Consequence.String())
	if is.Alternative != nil {
		out.WriteString(" else " + is.Alternative.String())
	}
	return out.String()
}

// WhileStatement is a while loop.
type WhileStatement struct {
	Token     lexer.Token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) Start() lexer.Token   { return ws.Token }
func (ws *WhileStatement) String() string {
	return "while " + ws.Condition.String() + " " + ws.Body.String()
}

// ForStatement iterates Iterable binding Target (an *Identifier or a Pattern).
type ForStatement struct {
	Token    lexer.Token
	Target   Expression
	Iterable Expression
	Body     *BlockStatement
	IsAsync  bool
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) Start() lexer.Token   { return fs.Token }
func (fs *ForStatement) String() string {
	return "for " + fs.Target.String() + " in " + fs.Iterable.String() + " " + fs.Body.String()
}

// MatchCase is one `case pattern [if guard]:` arm.
type MatchCase struct {
	Token   lexer.Token
	Pattern MatchPattern
	Guard   Expression
	Body    *BlockStatement
}

func (mc *MatchCase) String() string {
	s := "case " + mc.Pattern.String()
	if mc.Guard != nil {
		s += " if " + mc.Guard.String()
	}
	return s + " " + mc.Body.String()
}

// MatchStatement is structural pattern matching over Subject.
type MatchStatement struct {
	Token   lexer.Token
	Subject Expression
	Cases   []*MatchCase
}

func (ms *MatchStatement) statementNode()       {}
func (ms *MatchStatement) TokenLiteral() string { return ms.Token.Literal }
func (ms *MatchStatement) Start() lexer.Token   { return ms.Token }
func (ms *MatchStatement) String() string {
	var out bytes.Buffer
	out.WriteString("match " + ms.Subject.String() + " { ")
	for _, c := range ms.Cases {
		out.WriteString(c.String() + " ")
	}
	out.WriteString("}")
	return out.String()
}

// ReturnStatement returns an optional value.
type ReturnStatement struct {
	Token       lexer.Token
	ReturnValue Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Start() lexer.Token   { return rs.Token }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue == nil {
		return "return"
	}
	return "return " + rs.ReturnValue.String()
}

// BreakStatement exits the innermost loop.
type BreakStatement struct{ Token lexer.Token }

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) Start() lexer.Token   { return bs.Token }
func (bs *BreakStatement) String() string       { return "break" }

// ContinueStatement skips to the next iteration.
type ContinueStatement struct{ Token lexer.Token }

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) Start() lexer.Token   { return cs.Token }
func (cs *ContinueStatement) String() string       { return "continue" }

// PassStatement does nothing.
type PassStatement struct{ Token lexer.Token }

func (ps *PassStatement) statementNode()       {}
func (ps *PassStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PassStatement) Start() lexer.Token   { return ps.Token }
func (ps *PassStatement) String() string       { return "pass" }

// RaiseStatement throws Exception (re-raises when nil).
type RaiseStatement struct {
	Token     lexer.Token
	Exception Expression
	Cause     Expression // raise X from Cause
}

func (rs *RaiseStatement) statementNode()       {}
func (rs *RaiseStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *RaiseStatement) Start() lexer.Token   { return rs.Token }
func (rs *RaiseStatement) String() string {
	s := "raise"
	if rs.Exception != nil {
		s += " " + rs.Exception.String()
	}
	if rs.Cause != nil {
		s += " from " + rs.Cause.String()
	}
	return s
}

// ExceptHandler is one `except [Type [as Name]]:` clause. Type may be a
// tuple of exception types; nil catches everything.
type ExceptHandler struct {
	Token lexer.Token
	Type  Expression
	Name  *Identifier
	Body  *BlockStatement
}

func (eh *ExceptHandler) String() string {
	s := "except"
	if eh.Type != nil {
		s += " " + eh.Type.String()
	}
	if eh.Name != nil {
		s += " as " + eh.Name.Value
	}
	return s + " " + eh.Body.String()
}

// TryStatement is try/except/else/finally.
type TryStatement struct {
	Token    lexer.Token
	Body     *BlockStatement
	Handlers []*ExceptHandler
	Else     *BlockStatement
	Finally  *BlockStatement
}

func (ts *TryStatement) statementNode()       {}
func (ts *TryStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *TryStatement) Start() lexer.Token   { return ts.Token }
func (ts *TryStatement) String() string {
	var out bytes.Buffer
	out.WriteString("try " + ts.Body.String())
	for _, h := range ts.Handlers {
		out.WriteString(" " + h.String())
	}
	if ts.Else != nil {
		out.WriteString(" else " + ts.Else.String())
	}
	if ts.Finally != nil {
		out.WriteString(" finally " + ts.Finally.String())
	}
	return out.String()
}

// WithItem is one `context [as target]` item.
type WithItem struct {
	Context Expression
	Target  *Identifier
}

// WithStatement is a context-manager block.
type WithStatement struct {
	Token   lexer.Token
	Items   []*WithItem
	Body    *BlockStatement
	IsAsync bool
}

func (ws *WithStatement) statementNode()       {}
func (ws *WithStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WithStatement) Start() lexer.Token   { return ws.Token }
func (ws *WithStatement) String() string {
	parts := make([]string, len(ws.Items))
	for i, it := range ws.Items {
		parts[i] = it.Context.String()
		if it.Target != nil {
			parts[i] += " as " + it.Target.Value
		}
	}
	return "with " + strings.Join(parts, ", ") + " " + ws.Body.String()
}

// AssertStatement is `assert cond[, msg]`.
type AssertStatement struct {
	Token     lexer.Token
	Condition Expression
	Message   Expression
}

func (as *AssertStatement) statementNode()       {}
func (as *AssertStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssertStatement) Start() lexer.Token   { return as.Token }
func (as *AssertStatement) String() string {
	s := "assert " + as.Condition.String()
	if as.Message != nil {
		s += ", " + as.Message.String()
	}
	return s
}

// DeleteStatement is `del target, ...`.
type DeleteStatement struct {
	Token   lexer.Token
	Targets []Expression
}

func (ds *DeleteStatement) statementNode()       {}
func (ds *DeleteStatement) TokenLiteral() string { return ds.Token.Literal }
func (ds *DeleteStatement) Start() lexer.Token   { return ds.Token }
func (ds *DeleteStatement) String() string       { return "del " + exprList(ds.Targets) }

// GlobalStatement is `global a, b` or `nonlocal a, b`.
type GlobalStatement struct {
	Token    lexer.Token
	Names    []*Identifier
	Nonlocal bool
}

func (gs *GlobalStatement) statementNode()       {}
func (gs *GlobalStatement) TokenLiteral() string { return gs.Token.Literal }
func (gs *GlobalStatement) Start() lexer.Token   { return gs.Token }
func (gs *GlobalStatement) String() string {
	names := make([]string, len(gs.Names))
	for i, n := range gs.Names {
		names[i] = n.Value
	}
	return gs.Token.Literal + " " + strings.Join(names, ", ")
}

func exprList(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
