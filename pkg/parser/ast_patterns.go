package parser

import (
	"strconv"
	"strings"

	"github.com/quill-lang/quill/pkg/lexer"
)

// --- Destructuring patterns ---

// Pattern is a destructuring target. Patterns are also expressions so they
// can stand as loop and comprehension targets.
type Pattern interface {
	Expression
	patternNode()
}

// RestElement is `*name` / `...name` inside an ArrayPattern.
type RestElement struct {
	Token  lexer.Token
	Target *Identifier
}

func (re *RestElement) expressionNode()      {}
func (re *RestElement) TokenLiteral() string { return re.Token.Literal }
func (re *RestElement) Start() lexer.Token   { return re.Token }
func (re *RestElement) String() string       { return "*" + re.Target.Value }

// ArrayPattern is `[a, b, *rest]` or `a, b`. Elements are *Identifier,
// *RestElement, nested patterns, or member/index targets.
type ArrayPattern struct {
	Token    lexer.Token
	Elements []Expression
}

func (ap *ArrayPattern) expressionNode()      {}
func (ap *ArrayPattern) patternNode()         {}
func (ap *ArrayPattern) TokenLiteral() string { return ap.Token.Literal }
func (ap *ArrayPattern) Start() lexer.Token   { return ap.Token }
func (ap *ArrayPattern) String() string       { return "[" + exprList(ap.Elements) + "]" }

// PatternProperty is `key`, `key: target` or `key = default` in an ObjectPattern.
type PatternProperty struct {
	Key     *Identifier
	Target  Expression // *Identifier or nested Pattern; nil means same as Key
	Default Expression
}

// ObjectPattern is `{a, b: c, ...rest}`.
type ObjectPattern struct {
	Token      lexer.Token
	Properties []*PatternProperty
	Rest       *Identifier
}

func (op *ObjectPattern) expressionNode()      {}
func (op *ObjectPattern) patternNode()         {}
func (op *ObjectPattern) TokenLiteral() string { return op.Token.Literal }
func (op *ObjectPattern) Start() lexer.Token   { return op.Token }
func (op *ObjectPattern) String() string {
	var parts []string
	for _, p := range op.Properties {
		s := p.Key.Value
		if p.Target != nil {
			s += ": " + p.Target.String()
		}
		if p.Default != nil {
			s += " = " + p.Default.String()
		}
		parts = append(parts, s)
	}
	if op.Rest != nil {
		parts = append(parts, "..."+op.Rest.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// PatternNames returns the identifiers a destructuring target binds, in
// source order.
func PatternNames(e Expression) []string {
	var names []string
	var walk func(Expression)
	walk = func(e Expression) {
		switch n := e.(type) {
		case *Identifier:
			names = append(names, n.Value)
		case *RestElement:
			names = append(names, n.Target.Value)
		case *ArrayPattern:
			for _, el := range n.Elements {
				walk(el)
			}
		case *ObjectPattern:
			for _, p := range n.Properties {
				if p.Target != nil {
					walk(p.Target)
				} else {
					names = append(names, p.Key.Value)
				}
			}
			if n.Rest != nil {
				names = append(names, n.Rest.Value)
			}
		}
	}
	walk(e)
	return names
}

// --- Match patterns ---

// MatchPattern is a `case` pattern.
type MatchPattern interface {
	Node
	matchPatternNode()
}

// LiteralPattern matches a literal value (numbers, strings, booleans, None).
type LiteralPattern struct {
	Token lexer.Token
	Value Expression
}

// ValuePattern matches the value of a dotted name such as Color.RED.
type ValuePattern struct {
	Token lexer.Token
	Value Expression
}

// CapturePattern binds the subject to Name.
type CapturePattern struct {
	Token lexer.Token
	Name  *Identifier
}

// WildcardPattern is `_`.
type WildcardPattern struct{ Token lexer.Token }

// SequencePattern is `(a, b)` / `[a, b]` matched element-wise.
type SequencePattern struct {
	Token    lexer.Token
	Elements []MatchPattern
}

// OrPattern is `p1 | p2`.
type OrPattern struct {
	Token        lexer.Token
	Alternatives []MatchPattern
}

func (*LiteralPattern) matchPatternNode()  {}
func (*ValuePattern) matchPatternNode()    {}
func (*CapturePattern) matchPatternNode()  {}
func (*WildcardPattern) matchPatternNode() {}
func (*SequencePattern) matchPatternNode() {}
func (*OrPattern) matchPatternNode()       {}

func (p *LiteralPattern) TokenLiteral() string  { return p.Token.Literal }
func (p *ValuePattern) TokenLiteral() string    { return p.Token.Literal }
func (p *CapturePattern) TokenLiteral() string  { return p.Token.Literal }
func (p *WildcardPattern) TokenLiteral() string { return p.Token.Literal }
func (p *SequencePattern) TokenLiteral() string { return p.Token.Literal }
func (p *OrPattern) TokenLiteral() string       { return p.Token.Literal }

func (p *LiteralPattern) Start() lexer.Token  { return p.Token }
func (p *ValuePattern) Start() lexer.Token    { return p.Token }
func (p *CapturePattern) Start() lexer.Token  { return p.Token }
func (p *WildcardPattern) Start() lexer.Token { return p.Token }
func (p *SequencePattern) Start() lexer.Token { return p.Token }
func (p *OrPattern) Start() lexer.Token       { return p.Token }

func (p *LiteralPattern) String() string  { return p.Value.String() }
func (p *ValuePattern) String() string    { return p.Value.String() }
func (p *CapturePattern) String() string  { return p.Name.Value }
func (p *WildcardPattern) String() string { return "_" }
func (p *SequencePattern) String() string {
	parts := make([]string, len(p.Elements))
	for i, e := range p.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (p *OrPattern) String() string {
	parts := make([]string, len(p.Alternatives))
	for i, e := range p.Alternatives {
		parts[i] = e.String()
	}
	return strings.Join(parts, " | ")
}

// --- Type annotations ---

// TypeExpression is a parsed type annotation.
type TypeExpression interface {
	Node
	typeExpressionNode()
}

// TypeName is `Name` or `Name[Args]` (dotted names allowed).
type TypeName struct {
	Token lexer.Token
	Name  string
	Args  []TypeExpression
}

// UnionTypeExpr is `A | B`.
type UnionTypeExpr struct {
	Token lexer.Token
	Types []TypeExpression
}

// IntersectionTypeExpr is `A & B`.
type IntersectionTypeExpr struct {
	Token lexer.Token
	Types []TypeExpression
}

// TypeListExpr is a bracketed list such as the parameter list of
// Callable[[int, str], bool].
type TypeListExpr struct {
	Token lexer.Token
	Types []TypeExpression
}

// LiteralTypeExpr is a string, number or boolean literal used as a type.
type LiteralTypeExpr struct {
	Token lexer.Token
	Value Expression
}

func (*TypeName) typeExpressionNode()             {}
func (*UnionTypeExpr) typeExpressionNode()        {}
func (*IntersectionTypeExpr) typeExpressionNode() {}
func (*TypeListExpr) typeExpressionNode()         {}
func (*LiteralTypeExpr) typeExpressionNode()      {}

func (t *TypeName) TokenLiteral() string             { return t.Token.Literal }
func (t *UnionTypeExpr) TokenLiteral() string        { return t.Token.Literal }
func (t *IntersectionTypeExpr) TokenLiteral() string { return t.Token.Literal }
func (t *TypeListExpr) TokenLiteral() string         { return t.Token.Literal }
func (t *LiteralTypeExpr) TokenLiteral() string      { return t.Token.Literal }

func (t *TypeName) Start() lexer.Token             { return t.Token }
func (t *UnionTypeExpr) Start() lexer.Token        { return t.Token }
func (t *IntersectionTypeExpr) Start() lexer.Token { return t.Token }
func (t *TypeListExpr) Start() lexer.Token         { return t.Token }
func (t *LiteralTypeExpr) Start() lexer.Token      { return t.Token }

func typeList(ts []TypeExpression, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}

func (t *TypeName) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	return t.Name + "[" + typeList(t.Args, ", ") + "]"
}
func (t *UnionTypeExpr) String() string        { return typeList(t.Types, " | ") }
func (t *IntersectionTypeExpr) String() string { return typeList(t.Types, " & ") }
func (t *TypeListExpr) String() string         { return "[" + typeList(t.Types, ", ") + "]" }
func (t *LiteralTypeExpr) String() string {
	if s, ok := t.Value.(*StringLiteral); ok {
		return strconv.Quote(s.Value)
	}
	return t.Value.String()
}
